package source

import (
	"context"
	"errors"

	"github.com/cansat-data/terrain.report/internal/monitoring"
	"github.com/cansat-data/terrain.report/internal/telemetry"
)

// ErrSourceClosed reports that the serial subscription was closed under the
// reader, typically because the port was lost. The ingestion loop treats it
// like any other transient source fault.
var ErrSourceClosed = errors.New("serial source closed")

// LineSubscriber is the slice of the serial mux the source needs. Satisfied
// by *serialmux.Mux.
type LineSubscriber interface {
	Subscribe() (string, chan string)
	Unsubscribe(id string)
}

// SerialSource adapts the serial mux line stream into telemetry readings.
// Lines that are not terrain frames are skipped silently; frames with
// corrupt JSON are logged at debug level and skipped, so a single bad
// sample never terminates ingestion.
type SerialSource struct {
	mux   LineSubscriber
	subID string
	lines chan string
}

// NewSerialSource creates a SerialSource reading from the given mux.
func NewSerialSource(mux LineSubscriber) *SerialSource {
	return &SerialSource{mux: mux}
}

// Next returns the next well-formed terrain reading from the serial line.
func (s *SerialSource) Next(ctx context.Context) (telemetry.Reading, error) {
	if s.lines == nil {
		s.subID, s.lines = s.mux.Subscribe()
	}

	for {
		select {
		case <-ctx.Done():
			return telemetry.Reading{}, ctx.Err()

		case line, ok := <-s.lines:
			if !ok {
				s.lines = nil
				return telemetry.Reading{}, ErrSourceClosed
			}
			r, isFrame, err := ParseFrame(line)
			if err != nil {
				monitoring.Debugf("discarding malformed frame: %v", err)
				continue
			}
			if !isFrame {
				continue
			}
			return r, nil
		}
	}
}

// Close releases the mux subscription.
func (s *SerialSource) Close() {
	if s.lines != nil {
		s.mux.Unsubscribe(s.subID)
		s.lines = nil
	}
}
