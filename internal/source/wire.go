// Package source implements the reading producers feeding the ingestion
// loop: the live serial line protocol and the simulated generator. Both
// satisfy telemetry.Source, so the loop is oblivious to data origin.
package source

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cansat-data/terrain.report/internal/telemetry"
)

// framePrefix marks terrain frames on the serial line. The microcontroller
// interleaves them with free-form debug output, so anything without the
// prefix is ignored.
const framePrefix = "TERRAIN:"

// wireFrame mirrors the firmware's JSON payload. Distance fields are
// pointers so an absent sensor reading can be told apart from zero.
type wireFrame struct {
	S0     *float64 `json:"s0"`
	S1     *float64 `json:"s1"`
	S2     *float64 `json:"s2"`
	S3     *float64 `json:"s3"`
	S4     *float64 `json:"s4"`
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
	Var    *float64 `json:"var"`
	Status string   `json:"status"`
}

// ParseFrame decodes one serial line into a Reading. It returns ok=false
// for lines that are not terrain frames (no prefix) and an error for frames
// with corrupt JSON. Missing distance fields become the no-reading sentinel.
func ParseFrame(line string) (telemetry.Reading, bool, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, framePrefix) {
		return telemetry.Reading{}, false, nil
	}

	var f wireFrame
	if err := json.Unmarshal([]byte(line[len(framePrefix):]), &f); err != nil {
		return telemetry.Reading{}, false, fmt.Errorf("corrupt terrain frame: %w", err)
	}

	var r telemetry.Reading
	for i, field := range []*float64{f.S0, f.S1, f.S2, f.S3, f.S4} {
		if field == nil {
			r.Distances[i] = telemetry.NoReading
		} else {
			r.Distances[i] = *field
		}
	}

	if f.Status != "" {
		r.Status = telemetry.ParseStatus(f.Status)
		r.HasStatus = true
	}

	return r, true, nil
}
