package serialmux

import (
	"time"

	"go.bug.st/serial"
)

// defaultReadTimeout bounds each read on a real port so a silent sensor
// never wedges the monitor goroutine.
const defaultReadTimeout = time.Second

// OpenMux opens the serial port at the given path using the provided options
// and returns a Mux backed by it.
func OpenMux(path string, opts PortOptions) (*Mux, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, err
	}

	if err := port.SetReadTimeout(defaultReadTimeout); err != nil {
		port.Close()
		return nil, err
	}

	return NewMux(port), nil
}
