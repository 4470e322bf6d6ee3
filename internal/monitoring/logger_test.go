package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	var got []string
	SetLogger(func(format string, v ...interface{}) {
		got = append(got, fmt.Sprintf(format, v...))
	})
	defer SetLogger(nil)

	Logf("scan %d", 3)
	if len(got) != 1 || got[0] != "scan 3" {
		t.Errorf("captured %v, want [scan 3]", got)
	}
}

func TestDebugfRespectsToggle(t *testing.T) {
	var got []string
	SetLogger(func(format string, v ...interface{}) {
		got = append(got, fmt.Sprintf(format, v...))
	})
	defer SetLogger(nil)
	defer SetDebug(false)

	SetDebug(false)
	Debugf("dropped")
	if len(got) != 0 {
		t.Fatalf("debug output emitted while disabled: %v", got)
	}

	SetDebug(true)
	Debugf("dropped %d", 1)
	if len(got) != 1 || got[0] != "dropped 1" {
		t.Errorf("captured %v, want [dropped 1]", got)
	}
}

func TestSetLoggerNilInstallsNoop(t *testing.T) {
	SetLogger(nil)
	Logf("goes nowhere %d", 1)
}
