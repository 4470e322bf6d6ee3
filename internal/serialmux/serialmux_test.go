package serialmux

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSendCommandAppendsNewline(t *testing.T) {
	port := NewTestablePort()
	mux := NewMux(port)

	if err := mux.SendCommand("RATE=500"); err != nil {
		t.Fatalf("SendCommand: %v", err)
	}
	if got := string(port.WrittenData()); got != "RATE=500\n" {
		t.Errorf("written %q, want %q", got, "RATE=500\n")
	}

	if err := mux.SendCommand("PING\n"); err != nil {
		t.Fatalf("SendCommand: %v", err)
	}
	if got := string(port.WrittenData()); got != "RATE=500\nPING\n" {
		t.Errorf("written %q: newline must not be doubled", got)
	}
}

func TestSendCommandPropagatesWriteError(t *testing.T) {
	port := NewTestablePort()
	port.WriteError = errors.New("device gone")
	mux := NewMux(port)

	if err := mux.SendCommand("PING"); err == nil {
		t.Error("expected write error, got nil")
	}
}

// shortWritePort reports fewer bytes written than requested.
type shortWritePort struct {
	*TestablePort
}

func (p shortWritePort) Write(buf []byte) (int, error) {
	n, err := p.TestablePort.Write(buf)
	if n > 0 {
		n--
	}
	return n, err
}

func TestSendCommandShortWrite(t *testing.T) {
	mux := NewMux(shortWritePort{NewTestablePort()})
	if err := mux.SendCommand("PING"); !errors.Is(err, ErrWriteFailed) {
		t.Errorf("got %v, want ErrWriteFailed", err)
	}
}

func TestMonitorFansOutToAllSubscribers(t *testing.T) {
	port := NewTestablePort()
	port.BlockReads = true
	mux := NewMux(port)

	_, ch1 := mux.Subscribe()
	_, ch2 := mux.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- mux.Monitor(ctx) }()

	got1 := make(chan string, 1)
	got2 := make(chan string, 1)
	go func() { got1 <- <-ch1 }()
	go func() { got2 <- <-ch2 }()

	// The fan-out drops lines for subscribers that are not ready, so feed
	// frames until both receivers have caught one.
	const line = `TERRAIN:{"s0":50}`
	deadline := time.After(2 * time.Second)
	var line1, line2 string
	for line1 == "" || line2 == "" {
		port.AddReadData([]byte(line + "\n"))
		select {
		case line1 = <-got1:
		case line2 = <-got2:
		case <-deadline:
			t.Fatal("subscribers never received a line")
		case <-time.After(time.Millisecond):
		}
	}
	if line1 != line || line2 != line {
		t.Errorf("subscribers got %q and %q, want %q", line1, line2, line)
	}

	cancel()
	port.Close()
	if err := <-done; !errors.Is(err, context.Canceled) && err != nil {
		t.Errorf("Monitor returned %v", err)
	}
}

func TestMonitorSurvivesUnreadSubscriber(t *testing.T) {
	port := NewTestablePort()
	port.BlockReads = true
	mux := NewMux(port)

	// Never read from this subscription; the fan-out must not block on it.
	mux.Subscribe()
	_, live := mux.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mux.Monitor(ctx)

	got := make(chan string, 1)
	go func() { got <- <-live }()

	deadline := time.After(2 * time.Second)
	for {
		port.AddReadData([]byte("ping\n"))
		select {
		case line := <-got:
			if line != "ping" {
				t.Errorf("got %q, want %q", line, "ping")
			}
			return
		case <-deadline:
			t.Fatal("fan-out stalled behind an unread subscriber")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	mux := NewMux(NewTestablePort())
	id, ch := mux.Subscribe()
	mux.Unsubscribe(id)

	if _, ok := <-ch; ok {
		t.Error("channel still open after Unsubscribe")
	}
}

func TestSubscribeAfterClose(t *testing.T) {
	mux := NewMux(NewTestablePort())
	if err := mux.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// A reader retrying against a dead mux must see end-of-stream, and the
	// mux must not accumulate subscriptions it will never feed.
	for i := 0; i < 3; i++ {
		_, ch := mux.Subscribe()
		if _, ok := <-ch; ok {
			t.Fatal("Subscribe on a closed mux returned an open channel")
		}
	}

	mux.subscriberMu.Lock()
	n := len(mux.subscribers)
	mux.subscriberMu.Unlock()
	if n != 0 {
		t.Errorf("closed mux holds %d subscriptions, want 0", n)
	}
}

func TestCloseClosesPortAndSubscribers(t *testing.T) {
	port := NewTestablePort()
	mux := NewMux(port)
	_, ch := mux.Subscribe()

	if err := mux.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !port.Closed {
		t.Error("underlying port not closed")
	}
	if _, ok := <-ch; ok {
		t.Error("subscriber channel still open after Close")
	}
}
