package notify

import (
	"errors"
	"testing"
	"time"
)

type fakeSender struct {
	got chan message
	err error
}

func (f *fakeSender) send(m message) error {
	f.got <- m
	return f.err
}

func TestIndexedMessage(t *testing.T) {
	m := indexedMessage(12345)
	if m.summary != "Library indexed" {
		t.Errorf("summary = %q", m.summary)
	}
	if m.body != "12,345 tracks available" {
		t.Errorf("body = %q", m.body)
	}
	if m.urgency != urgencyLow {
		t.Errorf("urgency = %d, want low", m.urgency)
	}
	if m.timeout != indexedTimeout {
		t.Errorf("timeout = %d, want %d", m.timeout, indexedTimeout)
	}
}

func TestDataIndexedSends(t *testing.T) {
	fake := &fakeSender{got: make(chan message, 1)}
	in := &IndexedNotifier{s: fake, log: New(nil).log}

	in.DataIndexed(1)

	select {
	case m := <-fake.got:
		if m.body != "1 tracks available" {
			t.Errorf("body = %q", m.body)
		}
	case <-time.After(time.Second):
		t.Fatal("notification not sent")
	}
}

func TestDataIndexedLogsFailure(t *testing.T) {
	fake := &fakeSender{got: make(chan message, 1), err: errors.New("bus gone")}
	in := &IndexedNotifier{s: fake, log: New(nil).log}
	done := make(chan error, 1)
	in.sent = func(err error) { done <- err }

	in.DataIndexed(1)

	select {
	case err := <-done:
		if err == nil {
			t.Error("expected the sender error to be observed")
		}
	case <-time.After(time.Second):
		t.Fatal("notification not attempted")
	}
}

func TestNewWithoutBus(t *testing.T) {
	t.Setenv("DBUS_SESSION_BUS_ADDRESS", "unix:path=/nonexistent/bus")
	in := New(nil)
	if err := in.s.send(indexedMessage(0)); err != nil {
		t.Errorf("send() without bus = %v, want nil", err)
	}
}
