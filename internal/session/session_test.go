package session

import (
	"testing"
	"time"

	"github.com/jeongseonghan/audio-modem/internal/codec"
	"github.com/jeongseonghan/audio-modem/internal/modem"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	fsk, err := modem.NewFSK(modem.DefaultConfig())
	if err != nil {
		t.Fatalf("NewFSK: %v", err)
	}
	c := codec.New(fsk, codec.DefaultConfig())
	return New(c, ModeDuplex)
}

func TestSession_SendWithoutOutputDevice(t *testing.T) {
	s := newTestSession(t)
	// hasOutput is false until Open() succeeds against a real device.
	if err := s.Send([]byte{0x01}); err == nil {
		t.Error("Send should fail when no output device is open")
	}
}

func TestSession_StartReceivingWithoutInputDevice(t *testing.T) {
	s := newTestSession(t)
	if err := s.StartReceiving(); err == nil {
		t.Error("StartReceiving should fail when no input device is open")
	}
}

func TestSession_StatusString(t *testing.T) {
	cases := map[Status]string{
		StatusDisconnected: "disconnected",
		StatusConnecting:   "connecting",
		StatusConnected:    "connected",
		StatusReceiving:    "receiving",
		StatusCompleted:    "completed",
		StatusError:        "error",
		Status(99):         "unknown",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", status, got, want)
		}
	}
}

func TestSession_SetStatusEmitsEvent(t *testing.T) {
	s := newTestSession(t)
	s.setStatus(StatusConnected, "ready")

	select {
	case ev := <-s.Events():
		if ev.Status != StatusConnected || ev.Message != "ready" {
			t.Errorf("event = %+v, want Status=Connected Message=ready", ev)
		}
	default:
		t.Fatal("expected an event on the channel")
	}
}

func TestSession_EmitBytesDeliversPayload(t *testing.T) {
	s := newTestSession(t)
	s.emitBytes([]byte{0xAA, 0xBB})

	select {
	case ev := <-s.Events():
		if len(ev.Bytes) != 2 || ev.Bytes[0] != 0xAA || ev.Bytes[1] != 0xBB {
			t.Errorf("event.Bytes = %v, want [0xAA 0xBB]", ev.Bytes)
		}
	default:
		t.Fatal("expected an event on the channel")
	}
}

func TestSession_SetInactivityTimeout(t *testing.T) {
	s := newTestSession(t)
	if s.inactivityTimeout != DefaultInactivityTimeout {
		t.Fatalf("default inactivityTimeout = %v, want %v", s.inactivityTimeout, DefaultInactivityTimeout)
	}
	s.SetInactivityTimeout(5 * time.Second)
	if s.inactivityTimeout != 5*time.Second {
		t.Errorf("SetInactivityTimeout(5s) = %v, want 5s", s.inactivityTimeout)
	}
}

func TestSession_SetAGCTargetRMS(t *testing.T) {
	s := newTestSession(t)
	if s.agcTargetRMS != DefaultAGCTargetRMS {
		t.Fatalf("default agcTargetRMS = %v, want %v", s.agcTargetRMS, DefaultAGCTargetRMS)
	}
	s.SetAGCTargetRMS(0)
	if s.agcTargetRMS != 0 {
		t.Errorf("SetAGCTargetRMS(0) = %v, want 0", s.agcTargetRMS)
	}
}
