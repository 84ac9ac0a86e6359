// Package session manages an audio modem communication session: device
// lifecycle, the send/receive loops, and the external inactivity watchdog
// that the core codec relies on to call ResetState.
package session

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jeongseonghan/audio-modem/internal/audio"
	"github.com/jeongseonghan/audio-modem/internal/codec"
	"github.com/jeongseonghan/audio-modem/internal/modem"
)

// DefaultAGCTargetRMS is the level StartReceiving normalizes each captured
// chunk to before it reaches the codec, for input devices that don't
// already run their own AGC.
const DefaultAGCTargetRMS = 0.3

// Mode selects which audio directions a session opens.
type Mode int

const (
	ModeSend Mode = iota
	ModeReceive
	ModeDuplex
)

// Status represents session lifecycle state.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusReceiving
	StatusCompleted
	StatusError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusReceiving:
		return "receiving"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is sent to listeners when session state changes or bytes arrive.
type Event struct {
	Status  Status
	Message string
	Bytes   []byte
	Error   error
}

// DefaultInactivityTimeout is the reference watchdog window (spec default:
// 2s of no confident frames triggers a ResetState).
const DefaultInactivityTimeout = 2 * time.Second

// Session owns the audio device lifecycle and drives a codec.Codec across
// it: StartReceiving reads the input device with blocking FramesPerBuf-sized
// reads and calls Push on each chunk from the same goroutine; there is no
// audio callback or shared buffer between them.
type Session struct {
	audioIO *audio.AudioIO
	codec   *codec.Codec
	mode    Mode

	inactivityTimeout time.Duration
	agcTargetRMS      float64

	status    Status
	eventChan chan Event

	hasInput  bool
	hasOutput bool

	stopReceive chan struct{}

	// onSamples, if set, is called with each raw chunk read from the input
	// device before it is pushed through the codec — a hook for diagnostics
	// (e.g. internal/diagnostics.SignalMeter) that need the audio level
	// rather than decoded bytes.
	onSamples func([]float32)
}

// New creates a session driven by c, in the given mode.
func New(c *codec.Codec, mode Mode) *Session {
	return &Session{
		audioIO:           audio.NewAudioIO(),
		codec:             c,
		mode:              mode,
		inactivityTimeout: DefaultInactivityTimeout,
		agcTargetRMS:      DefaultAGCTargetRMS,
		eventChan:         make(chan Event, 100),
	}
}

// SetInactivityTimeout overrides the default watchdog window.
func (s *Session) SetInactivityTimeout(d time.Duration) {
	s.inactivityTimeout = d
}

// SetAGCTargetRMS overrides the default level StartReceiving normalizes
// captured chunks to. Pass 0 to disable the one-shot AGC adjustment
// entirely and feed the codec raw capture levels.
func (s *Session) SetAGCTargetRMS(target float64) {
	s.agcTargetRMS = target
}

// SetOnSamples installs a hook called with each raw chunk read from the
// input device during StartReceiving, before it reaches the codec. Pass
// nil to disable.
func (s *Session) SetOnSamples(fn func([]float32)) {
	s.onSamples = fn
}

// Open initializes the audio I/O based on the session mode.
func (s *Session) Open() error {
	s.setStatus(StatusConnecting, "opening audio devices")

	switch s.mode {
	case ModeSend:
		if err := s.audioIO.OpenOutput(); err != nil {
			s.setStatus(StatusError, fmt.Sprintf("audio output open failed: %v", err))
			return err
		}
		s.hasOutput = true

	case ModeReceive:
		if err := s.audioIO.OpenInput(); err != nil {
			s.setStatus(StatusError, fmt.Sprintf("audio input open failed: %v", err))
			return err
		}
		s.hasInput = true

	case ModeDuplex:
		if err := s.audioIO.OpenDuplex(); err != nil {
			s.setStatus(StatusError, fmt.Sprintf("audio open failed: %v", err))
			return err
		}
		s.hasInput = true
		s.hasOutput = true
	}

	s.setStatus(StatusConnected, "audio devices ready")
	return nil
}

// Close releases all resources and stops any running receive loop.
func (s *Session) Close() error {
	if s.stopReceive != nil {
		close(s.stopReceive)
		s.stopReceive = nil
	}
	s.setStatus(StatusDisconnected, "session closed")
	return s.audioIO.Close()
}

// Events returns the event channel for monitoring session state and
// incoming bytes.
func (s *Session) Events() <-chan Event {
	return s.eventChan
}

// Send modulates and transmits payload in one blocking write.
func (s *Session) Send(payload []byte) error {
	if !s.hasOutput {
		return fmt.Errorf("session: no output device available")
	}

	samples := s.codec.Encode(payload)

	if err := s.audioIO.StartOutput(); err != nil {
		return fmt.Errorf("session: start output: %w", err)
	}
	defer s.audioIO.StopOutput()

	return s.audioIO.WriteSamples(samples)
}

// StartReceiving launches a blocking receive loop that reads audio in
// FramesPerBuf chunks, pushes them through the codec, and emits decoded
// bytes and status transitions on Events(). It returns when Close is
// called. The inactivity watchdog lives here, not in the codec: an
// external wall-clock timer is exactly what the core's design expects.
func (s *Session) StartReceiving() error {
	if !s.hasInput {
		return fmt.Errorf("session: no input device available")
	}
	if err := s.audioIO.StartInput(); err != nil {
		return fmt.Errorf("session: start input: %w", err)
	}
	defer s.audioIO.StopInput()

	s.stopReceive = make(chan struct{})
	lastEmission := time.Now()

	for {
		select {
		case <-s.stopReceive:
			return nil
		default:
		}

		chunk, err := s.audioIO.Read()
		if err != nil {
			s.setStatus(StatusError, fmt.Sprintf("audio read failed: %v", err))
			return err
		}
		if s.agcTargetRMS > 0 {
			chunk = modem.ApplyAGC(chunk, s.agcTargetRMS)
		}

		if s.onSamples != nil {
			s.onSamples(chunk)
		}

		emitted := s.codec.Push(chunk)
		if len(emitted) > 0 {
			lastEmission = time.Now()
			s.setStatus(StatusReceiving, "")
			s.emitBytes(emitted)
		} else if s.codec.IsReceiving() && time.Since(lastEmission) > s.inactivityTimeout {
			log.Warn("inactivity timeout, resetting decoder state", "timeout", s.inactivityTimeout)
			s.codec.ResetState()
		}
	}
}

// StopReceiving signals an in-progress StartReceiving loop to return.
func (s *Session) StopReceiving() {
	if s.stopReceive != nil {
		close(s.stopReceive)
		s.stopReceive = nil
	}
}

func (s *Session) setStatus(status Status, message string) {
	s.status = status
	event := Event{Status: status, Message: message}
	select {
	case s.eventChan <- event:
	default:
		log.Warn("event channel full, dropping status event", "status", status, "message", message)
	}
}

func (s *Session) emitBytes(b []byte) {
	event := Event{Status: s.status, Bytes: b}
	select {
	case s.eventChan <- event:
	default:
		log.Warn("event channel full, dropping decoded bytes", "count", len(b))
	}
}
