// Package codec provides the Codec facade described in the external
// interface: encode is a pure function; decode (push) is stateful and owns
// a FrameFinder across a listening session.
package codec

import (
	"github.com/jeongseonghan/audio-modem/internal/decoder"
	"github.com/jeongseonghan/audio-modem/internal/framer"
	"github.com/jeongseonghan/audio-modem/internal/modem"
)

// Config collects the modem and confidence parameters a codec needs. It
// corresponds to the spec's Codec configuration layered over the Modem
// configuration.
type Config struct {
	Modem               modem.Config
	ConfidenceThreshold float64
}

// DefaultConfig returns the reference parameter set: 48 kHz, 300 baud,
// 1200/2400 Hz tones, confidence threshold 2.0.
func DefaultConfig() Config {
	return Config{
		Modem:               modem.DefaultConfig(),
		ConfidenceThreshold: decoder.DefaultConfidenceThreshold,
	}
}

// Codec bundles an encode path (stateless) with a decode path (the
// FrameFinder, stateful). No global state: multiple independent Codecs may
// coexist in one process.
type Codec struct {
	mod    modem.Modulator
	finder *decoder.FrameFinder
}

// New creates a Codec over mod using cfg's confidence threshold. Pass a
// *modem.FSK or *modem.BPSK (or any other Modulator) to select the tone
// scheme; the codec itself is agnostic to which.
func New(mod modem.Modulator, cfg Config) *Codec {
	return &Codec{
		mod:    mod,
		finder: decoder.New(mod, cfg.ConfidenceThreshold),
	}
}

// Encode renders payload into samples: leader tone, one character frame per
// byte, trailer tone. Pure — no codec state is read or written.
func (c *Codec) Encode(payload []byte) []float32 {
	return c.mod.Modulate(framer.Encode(payload))
}

// Push feeds samples into the decoder and returns any bytes decoded, in
// stream order. A nil/empty return means no confident frame completed yet.
func (c *Codec) Push(samples []float32) []byte {
	return c.finder.Push(samples)
}

// ResetState returns the decoder to Searching mode without discarding
// buffered samples. Call this from an external inactivity watchdog (the
// core does not run its own timers).
func (c *Codec) ResetState() {
	c.finder.ResetState()
}

// ResetDecoder returns the decoder to Searching mode AND discards buffered
// samples, for use by a higher integrity layer after an unrecoverable
// framing error.
func (c *Codec) ResetDecoder() {
	c.finder.ResetDecoder()
}

// IsReceiving reports whether the decoder currently holds a tracking lock.
func (c *Codec) IsReceiving() bool {
	return c.finder.IsReceiving()
}

// SetObserver installs o to receive one notification per search-window
// iteration the decoder runs, carrying that window's best candidate, for
// instrumentation (see internal/metrics).
func (c *Codec) SetObserver(o decoder.Observer) {
	c.finder.SetObserver(o)
}

// BufferLen exposes the decoder's pending sample count, for watchdog and
// diagnostic use.
func (c *Codec) BufferLen() int {
	return c.finder.BufferLen()
}
