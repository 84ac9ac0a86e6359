// Package modem implements bit-to-tone modulation and Goertzel-based
// frequency-energy detection for the acoustic modem's physical layer.
package modem

import "fmt"

// Modulator is the capability a tone scheme provides to the rest of the
// stack: turn bits into samples, and score a bit-sized window of samples
// against the scheme's two tones. The Frame Analyzer dispatches against this
// interface per frame, not per sample, so indirection cost is negligible —
// FSK (the default) and BPSK (see bpsk.go) both satisfy it and are selectable
// through codec.FileConfig's scheme, and future schemes (QPSK, ...) can be
// added without touching the analyzer or decoder.
type Modulator interface {
	// Modulate renders bits into exactly len(bits)*SamplesPerBit() samples.
	Modulate(bits []bool) []float32

	// AnalyzeBit scores a chunk of samples against the scheme's two tones.
	// It returns (markEnergy, spaceEnergy); the decoded bit is
	// markEnergy > spaceEnergy. chunk may be any length > 0, but is intended
	// to carry one bit's worth of samples.
	AnalyzeBit(chunk []float32) (markEnergy, spaceEnergy float64)

	// SamplesPerBit returns the fixed number of samples one bit occupies.
	SamplesPerBit() int
}

// Config holds the parameters that sender and receiver must agree on.
// Mismatch between two modems is a configuration error, not something the
// wire protocol can detect on its own.
type Config struct {
	SampleRate     int     // Hz, typically 48000
	FreqSpace      float64 // Hz, bit 0 (space), typically 1200
	FreqMark       float64 // Hz, bit 1 (mark), typically 2400
	SamplesPerBit  int     // sample_rate / baud_rate, typically 160 at 300 baud
}

// Validate checks constructor-time configuration errors (§7: fatal, surfaced
// to the caller; never detected mid-stream).
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("modem: sample rate must be positive, got %d", c.SampleRate)
	}
	if c.FreqSpace <= 0 || c.FreqMark <= 0 {
		return fmt.Errorf("modem: frequencies must be positive (space=%v mark=%v)", c.FreqSpace, c.FreqMark)
	}
	if c.FreqSpace >= float64(c.SampleRate)/2 || c.FreqMark >= float64(c.SampleRate)/2 {
		return fmt.Errorf("modem: frequencies must be below Nyquist (%.1f Hz)", float64(c.SampleRate)/2)
	}
	if c.SamplesPerBit < 2 {
		return fmt.Errorf("modem: samples per bit must be >= 2, got %d", c.SamplesPerBit)
	}
	return nil
}

// DefaultConfig returns the reference parameters from spec §6.
func DefaultConfig() Config {
	const sampleRate = 48000
	const baudRate = 300
	return Config{
		SampleRate:    sampleRate,
		FreqSpace:     1200,
		FreqMark:      2400,
		SamplesPerBit: sampleRate / baudRate,
	}
}
