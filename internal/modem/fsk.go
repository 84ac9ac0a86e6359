package modem

import "math"

// FSK is a two-tone Frequency-Shift Keying modulator and Goertzel energy
// detector. Bit 1 ("mark") is a higher tone, bit 0 ("space") a lower one.
// Phase is reset at the start of every bit; the decoder works from tone
// energy, not phase continuity, so phase-discontinuous FSK is acceptable.
type FSK struct {
	cfg Config
}

// NewFSK creates an FSK modulator from a validated Config.
func NewFSK(cfg Config) (*FSK, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &FSK{cfg: cfg}, nil
}

// SamplesPerBit implements Modulator.
func (f *FSK) SamplesPerBit() int { return f.cfg.SamplesPerBit }

// Modulate implements Modulator.
func (f *FSK) Modulate(bits []bool) []float32 {
	out := make([]float32, 0, len(bits)*f.cfg.SamplesPerBit)
	for _, bit := range bits {
		out = append(out, f.genTone(bit)...)
	}
	return out
}

func (f *FSK) genTone(bit bool) []float32 {
	freq := f.cfg.FreqSpace
	if bit {
		freq = f.cfg.FreqMark
	}
	n := f.cfg.SamplesPerBit
	wave := make([]float32, n)
	step := 2 * math.Pi * freq / float64(f.cfg.SampleRate)
	for i := 0; i < n; i++ {
		wave[i] = float32(math.Sin(step * float64(i)))
	}
	return wave
}

// AnalyzeBit implements Modulator using the Goertzel algorithm: an O(N)
// recurrence computing the squared magnitude of a single DFT bin, evaluated
// once for the mark tone and once for the space tone.
func (f *FSK) AnalyzeBit(chunk []float32) (markEnergy, spaceEnergy float64) {
	markEnergy = goertzel(chunk, f.cfg.FreqMark, f.cfg.SampleRate)
	spaceEnergy = goertzel(chunk, f.cfg.FreqSpace, f.cfg.SampleRate)
	return
}

// goertzel computes the Goertzel energy of chunk at target frequency freq,
// sampled at sampleRate. Tolerates any chunk length > 0.
func goertzel(chunk []float32, freq float64, sampleRate int) float64 {
	if len(chunk) == 0 {
		return 0
	}
	omega := 2 * math.Pi * freq / float64(sampleRate)
	cosOmega := math.Cos(omega)
	sinOmega := math.Sin(omega)
	coeff := 2 * cosOmega

	var s0, s1, s2 float64
	for _, x := range chunk {
		s0 = coeff*s1 - s2 + float64(x)
		s2 = s1
		s1 = s0
	}

	real := s1 - s2*cosOmega
	imag := s2 * sinOmega
	return real*real + imag*imag
}
