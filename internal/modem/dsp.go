package modem

import "math"

// ApplyDCRemoval removes DC offset from samples using a single-pole
// high-pass filter. Applied by internal/audio.AudioIO.Read to every chunk
// read off the input device, ahead of the codec, so capture-path DC bias
// doesn't skew the Goertzel energy estimate.
func ApplyDCRemoval(samples []float32) []float32 {
	if len(samples) == 0 {
		return samples
	}
	const alpha = 0.999
	out := make([]float32, len(samples))
	dc := float64(samples[0])
	for i, s := range samples {
		dc = alpha*dc + (1-alpha)*float64(s)
		out[i] = float32(float64(s) - dc)
	}
	return out
}

// ApplyAGC normalizes signal level to a target RMS. The leader tone in
// framer.Encode gives a real AGC loop time to settle before the first
// character frame; internal/session.Session.StartReceiving applies this
// one-shot adjustment per chunk as the equivalent for capture paths that
// don't already normalize.
func ApplyAGC(samples []float32, targetRMS float64) []float32 {
	if len(samples) == 0 {
		return samples
	}
	var sumSq float64
	for _, s := range samples {
		sumSq += float64(s) * float64(s)
	}
	rms := math.Sqrt(sumSq / float64(len(samples)))
	if rms < 1e-10 {
		return samples
	}
	gain := targetRMS / rms
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(float64(s) * gain)
	}
	return out
}
