// Package analyzer implements the Frame Analyzer: given a fixed-length
// window of samples, it scores how likely the window holds a character
// frame and, if so, decodes the byte.
package analyzer

import (
	"math"

	"github.com/jeongseonghan/audio-modem/internal/modem"
)

// epsilon guards the SNR and divergence ratios against division by zero on
// near-silent windows.
const epsilon = 1e-9

// bitsPerCharacter is the fixed frame width: 1 start + 8 data + 1 stop.
const bitsPerCharacter = 10

// Result is the outcome of analyzing one candidate window.
type Result struct {
	Confidence float64
	Byte       byte
}

// Analyzer scores candidate windows against a Modulator's tone pair.
type Analyzer struct {
	mod           modem.Modulator
	samplesPerBit float64
}

// New creates an Analyzer driven by mod's AnalyzeBit/SamplesPerBit.
func New(mod modem.Modulator) *Analyzer {
	return &Analyzer{mod: mod, samplesPerBit: float64(mod.SamplesPerBit())}
}

// SamplesPerCharacter returns round(samples_per_bit * 10).
func (a *Analyzer) SamplesPerCharacter() int {
	return int(math.Round(a.samplesPerBit * bitsPerCharacter))
}

// Analyze scores window, which must hold exactly SamplesPerCharacter
// samples. A confidence of 0 means the window is not a valid frame at this
// offset; the returned byte is meaningless in that case.
func (a *Analyzer) Analyze(window []float32) Result {
	spc := a.SamplesPerCharacter()
	if len(window) < spc {
		return Result{}
	}

	var signal, noise [bitsPerCharacter]float64
	var bits [bitsPerCharacter]bool

	for i := 0; i < bitsPerCharacter; i++ {
		start := int(math.Round(float64(i) * a.samplesPerBit))
		end := int(math.Round(float64(i+1) * a.samplesPerBit))
		if end > len(window) {
			end = len(window)
		}
		if start >= end {
			return Result{}
		}
		markEnergy, spaceEnergy := a.mod.AnalyzeBit(window[start:end])
		bit := markEnergy > spaceEnergy
		bits[i] = bit
		if bit {
			signal[i] = markEnergy
			noise[i] = spaceEnergy
		} else {
			signal[i] = spaceEnergy
			noise[i] = markEnergy
		}
	}

	// Framing check: start bit must be space, stop bit must be mark.
	if bits[0] != false || bits[bitsPerCharacter-1] != true {
		return Result{}
	}

	confidence := a.confidence(bits, signal, noise)

	var b byte
	for i := 0; i < 8; i++ {
		if bits[i+1] {
			b |= 1 << uint(i)
		}
	}

	return Result{Confidence: confidence, Byte: b}
}

// confidence implements the spec's concrete formula: SNR scaled down by
// normalized intra-frame divergence from the per-class (mark/space)
// average signal.
func (a *Analyzer) confidence(bits [bitsPerCharacter]bool, signal, noise [bitsPerCharacter]float64) float64 {
	var sumSignal, sumNoise float64
	var markSum, spaceSum float64
	var markCount, spaceCount int
	for i := 0; i < bitsPerCharacter; i++ {
		sumSignal += signal[i]
		sumNoise += noise[i]
		if bits[i] {
			markSum += signal[i]
			markCount++
		} else {
			spaceSum += signal[i]
			spaceCount++
		}
	}
	snr := sumSignal / (sumNoise + epsilon)

	var avgMark, avgSpace float64
	if markCount > 0 {
		avgMark = markSum / float64(markCount)
	}
	if spaceCount > 0 {
		avgSpace = spaceSum / float64(spaceCount)
	}

	var divergenceSum float64
	for i := 0; i < bitsPerCharacter; i++ {
		avgForBit := avgSpace
		if bits[i] {
			avgForBit = avgMark
		}
		divergenceSum += math.Abs(signal[i]-avgForBit) / (avgForBit + epsilon)
	}
	normalizedDivergence := divergenceSum / float64(bitsPerCharacter)

	return snr * math.Max(0, 1-normalizedDivergence)
}
