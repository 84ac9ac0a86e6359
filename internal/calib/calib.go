// Package calib answers the design notes' open question on the confidence
// scale: rather than standardize the formula, it sweeps a recorded sample
// set and reports the confidence_threshold value that best separates the
// population of framing-valid candidate windows into an "accepted" and a
// "rejected" cluster.
package calib

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/jeongseonghan/audio-modem/internal/analyzer"
	"github.com/jeongseonghan/audio-modem/internal/modem"
)

// Sample is one scored candidate window collected while sweeping a
// recording: its offset in the source buffer and the confidence the
// analyzer assigned it. Offsets where the framing check rejected the
// window outright (confidence exactly 0) are not candidates and are
// excluded before clustering.
type Sample struct {
	Offset     int
	Confidence float64
}

// Result is the outcome of a calibration sweep.
type Result struct {
	// Samples is every framing-valid candidate window found, in offset
	// order.
	Samples []Sample
	// Threshold is the suggested confidence_threshold: the cut point that
	// maximizes between-cluster variance (an Otsu-style 1D split) between
	// the low-confidence (noise/spurious) and high-confidence (real frame)
	// populations.
	Threshold float64
	// LowMean and HighMean are the mean confidence of each side of the
	// split, for the caller to sanity-check separation quality.
	LowMean, HighMean float64
}

// Sweep scores every offset in samples against mod's tone pair (one
// character-window's worth of samples at a time, stepping one sample per
// offset) and returns the framing-valid candidates plus a suggested
// threshold. Intended for an offline recording of known traffic, not the
// live decode path — it is O(len(samples) * samples_per_character).
func Sweep(samples []float32, mod modem.Modulator) (Result, error) {
	a := analyzer.New(mod)
	spc := a.SamplesPerCharacter()
	if len(samples) < spc {
		return Result{}, fmt.Errorf("calib: need at least %d samples, got %d", spc, len(samples))
	}

	var candidates []Sample
	for offset := 0; offset+spc <= len(samples); offset++ {
		res := a.Analyze(samples[offset : offset+spc])
		if res.Confidence <= 0 {
			continue
		}
		candidates = append(candidates, Sample{Offset: offset, Confidence: res.Confidence})
	}

	if len(candidates) == 0 {
		return Result{}, fmt.Errorf("calib: no framing-valid candidate windows found in recording")
	}

	threshold, lowMean, highMean := otsuSplit(candidates)
	return Result{Samples: candidates, Threshold: threshold, LowMean: lowMean, HighMean: highMean}, nil
}

// otsuSplit finds the confidence cut point maximizing between-cluster
// variance, the standard 1D Otsu threshold-selection method, using
// gonum/stat for the per-side means.
func otsuSplit(candidates []Sample) (cut, lowMean, highMean float64) {
	values := make([]float64, len(candidates))
	for i, c := range candidates {
		values[i] = c.Confidence
	}
	sort.Float64s(values)

	if len(values) == 1 {
		return values[0], values[0], values[0]
	}

	var bestVariance float64
	var bestCut float64
	var bestLow, bestHigh float64

	for i := 1; i < len(values); i++ {
		low := values[:i]
		high := values[i:]

		lowMeanCandidate := stat.Mean(low, nil)
		highMeanCandidate := stat.Mean(high, nil)

		wLow := float64(len(low)) / float64(len(values))
		wHigh := float64(len(high)) / float64(len(values))
		between := wLow * wHigh * (highMeanCandidate - lowMeanCandidate) * (highMeanCandidate - lowMeanCandidate)

		if between >= bestVariance {
			bestVariance = between
			bestCut = (values[i-1] + values[i]) / 2
			bestLow = lowMeanCandidate
			bestHigh = highMeanCandidate
		}
	}

	return bestCut, bestLow, bestHigh
}
