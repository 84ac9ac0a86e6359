// Package decoder implements the FrameFinder: a stateful sliding-window
// search over an append-only sample buffer that discovers frame alignment,
// emits decoded bytes in stream order, and drains consumed samples.
package decoder

import (
	"math"

	"github.com/jeongseonghan/audio-modem/internal/analyzer"
	"github.com/jeongseonghan/audio-modem/internal/modem"
)

// DefaultConfidenceThreshold is the reference threshold from the default
// parameter set (tunable 1.5-5.0).
const DefaultConfidenceThreshold = 2.0

// searchWindowSearchingMul and searchWindowTrackingMul are expressed as
// multiples of samples_per_bit per the state machine: wide while hunting
// for first alignment, narrow once locked.
const (
	searchWindowSearchingMul = 1.5
	searchWindowTrackingMul  = 0.5
)

// Observer receives one notification per search-window iteration of Push,
// reporting the best candidate's confidence and whether it cleared the
// threshold. It exists so callers can instrument the decode hot path (e.g.
// exporting a confidence histogram) without the core importing a metrics
// library itself.
type Observer interface {
	OnCandidate(confidence float64, accepted bool)
}

// FrameFinder owns the audio buffer and mode state for one listening
// session. It is not safe for concurrent use; callers serialize Push calls
// themselves (typically from a single audio callback goroutine).
type FrameFinder struct {
	analyzer  *analyzer.Analyzer
	threshold float64

	samplesPerBit float64
	spc           int

	buffer      []float32
	isReceiving bool
	observer    Observer
}

// New creates a FrameFinder driven by mod's tone pair, accepting frames
// whose confidence is at least threshold.
func New(mod modem.Modulator, threshold float64) *FrameFinder {
	a := analyzer.New(mod)
	return &FrameFinder{
		analyzer:      a,
		threshold:     threshold,
		samplesPerBit: float64(mod.SamplesPerBit()),
		spc:           a.SamplesPerCharacter(),
	}
}

// IsReceiving reports whether the decoder is currently locked onto a frame
// stream (Tracking mode) as opposed to searching for first alignment.
func (f *FrameFinder) IsReceiving() bool {
	return f.isReceiving
}

// SetObserver installs o to receive one notification per search-window
// iteration of Push (the best candidate of that window). Pass nil to
// disable. Not safe to call concurrently with Push.
func (f *FrameFinder) SetObserver(o Observer) {
	f.observer = o
}

// BufferLen returns the number of samples currently buffered awaiting
// analysis. Exposed for watchdog/diagnostic use (a buffer that grows
// without bound while is_receiving is true indicates a stuck decode).
func (f *FrameFinder) BufferLen() int {
	return len(f.buffer)
}

// Push appends newSamples to the audio buffer and runs the search loop,
// returning any bytes decoded in this call, in the order their frames
// begin in the sample stream. A nil/empty return means no confident frame
// was found yet; more samples are needed.
func (f *FrameFinder) Push(newSamples []float32) []byte {
	f.buffer = append(f.buffer, newSamples...)

	var emitted []byte
	cursor := 0

	for {
		searchWindow := f.searchWindowSamples()
		if cursor+searchWindow+f.spc > len(f.buffer) {
			break
		}

		bestConfidence := 0.0
		bestByte := byte(0)
		bestOffset := -1

		for offset := 0; offset < searchWindow; offset++ {
			start := cursor + offset
			window := f.buffer[start : start+f.spc]
			result := f.analyzer.Analyze(window)
			if result.Confidence > bestConfidence {
				bestConfidence = result.Confidence
				bestByte = result.Byte
				bestOffset = offset
			}
		}

		accepted := bestConfidence >= f.threshold
		if f.observer != nil {
			f.observer.OnCandidate(bestConfidence, accepted)
		}

		if accepted {
			emitted = append(emitted, bestByte)
			f.isReceiving = true
			cursor = cursor + bestOffset + f.spc
			continue
		}

		// No hit anywhere in this search window: drain it to bound buffer
		// growth on pure noise. In Searching mode keep scanning the rest of
		// the buffer. In Tracking mode a run of misses is what the external
		// inactivity watchdog measures; within one push we just drop out
		// rather than thrash.
		cursor += searchWindow
		if f.isReceiving {
			break
		}
	}

	f.drain(cursor)
	return emitted
}

// searchWindowSamples returns the current mode's search window, in
// samples, rounded to at least 1.
func (f *FrameFinder) searchWindowSamples() int {
	mul := searchWindowSearchingMul
	if f.isReceiving {
		mul = searchWindowTrackingMul
	}
	n := int(math.Round(f.samplesPerBit * mul))
	if n < 1 {
		n = 1
	}
	return n
}

// drain removes the first n samples of the buffer: they have either been
// consumed by an accepted frame or conclusively rejected by the search
// loop's cursor advance.
func (f *FrameFinder) drain(n int) {
	if n <= 0 {
		return
	}
	if n >= len(f.buffer) {
		f.buffer = f.buffer[:0]
		return
	}
	f.buffer = append(f.buffer[:0], f.buffer[n:]...)
}

// ResetState returns the decoder to Searching mode without discarding the
// audio buffer. Intended for the external inactivity watchdog: the decoder
// lost lock, but in-flight samples may still contain the start of the next
// frame.
func (f *FrameFinder) ResetState() {
	f.isReceiving = false
}

// ResetDecoder returns the decoder to Searching mode AND discards the
// audio buffer. Intended for a higher integrity layer (CRC/length framing)
// to call when it detects corruption it cannot recover from, unlike
// ResetState's buffer-preserving signal-loss reset.
func (f *FrameFinder) ResetDecoder() {
	f.isReceiving = false
	f.buffer = f.buffer[:0]
}
