// Package metrics instruments the codec's decode hot path for Prometheus
// scraping. It sits outside internal/decoder (which stays free of
// third-party imports per the core's single-threaded, lock-free contract)
// and attaches through the decoder.Observer hook instead.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements decoder.Observer, exporting counters for every
// search-window iteration the FrameFinder runs and a histogram of the best
// confidence score of each. Attach one per Codec via Codec.SetObserver.
type Recorder struct {
	attempts       prometheus.Counter
	bytesEmitted   prometheus.Counter
	framesRejected prometheus.Counter
	resets         prometheus.Counter
	confidence     prometheus.Histogram
}

// NewRecorder registers a Recorder's collectors against reg. Pass
// prometheus.DefaultRegisterer to use the global registry.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		attempts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "audiomodem",
			Subsystem: "decoder",
			Name:      "candidate_windows_total",
			Help:      "Number of search-window iterations scored by the frame finder.",
		}),
		bytesEmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "audiomodem",
			Subsystem: "decoder",
			Name:      "bytes_emitted_total",
			Help:      "Number of bytes the decoder has emitted.",
		}),
		framesRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "audiomodem",
			Subsystem: "decoder",
			Name:      "frames_rejected_total",
			Help:      "Number of search-window iterations whose best candidate scored below the confidence threshold.",
		}),
		resets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "audiomodem",
			Subsystem: "decoder",
			Name:      "resets_total",
			Help:      "Number of times the decoder's tracking lock was reset.",
		}),
		confidence: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "audiomodem",
			Subsystem: "decoder",
			Name:      "confidence",
			Help:      "Confidence score of the best candidate window per search iteration.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}
}

// OnCandidate implements decoder.Observer.
func (r *Recorder) OnCandidate(confidence float64, accepted bool) {
	r.attempts.Inc()
	r.confidence.Observe(confidence)
	if !accepted {
		r.framesRejected.Inc()
	}
}

// ObserveEmitted records n bytes having been emitted by a Push call.
func (r *Recorder) ObserveEmitted(n int) {
	r.bytesEmitted.Add(float64(n))
}

// ObserveReset records a ResetState/ResetDecoder call.
func (r *Recorder) ObserveReset() {
	r.resets.Inc()
}
