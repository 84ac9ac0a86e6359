package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_OnCandidate(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.OnCandidate(1.2, false)
	r.OnCandidate(3.4, true)
	r.ObserveEmitted(5)
	r.ObserveReset()

	mfs, err := reg.Gather()
	require.NoError(t, err)

	var found map[string]float64 = make(map[string]float64)
	for _, mf := range mfs {
		for _, m := range mf.Metric {
			switch {
			case m.Counter != nil:
				found[mf.GetName()] = m.Counter.GetValue()
			case m.Histogram != nil:
				found[mf.GetName()] = float64(m.Histogram.GetSampleCount())
			}
		}
	}

	assert.Equal(t, float64(2), found["audiomodem_decoder_candidate_windows_total"])
	assert.Equal(t, float64(1), found["audiomodem_decoder_frames_rejected_total"])
	assert.Equal(t, float64(5), found["audiomodem_decoder_bytes_emitted_total"])
	assert.Equal(t, float64(1), found["audiomodem_decoder_resets_total"])
	assert.Equal(t, float64(2), found["audiomodem_decoder_confidence"])
}
