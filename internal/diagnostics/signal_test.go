package diagnostics

import "testing"

func TestSignalMeter_SilentChunkSkipsRender(t *testing.T) {
	m := NewSignalMeter(20, 48000)
	if got := m.Process(make([]float32, 100)); got != "" {
		t.Errorf("Process(silence) = %q, want empty", got)
	}
}

func TestSignalMeter_LoudChunkRenders(t *testing.T) {
	m := NewSignalMeter(20, 48000)
	samples := make([]float32, 100)
	for i := range samples {
		samples[i] = 0.8
	}
	if got := m.Process(samples); got == "" {
		t.Error("Process(loud) = empty, want a rendered meter line")
	}
}

func TestSignalMeter_Header(t *testing.T) {
	m := NewSignalMeter(10, 48000)
	if got := m.Header(); got == "" {
		t.Error("Header() = empty")
	}
}
