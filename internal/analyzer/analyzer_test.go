package analyzer

import (
	"testing"

	"github.com/jeongseonghan/audio-modem/internal/framer"
	"github.com/jeongseonghan/audio-modem/internal/modem"
)

func TestAnalyzer_DecodesValidFrame(t *testing.T) {
	fsk, err := modem.NewFSK(modem.DefaultConfig())
	if err != nil {
		t.Fatalf("NewFSK: %v", err)
	}
	a := New(fsk)

	bits := framer.EncodeNoLeader([]byte{0x41})
	samples := fsk.Modulate(bits)

	result := a.Analyze(samples)
	if result.Confidence <= 0 {
		t.Fatalf("Confidence = %v, want > 0", result.Confidence)
	}
	if result.Byte != 0x41 {
		t.Errorf("Byte = 0x%02X, want 0x41", result.Byte)
	}
}

func TestAnalyzer_RejectsWrongStartBit(t *testing.T) {
	fsk, _ := modem.NewFSK(modem.DefaultConfig())
	a := New(fsk)

	// Start bit = true (should be space/false) invalidates the frame.
	bits := []bool{true, true, false, false, false, false, false, true, false, true}
	samples := fsk.Modulate(bits)

	result := a.Analyze(samples)
	if result.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0 for wrong start bit", result.Confidence)
	}
}

func TestAnalyzer_RejectsWrongStopBit(t *testing.T) {
	fsk, _ := modem.NewFSK(modem.DefaultConfig())
	a := New(fsk)

	bits := []bool{false, true, false, false, false, false, false, true, false, false}
	samples := fsk.Modulate(bits)

	result := a.Analyze(samples)
	if result.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0 for wrong stop bit", result.Confidence)
	}
}

func TestAnalyzer_ShortWindowRejected(t *testing.T) {
	fsk, _ := modem.NewFSK(modem.DefaultConfig())
	a := New(fsk)

	result := a.Analyze(make([]float32, 10))
	if result.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0 for short window", result.Confidence)
	}
}

func TestAnalyzer_SamplesPerCharacter(t *testing.T) {
	fsk, _ := modem.NewFSK(modem.DefaultConfig())
	a := New(fsk)
	want := fsk.SamplesPerBit() * 10
	if a.SamplesPerCharacter() != want {
		t.Errorf("SamplesPerCharacter() = %d, want %d", a.SamplesPerCharacter(), want)
	}
}
