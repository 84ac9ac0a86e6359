package decoder

import (
	"bytes"
	"math"
	"testing"

	"github.com/jeongseonghan/audio-modem/internal/framer"
	"github.com/jeongseonghan/audio-modem/internal/modem"
	"pgregory.net/rapid"
)

func newTestFinder(t *testing.T) (*FrameFinder, *modem.FSK) {
	t.Helper()
	fsk, err := modem.NewFSK(modem.DefaultConfig())
	if err != nil {
		t.Fatalf("NewFSK: %v", err)
	}
	return New(fsk, DefaultConfidenceThreshold), fsk
}

// scenario 1: minimal round-trip.
func TestDecoder_MinimalRoundTrip(t *testing.T) {
	f, fsk := newTestFinder(t)
	samples := fsk.Modulate(framer.Encode([]byte{0x41}))

	got := f.Push(samples)
	if !bytes.Equal(got, []byte{0x41}) {
		t.Errorf("Push = %v, want [0x41]", got)
	}
}

// scenario 2: multi-byte, in order.
func TestDecoder_MultiByte(t *testing.T) {
	f, fsk := newTestFinder(t)
	payload := []byte("Hello")
	samples := fsk.Modulate(framer.Encode(payload))

	got := f.Push(samples)
	if !bytes.Equal(got, payload) {
		t.Errorf("Push = %v, want %v", got, payload)
	}
}

// scenario 3: fragmented push, arbitrary chunk size.
func TestDecoder_FragmentedPush(t *testing.T) {
	f, fsk := newTestFinder(t)
	payload := []byte("Hello")
	samples := fsk.Modulate(framer.Encode(payload))

	var got []byte
	const chunkSize = 37
	for i := 0; i < len(samples); i += chunkSize {
		end := i + chunkSize
		if end > len(samples) {
			end = len(samples)
		}
		got = append(got, f.Push(samples[i:end])...)
	}

	if !bytes.Equal(got, payload) {
		t.Errorf("fragmented Push concatenation = %v, want %v", got, payload)
	}
}

// scenario 4: leading silence tolerance.
func TestDecoder_LeadingSilence(t *testing.T) {
	f, fsk := newTestFinder(t)
	silence := make([]float32, 48000)
	samples := append(silence, fsk.Modulate(framer.Encode([]byte{0x7E}))...)

	got := f.Push(samples)
	if !bytes.Equal(got, []byte{0x7E}) {
		t.Errorf("Push = %v, want [0x7E]", got)
	}
}

// scenario 5: framing error, wrong start bit.
func TestDecoder_FramingErrorWrongStartBit(t *testing.T) {
	f, fsk := newTestFinder(t)
	bits := []bool{true, true, false, false, false, false, false, true, false, true}
	samples := fsk.Modulate(bits)

	got := f.Push(samples)
	if len(got) != 0 {
		t.Errorf("Push = %v, want no emission for bad start bit", got)
	}
}

// scenario 6: two messages separated by silence, with an explicit
// ResetState call standing in for the external inactivity watchdog.
func TestDecoder_TwoMessagesWithReset(t *testing.T) {
	f, fsk := newTestFinder(t)

	first := fsk.Modulate(framer.Encode([]byte{0x31}))
	gap := make([]float32, 24000)
	second := fsk.Modulate(framer.Encode([]byte{0x32}))

	got1 := f.Push(first)
	if !bytes.Equal(got1, []byte{0x31}) {
		t.Fatalf("first Push = %v, want [0x31]", got1)
	}

	f.Push(gap)
	f.ResetState()

	got2 := f.Push(second)
	if !bytes.Equal(got2, []byte{0x32}) {
		t.Errorf("second Push = %v, want [0x32]", got2)
	}
}

func TestDecoder_NoiseRobustness(t *testing.T) {
	f, fsk := newTestFinder(t)
	payload := []byte("Hello, World!\n")
	samples := fsk.Modulate(framer.Encode(payload))

	noisy := addNoiseAtSNR(samples, 20, 12345)

	got := f.Push(noisy)
	if !bytes.Equal(got, payload) {
		t.Errorf("noisy Push = %q, want %q", got, payload)
	}
}

// addNoiseAtSNR adds deterministic pseudo-white noise at the requested
// signal/noise RMS ratio (in dB), using a simple linear congruential
// generator so the test has no external randomness dependency.
func addNoiseAtSNR(samples []float32, snrDB float64, seed uint64) []float32 {
	var sumSq float64
	for _, s := range samples {
		sumSq += float64(s) * float64(s)
	}
	signalRMS := math.Sqrt(sumSq / float64(len(samples)))
	noiseRMS := signalRMS / math.Pow(10, snrDB/20)

	out := make([]float32, len(samples))
	state := seed
	for i, s := range samples {
		state = state*6364136223846793005 + 1442695040888963407
		u := (float64(state>>11) / float64(1<<53)) - 0.5
		out[i] = s + float32(u*2*noiseRMS*math.Sqrt(3))
	}
	return out
}

func TestDecoder_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		payload := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(rt, "payload")

		fsk, err := modem.NewFSK(modem.DefaultConfig())
		if err != nil {
			t.Fatalf("NewFSK: %v", err)
		}
		f := New(fsk, DefaultConfidenceThreshold)
		samples := fsk.Modulate(framer.Encode(payload))

		got := f.Push(samples)
		if !bytes.Equal(got, payload) {
			rt.Fatalf("round trip got %v, want %v", got, payload)
		}
	})
}

func TestDecoder_ChunkingInvarianceProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		payload := rapid.SliceOfN(rapid.Byte(), 1, 32).Draw(rt, "payload")
		chunkSize := rapid.IntRange(17, 401).Draw(rt, "chunkSize")

		fsk, err := modem.NewFSK(modem.DefaultConfig())
		if err != nil {
			t.Fatalf("NewFSK: %v", err)
		}
		f := New(fsk, DefaultConfidenceThreshold)
		samples := fsk.Modulate(framer.Encode(payload))

		var got []byte
		for i := 0; i < len(samples); i += chunkSize {
			end := i + chunkSize
			if end > len(samples) {
				end = len(samples)
			}
			got = append(got, f.Push(samples[i:end])...)
		}

		if !bytes.Equal(got, payload) {
			rt.Fatalf("chunked round trip got %v, want %v (chunkSize=%d)", got, payload, chunkSize)
		}
	})
}
