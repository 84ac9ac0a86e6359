package calib

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeongseonghan/audio-modem/internal/framer"
	"github.com/jeongseonghan/audio-modem/internal/modem"
)

func TestSweep_SeparatesSignalFromSilence(t *testing.T) {
	fsk, err := modem.NewFSK(modem.DefaultConfig())
	require.NoError(t, err)

	payload := []byte("Hi")
	signal := fsk.Modulate(framer.Encode(payload))

	silence := make([]float32, modem.DefaultConfig().SamplesPerBit*20)
	recording := append(append([]float32{}, silence...), signal...)

	result, err := Sweep(recording, fsk)
	require.NoError(t, err)
	require.NotEmpty(t, result.Samples)
	require.Greater(t, result.HighMean, result.LowMean)
	require.Greater(t, result.Threshold, 0.0)
}

func TestSweep_TooShort(t *testing.T) {
	fsk, err := modem.NewFSK(modem.DefaultConfig())
	require.NoError(t, err)

	_, err = Sweep(make([]float32, 4), fsk)
	require.Error(t, err)
}
