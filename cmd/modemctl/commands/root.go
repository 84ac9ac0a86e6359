// Package commands implements modemctl's cobra command tree.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeongseonghan/audio-modem/internal/codec"
)

var (
	flagScheme              string
	flagSampleRate          int
	flagFreqSpace           float64
	flagFreqMark            float64
	flagBaudRate            int
	flagConfidenceThreshold float64
	flagConfigFile          string
)

var rootCmd = &cobra.Command{
	Use:   "modemctl",
	Short: "Acoustic FSK modem control",
	Long: `modemctl transmits and receives data over speakers and microphones
using FSK tones and a Goertzel-based energy detector.

Modem parameters (sample rate, baud rate, tone frequencies, confidence
threshold) can be set via flags or loaded from a YAML config file with
--config; sender and receiver must agree on all of them.`,
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaults := codec.DefaultConfig()

	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "YAML config file (overrides flags below)")
	rootCmd.PersistentFlags().StringVar(&flagScheme, "scheme", "fsk", "modulation scheme: fsk or bpsk")
	rootCmd.PersistentFlags().IntVar(&flagSampleRate, "sample-rate", defaults.Modem.SampleRate, "audio sample rate, Hz")
	rootCmd.PersistentFlags().Float64Var(&flagFreqSpace, "freq-space", defaults.Modem.FreqSpace, "space tone frequency, Hz")
	rootCmd.PersistentFlags().Float64Var(&flagFreqMark, "freq-mark", defaults.Modem.FreqMark, "mark tone frequency, Hz")
	rootCmd.PersistentFlags().IntVar(&flagBaudRate, "baud", defaults.Modem.SampleRate/defaults.Modem.SamplesPerBit, "baud rate, bits/sec")
	rootCmd.PersistentFlags().Float64Var(&flagConfidenceThreshold, "threshold", defaults.ConfidenceThreshold, "confidence threshold to accept a frame")

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(calibrateCmd)
	rootCmd.AddCommand(serveCmd)
}

// resolveFileConfig loads flagConfigFile if set, otherwise builds a
// FileConfig from the persistent flags.
func resolveFileConfig() (codec.FileConfig, error) {
	if flagConfigFile != "" {
		return codec.LoadFileConfig(flagConfigFile)
	}
	return codec.FileConfig{
		Scheme:              flagScheme,
		SampleRate:          flagSampleRate,
		FreqSpace:           flagFreqSpace,
		FreqMark:            flagFreqMark,
		BaudRate:            flagBaudRate,
		ConfidenceThreshold: flagConfidenceThreshold,
	}, nil
}

// newCodec builds a Codec from the resolved config.
func newCodec() (*codec.Codec, error) {
	fc, err := resolveFileConfig()
	if err != nil {
		return nil, fmt.Errorf("modemctl: loading config: %w", err)
	}
	mod, err := fc.NewModulator()
	if err != nil {
		return nil, fmt.Errorf("modemctl: building modulator: %w", err)
	}
	return codec.New(mod, fc.Config()), nil
}
