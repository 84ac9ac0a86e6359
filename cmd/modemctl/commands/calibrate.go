package commands

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jeongseonghan/audio-modem/internal/audio"
	"github.com/jeongseonghan/audio-modem/internal/calib"
)

var flagCalibrateDuration time.Duration

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Record a known transmission and suggest a confidence_threshold",
	Long: `calibrate records from the default input device for a fixed
duration, scores every candidate window in the recording against the
configured modulation scheme, and suggests a confidence_threshold that
separates real frames from noise (an Otsu-style split over the
recorded confidence population).

Run this while the peer is transmitting a repeating known message, so
the recording contains real traffic to calibrate against.`,
	RunE: runCalibrate,
}

func init() {
	calibrateCmd.Flags().DurationVar(&flagCalibrateDuration, "duration", 10*time.Second, "how long to record before analyzing")
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	fc, err := resolveFileConfig()
	if err != nil {
		return fmt.Errorf("modemctl calibrate: %w", err)
	}
	mod, err := fc.NewModulator()
	if err != nil {
		return fmt.Errorf("modemctl calibrate: building modulator: %w", err)
	}

	if err := audio.Init(); err != nil {
		return fmt.Errorf("modemctl calibrate: init audio: %w", err)
	}
	defer audio.Terminate()

	io := audio.NewAudioIO()
	if err := io.OpenInput(); err != nil {
		return fmt.Errorf("modemctl calibrate: open input: %w", err)
	}
	defer io.Close()

	if err := io.StartInput(); err != nil {
		return fmt.Errorf("modemctl calibrate: start input: %w", err)
	}
	defer io.StopInput()

	n := int(flagCalibrateDuration.Seconds() * float64(audio.SampleRate))
	log.Info("recording", "duration", flagCalibrateDuration)
	samples, err := io.ReadSamples(n)
	if err != nil {
		return fmt.Errorf("modemctl calibrate: read samples: %w", err)
	}

	result, err := calib.Sweep(samples, mod)
	if err != nil {
		return fmt.Errorf("modemctl calibrate: %w", err)
	}

	fmt.Printf("candidates scored: %d\n", len(result.Samples))
	fmt.Printf("low cluster mean:  %.4f\n", result.LowMean)
	fmt.Printf("high cluster mean: %.4f\n", result.HighMean)
	fmt.Printf("suggested confidence_threshold: %.4f\n", result.Threshold)
	return nil
}
