package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeongseonghan/audio-modem/internal/audio"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List available audio input/output devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := audio.Init(); err != nil {
			return fmt.Errorf("modemctl devices: init audio: %w", err)
		}
		defer audio.Terminate()
		return audio.PrintDevices()
	},
}
