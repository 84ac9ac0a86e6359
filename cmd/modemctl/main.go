// Command modemctl drives the acoustic FSK modem: sending and listening for
// payloads over speakers/microphones, enumerating audio devices, sweeping a
// recording to suggest a confidence_threshold, and serving the browser file-
// transfer UI.
package main

import (
	"os"

	"github.com/charmbracelet/log"

	"github.com/jeongseonghan/audio-modem/cmd/modemctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		log.Error("modemctl failed", "err", err)
		os.Exit(1)
	}
}
