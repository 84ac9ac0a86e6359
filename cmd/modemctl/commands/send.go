package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jeongseonghan/audio-modem/internal/audio"
	"github.com/jeongseonghan/audio-modem/internal/filetransfer"
	"github.com/jeongseonghan/audio-modem/internal/framing"
	"github.com/jeongseonghan/audio-modem/internal/session"
)

var flagSendMessage string

var sendCmd = &cobra.Command{
	Use:   "send [file]",
	Short: "Transmit a message or a file over the default output device",
	Long: `send modulates a payload and plays it on the default audio output
device.

With a file argument, the whole file is chunked and transferred with
length+CRC framing (see internal/filetransfer). With --message instead, a
single short text payload is sent as one framed message.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVarP(&flagSendMessage, "message", "m", "", "send this text instead of a file")
}

func runSend(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && flagSendMessage == "" {
		return fmt.Errorf("modemctl send: pass a file path or --message")
	}

	c, err := newCodec()
	if err != nil {
		return err
	}

	if err := audio.Init(); err != nil {
		return fmt.Errorf("modemctl send: init audio: %w", err)
	}
	defer audio.Terminate()

	sess := session.New(c, session.ModeSend)
	if err := sess.Open(); err != nil {
		return fmt.Errorf("modemctl send: open audio output: %w", err)
	}
	defer sess.Close()

	if flagSendMessage != "" {
		log.Info("sending message", "bytes", len(flagSendMessage))
		framed, err := framing.Wrap([]byte(flagSendMessage))
		if err != nil {
			return fmt.Errorf("modemctl send: frame message: %w", err)
		}
		return sess.Send(framed)
	}

	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("modemctl send: %w", err)
	}

	log.Info("sending file", "path", path)
	return filetransfer.SendFile(sess, path, func(sent, total int64, status string) {
		log.Info(status, "sent", sent, "total", total)
	})
}
