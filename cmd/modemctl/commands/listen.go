package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jeongseonghan/audio-modem/internal/audio"
	"github.com/jeongseonghan/audio-modem/internal/diagnostics"
	"github.com/jeongseonghan/audio-modem/internal/filetransfer"
	"github.com/jeongseonghan/audio-modem/internal/framing"
	"github.com/jeongseonghan/audio-modem/internal/session"
)

var (
	flagListenSaveDir string
	flagListenMeter   bool
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Listen for an incoming transmission on the default input device",
	Long: `listen opens the default audio input device and feeds captured
samples through the codec until interrupted.

With --save-dir, incoming bytes are assembled as a tagged file transfer
(see internal/filetransfer) and written under the given directory. Without
it, each framed message is decoded with the length+CRC integrity layer and
printed as text.`,
	RunE: runListen,
}

func init() {
	listenCmd.Flags().StringVar(&flagListenSaveDir, "save-dir", "", "assemble incoming file transfers into this directory")
	listenCmd.Flags().BoolVar(&flagListenMeter, "meter", false, "show a live signal-strength meter")
}

func runListen(cmd *cobra.Command, args []string) error {
	c, err := newCodec()
	if err != nil {
		return err
	}

	if err := audio.Init(); err != nil {
		return fmt.Errorf("modemctl listen: init audio: %w", err)
	}
	defer audio.Terminate()

	sess := session.New(c, session.ModeReceive)
	if err := sess.Open(); err != nil {
		return fmt.Errorf("modemctl listen: open audio input: %w", err)
	}
	defer sess.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var textBuf []byte
	var receiver *filetransfer.Receiver
	if flagListenSaveDir != "" {
		if err := os.MkdirAll(flagListenSaveDir, 0755); err != nil {
			return fmt.Errorf("modemctl listen: create save dir: %w", err)
		}
		receiver = filetransfer.NewReceiver(flagListenSaveDir)
		receiver.SetCorruptionFunc(c.ResetDecoder)
		receiver.SetProgressFunc(func(done, total int64, status string) {
			log.Info(status, "done", done, "total", total)
		})
	}

	if flagListenMeter {
		meter := diagnostics.NewSignalMeter(50, audio.SampleRate)
		fmt.Println(meter.Header())
		sess.SetOnSamples(func(chunk []float32) {
			if line := meter.Process(chunk); line != "" {
				fmt.Print("\r" + line)
			}
		})
	}

	go func() {
		<-ctx.Done()
		sess.StopReceiving()
	}()

	go func() {
		for ev := range sess.Events() {
			if len(ev.Bytes) == 0 {
				continue
			}
			if receiver != nil {
				meta, err := receiver.Push(ev.Bytes)
				if err != nil {
					log.Error("receive failed", "err", err)
					continue
				}
				if meta != nil {
					log.Info("file received", "filename", meta.Filename, "bytes", meta.Size)
				}
				continue
			}

			textBuf = append(textBuf, ev.Bytes...)
			for {
				payload, consumed, ok := framing.Unwrap(textBuf)
				if consumed == 0 {
					break
				}
				textBuf = textBuf[consumed:]
				if ok {
					fmt.Printf("\n--- message received ---\n%s\n\n", string(payload))
				} else {
					log.Warn("dropping corrupted message (CRC mismatch)")
					c.ResetDecoder()
				}
			}
		}
	}()

	log.Info("listening for incoming signals, press ctrl+c to stop")
	if err := sess.StartReceiving(); err != nil {
		return fmt.Errorf("modemctl listen: %w", err)
	}
	return nil
}
