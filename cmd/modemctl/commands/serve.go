package commands

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jeongseonghan/audio-modem/internal/audio"
	"github.com/jeongseonghan/audio-modem/internal/metrics"
	"github.com/jeongseonghan/audio-modem/internal/server"
)

var (
	flagServeAddr       string
	flagServeUploadDir  string
	flagServeReceiveDir string
	flagServeStaticDir  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the browser-based file-transfer UI",
	Long: `serve starts an HTTP server exposing a web UI and WebSocket feed
for sending and receiving files over the modem, plus a Prometheus
/metrics endpoint instrumenting the decode hot path.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "0.0.0.0:8080", "listen address")
	serveCmd.Flags().StringVar(&flagServeUploadDir, "upload-dir", "./uploads", "directory for uploaded files awaiting send")
	serveCmd.Flags().StringVar(&flagServeReceiveDir, "receive-dir", "./received", "directory for received files")
	serveCmd.Flags().StringVar(&flagServeStaticDir, "static-dir", "./web/static", "directory serving the web UI")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := audio.Init(); err != nil {
		return err
	}
	defer audio.Terminate()

	os.MkdirAll(flagServeUploadDir, 0755)
	os.MkdirAll(flagServeReceiveDir, 0755)

	recorder := metrics.NewRecorder(prometheus.DefaultRegisterer)
	handlers := server.NewHandlers(flagServeUploadDir, flagServeReceiveDir, recorder)
	srv := server.NewServer(flagServeAddr, handlers, flagServeStaticDir)
	return srv.Start()
}
