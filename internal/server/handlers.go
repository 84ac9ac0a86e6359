package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/jeongseonghan/audio-modem/internal/audio"
	"github.com/jeongseonghan/audio-modem/internal/codec"
	"github.com/jeongseonghan/audio-modem/internal/filetransfer"
	"github.com/jeongseonghan/audio-modem/internal/metrics"
	"github.com/jeongseonghan/audio-modem/internal/session"
)

// Handlers holds the HTTP API handlers.
type Handlers struct {
	sess       *session.Session
	wsHub      *WSHub
	uploadDir  string
	receiveDir string
	recorder   *metrics.Recorder
	mu         sync.Mutex
}

// NewHandlers creates new API handlers. recorder may be nil to disable
// decode-path metrics.
func NewHandlers(uploadDir, receiveDir string, recorder *metrics.Recorder) *Handlers {
	return &Handlers{
		wsHub:      NewWSHub(),
		uploadDir:  uploadDir,
		receiveDir: receiveDir,
		recorder:   recorder,
	}
}

// HandleWebSocket handles WebSocket upgrade requests.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("websocket upgrade failed", "err", err)
		return
	}

	h.wsHub.AddClient(conn)

	go func() {
		defer h.wsHub.RemoveClient(conn)
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				break
			}
		}
	}()
}

// HandleUpload handles file upload for sending.
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, fmt.Sprintf("Parse form: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("Get file: %v", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	os.MkdirAll(h.uploadDir, 0755)
	outPath := filepath.Join(h.uploadDir, header.Filename)
	outFile, err := os.Create(outPath)
	if err != nil {
		http.Error(w, fmt.Sprintf("Create file: %v", err), http.StatusInternalServerError)
		return
	}
	defer outFile.Close()

	written, err := io.Copy(outFile, file)
	if err != nil {
		http.Error(w, fmt.Sprintf("Save file: %v", err), http.StatusInternalServerError)
		return
	}

	h.wsHub.BroadcastLog("info", fmt.Sprintf("File uploaded: %s (%d bytes)", header.Filename, written))

	json.NewEncoder(w).Encode(map[string]interface{}{
		"filename": header.Filename,
		"size":     written,
		"status":   "uploaded",
	})
}

// newCodec builds a codec.Codec for the requested modulation scheme
// ("fsk" or "bpsk"; defaults to fsk), using reference parameters. If h has
// a metrics recorder installed, it is attached as the decoder's observer.
func (h *Handlers) newCodec(scheme string) (*codec.Codec, error) {
	fc := codec.FileConfig{Scheme: strings.ToLower(scheme)}
	if fc.Scheme == "" {
		fc.Scheme = "fsk"
	}
	defaults := codec.DefaultConfig()
	fc.SampleRate = defaults.Modem.SampleRate
	fc.FreqSpace = defaults.Modem.FreqSpace
	fc.FreqMark = defaults.Modem.FreqMark
	fc.BaudRate = defaults.Modem.SampleRate / defaults.Modem.SamplesPerBit
	fc.ConfidenceThreshold = defaults.ConfidenceThreshold

	mod, err := fc.NewModulator()
	if err != nil {
		return nil, err
	}
	c := codec.New(mod, fc.Config())
	if h.recorder != nil {
		c.SetObserver(h.recorder)
	}
	return c, nil
}

// HandleSend initiates file sending.
func (h *Handlers) HandleSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Filename string `json:"filename"`
		Scheme   string `json:"scheme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Parse request: %v", err), http.StatusBadRequest)
		return
	}

	filePath := filepath.Join(h.uploadDir, req.Filename)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	go func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		c, err := h.newCodec(req.Scheme)
		if err != nil {
			h.wsHub.BroadcastStatus("error", fmt.Sprintf("Codec create failed: %v", err))
			return
		}
		sess := session.New(c, session.ModeSend)
		h.sess = sess
		defer sess.Close()

		if err := sess.Open(); err != nil {
			h.wsHub.BroadcastStatus("error", fmt.Sprintf("Audio open failed: %v", err))
			return
		}

		h.wsHub.BroadcastStatus("transferring", "Sending file...")

		err = filetransfer.SendFile(sess, filePath, func(sent, total int64, status string) {
			progress := 0.0
			if total > 0 {
				progress = float64(sent) / float64(total)
			}
			h.wsHub.BroadcastProgress("transferring", status, progress, sent, total)
		})
		if err != nil {
			h.wsHub.BroadcastStatus("error", fmt.Sprintf("Send failed: %v", err))
			return
		}

		h.wsHub.BroadcastStatus("completed", "File sent successfully!")
	}()

	json.NewEncoder(w).Encode(map[string]string{
		"status": "sending",
	})
}

// HandleReceiveStart starts receiving mode.
func (h *Handlers) HandleReceiveStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Scheme string `json:"scheme"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	go func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		c, err := h.newCodec(req.Scheme)
		if err != nil {
			h.wsHub.BroadcastStatus("error", fmt.Sprintf("Codec create failed: %v", err))
			return
		}
		sess := session.New(c, session.ModeReceive)
		h.sess = sess
		defer sess.Close()

		if err := sess.Open(); err != nil {
			h.wsHub.BroadcastStatus("error", fmt.Sprintf("Audio open failed: %v", err))
			return
		}

		h.wsHub.BroadcastStatus("connecting", "Listening for a frame...")

		os.MkdirAll(h.receiveDir, 0755)
		receiver := filetransfer.NewReceiver(h.receiveDir)
		receiver.SetCorruptionFunc(c.ResetDecoder)
		receiver.SetProgressFunc(func(done, total int64, status string) {
			progress := 0.0
			if total > 0 {
				progress = float64(done) / float64(total)
			}
			h.wsHub.BroadcastProgress("transferring", status, progress, done, total)
		})

		go func() {
			for ev := range sess.Events() {
				if len(ev.Bytes) == 0 {
					continue
				}
				meta, err := receiver.Push(ev.Bytes)
				if err != nil {
					h.wsHub.BroadcastStatus("error", fmt.Sprintf("Receive failed: %v", err))
					continue
				}
				if meta != nil {
					h.wsHub.BroadcastStatus("completed", fmt.Sprintf("File received: %s (%d bytes)", meta.Filename, meta.Size))
					sess.StopReceiving()
					return
				}
			}
		}()

		if err := sess.StartReceiving(); err != nil {
			h.wsHub.BroadcastStatus("error", fmt.Sprintf("Receive failed: %v", err))
		}
	}()

	json.NewEncoder(w).Encode(map[string]string{
		"status": "receiving",
	})
}

// HandleStatus returns current session status.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status := "idle"
	if h.sess != nil {
		status = "active"
	}

	json.NewEncoder(w).Encode(map[string]string{
		"status": status,
	})
}

// HandleDevices lists available audio devices.
func (h *Handlers) HandleDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := audio.ListDevices()
	if err != nil {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"devices":   devices,
		"hasInput":  audio.HasInputDevice(),
		"hasOutput": audio.HasOutputDevice(),
	})
}

// HandleDownload serves received files for download.
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	filename := strings.TrimPrefix(r.URL.Path, "/api/download/")
	if filename == "" {
		http.Error(w, "Filename required", http.StatusBadRequest)
		return
	}

	filePath := filepath.Join(h.receiveDir, filename)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, filePath)
}
