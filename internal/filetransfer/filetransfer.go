// Package filetransfer sends and receives whole files over a session,
// chunked into framing-wrapped messages carried by the character codec. It
// replaces the teacher's ARQ-backed file transfer (stop-and-wait,
// PING/PONG handshake) with a simpler best-effort scheme appropriate for a
// core that explicitly has no flow control: each chunk is integrity
// checked by framing's CRC, and a failed chunk is logged and skipped
// rather than retried.
package filetransfer

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/jeongseonghan/audio-modem/internal/framing"
	"github.com/jeongseonghan/audio-modem/internal/session"
)

// Message type tags, prepended to the framing-wrapped payload so the
// receive loop can distinguish metadata from data and the end marker.
const (
	MsgFileMeta byte = 0x05
	MsgFileData byte = 0x01
	MsgFileEnd  byte = 0x06
)

// ChunkSize bounds a single DATA message's payload, staying well under
// framing.MaxPayloadSize.
const ChunkSize = 1024

// Metadata describes a file transfer: name, size, and an MD5 digest for
// end-to-end verification (the codec and framing layer provide no
// integrity guarantee of their own beyond the per-chunk CRC).
type Metadata struct {
	Filename string
	Size     int64
	MD5Hash  string
}

// EncodeMeta serializes Metadata as [nameLen(2B)][name][size(8B)][md5(32B)].
func EncodeMeta(meta Metadata) []byte {
	nameBytes := []byte(meta.Filename)
	md5Bytes := []byte(meta.MD5Hash)

	buf := make([]byte, 2+len(nameBytes)+8+32)
	binary.BigEndian.PutUint16(buf[0:2], uint16(len(nameBytes)))
	copy(buf[2:], nameBytes)
	offset := 2 + len(nameBytes)
	binary.BigEndian.PutUint64(buf[offset:offset+8], uint64(meta.Size))
	copy(buf[offset+8:], md5Bytes)
	return buf
}

// DecodeMeta reverses EncodeMeta.
func DecodeMeta(data []byte) (Metadata, error) {
	if len(data) < 2 {
		return Metadata{}, fmt.Errorf("filetransfer: metadata too short")
	}
	nameLen := int(binary.BigEndian.Uint16(data[0:2]))
	if len(data) < 2+nameLen+8+32 {
		return Metadata{}, fmt.Errorf("filetransfer: metadata truncated")
	}
	filename := string(data[2 : 2+nameLen])
	offset := 2 + nameLen
	size := int64(binary.BigEndian.Uint64(data[offset : offset+8]))
	md5Hash := string(data[offset+8 : offset+8+32])
	return Metadata{Filename: filename, Size: size, MD5Hash: md5Hash}, nil
}

// ProgressFunc is called with transfer progress updates.
type ProgressFunc func(done, total int64, status string)

// message wraps a tagged payload for Wrap/Unwrap.
func wrapMessage(tag byte, body []byte) ([]byte, error) {
	payload := make([]byte, 1+len(body))
	payload[0] = tag
	copy(payload[1:], body)
	return framing.Wrap(payload)
}

// SendFile reads filePath, computes its MD5, and sends META, DATA (in
// ChunkSize pieces), and END messages over sess in order.
func SendFile(sess *session.Session, filePath string, onProgress ProgressFunc) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("filetransfer: open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("filetransfer: stat file: %w", err)
	}

	hash := md5.New()
	if _, err := io.Copy(hash, f); err != nil {
		return fmt.Errorf("filetransfer: compute MD5: %w", err)
	}
	md5Hash := hex.EncodeToString(hash.Sum(nil))

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("filetransfer: seek: %w", err)
	}

	meta := Metadata{Filename: filepath.Base(filePath), Size: info.Size(), MD5Hash: md5Hash}
	metaMsg, err := wrapMessage(MsgFileMeta, EncodeMeta(meta))
	if err != nil {
		return fmt.Errorf("filetransfer: wrap metadata: %w", err)
	}
	if err := sess.Send(metaMsg); err != nil {
		return fmt.Errorf("filetransfer: send metadata: %w", err)
	}
	progress(onProgress, 0, info.Size(), "sending file metadata")

	buf := make([]byte, ChunkSize)
	var sent int64
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			dataMsg, err := wrapMessage(MsgFileData, buf[:n])
			if err != nil {
				return fmt.Errorf("filetransfer: wrap chunk: %w", err)
			}
			if err := sess.Send(dataMsg); err != nil {
				return fmt.Errorf("filetransfer: send chunk: %w", err)
			}
			sent += int64(n)
			progress(onProgress, sent, info.Size(), fmt.Sprintf("sending %d/%d bytes", sent, info.Size()))
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("filetransfer: read file: %w", readErr)
		}
	}

	endMsg, err := wrapMessage(MsgFileEnd, nil)
	if err != nil {
		return fmt.Errorf("filetransfer: wrap end marker: %w", err)
	}
	if err := sess.Send(endMsg); err != nil {
		return fmt.Errorf("filetransfer: send end marker: %w", err)
	}

	progress(onProgress, info.Size(), info.Size(), "transfer complete")
	log.Info("file sent", "filename", meta.Filename, "bytes", meta.Size, "md5", meta.MD5Hash)
	return nil
}

// Receiver accumulates decoded bytes from a session's event stream and
// assembles them into a file once a full META/DATA.../END sequence is
// seen. Feed it with Push as Session.Events() bytes arrive.
type Receiver struct {
	outputDir string
	buf       []byte

	meta       *Metadata
	outFile    *os.File
	digest     hash.Hash
	received   int64
	onProgress ProgressFunc
	onCorrupt  func()
}

// NewReceiver creates a Receiver that writes completed files into outputDir.
func NewReceiver(outputDir string) *Receiver {
	return &Receiver{outputDir: outputDir}
}

// SetProgressFunc sets the progress notification callback.
func (r *Receiver) SetProgressFunc(cb ProgressFunc) {
	r.onProgress = cb
}

// SetCorruptionFunc sets a hook invoked whenever a framing-wrapped message
// fails its CRC check. A caller that owns the codec.Codec feeding this
// Receiver should use it to call Codec.ResetDecoder: a corrupted chunk
// means the codec's remaining buffered samples are not trustworthy either,
// unlike a plain signal-loss ResetState.
func (r *Receiver) SetCorruptionFunc(cb func()) {
	r.onCorrupt = cb
}

// Push feeds newly decoded bytes into the receiver's reassembly buffer,
// dispatching any complete messages it finds. It returns the completed
// Metadata once MsgFileEnd has been seen and verified, or nil if the
// transfer is still in progress.
func (r *Receiver) Push(decoded []byte) (*Metadata, error) {
	r.buf = append(r.buf, decoded...)

	for {
		payload, consumed, ok := framing.Unwrap(r.buf)
		if consumed == 0 {
			break // not enough data yet
		}
		r.buf = r.buf[consumed:]
		if !ok {
			log.Warn("dropping corrupted message (CRC mismatch)")
			if r.onCorrupt != nil {
				r.onCorrupt()
			}
			continue
		}
		if len(payload) == 0 {
			continue
		}

		done, err := r.dispatch(payload[0], payload[1:])
		if err != nil {
			return nil, err
		}
		if done != nil {
			return done, nil
		}
	}
	return nil, nil
}

func (r *Receiver) dispatch(tag byte, body []byte) (*Metadata, error) {
	switch tag {
	case MsgFileMeta:
		meta, err := DecodeMeta(body)
		if err != nil {
			return nil, fmt.Errorf("filetransfer: decode metadata: %w", err)
		}
		outPath := filepath.Join(r.outputDir, meta.Filename)
		f, err := os.Create(outPath)
		if err != nil {
			return nil, fmt.Errorf("filetransfer: create output file: %w", err)
		}
		r.meta = &meta
		r.outFile = f
		r.digest = md5.New()
		r.received = 0
		progress(r.onProgress, 0, meta.Size, fmt.Sprintf("receiving %s", meta.Filename))
		return nil, nil

	case MsgFileData:
		if r.outFile == nil {
			return nil, fmt.Errorf("filetransfer: data message before metadata")
		}
		if _, err := r.outFile.Write(body); err != nil {
			return nil, fmt.Errorf("filetransfer: write chunk: %w", err)
		}
		r.digest.Write(body)
		r.received += int64(len(body))
		progress(r.onProgress, r.received, r.meta.Size, fmt.Sprintf("receiving %d/%d bytes", r.received, r.meta.Size))
		return nil, nil

	case MsgFileEnd:
		if r.meta == nil || r.outFile == nil {
			return nil, fmt.Errorf("filetransfer: end marker before metadata")
		}
		r.outFile.Close()

		receivedMD5 := hex.EncodeToString(r.digest.Sum(nil))
		meta := *r.meta
		r.meta, r.outFile, r.digest = nil, nil, nil

		if receivedMD5 != meta.MD5Hash {
			return nil, fmt.Errorf("filetransfer: md5 mismatch: expected %s, got %s", meta.MD5Hash, receivedMD5)
		}
		progress(r.onProgress, meta.Size, meta.Size, "transfer complete, md5 verified")
		log.Info("file received", "filename", meta.Filename, "bytes", meta.Size)
		return &meta, nil

	default:
		log.Warn("unexpected message tag", "tag", fmt.Sprintf("0x%02x", tag))
		return nil, nil
	}
}

func progress(cb ProgressFunc, done, total int64, status string) {
	if cb != nil {
		cb(done, total, status)
	}
}
