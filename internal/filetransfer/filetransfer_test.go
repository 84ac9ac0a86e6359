package filetransfer

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func TestEncodeDecodeMeta_RoundTrip(t *testing.T) {
	meta := Metadata{Filename: "report.txt", Size: 12345, MD5Hash: "0123456789abcdef0123456789abcdef"}
	got, err := DecodeMeta(EncodeMeta(meta))
	if err != nil {
		t.Fatalf("DecodeMeta: %v", err)
	}
	if got != meta {
		t.Errorf("DecodeMeta = %+v, want %+v", got, meta)
	}
}

func TestReceiver_FullSequence(t *testing.T) {
	dir := t.TempDir()
	r := NewReceiver(dir)

	content := []byte("the quick brown fox jumps over the lazy dog")
	meta := Metadata{Filename: "fox.txt", Size: int64(len(content)), MD5Hash: md5HexOf(content)}

	metaMsg, err := wrapMessage(MsgFileMeta, EncodeMeta(meta))
	if err != nil {
		t.Fatalf("wrapMessage meta: %v", err)
	}
	dataMsg, err := wrapMessage(MsgFileData, content)
	if err != nil {
		t.Fatalf("wrapMessage data: %v", err)
	}
	endMsg, err := wrapMessage(MsgFileEnd, nil)
	if err != nil {
		t.Fatalf("wrapMessage end: %v", err)
	}

	if done, err := r.Push(metaMsg); err != nil || done != nil {
		t.Fatalf("Push(meta) = (%v, %v), want (nil, nil)", done, err)
	}
	if done, err := r.Push(dataMsg); err != nil || done != nil {
		t.Fatalf("Push(data) = (%v, %v), want (nil, nil)", done, err)
	}
	done, err := r.Push(endMsg)
	if err != nil {
		t.Fatalf("Push(end) error: %v", err)
	}
	if done == nil {
		t.Fatal("Push(end) should report completed metadata")
	}
	if done.Filename != "fox.txt" {
		t.Errorf("completed Filename = %q, want fox.txt", done.Filename)
	}

	written, err := os.ReadFile(filepath.Join(dir, "fox.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(written) != string(content) {
		t.Errorf("written content = %q, want %q", written, content)
	}
}

func TestReceiver_CorruptedMessageSkipped(t *testing.T) {
	dir := t.TempDir()
	r := NewReceiver(dir)

	msg, err := wrapMessage(MsgFileMeta, EncodeMeta(Metadata{Filename: "x", Size: 0, MD5Hash: "d41d8cd98f00b204e9800998ecf8427e"}))
	if err != nil {
		t.Fatalf("wrapMessage: %v", err)
	}
	msg[len(msg)-1] ^= 0xFF // corrupt CRC

	done, err := r.Push(msg)
	if err != nil {
		t.Fatalf("Push with corrupted message should not error, got %v", err)
	}
	if done != nil {
		t.Fatal("corrupted message should not yield a completed transfer")
	}
}

func TestReceiver_CorruptedMessageInvokesCorruptionHook(t *testing.T) {
	dir := t.TempDir()
	r := NewReceiver(dir)

	calls := 0
	r.SetCorruptionFunc(func() { calls++ })

	msg, err := wrapMessage(MsgFileMeta, EncodeMeta(Metadata{Filename: "x", Size: 0, MD5Hash: "d41d8cd98f00b204e9800998ecf8427e"}))
	if err != nil {
		t.Fatalf("wrapMessage: %v", err)
	}
	msg[len(msg)-1] ^= 0xFF // corrupt CRC

	if _, err := r.Push(msg); err != nil {
		t.Fatalf("Push with corrupted message should not error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("corruption hook called %d times, want 1", calls)
	}
}

func TestReceiver_DataBeforeMetaErrors(t *testing.T) {
	dir := t.TempDir()
	r := NewReceiver(dir)

	msg, _ := wrapMessage(MsgFileData, []byte("stray"))
	if _, err := r.Push(msg); err == nil {
		t.Error("data message before metadata should error")
	}
}

func md5HexOf(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
