package framing

import (
	"bytes"
	"testing"

	"github.com/jeongseonghan/audio-modem/internal/fec"
)

func TestWrapUnwrap_RoundTrip(t *testing.T) {
	payload := []byte("hello framing")
	wrapped, err := Wrap(payload)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}

	got, consumed, ok := Unwrap(wrapped)
	if !ok {
		t.Fatal("Unwrap reported not ok for a freshly wrapped frame")
	}
	if consumed != len(wrapped) {
		t.Errorf("consumed = %d, want %d", consumed, len(wrapped))
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Unwrap = %q, want %q", got, payload)
	}
}

func TestUnwrap_IncompleteData(t *testing.T) {
	payload := []byte("incomplete")
	wrapped, _ := Wrap(payload)

	_, _, ok := Unwrap(wrapped[:len(wrapped)-1])
	if ok {
		t.Error("Unwrap should fail on truncated data")
	}
}

func TestUnwrap_CorruptedCRC(t *testing.T) {
	payload := []byte("corrupt me")
	wrapped, _ := Wrap(payload)
	wrapped[len(wrapped)-1] ^= 0xFF

	_, _, ok := Unwrap(wrapped)
	if ok {
		t.Error("Unwrap should fail when CRC does not match")
	}
}

func TestWrap_RejectsOversizedPayload(t *testing.T) {
	_, err := Wrap(make([]byte, MaxPayloadSize+1))
	if err == nil {
		t.Error("Wrap should reject payloads larger than MaxPayloadSize")
	}
}

func TestWrapRSUnwrapRS_RoundTrip(t *testing.T) {
	rs, err := fec.NewRSEncoderCustom(4, 2)
	if err != nil {
		t.Fatalf("NewRSEncoderCustom: %v", err)
	}

	payload := []byte("rs framed")
	encoded, err := WrapRS(payload, rs)
	if err != nil {
		t.Fatalf("WrapRS: %v", err)
	}

	got, ok := UnwrapRS(encoded, rs)
	if !ok {
		t.Fatal("UnwrapRS reported not ok")
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("UnwrapRS = %q, want %q", got, payload)
	}
}
