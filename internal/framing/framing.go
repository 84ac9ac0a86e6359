// Package framing implements the optional integrity layer the design notes
// call for: a length-and-CRC wrapper around a payload, added above the
// character codec as an independent concern rather than folded into the
// core decoder state machine. An optional Reed-Solomon layer beneath it
// (WrapRS/UnwrapRS) adds a parity check on the framed bytes; UnwrapRS
// rejects corrupted data rather than correcting it.
package framing

import (
	"encoding/binary"
	"fmt"

	"github.com/jeongseonghan/audio-modem/internal/fec"
)

// HeaderSize is the wire size of the length prefix.
const HeaderSize = 2

// CRCSize is the wire size of the trailing checksum.
const CRCSize = 4

// MaxPayloadSize bounds a single framed message; larger payloads should be
// split by the caller into multiple frames.
const MaxPayloadSize = 65535 - HeaderSize - CRCSize

// Wrap serializes payload as [length(2B BE)][payload][CRC-32(4B BE)]. The
// length covers payload only, matching the decoder's expectation below.
func Wrap(payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("framing: payload of %d bytes exceeds max %d", len(payload), MaxPayloadSize)
	}

	buf := make([]byte, HeaderSize+len(payload)+CRCSize)
	binary.BigEndian.PutUint16(buf[:HeaderSize], uint16(len(payload)))
	copy(buf[HeaderSize:], payload)

	checksum := fec.CRC32(buf[:HeaderSize+len(payload)])
	binary.BigEndian.PutUint32(buf[HeaderSize+len(payload):], checksum)
	return buf, nil
}

// Unwrap reverses Wrap, verifying the CRC. It returns the payload and
// whether data held (at least) one complete, valid frame, plus the number
// of bytes consumed from data — callers streaming bytes out of a Codec
// should retain data[consumed:] for the next call.
func Unwrap(data []byte) (payload []byte, consumed int, ok bool) {
	if len(data) < HeaderSize+CRCSize {
		return nil, 0, false
	}

	length := int(binary.BigEndian.Uint16(data[:HeaderSize]))
	total := HeaderSize + length + CRCSize
	if len(data) < total {
		return nil, 0, false
	}

	expected := binary.BigEndian.Uint32(data[HeaderSize+length : total])
	actual := fec.CRC32(data[:HeaderSize+length])
	if expected != actual {
		return nil, total, false
	}

	out := make([]byte, length)
	copy(out, data[HeaderSize:HeaderSize+length])
	return out, total, true
}

// WrapRS is Wrap followed by Reed-Solomon encoding, adding parity to the
// framed message before it reaches the character codec.
func WrapRS(payload []byte, rs *fec.RSEncoder) ([]byte, error) {
	framed, err := Wrap(payload)
	if err != nil {
		return nil, err
	}
	encoded, err := rs.Encode(framed)
	if err != nil {
		return nil, fmt.Errorf("framing: RS encode: %w", err)
	}
	return encoded, nil
}

// UnwrapRS reverses WrapRS: RS-decode first, then Unwrap as usual. The
// RS step verifies parity only; any corrupted byte makes it report not ok,
// and no byte is corrected.
func UnwrapRS(data []byte, rs *fec.RSEncoder) (payload []byte, ok bool) {
	decoded, err := rs.Decode(data)
	if err != nil {
		return nil, false
	}
	payload, _, ok = Unwrap(decoded)
	return payload, ok
}
