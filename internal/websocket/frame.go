package websocket

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Opcode identifies the purpose of a frame.
type Opcode byte

// WebSocket frame opcodes
const (
	OpContinuation Opcode = 0x0
	OpText         Opcode = 0x1
	OpBinary       Opcode = 0x2
	OpClose        Opcode = 0x8
	OpPing         Opcode = 0x9
	OpPong         Opcode = 0xA
)

// Close status codes.
const (
	CloseNormalClosure      = 1000
	CloseGoingAway          = 1001
	CloseProtocolError      = 1002
	CloseUnsupportedData    = 1003
	CloseNoStatusReceived   = 1005
	CloseAbnormalClosure    = 1006
	CloseInvalidPayloadData = 1007
	ClosePolicyViolation    = 1008
	CloseMessageTooBig      = 1009
	CloseMissingExtension   = 1010
	CloseInternalServerErr  = 1011
)

const (
	// MaxControlPayload is the largest payload a control frame may carry.
	MaxControlPayload = 125

	// DefaultMaxPayload bounds a single frame or reassembled message.
	DefaultMaxPayload = 16 << 20
)

var (
	// ErrUnmaskedFrame is returned for a client frame without the mask bit.
	ErrUnmaskedFrame = errors.New("client frame is not masked")
	// ErrReservedBits is returned when RSV1-3 are set; no extensions are negotiated.
	ErrReservedBits = errors.New("reserved bits set")
	// ErrFrameTooLarge is returned when a payload exceeds the configured limit.
	ErrFrameTooLarge = errors.New("frame payload too large")
)

// FrameError reports the decode step that failed.
type FrameError struct {
	Stage string
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("failed to read frame %s: %v", e.Stage, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// String returns a human-readable opcode name
func (o Opcode) String() string {
	switch o {
	case OpContinuation:
		return "continuation"
	case OpText:
		return "text"
	case OpBinary:
		return "binary"
	case OpClose:
		return "close"
	case OpPing:
		return "ping"
	case OpPong:
		return "pong"
	default:
		return fmt.Sprintf("unknown(0x%X)", byte(o))
	}
}

// IsControl reports whether o is a control opcode (close, ping, pong).
func (o Opcode) IsControl() bool {
	return o&0x8 != 0
}

// Frame represents a WebSocket frame
type Frame struct {
	FIN     bool
	Opcode  Opcode
	Masked  bool
	MaskKey [4]byte
	Payload []byte
}

// NewTextFrame returns a final text frame.
func NewTextFrame(text string) *Frame {
	return &Frame{FIN: true, Opcode: OpText, Payload: []byte(text)}
}

// NewBinaryFrame returns a final binary frame.
func NewBinaryFrame(data []byte) *Frame {
	return &Frame{FIN: true, Opcode: OpBinary, Payload: data}
}

// NewControlFrame returns a final frame for a control opcode.
func NewControlFrame(op Opcode, payload []byte) *Frame {
	return &Frame{FIN: true, Opcode: op, Payload: payload}
}

// NewCloseFrame returns a Close frame carrying code and reason.
func NewCloseFrame(code int, reason string) *Frame {
	payload := make([]byte, 2+len(reason))
	binary.BigEndian.PutUint16(payload, uint16(code))
	copy(payload[2:], reason)
	return NewControlFrame(OpClose, payload)
}

// CloseCode extracts the status code and reason from a Close payload.
// An empty payload yields CloseNoStatusReceived.
func CloseCode(payload []byte) (int, string) {
	if len(payload) < 2 {
		return CloseNoStatusReceived, ""
	}
	return int(binary.BigEndian.Uint16(payload)), string(payload[2:])
}

// ReadFrame decodes one client frame from r. The mask bit is required and
// the payload is returned unmasked. A maxPayload of zero means
// DefaultMaxPayload.
func ReadFrame(r io.Reader, maxPayload uint64) (*Frame, error) {
	if maxPayload == 0 {
		maxPayload = DefaultMaxPayload
	}

	var header [2]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, &FrameError{Stage: "header", Err: err}
	}

	frame := &Frame{
		FIN:    header[0]&0x80 != 0,
		Opcode: Opcode(header[0] & 0x0F),
		Masked: header[1]&0x80 != 0,
	}

	if header[0]&0x70 != 0 {
		return nil, &FrameError{Stage: "header", Err: ErrReservedBits}
	}
	if !frame.Masked {
		return nil, &FrameError{Stage: "header", Err: ErrUnmaskedFrame}
	}

	length := uint64(header[1] & 0x7F)
	switch length {
	case 126:
		var ext [2]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return nil, &FrameError{Stage: "extended length", Err: err}
		}
		length = uint64(binary.BigEndian.Uint16(ext[:]))
	case 127:
		var ext [8]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return nil, &FrameError{Stage: "extended length", Err: err}
		}
		length = binary.BigEndian.Uint64(ext[:])
	}

	if length > maxPayload {
		return nil, &FrameError{Stage: "payload", Err: fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)}
	}

	if _, err := io.ReadFull(r, frame.MaskKey[:]); err != nil {
		return nil, &FrameError{Stage: "mask key", Err: err}
	}

	if length > 0 {
		frame.Payload = make([]byte, length)
		if _, err := io.ReadFull(r, frame.Payload); err != nil {
			return nil, &FrameError{Stage: "payload", Err: err}
		}
		maskBytes(frame.Payload, frame.MaskKey)
	}

	return frame, nil
}

// Encode serializes f as a server frame. Server frames are never masked.
func (f *Frame) Encode() []byte {
	out := f.encodeHeader(false)
	return append(out, f.Payload...)
}

// EncodeMasked serializes f as a client frame masked with key.
func (f *Frame) EncodeMasked(key [4]byte) []byte {
	out := f.encodeHeader(true)
	out = append(out, key[:]...)
	start := len(out)
	out = append(out, f.Payload...)
	maskBytes(out[start:], key)
	return out
}

func (f *Frame) encodeHeader(masked bool) []byte {
	payloadLen := len(f.Payload)
	out := make([]byte, 0, 14+payloadLen)

	b0 := byte(f.Opcode) & 0x0F
	if f.FIN {
		b0 |= 0x80
	}
	out = append(out, b0)

	var maskBit byte
	if masked {
		maskBit = 0x80
	}

	switch {
	case payloadLen < 126:
		out = append(out, maskBit|byte(payloadLen))
	case payloadLen <= 0xFFFF:
		out = append(out, maskBit|126)
		out = binary.BigEndian.AppendUint16(out, uint16(payloadLen))
	default:
		out = append(out, maskBit|127)
		out = binary.BigEndian.AppendUint64(out, uint64(payloadLen))
	}

	return out
}

// String returns a debug representation of the frame
func (f *Frame) String() string {
	return fmt.Sprintf("Frame{FIN=%v, Opcode=%s, Masked=%v, Length=%d}",
		f.FIN, f.Opcode, f.Masked, len(f.Payload))
}

// maskBytes applies the XOR mask in place. Masking and unmasking are the
// same operation.
func maskBytes(p []byte, key [4]byte) {
	for i := range p {
		p[i] ^= key[i%4]
	}
}
