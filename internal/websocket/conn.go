package websocket

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/MINAqwq/LibWebli/internal/logging"
)

var (
	// ErrClosed is returned when sending on a connection that has closed.
	ErrClosed = errors.New("websocket connection closed")
	// ErrRejected is returned by Run when OnOpen vetoes the connection.
	ErrRejected = errors.New("websocket connection rejected")
	// ErrProtocol wraps violations of the frame protocol.
	ErrProtocol = errors.New("websocket protocol error")
)

// pingPayload is the body of server-initiated pings.
var pingPayload = []byte{0xFF, 0xFF, 0xFF, 0xFF}

// Transport is the byte stream a WebSocket connection runs over.
type Transport interface {
	io.ReadWriter
	RemoteAddr() string
}

// Handlers are the application callbacks of one connection.
type Handlers struct {
	// OnMessage receives every complete message. The returned frames are
	// sent in order before the next frame is read.
	OnMessage func(c *Conn, op Opcode, data []byte) []*Frame
	// OnOpen runs once before the frame loop. Returning false closes the
	// connection without reading any frame.
	OnOpen func(c *Conn) bool
	// OnClose runs exactly once when the loop ends for any reason.
	OnClose func(c *Conn)
}

// Option configures a Conn.
type Option func(*Conn)

// WithMaxPayload limits frame and message sizes.
func WithMaxPayload(n uint64) Option {
	return func(c *Conn) {
		c.maxPayload = n
	}
}

// WithID sets the identifier used in logs.
func WithID(id string) Option {
	return func(c *Conn) {
		c.id = id
	}
}

// Conn is a WebSocket connection after the opening handshake.
//
// Run must be called from a single goroutine. SendFrame, Ping and Close
// may be called from any goroutine.
type Conn struct {
	transport  Transport
	handlers   Handlers
	id         string
	maxPayload uint64

	writeMu   sync.Mutex
	closed    atomic.Bool
	closeSent bool // guarded by writeMu
	closeOnce sync.Once

	// reassembly state, owned by Run
	accumulating bool
	messageOp    Opcode
	buffer       []byte
}

// NewConn wraps t. The 101 response must already have been written.
func NewConn(t Transport, h Handlers, opts ...Option) *Conn {
	c := &Conn{
		transport:  t,
		handlers:   h,
		maxPayload: DefaultMaxPayload,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the connection identifier.
func (c *Conn) ID() string {
	return c.id
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() string {
	return c.transport.RemoteAddr()
}

// IsOpen reports whether the connection still accepts frames.
func (c *Conn) IsOpen() bool {
	return !c.closed.Load()
}

// Run executes the frame loop until the peer closes, a protocol fault
// occurs, or the transport fails. OnClose has run by the time Run returns.
// A clean close returns nil.
func (c *Conn) Run() error {
	defer c.finish()

	if c.handlers.OnOpen != nil && !c.handlers.OnOpen(c) {
		logging.Debug("WebSocket connection rejected after handshake",
			zap.String("conn_id", c.id),
			zap.String("remote_addr", c.RemoteAddr()),
		)
		return ErrRejected
	}

	logging.LogConnection(c.id, c.RemoteAddr(), "websocket_open")

	for {
		frame, err := ReadFrame(c.transport, c.maxPayload)
		if err != nil {
			if c.closed.Load() {
				return nil
			}
			if errors.Is(err, ErrUnmaskedFrame) || errors.Is(err, ErrReservedBits) {
				_ = c.closeWith(CloseProtocolError, "")
			} else if errors.Is(err, ErrFrameTooLarge) {
				_ = c.closeWith(CloseMessageTooBig, "")
			}
			return err
		}

		logging.LogWebSocketFrame(c.RemoteAddr(), "received", frame.Opcode.String(), frame.Payload)

		if frame.Opcode == OpClose {
			c.handleClose(frame)
			return nil
		}

		// After our Close, frames are discarded until the peer answers.
		if c.closed.Load() {
			continue
		}

		if err := c.handleFrame(frame); err != nil {
			if errors.Is(err, ErrProtocol) {
				_ = c.closeWith(CloseProtocolError, "")
			}
			return err
		}
	}
}

// handleClose answers a peer Close. The echoed code is the peer's, or
// 1000 when the peer sent none.
func (c *Conn) handleClose(f *Frame) {
	code, reason := CloseCode(f.Payload)
	logging.Debug("Received close frame",
		zap.String("conn_id", c.id),
		zap.Int("code", code),
		zap.String("reason", reason),
	)
	if code < CloseNormalClosure || code == CloseNoStatusReceived || code == CloseAbnormalClosure {
		code = CloseNormalClosure
	}
	_ = c.closeWith(code, "")
}

// handleFrame advances the state machine by one frame.
func (c *Conn) handleFrame(f *Frame) error {
	if f.Opcode.IsControl() && (!f.FIN || len(f.Payload) > MaxControlPayload) {
		return fmt.Errorf("%w: invalid %s control frame", ErrProtocol, f.Opcode)
	}

	switch f.Opcode {
	case OpText, OpBinary:
		if c.accumulating {
			return fmt.Errorf("%w: new %s message inside fragmented message", ErrProtocol, f.Opcode)
		}
		if f.FIN {
			return c.deliver(f.Opcode, f.Payload)
		}
		c.accumulating = true
		c.messageOp = f.Opcode
		c.buffer = append(c.buffer[:0], f.Payload...)
		return nil

	case OpContinuation:
		if !c.accumulating {
			return fmt.Errorf("%w: continuation without a started message", ErrProtocol)
		}
		if uint64(len(c.buffer)+len(f.Payload)) > c.maxPayload {
			_ = c.closeWith(CloseMessageTooBig, "")
			return fmt.Errorf("%w: reassembled message exceeds %d bytes", ErrFrameTooLarge, c.maxPayload)
		}
		c.buffer = append(c.buffer, f.Payload...)
		if !f.FIN {
			return nil
		}
		data := c.buffer
		op := c.messageOp
		c.accumulating = false
		c.messageOp = OpContinuation
		c.buffer = nil
		return c.deliver(op, data)

	case OpPing:
		return c.Pong(f.Payload)

	case OpPong:
		return nil

	default:
		return fmt.Errorf("%w: unknown opcode %s", ErrProtocol, f.Opcode)
	}
}

// deliver passes a complete message to OnMessage and sends the replies.
func (c *Conn) deliver(op Opcode, data []byte) error {
	if c.handlers.OnMessage == nil {
		return nil
	}
	return c.SendFrames(c.handlers.OnMessage(c, op, data)...)
}

// SendFrame writes one frame. Writes are serialized per connection.
func (c *Conn) SendFrame(f *Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.closeSent {
		return ErrClosed
	}
	return c.writeLocked(f)
}

// SendFrames writes frames in order and stops at the first failure.
func (c *Conn) SendFrames(frames ...*Frame) error {
	for _, f := range frames {
		if f == nil {
			continue
		}
		if err := c.SendFrame(f); err != nil {
			return err
		}
	}
	return nil
}

// SendText sends a final text frame.
func (c *Conn) SendText(text string) error {
	return c.SendFrame(NewTextFrame(text))
}

// Ping sends a ping with a fixed four-byte payload.
func (c *Conn) Ping() error {
	return c.SendFrame(NewControlFrame(OpPing, pingPayload))
}

// Pong sends a pong carrying data.
func (c *Conn) Pong(data []byte) error {
	return c.SendFrame(NewControlFrame(OpPong, data))
}

// Close sends a normal Close frame once. The frame loop ends when the peer
// answers or the transport is closed.
func (c *Conn) Close() error {
	return c.closeWith(CloseNormalClosure, "")
}

// closeWith sends a Close frame unless one was already sent and marks the
// connection closed.
func (c *Conn) closeWith(code int, reason string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.closed.Store(true)
	if c.closeSent {
		return nil
	}
	c.closeSent = true
	return c.writeLocked(NewCloseFrame(code, reason))
}

func (c *Conn) writeLocked(f *Frame) error {
	if _, err := c.transport.Write(f.Encode()); err != nil {
		return fmt.Errorf("failed to write %s frame: %w", f.Opcode, err)
	}
	logging.LogWebSocketFrame(c.RemoteAddr(), "sent", f.Opcode.String(), f.Payload)
	return nil
}

// finish sends a Close frame if none was sent and runs OnClose once.
func (c *Conn) finish() {
	c.closeOnce.Do(func() {
		_ = c.closeWith(CloseNormalClosure, "")
		logging.LogConnection(c.id, c.RemoteAddr(), "websocket_closed")
		if c.handlers.OnClose != nil {
			c.handlers.OnClose(c)
		}
	})
}
