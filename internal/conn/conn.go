package conn

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MINAqwq/LibWebli/internal/logging"
)

// TransportError reports a failed or empty transfer on a connection.
type TransportError struct {
	Op   string // "handshake", "read" or "write"
	Addr string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: no bytes transferred", e.Op, e.Addr)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ErrShortWrite is wrapped when fewer bytes than requested were written.
var ErrShortWrite = errors.New("short write")

// Conn is one TLS session over one accepted socket. It is not safe for
// concurrent reads; writes from several goroutines must be serialized by
// the caller.
type Conn struct {
	raw        net.Conn
	tls        *tls.Conn
	id         string
	remoteAddr string

	readTimeout  time.Duration
	writeTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

// Accept wraps raw in a server-side TLS session and completes the
// handshake. On failure the socket is closed and no Conn is returned.
func Accept(raw net.Conn, config *tls.Config) (*Conn, error) {
	c := &Conn{
		raw:        raw,
		tls:        tls.Server(raw, config),
		id:         uuid.NewString(),
		remoteAddr: raw.RemoteAddr().String(),
	}

	if err := c.tls.Handshake(); err != nil {
		_ = raw.Close()
		return nil, &TransportError{Op: "handshake", Addr: c.remoteAddr, Err: err}
	}

	logging.LogTLSHandshake(c.id, c.remoteAddr, c.tls.ConnectionState())
	return c, nil
}

// Dial opens a client-side TLS session to addr. Used by the web client.
func Dial(ctx context.Context, network, addr string, config *tls.Config) (*Conn, error) {
	dialer := &tls.Dialer{Config: config}
	nc, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, &TransportError{Op: "handshake", Addr: addr, Err: err}
	}
	tc := nc.(*tls.Conn)
	return &Conn{
		raw:        tc.NetConn(),
		tls:        tc,
		id:         uuid.NewString(),
		remoteAddr: tc.RemoteAddr().String(),
	}, nil
}

// SetTimeouts sets per-operation read and write deadlines. Zero disables
// the respective deadline, including one left by an earlier operation.
func (c *Conn) SetTimeouts(read, write time.Duration) {
	c.readTimeout = read
	c.writeTimeout = write
	if read == 0 {
		_ = c.tls.SetReadDeadline(time.Time{})
	}
	if write == 0 {
		_ = c.tls.SetWriteDeadline(time.Time{})
	}
}

// Read reads up to len(p) bytes. A read that returns no data is a
// TransportError, including a clean close by the peer.
func (c *Conn) Read(p []byte) (int, error) {
	if c.readTimeout > 0 {
		if err := c.tls.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return 0, &TransportError{Op: "read", Addr: c.remoteAddr, Err: err}
		}
	}

	n, err := c.tls.Read(p)
	if n > 0 {
		return n, nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return 0, &TransportError{Op: "read", Addr: c.remoteAddr, Err: err}
}

// ReadFull reads exactly len(p) bytes.
func (c *Conn) ReadFull(p []byte) error {
	if _, err := io.ReadFull(c, p); err != nil {
		var te *TransportError
		if errors.As(err, &te) {
			return te
		}
		return &TransportError{Op: "read", Addr: c.remoteAddr, Err: err}
	}
	return nil
}

// Write writes all of p or returns a TransportError.
func (c *Conn) Write(p []byte) (int, error) {
	if c.writeTimeout > 0 {
		if err := c.tls.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return 0, &TransportError{Op: "write", Addr: c.remoteAddr, Err: err}
		}
	}

	n, err := c.tls.Write(p)
	if err != nil {
		return n, &TransportError{Op: "write", Addr: c.remoteAddr, Err: err}
	}
	if n < len(p) {
		return n, &TransportError{Op: "write", Addr: c.remoteAddr, Err: ErrShortWrite}
	}
	return n, nil
}

// Close sends close_notify and closes the socket. Calling it again is a
// no-op that returns the first result.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.tls.Close()
	})
	return c.closeErr
}

// ID returns a unique identifier for log correlation.
func (c *Conn) ID() string {
	return c.id
}

// RemoteAddr returns the peer address as "host:port".
func (c *Conn) RemoteAddr() string {
	return c.remoteAddr
}

// State returns the negotiated TLS parameters.
func (c *Conn) State() tls.ConnectionState {
	return c.tls.ConnectionState()
}

// Abort closes the socket without a TLS goodbye. It unblocks pending
// reads and writes and is used during shutdown.
func (c *Conn) Abort() error {
	return c.raw.Close()
}
