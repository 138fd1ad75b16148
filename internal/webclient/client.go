package webclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/MINAqwq/LibWebli/internal/conn"
	"github.com/MINAqwq/LibWebli/internal/logging"
	"github.com/MINAqwq/LibWebli/internal/message"
)

// DefaultBufferSize bounds the response a client reads.
const DefaultBufferSize = 32768

// DefaultTimeout bounds one request when the context has no deadline.
const DefaultTimeout = 30 * time.Second

// Trace receives events while a request is in flight. Any field may be nil.
type Trace struct {
	Connected    func(state tls.ConnectionState)
	WroteRequest func(n int)
	ReadResponse func(n int)
}

// Option configures a Client.
type Option func(*Client)

// WithTLSConfig sets the TLS configuration. ServerName defaults to the URL
// host when unset.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *Client) {
		c.tlsConfig = cfg
	}
}

// WithBufferSize sets the maximum response size.
func WithBufferSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.bufferSize = n
		}
	}
}

// WithTimeout sets the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithTrace installs request event callbacks.
func WithTrace(t *Trace) Option {
	return func(c *Client) {
		c.trace = t
	}
}

// Client sends requests to one HTTPS origin. Every request uses its own
// connection.
type Client struct {
	url        URL
	tlsConfig  *tls.Config
	bufferSize int
	timeout    time.Duration
	trace      *Trace
}

// New creates a client for rawURL.
func New(rawURL string, opts ...Option) (*Client, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		url:        u,
		bufferSize: DefaultBufferSize,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetURL points the client at another origin.
func (c *Client) SetURL(rawURL string) error {
	u, err := ParseURL(rawURL)
	if err != nil {
		return err
	}
	c.url = u
	return nil
}

// URL returns the current target.
func (c *Client) URL() URL {
	return c.url
}

// NewRequest builds a request for the client's path.
func (c *Client) NewRequest(method string, header message.Header, body []byte) *message.Request {
	return message.NewRequest(method, c.url.Path, header, body)
}

// Do builds and sends a request in one call.
func (c *Client) Do(ctx context.Context, method, path string, header message.Header, body []byte) (*message.Response, error) {
	return c.Send(ctx, message.NewRequest(method, path, header, body))
}

// Send writes req and reads the response until the server closes the
// connection or the buffer is full. Host and Connection headers are
// added when missing.
func (c *Client) Send(ctx context.Context, req *message.Request) (*message.Response, error) {
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if req.GetHeader(message.HeaderHost) == "" {
		req.SetHeader(message.HeaderHost, c.url.HostHeader())
	}
	if req.GetHeader(message.HeaderConnection) == "" {
		req.SetHeader(message.HeaderConnection, "close")
	}

	tc, err := conn.Dial(ctx, "tcp", c.url.Addr(), c.clientTLSConfig())
	if err != nil {
		return nil, c.ctxErr(ctx, fmt.Errorf("failed to connect to %s: %w", c.url.Addr(), err))
	}
	defer func() { _ = tc.Close() }()

	// Unblock pending I/O when the context ends.
	stop := context.AfterFunc(ctx, func() {
		_ = tc.Abort()
	})
	defer stop()

	if c.trace != nil && c.trace.Connected != nil {
		c.trace.Connected(tc.State())
	}

	data := req.Build()
	if _, err := tc.Write(data); err != nil {
		return nil, c.ctxErr(ctx, fmt.Errorf("failed to send request: %w", err))
	}
	if c.trace != nil && c.trace.WroteRequest != nil {
		c.trace.WroteRequest(len(data))
	}

	buf := make([]byte, c.bufferSize)
	total := 0
	for total < len(buf) {
		n, err := tc.Read(buf[total:])
		total += n
		if c.trace != nil && c.trace.ReadResponse != nil && n > 0 {
			c.trace.ReadResponse(total)
		}
		if err != nil {
			if total > 0 && errors.Is(err, io.EOF) {
				break
			}
			if total > 0 && ctx.Err() == nil {
				logging.Debug("Response read ended early",
					zap.String("addr", c.url.Addr()),
					zap.Int("bytes", total),
					zap.Error(err),
				)
				break
			}
			return nil, c.ctxErr(ctx, fmt.Errorf("failed to read response: %w", err))
		}
	}

	resp, err := message.ParseResponse(buf[:total])
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	logging.Debug("HTTPS request completed",
		zap.String("method", req.Method()),
		zap.String("url", c.url.String()),
		zap.Int("status", resp.Status()),
		zap.Int("bytes", total),
	)
	return resp, nil
}

// SendAsync sends req in a new goroutine and passes the result to cb.
func (c *Client) SendAsync(ctx context.Context, req *message.Request, cb func(*message.Response, error)) {
	go func() {
		cb(c.Send(ctx, req))
	}()
}

func (c *Client) clientTLSConfig() *tls.Config {
	var cfg *tls.Config
	if c.tlsConfig != nil {
		cfg = c.tlsConfig.Clone()
	} else {
		cfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	if cfg.ServerName == "" {
		cfg.ServerName = c.url.Host
	}
	return cfg
}

// ctxErr prefers the context error when the context ended the request.
func (c *Client) ctxErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		return fmt.Errorf("%w: %v", ctxErr, err)
	}
	return err
}
