package server

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MINAqwq/LibWebli/internal/certs"
	"github.com/MINAqwq/LibWebli/internal/logging"
	"github.com/MINAqwq/LibWebli/internal/message"
	"github.com/MINAqwq/LibWebli/internal/router"
	"github.com/MINAqwq/LibWebli/internal/storage"
	"github.com/MINAqwq/LibWebli/internal/websocket"
)

type testServer struct {
	srv    *Server
	addr   string
	client *tls.Config
}

// startServer serves r on a loopback listener with a fresh self-signed
// certificate. The server is stopped when the test ends.
func startServer(t *testing.T, cfg *Config, r *router.Router, opts ...Option) *testServer {
	t.Helper()

	sc, err := certs.Generate(certs.Params{Hosts: []string{"127.0.0.1"}})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	serverTLS, err := NewTLSConfigFromMemory(sc.CertPEM, sc.KeyPEM)
	if err != nil {
		t.Fatalf("NewTLSConfigFromMemory failed: %v", err)
	}

	if cfg == nil {
		cfg = &Config{}
	}
	srv, err := New(cfg, r, append([]Option{WithTLSConfig(serverTLS)}, opts...)...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(15 * time.Second):
			t.Error("server did not stop")
		}
	})

	return &testServer{
		srv:    srv,
		addr:   ln.Addr().String(),
		client: &tls.Config{RootCAs: sc.CertPool(), ServerName: "127.0.0.1"},
	}
}

// roundTrip sends raw bytes and reads until the server closes.
func (ts *testServer) roundTrip(t *testing.T, raw string) []byte {
	t.Helper()

	c, err := tls.Dial("tcp", ts.addr, ts.client)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer func() { _ = c.Close() }()
	_ = c.SetDeadline(time.Now().Add(5 * time.Second))

	if _, err := c.Write([]byte(raw)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := io.ReadAll(c)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	return data
}

func (ts *testServer) do(t *testing.T, raw string) *message.Response {
	t.Helper()

	data := ts.roundTrip(t, raw)
	resp, err := message.ParseResponse(data)
	if err != nil {
		t.Fatalf("ParseResponse(%q) failed: %v", data, err)
	}
	return resp
}

func demoRouter() *router.Router {
	r := router.New()
	r.Get("/", func(req *message.Request, resp *message.Response) router.Outcome {
		resp.SetHeader(message.HeaderContentType, "text/html")
		resp.SetBodyString("<h1>home</h1>")
		return router.Next()
	})
	r.Get("/admin", func(req *message.Request, resp *message.Response) router.Outcome {
		if req.GetHeader("Token") != "secret" {
			return router.Unauthorized()
		}
		return router.Next()
	}, func(req *message.Request, resp *message.Response) router.Outcome {
		resp.SetBodyString("welcome")
		return router.Next()
	})
	r.Post("/echo", func(req *message.Request, resp *message.Response) router.Outcome {
		resp.SetBody(req.Body())
		return router.Next()
	})
	r.Get("/teapot", func(req *message.Request, resp *message.Response) router.Outcome {
		return router.Respond(message.NewResponse(message.StatusTeapot, nil, []byte("short and stout")))
	})
	r.Get("/bad", func(req *message.Request, resp *message.Response) router.Outcome {
		return router.BadRequest()
	})

	v1 := router.New()
	v1.Get("/version", func(req *message.Request, resp *message.Response) router.Outcome {
		resp.SetBodyString(req.Path() + " " + req.RoutePath())
		return router.Next()
	})
	r.Group("/v1", v1)
	return r
}

func TestDispatch(t *testing.T) {
	ts := startServer(t, nil, demoRouter())

	tests := []struct {
		name       string
		raw        string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "plain route",
			raw:        "GET / HTTP/1.1\r\nHost: x\r\n\r\n",
			wantStatus: 200,
			wantBody:   "<h1>home</h1>",
		},
		{
			name:       "query string ignored for routing",
			raw:        "GET /?a=1 HTTP/1.1\r\n\r\n",
			wantStatus: 200,
			wantBody:   "<h1>home</h1>",
		},
		{
			name:       "unknown route",
			raw:        "GET /missing HTTP/1.1\r\n\r\n",
			wantStatus: 404,
			wantBody:   "<h1>Not Found</h1>",
		},
		{
			name:       "wrong method",
			raw:        "DELETE / HTTP/1.1\r\n\r\n",
			wantStatus: 404,
			wantBody:   "<h1>Not Found</h1>",
		},
		{
			name:       "guard rejects",
			raw:        "GET /admin HTTP/1.1\r\n\r\n",
			wantStatus: 401,
			wantBody:   "<h1>Unauthorized</h1>",
		},
		{
			name:       "guard passes",
			raw:        "GET /admin HTTP/1.1\r\nToken: secret\r\n\r\n",
			wantStatus: 200,
			wantBody:   "welcome",
		},
		{
			name:       "body bounded by Content-Length",
			raw:        "POST /echo HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello world",
			wantStatus: 200,
			wantBody:   "hello",
		},
		{
			name:       "explicit response",
			raw:        "GET /teapot HTTP/1.1\r\n\r\n",
			wantStatus: 418,
			wantBody:   "short and stout",
		},
		{
			name:       "handler bad request",
			raw:        "GET /bad HTTP/1.1\r\n\r\n",
			wantStatus: 400,
			wantBody:   "<h1>Bad Request</h1>",
		},
		{
			name:       "group strips prefix",
			raw:        "GET /v1/version HTTP/1.1\r\n\r\n",
			wantStatus: 200,
			wantBody:   "/v1/version /version",
		},
		{
			name:       "malformed request line",
			raw:        "garbage\r\n\r\n",
			wantStatus: 400,
			wantBody:   "<h1>Bad Request</h1>",
		},
		{
			name:       "header without colon",
			raw:        "GET / HTTP/1.1\r\nbroken header\r\n\r\n",
			wantStatus: 400,
			wantBody:   "<h1>Bad Request</h1>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, tt.raw)
			if resp.Status() != tt.wantStatus {
				t.Errorf("Status = %d, want %d", resp.Status(), tt.wantStatus)
			}
			if string(resp.Body()) != tt.wantBody {
				t.Errorf("Body = %q, want %q", resp.Body(), tt.wantBody)
			}
			if resp.Version() != "HTTP/1.1" {
				t.Errorf("Version = %q, want HTTP/1.1", resp.Version())
			}
		})
	}
}

func TestDefaultResponsesAreHTML(t *testing.T) {
	ts := startServer(t, nil, router.New())

	resp := ts.do(t, "GET /nothing HTTP/1.1\r\n\r\n")
	if got := resp.GetHeader(message.HeaderContentType); got != "text/html" {
		t.Errorf("Content-Type = %q, want text/html", got)
	}
	if got := resp.GetHeader(message.HeaderContentLength); got != "18" {
		t.Errorf("Content-Length = %q, want 18", got)
	}
}

func TestWithDefault(t *testing.T) {
	custom := message.NewResponse(message.StatusNotFound, message.Header{
		message.HeaderContentType: "text/plain",
	}, []byte("gone fishing"))
	ts := startServer(t, nil, router.New(), WithDefault(router.KindNotFound, custom))

	// Later changes to the caller's response do not leak into the server.
	custom.SetBodyString("mutated")

	resp := ts.do(t, "GET /x HTTP/1.1\r\n\r\n")
	if string(resp.Body()) != "gone fishing" {
		t.Errorf("Body = %q, want gone fishing", resp.Body())
	}
	if got := resp.GetHeader(message.HeaderContentType); got != "text/plain" {
		t.Errorf("Content-Type = %q, want text/plain", got)
	}
}

func TestServeFromStorage(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "static"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "static", "unauthorized.html"), []byte("<p>no entry</p>"), 0644); err != nil {
		t.Fatal(err)
	}

	r := router.New()
	r.Get("/page", func(req *message.Request, resp *message.Response) router.Outcome {
		return router.FromStorage("static/unauthorized.html", "text/html",
			router.WithStatus(message.StatusUnauthorized),
			router.WithHeader("Cache-Control", "no-store"))
	})
	r.Get("/gone", func(req *message.Request, resp *message.Response) router.Outcome {
		return router.FromStorage("static/missing.html", "text/html")
	})
	ts := startServer(t, &Config{StorageRoot: root}, r)

	resp := ts.do(t, "GET /page HTTP/1.1\r\n\r\n")
	if resp.Status() != 401 {
		t.Errorf("Status = %d, want 401", resp.Status())
	}
	if string(resp.Body()) != "<p>no entry</p>" {
		t.Errorf("Body = %q", resp.Body())
	}
	if resp.GetHeader("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", resp.GetHeader("Cache-Control"))
	}
	if resp.GetHeader(message.HeaderContentType) != "text/html" {
		t.Errorf("Content-Type = %q, want text/html", resp.GetHeader(message.HeaderContentType))
	}

	resp = ts.do(t, "GET /gone HTTP/1.1\r\n\r\n")
	if resp.Status() != 200 {
		t.Errorf("missing file Status = %d, want 200", resp.Status())
	}
	if len(resp.Body()) != 0 {
		t.Errorf("missing file Body = %q, want empty", resp.Body())
	}
}

func TestServeFromStorageCache(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("cached"), 0644); err != nil {
		t.Fatal(err)
	}
	cache, err := storage.NewCache(root)
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	r := router.New()
	r.Get("/a", func(req *message.Request, resp *message.Response) router.Outcome {
		return router.FromStorage("a.txt", "text/plain")
	})
	ts := startServer(t, nil, r, WithStorage(cache))

	resp := ts.do(t, "GET /a HTTP/1.1\r\n\r\n")
	if string(resp.Body()) != "cached" {
		t.Errorf("Body = %q, want cached", resp.Body())
	}
	if cache.Len() != 1 {
		t.Errorf("cache Len = %d, want 1", cache.Len())
	}
}

func TestHandlerPanicRecovered(t *testing.T) {
	r := router.New()
	r.Get("/boom", func(req *message.Request, resp *message.Response) router.Outcome {
		panic("handler bug")
	})
	r.Get("/ok", func(req *message.Request, resp *message.Response) router.Outcome {
		resp.SetBodyString("still up")
		return router.Next()
	})
	ts := startServer(t, nil, r)

	resp := ts.do(t, "GET /boom HTTP/1.1\r\n\r\n")
	if resp.Status() != 500 {
		t.Errorf("Status = %d, want 500", resp.Status())
	}

	resp = ts.do(t, "GET /ok HTTP/1.1\r\n\r\n")
	if string(resp.Body()) != "still up" {
		t.Errorf("Body = %q, want still up", resp.Body())
	}
}

func TestUpgradeWithoutHandshakeFallsThrough(t *testing.T) {
	r := router.New()
	r.Get("/ws", func(req *message.Request, resp *message.Response) router.Outcome {
		resp.SetHeader(message.HeaderContentType, "text/plain")
		resp.SetBodyString("websocket endpoint")
		return router.UpgradeToWebSocket(req.GetHeader(message.HeaderSecWebSocketKey), websocket.Handlers{})
	})
	ts := startServer(t, nil, r)

	tests := []struct {
		name string
		raw  string
	}{
		{"no upgrade headers", "GET /ws HTTP/1.1\r\n\r\n"},
		{"missing key", "GET /ws HTTP/1.1\r\nUpgrade: websocket\r\nConnection: Upgrade\r\n\r\n"},
		{"other protocol", "GET /ws HTTP/1.1\r\nUpgrade: h2c\r\nSec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, tt.raw)
			if resp.Status() != 200 {
				t.Errorf("Status = %d, want 200", resp.Status())
			}
			if got := string(resp.Body()); got != "websocket endpoint" {
				t.Errorf("Body = %q, want %q", got, "websocket endpoint")
			}
		})
	}
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logging.SetLogger(zap.New(core))
	t.Cleanup(func() { logging.SetLogger(nil) })

	ts := startServer(t, &Config{LogRequests: true}, demoRouter())
	ts.do(t, "GET /missing HTTP/1.1\r\n\r\n")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if logs.FilterMessage("GET\t404 | /missing").Len() == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("access line for GET /missing not logged")
}

func dialWebSocket(t *testing.T, ts *testServer, path string) *gws.Conn {
	t.Helper()

	dialer := gws.Dialer{
		TLSClientConfig:  ts.client,
		HandshakeTimeout: 5 * time.Second,
	}
	ws, resp, err := dialer.Dial("wss://"+ts.addr+path, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	if resp.StatusCode != 101 {
		t.Fatalf("StatusCode = %d, want 101", resp.StatusCode)
	}
	return ws
}

func echoRouter(closed chan<- struct{}) *router.Router {
	r := router.New()
	r.Get("/ws", func(req *message.Request, resp *message.Response) router.Outcome {
		if !websocket.IsUpgradeRequest(req) {
			return router.BadRequest()
		}
		return router.UpgradeToWebSocket(req.GetHeader(message.HeaderSecWebSocketKey), websocket.Handlers{
			OnMessage: func(c *websocket.Conn, op websocket.Opcode, data []byte) []*websocket.Frame {
				return []*websocket.Frame{websocket.NewTextFrame("echo: " + string(data))}
			},
			OnClose: func(c *websocket.Conn) {
				close(closed)
			},
		})
	})
	return r
}

func TestWebSocketSession(t *testing.T) {
	closed := make(chan struct{})
	ts := startServer(t, nil, echoRouter(closed))

	ws := dialWebSocket(t, ts, "/ws")
	defer func() { _ = ws.Close() }()
	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))

	pongs := make(chan string, 1)
	ws.SetPongHandler(func(data string) error {
		pongs <- data
		return nil
	})

	if err := ws.WriteControl(gws.PingMessage, []byte("p1"), time.Now().Add(time.Second)); err != nil {
		t.Fatalf("WriteControl(ping) failed: %v", err)
	}
	if err := ws.WriteMessage(gws.TextMessage, []byte("hi")); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}

	mt, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	if mt != gws.TextMessage || string(data) != "echo: hi" {
		t.Errorf("ReadMessage = %d %q, want text echo: hi", mt, data)
	}

	select {
	case got := <-pongs:
		if got != "p1" {
			t.Errorf("pong payload = %q, want p1", got)
		}
	default:
		t.Error("no pong received before the echo")
	}

	msg := gws.FormatCloseMessage(gws.CloseNormalClosure, "")
	if err := ws.WriteControl(gws.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
		t.Fatalf("WriteControl(close) failed: %v", err)
	}
	_, _, err = ws.ReadMessage()
	if !gws.IsCloseError(err, gws.CloseNormalClosure) {
		t.Errorf("ReadMessage after close = %v, want close 1000", err)
	}

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Error("OnClose did not run")
	}
}

func TestShutdownClosesWebSockets(t *testing.T) {
	closed := make(chan struct{})
	ts := startServer(t, nil, echoRouter(closed))

	ws := dialWebSocket(t, ts, "/ws")
	defer func() { _ = ws.Close() }()

	// Make sure the session is running before shutting down.
	if err := ws.WriteMessage(gws.TextMessage, []byte("x")); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}
	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := ws.ReadMessage(); err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ts.srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	_, _, err := ws.ReadMessage()
	if err == nil {
		t.Fatal("ReadMessage after shutdown should fail")
	}
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Error("OnClose did not run")
	}
	if n := ts.srv.ActiveConnections(); n != 0 {
		t.Errorf("ActiveConnections = %d, want 0", n)
	}
}

func TestShutdownWithStalledWebSocketPeer(t *testing.T) {
	flooding := make(chan struct{})
	r := router.New()
	r.Get("/ws", func(req *message.Request, resp *message.Response) router.Outcome {
		return router.UpgradeToWebSocket(req.GetHeader(message.HeaderSecWebSocketKey), websocket.Handlers{
			OnOpen: func(c *websocket.Conn) bool {
				go func() {
					chunk := make([]byte, 1<<20)
					for i := 0; ; i++ {
						if i == 1 {
							close(flooding)
						}
						if err := c.SendFrame(websocket.NewBinaryFrame(chunk)); err != nil {
							return
						}
					}
				}()
				return true
			},
		})
	})
	ts := startServer(t, nil, r)

	c, err := tls.Dial("tcp", ts.addr, ts.client)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer func() { _ = c.Close() }()

	handshake := "GET /ws HTTP/1.1\r\nHost: 127.0.0.1\r\nUpgrade: websocket\r\nConnection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\nSec-WebSocket-Version: 13\r\n\r\n"
	if _, err := c.Write([]byte(handshake)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	_ = c.SetReadDeadline(time.Now().Add(5 * time.Second))
	buf := make([]byte, 512)
	if _, err := c.Read(buf); err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	// The peer stops reading here; let the server fill the socket buffers.
	select {
	case <-flooding:
	case <-time.After(5 * time.Second):
		t.Fatal("server never started sending")
	}
	time.Sleep(300 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	done := make(chan error, 1)
	start := time.Now()
	go func() { done <- ts.srv.Shutdown(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Shutdown() error = %v, want nil", err)
		}
		if elapsed := time.Since(start); elapsed > 3*time.Second {
			t.Errorf("Shutdown took %v", elapsed)
		}
	case <-time.After(6 * time.Second):
		t.Fatal("Shutdown did not return with a stalled WebSocket peer")
	}
}

func TestServeAfterShutdown(t *testing.T) {
	ts := startServer(t, nil, router.New())

	if err := ts.srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	if err := ts.srv.Serve(context.Background(), ln); !errors.Is(err, ErrServerClosed) {
		t.Errorf("Serve after Shutdown = %v, want ErrServerClosed", err)
	}
}

func TestMaxConns(t *testing.T) {
	ts := startServer(t, &Config{MaxConns: 1}, demoRouter())

	// Hold the only slot with a connection that never sends a request.
	holder, err := tls.Dial("tcp", ts.addr, ts.client)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}

	dialer := &net.Dialer{Timeout: 300 * time.Millisecond}
	if c, err := tls.DialWithDialer(dialer, "tcp", ts.addr, ts.client); err == nil {
		_ = c.Close()
		t.Fatal("second connection completed a handshake while the slot was taken")
	}

	_ = holder.Close()

	resp := ts.do(t, "GET / HTTP/1.1\r\n\r\n")
	if resp.Status() != 200 {
		t.Errorf("Status = %d, want 200", resp.Status())
	}
}

func TestPlaintextClientDropped(t *testing.T) {
	ts := startServer(t, nil, demoRouter())

	c, err := net.Dial("tcp", ts.addr)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer func() { _ = c.Close() }()
	_ = c.SetDeadline(time.Now().Add(5 * time.Second))

	if _, err := c.Write([]byte("GET / HTTP/1.1\r\n\r\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, _ := io.ReadAll(c)
	if strings.Contains(string(data), "HTTP/1.1 200") {
		t.Errorf("plaintext request was served: %q", data)
	}

	// The server keeps serving TLS clients.
	if resp := ts.do(t, "GET / HTTP/1.1\r\n\r\n"); resp.Status() != 200 {
		t.Errorf("Status = %d, want 200", resp.Status())
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil, router.New()); err == nil {
		t.Error("New(nil config) should fail")
	}
	if _, err := New(&Config{}, nil); err == nil {
		t.Error("New(nil router) should fail")
	}
	if _, err := New(&Config{}, router.New()); err == nil {
		t.Error("New without certificate should fail")
	}
	if _, err := New(&Config{CertPath: "/nonexistent/cert.pem", KeyPath: "/nonexistent/key.pem"}, router.New()); err == nil {
		t.Error("New with missing certificate files should fail")
	}
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()
	sc, err := certs.Generate(certs.Params{})
	if err != nil {
		t.Fatal(err)
	}
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	if err := sc.WriteFiles(certPath, keyPath); err != nil {
		t.Fatal(err)
	}

	srv, err := New(&Config{CertPath: certPath, KeyPath: keyPath}, router.New())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if srv.config.ReadBufferSize != DefaultReadBufferSize {
		t.Errorf("ReadBufferSize = %d, want %d", srv.config.ReadBufferSize, DefaultReadBufferSize)
	}
	if srv.Addr() != nil {
		t.Errorf("Addr before Serve = %v, want nil", srv.Addr())
	}
}

func TestConfigAddr(t *testing.T) {
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{Host: "127.0.0.1", Port: 8443}, "127.0.0.1:8443"},
		{Config{Port: 443}, ":443"},
		{Config{Host: "::1", Port: 8443}, "[::1]:8443"},
	}
	for _, tt := range tests {
		if got := tt.cfg.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}

func TestDefaults(t *testing.T) {
	d := DefaultResponses()

	tests := []struct {
		kind       router.Kind
		wantStatus int
		wantBody   string
	}{
		{router.KindNotFound, 404, "<h1>Not Found</h1>"},
		{router.KindBadRequest, 400, "<h1>Bad Request</h1>"},
		{router.KindUnauthorized, 401, "<h1>Unauthorized</h1>"},
	}
	for _, tt := range tests {
		resp := d.Response(tt.kind)
		if resp.Status() != tt.wantStatus || string(resp.Body()) != tt.wantBody {
			t.Errorf("Response(%s) = %d %q, want %d %q", tt.kind, resp.Status(), resp.Body(), tt.wantStatus, tt.wantBody)
		}
	}

	first := d.Response(router.KindNotFound)
	first.SetBodyString("changed")
	if got := string(d.Response(router.KindNotFound).Body()); got != "<h1>Not Found</h1>" {
		t.Errorf("default mutated through a copy: %q", got)
	}

	d.Set(router.KindNotFound, nil)
	if resp := d.Response(router.KindNotFound); resp.Status() != 404 || len(resp.Body()) != 0 {
		t.Errorf("fallback = %d %q, want 404 empty", resp.Status(), resp.Body())
	}
}

func TestTLSInfo(t *testing.T) {
	sc, err := certs.Generate(certs.Params{})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := NewTLSConfigFromMemory(sc.CertPEM, sc.KeyPEM)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion = %x, want TLS 1.2", cfg.MinVersion)
	}

	info := TLSInfo(cfg)
	if info["min_version"] != "TLS 1.2" {
		t.Errorf("min_version = %v, want TLS 1.2", info["min_version"])
	}
	if info["num_certs"] != 1 {
		t.Errorf("num_certs = %v, want 1", info["num_certs"])
	}
	if TLSInfo(nil) != nil {
		t.Error("TLSInfo(nil) should be nil")
	}

	if _, err := NewTLSConfigFromMemory([]byte("bad"), []byte("bad")); err == nil {
		t.Error("NewTLSConfigFromMemory(bad) should fail")
	}
}
