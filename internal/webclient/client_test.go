package webclient

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/MINAqwq/LibWebli/internal/certs"
	"github.com/MINAqwq/LibWebli/internal/message"
	"github.com/MINAqwq/LibWebli/internal/router"
	"github.com/MINAqwq/LibWebli/internal/server"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		raw     string
		want    URL
		wantErr bool
	}{
		{"https://example.com", URL{Host: "example.com", Port: "443", Path: "/"}, false},
		{"https://example.com/", URL{Host: "example.com", Port: "443", Path: "/"}, false},
		{"https://example.com:8443/api/v1?x=1", URL{Host: "example.com", Port: "8443", Path: "/api/v1?x=1"}, false},
		{"example.com/path", URL{Host: "example.com", Port: "443", Path: "/path"}, false},
		{"https://127.0.0.1:9000", URL{Host: "127.0.0.1", Port: "9000", Path: "/"}, false},
		{"https://[::1]:8443/x", URL{Host: "::1", Port: "8443", Path: "/x"}, false},
		{"https://[::1]/x", URL{Host: "::1", Port: "443", Path: "/x"}, false},
		{"", URL{}, true},
		{"http://example.com", URL{}, true},
		{"ftp://example.com", URL{}, true},
		{"https:///path", URL{}, true},
		{"https://example.com:/", URL{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseURL(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseURL(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseURL(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}

	if _, err := ParseURL("http://x"); !errors.Is(err, ErrInsecureScheme) {
		t.Errorf("ParseURL(http) error = %v, want ErrInsecureScheme", err)
	}
}

func TestURLHostHeader(t *testing.T) {
	tests := []struct {
		u    URL
		want string
	}{
		{URL{Host: "example.com", Port: "443"}, "example.com"},
		{URL{Host: "example.com", Port: "8443"}, "example.com:8443"},
		{URL{Host: "::1", Port: "443"}, "[::1]"},
		{URL{Host: "::1", Port: "8443"}, "[::1]:8443"},
	}
	for _, tt := range tests {
		if got := tt.u.HostHeader(); got != tt.want {
			t.Errorf("HostHeader(%+v) = %q, want %q", tt.u, got, tt.want)
		}
	}
	if got := (URL{Host: "a", Port: "443", Path: "/b"}).String(); got != "https://a/b" {
		t.Errorf("String() = %q", got)
	}
}

// startServer runs a webli server on loopback and returns its URL and a
// client TLS config trusting it.
func startServer(t *testing.T, r *router.Router) (string, *tls.Config) {
	t.Helper()

	sc, err := certs.Generate(certs.Params{Hosts: []string{"127.0.0.1"}})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	serverTLS, err := server.NewTLSConfigFromMemory(sc.CertPEM, sc.KeyPEM)
	if err != nil {
		t.Fatal(err)
	}
	srv, err := server.New(&server.Config{}, r, server.WithTLSConfig(serverTLS))
	if err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return "https://" + ln.Addr().String(), &tls.Config{RootCAs: sc.CertPool(), ServerName: "127.0.0.1"}
}

func TestSend(t *testing.T) {
	r := router.New()
	r.Get("/hello", func(req *message.Request, resp *message.Response) router.Outcome {
		resp.SetHeader("X-Host", req.GetHeader(message.HeaderHost))
		resp.SetBodyString("hi " + req.Query()["name"])
		return router.Next()
	})
	r.Post("/upper", func(req *message.Request, resp *message.Response) router.Outcome {
		resp.SetBodyString(strings.ToUpper(string(req.Body())))
		return router.Next()
	})
	base, tlsCfg := startServer(t, r)

	var connected, wrote, read bool
	client, err := New(base+"/hello?name=mina", WithTLSConfig(tlsCfg), WithTrace(&Trace{
		Connected:    func(tls.ConnectionState) { connected = true },
		WroteRequest: func(int) { wrote = true },
		ReadResponse: func(int) { read = true },
	}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	resp, err := client.Send(context.Background(), client.NewRequest(message.MethodGet, nil, nil))
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if resp.Status() != 200 {
		t.Errorf("Status = %d, want 200", resp.Status())
	}
	if string(resp.Body()) != "hi mina" {
		t.Errorf("Body = %q, want hi mina", resp.Body())
	}
	if got := resp.GetHeader("X-Host"); got != client.URL().HostHeader() {
		t.Errorf("server saw Host %q, want %q", got, client.URL().HostHeader())
	}
	if !connected || !wrote || !read {
		t.Errorf("trace callbacks: connected=%v wrote=%v read=%v", connected, wrote, read)
	}

	resp, err = client.Do(context.Background(), message.MethodPost, "/upper", nil, []byte("shout"))
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if string(resp.Body()) != "SHOUT" {
		t.Errorf("Body = %q, want SHOUT", resp.Body())
	}

	resp, err = client.Do(context.Background(), message.MethodGet, "/missing", nil, nil)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if resp.Status() != 404 {
		t.Errorf("Status = %d, want 404", resp.Status())
	}
}

func TestSendAsync(t *testing.T) {
	r := router.New()
	r.Get("/", func(req *message.Request, resp *message.Response) router.Outcome {
		resp.SetBodyString("async")
		return router.Next()
	})
	base, tlsCfg := startServer(t, r)

	client, err := New(base, WithTLSConfig(tlsCfg))
	if err != nil {
		t.Fatal(err)
	}

	type result struct {
		resp *message.Response
		err  error
	}
	results := make(chan result, 1)
	client.SendAsync(context.Background(), client.NewRequest(message.MethodGet, nil, nil), func(resp *message.Response, err error) {
		results <- result{resp, err}
	})

	select {
	case res := <-results:
		if res.err != nil {
			t.Fatalf("SendAsync error = %v", res.err)
		}
		if string(res.resp.Body()) != "async" {
			t.Errorf("Body = %q, want async", res.resp.Body())
		}
	case <-time.After(10 * time.Second):
		t.Fatal("callback not called")
	}
}

func TestSendUntrustedCertificate(t *testing.T) {
	base, _ := startServer(t, router.New())

	client, err := New(base)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.Do(context.Background(), message.MethodGet, "/", nil, nil); err == nil {
		t.Error("Send to a self-signed server without trust should fail")
	}
}

func TestSendContextCancelled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = ln.Close() }()

	// Accept and never answer.
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer func() { _ = c.Close() }()
		time.Sleep(5 * time.Second)
	}()

	client, err := New("https://" + ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = client.Do(ctx, message.MethodGet, "/", nil, nil)
	if err == nil {
		t.Fatal("Do should fail when the context expires")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want DeadlineExceeded", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Errorf("Do took %v, context deadline was not honored", time.Since(start))
	}
}

func TestSetURL(t *testing.T) {
	client, err := New("https://a.example")
	if err != nil {
		t.Fatal(err)
	}
	if err := client.SetURL("https://b.example:444/x"); err != nil {
		t.Fatalf("SetURL failed: %v", err)
	}
	if got := client.URL(); got.Host != "b.example" || got.Port != "444" || got.Path != "/x" {
		t.Errorf("URL() = %+v", got)
	}
	if err := client.SetURL("http://c.example"); err == nil {
		t.Error("SetURL(http) should fail")
	}
	if _, err := New(""); !errors.Is(err, ErrEmptyURL) {
		t.Errorf("New(\"\") error = %v, want ErrEmptyURL", err)
	}
}
