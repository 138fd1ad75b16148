package webclient

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// DefaultPort is used when a URL names no port.
const DefaultPort = "443"

var (
	// ErrEmptyURL is returned by ParseURL for an empty string.
	ErrEmptyURL = errors.New("url is empty")
	// ErrInsecureScheme is returned for http:// URLs.
	ErrInsecureScheme = errors.New("http without tls is not supported")
)

// URL is the target of an HTTPS request.
type URL struct {
	Host string
	Port string
	Path string
}

// ParseURL splits an https URL into host, port and path. The scheme is
// optional; the port defaults to 443 and the path to "/".
func ParseURL(raw string) (URL, error) {
	if raw == "" {
		return URL{}, ErrEmptyURL
	}
	if strings.HasPrefix(raw, "http://") {
		return URL{}, ErrInsecureScheme
	}
	rest := strings.TrimPrefix(raw, "https://")
	if i := strings.Index(rest, "://"); i >= 0 {
		return URL{}, fmt.Errorf("unsupported scheme %q", rest[:i])
	}

	u := URL{Path: "/", Port: DefaultPort}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		u.Path = rest[i:]
		rest = rest[:i]
	}

	host := rest
	if h, p, err := net.SplitHostPort(rest); err == nil {
		host, u.Port = h, p
	} else if strings.HasPrefix(rest, "[") && strings.HasSuffix(rest, "]") {
		host = rest[1 : len(rest)-1]
	}
	if host == "" {
		return URL{}, fmt.Errorf("url %q has no host", raw)
	}
	if u.Port == "" {
		return URL{}, fmt.Errorf("url %q has an empty port", raw)
	}
	u.Host = host
	return u, nil
}

// Addr returns host:port for dialing.
func (u URL) Addr() string {
	return net.JoinHostPort(u.Host, u.Port)
}

// HostHeader returns the value of the Host header for u.
func (u URL) HostHeader() string {
	if u.Port == DefaultPort {
		if strings.Contains(u.Host, ":") {
			return "[" + u.Host + "]"
		}
		return u.Host
	}
	return u.Addr()
}

func (u URL) String() string {
	return "https://" + u.HostHeader() + u.Path
}
