package message

import (
	"strings"
	"time"
)

// SameSite attribute values.
const (
	SameSiteStrict = "Strict"
	SameSiteLax    = "Lax"
	SameSiteNone   = "None"
)

// CookieTimeFormat is the layout used for the Expires attribute.
const CookieTimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// Cookie describes a Set-Cookie value. Secure is always emitted since the
// server only speaks TLS.
type Cookie struct {
	Name     string
	Value    string
	HTTPOnly bool
	Domain   string
	Path     string
	Expires  time.Time
	SameSite string
}

// NewCookie returns a cookie with SameSite=Strict.
func NewCookie(name, value string) Cookie {
	return Cookie{Name: name, Value: value, SameSite: SameSiteStrict}
}

// String renders the cookie as
// "name=value; Secure[; HttpOnly][; Domain=d][; Path=p][; Expires=e][; SameSite=s]".
// It returns "" when name or value is empty.
func (c Cookie) String() string {
	if c.Name == "" || c.Value == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)
	b.WriteString("; Secure")

	if c.HTTPOnly {
		b.WriteString("; HttpOnly")
	}
	if c.Domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(c.Domain)
	}
	if c.Path != "" {
		b.WriteString("; Path=")
		b.WriteString(c.Path)
	}
	if !c.Expires.IsZero() {
		b.WriteString("; Expires=")
		b.WriteString(c.Expires.UTC().Format(CookieTimeFormat))
	}
	if c.SameSite != "" {
		b.WriteString("; SameSite=")
		b.WriteString(c.SameSite)
	}

	return b.String()
}

// BuildCookie is shorthand for c.String().
func BuildCookie(c Cookie) string {
	return c.String()
}

// ExtractCookies parses a Cookie header of the form "a=1; b=2".
// Any malformed pair makes the whole result empty.
func ExtractCookies(s string) map[string]string {
	cookies := make(map[string]string)

	for s != "" {
		key, rest, ok := strings.Cut(s, "=")
		if !ok || key == "" || rest == "" {
			return map[string]string{}
		}

		end := strings.IndexAny(rest, "; ")
		if end < 0 {
			cookies[key] = rest
			return cookies
		}
		if end == 0 || !strings.HasPrefix(rest[end:], "; ") {
			return map[string]string{}
		}

		cookies[key] = rest[:end]
		s = rest[end+2:]
	}

	return cookies
}
