package message

import (
	"sort"
	"strings"
)

// Well-known header names.
const (
	HeaderCookie              = "Cookie"
	HeaderConnection          = "Connection"
	HeaderContentLength       = "Content-Length"
	HeaderContentType         = "Content-Type"
	HeaderHost                = "Host"
	HeaderSetCookie           = "Set-Cookie"
	HeaderUserAgent           = "User-Agent"
	HeaderUpgrade             = "Upgrade"
	HeaderSecWebSocketKey     = "Sec-WebSocket-Key"
	HeaderSecWebSocketAccept  = "Sec-WebSocket-Accept"
	HeaderSecWebSocketVersion = "Sec-WebSocket-Version"
)

// Header maps header names to values. Keys are unique; the last write wins.
type Header map[string]string

// Get returns the value stored under key. An exact match is preferred,
// otherwise the first case-insensitive match is used.
func (h Header) Get(key string) string {
	if v, ok := h[key]; ok {
		return v
	}
	for k, v := range h {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// Has reports whether key is present (case-insensitively).
func (h Header) Has(key string) bool {
	if _, ok := h[key]; ok {
		return true
	}
	for k := range h {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// Set stores value under key, replacing any variant spelling of the key.
func (h Header) Set(key, value string) {
	h.Del(key)
	h[key] = value
}

// Del removes key and any case variants of it.
func (h Header) Del(key string) {
	for k := range h {
		if strings.EqualFold(k, key) {
			delete(h, k)
		}
	}
}

// Clone returns a copy of h.
func (h Header) Clone() Header {
	out := make(Header, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Keys returns the header names in sorted order.
func (h Header) Keys() []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
