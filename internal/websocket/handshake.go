package websocket

import (
	"crypto/sha1"
	"encoding/base64"
	"strings"

	"github.com/MINAqwq/LibWebli/internal/message"
)

// GUID is appended to the client key when computing the accept value.
const GUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// AcceptKey computes Sec-WebSocket-Accept for a client key.
func AcceptKey(key string) string {
	h := sha1.New()
	h.Write([]byte(key + GUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// IsUpgradeRequest reports whether req asks for a WebSocket upgrade: it
// carries a Sec-WebSocket-Key and an Upgrade header naming websocket.
func IsUpgradeRequest(req *message.Request) bool {
	if strings.TrimSpace(req.GetHeader(message.HeaderSecWebSocketKey)) == "" {
		return false
	}
	return headerContainsToken(req.GetHeader(message.HeaderUpgrade), "websocket")
}

// HandshakeResponse builds the 101 Switching Protocols response for key.
func HandshakeResponse(key string) *message.Response {
	return message.NewResponse(message.StatusSwitchingProtocols, message.Header{
		message.HeaderUpgrade:            "websocket",
		message.HeaderConnection:         "Upgrade",
		message.HeaderSecWebSocketAccept: AcceptKey(key),
	}, nil)
}

// headerContainsToken checks if a comma-separated header value contains
// token (case-insensitive).
func headerContainsToken(value, token string) bool {
	for _, part := range strings.Split(value, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}
