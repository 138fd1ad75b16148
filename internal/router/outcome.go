package router

import (
	"github.com/MINAqwq/LibWebli/internal/message"
	"github.com/MINAqwq/LibWebli/internal/websocket"
)

// Kind identifies what a handler wants the server to do next.
type Kind int

const (
	// KindContinue runs the next handler in the chain.
	KindContinue Kind = iota
	// KindRespond ends the chain with an explicit response.
	KindRespond
	// KindNotFound ends the chain with the default 404 response.
	KindNotFound
	// KindBadRequest ends the chain with the default 400 response.
	KindBadRequest
	// KindUnauthorized ends the chain with the default 401 response.
	KindUnauthorized
	// KindServeFromStorage ends the chain with the contents of a file.
	KindServeFromStorage
	// KindUpgrade switches the connection to the WebSocket protocol.
	KindUpgrade
)

func (k Kind) String() string {
	switch k {
	case KindContinue:
		return "continue"
	case KindRespond:
		return "respond"
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindServeFromStorage:
		return "serve_from_storage"
	case KindUpgrade:
		return "upgrade"
	default:
		return "unknown"
	}
}

// StorageTarget describes a file response.
type StorageTarget struct {
	Path        string
	ContentType string
	Status      int
	Header      message.Header
}

// UpgradeTarget describes a WebSocket upgrade.
type UpgradeTarget struct {
	Key      string
	Handlers websocket.Handlers
}

// Outcome is the result of a handler. The zero value continues the chain.
type Outcome struct {
	Kind     Kind
	Response *message.Response
	Storage  StorageTarget
	Upgrade  UpgradeTarget
}

// Terminal reports whether the outcome ends the handler chain.
func (o Outcome) Terminal() bool {
	return o.Kind != KindContinue
}

// Next continues with the following handler.
func Next() Outcome {
	return Outcome{Kind: KindContinue}
}

// Respond ends the chain with resp.
func Respond(resp *message.Response) Outcome {
	return Outcome{Kind: KindRespond, Response: resp}
}

// NotFound ends the chain with the default 404 response.
func NotFound() Outcome {
	return Outcome{Kind: KindNotFound}
}

// BadRequest ends the chain with the default 400 response.
func BadRequest() Outcome {
	return Outcome{Kind: KindBadRequest}
}

// Unauthorized ends the chain with the default 401 response.
func Unauthorized() Outcome {
	return Outcome{Kind: KindUnauthorized}
}

// StorageOption adjusts a file response.
type StorageOption func(*StorageTarget)

// WithStatus overrides the default 200 status of a file response.
func WithStatus(code int) StorageOption {
	return func(t *StorageTarget) {
		t.Status = code
	}
}

// WithHeader adds a header to a file response.
func WithHeader(key, value string) StorageOption {
	return func(t *StorageTarget) {
		if t.Header == nil {
			t.Header = make(message.Header)
		}
		t.Header.Set(key, value)
	}
}

// FromStorage ends the chain with the file at path served as contentType.
func FromStorage(path, contentType string, opts ...StorageOption) Outcome {
	target := StorageTarget{Path: path, ContentType: contentType, Status: message.StatusOK}
	for _, opt := range opts {
		opt(&target)
	}
	return Outcome{Kind: KindServeFromStorage, Storage: target}
}

// UpgradeToWebSocket answers with 101 Switching Protocols and hands the
// connection to a WebSocket frame loop driven by h.
func UpgradeToWebSocket(key string, h websocket.Handlers) Outcome {
	return Outcome{Kind: KindUpgrade, Upgrade: UpgradeTarget{Key: key, Handlers: h}}
}
