package server

import (
	"github.com/MINAqwq/LibWebli/internal/message"
	"github.com/MINAqwq/LibWebli/internal/router"
)

// Defaults maps error outcomes to the responses sent for them. Entries are
// cloned on every use, so handlers never share a response.
type Defaults map[router.Kind]*message.Response

// DefaultResponses returns the built-in HTML error pages.
func DefaultResponses() Defaults {
	return Defaults{
		router.KindNotFound:     htmlResponse(message.StatusNotFound, "<h1>Not Found</h1>"),
		router.KindBadRequest:   htmlResponse(message.StatusBadRequest, "<h1>Bad Request</h1>"),
		router.KindUnauthorized: htmlResponse(message.StatusUnauthorized, "<h1>Unauthorized</h1>"),
	}
}

// Set stores a copy of resp for kind.
func (d Defaults) Set(kind router.Kind, resp *message.Response) {
	if resp == nil {
		delete(d, kind)
		return
	}
	d[kind] = resp.Clone()
}

// Response returns a fresh copy of the response for kind. A kind without an
// entry gets an empty response carrying the matching status.
func (d Defaults) Response(kind router.Kind) *message.Response {
	if resp, ok := d[kind]; ok {
		return resp.Clone()
	}
	return message.NewResponse(statusFor(kind), nil, nil)
}

func statusFor(kind router.Kind) int {
	switch kind {
	case router.KindNotFound:
		return message.StatusNotFound
	case router.KindBadRequest:
		return message.StatusBadRequest
	case router.KindUnauthorized:
		return message.StatusUnauthorized
	default:
		return message.StatusInternalServerError
	}
}

func htmlResponse(status int, body string) *message.Response {
	return message.NewResponse(status, message.Header{
		message.HeaderContentType: "text/html",
	}, []byte(body))
}

// internalError is sent when a handler panics.
func internalError() *message.Response {
	return htmlResponse(message.StatusInternalServerError, "<h1>Internal Server Error</h1>")
}
