package message

import (
	"bufio"
	"bytes"
	"strings"
)

// Common request methods.
const (
	MethodGet     = "GET"
	MethodHead    = "HEAD"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodPatch   = "PATCH"
	MethodDelete  = "DELETE"
	MethodOptions = "OPTIONS"
)

// Request is an HTTP request.
type Request struct {
	object
	method    string
	path      string
	routePath string
}

var _ Message = (*Request)(nil)

// NewRequest builds a request. An empty version defaults to HTTP/1.1.
func NewRequest(method, path string, header Header, body []byte) *Request {
	return &Request{
		object: newObject(header, body, DefaultVersion),
		method: method,
		path:   path,
	}
}

// ParseRequest parses a complete request from data.
func ParseRequest(data []byte) (*Request, error) {
	req := &Request{}
	if err := req.Parse(bufio.NewReader(bytes.NewReader(data))); err != nil {
		return nil, err
	}
	return req, nil
}

// Parse reads "METHOD PATH VERSION", the header lines and the body.
func (r *Request) Parse(br *bufio.Reader) error {
	line, fields, err := readStartLine(br)
	if err != nil {
		return err
	}
	if len(fields) != 3 || fields[0] == "" || fields[1] == "" || fields[2] == "" {
		return &ParseError{Line: line, Reason: "request line needs method, path and version"}
	}
	if strings.ContainsAny(fields[2], " \t") {
		return &ParseError{Line: line, Reason: "request line has extra fields"}
	}

	r.method = fields[0]
	r.path = fields[1]
	r.version = fields[2]
	r.routePath = ""

	return r.parseHeaderAndBody(br)
}

// Build serializes the request.
func (r *Request) Build() []byte {
	return r.build(r.method + " " + r.path + " " + r.version)
}

// Method returns the request method.
func (r *Request) Method() string {
	return r.method
}

// SetMethod sets the request method.
func (r *Request) SetMethod(method string) {
	r.method = method
}

// Path returns the request target as received, including any query string.
func (r *Request) Path() string {
	return r.path
}

// SetPath sets the request target.
func (r *Request) SetPath(path string) {
	r.path = path
}

// RoutePath returns the path seen by the router that matched the request,
// with group prefixes and the query string removed. Before routing it is the
// path without its query string.
func (r *Request) RoutePath() string {
	if r.routePath == "" {
		return StripQuery(r.path)
	}
	return r.routePath
}

// SetRoutePath records the path seen by the matching router.
func (r *Request) SetRoutePath(path string) {
	r.routePath = path
}

// Query returns the query parameters of the request target.
func (r *Request) Query() map[string]string {
	return ExtractQuery(r.path)
}

// Cookies returns the cookies sent in the Cookie header.
func (r *Request) Cookies() map[string]string {
	return ExtractCookies(r.GetHeader(HeaderCookie))
}
