package message

import (
	"bufio"
	"bytes"
	"strconv"
)

// Response is an HTTP response.
type Response struct {
	object
	status int
	reason string // as parsed; empty means StatusText(status)
}

var _ Message = (*Response)(nil)

// NewResponse builds an HTTP/1.1 response.
func NewResponse(status int, header Header, body []byte) *Response {
	return &Response{
		object: newObject(header, body, DefaultVersion),
		status: status,
	}
}

// ParseResponse parses a complete response from data.
func ParseResponse(data []byte) (*Response, error) {
	resp := &Response{}
	if err := resp.Parse(bufio.NewReader(bytes.NewReader(data))); err != nil {
		return nil, err
	}
	return resp, nil
}

// Parse reads "VERSION CODE REASON", the header lines and the body. The
// reason phrase is kept so Build reproduces it.
func (r *Response) Parse(br *bufio.Reader) error {
	line, fields, err := readStartLine(br)
	if err != nil {
		return err
	}
	if len(fields) < 2 {
		return &ParseError{Line: line, Reason: "status line needs version and code"}
	}

	code, err := strconv.Atoi(fields[1])
	if err != nil || code <= 0 {
		return &ParseError{Line: line, Reason: "invalid status code"}
	}

	r.version = fields[0]
	r.status = code
	r.reason = ""
	if len(fields) == 3 {
		r.reason = fields[2]
	}

	return r.parseHeaderAndBody(br)
}

// Build serializes the response.
func (r *Response) Build() []byte {
	return r.build(r.version + " " + strconv.Itoa(r.status) + " " + r.Reason())
}

// Reason returns the parsed reason phrase, or the standard text for the
// status code.
func (r *Response) Reason() string {
	if r.reason != "" {
		return r.reason
	}
	return StatusText(r.status)
}

// Status returns the status code.
func (r *Response) Status() int {
	return r.status
}

// SetStatus sets the status code and drops a parsed reason phrase.
func (r *Response) SetStatus(code int) {
	r.status = code
	r.reason = ""
}

// SetCookie sets the Set-Cookie header. Cookies without a name or value
// are ignored.
func (r *Response) SetCookie(c Cookie) {
	s := c.String()
	if s == "" {
		return
	}
	r.SetHeader(HeaderSetCookie, s)
}

// Clone returns a deep copy of r.
func (r *Response) Clone() *Response {
	body := append([]byte(nil), r.body...)
	return &Response{
		object: object{header: r.Header().Clone(), body: body, version: r.version},
		status: r.status,
		reason: r.reason,
	}
}
