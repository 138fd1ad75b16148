package message

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultVersion is the protocol version used when none is given.
const DefaultVersion = "HTTP/1.1"

// ErrMalformed is wrapped by every ParseError.
var ErrMalformed = errors.New("malformed message")

// ParseError describes why a message could not be parsed.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line == "" {
		return fmt.Sprintf("%s: %s", ErrMalformed, e.Reason)
	}
	return fmt.Sprintf("%s: %s (line %q)", ErrMalformed, e.Reason, e.Line)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformed
}

// Message is the behavior shared by requests and responses.
type Message interface {
	// Parse reads a start line, headers and body from r.
	Parse(r *bufio.Reader) error
	// Build serializes the message into wire bytes.
	Build() []byte
	Header() Header
	Body() []byte
	SetBody(body []byte)
	Version() string
}

// object holds the state common to Request and Response.
type object struct {
	header  Header
	body    []byte
	version string
}

func newObject(header Header, body []byte, version string) object {
	if header == nil {
		header = make(Header)
	} else {
		header = header.Clone()
	}
	if version == "" {
		version = DefaultVersion
	}
	o := object{header: header, version: version}
	o.SetBody(body)
	return o
}

// Header returns the mutable header map.
func (o *object) Header() Header {
	if o.header == nil {
		o.header = make(Header)
	}
	return o.header
}

// GetHeader returns the value of key, or "" if absent.
func (o *object) GetHeader(key string) string {
	return o.Header().Get(key)
}

// SetHeader stores a header value.
func (o *object) SetHeader(key, value string) {
	o.Header().Set(key, value)
}

// Body returns the message body.
func (o *object) Body() []byte {
	return o.body
}

// SetBody replaces the body and keeps Content-Length in sync with it.
// An empty body removes Content-Length.
func (o *object) SetBody(body []byte) {
	if len(body) == 0 {
		o.Header().Del(HeaderContentLength)
		o.body = nil
		return
	}
	o.Header().Set(HeaderContentLength, strconv.Itoa(len(body)))
	o.body = body
}

// SetBodyString is SetBody for string content.
func (o *object) SetBodyString(body string) {
	o.SetBody([]byte(body))
}

// Version returns the protocol version, e.g. "HTTP/1.1".
func (o *object) Version() string {
	return o.version
}

// SetVersion sets the protocol version.
func (o *object) SetVersion(version string) {
	o.version = version
}

// parseHeaderAndBody reads header lines up to the blank line and then the
// body. A present Content-Length bounds the body; otherwise everything left
// in r is the body.
func (o *object) parseHeaderAndBody(r *bufio.Reader) error {
	o.header = make(Header)

	for {
		line, err := readLine(r)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read header line: %w", err)
		}
		if line == "" {
			break
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return &ParseError{Line: line, Reason: "header line without colon"}
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return &ParseError{Line: line, Reason: "empty header name"}
		}
		o.header[key] = strings.TrimSpace(value)

		if errors.Is(err, io.EOF) {
			break
		}
	}

	rest, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}

	if cl := o.header.Get(HeaderContentLength); cl != "" {
		if n, convErr := strconv.Atoi(cl); convErr == nil && n >= 0 && n < len(rest) {
			rest = rest[:n]
		}
	}

	o.SetBody(rest)
	return nil
}

// build writes headers in sorted order, the blank line and the body.
func (o *object) build(firstLine string) []byte {
	var buf bytes.Buffer
	buf.WriteString(firstLine)
	buf.WriteString("\r\n")
	for _, k := range o.Header().Keys() {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(o.header[k])
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")
	buf.Write(o.body)
	return buf.Bytes()
}

// readLine reads one line and strips the trailing CRLF or LF. At end of
// input it returns the partial line together with io.EOF.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, err
}

// readStartLine reads the first line and splits it into at most three
// space-separated fields.
func readStartLine(r *bufio.Reader) (string, []string, error) {
	line, err := readLine(r)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", nil, fmt.Errorf("failed to read start line: %w", err)
	}
	if line == "" {
		return "", nil, &ParseError{Reason: "empty start line"}
	}
	return line, strings.SplitN(line, " ", 3), nil
}
