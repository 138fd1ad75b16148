package message

import (
	"errors"
	"fmt"

	"github.com/sugawarayuuta/sonnet"
)

// ContentTypeJSON is the media type set by SetBodyJSON.
const ContentTypeJSON = "application/json"

// ErrEmptyBody is returned when decoding JSON from a message without a body.
var ErrEmptyBody = errors.New("message has no body")

// SetBodyJSON encodes v as the body and sets Content-Type to JSON.
func (o *object) SetBodyJSON(v any) error {
	data, err := sonnet.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode JSON body: %w", err)
	}
	o.SetBody(data)
	o.SetHeader(HeaderContentType, ContentTypeJSON)
	return nil
}

// DecodeJSON decodes the body of m into v.
func DecodeJSON(m Message, v any) error {
	body := m.Body()
	if len(body) == 0 {
		return ErrEmptyBody
	}
	if err := sonnet.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode JSON body: %w", err)
	}
	return nil
}
