package queue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/webscour/internal/model"
)

// ErrMalformedMessage is returned by Decode for payloads that do not match
// the message schema.
var ErrMalformedMessage = errors.New("queue: malformed message")

// Message is the queue payload.
type Message struct {
	URL string `json:"url"`
}

// Encode normalizes rawURL and returns the JSON payload.
func Encode(rawURL string) ([]byte, error) {
	u, err := model.NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{URL: u})
}

// Decode parses and validates a payload. The url field is required, no
// other field is allowed, and the URL must be absolute http(s).
// The returned URL is normalized.
func Decode(data []byte) (Message, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var raw struct {
		URL *string `json:"url"`
	}
	if err := dec.Decode(&raw); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Message{}, fmt.Errorf("%w: trailing data", ErrMalformedMessage)
	}
	if raw.URL == nil || *raw.URL == "" {
		return Message{}, fmt.Errorf("%w: missing url", ErrMalformedMessage)
	}

	u, err := model.NormalizeURL(*raw.URL)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	return Message{URL: u}, nil
}
