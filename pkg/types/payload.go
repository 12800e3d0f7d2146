package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DefaultPlatform is reported when the event carries no platform key.
const DefaultPlatform = "unknown"

// Payload is a decoded Sentry webhook body. Keys follow the Sentry legacy
// webhook format: id, project_name, level, culprit, message, url, event.
//
// Accessors return nil for absent fields so callers can render them with
// fmt's %v verb, which prints "<nil>".
type Payload map[string]any

// Event is the nested "event" object of a Payload.
type Event map[string]any

// Decode reads one JSON object from r. Numbers are kept as json.Number so
// numeric ids render exactly as sent. A JSON null decodes to an empty Payload.
func Decode(r io.Reader) (Payload, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var p Payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decode payload: unexpected data after JSON object")
	}
	if p == nil {
		p = Payload{}
	}
	return p, nil
}

// DecodeBytes is Decode for an in-memory body.
func DecodeBytes(b []byte) (Payload, error) {
	return Decode(bytes.NewReader(b))
}

// ID returns the Sentry issue id.
func (p Payload) ID() any { return p["id"] }

// ProjectName returns the Sentry project slug.
func (p Payload) ProjectName() any { return p["project_name"] }

// Level returns the event level (error, warning, ...).
func (p Payload) Level() any { return p["level"] }

// Culprit returns the code location Sentry blames for the event.
func (p Payload) Culprit() any { return p["culprit"] }

// Message returns the event message.
func (p Payload) Message() any { return p["message"] }

// URL returns the link to the issue in Sentry.
func (p Payload) URL() any { return p["url"] }

// Event returns the nested event object, or an empty Event when it is
// missing or not a JSON object.
func (p Payload) Event() Event {
	switch e := p["event"].(type) {
	case Event:
		return e
	case map[string]any:
		return Event(e)
	default:
		return Event{}
	}
}

// Environment returns the raw environment value as sent.
func (e Event) Environment() any { return e["environment"] }

// NormalizedEnvironment returns the environment lowercased and trimmed.
// Non-string values normalise to "".
func (e Event) NormalizedEnvironment() string {
	s, ok := e["environment"].(string)
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// Platform returns the event platform. An absent key yields DefaultPlatform;
// an explicit null is passed through as nil.
func (e Event) Platform() any {
	v, ok := e["platform"]
	if !ok {
		return DefaultPlatform
	}
	return v
}
