package client

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Body is a response payload as received. JSON is true when the bytes
// were declared and verified to be JSON.
type Body struct {
	Raw  []byte
	JSON bool
}

func newBody(raw []byte) *Body {
	return &Body{Raw: raw, JSON: json.Valid(raw)}
}

// Text returns the payload as text.
func (b *Body) Text() string {
	if b == nil {
		return ""
	}
	return string(b.Raw)
}

// String implements fmt.Stringer.
func (b *Body) String() string {
	return b.Text()
}

// Decode unmarshals a JSON payload into v.
func (b *Body) Decode(v any) error {
	if b == nil || !b.JSON {
		return fmt.Errorf("payload is not JSON")
	}
	return json.Unmarshal(b.Raw, v)
}

// Value returns the decoded JSON payload, or the text for non JSON payloads.
func (b *Body) Value() any {
	if b == nil {
		return nil
	}
	if !b.JSON {
		return b.Text()
	}
	var v any
	if err := json.Unmarshal(b.Raw, &v); err != nil {
		return b.Text()
	}
	return v
}

// MarshalJSON emits JSON payloads verbatim and text payloads as a JSON string.
func (b *Body) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	if b.JSON {
		return b.Raw, nil
	}
	return json.Marshal(b.Text())
}

// Result is the outcome of Normalize: either Success or Failure.
type Result interface {
	result()
}

// Success holds the payload of an accepted response.
type Success struct {
	Value *Body
}

// Failure describes a rejected response. Status is 0 for protocol errors.
type Failure struct {
	Kind    ErrorKind
	Status  int
	Message string
	Payload *Body
}

func (Success) result() {}
func (Failure) result() {}

// Normalize classifies a raw response. Any status >= 400 is a Failure
// whatever the content type, with the body attached as payload. A
// successful response declared as JSON must parse, otherwise it is a
// protocol Failure. Everything else is a Success carrying the text.
func Normalize(resp *Response) Result {
	if resp.Status >= 400 {
		return Failure{
			Kind:    KindStatus,
			Status:  resp.Status,
			Message: fmt.Sprintf("request to %s failed with status %d", resp.URL, resp.Status),
			Payload: newBody(resp.Body),
		}
	}

	if !strings.Contains(strings.ToLower(resp.ContentType()), "json") {
		return Success{Value: &Body{Raw: resp.Body}}
	}

	if !json.Valid(resp.Body) {
		return Failure{
			Kind:    KindProtocol,
			Message: "server returned invalid JSON",
			Payload: &Body{Raw: resp.Body},
		}
	}

	return Success{Value: &Body{Raw: resp.Body, JSON: true}}
}
