package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

// pasteListingKeys are checked in order when looking a paste up in a listing.
var pasteListingKeys = []string{"pastes", "items", "data", "list"}

var errNotListed = errors.New("paste not present in listing")

// PasteClient talks to the paste service.
type PasteClient struct {
	exec *executor
}

// NewPasteClient creates a paste client. Without options it targets
// DefaultPasteBaseURL with DefaultPasteTimeout.
func NewPasteClient(opts ...Option) (*PasteClient, error) {
	s := defaultSettings(DefaultPasteBaseURL, DefaultPasteTimeout)
	for _, opt := range opts {
		opt(s)
	}
	exec, err := newExecutor(s)
	if err != nil {
		return nil, fmt.Errorf("paste client: %w", err)
	}
	return &PasteClient{exec: exec}, nil
}

// Endpoint returns the service the client is bound to.
func (c *PasteClient) Endpoint() Endpoint {
	return c.exec.endpoint
}

// CreateOptions configures paste creation.
type CreateOptions struct {
	// ID requests a specific paste identifier.
	ID string
	// TTL is sent in whole seconds when positive.
	TTL time.Duration
	// Plaintext sends the text as a raw text/plain body instead of JSON.
	Plaintext bool

	// The fields below only apply to JSON requests and are omitted when empty.
	Title     string
	Syntax    string
	ExpiresIn string
	Password  string
}

type pastePayload struct {
	Content   string `json:"content"`
	Title     string `json:"title,omitempty"`
	Syntax    string `json:"syntax,omitempty"`
	ExpiresIn string `json:"expires_in,omitempty"`
	Password  string `json:"password,omitempty"`
}

// Create uploads text and returns the server's answer unchanged.
func (c *PasteClient) Create(ctx context.Context, text string, opts CreateOptions) (*Body, error) {
	if text == "" {
		return nil, &PasteError{validationError("text cannot be empty")}
	}

	query := map[string]string{}
	if opts.ID != "" {
		query["id"] = opts.ID
	}
	if opts.TTL > 0 {
		query["ttl"] = strconv.FormatInt(int64(opts.TTL/time.Second), 10)
	}

	req := Request{Method: http.MethodPost, Path: "/api/paste", Query: query}
	if opts.Plaintext {
		req.Header = map[string]string{"Content-Type": "text/plain; charset=utf-8"}
		req.Body = []byte(text)
	} else {
		payload, err := json.Marshal(pastePayload{
			Content:   text,
			Title:     opts.Title,
			Syntax:    opts.Syntax,
			ExpiresIn: opts.ExpiresIn,
			Password:  opts.Password,
		})
		if err != nil {
			return nil, &PasteError{validationError(fmt.Sprintf("encoding payload: %v", err))}
		}
		req.Header = map[string]string{"Content-Type": "application/json"}
		req.Body = payload
	}

	return c.do(ctx, req)
}

// PasteRecord is a fetched paste. Meta holds any extra fields the listing
// reported for it (title, syntax, timestamps and so on).
type PasteRecord struct {
	ID   string
	URL  string
	Text string
	Meta map[string]any
}

// MarshalJSON flattens Meta next to id, url and text.
func (p *PasteRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Meta)+3)
	for k, v := range p.Meta {
		out[k] = v
	}
	out["id"] = p.ID
	out["url"] = p.URL
	out["text"] = p.Text
	return json.Marshal(out)
}

// FetchRaw returns the paste text exactly as served.
func (c *PasteClient) FetchRaw(ctx context.Context, id string) (string, error) {
	body, err := c.get(ctx, id)
	if err != nil {
		return "", err
	}
	return body.Text(), nil
}

// Fetch returns the paste text together with whatever the listing knows
// about it. When the listing cannot be consulted the record only carries
// id, url and text.
func (c *PasteClient) Fetch(ctx context.Context, id string) (*PasteRecord, error) {
	body, err := c.get(ctx, id)
	if err != nil {
		return nil, err
	}

	record := &PasteRecord{
		ID:   id,
		URL:  c.exec.endpoint.BaseURL + "/" + id,
		Text: body.Text(),
		Meta: map[string]any{},
	}

	// The lookup error is dropped on purpose: enrichment is optional and
	// the paste itself was already fetched.
	if listed, err := c.lookup(ctx, id); err == nil {
		record.merge(listed)
	}
	return record, nil
}

// Delete removes a paste.
func (c *PasteClient) Delete(ctx context.Context, id string) (*Body, error) {
	if id == "" {
		return nil, &PasteError{validationError("paste id cannot be empty")}
	}
	return c.do(ctx, Request{Method: http.MethodDelete, Path: "/" + url.PathEscape(id)})
}

// List returns the paste listing in the shape the server sent it.
func (c *PasteClient) List(ctx context.Context) (*Body, error) {
	return c.do(ctx, Request{Method: http.MethodGet, Path: "/"})
}

func (c *PasteClient) get(ctx context.Context, id string) (*Body, error) {
	if id == "" {
		return nil, &PasteError{validationError("paste id cannot be empty")}
	}
	return c.do(ctx, Request{Method: http.MethodGet, Path: "/" + url.PathEscape(id)})
}

// lookup finds the listing entry for id.
func (c *PasteClient) lookup(ctx context.Context, id string) (map[string]any, error) {
	body, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	if !body.JSON {
		return nil, errNotListed
	}

	root := gjson.ParseBytes(body.Raw)
	entries := root
	if !root.IsArray() {
		entries = gjson.Result{}
		for _, key := range pasteListingKeys {
			if v := root.Get(key); v.IsArray() {
				entries = v
				break
			}
		}
	}

	var found gjson.Result
	entries.ForEach(func(_, item gjson.Result) bool {
		if item.IsObject() && item.Get("id").Type == gjson.String && item.Get("id").Str == id {
			found = item
			return false
		}
		return true
	})
	if !found.Exists() {
		return nil, errNotListed
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(found.Raw), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// merge copies listing fields into the record. The fetched text is kept.
func (p *PasteRecord) merge(fields map[string]any) {
	for k, v := range fields {
		switch k {
		case "text":
		case "id":
			if s, ok := v.(string); ok && s != "" {
				p.ID = s
			}
		case "url":
			if s, ok := v.(string); ok && s != "" {
				p.URL = s
			}
		default:
			p.Meta[k] = v
		}
	}
}

func (c *PasteClient) do(ctx context.Context, req Request) (*Body, error) {
	body, apiErr := c.exec.call(ctx, req)
	if apiErr != nil {
		return nil, &PasteError{*apiErr}
	}
	return body, nil
}
