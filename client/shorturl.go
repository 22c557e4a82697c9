package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// ShortURLClient talks to the short-link service.
type ShortURLClient struct {
	exec *executor
}

// NewShortURLClient creates a short-link client. Without options it
// targets DefaultShortURLBaseURL with DefaultShortURLTimeout.
func NewShortURLClient(opts ...Option) (*ShortURLClient, error) {
	s := defaultSettings(DefaultShortURLBaseURL, DefaultShortURLTimeout)
	for _, opt := range opts {
		opt(s)
	}
	exec, err := newExecutor(s)
	if err != nil {
		return nil, fmt.Errorf("shorturl client: %w", err)
	}
	return &ShortURLClient{exec: exec}, nil
}

// Endpoint returns the service the client is bound to.
func (c *ShortURLClient) Endpoint() Endpoint {
	return c.exec.endpoint
}

type linkPayload struct {
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

// Add creates or replaces slug, pointing it at target.
func (c *ShortURLClient) Add(ctx context.Context, slug, target string) (*Body, error) {
	if err := checkLink(slug, target); err != nil {
		return nil, err
	}
	return c.postLink(ctx, "", slug, target)
}

// Edit updates an existing slug. The payload matches Add; the server
// tells the two apart by path.
func (c *ShortURLClient) Edit(ctx context.Context, slug, target string) (*Body, error) {
	if err := checkLink(slug, target); err != nil {
		return nil, err
	}
	return c.postLink(ctx, "/"+url.PathEscape(slug), slug, target)
}

// Delete removes slug.
func (c *ShortURLClient) Delete(ctx context.Context, slug string) (*Body, error) {
	if slug == "" {
		return nil, &ShortURLError{validationError("slug cannot be empty")}
	}
	return c.do(ctx, Request{Method: http.MethodDelete, Path: "/" + url.PathEscape(slug)})
}

// List fetches every link and flattens the listing into slug -> URL. A
// listing not served as JSON yields no links.
func (c *ShortURLClient) List(ctx context.Context) (Links, error) {
	body, err := c.do(ctx, Request{Method: http.MethodGet})
	if err != nil {
		return nil, err
	}
	if !body.JSON {
		return Links{}, nil
	}
	return FlattenListing(body.Raw), nil
}

func (c *ShortURLClient) postLink(ctx context.Context, path, slug, target string) (*Body, error) {
	payload, err := json.Marshal(linkPayload{Slug: slug, URL: target})
	if err != nil {
		return nil, &ShortURLError{validationError(fmt.Sprintf("encoding payload: %v", err))}
	}
	return c.do(ctx, Request{
		Method: http.MethodPost,
		Path:   path,
		Header: map[string]string{"Content-Type": "application/json"},
		Body:   payload,
	})
}

func (c *ShortURLClient) do(ctx context.Context, req Request) (*Body, error) {
	body, apiErr := c.exec.call(ctx, req)
	if apiErr != nil {
		return nil, &ShortURLError{*apiErr}
	}
	return body, nil
}

func checkLink(slug, target string) error {
	if slug == "" {
		return &ShortURLError{validationError("slug cannot be empty")}
	}
	if target == "" {
		return &ShortURLError{validationError("url cannot be empty")}
	}
	return nil
}
