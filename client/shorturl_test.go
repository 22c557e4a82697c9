package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShortURLClient(t *testing.T, u *upstream, opts ...Option) *ShortURLClient {
	t.Helper()
	opts = append([]Option{WithBaseURL(u.URL + "/api/"), WithToken("token")}, opts...)
	c, err := NewShortURLClient(opts...)
	require.NoError(t, err)
	return c
}

func TestShortURLClientRoutes(t *testing.T) {
	u := newUpstream(t, map[string]reply{
		"POST /api":        jsonReply(`{"ok":true}`),
		"POST /api/demo":   jsonReply(`{"ok":true,"updated":true}`),
		"DELETE /api/demo": jsonReply(`{"ok":true}`),
		"GET /api":         jsonReply(`{"items":[{"slug":"demo","url":"https://example.com"}]}`),
	})
	c := newTestShortURLClient(t, u)
	ctx := context.Background()

	added, err := c.Add(ctx, "demo", "https://example.com")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, added.Text())

	edited, err := c.Edit(ctx, "demo", "https://example.org")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true,"updated":true}`, edited.Text())

	_, err = c.Delete(ctx, "demo")
	require.NoError(t, err)

	links, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, Links{"demo": "https://example.com"}, links)

	calls := u.calls()
	require.Len(t, calls, 4)

	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "/api", calls[0].Path)
	assert.JSONEq(t, `{"slug":"demo","url":"https://example.com"}`, string(calls[0].Body))
	assert.Equal(t, "application/json", calls[0].Header.Get("Content-Type"))
	assert.Equal(t, "Bearer token", calls[0].Header.Get("Authorization"))
	assert.Equal(t, "application/json", calls[0].Header.Get("Accept"))
	assert.NotEmpty(t, calls[0].Header.Get("X-Request-Id"))

	assert.Equal(t, http.MethodPost, calls[1].Method)
	assert.Equal(t, "/api/demo", calls[1].Path)
	assert.JSONEq(t, `{"slug":"demo","url":"https://example.org"}`, string(calls[1].Body))

	assert.Equal(t, http.MethodDelete, calls[2].Method)
	assert.Equal(t, "/api/demo", calls[2].Path)
	assert.Empty(t, calls[2].Body)

	assert.Equal(t, http.MethodGet, calls[3].Method)
	assert.Equal(t, "/api", calls[3].Path)
}

func TestShortURLClientValidation(t *testing.T) {
	u := newUpstream(t, nil)
	c := newTestShortURLClient(t, u)
	ctx := context.Background()

	_, err := c.Add(ctx, "", "https://example.com")
	assert.True(t, IsValidation(err))
	_, err = c.Add(ctx, "demo", "")
	assert.True(t, IsValidation(err))
	_, err = c.Edit(ctx, "", "https://example.com")
	assert.True(t, IsValidation(err))
	_, err = c.Delete(ctx, "")
	assert.True(t, IsValidation(err))

	var se *ShortURLError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 0, se.Status)

	assert.Empty(t, u.calls())
}

func TestShortURLClientStatusError(t *testing.T) {
	u := newUpstream(t, map[string]reply{
		"POST /api": {status: http.StatusInternalServerError, contentType: "text/plain", body: "boom"},
	})
	c := newTestShortURLClient(t, u)

	_, err := c.Add(context.Background(), "slug", "https://target")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Equal(t, 500, StatusCode(err))

	var se *ShortURLError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, KindStatus, se.Kind)
	assert.Equal(t, "boom", se.Payload.Text())
}

func TestShortURLClientListInvalidJSON(t *testing.T) {
	u := newUpstream(t, map[string]reply{
		"GET /api": jsonReply(`{bad json`),
	})
	c := newTestShortURLClient(t, u)

	_, err := c.List(context.Background())
	require.Error(t, err)
	assert.True(t, IsProtocol(err))
}

func TestShortURLClientListPlainText(t *testing.T) {
	u := newUpstream(t, map[string]reply{
		"GET /api": {contentType: "text/plain", body: "nothing here"},
	})
	c := newTestShortURLClient(t, u)

	links, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestShortURLClientListIgnoresJSONServedAsText(t *testing.T) {
	u := newUpstream(t, map[string]reply{
		"GET /api": {contentType: "text/plain", body: `[{"slug":"a","url":"https://a"}]`},
	})
	c := newTestShortURLClient(t, u)

	links, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Links{}, links)
	assert.Len(t, u.calls(), 1)
}

func TestShortURLClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewShortURLClient(WithBaseURL(base), WithTimeout(2*time.Second))
	require.NoError(t, err)

	_, err = c.Delete(context.Background(), "demo")
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Equal(t, 0, StatusCode(err))
}

func TestShortURLClientDefaults(t *testing.T) {
	c, err := NewShortURLClient()
	require.NoError(t, err)
	assert.Equal(t, DefaultShortURLBaseURL, c.Endpoint().BaseURL)
	assert.Equal(t, DefaultShortURLTimeout, c.Endpoint().Timeout)

	_, err = NewShortURLClient(WithBaseURL("/"))
	assert.Error(t, err)
}
