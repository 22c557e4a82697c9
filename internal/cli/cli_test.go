package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icakad/icakad-go/client"
	"github.com/icakad/icakad-go/internal/config"
)

type fakeShortURL struct {
	calls []string
	links client.Links
	err   error
}

func (f *fakeShortURL) Add(_ context.Context, slug, target string) (*client.Body, error) {
	f.calls = append(f.calls, "add "+slug+" "+target)
	return jsonBody(`{"ok":true,"slug":"` + slug + `"}`), f.err
}

func (f *fakeShortURL) Edit(_ context.Context, slug, target string) (*client.Body, error) {
	f.calls = append(f.calls, "edit "+slug+" "+target)
	return jsonBody(`{"ok":true}`), f.err
}

func (f *fakeShortURL) Delete(_ context.Context, slug string) (*client.Body, error) {
	f.calls = append(f.calls, "delete "+slug)
	if f.err != nil {
		return nil, f.err
	}
	return jsonBody(`{"ok":true}`), nil
}

func (f *fakeShortURL) List(context.Context) (client.Links, error) {
	f.calls = append(f.calls, "list")
	return f.links, f.err
}

type fakePaste struct {
	calls   []string
	created string
	opts    client.CreateOptions
}

func (f *fakePaste) Create(_ context.Context, text string, opts client.CreateOptions) (*client.Body, error) {
	f.calls = append(f.calls, "create")
	f.created, f.opts = text, opts
	return jsonBody(`{"ok":true,"id":"abc"}`), nil
}

func (f *fakePaste) Fetch(_ context.Context, id string) (*client.PasteRecord, error) {
	f.calls = append(f.calls, "fetch "+id)
	return &client.PasteRecord{ID: id, URL: "https://paste.test/" + id, Text: "hello", Meta: map[string]any{}}, nil
}

func (f *fakePaste) FetchRaw(_ context.Context, id string) (string, error) {
	f.calls = append(f.calls, "raw "+id)
	return "hello", nil
}

func (f *fakePaste) Delete(_ context.Context, id string) (*client.Body, error) {
	f.calls = append(f.calls, "delete "+id)
	return jsonBody(`{"ok":true}`), nil
}

func (f *fakePaste) List(context.Context) (*client.Body, error) {
	f.calls = append(f.calls, "list")
	return jsonBody(`{"pastes":[]}`), nil
}

func jsonBody(s string) *client.Body {
	return &client.Body{Raw: []byte(s), JSON: true}
}

type harness struct {
	app      *App
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	short    *fakeShortURL
	paste    *fakePaste
	settings config.Settings
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, name := range []string{config.EnvConfig, config.EnvShortURLBase, config.EnvPasteBase, config.EnvToken, config.EnvShortURLTimeout, config.EnvPasteTimeout} {
		t.Setenv(name, "")
	}

	h := &harness{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		short:  &fakeShortURL{},
		paste:  &fakePaste{},
	}
	h.app = &App{
		Stdin:  strings.NewReader(""),
		Stdout: h.stdout,
		Stderr: h.stderr,
		NewShortURL: func(s config.Settings, _ ...client.Option) (ShortURLService, error) {
			h.settings = s
			return h.short, nil
		},
		NewPaste: func(s config.Settings, _ ...client.Option) (PasteService, error) {
			h.settings = s
			return h.paste, nil
		},
	}
	return h
}

func (h *harness) run(args ...string) int {
	return h.app.Run(context.Background(), args)
}

func TestShortURLAdd(t *testing.T) {
	h := newHarness(t)

	code := h.run("--token", "tok", "shorturl", "add", "demo", "https://example.com")
	require.Equal(t, 0, code, h.stderr.String())
	assert.Equal(t, []string{"add demo https://example.com"}, h.short.calls)
	assert.Equal(t, "tok", h.settings.Token)
	assert.Equal(t, "{\n  \"ok\": true,\n  \"slug\": \"demo\"\n}\n", h.stdout.String())
}

func TestShortURLAddQuiet(t *testing.T) {
	h := newHarness(t)

	code := h.run("shorturl", "add", "demo", "https://example.com", "--quiet")
	assert.Equal(t, 0, code)
	assert.Empty(t, h.stdout.String())
	assert.Len(t, h.short.calls, 1)
}

func TestShortURLListTable(t *testing.T) {
	h := newHarness(t)
	h.short.links = client.Links{"b": "https://b", "longer": "https://l", "ы": "https://cyr"}

	require.Equal(t, 0, h.run("shorturl", "list"))
	assert.Equal(t, "b     \thttps://b\nlonger\thttps://l\nы     \thttps://cyr\n", h.stdout.String())
}

func TestShortURLListJSON(t *testing.T) {
	h := newHarness(t)
	h.short.links = client.Links{"demo": "https://example.com"}

	require.Equal(t, 0, h.run("shorturl", "list", "--json"))
	assert.JSONEq(t, `{"demo":"https://example.com"}`, h.stdout.String())
}

func TestShortURLListSaveTo(t *testing.T) {
	h := newHarness(t)
	h.short.links = client.Links{"demo": "https://example.com"}
	out := filepath.Join(t.TempDir(), "links.json")

	require.Equal(t, 0, h.run("shorturl", "list", "--save-to", out, "-q"))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"demo":"https://example.com"}`, string(data))
	assert.Empty(t, h.stdout.String())
}

func TestStatusErrorBecomesExitCode(t *testing.T) {
	h := newHarness(t)
	h.short.err = &client.ShortURLError{APIError: client.APIError{
		Kind:    client.KindStatus,
		Status:  404,
		Message: "request to https://x/demo failed with status 404",
		Payload: jsonBody(`{"error":"missing"}`),
	}}

	code := h.run("shorturl", "delete", "demo")
	assert.Equal(t, 404, code)
	assert.Contains(t, h.stderr.String(), "failed with status 404")
	assert.Contains(t, h.stderr.String(), `"error": "missing"`)
}

func TestUsageErrorExitsOne(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 1, h.run("shorturl", "add", "only-slug"))
	assert.Empty(t, h.short.calls)
}

func TestPasteCreateFlags(t *testing.T) {
	h := newHarness(t)

	code := h.run("paste", "create", "--text", "BODY\n", "--plain", "--id", "abc", "--ttl", "30", "--quiet")
	require.Equal(t, 0, code, h.stderr.String())
	assert.Equal(t, "BODY", h.paste.created)
	assert.Equal(t, "abc", h.paste.opts.ID)
	assert.True(t, h.paste.opts.Plaintext)
	assert.Equal(t, 30.0, h.paste.opts.TTL.Seconds())
}

func TestPasteCreateFromStdin(t *testing.T) {
	h := newHarness(t)
	h.app.Stdin = strings.NewReader("from stdin")

	require.Equal(t, 0, h.run("paste", "create", "-", "--title", "t"))
	assert.Equal(t, "from stdin", h.paste.created)
	assert.Equal(t, "t", h.paste.opts.Title)
}

func TestPasteCreateEmptyFailsLocally(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.run("paste", "create"))
	assert.Empty(t, h.paste.calls)
}

func TestPasteGetRaw(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("paste", "get", "abc", "--raw"))
	assert.Equal(t, "hello\n", h.stdout.String())
	assert.Equal(t, []string{"raw abc"}, h.paste.calls)
}

func TestPasteShowRecord(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("paste", "show", "abc", "--paste-base", "https://paste.test"))
	assert.JSONEq(t, `{"id":"abc","url":"https://paste.test/abc","text":"hello"}`, h.stdout.String())
	assert.Equal(t, "https://paste.test", h.settings.PasteBase)
}

func TestPasteGetRawSaveTo(t *testing.T) {
	h := newHarness(t)
	out := filepath.Join(t.TempDir(), "paste.txt")

	require.Equal(t, 0, h.run("paste", "get", "abc", "--raw", "--save-to", out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestVersion(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("version"))
	assert.Equal(t, client.Version+"\n", h.stdout.String())
}
