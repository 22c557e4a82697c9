package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestMemory() (*MemoryStore, *clock) {
	c := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewMemory()
	s.now = c.now
	return s, c
}

func TestMemoryLinks(t *testing.T) {
	s, _ := newTestMemory()

	require.NoError(t, s.PutLink("a", "https://a"))
	require.NoError(t, s.PutLink("a", "https://a2"))
	require.NoError(t, s.PutLink("b", "https://b"))

	links, err := s.Links()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "https://a2", "b": "https://b"}, links)

	ok, err := s.DeleteLink("a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.DeleteLink("a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryLinksReturnsCopy(t *testing.T) {
	s, _ := newTestMemory()
	require.NoError(t, s.PutLink("a", "https://a"))

	links, _ := s.Links()
	links["b"] = "https://b"

	again, _ := s.Links()
	assert.Len(t, again, 1)
}

func TestMemoryPasteCollision(t *testing.T) {
	s, _ := newTestMemory()

	ok, err := s.CreatePaste(Paste{ID: "abc", Content: "one"}, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.CreatePaste(Paste{ID: "abc", Content: "two"}, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	p, err := s.GetPaste("abc")
	require.NoError(t, err)
	assert.Equal(t, "one", p.Content)
}

func TestMemoryPasteExpiry(t *testing.T) {
	s, c := newTestMemory()

	_, err := s.CreatePaste(Paste{ID: "abc", Content: "x"}, time.Minute)
	require.NoError(t, err)

	c.t = c.t.Add(59 * time.Second)
	_, err = s.GetPaste("abc")
	require.NoError(t, err)

	c.t = c.t.Add(time.Second)
	_, err = s.GetPaste("abc")
	assert.ErrorIs(t, err, ErrNotFound)

	// An expired id can be taken again.
	ok, err := s.CreatePaste(Paste{ID: "abc", Content: "y"}, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryListPastes(t *testing.T) {
	s, c := newTestMemory()
	base := c.t

	_, _ = s.CreatePaste(Paste{ID: "late", CreatedAt: base.Add(time.Second)}, time.Hour)
	_, _ = s.CreatePaste(Paste{ID: "b", CreatedAt: base}, time.Hour)
	_, _ = s.CreatePaste(Paste{ID: "a", CreatedAt: base}, time.Hour)
	_, _ = s.CreatePaste(Paste{ID: "gone", CreatedAt: base}, time.Second)

	c.t = c.t.Add(2 * time.Second)
	pastes, err := s.ListPastes()
	require.NoError(t, err)

	var ids []string
	for _, p := range pastes {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"a", "b", "late"}, ids)
}

func TestMemoryDeletePaste(t *testing.T) {
	s, _ := newTestMemory()
	_, _ = s.CreatePaste(Paste{ID: "abc"}, 0)

	ok, err := s.DeletePaste("abc")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.GetPaste("abc")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err = s.DeletePaste("abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseRedisURI(t *testing.T) {
	tests := []struct {
		uri  string
		host string
		port int
	}{
		{"", "localhost", 6379},
		{"redis:6380", "redis", 6380},
		{"redis", "redis", 6379},
		{":6390", "localhost", 6390},
		{"redis:nope", "redis", 6379},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			host, port := ParseRedisURI(tt.uri)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.port, port)
		})
	}
}
