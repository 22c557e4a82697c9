// Package store keeps the short links and pastes served by the development server.
package store

import (
	"errors"
	"net"
	"sort"
	"strconv"
	"time"
)

// ErrNotFound is returned when a paste doesn't exist or has expired.
var ErrNotFound = errors.New("paste not found")

// Paste is a stored paste.
type Paste struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Title     string    `json:"title,omitempty"`
	Syntax    string    `json:"syntax,omitempty"`
	Password  string    `json:"password,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store defines the storage operations of the development server.
type Store interface {
	// PutLink creates or replaces a short link.
	PutLink(slug, target string) error
	// DeleteLink removes a short link. Returns false if it did not exist.
	DeleteLink(slug string) (bool, error)
	// Links returns every short link keyed by slug.
	Links() (map[string]string, error)

	// CreatePaste stores p for ttl. Returns false if the ID already exists.
	CreatePaste(p Paste, ttl time.Duration) (bool, error)
	// GetPaste retrieves a paste by ID. Returns ErrNotFound if it doesn't exist.
	GetPaste(id string) (Paste, error)
	// DeletePaste removes a paste. Returns false if it did not exist.
	DeletePaste(id string) (bool, error)
	// ListPastes returns the live pastes, oldest first.
	ListPastes() ([]Paste, error)
}

// sortPastes orders pastes by creation time, then ID.
func sortPastes(ps []Paste) {
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].CreatedAt.Before(ps[j].CreatedAt)
		}
		return ps[i].ID < ps[j].ID
	})
}

// ParseRedisURI splits a "host:port" Redis address. The rate limiter takes
// host and port as separate settings. Missing parts fall back to
// localhost and 6379.
func ParseRedisURI(uri string) (host string, port int) {
	host, port = "localhost", 6379
	if uri == "" {
		return
	}

	h, p, err := net.SplitHostPort(uri)
	if err != nil {
		// No port.
		return uri, port
	}
	if h != "" {
		host = h
	}
	if n, err := strconv.Atoi(p); err == nil {
		port = n
	}
	return
}
