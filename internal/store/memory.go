package store

import (
	"sync"
	"time"
)

// MemoryStore implements Store in process memory. Expired pastes are
// dropped when they are next read.
type MemoryStore struct {
	mu     sync.Mutex
	links  map[string]string
	pastes map[string]Paste

	now func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		links:  map[string]string{},
		pastes: map[string]Paste{},
		now:    time.Now,
	}
}

func (s *MemoryStore) PutLink(slug, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[slug] = target
	return nil
}

func (s *MemoryStore) DeleteLink(slug string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.links[slug]
	delete(s.links, slug)
	return ok, nil
}

func (s *MemoryStore) Links() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.links))
	for k, v := range s.links {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) CreatePaste(p Paste, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(p.ID); ok {
		return false, nil
	}
	if ttl > 0 {
		p.ExpiresAt = s.now().Add(ttl)
	}
	s.pastes[p.ID] = p
	return true, nil
}

func (s *MemoryStore) GetPaste(id string) (Paste, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.live(id)
	if !ok {
		return Paste{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) DeletePaste(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.live(id)
	delete(s.pastes, id)
	return ok, nil
}

func (s *MemoryStore) ListPastes() ([]Paste, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pastes := make([]Paste, 0, len(s.pastes))
	for id := range s.pastes {
		if p, ok := s.live(id); ok {
			pastes = append(pastes, p)
		}
	}
	sortPastes(pastes)
	return pastes, nil
}

// live returns the paste if it exists and has not expired. Callers hold mu.
func (s *MemoryStore) live(id string) (Paste, bool) {
	p, ok := s.pastes[id]
	if !ok {
		return Paste{}, false
	}
	if !p.ExpiresAt.IsZero() && !s.now().Before(p.ExpiresAt) {
		delete(s.pastes, id)
		return Paste{}, false
	}
	return p, true
}
