package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis"
)

const (
	pasteKeyPrefix = "icakad_paste_"
	linksKey       = "icakad_links"
)

// RedisStore implements Store using Redis. Pastes are JSON values with a
// TTL, links live in a single hash.
type RedisStore struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed store and verifies connectivity.
func NewRedis(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping().Result(); err != nil {
		return nil, err
	}
	return &RedisStore{client: client}, nil
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) PutLink(slug, target string) error {
	return s.client.HSet(linksKey, slug, target).Err()
}

func (s *RedisStore) DeleteLink(slug string) (bool, error) {
	n, err := s.client.HDel(linksKey, slug).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) Links() (map[string]string, error) {
	return s.client.HGetAll(linksKey).Result()
}

// CreatePaste stores the paste using SetNX (atomic set-if-not-exists).
func (s *RedisStore) CreatePaste(p Paste, ttl time.Duration) (bool, error) {
	if ttl > 0 {
		p.ExpiresAt = time.Now().Add(ttl)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return false, err
	}
	return s.client.SetNX(pasteKeyPrefix+p.ID, data, ttl).Result()
}

func (s *RedisStore) GetPaste(id string) (Paste, error) {
	val, err := s.client.Get(pasteKeyPrefix + id).Bytes()
	if err == redis.Nil {
		return Paste{}, ErrNotFound
	}
	if err != nil {
		return Paste{}, err
	}

	var p Paste
	if err := json.Unmarshal(val, &p); err != nil {
		return Paste{}, fmt.Errorf("decoding paste %s: %w", id, err)
	}
	return p, nil
}

func (s *RedisStore) DeletePaste(id string) (bool, error) {
	n, err := s.client.Del(pasteKeyPrefix + id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListPastes scans the paste keyspace. Keys that expire mid-scan are skipped.
func (s *RedisStore) ListPastes() ([]Paste, error) {
	var pastes []Paste
	iter := s.client.Scan(0, pasteKeyPrefix+"*", 100).Iterator()
	for iter.Next() {
		id := iter.Val()[len(pasteKeyPrefix):]
		p, err := s.GetPaste(id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		pastes = append(pastes, p)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	sortPastes(pastes)
	return pastes, nil
}
