package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoryKeys bounds the in-process idempotency store
const DefaultMemoryKeys = 10_000

type reservation struct {
	fingerprint string
	response    []byte // nil while the first request is still running
	expires     time.Time
}

// MemoryIdempotencyStore is the single-instance fallback used when Redis is disabled.
// Expired keys are dropped when next touched; the LRU bound keeps abandoned
// keys from growing the process without limit.
type MemoryIdempotencyStore struct {
	mu   sync.Mutex
	keys *lru.Cache[string, reservation]
	now  func() time.Time
}

// NewMemoryIdempotencyStore keeps at most capacity keys, DefaultMemoryKeys when capacity < 1
func NewMemoryIdempotencyStore(capacity int) *MemoryIdempotencyStore {
	if capacity < 1 {
		capacity = DefaultMemoryKeys
	}
	keys, _ := lru.New[string, reservation](capacity) // only fails for capacity < 1
	return &MemoryIdempotencyStore{keys: keys, now: time.Now}
}

func (s *MemoryIdempotencyStore) Reserve(_ context.Context, key, fingerprint string, ttl time.Duration) ([]byte, string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if r, ok := s.keys.Get(key); ok && now.Before(r.expires) {
		return r.response, r.fingerprint, false, nil
	}
	s.keys.Add(key, reservation{fingerprint: fingerprint, expires: now.Add(ttl)})
	return nil, "", true, nil
}

func (s *MemoryIdempotencyStore) Complete(_ context.Context, key, fingerprint string, response []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys.Add(key, reservation{
		fingerprint: fingerprint,
		response:    append([]byte(nil), response...),
		expires:     s.now().Add(ttl),
	})
	return nil
}

func (s *MemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys.Remove(key)
	return nil
}

// Len counts stored keys, expired ones included until they are touched or evicted
func (s *MemoryIdempotencyStore) Len() int {
	return s.keys.Len()
}
