package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// entry values are "<fingerprint>\n<response>"; the response is empty while
// the first request for a key is in flight
func encodeEntry(fingerprint string, response []byte) []byte {
	out := make([]byte, 0, len(fingerprint)+1+len(response))
	out = append(out, fingerprint...)
	out = append(out, '\n')
	return append(out, response...)
}

func decodeEntry(val []byte) (fingerprint string, response []byte) {
	i := bytes.IndexByte(val, '\n')
	if i < 0 {
		return "", nil
	}
	if rest := val[i+1:]; len(rest) > 0 {
		response = rest
	}
	return string(val[:i]), response
}

// RedisIdempotencyStore remembers request outcomes in Redis so every instance
// sees the same keys
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisIdempotencyStore creates a store on an existing Redis client
func NewRedisIdempotencyStore(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = "idempotency:"
	}
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Reserve claims key with SETNX. An existing key returns its holder's
// fingerprint and stored response, the latter nil while still running.
func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) ([]byte, string, bool, error) {
	fullKey := s.keyPrefix + key

	ok, err := s.client.SetNX(ctx, fullKey, encodeEntry(fingerprint, nil), ttl).Result()
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if ok {
		return nil, "", true, nil
	}

	val, err := s.client.Get(ctx, fullKey).Bytes()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; the caller may retry
		return nil, "", false, nil
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	heldBy, response := decodeEntry(val)
	return response, heldBy, false, nil
}

// Complete replaces the reservation with the final response
func (s *RedisIdempotencyStore) Complete(ctx context.Context, key, fingerprint string, response []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, encodeEntry(fingerprint, response), ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotent response: %w", err)
	}
	return nil
}

// Release deletes the reservation
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
