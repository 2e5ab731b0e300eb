package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	redisclient "github.com/angelmondragon/spa-backend/pkg/redis"
)

// Storage persists the serialized item list of one client. Load returns ""
// when nothing is stored.
type Storage interface {
	Load(ctx context.Context, clientID string) (string, error)
	Save(ctx context.Context, clientID, payload string) error
	Delete(ctx context.Context, clientID string) error
}

type cartKeyer interface {
	CartKey(clientID string) string
}

// RedisStorage keeps carts under the cart key namespace. A zero TTL keeps them until cleared.
type RedisStorage struct {
	kv   redisclient.KV
	keys cartKeyer
	ttl  time.Duration
}

// NewRedisStorage builds the redis-backed cart storage.
func NewRedisStorage(kv redisclient.KV, keys cartKeyer, ttl time.Duration) (*RedisStorage, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis kv required")
	}
	if keys == nil {
		return nil, fmt.Errorf("cart keyer required")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStorage{kv: kv, keys: keys, ttl: ttl}, nil
}

func (s *RedisStorage) Load(ctx context.Context, clientID string) (string, error) {
	val, err := s.kv.Get(ctx, s.keys.CartKey(clientID))
	if err != nil {
		if redisclient.IsNil(err) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

func (s *RedisStorage) Save(ctx context.Context, clientID, payload string) error {
	return s.kv.Set(ctx, s.keys.CartKey(clientID), payload, s.ttl)
}

func (s *RedisStorage) Delete(ctx context.Context, clientID string) error {
	return s.kv.Del(ctx, s.keys.CartKey(clientID))
}

// MemoryStorage is a process-local Storage for tests and single-node development.
type MemoryStorage struct {
	mu    sync.RWMutex
	carts map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{carts: map[string]string{}}
}

func (s *MemoryStorage) Load(_ context.Context, clientID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.carts[clientID], nil
}

func (s *MemoryStorage) Save(_ context.Context, clientID, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[clientID] = payload
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, clientID)
	return nil
}
