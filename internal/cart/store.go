package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStores keeps each session's list as a JSON value under
// "<prefix>:<session>" with a sliding TTL.
type RedisStores struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisStores(client redis.Cmdable, prefix string, ttl time.Duration) *RedisStores {
	if prefix == "" {
		prefix = "cart"
	}
	return &RedisStores{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStores) For(sessionID string) Store {
	return &redisStore{client: s.client, key: s.prefix + ":" + sessionID, ttl: s.ttl}
}

type redisStore struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

func (s *redisStore) Load(ctx context.Context) ([]Item, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return items, nil
}

func (s *redisStore) Save(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return s.client.Del(ctx, s.key).Err()
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, raw, s.ttl).Err()
}

// MemoryStores keeps lists in process memory.  Used when redis is not
// configured; lists do not survive a restart.
type MemoryStores struct {
	mu    sync.Mutex
	lists map[string][]Item
}

func NewMemoryStores() *MemoryStores {
	return &MemoryStores{lists: make(map[string][]Item)}
}

func (s *MemoryStores) For(sessionID string) Store {
	return &memoryStore{parent: s, session: sessionID}
}

type memoryStore struct {
	parent  *MemoryStores
	session string
}

func (s *memoryStore) Load(context.Context) ([]Item, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	return append([]Item(nil), s.parent.lists[s.session]...), nil
}

func (s *memoryStore) Save(_ context.Context, items []Item) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	if len(items) == 0 {
		delete(s.parent.lists, s.session)
		return nil
	}
	s.parent.lists[s.session] = append([]Item(nil), items...)
	return nil
}
