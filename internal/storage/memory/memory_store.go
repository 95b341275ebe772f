package memory

import (
	"context"

	"github.com/patrickmn/go-cache"

	"medlens/internal/domain"
	"medlens/internal/port"
)

type memoryStore struct {
	items *cache.Cache
}

// NewStore creates a process-local KeyValueStore. Entries never expire and
// are lost on restart.
func NewStore() port.KeyValueStore {
	return &memoryStore{items: cache.New(cache.NoExpiration, 0)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.items.Get(key)
	if !ok {
		return nil, domain.ErrNotFound
	}
	data := v.([]byte)
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte) error {
	data := make([]byte, len(value))
	copy(data, value)
	s.items.Set(key, data, cache.NoExpiration)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.items.Delete(key)
	return nil
}

func (s *memoryStore) Ping(context.Context) error {
	return nil
}
