package blobstore

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps blobs in process memory. Nothing survives a restart.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (s *MemoryStore) Get(_ context.Context, keys ...string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if x, found := s.cache.Get(key); found {
			out[key] = x.([]byte)
		}
	}
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, items map[string][]byte) error {
	for k, v := range copyItems(items) {
		s.cache.Set(k, v, cache.NoExpiration)
	}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
