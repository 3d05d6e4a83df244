package store

import (
	"context"

	"fintrack/internal/cache"
)

// CachedStore is a write-through read cache in front of another store.
type CachedStore struct {
	next  Store
	cache cache.Cache[[]byte]
}

var _ Store = (*CachedStore)(nil)

func NewCachedStore(next Store, c cache.Cache[[]byte]) *CachedStore {
	return &CachedStore{next: next, cache: c}
}

func (s *CachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := s.cache.Get(key); ok {
		return clone(v), nil
	}
	v, err := s.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, clone(v))
	return v, nil
}

func (s *CachedStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.next.Set(ctx, key, value); err != nil {
		// The backing value is unknown now; force the next read through.
		s.cache.Delete(key)
		return err
	}
	s.cache.Set(key, clone(value))
	return nil
}

func (s *CachedStore) Remove(ctx context.Context, key string) error {
	s.cache.Delete(key)
	return s.next.Remove(ctx, key)
}
