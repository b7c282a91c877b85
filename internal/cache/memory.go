package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemorySeen is an in-memory Seen backed by go-cache
type MemorySeen struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewMemorySeen creates a set whose keys expire after ttl
func NewMemorySeen(ttl time.Duration, cleanupInterval time.Duration) *MemorySeen {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemorySeen{
		cache: gocache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

// Mark records key; false means it was already present and not expired
func (s *MemorySeen) Mark(key string) bool {
	return s.cache.Add(key, struct{}{}, s.ttl) == nil
}

// Contains reports whether key is present
func (s *MemorySeen) Contains(key string) bool {
	_, found := s.cache.Get(key)
	return found
}

// Forget removes key
func (s *MemorySeen) Forget(key string) {
	s.cache.Delete(key)
}

// Len returns the number of keys, including expired keys not yet swept
func (s *MemorySeen) Len() int {
	return s.cache.ItemCount()
}
