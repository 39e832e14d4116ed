// pkg/memcache/ttl_store.go
package mem

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Store is a typed, expiring key/value map.
type Store[V any] interface {
	Set(key string, value V)
	Get(key string) (V, bool)
	Delete(key string)
	Count() int
}

// TTLStore wraps go-cache with a fixed TTL. With Sliding set, every Get
// extends the entry's lifetime.
type TTLStore[V any] struct {
	c       *cache.Cache
	ttl     time.Duration
	sliding bool
}

func NewTTLStore[V any](ttl time.Duration, sliding bool) *TTLStore[V] {
	cleanup := ttl / 2
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	return &TTLStore[V]{
		c:       cache.New(ttl, cleanup),
		ttl:     ttl,
		sliding: sliding,
	}
}

func (s *TTLStore[V]) Set(key string, value V) {
	s.c.Set(key, value, s.ttl)
}

func (s *TTLStore[V]) Get(key string) (V, bool) {
	var zero V
	raw, ok := s.c.Get(key)
	if !ok {
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		return zero, false
	}
	if s.sliding {
		// Replace fails once the key is gone, so a concurrent Delete wins.
		if err := s.c.Replace(key, v, s.ttl); err != nil {
			return zero, false
		}
	}
	return v, true
}

func (s *TTLStore[V]) Delete(key string) {
	s.c.Delete(key)
}

func (s *TTLStore[V]) Count() int {
	return s.c.ItemCount()
}

// OnEvicted registers f for expirations and deletions.
func (s *TTLStore[V]) OnEvicted(f func(key string, value V)) {
	s.c.OnEvicted(func(key string, raw interface{}) {
		if v, ok := raw.(V); ok {
			f(key, v)
		}
	})
}
