// Package cache holds provider responses in process so repeated lookups
// within a tick or schedule window do not hit the network.
package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"
)

type item[V any] struct {
	value   V
	expires time.Time // zero means never
}

// Store is a keyed TTL cache with per-key load coalescing. A ttl of zero or
// less keeps entries until they are invalidated.
type Store[V any] struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items map[string]item[V]
	loads singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// Stats counts lookups served from the cache and lookups that had to load.
type Stats struct {
	Hits   int64
	Misses int64
}

func NewStore[V any](ttl time.Duration) *Store[V] {
	return &Store[V]{ttl: ttl, now: time.Now, items: map[string]item[V]{}}
}

// Get returns a live entry. Expired entries are evicted on the way out.
func (s *Store[V]) Get(_ context.Context, key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[key]
	if ok && !it.expires.IsZero() && !s.now().Before(it.expires) {
		delete(s.items, key)
		ok = false
	}
	if !ok {
		var zero V
		return zero, false
	}
	return it.value, true
}

func (s *Store[V]) Set(_ context.Context, key string, value V) {
	if key == "" {
		return
	}
	it := item[V]{value: value}
	if s.ttl > 0 {
		it.expires = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.items[key] = it
	s.mu.Unlock()
}

// DeletePrefix drops every key starting with prefix; an empty prefix is a no-op.
func (s *Store[V]) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}
	s.mu.Lock()
	for key := range s.items {
		if strings.HasPrefix(key, prefix) {
			delete(s.items, key)
		}
	}
	s.mu.Unlock()
}

func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store[V]) Stats() Stats {
	return Stats{Hits: s.hits.Load(), Misses: s.misses.Load()}
}

// GetOrLoad serves key from the cache or runs load exactly once for all
// concurrent callers. Failed loads are not stored.
func (s *Store[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (V, error) {
	if load == nil {
		var zero V
		return zero, crerr.New("cache loader is required")
	}
	if key == "" {
		return load(ctx)
	}
	if value, ok := s.Get(ctx, key); ok {
		s.hits.Add(1)
		return value, nil
	}

	s.misses.Add(1)
	loaded, err, _ := s.loads.Do(key, func() (any, error) {
		if value, ok := s.Get(ctx, key); ok {
			return value, nil
		}
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		s.Set(ctx, key, value)
		return value, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return loaded.(V), nil
}
