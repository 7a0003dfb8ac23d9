package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_CoalescesConcurrentLoads(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute)
	release := make(chan struct{})
	var calls atomic.Int32
	load := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "scoreboard", nil
	}

	const callers = 16
	results := make(chan string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := store.GetOrLoad(context.Background(), "eng.1", load)
			if err != nil {
				t.Errorf("GetOrLoad: %v", err)
			}
			results <- v
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for v := range results {
		if v != "scoreboard" {
			t.Fatalf("got %q, want scoreboard", v)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("loader ran %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_CountsHitsAndMisses(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute)
	load := func(context.Context) (int, error) { return 3, nil }

	for i := 0; i < 3; i++ {
		if _, err := store.GetOrLoad(context.Background(), "usa.1", load); err != nil {
			t.Fatalf("GetOrLoad: %v", err)
		}
	}
	if got := store.Stats(); got != (Stats{Hits: 2, Misses: 1}) {
		t.Fatalf("unexpected stats %+v", got)
	}
}

func TestStore_EntriesExpireAfterTTL(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute)
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "eng.1", 7)
	if got, ok := store.Get(context.Background(), "eng.1"); !ok || got != 7 {
		t.Fatalf("expected cached value, got=%d ok=%v", got, ok)
	}

	now = now.Add(time.Minute)
	if _, ok := store.Get(context.Background(), "eng.1"); ok {
		t.Fatalf("expected entry to expire")
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted")
	}
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	t.Parallel()

	store := NewStore[int](0)
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "teams:eng.1", 20)
	now = now.Add(24 * time.Hour)
	if _, ok := store.Get(context.Background(), "teams:eng.1"); !ok {
		t.Fatalf("expected entry without ttl to survive")
	}
}

func TestStore_GetOrLoad_RetriesAfterError(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute)
	boom := errors.New("boom")
	if _, err := store.GetOrLoad(context.Background(), "fixture:team:ars", func(context.Context) (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}

	got, err := store.GetOrLoad(context.Background(), "fixture:team:ars", func(context.Context) (string, error) { return "ok", nil })
	if err != nil || got != "ok" {
		t.Fatalf("expected reload after error, got=%q err=%v", got, err)
	}

	store.Set(context.Background(), "other", "x")
	store.DeletePrefix(context.Background(), "fixture:team:")
	if _, ok := store.Get(context.Background(), "fixture:team:ars"); ok {
		t.Fatalf("expected prefix delete to remove entry")
	}
	if store.Len() != 1 {
		t.Fatalf("expected unrelated key to survive, len=%d", store.Len())
	}
}

func TestStore_GetOrLoad_RequiresLoader(t *testing.T) {
	t.Parallel()

	if _, err := NewStore[int](time.Minute).GetOrLoad(context.Background(), "k", nil); err == nil {
		t.Fatalf("expected error for nil loader")
	}
}
