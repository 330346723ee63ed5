package roster

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"crewops/workforce-service/internal/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestCacheServesFreshSnapshot(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	var calls int32
	fetch := func(ctx context.Context) ([]models.TeamMember, error) {
		atomic.AddInt32(&calls, 1)
		return []models.TeamMember{{UserID: "u1", DisplayName: "Dana Reyes"}}, nil
	}
	cache := New(fetch, Options{Fresh: 5 * time.Minute, Evict: 10 * time.Minute, Now: clock.Now})

	for i := 0; i < 3; i++ {
		members, err := cache.ActiveMembers(context.Background())
		if err != nil {
			t.Fatalf("ActiveMembers: %v", err)
		}
		if len(members) != 1 {
			t.Fatalf("got %d members", len(members))
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("fetch calls = %d, want 1", got)
	}

	clock.Advance(4 * time.Minute)
	if _, err := cache.ActiveMembers(context.Background()); err != nil {
		t.Fatalf("ActiveMembers: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("fetch calls = %d, want 1 while fresh", got)
	}
}

func TestCacheRefetchesWhenStale(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	var calls int32
	fetch := func(ctx context.Context) ([]models.TeamMember, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil
	}
	cache := New(fetch, Options{Fresh: 5 * time.Minute, Evict: 10 * time.Minute, Now: clock.Now})

	if _, err := cache.ActiveMembers(context.Background()); err != nil {
		t.Fatalf("ActiveMembers: %v", err)
	}
	clock.Advance(6 * time.Minute)
	if _, err := cache.ActiveMembers(context.Background()); err != nil {
		t.Fatalf("ActiveMembers: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("fetch calls = %d, want 2 after staleness", got)
	}
}

func TestCacheServesStaleOnRefetchFailure(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	var calls int32
	fetch := func(ctx context.Context) ([]models.TeamMember, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return []models.TeamMember{{UserID: "u1", DisplayName: "Dana Reyes"}}, nil
		}
		return nil, errors.New("store down")
	}
	cache := New(fetch, Options{Fresh: 5 * time.Minute, Evict: 10 * time.Minute, Now: clock.Now})

	if _, err := cache.ActiveMembers(context.Background()); err != nil {
		t.Fatalf("ActiveMembers: %v", err)
	}

	clock.Advance(6 * time.Minute)
	members, err := cache.ActiveMembers(context.Background())
	if err != nil {
		t.Fatalf("expected stale snapshot, got error: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("got %d members from stale snapshot", len(members))
	}

	clock.Advance(5 * time.Minute)
	if _, err := cache.ActiveMembers(context.Background()); err == nil {
		t.Fatal("expected error once snapshot aged past eviction")
	}
}

func TestCacheSharesInFlightRefetch(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	var calls int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) ([]models.TeamMember, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []models.TeamMember{{UserID: "u1", DisplayName: "Dana Reyes"}}, nil
	}
	cache := New(fetch, Options{Fresh: 5 * time.Minute, Evict: 10 * time.Minute, Now: clock.Now})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.ActiveMembers(context.Background()); err != nil {
				t.Errorf("ActiveMembers: %v", err)
			}
		}()
	}
	// Give the goroutines time to pile onto the single in-flight fetch.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("fetch calls = %d, want 1 shared fetch", got)
	}
}

func TestCacheInvalidate(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	var calls int32
	fetch := func(ctx context.Context) ([]models.TeamMember, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil
	}
	cache := New(fetch, Options{Fresh: 5 * time.Minute, Evict: 10 * time.Minute, Now: clock.Now})

	if _, err := cache.ActiveMembers(context.Background()); err != nil {
		t.Fatalf("ActiveMembers: %v", err)
	}
	cache.Invalidate()
	if _, err := cache.ActiveMembers(context.Background()); err != nil {
		t.Fatalf("ActiveMembers: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("fetch calls = %d, want 2 after invalidate", got)
	}
}
