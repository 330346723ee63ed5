// Package roster caches the active team member list with an explicit
// staleness window so callers do not hit the store on every render.
package roster

import (
	"context"
	"sync"
	"time"

	"crewops/workforce-service/internal/models"

	"golang.org/x/sync/singleflight"
)

type Fetcher func(ctx context.Context) ([]models.TeamMember, error)

type Cache struct {
	fetch Fetcher
	fresh time.Duration
	evict time.Duration
	now   func() time.Time

	mu        sync.Mutex
	members   []models.TeamMember
	fetchedAt time.Time

	group singleflight.Group
}

type Options struct {
	Fresh time.Duration
	Evict time.Duration
	Now   func() time.Time
}

func New(fetch Fetcher, options Options) *Cache {
	fresh := options.Fresh
	if fresh <= 0 {
		fresh = 5 * time.Minute
	}
	evict := options.Evict
	if evict <= fresh {
		evict = 2 * fresh
	}
	now := options.Now
	if now == nil {
		now = time.Now
	}
	return &Cache{
		fetch: fetch,
		fresh: fresh,
		evict: evict,
		now:   now,
	}
}

// ActiveMembers serves the cached snapshot while it is fresh. A stale
// snapshot triggers a synchronous refetch shared across concurrent
// callers; if the refetch fails and the snapshot has not aged past the
// eviction window, the stale snapshot is served instead.
func (c *Cache) ActiveMembers(ctx context.Context) ([]models.TeamMember, error) {
	c.mu.Lock()
	members := c.members
	age := c.now().Sub(c.fetchedAt)
	hasSnapshot := !c.fetchedAt.IsZero()
	c.mu.Unlock()

	if hasSnapshot && age < c.fresh {
		return members, nil
	}

	result, err, _ := c.group.Do("roster", func() (interface{}, error) {
		fetched, fetchErr := c.fetch(ctx)
		if fetchErr != nil {
			return nil, fetchErr
		}
		c.mu.Lock()
		c.members = fetched
		c.fetchedAt = c.now()
		c.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		if hasSnapshot && age < c.evict {
			return members, nil
		}
		c.mu.Lock()
		c.members = nil
		c.fetchedAt = time.Time{}
		c.mu.Unlock()
		return nil, err
	}
	return result.([]models.TeamMember), nil
}

// Invalidate drops the snapshot so the next caller refetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.members = nil
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}
