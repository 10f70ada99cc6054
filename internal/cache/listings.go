// Package cache memoizes listing reads between writes.
package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"netinv/internal/inventory"
)

type entry struct {
	value   any
	gen     uint64
	expires time.Time
}

// Listings is an inventory.Cache holding each topic's value for a short TTL.
// Concurrent loads of the same topic share one call. Invalidating a topic
// bumps its generation, so a load that started before the invalidation is
// not stored.
type Listings struct {
	ttl   time.Duration
	clock inventory.Clock
	group singleflight.Group

	mu      sync.Mutex
	entries map[inventory.Topic]entry
	gens    map[inventory.Topic]uint64

	hits, misses uint64
}

var _ inventory.Cache = (*Listings)(nil)

// NewListings creates a cache. A zero ttl disables caching but keeps the
// load de-duplication.
func NewListings(ttl time.Duration, clock inventory.Clock) *Listings {
	if clock == nil {
		clock = inventory.RealClock{}
	}
	return &Listings{
		ttl:     ttl,
		clock:   clock,
		entries: map[inventory.Topic]entry{},
		gens:    map[inventory.Topic]uint64{},
	}
}

func (c *Listings) Load(ctx context.Context, topic inventory.Topic, load func(context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	gen := c.gens[topic]
	if e, ok := c.entries[topic]; ok && e.gen == gen && c.clock.Now().Before(e.expires) {
		c.hits++
		c.mu.Unlock()
		return e.value, nil
	}
	c.misses++
	c.mu.Unlock()

	key := string(topic) + "#" + strconv.FormatUint(gen, 10)
	v, err, _ := c.group.Do(key, func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.store(topic, gen, v)
		return v, nil
	})
	return v, err
}

func (c *Listings) store(topic inventory.Topic, gen uint64, v any) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[topic] != gen {
		return
	}
	c.entries[topic] = entry{value: v, gen: gen, expires: c.clock.Now().Add(c.ttl)}
}

func (c *Listings) Invalidate(topics ...inventory.Topic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range topics {
		c.gens[t]++
		delete(c.entries, t)
	}
}

// Stats returns the hit and miss counts since creation.
func (c *Listings) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
