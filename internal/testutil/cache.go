package testutil

import (
	"context"
	"sync"

	"netinv/internal/inventory"
)

// RecordingCache performs every load and records the invalidated topics.
type RecordingCache struct {
	mu          sync.Mutex
	invalidated []inventory.Topic
	loads       []inventory.Topic
}

func (c *RecordingCache) Load(ctx context.Context, topic inventory.Topic, load func(context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	c.loads = append(c.loads, topic)
	c.mu.Unlock()
	return load(ctx)
}

func (c *RecordingCache) Invalidate(topics ...inventory.Topic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, topics...)
}

// Invalidated returns every topic invalidated so far, in order.
func (c *RecordingCache) Invalidated() []inventory.Topic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]inventory.Topic(nil), c.invalidated...)
}

// Loads returns the topics passed to Load, in order.
func (c *RecordingCache) Loads() []inventory.Topic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]inventory.Topic(nil), c.loads...)
}

// Reset forgets the recorded topics.
func (c *RecordingCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = nil
	c.loads = nil
}

var _ inventory.Cache = (*RecordingCache)(nil)
