package frontend

import (
	"sync"

	"github.com/osa030/demobox/internal/app/player"
	"github.com/osa030/demobox/internal/domain/segment"
)

// VerifyFunc checks the collected segments on publish.
type VerifyFunc func(collected []segment.Segment) error

// Collector records every built segment in order for later comparison.
type Collector struct {
	mu        sync.Mutex
	collected []segment.Segment
	published bool
	verify    VerifyFunc
}

// NewCollector creates a collector. verify may be nil.
func NewCollector(verify VerifyFunc) *Collector {
	return &Collector{verify: verify}
}

// Build appends the segments to the collection.
func (c *Collector) Build(segments []segment.Segment) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.collected = append(c.collected, segments...)
	c.published = false
	return nil
}

// Publish marks the collection published and runs the verification.
func (c *Collector) Publish() error {
	c.mu.Lock()
	c.published = true
	collected := c.snapshotLocked()
	c.mu.Unlock()

	if c.verify == nil {
		return nil
	}
	return c.verify(collected)
}

// IsRunning reports whether something was collected but not yet published.
func (c *Collector) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.collected) > 0 && !c.published
}

// Abort discards unpublished segments.
func (c *Collector) Abort() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.collected) == 0 || c.published {
		return player.ErrNotRunning
	}
	c.collected = nil
	return nil
}

// Collected returns a copy of everything collected so far.
func (c *Collector) Collected() []segment.Segment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Collector) snapshotLocked() []segment.Segment {
	result := make([]segment.Segment, len(c.collected))
	copy(result, c.collected)
	return result
}
