package cache

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/staffing-service/internal/domain"
)

// Memory is a bounded in-process cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryRecord
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

type memoryRecord struct {
	value    entry
	cachedAt time.Time
}

// NewMemory creates an in-memory cache. Zero values default to five minutes and 500 entries.
func NewMemory(ttl time.Duration, maxSize int) *Memory {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if maxSize <= 0 {
		maxSize = 500
	}
	return &Memory{
		entries: make(map[string]memoryRecord),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
}

func (c *Memory) Get(_ context.Context, sessionID string) (*domain.Session, error) {
	c.mu.RLock()
	record, ok := c.entries[sessionID]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrMiss
	}
	if c.now().Sub(record.cachedAt) > c.ttl {
		c.mu.Lock()
		delete(c.entries, sessionID)
		c.mu.Unlock()
		return nil, ErrMiss
	}
	return record.value.session(), nil
}

func (c *Memory) Set(_ context.Context, session *domain.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[session.ID]; !exists && len(c.entries) >= c.maxSize {
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
	c.entries[session.ID] = memoryRecord{value: toEntry(session), cachedAt: c.now()}
	return nil
}

func (c *Memory) Delete(_ context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, sessionID)
	return nil
}

// Len returns the number of stored entries, expired or not.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
