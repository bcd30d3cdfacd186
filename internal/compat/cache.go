package compat

import (
	"sync"
	"time"
)

// answerCache stores recently resolved compatibility answers so the
// advisory Peek path can serve drags without a round-trip per pointer
// move, while entries expire fast enough to track remote changes.
type answerCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]answerEntry
}

type answerEntry struct {
	compatible bool
	expiresAt  time.Time
}

func newAnswerCache(ttl time.Duration, maxEntries int, now func() time.Time) *answerCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if now == nil {
		now = time.Now
	}
	return &answerCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]answerEntry),
	}
}

func (c *answerCache) Get(key string) (bool, bool) {
	if c == nil {
		return false, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return false, false
	}
	return entry.compatible, true
}

func (c *answerCache) Store(key string, compatible bool) {
	if c == nil {
		return
	}
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = answerEntry{compatible: compatible, expiresAt: expiry}
}

func (c *answerCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]answerEntry)
	c.mu.Unlock()
}

func (c *answerCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *answerCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cacheKey(moldCode, machineID string) string {
	return moldCode + "|" + machineID
}
