package engsel

import (
	"sync"
	"time"

	"github.com/Veraticus/kuota/internal/model"
)

type familyEntry struct {
	expiry time.Time
	family *model.Family
}

// familyCache keeps family listings for a short while. Package details are
// never cached: their confirmation tokens must be fresh for every purchase.
type familyCache struct {
	entries map[string]familyEntry
	now     func() time.Time
	ttl     time.Duration
	mu      sync.RWMutex
}

func newFamilyCache(ttl time.Duration) *familyCache {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &familyCache{
		entries: make(map[string]familyEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *familyCache) get(key string) (*model.Family, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expiry) {
		return nil, false
	}
	return entry.family, true
}

func (c *familyCache) set(key string, family *model.Family) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiry) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = familyEntry{family: family, expiry: now.Add(c.ttl)}
}

func (c *familyCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
