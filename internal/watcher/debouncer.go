package watcher

import (
	"sync"
	"time"
)

type debounceEntry struct {
	insertedAt time.Time
}

// DebounceCache is a set of file names whose members expire on their own
// after a fixed TTL. Every entry owns its expiry timer; there is no shared
// schedule and no lock around the set.
type DebounceCache struct {
	ttl     time.Duration
	entries sync.Map // string -> *debounceEntry
}

func NewDebounceCache(ttl time.Duration) *DebounceCache {
	if ttl <= 0 {
		ttl = DefaultDebounceTTL
	}
	return &DebounceCache{ttl: ttl}
}

func (c *DebounceCache) TTL() time.Duration {
	return c.ttl
}

// Append adds key and schedules its removal after the TTL. Appending a key
// that is already present restarts its lifetime.
func (c *DebounceCache) Append(key string) {
	e := &debounceEntry{insertedAt: time.Now()}
	c.entries.Store(key, e)

	time.AfterFunc(c.ttl, func() {
		// a newer Append owns the key now
		c.entries.CompareAndDelete(key, e)
	})
}

func (c *DebounceCache) Contains(key string) bool {
	_, ok := c.entries.Load(key)
	return ok
}

// InsertedAt returns when key was last appended.
func (c *DebounceCache) InsertedAt(key string) (time.Time, bool) {
	v, ok := c.entries.Load(key)
	if !ok {
		return time.Time{}, false
	}
	return v.(*debounceEntry).insertedAt, true
}

func (c *DebounceCache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
