package asset

import (
	"slices"
	"sync"

	"github.com/matzehuels/gridlayout/pkg/grid"
)

// Entry is a resolved preview for one content-reference id.
type Entry struct {
	RefID   string       `json:"ref_id"`
	Preview grid.Preview `json:"preview"`
}

// Diff describes how a merge changed a [Cache]. Each list holds ref ids in
// the order they were seen.
type Diff struct {
	Added   []string `json:"added,omitempty"`
	Updated []string `json:"updated,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

// Empty reports whether the merge changed nothing.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Updated) == 0 && len(d.Removed) == 0
}

// Cache holds resolved previews with stable ordering so that lists built
// from it keep their identity across refreshes. It is owned by whoever
// creates it and passed explicitly to the components that need lookups.
// A Cache is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]grid.Preview
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]grid.Preview)}
}

// Merge adds new entries and updates changed ones. Entries not listed are
// kept.
func (c *Cache) Merge(entries []Entry) Diff {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.merge(entries)
}

// Replace makes the cache hold exactly entries. Ids no longer present are
// reported as removed.
func (c *Cache) Replace(entries []Entry) Diff {
	c.mu.Lock()
	defer c.mu.Unlock()

	keep := make(map[string]bool, len(entries))
	for _, e := range entries {
		keep[e.RefID] = true
	}
	var removed []string
	c.order = slices.DeleteFunc(c.order, func(id string) bool {
		if keep[id] {
			return false
		}
		removed = append(removed, id)
		delete(c.entries, id)
		return true
	})

	d := c.merge(entries)
	d.Removed = removed
	return d
}

func (c *Cache) merge(entries []Entry) Diff {
	var d Diff
	for _, e := range entries {
		if e.RefID == "" {
			continue
		}
		old, ok := c.entries[e.RefID]
		switch {
		case !ok:
			c.order = append(c.order, e.RefID)
			d.Added = append(d.Added, e.RefID)
		case old != e.Preview:
			d.Updated = append(d.Updated, e.RefID)
		default:
			continue
		}
		c.entries[e.RefID] = e.Preview
	}
	return d
}

// Get returns the preview for refID.
func (c *Cache) Get(refID string) (grid.Preview, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.entries[refID]
	return p, ok
}

// Len returns the number of cached previews.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Snapshot returns all entries in insertion order.
func (c *Cache) Snapshot() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, len(c.order))
	for i, id := range c.order {
		out[i] = Entry{RefID: id, Preview: c.entries[id]}
	}
	return out
}
