package history

import "time"

// DefaultCapacity bounds the number of unpinned entries kept in history
// when no explicit capacity is configured.
const DefaultCapacity = 80

// Cache is the bounded, ordered, id-keyed set of entries backing the
// optimistic view. Entries are held most-recent-first; Reconcile and
// Touch move the affected entry to the front.
//
// Pinned entries never count against capacity and are never trimmed.
type Cache struct {
	capacity int
	entries  []Entry
}

// NewCache creates an empty cache. A non-positive capacity falls back to
// DefaultCapacity.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{capacity: capacity}
}

// Capacity returns the configured unpinned-entry bound.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Len returns the number of entries currently cached.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the cached entries, most recent first.
// Callers own the returned slice; the cache is never exposed by
// reference.
func (c *Cache) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// FindByID returns the entry with the given id.
func (c *Cache) FindByID(id string) (Entry, bool) {
	if i := c.indexByID(id); i >= 0 {
		return c.entries[i], true
	}
	return Entry{}, false
}

// FindByText returns the entry whose text equals text exactly.
func (c *Cache) FindByText(text string) (Entry, bool) {
	if i := c.indexByText(text); i >= 0 {
		return c.entries[i], true
	}
	return Entry{}, false
}

// Touch records a repeat capture of existing text: the hit count is
// incremented, updatedAt refreshed, and the entry moves to the front.
// Returns false if no entry carries the text.
func (c *Cache) Touch(text string, now time.Time) (Entry, bool) {
	i := c.indexByText(text)
	if i < 0 {
		return Entry{}, false
	}
	e := c.entries[i]
	e.HitCount++
	e.UpdatedAt = now
	c.removeAt(i)
	c.insertFront(e)
	return e, true
}

// Insert places a new entry at the front and trims to capacity.
// Any live entry with the same id is replaced.
func (c *Cache) Insert(e Entry) {
	if i := c.indexByID(e.ID); i >= 0 {
		c.removeAt(i)
	}
	c.insertFront(e)
	c.trim()
}

// SetText rewrites an entry's text in place, refreshing updatedAt. This
// is the optimistic keystroke path: a resulting text collision with
// another entry is tolerated until the store's merge answer reconciles
// it away.
func (c *Cache) SetText(id, text string, now time.Time) (Entry, bool) {
	i := c.indexByID(id)
	if i < 0 {
		return Entry{}, false
	}
	c.entries[i].Text = text
	c.entries[i].UpdatedAt = now
	return c.entries[i], true
}

// SetPinned flips the pin flag without touching updatedAt, matching the
// persisted behavior.
func (c *Cache) SetPinned(id string, pinned bool) (Entry, bool) {
	i := c.indexByID(id)
	if i < 0 {
		return Entry{}, false
	}
	c.entries[i].Pinned = pinned
	return c.entries[i], true
}

// Remove deletes the entry with the given id, reporting whether it was
// present.
func (c *Cache) Remove(id string) bool {
	i := c.indexByID(id)
	if i < 0 {
		return false
	}
	c.removeAt(i)
	return true
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.entries = nil
}

// Replace swaps the full contents, most recent first, trimming to
// capacity. Used when loading persisted history at startup.
func (c *Cache) Replace(entries []Entry) {
	c.entries = make([]Entry, len(entries))
	copy(c.entries, entries)
	c.trim()
}

// Reconcile folds a canonical entry into the cache:
//
//  1. drop the merged-away entry, if any
//  2. drop the stale copy under entry.ID
//  3. drop any optimistic duplicate holding the same text under a
//     different id
//  4. insert the canonical entry at the front and trim
//
// Applying the same update twice leaves the cache unchanged after the
// first application; the engine's correctness under overlapping
// in-flight confirmations depends on exactly that.
func (c *Cache) Reconcile(e Entry, mergedAwayID string) {
	if mergedAwayID != "" {
		c.Remove(mergedAwayID)
	}
	c.Remove(e.ID)
	for {
		i := c.indexByText(e.Text)
		if i < 0 {
			break
		}
		c.removeAt(i)
	}
	c.insertFront(e)
	c.trim()
}

// trim evicts the oldest unpinned entries until the unpinned count fits
// the capacity. Pinned entries are never candidates.
func (c *Cache) trim() {
	for c.unpinnedCount() > c.capacity {
		i := c.oldestUnpinned()
		if i < 0 {
			return
		}
		c.removeAt(i)
	}
}

func (c *Cache) unpinnedCount() int {
	n := 0
	for _, e := range c.entries {
		if !e.Pinned {
			n++
		}
	}
	return n
}

// oldestUnpinned picks the eviction victim by updatedAt, scanning from
// the back so positional ties resolve to the least recently inserted.
func (c *Cache) oldestUnpinned() int {
	victim := -1
	for i := len(c.entries) - 1; i >= 0; i-- {
		e := c.entries[i]
		if e.Pinned {
			continue
		}
		if victim < 0 || e.UpdatedAt.Before(c.entries[victim].UpdatedAt) {
			victim = i
		}
	}
	return victim
}

func (c *Cache) insertFront(e Entry) {
	c.entries = append([]Entry{e}, c.entries...)
}

func (c *Cache) removeAt(i int) {
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
}

func (c *Cache) indexByID(id string) int {
	for i, e := range c.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (c *Cache) indexByText(text string) int {
	for i, e := range c.entries {
		if e.Text == text {
			return i
		}
	}
	return -1
}
