package history

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one deduplicated clipboard history record.
//
// The id is stable across updates and changes only when a merge retires
// it. Text doubles as the dedup key: the authoritative store enforces a
// UNIQUE constraint on it, the cache mirrors that invariant.
//
// JSON field names match the persisted wire shape of the original
// pure-paste frontend ("count", camelCase timestamps).
type Entry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Pinned    bool      `json:"pinned"`
	HitCount  int64     `json:"count"`
}

// NewEntry builds a fresh unpinned entry for novel text with a single hit.
func NewEntry(text string, now time.Time) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
		Pinned:    false,
		HitCount:  1,
	}
}

// Update pairs a canonical entry with the id of an entry that a
// merge-on-edit retired, if any. It is the payload of both store
// confirmations and cross-window broadcasts.
type Update struct {
	Entry        Entry  `json:"entry"`
	MergedAwayID string `json:"mergedId,omitempty"`
}
