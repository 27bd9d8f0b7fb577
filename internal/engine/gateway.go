package engine

import (
	"context"
	"time"

	"github.com/puraz/pure-paste/internal/history"
)

// Gateway is the authoritative persisted store behind the engine. It
// performs id-preserving upserts, dedup-aware text edits, pin toggles,
// deletes, and pushes a broadcast for every persisted entry change.
//
// The gateway - not the engine - decides which id survives a merge; it
// must do so consistently. The implementation in internal/store keeps
// the collided-with entry's id and retires the edited one.
//
// Implemented by *store.Store (production) and fakeGateway (tests).
type Gateway interface {
	// LoadHistory returns persisted entries, at most limit, in the
	// store's own ordering. The engine re-sorts via history.Project.
	LoadHistory(ctx context.Context, limit int) ([]history.Entry, error)

	// Upsert records a capture. The store is authoritative for dedup
	// and capacity enforcement and returns the canonical entry.
	Upsert(ctx context.Context, e history.Entry, capacity int) (history.Entry, error)

	// UpdateText rewrites an entry's text. If the new text collides
	// with a different entry the two are merged; the retired id is
	// reported as MergedAwayID.
	UpdateText(ctx context.Context, id, text string, ts time.Time) (history.Update, error)

	// SetPinned flips the pin flag and returns the canonical entry.
	SetPinned(ctx context.Context, id string, pinned bool) (history.Entry, error)

	// Delete removes one entry. Clear removes everything.
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error

	// MonitoringEnabled and SetMonitoringEnabled persist the capture
	// monitor's on/off switch.
	MonitoringEnabled(ctx context.Context) (bool, error)
	SetMonitoringEnabled(ctx context.Context, enabled bool) error

	// Subscribe registers fn for every persisted entry change, from
	// any writer. The returned function unsubscribes; it must be
	// called on engine teardown.
	Subscribe(fn func(history.Update)) (unsubscribe func())
}
