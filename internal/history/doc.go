// Package history holds the clipboard history model: the Entry record,
// the bounded in-memory cache that backs the optimistic view, and the
// pure projection used to render it.
//
// The cache is the engine's single source of truth for the UI. It is an
// ordered, id-keyed set with two uniqueness invariants:
//
//   - entries are unique by id
//   - at most one live entry carries a given text value
//
// The second invariant may be violated transiently by optimistic edits;
// Reconcile restores it when the authoritative store answers.
//
// CRITICAL: Reconcile is idempotent. In-flight store confirmations and
// cross-window broadcasts can deliver the same (entry, mergedAwayID) pair
// more than once and in any order relative to newer local writes. The
// cache resolves purely by id/text identity, never by timestamps, so the
// last update observed wins regardless of issue order.
//
// The cache is NOT safe for concurrent use. The engine serializes every
// mutation behind its own lock.
package history
