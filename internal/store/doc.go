// Package store is the authoritative persistence gateway: a SQLite
// database holding the deduplicated clipboard history and app
// settings, plus the in-process broadcast channel that fans persisted
// changes out to every open engine instance.
//
// The store, not the engine, owns the two hard decisions:
//
//   - dedup and capacity: Upsert folds repeat text into the existing
//     row and prunes the oldest unpinned rows beyond capacity, all in
//     one transaction
//   - merge-on-edit survivorship: when an edit collides with another
//     row, the collided-with row keeps its id; the edited row is
//     deleted and reported as the merged-away id. Hit counts are
//     summed, pin flags OR-ed, createdAt takes the older value.
//
// Errors returned here are plain transport failures; the engine wraps
// them into its own taxonomy. Text-level validation (empty input)
// returns history.ErrEmptyText.
package store
