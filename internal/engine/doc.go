// Package engine implements the pure-paste history synchronization
// engine.
//
// The engine owns the optimistic in-memory history cache and mediates
// between three writers: the capture monitor (clipboard polls), the
// user (edits, pins, deletes), and the persistence gateway's broadcast
// channel (changes confirmed for any window).
//
// ARCHITECTURE:
//
// Serialized mutation, asynchronous durability:
// Every cache mutation - capture, keystroke, pin, delete, broadcast
// reconciliation - runs under one lock, so no two mutations ever
// overlap. Durable writes run in their own goroutines outside the lock;
// while one is in flight, further user actions are accepted and applied
// optimistically. Confirmations re-enter through reconciliation, which
// resolves purely by id/text identity and is idempotent, so "last
// response observed" rather than "last write issued" determines final
// state.
//
// Write flow:
//  1. Mutation applied to the cache synchronously (UI sees it at once)
//  2. The same logical operation is submitted to the gateway
//  3. The gateway's canonical answer is folded back via Cache.Reconcile
//  4. The gateway broadcast delivers the same answer to every other
//     engine instance (and, redundantly, to this one - reconciliation
//     absorbs the duplicate)
//
// ERROR HANDLING: A failed durable phase leaves the optimistic state in
// place and records a single last-error value; there is no automatic
// retry. The divergence window closes on the next successful write.
// This trade favors UI responsiveness and is deliberate.
package engine
