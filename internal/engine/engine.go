package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/puraz/pure-paste/internal/clipboard"
	"github.com/puraz/pure-paste/internal/history"
)

// DefaultLoadLimit bounds how many persisted entries are loaded at
// startup. Requests are clamped to [0, MaxLoadLimit].
const (
	DefaultLoadLimit = 200
	MaxLoadLimit     = 500
)

// MonitorControl is the subset of the capture monitor the engine
// drives: arming the self-write skip token and toggling monitoring.
type MonitorControl interface {
	MarkSkip(text string)
	SetEnabled(enabled bool)
}

// Engine owns the optimistic history cache and the view state derived
// from it (search query, selected entry, last error).
//
// Thread-safety model:
//   - every public method is safe from any goroutine
//   - cache mutations are serialized behind mu; none ever overlap
//   - gateway calls run outside mu, so mutations issued while a call
//     is in flight are accepted and applied optimistically
type Engine struct {
	gw      Gateway
	clip    clipboard.Port
	monitor MonitorControl
	now     func() time.Time

	capacity  int
	loadLimit int
	committer *committer

	ctx   context.Context
	unsub func()

	// inflight tracks async gateway confirmations so Close (and
	// tests) can wait for them.
	inflight sync.WaitGroup

	mu       sync.Mutex
	cache    *history.Cache
	query    string
	selected string
	lastErr  error
}

// Option configures an Engine.
type Option func(*Engine)

// WithCapacity sets the unpinned-entry bound passed to the gateway and
// enforced by the local cache.
func WithCapacity(n int) Option {
	return func(e *Engine) { e.capacity = n }
}

// WithClock overrides the wall clock. Tests use a deterministic clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithClipboard attaches the clipboard port used by CopyEntry.
func WithClipboard(p clipboard.Port) Option {
	return func(e *Engine) { e.clip = p }
}

// WithCommitDelay sets the edit debounce delay.
func WithCommitDelay(d time.Duration) Option {
	return func(e *Engine) { e.committer.delay = d }
}

// WithLoadLimit sets how many persisted entries Start loads.
func WithLoadLimit(n int) Option {
	return func(e *Engine) { e.loadLimit = n }
}

// New creates an engine over the given gateway.
func New(gw Gateway, opts ...Option) *Engine {
	e := &Engine{
		gw:        gw,
		now:       time.Now,
		capacity:  history.DefaultCapacity,
		loadLimit: DefaultLoadLimit,
		ctx:       context.Background(),
	}
	e.committer = newCommitter(DefaultCommitDelay, e.commitEdit)
	for _, opt := range opts {
		opt(e)
	}
	e.cache = history.NewCache(e.capacity)
	return e
}

// AttachMonitor wires the capture monitor so CopyEntry can arm the
// skip token and SetMonitoring can pause polling.
func (e *Engine) AttachMonitor(m MonitorControl) {
	e.monitor = m
}

// Start loads persisted history into the cache and subscribes to the
// gateway broadcast channel. Must be paired with Close.
func (e *Engine) Start(ctx context.Context) error {
	e.ctx = ctx

	limit := e.loadLimit
	if limit < 0 {
		limit = 0
	}
	if limit > MaxLoadLimit {
		limit = MaxLoadLimit
	}
	entries, err := e.gw.LoadHistory(ctx, limit)
	if err != nil {
		return &TransportError{Op: "load history", Err: err}
	}

	e.mu.Lock()
	e.cache.Replace(entries)
	e.repairSelection()
	e.mu.Unlock()

	e.unsub = e.gw.Subscribe(e.applyUpdate)
	slog.Info("engine started", "entries", len(entries), "capacity", e.capacity)
	return nil
}

// Close flushes any pending edit commit, unsubscribes from broadcasts,
// and waits for in-flight gateway confirmations.
func (e *Engine) Close() {
	e.committer.Flush()
	if e.unsub != nil {
		e.unsub()
		e.unsub = nil
	}
	e.inflight.Wait()
	slog.Info("engine stopped")
}

// Wait blocks until every in-flight gateway confirmation has been
// reconciled. Used by tests and teardown.
func (e *Engine) Wait() {
	e.inflight.Wait()
}

// Upsert records captured or copied text: an optimistic cache apply,
// then an asynchronous durable upsert whose canonical answer is
// reconciled back in.
//
// Empty or whitespace-only text is a silent no-op, not an error.
// Returns the optimistic entry - the UI reflects it before the durable
// phase completes.
func (e *Engine) Upsert(text string) (history.Entry, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return history.Entry{}, nil
	}

	e.mu.Lock()
	entry, hit := e.cache.Touch(trimmed, e.now())
	if !hit {
		entry = history.NewEntry(trimmed, e.now())
		e.cache.Insert(entry)
	}
	e.repairSelection()
	e.mu.Unlock()

	slog.Debug("optimistic upsert", "id", entry.ID, "hit", hit, "count", entry.HitCount)

	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		canonical, err := e.gw.Upsert(e.ctx, entry, e.capacity)
		if err != nil {
			// The optimistic entry stays; the next successful
			// write is the only self-healing path.
			e.fail("upsert", err)
			return
		}
		e.applyUpdate(history.Update{Entry: canonical})
	}()

	return entry, nil
}

// EditText applies one keystroke against an entry: the cache text
// mutates synchronously and the debounced commit is (re)scheduled.
// Whitespace-only results are ignored entirely.
func (e *Engine) EditText(id, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	e.mu.Lock()
	_, ok := e.cache.SetText(id, text, e.now())
	e.mu.Unlock()
	if !ok {
		return
	}

	e.committer.Schedule(id, text)
}

// FlushEdits commits any pending edit immediately. Call on blur,
// selection change, or teardown.
func (e *Engine) FlushEdits() {
	e.committer.Flush()
}

// commitEdit is the committer's fire path: it runs the durable text
// update and reconciles the result, including a possible merge.
func (e *Engine) commitEdit(id, text string) {
	res, err := e.gw.UpdateText(e.ctx, id, text, e.now())
	if err != nil {
		e.fail("update text", err)
		return
	}
	e.applyUpdate(res)
}

// TogglePin optimistically flips an entry's pin flag, then confirms
// through the gateway. No merge is possible for this operation.
func (e *Engine) TogglePin(id string) (history.Entry, error) {
	e.mu.Lock()
	current, ok := e.cache.FindByID(id)
	if !ok {
		e.mu.Unlock()
		return history.Entry{}, fmt.Errorf("entry %s not found", id)
	}
	entry, _ := e.cache.SetPinned(id, !current.Pinned)
	e.repairSelection()
	e.mu.Unlock()

	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		canonical, err := e.gw.SetPinned(e.ctx, id, entry.Pinned)
		if err != nil {
			e.fail("set pinned", err)
			return
		}
		e.applyUpdate(history.Update{Entry: canonical})
	}()

	return entry, nil
}

// Delete optimistically removes an entry and fires the gateway delete.
// A pending edit commit targeting the entry is dropped so a stale timer
// cannot resurrect it. Failures are surfaced but never restore the
// entry.
func (e *Engine) Delete(id string) {
	e.committer.Drop(id)

	e.mu.Lock()
	removed := e.cache.Remove(id)
	e.repairSelection()
	e.mu.Unlock()
	if !removed {
		return
	}

	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		if err := e.gw.Delete(e.ctx, id); err != nil {
			e.fail("delete", err)
			return
		}
		e.clearError()
	}()
}

// ClearAll empties the history: cache, selection, and pending commit
// first, then the gateway-side bulk clear.
func (e *Engine) ClearAll() {
	e.committer.Cancel()

	e.mu.Lock()
	e.cache.Clear()
	e.selected = ""
	e.mu.Unlock()

	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		if err := e.gw.Clear(e.ctx); err != nil {
			e.fail("clear", err)
			return
		}
		e.clearError()
	}()
}

// CopyEntry writes an entry's text back to the system clipboard, arms
// the monitor's skip token so the write is not re-captured, and bumps
// the entry's hit count.
func (e *Engine) CopyEntry(id string) (history.Entry, error) {
	e.mu.Lock()
	entry, ok := e.cache.FindByID(id)
	e.mu.Unlock()
	if !ok {
		return history.Entry{}, fmt.Errorf("entry %s not found", id)
	}
	if e.clip == nil {
		return history.Entry{}, fmt.Errorf("no clipboard port attached")
	}

	if err := e.clip.WriteText(entry.Text); err != nil {
		e.fail("copy", err)
		return history.Entry{}, &TransportError{Op: "copy", Err: err}
	}
	if e.monitor != nil {
		e.monitor.MarkSkip(entry.Text)
	}

	return e.Upsert(entry.Text)
}

// SetMonitoring toggles clipboard capture: the persisted switch first,
// then the live monitor.
func (e *Engine) SetMonitoring(enabled bool) error {
	if err := e.gw.SetMonitoringEnabled(e.ctx, enabled); err != nil {
		e.fail("set monitoring", err)
		return &TransportError{Op: "set monitoring", Err: err}
	}
	if e.monitor != nil {
		e.monitor.SetEnabled(enabled)
	}
	e.clearError()
	slog.Info("monitoring toggled", "enabled", enabled)
	return nil
}

// RecordError surfaces a failure from a collaborator (the capture
// monitor) as the engine's last error.
func (e *Engine) RecordError(err error) {
	if err == nil {
		return
	}
	if IsTransport(err) {
		e.mu.Lock()
		e.lastErr = err
		e.mu.Unlock()
		return
	}
	e.fail("clipboard", err)
}

// SetQuery updates the search filter and repairs the selection against
// the new visible sequence.
func (e *Engine) SetQuery(query string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.query = query
	e.repairSelection()
}

// Query returns the current search filter.
func (e *Engine) Query() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query
}

// Visible returns the projected sequence for the current query:
// filtered, pinned-first, newest-first.
func (e *Engine) Visible() []history.Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return history.Project(e.cache.Entries(), e.query)
}

// Entries returns an unfiltered snapshot of the cache.
func (e *Engine) Entries() []history.Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache.Entries()
}

// Select makes id the selected entry if it is visible, then flushes
// any edit pending against the previously selected entry.
func (e *Engine) Select(id string) {
	e.committer.Flush()

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, entry := range history.Project(e.cache.Entries(), e.query) {
		if entry.ID == id {
			e.selected = id
			return
		}
	}
	e.repairSelection()
}

// SelectedID returns the currently selected entry id, or "".
func (e *Engine) SelectedID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

// LastError returns the most recent surfaced failure, or nil. It is
// cleared by the next successful operation.
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// applyUpdate folds a canonical entry into the cache. It serves both
// local confirmations and cross-window broadcasts; Cache.Reconcile's
// idempotence makes the inevitable duplicate deliveries harmless.
func (e *Engine) applyUpdate(u history.Update) {
	if u.MergedAwayID != "" {
		e.committer.Retarget(u.MergedAwayID, u.Entry.ID)
	}

	e.mu.Lock()
	e.cache.Reconcile(u.Entry, u.MergedAwayID)
	if u.MergedAwayID != "" && e.selected == u.MergedAwayID {
		e.selected = u.Entry.ID
	}
	e.repairSelection()
	e.lastErr = nil
	e.mu.Unlock()

	slog.Debug("reconciled", "id", u.Entry.ID, "merged_away", u.MergedAwayID)
}

// repairSelection keeps the selection pointing at a visible entry:
// absent (or empty) selections snap to the first visible entry, or
// clear when nothing is visible. Runs synchronously after every cache
// mutation. Caller must hold mu.
func (e *Engine) repairSelection() {
	visible := history.Project(e.cache.Entries(), e.query)
	if len(visible) == 0 {
		e.selected = ""
		return
	}
	for _, entry := range visible {
		if entry.ID == e.selected {
			return
		}
	}
	e.selected = visible[0].ID
}

// fail records a transport failure as the last error.
func (e *Engine) fail(op string, err error) {
	slog.Warn("operation failed", "op", op, "error", err)
	e.mu.Lock()
	e.lastErr = &TransportError{Op: op, Err: err}
	e.mu.Unlock()
}

// clearError resets the last error after a successful operation.
func (e *Engine) clearError() {
	e.mu.Lock()
	e.lastErr = nil
	e.mu.Unlock()
}
