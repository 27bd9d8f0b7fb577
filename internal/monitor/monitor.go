// Package monitor polls the system clipboard and turns genuine
// external changes into history captures.
//
// Two single-slot, last-write-wins markers keep the loop honest:
//
//   - skipNext: the text this application last wrote to the clipboard.
//     The next cycle observing it clears the slot and records it as
//     seen without capturing - the self-write suppression path.
//   - lastSeen: the text of the previous cycle, so unchanged clipboard
//     content is not re-captured every cycle.
//
// Known race, accepted by design: if the application writes text T
// while a cycle that already read T is in flight, the skip token can be
// overwritten or missed and T gains a spurious duplicate hit. Ordering
// is not required here - downstream reconciliation is idempotent - so
// the race is documented rather than eliminated.
//
// Related, and unconditional: a clipboard write from another process
// (the one-shot copy command) cannot arm this monitor's skip token, so
// the next cycle captures it as an ordinary external change and the
// text gains one extra hit. Same blast radius as the race above.
package monitor

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puraz/pure-paste/internal/clipboard"
	"github.com/puraz/pure-paste/internal/history"
)

// DefaultPollInterval balances capture latency against CPU cost.
const DefaultPollInterval = 900 * time.Millisecond

// Sink receives captured clipboard text. Implemented by *engine.Engine.
type Sink interface {
	Upsert(text string) (history.Entry, error)
}

// Monitor is the clipboard capture loop. A disabled monitor keeps
// ticking but reads nothing.
type Monitor struct {
	port     clipboard.Port
	sink     Sink
	interval time.Duration
	enabled  atomic.Bool

	// onError surfaces genuine (non-benign) cycle failures, typically
	// to the engine's last-error slot. A single cycle's failure never
	// halts the loop.
	onError func(error)

	// enabledSource, when set, re-reads the persisted capture switch
	// before each cycle, so a toggle written by another process takes
	// effect within one poll interval.
	enabledSource func() (bool, error)

	mu       sync.Mutex
	skipNext string
	lastSeen string
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithOnError registers a callback for genuine cycle failures.
func WithOnError(fn func(error)) Option {
	return func(m *Monitor) { m.onError = fn }
}

// WithEnabledSource registers the persisted capture switch. It is
// consulted at the start of every cycle; read failures keep the
// current state.
func WithEnabledSource(fn func() (bool, error)) Option {
	return func(m *Monitor) { m.enabledSource = fn }
}

// New creates a monitor over the given clipboard port, delivering
// captures to sink. Monitoring starts enabled.
func New(port clipboard.Port, sink Sink, opts ...Option) *Monitor {
	m := &Monitor{
		port:     port,
		sink:     sink,
		interval: DefaultPollInterval,
	}
	m.enabled.Store(true)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetEnabled arms or disarms capture. The poll loop keeps running
// either way; disabled cycles are no-ops.
func (m *Monitor) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

// Enabled reports whether capture is armed.
func (m *Monitor) Enabled() bool {
	return m.enabled.Load()
}

// MarkSkip records text the application itself just wrote, so the next
// cycle observing it is suppressed. It also advances lastSeen, matching
// the original watcher: a self-write is by definition already seen.
func (m *Monitor) MarkSkip(text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipNext = trimmed
	m.lastSeen = trimmed
}

// Run drives the poll loop until ctx is cancelled. An initial read
// primes lastSeen so content already on the clipboard at startup is
// not re-counted.
func (m *Monitor) Run(ctx context.Context) error {
	m.prime()

	slog.Info("clipboard monitor started", "interval", m.interval, "enabled", m.Enabled())
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("clipboard monitor stopped")
			return ctx.Err()
		case <-ticker.C:
			m.cycle()
		}
	}
}

// prime records the clipboard's current text as already seen.
func (m *Monitor) prime() {
	text, err := m.port.ReadText()
	if err != nil {
		return
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}
	m.mu.Lock()
	m.lastSeen = trimmed
	m.mu.Unlock()
}

// cycle performs one Idle -> Checking -> Idle pass. Failures are
// recorded and swallowed; the loop must survive any single cycle.
func (m *Monitor) cycle() {
	m.refreshEnabled()
	if !m.enabled.Load() {
		return
	}

	text, err := m.port.ReadText()
	if err != nil {
		if clipboard.IsBenign(err) {
			slog.Debug("clipboard holds no text", "error", err)
			return
		}
		slog.Warn("clipboard read failed", "error", err)
		m.report(err)
		return
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}

	m.mu.Lock()
	if m.skipNext != "" && trimmed == m.skipNext {
		// Self-write: consume the token, remember the text, skip
		// the capture.
		m.skipNext = ""
		m.lastSeen = trimmed
		m.mu.Unlock()
		return
	}
	if trimmed == m.lastSeen {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	if _, err := m.sink.Upsert(trimmed); err != nil {
		// lastSeen deliberately not advanced: the next cycle
		// retries the same text.
		slog.Warn("capture failed", "error", err)
		m.report(err)
		return
	}

	m.mu.Lock()
	m.lastSeen = trimmed
	m.mu.Unlock()
}

// refreshEnabled folds the persisted capture switch into the live
// flag. A failed read keeps the current state rather than flapping.
func (m *Monitor) refreshEnabled() {
	if m.enabledSource == nil {
		return
	}
	enabled, err := m.enabledSource()
	if err != nil {
		slog.Warn("capture switch read failed", "error", err)
		return
	}
	m.enabled.Store(enabled)
}

func (m *Monitor) report(err error) {
	if m.onError != nil {
		m.onError(err)
	}
}
