package engine

import (
	"sync"
	"time"
)

// DefaultCommitDelay is the trailing debounce applied to in-place text
// edits before they are committed to the gateway.
const DefaultCommitDelay = 500 * time.Millisecond

// pendingCommit is the single outstanding edit not yet confirmed by the
// gateway. Later edits supersede it in place; nothing is ever queued
// behind it.
type pendingCommit struct {
	id   string
	text string
}

// committer debounces in-place text edits. Each keystroke replaces the
// pending commit and restarts the one timer; at most one commit task is
// ever armed. Flush runs the pending commit immediately, guaranteeing
// no edit is lost on blur, selection change, or teardown.
type committer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending *pendingCommit

	// commit sends the edit to the gateway. Called without the lock
	// held, from the timer goroutine or the Flush caller.
	commit func(id, text string)
}

func newCommitter(delay time.Duration, commit func(id, text string)) *committer {
	if delay <= 0 {
		delay = DefaultCommitDelay
	}
	return &committer{delay: delay, commit: commit}
}

// Schedule replaces the pending commit and restarts the debounce timer.
func (c *committer) Schedule(id, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = &pendingCommit{id: id, text: text}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, c.fire)
}

// fire is the timer callback.
func (c *committer) fire() {
	c.mu.Lock()
	p := c.pending
	c.pending = nil
	c.timer = nil
	c.mu.Unlock()
	if p != nil {
		c.commit(p.id, p.text)
	}
}

// Flush cancels the timer and runs any pending commit synchronously.
func (c *committer) Flush() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	p := c.pending
	c.pending = nil
	c.mu.Unlock()
	if p != nil {
		c.commit(p.id, p.text)
	}
}

// Cancel drops any pending commit without running it.
func (c *committer) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = nil
}

// Drop cancels the pending commit if it targets id. Used when the entry
// is deleted, so a stale timer cannot resurrect it.
func (c *committer) Drop(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil || c.pending.id != id {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = nil
}

// Retarget repoints the pending commit from a retired id to the merge
// survivor, so an in-flight next keystroke never addresses an id the
// store no longer knows.
func (c *committer) Retarget(retired, canonical string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil && c.pending.id == retired {
		c.pending.id = canonical
	}
}

// Pending reports the outstanding commit, if any.
func (c *committer) Pending() (id, text string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return "", "", false
	}
	return c.pending.id, c.pending.text, true
}
