package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puraz/pure-paste/internal/testutil"
)

var t0 = time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

func testClock() *testutil.Clock {
	return testutil.NewClock(t0, time.Second)
}

func TestCache_TouchIncrementsHitAndKeepsID(t *testing.T) {
	clk := testClock()
	c := NewCache(10)

	first := NewEntry("a", clk.Now())
	c.Insert(first)

	touched, ok := c.Touch("a", clk.Now())
	require.True(t, ok)
	assert.Equal(t, first.ID, touched.ID, "dedup must keep the original id")
	assert.Equal(t, int64(2), touched.HitCount)
	assert.True(t, touched.UpdatedAt.After(first.UpdatedAt), "updatedAt must refresh on a hit")
	assert.Equal(t, 1, c.Len(), "repeat text must not create a second entry")
}

func TestCache_TouchUnknownText(t *testing.T) {
	c := NewCache(10)
	_, ok := c.Touch("missing", t0)
	assert.False(t, ok)
}

func TestCache_CapacityEvictsOldestUnpinned(t *testing.T) {
	clk := testClock()
	c := NewCache(3)

	for _, text := range []string{"t1", "t2", "t3", "t4"} {
		c.Insert(NewEntry(text, clk.Now()))
	}

	require.Equal(t, 3, c.Len())
	_, present := c.FindByText("t1")
	assert.False(t, present, "t1 is the oldest unpinned entry and must be evicted")
	for _, text := range []string{"t2", "t3", "t4"} {
		_, present := c.FindByText(text)
		assert.True(t, present, text)
	}
}

func TestCache_PinnedEntriesSurviveEviction(t *testing.T) {
	clk := testClock()
	c := NewCache(3)

	for _, text := range []string{"t1", "t2", "t3"} {
		c.Insert(NewEntry(text, clk.Now()))
	}
	pinned, ok := c.FindByText("t2")
	require.True(t, ok)
	_, ok = c.SetPinned(pinned.ID, true)
	require.True(t, ok)

	c.Insert(NewEntry("t4", clk.Now()))
	c.Insert(NewEntry("t5", clk.Now()))

	_, present := c.FindByText("t2")
	assert.True(t, present, "pinned entry must never be evicted")

	// t2 is pinned so only unpinned entries count against capacity.
	unpinned := 0
	for _, e := range c.Entries() {
		if !e.Pinned {
			unpinned++
		}
	}
	assert.Equal(t, 3, unpinned)
}

func TestCache_SetPinnedKeepsUpdatedAt(t *testing.T) {
	clk := testClock()
	c := NewCache(10)
	e := NewEntry("a", clk.Now())
	c.Insert(e)

	got, ok := c.SetPinned(e.ID, true)
	require.True(t, ok)
	assert.True(t, got.Pinned)
	assert.Equal(t, e.UpdatedAt, got.UpdatedAt, "pin flip must not refresh recency")
}

func TestCache_ReconcileIdempotent(t *testing.T) {
	clk := testClock()
	c := NewCache(5)

	loser := NewEntry("x", clk.Now())
	c.Insert(loser)
	c.Insert(NewEntry("y", clk.Now()))

	canonical := NewEntry("x", clk.Now())
	canonical.HitCount = 7

	c.Reconcile(canonical, loser.ID)
	once := c.Entries()

	c.Reconcile(canonical, loser.ID)
	twice := c.Entries()

	assert.Equal(t, once, twice, "applying the same update twice must be a no-op")
}

func TestCache_ReconcileRemovesMergedAwayAndDuplicateText(t *testing.T) {
	clk := testClock()
	c := NewCache(5)

	a := NewEntry("x", clk.Now())
	b := NewEntry("y", clk.Now())
	c.Insert(a)
	c.Insert(b)

	// b was edited to "x"; the store kept a's id and retired b.
	survivor := a
	survivor.HitCount = a.HitCount + b.HitCount
	survivor.UpdatedAt = clk.Now()
	c.Reconcile(survivor, b.ID)

	require.Equal(t, 1, c.Len())
	got, ok := c.FindByText("x")
	require.True(t, ok)
	assert.Equal(t, a.ID, got.ID)
	_, stale := c.FindByID(b.ID)
	assert.False(t, stale, "retired id must be gone")
}

func TestCache_ReconcileDropsOptimisticDuplicate(t *testing.T) {
	clk := testClock()
	c := NewCache(5)

	// Optimistic phase created "x" under a local id while the store
	// already held "x" under another id.
	optimistic := NewEntry("x", clk.Now())
	c.Insert(optimistic)

	canonical := NewEntry("x", clk.Now())
	c.Reconcile(canonical, "")

	require.Equal(t, 1, c.Len())
	got, _ := c.FindByText("x")
	assert.Equal(t, canonical.ID, got.ID, "canonical id wins over the optimistic duplicate")
}

func TestCache_ReconcileTrims(t *testing.T) {
	clk := testClock()
	c := NewCache(2)

	c.Insert(NewEntry("a", clk.Now()))
	c.Insert(NewEntry("b", clk.Now()))
	c.Reconcile(NewEntry("c", clk.Now()), "")

	assert.Equal(t, 2, c.Len())
	_, present := c.FindByText("a")
	assert.False(t, present)
}

func TestCache_RemoveAndClear(t *testing.T) {
	clk := testClock()
	c := NewCache(5)
	e := NewEntry("a", clk.Now())
	c.Insert(e)

	assert.True(t, c.Remove(e.ID))
	assert.False(t, c.Remove(e.ID), "second remove reports absence")

	c.Insert(NewEntry("b", clk.Now()))
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCache_EntriesReturnsCopy(t *testing.T) {
	clk := testClock()
	c := NewCache(5)
	c.Insert(NewEntry("a", clk.Now()))

	snap := c.Entries()
	snap[0].Text = "mutated"

	got, _ := c.FindByText("a")
	assert.Equal(t, "a", got.Text, "snapshot mutation must not reach the cache")
}

func TestCache_ReplaceTrims(t *testing.T) {
	clk := testClock()
	c := NewCache(2)

	entries := []Entry{
		NewEntry("a", clk.Now()),
		NewEntry("b", clk.Now()),
		NewEntry("c", clk.Now()),
	}
	c.Replace(entries)

	assert.Equal(t, 2, c.Len())
}
