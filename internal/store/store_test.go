package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puraz/pure-paste/internal/history"
	"github.com/puraz/pure-paste/internal/testutil"
)

var t0 = time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestStore_OpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "purepaste", "history.db")

	s, err := Open(path)
	require.NoError(t, err, "first run must create the database directory")
	defer func() { require.NoError(t, s.Close()) }()

	_, err = s.Upsert(context.Background(), history.NewEntry("first", t0), 10)
	require.NoError(t, err)
}

func TestStore_OpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestStore_UpsertDeduplicatesByText(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	clk := testutil.NewClock(t0, time.Second)

	first, err := s.Upsert(ctx, history.NewEntry("a", clk.Now()), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.HitCount)

	second, err := s.Upsert(ctx, history.NewEntry("a", clk.Now()), 10)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "repeat text keeps the original id")
	assert.Equal(t, int64(2), second.HitCount)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	entries, err := s.LoadHistory(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_UpsertRejectsEmptyText(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Upsert(context.Background(), history.NewEntry("   ", t0), 10)
	assert.ErrorIs(t, err, history.ErrEmptyText)
}

func TestStore_UpsertPrunesOldestUnpinned(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	clk := testutil.NewClock(t0, time.Second)

	for _, text := range []string{"t1", "t2", "t3", "t4"} {
		_, err := s.Upsert(ctx, history.NewEntry(text, clk.Now()), 3)
		require.NoError(t, err)
	}

	entries, err := s.LoadHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.NotEqual(t, "t1", e.Text, "oldest unpinned row must be pruned")
	}
}

func TestStore_PinnedRowsExemptFromPrune(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	clk := testutil.NewClock(t0, time.Second)

	var pinnedID string
	for _, text := range []string{"t1", "t2", "t3"} {
		e, err := s.Upsert(ctx, history.NewEntry(text, clk.Now()), 3)
		require.NoError(t, err)
		if text == "t2" {
			pinnedID = e.ID
		}
	}
	_, err := s.SetPinned(ctx, pinnedID, true)
	require.NoError(t, err)

	for _, text := range []string{"t4", "t5"} {
		_, err := s.Upsert(ctx, history.NewEntry(text, clk.Now()), 3)
		require.NoError(t, err)
	}

	entries, err := s.LoadHistory(ctx, 10)
	require.NoError(t, err)

	found := false
	unpinned := 0
	for _, e := range entries {
		if e.ID == pinnedID {
			found = true
			assert.True(t, e.Pinned)
		}
		if !e.Pinned {
			unpinned++
		}
	}
	assert.True(t, found, "pinned row survives even when not among the newest")
	assert.Equal(t, 3, unpinned)
}

func TestStore_UpdateTextWithoutCollision(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	clk := testutil.NewClock(t0, time.Second)

	e, err := s.Upsert(ctx, history.NewEntry("draft", clk.Now()), 10)
	require.NoError(t, err)

	u, err := s.UpdateText(ctx, e.ID, "  draft v2  ", clk.Now())
	require.NoError(t, err)
	assert.Empty(t, u.MergedAwayID)
	assert.Equal(t, e.ID, u.Entry.ID)
	assert.Equal(t, "draft v2", u.Entry.Text, "stored text is trimmed")
}

func TestStore_UpdateTextMergesOnCollision(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	clk := testutil.NewClock(t0, time.Second)

	a, err := s.Upsert(ctx, history.NewEntry("x", clk.Now()), 10)
	require.NoError(t, err)
	b, err := s.Upsert(ctx, history.NewEntry("y", clk.Now()), 10)
	require.NoError(t, err)
	_, err = s.SetPinned(ctx, b.ID, true)
	require.NoError(t, err)

	editAt := clk.Now()
	u, err := s.UpdateText(ctx, b.ID, "x", editAt)
	require.NoError(t, err)

	assert.Equal(t, b.ID, u.MergedAwayID, "the edited entry's id is retired")
	assert.Equal(t, a.ID, u.Entry.ID, "the collided-with entry keeps its id")
	assert.Equal(t, int64(2), u.Entry.HitCount, "hit counts are summed")
	assert.True(t, u.Entry.Pinned, "pin flags are OR-ed")
	assert.Equal(t, a.CreatedAt, u.Entry.CreatedAt, "createdAt takes the older value")
	assert.Equal(t, editAt.UTC(), u.Entry.UpdatedAt.UTC())

	entries, err := s.LoadHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestStore_UpdateTextUnknownID(t *testing.T) {
	s := openTestStore(t)
	_, err := s.UpdateText(context.Background(), "nope", "text", t0)
	assert.Error(t, err)
}

func TestStore_UpdateTextRejectsEmpty(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	e, err := s.Upsert(ctx, history.NewEntry("keep", t0), 10)
	require.NoError(t, err)

	_, err = s.UpdateText(ctx, e.ID, "   \n ", t0)
	assert.ErrorIs(t, err, history.ErrEmptyText)

	entries, err := s.LoadHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "keep", entries[0].Text)
}

func TestStore_SetPinnedKeepsUpdatedAt(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	e, err := s.Upsert(ctx, history.NewEntry("a", t0), 10)
	require.NoError(t, err)

	pinned, err := s.SetPinned(ctx, e.ID, true)
	require.NoError(t, err)
	assert.True(t, pinned.Pinned)
	assert.Equal(t, e.UpdatedAt.UTC(), pinned.UpdatedAt.UTC())
}

func TestStore_DeleteAndClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	clk := testutil.NewClock(t0, time.Second)

	a, err := s.Upsert(ctx, history.NewEntry("a", clk.Now()), 10)
	require.NoError(t, err)
	_, err = s.Upsert(ctx, history.NewEntry("b", clk.Now()), 10)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, a.ID))
	require.NoError(t, s.Delete(ctx, a.ID), "deleting an unknown id is not an error")

	entries, err := s.LoadHistory(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, s.Clear(ctx))
	entries, err = s.LoadHistory(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_LoadHistoryOrderAndClamp(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	clk := testutil.NewClock(t0, time.Second)

	old, err := s.Upsert(ctx, history.NewEntry("old pinned", clk.Now()), 10)
	require.NoError(t, err)
	_, err = s.SetPinned(ctx, old.ID, true)
	require.NoError(t, err)
	_, err = s.Upsert(ctx, history.NewEntry("newer unpinned", clk.Now()), 10)
	require.NoError(t, err)

	entries, err := s.LoadHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "old pinned", entries[0].Text, "pinned rows come first")

	entries, err = s.LoadHistory(ctx, -5)
	require.NoError(t, err)
	assert.Empty(t, entries, "negative limits clamp to zero")
}

func TestStore_BroadcastReachesAllSubscribers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var got []history.Update
	unsub := s.Subscribe(func(u history.Update) { got = append(got, u) })

	var gotOther int
	unsubOther := s.Subscribe(func(history.Update) { gotOther++ })
	defer unsubOther()

	e, err := s.Upsert(ctx, history.NewEntry("announce", t0), 10)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, e.ID, got[0].Entry.ID)
	assert.Equal(t, 1, gotOther, "every subscriber hears every persisted change")

	unsub()
	_, err = s.Upsert(ctx, history.NewEntry("after unsubscribe", t0.Add(time.Minute)), 10)
	require.NoError(t, err)
	assert.Len(t, got, 1, "unsubscribed listener must stay silent")
	assert.Equal(t, 2, gotOther)
}

func TestStore_BroadcastOnMergeCarriesRetiredID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	clk := testutil.NewClock(t0, time.Second)

	a, err := s.Upsert(ctx, history.NewEntry("x", clk.Now()), 10)
	require.NoError(t, err)
	b, err := s.Upsert(ctx, history.NewEntry("y", clk.Now()), 10)
	require.NoError(t, err)

	var got []history.Update
	defer s.Subscribe(func(u history.Update) { got = append(got, u) })()

	_, err = s.UpdateText(ctx, b.ID, "x", clk.Now())
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].Entry.ID)
	assert.Equal(t, b.ID, got[0].MergedAwayID)
}

func TestStore_Settings(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	enabled, err := s.MonitoringEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled, "monitoring defaults to enabled")

	require.NoError(t, s.SetMonitoringEnabled(ctx, false))
	enabled, err = s.MonitoringEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	shortcut, err := s.OpenWindowShortcut(ctx)
	require.NoError(t, err)
	assert.Empty(t, shortcut)

	require.NoError(t, s.SetOpenWindowShortcut(ctx, " Ctrl+Shift+V "))
	shortcut, err = s.OpenWindowShortcut(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ctrl+Shift+V", shortcut)

	require.NoError(t, s.SetOpenWindowShortcut(ctx, ""))
	shortcut, err = s.OpenWindowShortcut(ctx)
	require.NoError(t, err)
	assert.Empty(t, shortcut, "empty value deletes the setting")
}
