package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puraz/pure-paste/internal/history"
	"github.com/puraz/pure-paste/internal/store"
)

// writeTestConfig drops a minimal config pointing at a temp database
// and returns the config path.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf("database_path: %q\nmax_items: 10\n",
		filepath.Join(dir, "history.db"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))
	return cfgPath
}

// seedEntries opens the database behind cfgPath and records the given
// texts, oldest first.
func seedEntries(t *testing.T, cfgPath string, texts ...string) []history.Entry {
	t.Helper()
	dir := filepath.Dir(cfgPath)
	st, err := store.Open(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	defer func() { require.NoError(t, st.Close()) }()

	base := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	entries := make([]history.Entry, 0, len(texts))
	for i, text := range texts {
		e, err := st.Upsert(context.Background(),
			history.NewEntry(text, base.Add(time.Duration(i)*time.Second)), 10)
		require.NoError(t, err)
		entries = append(entries, e)
	}
	return entries
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func decodeEntries(t *testing.T, out string) []history.Entry {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   []history.Entry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestHistoryCommand_ListsNewestFirst(t *testing.T) {
	cfgPath := writeTestConfig(t)
	seedEntries(t, cfgPath, "older", "newer")

	out, err := runCLI(t, "--config", cfgPath, "--format", "json", "history")
	require.NoError(t, err)

	entries := decodeEntries(t, out)
	require.Len(t, entries, 2)
	assert.Equal(t, "newer", entries[0].Text)
	assert.Equal(t, "older", entries[1].Text)
}

func TestHistoryCommand_QueryFilters(t *testing.T) {
	cfgPath := writeTestConfig(t)
	seedEntries(t, cfgPath, "grocery list", "meeting notes")

	out, err := runCLI(t, "--config", cfgPath, "--format", "json",
		"history", "--query", "GROCERY")
	require.NoError(t, err)

	entries := decodeEntries(t, out)
	require.Len(t, entries, 1)
	assert.Equal(t, "grocery list", entries[0].Text)
}

func TestHistoryCommand_LimitCapsListing(t *testing.T) {
	cfgPath := writeTestConfig(t)
	seedEntries(t, cfgPath, "a", "b", "c")

	out, err := runCLI(t, "--config", cfgPath, "--format", "json",
		"history", "--limit", "2")
	require.NoError(t, err)
	assert.Len(t, decodeEntries(t, out), 2)
}

func TestPinCommand_PinAndRemove(t *testing.T) {
	cfgPath := writeTestConfig(t)
	seeded := seedEntries(t, cfgPath, "keep me")

	_, err := runCLI(t, "--config", cfgPath, "pin", seeded[0].ID)
	require.NoError(t, err)

	out, err := runCLI(t, "--config", cfgPath, "--format", "json", "history")
	require.NoError(t, err)
	entries := decodeEntries(t, out)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Pinned)

	_, err = runCLI(t, "--config", cfgPath, "pin", "--remove", seeded[0].ID)
	require.NoError(t, err)

	out, err = runCLI(t, "--config", cfgPath, "--format", "json", "history")
	require.NoError(t, err)
	assert.False(t, decodeEntries(t, out)[0].Pinned)
}

func TestPinCommand_UnknownIDFails(t *testing.T) {
	cfgPath := writeTestConfig(t)
	seedEntries(t, cfgPath, "something")

	_, err := runCLI(t, "--config", cfgPath, "pin", "no-such-id")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestDeleteCommand_RemovesEntry(t *testing.T) {
	cfgPath := writeTestConfig(t)
	seeded := seedEntries(t, cfgPath, "doomed", "survivor")

	_, err := runCLI(t, "--config", cfgPath, "delete", seeded[0].ID)
	require.NoError(t, err)

	out, err := runCLI(t, "--config", cfgPath, "--format", "json", "history")
	require.NoError(t, err)
	entries := decodeEntries(t, out)
	require.Len(t, entries, 1)
	assert.Equal(t, "survivor", entries[0].Text)
}

func TestClearCommand_EmptiesHistory(t *testing.T) {
	cfgPath := writeTestConfig(t)
	seedEntries(t, cfgPath, "a", "b")

	out, err := runCLI(t, "--config", cfgPath, "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "history cleared")

	out, err = runCLI(t, "--config", cfgPath, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "history is empty")
}

func TestCopyCommand_UnknownIDFails(t *testing.T) {
	cfgPath := writeTestConfig(t)
	seedEntries(t, cfgPath, "something")

	_, err := runCLI(t, "--config", cfgPath, "copy", "no-such-id")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestMonitorCommand_ToggleAndStatus(t *testing.T) {
	cfgPath := writeTestConfig(t)
	seedEntries(t, cfgPath, "prime the database")

	out, err := runCLI(t, "--config", cfgPath, "monitor")
	require.NoError(t, err)
	assert.Contains(t, out, "monitoring on")

	out, err = runCLI(t, "--config", cfgPath, "monitor", "off")
	require.NoError(t, err)
	assert.Contains(t, out, "monitoring off")

	out, err = runCLI(t, "--config", cfgPath, "monitor", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "monitoring off")

	out, err = runCLI(t, "--config", cfgPath, "monitor", "on")
	require.NoError(t, err)
	assert.Contains(t, out, "monitoring on")

	_, err = runCLI(t, "--config", cfgPath, "monitor", "bogus")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
