package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Setting keys. Kept in one place so every surface agrees on names.
const (
	monitoringEnabledKey  = "monitoring_enabled"
	openWindowShortcutKey = "open_window_shortcut"
)

// Setting returns the value stored under key, with ok=false when the
// key is absent.
func (s *Store) Setting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM app_settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read setting %q: %w", key, err)
	}
	return value, true, nil
}

// SetSetting stores value under key; an empty value deletes the key.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	if value == "" {
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM app_settings WHERE key = ?`, key); err != nil {
			return fmt.Errorf("delete setting %q: %w", key, err)
		}
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("write setting %q: %w", key, err)
	}
	return nil
}

// MonitoringEnabled reports the persisted capture switch. Defaults to
// enabled when never set.
func (s *Store) MonitoringEnabled(ctx context.Context) (bool, error) {
	value, ok, err := s.Setting(ctx, monitoringEnabledKey)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return value == "true", nil
}

// SetMonitoringEnabled persists the capture switch.
func (s *Store) SetMonitoringEnabled(ctx context.Context, enabled bool) error {
	value := "false"
	if enabled {
		value = "true"
	}
	return s.SetSetting(ctx, monitoringEnabledKey, value)
}

// OpenWindowShortcut returns the stored open-window shortcut, or ""
// when unset. Registration of the OS-level hook is outside this
// store's remit; only the setting is persisted.
func (s *Store) OpenWindowShortcut(ctx context.Context) (string, error) {
	value, _, err := s.Setting(ctx, openWindowShortcutKey)
	return value, err
}

// SetOpenWindowShortcut stores the shortcut; whitespace-only values
// clear it.
func (s *Store) SetOpenWindowShortcut(ctx context.Context, shortcut string) error {
	return s.SetSetting(ctx, openWindowShortcutKey, strings.TrimSpace(shortcut))
}
