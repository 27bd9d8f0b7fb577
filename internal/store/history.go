package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/puraz/pure-paste/internal/history"
)

// MaxLoadLimit caps LoadHistory requests.
const MaxLoadLimit = 500

const entryColumns = "id, text, created_at, updated_at, pinned, count"

// LoadHistory returns persisted entries, pinned first then newest
// first, at most limit (clamped to [0, MaxLoadLimit]).
func (s *Store) LoadHistory(ctx context.Context, limit int) ([]history.Entry, error) {
	if limit < 0 {
		limit = 0
	}
	if limit > MaxLoadLimit {
		limit = MaxLoadLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM clipboard_items
		ORDER BY pinned DESC, updated_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []history.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// Upsert records a capture. Repeat text folds into the existing row:
// the id, createdAt and pin flag survive, the hit count increments and
// updatedAt refreshes. Novel text inserts a fresh unpinned row. Either
// way the history is pruned to capacity and the canonical row is
// returned and broadcast.
func (s *Store) Upsert(ctx context.Context, e history.Entry, capacity int) (history.Entry, error) {
	trimmed := strings.TrimSpace(e.Text)
	if trimmed == "" {
		return history.Entry{}, history.ErrEmptyText
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return history.Entry{}, fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	var targetID string
	var count int64
	err = tx.QueryRowContext(ctx,
		`SELECT id, count FROM clipboard_items WHERE text = ?`, trimmed,
	).Scan(&targetID, &count)
	switch {
	case err == nil:
		_, err = tx.ExecContext(ctx, `
			UPDATE clipboard_items SET updated_at = ?, count = ? WHERE id = ?
		`, formatTime(e.UpdatedAt), count+1, targetID)
		if err != nil {
			return history.Entry{}, fmt.Errorf("bump entry: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		targetID = e.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO clipboard_items (id, text, created_at, updated_at, pinned, count)
			VALUES (?, ?, ?, ?, 0, 1)
		`, e.ID, trimmed, formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
		if err != nil {
			return history.Entry{}, fmt.Errorf("insert entry: %w", err)
		}
	default:
		return history.Entry{}, fmt.Errorf("lookup entry by text: %w", err)
	}

	if err := prune(ctx, tx, capacity); err != nil {
		return history.Entry{}, err
	}

	canonical, err := selectEntry(ctx, tx, targetID)
	if err != nil {
		return history.Entry{}, err
	}
	if err := tx.Commit(); err != nil {
		return history.Entry{}, fmt.Errorf("commit upsert: %w", err)
	}

	s.publish(history.Update{Entry: canonical})
	return canonical, nil
}

// UpdateText rewrites an entry's text. If the new text already belongs
// to a different row, the two merge: the collided-with row keeps its
// id and absorbs the edited row's hit count and pin flag, createdAt
// takes the older value, and the edited row is deleted and reported as
// MergedAwayID.
func (s *Store) UpdateText(ctx context.Context, id, text string, ts time.Time) (history.Update, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return history.Update{}, history.ErrEmptyText
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return history.Update{}, fmt.Errorf("begin text update: %w", err)
	}
	defer tx.Rollback()

	source, err := selectEntry(ctx, tx, id)
	if err != nil {
		return history.Update{}, err
	}

	target, err := scanEntry(tx.QueryRowContext(ctx, `
		SELECT `+entryColumns+` FROM clipboard_items WHERE text = ? AND id <> ?
	`, trimmed, id))
	switch {
	case err == nil:
		// Merge-on-conflict: fold the edited row into the owner of
		// the text.
		mergedCreated := target.CreatedAt
		if source.CreatedAt.Before(mergedCreated) {
			mergedCreated = source.CreatedAt
		}
		mergedPinned := 0
		if source.Pinned || target.Pinned {
			mergedPinned = 1
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE clipboard_items
			SET count = ?, pinned = ?, created_at = ?, updated_at = ?
			WHERE id = ?
		`, source.HitCount+target.HitCount, mergedPinned,
			formatTime(mergedCreated), formatTime(ts), target.ID)
		if err != nil {
			return history.Update{}, fmt.Errorf("merge entries: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM clipboard_items WHERE id = ?`, id); err != nil {
			return history.Update{}, fmt.Errorf("retire merged entry: %w", err)
		}

		canonical, err := selectEntry(ctx, tx, target.ID)
		if err != nil {
			return history.Update{}, err
		}
		if err := tx.Commit(); err != nil {
			return history.Update{}, fmt.Errorf("commit merge: %w", err)
		}

		u := history.Update{Entry: canonical, MergedAwayID: id}
		s.publish(u)
		return u, nil

	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `
			UPDATE clipboard_items SET text = ?, updated_at = ? WHERE id = ?
		`, trimmed, formatTime(ts), id)
		if err != nil {
			return history.Update{}, fmt.Errorf("update text: %w", err)
		}

		canonical, err := selectEntry(ctx, tx, id)
		if err != nil {
			return history.Update{}, err
		}
		if err := tx.Commit(); err != nil {
			return history.Update{}, fmt.Errorf("commit text update: %w", err)
		}

		u := history.Update{Entry: canonical}
		s.publish(u)
		return u, nil

	default:
		return history.Update{}, fmt.Errorf("lookup colliding entry: %w", err)
	}
}

// Entry fetches one entry by id.
func (s *Store) Entry(ctx context.Context, id string) (history.Entry, error) {
	return selectEntry(ctx, s.db, id)
}

// SetPinned flips the pin flag without touching updatedAt.
func (s *Store) SetPinned(ctx context.Context, id string, pinned bool) (history.Entry, error) {
	flag := 0
	if pinned {
		flag = 1
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE clipboard_items SET pinned = ? WHERE id = ?`, flag, id); err != nil {
		return history.Entry{}, fmt.Errorf("set pinned: %w", err)
	}

	canonical, err := selectEntry(ctx, s.db, id)
	if err != nil {
		return history.Entry{}, err
	}
	s.publish(history.Update{Entry: canonical})
	return canonical, nil
}

// Delete removes one entry. Deleting an unknown id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM clipboard_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// Clear removes the entire history.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM clipboard_items`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// prune deletes the oldest unpinned rows beyond capacity. Runs inside
// the upsert transaction so capacity enforcement is atomic with the
// write that may exceed it.
func prune(ctx context.Context, tx *sql.Tx, capacity int) error {
	if capacity <= 0 {
		return nil
	}
	var unpinned int64
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clipboard_items WHERE pinned = 0`).Scan(&unpinned)
	if err != nil {
		return fmt.Errorf("count entries: %w", err)
	}
	overflow := unpinned - int64(capacity)
	if overflow <= 0 {
		return nil
	}
	_, err = tx.ExecContext(ctx, `
		DELETE FROM clipboard_items
		WHERE id IN (
			SELECT id FROM clipboard_items
			WHERE pinned = 0
			ORDER BY updated_at ASC
			LIMIT ?
		)
	`, overflow)
	if err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func selectEntry(ctx context.Context, q querier, id string) (history.Entry, error) {
	e, err := scanEntry(q.QueryRowContext(ctx, `
		SELECT `+entryColumns+` FROM clipboard_items WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return history.Entry{}, fmt.Errorf("entry %s not found", id)
	}
	if err != nil {
		return history.Entry{}, err
	}
	return e, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (history.Entry, error) {
	var (
		e       history.Entry
		created string
		updated string
		pinned  int64
	)
	if err := s.Scan(&e.ID, &e.Text, &created, &updated, &pinned, &e.HitCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return history.Entry{}, err
		}
		return history.Entry{}, fmt.Errorf("scan entry: %w", err)
	}

	var err error
	if e.CreatedAt, err = parseTime(created); err != nil {
		return history.Entry{}, err
	}
	if e.UpdatedAt, err = parseTime(updated); err != nil {
		return history.Entry{}, err
	}
	e.Pinned = pinned != 0
	return e, nil
}
