package history

import "errors"

// ErrEmptyText rejects empty or whitespace-only text. Callers treat it
// as a silent no-op, never a surfaced failure.
var ErrEmptyText = errors.New("history: empty text")
