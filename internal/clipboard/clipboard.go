// Package clipboard is the port to the system clipboard.
//
// Reads can fail benignly: the clipboard may hold no text at all, or
// content in a format the engine does not handle (images, files). Those
// conditions are classified here so the monitor can suppress them
// instead of surfacing them as errors.
package clipboard

import (
	"errors"
	"strings"
)

// ErrNoTextContent reports that the clipboard holds nothing this engine
// can use: no content, or a non-text format. It is a benign condition,
// never a failure.
var ErrNoTextContent = errors.New("clipboard has no text content")

// Port is read/write access to the system clipboard.
type Port interface {
	// ReadText returns the current clipboard text. Returns an error
	// satisfying IsBenign when no text content is available.
	ReadText() (string, error)

	// WriteText replaces the clipboard content with text.
	WriteText(text string) error
}

// benignFragments are error message markers from the platform clipboard
// tools (xclip, xsel, pbpaste, powershell) that mean "no text here"
// rather than a real failure.
var benignFragments = []string{
	"target string not available",
	"there is no owner",
	"clipboard is empty",
	"no text data",
	"unsupported format",
}

// IsBenign reports whether err is a recognized "no text content"
// condition that should be suppressed entirely.
func IsBenign(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNoTextContent) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range benignFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
