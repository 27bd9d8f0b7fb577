package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// SystemPort reads and writes the OS clipboard via atotto/clipboard
// (pbpaste/pbcopy, xclip/xsel, or the Windows API depending on
// platform).
type SystemPort struct{}

// NewSystemPort returns a port backed by the system clipboard.
func NewSystemPort() *SystemPort {
	return &SystemPort{}
}

// ReadText returns the current clipboard text. Platform-tool failures
// that mean "no text content" are normalized to ErrNoTextContent.
func (p *SystemPort) ReadText() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		if IsBenign(err) {
			return "", fmt.Errorf("%w: %v", ErrNoTextContent, err)
		}
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return text, nil
}

// WriteText replaces the clipboard content.
func (p *SystemPort) WriteText(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}
