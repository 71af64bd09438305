// Package clipboard provides clipboard access through the platform's
// clipboard utilities.
package clipboard

import (
	"errors"

	atotto "github.com/atotto/clipboard"
	"github.com/fwojciec/blame"
)

// Ensure System implements the Clipboard interface.
var _ blame.Clipboard = (*System)(nil)

// ErrUnsupported is returned when no clipboard utility is available.
var ErrUnsupported = errors.New("clipboard: no clipboard utility available")

// System implements Clipboard using pbcopy, xclip, xsel, wl-copy or the
// Windows API, whichever the platform provides.
type System struct{}

// NewSystem returns a new System clipboard.
func NewSystem() *System {
	return &System{}
}

// Copy writes content to the system clipboard.
func (s *System) Copy(content string) error {
	if atotto.Unsupported {
		return ErrUnsupported
	}
	return atotto.WriteAll(content)
}

// Read returns the current clipboard content.
func (s *System) Read() (string, error) {
	if atotto.Unsupported {
		return "", ErrUnsupported
	}
	return atotto.ReadAll()
}
