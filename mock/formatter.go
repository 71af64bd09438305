package mock

import (
	"io"

	"github.com/fwojciec/blame"
)

// Compile-time interface verification.
var (
	_ blame.Formatter   = (*Formatter)(nil)
	_ blame.Highlighter = (*Highlighter)(nil)
)

// Formatter is a mock implementation of blame.Formatter.
type Formatter struct {
	FormatFn func(w io.Writer, path string, out *blame.Outcome) error
}

func (f *Formatter) Format(w io.Writer, path string, out *blame.Outcome) error {
	return f.FormatFn(w, path, out)
}

// Highlighter is a mock implementation of blame.Highlighter.
type Highlighter struct {
	HighlightFn func(path, source string) []string
}

func (h *Highlighter) Highlight(path, source string) []string {
	return h.HighlightFn(path, source)
}
