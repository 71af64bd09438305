// Package chroma provides syntax highlighting using the chroma library.
package chroma

import (
	"path/filepath"
	"strings"

	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/fwojciec/blame"
	"github.com/muesli/termenv"
)

// Compile-time interface verification.
var _ blame.Highlighter = (*Highlighter)(nil)

// DefaultStyle is the chroma style used when none is given.
const DefaultStyle = "monokai"

// Highlighter renders source lines with ANSI colors for a terminal profile.
type Highlighter struct {
	formatter chromalib.Formatter // nil when the profile has no colors
	style     *chromalib.Style
}

// NewHighlighter creates a highlighter emitting escape sequences supported
// by profile, using the named chroma style.
func NewHighlighter(profile termenv.Profile, style string) *Highlighter {
	if style == "" {
		style = DefaultStyle
	}
	return &Highlighter{
		formatter: formatterFor(profile),
		style:     styles.Get(style),
	}
}

func formatterFor(profile termenv.Profile) chromalib.Formatter {
	switch profile {
	case termenv.TrueColor:
		return formatters.Get("terminal16m")
	case termenv.ANSI256:
		return formatters.Get("terminal256")
	case termenv.ANSI:
		return formatters.Get("terminal16")
	default:
		return nil
	}
}

// Highlight tokenizes the whole source so multi-line constructs like block
// comments keep their context, then renders it line by line. It returns nil
// if the language is unknown or the terminal has no colors.
func (h *Highlighter) Highlight(path, source string) []string {
	if h.formatter == nil || source == "" {
		return nil
	}
	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		return nil
	}
	lexer = chromalib.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return nil
	}
	lines := chromalib.SplitTokensIntoLines(iterator.Tokens())
	if len(lines) != len(blame.Lines([]byte(source))) {
		return nil
	}

	rendered := make([]string, len(lines))
	var sb strings.Builder
	for i, line := range lines {
		if n := len(line); n > 0 {
			line[n-1].Value = strings.TrimSuffix(line[n-1].Value, "\n")
		}
		sb.Reset()
		if err := h.formatter.Format(&sb, h.style, chromalib.Literator(line...)); err != nil {
			return nil
		}
		rendered[i] = sb.String()
	}
	return rendered
}
