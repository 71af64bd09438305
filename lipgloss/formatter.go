package lipgloss

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/blame"
)

// Compile-time interface verification.
var _ blame.Formatter = (*Formatter)(nil)

// HashWidth is the number of hex characters shown per commit.
const HashWidth = 8

// Formatter renders a human readable blame with one gutter per line:
//
//	<hash> [<path>] <line>) <content>
//
// The path column is only shown when some lines come from another path.
type Formatter struct {
	renderer    *lipgloss.Renderer
	theme       blame.Theme
	highlighter blame.Highlighter // optional
}

// NewFormatter creates a formatter styling output for renderer. The
// highlighter may be nil.
func NewFormatter(renderer *lipgloss.Renderer, theme blame.Theme, highlighter blame.Highlighter) *Formatter {
	return &Formatter{renderer: renderer, theme: theme, highlighter: highlighter}
}

// Format writes every line of out with its attribution.
func (f *Formatter) Format(w io.Writer, path string, out *blame.Outcome) error {
	lines := out.Lines()
	var highlighted []string
	if f.highlighter != nil {
		highlighted = f.highlighter.Highlight(path, string(out.Blob))
		if len(highlighted) != len(lines) {
			highlighted = nil
		}
	}

	s := f.theme.Styles()
	lineNo := f.style(s.LineNumber)
	sep := f.style(s.Separator)
	pathStyle := f.style(s.Path)
	unblamable := f.style(s.Unblamable)
	colors := newCommitColors(f.theme.CommitColors())

	pathWidth := 0
	for _, e := range out.Entries {
		if e.OriginalPath != "" {
			pathWidth = max(pathWidth, len(path), len(e.OriginalPath))
		}
	}
	numWidth := len(strconv.Itoa(len(lines)))

	bw := bufio.NewWriter(w)
	for _, e := range out.Entries {
		var hash string
		if e.Unblamable {
			hash = unblamable.Render(strings.Repeat("-", HashWidth))
		} else {
			hash = f.renderer.NewStyle().Foreground(lipgloss.Color(colors.pick(e.Commit))).Render(e.Commit.Short(HashWidth))
		}
		r := e.RangeInBlamed()
		for i := r.Start; i < r.End; i++ {
			bw.WriteString(hash)
			bw.WriteString(" ")
			if pathWidth > 0 {
				bw.WriteString(pathStyle.Render(fmt.Sprintf("%-*s", pathWidth, entryPath(path, e))))
				bw.WriteString(" ")
			}
			bw.WriteString(lineNo.Render(fmt.Sprintf("%*d", numWidth, i+1)))
			bw.WriteString(sep.Render(")"))
			bw.WriteString(" ")
			if highlighted != nil {
				bw.WriteString(highlighted[i])
			} else {
				bw.WriteString(strings.TrimSuffix(lines[i], "\n"))
			}
			bw.WriteString("\n")
		}
	}
	return bw.Flush()
}

func (f *Formatter) style(c blame.ColorPair) lipgloss.Style {
	st := f.renderer.NewStyle()
	if c.Foreground != "" {
		st = st.Foreground(lipgloss.Color(c.Foreground))
	}
	if c.Background != "" {
		st = st.Background(lipgloss.Color(c.Background))
	}
	return st
}

func entryPath(path string, e blame.Entry) string {
	if e.OriginalPath != "" {
		return e.OriginalPath
	}
	return path
}

// commitColors assigns colors to commits in order of first appearance.
type commitColors struct {
	palette  []string
	assigned map[blame.ObjectID]string
}

func newCommitColors(palette []string) *commitColors {
	return &commitColors{palette: palette, assigned: make(map[blame.ObjectID]string)}
}

func (c *commitColors) pick(id blame.ObjectID) string {
	if color, ok := c.assigned[id]; ok {
		return color
	}
	if len(c.palette) == 0 {
		return ""
	}
	color := c.palette[len(c.assigned)%len(c.palette)]
	c.assigned[id] = color
	return color
}
