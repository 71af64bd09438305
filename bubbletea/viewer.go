// Package bubbletea provides an interactive blame viewer using the Bubble Tea framework.
package bubbletea

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/blame"
)

// Compile-time interface verification.
var _ blame.Viewer = (*Viewer)(nil)

// Model is the Bubble Tea model for browsing blamed files.
type Model struct {
	docs      []blame.Document
	formatter blame.Formatter
	theme     blame.Theme
	renderer  *lipgloss.Renderer
	clipboard blame.Clipboard // optional

	// Pre-computed on construction
	content     string
	fileStarts  []int         // content line of each file header
	entryStarts []int         // content line of each entry's first line
	entries     []blame.Entry // parallel to entryStarts

	// UI state
	viewport   viewport.Model
	keymap     KeyMap
	ready      bool
	pendingKey string
	message    string // shown in the status bar until the next key
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithRenderer sets a custom lipgloss renderer for the model.
func WithRenderer(r *lipgloss.Renderer) ModelOption {
	return func(m *Model) {
		m.renderer = r
	}
}

// WithTheme sets the theme used for file headers and the status bar.
func WithTheme(t blame.Theme) ModelOption {
	return func(m *Model) {
		m.theme = t
	}
}

// WithClipboard enables copying the commit id of the current entry.
func WithClipboard(c blame.Clipboard) ModelOption {
	return func(m *Model) {
		m.clipboard = c
	}
}

// NewModel creates a Model showing docs. The formatter must write exactly
// one line per blamed line, in entry order.
func NewModel(docs []blame.Document, formatter blame.Formatter, opts ...ModelOption) (Model, error) {
	m := Model{
		docs:      docs,
		formatter: formatter,
		keymap:    DefaultKeyMap(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if err := m.render(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// render formats every document below a header line holding its path.
func (m *Model) render() error {
	header := m.newStyle().Bold(true)
	if m.theme != nil {
		if fg := m.theme.Styles().Path.Foreground; fg != "" {
			header = header.Foreground(lipgloss.Color(fg))
		}
	}

	var (
		sb   strings.Builder
		line int
	)
	for _, doc := range m.docs {
		m.fileStarts = append(m.fileStarts, line)
		sb.WriteString(header.Render(doc.Path))
		sb.WriteString("\n")
		line++

		var buf bytes.Buffer
		if err := m.formatter.Format(&buf, doc.Path, expandOutcome(doc.Outcome)); err != nil {
			return fmt.Errorf("%s: %w", doc.Path, err)
		}
		sb.Write(buf.Bytes())
		for _, e := range doc.Outcome.Entries {
			m.entryStarts = append(m.entryStarts, line)
			m.entries = append(m.entries, e)
			line += e.Len
		}
	}
	m.content = strings.TrimSuffix(sb.String(), "\n")
	return nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// gg goes to top
		if m.pendingKey == "g" && key.Matches(msg, m.keymap.GotoTop) {
			m.viewport.GotoTop()
			m.pendingKey = ""
			return m, nil
		}
		if key.Matches(msg, m.keymap.GotoTop) {
			m.pendingKey = "g"
			return m, nil
		}
		m.pendingKey = ""
		m.message = ""

		switch {
		case key.Matches(msg, m.keymap.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keymap.GotoBottom):
			m.viewport.GotoBottom()
			return m, nil
		case key.Matches(msg, m.keymap.HalfPageUp):
			m.viewport.HalfPageUp()
			return m, nil
		case key.Matches(msg, m.keymap.HalfPageDown):
			m.viewport.HalfPageDown()
			return m, nil
		case key.Matches(msg, m.keymap.Up):
			m.viewport.ScrollUp(1)
			return m, nil
		case key.Matches(msg, m.keymap.Down):
			m.viewport.ScrollDown(1)
			return m, nil
		case key.Matches(msg, m.keymap.NextEntry):
			m.gotoNext(m.entryStarts)
			return m, nil
		case key.Matches(msg, m.keymap.PrevEntry):
			m.gotoPrev(m.entryStarts)
			return m, nil
		case key.Matches(msg, m.keymap.NextFile):
			m.gotoNext(m.fileStarts)
			return m, nil
		case key.Matches(msg, m.keymap.PrevFile):
			m.gotoPrev(m.fileStarts)
			return m, nil
		case key.Matches(msg, m.keymap.CopyCommit):
			m.copyCommit()
			return m, nil
		}
	case tea.WindowSizeMsg:
		statusBarHeight := 1
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-statusBarHeight)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - statusBarHeight
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), m.statusBarView())
}

// gotoNext scrolls to the first position below the top line.
func (m *Model) gotoNext(positions []int) {
	for _, pos := range positions {
		if pos > m.viewport.YOffset {
			m.viewport.SetYOffset(pos)
			return
		}
	}
}

// gotoPrev scrolls to the last position above the top line.
func (m *Model) gotoPrev(positions []int) {
	for i := len(positions) - 1; i >= 0; i-- {
		if positions[i] < m.viewport.YOffset {
			m.viewport.SetYOffset(positions[i])
			return
		}
	}
}

// copyCommit copies the full id of the entry at the top line.
func (m *Model) copyCommit() {
	if m.clipboard == nil {
		return
	}
	idx, _ := m.currentPosition(m.entryStarts)
	if idx == 0 {
		return
	}
	e := m.entries[idx-1]
	if e.Unblamable {
		m.message = "nothing to copy"
		return
	}
	if err := m.clipboard.Copy(e.Commit.String()); err != nil {
		m.message = "copy failed: " + err.Error()
		return
	}
	m.message = "copied " + e.Commit.Short(8)
}

// currentPosition returns the 1-based index of the last position at or
// above the top line, and the number of positions.
func (m Model) currentPosition(positions []int) (current, total int) {
	total = len(positions)
	if total == 0 {
		return 0, 0
	}
	current = 1
	for i, pos := range positions {
		if pos > m.viewport.YOffset {
			break
		}
		current = i + 1
	}
	return current, total
}

func (m Model) newStyle() lipgloss.Style {
	if m.renderer != nil {
		return m.renderer.NewStyle()
	}
	return lipgloss.NewStyle()
}

// statusBarView renders the file and entry position, the commit of the
// current entry, the key hints and the last message.
func (m Model) statusBarView() string {
	bar := m.newStyle()
	dim := m.newStyle()
	sep := m.newStyle()
	if m.theme != nil {
		s := m.theme.Styles()
		if s.LineNumber.Foreground != "" {
			dim = dim.Foreground(lipgloss.Color(s.LineNumber.Foreground))
		}
		if s.Separator.Foreground != "" {
			sep = sep.Foreground(lipgloss.Color(s.Separator.Foreground))
		}
	}

	fileIdx, fileTotal := m.currentPosition(m.fileStarts)
	entryIdx, entryTotal := m.currentPosition(m.entryStarts)
	commit := ""
	if entryIdx > 0 {
		e := m.entries[entryIdx-1]
		commit = e.Commit.Short(8)
		if e.Unblamable {
			commit = "unblamable"
		}
	}

	div := sep.Render(" │ ")
	parts := []string{
		bar.Render(fmt.Sprintf("file %d/%d", fileIdx, fileTotal)),
		bar.Render(fmt.Sprintf("entry %d/%d", entryIdx, entryTotal)),
	}
	if commit != "" {
		parts = append(parts, bar.Render(commit))
	}
	hints := "j/k:scroll  n/N:entry  ]/[:file  q:quit"
	if m.clipboard != nil {
		hints = "j/k:scroll  n/N:entry  ]/[:file  y:copy  q:quit"
	}
	parts = append(parts, bar.Render(m.scrollPosition()), dim.Render(hints))
	if m.message != "" {
		parts = append(parts, bar.Render(m.message))
	}
	return strings.Join(parts, div)
}

func (m Model) scrollPosition() string {
	if m.viewport.AtTop() {
		return "Top"
	}
	if m.viewport.AtBottom() {
		return "Bot"
	}
	return fmt.Sprintf("%2d%%", int(m.viewport.ScrollPercent()*100))
}

// ViewerOption configures a Viewer.
type ViewerOption func(*Viewer)

// WithModelOptions sets the options passed to every Model.
func WithModelOptions(opts ...ModelOption) ViewerOption {
	return func(v *Viewer) {
		v.modelOpts = append(v.modelOpts, opts...)
	}
}

// WithProgramOptions adds Bubble Tea program options, such as custom IO.
func WithProgramOptions(opts ...tea.ProgramOption) ViewerOption {
	return func(v *Viewer) {
		v.programOpts = append(v.programOpts, opts...)
	}
}

// Viewer implements blame.Viewer using a Bubble Tea TUI.
type Viewer struct {
	formatter   blame.Formatter
	modelOpts   []ModelOption
	programOpts []tea.ProgramOption
}

// NewViewer creates a Viewer rendering each file with formatter.
func NewViewer(formatter blame.Formatter, opts ...ViewerOption) *Viewer {
	v := &Viewer{formatter: formatter}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// View displays docs and blocks until the user exits or ctx is done.
func (v *Viewer) View(ctx context.Context, docs []blame.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := NewModel(docs, v.formatter, v.modelOpts...)
	if err != nil {
		return err
	}
	opts := append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}, v.programOpts...)
	_, err = tea.NewProgram(m, opts...).Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
