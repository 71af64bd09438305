package bubbletea

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/blame"
)

const tabWidth = 8

// ExpandTabs converts tab characters to the appropriate number of spaces
// based on standard 8-column tab stops. The startCol parameter indicates
// the column position where the string begins, which affects how the first
// tab is expanded.
func ExpandTabs(s string, startCol int) string {
	if !strings.Contains(s, "\t") {
		return s
	}

	var sb strings.Builder
	col := startCol
	for _, r := range s {
		if r == '\t' {
			nextStop := ((col / tabWidth) + 1) * tabWidth
			sb.WriteString(strings.Repeat(" ", nextStop-col))
			col = nextStop
		} else {
			sb.WriteRune(r)
			col += lipgloss.Width(string(r))
		}
	}
	return sb.String()
}

// expandOutcome returns out with the tabs of every blamed line expanded.
// The line count is unchanged, so entries still index the same lines.
func expandOutcome(out *blame.Outcome) *blame.Outcome {
	if !bytes.ContainsRune(out.Blob, '\t') {
		return out
	}
	var sb strings.Builder
	for _, line := range out.Lines() {
		body, terminated := strings.CutSuffix(line, "\n")
		sb.WriteString(ExpandTabs(body, 0))
		if terminated {
			sb.WriteString("\n")
		}
	}
	expanded := *out
	expanded.Blob = []byte(sb.String())
	return &expanded
}
