package bubbletea_test

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/blame/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap_HasExpectedBindings(t *testing.T) {
	t.Parallel()

	km := bubbletea.DefaultKeyMap()

	tests := []struct {
		name    string
		msg     tea.KeyMsg
		binding key.Binding
	}{
		{name: "k scrolls up", msg: runes("k"), binding: km.Up},
		{name: "arrow up scrolls up", msg: tea.KeyMsg{Type: tea.KeyUp}, binding: km.Up},
		{name: "j scrolls down", msg: runes("j"), binding: km.Down},
		{name: "arrow down scrolls down", msg: tea.KeyMsg{Type: tea.KeyDown}, binding: km.Down},
		{name: "ctrl+u", msg: tea.KeyMsg{Type: tea.KeyCtrlU}, binding: km.HalfPageUp},
		{name: "ctrl+d", msg: tea.KeyMsg{Type: tea.KeyCtrlD}, binding: km.HalfPageDown},
		{name: "g starts go to top", msg: runes("g"), binding: km.GotoTop},
		{name: "G", msg: runes("G"), binding: km.GotoBottom},
		{name: "n", msg: runes("n"), binding: km.NextEntry},
		{name: "N", msg: runes("N"), binding: km.PrevEntry},
		{name: "]", msg: runes("]"), binding: km.NextFile},
		{name: "[", msg: runes("["), binding: km.PrevFile},
		{name: "y", msg: runes("y"), binding: km.CopyCommit},
		{name: "q", msg: runes("q"), binding: km.Quit},
		{name: "ctrl+c", msg: tea.KeyMsg{Type: tea.KeyCtrlC}, binding: km.Quit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.True(t, key.Matches(tt.msg, tt.binding))
		})
	}
}
