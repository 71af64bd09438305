// Package lipgloss provides theme and terminal output implementations using
// the Lipgloss styling library.
package lipgloss

import "github.com/fwojciec/blame"

// Compile-time interface verification.
var _ blame.Theme = (*Theme)(nil)

// Theme implements blame.Theme with Lipgloss-compatible colors.
type Theme struct {
	styles       blame.Styles
	commitColors []string
}

// Styles returns the color styles for this theme.
func (t *Theme) Styles() blame.Styles {
	return t.styles
}

// CommitColors returns the gutter colors commits cycle through.
func (t *Theme) CommitColors() []string {
	return t.commitColors
}

// DefaultTheme returns the default theme (dark background optimized).
func DefaultTheme() *Theme {
	return DarkTheme()
}

// DarkTheme returns a theme optimized for dark terminal backgrounds.
func DarkTheme() *Theme {
	return &Theme{
		styles: blame.Styles{
			Path: blame.ColorPair{
				Foreground: "#f9e2af", // Yellow
			},
			LineNumber: blame.ColorPair{
				Foreground: "#6c7086", // Muted gray
			},
			Unblamable: blame.ColorPair{
				Foreground: "#1e1e2e", // Dark text on bright background
				Background: "#f38ba8", // Red
			},
			Separator: blame.ColorPair{
				Foreground: "#45475a", // Muted gray (subtle)
			},
		},
		// Catppuccin Mocha accents
		commitColors: []string{
			"#89b4fa", // Blue
			"#a6e3a1", // Green
			"#cba6f7", // Mauve
			"#fab387", // Peach
			"#89dceb", // Sky
			"#f5c2e7", // Pink
		},
	}
}

// LightTheme returns a theme optimized for light terminal backgrounds.
func LightTheme() *Theme {
	return &Theme{
		styles: blame.Styles{
			Path: blame.ColorPair{
				Foreground: "#df8e1d", // Yellow
			},
			LineNumber: blame.ColorPair{
				Foreground: "#9ca0b0", // Muted gray for light theme
			},
			Unblamable: blame.ColorPair{
				Foreground: "#ffffff", // White text on dark background
				Background: "#d20f39", // Red
			},
			Separator: blame.ColorPair{
				Foreground: "#bcc0cc", // Muted gray (subtle for light)
			},
		},
		// Catppuccin Latte accents
		commitColors: []string{
			"#1e66f5", // Blue
			"#40a02b", // Green
			"#8839ef", // Mauve
			"#fe640b", // Peach
			"#04a5e5", // Sky
			"#ea76cb", // Pink
		},
	}
}
