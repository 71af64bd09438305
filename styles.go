package blame

// ColorPair represents a foreground and background color combination.
// Colors should be hex strings in "#RRGGBB" format (e.g., "#ff0000" for red).
// Empty strings are valid and indicate no color override (use terminal default).
type ColorPair struct {
	Foreground string
	Background string
}

// Styles contains color pairs for the parts of a rendered blame line.
type Styles struct {
	Path       ColorPair // Style for the original path of renamed lines
	LineNumber ColorPair // Style for line numbers in the gutter
	Unblamable ColorPair // Style for the gutter of unblamable entries
	Separator  ColorPair // Style for the gutter separators
}

// Theme provides styles for rendering blame output.
// Different implementations can provide light/dark variants.
type Theme interface {
	Styles() Styles
	// CommitColors returns the colors commits cycle through in the gutter,
	// in order of first appearance.
	CommitColors() []string
}
