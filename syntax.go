package blame

// Highlighter renders source code with syntax colors.
type Highlighter interface {
	// Highlight returns one rendered string per line of source, without line
	// terminators. It returns nil if the language of path is not supported.
	Highlight(path, source string) []string
}
