package blame

import "context"

// Document is the blame of one file.
type Document struct {
	Path    string
	Outcome *Outcome
}

// Viewer displays blame results interactively.
type Viewer interface {
	// View displays docs and blocks until the user exits.
	View(ctx context.Context, docs []Document) error
}

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	Copy(content string) error
}
