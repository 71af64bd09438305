package mock

import (
	"context"

	"github.com/fwojciec/blame"
)

var _ blame.Viewer = (*Viewer)(nil)

// Viewer is a mock implementation of blame.Viewer.
type Viewer struct {
	ViewFn func(ctx context.Context, docs []blame.Document) error
}

func (v *Viewer) View(ctx context.Context, docs []blame.Document) error {
	return v.ViewFn(ctx, docs)
}

var _ blame.Clipboard = (*Clipboard)(nil)

// Clipboard is a mock implementation of blame.Clipboard.
type Clipboard struct {
	CopyFn func(content string) error
}

func (c *Clipboard) Copy(content string) error {
	return c.CopyFn(content)
}
