// Package mock provides test doubles for blame interfaces.
package mock

import (
	"context"

	"github.com/fwojciec/blame"
)

// Compile-time interface verification.
var (
	_ blame.Repository = (*Repository)(nil)
	_ blame.Resolver   = (*Resolver)(nil)
	_ blame.Service    = (*Service)(nil)
)

// Repository is a mock implementation of blame.Repository.
type Repository struct {
	CommitFn      func(ctx context.Context, id blame.ObjectID) (*blame.Commit, error)
	EntryByPathFn func(ctx context.Context, tree blame.ObjectID, path string) (blame.ObjectID, bool, error)
	BlobFn        func(ctx context.Context, id blame.ObjectID) ([]byte, error)
	DiffTreeFn    func(ctx context.Context, oldTree, newTree blame.ObjectID) ([]blame.TreeChange, error)
}

func (r *Repository) Commit(ctx context.Context, id blame.ObjectID) (*blame.Commit, error) {
	return r.CommitFn(ctx, id)
}

func (r *Repository) EntryByPath(ctx context.Context, tree blame.ObjectID, path string) (blame.ObjectID, bool, error) {
	return r.EntryByPathFn(ctx, tree, path)
}

func (r *Repository) Blob(ctx context.Context, id blame.ObjectID) ([]byte, error) {
	return r.BlobFn(ctx, id)
}

func (r *Repository) DiffTree(ctx context.Context, oldTree, newTree blame.ObjectID) ([]blame.TreeChange, error) {
	return r.DiffTreeFn(ctx, oldTree, newTree)
}

// Resolver is a mock implementation of blame.Resolver.
type Resolver struct {
	ResolveFn func(rev string) (blame.ObjectID, error)
}

func (r *Resolver) Resolve(rev string) (blame.ObjectID, error) {
	return r.ResolveFn(rev)
}

// Service is a mock implementation of blame.Service.
type Service struct {
	BlameFn func(ctx context.Context, commit blame.ObjectID, path string, opts blame.Options) (*blame.Outcome, error)
}

func (s *Service) Blame(ctx context.Context, commit blame.ObjectID, path string, opts blame.Options) (*blame.Outcome, error) {
	return s.BlameFn(ctx, commit, path, opts)
}
