// Package gogit provides a Repository backed by go-git object storage.
package gogit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/fwojciec/blame"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Compile-time interface verification.
var (
	_ blame.Repository = (*Repository)(nil)
	_ blame.Resolver   = (*Repository)(nil)
)

// Cache sizes. Blame revisits the same trees and blobs for every hunk, so a
// modest cache avoids most repeated decoding.
const (
	DefaultTreeCacheSize = 256
	DefaultBlobCacheSize = 128
)

// Repository reads commits, trees and blobs from a go-git object store. It is
// safe for concurrent use; reads from the store are serialized.
type Repository struct {
	repo *git.Repository // nil when created from a bare storer

	mu    sync.Mutex // guards store and lazily indexed trees
	store storer.EncodedObjectStorer
	trees *lru.Cache[blame.ObjectID, *object.Tree]
	blobs *lru.Cache[blame.ObjectID, []byte]
}

// New creates a Repository reading objects from s.
func New(s storer.EncodedObjectStorer) (*Repository, error) {
	trees, err := lru.New[blame.ObjectID, *object.Tree](DefaultTreeCacheSize)
	if err != nil {
		return nil, err
	}
	blobs, err := lru.New[blame.ObjectID, []byte](DefaultBlobCacheSize)
	if err != nil {
		return nil, err
	}
	return &Repository{store: s, trees: trees, blobs: blobs}, nil
}

// Open opens the repository containing path, searching parent directories
// for the .git directory.
func Open(path string) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}
	r, err := New(repo.Storer)
	if err != nil {
		return nil, err
	}
	r.repo = repo
	return r, nil
}

// Resolve returns the commit id a revision such as HEAD, a branch, a tag or
// a hash expression names.
func (r *Repository) Resolve(rev string) (blame.ObjectID, error) {
	if r.repo == nil {
		if !plumbing.IsHash(rev) {
			return blame.ObjectID{}, fmt.Errorf("resolve %q: not a commit id", rev)
		}
		return blame.ObjectID(plumbing.NewHash(rev)), nil
	}
	h, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return blame.ObjectID{}, fmt.Errorf("resolve %q: %w", rev, err)
	}
	return blame.ObjectID(*h), nil
}

// Root returns the top of the work tree the repository was opened from.
func (r *Repository) Root() (string, error) {
	if r.repo == nil {
		return "", errors.New("repository has no work tree")
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("work tree: %w", err)
	}
	return wt.Filesystem.Root(), nil
}

// Commit returns the commit with the given id.
func (r *Repository) Commit(ctx context.Context, id blame.ObjectID) (*blame.Commit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	c, err := object.GetCommit(r.store, plumbing.Hash(id))
	r.mu.Unlock()
	if err != nil {
		return nil, wrap(err)
	}
	parents := make([]blame.ObjectID, len(c.ParentHashes))
	for i, p := range c.ParentHashes {
		parents[i] = blame.ObjectID(p)
	}
	return &blame.Commit{
		ID:      id,
		Tree:    blame.ObjectID(c.TreeHash),
		Parents: parents,
		Time:    c.Committer.When,
	}, nil
}

// EntryByPath returns the blob at path in tree. Directories, submodules and
// missing paths report false.
func (r *Repository) EntryByPath(ctx context.Context, tree blame.ObjectID, path string) (blame.ObjectID, bool, error) {
	if err := ctx.Err(); err != nil {
		return blame.ObjectID{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.tree(tree)
	if err != nil {
		return blame.ObjectID{}, false, err
	}
	entry, err := t.FindEntry(path)
	switch {
	case errors.Is(err, object.ErrEntryNotFound), errors.Is(err, object.ErrDirectoryNotFound):
		return blame.ObjectID{}, false, nil
	case err != nil:
		return blame.ObjectID{}, false, wrap(err)
	}
	if !entry.Mode.IsFile() {
		return blame.ObjectID{}, false, nil
	}
	return blame.ObjectID(entry.Hash), true, nil
}

// Blob returns the content of the blob with the given id.
func (r *Repository) Blob(ctx context.Context, id blame.ObjectID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b, ok := r.blobs.Get(id); ok {
		return b, nil
	}
	data, err := r.readBlob(id)
	if err != nil {
		return nil, err
	}
	r.blobs.Add(id, data)
	return data, nil
}

func (r *Repository) readBlob(id blame.ObjectID) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	blob, err := object.GetBlob(r.store, plumbing.Hash(id))
	if err != nil {
		return nil, wrap(err)
	}
	rd, err := blob.Reader()
	if err != nil {
		return nil, err
	}
	defer rd.Close()
	return io.ReadAll(rd)
}

// DiffTree returns the files that differ between two trees. Renames are
// reported as a deletion and an addition.
func (r *Repository) DiffTree(ctx context.Context, oldTree, newTree blame.ObjectID) ([]blame.TreeChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	from, err := r.tree(oldTree)
	if err != nil {
		return nil, err
	}
	to, err := r.tree(newTree)
	if err != nil {
		return nil, err
	}
	changes, err := object.DiffTreeWithOptions(ctx, from, to, nil)
	if err != nil {
		return nil, err
	}

	result := make([]blame.TreeChange, 0, len(changes))
	for _, ch := range changes {
		action, err := ch.Action()
		if err != nil {
			return nil, err
		}
		switch action {
		case merkletrie.Insert:
			if !ch.To.TreeEntry.Mode.IsFile() {
				continue
			}
			result = append(result, blame.TreeChange{
				Op:      blame.TreeAdded,
				NewPath: ch.To.Name,
				NewBlob: blame.ObjectID(ch.To.TreeEntry.Hash),
			})
		case merkletrie.Delete:
			if !ch.From.TreeEntry.Mode.IsFile() {
				continue
			}
			result = append(result, blame.TreeChange{
				Op:      blame.TreeDeleted,
				OldPath: ch.From.Name,
				OldBlob: blame.ObjectID(ch.From.TreeEntry.Hash),
			})
		case merkletrie.Modify:
			result = append(result, blame.TreeChange{
				Op:      blame.TreeModified,
				OldPath: ch.From.Name,
				NewPath: ch.To.Name,
				OldBlob: blame.ObjectID(ch.From.TreeEntry.Hash),
				NewBlob: blame.ObjectID(ch.To.TreeEntry.Hash),
			})
		}
	}
	return result, nil
}

// tree must be called with mu held.
func (r *Repository) tree(id blame.ObjectID) (*object.Tree, error) {
	if t, ok := r.trees.Get(id); ok {
		return t, nil
	}
	t, err := object.GetTree(r.store, plumbing.Hash(id))
	if err != nil {
		return nil, wrap(err)
	}
	r.trees.Add(id, t)
	return t, nil
}

// wrap marks missing objects with blame.ErrNotFound.
func wrap(err error) error {
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return fmt.Errorf("%w: %w", blame.ErrNotFound, err)
	}
	return err
}
