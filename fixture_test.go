package blame_test

import (
	"context"
	"crypto/sha1"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/blame"
	"github.com/fwojciec/blame/difflib"
)

// fakeRepo is an in-memory object database with flat trees.
type fakeRepo struct {
	commits map[blame.ObjectID]*blame.Commit
	trees   map[blame.ObjectID]map[string]blame.ObjectID
	blobs   map[blame.ObjectID][]byte
	order   []blame.ObjectID // commits in creation order
	clock   time.Time
	seq     int

	// failBlob makes Blob fail for the given id.
	failBlob map[blame.ObjectID]error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		commits:  make(map[blame.ObjectID]*blame.Commit),
		trees:    make(map[blame.ObjectID]map[string]blame.ObjectID),
		blobs:    make(map[blame.ObjectID][]byte),
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		failBlob: make(map[blame.ObjectID]error),
	}
}

func (r *fakeRepo) blob(content string) blame.ObjectID {
	id := blame.ObjectID(sha1.Sum([]byte("blob " + content)))
	r.blobs[id] = []byte(content)
	return id
}

func (r *fakeRepo) nextID(kind string) blame.ObjectID {
	r.seq++
	return blame.ObjectID(sha1.Sum([]byte(fmt.Sprintf("%s %d", kind, r.seq))))
}

// commit records a commit one hour after the previous one.
func (r *fakeRepo) commit(files map[string]string, parents ...blame.ObjectID) blame.ObjectID {
	r.clock = r.clock.Add(time.Hour)
	return r.commitAt(r.clock, files, parents...)
}

func (r *fakeRepo) commitAt(when time.Time, files map[string]string, parents ...blame.ObjectID) blame.ObjectID {
	tree := r.nextID("tree")
	entries := make(map[string]blame.ObjectID, len(files))
	for path, content := range files {
		entries[path] = r.blob(content)
	}
	r.trees[tree] = entries
	id := r.nextID("commit")
	r.commits[id] = &blame.Commit{ID: id, Tree: tree, Parents: parents, Time: when}
	r.order = append(r.order, id)
	return id
}

func (r *fakeRepo) Commit(_ context.Context, id blame.ObjectID) (*blame.Commit, error) {
	c, ok := r.commits[id]
	if !ok {
		return nil, fmt.Errorf("commit: %w", blame.ErrNotFound)
	}
	return c, nil
}

func (r *fakeRepo) EntryByPath(_ context.Context, tree blame.ObjectID, path string) (blame.ObjectID, bool, error) {
	entries, ok := r.trees[tree]
	if !ok {
		return blame.ObjectID{}, false, fmt.Errorf("tree: %w", blame.ErrNotFound)
	}
	id, ok := entries[path]
	return id, ok, nil
}

func (r *fakeRepo) Blob(_ context.Context, id blame.ObjectID) ([]byte, error) {
	if err := r.failBlob[id]; err != nil {
		return nil, err
	}
	b, ok := r.blobs[id]
	if !ok {
		return nil, fmt.Errorf("blob: %w", blame.ErrNotFound)
	}
	return b, nil
}

func (r *fakeRepo) DiffTree(_ context.Context, oldTree, newTree blame.ObjectID) ([]blame.TreeChange, error) {
	from, to := r.trees[oldTree], r.trees[newTree]
	var changes []blame.TreeChange
	for path, id := range from {
		other, ok := to[path]
		switch {
		case !ok:
			changes = append(changes, blame.TreeChange{Op: blame.TreeDeleted, OldPath: path, OldBlob: id})
		case other != id:
			changes = append(changes, blame.TreeChange{Op: blame.TreeModified, OldPath: path, NewPath: path, OldBlob: id, NewBlob: other})
		}
	}
	for path, id := range to {
		if _, ok := from[path]; !ok {
			changes = append(changes, blame.TreeChange{Op: blame.TreeAdded, NewPath: path, NewBlob: id})
		}
	}
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].OldPath+changes[i].NewPath < changes[j].OldPath+changes[j].NewPath
	})
	return changes, nil
}

func (r *fakeRepo) blamer() *blame.Blamer {
	return blame.NewBlamer(r, difflib.NewDiffer(), difflib.NewSimilarity())
}

// lines joins lines with a terminator after each.
func lines(ls ...string) string {
	if len(ls) == 0 {
		return ""
	}
	return strings.Join(ls, "\n") + "\n"
}

// requireRangeCoverage fails unless entries tile exactly the lines in want,
// in order.
func requireRangeCoverage(t *testing.T, entries []blame.Entry, want []blame.Range) {
	t.Helper()
	var got []blame.Range
	for _, e := range entries {
		r := e.RangeInBlamed()
		if e.Len <= 0 {
			t.Fatalf("empty entry: %+v", entries)
		}
		if n := len(got); n > 0 && got[n-1].End == r.Start {
			got[n-1].End = r.End
			continue
		}
		got = append(got, r)
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("entries cover %v, want %v: %+v", got, want, entries)
	}
}

// requireCoverage fails unless entries tile [0, total) in order.
func requireCoverage(t *testing.T, entries []blame.Entry, total int) {
	t.Helper()
	next := 0
	for _, e := range entries {
		if e.StartInBlamed != next || e.Len <= 0 {
			t.Fatalf("entries do not tile the file at line %d: %+v", next, entries)
		}
		next += e.Len
	}
	if next != total {
		t.Fatalf("entries cover %d of %d lines: %+v", next, total, entries)
	}
}
