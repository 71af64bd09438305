package blame

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

var _ Service = (*Blamer)(nil)

// Blamer attributes the lines of a file to the commits that introduced them.
type Blamer struct {
	Repo       Repository
	Differ     Differ
	Similarity Similarity         // Scores rename candidates; nil accepts only identical blobs.
	Logger     logrus.FieldLogger // Debug tracing; nil discards.
}

// NewBlamer creates a Blamer over repo.
func NewBlamer(repo Repository, differ Differ, similarity Similarity) *Blamer {
	return &Blamer{Repo: repo, Differ: differ, Similarity: similarity}
}

// Blame computes the provenance of path as of commit. It either returns the
// complete outcome or the first error; there is no partial result.
func (b *Blamer) Blame(ctx context.Context, commit ObjectID, path string, opts Options) (*Outcome, error) {
	log := b.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	w := &walk{
		repo:       b.Repo,
		differ:     b.Differ,
		similarity: b.Similarity,
		log:        log.WithField("path", path),
		opts:       opts,
		tracker:    newTracker(path, opts.Ignore),
		queue:      newCommitQueue(),
		blobs:      make(map[ObjectID]ObjectID),
	}
	return w.run(ctx, commit, path)
}

// walk is the state of one blame invocation.
type walk struct {
	repo       Repository
	differ     Differ
	similarity Similarity
	log        logrus.FieldLogger
	opts       Options

	tracker *tracker
	queue   *commitQueue
	blobs   map[ObjectID]ObjectID // commit -> blob of the tracked path
	stats   Statistics
}

// parentFile is the tracked file as found in one parent of a commit.
type parentFile struct {
	commit *Commit
	path   string
	blob   ObjectID
}

func (w *walk) run(ctx context.Context, start ObjectID, path string) (*Outcome, error) {
	c, err := w.commit(ctx, start)
	if err != nil {
		return nil, err
	}
	blobID, ok, err := w.entry(ctx, c.Tree, path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrPathNotFound, path, start)
	}
	blob, err := w.blob(ctx, blobID)
	if err != nil {
		return nil, err
	}
	ranges, err := w.opts.Ranges.Materialize(len(Lines(blob)))
	if err != nil {
		return nil, err
	}

	w.tracker.seed(ranges, start)
	w.track(start, path, blobID)
	w.queue.push(c)

	for w.queue.Len() > 0 && w.tracker.pending() > 0 {
		if err := w.visit(ctx, w.queue.pop()); err != nil {
			return nil, err
		}
	}
	w.tracker.finish()

	w.log.WithFields(logrus.Fields{
		"commits": w.stats.CommitsTraversed,
		"blobs":   w.stats.BlobsDiffed,
	}).Debug("blame complete")

	return &Outcome{
		Entries:    assemble(w.tracker.entries),
		Blob:       blob,
		Statistics: w.stats,
	}, nil
}

// visit processes every hunk that still suspects c.
func (w *walk) visit(ctx context.Context, c *Commit) error {
	if len(w.tracker.suspecting(c.ID)) == 0 {
		return nil
	}
	w.stats.CommitsTraversed++
	log := w.log.WithField("commit", c.ID.Short(12))

	if !w.opts.Since.IsZero() && c.Time.Before(w.opts.Since) {
		log.Debug("commit is older than cutoff")
		w.tracker.settle(c.ID)
		return nil
	}
	if len(c.Parents) == 0 {
		log.Debug("reached root commit")
		w.tracker.settle(c.ID)
		return nil
	}

	path := w.tracker.paths[c.ID]
	blobID := w.blobs[c.ID]
	var (
		childBlob []byte
		loaded    bool
	)
	loadChild := func() ([]byte, error) {
		if !loaded {
			b, err := w.blob(ctx, blobID)
			if err != nil {
				return nil, err
			}
			childBlob, loaded = b, true
		}
		return childBlob, nil
	}

	// Direct lookups come first so an unchanged parent short-circuits
	// before any rename search.
	commits := make([]*Commit, len(c.Parents))
	direct := make([]*parentFile, len(c.Parents))
	for i, id := range c.Parents {
		p, err := w.commit(ctx, id)
		if err != nil {
			return err
		}
		commits[i] = p
		pb, ok, err := w.entry(ctx, p.Tree, path)
		if err != nil {
			return err
		}
		if ok {
			direct[i] = &parentFile{commit: p, path: path, blob: pb}
		}
	}
	for _, pf := range direct {
		if pf != nil && pf.blob == blobID {
			w.passUnchanged(c, *pf, log)
			return nil
		}
	}

	var parents []parentFile
	for i, p := range commits {
		if direct[i] != nil {
			parents = append(parents, *direct[i])
			continue
		}
		if !w.opts.FollowRenames {
			continue
		}
		ppath, pb, ok, err := w.findRename(ctx, c, p, path, blobID, loadChild)
		if err != nil {
			return err
		}
		if ok {
			log.WithFields(logrus.Fields{"parent": p.ID.Short(12), "from": ppath}).Debug("followed rename")
			parents = append(parents, parentFile{commit: p, path: ppath, blob: pb})
		}
	}

	if len(parents) == 0 {
		log.Debug("path was added in commit")
		w.tracker.settle(c.ID)
		return nil
	}

	// A pure rename keeps the blob.
	for _, pf := range parents {
		if pf.blob == blobID {
			w.passUnchanged(c, pf, log)
			return nil
		}
	}

	child, err := loadChild()
	if err != nil {
		return err
	}
	childLines := Lines(child)
	edges := make([]edge, 0, len(parents))
	byID := make(map[ObjectID]*Commit, len(parents))
	for _, pf := range parents {
		parentBlob, err := w.blob(ctx, pf.blob)
		if err != nil {
			return err
		}
		w.stats.BlobsDiffed++
		parentLines := Lines(parentBlob)
		ops := w.differ.Diff(parentLines, childLines, w.opts.Algorithm)
		edges = append(edges, edge{
			parent:      pf.commit.ID,
			parentLines: len(parentLines),
			changes:     Classify(ops),
		})
		w.track(pf.commit.ID, pf.path, pf.blob)
		byID[pf.commit.ID] = pf.commit
	}

	for _, id := range w.tracker.process(c.ID, edges) {
		w.queue.push(byID[id])
	}
	return nil
}

// passUnchanged hands every hunk suspecting c to a parent holding the same
// blob.
func (w *walk) passUnchanged(c *Commit, pf parentFile, log logrus.FieldLogger) {
	log.WithField("parent", pf.commit.ID.Short(12)).Debug("blob unchanged in parent")
	w.track(pf.commit.ID, pf.path, pf.blob)
	if w.tracker.passAll(c.ID, pf.commit.ID) {
		w.queue.push(pf.commit)
	}
}

// track records the path and blob of the tracked file in commit. The first
// record wins.
func (w *walk) track(commit ObjectID, path string, blob ObjectID) {
	if _, ok := w.tracker.paths[commit]; ok {
		return
	}
	w.tracker.paths[commit] = path
	w.blobs[commit] = blob
}

func (w *walk) commit(ctx context.Context, id ObjectID) (*Commit, error) {
	c, err := w.repo.Commit(ctx, id)
	if err != nil {
		return nil, objectError("read commit", id, err)
	}
	return c, nil
}

func (w *walk) entry(ctx context.Context, tree ObjectID, path string) (ObjectID, bool, error) {
	w.stats.TreesDecoded++
	id, ok, err := w.repo.EntryByPath(ctx, tree, path)
	if err != nil {
		return ObjectID{}, false, objectError("lookup "+path+" in tree", tree, err)
	}
	return id, ok, nil
}

func (w *walk) blob(ctx context.Context, id ObjectID) ([]byte, error) {
	b, err := w.repo.Blob(ctx, id)
	if err != nil {
		return nil, objectError("read blob", id, err)
	}
	return b, nil
}
