package blame

import (
	"context"
	"sort"
)

// findRename looks for the path the tracked file had in parent when path
// itself is absent there. Candidates are files deleted between parent and
// child; the most similar one at or above the rename threshold wins.
func (w *walk) findRename(ctx context.Context, child, parent *Commit, path string, blobID ObjectID, loadChild func() ([]byte, error)) (string, ObjectID, bool, error) {
	w.stats.TreesDiffed++
	changes, err := w.repo.DiffTree(ctx, parent.Tree, child.Tree)
	if err != nil {
		return "", ObjectID{}, false, objectError("diff tree against "+child.Tree.String(), parent.Tree, err)
	}

	var candidates []TreeChange
	for _, ch := range changes {
		if ch.Op == TreeDeleted && ch.OldPath != path {
			candidates = append(candidates, ch)
		}
	}
	if len(candidates) == 0 {
		return "", ObjectID{}, false, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].OldPath < candidates[j].OldPath
	})

	// Identical content is an exact rename.
	for _, ch := range candidates {
		if ch.OldBlob == blobID {
			return ch.OldPath, ch.OldBlob, true, nil
		}
	}
	if w.similarity == nil {
		return "", ObjectID{}, false, nil
	}

	content, err := loadChild()
	if err != nil {
		return "", ObjectID{}, false, err
	}
	threshold := w.opts.renameThreshold()
	var (
		best      TreeChange
		bestScore float64
		found     bool
	)
	for _, ch := range candidates {
		other, err := w.blob(ctx, ch.OldBlob)
		if err != nil {
			return "", ObjectID{}, false, err
		}
		score := w.similarity.Score(content, other)
		if score >= threshold && (!found || score > bestScore) {
			best, bestScore, found = ch, score, true
		}
	}
	if !found {
		return "", ObjectID{}, false, nil
	}
	w.log.WithField("score", bestScore).Debugf("rename candidate %s", best.OldPath)
	return best.OldPath, best.OldBlob, true, nil
}
