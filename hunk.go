package blame

import "sort"

// Suspect is a candidate origin for a hunk: a commit and the lines in that
// commit's version of the file believed to match the hunk.
type Suspect struct {
	Commit ObjectID
	Range  Range

	// settled suspects were truncated (root, cutoff, file added) and are no
	// longer traversed; they only wait for the other suspects to resolve.
	settled bool
}

// UnblamedHunk is a contiguous range of the blamed file that is not yet
// attributed. Every suspect range has the same length as Range.
type UnblamedHunk struct {
	Range    Range
	Suspects []Suspect
}

// suspectIndex returns the index of the unsettled suspect for c.
func (h *UnblamedHunk) suspectIndex(c ObjectID) int {
	for i, s := range h.Suspects {
		if s.Commit == c && !s.settled {
			return i
		}
	}
	return -1
}

func (h *UnblamedHunk) hasCommit(c ObjectID) bool {
	for _, s := range h.Suspects {
		if s.Commit == c {
			return true
		}
	}
	return false
}

// edge is the diff between a commit and one of its parents.
type edge struct {
	parent      ObjectID
	parentLines int // length of the parent's version of the file
	changes     []Change
}

// piece is a part of a suspect range, either passed on to a parent at the
// given parent range or left with the child. Guessed passes stand in for
// lines an ignored child would otherwise keep.
type piece struct {
	child   Range
	passed  bool
	guessed bool
	parent  Range
}

// split is a part of a suspect range together with every parent it passes to.
type split struct {
	child  Range
	passes []Suspect
}

// tracker owns the unblamed hunks of one blame invocation and the entries
// they resolve to. Hunks are kept in an arena addressed by handle.
type tracker struct {
	hunks   []*UnblamedHunk // nil marks a free slot
	free    []int
	entries []Entry

	blamedPath string
	paths      map[ObjectID]string
	ignored    RevisionSet
}

func newTracker(blamedPath string, ignored RevisionSet) *tracker {
	return &tracker{
		blamedPath: blamedPath,
		paths:      make(map[ObjectID]string),
		ignored:    ignored,
	}
}

// seed adds one hunk per range, all suspecting commit.
func (t *tracker) seed(ranges []Range, commit ObjectID) {
	for _, r := range ranges {
		if r.IsEmpty() {
			continue
		}
		t.insert(&UnblamedHunk{
			Range:    r,
			Suspects: []Suspect{{Commit: commit, Range: r}},
		})
	}
}

func (t *tracker) insert(h *UnblamedHunk) int {
	if n := len(t.free); n > 0 {
		id := t.free[n-1]
		t.free = t.free[:n-1]
		t.hunks[id] = h
		return id
	}
	t.hunks = append(t.hunks, h)
	return len(t.hunks) - 1
}

func (t *tracker) remove(id int) {
	t.hunks[id] = nil
	t.free = append(t.free, id)
}

// suspecting returns the handles of hunks with an unsettled suspect for c.
func (t *tracker) suspecting(c ObjectID) []int {
	var ids []int
	for id, h := range t.hunks {
		if h != nil && h.suspectIndex(c) >= 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// pending returns the number of unresolved hunks.
func (t *tracker) pending() int {
	return len(t.hunks) - len(t.free)
}

// process applies the diffs of child against its parents to every hunk
// suspecting child. It returns the parents that received a suspect.
func (t *tracker) process(child ObjectID, edges []edge) []ObjectID {
	ignored := t.ignored.Contains(child)
	received := make(map[ObjectID]bool)
	for _, id := range t.suspecting(child) {
		h := t.hunks[id]
		k := h.suspectIndex(child)
		r := h.Suspects[k].Range

		partitions := make([][]piece, len(edges))
		for i, e := range edges {
			partitions[i] = partition(r, e.changes, ignored, e.parentLines)
		}
		splits := combine(r, edges, partitions)
		for _, s := range splits {
			for _, p := range s.passes {
				received[p.Commit] = true
			}
		}
		t.apply(id, k, splits)
	}
	return orderedParents(edges, received)
}

// passAll hands every hunk suspecting child to parent unchanged. It is used
// when parent holds the identical blob.
func (t *tracker) passAll(child, parent ObjectID) bool {
	ids := t.suspecting(child)
	for _, id := range ids {
		h := t.hunks[id]
		k := h.suspectIndex(child)
		r := h.Suspects[k].Range
		t.apply(id, k, []split{{child: r, passes: []Suspect{{Commit: parent, Range: r}}}})
	}
	return len(ids) > 0
}

// settle truncates traversal at c. Hunks suspecting only c are attributed to
// it; in other hunks c waits for the remaining suspects.
func (t *tracker) settle(c ObjectID) {
	for _, id := range t.suspecting(c) {
		h := t.hunks[id]
		h.Suspects[h.suspectIndex(c)].settled = true
		if allSettled(h.Suspects) {
			t.remove(id)
			t.finalize(h.Range, h.Suspects[0])
		}
	}
}

// finish attributes every hunk that is still pending to its
// earliest-discovered suspect.
func (t *tracker) finish() {
	for id, h := range t.hunks {
		if h == nil {
			continue
		}
		t.remove(id)
		t.finalize(h.Range, h.Suspects[0])
	}
}

// apply replaces hunk id by one hunk per split. The suspect at index k is
// substituted by the split's passes; the remaining suspects are sliced to the
// split's lines.
func (t *tracker) apply(id, k int, splits []split) {
	h := t.hunks[id]
	t.remove(id)
	origin := h.Suspects[k]
	for _, s := range splits {
		delta := s.child.Start - origin.Range.Start
		n := s.child.Len()
		blamed := Range{Start: h.Range.Start + delta, End: h.Range.Start + delta + n}

		suspects := make([]Suspect, 0, len(h.Suspects)+len(s.passes))
		for i, existing := range h.Suspects {
			if i == k {
				suspects = append(suspects, s.passes...)
				continue
			}
			existing.Range = Range{Start: existing.Range.Start + delta, End: existing.Range.Start + delta + n}
			suspects = append(suspects, existing)
		}
		suspects = dedupSuspects(suspects, len(s.passes), k)

		switch {
		case len(suspects) == 0:
			t.finalize(blamed, Suspect{Commit: origin.Commit, Range: s.child})
		case allSettled(suspects):
			t.finalize(blamed, suspects[0])
		default:
			t.insert(&UnblamedHunk{Range: blamed, Suspects: suspects})
		}
	}
}

func (t *tracker) finalize(blamed Range, s Suspect) {
	e := Entry{
		StartInBlamed: blamed.Start,
		StartInSource: s.Range.Start,
		Len:           blamed.Len(),
		Commit:        s.Commit,
	}
	if p, ok := t.paths[s.Commit]; ok && p != t.blamedPath {
		e.OriginalPath = p
	}
	if t.ignored.Contains(s.Commit) {
		e.Commit = ObjectID{}
		e.Unblamable = true
	}
	t.entries = append(t.entries, e)
}

// partition splits the child range r by changes. Lines not covered by any
// change count as added. For an ignored child, lines that would be
// attributed to it pass to the parent at the position they replace, as far
// as the parent has lines there.
func partition(r Range, changes []Change, ignored bool, parentLines int) []piece {
	var pieces []piece
	emit := func(p piece) {
		if p.child.IsEmpty() {
			return
		}
		if n := len(pieces); n > 0 {
			prev := &pieces[n-1]
			if prev.passed == p.passed && prev.guessed == p.guessed && (!p.passed || prev.parent.End == p.parent.Start) {
				prev.child.End = p.child.End
				prev.parent.End = p.parent.End
				return
			}
		}
		pieces = append(pieces, p)
	}
	var offset Offset
	attributed := func(span Range) {
		if !ignored {
			emit(piece{child: span})
			return
		}
		shifted := offset.Shift(span)
		if n := min(shifted.End, parentLines) - shifted.Start; n > 0 {
			emit(piece{
				child:   Range{Start: span.Start, End: span.Start + n},
				passed:  true,
				guessed: true,
				parent:  Range{Start: shifted.Start, End: shifted.Start + n},
			})
			span.Start += n
		}
		emit(piece{child: span})
	}
	pos := r.Start
	cover := func(c Range) Range {
		if pos < c.Start {
			attributed(Range{Start: pos, End: min(c.Start, r.End)})
			pos = max(pos, min(c.Start, r.End))
		}
		span := Range{Start: max(pos, c.Start), End: min(c.End, r.End)}
		if !span.IsEmpty() {
			pos = span.End
		}
		return span
	}

	for _, c := range changes {
		if pos >= r.End {
			break
		}
		switch c := c.(type) {
		case Unchanged:
			if span := cover(c.Range); !span.IsEmpty() {
				emit(piece{child: span, passed: true, parent: offset.Shift(span)})
			}
		case AddedOrReplaced:
			if span := cover(c.Range); !span.IsEmpty() {
				attributed(span)
			}
			offset = offset.Add(c.Range.Len()).Sub(c.Deleted)
		case Deleted:
			offset = offset.Sub(c.Count)
		}
	}
	if pos < r.End {
		attributed(Range{Start: pos, End: r.End})
	}
	return pieces
}

// combine intersects the partitions of r computed for each edge. Each
// resulting split lists, in edge order, the parents its lines pass to.
// Guessed passes count only where no parent has the lines unchanged.
func combine(r Range, edges []edge, partitions [][]piece) []split {
	bounds := []int{r.Start, r.End}
	for _, pieces := range partitions {
		for _, p := range pieces {
			bounds = append(bounds, p.child.Start)
		}
	}
	sort.Ints(bounds)

	var splits []split
	cursor := make([]int, len(partitions))
	for i := 0; i+1 < len(bounds); i++ {
		start, end := bounds[i], bounds[i+1]
		if start == end {
			continue
		}
		var passes, guesses []Suspect
		for e, pieces := range partitions {
			for cursor[e] < len(pieces) && pieces[cursor[e]].child.End <= start {
				cursor[e]++
			}
			if cursor[e] == len(pieces) {
				continue
			}
			p := pieces[cursor[e]]
			if !p.passed || p.child.Start > start {
				continue
			}
			ps := p.parent.Start + (start - p.child.Start)
			pass := Suspect{Commit: edges[e].parent, Range: Range{Start: ps, End: ps + end - start}}
			if p.guessed {
				guesses = append(guesses, pass)
			} else {
				passes = append(passes, pass)
			}
		}
		if len(passes) == 0 {
			passes = guesses
		}
		s := split{child: Range{Start: start, End: end}, passes: passes}
		if n := len(splits); n > 0 && continues(splits[n-1], s) {
			prev := &splits[n-1]
			prev.child.End = s.child.End
			for j := range prev.passes {
				prev.passes[j].Range.End = s.passes[j].Range.End
			}
			continue
		}
		splits = append(splits, s)
	}
	return splits
}

// continues reports whether next extends prev for every parent.
func continues(prev, next split) bool {
	if len(prev.passes) != len(next.passes) {
		return false
	}
	for i := range prev.passes {
		if prev.passes[i].Commit != next.passes[i].Commit || prev.passes[i].Range.End != next.passes[i].Range.Start {
			return false
		}
	}
	return true
}

// dedupSuspects keeps the first suspect per commit. The n passes inserted at
// index k are newer than the suspects around them, so an existing suspect for
// the same commit wins.
func dedupSuspects(suspects []Suspect, n, k int) []Suspect {
	existing := make(map[ObjectID]bool, len(suspects))
	for i, s := range suspects {
		if i < k || i >= k+n {
			existing[s.Commit] = true
		}
	}
	seen := make(map[ObjectID]bool, len(suspects))
	out := suspects[:0]
	for i, s := range suspects {
		if seen[s.Commit] {
			continue
		}
		if i >= k && i < k+n && existing[s.Commit] {
			continue
		}
		seen[s.Commit] = true
		out = append(out, s)
	}
	return out
}

func allSettled(suspects []Suspect) bool {
	for _, s := range suspects {
		if !s.settled {
			return false
		}
	}
	return true
}

// orderedParents returns the parents in received, in edge order.
func orderedParents(edges []edge, received map[ObjectID]bool) []ObjectID {
	var parents []ObjectID
	for _, e := range edges {
		if received[e.parent] {
			parents = append(parents, e.parent)
			delete(received, e.parent)
		}
	}
	return parents
}
