// Package difflib implements line diffing and similarity scoring using
// sergi/go-diff (Myers) and pmezard/go-difflib (Ratcliff/Obershelp).
package difflib

import (
	"github.com/fwojciec/blame"
	godifflib "github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Compile-time interface verification.
var (
	_ blame.Differ     = (*Differ)(nil)
	_ blame.Similarity = (*Similarity)(nil)
)

// Differ computes line-level opcodes between two token sequences.
type Differ struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewDiffer creates a new Differ instance.
func NewDiffer() *Differ {
	dmp := diffmatchpatch.New()
	// Without a deadline the result only depends on the input.
	dmp.DiffTimeout = 0
	return &Differ{dmp: dmp}
}

// Diff returns opcodes covering before and after.
func (d *Differ) Diff(before, after []string, algo blame.Algorithm) []blame.Opcode {
	switch algo {
	case blame.AlgorithmRatcliff:
		return matcherOpcodes(before, after)
	default:
		return d.myersOpcodes(before, after)
	}
}

// myersOpcodes maps every distinct line to a rune so diffmatchpatch can diff
// lines as characters, then converts its edit script to opcodes.
func (d *Differ) myersOpcodes(before, after []string) []blame.Opcode {
	a, b, ok := internLines(before, after)
	if !ok {
		return replaceAll(before, after)
	}
	diffs := d.dmp.DiffMainRunes(a, b, false)

	var (
		ops          []blame.Opcode
		i, j         int
		deleted, ins int
	)
	flush := func() {
		if deleted == 0 && ins == 0 {
			return
		}
		kind := blame.OpReplace
		switch {
		case ins == 0:
			kind = blame.OpDelete
		case deleted == 0:
			kind = blame.OpInsert
		}
		ops = append(ops, blame.Opcode{Kind: kind, BeforeStart: i, BeforeEnd: i + deleted, AfterStart: j, AfterEnd: j + ins})
		i += deleted
		j += ins
		deleted, ins = 0, 0
	}
	for _, diff := range diffs {
		n := len([]rune(diff.Text))
		switch diff.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			ops = append(ops, blame.Opcode{Kind: blame.OpEqual, BeforeStart: i, BeforeEnd: i + n, AfterStart: j, AfterEnd: j + n})
			i += n
			j += n
		case diffmatchpatch.DiffDelete:
			deleted += n
		case diffmatchpatch.DiffInsert:
			ins += n
		}
	}
	flush()
	return ops
}

// matcherOpcodes uses a SequenceMatcher without the popularity heuristic,
// which would otherwise treat frequent lines of large files as junk.
func matcherOpcodes(before, after []string) []blame.Opcode {
	m := godifflib.NewMatcherWithJunk(before, after, false, nil)
	codes := m.GetOpCodes()
	ops := make([]blame.Opcode, 0, len(codes))
	for _, c := range codes {
		op := blame.Opcode{BeforeStart: c.I1, BeforeEnd: c.I2, AfterStart: c.J1, AfterEnd: c.J2}
		switch c.Tag {
		case 'e':
			op.Kind = blame.OpEqual
		case 'i':
			op.Kind = blame.OpInsert
		case 'd':
			op.Kind = blame.OpDelete
		case 'r':
			op.Kind = blame.OpReplace
		default:
			continue
		}
		ops = append(ops, op)
	}
	return ops
}

// surrogateStart and surrogateEnd bound the runes that do not survive a
// round trip through a Go string.
const (
	surrogateStart = 0xD800
	surrogateEnd   = 0xE000
)

// internLines assigns one rune per distinct line. It reports false if there
// are more distinct lines than valid runes.
func internLines(before, after []string) ([]rune, []rune, bool) {
	index := make(map[string]rune, len(before)+len(after))
	next := rune(1)
	encode := func(lines []string) ([]rune, bool) {
		runes := make([]rune, len(lines))
		for i, line := range lines {
			r, ok := index[line]
			if !ok {
				if next == surrogateStart {
					next = surrogateEnd
				}
				if next > 0x10FFFF {
					return nil, false
				}
				r = next
				index[line] = r
				next++
			}
			runes[i] = r
		}
		return runes, true
	}
	a, ok := encode(before)
	if !ok {
		return nil, nil, false
	}
	b, ok := encode(after)
	if !ok {
		return nil, nil, false
	}
	return a, b, true
}

func replaceAll(before, after []string) []blame.Opcode {
	switch {
	case len(before) == 0 && len(after) == 0:
		return nil
	case len(before) == 0:
		return []blame.Opcode{{Kind: blame.OpInsert, AfterEnd: len(after)}}
	case len(after) == 0:
		return []blame.Opcode{{Kind: blame.OpDelete, BeforeEnd: len(before)}}
	}
	return []blame.Opcode{{Kind: blame.OpReplace, BeforeEnd: len(before), AfterEnd: len(after)}}
}

// Similarity scores blobs by the share of lines a SequenceMatcher can match.
type Similarity struct{}

// NewSimilarity creates a new Similarity.
func NewSimilarity() *Similarity {
	return &Similarity{}
}

// Score returns 2*M/T where M is the number of matched lines and T the total
// number of lines in both blobs. Two empty blobs are identical.
func (s *Similarity) Score(a, b []byte) float64 {
	la, lb := blame.Lines(a), blame.Lines(b)
	if len(la) == 0 && len(lb) == 0 {
		return 1
	}
	m := godifflib.NewMatcherWithJunk(la, lb, false, nil)
	if m.QuickRatio() == 0 {
		return 0
	}
	return m.Ratio()
}
