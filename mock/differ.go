package mock

import "github.com/fwojciec/blame"

// Compile-time interface verification.
var (
	_ blame.Differ     = (*Differ)(nil)
	_ blame.Similarity = (*Similarity)(nil)
)

// Differ is a mock implementation of blame.Differ.
type Differ struct {
	DiffFn func(before, after []string, algo blame.Algorithm) []blame.Opcode
}

func (d *Differ) Diff(before, after []string, algo blame.Algorithm) []blame.Opcode {
	return d.DiffFn(before, after, algo)
}

// Similarity is a mock implementation of blame.Similarity.
type Similarity struct {
	ScoreFn func(a, b []byte) float64
}

func (s *Similarity) Score(a, b []byte) float64 {
	return s.ScoreFn(a, b)
}
