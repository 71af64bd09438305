package blame

import (
	"fmt"
	"strings"
	"time"
)

// Algorithm selects the line diff algorithm used by a Differ.
type Algorithm int

// Diff algorithms.
const (
	AlgorithmMyers Algorithm = iota
	AlgorithmRatcliff
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmMyers:
		return "myers"
	case AlgorithmRatcliff:
		return "ratcliff"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm returns the algorithm with the given name.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "myers":
		return AlgorithmMyers, nil
	case "ratcliff", "ratcliff-obershelp", "sequencematcher":
		return AlgorithmRatcliff, nil
	default:
		return 0, fmt.Errorf("unknown diff algorithm %q", name)
	}
}

// DefaultRenameThreshold is the minimum similarity for a rename match.
const DefaultRenameThreshold = 0.5

// Options configure one blame invocation.
type Options struct {
	Algorithm Algorithm
	Ranges    RangeSet  // Lines to attribute; the zero value is the whole file.
	Since     time.Time // Commits older than this are not looked past. Zero disables.

	// FollowRenames continues through parents where the path is absent by
	// matching a deleted path of similar content.
	FollowRenames   bool
	RenameThreshold float64 // Zero means DefaultRenameThreshold.

	Ignore RevisionSet
}

// DefaultOptions returns whole-file options with rename tracking enabled.
func DefaultOptions() Options {
	return Options{
		Algorithm:       AlgorithmMyers,
		Ranges:          WholeFile(),
		FollowRenames:   true,
		RenameThreshold: DefaultRenameThreshold,
	}
}

func (o Options) renameThreshold() float64 {
	if o.RenameThreshold <= 0 {
		return DefaultRenameThreshold
	}
	return o.RenameThreshold
}
