package blame

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Range is a half-open interval [Start, End) of 0-based line indices.
type Range struct {
	Start int
	End   int
}

// Len returns the number of lines in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty returns true if the range has no lines.
func (r Range) IsEmpty() bool {
	return r.End <= r.Start
}

func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// intersect returns the overlap of r and o, which may be empty.
func (r Range) intersect(o Range) Range {
	return Range{Start: max(r.Start, o.Start), End: min(r.End, o.End)}
}

// RangeSet is the set of lines of the blamed file to attribute. The zero
// value is the whole file.
type RangeSet struct {
	partial bool
	ranges  []Range // sorted, non-overlapping, non-adjacent
}

// WholeFile returns a set covering every line of the file.
func WholeFile() RangeSet {
	return RangeSet{}
}

// FromOneBasedRanges creates a set from 1-based inclusive [first, last] pairs,
// as used by git's -L option. No pairs means the whole file.
func FromOneBasedRanges(pairs ...[2]int) (RangeSet, error) {
	if len(pairs) == 0 {
		return WholeFile(), nil
	}
	rs := RangeSet{partial: true}
	for _, p := range pairs {
		if err := rs.Add(p[0], p[1]); err != nil {
			return RangeSet{}, err
		}
	}
	return rs, nil
}

// IsWholeFile returns true if the set covers every line.
func (rs RangeSet) IsWholeFile() bool {
	return !rs.partial
}

// Ranges returns a copy of the stored 0-based ranges, or nil for the whole file.
func (rs RangeSet) Ranges() []Range {
	if !rs.partial {
		return nil
	}
	return append([]Range(nil), rs.ranges...)
}

// Add merges the 1-based inclusive range [first, last] into the set.
func (rs *RangeSet) Add(first, last int) error {
	if !rs.partial {
		return ErrWholeFileRange
	}
	if first < 1 || last < first {
		return fmt.Errorf("%w: %d,%d", ErrInvalidRange, first, last)
	}
	rs.merge(Range{Start: first - 1, End: last})
	return nil
}

// merge inserts r, coalescing every stored range it overlaps or touches.
func (rs *RangeSet) merge(r Range) {
	merged := make([]Range, 0, len(rs.ranges)+1)
	for _, existing := range rs.ranges {
		if r.Start <= existing.End && existing.Start <= r.End {
			r = Range{Start: min(r.Start, existing.Start), End: max(r.End, existing.End)}
			continue
		}
		merged = append(merged, existing)
	}
	merged = append(merged, r)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Start < merged[j].Start
	})
	rs.ranges = merged
}

// Materialize returns the concrete ranges for a file with total lines.
func (rs RangeSet) Materialize(total int) ([]Range, error) {
	if !rs.partial {
		if total == 0 {
			return nil, nil
		}
		return []Range{{Start: 0, End: total}}, nil
	}
	for _, r := range rs.ranges {
		if r.End > total {
			return nil, fmt.Errorf("%w: lines %d-%d, file has %d lines", ErrRangeOutOfBounds, r.Start+1, r.End, total)
		}
	}
	return rs.Ranges(), nil
}

// ParseRange parses git -L notation: "N", "N,M" or "N,+K" (K lines from N).
// The result is a 1-based inclusive pair suitable for FromOneBasedRanges.
func ParseRange(s string) ([2]int, error) {
	s = strings.TrimSpace(s)
	startStr, endStr, hasEnd := strings.Cut(s, ",")
	start, err := strconv.Atoi(strings.TrimSpace(startStr))
	if err != nil {
		return [2]int{}, fmt.Errorf("%w: start %q: %v", ErrInvalidRange, startStr, err)
	}
	if !hasEnd {
		return [2]int{start, start}, nil
	}
	endStr = strings.TrimSpace(endStr)
	if count, ok := strings.CutPrefix(endStr, "+"); ok {
		n, err := strconv.Atoi(count)
		if err != nil || n < 1 {
			return [2]int{}, fmt.Errorf("%w: count %q", ErrInvalidRange, count)
		}
		return [2]int{start, start + n - 1}, nil
	}
	end, err := strconv.Atoi(endStr)
	if err != nil {
		return [2]int{}, fmt.Errorf("%w: end %q: %v", ErrInvalidRange, endStr, err)
	}
	return [2]int{start, end}, nil
}
