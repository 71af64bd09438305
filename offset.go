package blame

import "fmt"

// Offset is the line shift between a newer revision of a file and an older
// one at some position. Positive values count lines added in the newer
// revision, negative values lines deleted from it.
type Offset int

// AddedLines returns an offset of n added lines.
func AddedLines(n int) Offset {
	return Offset(n)
}

// DeletedLines returns an offset of n deleted lines.
func DeletedLines(n int) Offset {
	return Offset(-n)
}

// Add returns the offset after r more lines were added.
func (o Offset) Add(r int) Offset {
	return o + Offset(r)
}

// Sub returns the offset after r more lines were deleted.
func (o Offset) Sub(r int) Offset {
	return o - Offset(r)
}

// Shift translates r from the newer revision into the older one. Shifting
// below line zero is a bug in the caller and panics.
func (o Offset) Shift(r Range) Range {
	if r.Start < int(o) {
		panic(fmt.Sprintf("blame: shifting %v by %v underflows", r, o))
	}
	return Range{Start: r.Start - int(o), End: r.End - int(o)}
}

func (o Offset) String() string {
	if o < 0 {
		return fmt.Sprintf("Deleted(%d)", -int(o))
	}
	return fmt.Sprintf("Added(%d)", int(o))
}
