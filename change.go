package blame

// Change is one span of a diff between a parent and a child revision, in the
// child's line coordinates. It is one of Unchanged, AddedOrReplaced or Deleted.
type Change interface {
	isChange()
}

// Unchanged lines are byte-identical in the parent.
type Unchanged struct {
	Range Range
}

// AddedOrReplaced lines have no counterpart in the parent. Deleted is the
// number of parent lines they replace.
type AddedOrReplaced struct {
	Range   Range
	Deleted int
}

// Deleted marks Count parent lines removed just before child line At.
type Deleted struct {
	At    int
	Count int
}

func (Unchanged) isChange()       {}
func (AddedOrReplaced) isChange() {}
func (Deleted) isChange()         {}

// Classify reduces an opcode stream to changes relative to the child.
// Adjacent unchanged spans are coalesced.
func Classify(ops []Opcode) []Change {
	changes := make([]Change, 0, len(ops))
	for _, op := range ops {
		after := Range{Start: op.AfterStart, End: op.AfterEnd}
		switch op.Kind {
		case OpEqual:
			if after.IsEmpty() {
				continue
			}
			if n := len(changes); n > 0 {
				if prev, ok := changes[n-1].(Unchanged); ok && prev.Range.End == after.Start {
					changes[n-1] = Unchanged{Range: Range{Start: prev.Range.Start, End: after.End}}
					continue
				}
			}
			changes = append(changes, Unchanged{Range: after})
		case OpInsert:
			if after.IsEmpty() {
				continue
			}
			changes = append(changes, AddedOrReplaced{Range: after})
		case OpReplace:
			deleted := op.BeforeEnd - op.BeforeStart
			if after.IsEmpty() {
				if deleted > 0 {
					changes = append(changes, Deleted{At: after.Start, Count: deleted})
				}
				continue
			}
			changes = append(changes, AddedOrReplaced{Range: after, Deleted: deleted})
		case OpDelete:
			if deleted := op.BeforeEnd - op.BeforeStart; deleted > 0 {
				changes = append(changes, Deleted{At: op.AfterStart, Count: deleted})
			}
		}
	}
	return changes
}
