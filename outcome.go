package blame

import "sort"

// Entry attributes a contiguous span of the blamed file to the commit that
// introduced it. Both ranges have Len lines of identical content.
type Entry struct {
	StartInBlamed int
	StartInSource int
	Len           int
	Commit        ObjectID
	OriginalPath  string // Set when the path differed in Commit

	// Unblamable entries could only be attributed to an ignored commit. Their
	// Commit is zero.
	Unblamable bool
}

// RangeInBlamed returns the lines the entry spans in the blamed file.
func (e Entry) RangeInBlamed() Range {
	return Range{Start: e.StartInBlamed, End: e.StartInBlamed + e.Len}
}

// RangeInSource returns the lines the entry spans in Commit's version of the file.
func (e Entry) RangeInSource() Range {
	return Range{Start: e.StartInSource, End: e.StartInSource + e.Len}
}

// Statistics count the work performed by one blame invocation.
type Statistics struct {
	CommitsTraversed int `json:"commits_traversed"`
	TreesDecoded     int `json:"trees_decoded"`
	TreesDiffed      int `json:"trees_diffed"`
	BlobsDiffed      int `json:"blobs_diffed"`
}

// Outcome is the result of blaming a file.
type Outcome struct {
	Entries    []Entry // Ordered by StartInBlamed
	Blob       []byte  // Content of the blamed file
	Statistics Statistics
}

// Lines returns the blamed file split the same way it was diffed.
func (o *Outcome) Lines() []string {
	return Lines(o.Blob)
}

// EntryLines pairs an entry with its lines of the blamed file.
type EntryLines struct {
	Entry Entry
	Lines []string
}

// EntriesWithLines returns every entry together with the lines it covers.
func (o *Outcome) EntriesWithLines() []EntryLines {
	lines := o.Lines()
	result := make([]EntryLines, 0, len(o.Entries))
	for _, e := range o.Entries {
		r := e.RangeInBlamed()
		result = append(result, EntryLines{Entry: e, Lines: lines[r.Start:r.End]})
	}
	return result
}

// assemble orders entries by position and coalesces neighbours that continue
// each other in the same commit.
func assemble(entries []Entry) []Entry {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].StartInBlamed < entries[j].StartInBlamed
	})
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if n := len(out); n > 0 {
			prev := &out[n-1]
			if prev.Commit == e.Commit &&
				prev.OriginalPath == e.OriginalPath &&
				prev.Unblamable == e.Unblamable &&
				prev.StartInBlamed+prev.Len == e.StartInBlamed &&
				prev.StartInSource+prev.Len == e.StartInSource {
				prev.Len += e.Len
				continue
			}
		}
		out = append(out, e)
	}
	return out
}
