package blame

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// RevisionSet is a set of commits. Commits in the ignore set are traversed
// but never become the attributed commit of an entry.
type RevisionSet map[ObjectID]struct{}

// NewRevisionSet returns a set holding ids.
func NewRevisionSet(ids ...ObjectID) RevisionSet {
	s := make(RevisionSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s RevisionSet) Add(id ObjectID) {
	s[id] = struct{}{}
}

// Contains returns true if id is in the set. A nil set is empty.
func (s RevisionSet) Contains(id ObjectID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of commits in the set.
func (s RevisionSet) Len() int {
	return len(s)
}

// ParseIgnoreRevs reads the .git-blame-ignore-revs format: one full hex
// commit id per line. Blank lines and text after '#' are skipped.
func ParseIgnoreRevs(r io.Reader) (RevisionSet, error) {
	set := NewRevisionSet()
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line, _, _ := strings.Cut(scanner.Text(), "#")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		id, err := ParseObjectID(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		set.Add(id)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return set, nil
}
