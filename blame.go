// Package blame provides domain types and the line-provenance engine that
// attributes every line of a file to the commit that last introduced it.
package blame

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"time"
)

// ObjectID is a content hash identifying a commit, tree or blob.
type ObjectID [20]byte

// String returns the full lowercase hex form of the id.
func (id ObjectID) String() string {
	return hex.EncodeToString(id[:])
}

// Short returns the first n hex characters of the id.
func (id ObjectID) Short(n int) string {
	s := id.String()
	if n <= 0 || n >= len(s) {
		return s
	}
	return s[:n]
}

// IsZero returns true for the all-zero id.
func (id ObjectID) IsZero() bool {
	return id == ObjectID{}
}

// ParseObjectID parses a 40 character hex string.
func ParseObjectID(s string) (ObjectID, error) {
	var id ObjectID
	if len(s) != 2*len(id) {
		return id, fmt.Errorf("invalid object id %q: want %d hex characters", s, 2*len(id))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, fmt.Errorf("invalid object id %q: %w", s, err)
	}
	return id, nil
}

// MarshalText encodes the id as hex, so ids serialize as JSON strings.
func (id ObjectID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText decodes a hex id.
func (id *ObjectID) UnmarshalText(text []byte) error {
	parsed, err := ParseObjectID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Commit is the part of a commit object the engine needs.
type Commit struct {
	ID      ObjectID
	Tree    ObjectID
	Parents []ObjectID // In declared order; parent visitation follows it.
	Time    time.Time  // Committer time
}

// ChangeOp represents the kind of a tree-level change.
type ChangeOp int

// Tree change operations.
const (
	TreeModified ChangeOp = iota
	TreeAdded
	TreeDeleted
)

// TreeChange describes one path that differs between two trees.
type TreeChange struct {
	Op      ChangeOp
	OldPath string   // Empty for TreeAdded
	NewPath string   // Empty for TreeDeleted
	OldBlob ObjectID // Zero for TreeAdded
	NewBlob ObjectID // Zero for TreeDeleted
}

// Repository provides read access to the commit graph and its objects.
type Repository interface {
	// Commit returns the commit with the given id.
	Commit(ctx context.Context, id ObjectID) (*Commit, error)
	// EntryByPath returns the blob id stored at path in the given tree.
	// The boolean is false if the path does not exist or is not a file.
	EntryByPath(ctx context.Context, tree ObjectID, path string) (ObjectID, bool, error)
	// Blob returns the content of the blob with the given id.
	Blob(ctx context.Context, id ObjectID) ([]byte, error)
	// DiffTree returns the file-level changes needed to turn oldTree into newTree.
	DiffTree(ctx context.Context, oldTree, newTree ObjectID) ([]TreeChange, error)
}

// Service computes blame outcomes. Blamer is the engine; other
// implementations wrap it.
type Service interface {
	Blame(ctx context.Context, commit ObjectID, path string, opts Options) (*Outcome, error)
}

// Resolver turns a revision name into a commit id.
type Resolver interface {
	Resolve(rev string) (ObjectID, error)
}

// OpKind represents the kind of a diff opcode.
type OpKind int

// Opcode kinds.
const (
	OpEqual OpKind = iota
	OpInsert
	OpDelete
	OpReplace
)

// Opcode describes how before[BeforeStart:BeforeEnd] relates to
// after[AfterStart:AfterEnd]. Opcodes are ordered and cover both sequences.
type Opcode struct {
	Kind        OpKind
	BeforeStart int
	BeforeEnd   int
	AfterStart  int
	AfterEnd    int
}

// Differ computes a line-level diff between two token sequences.
type Differ interface {
	Diff(before, after []string, algo Algorithm) []Opcode
}

// Similarity scores how alike two blobs are, from 0 (unrelated) to 1 (identical).
type Similarity interface {
	Score(a, b []byte) float64
}

// Lines splits a blob into line tokens, keeping each line terminator. A final
// line without a terminator is still a token.
func Lines(blob []byte) []string {
	if len(blob) == 0 {
		return nil
	}
	lines := make([]string, 0, bytes.Count(blob, []byte{'\n'})+1)
	for len(blob) > 0 {
		i := bytes.IndexByte(blob, '\n')
		if i < 0 {
			lines = append(lines, string(blob))
			break
		}
		lines = append(lines, string(blob[:i+1]))
		blob = blob[i+1:]
	}
	return lines
}
