// Package jsonl writes blame outcomes as JSON Lines.
package jsonl

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/fwojciec/blame"
)

// Compile-time interface verification.
var _ blame.Formatter = (*Formatter)(nil)

// Record is one entry of a blame outcome. Line numbers are 1-based.
type Record struct {
	Path         string         `json:"path"`
	Commit       blame.ObjectID `json:"commit"`
	StartLine    int            `json:"start_line"`
	SourceLine   int            `json:"source_line"`
	Lines        int            `json:"lines"`
	OriginalPath string         `json:"original_path,omitempty"`
	Unblamable   bool           `json:"unblamable,omitempty"`
}

// Formatter writes one Record per entry.
type Formatter struct{}

// NewFormatter creates a new Formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format encodes every entry of out as a line of JSON.
func (f *Formatter) Format(w io.Writer, path string, out *blame.Outcome) error {
	bw := bufio.NewWriter(w)
	encoder := json.NewEncoder(bw)
	for _, e := range out.Entries {
		rec := Record{
			Path:         path,
			Commit:       e.Commit,
			StartLine:    e.StartInBlamed + 1,
			SourceLine:   e.StartInSource + 1,
			Lines:        e.Len,
			OriginalPath: e.OriginalPath,
			Unblamable:   e.Unblamable,
		}
		if err := encoder.Encode(rec); err != nil {
			return err
		}
	}
	return bw.Flush()
}
