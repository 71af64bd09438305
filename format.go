package blame

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Formatter renders the outcome of blaming path.
type Formatter interface {
	Format(w io.Writer, path string, out *Outcome) error
}

// PorcelainFormatter writes a machine-readable format modelled on
// git blame --porcelain. Line numbers are 1-based.
type PorcelainFormatter struct{}

// Format writes one header per line, a filename header at the start of
// every entry, and each line prefixed by a tab.
func (f *PorcelainFormatter) Format(w io.Writer, path string, out *Outcome) error {
	bw := bufio.NewWriter(w)
	for _, el := range out.EntriesWithLines() {
		e := el.Entry
		for i, line := range el.Lines {
			if i == 0 {
				fmt.Fprintf(bw, "%s %d %d %d\n", e.Commit, e.StartInSource+1, e.StartInBlamed+1, e.Len)
				if e.Unblamable {
					bw.WriteString("unblamable\n")
				}
				fmt.Fprintf(bw, "filename %s\n", entryPath(path, e))
			} else {
				fmt.Fprintf(bw, "%s %d %d\n", e.Commit, e.StartInSource+i+1, e.StartInBlamed+i+1)
			}
			bw.WriteString("\t")
			bw.WriteString(strings.TrimSuffix(line, "\n"))
			bw.WriteString("\n")
		}
	}
	return bw.Flush()
}

// entryPath returns the path the entry's lines had in its commit.
func entryPath(path string, e Entry) string {
	if e.OriginalPath != "" {
		return e.OriginalPath
	}
	return path
}
