package blame_test

import (
	"testing"

	"github.com/fwojciec/blame"
	"github.com/stretchr/testify/assert"
)

func TestOffset_Shift(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		offset blame.Offset
		in     blame.Range
		want   blame.Range
	}{
		{name: "zero", offset: 0, in: blame.Range{Start: 3, End: 5}, want: blame.Range{Start: 3, End: 5}},
		{name: "added", offset: blame.AddedLines(2), in: blame.Range{Start: 3, End: 5}, want: blame.Range{Start: 1, End: 3}},
		{name: "deleted", offset: blame.DeletedLines(2), in: blame.Range{Start: 3, End: 5}, want: blame.Range{Start: 5, End: 7}},
		{name: "to line zero", offset: blame.AddedLines(3), in: blame.Range{Start: 3, End: 4}, want: blame.Range{Start: 0, End: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.offset.Shift(tt.in))
		})
	}
}

func TestOffset_ShiftUnderflowPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		blame.AddedLines(4).Shift(blame.Range{Start: 3, End: 5})
	})
}

func TestOffset_Arithmetic(t *testing.T) {
	t.Parallel()

	o := blame.Offset(0).Add(3).Sub(5)

	assert.Equal(t, blame.DeletedLines(2), o)
	assert.Equal(t, "Deleted(2)", o.String())
	assert.Equal(t, "Added(1)", o.Add(3).String())
	assert.Equal(t, "Added(0)", blame.Offset(0).String())
}
