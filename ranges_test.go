package blame_test

import (
	"testing"

	"github.com/fwojciec/blame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRange(t *testing.T) {
	t.Parallel()

	r := blame.Range{Start: 2, End: 5}

	assert.Equal(t, 3, r.Len())
	assert.False(t, r.IsEmpty())
	assert.True(t, blame.Range{Start: 4, End: 4}.IsEmpty())
	assert.Equal(t, "2..5", r.String())
}

func TestWholeFile(t *testing.T) {
	t.Parallel()

	rs := blame.WholeFile()

	assert.True(t, rs.IsWholeFile())
	assert.Nil(t, rs.Ranges())
	assert.ErrorIs(t, rs.Add(1, 2), blame.ErrWholeFileRange)

	got, err := rs.Materialize(3)
	require.NoError(t, err)
	assert.Equal(t, []blame.Range{{Start: 0, End: 3}}, got)

	got, err = rs.Materialize(0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFromOneBasedRanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		pairs [][2]int
		want  []blame.Range
	}{
		{name: "single", pairs: [][2]int{{1, 2}}, want: []blame.Range{{Start: 0, End: 2}}},
		{name: "single line", pairs: [][2]int{{3, 3}}, want: []blame.Range{{Start: 2, End: 3}}},
		{name: "disjoint sorted", pairs: [][2]int{{8, 9}, {1, 2}}, want: []blame.Range{{Start: 0, End: 2}, {Start: 7, End: 9}}},
		{name: "overlapping merged", pairs: [][2]int{{1, 4}, {3, 6}}, want: []blame.Range{{Start: 0, End: 6}}},
		{name: "adjacent merged", pairs: [][2]int{{1, 2}, {3, 4}}, want: []blame.Range{{Start: 0, End: 4}}},
		{name: "bridging merged", pairs: [][2]int{{1, 2}, {6, 7}, {2, 6}}, want: []blame.Range{{Start: 0, End: 7}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rs, err := blame.FromOneBasedRanges(tt.pairs...)
			require.NoError(t, err)
			assert.False(t, rs.IsWholeFile())
			assert.Equal(t, tt.want, rs.Ranges())
		})
	}
}

func TestFromOneBasedRanges_NoPairsIsWholeFile(t *testing.T) {
	t.Parallel()

	rs, err := blame.FromOneBasedRanges()

	require.NoError(t, err)
	assert.True(t, rs.IsWholeFile())
}

func TestFromOneBasedRanges_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pair [2]int
	}{
		{name: "zero start", pair: [2]int{0, 2}},
		{name: "inverted", pair: [2]int{5, 2}},
		{name: "negative", pair: [2]int{-1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := blame.FromOneBasedRanges(tt.pair)
			assert.ErrorIs(t, err, blame.ErrInvalidRange)
		})
	}
}

func TestRangeSet_Materialize(t *testing.T) {
	t.Parallel()

	rs, err := blame.FromOneBasedRanges([2]int{2, 3})
	require.NoError(t, err)

	got, err := rs.Materialize(3)
	require.NoError(t, err)
	assert.Equal(t, []blame.Range{{Start: 1, End: 3}}, got)

	_, err = rs.Materialize(2)
	assert.ErrorIs(t, err, blame.ErrRangeOutOfBounds)
}

func TestRangeSet_RangesIsACopy(t *testing.T) {
	t.Parallel()

	rs, err := blame.FromOneBasedRanges([2]int{1, 1})
	require.NoError(t, err)

	got := rs.Ranges()
	got[0].End = 100

	assert.Equal(t, []blame.Range{{Start: 0, End: 1}}, rs.Ranges())
}

func TestParseRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  [2]int
	}{
		{input: "5", want: [2]int{5, 5}},
		{input: "1,5", want: [2]int{1, 5}},
		{input: " 2 , 4 ", want: [2]int{2, 4}},
		{input: "10,+3", want: [2]int{10, 12}},
		{input: "7,+1", want: [2]int{7, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := blame.ParseRange(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRange_Errors(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "x", "1,y", "1,+0", "1,+z"} {
		_, err := blame.ParseRange(input)
		assert.ErrorIs(t, err, blame.ErrInvalidRange, input)
	}
}
