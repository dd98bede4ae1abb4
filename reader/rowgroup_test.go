package reader

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRange(t *testing.T) {
	groups := []int64{250, 250, 250, 250} // 1000 rows

	tests := []struct {
		name       string
		groupRows  []int64
		offset     int64
		limit      int64
		wantGroups []int
		wantSkip   int64
		wantRows   int64
	}{
		{
			name:       "whole file",
			groupRows:  groups,
			offset:     0,
			limit:      1000,
			wantGroups: []int{0, 1, 2, 3},
			wantRows:   1000,
		},
		{
			name:       "inside first group",
			groupRows:  groups,
			offset:     10,
			limit:      100,
			wantGroups: []int{0},
			wantSkip:   10,
			wantRows:   100,
		},
		{
			name:       "wholly inside middle group",
			groupRows:  groups,
			offset:     300,
			limit:      100,
			wantGroups: []int{1},
			wantSkip:   50,
			wantRows:   100,
		},
		{
			name:       "spans two groups",
			groupRows:  groups,
			offset:     200,
			limit:      100,
			wantGroups: []int{0, 1},
			wantSkip:   200,
			wantRows:   100,
		},
		{
			name:       "last group only",
			groupRows:  groups,
			offset:     900,
			limit:      50,
			wantGroups: []int{3},
			wantSkip:   150,
			wantRows:   50,
		},
		{
			name:       "starts exactly at group boundary",
			groupRows:  groups,
			offset:     500,
			limit:      10,
			wantGroups: []int{2},
			wantSkip:   0,
			wantRows:   10,
		},
		{
			name:      "offset at end of file",
			groupRows: groups,
			offset:    1000,
			limit:     50,
		},
		{
			name:      "offset past end of file",
			groupRows: groups,
			offset:    5000,
			limit:     50,
		},
		{
			name:      "zero limit",
			groupRows: groups,
			offset:    100,
			limit:     0,
		},
		{
			name:       "limit clamped to end of file",
			groupRows:  groups,
			offset:     950,
			limit:      100,
			wantGroups: []int{3},
			wantSkip:   200,
			wantRows:   50,
		},
		{
			name:       "limit overflow clamps instead of wrapping",
			groupRows:  groups,
			offset:     10,
			limit:      math.MaxInt64,
			wantGroups: []int{0, 1, 2, 3},
			wantSkip:   10,
			wantRows:   990,
		},
		{
			name:       "uneven groups",
			groupRows:  []int64{1, 999, 3},
			offset:     1000,
			limit:      10,
			wantGroups: []int{2},
			wantSkip:   0,
			wantRows:   3,
		},
		{
			name:      "no groups",
			groupRows: nil,
			offset:    0,
			limit:     10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := resolveRange(tt.groupRows, tt.offset, tt.limit)
			assert.Equal(t, tt.wantGroups, sel.groups)
			assert.Equal(t, tt.wantSkip, sel.offsetWithinFirst)
			assert.Equal(t, tt.wantRows, sel.rows)
		})
	}
}

func TestDescribeGroups(t *testing.T) {
	descs := describeGroups([]int64{10, 20, 30})

	assert.Len(t, descs, 3)
	assert.Equal(t, RowGroupDescriptor{Index: 0, RowCount: 10, StartRowGlobal: 0}, descs[0])
	assert.Equal(t, RowGroupDescriptor{Index: 1, RowCount: 20, StartRowGlobal: 10}, descs[1])
	assert.Equal(t, RowGroupDescriptor{Index: 2, RowCount: 30, StartRowGlobal: 30}, descs[2])

	// Cumulative invariant: each start equals the sum of preceding counts.
	var sum int64
	for _, d := range descs {
		assert.Equal(t, sum, d.StartRowGlobal)
		sum += d.RowCount
	}
}
