// Package reader implements the columnar data-access core of the viewer:
// opening a parquet file, exposing its schema and row count from footer
// metadata alone, and serving arbitrary row ranges as typed values without
// materializing the whole file.
package reader

// RowGroupDescriptor describes one horizontal partition of a file. Groups
// are contiguous and cover [0, totalRows) with no gaps or overlaps.
type RowGroupDescriptor struct {
	Index          int
	RowCount       int64
	StartRowGlobal int64
}

// rangeSelection is the outcome of resolving a row range against the
// row-group layout: which groups overlap the range, how many leading rows
// of the first selected group to skip, and the clamped row count.
type rangeSelection struct {
	groups            []int
	offsetWithinFirst int64
	rows              int64
}

// resolveRange picks the minimal set of row groups overlapping the
// half-open range [offset, offset+limit). Ranges past end of file and zero
// limits resolve to an empty selection, never an error. offset+limit is
// clamped to the total row count, including on int64 overflow.
func resolveRange(groupRows []int64, offset, limit int64) rangeSelection {
	var total int64
	for _, n := range groupRows {
		total += n
	}
	if offset < 0 || offset >= total || limit <= 0 {
		return rangeSelection{}
	}

	end := offset + limit
	if end < offset || end > total {
		end = total
	}

	sel := rangeSelection{rows: end - offset}
	var start int64
	for i, n := range groupRows {
		if start < end && start+n > offset {
			if len(sel.groups) == 0 {
				sel.offsetWithinFirst = offset - start
			}
			sel.groups = append(sel.groups, i)
		}
		start += n
		if start >= end {
			break
		}
	}
	return sel
}

// describeGroups derives the cumulative descriptor list from per-group row
// counts.
func describeGroups(groupRows []int64) []RowGroupDescriptor {
	descs := make([]RowGroupDescriptor, len(groupRows))
	var start int64
	for i, n := range groupRows {
		descs[i] = RowGroupDescriptor{Index: i, RowCount: n, StartRowGlobal: start}
		start += n
	}
	return descs
}
