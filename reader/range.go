package reader

import (
	"context"
	"errors"
	"io"

	"github.com/parquet-go/parquet-go"
	"golang.org/x/sync/errgroup"

	"github.com/parqview/parqview-core/core"
)

// tableHandle is what a range read needs from an open file. Tests wrap it
// to count which row groups get decoded.
type tableHandle interface {
	pathName() string
	numRows() int64
	groupRowCounts() []int64
	rowGroup(i int) parquet.RowGroup
	columnCodecs() []columnCodec
}

// readRange materializes the half-open row range [offset, offset+limit).
// Only row groups overlapping the range are decoded; selected groups decode
// concurrently (bounded by parallelism) into per-group slices that are
// concatenated in group order, preserving on-disk row order. Returns fewer
// than limit rows at end of file.
func readRange(ctx context.Context, h tableHandle, offset, limit int64, batchSize, parallelism int) ([]core.Row, error) {
	sel := resolveRange(h.groupRowCounts(), offset, limit)
	if sel.rows == 0 {
		return []core.Row{}, nil
	}

	groupRows := h.groupRowCounts()
	skips := make([]int64, len(sel.groups))
	counts := make([]int64, len(sel.groups))
	need := sel.rows
	for i, gi := range sel.groups {
		var skip int64
		if i == 0 {
			skip = sel.offsetWithinFirst
		}
		take := min(groupRows[gi]-skip, need)
		skips[i], counts[i] = skip, take
		need -= take
	}

	parts := make([][]core.Row, len(sel.groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(parallelism, 1))
	for i, gi := range sel.groups {
		g.Go(func() error {
			rows, err := decodeGroup(gctx, h, gi, skips[i], counts[i], batchSize)
			if err != nil {
				return err
			}
			parts[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]core.Row, 0, sel.rows)
	for _, part := range parts {
		out = append(out, part...)
	}
	return out, nil
}

// decodeGroup reads count rows from one row group, skipping the first skip
// rows via a seek instead of decoding them.
func decodeGroup(ctx context.Context, h tableHandle, group int, skip, count int64, batchSize int) ([]core.Row, error) {
	codecs := h.columnCodecs()
	rows := h.rowGroup(group).Rows()
	defer func() { _ = rows.Close() }()

	if skip > 0 {
		if err := rows.SeekToRow(skip); err != nil {
			return nil, &core.DataReadError{Path: h.pathName(), Group: group, Kind: core.ReadIOFailure, Err: err}
		}
	}

	out := make([]core.Row, 0, count)
	buf := make([]parquet.Row, max(batchSize, 1))
	for int64(len(out)) < count {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := rows.ReadRows(buf)
		for _, prow := range buf[:n] {
			if int64(len(out)) >= count {
				break
			}
			out = append(out, convertRow(prow, codecs))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &core.DataReadError{Path: h.pathName(), Group: group, Kind: core.ReadCorruptRowGroup, Err: err}
		}
		if n == 0 {
			break
		}
	}
	return out, nil
}

// convertRow turns one raw row into viewer values, placing each value by
// its leaf column index. All occurrences of a repeated leaf share one
// column index, so a repeated column surfaces as its last element; the
// grid shows one cell per leaf, not an expanded list. Row materialization
// is total: codec fallbacks guarantee no cell ever fails the row.
func convertRow(prow parquet.Row, codecs []columnCodec) core.Row {
	row := make(core.Row, len(codecs))
	for i, cc := range codecs {
		row[i] = core.NullValue(cc.kind)
	}
	for _, v := range prow {
		if ci := v.Column(); ci >= 0 && ci < len(codecs) {
			row[ci] = codecs[ci].decode(v)
		}
	}
	return row
}
