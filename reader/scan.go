package reader

import (
	"context"

	"github.com/parqview/parqview-core/core"
)

// Batch is one increment of a full-file scan.
type Batch struct {
	Offset int64
	Rows   []core.Row
}

// Scan walks the whole file in batches that never straddle a row group, so
// a superseding request cancels the scan at group granularity instead of
// waiting for a full-file decode. fn returning false stops the scan early
// with no error; context cancellation stops it with ctx.Err().
//
// This is the entry point search and filter collaborators build on instead
// of requesting all rows in one call.
func (f *Facade) Scan(ctx context.Context, path string, fn func(Batch) bool) error {
	h, err := f.cache.Get(ctx, path)
	if err != nil {
		return err
	}

	for _, d := range describeGroups(h.groupRowCounts()) {
		var done int64
		for done < d.RowCount {
			if err := ctx.Err(); err != nil {
				return err
			}
			take := min(f.cfg.ScanBatchRows, d.RowCount-done)
			rows, err := readRange(ctx, h, d.StartRowGlobal+done, take, f.cfg.ReadBatchSize, 1)
			if err != nil {
				return err
			}
			if !fn(Batch{Offset: d.StartRowGlobal + done, Rows: rows}) {
				return nil
			}
			done += take
		}
	}
	return nil
}
