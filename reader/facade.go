package reader

import (
	"context"
	"time"

	"github.com/parqview/parqview-core/config"
	"github.com/parqview/parqview-core/core"
)

// Facade is the public entry point of the data-access core, combining the
// cache, the row-group index and the range reader behind the TableReader
// contract. All methods are synchronous and may block on file I/O; they are
// safe to call from multiple tasks simultaneously.
type Facade struct {
	cache *ReaderCache
	cfg   config.Config
}

var _ core.TableReader = (*Facade)(nil)

// New builds a facade over cache. The cache is injected so the composition
// root owns reader lifetime.
func New(cache *ReaderCache, cfg config.Config) *Facade {
	return &Facade{cache: cache, cfg: cfg}
}

func (f *Facade) OpenSchema(ctx context.Context, path string) (*core.Schema, error) {
	h, err := f.cache.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	return h.schema, nil
}

func (f *Facade) RowCount(ctx context.Context, path string) (int64, error) {
	h, err := f.cache.Get(ctx, path)
	if err != nil {
		return 0, err
	}
	return h.numRows(), nil
}

func (f *Facade) ReadRange(ctx context.Context, path string, offset, limit int64) ([]core.Row, error) {
	h, err := f.cache.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := readRange(ctx, h, offset, limit, f.cfg.ReadBatchSize, f.cfg.DecodeParallelism)
	if err != nil {
		return nil, err
	}
	core.Debugf(ctx, "read %s [%d, %d): %d rows in %v", path, offset, offset+limit, len(rows), time.Since(start))
	return rows, nil
}

// Stats returns the footer-level layout of the file for the schema sidebar.
func (f *Facade) Stats(ctx context.Context, path string) (FileStats, error) {
	h, err := f.cache.Get(ctx, path)
	if err != nil {
		return FileStats{}, err
	}
	return h.stats(), nil
}

func (f *Facade) Invalidate(path string) { f.cache.Invalidate(path) }

func (f *Facade) InvalidateAll() { f.cache.InvalidateAll() }

func (f *Facade) Close() error { return f.cache.Close() }
