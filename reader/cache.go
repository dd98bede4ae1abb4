package reader

import (
	"context"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/spf13/afero"

	"github.com/parqview/parqview-core/core"
)

// ReaderCache maps file paths to lazily constructed handles. Construction
// (open + footer parse) is the most expensive operation in the system, so a
// handle is built at most once per path even under racing callers. The
// cache holds no eviction policy: the set of open files is UI-driven and
// small, but lastAccessed is tracked so one can be added without changing
// callers.
//
// The cache is owned by the application's composition root and closed with
// it; it is never a package global.
type ReaderCache struct {
	fs afero.Fs

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	path         string
	once         sync.Once
	handle       *fileHandle
	err          error
	lastAccessed time.Time
}

// discard closes the entry's handle after the entry has been removed from
// the map. Running the once first both waits out an in-flight construction
// and, when construction never started, consumes the once so a parked Get
// sees the empty entry and retries.
func (e *cacheEntry) discard() {
	e.once.Do(func() {})
	if e.handle != nil {
		_ = e.handle.close()
	}
}

// fileHandle wraps an open file plus its parsed footer metadata. Once
// constructed it is read-only: concurrent range reads obtain their own row
// cursors and share no positional state through the handle.
type fileHandle struct {
	path      string
	file      afero.File
	pf        *parquet.File
	schema    *core.Schema
	codecs    []columnCodec
	groupRows []int64
}

func (h *fileHandle) pathName() string          { return h.path }
func (h *fileHandle) numRows() int64            { return h.pf.NumRows() }
func (h *fileHandle) groupRowCounts() []int64   { return h.groupRows }
func (h *fileHandle) columnCodecs() []columnCodec { return h.codecs }

func (h *fileHandle) rowGroup(i int) parquet.RowGroup { return h.pf.RowGroups()[i] }

func (h *fileHandle) stats() FileStats {
	st := FileStats{
		Path:      h.path,
		RowCount:  h.pf.NumRows(),
		RowGroups: describeGroups(h.groupRows),
	}
	for _, rg := range h.pf.Metadata().RowGroups {
		st.SizeBytes += rg.TotalByteSize
	}
	return st
}

func (h *fileHandle) close() error { return h.file.Close() }

// NewReaderCache builds a cache opening files through fs. Production wires
// afero.NewOsFs(); tests wire a MemMapFs.
func NewReaderCache(fs afero.Fs) *ReaderCache {
	return &ReaderCache{fs: fs, entries: make(map[string]*cacheEntry)}
}

// Get returns the cached handle for path, constructing it on first access.
// Construction happens outside the map lock so opening one file never
// blocks reads of another. A failed construction leaves no entry behind:
// the next Get retries from scratch.
func (c *ReaderCache) Get(ctx context.Context, path string) (*fileHandle, error) {
	for {
		c.mu.Lock()
		e, ok := c.entries[path]
		if !ok {
			e = &cacheEntry{path: path}
			c.entries[path] = e
		}
		e.lastAccessed = time.Now()
		c.mu.Unlock()

		e.once.Do(func() {
			e.handle, e.err = c.open(ctx, path)
		})
		if e.handle == nil && e.err == nil {
			// The entry was invalidated before construction started and
			// its once was consumed by the invalidation. Retry against a
			// fresh entry.
			continue
		}
		if e.err != nil {
			c.mu.Lock()
			if cur, ok := c.entries[path]; ok && cur == e {
				delete(c.entries, path)
			}
			c.mu.Unlock()
			return nil, e.err
		}
		return e.handle, nil
	}
}

func (c *ReaderCache) open(ctx context.Context, path string) (*fileHandle, error) {
	start := time.Now()

	f, err := c.fs.Open(path)
	if err != nil {
		return nil, classifyOpenErr(path, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, classifyOpenErr(path, err)
	}

	pf, err := parquet.OpenFile(f, st.Size(),
		parquet.SkipPageIndex(true),
		parquet.SkipBloomFilters(true),
	)
	if err != nil {
		_ = f.Close()
		return nil, &core.FileOpenError{Path: path, Kind: core.OpenCorruptFooter, Err: err}
	}

	schema, codecs := buildSchema(pf)
	groups := pf.RowGroups()
	groupRows := make([]int64, len(groups))
	for i, rg := range groups {
		groupRows[i] = rg.NumRows()
	}

	core.Debugf(ctx, "opened %s: %d rows, %d row groups, %d columns in %v",
		path, pf.NumRows(), len(groups), len(schema.Columns), time.Since(start))

	return &fileHandle{
		path:      path,
		file:      f,
		pf:        pf,
		schema:    schema,
		codecs:    codecs,
		groupRows: groupRows,
	}, nil
}

// Invalidate drops the handle for path and closes its file. If the entry is
// still constructing, Invalidate waits for the construction to finish so the
// handle cannot be published after the entry is dropped and leak its
// descriptor. In-flight reads against the dropped handle may fail with
// IOFailure; callers retry, which re-opens and re-parses metadata.
func (c *ReaderCache) Invalidate(path string) {
	c.mu.Lock()
	e, ok := c.entries[path]
	if ok {
		delete(c.entries, path)
	}
	c.mu.Unlock()

	if ok {
		e.discard()
	}
}

// InvalidateAll drops every cached handle, waiting out in-flight
// constructions the same way Invalidate does.
func (c *ReaderCache) InvalidateAll() {
	c.mu.Lock()
	dropped := c.entries
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()

	for _, e := range dropped {
		e.discard()
	}
}

// Close releases all handles. The cache remains usable afterwards, but the
// owning composition root is expected to drop it.
func (c *ReaderCache) Close() error {
	c.InvalidateAll()
	return nil
}

// Len reports how many handles are currently cached.
func (c *ReaderCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
