package core

import "context"

// TableReader is the surface the UI shell and the query-engine collaborator
// consume. Implementations must be safe for concurrent use; no ordering is
// guaranteed between distinct ReadRange calls, and callers discard stale
// results themselves.
type TableReader interface {
	// OpenSchema returns the column list of the file at path. Metadata-only:
	// it never scans row data.
	OpenSchema(ctx context.Context, path string) (*Schema, error)

	// RowCount returns the total number of rows in the file.
	RowCount(ctx context.Context, path string) (int64, error)

	// ReadRange returns up to limit rows starting at offset, in on-disk
	// order. A range past end of file is a valid empty result.
	ReadRange(ctx context.Context, path string, offset, limit int64) ([]Row, error)

	// Invalidate drops the cached handle for path; the next access re-opens
	// and re-parses metadata.
	Invalidate(path string)

	// InvalidateAll drops every cached handle.
	InvalidateAll()

	// Close releases all resources.
	Close() error
}
