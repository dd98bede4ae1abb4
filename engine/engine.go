// Package engine is the query-engine collaborator of the viewer. Whole-file
// sorting and filtering are pushed down to DuckDB's read_parquet over the
// same files the data-access core serves; the core itself exposes no SQL
// surface.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/parqview/parqview-core/core"
)

// Engine wraps an embedded DuckDB instance.
type Engine struct {
	db *sql.DB
}

// New opens an in-memory DuckDB instance.
func New() (*Engine, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize DuckDB: %w", err)
	}
	return &Engine{db: db}, nil
}

var whitespace = regexp.MustCompile(`\s+`)

// RewriteQuery splices read_parquet over paths in place of the named table
// in a FROM clause. No other SQL rewriting happens here; predicates, sorts
// and aggregates pass through to DuckDB untouched.
func RewriteQuery(query, table string, paths []string) string {
	var files strings.Builder
	for i, p := range paths {
		if i > 0 {
			files.WriteString(", ")
		}
		files.WriteString("'" + strings.ReplaceAll(p, "'", "''") + "'")
	}
	source := fmt.Sprintf("read_parquet([%s], union_by_name=true)", files.String())

	tableRegex := regexp.MustCompile(`(?i)\bFROM\s+` + regexp.QuoteMeta(table) + `\b`)
	return tableRegex.ReplaceAllString(query, "FROM "+source)
}

// Query executes a query against the given parquet files, with table as the
// name the query refers to them by. Results come back row-major as
// column-name keyed maps.
func (e *Engine) Query(ctx context.Context, query, table string, paths []string) ([]map[string]any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to query")
	}

	query = strings.TrimSpace(whitespace.ReplaceAllString(query, " "))
	duckdbQuery := RewriteQuery(query, table, paths)

	start := time.Now()
	rows, err := e.db.QueryContext(ctx, duckdbQuery)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var result []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	core.Debugf(ctx, "engine query over %d files in %v", len(paths), time.Since(start))
	return result, nil
}

// Close releases the DuckDB instance.
func (e *Engine) Close() error {
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}
