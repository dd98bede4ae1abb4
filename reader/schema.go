package reader

import (
	"errors"
	"io/fs"

	"github.com/parquet-go/parquet-go"

	"github.com/parqview/parqview-core/core"
)

// FileStats is the metadata surface behind the schema sidebar: row-group
// layout and byte sizes, all read from the footer.
type FileStats struct {
	Path      string
	RowCount  int64
	SizeBytes int64
	RowGroups []RowGroupDescriptor
}

// buildSchema maps the file's leaf columns to the viewer's schema and the
// per-column codecs. The mapping is a pure function of the format library's
// enumerated physical and logical types; unrecognized logical types fall
// back to the physical type's natural mapping, and fully unknown types fall
// back to string so no column is ever dropped.
func buildSchema(pf *parquet.File) (*core.Schema, []columnCodec) {
	var cols []core.Column
	var codecs []columnCodec
	walkLeaves("", pf.Schema().Fields(), func(name string, field parquet.Field) {
		kind, cc := classifyLeaf(field)
		cols = append(cols, core.Column{
			Name:         name,
			PhysicalType: field.Type().Kind().String(),
			Kind:         kind,
			Nullable:     field.Optional(),
		})
		codecs = append(codecs, cc)
	})
	return &core.Schema{Columns: cols}, codecs
}

func walkLeaves(prefix string, fields []parquet.Field, fn func(string, parquet.Field)) {
	for _, f := range fields {
		name := f.Name()
		if prefix != "" {
			name = prefix + "." + name
		}
		if f.Leaf() {
			fn(name, f)
			continue
		}
		walkLeaves(name, f.Fields(), fn)
	}
}

func classifyLeaf(field parquet.Field) (core.Kind, columnCodec) {
	t := field.Type()
	cc := columnCodec{physical: t.Kind()}

	if lt := t.LogicalType(); lt != nil {
		switch {
		case lt.UTF8 != nil, lt.Enum != nil, lt.Json != nil:
			cc.kind = core.KindString
			return cc.kind, cc
		case lt.Date != nil:
			cc.kind = core.KindDate
			return cc.kind, cc
		case lt.Timestamp != nil:
			cc.kind = core.KindTimestamp
			switch {
			case lt.Timestamp.Unit.Millis != nil:
				cc.tsUnit = unitMillis
			case lt.Timestamp.Unit.Micros != nil:
				cc.tsUnit = unitMicros
			default:
				cc.tsUnit = unitNanos
			}
			return cc.kind, cc
		case lt.Decimal != nil:
			cc.kind = core.KindDecimal
			cc.decScale = lt.Decimal.Scale
			return cc.kind, cc
		case lt.Integer != nil:
			cc.kind = core.KindInt64
			return cc.kind, cc
		case lt.UUID != nil, lt.Bson != nil:
			cc.kind = core.KindBytes
			return cc.kind, cc
		}
	}

	switch t.Kind() {
	case parquet.Boolean:
		cc.kind = core.KindBool
	case parquet.Int32, parquet.Int64:
		cc.kind = core.KindInt64
	case parquet.Int96:
		// Legacy Hive/Impala writers store timestamps as INT96.
		cc.kind = core.KindTimestamp
		cc.int96 = true
	case parquet.Float, parquet.Double:
		cc.kind = core.KindFloat64
	case parquet.ByteArray, parquet.FixedLenByteArray:
		cc.kind = core.KindBytes
	default:
		cc.kind = core.KindString
	}
	return cc.kind, cc
}

// classifyOpenErr maps a filesystem error from opening path to the
// FileOpenError taxonomy. Footer parse failures are classified at the call
// site as CorruptFooter.
func classifyOpenErr(path string, err error) *core.FileOpenError {
	kind := core.OpenNotReadable
	if errors.Is(err, fs.ErrNotExist) {
		kind = core.OpenNotFound
	}
	return &core.FileOpenError{Path: path, Kind: kind, Err: err}
}
