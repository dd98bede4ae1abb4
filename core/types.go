package core

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the tag of a Value. It is fixed per column when the schema is
// opened and never changes for the lifetime of the file handle.
type Kind int

const (
	KindBool Kind = iota
	KindInt64
	KindFloat64
	KindString
	KindBytes
	KindDate
	KindTimestamp
	KindDecimal
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindDate:
		return "date"
	case KindTimestamp:
		return "timestamp"
	case KindDecimal:
		return "decimal"
	}
	return "unknown"
}

// Column describes one column of an open file. PhysicalType is the on-disk
// encoding as reported by the format library; Kind is the value tag every
// cell of this column decodes to.
type Column struct {
	Name         string
	PhysicalType string
	Kind         Kind
	Nullable     bool
}

// Schema is the ordered column list of a file. Column order matches on-disk
// order. Names are not guaranteed unique; Lookup returns the first match.
type Schema struct {
	Columns []Column
}

func (s *Schema) Lookup(name string) (int, bool) {
	for i, c := range s.Columns {
		if c.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Row is one materialized row, aligned 1:1 with Schema.Columns.
type Row []Value

// Value is a tagged union holding one decoded cell. The zero Value is a null
// of kind bool; use the constructors.
type Value struct {
	kind Kind
	null bool

	i64 int64
	f64 float64
	str string
	raw []byte
	ts  time.Time
	dec decimal.Decimal
}

func NullValue(kind Kind) Value          { return Value{kind: kind, null: true} }
func Int64Value(v int64) Value           { return Value{kind: KindInt64, i64: v} }
func Float64Value(v float64) Value       { return Value{kind: KindFloat64, f64: v} }
func StringValue(v string) Value         { return Value{kind: KindString, str: v} }
func BytesValue(v []byte) Value          { return Value{kind: KindBytes, raw: v} }
func DateValue(v time.Time) Value        { return Value{kind: KindDate, ts: v} }
func TimestampValue(v time.Time) Value   { return Value{kind: KindTimestamp, ts: v} }
func DecimalValue(v decimal.Decimal) Value { return Value{kind: KindDecimal, dec: v} }

func BoolValue(v bool) Value {
	var i int64
	if v {
		i = 1
	}
	return Value{kind: KindBool, i64: i}
}

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsNull() bool  { return v.null }
func (v Value) Bool() bool    { return v.i64 != 0 }
func (v Value) Int64() int64  { return v.i64 }
func (v Value) Float64() float64 { return v.f64 }
func (v Value) Str() string   { return v.str }
func (v Value) Bytes() []byte { return v.raw }
func (v Value) Time() time.Time { return v.ts }
func (v Value) Decimal() decimal.Decimal { return v.dec }

// DisplayString is the single normalization used for display, compare and
// substring search, so searching the table matches what the user sees.
func (v Value) DisplayString() string {
	if v.null {
		return "NULL"
	}
	switch v.kind {
	case KindBool:
		if v.i64 != 0 {
			return "true"
		}
		return "false"
	case KindInt64:
		return strconv.FormatInt(v.i64, 10)
	case KindFloat64:
		return FormatFloat(v.f64)
	case KindString:
		return v.str
	case KindBytes:
		return "0x" + hex.EncodeToString(v.raw)
	case KindDate:
		return v.ts.UTC().Format("2006-01-02")
	case KindTimestamp:
		return v.ts.UTC().Format("2006-01-02 15:04:05")
	case KindDecimal:
		return v.dec.String()
	}
	return ""
}

// FormatFloat renders a float for display: fixed point with trailing zeros
// trimmed for normal magnitudes, scientific notation for abs(x) >= 1e10 or
// 0 < abs(x) < 1e-4.
func FormatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e10 || abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', 6, 64)
	}
	s := strconv.FormatFloat(f, 'f', 6, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}
