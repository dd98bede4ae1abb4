package reader

import (
	"math/big"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/deprecated"
	"github.com/shopspring/decimal"

	"github.com/parqview/parqview-core/core"
)

type tsUnit int

const (
	unitMillis tsUnit = iota
	unitMicros
	unitNanos
)

// columnCodec converts one column's raw parquet values into tagged viewer
// values. It is built once per column when the schema is opened and is
// stateless afterwards, so concurrent range reads can share it.
type columnCodec struct {
	kind     core.Kind
	physical parquet.Kind
	tsUnit   tsUnit
	int96    bool
	decScale int32
}

// decode is total: the null bit is checked before any type-specific work,
// and a cell whose physical encoding does not match its declared type
// degrades to the raw string representation instead of failing the row.
func (c columnCodec) decode(v parquet.Value) core.Value {
	if v.IsNull() {
		return core.NullValue(c.kind)
	}

	switch c.kind {
	case core.KindBool:
		if v.Kind() == parquet.Boolean {
			return core.BoolValue(v.Boolean())
		}

	case core.KindInt64:
		switch v.Kind() {
		case parquet.Int32:
			return core.Int64Value(int64(v.Int32()))
		case parquet.Int64:
			return core.Int64Value(v.Int64())
		}

	case core.KindFloat64:
		switch v.Kind() {
		case parquet.Float:
			return core.Float64Value(float64(v.Float()))
		case parquet.Double:
			return core.Float64Value(v.Double())
		}

	case core.KindString:
		switch v.Kind() {
		case parquet.ByteArray, parquet.FixedLenByteArray:
			return core.StringValue(string(v.ByteArray()))
		}

	case core.KindBytes:
		switch v.Kind() {
		case parquet.ByteArray, parquet.FixedLenByteArray:
			return core.BytesValue(append([]byte(nil), v.ByteArray()...))
		}

	case core.KindDate:
		if v.Kind() == parquet.Int32 {
			days := int64(v.Int32())
			return core.DateValue(time.Unix(days*86400, 0).UTC())
		}

	case core.KindTimestamp:
		if c.int96 {
			if v.Kind() == parquet.Int96 {
				return core.TimestampValue(int96ToTime(v.Int96()))
			}
			break
		}
		if v.Kind() == parquet.Int64 {
			n := v.Int64()
			switch c.tsUnit {
			case unitMillis:
				return core.TimestampValue(time.UnixMilli(n).UTC())
			case unitMicros:
				return core.TimestampValue(time.UnixMicro(n).UTC())
			default:
				return core.TimestampValue(time.Unix(0, n).UTC())
			}
		}

	case core.KindDecimal:
		switch v.Kind() {
		case parquet.Int32:
			return core.DecimalValue(decimal.New(int64(v.Int32()), -c.decScale))
		case parquet.Int64:
			return core.DecimalValue(decimal.New(v.Int64(), -c.decScale))
		case parquet.ByteArray, parquet.FixedLenByteArray:
			bi := twosComplementBigEndian(v.ByteArray())
			return core.DecimalValue(decimal.NewFromBigInt(bi, -c.decScale))
		}
	}

	return core.StringValue(v.String())
}

// julianDayUnixEpoch is the Julian day number of 1970-01-01.
const julianDayUnixEpoch = 2440588

func int96ToTime(i deprecated.Int96) time.Time {
	nanos := uint64(i[0]) | uint64(i[1])<<32
	days := int64(i[2]) - julianDayUnixEpoch
	return time.Unix(days*86400, int64(nanos)).UTC()
}

func twosComplementBigEndian(b []byte) *big.Int {
	bi := new(big.Int)
	if len(b) == 0 {
		return bi
	}
	bi.SetBytes(b)
	if b[0]&0x80 != 0 {
		bi.Sub(bi, new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8)))
	}
	return bi
}
