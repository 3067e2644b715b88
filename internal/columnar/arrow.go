package columnar

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// ArrowSchema derives the Arrow schema for a frame. Every field is nullable
// because the engine carries explicit validity bitmaps.
func ArrowSchema(f *Frame) *arrow.Schema {
	fields := make([]arrow.Field, f.NumCols())
	for i := 0; i < f.NumCols(); i++ {
		c := f.Series(i)
		var dt arrow.DataType
		switch c.Kind() {
		case KindFloat64:
			dt = arrow.PrimitiveTypes.Float64
		default:
			dt = arrow.BinaryTypes.String
		}
		fields[i] = arrow.Field{Name: c.Name(), Type: dt, Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// ToRecord converts a materialized frame into an Arrow record. Nulls map to
// Arrow nulls. The caller owns the returned record and must Release it.
func ToRecord(f *Frame, alloc memory.Allocator) arrow.Record {
	if alloc == nil {
		alloc = memory.NewGoAllocator()
	}
	schema := ArrowSchema(f)
	builder := array.NewRecordBuilder(alloc, schema)
	defer builder.Release()

	for i := 0; i < f.NumCols(); i++ {
		c := f.Series(i)
		switch c.Kind() {
		case KindFloat64:
			b := builder.Field(i).(*array.Float64Builder)
			for row := 0; row < c.Len(); row++ {
				if !c.IsValid(row) {
					b.AppendNull()
					continue
				}
				b.Append(c.Float(row))
			}
		default:
			b := builder.Field(i).(*array.StringBuilder)
			for row := 0; row < c.Len(); row++ {
				if !c.IsValid(row) {
					b.AppendNull()
					continue
				}
				b.Append(c.Str(row))
			}
		}
	}
	return builder.NewRecord()
}

// FromRecord converts an Arrow record back into a frame. Only float64 and
// string columns are supported, which is the round-trip set ToRecord emits.
func FromRecord(rec arrow.Record) (*Frame, error) {
	out := EmptyFrame()
	for i := 0; i < int(rec.NumCols()); i++ {
		name := rec.Schema().Field(i).Name
		col, err := seriesFromArray(name, rec.Column(i))
		if err != nil {
			return nil, err
		}
		if err := out.addColumn(col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FromTable converts an Arrow table (possibly chunked, as parquet readers
// produce) back into a frame.
func FromTable(tbl arrow.Table) (*Frame, error) {
	out := EmptyFrame()
	for i := 0; i < int(tbl.NumCols()); i++ {
		name := tbl.Schema().Field(i).Name
		chunked := tbl.Column(i).Data()

		var col *Series
		for _, chunk := range chunked.Chunks() {
			part, err := seriesFromArray(name, chunk)
			if err != nil {
				return nil, err
			}
			if col == nil {
				col = part
				continue
			}
			for row := 0; row < part.Len(); row++ {
				col.append(part, row)
			}
		}
		if col == nil {
			col = NewNullSeries(name, KindFloat64, 0)
		}
		if err := out.addColumn(col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func seriesFromArray(name string, arr arrow.Array) (*Series, error) {
	switch a := arr.(type) {
	case *array.Float64:
		col := NewNullSeries(name, KindFloat64, 0)
		for row := 0; row < a.Len(); row++ {
			if a.IsNull(row) {
				col.appendNull()
				continue
			}
			col.valid = append(col.valid, true)
			col.floats = append(col.floats, a.Value(row))
		}
		return col, nil
	case *array.String:
		col := NewNullSeries(name, KindString, 0)
		for row := 0; row < a.Len(); row++ {
			if a.IsNull(row) {
				col.appendNull()
				continue
			}
			col.valid = append(col.valid, true)
			col.strs = append(col.strs, a.Value(row))
		}
		return col, nil
	default:
		return nil, fmt.Errorf("column %q: unsupported arrow type %s", name, arr.DataType())
	}
}
