package artifact

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/roach88/spikegen/internal/ir"
)

const arrowVersionKey = "spikegen.format_version"

var (
	float64List     = arrow.ListOf(arrow.PrimitiveTypes.Float64)
	float64ListList = arrow.ListOf(float64List)
)

func arrowSchema() *arrow.Schema {
	md := arrow.NewMetadata([]string{arrowVersionKey}, []string{ir.FormatVersion})
	return arrow.NewSchema([]arrow.Field{
		{Name: ir.FieldHomogeneous, Type: float64List},
		{Name: ir.FieldInhomogeneous, Type: float64List},
		{Name: ir.FieldRefractory, Type: float64ListList},
		{Name: ir.FieldRates, Type: float64List},
	}, &md)
}

func encodeArrow(w io.Writer, b *ir.Bundle) error {
	mem := memory.NewGoAllocator()
	schema := arrowSchema()

	rb := array.NewRecordBuilder(mem, schema)
	defer rb.Release()

	appendList(rb.Field(0).(*array.ListBuilder), b.Homogeneous)
	appendList(rb.Field(1).(*array.ListBuilder), b.Inhomogeneous)
	outer := rb.Field(2).(*array.ListBuilder)
	outer.Append(true)
	inner := outer.ValueBuilder().(*array.ListBuilder)
	for _, col := range b.Refractory {
		appendList(inner, col)
	}
	appendList(rb.Field(3).(*array.ListBuilder), b.Rates)

	rec := rb.NewRecord()
	defer rec.Release()

	fw, err := ipc.NewFileWriter(&offsetWriter{w: w}, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		return err
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return err
	}
	return fw.Close()
}

// offsetWriter lets the IPC file writer run over a plain stream. The writer
// only asks for the current offset, never repositions.
type offsetWriter struct {
	w   io.Writer
	off int64
}

func (o *offsetWriter) Write(p []byte) (int, error) {
	n, err := o.w.Write(p)
	o.off += int64(n)
	return n, err
}

func (o *offsetWriter) Seek(offset int64, whence int) (int64, error) {
	if offset != 0 || whence != io.SeekCurrent {
		return 0, fmt.Errorf("arrow: cannot seek output stream (offset=%d whence=%d)", offset, whence)
	}
	return o.off, nil
}

func appendList(lb *array.ListBuilder, values []float64) {
	lb.Append(true)
	lb.ValueBuilder().(*array.Float64Builder).AppendValues(values, nil)
}

func decodeArrow(r ipc.ReadAtSeeker) (*ir.Bundle, error) {
	mem := memory.NewGoAllocator()
	fr, err := ipc.NewFileReader(r, ipc.WithAllocator(mem))
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	md := fr.Schema().Metadata()
	if idx := md.FindKey(arrowVersionKey); idx < 0 || md.Values()[idx] != ir.FormatVersion {
		return nil, fmt.Errorf("missing or unknown %s", arrowVersionKey)
	}
	if fr.NumRecords() != 1 {
		return nil, fmt.Errorf("expected 1 record, found %d", fr.NumRecords())
	}
	rec, err := fr.Record(0)
	if err != nil {
		return nil, err
	}
	if rec.NumRows() != 1 {
		return nil, fmt.Errorf("expected 1 row, found %d", rec.NumRows())
	}

	lists := make(map[string]*array.List, len(ir.FieldNames))
	for i, f := range rec.Schema().Fields() {
		l, ok := rec.Column(i).(*array.List)
		if !ok {
			return nil, fmt.Errorf("column %q is %s, want a list", f.Name, rec.Column(i).DataType())
		}
		lists[f.Name] = l
	}
	for _, name := range ir.FieldNames {
		if lists[name] == nil {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	b := &ir.Bundle{}
	if b.Homogeneous, err = listFloats(lists[ir.FieldHomogeneous], 0); err != nil {
		return nil, err
	}
	if b.Inhomogeneous, err = listFloats(lists[ir.FieldInhomogeneous], 0); err != nil {
		return nil, err
	}
	if b.Rates, err = listFloats(lists[ir.FieldRates], 0); err != nil {
		return nil, err
	}

	outer := lists[ir.FieldRefractory]
	inner, ok := outer.ListValues().(*array.List)
	if !ok {
		return nil, fmt.Errorf("column %q is not a list of lists", ir.FieldRefractory)
	}
	start, end := outer.ValueOffsets(0)
	for k := start; k < end; k++ {
		col, err := listFloats(inner, int(k))
		if err != nil {
			return nil, err
		}
		b.Refractory = append(b.Refractory, col)
	}
	return b, nil
}

// listFloats copies element i of a list<double> array. The reader owns
// the underlying buffers, so values must not be retained.
func listFloats(l *array.List, i int) ([]float64, error) {
	values, ok := l.ListValues().(*array.Float64)
	if !ok {
		return nil, fmt.Errorf("list values are %s, want double", l.ListValues().DataType())
	}
	start, end := l.ValueOffsets(i)
	return append([]float64{}, values.Float64Values()[start:end]...), nil
}
