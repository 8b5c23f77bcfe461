package artifact

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/roach88/spikegen/internal/ir"
)

// MAT-file Level 5 constants.
const (
	matHeaderSize  = 128
	matTextSize    = 116
	matVersion     = 0x0100
	matMaxElemSize = 1 << 30

	miINT8       = 1
	miUINT8      = 2
	miINT16      = 3
	miUINT16     = 4
	miINT32      = 5
	miUINT32     = 6
	miSINGLE     = 7
	miDOUBLE     = 9
	miINT64      = 12
	miUINT64     = 13
	miMATRIX     = 14
	miCOMPRESSED = 15

	mxDoubleClass = 6
)

var matHeaderText = fmt.Sprintf("MATLAB 5.0 MAT-file, written by spikegen %s, layout %s", ir.ToolVersion, ir.FormatVersion)

// matVariable is a named 2-D double array stored column major.
type matVariable struct {
	name string
	rows int
	cols int
	data []float64
}

func rowVector(name string, v []float64) matVariable {
	return matVariable{name: name, rows: 1, cols: len(v), data: v}
}

func pad8(n int) int {
	return (n + 7) &^ 7
}

func encodeMAT(w io.Writer, b *ir.Bundle) error {
	rows, cols := b.Shape()
	ref := make([]float64, 0, rows*cols)
	for _, col := range b.Refractory {
		ref = append(ref, col...)
	}
	vars := []matVariable{
		rowVector(ir.FieldHomogeneous, b.Homogeneous),
		rowVector(ir.FieldInhomogeneous, b.Inhomogeneous),
		{name: ir.FieldRefractory, rows: rows, cols: cols, data: ref},
		rowVector(ir.FieldRates, b.Rates),
	}

	buf := make([]byte, 0, matHeaderSize)
	buf = append(buf, matHeaderText...)
	for len(buf) < matTextSize {
		buf = append(buf, ' ')
	}
	buf = append(buf, make([]byte, 8)...) // subsystem data offset
	buf = binary.LittleEndian.AppendUint16(buf, matVersion)
	buf = append(buf, 'I', 'M')
	if _, err := w.Write(buf); err != nil {
		return err
	}

	for _, v := range vars {
		if _, err := w.Write(appendMATMatrix(nil, v)); err != nil {
			return err
		}
	}
	return nil
}

// appendMATMatrix appends one miMATRIX element: array flags, dimensions,
// name and real part, each padded to 8 bytes.
func appendMATMatrix(buf []byte, v matVariable) []byte {
	size := 16 + // array flags
		8 + pad8(8) + // dimensions (two int32)
		8 + pad8(len(v.name)) +
		8 + 8*len(v.data)

	buf = appendTag(buf, miMATRIX, size)

	buf = appendTag(buf, miUINT32, 8)
	buf = binary.LittleEndian.AppendUint32(buf, mxDoubleClass)
	buf = binary.LittleEndian.AppendUint32(buf, 0)

	buf = appendTag(buf, miINT32, 8)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(v.rows)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(v.cols)))

	buf = appendTag(buf, miINT8, len(v.name))
	buf = append(buf, v.name...)
	buf = append(buf, make([]byte, pad8(len(v.name))-len(v.name))...)

	buf = appendTag(buf, miDOUBLE, 8*len(v.data))
	for _, x := range v.data {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(x))
	}
	return buf
}

func appendTag(buf []byte, dataType, size int) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(dataType))
	return binary.LittleEndian.AppendUint32(buf, uint32(size))
}

func decodeMAT(r io.Reader) (*ir.Bundle, error) {
	header := make([]byte, matHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("buffer too small to be a valid MAT-file: %w", err)
	}
	if header[126] != 'I' || header[127] != 'M' {
		return nil, fmt.Errorf("unsupported MAT-file endianness %q", header[126:128])
	}
	if v := binary.LittleEndian.Uint16(header[124:]); v != matVersion {
		return nil, fmt.Errorf("unknown MAT-file version %#x", v)
	}

	vars := make(map[string]matVariable)
	for {
		dataType, body, err := readElement(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if dataType == miCOMPRESSED {
			return nil, fmt.Errorf("compressed MAT-file elements are not supported")
		}
		if dataType != miMATRIX {
			continue
		}
		v, err := parseMATMatrix(body)
		if err != nil {
			return nil, err
		}
		vars[v.name] = v
	}

	b := &ir.Bundle{}
	for _, name := range ir.FieldNames {
		v, ok := vars[name]
		if !ok {
			return nil, fmt.Errorf("missing variable %q", name)
		}
		switch name {
		case ir.FieldHomogeneous, ir.FieldInhomogeneous, ir.FieldRates:
			if v.rows != 1 && v.cols != 1 && len(v.data) > 0 {
				return nil, fmt.Errorf("variable %q is %dx%d, want a vector", name, v.rows, v.cols)
			}
		}
		switch name {
		case ir.FieldHomogeneous:
			b.Homogeneous = v.data
		case ir.FieldInhomogeneous:
			b.Inhomogeneous = v.data
		case ir.FieldRates:
			b.Rates = v.data
		case ir.FieldRefractory:
			b.Refractory = make([]ir.SpikeTrain, v.cols)
			for j := range b.Refractory {
				b.Refractory[j] = v.data[j*v.rows : (j+1)*v.rows]
			}
		}
	}
	return b, nil
}

// readElement reads one top-level data element and its padded body.
func readElement(r io.Reader) (dataType int, body []byte, err error) {
	var tag [8]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, nil, fmt.Errorf("truncated MAT-file element tag")
		}
		return 0, nil, err
	}
	dataType = int(binary.LittleEndian.Uint32(tag[:]))
	size := int(binary.LittleEndian.Uint32(tag[4:]))
	if size < 0 || size > matMaxElemSize {
		return 0, nil, fmt.Errorf("invalid MAT-file element size %d", size)
	}
	body = make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, fmt.Errorf("truncated MAT-file element: %w", err)
	}
	if dataType != miCOMPRESSED {
		if skip := pad8(size) - size; skip > 0 {
			if _, err := io.ReadFull(r, make([]byte, skip)); err != nil && !errors.Is(err, io.EOF) {
				return 0, nil, fmt.Errorf("truncated MAT-file padding: %w", err)
			}
		}
	}
	return dataType, body, nil
}

// readSubElement reads a sub-element of a matrix, handling the small data
// element format where type and size share the first word.
func readSubElement(buf *bytes.Reader) (dataType int, data []byte, err error) {
	var tag [8]byte
	if _, err := io.ReadFull(buf, tag[:4]); err != nil {
		return 0, nil, fmt.Errorf("truncated MAT-file sub-element")
	}
	word := binary.LittleEndian.Uint32(tag[:4])
	if small := int(word >> 16); small != 0 {
		if small > 4 {
			return 0, nil, fmt.Errorf("invalid small element size %d", small)
		}
		if _, err := io.ReadFull(buf, tag[4:]); err != nil {
			return 0, nil, fmt.Errorf("truncated MAT-file small element")
		}
		return int(word & 0xffff), append([]byte(nil), tag[4:4+small]...), nil
	}
	if _, err := io.ReadFull(buf, tag[4:]); err != nil {
		return 0, nil, fmt.Errorf("truncated MAT-file sub-element")
	}
	size := int(binary.LittleEndian.Uint32(tag[4:]))
	if size > buf.Len() {
		return 0, nil, fmt.Errorf("MAT-file sub-element size %d exceeds matrix", size)
	}
	data = make([]byte, size)
	if _, err := io.ReadFull(buf, data); err != nil {
		return 0, nil, fmt.Errorf("truncated MAT-file sub-element")
	}
	if skip := pad8(size) - size; skip > 0 && buf.Len() > 0 {
		if _, err := buf.Seek(int64(min(skip, buf.Len())), io.SeekCurrent); err != nil {
			return 0, nil, err
		}
	}
	return int(word), data, nil
}

func parseMATMatrix(body []byte) (matVariable, error) {
	buf := bytes.NewReader(body)

	_, flags, err := readSubElement(buf)
	if err != nil {
		return matVariable{}, fmt.Errorf("array flags: %w", err)
	}
	if len(flags) < 8 {
		return matVariable{}, fmt.Errorf("array flags too short")
	}
	if flags[1]&0x08 != 0 {
		return matVariable{}, fmt.Errorf("complex arrays are not supported")
	}

	dimType, dimData, err := readSubElement(buf)
	if err != nil {
		return matVariable{}, fmt.Errorf("dimensions: %w", err)
	}
	if dimType != miINT32 || len(dimData) != 8 {
		return matVariable{}, fmt.Errorf("only 2-D arrays are supported")
	}
	rows := int(int32(binary.LittleEndian.Uint32(dimData)))
	cols := int(int32(binary.LittleEndian.Uint32(dimData[4:])))
	if rows < 0 || cols < 0 {
		return matVariable{}, fmt.Errorf("negative dimensions %dx%d", rows, cols)
	}

	_, name, err := readSubElement(buf)
	if err != nil {
		return matVariable{}, fmt.Errorf("array name: %w", err)
	}

	realType, realData, err := readSubElement(buf)
	if err != nil {
		return matVariable{}, fmt.Errorf("%s: real part: %w", name, err)
	}
	data, err := matNumbers(realType, realData)
	if err != nil {
		return matVariable{}, fmt.Errorf("%s: %w", name, err)
	}
	if len(data) != rows*cols {
		return matVariable{}, fmt.Errorf("%s: %d values for %dx%d array", name, len(data), rows, cols)
	}
	return matVariable{name: string(name), rows: rows, cols: cols, data: data}, nil
}

// matNumbers converts stored numeric data to float64. MATLAB may store a
// double array in a narrower integer type when every value fits.
func matNumbers(dataType int, data []byte) ([]float64, error) {
	var width int
	switch dataType {
	case miINT8, miUINT8:
		width = 1
	case miINT16, miUINT16:
		width = 2
	case miINT32, miUINT32, miSINGLE:
		width = 4
	case miDOUBLE, miINT64, miUINT64:
		width = 8
	default:
		return nil, fmt.Errorf("unsupported numeric type %d", dataType)
	}
	if len(data)%width != 0 {
		return nil, fmt.Errorf("numeric data length %d not a multiple of %d", len(data), width)
	}
	out := make([]float64, len(data)/width)
	le := binary.LittleEndian
	for i := range out {
		p := data[i*width:]
		switch dataType {
		case miINT8:
			out[i] = float64(int8(p[0]))
		case miUINT8:
			out[i] = float64(p[0])
		case miINT16:
			out[i] = float64(int16(le.Uint16(p)))
		case miUINT16:
			out[i] = float64(le.Uint16(p))
		case miINT32:
			out[i] = float64(int32(le.Uint32(p)))
		case miUINT32:
			out[i] = float64(le.Uint32(p))
		case miSINGLE:
			out[i] = float64(math.Float32frombits(le.Uint32(p)))
		case miDOUBLE:
			out[i] = math.Float64frombits(le.Uint64(p))
		case miINT64:
			out[i] = float64(int64(le.Uint64(p)))
		case miUINT64:
			out[i] = float64(le.Uint64(p))
		}
	}
	return out, nil
}
