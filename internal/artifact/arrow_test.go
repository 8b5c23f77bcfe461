package artifact

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spikegen/internal/ir"
)

func TestArrow_Schema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, awkwardBundle(), FormatArrow))

	fr, err := ipc.NewFileReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer fr.Close()

	schema := fr.Schema()
	require.Len(t, schema.Fields(), 4)
	for i, name := range ir.FieldNames {
		assert.Equal(t, name, schema.Field(i).Name)
	}
	assert.True(t, arrow.TypeEqual(float64ListList, schema.Field(2).Type))
	assert.Equal(t, 1, fr.NumRecords())
}

func TestArrow_DecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not an arrow file")), FormatArrow)
	assert.Error(t, err)
}

func TestArrow_WriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trains.arrow")
	b := generatedBundle(t)
	require.NoError(t, WriteFile(path, b, FormatArrow))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	fr, err := ipc.NewFileReader(f)
	require.NoError(t, err)
	defer fr.Close()
	assert.Equal(t, 1, fr.NumRecords())

	got, err := ReadFile(path)
	require.NoError(t, err)
	requireBitIdentical(t, b, got)
}

func TestOffsetWriter(t *testing.T) {
	var buf bytes.Buffer
	ow := &offsetWriter{w: &buf}

	_, err := ow.Write([]byte("ARROW1"))
	require.NoError(t, err)
	_, err = ow.Write([]byte{0, 0})
	require.NoError(t, err)

	off, err := ow.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(8), off)

	_, err = ow.Seek(0, io.SeekStart)
	assert.ErrorContains(t, err, "cannot seek")
}
