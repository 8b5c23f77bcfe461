package artifact

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/roach88/spikegen/internal/ir"
)

// jsonBundle is the on-disk JSON layout. SpikeTimes_ref is stored row by
// row so that the table reads as n x k.
type jsonBundle struct {
	FormatVersion string      `json:"format_version"`
	Homogeneous   []float64   `json:"SpikeTimes_hom"`
	Inhomogeneous []float64   `json:"SpikeTimes_inh"`
	Refractory    [][]float64 `json:"SpikeTimes_ref"`
	Rates         []float64   `json:"rates_ref"`
}

func encodeJSON(w io.Writer, b *ir.Bundle) error {
	rows, _ := b.Shape()
	table := make([][]float64, rows)
	for i := range table {
		table[i] = b.Row(i)
	}
	doc := jsonBundle{
		FormatVersion: ir.FormatVersion,
		Homogeneous:   nonNil(b.Homogeneous),
		Inhomogeneous: nonNil(b.Inhomogeneous),
		Refractory:    table,
		Rates:         nonNil(b.Rates),
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

func decodeJSON(r io.Reader) (*ir.Bundle, error) {
	var doc jsonBundle
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc.FormatVersion != ir.FormatVersion {
		return nil, fmt.Errorf("unknown format version %q", doc.FormatVersion)
	}

	cols := len(doc.Rates)
	b := &ir.Bundle{
		Homogeneous:   doc.Homogeneous,
		Inhomogeneous: doc.Inhomogeneous,
		Refractory:    make([]ir.SpikeTrain, cols),
		Rates:         doc.Rates,
	}
	for j := range b.Refractory {
		b.Refractory[j] = make(ir.SpikeTrain, len(doc.Refractory))
	}
	for i, row := range doc.Refractory {
		if len(row) != cols {
			return nil, fmt.Errorf("%s row %d has %d values, want %d", ir.FieldRefractory, i, len(row), cols)
		}
		for j, v := range row {
			b.Refractory[j][i] = v
		}
	}
	return b, nil
}

// nonNil keeps empty arrays as [] rather than null in JSON output.
func nonNil[T ~[]float64](s T) []float64 {
	if s == nil {
		return []float64{}
	}
	return s
}
