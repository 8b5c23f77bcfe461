package artifact

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spikegen/internal/ir"
)

func TestJSON_Layout(t *testing.T) {
	b := &ir.Bundle{
		Homogeneous:   ir.SpikeTrain{1.5, 3},
		Inhomogeneous: ir.SpikeTrain{2},
		Refractory:    []ir.SpikeTrain{{5, 11}, {6, 12}, {7, 13}},
		Rates:         []float64{10, 50, 100},
	}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, b, FormatJSON))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.ElementsMatch(t, []string{"format_version", "SpikeTimes_hom", "SpikeTimes_inh", "SpikeTimes_ref", "rates_ref"}, keys(doc))

	// n x k: two rows of three values.
	assert.Equal(t, []any{[]any{5.0, 6.0, 7.0}, []any{11.0, 12.0, 13.0}}, doc["SpikeTimes_ref"])
	assert.Equal(t, []any{10.0, 50.0, 100.0}, doc["rates_ref"])
}

func TestJSON_EmptyArraysAreNotNull(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, &ir.Bundle{}, FormatJSON))
	assert.NotContains(t, buf.String(), "null")
}

func TestJSON_DecodeErrors(t *testing.T) {
	tests := map[string]string{
		"unknown field":   `{"format_version":"1","extra":1}`,
		"version":         `{"format_version":"9"}`,
		"ragged table":    `{"format_version":"1","SpikeTimes_hom":[],"SpikeTimes_inh":[],"SpikeTimes_ref":[[1,2],[3]],"rates_ref":[10,20]}`,
		"not json at all": `MATLAB`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(input), FormatJSON)
			assert.Error(t, err)
		})
	}
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
