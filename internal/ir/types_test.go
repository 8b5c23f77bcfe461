package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpikeTrain_Validate(t *testing.T) {
	tests := []struct {
		name    string
		train   SpikeTrain
		wantErr string
	}{
		{"empty", SpikeTrain{}, ""},
		{"increasing", SpikeTrain{0, 1, 2.5}, ""},
		{"equal neighbours", SpikeTrain{1, 1}, "not after previous"},
		{"decreasing", SpikeTrain{2, 1}, "not after previous"},
		{"negative", SpikeTrain{-1, 1}, "negative time"},
		{"NaN", SpikeTrain{1, math.NaN()}, "non-finite"},
		{"Inf", SpikeTrain{1, math.Inf(1)}, "non-finite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.train.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSpikeTrain_Last(t *testing.T) {
	assert.Equal(t, 0.0, SpikeTrain{}.Last())
	assert.Equal(t, 4.0, SpikeTrain{1, 4}.Last())
}

func TestBundle_ShapeAndRow(t *testing.T) {
	b := testBundle()
	rows, cols := b.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, []float64{11, 12}, b.Row(1))

	empty := &Bundle{}
	rows, cols = empty.Shape()
	assert.Zero(t, rows)
	assert.Zero(t, cols)
}

func TestBundle_Validate(t *testing.T) {
	require.NoError(t, testBundle().Validate())

	ragged := testBundle()
	ragged.Refractory[1] = SpikeTrain{6}
	assert.ErrorContains(t, ragged.Validate(), "column 1 has 1 rows")

	mismatched := testBundle()
	mismatched.Rates = []float64{10}
	assert.ErrorContains(t, mismatched.Validate(), "2 columns but rates_ref has 1 rates")

	unordered := testBundle()
	unordered.Inhomogeneous = SpikeTrain{7, 3}
	assert.ErrorContains(t, unordered.Validate(), FieldInhomogeneous)
}

func TestFieldNames(t *testing.T) {
	assert.Equal(t, []string{"SpikeTimes_hom", "SpikeTimes_inh", "SpikeTimes_ref", "rates_ref"}, FieldNames)
}
