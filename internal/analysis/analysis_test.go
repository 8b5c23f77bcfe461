package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spikegen/internal/pointproc"
)

func TestSummarize_Exact(t *testing.T) {
	s := Summarize([]float64{2, 4, 6, 8})

	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 8.0, s.Duration)
	assert.Equal(t, 2.0, s.MeanISI)
	assert.Equal(t, 0.0, s.StdISI)
	assert.Equal(t, 0.0, s.CV)
	assert.Equal(t, 2.0, s.MinISI)
	assert.Equal(t, 500.0, s.Rate)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Stats{}, Summarize(nil))
}

func TestSummarize_SingleSpike(t *testing.T) {
	s := Summarize([]float64{10})
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 10.0, s.MeanISI)
	assert.Equal(t, 0.0, s.StdISI)
	assert.Equal(t, 100.0, s.Rate)
}

func TestSummarize_PoissonCVNearOne(t *testing.T) {
	train, err := pointproc.Homogeneous(pointproc.NewSource(7), 5000, 100)
	require.NoError(t, err)

	s := Summarize(train)
	assert.InDelta(t, 10.0, s.MeanISI, 0.5)
	assert.InDelta(t, 1.0, s.CV, 0.1)
	assert.InDelta(t, 100.0, s.Rate, 5)
}

func TestFanoFactor_Regular(t *testing.T) {
	// One spike every 10 ms: every 100 ms window holds exactly 10 spikes.
	train := make([]float64, 100)
	for i := range train {
		train[i] = float64(i+1) * 10
	}
	f, err := FanoFactor(train, 100)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, f, 1e-12)
}

func TestFanoFactor_PoissonVersusRefractory(t *testing.T) {
	hom, err := pointproc.Homogeneous(pointproc.NewSource(11), 2000, 100)
	require.NoError(t, err)
	f, err := FanoFactor(hom, 100)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, f, 0.35)

	cols, err := pointproc.Refractory(pointproc.NewSource(11), 2000, []float64{1000}, 5, true)
	require.NoError(t, err)
	f, err = FanoFactor(cols[0], 100)
	require.NoError(t, err)
	assert.Less(t, f, 0.2)
}

func TestFanoFactor_Errors(t *testing.T) {
	_, err := FanoFactor([]float64{1, 2}, 0)
	assert.Error(t, err)

	_, err = FanoFactor(nil, 10)
	assert.ErrorIs(t, err, ErrEmptyTrain)

	_, err = FanoFactor([]float64{1, 2, 15}, 10)
	assert.ErrorContains(t, err, "need at least 2")
}

func TestPhaseDensity_Exact(t *testing.T) {
	// 10 Hz, 100 ms period. Spikes at phases 0.1 and 0.6 of each of two
	// periods, last spike at 160 ms.
	train := []float64{10, 60, 110, 160}
	got, err := PhaseDensity(train, 10, 2)
	require.NoError(t, err)

	// Each bin holds 2 spikes over 0.08 s of exposure.
	assert.InDeltaSlice(t, []float64{25, 25}, got, 1e-9)
}

func TestPhaseDensity_FollowsSinusoid(t *testing.T) {
	rf := pointproc.Sinusoid{Amplitude: 50, Baseline: 100, Frequency: 10, MaxRate: 150}
	train, err := pointproc.Inhomogeneous(pointproc.NewSource(42), 20000, rf, 10)
	require.NoError(t, err)

	got, err := PhaseDensity(train, 10, 4)
	require.NoError(t, err)
	want := ExpectedPhaseDensity(50, 100, 4)

	dev, err := Deviation(got, want)
	require.NoError(t, err)
	assert.Less(t, dev, 0.1)
	// Rising half of the cycle fires more than the falling half.
	assert.Greater(t, got[0]+got[1], got[2]+got[3])
}

func TestPhaseDensity_Errors(t *testing.T) {
	_, err := PhaseDensity([]float64{1}, 0, 4)
	assert.Error(t, err)
	_, err = PhaseDensity([]float64{1}, 10, 0)
	assert.Error(t, err)
	_, err = PhaseDensity(nil, 10, 4)
	assert.ErrorIs(t, err, ErrEmptyTrain)
}

func TestExpectedPhaseDensity(t *testing.T) {
	one := ExpectedPhaseDensity(50, 100, 1)
	assert.InDeltaSlice(t, []float64{100}, one, 1e-9)

	halves := ExpectedPhaseDensity(50, 100, 2)
	assert.InDelta(t, 100+100/math.Pi, halves[0], 1e-9)
	assert.InDelta(t, 100-100/math.Pi, halves[1], 1e-9)
}

func TestExponentialKS(t *testing.T) {
	train, err := pointproc.Homogeneous(pointproc.NewSource(3), 2000, 100)
	require.NoError(t, err)
	isis := pointproc.ISIs(train)

	d, err := ExponentialKS(isis, 100)
	require.NoError(t, err)
	assert.Less(t, d, 0.05)

	wrong, err := ExponentialKS(isis, 50)
	require.NoError(t, err)
	assert.Greater(t, wrong, 0.15)
}

func TestExponentialKS_Exact(t *testing.T) {
	// Single ISI at the median: F = 0.5, so D = max(1-0.5, 0.5-0) = 0.5.
	median := math.Ln2 / 100 * 1000
	d, err := ExponentialKS([]float64{median}, 100)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, d, 1e-12)
}

func TestExponentialKS_Errors(t *testing.T) {
	_, err := ExponentialKS([]float64{1}, -1)
	assert.Error(t, err)
	_, err = ExponentialKS(nil, 100)
	assert.ErrorIs(t, err, ErrEmptyTrain)
}

func TestStripRefractory_RecoversExponential(t *testing.T) {
	cols, err := pointproc.Refractory(pointproc.NewSource(5), 2000, []float64{200}, 5, true)
	require.NoError(t, err)

	stripped := StripRefractory(pointproc.ISIs(cols[0]), 5)
	for _, x := range stripped {
		require.Greater(t, x, -1e-9)
	}
	d, err := ExponentialKS(stripped, 200)
	require.NoError(t, err)
	assert.Less(t, d, 0.05)
}

func TestDeviation(t *testing.T) {
	d, err := Deviation([]float64{110, 0.5}, []float64{100, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, d, 1e-12)

	_, err = Deviation([]float64{1}, nil)
	assert.Error(t, err)
}
