package artifact

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spikegen/internal/ir"
	"github.com/roach88/spikegen/internal/pointproc"
)

// awkwardBundle holds values whose decimal forms are long or extreme, to
// catch any lossy float handling.
func awkwardBundle() *ir.Bundle {
	return &ir.Bundle{
		Homogeneous:   ir.SpikeTrain{1e-300, 0.1, math.Pi, math.Nextafter(10, 11), 1e300},
		Inhomogeneous: ir.SpikeTrain{math.SmallestNonzeroFloat64, 2.0 / 3.0},
		Refractory: []ir.SpikeTrain{
			{5.000000000000001, 17.25, 33.5},
			{6.1, 12.2, 18.300000000000001},
		},
		Rates: []float64{10, 1000},
	}
}

func generatedBundle(t *testing.T) *ir.Bundle {
	t.Helper()
	src := pointproc.NewSource(42)
	hom, err := pointproc.Homogeneous(src, 200, 100)
	require.NoError(t, err)
	inh, err := pointproc.Inhomogeneous(src, 100, pointproc.Sinusoid{Amplitude: 50, Baseline: 100, Frequency: 10, MaxRate: 150}, 10)
	require.NoError(t, err)
	rates := []float64{10, 50, 100, 200, 500, 1000}
	cols, err := pointproc.Refractory(src, 150, rates, 5, true)
	require.NoError(t, err)

	b := &ir.Bundle{Homogeneous: hom, Inhomogeneous: inh, Rates: rates}
	for _, c := range cols {
		b.Refractory = append(b.Refractory, c)
	}
	return b
}

func requireBitIdentical(t *testing.T, want, got *ir.Bundle) {
	t.Helper()
	assert.Equal(t, ir.BundleDigest(want), ir.BundleDigest(got))
	requireSameBits(t, want.Homogeneous, got.Homogeneous)
	requireSameBits(t, want.Inhomogeneous, got.Inhomogeneous)
	requireSameBits(t, want.Rates, got.Rates)
	require.Len(t, got.Refractory, len(want.Refractory))
	for j := range want.Refractory {
		requireSameBits(t, want.Refractory[j], got.Refractory[j])
	}
}

func requireSameBits[T ~[]float64](t *testing.T, want, got T) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, math.Float64bits(want[i]), math.Float64bits(got[i]), "index %d", i)
	}
}

func TestRoundTrip_AllFormats(t *testing.T) {
	bundles := map[string]*ir.Bundle{
		"awkward":   awkwardBundle(),
		"generated": generatedBundle(t),
	}

	for _, format := range ValidFormats {
		for name, b := range bundles {
			t.Run(string(format)+"/"+name, func(t *testing.T) {
				var buf bytes.Buffer
				require.NoError(t, Encode(&buf, b, format))

				got, err := Decode(&buf, format)
				require.NoError(t, err)
				requireBitIdentical(t, b, got)
			})
		}
	}
}

func TestEncode_RejectsInvalidBundle(t *testing.T) {
	b := awkwardBundle()
	b.Homogeneous = ir.SpikeTrain{2, 1}

	for _, format := range ValidFormats {
		var buf bytes.Buffer
		err := Encode(&buf, b, format)
		assert.ErrorContains(t, err, ir.FieldHomogeneous)
		assert.Zero(t, buf.Len(), "nothing written for %s", format)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("MAT")
	require.NoError(t, err)
	assert.Equal(t, FormatMAT, f)

	_, err = ParseFormat("csv")
	assert.ErrorContains(t, err, "unknown artifact format")
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"PoissonSpikeTrains.mat": FormatMAT,
		"out/trains.JSON":        FormatJSON,
		"trains.arrow":           FormatArrow,
		"trains.feather":         FormatArrow,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("trains.csv")
	assert.Error(t, err)
}

func TestWriteFile_ReadFile(t *testing.T) {
	dir := t.TempDir()
	b := generatedBundle(t)

	for _, format := range ValidFormats {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(dir, "trains."+string(format))
			require.NoError(t, WriteFile(path, b, format))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

			got, err := ReadFile(path)
			require.NoError(t, err)
			requireBitIdentical(t, b, got)
		})
	}
}

func TestWriteFile_FailureLeavesNothingBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trains.mat")

	bad := awkwardBundle()
	bad.Rates = bad.Rates[:1]
	err := WriteFile(path, bad, FormatMAT)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no artifact and no temp file")
}

func TestWriteFile_FailureKeepsPreviousArtifact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trains.json")
	good := awkwardBundle()
	require.NoError(t, WriteFile(path, good, FormatJSON))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	bad := awkwardBundle()
	bad.Inhomogeneous = ir.SpikeTrain{math.NaN()}
	require.Error(t, WriteFile(path, bad, FormatJSON))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "trains.mat")
	err := WriteFile(path, awkwardBundle(), FormatMAT)
	assert.ErrorContains(t, err, "write artifact")
}

func TestReadFile_UnknownExtension(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "trains.txt"))
	assert.ErrorContains(t, err, "cannot infer artifact format")
}
