package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBundle() *Bundle {
	return &Bundle{
		Homogeneous:   SpikeTrain{1, 2.5, 4},
		Inhomogeneous: SpikeTrain{3, 7},
		Refractory:    []SpikeTrain{{5, 11}, {6, 12}},
		Rates:         []float64{10, 50},
	}
}

func TestParamsHash_Deterministic(t *testing.T) {
	a := Object{"seed": Int(42), "rate": Decimal(100)}
	b := Object{"rate": Decimal(100), "seed": Int(42)}

	ha, err := ParamsHash(a)
	require.NoError(t, err)
	hb, err := ParamsHash(b)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
	assert.Len(t, ha, 64)
}

func TestParamsHash_SensitiveToValues(t *testing.T) {
	a, err := ParamsHash(Object{"seed": Int(42)})
	require.NoError(t, err)
	b, err := ParamsHash(Object{"seed": Int(43)})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestParamsHash_DomainSeparated(t *testing.T) {
	params := Object{"seed": Int(1)}
	canonical, err := MarshalCanonical(params)
	require.NoError(t, err)

	h, err := ParamsHash(params)
	require.NoError(t, err)
	assert.Equal(t, hashWithDomain(DomainParams, canonical), h)
	assert.NotEqual(t, hashWithDomain(DomainBundle, canonical), h)
}

func TestBundleDigest_Deterministic(t *testing.T) {
	assert.Equal(t, BundleDigest(testBundle()), BundleDigest(testBundle()))
	assert.Len(t, BundleDigest(testBundle()), 64)
}

func TestBundleDigest_DetectsSingleBitChange(t *testing.T) {
	b := testBundle()
	before := BundleDigest(b)

	b.Refractory[1][0] = math.Nextafter(b.Refractory[1][0], math.Inf(1))
	assert.NotEqual(t, before, BundleDigest(b))
}

func TestBundleDigest_DistinguishesFieldBoundaries(t *testing.T) {
	a := &Bundle{Homogeneous: SpikeTrain{1, 2}, Inhomogeneous: SpikeTrain{3}}
	b := &Bundle{Homogeneous: SpikeTrain{1}, Inhomogeneous: SpikeTrain{2, 3}}
	assert.NotEqual(t, BundleDigest(a), BundleDigest(b))
}
