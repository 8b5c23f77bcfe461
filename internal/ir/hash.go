package ir

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"math"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainParams = "spikegen/params/v1"
	DomainBundle = "spikegen/bundle/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ParamsHash computes the content-addressed identity of a parameter set.
// Two runs with the same ParamsHash (seed included) produce bit-identical
// bundles.
func ParamsHash(params Object) (string, error) {
	canonical, err := MarshalCanonical(params)
	if err != nil {
		return "", fmt.Errorf("ParamsHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainParams, canonical), nil
}

// BundleDigest hashes the exact IEEE-754 bits of every array in the bundle.
//
// Each field contributes its name, its dimensions and its values as
// little-endian uint64s, in FieldNames order. Equal digests mean the
// bundles are bit-for-bit identical.
func BundleDigest(b *Bundle) string {
	h := sha256.New()
	h.Write([]byte(DomainBundle))
	h.Write([]byte{0x00})

	writeField(h, FieldHomogeneous, []int{len(b.Homogeneous)}, b.Homogeneous)
	writeField(h, FieldInhomogeneous, []int{len(b.Inhomogeneous)}, b.Inhomogeneous)
	rows, cols := b.Shape()
	h.Write([]byte(FieldRefractory))
	h.Write([]byte{0x00})
	writeDims(h, []int{rows, cols})
	for _, col := range b.Refractory {
		writeFloats(h, col)
	}
	writeField(h, FieldRates, []int{len(b.Rates)}, b.Rates)

	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h hash.Hash, name string, dims []int, values []float64) {
	h.Write([]byte(name))
	h.Write([]byte{0x00})
	writeDims(h, dims)
	writeFloats(h, values)
}

func writeDims(h hash.Hash, dims []int) {
	var buf [8]byte
	for _, d := range dims {
		binary.LittleEndian.PutUint64(buf[:], uint64(d))
		h.Write(buf[:])
	}
}

func writeFloats(h hash.Hash, values []float64) {
	var buf [8]byte
	for _, v := range values {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
}
