package ir

import (
	"slices"
	"strconv"
	"unicode/utf16"
)

// Value is a sealed interface over the types allowed in canonical JSON.
// Only String, Int, Bool, Array, and Object implement it.
// There is no float type; use Decimal.
type Value interface {
	irValue()
}

// String is a string value.
type String string

func (String) irValue() {}

// Int is an integer value.
type Int int64

func (Int) irValue() {}

// Bool is a boolean value.
type Bool bool

func (Bool) irValue() {}

// Array is an ordered list of values.
type Array []Value

func (Array) irValue() {}

// Object maps string keys to values.
// Use SortedKeys() for deterministic iteration.
type Object map[string]Value

func (Object) irValue() {}

// Decimal encodes f as the shortest decimal string that parses back to
// exactly f. NaN and infinities encode as "NaN", "+Inf" and "-Inf".
func Decimal(f float64) String {
	return String(strconv.FormatFloat(f, 'g', -1, 64))
}

// Decimals encodes each element of fs with Decimal.
func Decimals(fs []float64) Array {
	arr := make(Array, len(fs))
	for i, f := range fs {
		arr[i] = Decimal(f)
	}
	return arr
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's string comparison uses UTF-8 bytes, which orders some keys differently.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

// compareUTF16 compares strings by UTF-16 code units.
func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}
