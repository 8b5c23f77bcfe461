// Package ir provides the data model shared by every spikegen package.
//
// This package contains type definitions and pure encoders only. All other
// internal packages import ir; ir imports nothing internal.
//
// Two kinds of data live here:
//   - Spike data: SpikeTrain and Bundle, the numeric payload written to
//     artifacts. Times are float64 milliseconds.
//   - Identity data: Value trees and their canonical JSON encoding, used to
//     hash generation parameters. Value trees carry NO floats; parameters
//     that are floats are encoded with Decimal, which yields the shortest
//     decimal string that round-trips to the same float64.
//
// Key design constraints:
//   - Canonical JSON follows RFC 8785 key ordering (UTF-16 code units)
//   - Strings are NFC normalized at the serialization boundary
//   - Digests use SHA-256 with domain separation
package ir
