// Package engine runs the spike-train generation pipeline.
//
// A run draws every train from one seeded source, in a fixed order:
//
//  1. homogeneous Poisson train
//  2. inhomogeneous train (candidates at r_max, then thinning)
//  3. refractory trains, one column per driving rate
//
// The stages share the source, so each stage's draws depend on how many
// the previous stages consumed. Changing one stage's parameters therefore
// changes the later trains too; the seed plus the full parameter set is
// what determines a bundle.
//
// The first failing stage aborts the run. Nothing is written for a failed
// run except its ledger row.
//
// # Identity
//
//   - Run ID: UUIDv7, unique per attempt
//   - Params hash: SHA-256 over the canonical parameter map (see Params)
//   - Bundle digest: SHA-256 over the IEEE-754 bits of every array
//
// Two runs with the same params hash must have the same bundle digest.
// Replay checks exactly that.
package engine
