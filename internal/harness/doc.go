// Package harness runs property scenarios against the generation pipeline.
//
// A scenario is a YAML file naming a configuration (defaults plus
// overrides) and a list of assertions about the generated bundle:
//
//	name: classic-homogeneous
//	description: 1000 spikes at 100 Hz
//	seed: 42
//	config:
//	  homogeneous: {n: 1000, rate: 100}
//	assertions:
//	  - type: length
//	    train: hom
//	    count: 1000
//	  - type: mean_isi
//	    train: hom
//	    value: 10
//	    tolerance: 0.1
//
// Each scenario runs through the real engine with a fixed run ID. Spike
// times depend on the seed, so golden snapshots record only the
// seed-independent outcome: shapes, error code and which checks passed.
package harness
