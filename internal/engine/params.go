package engine

import (
	"strconv"

	"github.com/roach88/spikegen/internal/config"
	"github.com/roach88/spikegen/internal/ir"
)

// Params returns the canonical parameter map of cfg: everything that
// determines the generated data and nothing else. Output location, format
// and log level are excluded, so the same data written as .mat or .json
// shares one params hash.
//
// Floats are carried as shortest round-trip decimal strings; the seed is a
// decimal string because it may exceed the int64 range.
func Params(cfg *config.Config) ir.Object {
	return ir.Object{
		"format_version": ir.String(ir.FormatVersion),
		"seed":           ir.String(strconv.FormatUint(cfg.Seed, 10)),
		"homogeneous": ir.Object{
			"n":    ir.Int(cfg.Homogeneous.N),
			"rate": ir.Decimal(cfg.Homogeneous.Rate),
		},
		"inhomogeneous": ir.Object{
			"n":            ir.Int(cfg.Inhomogeneous.N),
			"amplitude":    ir.Decimal(cfg.Inhomogeneous.Amplitude),
			"baseline":     ir.Decimal(cfg.Inhomogeneous.Baseline),
			"frequency":    ir.Decimal(cfg.Inhomogeneous.Frequency),
			"max_rate":     ir.Decimal(cfg.Inhomogeneous.MaxRate),
			"oversampling": ir.Decimal(cfg.Inhomogeneous.Oversampling),
		},
		"refractory": ir.Object{
			"n":                 ir.Int(cfg.Refractory.N),
			"rates":             ir.Decimals(cfg.Refractory.Rates),
			"refractory_period": ir.Decimal(cfg.Refractory.Period),
			"shared_draws":      ir.Bool(cfg.Refractory.SharedDraws),
		},
	}
}
