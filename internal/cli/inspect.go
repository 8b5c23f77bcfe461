package cli

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/spikegen/internal/analysis"
	"github.com/roach88/spikegen/internal/artifact"
	"github.com/roach88/spikegen/internal/ir"
	"github.com/roach88/spikegen/internal/pointproc"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Window           float64
	PhaseFrequency   float64
	Bins             int
	RefractoryPeriod float64
}

func (o *InspectOptions) check() error {
	if !(o.Window > 0) || math.IsInf(o.Window, 0) {
		return fmt.Errorf("--window must be positive and finite, got %v", o.Window)
	}
	if o.PhaseFrequency < 0 || math.IsInf(o.PhaseFrequency, 0) || math.IsNaN(o.PhaseFrequency) {
		return fmt.Errorf("--phase-frequency must be non-negative and finite, got %v", o.PhaseFrequency)
	}
	if o.Bins < 1 {
		return fmt.Errorf("--bins must be >= 1, got %d", o.Bins)
	}
	return nil
}

// TrainReport summarizes one spike train of an artifact.
type TrainReport struct {
	Name string `json:"name"`

	// DrivingRate is set for refractory columns.
	DrivingRate float64 `json:"driving_rate_hz,omitempty"`

	Stats analysis.Stats `json:"stats"`
	Fano  *float64       `json:"fano_factor,omitempty"`

	// KS is the distance of the ISIs from an exponential: at the estimated
	// rate for the homogeneous train, at the driving rate less
	// --refractory-period for refractory columns.
	KS *float64 `json:"ks_distance,omitempty"`
}

// InspectResult is the payload of the inspect command.
type InspectResult struct {
	Path   string        `json:"path"`
	Format string        `json:"format"`
	Size   int64         `json:"size_bytes"`
	Digest string        `json:"bundle_digest"`
	Trains []TrainReport `json:"trains"`

	// PhaseDensity is the inhomogeneous train's rate per phase bin, set
	// when --phase-frequency is given.
	PhaseDensity []float64 `json:"phase_density_hz,omitempty"`
}

func (r InspectResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s, %s)\n", r.Path, r.Format, humanize.Bytes(uint64(r.Size)))
	fmt.Fprintf(&b, "digest: %s\n\n", r.Digest)
	fmt.Fprintf(&b, "%-18s %6s %10s %9s %9s %6s %9s %7s %7s\n",
		"train", "n", "span_ms", "mean_isi", "min_isi", "cv", "rate_hz", "fano", "ks")
	for _, t := range r.Trains {
		fmt.Fprintf(&b, "%-18s %6d %10.1f %9.3f %9.3f %6.3f %9.2f %7s %7s\n",
			t.Name, t.Stats.Count, t.Stats.Duration, t.Stats.MeanISI, t.Stats.MinISI,
			t.Stats.CV, t.Stats.Rate, optional(t.Fano), optional(t.KS))
	}
	if len(r.PhaseDensity) > 0 {
		parts := make([]string, len(r.PhaseDensity))
		for i, v := range r.PhaseDensity {
			parts[i] = fmt.Sprintf("%.1f", v)
		}
		fmt.Fprintf(&b, "\nphase density (Hz): %s\n", strings.Join(parts, " "))
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <artifact>",
		Short: "Summarize the spike trains in an artifact",
		Long: `Read an artifact (format from its extension) and report ISI statistics
for every train: count, span, mean and minimum ISI, coefficient of variation,
estimated rate and Fano factor.

Examples:
  spikegen inspect PoissonSpikeTrains.mat
  spikegen inspect trains.arrow --phase-frequency 10 --bins 12`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, args[0], cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.Window, "window", 100, "Fano factor counting window (ms)")
	cmd.Flags().Float64Var(&opts.PhaseFrequency, "phase-frequency", 0, "modulation frequency (Hz) for the inhomogeneous phase density")
	cmd.Flags().IntVar(&opts.Bins, "bins", 10, "phase density bins")
	cmd.Flags().Float64Var(&opts.RefractoryPeriod, "refractory-period", -1, "refractory period (ms) for the KS distance of refractory columns; negative skips it")

	return cmd
}

func runInspect(opts *InspectOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if err := opts.check(); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidConfig, err, nil)
	}
	format, err := artifact.FormatFromPath(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeIO, err, nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeIO, err, nil)
	}
	b, err := artifact.ReadFile(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeIO, err, nil)
	}
	formatter.VerboseLog("Decoded %s as %s", path, format)

	report := inspectBundle(b, opts)
	report.Path = path
	report.Format = string(format)
	report.Size = info.Size()
	return formatter.Success(report)
}

func inspectBundle(b *ir.Bundle, opts *InspectOptions) InspectResult {
	res := InspectResult{Digest: ir.BundleDigest(b)}

	// Short trains leave Fano and KS unset rather than failing the report.
	add := func(name string, train []float64, drivingRate, tr float64) {
		t := TrainReport{Name: name, DrivingRate: drivingRate, Stats: analysis.Summarize(train)}
		if fano, err := analysis.FanoFactor(train, opts.Window); err == nil {
			t.Fano = &fano
		}
		rate := t.Stats.Rate
		if drivingRate > 0 {
			rate = drivingRate
		}
		if tr >= 0 && rate > 0 {
			isis := analysis.StripRefractory(pointproc.ISIs(train), tr)
			if d, err := analysis.ExponentialKS(isis, rate); err == nil {
				t.KS = &d
			}
		}
		res.Trains = append(res.Trains, t)
	}

	add(ir.FieldHomogeneous, b.Homogeneous, 0, 0)
	add(ir.FieldInhomogeneous, b.Inhomogeneous, 0, -1)
	for j, col := range b.Refractory {
		tr := -1.0
		if opts.RefractoryPeriod >= 0 {
			tr = opts.RefractoryPeriod
		}
		add(fmt.Sprintf("%s[%d]", ir.FieldRefractory, j), col, b.Rates[j], tr)
	}

	if opts.PhaseFrequency > 0 {
		if density, err := analysis.PhaseDensity(b.Inhomogeneous, opts.PhaseFrequency, opts.Bins); err == nil {
			res.PhaseDensity = density
		}
	}
	return res
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.3f", *v)
}
