package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/spikegen/internal/config"
	"github.com/roach88/spikegen/internal/engine"
	"github.com/roach88/spikegen/internal/store"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	ConfigPath     string
	Output         string
	ArtifactFormat string
	Seed           uint64
	Database       string

	// IDs overrides the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs engine.IDGenerator
}

// GenerateResult is the payload reported for a successful run.
type GenerateResult struct {
	RunID      string       `json:"run_id"`
	Output     string       `json:"output"`
	Format     string       `json:"format"`
	Seed       uint64       `json:"seed"`
	ParamsHash string       `json:"params_hash"`
	Digest     string       `json:"bundle_digest"`
	Shapes     store.Shapes `json:"shapes"`
}

func (r GenerateResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ Wrote %s (%s)\n", r.Output, r.Format)
	fmt.Fprintf(&b, "  run:    %s\n", r.RunID)
	fmt.Fprintf(&b, "  seed:   %d\n", r.Seed)
	fmt.Fprintf(&b, "  params: %s\n", r.ParamsHash)
	fmt.Fprintf(&b, "  digest: %s\n", r.Digest)
	fmt.Fprintf(&b, "  SpikeTimes_hom %d, SpikeTimes_inh %d, SpikeTimes_ref %dx%d",
		r.Shapes.Homogeneous, r.Shapes.Inhomogeneous, r.Shapes.RefractoryRows, r.Shapes.RefractoryCols)
	return b.String()
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	return newGenerateCommand(&GenerateOptions{RootOptions: rootOpts})
}

func newGenerateCommand(opts *GenerateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the spike train artifact",
		Long: `Generate the homogeneous, inhomogeneous and refractory spike trains
and write them to one artifact.

Configuration is layered: built-in defaults, then --config, then SPIKEGEN_*
environment variables, then flags. With --db every attempt, successful or
not, is recorded in the run ledger.

Exit codes:
  0 - Artifact written
  1 - Generation or artifact write failed
  2 - Command error (invalid config, unreadable file, etc.)

Examples:
  spikegen generate
  spikegen generate --config run.yaml --out trains.arrow
  spikegen generate --seed 7 --db ./spikegen.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config file")
	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "artifact path (overrides config)")
	cmd.Flags().StringVar(&opts.ArtifactFormat, "artifact-format", "", "artifact format: mat|json|arrow (default: from extension)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed (overrides config)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run ledger")

	return cmd
}

func runGenerate(opts *GenerateOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidConfig, err, nil)
	}
	if opts.Output != "" {
		cfg.Output.Path = opts.Output
	}
	if opts.ArtifactFormat != "" {
		cfg.Output.Format = opts.ArtifactFormat
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = opts.Seed
	}
	if err := cfg.Validate(); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidConfig, err, nil)
	}

	logger := opts.newLogger(cfg.Logging.Level, formatter.GetErrWriter())
	engOpts := []engine.Option{engine.WithLogger(logger)}
	if opts.IDs != nil {
		engOpts = append(engOpts, engine.WithIDGenerator(opts.IDs))
	}

	if opts.Database != "" {
		logger.Debug("opening ledger", "path", opts.Database)
		st, err := store.Open(opts.Database)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeLedger, err, nil)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing ledger", "error", closeErr)
			}
		}()
		engOpts = append(engOpts, engine.WithStore(st))
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	run, err := engine.New(engOpts...).Execute(ctx, cfg)
	if err != nil {
		code := string(engine.CodeOf(err))
		if code == "" {
			code = ErrCodeLedger
		}
		var details map[string]string
		if stage := engine.StageOf(err); stage != "" {
			details = map[string]string{"stage": string(stage)}
		}
		return formatter.Fail(ExitFailure, code, err, details)
	}

	format, _ := cfg.ArtifactFormat()
	return formatter.Success(GenerateResult{
		RunID:      run.ID,
		Output:     cfg.Output.Path,
		Format:     string(format),
		Seed:       cfg.Seed,
		ParamsHash: run.ParamsHash,
		Digest:     run.Digest,
		Shapes:     store.ShapesOf(run.Bundle),
	})
}

// signalContext derives a context from the command's that is canceled on
// SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
