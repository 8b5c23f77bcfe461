package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/spikegen/internal/config"
	"github.com/roach88/spikegen/internal/engine"
	"github.com/roach88/spikegen/internal/ir"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool           `json:"valid"`
	ParamsHash string         `json:"params_hash,omitempty"`
	Format     string         `json:"format,omitempty"`
	Config     *config.Config `json:"config,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a config file without generating",
		Long: `Load a config file the way generate does (defaults, file, SPIKEGEN_*
environment), check it against the schema and the sinusoid bounds, and print
the effective configuration with its parameter hash.

Exit codes:
  0 - Config valid
  1 - Config failed validation
  2 - Config file missing or not parseable`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := config.Load(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidConfig, err, nil)
	}
	formatter.VerboseLog("Loaded %s", path)

	if err := cfg.Validate(); err != nil {
		if opts.Format == "json" {
			_ = formatter.Error(ErrCodeInvalidConfig, err.Error(), ValidationResult{Valid: false})
		} else {
			fmt.Fprintln(formatter.Writer, "✗ Validation failed")
			fmt.Fprintln(formatter.Writer)
			fmt.Fprintf(formatter.Writer, "  %s\n", strings.ReplaceAll(err.Error(), "\n", "\n  "))
		}
		return WrapExitError(ExitFailure, "validation failed", err)
	}

	hash, err := ir.ParamsHash(engine.Params(cfg))
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeInvalidConfig, err, nil)
	}
	format, _ := cfg.ArtifactFormat()
	result := ValidationResult{
		Valid:      true,
		ParamsHash: hash,
		Format:     string(format),
		Config:     cfg,
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	fmt.Fprintln(formatter.Writer, "✓ Config valid")
	fmt.Fprintf(formatter.Writer, "  params: %s\n", hash)
	fmt.Fprintf(formatter.Writer, "  format: %s\n\n", format)
	fmt.Fprint(formatter.Writer, string(out))
	return nil
}
