package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/spikegen/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database   string
	Limit      int
	ParamsHash string

	// Now overrides the reference time for relative timestamps (for testing).
	Now func() time.Time
}

// HistoryEntry is one ledger row as reported by the history command.
type HistoryEntry struct {
	ID           string       `json:"id"`
	Status       string       `json:"status"`
	Seed         string       `json:"seed"`
	Format       string       `json:"format"`
	OutputPath   string       `json:"output_path"`
	ParamsHash   string       `json:"params_hash"`
	BundleDigest string       `json:"bundle_digest,omitempty"`
	Shapes       store.Shapes `json:"shapes"`
	ErrorCode    string       `json:"error_code,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// HistoryResult is the payload of the history command.
type HistoryResult struct {
	Runs []HistoryEntry `json:"runs"`

	now time.Time
}

func (r HistoryResult) String() string {
	if len(r.Runs) == 0 {
		return "No runs recorded."
	}
	var b strings.Builder
	for _, run := range r.Runs {
		mark := "✓"
		if run.Status != string(store.StatusOK) {
			mark = "✗"
		}
		fmt.Fprintf(&b, "%s %s  seed=%s  %s  %s\n", mark, run.ID, run.Seed, run.OutputPath,
			humanize.RelTime(run.CreatedAt, r.now, "ago", "from now"))
		if run.ErrorCode != "" {
			fmt.Fprintf(&b, "    %s: %s\n", run.ErrorCode, run.ErrorMessage)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return newHistoryCommand(&HistoryOptions{RootOptions: rootOpts})
}

func newHistoryCommand(opts *HistoryOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `List runs from the ledger, newest first. Failed runs are listed with
their error code.

Examples:
  spikegen history --db ./spikegen.db
  spikegen history --db ./spikegen.db --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run ledger (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs (0 = all)")
	cmd.Flags().StringVar(&opts.ParamsHash, "params", "", "only runs with this params hash")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if opts.Limit < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidConfig,
			fmt.Errorf("--limit must be >= 0, got %d", opts.Limit), nil)
	}

	st, err := store.OpenExisting(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLedger, err, nil)
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), store.ListOptions{Limit: opts.Limit, ParamsHash: opts.ParamsHash})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLedger, err, nil)
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	result := HistoryResult{Runs: make([]HistoryEntry, 0, len(runs)), now: now()}
	for _, r := range runs {
		result.Runs = append(result.Runs, HistoryEntry{
			ID:           r.ID,
			Status:       string(r.Status),
			Seed:         r.Seed,
			Format:       r.Format,
			OutputPath:   r.OutputPath,
			ParamsHash:   r.ParamsHash,
			BundleDigest: r.BundleDigest,
			Shapes:       r.Shapes,
			ErrorCode:    r.ErrorCode,
			ErrorMessage: r.ErrorMessage,
			CreatedAt:    r.CreatedAt,
		})
	}
	return formatter.Success(result)
}
