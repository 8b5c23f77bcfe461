package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/spikegen/internal/engine"
	"github.com/roach88/spikegen/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplayResult is the payload of the replay command.
type ReplayResult struct {
	RunID          string `json:"run_id"`
	RecordedStatus string `json:"recorded_status"`
	RecordedDigest string `json:"recorded_digest,omitempty"`
	RecordedCode   string `json:"recorded_error_code,omitempty"`
	Digest         string `json:"digest,omitempty"`
	ErrorCode      string `json:"error_code,omitempty"`
	Deterministic  bool   `json:"deterministic"`
}

func (r ReplayResult) String() string {
	var b strings.Builder
	mark := "✓"
	if !r.Deterministic {
		mark = "✗"
	}
	fmt.Fprintf(&b, "%s %s (recorded %s)\n", mark, r.RunID, r.RecordedStatus)
	if r.RecordedStatus == string(store.StatusOK) {
		fmt.Fprintf(&b, "  recorded: %s\n", r.RecordedDigest)
	} else {
		fmt.Fprintf(&b, "  recorded: %s\n", r.RecordedCode)
	}
	if r.ErrorCode != "" {
		fmt.Fprintf(&b, "  replayed: %s", r.ErrorCode)
	} else {
		fmt.Fprintf(&b, "  replayed: %s", r.Digest)
	}
	return b.String()
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <run-id>",
		Short: "Regenerate a recorded run and verify determinism",
		Long: `Regenerate a run from the configuration recorded in the ledger and
compare the bundle digest (or, for a failed run, the error code) with the
recorded outcome. Nothing is written.

Exit codes:
  0 - Replay reproduced the recorded outcome
  1 - Replay differs from the recorded outcome
  2 - Command error (ledger not found, unknown run, etc.)

Examples:
  spikegen replay --db ./spikegen.db 0192f3c1-6f5e-7a8b-9c0d-1e2f3a4b5c6d`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run ledger (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := store.OpenExisting(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLedger, err, nil)
	}
	defer st.Close()

	eng := engine.New(
		engine.WithStore(st),
		engine.WithLogger(opts.newLogger("info", formatter.GetErrWriter())),
	)

	ctx, stop := signalContext(cmd)
	defer stop()

	res, err := eng.Replay(ctx, id)
	if errors.Is(err, store.ErrRunNotFound) {
		return formatter.Fail(ExitCommandError, ErrCodeRunNotFound, err, nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLedger, err, nil)
	}

	result := ReplayResult{
		RunID:          res.Original.ID,
		RecordedStatus: string(res.Original.Status),
		RecordedDigest: res.Original.BundleDigest,
		RecordedCode:   res.Original.ErrorCode,
		ErrorCode:      string(engine.CodeOf(res.Err)),
		Deterministic:  res.Match,
	}
	if res.Run != nil {
		result.Digest = res.Run.Digest
	}

	if !res.Match {
		if opts.Format == "json" {
			_ = formatter.Error(ErrCodeMismatch, "replay does not reproduce the recorded run", result)
		} else {
			fmt.Fprintln(formatter.Writer, result)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("replay of %s differs from the recorded run", id))
	}
	return formatter.Success(result)
}
