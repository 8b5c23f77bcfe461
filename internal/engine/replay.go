package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/spikegen/internal/config"
	"github.com/roach88/spikegen/internal/ir"
	"github.com/roach88/spikegen/internal/store"
)

// ErrNoLedger is returned by Replay on an engine built without a store.
var ErrNoLedger = errors.New("replay requires a run ledger")

// ReplayResult compares a regenerated run with its ledger row.
type ReplayResult struct {
	Original store.Run

	// Run is the regenerated run; nil if regeneration failed.
	Run *Run

	// Err is the regeneration failure, if any.
	Err error

	// Match reports whether regeneration reproduced the recorded outcome:
	// the same bundle digest for a successful run, the same error code for
	// a failed one.
	Match bool
}

// Replay regenerates run id from its recorded configuration and compares
// the outcome. Nothing is written: no artifact, no ledger row.
func (e *Engine) Replay(ctx context.Context, id string) (*ReplayResult, error) {
	if e.store == nil {
		return nil, ErrNoLedger
	}
	orig, err := e.store.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}

	cfg := &config.Config{}
	if err := json.Unmarshal([]byte(orig.ConfigJSON), cfg); err != nil {
		return nil, fmt.Errorf("replay %s: decode config: %w", id, err)
	}
	hash, err := ir.ParamsHash(Params(cfg))
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", id, err)
	}
	if hash != orig.ParamsHash {
		return nil, fmt.Errorf("replay %s: recorded config hashes to %s, ledger says %s", id, hash, orig.ParamsHash)
	}

	run, genErr := e.generate(ctx, orig.ID, cfg)
	if CodeOf(genErr) == ErrCodeCanceled {
		return nil, genErr
	}

	res := &ReplayResult{Original: orig, Run: run, Err: genErr}
	switch {
	case orig.Status == store.StatusOK:
		res.Match = genErr == nil && run.Digest == orig.BundleDigest
	case orig.ErrorCode == string(ErrCodeArtifactWrite), orig.ErrorCode == string(ErrCodeCanceled):
		// Neither outcome depends on the parameters; a clean regeneration
		// is all the run could have produced.
		res.Match = genErr == nil
	default:
		res.Match = genErr != nil && string(CodeOf(genErr)) == orig.ErrorCode
	}

	e.logger.Info("replay",
		"run_id", id,
		"match", res.Match,
		"recorded_status", orig.Status,
	)
	return res, nil
}
