package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/roach88/spikegen/internal/artifact"
	"github.com/roach88/spikegen/internal/config"
	"github.com/roach88/spikegen/internal/ir"
	"github.com/roach88/spikegen/internal/logging"
	"github.com/roach88/spikegen/internal/pointproc"
	"github.com/roach88/spikegen/internal/store"
)

// Engine runs generation pipelines and, when given a store, records every
// attempt in the run ledger.
type Engine struct {
	ids    IDGenerator
	logger *slog.Logger
	store  *store.Store
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDGenerator sets the run ID source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithStore enables the run ledger.
func WithStore(s *store.Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithClock sets the wall clock used for created_at. Default: time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		ids:    UUIDv7Generator{},
		logger: logging.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run is the result of one successful generation.
type Run struct {
	ID         string
	Config     *config.Config
	ParamsHash string
	Digest     string
	Bundle     *ir.Bundle
	CreatedAt  time.Time
}

// Generate runs the three generators in order off one source seeded from
// cfg.Seed and assembles the bundle. It writes nothing.
//
// cfg is expected to have passed Validate; generator parameter errors are
// still caught and reported as a RunError naming the stage.
func (e *Engine) Generate(ctx context.Context, cfg *config.Config) (*Run, error) {
	return e.generate(ctx, e.ids.Generate(), cfg)
}

func (e *Engine) generate(ctx context.Context, id string, cfg *config.Config) (*Run, error) {
	paramsHash, err := ir.ParamsHash(Params(cfg))
	if err != nil {
		return nil, newStageError(id, StageAssemble, fmt.Errorf("hash params: %w", err))
	}
	logger := e.logger.With("run_id", id)
	logger.Debug("generating", "seed", cfg.Seed, "params_hash", paramsHash)

	src := pointproc.NewSource(cfg.Seed)
	b := &ir.Bundle{Rates: append([]float64(nil), cfg.Refractory.Rates...)}

	stages := []struct {
		stage Stage
		run   func() error
	}{
		{StageHomogeneous, func() error {
			train, err := pointproc.Homogeneous(src, cfg.Homogeneous.N, cfg.Homogeneous.Rate)
			b.Homogeneous = train
			return err
		}},
		{StageInhomogeneous, func() error {
			c := cfg.Inhomogeneous
			train, err := pointproc.Inhomogeneous(src, c.N, c.Sinusoid(), c.Oversampling)
			b.Inhomogeneous = train
			return err
		}},
		{StageRefractory, func() error {
			c := cfg.Refractory
			cols, err := pointproc.Refractory(src, c.N, c.Rates, c.Period, c.SharedDraws)
			for _, col := range cols {
				b.Refractory = append(b.Refractory, col)
			}
			return err
		}},
	}

	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return nil, newStageError(id, s.stage, err)
		}
		start := time.Now()
		if err := s.run(); err != nil {
			logger.Debug("stage failed", "stage", s.stage, "error", err)
			return nil, newStageError(id, s.stage, err)
		}
		logger.Debug("stage complete", "stage", s.stage, "elapsed", time.Since(start))
	}

	if err := b.Validate(); err != nil {
		return nil, newStageError(id, StageAssemble, err)
	}
	rows, cols := b.Shape()
	logger.Log(ctx, logging.LevelTrace, "bundle assembled",
		"hom_last_ms", b.Homogeneous.Last(),
		"inh_last_ms", b.Inhomogeneous.Last(),
		"ref_rows", rows,
		"ref_cols", cols,
	)

	return &Run{
		ID:         id,
		Config:     cfg,
		ParamsHash: paramsHash,
		Digest:     ir.BundleDigest(b),
		Bundle:     b,
		CreatedAt:  e.now(),
	}, nil
}

// Execute generates a bundle, writes the artifact atomically to
// cfg.Output.Path and records the attempt in the ledger if one is
// configured. A failed generation writes no artifact but is still recorded.
func (e *Engine) Execute(ctx context.Context, cfg *config.Config) (*Run, error) {
	format, err := cfg.ArtifactFormat()
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}

	id := e.ids.Generate()
	run, genErr := e.generate(ctx, id, cfg)
	if genErr == nil {
		if err := artifact.WriteFile(cfg.Output.Path, run.Bundle, format); err != nil {
			genErr = newStageError(id, StageWrite, err)
		}
	}

	if e.store != nil {
		rec, err := e.record(id, cfg, format, run, genErr)
		if err == nil {
			err = e.store.WriteRun(ctx, rec)
		}
		if err != nil {
			if genErr != nil {
				return nil, fmt.Errorf("%w (ledger: %v)", genErr, err)
			}
			return nil, fmt.Errorf("record run %s: %w", id, err)
		}
	}

	if genErr != nil {
		e.logger.Info("run failed", "run_id", id, "code", CodeOf(genErr), "stage", StageOf(genErr))
		return nil, genErr
	}
	e.logger.Info("run complete",
		"run_id", run.ID,
		"output", cfg.Output.Path,
		"format", format,
		"digest", run.Digest,
	)
	return run, nil
}

func (e *Engine) record(id string, cfg *config.Config, format artifact.Format, run *Run, runErr error) (store.Run, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return store.Run{}, fmt.Errorf("marshal config: %w", err)
	}
	paramsHash, err := ir.ParamsHash(Params(cfg))
	if err != nil {
		return store.Run{}, err
	}

	rec := store.Run{
		ID:          id,
		ParamsHash:  paramsHash,
		ConfigJSON:  string(cfgJSON),
		Seed:        strconv.FormatUint(cfg.Seed, 10),
		Format:      string(format),
		OutputPath:  cfg.Output.Path,
		Status:      store.StatusOK,
		ToolVersion: ir.ToolVersion,
		CreatedAt:   e.now(),
	}
	if run != nil {
		rec.Shapes = store.ShapesOf(run.Bundle)
		rec.BundleDigest = run.Digest
		rec.CreatedAt = run.CreatedAt
	}
	if runErr != nil {
		rec.Status = store.StatusFailed
		rec.BundleDigest = ""
		rec.ErrorCode = string(CodeOf(runErr))
		rec.ErrorMessage = runErr.Error()
	}
	return rec, nil
}
