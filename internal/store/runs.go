package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/spikegen/internal/ir"
)

// ErrRunNotFound is returned by GetRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// RunStatus records how a generation attempt ended.
type RunStatus string

const (
	StatusOK     RunStatus = "ok"
	StatusFailed RunStatus = "failed"
)

// Shapes records the array lengths of a generated bundle.
type Shapes struct {
	Homogeneous    int `json:"hom"`
	Inhomogeneous  int `json:"inh"`
	RefractoryRows int `json:"ref_rows"`
	RefractoryCols int `json:"ref_cols"`
}

// ShapesOf returns the shapes of b.
func ShapesOf(b *ir.Bundle) Shapes {
	rows, cols := b.Shape()
	return Shapes{
		Homogeneous:    len(b.Homogeneous),
		Inhomogeneous:  len(b.Inhomogeneous),
		RefractoryRows: rows,
		RefractoryCols: cols,
	}
}

// Run is one row of the ledger.
type Run struct {
	// Seq is assigned by the store on insert.
	Seq int64

	ID         string
	ParamsHash string

	// ConfigJSON is the full configuration the run was generated from.
	ConfigJSON string

	// Seed is kept as decimal text; SQLite integers are signed.
	Seed       string
	Format     string
	OutputPath string
	Shapes     Shapes

	// BundleDigest is empty for failed runs.
	BundleDigest string

	Status       RunStatus
	ErrorCode    string
	ErrorMessage string
	ToolVersion  string
	CreatedAt    time.Time
}

// WriteRun appends a run to the ledger. Uses ON CONFLICT(id) DO NOTHING:
// a second write with the same ID is silently ignored.
func (s *Store) WriteRun(ctx context.Context, r Run) error {
	shapes, err := ir.MarshalCanonical(map[string]any{
		"hom":      r.Shapes.Homogeneous,
		"inh":      r.Shapes.Inhomogeneous,
		"ref_rows": r.Shapes.RefractoryRows,
		"ref_cols": r.Shapes.RefractoryCols,
	})
	if err != nil {
		return fmt.Errorf("write run: marshal shapes: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, params_hash, config_json, seed, format, output_path, shapes,
		 bundle_digest, status, error_code, error_message, tool_version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.ID,
		r.ParamsHash,
		r.ConfigJSON,
		r.Seed,
		r.Format,
		r.OutputPath,
		string(shapes),
		r.BundleDigest,
		string(r.Status),
		r.ErrorCode,
		r.ErrorMessage,
		r.ToolVersion,
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

const runColumns = `seq, id, params_hash, config_json, seed, format, output_path, shapes,
	bundle_digest, status, error_code, error_message, tool_version, created_at`

// GetRun retrieves a run by ID. Returns ErrRunNotFound if absent.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

// ListOptions filters ListRuns.
type ListOptions struct {
	// Limit caps the number of rows; zero means no limit.
	Limit int

	// ParamsHash, if set, restricts results to one parameter set.
	ParamsHash string
}

// ListRuns returns runs newest first (ORDER BY seq DESC).
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListRuns(ctx context.Context, opts ListOptions) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if opts.ParamsHash != "" {
		query += ` WHERE params_hash = ?`
		args = append(args, opts.ParamsHash)
	}
	query += ` ORDER BY seq DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r         Run
		shapes    string
		status    string
		createdAt string
	)
	err := sc.Scan(
		&r.Seq, &r.ID, &r.ParamsHash, &r.ConfigJSON, &r.Seed, &r.Format, &r.OutputPath,
		&shapes, &r.BundleDigest, &status, &r.ErrorCode, &r.ErrorMessage, &r.ToolVersion, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	r.Status = RunStatus(status)

	if err := json.Unmarshal([]byte(shapes), &r.Shapes); err != nil {
		return Run{}, fmt.Errorf("run %s: unmarshal shapes: %w", r.ID, err)
	}
	r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: parse created_at: %w", r.ID, err)
	}
	return r, nil
}
