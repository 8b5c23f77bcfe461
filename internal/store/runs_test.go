package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spikegen/internal/ir"
)

func testRun(id string) Run {
	return Run{
		ID:           id,
		ParamsHash:   "params-" + id,
		ConfigJSON:   `{"seed":42}`,
		Seed:         "42",
		Format:       "mat",
		OutputPath:   "PoissonSpikeTrains.mat",
		Shapes:       Shapes{Homogeneous: 1000, Inhomogeneous: 1000, RefractoryRows: 1000, RefractoryCols: 6},
		BundleDigest: "digest-" + id,
		Status:       StatusOK,
		ToolVersion:  ir.ToolVersion,
		CreatedAt:    time.Date(2024, 3, 1, 12, 0, 0, 500, time.UTC),
	}
}

func TestWriteRun_GetRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	want := testRun("run-1")
	require.NoError(t, s.WriteRun(ctx, want))

	got, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Seq)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at %v", got.CreatedAt)

	want.Seq, want.CreatedAt = got.Seq, got.CreatedAt
	assert.Equal(t, want, got)
}

func TestWriteRun_FailedRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	r := testRun("run-failed")
	r.Status = StatusFailed
	r.BundleDigest = ""
	r.Shapes = Shapes{}
	r.ErrorCode = "INSUFFICIENT_SAMPLES"
	r.ErrorMessage = "thinning kept 10 of 20 candidates, 15 requested"
	require.NoError(t, s.WriteRun(ctx, r))

	got, err := s.GetRun(ctx, "run-failed")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "INSUFFICIENT_SAMPLES", got.ErrorCode)
	assert.Empty(t, got.BundleDigest)
}

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := testRun("run-1")
	require.NoError(t, s.WriteRun(ctx, first))

	second := testRun("run-1")
	second.BundleDigest = "different"
	require.NoError(t, s.WriteRun(ctx, second))

	got, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, first.BundleDigest, got.BundleDigest, "first write wins")

	runs, err := s.ListRuns(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestWriteRun_RejectsUnknownStatus(t *testing.T) {
	s := createTestStore(t)
	r := testRun("run-1")
	r.Status = "pending"
	assert.Error(t, s.WriteRun(context.Background(), r))
}

func TestGetRun_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.GetRun(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.WriteRun(ctx, testRun(fmt.Sprintf("run-%d", i))))
	}

	runs, err := s.ListRuns(ctx, ListOptions{Limit: 3})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-5", runs[0].ID)
	assert.Equal(t, "run-4", runs[1].ID)
	assert.Equal(t, "run-3", runs[2].ID)
}

func TestListRuns_ByParamsHash(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a1, a2, b := testRun("a1"), testRun("a2"), testRun("b")
	a1.ParamsHash, a2.ParamsHash, b.ParamsHash = "A", "A", "B"
	for _, r := range []Run{a1, b, a2} {
		require.NoError(t, s.WriteRun(ctx, r))
	}

	runs, err := s.ListRuns(ctx, ListOptions{ParamsHash: "A"})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "a2", runs[0].ID)
	assert.Equal(t, "a1", runs[1].ID)
}

func TestListRuns_Empty(t *testing.T) {
	s := createTestStore(t)
	runs, err := s.ListRuns(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestShapesOf(t *testing.T) {
	b := &ir.Bundle{
		Homogeneous:   ir.SpikeTrain{1, 2, 3},
		Inhomogeneous: ir.SpikeTrain{1},
		Refractory:    []ir.SpikeTrain{{1, 2}, {3, 4}, {5, 6}},
		Rates:         []float64{1, 2, 3},
	}
	assert.Equal(t, Shapes{Homogeneous: 3, Inhomogeneous: 1, RefractoryRows: 2, RefractoryCols: 3}, ShapesOf(b))
}
