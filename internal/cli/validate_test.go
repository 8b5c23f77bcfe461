package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spikegen/internal/config"
	"github.com/roach88/spikegen/internal/engine"
	"github.com/roach88/spikegen/internal/ir"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spikegen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestValidateDefaults(t *testing.T) {
	path := writeConfig(t, "")

	stdout, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var res ValidationResult
	resp := decodeData(t, stdout, &res)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, res.Valid)
	assert.Equal(t, "mat", res.Format)

	want, err := ir.ParamsHash(engine.Params(config.Default()))
	require.NoError(t, err)
	assert.Equal(t, want, res.ParamsHash)
	require.NotNil(t, res.Config)
	assert.Equal(t, config.Default().Refractory.Rates, res.Config.Refractory.Rates)
}

func TestValidateTextShowsEffectiveConfig(t *testing.T) {
	path := writeConfig(t, "seed: 11\nrefractory:\n  shared_draws: false\n")

	stdout, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Config valid")
	assert.Contains(t, stdout, "params: ")
	assert.Contains(t, stdout, "seed: 11")
	assert.Contains(t, stdout, "shared_draws: false")
}

func TestValidateSinusoidOutOfBounds(t *testing.T) {
	path := writeConfig(t, "inhomogeneous:\n  amplitude: 80\n")

	stdout, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ Validation failed")
	assert.Contains(t, stdout, "inhomogeneous")
}

func TestValidateSchemaViolationJSON(t *testing.T) {
	path := writeConfig(t, "refractory:\n  rates: []\n")

	stdout, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeData(t, stdout, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidConfig, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "refractory")
	assert.Equal(t, map[string]any{"valid": false}, resp.Error.Details)
}

func TestValidateUnknownField(t *testing.T) {
	path := writeConfig(t, "homogenous:\n  n: 10\n")

	_, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestValidateMissingFile(t *testing.T) {
	_, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/spikegen.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateRequiresArg(t *testing.T) {
	_, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
