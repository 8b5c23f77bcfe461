package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// execute runs cmd with args and returns what it wrote to stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// smallConfig writes a quick-to-generate config whose artifact goes to
// output, and returns its path.
func smallConfig(t *testing.T, dir, output string) string {
	t.Helper()
	cfg := `seed: 7
output:
  path: ` + output + `
homogeneous:
  n: 50
inhomogeneous:
  n: 50
refractory:
  n: 50
  rates: [10, 100]
`
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))
	return path
}

// decodeData decodes a JSON CLIResponse and its data payload into data.
func decodeData(t *testing.T, raw string, data any) CLIResponse {
	t.Helper()
	var env struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &env), "output: %s", raw)
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return CLIResponse{Status: env.Status, Error: env.Error}
}
