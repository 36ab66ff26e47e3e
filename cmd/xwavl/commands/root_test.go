package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xwavl/internal/bench"
)

func execute(t *testing.T, args ...string) (string, error) {
	out := &bytes.Buffer{}
	rootCmd := NewRootCommand("v0.0.1-test")
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Equal(t, "xwavl v0.0.1-test\n", out)
}

func TestBenchWAVLCommand(t *testing.T) {
	out, err := execute(t, "bench", "wavl",
		"--sizes=50,200",
		"--repeats=2",
		"--key-mode=sequential",
		"--seed=9",
		"--log-level=error",
	)
	require.NoError(t, err)
	require.Contains(t, out, "WAVL rebalancing steps")
	require.Contains(t, out, "200")
}

func TestBenchDHeapCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xwavl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sizes: [300]
arities: [2, 6]
log:
  level: error
`), 0o600))
	out, err := execute(t, "--config", path, "bench", "dheap", "--workers=2")
	require.NoError(t, err)
	require.Contains(t, out, "d-ary heap comparisons")
	require.Contains(t, out, "300")
}

func TestBenchCommandErrors(t *testing.T) {
	_, err := execute(t, "bench", "wavl", "--key-mode=zigzag", "--log-level=error")
	require.ErrorIs(t, err, bench.ErrConfigInvalidKeyMode)

	_, err = execute(t, "bench", "dheap", "--arities=1", "--log-level=error")
	require.ErrorIs(t, err, bench.ErrConfigInvalidArity)

	_, err = execute(t, "bench", "wavl", "extra")
	require.Error(t, err)

	_, err = execute(t, "--config", filepath.Join(t.TempDir(), "none.yaml"), "bench", "wavl")
	require.Error(t, err)
}
