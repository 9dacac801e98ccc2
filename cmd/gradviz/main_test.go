package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gvErrors "github.com/ezoic/gradviz/pkg/errors"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(&out)
	cmd.SetArgs(append(args, "--log-level=disabled"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDescend(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "descend",
		"--seed=1", "--iterations=5", "--interval=1ms", "--plot-dir="+dir)
	require.NoError(t, err)

	assert.Contains(t, out, "iter    1")
	assert.Contains(t, out, "iter    5")
	assert.Contains(t, out, "state:      converged after 5 of 5 iterations")
	assert.Contains(t, out, "optimum:")
	for _, name := range []string{"loss.png", "regression.png", "contour.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestDescendQuietWithMetricsServer(t *testing.T) {
	out, err := execute(t, "descend", "--quiet",
		"--seed=2", "--features=2", "--iterations=3", "--interval=1ms",
		"--metrics-addr=127.0.0.1:0")
	require.NoError(t, err)
	assert.NotContains(t, out, "iter ")
	assert.Contains(t, out, "after 3 of 3 iterations")
}

func TestDescendRejectsBadConfig(t *testing.T) {
	_, err := execute(t, "descend", "--learning-rate=0")
	var ve *gvErrors.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "learning-rate", ve.ParamName)
}

func TestSurface(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "surface", "--seed=4", "--steps=10",
		"--probe=1,0.5", "--probe=-1,0", "--plot-dir="+dir)
	require.NoError(t, err)

	assert.Contains(t, out, "lattice minimum:")
	assert.Contains(t, out, "probe w=1.0000 b=0.5000")
	assert.Contains(t, out, "probe w=-1.0000 b=0.0000")
	_, err = os.Stat(filepath.Join(dir, "contour.png"))
	assert.NoError(t, err)

	_, err = execute(t, "surface", "--probe=1")
	assert.Error(t, err)
}

func TestRegress(t *testing.T) {
	out, err := execute(t, "regress", "--seed=3", "--samples=40", "--features=3", "--noise=0")
	require.NoError(t, err)
	assert.Contains(t, out, "features:   3")
	assert.Contains(t, out, "r2:         1.000000")
	assert.Contains(t, out, "mse:        0.000000")
}

func TestVector(t *testing.T) {
	out, err := execute(t, "vector", "cross", "1,0,0", "0,1,0")
	require.NoError(t, err)
	assert.Equal(t, "(0.00, 0.00, 1.00) (magnitude 1.00)\n", out)

	out, err = execute(t, "vector", "dot", "1,0,0", "0,1,0")
	require.NoError(t, err)
	assert.Equal(t, "0.00 (angle 90.0°)\n", out)

	_, err = execute(t, "vector", "scale", "1,0,0", "0,1,0")
	assert.Error(t, err)
	_, err = execute(t, "vector", "add", "1,0", "0,1,0")
	assert.Error(t, err)
}

func TestDescendStandardized(t *testing.T) {
	out, err := execute(t, "descend", "--quiet", "--standardize",
		"--seed=5", "--features=2", "--iterations=4", "--interval=1ms")
	require.NoError(t, err)
	assert.Contains(t, out, "raw units:")
}
