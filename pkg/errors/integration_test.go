package errors_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gvErrors "github.com/ezoic/gradviz/pkg/errors"
)

// TestErrorWrappingCompatibility checks custom types through fmt.Errorf %w.
func TestErrorWrappingCompatibility(t *testing.T) {
	original := gvErrors.NewNotFittedError("LinearRegression", "Predict")
	wrapped := fmt.Errorf("regression view: %w", original)

	assert.True(t, errors.Is(wrapped, original))

	var nf *gvErrors.NotFittedError
	require.True(t, errors.As(wrapped, &nf))
	assert.Equal(t, "LinearRegression", nf.ModelName)
	assert.Equal(t, "Predict", nf.Method)
}

// TestCombinedErrorTypes mixes standard and custom errors in one chain.
func TestCombinedErrorTypes(t *testing.T) {
	stdErr := fmt.Errorf("standard error")
	customErr := gvErrors.NewModelError("TestOp", "test failure", stdErr)
	wrapped := fmt.Errorf("operation context: %w", customErr)

	assert.True(t, errors.Is(wrapped, stdErr))

	var modelErr *gvErrors.ModelError
	require.True(t, errors.As(wrapped, &modelErr))
	assert.Equal(t, stdErr, modelErr.Unwrap())
}

func TestSentinelErrors(t *testing.T) {
	err := gvErrors.NewModelError("dataset.New", "no samples", gvErrors.ErrEmptyData)
	assert.True(t, gvErrors.Is(err, gvErrors.ErrEmptyData))
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", err), gvErrors.ErrEmptyData))

	dimErr := gvErrors.NewDimensionError("linear.Gradients", 4, 3, 0)
	assert.True(t, errors.Is(dimErr, gvErrors.ErrDimensionMismatch))
	assert.False(t, errors.Is(dimErr, gvErrors.ErrEmptyData))
}

func TestRecover(t *testing.T) {
	run := func(v interface{}) (err error) {
		defer gvErrors.Recover(&err, "TestRecover")
		if v != nil {
			panic(v)
		}
		return nil
	}

	assert.NoError(t, run(nil))

	err := run("boom")
	require.Error(t, err)
	var modelErr *gvErrors.ModelError
	require.True(t, errors.As(err, &modelErr))
	assert.Equal(t, "TestRecover", modelErr.Op)
	assert.Contains(t, err.Error(), "boom")

	cause := errors.New("typed panic")
	err = run(cause)
	assert.True(t, errors.Is(err, cause))
}

func TestCheckScalar(t *testing.T) {
	assert.NoError(t, gvErrors.CheckScalar("loss", 1.5, 3))

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := gvErrors.CheckScalar("loss", v, 7)
		require.Error(t, err)
		var nw *gvErrors.NumericalWarning
		require.True(t, errors.As(err, &nw))
		assert.Equal(t, 7, nw.Iteration)
	}
}

func TestWarnHandler(t *testing.T) {
	var got []error
	prev := gvErrors.SetWarningHandler(func(w error) { got = append(got, w) })
	defer gvErrors.SetWarningHandler(prev)

	gvErrors.Warn(nil)
	gvErrors.Warn(gvErrors.CheckScalar("weight", math.NaN(), 2))

	require.Len(t, got, 1)
	assert.Contains(t, got[0].Error(), "weight")
}
