package linear

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	gvErrors "github.com/ezoic/gradviz/pkg/errors"
)

func TestPredict(t *testing.T) {
	tests := []struct {
		name    string
		X       *mat.Dense
		weights []float64
		bias    float64
		want    []float64
	}{
		{
			name:    "single feature",
			X:       mat.NewDense(3, 1, []float64{1, 2, 3}),
			weights: []float64{2},
			bias:    1,
			want:    []float64{3, 5, 7},
		},
		{
			name: "two features",
			X: mat.NewDense(2, 2, []float64{
				1, 2,
				-1, 0.5,
			}),
			weights: []float64{0.5, -2},
			bias:    0.25,
			want:    []float64{0.5 - 4 + 0.25, -0.5 - 1 + 0.25},
		},
		{
			name:    "zero weights predict the bias",
			X:       mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}),
			weights: []float64{0, 0, 0},
			bias:    -1.5,
			want:    []float64{-1.5, -1.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Predict(tt.X, tt.weights, tt.bias)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, got, 1e-12)
		})
	}
}

func TestPredictDimensionMismatch(t *testing.T) {
	_, err := Predict(mat.NewDense(2, 2, nil), []float64{1}, 0)
	require.Error(t, err)

	var de *gvErrors.DimensionError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 1, de.Expected)
	assert.Equal(t, 2, de.Got)
}

func TestMeanSquaredError(t *testing.T) {
	got, err := MeanSquaredError([]float64{1, 2, 3}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	got, err = MeanSquaredError([]float64{2, 4}, []float64{0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, got, 1e-12)

	_, err = MeanSquaredError([]float64{1, 2}, []float64{1})
	assert.True(t, errors.Is(err, gvErrors.ErrDimensionMismatch))

	_, err = MeanSquaredError(nil, nil)
	assert.True(t, errors.Is(err, gvErrors.ErrEmptyData))
}

// Hand computed: errors are -2 and -4, so the bias gradient is -3 and the
// weight gradient is (-2*1 + -4*2) / 2 = -5.
func TestGradientsHandComputed(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{1, 2})
	y := []float64{2, 4}
	weights := []float64{0}

	preds, err := Predict(X, weights, 0)
	require.NoError(t, err)

	grad, err := Gradients(X, y, preds, 1)
	require.NoError(t, err)
	assert.InDelta(t, -5.0, grad.Weights[0], 1e-12)
	assert.InDelta(t, -3.0, grad.Bias, 1e-12)

	w, b := Update(weights, 0, grad, 0.1)
	assert.InDelta(t, 0.5, w[0], 1e-12)
	assert.InDelta(t, 0.3, b, 1e-12)
	assert.Equal(t, []float64{0}, weights, "Update must not modify its input")
}

// The gradient is half the derivative of MSE; compare against central
// differences of the loss.
func TestGradientsMatchFiniteDifferences(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	const n, d = 12, 3
	X := mat.NewDense(n, d, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			X.Set(i, j, rng.Float64()*4-2)
		}
		y[i] = rng.Float64()*10 - 5
	}
	weights := []float64{0.3, -1.2, 0.8}
	bias := 0.4

	preds, err := Predict(X, weights, bias)
	require.NoError(t, err)
	grad, err := Gradients(X, y, preds, d)
	require.NoError(t, err)

	const h = 1e-6
	for j := 0; j < d; j++ {
		up := append([]float64(nil), weights...)
		down := append([]float64(nil), weights...)
		up[j] += h
		down[j] -= h
		lu, err := Loss(X, y, up, bias)
		require.NoError(t, err)
		ld, err := Loss(X, y, down, bias)
		require.NoError(t, err)
		assert.InDelta(t, (lu-ld)/(2*h)/2, grad.Weights[j], 1e-6)
	}

	lu, _ := Loss(X, y, weights, bias+h)
	ld, _ := Loss(X, y, weights, bias-h)
	assert.InDelta(t, (lu-ld)/(2*h)/2, grad.Bias, 1e-6)
}

func TestGradientsErrors(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{1, 2})

	_, err := Gradients(X, []float64{1, 2}, []float64{1, 2}, 2)
	assert.True(t, errors.Is(err, gvErrors.ErrDimensionMismatch), "weight count")

	_, err = Gradients(X, []float64{1}, []float64{1, 2}, 1)
	assert.True(t, errors.Is(err, gvErrors.ErrDimensionMismatch), "yTrue length")

	_, err = Gradients(X, []float64{1, 2}, []float64{1, 2, 3}, 1)
	assert.True(t, errors.Is(err, gvErrors.ErrDimensionMismatch), "yPred length")
}
