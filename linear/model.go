package linear

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/gradviz/metrics"
	"github.com/ezoic/gradviz/pkg/errors"
)

// Gradient holds the partial derivatives of the loss with respect to each
// weight and the bias.
type Gradient struct {
	Weights []float64
	Bias    float64
}

// Predict returns dot(X[i], weights) + bias for every row of X.
//
// Errors:
//   - ErrDimensionMismatch: if X has a different number of columns than weights
func Predict(X mat.Matrix, weights []float64, bias float64) ([]float64, error) {
	r, c := X.Dims()
	if c != len(weights) {
		return nil, errors.NewDimensionError("linear.Predict", len(weights), c, 1)
	}

	preds := make([]float64, r)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		preds[i] = floats.Dot(mat.Row(row, i, X), weights) + bias
	}
	return preds, nil
}

// MeanSquaredError returns the mean of the squared differences between
// yTrue and yPred.
//
// Errors:
//   - ErrEmptyData: if the inputs are empty
//   - ErrDimensionMismatch: if the lengths differ
func MeanSquaredError(yTrue, yPred []float64) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewModelError("linear.MeanSquaredError", "no samples", errors.ErrEmptyData)
	}
	if len(yPred) != n {
		return 0, errors.NewDimensionError("linear.MeanSquaredError", n, len(yPred), 0)
	}
	return metrics.MSE(mat.NewVecDense(n, yTrue), mat.NewVecDense(n, yPred))
}

// Gradients returns the gradient of the loss at the parameters that produced
// yPred. With error_i = yPred[i] - yTrue[i]:
//
//	Bias       = mean(error_i)
//	Weights[j] = mean(error_i * X[i][j])
//
// This is the derivative of MSE without its factor of 2. Every caller in
// gradviz uses the same scaling, so a learning rate means the same thing in
// the engine, the loss-surface view and the tests.
func Gradients(X mat.Matrix, yTrue, yPred []float64, weightCount int) (Gradient, error) {
	r, c := X.Dims()
	if r == 0 {
		return Gradient{}, errors.NewModelError("linear.Gradients", "no samples", errors.ErrEmptyData)
	}
	if c != weightCount {
		return Gradient{}, errors.NewDimensionError("linear.Gradients", weightCount, c, 1)
	}
	if len(yTrue) != r {
		return Gradient{}, errors.NewDimensionError("linear.Gradients", r, len(yTrue), 0)
	}
	if len(yPred) != r {
		return Gradient{}, errors.NewDimensionError("linear.Gradients", r, len(yPred), 0)
	}

	grad := Gradient{Weights: make([]float64, weightCount)}
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		e := yPred[i] - yTrue[i]
		grad.Bias += e
		floats.AddScaled(grad.Weights, e, mat.Row(row, i, X))
	}

	m := 1 / float64(r)
	grad.Bias *= m
	floats.Scale(m, grad.Weights)
	return grad, nil
}

// Loss is MeanSquaredError(y, Predict(X, weights, bias)).
func Loss(X mat.Matrix, y, weights []float64, bias float64) (float64, error) {
	preds, err := Predict(X, weights, bias)
	if err != nil {
		return 0, err
	}
	return MeanSquaredError(y, preds)
}

// Update takes one step against the gradient and returns the new parameters.
// The inputs are not modified.
func Update(weights []float64, bias float64, grad Gradient, learningRate float64) ([]float64, float64) {
	next := make([]float64, len(weights))
	copy(next, weights)
	floats.AddScaled(next, -learningRate, grad.Weights)
	return next, bias - learningRate*grad.Bias
}
