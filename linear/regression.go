// Package linear implements the linear model y = X·w + b.
//
// The package has two layers:
//
//   - Pure functions (Predict, MeanSquaredError, Gradients, Loss, Update) over
//     caller-owned parameters. They hold no state and are what the gradient
//     descent engine and the loss-surface view call on every step.
//   - LinearRegression, a closed-form least-squares fit. It gives the point
//     of minimum loss that gradient descent walks towards, and serves as the
//     static multivariate predictor.
//
// Example usage:
//
//	preds, err := linear.Predict(X, []float64{0.5, -1}, 0.2)
//	loss, err := linear.MeanSquaredError(y, preds)
//	grad, err := linear.Gradients(X, y, preds, 2)
//
//	lr := linear.NewLinearRegression()
//	err = lr.Fit(X, yColumn)
package linear

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/gradviz/core/model"
	"github.com/ezoic/gradviz/metrics"
	gvErrors "github.com/ezoic/gradviz/pkg/errors"
	"github.com/ezoic/gradviz/pkg/log"
)

// LinearRegression is an ordinary least squares model solved through the
// normal equations.
type LinearRegression struct {
	State     *model.StateManager
	Weights   *mat.VecDense
	Intercept float64
	NFeatures int
	logger    log.Logger
}

var _ model.Regressor = (*LinearRegression)(nil)

// NewLinearRegression creates an untrained model.
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{
		State: model.NewStateManager(),
		logger: log.GetLoggerWithName("linear").With(
			log.ModelNameKey, "LinearRegression",
			log.ComponentKey, "linear",
		),
	}
}

// Fit solves (XᵀX)w = Xᵀy with a leading column of ones for the intercept.
//
// Parameters:
//   - X: Feature matrix of shape (n_samples, n_features)
//   - y: Target column of shape (n_samples, 1)
//
// Errors:
//   - ErrEmptyData: if X is empty
//   - ErrDimensionMismatch: if X and y have different numbers of rows
//   - ErrSingularMatrix: if XᵀX cannot be inverted
func (lr *LinearRegression) Fit(X, y mat.Matrix) (err error) {
	defer gvErrors.Recover(&err, "LinearRegression.Fit")

	startTime := time.Now()
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return gvErrors.NewModelError("LinearRegression.Fit", "empty data", gvErrors.ErrEmptyData)
	}
	if ry != r {
		return gvErrors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return gvErrors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	lr.logger.Debug("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)

	// [1, X]
	design := mat.NewDense(r, c+1, nil)
	for i := 0; i < r; i++ {
		design.Set(i, 0, 1)
		for j := 0; j < c; j++ {
			design.Set(i, j+1, X.At(i, j))
		}
	}

	var xtx mat.Dense
	xtx.Mul(design.T(), design)

	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		return gvErrors.NewModelError("LinearRegression.Fit", "singular matrix", gvErrors.ErrSingularMatrix)
	}

	var xty mat.VecDense
	xty.MulVec(design.T(), mat.NewVecDense(r, mat.Col(nil, 0, y)))

	var theta mat.VecDense
	theta.MulVec(&inv, &xty)

	lr.NFeatures = c
	lr.Intercept = theta.AtVec(0)
	lr.Weights = mat.NewVecDense(c, nil)
	for j := 0; j < c; j++ {
		lr.Weights.SetVec(j, theta.AtVec(j+1))
	}

	lr.State.SetFitted()
	lr.State.SetDimensions(c, r)

	lr.logger.Debug("Training completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
	)
	return nil
}

// Predict returns an (n_samples, 1) matrix of predictions.
//
// Errors:
//   - NotFittedError: if the model hasn't been trained yet
//   - ErrDimensionMismatch: if X has a different number of features than the training data
func (lr *LinearRegression) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer gvErrors.Recover(&err, "LinearRegression.Predict")
	if !lr.State.IsFitted() {
		return nil, gvErrors.NewNotFittedError("LinearRegression", "Predict")
	}

	preds, err := Predict(X, lr.GetWeights(), lr.Intercept)
	if err != nil {
		return nil, err
	}

	lr.logger.Debug("Prediction completed",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.PredsKey, len(preds),
	)
	return mat.NewDense(len(preds), 1, preds), nil
}

// GetWeights returns a copy of the learned weights, or nil before Fit.
func (lr *LinearRegression) GetWeights() []float64 {
	if lr.Weights == nil {
		return nil
	}
	return mat.Col(nil, 0, lr.Weights)
}

// GetIntercept returns the learned intercept, or 0 before Fit.
func (lr *LinearRegression) GetIntercept() float64 {
	if !lr.State.IsFitted() {
		return 0
	}
	return lr.Intercept
}

// Score returns the R² of the model's predictions on (X, y).
func (lr *LinearRegression) Score(X, y mat.Matrix) (_ float64, err error) {
	defer gvErrors.Recover(&err, "LinearRegression.Score")
	if !lr.State.IsFitted() {
		return 0, gvErrors.NewNotFittedError("LinearRegression", "Score")
	}

	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	r, _ := y.Dims()
	pr, _ := yPred.Dims()
	if r != pr {
		return 0, gvErrors.NewDimensionError("LinearRegression.Score", pr, r, 0)
	}
	return metrics.R2Score(
		mat.NewVecDense(r, mat.Col(nil, 0, y)),
		mat.NewVecDense(pr, mat.Col(nil, 0, yPred)),
	)
}

// IsFitted returns whether the model has been fitted.
func (lr *LinearRegression) IsFitted() bool {
	return lr.State.IsFitted()
}
