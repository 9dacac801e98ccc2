// Package model holds the abstractions shared by gradviz's models.
//
// Models track their trained state through a StateManager held by
// composition:
//
//	type LinearRegression struct {
//		State *model.StateManager
//		...
//	}
//
//	func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
//		// training logic
//		lr.State.SetFitted()
//		return nil
//	}
package model

import "gonum.org/v1/gonum/mat"

// Fitter is a model trained from a feature matrix and a target column.
type Fitter interface {
	Fit(X, y mat.Matrix) error
}

// Predictor produces an n x 1 prediction matrix for an n x d feature matrix.
type Predictor interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Regressor is a fitted-state aware regression model.
type Regressor interface {
	Fitter
	Predictor
	Score(X, y mat.Matrix) (float64, error)
	IsFitted() bool
}
