// Package preprocessing rescales dataset features before gradient descent.
//
// Features on very different scales make the loss surface a long narrow
// valley, and a learning rate small enough for the steep direction crawls
// along the flat one. Rescaling every feature to a comparable range lets a
// single learning rate work for all weights.
//
// Both scalers are per-feature affine maps x' = (x - Shift[j]) / Scale[j],
// so parameters learned on scaled data map back exactly to the raw feature
// space with UnscaleParams:
//
//	scaler := preprocessing.NewStandardScaler()
//	scaled, err := preprocessing.ScaleDataset(ds, scaler)
//	// ... run descent on scaled ...
//	w, b, err := scaler.UnscaleParams(snap.Weights, snap.Bias)
package preprocessing

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/gradviz/core/model"
	"github.com/ezoic/gradviz/dataset"
	gvErrors "github.com/ezoic/gradviz/pkg/errors"
)

// Scales below this are treated as constant features and left unscaled.
const minScale = 1e-8

// Scaler is a fitted per-feature transformation.
type Scaler interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
	InverseTransform(X mat.Matrix) (mat.Matrix, error)
	UnscaleParams(weights []float64, bias float64) ([]float64, float64, error)
}

// affine holds x' = (x - Shift) / Scale for every feature.
type affine struct {
	State *model.StateManager
	Shift []float64
	Scale []float64
	name  string
}

func newAffine(name string) affine {
	return affine{State: model.NewStateManager(), name: name}
}

func (a *affine) checkFitted(method string, c int) error {
	if !a.State.IsFitted() {
		return gvErrors.NewNotFittedError(a.name, method)
	}
	if c != len(a.Shift) {
		return gvErrors.NewDimensionError(a.name+"."+method, len(a.Shift), c, 1)
	}
	return nil
}

// Transform applies the fitted map to X.
func (a *affine) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer gvErrors.Recover(&err, a.name+".Transform")
	r, c := X.Dims()
	if err := a.checkFitted("Transform", c); err != nil {
		return nil, err
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, j int, v float64) float64 {
		return (v - a.Shift[j]) / a.Scale[j]
	}, X)
	return out, nil
}

// InverseTransform maps scaled data back to the raw feature space.
func (a *affine) InverseTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer gvErrors.Recover(&err, a.name+".InverseTransform")
	r, c := X.Dims()
	if err := a.checkFitted("InverseTransform", c); err != nil {
		return nil, err
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, j int, v float64) float64 {
		return v*a.Scale[j] + a.Shift[j]
	}, X)
	return out, nil
}

// UnscaleParams converts a model y = w·x' + b fitted on scaled features into
// the equivalent model on raw features:
//
//	w_raw[j] = w[j] / Scale[j]
//	b_raw    = b - Σ w[j] * Shift[j] / Scale[j]
func (a *affine) UnscaleParams(weights []float64, bias float64) ([]float64, float64, error) {
	if err := a.checkFitted("UnscaleParams", len(weights)); err != nil {
		return nil, 0, err
	}
	raw := make([]float64, len(weights))
	for j, w := range weights {
		raw[j] = w / a.Scale[j]
		bias -= raw[j] * a.Shift[j]
	}
	return raw, bias, nil
}

func (a *affine) setFitted(shift, scale []float64, nSamples int) {
	for j, s := range scale {
		if math.Abs(s) < minScale {
			scale[j] = 1
		}
	}
	a.Shift, a.Scale = shift, scale
	a.State.SetDimensions(len(shift), nSamples)
	a.State.SetFitted()
}

func columns(X mat.Matrix) ([][]float64, int, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, 0, gvErrors.NewModelError("preprocessing.Fit", "empty data", gvErrors.ErrEmptyData)
	}
	cols := make([][]float64, c)
	for j := range cols {
		cols[j] = mat.Col(nil, j, X)
	}
	return cols, r, nil
}

// StandardScaler centers each feature at zero mean and scales it to unit
// population standard deviation.
type StandardScaler struct {
	affine
}

// NewStandardScaler creates an unfitted StandardScaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{affine: newAffine("StandardScaler")}
}

// Fit computes each feature's mean and standard deviation.
//
// Errors:
//   - ErrEmptyData: if X is empty
func (s *StandardScaler) Fit(X mat.Matrix) (err error) {
	defer gvErrors.Recover(&err, "StandardScaler.Fit")
	cols, r, err := columns(X)
	if err != nil {
		return err
	}
	mean := make([]float64, len(cols))
	std := make([]float64, len(cols))
	for j, col := range cols {
		mean[j], std[j] = stat.PopMeanStdDev(col, nil)
	}
	s.setFitted(mean, std, r)
	return nil
}

// Mean returns the fitted per-feature means.
func (s *StandardScaler) Mean() []float64 { return s.Shift }

// MinMaxScaler maps each feature's observed range onto [0, 1].
type MinMaxScaler struct {
	affine
}

// NewMinMaxScaler creates an unfitted MinMaxScaler.
func NewMinMaxScaler() *MinMaxScaler {
	return &MinMaxScaler{affine: newAffine("MinMaxScaler")}
}

// Fit records each feature's minimum and range.
//
// Errors:
//   - ErrEmptyData: if X is empty
func (s *MinMaxScaler) Fit(X mat.Matrix) (err error) {
	defer gvErrors.Recover(&err, "MinMaxScaler.Fit")
	cols, r, err := columns(X)
	if err != nil {
		return err
	}
	lo := make([]float64, len(cols))
	span := make([]float64, len(cols))
	for j, col := range cols {
		mn, mx := math.Inf(1), math.Inf(-1)
		for _, v := range col {
			mn, mx = math.Min(mn, v), math.Max(mx, v)
		}
		lo[j], span[j] = mn, mx-mn
	}
	s.setFitted(lo, span, r)
	return nil
}

// ScaleDataset fits s on the features of ds and returns a dataset with
// scaled features and the original targets.
func ScaleDataset(ds *dataset.Dataset, s Scaler) (*dataset.Dataset, error) {
	if err := s.Fit(ds.Matrix()); err != nil {
		return nil, err
	}
	scaled, err := s.Transform(ds.Matrix())
	if err != nil {
		return nil, err
	}
	r, c := scaled.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(make([]float64, c), i, scaled)
	}
	return dataset.New(rows, ds.Targets())
}
