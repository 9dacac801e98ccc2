// Package dataset provides the labeled data consumed by the visualizations.
//
// A Dataset is an immutable n x d feature matrix paired with n targets. It is
// either built from literal values with New / FromPoints, or sampled from a
// hidden ground-truth linear model by a Generator:
//
//	gen := dataset.NewGenerator(dataset.WithRandomState(42))
//	ds, err := gen.Generate(20, 1, 0.8)
//
// Each visualization owns its own Dataset; nothing is shared between them.
package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/gradviz/pkg/errors"
)

// Dataset is an ordered set of samples with a fixed feature count.
type Dataset struct {
	x *mat.Dense
	y *mat.VecDense
}

// New builds a Dataset from per-sample feature vectors and targets.
// Every feature vector must have the same, non-zero length.
func New(features [][]float64, targets []float64) (*Dataset, error) {
	n := len(features)
	if n == 0 {
		return nil, errors.NewModelError("dataset.New", "no samples", errors.ErrEmptyData)
	}
	if len(targets) != n {
		return nil, errors.NewDimensionError("dataset.New", n, len(targets), 0)
	}
	d := len(features[0])
	if d == 0 {
		return nil, errors.NewModelError("dataset.New", "no features", errors.ErrEmptyData)
	}

	x := mat.NewDense(n, d, nil)
	for i, row := range features {
		if len(row) != d {
			return nil, errors.NewDimensionError("dataset.New", d, len(row), 1)
		}
		x.SetRow(i, row)
	}
	y := mat.NewVecDense(n, append([]float64(nil), targets...))
	return &Dataset{x: x, y: y}, nil
}

// FromPoints builds a single-feature Dataset from (x, y) pairs.
func FromPoints(xs, ys []float64) (*Dataset, error) {
	features := make([][]float64, len(xs))
	for i, x := range xs {
		features[i] = []float64{x}
	}
	return New(features, ys)
}

// NSamples returns the number of samples.
func (d *Dataset) NSamples() int {
	r, _ := d.x.Dims()
	return r
}

// NFeatures returns the feature count shared by every sample.
func (d *Dataset) NFeatures() int {
	_, c := d.x.Dims()
	return c
}

// X returns a copy of the feature matrix.
func (d *Dataset) X() *mat.Dense {
	return mat.DenseCopyOf(d.x)
}

// Y returns a copy of the target vector.
func (d *Dataset) Y() *mat.VecDense {
	return mat.VecDenseCopyOf(d.y)
}

// Features returns a copy of the feature vectors, one slice per sample.
func (d *Dataset) Features() [][]float64 {
	n, c := d.x.Dims()
	out := make([][]float64, n)
	for i := range out {
		out[i] = mat.Row(make([]float64, c), i, d.x)
	}
	return out
}

// Targets returns a copy of the targets.
func (d *Dataset) Targets() []float64 {
	return mat.Col(nil, 0, d.y)
}

// Column returns a copy of feature j across all samples. Single-feature
// views use Column(0) as their x axis.
func (d *Dataset) Column(j int) []float64 {
	return mat.Col(nil, j, d.x)
}

// Matrix exposes the feature matrix read-only for the linear package.
func (d *Dataset) Matrix() mat.Matrix {
	return d.x
}

// Vector exposes the target vector read-only for the linear package.
func (d *Dataset) Vector() mat.Vector {
	return d.y
}
