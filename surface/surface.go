// Package surface evaluates the mean squared error of a single-feature linear
// model y = w*x + b over a lattice of (w, b) values, and records manual
// exploration of that surface.
//
// A Grid implements gonum/plot's plotter.GridXYZ with weight on the X axis
// and bias on the Y axis, so it can be passed straight to plotter.NewContour
// or plotter.NewHeatMap.
package surface

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/plotter"

	"github.com/ezoic/gradviz/dataset"
	"github.com/ezoic/gradviz/linear"
	"github.com/ezoic/gradviz/pkg/errors"
)

// Defaults for the lattice bounds and resolution.
var (
	DefaultWeightRange = dataset.Interval{Min: -3, Max: 3}
	DefaultBiasRange   = dataset.Interval{Min: -3, Max: 3}
)

// DefaultSteps is the number of divisions along each axis.
const DefaultSteps = 50

// Grid holds the loss at every lattice point.
type Grid struct {
	weights []float64
	biases  []float64
	// rows index bias, columns index weight
	loss *mat.Dense
}

var _ plotter.GridXYZ = (*Grid)(nil)

// NewGrid evaluates the loss of ds on steps+1 evenly spaced weights and
// biases, endpoints included.
//
// Errors:
//   - ErrDimensionMismatch: if ds does not have exactly one feature
//   - ValidationError: if steps < 1 or a range is empty or not finite
func NewGrid(ds *dataset.Dataset, wRange, bRange dataset.Interval, steps int) (*Grid, error) {
	if ds == nil {
		return nil, errors.NewModelError("surface.NewGrid", "nil dataset", errors.ErrEmptyData)
	}
	if ds.NFeatures() != 1 {
		return nil, errors.NewDimensionError("surface.NewGrid", 1, ds.NFeatures(), 1)
	}
	if steps < 1 {
		return nil, errors.NewValidationError("steps", "must be at least 1", steps)
	}
	if err := checkRange("weight_range", wRange); err != nil {
		return nil, err
	}
	if err := checkRange("bias_range", bRange); err != nil {
		return nil, err
	}

	g := &Grid{
		weights: floats.Span(make([]float64, steps+1), wRange.Min, wRange.Max),
		biases:  floats.Span(make([]float64, steps+1), bRange.Min, bRange.Max),
		loss:    mat.NewDense(steps+1, steps+1, nil),
	}

	X, y := ds.Matrix(), ds.Targets()
	w := make([]float64, 1)
	for r, b := range g.biases {
		for c, wv := range g.weights {
			w[0] = wv
			l, err := linear.Loss(X, y, w, b)
			if err != nil {
				return nil, err
			}
			g.loss.Set(r, c, l)
		}
	}
	return g, nil
}

func checkRange(name string, r dataset.Interval) error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
		return errors.NewValidationError(name, "bounds must be finite", r)
	}
	if r.Min >= r.Max {
		return errors.NewValidationError(name, "min must be below max", r)
	}
	return nil
}

// Dims returns the number of weight columns and bias rows.
func (g *Grid) Dims() (c, r int) {
	return len(g.weights), len(g.biases)
}

// Z returns the loss at weight column c and bias row r.
func (g *Grid) Z(c, r int) float64 {
	return g.loss.At(r, c)
}

// X returns the weight of column c.
func (g *Grid) X(c int) float64 {
	return g.weights[c]
}

// Y returns the bias of row r.
func (g *Grid) Y(r int) float64 {
	return g.biases[r]
}

// Min returns the lattice point with the lowest loss.
func (g *Grid) Min() Probe {
	rows, _ := g.loss.Dims()
	best := Probe{Loss: math.Inf(1)}
	for r := 0; r < rows; r++ {
		row := g.loss.RawRowView(r)
		c := floats.MinIdx(row)
		if row[c] < best.Loss {
			best = Probe{Weight: g.weights[c], Bias: g.biases[r], Loss: row[c]}
		}
	}
	return best
}

// Max returns the highest loss on the lattice.
func (g *Grid) Max() float64 {
	return mat.Max(g.loss)
}
