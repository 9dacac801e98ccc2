// Package viz renders engine snapshots and loss surfaces as gonum/plot
// figures for the command-line tool.
package viz

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ezoic/gradviz/dataset"
	"github.com/ezoic/gradviz/descent"
	"github.com/ezoic/gradviz/pkg/errors"
	"github.com/ezoic/gradviz/surface"
)

// Default figure size used by Save.
const (
	Width  = 8 * vg.Inch
	Height = 6 * vg.Inch
)

var (
	residualColor = color.RGBA{R: 220, G: 50, B: 47, A: 255}
	pathColor     = color.RGBA{R: 38, G: 139, B: 210, A: 255}
)

// LossCurve plots loss against iteration. Non-finite losses from a diverged
// run are left out.
func LossCurve(s descent.Snapshot) (*plot.Plot, error) {
	pts := make(plotter.XYs, 0, len(s.LossHistory))
	for i, l := range s.LossHistory {
		if math.IsNaN(l) || math.IsInf(l, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(i), Y: l})
	}
	if len(pts) == 0 {
		return nil, errors.NewValueError("viz.LossCurve", "no finite loss values to plot")
	}

	p := plot.New()
	p.Title.Text = "Loss During Training"
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Mean Squared Error"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, errors.Wrap(err, "loss curve")
	}
	line.Width = vg.Points(2)
	p.Add(line, plotter.NewGrid())
	return p, nil
}

// RegressionLine plots a single-feature dataset, the line y = w*x + b and a
// dashed residual segment from every point to the line.
func RegressionLine(ds *dataset.Dataset, weight, bias float64) (*plot.Plot, error) {
	if ds.NFeatures() != 1 {
		return nil, errors.NewDimensionError("viz.RegressionLine", 1, ds.NFeatures(), 1)
	}
	xs, ys := ds.Column(0), ds.Targets()

	p := plot.New()
	p.Title.Text = "Linear Regression"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	for i := range xs {
		seg, err := plotter.NewLine(plotter.XYs{
			{X: xs[i], Y: ys[i]},
			{X: xs[i], Y: weight*xs[i] + bias},
		})
		if err != nil {
			return nil, errors.Wrap(err, "residual")
		}
		seg.Color = residualColor
		seg.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
		p.Add(seg)
	}

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, errors.Wrap(err, "data points")
	}
	p.Add(scatter)
	p.Legend.Add("Data points", scatter)

	minX, maxX := floats.Min(xs), floats.Max(xs)
	line, err := plotter.NewLine(plotter.XYs{
		{X: minX, Y: weight*minX + bias},
		{X: maxX, Y: weight*maxX + bias},
	})
	if err != nil {
		return nil, errors.Wrap(err, "regression line")
	}
	line.Width = vg.Points(2)
	p.Add(line)
	p.Legend.Add("Regression line", line)
	return p, nil
}

// Contour draws loss contours of g. If path is non-empty it is overlaid as
// the sequence of (weight, bias) points the optimizer visited.
func Contour(g *surface.Grid, path []descent.PathPoint, levels int) (*plot.Plot, error) {
	if levels < 2 {
		return nil, errors.NewValidationError("levels", "must be at least 2", levels)
	}

	p := plot.New()
	p.Title.Text = "Loss Contour Plot"
	p.X.Label.Text = "Weight (w)"
	p.Y.Label.Text = "Bias (b)"

	c := plotter.NewContour(g, contourLevels(g.Min().Loss, g.Max(), levels), palette.Heat(levels, 1))
	p.Add(c)

	if len(path) > 0 {
		pts := make(plotter.XYs, 0, len(path))
		for _, pt := range path {
			if math.IsNaN(pt.Weight) || math.IsInf(pt.Weight, 0) || math.IsNaN(pt.Bias) || math.IsInf(pt.Bias, 0) {
				break
			}
			pts = append(pts, plotter.XY{X: pt.Weight, Y: pt.Bias})
		}
		if len(pts) > 0 {
			line, scatter, err := plotter.NewLinePoints(pts)
			if err != nil {
				return nil, errors.Wrap(err, "descent path")
			}
			line.Color = pathColor
			scatter.Color = pathColor
			scatter.Radius = vg.Points(1.5)
			p.Add(line, scatter)
			p.Legend.Add("Descent path", line, scatter)
		}
	}
	return p, nil
}

// contourLevels spaces levels evenly in sqrt(loss). Squared error grows
// quadratically away from the minimum, so this keeps rings about evenly
// spaced in parameter space.
func contourLevels(lowest, highest float64, n int) []float64 {
	lo, hi := math.Sqrt(math.Max(lowest, 0)), math.Sqrt(math.Max(highest, 0))
	levels := make([]float64, n)
	if n == 1 {
		levels[0] = (lo + hi) / 2
	} else {
		// skip the exact minimum, which is a single point
		floats.Span(levels, lo+(hi-lo)/float64(n+1), hi)
	}
	for i, v := range levels {
		levels[i] = v * v
	}
	return levels
}

// Save writes p to path at the default size. The format follows the file
// extension (png, svg, pdf, ...).
func Save(p *plot.Plot, path string) error {
	if err := p.Save(Width, Height, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}
