package surface

import (
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/gradviz/dataset"
	"github.com/ezoic/gradviz/linear"
	"github.com/ezoic/gradviz/pkg/errors"
	"github.com/ezoic/gradviz/pkg/log"
)

// Probe is one evaluated point of the loss surface.
type Probe struct {
	Weight float64
	Bias   float64
	Loss   float64
}

// Explorer evaluates the loss at parameters chosen by hand, the way a user
// drags weight and bias sliders. Every Set is recorded in the history.
//
// An Explorer keeps its own parameters, separate from any descent.Engine
// on the same dataset.
type Explorer struct {
	mu      sync.Mutex
	x       mat.Matrix
	y       []float64
	current Probe
	history []Probe
	logger  log.Logger
}

// NewExplorer starts at w = 0, b = 0. The starting point is not part of the
// history.
//
// Errors:
//   - ErrDimensionMismatch: if ds does not have exactly one feature
func NewExplorer(ds *dataset.Dataset) (*Explorer, error) {
	if ds == nil {
		return nil, errors.NewModelError("surface.NewExplorer", "nil dataset", errors.ErrEmptyData)
	}
	if ds.NFeatures() != 1 {
		return nil, errors.NewDimensionError("surface.NewExplorer", 1, ds.NFeatures(), 1)
	}

	e := &Explorer{
		x:      ds.Matrix(),
		y:      ds.Targets(),
		logger: log.GetLoggerWithName("surface").With(log.ComponentKey, "explorer"),
	}
	loss, err := e.lossAt(0, 0)
	if err != nil {
		return nil, err
	}
	e.current = Probe{Loss: loss}
	return e, nil
}

func (e *Explorer) lossAt(w, b float64) (float64, error) {
	return linear.Loss(e.x, e.y, []float64{w}, b)
}

// Set moves to (weight, bias), evaluates the loss there and appends the
// result to the history.
func (e *Explorer) Set(weight, bias float64) (Probe, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	loss, err := e.lossAt(weight, bias)
	if err != nil {
		return Probe{}, err
	}
	errors.Warn(errors.CheckScalar("loss", loss, len(e.history)))

	p := Probe{Weight: weight, Bias: bias, Loss: loss}
	e.current = p
	e.history = append(e.history, p)
	e.logger.Debug("Probe", log.WeightsKey, weight, log.BiasKey, bias, log.LossKey, loss)
	return p, nil
}

// Current returns the latest point.
func (e *Explorer) Current() Probe {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// History returns a copy of every point passed to Set, oldest first.
func (e *Explorer) History() []Probe {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Probe, len(e.history))
	copy(out, e.history)
	return out
}
