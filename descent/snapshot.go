package descent

import "time"

// Snapshot is a copy of an engine's state. Presentation code redraws from it;
// mutating a Snapshot never affects the engine.
type Snapshot struct {
	State     State
	Iteration int
	Weights   []float64
	Bias      float64
	Loss      float64

	// Parallel histories, index 0 is the initial entry. Each has length
	// Iteration+1.
	LossHistory   []float64
	WeightHistory [][]float64
	BiasHistory   []float64

	LearningRate float64
	MaxIter      int
	Interval     time.Duration
}

// Progress returns Iteration/MaxIter clamped to [0, 1]. A zero limit counts
// as complete.
func (s Snapshot) Progress() float64 {
	if s.MaxIter <= 0 {
		return 1
	}
	p := float64(s.Iteration) / float64(s.MaxIter)
	if p > 1 {
		return 1
	}
	return p
}

// PathPoint is one visited point on the loss surface of a single-feature
// model.
type PathPoint struct {
	Weight float64
	Bias   float64
	Loss   float64
}

// Path returns the (first weight, bias, loss) trajectory recorded in the
// histories, for drawing on a loss surface.
func (s Snapshot) Path() []PathPoint {
	path := make([]PathPoint, len(s.LossHistory))
	for i := range path {
		var w float64
		if len(s.WeightHistory[i]) > 0 {
			w = s.WeightHistory[i][0]
		}
		path[i] = PathPoint{Weight: w, Bias: s.BiasHistory[i], Loss: s.LossHistory[i]}
	}
	return path
}
