// Package descent runs batch gradient descent on a linear model one step at a
// time so that each step can be observed.
//
// An Engine owns the parameters, the iteration counter and three parallel
// histories (loss, weights, bias). It moves between the states Idle,
// Running, Paused and Converged:
//
//	Idle/Paused/Converged --Start--> Running
//	Running --Pause--> Paused
//	any --Reset--> Idle
//	iteration >= limit on Step --> Converged
//
// While Running a periodic task calls Step once per interval. Observers
// registered with Subscribe receive a Snapshot after every step.
package descent

import (
	"context"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/gradviz/dataset"
	"github.com/ezoic/gradviz/linear"
	"github.com/ezoic/gradviz/pkg/errors"
	"github.com/ezoic/gradviz/pkg/log"
)

// Defaults used when the matching option is not given.
const (
	DefaultLearningRate = 0.1
	DefaultIterations   = 100
	DefaultInterval     = 200 * time.Millisecond
)

// Engine is a step-wise gradient descent state machine for a linear model.
// All methods are safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	x         mat.Matrix
	y         []float64
	nFeatures int

	learningRate float64
	maxIter      int
	interval     time.Duration

	scheduler Scheduler
	logger    log.Logger
	metrics   *Metrics

	state     State
	weights   []float64
	bias      float64
	iteration int

	lossHistory   []float64
	weightHistory [][]float64
	biasHistory   []float64

	task Task
	gen  uint64

	observers []func(Snapshot)
	// closed and replaced on every state transition
	changed chan struct{}

	// stepMu serializes steps together with their observer delivery so
	// observers see snapshots in step order.
	stepMu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithLearningRate sets the step size. It must be positive.
func WithLearningRate(lr float64) Option {
	return func(e *Engine) { e.learningRate = lr }
}

// WithIterations sets the iteration limit. It must not be negative.
func WithIterations(n int) Option {
	return func(e *Engine) { e.maxIter = n }
}

// WithInterval sets the time between timer-driven steps. It must be positive.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) { e.interval = d }
}

// WithScheduler replaces the default TickerScheduler.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates an Idle engine for ds with zero weights and bias.
//
// Errors:
//   - ErrEmptyData: if ds is nil
//   - ValidationError: if the learning rate, iteration limit or interval is out of range
func NewEngine(ds *dataset.Dataset, opts ...Option) (*Engine, error) {
	if ds == nil {
		return nil, errors.NewModelError("descent.NewEngine", "nil dataset", errors.ErrEmptyData)
	}

	e := &Engine{
		x:            ds.Matrix(),
		y:            ds.Targets(),
		nFeatures:    ds.NFeatures(),
		learningRate: DefaultLearningRate,
		maxIter:      DefaultIterations,
		interval:     DefaultInterval,
		scheduler:    TickerScheduler{},
		changed:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.GetLoggerWithName("descent")
	}
	e.logger = e.logger.With(log.ComponentKey, "engine")

	if err := validateLearningRate(e.learningRate); err != nil {
		return nil, err
	}
	if err := validateIterations(e.maxIter); err != nil {
		return nil, err
	}
	if err := validateInterval(e.interval); err != nil {
		return nil, err
	}

	if err := e.resetLocked(); err != nil {
		return nil, err
	}
	e.metrics.observeState(Idle)

	e.logger.Debug("Engine created",
		log.SamplesKey, len(e.y),
		log.FeaturesKey, e.nFeatures,
		log.LearningRateKey, e.learningRate,
		log.MaxIterKey, e.maxIter,
		log.IntervalKey, e.interval.String(),
	)
	return e, nil
}

func validateLearningRate(lr float64) error {
	if !(lr > 0) {
		return errors.NewValidationError("learning_rate", "must be positive", lr)
	}
	return nil
}

func validateIterations(n int) error {
	if n < 0 {
		return errors.NewValidationError("iterations", "must not be negative", n)
	}
	return nil
}

func validateInterval(d time.Duration) error {
	if d <= 0 {
		return errors.NewValidationError("interval", "must be positive", d)
	}
	return nil
}

// State returns the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Start begins timer-driven stepping. It is a no-op when already Running.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Running {
		return
	}
	e.setState(Running)
	e.arm()
	e.logger.Info("Descent started",
		log.IterationKey, e.iteration,
		log.MaxIterKey, e.maxIter,
		log.LearningRateKey, e.learningRate,
	)
}

// Pause stops timer-driven stepping and keeps parameters and history. It
// only has an effect while Running.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Running {
		return
	}
	e.disarm()
	e.setState(Paused)
	e.logger.Info("Descent paused", log.IterationKey, e.iteration)
}

// Reset stops the timer and returns to Idle with zero parameters and a
// single history entry.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disarm()
	if err := e.resetLocked(); err != nil {
		// Shapes are fixed at construction, so this only reports a bug.
		log.LogError(err, "descent reset failed")
	}
	e.setState(Idle)
	e.metrics.observeReset(e.lossHistory[0])
	e.logger.Info("Descent reset")
}

func (e *Engine) resetLocked() error {
	e.weights = make([]float64, e.nFeatures)
	e.bias = 0
	e.iteration = 0

	loss, err := linear.Loss(e.x, e.y, e.weights, e.bias)
	if err != nil {
		return err
	}
	e.lossHistory = []float64{loss}
	e.weightHistory = [][]float64{cloneFloats(e.weights)}
	e.biasHistory = []float64{e.bias}
	return nil
}

// SetLearningRate changes the step size from the next Step.
func (e *Engine) SetLearningRate(lr float64) error {
	if err := validateLearningRate(lr); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.learningRate = lr
	return nil
}

// SetIterations changes the iteration limit from the next Step.
func (e *Engine) SetIterations(n int) error {
	if err := validateIterations(n); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.maxIter = n
	return nil
}

// SetInterval changes the time between steps. A Running engine re-arms its
// timer; history is untouched.
func (e *Engine) SetInterval(d time.Duration) error {
	if err := validateInterval(d); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interval = d
	if e.state == Running {
		e.disarm()
		e.arm()
	}
	return nil
}

// Subscribe registers fn to receive a Snapshot after every completed step
// and on the transition to Converged. Calls happen in step order on the
// stepping goroutine. fn may call Snapshot, Pause, Start and Reset but must
// not call Step.
func (e *Engine) Subscribe(fn func(Snapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, fn)
}

// Step performs one iteration of gradient descent. Once the iteration limit
// is reached it moves to Converged and leaves parameters and history alone.
// A manual Step from Idle, or from Converged after the limit was raised,
// leaves the engine Paused.
func (e *Engine) Step() error {
	return e.step(false, 0)
}

// step runs one iteration. Timer-driven calls pass the generation of the
// task that fired and are dropped if that task has been stopped since.
func (e *Engine) step(timed bool, gen uint64) (err error) {
	defer errors.Recover(&err, "descent.Step")

	e.stepMu.Lock()
	defer e.stepMu.Unlock()

	e.mu.Lock()
	if timed && (e.state != Running || e.gen != gen) {
		e.mu.Unlock()
		return nil
	}
	snap, notify, err := e.stepLocked()
	observers := e.observers
	e.mu.Unlock()

	if err != nil || !notify {
		return err
	}
	for _, fn := range observers {
		fn(snap)
	}
	return nil
}

func (e *Engine) stepLocked() (Snapshot, bool, error) {
	if e.iteration >= e.maxIter {
		if e.state == Converged {
			return Snapshot{}, false, nil
		}
		e.disarm()
		e.setState(Converged)
		e.logger.Info("Descent converged",
			log.IterationKey, e.iteration,
			log.LossKey, e.lossHistory[len(e.lossHistory)-1],
		)
		return e.snapshotLocked(), true, nil
	}

	preds, err := linear.Predict(e.x, e.weights, e.bias)
	if err != nil {
		return Snapshot{}, false, err
	}
	grad, err := linear.Gradients(e.x, e.y, preds, e.nFeatures)
	if err != nil {
		return Snapshot{}, false, err
	}
	weights, bias := linear.Update(e.weights, e.bias, grad, e.learningRate)
	loss, err := linear.Loss(e.x, e.y, weights, bias)
	if err != nil {
		return Snapshot{}, false, err
	}

	e.weights, e.bias = weights, bias
	e.iteration++
	e.lossHistory = append(e.lossHistory, loss)
	e.weightHistory = append(e.weightHistory, cloneFloats(weights))
	e.biasHistory = append(e.biasHistory, bias)

	errors.Warn(errors.CheckScalar("loss", loss, e.iteration))

	if e.state == Idle || e.state == Converged {
		e.setState(Paused)
	}
	e.metrics.observeStep(e.iteration, loss)
	e.logger.Debug("Step",
		log.OperationKey, log.OperationStep,
		log.IterationKey, e.iteration,
		log.LossKey, loss,
		log.WeightsKey, weights,
		log.BiasKey, bias,
	)
	return e.snapshotLocked(), true, nil
}

// Snapshot returns a deep copy of the engine's state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	wh := make([][]float64, len(e.weightHistory))
	for i, w := range e.weightHistory {
		wh[i] = cloneFloats(w)
	}
	return Snapshot{
		State:         e.state,
		Iteration:     e.iteration,
		Weights:       cloneFloats(e.weights),
		Bias:          e.bias,
		Loss:          e.lossHistory[len(e.lossHistory)-1],
		LossHistory:   cloneFloats(e.lossHistory),
		WeightHistory: wh,
		BiasHistory:   cloneFloats(e.biasHistory),
		LearningRate:  e.learningRate,
		MaxIter:       e.maxIter,
		Interval:      e.interval,
	}
}

// Gradient returns the gradient of the loss at the current parameters, the
// direction the next Step moves against.
func (e *Engine) Gradient() (linear.Gradient, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	preds, err := linear.Predict(e.x, e.weights, e.bias)
	if err != nil {
		return linear.Gradient{}, err
	}
	return linear.Gradients(e.x, e.y, preds, e.nFeatures)
}

// Run starts the engine and blocks until it leaves Running. It returns nil
// when the engine converges or is paused or reset elsewhere. If ctx is done
// first the engine is paused and ctx.Err() is returned.
func (e *Engine) Run(ctx context.Context) error {
	e.Start()
	for {
		e.mu.Lock()
		state, changed := e.state, e.changed
		e.mu.Unlock()
		if state != Running {
			return nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			e.Pause()
			return ctx.Err()
		}
	}
}

func (e *Engine) setState(s State) {
	if e.state == s {
		return
	}
	e.logger.Debug("State changed", log.StateKey, s.String(), "previous", e.state.String())
	e.state = s
	close(e.changed)
	e.changed = make(chan struct{})
	e.metrics.observeState(s)
}

func (e *Engine) arm() {
	e.gen++
	gen := e.gen
	e.task = e.scheduler.Every(e.interval, func() { e.tick(gen) })
}

func (e *Engine) disarm() {
	if e.task != nil {
		e.task.Stop()
		e.task = nil
	}
	e.gen++
}

func (e *Engine) tick(gen uint64) {
	if err := e.step(true, gen); err != nil {
		log.LogError(err, "descent step failed")
		e.Pause()
	}
}

func cloneFloats(s []float64) []float64 {
	out := make([]float64, len(s))
	copy(out, s)
	return out
}
