package errors

import (
	"fmt"
	"math"
	"sync"

	zlog "github.com/rs/zerolog/log"
)

// ConvergenceWarning is raised when an iterative algorithm stops at its
// iteration limit.
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	return fmt.Sprintf("%s: ConvergenceWarning: %s did not converge after %d iterations: %s",
		prefix, w.Algorithm, w.Iterations, w.Message)
}

// NewConvergenceWarning creates a ConvergenceWarning.
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// NumericalWarning reports a NaN or infinite intermediate value.
type NumericalWarning struct {
	Name      string
	Value     float64
	Iteration int
}

func (w *NumericalWarning) Error() string {
	return fmt.Sprintf("%s: NumericalWarning: %s became %v at iteration %d",
		prefix, w.Name, w.Value, w.Iteration)
}

// CheckScalar returns a NumericalWarning if v is NaN or infinite.
func CheckScalar(name string, v float64, iteration int) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &NumericalWarning{Name: name, Value: v, Iteration: iteration}
	}
	return nil
}

var (
	warnMu      sync.RWMutex
	warnHandler = defaultWarnHandler
)

func defaultWarnHandler(w error) {
	zlog.Warn().Err(w).Msg("warning")
}

// SetWarningHandler replaces the function that receives warnings and returns
// the previous one. A nil handler restores the default zerolog handler.
func SetWarningHandler(h func(error)) func(error) {
	warnMu.Lock()
	defer warnMu.Unlock()
	prev := warnHandler
	if h == nil {
		h = defaultWarnHandler
	}
	warnHandler = h
	return prev
}

// Warn reports a non-fatal condition. Nil is ignored.
func Warn(w error) {
	if w == nil {
		return
	}
	warnMu.RLock()
	h := warnHandler
	warnMu.RUnlock()
	h(w)
}
