// Package errors provides the error types shared by every gradviz package.
//
// The package wraps github.com/cockroachdb/errors so that errors carry stack
// traces (visible with %+v) while remaining compatible with the standard
// library's errors.Is and errors.As:
//
//   - DimensionError: shape mismatch between matrices, vectors or weights
//   - ValueError: an argument has an unusable value
//   - ValidationError: a named parameter failed validation
//   - ModelError: an operation failed, wrapping the underlying cause
//   - NotFittedError: a model was used before training
//
// Sentinel errors (ErrEmptyData, ErrSingularMatrix, ...) are matched with Is.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

const prefix = "gradviz"

var (
	// ErrEmptyData is returned when an operation receives no samples.
	ErrEmptyData = errors.New("empty data")
	// ErrDimensionMismatch is matched by every DimensionError.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrSingularMatrix is returned when a normal-equation system cannot be solved.
	ErrSingularMatrix = errors.New("singular matrix")
	// ErrNotImplemented marks a code path that is not supported.
	ErrNotImplemented = errors.New("not implemented")
)

// New, Newf, Wrap and Wrapf annotate errors with a stack trace.
var (
	New    = errors.New
	Newf   = errors.Newf
	Wrap   = errors.Wrap
	Wrapf  = errors.Wrapf
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// DimensionError reports a mismatch between an expected and an actual size.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: %s: dimension mismatch on axis %d: expected %d, got %d",
		prefix, e.Op, e.Axis, e.Expected, e.Got)
}

// Is makes every DimensionError match ErrDimensionMismatch.
func (e *DimensionError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// NewDimensionError creates a DimensionError with a stack trace attached.
// Axis 0 refers to samples (rows) and axis 1 to features (columns).
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValueError reports an argument with an unusable value.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %s: %s", prefix, e.Op, e.Message)
}

// NewValueError creates a ValueError.
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ValidationError reports that a named parameter failed validation.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %s (got %v)", prefix, e.ParamName, e.Reason, e.Value)
}

// NewValidationError creates a ValidationError.
func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// ModelError wraps the cause of a failed operation.
type ModelError struct {
	Op      string
	Message string
	Err     error
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s: %v", prefix, e.Op, e.Message, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a ModelError wrapping err.
func NewModelError(op, message string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Message: message, Err: err})
}

// NotFittedError is returned when a model is used before Fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("%s: %s: this %s instance is not fitted yet, call Fit before %s",
		prefix, e.ModelName, e.ModelName, e.Method)
}

// NewNotFittedError creates a NotFittedError.
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}
