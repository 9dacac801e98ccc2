package errors

import (
	"github.com/cockroachdb/errors"
)

// Recover converts a panic raised inside op into an error stored in *err.
// It must be deferred directly:
//
//	func (lr *LinearRegression) Fit(X, y mat.Matrix) (err error) {
//		defer errors.Recover(&err, "LinearRegression.Fit")
//		...
//	}
//
// gonum/mat panics on shape violations; Recover turns those into ModelErrors
// carrying the panic value.
func Recover(err *error, op string) {
	r := recover()
	if r == nil {
		return
	}
	var cause error
	switch v := r.(type) {
	case error:
		cause = v
	default:
		cause = errors.Newf("%v", v)
	}
	*err = NewModelError(op, "recovered from panic", cause)
}
