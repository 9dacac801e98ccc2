// Package vector implements the 3-vector operations shown by the vector
// view: sum, difference, dot product with the angle between the operands,
// and cross product with its magnitude.
package vector

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ezoic/gradviz/pkg/errors"
)

// Op names a binary vector operation.
type Op string

// Supported operations.
const (
	OpAdd   Op = "add"
	OpSub   Op = "sub"
	OpDot   Op = "dot"
	OpCross Op = "cross"
)

// Ops lists the supported operations in display order.
var Ops = []Op{OpAdd, OpSub, OpDot, OpCross}

// Result is the outcome of Apply. Dot products fill Scalar and, when both
// operands are non-zero, Angle. The other operations fill Vector and its
// Norm.
type Result struct {
	Op       Op
	Vector   r3.Vec
	Scalar   float64
	Norm     float64
	Angle    float64
	HasAngle bool
}

// IsScalar reports whether the result is a number rather than a vector.
func (r Result) IsScalar() bool {
	return r.Op == OpDot
}

func (r Result) String() string {
	if r.IsScalar() {
		if r.HasAngle {
			return fmt.Sprintf("%.2f (angle %.1f°)", r.Scalar, r.Angle*180/math.Pi)
		}
		return fmt.Sprintf("%.2f", r.Scalar)
	}
	return fmt.Sprintf("(%.2f, %.2f, %.2f) (magnitude %.2f)", r.Vector.X, r.Vector.Y, r.Vector.Z, r.Norm)
}

// Add returns a + b.
func Add(a, b r3.Vec) r3.Vec { return r3.Add(a, b) }

// Sub returns a - b.
func Sub(a, b r3.Vec) r3.Vec { return r3.Sub(a, b) }

// Dot returns the dot product of a and b.
func Dot(a, b r3.Vec) float64 { return r3.Dot(a, b) }

// Cross returns the cross product a × b.
func Cross(a, b r3.Vec) r3.Vec { return r3.Cross(a, b) }

// Norm returns the Euclidean length of v.
func Norm(v r3.Vec) float64 { return r3.Norm(v) }

// Angle returns the angle between a and b in radians, in [0, π]. Rounding
// can push the cosine slightly outside [-1, 1], so it is clamped first.
//
// Errors:
//   - ValueError: if either vector has zero length
func Angle(a, b r3.Vec) (float64, error) {
	na, nb := r3.Norm(a), r3.Norm(b)
	if na == 0 || nb == 0 {
		return 0, errors.NewValueError("vector.Angle", "angle is undefined for a zero vector")
	}
	cos := r3.Dot(a, b) / (na * nb)
	return math.Acos(math.Max(-1, math.Min(1, cos))), nil
}

// Apply runs op on a and b.
func Apply(op Op, a, b r3.Vec) (Result, error) {
	res := Result{Op: op}
	switch op {
	case OpAdd:
		res.Vector = Add(a, b)
	case OpSub:
		res.Vector = Sub(a, b)
	case OpCross:
		res.Vector = Cross(a, b)
	case OpDot:
		res.Scalar = Dot(a, b)
		if angle, err := Angle(a, b); err == nil {
			res.Angle, res.HasAngle = angle, true
		}
		return res, nil
	default:
		return Result{}, errors.NewValidationError("op", "unknown vector operation", string(op))
	}
	res.Norm = Norm(res.Vector)
	return res, nil
}

// Parse reads a vector written as "x,y,z".
func Parse(s string) (r3.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return r3.Vec{}, errors.NewValidationError("vector", "expected three comma-separated components", s)
	}
	var c [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return r3.Vec{}, errors.Wrapf(err, "vector component %d", i)
		}
		c[i] = v
	}
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}
