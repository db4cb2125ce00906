package geometry

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance used for float64 comparisons and for treating a length as zero.
const Epsilon = 1e-9

// Vector2D is a 2D vector or point on the canvas.
// Fields are public so callers can write literals like Vector2D{X: 1, Y: 2}.
type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Zero is the zero vector.
var Zero = Vector2D{}

// NewVector creates a new Vector2D.
func NewVector(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

// String implements fmt.Stringer.
func (v Vector2D) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y)
}

// ---------------------------------------------------------------------
// Arithmetic
// All methods use value receivers and return new values, so a Vector2D
// can be shared between goroutines without copying concerns.
// ---------------------------------------------------------------------

// Add returns v + other.
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{v.X - other.X, v.Y - other.Y}
}

// Mul scales the vector by k.
func (v Vector2D) Mul(k float64) Vector2D {
	return Vector2D{v.X * k, v.Y * k}
}

// ---------------------------------------------------------------------
// Magnitude
// ---------------------------------------------------------------------

// LenSqr returns the squared magnitude. Use it for comparisons to skip the square root.
func (v Vector2D) LenSqr() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Len returns the magnitude of the vector.
func (v Vector2D) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns a unit vector with the same direction.
// The zero vector (or anything shorter than Epsilon) normalizes to the zero vector.
func (v Vector2D) Normalize() Vector2D {
	l := v.Len()
	if l < Epsilon {
		return Zero
	}
	return v.Mul(1 / l)
}

// Limit returns v unchanged when |v| <= max, otherwise v rescaled to a length of exactly max.
// A non-positive max yields the zero vector.
func (v Vector2D) Limit(max float64) Vector2D {
	if max <= 0 {
		return Zero
	}
	lsq := v.LenSqr()
	if lsq <= max*max {
		return v
	}
	return v.Mul(max / math.Sqrt(lsq))
}

// IsFinite reports whether both components are neither NaN nor infinite.
func (v Vector2D) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// ---------------------------------------------------------------------
// Distances
// ---------------------------------------------------------------------

// DistanceTo returns the Euclidean distance to other.
func (v Vector2D) DistanceTo(other Vector2D) float64 {
	return v.Sub(other).Len()
}

// DistanceSquaredTo returns the squared Euclidean distance to other.
func (v Vector2D) DistanceSquaredTo(other Vector2D) float64 {
	return v.Sub(other).LenSqr()
}

// Heading returns the angle of the vector relative to the X axis, in radians within [-Pi, Pi].
func (v Vector2D) Heading() float64 {
	return math.Atan2(v.Y, v.X)
}

// Eq checks approximate equality using Epsilon.
func (v Vector2D) Eq(other Vector2D) bool {
	return math.Abs(v.X-other.X) <= Epsilon && math.Abs(v.Y-other.Y) <= Epsilon
}
