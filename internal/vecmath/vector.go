package vecmath

import "math"

// Vector3 is a 3D vector used throughout the physics core. All operations
// are pure and return new values.
type Vector3 struct {
	X, Y, Z float64
}

func Zero() Vector3  { return Vector3{} }
func UnitX() Vector3 { return Vector3{X: 1} }
func UnitY() Vector3 { return Vector3{Y: 1} }
func UnitZ() Vector3 { return Vector3{Z: 1} }

func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vector3) Div(s float64) Vector3 {
	return Vector3{v.X / s, v.Y / s, v.Z / s}
}

func (v Vector3) Neg() Vector3 {
	return Vector3{-v.X, -v.Y, -v.Z}
}

func (v Vector3) Dot(o Vector3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vector3) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v Vector3) MagnitudeSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Normalize returns the unit vector in the same direction. The zero vector
// normalizes to the zero vector rather than producing NaN components.
func (v Vector3) Normalize() Vector3 {
	mag := v.Magnitude()
	if mag == 0 {
		return Vector3{}
	}
	return Vector3{v.X / mag, v.Y / mag, v.Z / mag}
}

func (v Vector3) DistanceTo(o Vector3) float64 {
	return v.Sub(o).Magnitude()
}

func (v Vector3) DistanceSquaredTo(o Vector3) float64 {
	return v.Sub(o).MagnitudeSquared()
}

// IsFinite reports whether all components are finite (no NaN, no Inf).
func (v Vector3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}
