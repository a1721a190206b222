package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const HalfPi = math.Pi / 2

// Quat is a rotation quaternion with scalar part W and vector part V.
type Quat = mgl64.Quat

// QuatIdent returns the identity rotation.
func QuatIdent() Quat {
	return mgl64.QuatIdent()
}

// NewQuat builds a quaternion from raw components, in x, y, z, w order.
func NewQuat(x, y, z, w float64) Quat {
	return Quat{W: w, V: Vec3{x, y, z}}
}

// QuatFromAxisAngle returns the rotation of angle radians about axis.
// The axis is expected to be unit length and is not normalized.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	s, c := math.Sincos(angle / 2)
	return Quat{W: c, V: Scale(axis, s)}
}

// Rotate applies q to v. q must be unit length for the result to be a
// rotation; it is neither checked nor normalized.
func Rotate(q Quat, v Vec3) Vec3 {
	return q.Rotate(v)
}

// QuatApproxEqual reports whether a and b represent the same rotation within
// eps, treating q and -q as equal.
func QuatApproxEqual(a, b Quat, eps float64) bool {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return math.Abs(a.W-b.W) <= eps && Vec3ApproxEqual(a.V, b.V, eps)
}

// shortestArc returns the unit rotation taking direction from onto to.
func shortestArc(from, to Vec3) Quat {
	from = from.Normalize()
	to = to.Normalize()

	d := from.Dot(to)
	if d >= 1-1e-12 {
		return QuatIdent()
	}
	if d <= -1+1e-12 {
		// Opposite directions: any axis orthogonal to from works.
		axis := AxisX.Cross(from)
		if axis.LenSqr() < 1e-12 {
			axis = AxisY.Cross(from)
		}
		return QuatFromAxisAngle(axis.Normalize(), math.Pi)
	}

	return Quat{W: 1 + d, V: from.Cross(to)}.Normalize()
}
