// Package spatial provides the vector, quaternion and rigid transform math used
// to position bodies before they are handed to a scene.
//
// Vec3 and Quat are aliases of the mathgl types so values flow into the engine
// packages without conversion. Every function here is pure: values in, values
// out, no shared state, safe for concurrent use. NaN and Inf propagate per
// IEEE-754; nothing is trapped.
package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a 3D vector (x, y, z).
type Vec3 = mgl64.Vec3

var (
	AxisX = Vec3{1, 0, 0}
	AxisY = Vec3{0, 1, 0}
	AxisZ = Vec3{0, 0, 1}
)

// Scale returns v with each component multiplied by s.
func Scale(v Vec3, s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Add returns the componentwise sum a + b.
func Add(a, b Vec3) Vec3 {
	return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Div returns v with each component divided by s. Dividing by zero yields
// ±Inf or NaN components.
func Div(v Vec3, s float64) Vec3 {
	return Vec3{v[0] / s, v[1] / s, v[2] / s}
}

// Vec3ApproxEqual reports whether a and b differ by at most eps on every axis.
func Vec3ApproxEqual(a, b Vec3, eps float64) bool {
	return math.Abs(a[0]-b[0]) <= eps &&
		math.Abs(a[1]-b[1]) <= eps &&
		math.Abs(a[2]-b[2]) <= eps
}
