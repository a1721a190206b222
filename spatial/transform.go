package spatial

import "fmt"

// Transform is a rigid pose: a rotation followed by a translation.
type Transform struct {
	Position Vec3
	Rotation Quat
}

// Identity returns the transform with zero position and identity rotation.
func Identity() Transform {
	return Transform{Rotation: QuatIdent()}
}

// NewTransform returns the pose at position p with orientation q.
func NewTransform(p Vec3, q Quat) Transform {
	return Transform{Position: p, Rotation: q}
}

// Translation returns a pose at p with identity rotation.
func Translation(p Vec3) Transform {
	return Transform{Position: p, Rotation: QuatIdent()}
}

// Compose returns a*b: b expressed in a's frame, then a applied.
//
//	position = a.Position + a.Rotation.Rotate(b.Position)
//	rotation = a.Rotation * b.Rotation
func Compose(a, b Transform) Transform {
	return Transform{
		Position: Add(a.Position, a.Rotation.Rotate(b.Position)),
		Rotation: a.Rotation.Mul(b.Rotation),
	}
}

// Compose is the method form of Compose(t, other).
func (t Transform) Compose(other Transform) Transform {
	return Compose(t, other)
}

// Apply maps a point from t's local frame into the parent frame.
func (t Transform) Apply(point Vec3) Vec3 {
	return Add(t.Position, t.Rotation.Rotate(point))
}

// Rotate rotates a direction by t's orientation, ignoring translation.
func (t Transform) Rotate(v Vec3) Vec3 {
	return t.Rotation.Rotate(v)
}

// InverseRotate rotates a direction by the inverse of t's orientation.
// The orientation must be unit length.
func (t Transform) InverseRotate(v Vec3) Vec3 {
	return t.Rotation.Conjugate().Rotate(v)
}

// Inverse returns the transform u such that t.Compose(u) is the identity.
// The orientation must be unit length.
func (t Transform) Inverse() Transform {
	inv := t.Rotation.Conjugate()
	return Transform{
		Position: Scale(inv.Rotate(t.Position), -1),
		Rotation: inv,
	}
}

// ApproxEqual compares positions and rotations within eps.
func (t Transform) ApproxEqual(other Transform, eps float64) bool {
	return Vec3ApproxEqual(t.Position, other.Position, eps) &&
		QuatApproxEqual(t.Rotation, other.Rotation, eps)
}

func (t Transform) String() string {
	p, q := t.Position, t.Rotation
	return fmt.Sprintf("p=(%f, %f, %f) q=(%f, %f, %f, %f)",
		p[0], p[1], p[2], q.V[0], q.V[1], q.V[2], q.W)
}

// FromPlane returns the pose of the plane n·p + d = 0: its local +X axis is
// the normal and its origin is the plane point nearest the world origin.
// normal must be unit length.
func FromPlane(normal Vec3, distance float64) Transform {
	return Transform{
		Position: Scale(normal, -distance),
		Rotation: shortestArc(AxisX, normal),
	}
}
