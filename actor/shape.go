package actor

import (
	"errors"
	"fmt"
	"math"

	"github.com/alanjfs/physx/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidGeometry is returned by Validate for non-positive or non-finite
// shape dimensions.
var ErrInvalidGeometry = errors.New("actor: invalid geometry")

// Shape is the interface that all collision shapes must implement.
// Shapes are stateless descriptors: the same shape may back many bodies.
type Shape interface {
	// ComputeAABB calculates the axis-aligned bounding box for the shape
	// at the given transform
	ComputeAABB(transform spatial.Transform) AABB
	// ComputeMass calculates mass data for the shape given a density
	ComputeMass(density float64) float64
	ComputeInertia(mass float64) mgl64.Mat3
	Validate() error
}

// Convex shapes take part in GJK/EPA and in the analytic plane test.
// Directions passed to Support and GetContactFeature are in local space.
type Convex interface {
	Shape
	Support(direction mgl64.Vec3) mgl64.Vec3
	GetContactFeature(direction mgl64.Vec3) []mgl64.Vec3
	// CollideWithPlane tests the shape, posed by transform, against the world
	// plane normal·p + distance = 0.
	CollideWithPlane(normal mgl64.Vec3, distance float64, transform spatial.Transform) (bool, []PlaneContact)
}

// PlaneContact is a world space contact point against a plane.
type PlaneContact struct {
	Position    mgl64.Vec3
	Penetration float64
}

func validateDimensions(shape string, values ...float64) error {
	for _, v := range values {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s dimensions %v", ErrInvalidGeometry, shape, values)
		}
	}
	return nil
}

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	HalfExtents mgl64.Vec3
}

// NewBox returns a box with the given half extents.
func NewBox(hx, hy, hz float64) *Box {
	return &Box{HalfExtents: mgl64.Vec3{hx, hy, hz}}
}

func (b *Box) Validate() error {
	return validateDimensions("box", b.HalfExtents[0], b.HalfExtents[1], b.HalfExtents[2])
}

func (b *Box) corners() []mgl64.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()
	return []mgl64.Vec3{
		{-hx, -hy, -hz},
		{+hx, -hy, -hz},
		{-hx, +hy, -hz},
		{+hx, +hy, -hz},
		{-hx, -hy, +hz},
		{+hx, -hy, +hz},
		{-hx, +hy, +hz},
		{+hx, +hy, +hz},
	}
}

func (b *Box) ComputeAABB(transform spatial.Transform) AABB {
	return aabbFromPoints(transform, b.corners())
}

// ComputeMass calculates mass data for the box
func (b *Box) ComputeMass(density float64) float64 {
	// Volume = 8 * hx * hy * hz (full dimensions are 2*halfExtents)
	volume := 8.0 * b.HalfExtents.X() * b.HalfExtents.Y() * b.HalfExtents.Z()

	return density * volume
}

func (b *Box) ComputeInertia(mass float64) mgl64.Mat3 {
	x := b.HalfExtents.X() * 2
	y := b.HalfExtents.Y() * 2
	z := b.HalfExtents.Z() * 2

	// I = (m/12) * (d1² + d2²)
	factor := mass / 12.0

	return diag(factor*(y*y+z*z), factor*(x*x+z*z), factor*(x*x+y*y))
}

func (b *Box) Support(direction mgl64.Vec3) mgl64.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()

	if direction.X() < 0 {
		hx = -hx
	}
	if direction.Y() < 0 {
		hy = -hy
	}
	if direction.Z() < 0 {
		hz = -hz
	}

	return mgl64.Vec3{hx, hy, hz}
}

// GetContactFeature returns the face whose normal is most aligned with
// direction, as a loop of four vertices.
func (b *Box) GetContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	axis := 0
	for i := 1; i < 3; i++ {
		if math.Abs(direction[i]) > math.Abs(direction[axis]) {
			axis = i
		}
	}
	sign := 1.0
	if direction[axis] < 0 {
		sign = -1.0
	}

	j, k := (axis+1)%3, (axis+2)%3
	loop := [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	face := make([]mgl64.Vec3, 4)
	for n, uv := range loop {
		face[n][axis] = sign * b.HalfExtents[axis]
		face[n][j] = uv[0] * b.HalfExtents[j]
		face[n][k] = uv[1] * b.HalfExtents[k]
	}
	return face
}

func (b *Box) CollideWithPlane(normal mgl64.Vec3, distance float64, transform spatial.Transform) (bool, []PlaneContact) {
	var contacts []PlaneContact
	for _, corner := range b.corners() {
		world := transform.Apply(corner)
		if d := normal.Dot(world) + distance; d < 0 {
			contacts = append(contacts, PlaneContact{Position: world, Penetration: -d})
		}
	}
	return len(contacts) > 0, contacts
}

func diag(x, y, z float64) mgl64.Mat3 {
	return mgl64.Mat3{
		x, 0, 0,
		0, y, 0,
		0, 0, z,
	}
}
