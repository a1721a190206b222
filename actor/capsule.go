package actor

import (
	"math"

	"github.com/alanjfs/physx/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

// Capsule is a segment of length 2*HalfHeight along the local X axis, swept
// by a sphere of Radius.
type Capsule struct {
	Radius     float64
	HalfHeight float64
}

// NewCapsule returns a capsule along the local X axis.
func NewCapsule(radius, halfHeight float64) *Capsule {
	return &Capsule{Radius: radius, HalfHeight: halfHeight}
}

func (c *Capsule) Validate() error {
	return validateDimensions("capsule", c.Radius, c.HalfHeight)
}

// Segment returns the two local space end points of the core segment.
func (c *Capsule) Segment() (mgl64.Vec3, mgl64.Vec3) {
	return mgl64.Vec3{-c.HalfHeight, 0, 0}, mgl64.Vec3{c.HalfHeight, 0, 0}
}

func (c *Capsule) ComputeAABB(transform spatial.Transform) AABB {
	p0, p1 := c.Segment()
	aabb := aabbFromPoints(transform, []mgl64.Vec3{p0, p1})
	r := mgl64.Vec3{c.Radius, c.Radius, c.Radius}

	return AABB{Min: aabb.Min.Sub(r), Max: aabb.Max.Add(r)}
}

func (c *Capsule) volumes() (cylinder, spheres float64) {
	cylinder = math.Pi * c.Radius * c.Radius * 2 * c.HalfHeight
	spheres = (4.0 / 3.0) * math.Pi * math.Pow(c.Radius, 3)
	return cylinder, spheres
}

func (c *Capsule) ComputeMass(density float64) float64 {
	cylinder, spheres := c.volumes()
	return density * (cylinder + spheres)
}

func (c *Capsule) ComputeInertia(mass float64) mgl64.Mat3 {
	cylinder, spheres := c.volumes()
	mc := mass * cylinder / (cylinder + spheres)
	ms := mass - mc

	r2 := c.Radius * c.Radius
	h := c.HalfHeight

	// Cylinder of length 2h plus two hemispheres shifted to the segment ends.
	axial := mc*r2/2 + ms*2*r2/5
	transverse := mc*(h*h/3+r2/4) + ms*(2*r2/5+h*h+3*h*c.Radius/4)

	return diag(axial, transverse, transverse)
}

func (c *Capsule) Support(direction mgl64.Vec3) mgl64.Vec3 {
	x := c.HalfHeight
	if direction.X() < 0 {
		x = -x
	}
	return mgl64.Vec3{x, 0, 0}.Add(unitOr(direction, spatial.AxisY).Mul(c.Radius))
}

// GetContactFeature returns the side line of the capsule when direction is
// nearly perpendicular to the axis, otherwise the single support point.
func (c *Capsule) GetContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	dir := unitOr(direction, spatial.AxisY)
	if math.Abs(dir.X()) > 0.05 {
		return []mgl64.Vec3{c.Support(dir)}
	}

	side := dir.Mul(c.Radius)
	p0, p1 := c.Segment()
	return []mgl64.Vec3{p0.Add(side), p1.Add(side)}
}

func (c *Capsule) CollideWithPlane(normal mgl64.Vec3, distance float64, transform spatial.Transform) (bool, []PlaneContact) {
	p0, p1 := c.Segment()

	var contacts []PlaneContact
	for _, end := range [2]mgl64.Vec3{p0, p1} {
		center := transform.Apply(end)
		if d := normal.Dot(center) + distance; d < c.Radius {
			contacts = append(contacts, PlaneContact{
				Position:    center.Sub(normal.Mul(c.Radius)),
				Penetration: c.Radius - d,
			})
		}
	}
	return len(contacts) > 0, contacts
}
