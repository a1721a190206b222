package actor

import (
	"math"

	"github.com/alanjfs/physx/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

// Plane is an infinite half-space. In its local frame the surface is x = 0
// with the solid side towards -X; the owning body's pose places it in the
// world. Planes can only belong to static bodies.
type Plane struct{}

// WorldPlane returns the world plane normal·p + distance = 0 for the pose.
func (p *Plane) WorldPlane(transform spatial.Transform) (normal mgl64.Vec3, distance float64) {
	normal = transform.Rotate(spatial.AxisX)
	return normal, -normal.Dot(transform.Position)
}

func (p *Plane) Validate() error {
	return nil
}

func (p *Plane) ComputeAABB(transform spatial.Transform) AABB {
	const thickness = 1.0
	const infinity = 1e10

	normal, _ := p.WorldPlane(transform)

	min := transform.Position.Sub(normal.Mul(thickness))
	max := transform.Position
	for i := range 3 {
		if min[i] > max[i] {
			min[i], max[i] = max[i], min[i]
		}
		// Extend to infinity on every axis that is not the normal.
		if math.Abs(normal[i]) < 1-1e-9 {
			min[i] = -infinity
			max[i] = infinity
		}
	}

	return AABB{Min: min, Max: max}
}

// ComputeMass returns +Inf: planes cannot be moved by collisions.
func (p *Plane) ComputeMass(density float64) float64 {
	return math.Inf(1)
}

func (p *Plane) ComputeInertia(mass float64) mgl64.Mat3 {
	return mgl64.Mat3{}
}
