package actor

import (
	"math"

	"github.com/alanjfs/physx/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

func (a AABB) Center() mgl64.Vec3 {
	return spatial.Scale(spatial.Add(a.Min, a.Max), 0.5)
}

// Extents returns the half size on each axis.
func (a AABB) Extents() mgl64.Vec3 {
	return spatial.Scale(a.Max.Sub(a.Min), 0.5)
}

// Support returns the corner of the box furthest along direction.
func (a AABB) Support(direction mgl64.Vec3) mgl64.Vec3 {
	var p mgl64.Vec3
	for i := range 3 {
		if direction[i] < 0 {
			p[i] = a.Min[i]
		} else {
			p[i] = a.Max[i]
		}
	}
	return p
}

// aabbFromPoints returns the tightest box around points transformed by t.
func aabbFromPoints(t spatial.Transform, points []mgl64.Vec3) AABB {
	min := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	max := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}

	for _, p := range points {
		w := t.Apply(p)
		for i := range 3 {
			min[i] = math.Min(min[i], w[i])
			max[i] = math.Max(max[i], w[i])
		}
	}

	return AABB{Min: min, Max: max}
}
