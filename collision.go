package physx

import (
	"slices"

	"github.com/alanjfs/physx/actor"
	"github.com/alanjfs/physx/constraint"
	"github.com/alanjfs/physx/epa"
	"github.com/alanjfs/physx/gjk"
)

// StiffCompliance is the default contact compliance.
const StiffCompliance = ConcreteCompliance

// Contact compliances in m/N, from rigid to soft.
const (
	ConcreteCompliance = 0.04e-9
	WoodCompliance     = 0.16e-9
	LeatherCompliance  = 14e-8
	TendonCompliance   = 0.2e-7
	RubberCompliance   = 1e-6
	MuscleCompliance   = 0.2e-3
	FatCompliance      = 1e-3
)

// BroadPhase rebuilds the grid from bodies and returns the pairs whose
// bounds overlap, ordered by body index.
func BroadPhase(spatialGrid *SpatialGrid, bodies []*actor.RigidBody, workersCount int) []Pair {
	spatialGrid.Clear()
	for i, body := range bodies {
		spatialGrid.Insert(i, body)
	}

	return spatialGrid.FindPairs(bodies, workersCount)
}

// NarrowPhase turns candidate pairs into contact constraints. Pairs touching
// a plane use the analytic test, the others GJK then EPA. Contacts keep the
// order of their pairs.
func NarrowPhase(pairs []Pair, workersCount int, compliance float64) []*constraint.ContactConstraint {
	contacts := make([]*constraint.ContactConstraint, len(pairs))
	task(workersCount, pairs, func(i int, pair Pair) {
		contacts[i] = collide(pair, compliance)
	})

	return slices.DeleteFunc(contacts, func(c *constraint.ContactConstraint) bool {
		return c == nil
	})
}

func collide(pair Pair, compliance float64) *constraint.ContactConstraint {
	if _, ok := pair.BodyA.Shape.(*actor.Plane); ok {
		return collidePlane(pair.BodyA, pair.BodyB, compliance)
	}
	if _, ok := pair.BodyB.Shape.(*actor.Plane); ok {
		return collidePlane(pair.BodyB, pair.BodyA, compliance)
	}

	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)
	simplex.Reset()

	if !gjk.GJK(pair.BodyA, pair.BodyB, simplex) {
		return nil
	}

	contact, err := epa.EPA(pair.BodyA, pair.BodyB, simplex)
	if err != nil {
		return nil
	}
	contact.Compliance = compliance

	return contact
}

// collidePlane tests object against the plane owned by planeBody. The plane
// is always body A so the normal is the plane normal.
func collidePlane(planeBody, object *actor.RigidBody, compliance float64) *constraint.ContactConstraint {
	plane := planeBody.Shape.(*actor.Plane)
	convex, ok := object.Shape.(actor.Convex)
	if !ok {
		return nil
	}

	normal, distance := plane.WorldPlane(planeBody.Transform)
	collision, result := convex.CollideWithPlane(normal, distance, object.Transform)
	if !collision {
		return nil
	}

	points := make([]constraint.ContactPoint, 0, len(result))
	for _, pc := range result {
		// Midway between the deepest point and the plane surface.
		points = append(points, constraint.ContactPoint{
			Position:    pc.Position.Add(normal.Mul(pc.Penetration / 2)),
			Penetration: pc.Penetration,
		})
	}

	return constraint.NewContactConstraint(planeBody, object, normal, points, compliance)
}
