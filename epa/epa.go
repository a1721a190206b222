// Package epa implements the Expanding Polytope Algorithm, which turns an
// overlapping GJK simplex into a contact: the normal, the penetration depth
// and a manifold of up to four points.
//
// The polytope starts as the GJK tetrahedron and is grown towards the
// boundary of the Minkowski difference until the face closest to the origin
// stops moving. That face gives the minimum translation separating the shapes.
package epa

import (
	"errors"

	"github.com/alanjfs/physx/actor"
	"github.com/alanjfs/physx/constraint"
	"github.com/alanjfs/physx/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// MaxIterations bounds polytope growth. When it is reached the closest
	// face found so far is used.
	MaxIterations = 64

	// ConvergenceTolerance is the distance gain below which the closest face
	// is considered final.
	ConvergenceTolerance = 1e-4

	// NormalSnapThreshold clamps nearly-zero normal components to zero.
	NormalSnapThreshold = 1e-8
)

var (
	ErrDegenerateSimplex = errors.New("epa: simplex is not a tetrahedron")
	ErrNoPenetration     = errors.New("epa: shapes do not penetrate")
)

// EPA computes the contact between two overlapping convex bodies from the
// final GJK simplex. The returned normal points from a towards b.
func EPA(a, b *actor.RigidBody, simplex *gjk.Simplex) (*constraint.ContactConstraint, error) {
	polytope := polytopePool.Get().(*Polytope)
	defer polytopePool.Put(polytope)

	if err := polytope.Build(simplex); err != nil {
		return nil, err
	}

	best := polytope.Faces[polytope.Closest()]
	for range MaxIterations {
		best = polytope.Faces[polytope.Closest()]

		support := gjk.MinkowskiSupport(a, b, best.Normal)
		if support.Dot(best.Normal)-best.Distance < ConvergenceTolerance {
			break
		}
		if !polytope.Expand(support) || len(polytope.Faces) == 0 {
			break
		}
	}

	if best.Distance <= 0 || best.Normal.LenSqr() == 0 {
		return nil, ErrNoPenetration
	}

	normal := snapNormalToAxis(best.Normal)
	points := GenerateManifold(a, b, normal, best.Distance)

	return constraint.NewContactConstraint(a, b, normal, points, constraint.DefaultCompliance), nil
}

// snapNormalToAxis clamps nearly-zero components of a normal vector to exactly
// zero and renormalizes. Axis aligned stacks then produce axis aligned normals.
func snapNormalToAxis(normal mgl64.Vec3) mgl64.Vec3 {
	for i := range 3 {
		if normal[i] < NormalSnapThreshold && normal[i] > -NormalSnapThreshold {
			normal[i] = 0
		}
	}

	if l := normal.Len(); l > 1e-12 {
		return normal.Mul(1 / l)
	}
	return mgl64.Vec3{0, 1, 0}
}
