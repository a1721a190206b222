// Package gjk implements the Gilbert-Johnson-Keerthi intersection test for
// convex rigid bodies.
//
// Two convex shapes overlap when their Minkowski difference A - B contains
// the origin. GJK grows a simplex of support points towards the origin and
// either encloses it with a tetrahedron or proves the shapes are separated.
// On overlap the final tetrahedron seeds EPA.
package gjk

import (
	"math"
	"sync"

	"github.com/alanjfs/physx/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	MaxIterations = 32

	epsilon = 1e-10
)

// Simplex holds 1 to 4 points of the Minkowski difference, the most recent
// point last.
type Simplex struct {
	Points [4]mgl64.Vec3
	Count  int
}

func (s *Simplex) Reset() {
	s.Count = 0
}

func (s *Simplex) push(p mgl64.Vec3) {
	s.Points[s.Count] = p
	s.Count++
}

func (s *Simplex) set(points ...mgl64.Vec3) {
	s.Count = copy(s.Points[:], points)
}

// SimplexPool recycles simplices between narrow phase pairs.
var SimplexPool = sync.Pool{
	New: func() any {
		return &Simplex{}
	},
}

// MinkowskiSupport returns support(A, d) - support(B, -d) in world space.
func MinkowskiSupport(a, b *actor.RigidBody, direction mgl64.Vec3) mgl64.Vec3 {
	return a.SupportWorld(direction).Sub(b.SupportWorld(direction.Mul(-1)))
}

// GJK reports whether the convex bodies a and b overlap. On a hit the
// simplex is a tetrahedron enclosing the origin. Shapes that only touch,
// with the origin on the boundary, are reported as separated.
func GJK(a, b *actor.RigidBody, simplex *Simplex) bool {
	direction := b.Transform.Position.Sub(a.Transform.Position)
	if direction.LenSqr() < epsilon {
		direction = mgl64.Vec3{1, 0, 0}
	}

	simplex.Reset()
	simplex.push(MinkowskiSupport(a, b, direction))
	direction = simplex.Points[0].Mul(-1)

	for range MaxIterations {
		if direction.LenSqr() < epsilon {
			return false
		}

		p := MinkowskiSupport(a, b, direction)
		if p.Dot(direction) <= 0 {
			return false
		}
		simplex.push(p)

		var done bool
		switch simplex.Count {
		case 2:
			direction = line(simplex)
		case 3:
			direction = triangle(simplex)
		case 4:
			direction, done = tetrahedron(simplex)
		}
		if done {
			return true
		}
	}

	return false
}

// line reduces a segment simplex [b, a] and returns the next search direction.
func line(s *Simplex) mgl64.Vec3 {
	a, b := s.Points[1], s.Points[0]
	ab := b.Sub(a)
	ao := a.Mul(-1)

	if ab.LenSqr() < epsilon || ab.Dot(ao) <= 0 {
		s.set(a)
		return ao
	}

	perp := ab.Cross(ao).Cross(ab)
	if perp.LenSqr() < epsilon {
		// Origin on the segment: any normal of ab leads off it.
		return anyPerpendicular(ab)
	}
	return perp
}

func anyPerpendicular(v mgl64.Vec3) mgl64.Vec3 {
	axis := mgl64.Vec3{1, 0, 0}
	if math.Abs(v.X()) > math.Abs(v.Y()) {
		axis = mgl64.Vec3{0, 1, 0}
	}
	return v.Cross(axis)
}

// triangle reduces a triangle simplex [c, b, a] and returns the next search
// direction. The winding is kept so that the face normal points to the origin.
func triangle(s *Simplex) mgl64.Vec3 {
	a, b, c := s.Points[2], s.Points[1], s.Points[0]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Mul(-1)
	abc := ab.Cross(ac)

	if abc.LenSqr() < epsilon {
		s.set(b, a)
		return line(s)
	}

	if ab.Cross(abc).Dot(ao) > 0 {
		s.set(b, a)
		return line(s)
	}
	if abc.Cross(ac).Dot(ao) > 0 {
		s.set(c, a)
		return line(s)
	}

	if abc.Dot(ao) > 0 {
		return abc
	}
	s.set(b, c, a)
	return abc.Mul(-1)
}

// tetrahedron checks the three faces touching the newest point a. The face
// bcd was already known to face the origin.
func tetrahedron(s *Simplex) (mgl64.Vec3, bool) {
	a, b, c, d := s.Points[3], s.Points[2], s.Points[1], s.Points[0]
	ao := a.Mul(-1)

	faces := [3][3]mgl64.Vec3{
		{c, b, a}, // abc, opposite d
		{d, c, a}, // acd, opposite b
		{b, d, a}, // adb, opposite c
	}
	opposite := [3]mgl64.Vec3{d, b, c}

	for i, face := range faces {
		normal := face[1].Sub(a).Cross(face[0].Sub(a))
		if normal.LenSqr() < epsilon {
			s.set(face[:]...)
			return triangle(s), false
		}
		if normal.Dot(opposite[i].Sub(a)) > 0 {
			normal = normal.Mul(-1)
		}
		if normal.Dot(ao) > 0 {
			s.set(face[:]...)
			return triangle(s), false
		}
	}

	return mgl64.Vec3{}, true
}
