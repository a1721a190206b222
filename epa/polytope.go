package epa

import (
	"fmt"
	"math"
	"sync"

	"github.com/alanjfs/physx/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// Face is a triangle of the polytope, wound counter-clockwise when seen from
// outside. Normal points away from the interior and Distance is the distance
// from the origin to the face plane.
type Face struct {
	Indices  [3]int
	Normal   mgl64.Vec3
	Distance float64
}

type edge struct {
	a, b int
}

// Polytope is the convex hull grown by EPA inside the Minkowski difference.
type Polytope struct {
	Vertices []mgl64.Vec3
	Faces    []Face

	horizon []edge
}

var polytopePool = sync.Pool{
	New: func() any {
		return &Polytope{
			Vertices: make([]mgl64.Vec3, 0, 16),
			Faces:    make([]Face, 0, 32),
			horizon:  make([]edge, 0, 16),
		}
	},
}

func (p *Polytope) Reset() {
	p.Vertices = p.Vertices[:0]
	p.Faces = p.Faces[:0]
	p.horizon = p.horizon[:0]
}

// Build creates the four faces of the tetrahedron left by GJK.
func (p *Polytope) Build(simplex *gjk.Simplex) error {
	if simplex.Count != 4 {
		return fmt.Errorf("%w: %d points", ErrDegenerateSimplex, simplex.Count)
	}

	p.Reset()
	p.Vertices = append(p.Vertices, simplex.Points[:4]...)

	// Each face with the vertex it does not contain.
	for _, f := range [4][4]int{
		{0, 1, 2, 3},
		{0, 3, 1, 2},
		{0, 2, 3, 1},
		{1, 3, 2, 0},
	} {
		i, j, k, opposite := f[0], f[1], f[2], f[3]
		v := p.Vertices
		if v[j].Sub(v[i]).Cross(v[k].Sub(v[i])).Dot(v[opposite].Sub(v[i])) > 0 {
			j, k = k, j
		}
		p.addFace(i, j, k)
	}

	return nil
}

func (p *Polytope) addFace(i, j, k int) {
	a, b, c := p.Vertices[i], p.Vertices[j], p.Vertices[k]
	normal := b.Sub(a).Cross(c.Sub(a))

	face := Face{Indices: [3]int{i, j, k}}
	if l := normal.Len(); l > 1e-12 {
		face.Normal = normal.Mul(1 / l)
		face.Distance = face.Normal.Dot(a)
	} else {
		// Slivers are kept for topology but never chosen.
		face.Distance = math.Inf(1)
	}
	p.Faces = append(p.Faces, face)
}

// Closest returns the index of the face nearest to the origin.
func (p *Polytope) Closest() int {
	closest := 0
	for i := 1; i < len(p.Faces); i++ {
		if p.Faces[i].Distance < p.Faces[closest].Distance {
			closest = i
		}
	}
	return closest
}

// Expand adds support to the hull: faces that see it are removed and the
// hole is closed with a fan around the new vertex. It returns false when the
// point does not grow the hull.
func (p *Polytope) Expand(support mgl64.Vec3) bool {
	for _, v := range p.Vertices {
		if v.Sub(support).LenSqr() < 1e-12 {
			return false
		}
	}

	p.horizon = p.horizon[:0]
	kept := p.Faces[:0]
	removed := 0
	for _, f := range p.Faces {
		if f.Normal.Dot(support.Sub(p.Vertices[f.Indices[0]])) > 1e-10 {
			p.addHorizon(f.Indices[0], f.Indices[1])
			p.addHorizon(f.Indices[1], f.Indices[2])
			p.addHorizon(f.Indices[2], f.Indices[0])
			removed++
			continue
		}
		kept = append(kept, f)
	}
	p.Faces = kept

	if removed == 0 || len(p.horizon) < 3 {
		return false
	}

	index := len(p.Vertices)
	p.Vertices = append(p.Vertices, support)
	for _, e := range p.horizon {
		p.addFace(e.a, e.b, index)
	}

	return true
}

// addHorizon records a directed edge of a removed face. An edge shared by two
// removed faces appears once in each direction and cancels out.
func (p *Polytope) addHorizon(a, b int) {
	for i, e := range p.horizon {
		if e.a == b && e.b == a {
			p.horizon = append(p.horizon[:i], p.horizon[i+1:]...)
			return
		}
	}
	p.horizon = append(p.horizon, edge{a: a, b: b})
}
