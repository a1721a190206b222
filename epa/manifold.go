package epa

import (
	"math"

	"github.com/alanjfs/physx/actor"
	"github.com/alanjfs/physx/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// MaxManifoldPoints is the largest manifold kept per pair.
	MaxManifoldPoints = 4

	clipTolerance = 1e-6
	// separationSlop keeps incident points hovering just above the reference.
	separationSlop = 1e-4
)

// GenerateManifold builds the contact points between a and b for a contact
// normal pointing from a towards b, using Sutherland-Hodgman clipping.
//
// The contact feature with the most vertices is the reference. The incident
// feature is clipped against the side planes of the reference face, and
// every clipped point below the face becomes a contact with its own depth.
// When neither feature is a face a single point between the deepest supports
// is returned.
func GenerateManifold(a, b *actor.RigidBody, normal mgl64.Vec3, depth float64) []constraint.ContactPoint {
	featureA := worldFeature(a, normal)
	featureB := worldFeature(b, normal.Mul(-1))

	reference, incident := featureA, featureB
	// Outward normal of the reference feature.
	refNormal := normal
	if len(featureB) > len(featureA) {
		reference, incident = featureB, featureA
		refNormal = normal.Mul(-1)
	}

	if len(reference) < 3 {
		return []constraint.ContactPoint{supportContact(a, b, normal, depth)}
	}

	faceNormal := polygonNormal(reference, refNormal)
	clipped := clipIncidentAgainstReference(incident, reference, faceNormal)

	points := make([]constraint.ContactPoint, 0, len(clipped))
	for _, p := range clipped {
		separation := p.Sub(reference[0]).Dot(faceNormal)
		if separation > separationSlop {
			continue
		}
		penetration := math.Max(-separation, 0)
		points = appendUnique(points, constraint.ContactPoint{
			Position:    p.Add(faceNormal.Mul(penetration / 2)),
			Penetration: penetration,
		})
	}

	if len(points) == 0 {
		return []constraint.ContactPoint{supportContact(a, b, normal, depth)}
	}
	if len(points) > MaxManifoldPoints {
		points = reduceTo4Points(points, normal)
	}

	return points
}

// supportContact places one contact midway between the deepest points of
// both shapes along the normal.
func supportContact(a, b *actor.RigidBody, normal mgl64.Vec3, depth float64) constraint.ContactPoint {
	pA := a.SupportWorld(normal)
	pB := b.SupportWorld(normal.Mul(-1))

	return constraint.ContactPoint{
		Position:    pA.Add(pB).Mul(0.5),
		Penetration: depth,
	}
}

// worldFeature returns the world space contact feature of rb facing direction.
func worldFeature(rb *actor.RigidBody, direction mgl64.Vec3) []mgl64.Vec3 {
	convex, ok := rb.Shape.(actor.Convex)
	if !ok {
		return []mgl64.Vec3{rb.Transform.Position}
	}

	feature := convex.GetContactFeature(rb.Transform.InverseRotate(direction))
	for i, p := range feature {
		feature[i] = rb.Transform.Apply(p)
	}
	return feature
}

// polygonNormal returns the plane normal of a face oriented along hint.
func polygonNormal(face []mgl64.Vec3, hint mgl64.Vec3) mgl64.Vec3 {
	n := face[1].Sub(face[0]).Cross(face[2].Sub(face[0]))
	if n.LenSqr() < 1e-18 {
		return hint
	}
	n = n.Normalize()
	if n.Dot(hint) < 0 {
		n = n.Mul(-1)
	}
	return n
}

// clipIncidentAgainstReference trims the incident feature to the prism above
// the reference face.
func clipIncidentAgainstReference(incident, reference []mgl64.Vec3, faceNormal mgl64.Vec3) []mgl64.Vec3 {
	if len(incident) < 2 {
		return incident
	}

	center := computeCenter(reference)
	output := incident
	for i := range reference {
		if len(output) == 0 {
			break
		}

		v1 := reference[i]
		v2 := reference[(i+1)%len(reference)]

		// Side plane through the edge, normal pointing inwards.
		clipNormal := v2.Sub(v1).Cross(faceNormal)
		if clipNormal.LenSqr() < 1e-18 {
			continue
		}
		clipNormal = clipNormal.Normalize()
		if center.Sub(v1).Dot(clipNormal) < 0 {
			clipNormal = clipNormal.Mul(-1)
		}

		if len(output) == 2 {
			output = clipSegmentAgainstPlane(output, v1, clipNormal)
		} else {
			output = clipPolygonAgainstPlane(output, v1, clipNormal)
		}
	}

	return output
}

// clipPolygonAgainstPlane implements Sutherland-Hodgman for a single plane,
// keeping the side planeNormal points to.
func clipPolygonAgainstPlane(polygon []mgl64.Vec3, planePoint, planeNormal mgl64.Vec3) []mgl64.Vec3 {
	output := make([]mgl64.Vec3, 0, len(polygon)+1)
	for i := range polygon {
		current := polygon[i]
		next := polygon[(i+1)%len(polygon)]

		currentDist := current.Sub(planePoint).Dot(planeNormal)
		nextDist := next.Sub(planePoint).Dot(planeNormal)

		if currentDist >= -clipTolerance {
			output = append(output, current)
			if nextDist < -clipTolerance {
				output = append(output, lineIntersectPlane(current, next, planePoint, planeNormal))
			}
		} else if nextDist >= -clipTolerance {
			output = append(output, lineIntersectPlane(current, next, planePoint, planeNormal))
		}
	}

	return output
}

// clipSegmentAgainstPlane clips an open segment, as a closed polygon of two
// vertices would emit the crossing twice.
func clipSegmentAgainstPlane(segment []mgl64.Vec3, planePoint, planeNormal mgl64.Vec3) []mgl64.Vec3 {
	p, q := segment[0], segment[1]
	dp := p.Sub(planePoint).Dot(planeNormal)
	dq := q.Sub(planePoint).Dot(planeNormal)

	switch {
	case dp >= -clipTolerance && dq >= -clipTolerance:
		return []mgl64.Vec3{p, q}
	case dp < -clipTolerance && dq < -clipTolerance:
		return nil
	case dp < -clipTolerance:
		return []mgl64.Vec3{lineIntersectPlane(p, q, planePoint, planeNormal), q}
	default:
		return []mgl64.Vec3{p, lineIntersectPlane(p, q, planePoint, planeNormal)}
	}
}

// lineIntersectPlane calculates the intersection between a line segment and a plane
func lineIntersectPlane(p1, p2, planePoint, planeNormal mgl64.Vec3) mgl64.Vec3 {
	dir := p2.Sub(p1)
	dist := p1.Sub(planePoint).Dot(planeNormal)
	denom := dir.Dot(planeNormal)

	if math.Abs(denom) < 1e-10 {
		return p1
	}

	t := math.Max(0, math.Min(1, -dist/denom))
	return p1.Add(dir.Mul(t))
}

func computeCenter(points []mgl64.Vec3) mgl64.Vec3 {
	if len(points) == 0 {
		return mgl64.Vec3{}
	}

	var sum mgl64.Vec3
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1.0 / float64(len(points)))
}

func appendUnique(points []constraint.ContactPoint, point constraint.ContactPoint) []constraint.ContactPoint {
	for i := range points {
		if points[i].Position.Sub(point.Position).LenSqr() < 1e-12 {
			points[i].Penetration = math.Max(points[i].Penetration, point.Penetration)
			return points
		}
	}
	return append(points, point)
}

func getTangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	tangent1 := mgl64.Vec3{1, 0, 0}
	if math.Abs(normal.X()) > 0.9 {
		tangent1 = mgl64.Vec3{0, 1, 0}
	}

	tangent1 = tangent1.Sub(normal.Mul(tangent1.Dot(normal))).Normalize()
	tangent2 := normal.Cross(tangent1).Normalize()

	return tangent1, tangent2
}

// reduceTo4Points keeps the extreme points along two tangent axes, in their
// original order.
func reduceTo4Points(points []constraint.ContactPoint, normal mgl64.Vec3) []constraint.ContactPoint {
	tangent1, tangent2 := getTangentBasis(normal)

	var extremes [4]int
	best := [4]float64{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for i, p := range points {
		x := p.Position.Dot(tangent1)
		y := p.Position.Dot(tangent2)

		if x < best[0] {
			best[0], extremes[0] = x, i
		}
		if x > best[1] {
			best[1], extremes[1] = x, i
		}
		if y < best[2] {
			best[2], extremes[2] = y, i
		}
		if y > best[3] {
			best[3], extremes[3] = y, i
		}
	}

	keep := make([]bool, len(points))
	for _, i := range extremes {
		keep[i] = true
	}

	result := make([]constraint.ContactPoint, 0, MaxManifoldPoints)
	for i, p := range points {
		if keep[i] {
			result = append(result, p)
		}
	}
	return result
}
