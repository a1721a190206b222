package constraint

import (
	"math"

	"github.com/alanjfs/physx/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultCompliance controls soft constraint stiffness for contact resolution.
	// Lower values = stiffer contacts (less penetration, potential jitter)
	// Higher values = softer contacts (more penetration, smoother)
	DefaultCompliance = 1e-7

	// restitutionGravity sets the approach speed below which contacts do not
	// bounce: 2 * g * h.
	restitutionGravity = 9.81
)

// ContactPoint is a world space contact midway between the two surfaces.
type ContactPoint struct {
	Position    mgl64.Vec3
	Penetration float64

	// Surface points in each body's local frame.
	localA, localB mgl64.Vec3
	// Positional λ accumulated during the current substep.
	lambda float64
}

// ContactConstraint keeps BodyA and BodyB from interpenetrating. Normal is a
// unit vector pointing from A towards B.
type ContactConstraint struct {
	BodyA      *actor.RigidBody
	BodyB      *actor.RigidBody
	Points     []ContactPoint
	Normal     mgl64.Vec3
	Compliance float64
}

// NewContactConstraint anchors each point to both bodies so that the
// penetration is measured again at every solve.
func NewContactConstraint(a, b *actor.RigidBody, normal mgl64.Vec3, points []ContactPoint, compliance float64) *ContactConstraint {
	c := &ContactConstraint{
		BodyA:      a,
		BodyB:      b,
		Points:     points,
		Normal:     normal,
		Compliance: compliance,
	}
	c.anchor()
	return c
}

func (c *ContactConstraint) anchor() {
	for i := range c.Points {
		p := &c.Points[i]
		half := c.Normal.Mul(p.Penetration / 2)
		// A's surface point lies inside B along the normal, and the other way round.
		p.localA = c.BodyA.Transform.InverseRotate(p.Position.Add(half).Sub(c.BodyA.Transform.Position))
		p.localB = c.BodyB.Transform.InverseRotate(p.Position.Sub(half).Sub(c.BodyB.Transform.Position))
	}
}

// worldPoints returns the current world surface points of p and their
// offsets from each body's center.
func (c *ContactConstraint) worldPoints(p *ContactPoint) (pA, pB, rA, rB mgl64.Vec3) {
	pA = c.BodyA.Transform.Apply(p.localA)
	pB = c.BodyB.Transform.Apply(p.localB)
	return pA, pB, pA.Sub(c.BodyA.Transform.Position), pB.Sub(c.BodyB.Transform.Position)
}

// SolvePosition pushes the bodies apart along the normal, point by point.
func (c *ContactConstraint) SolvePosition(h float64) {
	if len(c.Points) == 0 || !wakePair(c.BodyA, c.BodyB) {
		return
	}

	for i := range c.Points {
		p := &c.Points[i]
		p.lambda = 0

		pA, pB, rA, rB := c.worldPoints(p)
		depth := pA.Sub(pB).Dot(c.Normal)
		if depth <= 0 {
			continue
		}

		p.lambda = solvePositional(c.BodyA, c.BodyB, rA, rB, c.Normal, depth, c.Compliance, h)
	}
}

// SolveVelocity applies restitution and Coulomb friction on the points that
// were pushed apart during SolvePosition.
func (c *ContactConstraint) SolveVelocity(h float64) {
	if len(c.Points) == 0 || !(movable(c.BodyA) || movable(c.BodyB)) {
		return
	}

	bodyA, bodyB := c.BodyA, c.BodyB
	restitution := ComputeRestitution(bodyA.Material, bodyB.Material)
	staticFriction := ComputeStaticFriction(bodyA.Material, bodyB.Material)
	dynamicFriction := ComputeDynamicFriction(bodyA.Material, bodyB.Material)
	threshold := 2 * restitutionGravity * h

	for i := range c.Points {
		p := &c.Points[i]
		if p.lambda == 0 {
			continue
		}

		pA, pB, _, _ := c.worldPoints(p)
		contact := pA.Add(pB).Mul(0.5)
		rA := contact.Sub(bodyA.Transform.Position)
		rB := contact.Sub(bodyB.Transform.Position)

		relativeVel := velocityAt(bodyB, rB).Sub(velocityAt(bodyA, rA))
		normalVel := relativeVel.Dot(c.Normal)
		normalVelPrev := presolveVelocityAt(bodyB, rB).Sub(presolveVelocityAt(bodyA, rA)).Dot(c.Normal)

		// Normal impulse delivered by the position solve.
		normalImpulse := math.Abs(p.lambda) / h

		// ========== Friction ==========
		tangentVel := relativeVel.Sub(c.Normal.Mul(normalVel))
		if tangentSpeed := tangentVel.Len(); tangentSpeed > 1e-6 {
			tangentDir := tangentVel.Mul(1.0 / tangentSpeed)
			wT := generalizedInverseMass(bodyA, rA, tangentDir) + generalizedInverseMass(bodyB, rB, tangentDir)

			if wT > epsilon {
				stop := tangentSpeed / wT
				magnitude := stop
				if stop > staticFriction*normalImpulse {
					magnitude = math.Min(stop, dynamicFriction*normalImpulse)
				}

				friction := tangentDir.Mul(magnitude)
				applyImpulse(bodyA, friction, rA)
				applyImpulse(bodyB, friction.Mul(-1), rB)

				normalVel = velocityAt(bodyB, rB).Sub(velocityAt(bodyA, rA)).Dot(c.Normal)
			}
		}

		// ========== Restitution ==========
		e := restitution
		if math.Abs(normalVelPrev) <= threshold {
			e = 0
		}

		wN := generalizedInverseMass(bodyA, rA, c.Normal) + generalizedInverseMass(bodyB, rB, c.Normal)
		if wN < epsilon {
			continue
		}

		targetVel := -e * math.Min(normalVelPrev, 0)
		lambdaNormal := (targetVel - normalVel) / wN
		// Contacts only push.
		if lambdaNormal <= 0 {
			continue
		}

		impulse := c.Normal.Mul(lambdaNormal)
		applyImpulse(bodyA, impulse.Mul(-1), rA)
		applyImpulse(bodyB, impulse, rB)
	}

	clampSmallVelocities(bodyA)
	clampSmallVelocities(bodyB)
}

// Depth returns the deepest penetration at the bodies' current poses.
func (c *ContactConstraint) Depth() float64 {
	deepest := 0.0
	for i := range c.Points {
		pA, pB, _, _ := c.worldPoints(&c.Points[i])
		deepest = math.Max(deepest, pA.Sub(pB).Dot(c.Normal))
	}
	return deepest
}
