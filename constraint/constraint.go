// Package constraint holds the XPBD constraints solved by the scene: contacts
// produced by the narrow phase and user created joints.
//
// Position constraints follow the XPBD update
//
//	λ = -c / (wA + wB + α/h²)
//
// where w is the generalized inverse mass of each body at the constraint
// point and α the compliance. A nil body stands for the static world.
package constraint

import (
	"math"

	"github.com/alanjfs/physx/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// WakeVelocity is the speed above which a body wakes a sleeping body it
	// pushes. Slower bodies treat sleepers as static.
	WakeVelocity = 0.1

	epsilon = 1e-12
)

type Constraint interface {
	SolvePosition(h float64)
	SolveVelocity(h float64)
}

func ComputeRestitution(matA, matB actor.Material) float64 {
	return (matA.Restitution + matB.Restitution) / 2.0
}

func ComputeStaticFriction(matA, matB actor.Material) float64 {
	return math.Sqrt(matA.StaticFriction * matB.StaticFriction)
}

func ComputeDynamicFriction(matA, matB actor.Material) float64 {
	return math.Sqrt(matA.DynamicFriction * matB.DynamicFriction)
}

// movable reports whether the solver may move rb.
func movable(rb *actor.RigidBody) bool {
	return rb != nil && !rb.IsStatic() && !rb.IsSleeping
}

// wakePair wakes a sleeping body when the other body of the pair moves fast
// enough to disturb it. It returns false when neither body can move.
func wakePair(a, b *actor.RigidBody) bool {
	wake := func(sleeper, other *actor.RigidBody) {
		if sleeper == nil || !sleeper.IsSleeping || !movable(other) {
			return
		}
		if other.Velocity.Len() > WakeVelocity || other.AngularVelocity.Len() > WakeVelocity {
			sleeper.Awake()
		}
	}
	wake(a, b)
	wake(b, a)

	return movable(a) || movable(b)
}

// generalizedInverseMass returns 1/m + (r×n)ᵀ I⁻¹ (r×n).
func generalizedInverseMass(rb *actor.RigidBody, r, n mgl64.Vec3) float64 {
	if !movable(rb) {
		return 0
	}
	rn := r.Cross(n)
	return rb.InverseMass() + rb.GetInverseInertiaWorld().Mul3x1(rn).Dot(rn)
}

// angularInverseMass returns nᵀ I⁻¹ n.
func angularInverseMass(rb *actor.RigidBody, n mgl64.Vec3) float64 {
	if !movable(rb) {
		return 0
	}
	return rb.GetInverseInertiaWorld().Mul3x1(n).Dot(n)
}

// solvePositional removes the violation c >= 0 measured along the unit
// vector n between the points rA on a and rB on b. a moves against n and b
// along it. The applied λ is returned.
func solvePositional(a, b *actor.RigidBody, rA, rB, n mgl64.Vec3, c, compliance, h float64) float64 {
	w := generalizedInverseMass(a, rA, n) + generalizedInverseMass(b, rB, n)
	if w < epsilon {
		return 0
	}

	lambda := -c / (w + compliance/(h*h))
	p := n.Mul(lambda)

	applyPositional(a, p, rA)
	applyPositional(b, p.Mul(-1), rB)

	return lambda
}

func applyPositional(rb *actor.RigidBody, p, r mgl64.Vec3) {
	if !movable(rb) {
		return
	}
	rb.Transform.Position = rb.Transform.Position.Add(p.Mul(rb.InverseMass()))
	rb.ApplyRotation(rb.GetInverseInertiaWorld().Mul3x1(r.Cross(p)))
}

// solveAngular removes the rotation angle >= 0 about the unit axis: a turns
// against the axis and b along it.
func solveAngular(a, b *actor.RigidBody, axis mgl64.Vec3, angle, compliance, h float64) float64 {
	w := angularInverseMass(a, axis) + angularInverseMass(b, axis)
	if w < epsilon {
		return 0
	}

	lambda := -angle / (w + compliance/(h*h))
	p := axis.Mul(lambda)

	applyAngular(a, p)
	applyAngular(b, p.Mul(-1))

	return lambda
}

func applyAngular(rb *actor.RigidBody, p mgl64.Vec3) {
	if !movable(rb) {
		return
	}
	rb.ApplyRotation(rb.GetInverseInertiaWorld().Mul3x1(p))
}

// applyImpulse changes the velocities of rb by the impulse j applied at r.
func applyImpulse(rb *actor.RigidBody, j, r mgl64.Vec3) {
	if !movable(rb) {
		return
	}
	rb.Velocity = rb.Velocity.Add(j.Mul(rb.InverseMass()))
	rb.AngularVelocity = rb.AngularVelocity.Add(rb.GetInverseInertiaWorld().Mul3x1(r.Cross(j)))
}

func velocityAt(rb *actor.RigidBody, r mgl64.Vec3) mgl64.Vec3 {
	if !movable(rb) {
		return mgl64.Vec3{}
	}
	return rb.Velocity.Add(rb.AngularVelocity.Cross(r))
}

func presolveVelocityAt(rb *actor.RigidBody, r mgl64.Vec3) mgl64.Vec3 {
	if !movable(rb) {
		return mgl64.Vec3{}
	}
	return rb.PresolveVelocity.Add(rb.PresolveAngularVelocity.Cross(r))
}

func clampSmallVelocities(rb *actor.RigidBody) {
	const velocityThreshold = 1e-5

	if !movable(rb) {
		return
	}
	if rb.Velocity.Len() < velocityThreshold {
		rb.Velocity = mgl64.Vec3{0, 0, 0}
	}
	if rb.AngularVelocity.Len() < velocityThreshold {
		rb.AngularVelocity = mgl64.Vec3{0, 0, 0}
	}
}
