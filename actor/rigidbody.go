package actor

import (
	"math"

	"github.com/alanjfs/physx/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity, and collisions
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces or gravity (e.g., ground, walls)
	BodyTypeStatic
)

func (t BodyType) String() string {
	switch t {
	case BodyTypeDynamic:
		return "dynamic"
	case BodyTypeStatic:
		return "static"
	default:
		return "unknown"
	}
}

// RigidBody represents a rigid body in the physics simulation
type RigidBody struct {
	// ID is assigned by the scene the body is added to.
	ID int

	PreviousTransform spatial.Transform
	Transform         spatial.Transform

	// Linear motion
	PresolveVelocity mgl64.Vec3
	Velocity         mgl64.Vec3 // m/s

	// Angular motion
	PresolveAngularVelocity mgl64.Vec3
	AngularVelocity         mgl64.Vec3 // rad/s

	InertiaLocal        mgl64.Mat3
	InverseInertiaLocal mgl64.Mat3

	accumulatedForce  mgl64.Vec3
	accumulatedTorque mgl64.Vec3

	IsSleeping bool
	SleepTimer float64

	// Trigger bodies report overlaps but are never solved.
	IsTrigger bool

	LinearDamping  float64 // 1/s
	AngularDamping float64 // 1/s

	Material Material
	BodyType BodyType
	Shape    Shape
	AABB     AABB

	density     float64
	mass        float64
	inverseMass float64
}

// NewRigidBody creates a new rigid body with the given properties
// density is used to calculate mass for dynamic bodies (ignored for static)
func NewRigidBody(transform spatial.Transform, shape Shape, bodyType BodyType, density float64) *RigidBody {
	transform.Rotation = normalizeRotation(transform.Rotation)

	rb := &RigidBody{
		PreviousTransform: transform,
		Transform:         transform,
		Shape:             shape,
		BodyType:          bodyType,
		Material:          DefaultMaterial,
	}

	if bodyType == BodyTypeStatic {
		rb.mass = math.Inf(1)
	} else {
		rb.density = density
		rb.mass = shape.ComputeMass(density)
		if rb.mass > 0 && !math.IsInf(rb.mass, 1) {
			rb.inverseMass = 1.0 / rb.mass
		}
		rb.InertiaLocal = shape.ComputeInertia(rb.mass)
		rb.InverseInertiaLocal = rb.InertiaLocal.Inv()
	}

	rb.UpdateAABB()

	return rb
}

func normalizeRotation(q spatial.Quat) spatial.Quat {
	if q.Len() < 1e-12 {
		return spatial.QuatIdent()
	}
	return q.Normalize()
}

func (rb *RigidBody) Mass() float64        { return rb.mass }
func (rb *RigidBody) InverseMass() float64 { return rb.inverseMass }
func (rb *RigidBody) Density() float64     { return rb.density }

func (rb *RigidBody) IsStatic() bool {
	return rb.BodyType == BodyTypeStatic
}

// UpdateAABB recomputes the cached world bounds from the current pose.
func (rb *RigidBody) UpdateAABB() {
	rb.AABB = rb.Shape.ComputeAABB(rb.Transform)
}

func (rb *RigidBody) GlobalPose() spatial.Transform {
	return rb.Transform
}

// SetGlobalPose teleports the body; the move produces no velocity.
func (rb *RigidBody) SetGlobalPose(pose spatial.Transform) {
	pose.Rotation = normalizeRotation(pose.Rotation)
	rb.Transform = pose
	rb.PreviousTransform = pose
	rb.UpdateAABB()
	if !rb.IsStatic() {
		rb.Awake()
	}
}

func (rb *RigidBody) SetLinearVelocity(v mgl64.Vec3) {
	if rb.IsStatic() {
		return
	}
	rb.Awake()
	rb.Velocity = v
}

func (rb *RigidBody) SetAngularVelocity(w mgl64.Vec3) {
	if rb.IsStatic() {
		return
	}
	rb.Awake()
	rb.AngularVelocity = w
}

func (rb *RigidBody) TrySleep(dt float64, timeThreshold float64, velocityThreshold float64) {
	if rb.IsStatic() || rb.IsSleeping {
		return
	}

	if rb.Velocity.Len() < velocityThreshold && rb.AngularVelocity.Len() < velocityThreshold {
		rb.SleepTimer += dt
		if rb.SleepTimer >= timeThreshold {
			rb.Sleep()
		}
	} else {
		rb.SleepTimer = 0.0
	}
}

func (rb *RigidBody) Sleep() {
	rb.IsSleeping = true
	rb.SleepTimer = 0.0

	rb.UpdateAABB()
	rb.ClearForces()
	rb.Velocity = mgl64.Vec3{}
	rb.AngularVelocity = mgl64.Vec3{}
}

// Awake wakes the body. A body woken in the middle of a substep restarts its
// velocity derivation from the current pose.
func (rb *RigidBody) Awake() {
	if rb.IsSleeping {
		rb.PreviousTransform = rb.Transform
		rb.PresolveVelocity = mgl64.Vec3{}
		rb.PresolveAngularVelocity = mgl64.Vec3{}
	}
	rb.IsSleeping = false
	rb.SleepTimer = 0.0
}

// Integrate predicts the pose after dt from velocities, gravity and the
// accumulated forces. The forces are kept: the owner clears them once the
// whole step is done.
func (rb *RigidBody) Integrate(dt float64, gravity mgl64.Vec3) {
	if rb.IsStatic() || rb.IsSleeping {
		return
	}

	rb.PreviousTransform = rb.Transform

	// Linear
	acceleration := gravity.Add(rb.accumulatedForce.Mul(rb.inverseMass))
	rb.Velocity = rb.Velocity.Add(acceleration.Mul(dt))
	rb.Velocity = rb.Velocity.Mul(math.Exp(-rb.LinearDamping * dt))
	rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(dt))

	// Angular
	angularAccel := rb.GetInverseInertiaWorld().Mul3x1(rb.accumulatedTorque)
	rb.AngularVelocity = rb.AngularVelocity.Add(angularAccel.Mul(dt))
	rb.AngularVelocity = rb.AngularVelocity.Mul(math.Exp(-rb.AngularDamping * dt))
	rb.ApplyRotation(rb.AngularVelocity.Mul(dt))

	rb.PresolveVelocity = rb.Velocity
	rb.PresolveAngularVelocity = rb.AngularVelocity

	rb.UpdateAABB()
}

// ApplyRotation rotates the body by the small world space rotation vector
// theta (axis * angle), q += 0.5 * [theta, 0] * q.
func (rb *RigidBody) ApplyRotation(theta mgl64.Vec3) {
	if theta.LenSqr() == 0 {
		return
	}
	q := rb.Transform.Rotation
	dq := mgl64.Quat{W: 0, V: theta}.Mul(q).Scale(0.5)
	rb.Transform.Rotation = q.Add(dq).Normalize()
}

// Update derives velocities from the pose change over dt.
func (rb *RigidBody) Update(dt float64) {
	if rb.IsStatic() || rb.IsSleeping {
		return
	}

	rb.Velocity = rb.Transform.Position.Sub(rb.PreviousTransform.Position).Mul(1.0 / dt)
	qDelta := rb.Transform.Rotation.Mul(rb.PreviousTransform.Rotation.Conjugate()).Normalize()
	if qDelta.W >= 0.0 {
		rb.AngularVelocity = qDelta.V.Mul(2.0 / dt)
	} else {
		rb.AngularVelocity = qDelta.V.Mul(-2.0 / dt)
	}

	rb.UpdateAABB()
}

// AddForce accumulates a force in Newtons, applied at the center of mass
// until ClearForces.
func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	if rb.IsStatic() {
		return
	}
	rb.Awake()
	rb.accumulatedForce = rb.accumulatedForce.Add(force)
}

// AddTorque accumulates a torque in N·m.
func (rb *RigidBody) AddTorque(torque mgl64.Vec3) {
	if rb.IsStatic() {
		return
	}
	rb.Awake()
	rb.accumulatedTorque = rb.accumulatedTorque.Add(torque)
}

func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec3{}
	rb.accumulatedTorque = mgl64.Vec3{}
}

// SupportWorld returns the world space support point of the body's convex
// shape. Non convex shapes return the body position.
func (rb *RigidBody) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	convex, ok := rb.Shape.(Convex)
	if !ok {
		return rb.Transform.Position
	}

	localDirection := rb.Transform.InverseRotate(direction)
	return rb.Transform.Apply(convex.Support(localDirection))
}

// GetInertiaWorld returns R * I_local * R^T.
func (rb *RigidBody) GetInertiaWorld() mgl64.Mat3 {
	R := rb.Transform.Rotation.Mat4().Mat3()
	return R.Mul3(rb.InertiaLocal).Mul3(R.Transpose())
}

// GetInverseInertiaWorld returns R * I_local^-1 * R^T, zero for static bodies.
func (rb *RigidBody) GetInverseInertiaWorld() mgl64.Mat3 {
	if rb.IsStatic() {
		return mgl64.Mat3{}
	}

	R := rb.Transform.Rotation.Mat4().Mat3()
	return R.Mul3(rb.InverseInertiaLocal).Mul3(R.Transpose())
}
