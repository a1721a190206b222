package constraint

import (
	"errors"
	"fmt"
	"math"

	"github.com/alanjfs/physx/actor"
	"github.com/alanjfs/physx/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

var ErrInvalidJoint = errors.New("constraint: invalid joint")

// JointFrame is a joint attachment: a frame expressed in the local space of
// Body. When Body is nil the frame is in world space.
type JointFrame struct {
	Body  *actor.RigidBody
	Local spatial.Transform
}

func (f JointFrame) World() spatial.Transform {
	if f.Body == nil {
		return f.Local
	}
	return f.Body.Transform.Compose(f.Local)
}

// offset returns the world vector from the body center to the frame origin.
func (f JointFrame) offset(world mgl64.Vec3) mgl64.Vec3 {
	if f.Body == nil {
		return mgl64.Vec3{}
	}
	return world.Sub(f.Body.Transform.Position)
}

// Joint is a user constraint between two frames.
type Joint interface {
	Constraint
	Frames() (JointFrame, JointFrame)
	// SetBreakForce sets the linear force and torque above which the joint
	// breaks. Both default to +Inf.
	SetBreakForce(force, torque float64)
	IsBroken() bool
	// Force and Torque return the magnitudes measured over the last substep.
	Force() float64
	Torque() float64
}

type jointBase struct {
	A, B       JointFrame
	Compliance float64

	breakForce  float64
	breakTorque float64
	broken      bool

	force, torque float64

	linearLambda  float64
	angularLambda float64
}

func newJointBase(a, b *actor.RigidBody, localA, localB spatial.Transform) (jointBase, error) {
	if a == nil && b == nil {
		return jointBase{}, fmt.Errorf("%w: both frames attached to the world", ErrInvalidJoint)
	}
	if a != nil && a == b {
		return jointBase{}, fmt.Errorf("%w: body %d joined to itself", ErrInvalidJoint, a.ID)
	}

	return jointBase{
		A:           JointFrame{Body: a, Local: localA},
		B:           JointFrame{Body: b, Local: localB},
		breakForce:  math.Inf(1),
		breakTorque: math.Inf(1),
	}, nil
}

func (j *jointBase) Frames() (JointFrame, JointFrame) { return j.A, j.B }

func (j *jointBase) SetBreakForce(force, torque float64) {
	j.breakForce = force
	j.breakTorque = torque
}

func (j *jointBase) IsBroken() bool  { return j.broken }
func (j *jointBase) Force() float64  { return j.force }
func (j *jointBase) Torque() float64 { return j.torque }

// begin reports whether the joint must be solved this substep.
func (j *jointBase) begin() bool {
	j.linearLambda = 0
	j.angularLambda = 0
	if j.broken {
		return false
	}
	return wakePair(j.A.Body, j.B.Body)
}

// measure converts the accumulated multipliers to force and torque, F = λ/h²,
// and breaks the joint past its thresholds.
func (j *jointBase) measure(h float64) {
	j.force = math.Abs(j.linearLambda) / (h * h)
	j.torque = math.Abs(j.angularLambda) / (h * h)

	if j.force > j.breakForce || j.torque > j.breakTorque {
		j.broken = true
	}
}

// solveAnchor pulls the two frame origins together.
func (j *jointBase) solveAnchor(h float64) {
	pA := j.A.World().Position
	pB := j.B.World().Position

	d := pA.Sub(pB)
	c := d.Len()
	if c < 1e-9 {
		return
	}

	j.linearLambda += solvePositional(j.A.Body, j.B.Body, j.A.offset(pA), j.B.offset(pB), d.Mul(1/c), c, j.Compliance, h)
}

// solveOrientation rotates the frames towards their target relative rotation
// with the given compliance, and returns the applied λ.
func (j *jointBase) solveOrientation(target spatial.Quat, compliance, h float64) float64 {
	qA := j.A.World().Rotation.Mul(target)
	qB := j.B.World().Rotation

	// Rotation taking frame B onto frame A.
	e := qA.Mul(qB.Conjugate())
	if e.W < 0 {
		e = e.Scale(-1)
	}

	phi := e.V.Mul(2)
	angle := phi.Len()
	if angle < 1e-9 {
		return 0
	}

	return solveAngular(j.A.Body, j.B.Body, phi.Mul(1/angle), angle, compliance, h)
}

// SolveVelocity is a no-op for joints without drives.
func (j *jointBase) SolveVelocity(h float64) {}

// ====================================================================
// Spherical
// ====================================================================

// SphericalJoint locks the frame origins together and leaves rotation free,
// optionally within a cone around the X axis of frame A.
type SphericalJoint struct {
	jointBase

	limitEnabled bool
	limitAngle   float64
}

func NewSphericalJoint(a *actor.RigidBody, localA spatial.Transform, b *actor.RigidBody, localB spatial.Transform) (*SphericalJoint, error) {
	base, err := newJointBase(a, b, localA, localB)
	if err != nil {
		return nil, err
	}
	return &SphericalJoint{jointBase: base}, nil
}

// EnableLimit restricts the angle between the X axes of both frames.
func (j *SphericalJoint) EnableLimit(angle float64) {
	j.limitEnabled = true
	j.limitAngle = angle
}

func (j *SphericalJoint) DisableLimit() {
	j.limitEnabled = false
}

func (j *SphericalJoint) SolvePosition(h float64) {
	if !j.begin() {
		return
	}

	j.solveAnchor(h)
	if j.limitEnabled {
		j.solveCone(h)
	}

	j.measure(h)
}

func (j *SphericalJoint) solveCone(h float64) {
	axisA := j.A.World().Rotate(spatial.AxisX)
	axisB := j.B.World().Rotate(spatial.AxisX)

	angle := math.Acos(math.Max(-1, math.Min(1, axisA.Dot(axisB))))
	if angle <= j.limitAngle {
		return
	}

	n := axisB.Cross(axisA)
	if n.Len() < 1e-9 {
		return
	}
	j.angularLambda += solveAngular(j.A.Body, j.B.Body, n.Normalize(), angle-j.limitAngle, 0, h)
}

// ====================================================================
// Fixed
// ====================================================================

// FixedJoint locks both frames together.
type FixedJoint struct {
	jointBase
}

func NewFixedJoint(a *actor.RigidBody, localA spatial.Transform, b *actor.RigidBody, localB spatial.Transform) (*FixedJoint, error) {
	base, err := newJointBase(a, b, localA, localB)
	if err != nil {
		return nil, err
	}
	return &FixedJoint{jointBase: base}, nil
}

func (j *FixedJoint) SolvePosition(h float64) {
	if !j.begin() {
		return
	}

	j.angularLambda += j.solveOrientation(spatial.QuatIdent(), j.Compliance, h)
	j.solveAnchor(h)

	j.measure(h)
}

// ====================================================================
// D6
// ====================================================================

// Drive is a spring towards the drive target. Stiffness is in N·m/rad,
// Damping in N·m·s/rad and ForceLimit caps the damping torque.
type Drive struct {
	Stiffness  float64
	Damping    float64
	ForceLimit float64
}

// D6Joint keeps the linear axes locked and the angular axes free. A SLERP
// drive pulls the relative rotation of frame B towards the drive target.
type D6Joint struct {
	jointBase

	drive       Drive
	driveTarget spatial.Quat
	hasDrive    bool
}

func NewD6Joint(a *actor.RigidBody, localA spatial.Transform, b *actor.RigidBody, localB spatial.Transform) (*D6Joint, error) {
	base, err := newJointBase(a, b, localA, localB)
	if err != nil {
		return nil, err
	}
	return &D6Joint{jointBase: base, driveTarget: spatial.QuatIdent()}, nil
}

func (j *D6Joint) SetDrive(drive Drive) {
	j.drive = drive
	j.hasDrive = true
}

func (j *D6Joint) Drive() Drive { return j.drive }

// SetDriveTarget sets the rotation of frame B relative to frame A the drive
// pulls towards.
func (j *D6Joint) SetDriveTarget(q spatial.Quat) {
	j.driveTarget = q.Normalize()
}

func (j *D6Joint) SolvePosition(h float64) {
	if !j.begin() {
		return
	}

	j.solveAnchor(h)
	if j.hasDrive && j.drive.Stiffness > 0 {
		j.angularLambda += j.solveOrientation(j.driveTarget, 1/j.drive.Stiffness, h)
	}

	j.measure(h)
}

// SolveVelocity damps the relative angular velocity of the two bodies.
func (j *D6Joint) SolveVelocity(h float64) {
	if j.broken || !j.hasDrive || j.drive.Damping <= 0 {
		return
	}

	a, b := j.A.Body, j.B.Body
	if !(movable(a) || movable(b)) {
		return
	}

	var omegaA, omegaB mgl64.Vec3
	if movable(a) {
		omegaA = a.AngularVelocity
	}
	if movable(b) {
		omegaB = b.AngularVelocity
	}

	relative := omegaB.Sub(omegaA)
	speed := relative.Len()
	if speed < 1e-9 {
		return
	}
	axis := relative.Mul(1 / speed)

	w := angularInverseMass(a, axis) + angularInverseMass(b, axis)
	if w < epsilon {
		return
	}

	torque := j.drive.Damping * speed
	if j.drive.ForceLimit > 0 {
		torque = math.Min(torque, j.drive.ForceLimit)
	}
	impulse := math.Min(torque*h, speed/w)

	if movable(a) {
		a.AngularVelocity = a.AngularVelocity.Add(a.GetInverseInertiaWorld().Mul3x1(axis.Mul(impulse)))
	}
	if movable(b) {
		b.AngularVelocity = b.AngularVelocity.Sub(b.GetInverseInertiaWorld().Mul3x1(axis.Mul(impulse)))
	}
}
