// Package snippets builds the demo scenes: box stacks hit by a thrown
// capsule, jointed chains and a lone spinning capsule.
package snippets

import (
	"errors"
	"fmt"
	"math"

	"github.com/alanjfs/physx"
	"github.com/alanjfs/physx/actor"
	"github.com/alanjfs/physx/constraint"
	"github.com/alanjfs/physx/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultDensity is used by every dynamic body of the demos.
	DefaultDensity        = 10.0
	DefaultAngularDamping = 0.5
)

var ErrInvalidSize = errors.New("snippets: size must not be negative")

// JointFactory connects parent and child at their local frames. A nil
// parent attaches the child to the world, parentFrame then being a world pose.
type JointFactory func(parent *actor.RigidBody, parentFrame spatial.Transform, child *actor.RigidBody, childFrame spatial.Transform) (constraint.Joint, error)

// NewScene creates a scene with a ground plane y = 0 made of the default
// material.
func NewScene(desc physx.SceneDesc) (*physx.Scene, error) {
	scene, err := physx.NewScene(desc)
	if err != nil {
		return nil, err
	}

	if _, err := physx.CreatePlane(scene, mgl64.Vec3{0, 1, 0}, 0, actor.DefaultMaterial); err != nil {
		return nil, err
	}
	return scene, nil
}

// CreateDynamic adds a damped dynamic body thrown at velocity.
func CreateDynamic(scene *physx.Scene, pose spatial.Transform, shape actor.Shape, material actor.Material, velocity mgl64.Vec3) (*actor.RigidBody, error) {
	body, err := physx.CreateDynamic(scene, pose, shape, material, DefaultDensity)
	if err != nil {
		return nil, err
	}

	body.AngularDamping = DefaultAngularDamping
	body.SetLinearVelocity(velocity)
	return body, nil
}

// StackCount is the number of boxes in a stack of the given size.
func StackCount(size int) int {
	return size * (size + 1) / 2
}

// CreateStack piles boxes of halfExtent into a triangle in the XY plane of
// pose: size boxes on the bottom row, one less on each row above. The boxes
// share one shape.
func CreateStack(scene *physx.Scene, pose spatial.Transform, size int, halfExtent float64, material actor.Material) ([]*actor.RigidBody, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	shape := actor.NewBox(halfExtent, halfExtent, halfExtent)
	bodies := make([]*actor.RigidBody, 0, StackCount(size))

	for i := range size {
		for j := range size - i {
			local := spatial.Translation(mgl64.Vec3{
				float64(j*2 - (size - i)),
				float64(i*2 + 1),
				0,
			}.Mul(halfExtent))

			body, err := physx.CreateDynamic(scene, pose.Compose(local), shape, material, DefaultDensity)
			if err != nil {
				return nil, fmt.Errorf("stack box %d: %w", len(bodies), err)
			}
			bodies = append(bodies, body)
		}
	}

	return bodies, nil
}

// CreateChain lays length links of shape along the X axis of pose,
// separation apart, and joins them with factory. The first link hangs from
// the world at pose.
func CreateChain(scene *physx.Scene, pose spatial.Transform, length int, shape actor.Shape, separation float64, material actor.Material, factory JointFactory) ([]*actor.RigidBody, []constraint.Joint, error) {
	if length < 0 {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidSize, length)
	}

	offset := mgl64.Vec3{separation / 2, 0, 0}
	local := spatial.Translation(offset)

	links := make([]*actor.RigidBody, 0, length)
	joints := make([]constraint.Joint, 0, length)

	var prev *actor.RigidBody
	for range length {
		current, err := CreateDynamic(scene, pose.Compose(local), shape, material, mgl64.Vec3{})
		if err != nil {
			return nil, nil, err
		}

		parentFrame := pose
		if prev != nil {
			parentFrame = spatial.Translation(offset)
		}

		joint, err := factory(prev, parentFrame, current, spatial.Translation(offset.Mul(-1)))
		if err != nil {
			return nil, nil, err
		}
		if err := scene.AddJoint(joint); err != nil {
			return nil, nil, err
		}

		links = append(links, current)
		joints = append(joints, joint)
		prev = current
		local.Position[0] += separation
	}

	return links, joints, nil
}

// CreateLimitedSpherical is a ball joint whose swing is limited to a 45°
// cone.
func CreateLimitedSpherical(parent *actor.RigidBody, parentFrame spatial.Transform, child *actor.RigidBody, childFrame spatial.Transform) (constraint.Joint, error) {
	j, err := constraint.NewSphericalJoint(parent, parentFrame, child, childFrame)
	if err != nil {
		return nil, err
	}

	j.EnableLimit(spatial.HalfPi / 2)
	return j, nil
}

// CreateBreakableFixed is a weld that gives way past 1000 N or 100000 N·m.
func CreateBreakableFixed(parent *actor.RigidBody, parentFrame spatial.Transform, child *actor.RigidBody, childFrame spatial.Transform) (constraint.Joint, error) {
	j, err := constraint.NewFixedJoint(parent, parentFrame, child, childFrame)
	if err != nil {
		return nil, err
	}

	j.SetBreakForce(1000, 100000)
	return j, nil
}

// CreateDampedD6 leaves rotation free but damps it with a slerp drive.
func CreateDampedD6(parent *actor.RigidBody, parentFrame spatial.Transform, child *actor.RigidBody, childFrame spatial.Transform) (constraint.Joint, error) {
	j, err := constraint.NewD6Joint(parent, parentFrame, child, childFrame)
	if err != nil {
		return nil, err
	}

	j.SetDrive(constraint.Drive{Stiffness: 0, Damping: 1000, ForceLimit: math.MaxFloat64})
	return j, nil
}
