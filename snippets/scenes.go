package snippets

import (
	"fmt"

	"github.com/alanjfs/physx"
	"github.com/alanjfs/physx/actor"
	"github.com/alanjfs/physx/constraint"
	"github.com/alanjfs/physx/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	HelloStackSize  = 5
	StackHalfExtent = 2.0

	ChainSeparation = 4.0
)

// Demo is a built scene and the actors the commands report on.
type Demo struct {
	Scene   *physx.Scene
	Bodies  []*actor.RigidBody
	Joints  []constraint.Joint
	Capsule *actor.RigidBody
}

// throwCapsule launches a large capsule at the stack from above and behind.
func throwCapsule(scene *physx.Scene, material actor.Material) (*actor.RigidBody, error) {
	return CreateDynamic(scene,
		spatial.Translation(mgl64.Vec3{0, 50, 100}),
		actor.NewCapsule(5, 5),
		material,
		mgl64.Vec3{0, -50, -100},
	)
}

func buildStackDemo(desc physx.SceneDesc, material actor.Material, z float64, size int) (*Demo, error) {
	scene, err := NewScene(desc)
	if err != nil {
		return nil, err
	}

	bodies, err := CreateStack(scene, spatial.Translation(mgl64.Vec3{0, 0, z}), size, StackHalfExtent, material)
	if err != nil {
		scene.Release()
		return nil, err
	}

	capsule, err := throwCapsule(scene, material)
	if err != nil {
		scene.Release()
		return nil, fmt.Errorf("capsule: %w", err)
	}

	return &Demo{Scene: scene, Bodies: bodies, Capsule: capsule}, nil
}

// BuildHelloWorld is a stack of five boxes knocked over by a capsule.
func BuildHelloWorld(desc physx.SceneDesc, material actor.Material) (*Demo, error) {
	return buildStackDemo(desc, material, 10, HelloStackSize)
}

// BuildStack is a stack of size rows further back, hit by the same capsule.
func BuildStack(desc physx.SceneDesc, material actor.Material, size int) (*Demo, error) {
	return buildStackDemo(desc, material, -30, size)
}

// BuildJoints hangs three chains of length links: limited spherical
// joints, breakable fixed joints and damped D6 joints.
func BuildJoints(desc physx.SceneDesc, material actor.Material, length int) (*Demo, error) {
	scene, err := NewScene(desc)
	if err != nil {
		return nil, err
	}

	chains := []struct {
		z       float64
		factory JointFactory
	}{
		{0, CreateLimitedSpherical},
		{-10, CreateBreakableFixed},
		{-20, CreateDampedD6},
	}

	demo := &Demo{Scene: scene}
	shape := actor.NewBox(2, 0.5, 0.5)

	for _, chain := range chains {
		pose := spatial.Translation(mgl64.Vec3{0, 20, chain.z})

		links, joints, err := CreateChain(scene, pose, length, shape, ChainSeparation, material, chain.factory)
		if err != nil {
			scene.Release()
			return nil, err
		}
		demo.Bodies = append(demo.Bodies, links...)
		demo.Joints = append(demo.Joints, joints...)
	}

	return demo, nil
}

// BuildSoloCapsule drops a spinning, tilted capsule onto a frictional plane
// that does not bounce.
func BuildSoloCapsule(desc physx.SceneDesc) (*Demo, error) {
	scene, err := physx.NewScene(desc)
	if err != nil {
		return nil, err
	}

	material := actor.NewMaterial(1, 1, 0)

	// The plane normal is its local X axis: a quarter turn about Z points it up.
	ground := spatial.NewTransform(mgl64.Vec3{}, spatial.QuatFromAxisAngle(spatial.AxisZ, spatial.HalfPi))
	if _, err := physx.CreateStatic(scene, ground, &actor.Plane{}, material); err != nil {
		scene.Release()
		return nil, err
	}

	pose := spatial.NewTransform(mgl64.Vec3{0, 5, 0}, spatial.QuatFromAxisAngle(spatial.AxisZ, mgl64.DegToRad(30)))

	capsule, err := CreateDynamic(scene, pose, actor.NewCapsule(0.5, 0.5), material, mgl64.Vec3{0, 5, 1})
	if err != nil {
		scene.Release()
		return nil, err
	}
	capsule.SetAngularVelocity(mgl64.Vec3{0, 0, mgl64.DegToRad(200)})

	return &Demo{Scene: scene, Bodies: []*actor.RigidBody{capsule}, Capsule: capsule}, nil
}
