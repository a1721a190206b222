package physx

import (
	"fmt"
	"math"

	"github.com/alanjfs/physx/actor"
	"github.com/alanjfs/physx/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

// CreatePlane adds a static plane normal·p + distance = 0. The solid side is
// opposite the normal.
func CreatePlane(scene *Scene, normal mgl64.Vec3, distance float64, material actor.Material) (*actor.RigidBody, error) {
	l := normal.Len()
	if !(l > 1e-12) || math.IsInf(l, 0) {
		return nil, fmt.Errorf("%w: plane normal %v", actor.ErrInvalidGeometry, normal)
	}

	return CreateStatic(scene, spatial.FromPlane(normal.Mul(1/l), distance/l), &actor.Plane{}, material)
}

// CreateStatic adds an immovable body.
func CreateStatic(scene *Scene, pose spatial.Transform, shape actor.Shape, material actor.Material) (*actor.RigidBody, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	body := actor.NewRigidBody(pose, shape, actor.BodyTypeStatic, 0)
	body.Material = material
	if err := scene.AddActor(body); err != nil {
		return nil, err
	}

	return body, nil
}

// CreateDynamic adds a body whose mass and inertia come from the shape
// volume and density.
func CreateDynamic(scene *Scene, pose spatial.Transform, shape actor.Shape, material actor.Material, density float64) (*actor.RigidBody, error) {
	if _, isPlane := shape.(*actor.Plane); isPlane {
		return nil, ErrStaticPlane
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if !(density > 0) || math.IsInf(density, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDensity, density)
	}

	body := actor.NewRigidBody(pose, shape, actor.BodyTypeDynamic, density)
	body.Material = material
	if err := scene.AddActor(body); err != nil {
		return nil, err
	}

	return body, nil
}
