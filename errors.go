package physx

import "errors"

var (
	ErrInvalidTimestep  = errors.New("physx: invalid timestep")
	ErrActorNotFound    = errors.New("physx: actor not in scene")
	ErrJointNotFound    = errors.New("physx: joint not in scene")
	ErrInvalidSceneDesc = errors.New("physx: invalid scene descriptor")
	ErrInvalidDensity   = errors.New("physx: density must be positive")
	ErrStaticPlane      = errors.New("physx: planes can only be static")
	ErrSceneReleased    = errors.New("physx: scene released")
)
