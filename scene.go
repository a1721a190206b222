// Package physx simulates rigid body scenes: bodies with convex shapes and
// static planes, contacts found by a hash grid broad phase and GJK/EPA, and
// joints, all solved with substepped XPBD.
package physx

import (
	"fmt"
	"math"
	"slices"

	"github.com/alanjfs/physx/actor"
	"github.com/alanjfs/physx/constraint"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

const DefaultWorkers = 1

// SceneDesc configures a Scene.
type SceneDesc struct {
	// Gravity acceleration (m/s², or N/kg)
	Gravity  mgl64.Vec3
	Substeps int
	// Workers bounds the goroutines used by integration and collision.
	Workers int

	GridCellSize float64
	GridCells    int

	// A body sleeps after SleepTime seconds below SleepVelocity.
	SleepTime     float64
	SleepVelocity float64

	ContactCompliance float64

	Logger *zap.Logger
}

func DefaultSceneDesc() SceneDesc {
	return SceneDesc{
		Gravity:           mgl64.Vec3{0, -9.81, 0},
		Substeps:          20,
		Workers:           DefaultWorkers,
		GridCellSize:      6.0,
		GridCells:         4096,
		SleepTime:         0.1,
		SleepVelocity:     0.05,
		ContactCompliance: StiffCompliance,
	}
}

func (d SceneDesc) Validate() error {
	for i := range 3 {
		if math.IsNaN(d.Gravity[i]) || math.IsInf(d.Gravity[i], 0) {
			return fmt.Errorf("%w: gravity %v", ErrInvalidSceneDesc, d.Gravity)
		}
	}
	if d.Substeps < 1 {
		return fmt.Errorf("%w: substeps %d", ErrInvalidSceneDesc, d.Substeps)
	}
	if d.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalidSceneDesc, d.Workers)
	}
	if !(d.GridCellSize > 0) || d.GridCells < 1 {
		return fmt.Errorf("%w: grid %v x %d", ErrInvalidSceneDesc, d.GridCellSize, d.GridCells)
	}
	if d.SleepTime < 0 || d.SleepVelocity < 0 {
		return fmt.Errorf("%w: sleep thresholds %v, %v", ErrInvalidSceneDesc, d.SleepTime, d.SleepVelocity)
	}
	if d.ContactCompliance < 0 {
		return fmt.Errorf("%w: contact compliance %v", ErrInvalidSceneDesc, d.ContactCompliance)
	}
	return nil
}

// Scene owns bodies and joints and advances them in time.
type Scene struct {
	Gravity mgl64.Vec3

	desc        SceneDesc
	bodies      []*actor.RigidBody
	joints      []constraint.Joint
	spatialGrid *SpatialGrid
	workers     int
	logger      *zap.Logger

	nextID   int
	steps    int
	released bool

	Events Events
}

func NewScene(desc SceneDesc) (*Scene, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	logger := desc.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scene{
		Gravity:     desc.Gravity,
		desc:        desc,
		spatialGrid: NewSpatialGrid(desc.GridCellSize, desc.GridCells),
		workers:     max(DefaultWorkers, desc.Workers),
		logger:      logger,
		nextID:      1,
		Events:      NewEvents(),
	}

	logger.Info("scene created",
		zap.Float64s("gravity", desc.Gravity[:]),
		zap.Int("substeps", desc.Substeps),
		zap.Int("workers", s.workers),
	)

	return s, nil
}

// AddActor inserts a body and assigns its ID. Adding a body twice is a no-op.
func (s *Scene) AddActor(body *actor.RigidBody) error {
	if s.released {
		return ErrSceneReleased
	}
	if slices.Contains(s.bodies, body) {
		return nil
	}

	body.ID = s.nextID
	s.nextID++
	s.bodies = append(s.bodies, body)

	return nil
}

// RemoveActor removes a body together with the joints attached to it.
func (s *Scene) RemoveActor(body *actor.RigidBody) error {
	k := slices.Index(s.bodies, body)
	if k == -1 {
		return ErrActorNotFound
	}
	s.bodies = slices.Delete(s.bodies, k, k+1)

	s.joints = slices.DeleteFunc(s.joints, func(j constraint.Joint) bool {
		a, b := j.Frames()
		return a.Body == body || b.Body == body
	})
	s.Events.forget(body)

	return nil
}

// AddJoint inserts a joint whose bodies are already in the scene.
func (s *Scene) AddJoint(joint constraint.Joint) error {
	if s.released {
		return ErrSceneReleased
	}

	a, b := joint.Frames()
	for _, body := range []*actor.RigidBody{a.Body, b.Body} {
		if body != nil && !slices.Contains(s.bodies, body) {
			return fmt.Errorf("%w: joint body %d", ErrActorNotFound, body.ID)
		}
	}
	if !slices.Contains(s.joints, joint) {
		s.joints = append(s.joints, joint)
	}

	return nil
}

func (s *Scene) RemoveJoint(joint constraint.Joint) error {
	k := slices.Index(s.joints, joint)
	if k == -1 {
		return ErrJointNotFound
	}
	s.joints = slices.Delete(s.joints, k, k+1)
	return nil
}

func (s *Scene) Actors() []*actor.RigidBody { return slices.Clone(s.bodies) }
func (s *Scene) Joints() []constraint.Joint { return slices.Clone(s.joints) }
func (s *Scene) StepCount() int             { return s.steps }

// Release empties the scene. Further steps and insertions fail.
func (s *Scene) Release() {
	if s.released {
		return
	}
	s.logger.Info("scene released",
		zap.Int("actors", len(s.bodies)),
		zap.Int("joints", len(s.joints)),
		zap.Int("steps", s.steps),
	)

	s.bodies = nil
	s.joints = nil
	s.Events = NewEvents()
	s.released = true
}

// Step advances the scene by dt seconds in Substeps equal substeps.
func (s *Scene) Step(dt float64) error {
	if s.released {
		return ErrSceneReleased
	}
	if !(dt > 0) || math.IsInf(dt, 1) {
		return fmt.Errorf("%w: %v", ErrInvalidTimestep, dt)
	}

	h := dt / float64(s.desc.Substeps)
	var pairs, contacts int

	for range s.desc.Substeps {
		s.integrate(h)

		// Phase 2.0: Collision pair finding - Broad phase
		// Phase 2.1: Collision pair finding - narrow phase
		candidates := BroadPhase(s.spatialGrid, s.bodies, s.workers)
		constraints := NarrowPhase(candidates, s.workers, s.desc.ContactCompliance)
		pairs, contacts = len(candidates), len(constraints)

		constraints = s.Events.recordCollisions(constraints)

		// Phase 3: Solver, only one iteration is required thanks to substeps
		s.solvePosition(h, constraints)

		// Phase 4: Update Position & Velocity
		s.update(h)

		// Phase 5: Velocity
		s.solveVelocity(h, constraints)

		s.trySleep(h)
	}

	for _, body := range s.bodies {
		body.ClearForces()
	}
	s.releaseBrokenJoints()
	s.Events.processSleepEvents(s.bodies)
	s.Events.flush()
	s.steps++

	s.logger.Debug("step",
		zap.Int("step", s.steps),
		zap.Int("pairs", pairs),
		zap.Int("contacts", contacts),
	)

	return nil
}

func (s *Scene) integrate(h float64) {
	task(s.workers, s.bodies, func(_ int, body *actor.RigidBody) {
		body.Integrate(h, s.Gravity)
	})
}

// solvePosition runs contacts then joints in order. Constraints share
// bodies, so the solve is sequential.
func (s *Scene) solvePosition(h float64, contacts []*constraint.ContactConstraint) {
	for _, c := range contacts {
		c.SolvePosition(h)
	}
	for _, j := range s.joints {
		j.SolvePosition(h)
	}
}

func (s *Scene) update(h float64) {
	task(s.workers, s.bodies, func(_ int, body *actor.RigidBody) {
		body.Update(h)
	})
}

func (s *Scene) solveVelocity(h float64, contacts []*constraint.ContactConstraint) {
	for _, c := range contacts {
		c.SolveVelocity(h)
	}
	for _, j := range s.joints {
		j.SolveVelocity(h)
	}
}

// trySleep sets the body to sleep if its velocity is lower than the threshold, for a given duration
// this method is too simple to use a task, it slows down in multiple goroutines
func (s *Scene) trySleep(h float64) {
	for _, body := range s.bodies {
		body.TrySleep(h, s.desc.SleepTime, s.desc.SleepVelocity)
	}
}

func (s *Scene) releaseBrokenJoints() {
	s.joints = slices.DeleteFunc(s.joints, func(j constraint.Joint) bool {
		if !j.IsBroken() {
			return false
		}
		s.logger.Info("joint broken",
			zap.Float64("force", j.Force()),
			zap.Float64("torque", j.Torque()),
		)
		s.Events.emitJointBreak(j)
		return true
	})
}
