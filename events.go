package physx

import (
	"slices"

	"github.com/alanjfs/physx/actor"
	"github.com/alanjfs/physx/constraint"
)

type EventType uint8

const (
	TriggerEnter EventType = iota
	CollisionEnter
	TriggerStay
	CollisionStay
	TriggerExit
	CollisionExit
	OnSleep
	OnWake
	OnJointBreak
)

func (t EventType) String() string {
	switch t {
	case TriggerEnter:
		return "trigger_enter"
	case CollisionEnter:
		return "collision_enter"
	case TriggerStay:
		return "trigger_stay"
	case CollisionStay:
		return "collision_stay"
	case TriggerExit:
		return "trigger_exit"
	case CollisionExit:
		return "collision_exit"
	case OnSleep:
		return "sleep"
	case OnWake:
		return "wake"
	case OnJointBreak:
		return "joint_break"
	default:
		return "unknown"
	}
}

// Event is implemented by every event delivered to listeners.
type Event interface {
	Type() EventType
}

// Trigger events
type TriggerEnterEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e TriggerEnterEvent) Type() EventType { return TriggerEnter }

type TriggerStayEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e TriggerStayEvent) Type() EventType { return TriggerStay }

type TriggerExitEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e TriggerExitEvent) Type() EventType { return TriggerExit }

// Collision events
type CollisionEnterEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e CollisionEnterEvent) Type() EventType { return CollisionEnter }

type CollisionStayEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e CollisionStayEvent) Type() EventType { return CollisionStay }

type CollisionExitEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e CollisionExitEvent) Type() EventType { return CollisionExit }

// Sleep/Wake events
type SleepEvent struct {
	Body *actor.RigidBody
}

func (e SleepEvent) Type() EventType { return OnSleep }

type WakeEvent struct {
	Body *actor.RigidBody
}

func (e WakeEvent) Type() EventType { return OnWake }

// JointBreakEvent is sent once, at the end of the step in which the joint
// exceeded its break force or torque. The joint is already out of the scene.
type JointBreakEvent struct {
	Joint constraint.Joint
}

func (e JointBreakEvent) Type() EventType { return OnJointBreak }

type EventListener func(event Event)

// pairKey orders the two bodies by ID so (A, B) and (B, A) match.
type pairKey struct {
	bodyA *actor.RigidBody
	bodyB *actor.RigidBody
}

func makePairKey(bodyA, bodyB *actor.RigidBody) pairKey {
	if bodyB.ID < bodyA.ID {
		bodyA, bodyB = bodyB, bodyA
	}
	return pairKey{bodyA: bodyA, bodyB: bodyB}
}

func (k pairKey) has(body *actor.RigidBody) bool {
	return k.bodyA == body || k.bodyB == body
}

func (k pairKey) isTrigger() bool {
	return k.bodyA.IsTrigger || k.bodyB.IsTrigger
}

// pairSet is a set of pairs that remembers insertion order.
type pairSet struct {
	index map[pairKey]struct{}
	order []pairKey
}

func newPairSet() pairSet {
	return pairSet{index: make(map[pairKey]struct{})}
}

func (s *pairSet) add(k pairKey) {
	if _, ok := s.index[k]; ok {
		return
	}
	s.index[k] = struct{}{}
	s.order = append(s.order, k)
}

func (s *pairSet) contains(k pairKey) bool {
	_, ok := s.index[k]
	return ok
}

func (s *pairSet) removeBody(body *actor.RigidBody) {
	s.order = slices.DeleteFunc(s.order, func(k pairKey) bool {
		if k.has(body) {
			delete(s.index, k)
			return true
		}
		return false
	})
}

func (s *pairSet) reset() {
	clear(s.index)
	s.order = s.order[:0]
}

// Events buffers what happens during a step and delivers it to listeners
// once the step is complete.
type Events struct {
	listeners map[EventType][]EventListener

	buffer []Event

	// Collision tracking for Enter/Stay/Exit detection
	previousActivePairs pairSet
	currentActivePairs  pairSet

	sleepStates map[*actor.RigidBody]bool
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 256),
		previousActivePairs: newPairSet(),
		currentActivePairs:  newPairSet(),
		sleepStates:         make(map[*actor.RigidBody]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordCollisions marks the pairs of this substep as touching and drops the
// trigger contacts, which are reported but never solved.
func (e *Events) recordCollisions(constraints []*constraint.ContactConstraint) []*constraint.ContactConstraint {
	n := 0
	for _, c := range constraints {
		e.currentActivePairs.add(makePairKey(c.BodyA, c.BodyB))

		if !c.BodyA.IsTrigger && !c.BodyB.IsTrigger {
			constraints[n] = c
			n++
		}
	}

	return constraints[:n]
}

func (e *Events) emitJointBreak(joint constraint.Joint) {
	e.buffer = append(e.buffer, JointBreakEvent{Joint: joint})
}

// forget drops the tracking state of a body leaving the scene.
func (e *Events) forget(body *actor.RigidBody) {
	delete(e.sleepStates, body)
	e.previousActivePairs.removeBody(body)
	e.currentActivePairs.removeBody(body)
}

// processCollisionEvents compares current and previous pairs to detect
// Enter/Stay/Exit. Should be called after all substeps.
func (e *Events) processCollisionEvents() {
	for _, pair := range e.currentActivePairs.order {
		// Skip if both bodies are sleeping, to avoid spamming events
		if pair.bodyA.IsSleeping && pair.bodyB.IsSleeping {
			continue
		}

		isTrigger := pair.isTrigger()
		stay := e.previousActivePairs.contains(pair)

		switch {
		case stay && isTrigger:
			e.buffer = append(e.buffer, TriggerStayEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		case stay:
			e.buffer = append(e.buffer, CollisionStayEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		case isTrigger:
			e.buffer = append(e.buffer, TriggerEnterEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		default:
			e.buffer = append(e.buffer, CollisionEnterEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}

	for _, pair := range e.previousActivePairs.order {
		if e.currentActivePairs.contains(pair) {
			continue
		}

		// Resting pairs leave the broad phase once nothing in them moves.
		if !active(pair.bodyA) && !active(pair.bodyB) {
			e.currentActivePairs.add(pair)
			continue
		}

		if pair.isTrigger() {
			e.buffer = append(e.buffer, TriggerExitEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		} else {
			e.buffer = append(e.buffer, CollisionExitEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}

	// Swap for next frame and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	e.currentActivePairs.reset()
}

func (e *Events) processSleepEvents(bodies []*actor.RigidBody) {
	for _, body := range bodies {
		trackedState, exists := e.sleepStates[body]
		if !exists {
			e.sleepStates[body] = body.IsSleeping
			continue
		}

		if !trackedState && body.IsSleeping {
			e.buffer = append(e.buffer, SleepEvent{Body: body})
			e.sleepStates[body] = true
		} else if trackedState && !body.IsSleeping {
			e.buffer = append(e.buffer, WakeEvent{Body: body})
			e.sleepStates[body] = false
		}
	}
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processCollisionEvents()

	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}
