package constraint

import (
	"testing"

	"github.com/alanjfs/physx/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const h = 1.0 / 240

var (
	corners = [][2]float64{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}}
	center  = [][2]float64{{0, 0}}
)

// boxOnGround returns a unit box sunk by depth into a static slab whose top
// is y = 0, touching it at the given (x, z) offsets.
func boxOnGround(depth float64, at [][2]float64) (*actor.RigidBody, *actor.RigidBody, *ContactConstraint) {
	ground := createStaticBody(mgl64.Vec3{0, -0.5, 0})
	box := createDynamicBody(mgl64.Vec3{0, 0.5 - depth, 0}, mgl64.Vec3{}, 1)

	var points []ContactPoint
	for _, corner := range at {
		points = append(points, ContactPoint{
			Position:    mgl64.Vec3{corner[0], -depth / 2, corner[1]},
			Penetration: depth,
		})
	}

	return ground, box, NewContactConstraint(ground, box, mgl64.Vec3{0, 1, 0}, points, 0)
}

func TestContactConstraint_SolvePosition_NoPenetration(t *testing.T) {
	a := createDynamicBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{}, 1)
	b := createDynamicBody(mgl64.Vec3{2, 0, 0}, mgl64.Vec3{}, 1)
	c := NewContactConstraint(a, b, mgl64.Vec3{1, 0, 0}, []ContactPoint{{Position: mgl64.Vec3{1, 0, 0}}}, 0)

	c.SolvePosition(h)

	if a.Transform.Position != (mgl64.Vec3{}) || b.Transform.Position != (mgl64.Vec3{2, 0, 0}) {
		t.Errorf("bodies moved without penetration: %v %v", a.Transform.Position, b.Transform.Position)
	}
}

func TestContactConstraint_SolvePosition_EqualMasses(t *testing.T) {
	a := createDynamicBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{}, 1)
	b := createDynamicBody(mgl64.Vec3{0.9, 0, 0}, mgl64.Vec3{}, 1)
	c := NewContactConstraint(a, b, mgl64.Vec3{1, 0, 0}, []ContactPoint{{Position: mgl64.Vec3{0.45, 0, 0}, Penetration: 0.1}}, 0)

	c.SolvePosition(h)

	if !almostEqual(a.Transform.Position.X(), -0.05, 1e-9) {
		t.Errorf("A.x = %v, want -0.05", a.Transform.Position.X())
	}
	if !almostEqual(b.Transform.Position.X(), 0.95, 1e-9) {
		t.Errorf("B.x = %v, want 0.95", b.Transform.Position.X())
	}
	if d := c.Depth(); d > 1e-9 {
		t.Errorf("Depth() after solve = %v", d)
	}
}

func TestContactConstraint_SolvePosition_StaticBody(t *testing.T) {
	ground, box, c := boxOnGround(0.02, corners)

	c.SolvePosition(h)

	if ground.Transform.Position != (mgl64.Vec3{0, -0.5, 0}) {
		t.Error("static body moved")
	}
	if box.Transform.Position.Y() <= 0.48 {
		t.Errorf("box not pushed out: y = %v", box.Transform.Position.Y())
	}
	if d := c.Depth(); d >= 0.02 {
		t.Errorf("Depth() = %v, want less than the initial 0.02", d)
	}
}

func TestContactConstraint_SolvePosition_BothStatic(t *testing.T) {
	a := createStaticBody(mgl64.Vec3{0, 0, 0})
	b := createStaticBody(mgl64.Vec3{0, 0.5, 0})
	c := NewContactConstraint(a, b, mgl64.Vec3{0, 1, 0}, []ContactPoint{{Position: mgl64.Vec3{0, 0.25, 0}, Penetration: 0.5}}, 0)

	c.SolvePosition(h)
	c.SolveVelocity(h)

	if a.Transform.Position != (mgl64.Vec3{}) || b.Transform.Position != (mgl64.Vec3{0, 0.5, 0}) {
		t.Error("static bodies moved")
	}
}

func TestContactConstraint_SolvePosition_Compliance(t *testing.T) {
	_, stiff, stiffContact := boxOnGround(0.02, center)
	_, soft, _ := boxOnGround(0.02, center)

	softContact := NewContactConstraint(stiffContact.BodyA, soft, mgl64.Vec3{0, 1, 0}, append([]ContactPoint(nil), stiffContact.Points...), 1e-3)

	stiffContact.SolvePosition(h)
	softContact.SolvePosition(h)

	if soft.Transform.Position.Y() >= stiff.Transform.Position.Y() {
		t.Errorf("compliant contact corrected as much as a rigid one: %v >= %v", soft.Transform.Position.Y(), stiff.Transform.Position.Y())
	}
}

func TestContactConstraint_SolveVelocity_StopsApproach(t *testing.T) {
	_, box, c := boxOnGround(0.01, corners)
	box.Material.Restitution = 0
	box.Velocity = mgl64.Vec3{0, -0.1, 0}
	box.PresolveVelocity = box.Velocity

	c.SolvePosition(h)
	box.Velocity = mgl64.Vec3{0, -0.1, 0}
	c.SolveVelocity(h)

	if box.Velocity.Y() < -1e-9 {
		t.Errorf("box still approaching: %v", box.Velocity)
	}
}

func TestContactConstraint_SolveVelocity_Restitution(t *testing.T) {
	_, box, c := boxOnGround(0.01, center)
	box.Material = actor.NewMaterial(0, 0, 1)
	c.BodyA.Material = actor.NewMaterial(0, 0, 1)
	box.PresolveVelocity = mgl64.Vec3{0, -5, 0}

	c.SolvePosition(h)
	box.Velocity = mgl64.Vec3{0, -5, 0}
	box.AngularVelocity = mgl64.Vec3{}
	c.SolveVelocity(h)

	if !almostEqual(box.Velocity.Y(), 5, 1e-6) {
		t.Errorf("Velocity.Y = %v, want a full bounce at 5", box.Velocity.Y())
	}
}

func TestContactConstraint_SolveVelocity_LowSpeedNoRestitution(t *testing.T) {
	_, box, c := boxOnGround(0.01, center)
	box.Material = actor.NewMaterial(0, 0, 1)
	c.BodyA.Material = actor.NewMaterial(0, 0, 1)

	// Below 2 * g * h the contact is treated as resting.
	slow := -restitutionGravity * h
	box.PresolveVelocity = mgl64.Vec3{0, slow, 0}

	c.SolvePosition(h)
	box.Velocity = mgl64.Vec3{0, slow, 0}
	c.SolveVelocity(h)

	if !almostEqual(box.Velocity.Y(), 0, 1e-9) {
		t.Errorf("Velocity.Y = %v, want 0", box.Velocity.Y())
	}
}

func TestContactConstraint_SolveVelocity_Friction(t *testing.T) {
	tests := []struct {
		name      string
		friction  float64
		speed     float64
		wantStuck bool
	}{
		{"high friction sticks", 1.0, 0.01, true},
		{"frictionless slides", 0.0, 0.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ground, box, c := boxOnGround(0.02, center)
			ground.Material = actor.NewMaterial(tt.friction, tt.friction, 0)
			box.Material = actor.NewMaterial(tt.friction, tt.friction, 0)

			c.SolvePosition(h)
			box.Velocity = mgl64.Vec3{tt.speed, 0, 0}
			box.AngularVelocity = mgl64.Vec3{}
			c.SolveVelocity(h)

			// Sliding speed of the box at the contact.
			_, pB, _, rB := c.worldPoints(&c.Points[0])
			slip := velocityAt(box, rB).X()
			stuck := slip < 1e-6
			if stuck != tt.wantStuck {
				t.Errorf("slip at %v = %v, stuck = %v, want %v", pB, slip, stuck, tt.wantStuck)
			}
		})
	}
}

func TestContactConstraint_WakesSleepingBody(t *testing.T) {
	sleeper := createDynamicBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{}, 1)
	sleeper.Sleep()
	mover := createDynamicBody(mgl64.Vec3{0.9, 0, 0}, mgl64.Vec3{-2, 0, 0}, 1)

	c := NewContactConstraint(sleeper, mover, mgl64.Vec3{1, 0, 0}, []ContactPoint{{Position: mgl64.Vec3{0.45, 0, 0}, Penetration: 0.1}}, 0)
	c.SolvePosition(h)

	if sleeper.IsSleeping {
		t.Fatal("sleeping body should wake when hit")
	}
	if sleeper.Transform.Position.X() >= 0 {
		t.Errorf("woken body was not pushed: %v", sleeper.Transform.Position)
	}
}

func BenchmarkContactConstraint(b *testing.B) {
	_, _, c := boxOnGround(0.01, corners)

	for b.Loop() {
		c.SolvePosition(h)
		c.SolveVelocity(h)
	}
}
