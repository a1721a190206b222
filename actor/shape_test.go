package actor

import (
	"errors"
	"math"
	"testing"

	"github.com/alanjfs/physx/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

func vec3Equal(a, b mgl64.Vec3, eps float64) bool {
	return math.Abs(a[0]-b[0]) < eps && math.Abs(a[1]-b[1]) < eps && math.Abs(a[2]-b[2]) < eps
}

func floatEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func mat3Equal(a, b mgl64.Mat3, eps float64) bool {
	for i := range 9 {
		if math.Abs(a[i]-b[i]) >= eps {
			return false
		}
	}
	return true
}

// ====================================================================
// Validate
// ====================================================================

func TestShapeValidate(t *testing.T) {
	tests := []struct {
		name    string
		shape   Shape
		wantErr bool
	}{
		{"box", NewBox(1, 2, 3), false},
		{"box zero extent", NewBox(1, 0, 1), true},
		{"box negative extent", NewBox(-1, 1, 1), true},
		{"box NaN extent", NewBox(1, math.NaN(), 1), true},
		{"box infinite extent", NewBox(1, 1, math.Inf(1)), true},
		{"sphere", &Sphere{Radius: 0.5}, false},
		{"sphere zero radius", &Sphere{Radius: 0}, true},
		{"capsule", NewCapsule(0.25, 0.5), false},
		{"capsule negative height", NewCapsule(0.25, -0.5), true},
		{"plane", &Plane{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.shape.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidGeometry) {
					t.Errorf("Validate() = %v, want ErrInvalidGeometry", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

// ====================================================================
// Box
// ====================================================================

func TestBoxComputeAABB(t *testing.T) {
	box := NewBox(1, 2, 3)

	tests := []struct {
		name     string
		pose     spatial.Transform
		min, max mgl64.Vec3
	}{
		{
			name: "identity",
			pose: spatial.Identity(),
			min:  mgl64.Vec3{-1, -2, -3},
			max:  mgl64.Vec3{1, 2, 3},
		},
		{
			name: "translated",
			pose: spatial.Translation(mgl64.Vec3{10, 0, -5}),
			min:  mgl64.Vec3{9, -2, -8},
			max:  mgl64.Vec3{11, 2, -2},
		},
		{
			name: "quarter turn about Z swaps X and Y",
			pose: spatial.NewTransform(mgl64.Vec3{}, spatial.QuatFromAxisAngle(spatial.AxisZ, spatial.HalfPi)),
			min:  mgl64.Vec3{-2, -1, -3},
			max:  mgl64.Vec3{2, 1, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := box.ComputeAABB(tt.pose)
			if !vec3Equal(got.Min, tt.min, 1e-9) || !vec3Equal(got.Max, tt.max, 1e-9) {
				t.Errorf("ComputeAABB() = %+v, want min %v max %v", got, tt.min, tt.max)
			}
		})
	}
}

func TestBoxMassAndInertia(t *testing.T) {
	box := NewBox(1, 1, 1)

	mass := box.ComputeMass(10)
	if !floatEqual(mass, 80, 1e-9) {
		t.Fatalf("ComputeMass() = %v, want 80", mass)
	}

	// m/12 * (2² + 2²)
	want := diag(80.0/12*8, 80.0/12*8, 80.0/12*8)
	if got := box.ComputeInertia(mass); !mat3Equal(got, want, 1e-9) {
		t.Errorf("ComputeInertia() = %v, want %v", got, want)
	}
}

func TestBoxSupport(t *testing.T) {
	box := NewBox(1, 2, 3)

	tests := []struct {
		dir  mgl64.Vec3
		want mgl64.Vec3
	}{
		{mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 2, 3}},
		{mgl64.Vec3{-1, 1, -1}, mgl64.Vec3{-1, 2, -3}},
		{mgl64.Vec3{0, -1, 0}, mgl64.Vec3{1, -2, 3}},
	}

	for _, tt := range tests {
		if got := box.Support(tt.dir); got != tt.want {
			t.Errorf("Support(%v) = %v, want %v", tt.dir, got, tt.want)
		}
	}
}

func TestBoxGetContactFeature(t *testing.T) {
	box := NewBox(1, 2, 3)

	face := box.GetContactFeature(mgl64.Vec3{0.1, -0.9, 0.2})
	if len(face) != 4 {
		t.Fatalf("expected 4 vertices, got %d", len(face))
	}
	for _, v := range face {
		if v.Y() != -2 {
			t.Errorf("vertex %v is not on the -Y face", v)
		}
	}

	// Consecutive vertices share an edge, so exactly one coordinate differs.
	for i := range face {
		a, b := face[i], face[(i+1)%len(face)]
		diff := 0
		for k := range 3 {
			if a[k] != b[k] {
				diff++
			}
		}
		if diff != 1 {
			t.Errorf("vertices %v and %v are not adjacent", a, b)
		}
	}
}

func TestBoxCollideWithPlane(t *testing.T) {
	box := NewBox(0.5, 0.5, 0.5)
	up := mgl64.Vec3{0, 1, 0}

	tests := []struct {
		name        string
		pose        spatial.Transform
		wantHit     bool
		wantCount   int
		penetration float64
	}{
		{"above", spatial.Translation(mgl64.Vec3{0, 1, 0}), false, 0, 0},
		{"resting face down", spatial.Translation(mgl64.Vec3{0, 0.4, 0}), true, 4, 0.1},
		{
			"balanced on an edge",
			spatial.NewTransform(mgl64.Vec3{0, 0.7, 0}, spatial.QuatFromAxisAngle(spatial.AxisZ, math.Pi/4)),
			true, 2, math.Sqrt2/2 - 0.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, contacts := box.CollideWithPlane(up, 0, tt.pose)
			if hit != tt.wantHit {
				t.Fatalf("hit = %v, want %v", hit, tt.wantHit)
			}
			if len(contacts) != tt.wantCount {
				t.Fatalf("got %d contacts, want %d", len(contacts), tt.wantCount)
			}
			for _, c := range contacts {
				if !floatEqual(c.Penetration, tt.penetration, 1e-9) {
					t.Errorf("penetration = %v, want %v", c.Penetration, tt.penetration)
				}
			}
		})
	}
}

// ====================================================================
// Sphere
// ====================================================================

func TestSphereMassAndInertia(t *testing.T) {
	s := &Sphere{Radius: 2}

	mass := s.ComputeMass(1)
	if !floatEqual(mass, 4.0/3.0*math.Pi*8, 1e-9) {
		t.Errorf("ComputeMass() = %v", mass)
	}

	i := 0.4 * 10 * 4
	if got := s.ComputeInertia(10); !mat3Equal(got, diag(i, i, i), 1e-9) {
		t.Errorf("ComputeInertia() = %v", got)
	}
}

func TestSphereAABBIgnoresRotation(t *testing.T) {
	s := &Sphere{Radius: 1}
	pose := spatial.NewTransform(mgl64.Vec3{1, 2, 3}, spatial.QuatFromAxisAngle(spatial.AxisY, 1.3))

	got := s.ComputeAABB(pose)
	if !vec3Equal(got.Min, mgl64.Vec3{0, 1, 2}, 1e-12) || !vec3Equal(got.Max, mgl64.Vec3{2, 3, 4}, 1e-12) {
		t.Errorf("ComputeAABB() = %+v", got)
	}
}

func TestSphereSupport(t *testing.T) {
	s := &Sphere{Radius: 2}

	if got := s.Support(mgl64.Vec3{0, 0, 5}); !vec3Equal(got, mgl64.Vec3{0, 0, 2}, 1e-12) {
		t.Errorf("Support() = %v", got)
	}
	// Zero direction still yields a point on the surface.
	if got := s.Support(mgl64.Vec3{}); !floatEqual(got.Len(), 2, 1e-12) {
		t.Errorf("Support(zero) = %v", got)
	}
}

func TestSphereCollideWithPlane(t *testing.T) {
	s := &Sphere{Radius: 1}
	up := mgl64.Vec3{0, 1, 0}

	if hit, _ := s.CollideWithPlane(up, 0, spatial.Translation(mgl64.Vec3{0, 1.5, 0})); hit {
		t.Error("sphere above the plane should not collide")
	}

	hit, contacts := s.CollideWithPlane(up, 0, spatial.Translation(mgl64.Vec3{3, 0.75, 0}))
	if !hit || len(contacts) != 1 {
		t.Fatalf("hit = %v, contacts = %d", hit, len(contacts))
	}
	if !vec3Equal(contacts[0].Position, mgl64.Vec3{3, -0.25, 0}, 1e-12) {
		t.Errorf("Position = %v", contacts[0].Position)
	}
	if !floatEqual(contacts[0].Penetration, 0.25, 1e-12) {
		t.Errorf("Penetration = %v", contacts[0].Penetration)
	}
}

// ====================================================================
// Capsule
// ====================================================================

func TestCapsuleAxisIsX(t *testing.T) {
	c := NewCapsule(0.25, 0.5)

	aabb := c.ComputeAABB(spatial.Identity())
	if !vec3Equal(aabb.Min, mgl64.Vec3{-0.75, -0.25, -0.25}, 1e-12) ||
		!vec3Equal(aabb.Max, mgl64.Vec3{0.75, 0.25, 0.25}, 1e-12) {
		t.Errorf("ComputeAABB() = %+v", aabb)
	}

	// Rotating a quarter turn about Z stands the capsule up.
	upright := spatial.NewTransform(mgl64.Vec3{}, spatial.QuatFromAxisAngle(spatial.AxisZ, spatial.HalfPi))
	aabb = c.ComputeAABB(upright)
	if !floatEqual(aabb.Max.Y(), 0.75, 1e-9) || !floatEqual(aabb.Max.X(), 0.25, 1e-9) {
		t.Errorf("upright ComputeAABB() = %+v", aabb)
	}
}

func TestCapsuleMassAndInertia(t *testing.T) {
	c := NewCapsule(0.5, 1)

	want := math.Pi*0.25*2 + 4.0/3.0*math.Pi*0.125
	mass := c.ComputeMass(1)
	if !floatEqual(mass, want, 1e-9) {
		t.Fatalf("ComputeMass() = %v, want %v", mass, want)
	}

	inertia := c.ComputeInertia(mass)
	if inertia[0] <= 0 || inertia[4] <= 0 {
		t.Fatalf("inertia must be positive: %v", inertia)
	}
	if !floatEqual(inertia[4], inertia[8], 1e-12) {
		t.Errorf("transverse axes differ: %v", inertia)
	}
	// A long capsule resists spinning about its axis the least.
	if inertia[0] >= inertia[4] {
		t.Errorf("axial %v should be less than transverse %v", inertia[0], inertia[4])
	}
}

func TestCapsuleSupport(t *testing.T) {
	c := NewCapsule(0.25, 0.5)

	if got := c.Support(mgl64.Vec3{1, 0, 0}); !vec3Equal(got, mgl64.Vec3{0.75, 0, 0}, 1e-12) {
		t.Errorf("Support(+X) = %v", got)
	}
	if got := c.Support(mgl64.Vec3{-1, 1, 0}); !vec3Equal(got, mgl64.Vec3{-0.5 - 0.25/math.Sqrt2, 0.25 / math.Sqrt2, 0}, 1e-12) {
		t.Errorf("Support(-X+Y) = %v", got)
	}
}

func TestCapsuleGetContactFeature(t *testing.T) {
	c := NewCapsule(0.25, 0.5)

	side := c.GetContactFeature(mgl64.Vec3{0, -1, 0})
	if len(side) != 2 {
		t.Fatalf("expected side segment, got %v", side)
	}
	if !vec3Equal(side[0], mgl64.Vec3{-0.5, -0.25, 0}, 1e-12) || !vec3Equal(side[1], mgl64.Vec3{0.5, -0.25, 0}, 1e-12) {
		t.Errorf("side = %v", side)
	}

	if tip := c.GetContactFeature(mgl64.Vec3{1, 0, 0}); len(tip) != 1 {
		t.Errorf("expected single point, got %v", tip)
	}
}

func TestCapsuleCollideWithPlane(t *testing.T) {
	c := NewCapsule(0.25, 0.5)
	up := mgl64.Vec3{0, 1, 0}

	// Lying on its side: both end spheres touch.
	hit, contacts := c.CollideWithPlane(up, 0, spatial.Translation(mgl64.Vec3{0, 0.2, 0}))
	if !hit || len(contacts) != 2 {
		t.Fatalf("hit = %v, contacts = %d", hit, len(contacts))
	}
	for _, contact := range contacts {
		if !floatEqual(contact.Penetration, 0.05, 1e-12) {
			t.Errorf("Penetration = %v", contact.Penetration)
		}
	}

	// Standing up: only the bottom sphere touches.
	upright := spatial.NewTransform(mgl64.Vec3{0, 0.7, 0}, spatial.QuatFromAxisAngle(spatial.AxisZ, spatial.HalfPi))
	_, contacts = c.CollideWithPlane(up, 0, upright)
	if len(contacts) != 1 {
		t.Fatalf("upright contacts = %d, want 1", len(contacts))
	}
	if !vec3Equal(contacts[0].Position, mgl64.Vec3{0, -0.05, 0}, 1e-9) {
		t.Errorf("Position = %v", contacts[0].Position)
	}
}

// ====================================================================
// Plane
// ====================================================================

func TestPlaneWorldPlane(t *testing.T) {
	p := &Plane{}

	tests := []struct {
		name     string
		pose     spatial.Transform
		normal   mgl64.Vec3
		distance float64
	}{
		{"identity faces +X", spatial.Identity(), mgl64.Vec3{1, 0, 0}, 0},
		{"from ground plane", spatial.FromPlane(mgl64.Vec3{0, 1, 0}, 0), mgl64.Vec3{0, 1, 0}, 0},
		{"raised ground", spatial.FromPlane(mgl64.Vec3{0, 1, 0}, -2), mgl64.Vec3{0, 1, 0}, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, d := p.WorldPlane(tt.pose)
			if !vec3Equal(n, tt.normal, 1e-9) || !floatEqual(d, tt.distance, 1e-9) {
				t.Errorf("WorldPlane() = %v, %v, want %v, %v", n, d, tt.normal, tt.distance)
			}
		})
	}
}

func TestPlaneAABB(t *testing.T) {
	p := &Plane{}
	aabb := p.ComputeAABB(spatial.FromPlane(mgl64.Vec3{0, 1, 0}, 0))

	if !floatEqual(aabb.Max.Y(), 0, 1e-9) || !floatEqual(aabb.Min.Y(), -1, 1e-9) {
		t.Errorf("slab along Y = [%v, %v]", aabb.Min.Y(), aabb.Max.Y())
	}
	if aabb.Min.X() > -1e9 || aabb.Max.Z() < 1e9 {
		t.Errorf("plane should be unbounded along X and Z: %+v", aabb)
	}
	if !math.IsInf(p.ComputeMass(10), 1) {
		t.Error("plane mass should be infinite")
	}
}
