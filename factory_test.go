package physx

import (
	"errors"
	"math"
	"testing"

	"github.com/alanjfs/physx/actor"
	"github.com/alanjfs/physx/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

func TestCreatePlane(t *testing.T) {
	scene := newTestScene(t, nil)

	plane, err := CreatePlane(scene, mgl64.Vec3{0, 2, 0}, -1, actor.DefaultMaterial)
	if err != nil {
		t.Fatalf("CreatePlane() error = %v", err)
	}

	normal, distance := plane.Shape.(*actor.Plane).WorldPlane(plane.Transform)
	if !vec3Near(normal, mgl64.Vec3{0, 1, 0}, 1e-12) || math.Abs(distance+0.5) > 1e-12 {
		t.Errorf("plane = %v, %v, want (0, 1, 0), -0.5", normal, distance)
	}
	if !plane.IsStatic() || plane.ID == 0 {
		t.Errorf("plane static = %v, ID = %d", plane.IsStatic(), plane.ID)
	}

	if _, err := CreatePlane(scene, mgl64.Vec3{}, 0, actor.DefaultMaterial); !errors.Is(err, actor.ErrInvalidGeometry) {
		t.Errorf("zero normal: err = %v, want ErrInvalidGeometry", err)
	}
}

func TestCreateStatic(t *testing.T) {
	scene := newTestScene(t, nil)
	material := actor.NewMaterial(1, 1, 0)

	body, err := CreateStatic(scene, spatial.Translation(mgl64.Vec3{0, -1, 0}), actor.NewBox(5, 1, 5), material)
	if err != nil {
		t.Fatalf("CreateStatic() error = %v", err)
	}
	if !math.IsInf(body.Mass(), 1) || body.InverseMass() != 0 {
		t.Errorf("static mass = %v, inverse = %v", body.Mass(), body.InverseMass())
	}
	if body.Material != material {
		t.Errorf("Material = %v, want %v", body.Material, material)
	}

	if _, err := CreateStatic(scene, spatial.Identity(), &actor.Sphere{Radius: -1}, material); !errors.Is(err, actor.ErrInvalidGeometry) {
		t.Errorf("negative radius: err = %v, want ErrInvalidGeometry", err)
	}
}

func TestCreateDynamic(t *testing.T) {
	tests := []struct {
		name    string
		shape   actor.Shape
		density float64
		wantErr error
	}{
		{"box", actor.NewBox(1, 1, 1), 10, nil},
		{"capsule", actor.NewCapsule(0.5, 0.5), 10, nil},
		{"zero density", actor.NewBox(1, 1, 1), 0, ErrInvalidDensity},
		{"infinite density", actor.NewBox(1, 1, 1), math.Inf(1), ErrInvalidDensity},
		{"flat box", actor.NewBox(1, 0, 1), 10, actor.ErrInvalidGeometry},
		{"plane", &actor.Plane{}, 10, ErrStaticPlane},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scene := newTestScene(t, nil)

			body, err := CreateDynamic(scene, spatial.Identity(), tt.shape, actor.DefaultMaterial, tt.density)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				if len(scene.Actors()) != 0 {
					t.Error("failed creation added an actor")
				}
				return
			}

			if err != nil {
				t.Fatalf("CreateDynamic() error = %v", err)
			}
			if want := tt.shape.ComputeMass(tt.density); math.Abs(body.Mass()-want) > 1e-9 {
				t.Errorf("Mass() = %v, want %v", body.Mass(), want)
			}
			if len(scene.Actors()) != 1 {
				t.Error("body not added")
			}
		})
	}
}
