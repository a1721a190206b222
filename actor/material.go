package actor

// Material describes the surface response of a shape in contact.
type Material struct {
	StaticFriction  float64
	DynamicFriction float64
	Restitution     float64 // 0= no rebound, 1= perfect restitution
}

// DefaultMaterial matches the material the scenes are created with.
var DefaultMaterial = Material{StaticFriction: 0.5, DynamicFriction: 0.5, Restitution: 0.6}

func NewMaterial(staticFriction, dynamicFriction, restitution float64) Material {
	return Material{
		StaticFriction:  staticFriction,
		DynamicFriction: dynamicFriction,
		Restitution:     restitution,
	}
}
