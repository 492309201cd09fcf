package normalize

import (
	"github.com/forgeworks/assetforge/pkg/math"
)

// Transform is a translation, rotation, scale triple. It composes as
// translation * rotation * scale when converted to a matrix.
type Transform struct {
	Translation math.Vec3 `json:"translation"`
	Rotation    math.Quat `json:"rotation"`
	Scale       math.Vec3 `json:"scale"`
}

// IdentityTransform returns a transform that leaves geometry unchanged.
func IdentityTransform() Transform {
	return Transform{
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// Matrix composes the transform into a 4x4 matrix.
func (t Transform) Matrix() math.Mat4 {
	return math.TranslateV(t.Translation).
		Mul(t.Rotation.ToMat4()).
		Mul(math.ScaleV(t.Scale))
}
