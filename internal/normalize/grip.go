package normalize

import (
	"github.com/forgeworks/assetforge/pkg/math"
)

// GripHeightFraction is the assumed grip height as a fraction of the
// weapon's vertical extent above its minimum Y. Empirically chosen; kept
// for compatibility with existing assets.
const GripHeightFraction = 0.2

// EstimateGrip returns a bounding-box-only grip point estimate: 20% of the
// vertical extent above the minimum Y, centered on X/Z.
//
// This is a low-confidence fallback, used only when no rendered handle
// analysis or explicit grip point is available.
func EstimateGrip(b Box) math.Vec3 {
	if b.Empty {
		return math.Vec3{}
	}
	c := b.Center()
	return math.Vec3{
		X: c.X,
		Y: b.Min.Y + GripHeightFraction*b.Height(),
		Z: c.Z,
	}
}
