package normalize

import (
	"fmt"
	gomath "math"

	"github.com/forgeworks/assetforge/pkg/math"
	"github.com/forgeworks/assetforge/pkg/scene"
)

// Category identifies the asset class being normalized. Each category has
// its own spatial convention (grip at origin, feet at ground, centered).
type Category string

const (
	CategoryWeapon      Category = "weapon"
	CategoryCharacter   Category = "character"
	CategoryArmor       Category = "armor"
	CategoryBuilding    Category = "building"
	CategoryGenericItem Category = "generic-item"
)

// Armor subtypes.
const (
	SubtypeGeneric = "generic"
	SubtypeHelmet  = "helmet"
)

// ParseCategory maps a category string to a known Category. Unrecognized
// values fall back to generic-item so new asset types never break the
// pipeline.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryWeapon, CategoryCharacter, CategoryArmor, CategoryBuilding:
		return Category(s)
	default:
		return CategoryGenericItem
	}
}

// Options tunes a single Normalize call.
type Options struct {
	// Subtype selects a variant convention within a category
	// (armor: "generic" or "helmet"). Unknown subtypes fall back to the
	// category default.
	Subtype string

	// GripPoint, when set for weapons, is translated to the origin instead
	// of the estimated grip.
	GripPoint *math.Vec3

	// TargetHeight overrides the convention target height for characters.
	// Zero means use the convention default.
	TargetHeight float64
}

// Result describes one completed normalization. It is produced once per
// call and never mutated afterwards.
type Result struct {
	Category         Category  `json:"category"`
	OriginalBounds   Box       `json:"originalBounds"`
	NormalizedBounds Box       `json:"normalizedBounds"`
	Applied          Transform `json:"applied"`
	Dimensions       math.Vec3 `json:"dimensions"`
}

// InvalidScaleError reports a normalization whose computed scale factor is
// zero or non-finite, naming the offending source height.
type InvalidScaleError struct {
	SourceHeight float64
}

func (e *InvalidScaleError) Error() string {
	return fmt.Sprintf("invalid scale factor: source height %g yields a non-finite or non-positive scale", e.SourceHeight)
}

// Normalize applies the category's spatial convention to the model in
// place: it computes the corrective transform, bakes it into the vertex
// data, and returns the before/after bounds, the exact transform applied,
// and the output dimensions.
//
// An empty model is not an error: the result carries empty bounds and an
// identity transform. A degenerate source height that would produce a
// zero or non-finite scale is fatal and returns *InvalidScaleError.
func Normalize(mo *scene.Model, category Category, opts Options) (*Result, error) {
	orig := ComputeBounds(mo)
	if orig.Empty {
		return &Result{
			Category:         category,
			OriginalBounds:   orig,
			NormalizedBounds: orig,
			Applied:          IdentityTransform(),
		}, nil
	}

	t, err := conventionTransform(orig, category, opts)
	if err != nil {
		return nil, err
	}

	applyTransform(mo, t)
	BakeTransforms(mo)

	norm := ComputeBounds(mo)
	return &Result{
		Category:         category,
		OriginalBounds:   orig,
		NormalizedBounds: norm,
		Applied:          t,
		Dimensions:       norm.Size(),
	}, nil
}

// conventionTransform computes the translation and scale that move the
// given bounds onto the category's convention. Rotation is never touched
// here; orientation fixes are a detection-side recommendation.
func conventionTransform(b Box, category Category, opts Options) (Transform, error) {
	t := IdentityTransform()
	c := b.Center()

	switch category {
	case CategoryWeapon:
		// Grip point to origin, scale untouched.
		grip := EstimateGrip(b)
		if opts.GripPoint != nil {
			grip = *opts.GripPoint
		}
		t.Translation = grip.Scale(-1)

	case CategoryCharacter:
		// Uniform scale to the target height, feet on the ground plane,
		// X/Z centered. Uniform scale preserves the X/Z aspect ratio.
		target := opts.TargetHeight
		if target <= 0 {
			target = DefaultConventions()[CategoryCharacter].TargetHeight
		}
		height := b.Height()
		s := target / height
		if s <= 0 || gomath.IsInf(s, 0) || gomath.IsNaN(s) {
			return Transform{}, &InvalidScaleError{SourceHeight: height}
		}
		t.Scale = math.Vec3{X: s, Y: s, Z: s}
		t.Translation = math.Vec3{X: -c.X * s, Y: -b.Min.Y * s, Z: -c.Z * s}

	case CategoryArmor:
		if opts.Subtype == SubtypeHelmet {
			// Helmet-like: neck attachment (lowest point) at Y=0.
			t.Translation = math.Vec3{X: -c.X, Y: -b.Min.Y, Z: -c.Z}
		} else {
			// Geometric center to the origin.
			t.Translation = c.Scale(-1)
		}

	default:
		// Building and generic-item: ground-plane convention.
		t.Translation = math.Vec3{X: -c.X, Y: -b.Min.Y, Z: -c.Z}
	}

	return t, nil
}

// applyTransform premultiplies the transform onto the model by inserting a
// group node above the current roots, so the exact transform survives as
// tree structure until baking collapses it into the vertices.
func applyTransform(mo *scene.Model, t Transform) {
	roots := mo.Roots()

	wrap := scene.NewNode("normalized")
	wrap.Translation = t.Translation
	wrap.Rotation = t.Rotation
	wrap.Scale = t.Scale
	wrapIdx := mo.AddNode(wrap)

	for _, r := range roots {
		mo.Nodes[r].Parent = wrapIdx
	}
}
