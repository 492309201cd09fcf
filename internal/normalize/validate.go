package normalize

import (
	"fmt"

	"github.com/forgeworks/assetforge/pkg/scene"
)

// Convention holds the per-category reference values a normalized model is
// checked against. Values are display-friendly and overridable via config.
type Convention struct {
	Name         string  `yaml:"name" json:"name"`
	TargetHeight float64 `yaml:"target_height,omitempty" json:"targetHeight,omitempty"`
	MinHeight    float64 `yaml:"min_height,omitempty" json:"minHeight,omitempty"`
	MaxHeight    float64 `yaml:"max_height,omitempty" json:"maxHeight,omitempty"`
	Epsilon      float64 `yaml:"epsilon" json:"epsilon"`
	UpAxis       string  `yaml:"up_axis" json:"upAxis"`
	Front        string  `yaml:"front" json:"front"`
}

// ConventionTable maps categories to their conventions.
type ConventionTable map[Category]Convention

// DefaultConventions returns the built-in convention table.
func DefaultConventions() ConventionTable {
	return ConventionTable{
		CategoryWeapon: {
			Name:    "weapon: grip at origin",
			Epsilon: 0.05,
			UpAxis:  "y",
			Front:   "+z",
		},
		CategoryCharacter: {
			Name:         "character: feet at ground, standard height",
			TargetHeight: 1.83,
			MinHeight:    0.3,
			MaxHeight:    3.0,
			Epsilon:      0.01,
			UpAxis:       "y",
			Front:        "+z",
		},
		CategoryArmor: {
			Name:    "armor: centered on attachment point",
			Epsilon: 0.01,
			UpAxis:  "y",
			Front:   "+z",
		},
		CategoryBuilding: {
			Name:    "building: centered footprint on ground plane",
			Epsilon: 0.01,
			UpAxis:  "y",
			Front:   "+z",
		},
		CategoryGenericItem: {
			Name:    "generic item: centered on ground plane",
			Epsilon: 0.01,
			UpAxis:  "y",
			Front:   "+z",
		},
	}
}

// Convention returns the table entry for a category, falling back to the
// generic-item convention for unknown categories.
func (t ConventionTable) Convention(category Category) Convention {
	if conv, ok := t[category]; ok {
		return conv
	}
	return t[CategoryGenericItem]
}

// Report is the outcome of a validation pass: per-check flags, the error
// strings for anything out of convention, and the convention entry used
// (for display).
type Report struct {
	Valid      bool       `json:"valid"`
	Errors     []string   `json:"errors,omitempty"`
	Convention Convention `json:"convention"`
}

func (r *Report) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Validate recomputes the model's bounds without mutating it and checks
// the category's convention: grounded feet and accepted height window for
// characters, grip near the origin for weapons, centered bounds otherwise.
func Validate(mo *scene.Model, category Category, table ConventionTable) Report {
	if table == nil {
		table = DefaultConventions()
	}
	conv := table.Convention(category)
	report := Report{Valid: true, Convention: conv}

	bounds := ComputeBounds(mo)
	if bounds.Empty {
		report.fail("model has no geometry")
		return report
	}

	eps := conv.Epsilon
	center := bounds.Center()

	switch category {
	case CategoryCharacter:
		if abs(bounds.Min.Y) > eps {
			report.fail("feet not on ground plane: min Y is %.4f, want 0 within %.4f", bounds.Min.Y, eps)
		}
		h := bounds.Height()
		if h < conv.MinHeight || h > conv.MaxHeight {
			report.fail("height %.3f out of range [%.2f, %.2f]", h, conv.MinHeight, conv.MaxHeight)
		}
		if abs(center.X) > eps || abs(center.Z) > eps {
			report.fail("not centered: X/Z center is (%.4f, %.4f), want origin within %.4f", center.X, center.Z, eps)
		}

	case CategoryWeapon:
		grip := EstimateGrip(bounds)
		if grip.Length() > eps {
			report.fail("estimated grip (%.4f, %.4f, %.4f) not at origin within %.4f", grip.X, grip.Y, grip.Z, eps)
		}

	case CategoryArmor:
		if abs(center.X) > eps || abs(center.Z) > eps {
			report.fail("not centered: X/Z center is (%.4f, %.4f), want origin within %.4f", center.X, center.Z, eps)
		}

	default:
		if abs(center.X) > eps || abs(center.Z) > eps {
			report.fail("not centered: X/Z center is (%.4f, %.4f), want origin within %.4f", center.X, center.Z, eps)
		}
		if abs(bounds.Min.Y) > eps {
			report.fail("not on ground plane: min Y is %.4f, want 0 within %.4f", bounds.Min.Y, eps)
		}
	}

	return report
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
