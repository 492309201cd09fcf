package detect

import (
	"image"

	gomath "math"

	"gonum.org/v1/gonum/stat"

	"github.com/forgeworks/assetforge/internal/normalize"
	"github.com/forgeworks/assetforge/pkg/math"
)

// OrientOptions tunes the orientation heuristics.
type OrientOptions struct {
	// BrightnessFloor excludes near-black background pixels from the
	// top/bottom brightness comparison.
	BrightnessFloor uint8

	// FlipBrightnessRatio is how much brighter the bottom third must be
	// than the top third before a flip is recommended.
	FlipBrightnessRatio float64
}

// DefaultOrientOptions returns the standard tunables.
func DefaultOrientOptions() OrientOptions {
	return OrientOptions{
		BrightnessFloor:     10,
		FlipBrightnessRatio: 0.3,
	}
}

// AxisCorrection is a rotation that brings a model's longest extent onto
// the vertical axis.
type AxisCorrection struct {
	// Axis is the longest bounding-box axis: "x", "y" or "z".
	Axis string `json:"axis"`

	// Rotation maps the longest axis onto +Y.
	Rotation math.Quat `json:"rotation"`
}

// CheckGeometryOrientation reports whether the model's longest bounding-box
// axis deviates from vertical, and if so the quarter-turn that corrects it.
// Elongated weapons are expected to stand upright; a longest X or Z axis
// means the asset was authored lying down.
func CheckGeometryOrientation(b normalize.Box) (AxisCorrection, bool) {
	if b.Empty {
		return AxisCorrection{}, false
	}
	size := b.Size()
	switch {
	case size.X > size.Y && size.X >= size.Z:
		// +X onto +Y: quarter turn about Z.
		return AxisCorrection{
			Axis:     "x",
			Rotation: math.QuatFromAxisAngle(math.Vec3{Z: 1}, gomath.Pi/2),
		}, true
	case size.Z > size.Y && size.Z > size.X:
		// +Z onto +Y: quarter turn about X.
		return AxisCorrection{
			Axis:     "z",
			Rotation: math.QuatFromAxisAngle(math.Vec3{X: 1}, -gomath.Pi/2),
		}, true
	default:
		return AxisCorrection{}, false
	}
}

// CheckImageOrientation compares the mean brightness of the silhouette's
// top and bottom thirds. Weapons are stored blade-up, so most of the mass
// (the wide, bright blade) belongs in the upper part of the frame; a
// bottom third markedly brighter than the top means the model is upside
// down and should be flipped.
func CheckImageOrientation(img *image.Gray, opts OrientOptions) bool {
	b := img.Bounds()
	h := b.Dy()
	if h < 3 {
		return false
	}

	top := regionBrightness(img, 0, h/3, opts.BrightnessFloor)
	bottom := regionBrightness(img, h-h/3, h, opts.BrightnessFloor)

	if len(bottom) == 0 {
		return false
	}
	if len(top) == 0 {
		// All silhouette mass sits in the bottom third.
		return true
	}
	return stat.Mean(bottom, nil) > stat.Mean(top, nil)*(1+opts.FlipBrightnessRatio)
}

// regionBrightness collects the above-floor pixel values of rows [y0, y1).
func regionBrightness(img *image.Gray, y0, y1 int, floor uint8) []float64 {
	w := img.Bounds().Dx()
	var vals []float64
	for y := y0; y < y1; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w]
		for _, v := range row {
			if v > floor {
				vals = append(vals, float64(v))
			}
		}
	}
	return vals
}
