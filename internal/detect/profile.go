// Package detect locates the handle/grip region of weapon models from
// rendered silhouettes: width-profile scanning, orientation heuristics,
// and the orchestrating handle detection service.
package detect

import (
	"image"
)

// ProfileOptions holds the width-profile tunables. The defaults were
// tuned on a corpus of sword and axe silhouettes and are kept stable so
// existing assets keep detecting the same grip.
type ProfileOptions struct {
	// BrightnessThreshold is the minimum pixel value counted as part of
	// the silhouette when scanning a row.
	BrightnessThreshold uint8

	// GuardContractionRatio is the minimum relative width drop, over
	// GuardSpan rows, that qualifies as the guard-to-handle transition.
	GuardContractionRatio float64

	// GuardSpan is the vertical distance in rows over which the
	// contraction is measured.
	GuardSpan int

	// SearchBand is the centered fraction of rows searched for the guard.
	SearchBand float64

	// HandleStartOffset is how many rows below the guard the handle
	// region begins.
	HandleStartOffset int

	// HandleGrowthRatio ends the handle at the first row whose width
	// exceeds the handle's starting width by this fraction.
	HandleGrowthRatio float64

	// MaxHandleRows caps the handle region length.
	MaxHandleRows int
}

// DefaultProfileOptions returns the standard tunables.
func DefaultProfileOptions() ProfileOptions {
	return ProfileOptions{
		BrightnessThreshold:   40,
		GuardContractionRatio: 0.5,
		GuardSpan:             5,
		SearchBand:            0.6,
		HandleStartOffset:     10,
		HandleGrowthRatio:     0.3,
		MaxHandleRows:         120,
	}
}

// HandleRegion is the detected handle area in image space. MinY and MaxY
// are the first and last handle rows; MinY < MaxY always holds for a
// returned region. XMin and XMax span the silhouette columns over those
// rows. GuardY is the row where the guard contraction was found.
type HandleRegion struct {
	MinY   int `json:"minY"`
	MaxY   int `json:"maxY"`
	XMin   int `json:"xMin"`
	XMax   int `json:"xMax"`
	GuardY int `json:"guardY"`
}

// rowSpan is the horizontal extent of the silhouette on one row.
// Width is zero for background-only rows.
type rowSpan struct {
	left, right int
	width       int
}

// buildWidthProfile scans each row left-to-right and right-to-left for the
// first and last pixel above the brightness threshold.
func buildWidthProfile(img *image.Gray, threshold uint8) []rowSpan {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	spans := make([]rowSpan, h)

	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w]

		left := -1
		for x := 0; x < w; x++ {
			if row[x] > threshold {
				left = x
				break
			}
		}
		if left < 0 {
			spans[y] = rowSpan{left: -1, right: -1}
			continue
		}
		right := left
		for x := w - 1; x >= left; x-- {
			if row[x] > threshold {
				right = x
				break
			}
		}
		spans[y] = rowSpan{left: left, right: right, width: right - left + 1}
	}
	return spans
}

// FindHandle scans a grayscale silhouette for the handle region: it looks
// for the largest guard-to-handle width contraction within the middle
// search band, then follows the narrow section downward until the width
// grows past the growth ratio, drops to zero, or the row cap is hit.
//
// Returning no region is a normal outcome (uniform-width weapons have no
// qualifying contraction), not an error.
func FindHandle(img *image.Gray, opts ProfileOptions) (HandleRegion, bool) {
	spans := buildWidthProfile(img, opts.BrightnessThreshold)
	h := len(spans)
	if h == 0 {
		return HandleRegion{}, false
	}

	bandLo := int(float64(h) * (1 - opts.SearchBand) / 2)
	bandHi := int(float64(h) * (1 + opts.SearchBand) / 2)

	guardY := -1
	bestRatio := 0.0
	for y := bandLo; y < bandHi && y+opts.GuardSpan < h; y++ {
		before := spans[y].width
		after := spans[y+opts.GuardSpan].width
		if before == 0 || after == 0 {
			// A drop to nothing is the silhouette ending, not a guard.
			continue
		}
		ratio := float64(before-after) / float64(before)
		if ratio > opts.GuardContractionRatio && ratio > bestRatio {
			bestRatio = ratio
			guardY = y
		}
	}
	if guardY < 0 {
		return HandleRegion{}, false
	}

	start := guardY + opts.HandleStartOffset
	if start >= h || spans[start].width == 0 {
		return HandleRegion{}, false
	}
	startWidth := spans[start].width

	end := start
	for y := start + 1; y < h; y++ {
		if y-start >= opts.MaxHandleRows {
			break
		}
		if spans[y].width == 0 {
			break
		}
		if float64(spans[y].width) > float64(startWidth)*(1+opts.HandleGrowthRatio) {
			break
		}
		end = y
	}
	if end <= start {
		return HandleRegion{}, false
	}

	region := HandleRegion{MinY: start, MaxY: end, GuardY: guardY, XMin: -1, XMax: -1}
	for y := start; y <= end; y++ {
		if spans[y].width == 0 {
			continue
		}
		if region.XMin < 0 || spans[y].left < region.XMin {
			region.XMin = spans[y].left
		}
		if spans[y].right > region.XMax {
			region.XMax = spans[y].right
		}
	}
	return region, true
}
