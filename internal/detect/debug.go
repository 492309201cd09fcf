package detect

import (
	"image"
	"image/color"
	"image/draw"
)

var regionOutline = color.NRGBA{R: 255, G: 64, B: 64, A: 255}

// annotateRegion copies the silhouette into a color image and outlines the
// handle region. With a nil region the plain silhouette is returned, so
// callers always get a debug image to inspect.
func annotateRegion(img *image.Gray, region *HandleRegion) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	if region == nil {
		return out
	}

	for x := region.XMin; x <= region.XMax; x++ {
		setOutline(out, x, region.MinY)
		setOutline(out, x, region.MaxY)
	}
	for y := region.MinY; y <= region.MaxY; y++ {
		setOutline(out, region.XMin, y)
		setOutline(out, region.XMax, y)
	}
	return out
}

func setOutline(img *image.NRGBA, x, y int) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetNRGBA(x, y, regionOutline)
	}
}
