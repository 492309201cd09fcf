// Package render rasterizes models into orthographic front-view
// silhouettes for image-space analysis. The renderer is CPU-only: it
// supersamples an edge-function rasterizer and downscales the result.
package render

import (
	"errors"
	"image"
	"image/draw"

	gomath "math"

	"github.com/fogleman/simplify"
	"github.com/nfnt/resize"

	"github.com/forgeworks/assetforge/internal/detect"
	"github.com/forgeworks/assetforge/internal/normalize"
	"github.com/forgeworks/assetforge/pkg/math"
	"github.com/forgeworks/assetforge/pkg/scene"
)

// ErrNoGeometry reports a render request for a model without vertices.
var ErrNoGeometry = errors.New("render: model has no geometry")

// SilhouetteRenderer renders a model seen from the front (+Z toward the
// viewer, +Y up) as a white-on-black silhouette.
type SilhouetteRenderer struct {
	// Size is the output image edge length in pixels.
	Size int

	// Supersample is the oversampling factor applied before downscaling.
	Supersample int

	// Margin is the empty border around the model, as a fraction of the
	// larger framed extent.
	Margin float64

	// TriangleBudget decimates meshes above this triangle count before
	// rasterizing. Decimation never touches the source model.
	TriangleBudget int
}

// NewSilhouetteRenderer returns a renderer with the standard settings.
func NewSilhouetteRenderer() *SilhouetteRenderer {
	return &SilhouetteRenderer{
		Size:           512,
		Supersample:    2,
		Margin:         0.05,
		TriangleBudget: 100000,
	}
}

// RenderSilhouette rasterizes the model and returns the silhouette together
// with the camera that produced it. The camera maps world space to the
// final (downscaled) pixel grid.
func (r *SilhouetteRenderer) RenderSilhouette(mo *scene.Model) (*image.Gray, detect.Camera, error) {
	bounds := normalize.ComputeBounds(mo)
	if bounds.Empty {
		return nil, detect.Camera{}, ErrNoGeometry
	}

	cam := r.frameCamera(bounds)
	tris := worldTriangles(mo)
	if len(tris) > r.TriangleBudget && r.TriangleBudget > 0 {
		tris = decimate(tris, r.TriangleBudget)
	}

	ss := r.Size * r.Supersample
	hi := image.NewGray(image.Rect(0, 0, ss, ss))
	scale := float64(r.Supersample)
	for _, t := range tris {
		fillTriangle(hi,
			cam.Project(t[0]).Scale(scale),
			cam.Project(t[1]).Scale(scale),
			cam.Project(t[2]).Scale(scale),
		)
	}

	if r.Supersample <= 1 {
		return hi, cam, nil
	}
	lo := resize.Resize(uint(r.Size), uint(r.Size), hi, resize.Bilinear)
	out := image.NewGray(image.Rect(0, 0, r.Size, r.Size))
	draw.Draw(out, out.Bounds(), lo, lo.Bounds().Min, draw.Src)
	return out, cam, nil
}

// frameCamera builds an orthographic front camera that frames the bounds
// with the configured margin. The view keeps the world aspect: the larger
// of the X and Y extents fills the square frame.
func (r *SilhouetteRenderer) frameCamera(b normalize.Box) detect.Camera {
	center := b.Center()
	size := b.Size()

	half := gomath.Max(size.X, size.Y) / 2
	if half == 0 {
		half = 0.5
	}
	half *= 1 + r.Margin

	depth := size.Z/2 + 1
	view := math.LookAt(center.Add(math.Vec3{Z: depth}), center, math.Vec3{Y: 1})
	proj := math.Ortho(-half, half, -half, half, 0, 2*depth)

	return detect.Camera{
		ViewProj: proj.Mul(view),
		Width:    r.Size,
		Height:   r.Size,
	}
}

// worldTriangles flattens the model into world-space triangles. Meshes
// without indices are treated as triangle soup.
func worldTriangles(mo *scene.Model) [][3]math.Vec3 {
	worlds := mo.WorldMatrices()

	var tris [][3]math.Vec3
	for i := range mo.Nodes {
		n := &mo.Nodes[i]
		if n.Mesh == scene.NoMesh {
			continue
		}
		mesh := mo.Meshes[n.Mesh]
		world := worlds[i]

		emit := func(a, b, c math.Vec3) {
			tris = append(tris, [3]math.Vec3{
				world.TransformPoint(a),
				world.TransformPoint(b),
				world.TransformPoint(c),
			})
		}
		if len(mesh.Indices) > 0 {
			for j := 0; j+2 < len(mesh.Indices); j += 3 {
				emit(
					mesh.Positions[mesh.Indices[j]],
					mesh.Positions[mesh.Indices[j+1]],
					mesh.Positions[mesh.Indices[j+2]],
				)
			}
		} else {
			for j := 0; j+2 < len(mesh.Positions); j += 3 {
				emit(mesh.Positions[j], mesh.Positions[j+1], mesh.Positions[j+2])
			}
		}
	}
	return tris
}

// decimate reduces a triangle soup to roughly the given budget using
// quadric edge collapse.
func decimate(tris [][3]math.Vec3, budget int) [][3]math.Vec3 {
	src := make([]*simplify.Triangle, len(tris))
	for i, t := range tris {
		src[i] = simplify.NewTriangle(
			simplify.Vector{X: t[0].X, Y: t[0].Y, Z: t[0].Z},
			simplify.Vector{X: t[1].X, Y: t[1].Y, Z: t[1].Z},
			simplify.Vector{X: t[2].X, Y: t[2].Y, Z: t[2].Z},
		)
	}

	factor := float64(budget) / float64(len(tris))
	reduced := simplify.NewMesh(src).Simplify(factor)

	out := make([][3]math.Vec3, len(reduced.Triangles))
	for i, t := range reduced.Triangles {
		out[i] = [3]math.Vec3{
			{X: t.V1.X, Y: t.V1.Y, Z: t.V1.Z},
			{X: t.V2.X, Y: t.V2.Y, Z: t.V2.Z},
			{X: t.V3.X, Y: t.V3.Y, Z: t.V3.Z},
		}
	}
	return out
}

// fillTriangle rasterizes one triangle in pixel space, accepting either
// winding.
func fillTriangle(img *image.Gray, p0, p1, p2 math.Vec2) {
	b := img.Bounds()
	minX := clampInt(int(gomath.Floor(min3(p0.X, p1.X, p2.X))), b.Min.X, b.Max.X-1)
	maxX := clampInt(int(gomath.Ceil(max3(p0.X, p1.X, p2.X))), b.Min.X, b.Max.X-1)
	minY := clampInt(int(gomath.Floor(min3(p0.Y, p1.Y, p2.Y))), b.Min.Y, b.Max.Y-1)
	maxY := clampInt(int(gomath.Ceil(max3(p0.Y, p1.Y, p2.Y))), b.Min.Y, b.Max.Y-1)

	if edge(p0, p1, p2) == 0 {
		return
	}

	for y := minY; y <= maxY; y++ {
		row := img.Pix[y*img.Stride:]
		for x := minX; x <= maxX; x++ {
			p := math.Vec2{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			w0 := edge(p1, p2, p)
			w1 := edge(p2, p0, p)
			w2 := edge(p0, p1, p)
			if (w0 >= 0 && w1 >= 0 && w2 >= 0) || (w0 <= 0 && w1 <= 0 && w2 <= 0) {
				row[x] = 255
			}
		}
	}
}

func edge(a, b, c math.Vec2) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min3(a, b, c float64) float64 { return gomath.Min(a, gomath.Min(b, c)) }
func max3(a, b, c float64) float64 { return gomath.Max(a, gomath.Max(b, c)) }
