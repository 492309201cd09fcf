package detect

import (
	"errors"
	"image"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/forgeworks/assetforge/pkg/math"
	"github.com/forgeworks/assetforge/pkg/scene"
)

// stubRenderer hands out prepared silhouettes and records the models it was
// asked to render. Repeated calls walk through imgs, sticking on the last.
type stubRenderer struct {
	imgs   []*image.Gray
	cam    Camera
	err    error
	models []*scene.Model
}

func (r *stubRenderer) RenderSilhouette(mo *scene.Model) (*image.Gray, Camera, error) {
	if r.err != nil {
		return nil, Camera{}, r.err
	}
	r.models = append(r.models, mo)
	idx := len(r.models) - 1
	if idx >= len(r.imgs) {
		idx = len(r.imgs) - 1
	}
	return r.imgs[idx], r.cam, nil
}

func frontCamera() Camera {
	return Camera{
		ViewProj: math.Ortho(-1, 1, -1, 1, -1, 1),
		Width:    512,
		Height:   512,
	}
}

func pointModel(points ...math.Vec3) *scene.Model {
	var mo scene.Model
	mi := mo.AddMesh(&scene.Mesh{Positions: points})
	n := scene.NewNode("points")
	n.Mesh = mi
	mo.AddNode(n)
	return &mo
}

func TestDetectHandleHighConfidence(t *testing.T) {
	// Handle vertices at (0, -0.55) project into the sword's handle rows;
	// blade vertices near the top of the frame must be excluded.
	mo := pointModel(
		math.Vec3{Y: -0.55}, math.Vec3{Y: -0.55},
		math.Vec3{X: 0.01, Y: -0.55}, math.Vec3{X: -0.01, Y: -0.55},
		math.Vec3{Y: 0.5}, math.Vec3{X: 0.02, Y: 0.6},
	)
	r := &stubRenderer{imgs: []*image.Gray{swordImage()}, cam: frontCamera()}

	res, err := NewService(r).DetectHandle(mo)
	if err != nil {
		t.Fatalf("DetectHandle: %v", err)
	}

	if res.Confidence != ConfidenceHigh {
		t.Fatalf("confidence = %v, want high", res.Confidence)
	}
	if res.Flipped {
		t.Error("blade-up sword should not be flipped")
	}
	if res.Region == nil {
		t.Fatal("expected a handle region")
	}
	if len(res.Support) != 4 {
		t.Errorf("support vertices = %d, want 4", len(res.Support))
	}
	if res.Grip.X != 0 || !scalar.EqualWithinAbs(res.Grip.Y, -0.55, 1e-9) {
		t.Errorf("grip = %v, want (0, -0.55, 0)", res.Grip)
	}
	if res.DebugImage == nil {
		t.Fatal("expected a debug image")
	}
	if got := res.DebugImage.NRGBAAt(res.Region.XMin, res.Region.MinY); got != regionOutline {
		t.Errorf("region corner pixel = %v, want outline color", got)
	}
}

func TestDetectHandleLowConfidenceFallback(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 512, 512))
	fillBand(img, 100, 400, 40)

	mo := pointModel(math.Vec3{X: -0.1, Y: -0.5, Z: -0.1}, math.Vec3{X: 0.1, Y: 0.5, Z: 0.1})
	r := &stubRenderer{imgs: []*image.Gray{img}, cam: frontCamera()}

	res, err := NewService(r).DetectHandle(mo)
	if err != nil {
		t.Fatalf("DetectHandle: %v", err)
	}

	if res.Confidence != ConfidenceLow {
		t.Fatalf("confidence = %v, want low", res.Confidence)
	}
	if res.Region != nil {
		t.Error("fallback result should carry no region")
	}
	if len(res.Support) != 0 {
		t.Errorf("fallback support = %d vertices, want none", len(res.Support))
	}
	// Bounding-box estimate: 20% up a unit-height box starting at -0.5.
	if !scalar.EqualWithinAbs(res.Grip.Y, -0.3, 1e-9) {
		t.Errorf("fallback grip Y = %v, want -0.3", res.Grip.Y)
	}
	if res.DebugImage == nil {
		t.Error("fallback should still produce a debug image")
	}
}

func TestDetectHandleFlipsUpsideDownModel(t *testing.T) {
	bottomHeavy := image.NewGray(image.Rect(0, 0, 512, 512))
	fillBand(bottomHeavy, 400, 500, 100)

	// Authored blade-down: handle vertices at the top. After the half-turn
	// they land at (0, -0.55) inside the re-rendered handle region.
	mo := pointModel(
		math.Vec3{Y: 0.55}, math.Vec3{Y: 0.55},
		math.Vec3{X: 0.01, Y: 0.55},
		math.Vec3{Y: -0.5},
	)
	r := &stubRenderer{imgs: []*image.Gray{bottomHeavy, swordImage()}, cam: frontCamera()}

	res, err := NewService(r).DetectHandle(mo)
	if err != nil {
		t.Fatalf("DetectHandle: %v", err)
	}

	if !res.Flipped {
		t.Fatal("expected a flip recommendation")
	}
	if len(r.models) != 2 {
		t.Fatalf("renders = %d, want 2", len(r.models))
	}
	if r.models[1] == mo {
		t.Error("flip pass must work on a clone, not the input model")
	}
	if len(mo.Nodes) != 1 {
		t.Errorf("input model grew to %d nodes", len(mo.Nodes))
	}
	if res.Confidence != ConfidenceHigh {
		t.Fatalf("confidence = %v, want high", res.Confidence)
	}
	if !scalar.EqualWithinAbs(res.Grip.Y, -0.55, 1e-9) {
		t.Errorf("grip Y = %v, want -0.55 in flipped space", res.Grip.Y)
	}
}

func TestDetectHandleRenderError(t *testing.T) {
	boom := errors.New("raster buffer exhausted")
	r := &stubRenderer{err: boom}

	_, err := NewService(r).DetectHandle(pointModel(math.Vec3{}))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped render error", err)
	}
}

func TestDetectHandleEmptyRegionFallsBack(t *testing.T) {
	// A valid region with no vertices projecting into it must degrade to
	// the bounding-box estimate instead of reporting an empty cluster.
	mo := pointModel(math.Vec3{Y: 0.9}, math.Vec3{Y: 0.8})
	r := &stubRenderer{imgs: []*image.Gray{swordImage()}, cam: frontCamera()}

	res, err := NewService(r).DetectHandle(mo)
	if err != nil {
		t.Fatalf("DetectHandle: %v", err)
	}
	if res.Confidence != ConfidenceLow {
		t.Errorf("confidence = %v, want low", res.Confidence)
	}
}
