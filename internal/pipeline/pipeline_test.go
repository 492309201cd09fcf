package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/forgeworks/assetforge/internal/codec"
	"github.com/forgeworks/assetforge/internal/config"
	"github.com/forgeworks/assetforge/internal/detect"
	"github.com/forgeworks/assetforge/internal/logger"
	"github.com/forgeworks/assetforge/internal/normalize"
	"github.com/forgeworks/assetforge/pkg/math"
	"github.com/forgeworks/assetforge/pkg/scene"
)

func TestMain(m *testing.M) {
	// Silent logger: no console, no file.
	if err := logger.InitWithFileConfig("info", logger.FileConfig{}, false); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func addBox(mo *scene.Model, name string, min, max math.Vec3) {
	var corners []math.Vec3
	for _, z := range []float64{min.Z, max.Z} {
		for _, y := range []float64{min.Y, max.Y} {
			for _, x := range []float64{min.X, max.X} {
				corners = append(corners, math.Vec3{X: x, Y: y, Z: z})
			}
		}
	}
	mesh := &scene.Mesh{
		Positions: corners,
		Indices: []uint32{
			0, 1, 2, 1, 3, 2,
			4, 6, 5, 5, 6, 7,
			0, 2, 4, 2, 6, 4,
			1, 5, 3, 3, 5, 7,
			2, 3, 6, 3, 7, 6,
			0, 4, 1, 1, 4, 5,
		},
	}
	mi := mo.AddMesh(mesh)
	n := scene.NewNode(name)
	n.Mesh = mi
	mo.AddNode(n)
}

// swordModel builds an upright sword: wide blade, wider guard, thin
// segmented handle. The segment boundaries give the handle interior
// vertices for back-projection.
func swordModel() *scene.Model {
	var mo scene.Model
	addBox(&mo, "blade", math.Vec3{X: -0.25, Y: 0, Z: -0.05}, math.Vec3{X: 0.25, Y: 2, Z: 0.05})
	addBox(&mo, "guard", math.Vec3{X: -0.5, Y: -0.2, Z: -0.075}, math.Vec3{X: 0.5, Y: 0, Z: 0.075})
	for i := 0; i < 5; i++ {
		top := -0.2 - 0.2*float64(i)
		addBox(&mo, "handle",
			math.Vec3{X: -0.075, Y: top - 0.2, Z: -0.075},
			math.Vec3{X: 0.075, Y: top, Z: 0.075})
	}
	return &mo
}

func saveModel(t *testing.T, mo *scene.Model, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := codec.Save(mo, path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	return path
}

func TestRunWeaponDetection(t *testing.T) {
	in := saveModel(t, swordModel(), "sword.glb")
	out := filepath.Join(filepath.Dir(in), "sword_out.glb")
	debug := filepath.Join(filepath.Dir(in), "sword_debug.png")

	p := New(config.Default())
	rep, err := p.Run(Request{
		InputPath:      in,
		OutputPath:     out,
		Category:       normalize.CategoryWeapon,
		Detect:         true,
		DebugImagePath: debug,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rep.Detection == nil {
		t.Fatal("expected a detection result")
	}
	if rep.Detection.Confidence != detect.ConfidenceHigh {
		t.Errorf("confidence = %v, want high", rep.Detection.Confidence)
	}
	// The detected grip sits mid-handle, well below the guard.
	if g := rep.Detection.Grip; g.Y > -0.3 || g.Y < -1.1 {
		t.Errorf("grip = %v, want mid-handle", g)
	}

	// The grip lands on the origin in the saved model.
	if rep.Normalization == nil {
		t.Fatal("expected a normalization result")
	}
	gripOffset := rep.Detection.Grip.Add(rep.Normalization.Applied.Translation)
	if gripOffset.Length() > 1e-6 {
		t.Errorf("grip after normalization = %v, want origin", gripOffset)
	}

	if _, err := os.Stat(out); err != nil {
		t.Errorf("output model missing: %v", err)
	}
	if _, err := os.Stat(debug); err != nil {
		t.Errorf("debug image missing: %v", err)
	}
}

func TestRunWeaponExplicitGrip(t *testing.T) {
	in := saveModel(t, swordModel(), "sword.glb")

	grip := math.Vec3{Y: -0.7}
	p := New(config.Default())
	rep, err := p.Run(Request{
		InputPath: in,
		Category:  normalize.CategoryWeapon,
		Grip:      &grip,
		Detect:    true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rep.Detection != nil {
		t.Error("explicit grip should skip detection")
	}
	if got := rep.Normalization.Applied.Translation; got.Distance(math.Vec3{Y: 0.7}) > 1e-9 {
		t.Errorf("translation = %v, want (0, 0.7, 0)", got)
	}
}

func TestRunWeaponOrientationCorrection(t *testing.T) {
	// Sword authored lying along X.
	var mo scene.Model
	addBox(&mo, "blade", math.Vec3{X: -1.5, Y: -0.1, Z: -0.1}, math.Vec3{X: 1.5, Y: 0.1, Z: 0.1})
	in := saveModel(t, &mo, "lying.glb")

	p := New(config.Default())
	rep, err := p.Run(Request{InputPath: in, Category: normalize.CategoryWeapon})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rep.Orientation == nil || rep.Orientation.Axis != "x" {
		t.Fatalf("orientation = %+v, want X correction", rep.Orientation)
	}
	// After the quarter turn the long axis is vertical.
	d := rep.Normalization.Dimensions
	if d.Y <= d.X || d.Y <= d.Z {
		t.Errorf("dimensions = %v, want Y longest", d)
	}
}

func TestRunCharacterValidates(t *testing.T) {
	var mo scene.Model
	addBox(&mo, "body", math.Vec3{X: -0.4, Y: 0.3, Z: -0.2}, math.Vec3{X: 0.4, Y: 2.3, Z: 0.2})
	in := saveModel(t, &mo, "char.glb")
	out := filepath.Join(filepath.Dir(in), "char_out.glb")

	p := New(config.Default())
	rep, err := p.Run(Request{
		InputPath:  in,
		OutputPath: out,
		Category:   normalize.CategoryCharacter,
		Validate:   true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rep.Validation == nil || !rep.Validation.Valid {
		t.Fatalf("validation = %+v, want valid", rep.Validation)
	}
	if !scalar.EqualWithinAbs(rep.Normalization.NormalizedBounds.Height(), 1.83, 0.01) {
		t.Errorf("height = %v, want 1.83", rep.Normalization.NormalizedBounds.Height())
	}

	// The saved model reflects the normalization.
	saved, err := codec.Load(out)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	b := normalize.ComputeBounds(saved)
	if !scalar.EqualWithinAbs(b.Min.Y, 0, 1e-4) {
		t.Errorf("saved min Y = %v, want 0", b.Min.Y)
	}
}

func TestRunMissingInput(t *testing.T) {
	p := New(config.Default())
	if _, err := p.Run(Request{InputPath: "/nonexistent/model.glb", Category: normalize.CategoryBuilding}); err == nil {
		t.Fatal("expected error for missing input")
	}
}
