package codec

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/forgeworks/assetforge/pkg/math"
)

func TestLoadOBJFromReader(t *testing.T) {
	src := `# a quad and a normal-less triangle
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1 4//1
`
	mo, err := LoadOBJFromReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadOBJFromReader: %v", err)
	}

	mesh := mo.Meshes[0]
	// The quad fan-triangulates into two triangles over four vertices.
	if got := mesh.TriangleCount(); got != 2 {
		t.Errorf("triangles = %d, want 2", got)
	}
	if got := len(mesh.Positions); got != 4 {
		t.Errorf("vertices = %d, want 4", got)
	}
	if len(mesh.Normals) != len(mesh.Positions) {
		t.Errorf("normals = %d, want %d", len(mesh.Normals), len(mesh.Positions))
	}
	if mesh.Positions[2] != (math.Vec3{X: 1, Y: 1}) {
		t.Errorf("vertex 2 = %v", mesh.Positions[2])
	}
}

func TestLoadOBJNegativeIndices(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`
	mo, err := LoadOBJFromReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadOBJFromReader: %v", err)
	}
	if got := mo.Meshes[0].TriangleCount(); got != 1 {
		t.Errorf("triangles = %d, want 1", got)
	}
}

func TestLoadOBJBadFaceIndex(t *testing.T) {
	src := `v 0 0 0
f 1 2 9
`
	if _, err := LoadOBJFromReader(strings.NewReader(src)); err == nil {
		t.Fatal("expected error for out-of-range face index")
	}
}

func TestOBJRoundTripThroughCodec(t *testing.T) {
	dir := t.TempDir()
	objPath := filepath.Join(dir, "asset.obj")

	src := sampleModel()
	if err := Save(src, objPath); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(objPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// OBJ output is baked to world space in one mesh.
	if got.VertexCount() != src.VertexCount() {
		t.Errorf("vertex count = %d, want %d", got.VertexCount(), src.VertexCount())
	}
	if got.Meshes[0].TriangleCount() != 2 {
		t.Errorf("triangles = %d, want 2", got.Meshes[0].TriangleCount())
	}
}
