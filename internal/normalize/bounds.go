// Package normalize implements the geometry normalization engine: bounds
// computation, transform baking, per-category normalization, validation,
// and grip estimation for 3D game assets.
package normalize

import (
	"github.com/forgeworks/assetforge/pkg/math"
	"github.com/forgeworks/assetforge/pkg/scene"
)

// Box is an axis-aligned bounding box with an explicit Empty flag.
// An empty box must never be treated as zero-size; callers check Empty
// before deriving center or extents.
type Box struct {
	Min   math.Vec3 `json:"min"`
	Max   math.Vec3 `json:"max"`
	Empty bool      `json:"empty,omitempty"`
}

// EmptyBox returns a box containing no geometry.
func EmptyBox() Box {
	return Box{Empty: true}
}

// Extend grows the box to include a point.
func (b Box) Extend(p math.Vec3) Box {
	if b.Empty {
		return Box{Min: p, Max: p}
	}
	return Box{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union grows the box to include another box.
func (b Box) Union(other Box) Box {
	if other.Empty {
		return b
	}
	if b.Empty {
		return other
	}
	return Box{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Center returns the box midpoint. Only meaningful when Empty is false.
func (b Box) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the extent along each axis. Only meaningful when Empty is false.
func (b Box) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Height returns the vertical (Y) extent.
func (b Box) Height() float64 {
	return b.Max.Y - b.Min.Y
}

// ComputeBounds returns the world-space bounding box over every vertex of
// every mesh-bearing node, or an explicitly empty box when the model has
// no geometry.
func ComputeBounds(mo *scene.Model) Box {
	box := EmptyBox()
	worlds := mo.WorldMatrices()

	for i := range mo.Nodes {
		meshIdx := mo.Nodes[i].Mesh
		if meshIdx == scene.NoMesh || meshIdx >= len(mo.Meshes) {
			continue
		}
		mesh := mo.Meshes[meshIdx]
		for _, p := range mesh.Positions {
			box = box.Extend(worlds[i].TransformPoint(p))
		}
	}
	return box
}
