package normalize

import (
	"github.com/forgeworks/assetforge/pkg/math"
	"github.com/forgeworks/assetforge/pkg/scene"
)

// BakeTransforms permanently applies every node's accumulated world
// transform into its vertex data and resets all local transforms to
// identity, including transform-only group nodes.
//
// Baking an already-baked tree is a no-op: all world matrices are identity,
// so vertex data is untouched and the reset changes nothing.
//
// A mesh referenced by more than one node is deep-copied per referencing
// node before mutation, so baking one node can never corrupt another's
// geometry. The last referent mutates the pooled mesh in place.
func BakeTransforms(mo *scene.Model) {
	worlds := mo.WorldMatrices()
	remaining := mo.MeshRefCounts()

	for i := range mo.Nodes {
		meshIdx := mo.Nodes[i].Mesh
		if meshIdx == scene.NoMesh || meshIdx >= len(mo.Meshes) {
			continue
		}

		mesh := mo.Meshes[meshIdx]
		if remaining[meshIdx] > 1 {
			remaining[meshIdx]--
			mesh = mesh.Clone()
			mo.Nodes[i].Mesh = mo.AddMesh(mesh)
		}

		bakeMesh(mesh, worlds[i])
	}

	for i := range mo.Nodes {
		mo.Nodes[i].ResetTransform()
	}
}

func bakeMesh(mesh *scene.Mesh, world math.Mat4) {
	if world.IsIdentity(0) {
		return
	}

	for i, p := range mesh.Positions {
		mesh.Positions[i] = world.TransformPoint(p)
	}

	if len(mesh.Normals) > 0 {
		// Inverse-transpose keeps normals perpendicular under
		// non-uniform scale.
		nm := world.NormalMatrix()
		for i, n := range mesh.Normals {
			mesh.Normals[i] = nm.TransformDirection(n).Normalize()
		}
	}
}
