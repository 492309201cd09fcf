// Package codec reads and writes models as glTF 2.0 documents.
package codec

import (
	"fmt"
	"path/filepath"
	"strings"

	gomath "math"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/forgeworks/assetforge/pkg/math"
	"github.com/forgeworks/assetforge/pkg/scene"
)

// Load reads a model file, picking the codec from the extension: .obj is
// parsed as Wavefront OBJ, everything else as glTF/GLB. For glTF, mesh
// sharing and node transforms are preserved; non-triangle primitives are
// skipped.
func Load(path string) (*scene.Model, error) {
	if strings.EqualFold(filepath.Ext(path), ".obj") {
		return LoadOBJ(path)
	}
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return FromDocument(doc)
}

// FromDocument converts a parsed glTF document into a Model.
func FromDocument(doc *gltf.Document) (*scene.Model, error) {
	var mo scene.Model

	// Each glTF mesh becomes one Model mesh with its primitives merged, so
	// nodes sharing a glTF mesh index share the converted mesh too.
	meshIdx := make([]int, len(doc.Meshes))
	for i, gm := range doc.Meshes {
		mesh, err := convertMesh(doc, gm)
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", gm.Name, err)
		}
		meshIdx[i] = mo.AddMesh(mesh)
	}

	for _, gn := range doc.Nodes {
		n := scene.NewNode(gn.Name)
		if gn.Mesh != nil {
			n.Mesh = meshIdx[*gn.Mesh]
		}
		n.Translation, n.Rotation, n.Scale = nodeTRS(gn)
		mo.AddNode(n)
	}
	for i, gn := range doc.Nodes {
		for _, child := range gn.Children {
			mo.Nodes[child].Parent = i
		}
	}
	return &mo, nil
}

// convertMesh merges a glTF mesh's triangle primitives into one mesh,
// rebasing each primitive's indices onto the merged vertex array.
func convertMesh(doc *gltf.Document, gm *gltf.Mesh) (*scene.Mesh, error) {
	mesh := &scene.Mesh{}

	for _, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, _ = modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
		}

		base := uint32(len(mesh.Positions))
		for _, p := range positions {
			mesh.Positions = append(mesh.Positions, math.Vec3{
				X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2]),
			})
		}
		for _, n := range normals {
			mesh.Normals = append(mesh.Normals, math.Vec3{
				X: float64(n[0]), Y: float64(n[1]), Z: float64(n[2]),
			})
		}

		if prim.Indices != nil {
			indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return nil, fmt.Errorf("read indices: %w", err)
			}
			for _, idx := range indices {
				mesh.Indices = append(mesh.Indices, base+idx)
			}
		} else {
			for k := range positions {
				mesh.Indices = append(mesh.Indices, base+uint32(k))
			}
		}
	}
	return mesh, nil
}

// nodeTRS extracts a node's transform, decomposing matrix-form transforms
// into translation, rotation and scale.
func nodeTRS(gn *gltf.Node) (math.Vec3, math.Quat, math.Vec3) {
	if m := gn.Matrix; m != [16]float64{} && m != identityMatrix {
		return decomposeMatrix(m)
	}

	t := math.Vec3{X: gn.Translation[0], Y: gn.Translation[1], Z: gn.Translation[2]}

	r := math.QuatIdentity()
	if gn.Rotation != [4]float64{} {
		r = math.Quat{X: gn.Rotation[0], Y: gn.Rotation[1], Z: gn.Rotation[2], W: gn.Rotation[3]}
	}

	s := math.Vec3{X: 1, Y: 1, Z: 1}
	if gn.Scale != [3]float64{} {
		s = math.Vec3{X: gn.Scale[0], Y: gn.Scale[1], Z: gn.Scale[2]}
	}
	return t, r, s
}

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// decomposeMatrix splits a column-major affine matrix into TRS. Shear is
// not representable and gets folded into the rotation.
func decomposeMatrix(m [16]float64) (math.Vec3, math.Quat, math.Vec3) {
	t := math.Vec3{X: m[12], Y: m[13], Z: m[14]}

	cols := [3]math.Vec3{
		{X: m[0], Y: m[1], Z: m[2]},
		{X: m[4], Y: m[5], Z: m[6]},
		{X: m[8], Y: m[9], Z: m[10]},
	}
	s := math.Vec3{X: cols[0].Length(), Y: cols[1].Length(), Z: cols[2].Length()}

	// A negative determinant means one axis is mirrored.
	det := cols[0].Dot(cols[1].Cross(cols[2]))
	if det < 0 {
		s.X = -s.X
	}

	for i, l := range []float64{s.X, s.Y, s.Z} {
		if l != 0 {
			cols[i] = cols[i].Scale(1 / l)
		}
	}
	return t, quatFromColumns(cols), s
}

// quatFromColumns converts an orthonormal rotation basis to a quaternion.
func quatFromColumns(c [3]math.Vec3) math.Quat {
	m00, m01, m02 := c[0].X, c[1].X, c[2].X
	m10, m11, m12 := c[0].Y, c[1].Y, c[2].Y
	m20, m21, m22 := c[0].Z, c[1].Z, c[2].Z

	trace := m00 + m11 + m22
	var q math.Quat
	switch {
	case trace > 0:
		s := gomath.Sqrt(trace+1) * 2
		q = math.Quat{W: s / 4, X: (m21 - m12) / s, Y: (m02 - m20) / s, Z: (m10 - m01) / s}
	case m00 > m11 && m00 > m22:
		s := gomath.Sqrt(1+m00-m11-m22) * 2
		q = math.Quat{W: (m21 - m12) / s, X: s / 4, Y: (m01 + m10) / s, Z: (m02 + m20) / s}
	case m11 > m22:
		s := gomath.Sqrt(1+m11-m00-m22) * 2
		q = math.Quat{W: (m02 - m20) / s, X: (m01 + m10) / s, Y: s / 4, Z: (m12 + m21) / s}
	default:
		s := gomath.Sqrt(1+m22-m00-m11) * 2
		q = math.Quat{W: (m10 - m01) / s, X: (m02 + m20) / s, Y: (m12 + m21) / s, Z: s / 4}
	}
	return q.Normalize()
}

// Save writes a model to .obj, .gltf (JSON) or .glb (binary, the default)
// depending on the path extension.
func Save(mo *scene.Model, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return SaveOBJ(mo, path)
	case ".gltf":
		if err := gltf.Save(ToDocument(mo), path); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
		return nil
	default:
		if err := gltf.SaveBinary(ToDocument(mo), path); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
		return nil
	}
}

// ToDocument converts a Model into a glTF document with a single scene
// rooted at the model's root nodes.
func ToDocument(mo *scene.Model) *gltf.Document {
	doc := gltf.NewDocument()

	for _, mesh := range mo.Meshes {
		positions := make([][3]float32, len(mesh.Positions))
		for i, p := range mesh.Positions {
			positions[i] = [3]float32{float32(p.X), float32(p.Y), float32(p.Z)}
		}

		prim := &gltf.Primitive{
			Attributes: gltf.PrimitiveAttributes{
				gltf.POSITION: modeler.WritePosition(doc, positions),
			},
		}
		if len(mesh.Normals) > 0 {
			normals := make([][3]float32, len(mesh.Normals))
			for i, n := range mesh.Normals {
				normals[i] = [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}
			}
			prim.Attributes[gltf.NORMAL] = modeler.WriteNormal(doc, normals)
		}
		if len(mesh.Indices) > 0 {
			prim.Indices = gltf.Index(modeler.WriteIndices(doc, mesh.Indices))
		}

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Primitives: []*gltf.Primitive{prim},
		})
	}

	for i := range mo.Nodes {
		n := &mo.Nodes[i]
		gn := &gltf.Node{
			Name:        n.Name,
			Translation: [3]float64{n.Translation.X, n.Translation.Y, n.Translation.Z},
			Rotation:    [4]float64{n.Rotation.X, n.Rotation.Y, n.Rotation.Z, n.Rotation.W},
			Scale:       [3]float64{n.Scale.X, n.Scale.Y, n.Scale.Z},
		}
		if n.Mesh != scene.NoMesh {
			gn.Mesh = gltf.Index(n.Mesh)
		}
		doc.Nodes = append(doc.Nodes, gn)
	}
	for i := range mo.Nodes {
		if p := mo.Nodes[i].Parent; p != scene.NoParent {
			doc.Nodes[p].Children = append(doc.Nodes[p].Children, i)
		}
	}

	doc.Scenes[0].Nodes = mo.Roots()
	return doc
}
