// Package scene defines the decoded scene graph consumed by the geometry
// engine: a flat slice of nodes with index-based parent and mesh references,
// so meshes can be shared across nodes without pointer aliasing surprises.
package scene

import (
	"github.com/forgeworks/assetforge/pkg/math"
)

// NoParent marks a root node, NoMesh a transform-only group node.
const (
	NoParent = -1
	NoMesh   = -1
)

// Mesh holds triangle geometry. Positions are required; Normals are
// optional and, when present, run parallel to Positions.
type Mesh struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	Indices   []uint32
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Positions: make([]math.Vec3, len(m.Positions)),
		Indices:   make([]uint32, len(m.Indices)),
	}
	copy(c.Positions, m.Positions)
	copy(c.Indices, m.Indices)
	if m.Normals != nil {
		c.Normals = make([]math.Vec3, len(m.Normals))
		copy(c.Normals, m.Normals)
	}
	return c
}

// TriangleCount returns the number of indexed triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Node is a scene graph node with a local TRS transform and an optional
// mesh reference. Parent and Mesh are indices into the owning Model.
type Node struct {
	Name        string
	Parent      int
	Mesh        int
	Translation math.Vec3
	Rotation    math.Quat
	Scale       math.Vec3
}

// NewNode returns a root node with an identity transform and no mesh.
func NewNode(name string) Node {
	return Node{
		Name:     name,
		Parent:   NoParent,
		Mesh:     NoMesh,
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// LocalMatrix composes the node transform as translation * rotation * scale.
func (n *Node) LocalMatrix() math.Mat4 {
	return math.TranslateV(n.Translation).
		Mul(n.Rotation.ToMat4()).
		Mul(math.ScaleV(n.Scale))
}

// ResetTransform sets the local transform to identity.
func (n *Node) ResetTransform() {
	n.Translation = math.Vec3{}
	n.Rotation = math.QuatIdentity()
	n.Scale = math.Vec3{X: 1, Y: 1, Z: 1}
}

// HasIdentityTransform reports whether the local transform is identity
// within tolerance.
func (n *Node) HasIdentityTransform(epsilon float64) bool {
	return n.LocalMatrix().IsIdentity(epsilon)
}

// Model is a caller-owned tree of nodes plus the mesh pool they reference.
// Multiple nodes may reference the same mesh index.
type Model struct {
	Nodes  []Node
	Meshes []*Mesh
}

// AddMesh appends a mesh to the pool and returns its index.
func (mo *Model) AddMesh(m *Mesh) int {
	mo.Meshes = append(mo.Meshes, m)
	return len(mo.Meshes) - 1
}

// AddNode appends a node and returns its index.
func (mo *Model) AddNode(n Node) int {
	mo.Nodes = append(mo.Nodes, n)
	return len(mo.Nodes) - 1
}

// Roots returns the indices of all parentless nodes.
func (mo *Model) Roots() []int {
	var roots []int
	for i := range mo.Nodes {
		if mo.Nodes[i].Parent == NoParent {
			roots = append(roots, i)
		}
	}
	return roots
}

// WorldMatrix resolves the world transform of node i by walking the parent
// chain. A malformed parent cycle terminates at the node where the cycle
// closes.
func (mo *Model) WorldMatrix(i int) math.Mat4 {
	visited := make(map[int]bool)
	return mo.worldMatrix(i, visited)
}

func (mo *Model) worldMatrix(i int, visited map[int]bool) math.Mat4 {
	if i < 0 || i >= len(mo.Nodes) || visited[i] {
		return math.Identity()
	}
	visited[i] = true

	local := mo.Nodes[i].LocalMatrix()
	parent := mo.Nodes[i].Parent
	if parent == NoParent {
		return local
	}
	return mo.worldMatrix(parent, visited).Mul(local)
}

// WorldMatrices resolves world transforms for every node.
func (mo *Model) WorldMatrices() []math.Mat4 {
	out := make([]math.Mat4, len(mo.Nodes))
	for i := range mo.Nodes {
		out[i] = mo.WorldMatrix(i)
	}
	return out
}

// MeshRefCounts returns, per mesh index, how many nodes reference it.
func (mo *Model) MeshRefCounts() []int {
	counts := make([]int, len(mo.Meshes))
	for i := range mo.Nodes {
		if m := mo.Nodes[i].Mesh; m != NoMesh && m < len(counts) {
			counts[m]++
		}
	}
	return counts
}

// VertexCount returns the total number of vertices across all node mesh
// references (shared meshes counted once per reference).
func (mo *Model) VertexCount() int {
	total := 0
	for i := range mo.Nodes {
		if m := mo.Nodes[i].Mesh; m != NoMesh && m < len(mo.Meshes) {
			total += len(mo.Meshes[m].Positions)
		}
	}
	return total
}

// Clone returns a deep copy of the model; meshes are copied, not shared.
func (mo *Model) Clone() *Model {
	c := &Model{
		Nodes:  make([]Node, len(mo.Nodes)),
		Meshes: make([]*Mesh, len(mo.Meshes)),
	}
	copy(c.Nodes, mo.Nodes)
	for i, m := range mo.Meshes {
		c.Meshes[i] = m.Clone()
	}
	return c
}
