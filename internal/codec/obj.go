package codec

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/forgeworks/assetforge/pkg/math"
	"github.com/forgeworks/assetforge/pkg/scene"
)

// LoadOBJ reads a Wavefront OBJ file into a single-mesh model. Faces are
// fan-triangulated; texture coordinates are ignored.
func LoadOBJ(path string) (*scene.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return LoadOBJFromReader(f)
}

// LoadOBJFromReader parses OBJ data from r.
func LoadOBJFromReader(r io.Reader) (*scene.Model, error) {
	// OBJ indices are 1-based; slot 0 stays unused.
	vs := make([]math.Vec3, 1, 1024)
	vns := make([]math.Vec3, 1, 1024)

	mesh := &scene.Mesh{}

	// OBJ face corners reference position and normal independently, so
	// each unique pairing becomes one output vertex.
	type corner struct{ v, vn int }
	seen := make(map[corner]uint32)
	emit := func(c corner) uint32 {
		if idx, ok := seen[c]; ok {
			return idx
		}
		idx := uint32(len(mesh.Positions))
		mesh.Positions = append(mesh.Positions, vs[c.v])
		if c.vn > 0 {
			mesh.Normals = append(mesh.Normals, vns[c.vn])
		}
		seen[c] = idx
		return idx
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 2 || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("malformed vertex line %q", line)
			}
			vs = append(vs, math.Vec3{X: pf(fields[1]), Y: pf(fields[2]), Z: pf(fields[3])})
		case "vn":
			if len(fields) < 4 {
				return nil, fmt.Errorf("malformed normal line %q", line)
			}
			vns = append(vns, math.Vec3{X: pf(fields[1]), Y: pf(fields[2]), Z: pf(fields[3])})
		case "f":
			args := fields[1:]
			corners := make([]corner, len(args))
			for i, arg := range args {
				parts := strings.Split(arg+"//", "/")
				c := corner{v: fixIndex(parts[0], len(vs)), vn: fixIndex(parts[2], len(vns))}
				if c.v <= 0 || c.v >= len(vs) {
					return nil, fmt.Errorf("face references vertex %s out of range", arg)
				}
				corners[i] = c
			}
			for i := 1; i < len(corners)-1; i++ {
				mesh.Indices = append(mesh.Indices,
					emit(corners[0]), emit(corners[i]), emit(corners[i+1]))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// Drop partial normals: either every vertex has one or none do.
	if len(mesh.Normals) != len(mesh.Positions) {
		mesh.Normals = nil
	}

	var mo scene.Model
	mi := mo.AddMesh(mesh)
	n := scene.NewNode("obj")
	n.Mesh = mi
	mo.AddNode(n)
	return &mo, nil
}

// SaveOBJ writes the model's world-space geometry as a Wavefront OBJ file.
func SaveOBJ(mo *scene.Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	worlds := mo.WorldMatrices()

	base := 1
	for i := range mo.Nodes {
		n := &mo.Nodes[i]
		if n.Mesh == scene.NoMesh {
			continue
		}
		mesh := mo.Meshes[n.Mesh]
		world := worlds[i]

		for _, p := range mesh.Positions {
			wp := world.TransformPoint(p)
			fmt.Fprintf(w, "v %g %g %g\n", wp.X, wp.Y, wp.Z)
		}
		for j := 0; j+2 < len(mesh.Indices); j += 3 {
			fmt.Fprintf(w, "f %d %d %d\n",
				base+int(mesh.Indices[j]),
				base+int(mesh.Indices[j+1]),
				base+int(mesh.Indices[j+2]))
		}
		base += len(mesh.Positions)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return nil
}

func pf(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// fixIndex resolves an OBJ index, which may be negative (relative to the
// end of the list so far).
func fixIndex(value string, length int) int {
	if value == "" {
		return 0
	}
	parsed, _ := strconv.Atoi(value)
	if parsed < 0 {
		return parsed + length
	}
	return parsed
}
