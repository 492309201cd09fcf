package detect

import (
	"fmt"
	"image"

	gomath "math"

	"github.com/forgeworks/assetforge/internal/normalize"
	"github.com/forgeworks/assetforge/pkg/math"
	"github.com/forgeworks/assetforge/pkg/scene"
)

// Camera maps world-space points to pixel coordinates of a rendered
// silhouette. ViewProj takes world space to normalized device coordinates;
// Width and Height are the image dimensions.
type Camera struct {
	ViewProj math.Mat4
	Width    int
	Height   int
}

// Project returns the pixel position of a world-space point. Pixel Y grows
// downward, so NDC +Y maps to the top of the image.
func (c Camera) Project(p math.Vec3) math.Vec2 {
	ndc := c.ViewProj.TransformPoint(p)
	return math.Vec2{
		X: (ndc.X + 1) / 2 * float64(c.Width),
		Y: (1 - ndc.Y) / 2 * float64(c.Height),
	}
}

// Renderer produces a front-view silhouette of a model together with the
// camera that rendered it.
type Renderer interface {
	RenderSilhouette(mo *scene.Model) (*image.Gray, Camera, error)
}

// Confidence grades a detection result.
type Confidence string

const (
	// ConfidenceHigh means the grip came from an identified handle region.
	ConfidenceHigh Confidence = "high"

	// ConfidenceLow means no handle region was found and the grip is a
	// bounding-box estimate.
	ConfidenceLow Confidence = "low"
)

// Result is the outcome of a handle detection run.
type Result struct {
	// Grip is the detected grip point in model space. When Flipped is set
	// it is expressed in the flipped orientation.
	Grip math.Vec3 `json:"grip"`

	// Support are the world-space vertices that projected into the handle
	// region; empty for low-confidence results.
	Support []math.Vec3 `json:"support,omitempty"`

	Confidence Confidence `json:"confidence"`

	// Region is the handle area in silhouette image space, when found.
	Region *HandleRegion `json:"region,omitempty"`

	// Flipped reports that the silhouette failed the orientation check and
	// detection ran on a 180-degree flipped copy of the model.
	Flipped bool `json:"flipped"`

	// DebugImage is the silhouette with the handle region outlined.
	DebugImage *image.NRGBA `json:"-"`
}

// Service runs handle detection against a silhouette renderer.
type Service struct {
	renderer Renderer
	profile  ProfileOptions
	orient   OrientOptions
}

// NewService returns a detection service with default tunables.
func NewService(r Renderer) *Service {
	return &Service{
		renderer: r,
		profile:  DefaultProfileOptions(),
		orient:   DefaultOrientOptions(),
	}
}

// NewServiceWithOptions returns a detection service with explicit tunables.
func NewServiceWithOptions(r Renderer, profile ProfileOptions, orient OrientOptions) *Service {
	return &Service{renderer: r, profile: profile, orient: orient}
}

// DetectHandle renders the model, locates the handle region in the
// silhouette and back-projects it onto the geometry to produce a grip
// point. The input model is never mutated: the orientation-flip pass works
// on a clone. When no handle region qualifies, the grip falls back to the
// bounding-box estimate with low confidence.
func (s *Service) DetectHandle(mo *scene.Model) (*Result, error) {
	img, cam, err := s.renderer.RenderSilhouette(mo)
	if err != nil {
		return nil, fmt.Errorf("render silhouette: %w", err)
	}

	work := mo
	res := &Result{}

	if CheckImageOrientation(img, s.orient) {
		flipped := flipModel(mo)
		flippedImg, flippedCam, err := s.renderer.RenderSilhouette(flipped)
		if err != nil {
			return nil, fmt.Errorf("render flipped silhouette: %w", err)
		}
		work, img, cam = flipped, flippedImg, flippedCam
		res.Flipped = true
	}

	if region, ok := FindHandle(img, s.profile); ok {
		candidates := verticesInRegion(work, cam, region)
		if len(candidates) > 0 {
			res.Grip = normalize.ClusterPoints(candidates)
			res.Support = candidates
			res.Confidence = ConfidenceHigh
			res.Region = &region
			res.DebugImage = annotateRegion(img, &region)
			return res, nil
		}
	}

	res.Grip = normalize.EstimateGrip(normalize.ComputeBounds(work))
	res.Confidence = ConfidenceLow
	res.DebugImage = annotateRegion(img, nil)
	return res, nil
}

// flipModel returns a clone of the model wrapped in a half-turn about Z,
// turning an upside-down asset right side up.
func flipModel(mo *scene.Model) *scene.Model {
	flipped := mo.Clone()

	root := scene.NewNode("flipped")
	root.Rotation = math.QuatFromAxisAngle(math.Vec3{Z: 1}, gomath.Pi)
	rootIdx := flipped.AddNode(root)

	for i := range flipped.Nodes {
		if i != rootIdx && flipped.Nodes[i].Parent == scene.NoParent {
			flipped.Nodes[i].Parent = rootIdx
		}
	}
	return flipped
}

// verticesInRegion collects the world-space vertices whose projection lands
// inside the handle region.
func verticesInRegion(mo *scene.Model, cam Camera, region HandleRegion) []math.Vec3 {
	worlds := mo.WorldMatrices()

	var hits []math.Vec3
	for i := range mo.Nodes {
		n := &mo.Nodes[i]
		if n.Mesh == scene.NoMesh {
			continue
		}
		world := worlds[i]
		for _, p := range mo.Meshes[n.Mesh].Positions {
			wp := world.TransformPoint(p)
			px := cam.Project(wp)
			x, y := int(px.X), int(px.Y)
			if y >= region.MinY && y <= region.MaxY && x >= region.XMin && x <= region.XMax {
				hits = append(hits, wp)
			}
		}
	}
	return hits
}
