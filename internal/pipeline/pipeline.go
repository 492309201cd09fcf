// Package pipeline wires codec, detection, normalization and validation
// into the end-to-end asset processing flow.
package pipeline

import (
	"fmt"
	"image"
	"image/png"
	"os"

	gomath "math"

	"go.uber.org/zap"

	"github.com/forgeworks/assetforge/internal/codec"
	"github.com/forgeworks/assetforge/internal/config"
	"github.com/forgeworks/assetforge/internal/detect"
	"github.com/forgeworks/assetforge/internal/logger"
	"github.com/forgeworks/assetforge/internal/normalize"
	"github.com/forgeworks/assetforge/internal/render"
	"github.com/forgeworks/assetforge/pkg/math"
	"github.com/forgeworks/assetforge/pkg/scene"
)

// Request describes one asset processing run.
type Request struct {
	InputPath  string
	OutputPath string

	Category normalize.Category
	Subtype  string

	// Grip, when set, overrides handle detection for weapons.
	Grip *math.Vec3

	// Detect enables silhouette-based handle detection for weapons
	// without an explicit grip.
	Detect bool

	// Validate runs convention checks on the normalized model.
	Validate bool

	// DebugImagePath, when set, writes the annotated detection silhouette.
	DebugImagePath string
}

// Report is the machine-readable outcome of a run.
type Report struct {
	Input         string                 `json:"input"`
	Output        string                 `json:"output,omitempty"`
	Category      normalize.Category     `json:"category"`
	Orientation   *detect.AxisCorrection `json:"orientation,omitempty"`
	Detection     *detect.Result         `json:"detection,omitempty"`
	Normalization *normalize.Result      `json:"normalization"`
	Validation    *normalize.Report      `json:"validation,omitempty"`
}

// Pipeline processes assets according to its configuration.
type Pipeline struct {
	cfg         *config.Config
	detector    *detect.Service
	conventions normalize.ConventionTable
}

// New builds a pipeline with the CPU silhouette renderer.
func New(cfg *config.Config) *Pipeline {
	r := &render.SilhouetteRenderer{
		Size:           cfg.Render.Size,
		Supersample:    cfg.Render.Supersample,
		Margin:         cfg.Render.Margin,
		TriangleBudget: cfg.Render.TriangleBudget,
	}
	return NewWithRenderer(cfg, r)
}

// NewWithRenderer builds a pipeline around a custom silhouette renderer.
func NewWithRenderer(cfg *config.Config, r detect.Renderer) *Pipeline {
	profile := detect.ProfileOptions{
		BrightnessThreshold:   cfg.Detection.BrightnessThreshold,
		GuardContractionRatio: cfg.Detection.GuardContractionRatio,
		GuardSpan:             cfg.Detection.GuardSpan,
		SearchBand:            cfg.Detection.SearchBand,
		HandleStartOffset:     cfg.Detection.HandleStartOffset,
		HandleGrowthRatio:     cfg.Detection.HandleGrowthRatio,
		MaxHandleRows:         cfg.Detection.MaxHandleRows,
	}
	orient := detect.OrientOptions{
		BrightnessFloor:     cfg.Detection.BrightnessFloor,
		FlipBrightnessRatio: cfg.Detection.FlipBrightnessRatio,
	}
	return &Pipeline{
		cfg:         cfg,
		detector:    detect.NewServiceWithOptions(r, profile, orient),
		conventions: cfg.ConventionTable(),
	}
}

// Run loads, processes and optionally saves one asset.
func (p *Pipeline) Run(req Request) (*Report, error) {
	mo, err := codec.Load(req.InputPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	logger.Info("model loaded",
		zap.String("path", req.InputPath),
		zap.Int("nodes", len(mo.Nodes)),
		zap.Int("meshes", len(mo.Meshes)),
		zap.Int("vertices", mo.VertexCount()),
	)

	rep := &Report{
		Input:    req.InputPath,
		Output:   req.OutputPath,
		Category: req.Category,
	}

	grip := req.Grip
	if req.Category == normalize.CategoryWeapon {
		grip = p.prepareWeapon(mo, req, rep, grip)
	}

	res, err := normalize.Normalize(mo, req.Category, normalize.Options{
		Subtype:      req.Subtype,
		GripPoint:    grip,
		TargetHeight: p.cfg.Normalize.TargetHeight,
	})
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	rep.Normalization = res
	logger.Info("model normalized",
		zap.String("category", string(req.Category)),
		zap.Float64("height", res.NormalizedBounds.Height()),
	)

	if req.Validate {
		v := normalize.Validate(mo, req.Category, p.conventions)
		rep.Validation = &v
		if !v.Valid {
			logger.Warn("convention check failed", zap.Strings("errors", v.Errors))
		}
	}

	if req.OutputPath != "" {
		if err := codec.Save(mo, req.OutputPath); err != nil {
			return nil, fmt.Errorf("save model: %w", err)
		}
		logger.Info("model saved", zap.String("path", req.OutputPath))
	}
	return rep, nil
}

// prepareWeapon applies the weapon-only steps before normalization: stand
// the model upright if it was authored lying down, then detect the grip
// unless one was supplied. Detection failures degrade to the bounding-box
// estimate inside Normalize rather than aborting the run.
func (p *Pipeline) prepareWeapon(mo *scene.Model, req Request, rep *Report, grip *math.Vec3) *math.Vec3 {
	if corr, mismatch := detect.CheckGeometryOrientation(normalize.ComputeBounds(mo)); mismatch {
		applyRotation(mo, corr.Rotation)
		rep.Orientation = &corr
		logger.Info("orientation corrected", zap.String("longest_axis", corr.Axis))
	}

	if grip != nil || !req.Detect {
		return grip
	}

	res, err := p.detector.DetectHandle(mo)
	if err != nil {
		logger.Warn("handle detection failed", zap.Error(err))
		return nil
	}
	if res.Flipped {
		applyRotation(mo, math.QuatFromAxisAngle(math.Vec3{Z: 1}, gomath.Pi))
		logger.Info("model flipped upright")
	}
	rep.Detection = res
	logger.Info("handle detected",
		zap.String("confidence", string(res.Confidence)),
		zap.Int("support_vertices", len(res.Support)),
	)

	if req.DebugImagePath != "" && res.DebugImage != nil {
		if err := writePNG(req.DebugImagePath, res.DebugImage); err != nil {
			logger.Warn("debug image write failed", zap.Error(err))
		}
	}
	return &res.Grip
}

// applyRotation wraps the model's roots in a rotated node and bakes it
// into the vertices.
func applyRotation(mo *scene.Model, q math.Quat) {
	root := scene.NewNode("oriented")
	root.Rotation = q
	rootIdx := mo.AddNode(root)
	for i := range mo.Nodes {
		if i != rootIdx && mo.Nodes[i].Parent == scene.NoParent {
			mo.Nodes[i].Parent = rootIdx
		}
	}
	normalize.BakeTransforms(mo)
}

func writePNG(path string, img *image.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
