// Package main is the entry point for the assetforge CLI: it normalizes
// game asset geometry to per-category placement conventions and detects
// weapon grip points from rendered silhouettes.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/forgeworks/assetforge/internal/config"
	"github.com/forgeworks/assetforge/internal/logger"
	"github.com/forgeworks/assetforge/internal/normalize"
	"github.com/forgeworks/assetforge/internal/pipeline"
	"github.com/forgeworks/assetforge/pkg/math"
)

var (
	flagInput      = flag.String("input", "", "Input model (.gltf or .glb)")
	flagOutput     = flag.String("output", "", "Output model path")
	flagCategory   = flag.String("category", "generic-item", "Asset category: weapon, character, armor, building, generic-item")
	flagSubtype    = flag.String("subtype", "", "Category subtype (e.g. helmet)")
	flagGrip       = flag.String("grip", "", "Explicit grip point as x,y,z")
	flagDetect     = flag.Bool("detect", false, "Detect the weapon grip from a rendered silhouette")
	flagValidate   = flag.Bool("validate", false, "Check the result against placement conventions")
	flagDebugImage = flag.String("debug-image", "", "Write the annotated detection silhouette to this path")
)

func main() {
	// Parse CLI flags first (config registers its own)
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *flagInput == "" {
		fmt.Fprintln(os.Stderr, "Usage: assetforge -input model.glb [-output out.glb] [-category weapon] [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	req := pipeline.Request{
		InputPath:      *flagInput,
		OutputPath:     *flagOutput,
		Category:       normalize.ParseCategory(*flagCategory),
		Subtype:        *flagSubtype,
		Detect:         *flagDetect,
		Validate:       *flagValidate,
		DebugImagePath: *flagDebugImage,
	}
	if *flagGrip != "" {
		grip, err := parseGrip(*flagGrip)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Bad -grip value: %v\n", err)
			os.Exit(1)
		}
		req.Grip = &grip
	}

	rep, err := pipeline.New(cfg).Run(req)
	if err != nil {
		logger.Error("processing failed", zap.Error(err))
		os.Exit(1)
	}

	// The report goes to stdout as JSON; logs stay on stderr.
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		logger.Error("report encoding failed", zap.Error(err))
		os.Exit(1)
	}

	if rep.Validation != nil && !rep.Validation.Valid {
		os.Exit(2)
	}
}

func parseGrip(s string) (math.Vec3, error) {
	var v math.Vec3
	if _, err := fmt.Sscanf(s, "%f,%f,%f", &v.X, &v.Y, &v.Z); err != nil {
		return math.Vec3{}, fmt.Errorf("want x,y,z: %w", err)
	}
	return v, nil
}
