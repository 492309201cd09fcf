package config

import "flag"

var (
	flagConfig       = flag.String("config", "", "Path to config file")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagSize         = flag.Int("size", 0, "Silhouette render size in pixels")
	flagSupersample  = flag.Int("supersample", 0, "Silhouette supersampling factor")
	flagTargetHeight = flag.Float64("target-height", 0, "Character target height in meters")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSize > 0 {
		cfg.Render.Size = *flagSize
	}
	if *flagSupersample > 0 {
		cfg.Render.Supersample = *flagSupersample
	}
	if *flagTargetHeight > 0 {
		cfg.Normalize.TargetHeight = *flagTargetHeight
	}
}
