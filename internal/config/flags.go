package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagWorld    = flag.String("world", "", "Voxel world file (gzip)")
	flagTemplate = flag.String("template", "", "Cube template file")
	flagMaxLevel = flag.Int("max-level", -1, "Root chunk level (0..8)")
	flagInterval = flag.Duration("interval", 0, "Periodic rebuild interval")
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
	if *flagWorld != "" {
		cfg.Data.WorldPath = *flagWorld
	}
	if *flagTemplate != "" {
		cfg.Data.TemplatePath = *flagTemplate
	}
	if *flagMaxLevel >= 0 {
		cfg.Mesher.MaxLevel = *flagMaxLevel
	}
	if *flagInterval > 0 {
		cfg.Mesher.RebuildInterval = *flagInterval
	}
}
