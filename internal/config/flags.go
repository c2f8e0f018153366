package config

import "flag"

var (
	flagConfig       = flag.String("config", "", "Path to config file")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile      = flag.String("log-file", "", "Write logs to this file")
	flagDetail       = flag.Float64("detail", 0, "Samples per world unit")
	flagUseElevation = flag.Bool("elevation", false, "Measure arc length in 3D")
	flagSeed         = flag.Int64("seed", -1, "Random seed")
	flagTerrain      = flag.String("terrain", "", "Terrain mode override")
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
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagDetail > 0 {
		cfg.Generation.DetailLevel = *flagDetail
	}
	if *flagUseElevation {
		cfg.Generation.UseElevation = true
	}
	if *flagSeed >= 0 {
		cfg.Generation.Seed = uint64(*flagSeed)
	}
	if *flagTerrain != "" {
		cfg.Deform.TerrainMode = *flagTerrain
	}
}
