// Package config handles generator configuration loading and management.
package config

import (
	"github.com/Faultbox/roadcraft/internal/deform"
	"github.com/Faultbox/roadcraft/internal/intersection"
	"github.com/Faultbox/roadcraft/internal/placement"
	"github.com/Faultbox/roadcraft/pkg/arclen"
)

// Config holds all generator settings.
type Config struct {
	Generation   GenerationConfig   `yaml:"generation"`
	Placement    PlacementConfig    `yaml:"placement"`
	Deform       DeformConfig       `yaml:"deform"`
	Intersection IntersectionConfig `yaml:"intersection"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// GenerationConfig holds sampling and randomization settings.
type GenerationConfig struct {
	DetailLevel  float64 `yaml:"detail_level"`  // Samples per world unit of chord
	UseElevation bool    `yaml:"use_elevation"` // 3D instead of planar arc length
	Seed         uint64  `yaml:"seed"`
	// Anchor snapping casts from SnapLift above each anchor.
	SnapLift     float64 `yaml:"snap_lift"`
	SnapDistance float64 `yaml:"snap_distance"`
}

// PlacementConfig holds the spacing used when a line sets none.
type PlacementConfig struct {
	Spacing          float64 `yaml:"spacing"`
	MaxSpacing       float64 `yaml:"max_spacing"`
	RandomizeSpacing bool    `yaml:"randomize_spacing"`
	FillGap          bool    `yaml:"fill_gap"`
}

// DeformConfig holds mesh deformation settings.
type DeformConfig struct {
	ForwardAxis    string  `yaml:"forward_axis"`
	RayLift        float64 `yaml:"ray_lift"`
	RayMaxDistance float64 `yaml:"ray_max_distance"`
	TerrainMode    string  `yaml:"terrain_mode"`
	CornerSamples  int     `yaml:"corner_samples"`
}

// IntersectionConfig holds junction geometry settings.
type IntersectionConfig struct {
	StraightTolerance float64 `yaml:"straight_tolerance"` // Degrees
	TangentScale      float64 `yaml:"tangent_scale"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Generation: GenerationConfig{
			DetailLevel:  10,
			UseElevation: false,
			Seed:         1,
			SnapLift:     50,
			SnapDistance: 100,
		},
		Placement: PlacementConfig{
			Spacing:    4,
			MaxSpacing: 4,
		},
		Deform: DeformConfig{
			ForwardAxis:    "x",
			RayLift:        50,
			RayMaxDistance: 1000,
			TerrainMode:    "none",
			CornerSamples:  8,
		},
		Intersection: IntersectionConfig{
			StraightTolerance: 45,
			TangentScale:      0.5,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Sampling returns the arc-length sampling options.
func (c *Config) Sampling() arclen.Options {
	return arclen.Options{
		DetailLevel:  c.Generation.DetailLevel,
		UseElevation: c.Generation.UseElevation,
	}
}

// Spacing returns the default spacing policy.
func (c *Config) Spacing() placement.Spacing {
	return placement.Spacing{
		Spacing:    c.Placement.Spacing,
		MaxSpacing: c.Placement.MaxSpacing,
		Randomize:  c.Placement.RandomizeSpacing,
		FillGap:    c.Placement.FillGap,
	}
}

// DeformOptions returns the deformer options, validating the mode names.
func (c *Config) DeformOptions() (deform.Options, error) {
	opts := deform.DefaultOptions()
	axis, err := deform.ParseAxis(c.Deform.ForwardAxis)
	if err != nil {
		return opts, err
	}
	terrain, err := deform.ParseTerrainMode(c.Deform.TerrainMode)
	if err != nil {
		return opts, err
	}
	opts.ForwardAxis = axis
	opts.Terrain = terrain
	opts.RayLift = c.Deform.RayLift
	opts.RayMaxDistance = c.Deform.RayMaxDistance
	return opts, nil
}

// IntersectionOptions returns the junction geometry options.
func (c *Config) IntersectionOptions() intersection.Options {
	return intersection.Options{
		StraightTolerance: c.Intersection.StraightTolerance,
		TangentScale:      c.Intersection.TangentScale,
	}
}
