package main

import "github.com/Faultbox/roadcraft/pkg/math"

// YAML shapes printed by the commands.

func vec(v math.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

type pointOutput struct {
	Param    float64    `yaml:"param"`
	Distance float64    `yaml:"distance"`
	Position [3]float64 `yaml:"position,flow"`
}

type sampleOutput struct {
	Road     string        `yaml:"road"`
	Length   float64       `yaml:"length"`
	Segments []float64     `yaml:"segments,flow"`
	Points   []pointOutput `yaml:"points"`
}

type recordOutput struct {
	Segment    int        `yaml:"segment"`
	Percentage float64    `yaml:"percentage"`
	StartParam float64    `yaml:"start_param"`
	EndParam   float64    `yaml:"end_param"`
	Start      [3]float64 `yaml:"start,flow"`
	Main       [3]float64 `yaml:"main,flow"`
	End        [3]float64 `yaml:"end,flow"`
}

type instanceOutput struct {
	Index    int        `yaml:"index"`
	Asset    string     `yaml:"asset,omitempty"`
	Layer    string     `yaml:"layer"`
	Position [3]float64 `yaml:"position,flow"`
	// Matrix is the column-major placement transform.
	Matrix   [16]float64 `yaml:"matrix,flow"`
	Vertices int         `yaml:"vertices"`
}

type reportOutput struct {
	Owner     string           `yaml:"owner"`
	Run       string           `yaml:"run"`
	Placed    int              `yaml:"placed"`
	Skipped   int              `yaml:"skipped"`
	Rays      int              `yaml:"rays,omitempty"`
	CacheHits int              `yaml:"cache_hits,omitempty"`
	Errors    string           `yaml:"errors,omitempty"`
	Instances []instanceOutput `yaml:"instances,omitempty"`
}

type generateOutput struct {
	Session  string         `yaml:"session"`
	Reports  []reportOutput `yaml:"reports"`
	Failures []string       `yaml:"failures,omitempty"`
}

type connectionOutput struct {
	Road    string     `yaml:"road"`
	Bearing float64    `yaml:"bearing"`
	Lanes   []int      `yaml:"lanes,flow"`
	Left    [3]float64 `yaml:"left,flow"`
	Right   [3]float64 `yaml:"right,flow"`
}

type mainRoadOutput struct {
	Start     int      `yaml:"start"`
	End       int      `yaml:"end"`
	Generated bool     `yaml:"generated"`
	Lanes     [][2]int `yaml:"lanes,flow"`
}

type intersectionOutput struct {
	ID          string             `yaml:"id"`
	Connections []connectionOutput `yaml:"connections"`
	MainRoads   []mainRoadOutput   `yaml:"main_roads"`
	Outline     int                `yaml:"outline_points"`
}
