package deform

import (
	"fmt"
	"strings"

	"github.com/Faultbox/roadcraft/internal/spatial"
)

// Axis is the mesh-local axis laid along the curve.
type Axis int

const (
	AxisX Axis = iota
	AxisZ
)

// String returns the axis name.
func (a Axis) String() string {
	if a == AxisZ {
		return "z"
	}
	return "x"
}

// ParseAxis converts "x" or "z" to an Axis.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(s) {
	case "x", "":
		return AxisX, nil
	case "z":
		return AxisZ, nil
	}
	return AxisX, fmt.Errorf("unknown forward axis %q", s)
}

// BendMode selects how vertices follow the placement.
type BendMode int

const (
	// BendNone keeps the mesh rigid.
	BendNone BendMode = iota
	// BendStraight stretches the mesh between the start and end points.
	BendStraight
	// BendCurve bends the mesh along the curve between the start and end
	// parameters.
	BendCurve
)

// TerrainMode selects the terrain conforming policy.
type TerrainMode int

const (
	TerrainNone TerrainMode = iota
	// TerrainCentral shifts the whole mesh by the height delta at the pivot.
	TerrainCentral
	// TerrainPerColumn moves every vertex column onto the terrain.
	TerrainPerColumn
	// TerrainBridgePillar tapers columns from the terrain up to their
	// original height.
	TerrainBridgePillar
	// TerrainBottomOnly moves only vertices at the mesh's minimum Y.
	TerrainBottomOnly
)

var terrainModeNames = []string{"none", "central", "per_column", "bridge_pillar", "bottom_only"}

// String returns the mode name.
func (m TerrainMode) String() string {
	if int(m) < 0 || int(m) >= len(terrainModeNames) {
		return fmt.Sprintf("TerrainMode(%d)", int(m))
	}
	return terrainModeNames[m]
}

// ParseTerrainMode converts a mode name to a TerrainMode.
func ParseTerrainMode(s string) (TerrainMode, error) {
	for i, name := range terrainModeNames {
		if strings.EqualFold(s, name) {
			return TerrainMode(i), nil
		}
	}
	return TerrainNone, fmt.Errorf("unknown terrain mode %q", s)
}

// Options configures a Deformer.
type Options struct {
	Bend        BendMode
	ForwardAxis Axis
	// YOffset is the vertical offset already baked into the object transform.
	YOffset float64

	Terrain TerrainMode
	// RayLift raises ray origins above the top of the placed object.
	RayLift        float64
	RayMaxDistance float64
	// Mask selects the layers rays may hit. Authoring layers are always
	// excluded.
	Mask spatial.Layer
}

// DefaultOptions returns curve bending with terrain conforming disabled.
func DefaultOptions() Options {
	return Options{
		Bend:           BendCurve,
		ForwardAxis:    AxisX,
		Terrain:        TerrainNone,
		RayLift:        50,
		RayMaxDistance: 1000,
		Mask:           spatial.AllLayers,
	}
}
