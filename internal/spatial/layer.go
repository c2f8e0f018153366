// Package spatial answers the raycast queries used to snap generated
// geometry onto terrain.
package spatial

import "strings"

// Layer is a collision layer bit.
type Layer uint32

// Collision layers.
const (
	LayerDefault Layer = 1 << iota
	LayerTerrain
	LayerRoad
	LayerPrefabLine
	LayerIntersection
)

// AuthoringLayers holds the layers the generator writes to. Raycasts used
// for terrain snapping exclude them so new geometry never lands on itself.
const AuthoringLayers = LayerRoad | LayerPrefabLine | LayerIntersection

// AllLayers matches every layer.
const AllLayers Layer = ^Layer(0)

// Has reports whether every bit of other is set in l.
func (l Layer) Has(other Layer) bool {
	return l&other == other
}

// Matches reports whether l shares any bit with mask.
func (l Layer) Matches(mask Layer) bool {
	return l&mask != 0
}

var layerNames = map[string]Layer{
	"default":      LayerDefault,
	"terrain":      LayerTerrain,
	"road":         LayerRoad,
	"prefab_line":  LayerPrefabLine,
	"intersection": LayerIntersection,
}

// ParseLayer converts a layer name to its bit. Unknown names map to
// LayerDefault.
func ParseLayer(name string) Layer {
	if l, ok := layerNames[strings.ToLower(name)]; ok {
		return l
	}
	return LayerDefault
}

// String returns the layer name, or a '|'-joined list for a mask.
func (l Layer) String() string {
	var parts []string
	for _, name := range []string{"default", "terrain", "road", "prefab_line", "intersection"} {
		if l.Matches(layerNames[name]) {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}
