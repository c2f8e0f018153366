// Package scene reads YAML scene documents: roads with their lanes and
// prefab lines, intersections, terrain colliders and prefab meshes.
package scene

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/roadcraft/internal/road"
	"github.com/Faultbox/roadcraft/pkg/curve"
	"github.com/Faultbox/roadcraft/pkg/math"
)

// Document is the on-disk scene layout.
type Document struct {
	Terrain       []ColliderDoc       `yaml:"terrain"`
	Assets        map[string]AssetDoc `yaml:"assets"`
	Roads         []RoadDoc           `yaml:"roads"`
	Intersections []IntersectionDoc   `yaml:"intersections"`
}

// ColliderDoc describes one collider; exactly one shape is set.
type ColliderDoc struct {
	Layer       string          `yaml:"layer"`
	Plane       *PlaneDoc       `yaml:"plane"`
	Box         *BoxDoc         `yaml:"box"`
	Heightfield *HeightfieldDoc `yaml:"heightfield"`
}

// PlaneDoc is a horizontal plane.
type PlaneDoc struct {
	Y float64 `yaml:"y"`
}

// BoxDoc is an axis-aligned box between two corners.
type BoxDoc struct {
	Min math.Vec3 `yaml:"min"`
	Max math.Vec3 `yaml:"max"`
}

// HeightfieldDoc is a regular height grid; Heights is indexed [x][z].
type HeightfieldDoc struct {
	Origin   math.Vec2   `yaml:"origin"`
	CellSize float64     `yaml:"cell_size"`
	Heights  [][]float64 `yaml:"heights"`
}

// AssetDoc describes a prefab or material. Assets without a mesh are
// handle-only, like materials.
type AssetDoc struct {
	Box *MeshBoxDoc `yaml:"box"`
}

// MeshBoxDoc is a segmented box prefab.
type MeshBoxDoc struct {
	Size     math.Vec3 `yaml:"size"`
	Segments int       `yaml:"segments"`
}

// RoadDoc describes a road. Points builds straight segments; Anchors gives
// full control and takes precedence.
type RoadDoc struct {
	ID      string         `yaml:"id"`
	Cyclic  bool           `yaml:"cyclic"`
	Points  []math.Vec3    `yaml:"points"`
	Anchors []curve.Anchor `yaml:"anchors"`
	Snap    bool           `yaml:"snap_to_terrain"`
	Lanes   []road.Lane    `yaml:"lanes"`
	Lines   []LineDoc      `yaml:"lines"`
}

// LineDoc is a prefab line with its enum settings spelled as names.
type LineDoc struct {
	road.PrefabLine `yaml:",inline"`

	Terrain    string `yaml:"terrain"`
	Rotation   string `yaml:"rotation"`
	OffsetMode string `yaml:"offset_mode"`
}

// IntersectionDoc describes a junction and the road ends joined to it.
type IntersectionDoc struct {
	ID            string          `yaml:"id"`
	Center        math.Vec3       `yaml:"center"`
	AutoMainRoads *bool           `yaml:"auto_main_roads"`
	Connections   []ConnectionDoc `yaml:"connections"`
}

// ConnectionDoc names a road end. TurnMarkings, when present, is decoded
// over the default turn marking settings.
type ConnectionDoc struct {
	Road         string     `yaml:"road"`
	End          bool       `yaml:"end"`
	TurnMarkings *yaml.Node `yaml:"turn_markings"`
}

// Parse decodes a scene document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}
	return &doc, nil
}

// Load reads and decodes a scene file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
