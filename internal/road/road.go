// Package road ties the curve, placement and deformation packages together:
// road entities with lanes and prefab lines, the editing session, and the
// regeneration pipeline that hands instances to an external sink.
package road

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/roadcraft/internal/deform"
	"github.com/Faultbox/roadcraft/internal/placement"
	"github.com/Faultbox/roadcraft/pkg/curve"
)

// Road errors.
var (
	ErrUnknownAsset = errors.New("unknown asset")
	ErrUnknownLine  = errors.New("unknown prefab line")
	ErrNoPrefab     = errors.New("prefab line has no main prefab")
)

// AssetRef names a material, physics material or prefab. The core never
// inspects what it refers to.
type AssetRef string

// Lane is a drivable or walkable strip over part of a road.
type Lane struct {
	Interval curve.Interval `yaml:"interval"`
	// Width and YOffset are evaluated over the lane's own arc length.
	Width           curve.Profile `yaml:"width"`
	YOffset         curve.Profile `yaml:"y_offset"`
	Material        AssetRef      `yaml:"material"`
	PhysicsMaterial AssetRef      `yaml:"physics_material"`
	// MainRoadPart marks lanes that continue through intersections.
	MainRoadPart bool `yaml:"main_road_part"`
}

// RotationDirection is the facing of placed prefabs relative to the line.
type RotationDirection int

const (
	RotateLeft RotationDirection = iota
	RotateRight
	RotateForwards
	RotateBackwards
)

var rotationNames = []string{"left", "right", "forwards", "backwards"}

// String returns the direction name.
func (d RotationDirection) String() string {
	if int(d) < 0 || int(d) >= len(rotationNames) {
		return fmt.Sprintf("RotationDirection(%d)", int(d))
	}
	return rotationNames[d]
}

// ParseRotation converts a direction name.
func ParseRotation(s string) (RotationDirection, error) {
	for i, name := range rotationNames {
		if strings.EqualFold(s, name) {
			return RotationDirection(i), nil
		}
	}
	return RotateLeft, fmt.Errorf("unknown rotation direction %q", s)
}

// ForwardAxis returns the mesh axis laid along the line.
func (d RotationDirection) ForwardAxis() deform.Axis {
	if d == RotateForwards || d == RotateBackwards {
		return deform.AxisZ
	}
	return deform.AxisX
}

// PrefabLine repeats prefabs along part of a road.
type PrefabLine struct {
	Name     string         `yaml:"name"`
	Interval curve.Interval `yaml:"interval"`

	StartPrefab AssetRef `yaml:"start_prefab"`
	MainPrefab  AssetRef `yaml:"main_prefab"`
	EndPrefab   AssetRef `yaml:"end_prefab"`

	Spacing          float64 `yaml:"spacing"`
	MaxSpacing       float64 `yaml:"max_spacing"`
	RandomizeSpacing bool    `yaml:"randomize_spacing"`
	FillGap          bool    `yaml:"fill_gap"`

	BendToCurve bool               `yaml:"bend_to_curve"`
	Terrain     deform.TerrainMode `yaml:"-"`

	XScale float64       `yaml:"x_scale"`
	YScale curve.Profile `yaml:"y_scale"`
	ZScale curve.Profile `yaml:"z_scale"`

	Rotation              RotationDirection `yaml:"-"`
	RotationRandomization float64           `yaml:"rotation_randomization"`
	YOffset               float64           `yaml:"y_offset"`

	Offset     curve.Profile        `yaml:"offset"`
	OffsetMode placement.OffsetMode `yaml:"-"`
}

// spacing returns the planner spacing policy for an element of width w.
func (l *PrefabLine) spacing(w float64) placement.Spacing {
	sp := placement.Spacing{
		Spacing:    l.Spacing,
		MaxSpacing: l.MaxSpacing,
		Randomize:  l.RandomizeSpacing,
		FillGap:    l.FillGap,
	}
	if l.FillGap {
		sp.Spacing = w
	}
	return sp
}

// bendMode returns how placed meshes follow the line.
func (l *PrefabLine) bendMode() deform.BendMode {
	switch {
	case l.BendToCurve:
		return deform.BendCurve
	case l.FillGap:
		return deform.BendStraight
	default:
		return deform.BendNone
	}
}

// terrainMode returns the terrain policy, falling back from central mode
// when meshes are bent.
func (l *PrefabLine) terrainMode() deform.TerrainMode {
	if l.Terrain == deform.TerrainCentral && l.bendMode() != deform.BendNone {
		return deform.TerrainPerColumn
	}
	return l.Terrain
}

// Road is a curve with the lanes and prefab lines laid on it.
type Road struct {
	ID    string
	Curve *curve.Curve
	Lanes []*Lane
	Lines []*PrefabLine
}

// New creates a road on c.
func New(id string, c *curve.Curve) *Road {
	return &Road{ID: id, Curve: c}
}

// AddLane adds a lane; its interval follows anchor edits from now on.
func (r *Road) AddLane(l *Lane) {
	r.Curve.Attach(&l.Interval)
	r.Lanes = append(r.Lanes, l)
}

// AddLine adds a prefab line; its interval follows anchor edits from now on.
func (r *Road) AddLine(l *PrefabLine) {
	r.Curve.Attach(&l.Interval)
	r.Lines = append(r.Lines, l)
}

// Line returns the prefab line with the given name.
func (r *Road) Line(name string) (*PrefabLine, error) {
	for _, l := range r.Lines {
		if l.Name == name {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: %q on road %s", ErrUnknownLine, name, r.ID)
}

// RemoveLane drops lane i.
func (r *Road) RemoveLane(i int) error {
	if i < 0 || i >= len(r.Lanes) {
		return fmt.Errorf("%w: lane %d of %d", curve.ErrIndexOutOfRange, i, len(r.Lanes))
	}
	r.Curve.Detach(&r.Lanes[i].Interval)
	r.Lanes = append(r.Lanes[:i], r.Lanes[i+1:]...)
	return nil
}

// Width returns the summed lane widths at the given end of the road.
func (r *Road) Width(atEnd bool) float64 {
	t := 0.0
	if atEnd {
		t = 1
	}
	var w float64
	for _, l := range r.Lanes {
		if l.covers(r.Curve, atEnd) {
			w += l.Width.Evaluate(t)
		}
	}
	return w
}

// covers reports whether the lane reaches the given road end.
func (l *Lane) covers(c *curve.Curve, atEnd bool) bool {
	if l.Interval.Whole {
		return true
	}
	if atEnd {
		return l.Interval.EndIndex == c.SegmentCount()-1 && l.Interval.EndOffset >= 1
	}
	return l.Interval.StartIndex == 0 && l.Interval.StartOffset <= 0
}

// SplitAt splits the road at anchor k. The receiver keeps anchors [0, k];
// the returned road, named id, continues from anchor k. Lanes and lines
// reaching past the split are copied to the new road with rebased
// intervals; those entirely past it move.
func (r *Road) SplitAt(k int, id string) (*Road, error) {
	tailCurve, moved, err := r.Curve.SplitAt(k)
	if err != nil {
		return nil, err
	}
	tail := New(id, tailCurve)

	keptLanes := r.Lanes[:0]
	for _, l := range r.Lanes {
		if iv, ok := moved[&l.Interval]; ok {
			cp := *l
			cp.Interval = *iv
			tailCurve.Detach(iv)
			tail.AddLane(&cp)
		}
		if r.Curve.Attached(&l.Interval) {
			keptLanes = append(keptLanes, l)
		}
	}
	clear(r.Lanes[len(keptLanes):])
	r.Lanes = keptLanes

	keptLines := r.Lines[:0]
	for _, l := range r.Lines {
		if iv, ok := moved[&l.Interval]; ok {
			cp := *l
			cp.Interval = *iv
			tailCurve.Detach(iv)
			tail.AddLine(&cp)
		}
		if r.Curve.Attached(&l.Interval) {
			keptLines = append(keptLines, l)
		}
	}
	clear(r.Lines[len(keptLines):])
	r.Lines = keptLines

	return tail, nil
}
