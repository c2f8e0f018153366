package scene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/roadcraft/internal/deform"
	"github.com/Faultbox/roadcraft/internal/intersection"
	"github.com/Faultbox/roadcraft/internal/placement"
	"github.com/Faultbox/roadcraft/internal/road"
	"github.com/Faultbox/roadcraft/internal/spatial"
	"github.com/Faultbox/roadcraft/pkg/curve"
)

// Scene errors.
var (
	ErrDuplicateRoad = errors.New("duplicate road id")
	ErrUnknownRoad   = errors.New("unknown road")
	ErrBadCollider   = errors.New("collider must set exactly one shape")
)

// Defaults fill in line settings a document leaves out.
type Defaults struct {
	Spacing      placement.Spacing
	Terrain      deform.TerrainMode
	Intersection intersection.Options
	// SnapLift and SnapDistance configure snap_to_terrain roads.
	SnapLift     float64
	SnapDistance float64
}

// Scene is a built document ready for generation.
type Scene struct {
	Roads         []*road.Road
	Intersections []*intersection.Intersection
	World         *spatial.World
	Assets        road.MapResolver
}

// Road returns the road with the given id.
func (s *Scene) Road(id string) (*road.Road, error) {
	for _, r := range s.Roads {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRoad, id)
}

// Build turns a document into road entities, a collision world and an
// asset table.
func Build(doc *Document, def Defaults) (*Scene, error) {
	s := &Scene{
		World:  spatial.NewWorld(),
		Assets: make(road.MapResolver, len(doc.Assets)),
	}

	for i, cd := range doc.Terrain {
		c, err := buildCollider(cd)
		if err != nil {
			return nil, fmt.Errorf("terrain %d: %w", i, err)
		}
		s.World.Add(c)
	}

	for name, ad := range doc.Assets {
		asset := road.Asset{Handle: name}
		if ad.Box != nil {
			asset.Mesh = deform.NewBox(ad.Box.Size, ad.Box.Segments)
		}
		s.Assets[road.AssetRef(name)] = asset
	}

	seen := make(map[string]bool)
	for _, rd := range doc.Roads {
		if seen[rd.ID] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRoad, rd.ID)
		}
		seen[rd.ID] = true
		r, err := buildRoad(rd, def)
		if err != nil {
			return nil, fmt.Errorf("road %q: %w", rd.ID, err)
		}
		if rd.Snap {
			road.SnapAnchorsToTerrain(r, s.World, def.SnapLift, def.SnapDistance)
		}
		s.Roads = append(s.Roads, r)
	}

	for _, xd := range doc.Intersections {
		x := intersection.New(xd.ID, xd.Center, def.Intersection)
		if xd.AutoMainRoads != nil {
			x.AutoMainRoads = *xd.AutoMainRoads
		}
		for _, cd := range xd.Connections {
			r, err := s.Road(cd.Road)
			if err != nil {
				return nil, fmt.Errorf("intersection %q: %w", xd.ID, err)
			}
			conn, err := road.Connect(x, r, cd.End)
			if err != nil {
				return nil, fmt.Errorf("intersection %q: %w", xd.ID, err)
			}
			if cd.TurnMarkings != nil {
				tm := intersection.DefaultTurnMarkings()
				if err := cd.TurnMarkings.Decode(&tm); err != nil {
					return nil, fmt.Errorf("intersection %q: turn markings of %s: %w", xd.ID, cd.Road, err)
				}
				tm.Normalize()
				conn.TurnMarkings = tm
			}
		}
		s.Intersections = append(s.Intersections, x)
	}
	return s, nil
}

func buildCollider(cd ColliderDoc) (spatial.Collider, error) {
	layer := spatial.LayerTerrain
	if cd.Layer != "" {
		layer = spatial.ParseLayer(cd.Layer)
	}
	var (
		c      spatial.Collider
		shapes int
	)
	if cd.Plane != nil {
		c = &spatial.Plane{Y: cd.Plane.Y, On: layer}
		shapes++
	}
	if cd.Box != nil {
		c = &spatial.Box{Bounds: spatial.NewAABB(cd.Box.Min, cd.Box.Max), On: layer}
		shapes++
	}
	if hd := cd.Heightfield; hd != nil {
		if hd.CellSize <= 0 || len(hd.Heights) < 2 || len(hd.Heights[0]) < 2 {
			return nil, fmt.Errorf("heightfield needs a positive cell size and at least 2x2 samples")
		}
		for x := range hd.Heights {
			if len(hd.Heights[x]) != len(hd.Heights[0]) {
				return nil, fmt.Errorf("heightfield row %d has %d samples, want %d", x, len(hd.Heights[x]), len(hd.Heights[0]))
			}
		}
		c = &spatial.Heightfield{Origin: hd.Origin, CellSize: hd.CellSize, Heights: hd.Heights, On: layer}
		shapes++
	}
	if shapes != 1 {
		return nil, ErrBadCollider
	}
	return c, nil
}

func buildRoad(rd RoadDoc, def Defaults) (*road.Road, error) {
	var c *curve.Curve
	if len(rd.Anchors) > 0 {
		c = curve.New(rd.Anchors...)
	} else {
		c = curve.Straight(rd.Points...)
	}
	if err := c.SetCyclic(rd.Cyclic); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	r := road.New(rd.ID, c)

	for i := range rd.Lanes {
		lane := rd.Lanes[i]
		defaultInterval(&lane.Interval)
		r.AddLane(&lane)
	}
	for i, ld := range rd.Lines {
		line, err := buildLine(ld, def)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		r.AddLine(line)
	}
	return r, nil
}

func buildLine(ld LineDoc, def Defaults) (*road.PrefabLine, error) {
	line := ld.PrefabLine
	defaultInterval(&line.Interval)
	if line.Name == "" {
		return nil, errors.New("prefab line needs a name")
	}

	var err error
	line.Terrain = def.Terrain
	if ld.Terrain != "" {
		if line.Terrain, err = deform.ParseTerrainMode(ld.Terrain); err != nil {
			return nil, err
		}
	}
	if ld.Rotation != "" {
		if line.Rotation, err = road.ParseRotation(ld.Rotation); err != nil {
			return nil, err
		}
	}
	if line.OffsetMode, err = placement.ParseOffsetMode(ld.OffsetMode); err != nil {
		return nil, err
	}

	if line.Spacing == 0 && !line.FillGap {
		line.Spacing = def.Spacing.Spacing
		line.MaxSpacing = def.Spacing.MaxSpacing
		line.RandomizeSpacing = def.Spacing.Randomize
		line.FillGap = def.Spacing.FillGap
	}
	return &line, nil
}

// defaultInterval turns an unset interval into the whole road.
func defaultInterval(iv *curve.Interval) {
	if *iv == (curve.Interval{}) {
		*iv = curve.WholeInterval()
	}
}
