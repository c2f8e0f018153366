// Package intersection computes the geometry where several roads meet:
// connection tangents, bearing order, main-road pass-through lanes and the
// junction outline.
package intersection

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Faultbox/roadcraft/pkg/math"
)

// Intersection errors.
var (
	ErrDuplicateConnection = errors.New("road anchor already connected")
	ErrUnknownConnection   = errors.New("unknown connection")
	ErrDegenerateApproach  = errors.New("approach direction has no horizontal component")
	ErrInvalidMainRoad     = errors.New("invalid main road")
)

// RoadRef is a non-owning reference to an anchor of a road.
type RoadRef struct {
	Road   string `yaml:"road"`
	Anchor int    `yaml:"anchor"`
}

// String returns "road#anchor".
func (r RoadRef) String() string {
	return fmt.Sprintf("%s#%d", r.Road, r.Anchor)
}

// LaneRef is a lane of a connected road, ordered left to right when looking
// into the junction.
type LaneRef struct {
	Index int     `yaml:"index"`
	Width float64 `yaml:"width"`
}

// Approach describes a road end meeting the junction.
type Approach struct {
	Road  RoadRef
	Point math.Vec3
	// Direction is the road tangent at Point, pointing into the junction.
	Direction math.Vec3
	Width     float64
	Lanes     []LaneRef
	// EndConnection is true when the road's last anchor is connected.
	EndConnection bool
}

// Connection is a road meeting the intersection.
type Connection struct {
	Road          RoadRef
	Point         math.Vec3
	Direction     math.Vec3
	EndConnection bool
	Lanes         []LaneRef

	LeftPoint    math.Vec3
	RightPoint   math.Vec3
	LeftTangent  math.Vec3
	RightTangent math.Vec3

	// Bearing is the yaw of Direction in degrees, [0, 360).
	Bearing float64

	// TurnMarkings are painted on the road before it enters the junction.
	// Zero Repetitions paints none.
	TurnMarkings TurnMarkings

	seq int
}

// Options are the intersection geometry knobs.
type Options struct {
	// StraightTolerance is the maximum deviation in degrees from a straight
	// crossing for two connections to be paired as a main road.
	StraightTolerance float64
	// TangentScale sizes corner tangents as a fraction of the road width.
	TangentScale float64
}

// DefaultOptions returns the standard tolerances.
func DefaultOptions() Options {
	return Options{StraightTolerance: 45, TangentScale: 0.5}
}

// Intersection owns its connections and main roads.
type Intersection struct {
	ID          string
	Center      math.Vec3
	Connections []*Connection
	MainRoads   []*MainRoad
	// AutoMainRoads enables ComputeMainRoadContinuations during Rebuild.
	AutoMainRoads bool

	opts Options
	seq  int
}

// New creates an empty intersection.
func New(id string, center math.Vec3, opts Options) *Intersection {
	return &Intersection{ID: id, Center: center, opts: opts, AutoMainRoads: true}
}

// Options returns the geometry knobs.
func (x *Intersection) Options() Options {
	return x.opts
}

// AddConnection registers a road meeting the intersection. The new
// connection is appended; call SortConnections to restore bearing order.
func (x *Intersection) AddConnection(a Approach) (*Connection, error) {
	if x.indexOf(a.Road) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateConnection, a.Road)
	}
	dir := a.Direction.Flat().Normalize()
	if dir == (math.Vec3{}) {
		return nil, fmt.Errorf("%w: %s", ErrDegenerateApproach, a.Road)
	}

	left := math.LeftOf(dir)
	half := a.Width / 2
	tangent := dir.Scale(x.opts.TangentScale * a.Width)
	c := &Connection{
		Road:          a.Road,
		Point:         a.Point,
		Direction:     dir,
		EndConnection: a.EndConnection,
		Lanes:         append([]LaneRef(nil), a.Lanes...),
		LeftPoint:     a.Point.Add(left.Scale(half)),
		RightPoint:    a.Point.Sub(left.Scale(half)),
		LeftTangent:   tangent,
		RightTangent:  tangent,
		Bearing:       math.YawOf(dir),
		seq:           x.seq,
	}
	x.seq++
	x.Connections = append(x.Connections, c)
	return c, nil
}

// RemoveConnection drops the connection for ref. Main roads using it are
// removed; indices of later connections shift down by one.
func (x *Intersection) RemoveConnection(ref RoadRef) error {
	k := x.indexOf(ref)
	if k < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownConnection, ref)
	}
	x.Connections = append(x.Connections[:k], x.Connections[k+1:]...)

	kept := x.MainRoads[:0]
	for _, m := range x.MainRoads {
		if m.StartIndex == k || m.EndIndex == k {
			continue
		}
		if m.StartIndex > k {
			m.StartIndex--
		}
		if m.EndIndex > k {
			m.EndIndex--
		}
		kept = append(kept, m)
	}
	clear(x.MainRoads[len(kept):])
	x.MainRoads = kept
	return nil
}

// Connection returns the connection for ref.
func (x *Intersection) Connection(ref RoadRef) (*Connection, bool) {
	if k := x.indexOf(ref); k >= 0 {
		return x.Connections[k], true
	}
	return nil, false
}

func (x *Intersection) indexOf(ref RoadRef) int {
	for i, c := range x.Connections {
		if c.Road == ref {
			return i
		}
	}
	return -1
}

// SortConnections orders connections by ascending bearing. Equal bearings
// keep registration order. Main road indices follow their connections.
func (x *Intersection) SortConnections() {
	old := make(map[*Connection]int, len(x.Connections))
	for i, c := range x.Connections {
		old[c] = i
	}
	sort.SliceStable(x.Connections, func(i, j int) bool {
		a, b := x.Connections[i], x.Connections[j]
		if a.Bearing != b.Bearing {
			return a.Bearing < b.Bearing
		}
		return a.seq < b.seq
	})

	remap := make([]int, len(x.Connections))
	for i, c := range x.Connections {
		remap[old[c]] = i
	}
	for _, m := range x.MainRoads {
		m.StartIndex = remap[m.StartIndex]
		m.EndIndex = remap[m.EndIndex]
	}
}

// Sorted reports whether connections are in non-decreasing bearing order.
func (x *Intersection) Sorted() bool {
	return sort.SliceIsSorted(x.Connections, func(i, j int) bool {
		return x.Connections[i].Bearing < x.Connections[j].Bearing
	})
}

// Rebuild sorts connections and regenerates automatic main roads.
func (x *Intersection) Rebuild() {
	x.SortConnections()
	if x.AutoMainRoads {
		x.ComputeMainRoadContinuations()
	} else {
		x.dropGenerated()
	}
}
