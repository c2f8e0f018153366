package intersection

import (
	"fmt"
	gomath "math"
	"sort"

	"github.com/Faultbox/roadcraft/pkg/math"
)

// LaneRange is an inclusive range of lane positions on a connection.
type LaneRange struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// LanePair maps a lane position on the start connection to one on the end
// connection.
type LanePair struct {
	From int
	To   int
}

// MainRoad is a lane descriptor running straight through the junction
// between two connections.
type MainRoad struct {
	StartIndex int `yaml:"start_index"`
	EndIndex   int `yaml:"end_index"`

	WholeStart bool      `yaml:"whole_start"`
	WholeEnd   bool      `yaml:"whole_end"`
	StartLanes LaneRange `yaml:"start_lanes"`
	EndLanes   LaneRange `yaml:"end_lanes"`

	Material        string  `yaml:"material"`
	PhysicsMaterial string  `yaml:"physics_material"`
	YOffset         float64 `yaml:"y_offset"`

	Center    math.Vec3  `yaml:"-"`
	LaneMap   []LanePair `yaml:"-"`
	Generated bool       `yaml:"-"`
}

// AddMainRoad registers a manually authored main road.
func (x *Intersection) AddMainRoad(m MainRoad) (*MainRoad, error) {
	n := len(x.Connections)
	if m.StartIndex < 0 || m.StartIndex >= n || m.EndIndex < 0 || m.EndIndex >= n {
		return nil, fmt.Errorf("%w: connections %d-%d of %d", ErrInvalidMainRoad, m.StartIndex, m.EndIndex, n)
	}
	if m.StartIndex == m.EndIndex {
		return nil, fmt.Errorf("%w: start and end connection are both %d", ErrInvalidMainRoad, m.StartIndex)
	}
	m.Generated = false
	m.Center = x.Connections[m.StartIndex].Point.Lerp(x.Connections[m.EndIndex].Point, 0.5)
	m.LaneMap = x.laneMap(&m)
	x.MainRoads = append(x.MainRoads, &m)
	return &m, nil
}

func (x *Intersection) dropGenerated() {
	kept := x.MainRoads[:0]
	for _, m := range x.MainRoads {
		if !m.Generated {
			kept = append(kept, m)
		}
	}
	clear(x.MainRoads[len(kept):])
	x.MainRoads = kept
}

// ComputeMainRoadContinuations replaces all generated main roads. Unclaimed
// connections with equal lane counts whose bearings are closest to opposite
// (within StraightTolerance) are paired, best pair first.
func (x *Intersection) ComputeMainRoadContinuations() []*MainRoad {
	x.dropGenerated()

	claimed := make(map[int]bool)
	for _, m := range x.MainRoads {
		claimed[m.StartIndex] = true
		claimed[m.EndIndex] = true
	}

	type candidate struct {
		i, j      int
		deviation float64
	}
	var candidates []candidate
	for i, a := range x.Connections {
		if claimed[i] || len(a.Lanes) == 0 {
			continue
		}
		for j := i + 1; j < len(x.Connections); j++ {
			b := x.Connections[j]
			if claimed[j] || len(b.Lanes) != len(a.Lanes) {
				continue
			}
			dev := gomath.Abs(180 - angleBetween(a.Bearing, b.Bearing))
			if dev <= x.opts.StraightTolerance {
				candidates = append(candidates, candidate{i, j, dev})
			}
		}
	}
	sort.SliceStable(candidates, func(p, q int) bool {
		return candidates[p].deviation < candidates[q].deviation
	})

	var generated []*MainRoad
	for _, c := range candidates {
		if claimed[c.i] || claimed[c.j] {
			continue
		}
		claimed[c.i], claimed[c.j] = true, true
		m := &MainRoad{
			StartIndex: c.i,
			EndIndex:   c.j,
			WholeStart: true,
			WholeEnd:   true,
			Center:     x.Connections[c.i].Point.Lerp(x.Connections[c.j].Point, 0.5),
			Generated:  true,
		}
		m.LaneMap = x.laneMap(m)
		generated = append(generated, m)
	}
	x.MainRoads = append(x.MainRoads, generated...)
	return generated
}

// laneMap pairs lane positions across the junction. Lanes are ordered left
// to right looking in, so lane k continues as lane n-1-k on the far side.
func (x *Intersection) laneMap(m *MainRoad) []LanePair {
	from := lanePositions(m.WholeStart, m.StartLanes, len(x.Connections[m.StartIndex].Lanes))
	to := lanePositions(m.WholeEnd, m.EndLanes, len(x.Connections[m.EndIndex].Lanes))
	n := min(len(from), len(to))
	pairs := make([]LanePair, n)
	for k := range n {
		pairs[k] = LanePair{From: from[k], To: to[len(to)-1-k]}
	}
	return pairs
}

func lanePositions(whole bool, r LaneRange, count int) []int {
	if count == 0 {
		return nil
	}
	start, end := 0, count-1
	if !whole {
		start = min(max(r.Start, 0), count-1)
		end = min(max(r.End, start), count-1)
	}
	out := make([]int, 0, end-start+1)
	for k := start; k <= end; k++ {
		out = append(out, k)
	}
	return out
}

// angleBetween returns the absolute difference of two bearings in [0, 180].
func angleBetween(a, b float64) float64 {
	d := gomath.Mod(gomath.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}
