package road

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Faultbox/roadcraft/internal/deform"
	"github.com/Faultbox/roadcraft/internal/intersection"
	"github.com/Faultbox/roadcraft/internal/spatial"
	"github.com/Faultbox/roadcraft/pkg/math"
)

// ErrCyclicConnection is returned when connecting a road without ends.
var ErrCyclicConnection = errors.New("cyclic road has no end to connect")

// Connect joins the start or end of r to x. The approach direction points
// into the junction and lanes are listed left to right looking in.
func Connect(x *intersection.Intersection, r *Road, atEnd bool) (*intersection.Connection, error) {
	if r.Curve.Cyclic() {
		return nil, fmt.Errorf("%w: road %s", ErrCyclicConnection, r.ID)
	}
	if err := r.Curve.Validate(); err != nil {
		return nil, err
	}

	anchor, param := 0, 0.0
	if atEnd {
		anchor, param = r.Curve.Len()-1, float64(r.Curve.SegmentCount())
	}
	a, err := r.Curve.Anchor(anchor)
	if err != nil {
		return nil, err
	}
	dir, err := r.Curve.TangentParam(param)
	if err != nil {
		return nil, err
	}
	if !atEnd {
		dir = dir.Neg()
	}

	t := param / float64(r.Curve.SegmentCount())
	var lanes []intersection.LaneRef
	for j, l := range r.Lanes {
		if l.covers(r.Curve, atEnd) {
			lanes = append(lanes, intersection.LaneRef{Index: j, Width: l.Width.Evaluate(t)})
		}
	}
	// Lanes run left to right along the curve; at the start the approach
	// faces the other way.
	if !atEnd {
		slices.Reverse(lanes)
	}

	return x.AddConnection(intersection.Approach{
		Road:          intersection.RoadRef{Road: r.ID, Anchor: anchor},
		Point:         a.Position,
		Direction:     dir,
		Width:         r.Width(atEnd),
		Lanes:         lanes,
		EndConnection: atEnd,
	})
}

// SnapAnchorsToTerrain drops every anchor of r onto the ground below it,
// ignoring authoring layers. Anchors with no ground are left alone. It
// returns how many anchors moved.
func SnapAnchorsToTerrain(r *Road, rays deform.Raycaster, lift, maxDistance float64) int {
	mask := spatial.AllLayers &^ spatial.AuthoringLayers
	moved := 0
	for i, a := range r.Curve.Anchors() {
		hit, ok := rays.RaycastDown(a.Position.Add(math.Vec3{Y: lift}), maxDistance, mask)
		if !ok {
			continue
		}
		a.Position.Y = hit.Y
		if err := r.Curve.SetAnchor(i, a); err == nil {
			moved++
		}
	}
	return moved
}
