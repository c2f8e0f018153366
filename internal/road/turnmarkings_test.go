package road

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/Faultbox/roadcraft/internal/deform"
	"github.com/Faultbox/roadcraft/internal/intersection"
	"github.com/Faultbox/roadcraft/pkg/curve"
	"github.com/Faultbox/roadcraft/pkg/math"
)

// roadMap resolves roads from a fixed set.
type roadMap map[string]*Road

func (m roadMap) Road(id string) (*Road, error) {
	if r, ok := m[id]; ok {
		return r, nil
	}
	return nil, errors.New("no such road")
}

func arrowAssets() MapResolver {
	arrow := deform.NewBox(math.Vec3{X: 0.5, Y: 0.1, Z: 2}, 1)
	return MapResolver{
		"arrow-left":    {Handle: "l", Mesh: arrow},
		"arrow-forward": {Handle: "f", Mesh: arrow},
	}
}

func markedRoad(t *testing.T, atEnd bool, markings []intersection.TurnArrows) (*intersection.Intersection, roadMap) {
	t.Helper()
	r := straightRoad("east", 0, 50)
	r.AddLane(&Lane{Interval: curve.WholeInterval(), Width: curve.Constant(6)})
	x := intersection.New("x", math.Vec3{X: 50}, intersection.DefaultOptions())
	conn, err := Connect(x, r, atEnd)
	if err != nil {
		t.Fatal(err)
	}
	conn.TurnMarkings = intersection.TurnMarkings{
		Repetitions:      3,
		Amount:           len(markings),
		StartOffset:      2,
		ContinuousOffset: 10,
		Markings:         markings,
		SameXOffsets:     true,
		XOffsets:         [][]float64{{1.5}},
		LeftPrefab:       "arrow-left",
		ForwardPrefab:    "arrow-forward",
	}
	return x, roadMap{"east": r}
}

func TestRegenerateTurnMarkings(t *testing.T) {
	tests := []struct {
		name  string
		atEnd bool
		xs    []float64
		z     float64
		in    math.Vec3
	}{
		{"end connection", true, []float64{47, 37, 27}, 1.5, math.Vec3{X: 1}},
		{"start connection", false, []float64{3, 13, 23}, -1.5, math.Vec3{X: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, roads := markedRoad(t, tt.atEnd, []intersection.TurnArrows{{Left: true, Forward: true}})
			sink := NewMemorySink()
			g := NewGenerator(arrowAssets(), sink, nil, DefaultOptions())

			rep, err := g.RegenerateTurnMarkings(NewSession(1), x, roads)
			if err != nil {
				t.Fatal(err)
			}
			if rep.Placed != 6 || rep.Errs != nil {
				t.Fatalf("placed = %d, errs = %v, want 6 and none", rep.Placed, rep.Errs)
			}

			insts := sink.Instances("intersection/x/turns")
			var got []float64
			for i, inst := range insts {
				p := inst.Transform.Position
				if i%2 == 0 {
					got = append(got, p.X)
				}
				if gomath.Abs(p.Z-tt.z) > 1e-6 {
					t.Errorf("instance %d z = %v, want %v", i, p.Z, tt.z)
				}
				if dir := inst.Transform.Rotation.Rotate(math.Vec3{Z: 1}); !dir.ApproxEqual(tt.in, 1e-9) {
					t.Errorf("instance %d points %v, want %v", i, dir, tt.in)
				}
			}
			if diff := cmp.Diff(tt.xs, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
				t.Errorf("row positions (-want +got):\n%s", diff)
			}
			if insts[0].Asset != "arrow-left" || insts[1].Asset != "arrow-forward" {
				t.Errorf("row 0 assets = %s, %s", insts[0].Asset, insts[1].Asset)
			}
		})
	}
}

func TestRegenerateTurnMarkingsSkipsMissingArrowPrefab(t *testing.T) {
	x, roads := markedRoad(t, true, []intersection.TurnArrows{{Forward: true}, {Right: true}})
	sink := NewMemorySink()
	g := NewGenerator(arrowAssets(), sink, nil, DefaultOptions())

	rep, err := g.RegenerateTurnMarkings(NewSession(1), x, roads)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Placed != 3 || rep.Skipped != 3 {
		t.Errorf("placed/skipped = %d/%d, want 3/3", rep.Placed, rep.Skipped)
	}
	if !errors.Is(rep.Errs, ErrNoArrowPrefab) {
		t.Errorf("Errs = %v, want ErrNoArrowPrefab", rep.Errs)
	}
}

func TestTurnMarkingRowsDropRowsPastRoadEnd(t *testing.T) {
	r := straightRoad("short", 0, 15)
	r.AddLane(&Lane{Interval: curve.WholeInterval(), Width: curve.Constant(4)})
	x := intersection.New("x", math.Vec3{X: 15}, intersection.DefaultOptions())
	conn, err := Connect(x, r, true)
	if err != nil {
		t.Fatal(err)
	}
	conn.TurnMarkings = intersection.DefaultTurnMarkings()

	recs, err := TurnMarkingRows(r, conn, 2, DefaultOptions().Sampling)
	if err != nil {
		t.Fatal(err)
	}
	// Rows sit 1.3 and 11.3 from the junction; the third would start past 15.
	if len(recs) != 2 {
		t.Fatalf("rows = %d, want 2", len(recs))
	}
	if got := recs[0].MainPoint.X; gomath.Abs(got-12.7) > 1e-6 {
		t.Errorf("first row centred at x=%v, want 12.7", got)
	}
	if got := recs[1].MainPoint.X; gomath.Abs(got-2.7) > 1e-6 {
		t.Errorf("second row centred at x=%v, want 2.7", got)
	}
}
