package curve

import (
	"errors"
	"testing"

	"github.com/Faultbox/roadcraft/pkg/math"
)

func testCurve(n int) *Curve {
	pts := make([]math.Vec3, n)
	for i := range pts {
		pts[i] = math.Vec3{X: float64(i) * 10, Y: float64(i % 2), Z: float64(i * i)}
	}
	return Straight(pts...)
}

func TestSegmentCount(t *testing.T) {
	for n := 2; n <= 6; n++ {
		c := testCurve(n)
		if got := c.SegmentCount(); got != n-1 {
			t.Errorf("non-cyclic %d anchors: SegmentCount() = %d, want %d", n, got, n-1)
		}
		if n < 3 {
			if err := c.SetCyclic(true); !errors.Is(err, ErrTooFewAnchors) {
				t.Errorf("SetCyclic with %d anchors: err = %v, want ErrTooFewAnchors", n, err)
			}
			continue
		}
		if err := c.SetCyclic(true); err != nil {
			t.Fatalf("SetCyclic: %v", err)
		}
		if got := c.SegmentCount(); got != n {
			t.Errorf("cyclic %d anchors: SegmentCount() = %d, want %d", n, got, n)
		}
	}
}

func TestEvaluateEndpoints(t *testing.T) {
	c := New(
		Anchor{Position: math.Vec3{X: 0}, RightTangent: math.Vec3{X: 2, Z: 3}},
		Anchor{Position: math.Vec3{X: 10, Y: 2, Z: 5}, LeftTangent: math.Vec3{Z: -4}, RightTangent: math.Vec3{Z: 4}},
		Anchor{Position: math.Vec3{X: 20, Z: -3}, LeftTangent: math.Vec3{X: -3}, RightTangent: math.Vec3{X: 3}},
	)
	if err := c.SetCyclic(true); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < c.SegmentCount(); i++ {
		start, _ := c.Anchor(i)
		end, _ := c.Anchor((i + 1) % c.Len())

		p0, err := c.Evaluate(i, 0)
		if err != nil {
			t.Fatalf("Evaluate(%d, 0): %v", i, err)
		}
		if p0 != start.Position {
			t.Errorf("Evaluate(%d, 0) = %v, want %v", i, p0, start.Position)
		}
		p1, err := c.Evaluate(i, 1)
		if err != nil {
			t.Fatalf("Evaluate(%d, 1): %v", i, err)
		}
		if p1 != end.Position {
			t.Errorf("Evaluate(%d, 1) = %v, want %v", i, p1, end.Position)
		}
	}
}

func TestCyclicLastSegmentWrapsToFirstAnchor(t *testing.T) {
	c := testCurve(4)
	if err := c.SetCyclic(true); err != nil {
		t.Fatal(err)
	}
	seg, err := c.Segment(3)
	if err != nil {
		t.Fatal(err)
	}
	first, _ := c.Anchor(0)
	if seg.P3 != first.Position {
		t.Errorf("last segment ends at %v, want anchor 0 %v", seg.P3, first.Position)
	}
}

func TestEvaluateRejectsBadArguments(t *testing.T) {
	c := testCurve(3)
	tests := []struct {
		name string
		seg  int
		t    float64
		want error
	}{
		{"negative segment", -1, 0.5, ErrIndexOutOfRange},
		{"segment past end", 2, 0.5, ErrIndexOutOfRange},
		{"t below zero", 0, -0.01, ErrParamOutOfRange},
		{"t above one", 1, 1.01, ErrParamOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Evaluate(tt.seg, tt.t); !errors.Is(err, tt.want) {
				t.Errorf("Evaluate(%d, %v) err = %v, want %v", tt.seg, tt.t, err, tt.want)
			}
		})
	}
}

func TestEvaluateParam(t *testing.T) {
	c := Straight(math.Vec3{}, math.Vec3{X: 10}, math.Vec3{X: 10, Z: 10})

	got, err := c.EvaluateParam(1.5)
	if err != nil {
		t.Fatal(err)
	}
	if !got.ApproxEqual(math.Vec3{X: 10, Z: 5}, 1e-9) {
		t.Errorf("EvaluateParam(1.5) = %v, want (10,0,5)", got)
	}

	end, err := c.EvaluateParam(2)
	if err != nil {
		t.Fatal(err)
	}
	if end != (math.Vec3{X: 10, Z: 10}) {
		t.Errorf("EvaluateParam(2) = %v, want last anchor", end)
	}

	if _, err := c.EvaluateParam(2.01); !errors.Is(err, ErrParamOutOfRange) {
		t.Errorf("EvaluateParam(2.01) err = %v, want ErrParamOutOfRange", err)
	}
}

func TestBezierSplitMatchesEval(t *testing.T) {
	b := Bezier{
		P0: math.Vec3{},
		P1: math.Vec3{X: 1, Y: 3},
		P2: math.Vec3{X: 4, Z: -2},
		P3: math.Vec3{X: 6, Y: 1, Z: 1},
	}
	left, right := b.Split(0.3)
	for _, u := range []float64{0, 0.25, 0.5, 1} {
		if got, want := left.Eval(u), b.Eval(0.3*u); !got.ApproxEqual(want, 1e-9) {
			t.Errorf("left.Eval(%v) = %v, want %v", u, got, want)
		}
		if got, want := right.Eval(u), b.Eval(0.3+0.7*u); !got.ApproxEqual(want, 1e-9) {
			t.Errorf("right.Eval(%v) = %v, want %v", u, got, want)
		}
	}
}

func TestProfileEvaluate(t *testing.T) {
	p := Profile{Keys: []Key{{T: 0, Value: 1}, {T: 0.5, Value: 3}, {T: 1, Value: 2}}}
	tests := []struct {
		t, want float64
	}{
		{-1, 1},
		{0, 1},
		{0.25, 2},
		{0.5, 3},
		{0.75, 2.5},
		{2, 2},
	}
	for _, tt := range tests {
		if got := p.Evaluate(tt.t); got != tt.want {
			t.Errorf("Evaluate(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
	if got := (Profile{}).Evaluate(0.5); got != 0 {
		t.Errorf("empty profile = %v, want 0", got)
	}
	if got := (Profile{}).EvaluateOr(0.5, 1); got != 1 {
		t.Errorf("empty profile fallback = %v, want 1", got)
	}
	if got := p.EvaluateOr(0.5, 1); got != 3 {
		t.Errorf("EvaluateOr(0.5) = %v, want 3", got)
	}
}
