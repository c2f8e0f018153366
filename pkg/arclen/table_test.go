package arclen

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/roadcraft/pkg/curve"
	"github.com/Faultbox/roadcraft/pkg/math"
)

func bentCurve() *curve.Curve {
	return curve.New(
		curve.Anchor{Position: math.Vec3{}, RightTangent: math.Vec3{X: 4, Y: 1}},
		curve.Anchor{Position: math.Vec3{X: 10, Y: 3, Z: 10}, LeftTangent: math.Vec3{Z: -5}, RightTangent: math.Vec3{Z: 5}},
		curve.Anchor{Position: math.Vec3{X: 0, Z: 20}, LeftTangent: math.Vec3{X: 4}},
	)
}

func TestSampleCount(t *testing.T) {
	seg := curve.Bezier{P0: math.Vec3{}, P3: math.Vec3{X: 10}}
	tests := []struct {
		detail float64
		want   int
	}{
		{0, 3},
		{0.1, 3},
		{1, 10},
		{2.55, 26},
	}
	for _, tt := range tests {
		if got := SampleCount(seg, tt.detail); got != tt.want {
			t.Errorf("SampleCount(detail=%v) = %d, want %d", tt.detail, got, tt.want)
		}
	}
}

func TestTableMonotonic(t *testing.T) {
	c := bentCurve()
	for _, elev := range []bool{false, true} {
		tbl, err := SampleSegment(c, 0, Options{DetailLevel: 5, UseElevation: elev})
		if err != nil {
			t.Fatal(err)
		}
		for i := 1; i < len(tbl.Lengths); i++ {
			if tbl.Lengths[i] < tbl.Lengths[i-1] {
				t.Fatalf("elevation=%v: Lengths[%d]=%v < Lengths[%d]=%v", elev, i, tbl.Lengths[i], i-1, tbl.Lengths[i-1])
			}
		}
	}
}

func TestElevationChangesLength(t *testing.T) {
	c := curve.Straight(math.Vec3{}, math.Vec3{X: 3, Y: 10, Z: 4})
	planar, _ := SegmentLength(c, 0, Options{DetailLevel: 4})
	full, _ := SegmentLength(c, 0, Options{DetailLevel: 4, UseElevation: true})
	if gomath.Abs(planar-5) > 1e-9 {
		t.Errorf("planar length = %v, want 5", planar)
	}
	if full <= planar {
		t.Errorf("3D length %v should exceed planar %v", full, planar)
	}
}

func TestParamRoundTrip(t *testing.T) {
	c := bentCurve()
	for seg := 0; seg < c.SegmentCount(); seg++ {
		tbl, err := SampleSegment(c, seg, Options{DetailLevel: 3})
		if err != nil {
			t.Fatal(err)
		}
		for _, s := range tbl.Samples {
			l, err := tbl.ArcLengthAt(s.T)
			if err != nil {
				t.Fatal(err)
			}
			back, err := tbl.ParamAtArcLength(l)
			if err != nil {
				t.Fatal(err)
			}
			if gomath.Abs(back-s.T) > 1e-9 {
				t.Errorf("segment %d: ParamAtArcLength(ArcLengthAt(%v)) = %v", seg, s.T, back)
			}
		}
	}
}

func TestParamAtArcLengthOutOfRange(t *testing.T) {
	tbl, err := SampleSegment(bentCurve(), 0, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []float64{-0.001, tbl.Length() + 0.001} {
		if _, err := tbl.ParamAtArcLength(s); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("ParamAtArcLength(%v) err = %v, want ErrOutOfRange", s, err)
		}
	}
	if _, err := tbl.ArcLengthAt(1.5); !errors.Is(err, curve.ErrParamOutOfRange) {
		t.Errorf("ArcLengthAt(1.5) err = %v", err)
	}
}

func TestSampleSegmentBadIndex(t *testing.T) {
	if _, err := SampleSegment(bentCurve(), 2, DefaultOptions()); !errors.Is(err, curve.ErrIndexOutOfRange) {
		t.Errorf("err = %v, want ErrIndexOutOfRange", err)
	}
}
