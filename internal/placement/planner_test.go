package placement

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/roadcraft/pkg/arclen"
	"github.com/Faultbox/roadcraft/pkg/curve"
	"github.com/Faultbox/roadcraft/pkg/math"
)

func line(length float64) *curve.Curve {
	return curve.Straight(math.Vec3{}, math.Vec3{X: length})
}

func TestPlanFillGapExample(t *testing.T) {
	p := New(OffsetPerSegment, curve.Profile{}, arclen.DefaultOptions(), 1)
	recs, err := p.Plan(line(10), Spacing{FillGap: true}, 2, curve.WholeInterval())
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 5 {
		t.Fatalf("got %d records, want 5", len(recs))
	}
	for i, r := range recs {
		wantStart := float64(i) * 2
		if gomath.Abs(r.StartPoint.X-wantStart) > 1e-6 {
			t.Errorf("record %d start = %v, want %v", i, r.StartPoint.X, wantStart)
		}
		if gomath.Abs(r.MainPoint.X-(wantStart+1)) > 1e-6 {
			t.Errorf("record %d main = %v, want %v", i, r.MainPoint.X, wantStart+1)
		}
		if gomath.Abs(r.EndPoint.X-(wantStart+2)) > 1e-6 {
			t.Errorf("record %d end = %v, want %v", i, r.EndPoint.X, wantStart+2)
		}
		if !r.Forward.ApproxEqual(math.Vec3{X: 1}, 1e-9) {
			t.Errorf("record %d forward = %v", i, r.Forward)
		}
	}
	if recs[4].Percentage > 1 {
		t.Errorf("percentage = %v, want <= 1", recs[4].Percentage)
	}
}

func TestPlanFillGapCount(t *testing.T) {
	tests := []struct {
		length, width float64
		want          int
	}{
		{10, 2, 5},
		{10, 3, 3},
		{7.5, 2.5, 3},
		{1, 2, 0},
		{25, 4, 6},
	}
	p := New(OffsetPerSegment, curve.Profile{}, arclen.DefaultOptions(), 1)
	for _, tt := range tests {
		recs, err := p.Plan(line(tt.length), Spacing{FillGap: true}, tt.width, curve.WholeInterval())
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != tt.want {
			t.Errorf("L=%v W=%v: got %d records, want %d", tt.length, tt.width, len(recs), tt.want)
		}
	}
}

func TestPlanFixedSpacing(t *testing.T) {
	p := New(OffsetPerSegment, curve.Profile{}, arclen.DefaultOptions(), 1)
	recs, err := p.Plan(line(20), Spacing{Spacing: 5}, 2, curve.WholeInterval())
	if err != nil {
		t.Fatal(err)
	}
	// starts at 0, 5, 10, 15
	if len(recs) != 4 {
		t.Fatalf("got %d records, want 4", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		gap := recs[i].StartDistance - recs[i-1].StartDistance
		if gomath.Abs(gap-5) > 1e-6 {
			t.Errorf("gap %d = %v, want 5", i, gap)
		}
	}
}

func TestPlanSpacingBelowWidth(t *testing.T) {
	p := New(OffsetPerSegment, curve.Profile{}, arclen.DefaultOptions(), 1)
	recs, err := p.Plan(line(10), Spacing{Spacing: 0.5}, 2, curve.WholeInterval())
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 5 {
		t.Fatalf("got %d records, want 5", len(recs))
	}
}

func TestPlanRandomSpacing(t *testing.T) {
	sp := Spacing{Spacing: 3, MaxSpacing: 6, Randomize: true}
	p := New(OffsetPerSegment, curve.Profile{}, arclen.DefaultOptions(), 42)
	c := curve.Straight(math.Vec3{}, math.Vec3{X: 50}, math.Vec3{X: 50, Z: 50})
	recs, err := p.Plan(c, sp, 1, curve.WholeInterval())
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) < 2 {
		t.Fatalf("got %d records", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		gap := recs[i].StartDistance - recs[i-1].StartDistance
		if gap < 3-1e-9 || gap > 6+1e-9 {
			t.Errorf("gap %d = %v, want in [3,6]", i, gap)
		}
	}

	again, err := p.Plan(c, sp, 1, curve.WholeInterval())
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != len(recs) {
		t.Fatalf("rerun produced %d records, want %d", len(again), len(recs))
	}
	for i := range recs {
		if recs[i].StartParam != again[i].StartParam {
			t.Errorf("rerun record %d differs", i)
		}
	}
}

func TestPlanRecordsComplete(t *testing.T) {
	p := New(OffsetPerSegment, curve.Profile{}, arclen.Options{DetailLevel: 3}, 7)
	c := curve.New(
		curve.Anchor{Position: math.Vec3{}, RightTangent: math.Vec3{Z: 6}},
		curve.Anchor{Position: math.Vec3{X: 12, Z: 12}, LeftTangent: math.Vec3{X: -6}},
	)
	recs, err := p.Plan(c, Spacing{Spacing: 1.5, MaxSpacing: 4, Randomize: true}, 1.2, curve.WholeInterval())
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range recs {
		if r.EndParam <= r.StartParam {
			t.Errorf("record %d: end param %v <= start %v", i, r.EndParam, r.StartParam)
		}
		if gomath.Abs(r.EndDistance-r.StartDistance-1.2) > 1e-6 {
			t.Errorf("record %d: arc width = %v, want 1.2", i, r.EndDistance-r.StartDistance)
		}
		if i > 0 && r.StartDistance < recs[i-1].EndDistance-1e-9 {
			t.Errorf("record %d overlaps previous", i)
		}
	}
}

func TestPlanSubInterval(t *testing.T) {
	p := New(OffsetPerSegment, curve.Profile{}, arclen.DefaultOptions(), 1)
	c := curve.Straight(math.Vec3{}, math.Vec3{X: 10}, math.Vec3{X: 20})
	iv := curve.Interval{StartIndex: 0, StartOffset: 0.5, EndIndex: 1, EndOffset: 0.5}
	recs, err := p.Plan(c, Spacing{FillGap: true}, 2, iv)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 5 {
		t.Fatalf("got %d records, want 5", len(recs))
	}
	if gomath.Abs(recs[0].StartPoint.X-5) > 1e-6 {
		t.Errorf("first start = %v, want 5", recs[0].StartPoint.X)
	}
	if recs[0].Segment != 0 || recs[3].Segment != 1 {
		t.Errorf("segments = %d, %d, want 0, 1", recs[0].Segment, recs[3].Segment)
	}
}

func TestPlanDegenerate(t *testing.T) {
	p := New(OffsetPerSegment, curve.Profile{}, arclen.DefaultOptions(), 1)
	iv := curve.Interval{StartIndex: 0, StartOffset: 0.5, EndIndex: 0, EndOffset: 0.5}
	_, err := p.Plan(line(10), Spacing{FillGap: true}, 2, iv)
	if !errors.Is(err, ErrDegenerateInterval) {
		t.Errorf("err = %v, want ErrDegenerateInterval", err)
	}

	_, err = p.Plan(line(10), Spacing{FillGap: true}, 0, curve.WholeInterval())
	if !errors.Is(err, ErrInvalidWidth) {
		t.Errorf("err = %v, want ErrInvalidWidth", err)
	}
}

func TestPlanOffsetModes(t *testing.T) {
	c := curve.Straight(math.Vec3{}, math.Vec3{X: 10}, math.Vec3{X: 20})
	offset := curve.Linear(0, 2)

	t.Run("along interval", func(t *testing.T) {
		p := New(OffsetAlongInterval, offset, arclen.DefaultOptions(), 1)
		recs, err := p.Plan(c, Spacing{FillGap: true}, 10, curve.WholeInterval())
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != 2 {
			t.Fatalf("got %d records, want 2", len(recs))
		}
		// Left of +X is +Z.
		if gomath.Abs(recs[0].EndPoint.Z-1) > 1e-6 || gomath.Abs(recs[0].EndOffset-1) > 1e-6 {
			t.Errorf("mid offset = %v (z %v), want 1", recs[0].EndOffset, recs[0].EndPoint.Z)
		}
		if gomath.Abs(recs[1].EndPoint.Z-2) > 1e-6 {
			t.Errorf("end z = %v, want 2", recs[1].EndPoint.Z)
		}
	})

	t.Run("per segment", func(t *testing.T) {
		p := New(OffsetPerSegment, offset, arclen.DefaultOptions(), 1)
		recs, err := p.Plan(c, Spacing{FillGap: true}, 5, curve.WholeInterval())
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != 4 {
			t.Fatalf("got %d records, want 4", len(recs))
		}
		// Each segment restarts the profile.
		if gomath.Abs(recs[0].EndOffset-1) > 1e-6 || gomath.Abs(recs[2].EndOffset-1) > 1e-6 {
			t.Errorf("offsets = %v, %v, want 1, 1", recs[0].EndOffset, recs[2].EndOffset)
		}
		if gomath.Abs(recs[0].StartOffset) > 1e-9 || gomath.Abs(recs[3].StartOffset-1) > 1e-6 {
			t.Errorf("start offsets = %v, %v, want 0, 1", recs[0].StartOffset, recs[3].StartOffset)
		}
	})
}

func TestOffsetModeString(t *testing.T) {
	if OffsetAlongInterval.String() != "along_interval" {
		t.Errorf("String() = %q", OffsetAlongInterval.String())
	}
	for _, m := range []OffsetMode{OffsetPerSegment, OffsetAlongInterval} {
		got, err := ParseOffsetMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseOffsetMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseOffsetMode("sideways"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
