package spatial

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/roadcraft/pkg/math"
)

func TestIntersectAABB(t *testing.T) {
	box := NewAABB(math.Vec3{X: 1, Y: 1, Z: 1}, math.Vec3{X: -1, Y: -1, Z: -1})

	tests := []struct {
		name  string
		ray   Ray
		wantT float64
		hit   bool
	}{
		{"from above", Ray{Origin: math.Vec3{Y: 5}, Direction: Down}, 4, true},
		{"inside", Ray{Origin: math.Vec3{}, Direction: Down}, 1, true},
		{"miss", Ray{Origin: math.Vec3{X: 3, Y: 5}, Direction: Down}, 0, false},
		{"behind", Ray{Origin: math.Vec3{Y: -5}, Direction: Down}, 0, false},
		{"along x", Ray{Origin: math.Vec3{X: -4}, Direction: math.Vec3{X: 1}}, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectAABB(box)
			if hit != tt.hit {
				t.Fatalf("hit = %v, want %v", hit, tt.hit)
			}
			if hit && gomath.Abs(got-tt.wantT) > 1e-9 {
				t.Errorf("t = %v, want %v", got, tt.wantT)
			}
		})
	}
}

func TestIntersectPlaneY(t *testing.T) {
	r := Ray{Origin: math.Vec3{Y: 10}, Direction: Down}
	if d, ok := r.IntersectPlaneY(2); !ok || d != 8 {
		t.Errorf("IntersectPlaneY(2) = %v, %v, want 8, true", d, ok)
	}
	if _, ok := r.IntersectPlaneY(12); ok {
		t.Error("expected no hit above origin")
	}
	flat := Ray{Direction: math.Vec3{X: 1}}
	if _, ok := flat.IntersectPlaneY(0); ok {
		t.Error("expected no hit for parallel ray")
	}
}

func TestHeightfieldBilinear(t *testing.T) {
	h := NewHeightfield(math.Vec2{}, 10, 2, 2)
	h.Heights[0][0] = 0
	h.Heights[1][0] = 10
	h.Heights[0][1] = 0
	h.Heights[1][1] = 10

	got, ok := h.HeightAt(5, 5)
	if !ok || gomath.Abs(got-5) > 1e-9 {
		t.Errorf("HeightAt(5,5) = %v, %v, want 5", got, ok)
	}
	got, ok = h.HeightAt(10, 10)
	if !ok || gomath.Abs(got-10) > 1e-9 {
		t.Errorf("HeightAt(10,10) = %v, %v, want 10", got, ok)
	}
	if _, ok := h.HeightAt(-1, 5); ok {
		t.Error("expected miss outside grid")
	}
}

func TestWorldRaycastDownNearest(t *testing.T) {
	ground := NewHeightfield(math.Vec2{X: -50, Y: -50}, 10, 11, 11)
	for x := range ground.Heights {
		for z := range ground.Heights[x] {
			ground.Heights[x][z] = 2
		}
	}
	crate := &Box{Bounds: NewAABB(math.Vec3{X: -1, Y: 2, Z: -1}, math.Vec3{X: 1, Y: 4, Z: 1}), On: LayerDefault}
	road := &Plane{Y: 6, On: LayerRoad}
	w := NewWorld(ground, crate, road)

	p, ok := w.RaycastDown(math.Vec3{Y: 100}, 1000, AllLayers&^AuthoringLayers)
	if !ok || gomath.Abs(p.Y-4) > 1e-9 {
		t.Errorf("hit = %v, %v, want y=4 on crate", p, ok)
	}

	p, ok = w.RaycastDown(math.Vec3{X: 10, Y: 100}, 1000, LayerTerrain)
	if !ok || gomath.Abs(p.Y-2) > 1e-9 {
		t.Errorf("hit = %v, %v, want y=2 on terrain", p, ok)
	}

	p, ok = w.RaycastDown(math.Vec3{Y: 100}, 1000, AllLayers)
	if !ok || gomath.Abs(p.Y-6) > 1e-9 {
		t.Errorf("hit = %v, %v, want y=6 on road plane", p, ok)
	}

	if _, ok := w.RaycastDown(math.Vec3{Y: 100}, 10, LayerTerrain); ok {
		t.Error("expected miss beyond max distance")
	}
	if _, ok := w.RaycastDown(math.Vec3{X: 500, Y: 100}, 1000, LayerTerrain); ok {
		t.Error("expected miss outside terrain")
	}
}

func TestWorldRemove(t *testing.T) {
	w := NewWorld(&Plane{On: LayerTerrain}, &Plane{On: LayerRoad}, &Plane{On: LayerIntersection})
	w.Remove(AuthoringLayers)
	if w.Len() != 1 {
		t.Errorf("Len() = %d, want 1", w.Len())
	}
}

func TestLayer(t *testing.T) {
	if ParseLayer("Road") != LayerRoad {
		t.Error("ParseLayer(Road) != LayerRoad")
	}
	if ParseLayer("nope") != LayerDefault {
		t.Error("unknown layer should map to default")
	}
	if !AuthoringLayers.Has(LayerPrefabLine) {
		t.Error("authoring layers should include prefab lines")
	}
	if got := (LayerTerrain | LayerRoad).String(); got != "terrain|road" {
		t.Errorf("String() = %q", got)
	}
}
