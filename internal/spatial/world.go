package spatial

import (
	"sync"

	"github.com/Faultbox/roadcraft/pkg/math"
)

// Hit is a raycast result.
type Hit struct {
	Point    math.Vec3
	Distance float64
	Collider Collider
}

// World is a set of colliders. It is safe for concurrent queries.
type World struct {
	mu        sync.RWMutex
	colliders []Collider
}

// NewWorld creates a world holding the given colliders.
func NewWorld(colliders ...Collider) *World {
	return &World{colliders: colliders}
}

// Add registers a collider.
func (w *World) Add(c Collider) {
	w.mu.Lock()
	w.colliders = append(w.colliders, c)
	w.mu.Unlock()
}

// Remove drops every collider on the given layers.
func (w *World) Remove(mask Layer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	kept := w.colliders[:0]
	for _, c := range w.colliders {
		if !c.Layer().Matches(mask) {
			kept = append(kept, c)
		}
	}
	clear(w.colliders[len(kept):])
	w.colliders = kept
}

// Len returns the number of colliders.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.colliders)
}

// Raycast returns the nearest hit on the masked layers within maxDistance.
func (w *World) Raycast(r Ray, maxDistance float64, mask Layer) (Hit, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var (
		best  Hit
		found bool
	)
	for _, c := range w.colliders {
		if !c.Layer().Matches(mask) {
			continue
		}
		t, ok := c.Raycast(r, maxDistance)
		if !ok || (found && t >= best.Distance) {
			continue
		}
		best = Hit{Point: r.At(t), Distance: t, Collider: c}
		found = true
	}
	return best, found
}

// RaycastDown casts straight down from origin and returns the hit point.
func (w *World) RaycastDown(origin math.Vec3, maxDistance float64, mask Layer) (math.Vec3, bool) {
	hit, ok := w.Raycast(Ray{Origin: origin, Direction: Down}, maxDistance, mask)
	return hit.Point, ok
}
