package road

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Faultbox/roadcraft/internal/deform"
	"github.com/Faultbox/roadcraft/internal/spatial"
)

// Asset is a resolved asset: an opaque handle plus, for prefabs, the mesh.
type Asset struct {
	Handle any
	Mesh   *deform.Mesh
}

// AssetResolver turns asset references into handles.
type AssetResolver interface {
	Resolve(ref AssetRef) (Asset, error)
}

// Instance is one generated object handed to the sink.
type Instance struct {
	Owner     string
	Index     int
	Asset     AssetRef
	Handle    any
	Transform deform.Transform
	Mesh      *deform.Mesh
	Layer     spatial.Layer
}

// Sink instantiates generated objects. Replace swaps the full instance set
// of an owner; it is only called once the new set is complete.
type Sink interface {
	Replace(owner string, instances []Instance) error
}

// MapResolver resolves references from a fixed table.
type MapResolver map[AssetRef]Asset

// Resolve implements AssetResolver.
func (m MapResolver) Resolve(ref AssetRef) (Asset, error) {
	a, ok := m[ref]
	if !ok {
		return Asset{}, fmt.Errorf("%w: %q", ErrUnknownAsset, ref)
	}
	return a, nil
}

// MemorySink keeps instance sets in memory.
type MemorySink struct {
	mu       sync.RWMutex
	sets     map[string][]Instance
	replaces int
}

// NewMemorySink creates an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{sets: make(map[string][]Instance)}
}

// Replace implements Sink.
func (s *MemorySink) Replace(owner string, instances []Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(instances) == 0 {
		delete(s.sets, owner)
	} else {
		s.sets[owner] = instances
	}
	s.replaces++
	return nil
}

// Instances returns the current set of an owner.
func (s *MemorySink) Instances(owner string) []Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sets[owner]
}

// Owners returns the owners with instances, sorted.
func (s *MemorySink) Owners() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owners := make([]string, 0, len(s.sets))
	for o := range s.sets {
		owners = append(owners, o)
	}
	sort.Strings(owners)
	return owners
}

// Replaces returns how many times Replace was called.
func (s *MemorySink) Replaces() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.replaces
}
