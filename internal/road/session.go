package road

import (
	"hash/fnv"
	"sync"

	"github.com/google/uuid"

	"github.com/Faultbox/roadcraft/pkg/curve"
)

// Session is the state of one editing session: the random seed, the anchor
// focused per road, and handle IDs. Nothing here is process-wide.
type Session struct {
	ID   string
	Seed uint64

	mu         sync.Mutex
	focus      map[string]int
	nextHandle int
}

// NewSession starts a session with a fresh ID.
func NewSession(seed uint64) *Session {
	return &Session{
		ID:    uuid.NewString(),
		Seed:  seed,
		focus: make(map[string]int),
	}
}

// Focus records the anchor last focused on a road.
func (s *Session) Focus(road string, anchor int) {
	s.mu.Lock()
	s.focus[road] = anchor
	s.mu.Unlock()
}

// Focused returns the anchor last focused on a road.
func (s *Session) Focused(road string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.focus[road]
	return a, ok
}

// NextHandle returns a session-unique handle ID.
func (s *Session) NextHandle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextHandle++
	return s.nextHandle
}

// NewRun returns an ID for one regeneration run.
func (s *Session) NewRun() string {
	return uuid.NewString()
}

// SeedFor derives a per-owner seed so every line randomizes independently
// yet reproducibly.
func (s *Session) SeedFor(owner string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(owner))
	return s.Seed ^ h.Sum64()
}

// InsertAnchor inserts an anchor into the road and focuses it.
func (s *Session) InsertAnchor(r *Road, k int, a curve.Anchor) error {
	if err := r.Curve.InsertAnchor(k, a); err != nil {
		return err
	}
	s.Focus(r.ID, k)
	return nil
}

// RemoveAnchor removes an anchor and focuses its predecessor.
func (s *Session) RemoveAnchor(r *Road, k int) error {
	if err := r.Curve.RemoveAnchor(k); err != nil {
		return err
	}
	s.Focus(r.ID, max(k-1, 0))
	return nil
}
