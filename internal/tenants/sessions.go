package tenants

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Sessions holds the active tenant of every signed-in identity and the
// cancel funcs of its in-flight fetches. Each slot has a single writer at a
// time; while a switch is in progress the slot holds the empty sentinel so
// dependent reads see "no data".
type Sessions struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*slot
	seq   uint64
}

type slot struct {
	active    string
	committed bool
	inflight  map[uint64]inflight
}

type inflight struct {
	key    Key
	cancel context.CancelFunc
}

func NewSessions() *Sessions {
	return &Sessions{slots: make(map[uuid.UUID]*slot)}
}

// Active returns the committed tenant for the identity. committed is false
// when nothing has been selected yet.
func (s *Sessions) Active(userID uuid.UUID) (tenant string, committed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[userID]
	if !ok {
		return "", false
	}
	return sl.active, sl.committed
}

// BeginSwitch clears the slot to the empty sentinel and cancels every
// in-flight fetch keyed to the previous tenant. It returns the previous tenant.
func (s *Sessions) BeginSwitch(userID uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.slotLocked(userID)
	previous := sl.active
	sl.active = ""
	sl.committed = true
	for id, f := range sl.inflight {
		if f.key.Tenant == previous {
			f.cancel()
			delete(sl.inflight, id)
		}
	}
	return previous
}

// Commit publishes tenant as the identity's active tenant.
func (s *Sessions) Commit(userID uuid.UUID, tenant string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.slotLocked(userID)
	sl.active = tenant
	sl.committed = true
}

// CommitIfUnset commits tenant only when nothing is committed yet and
// returns the tenant that ends up active.
func (s *Sessions) CommitIfUnset(userID uuid.UUID, tenant string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.slotLocked(userID)
	if !sl.committed {
		sl.active = tenant
		sl.committed = true
	}
	return sl.active
}

// Track registers a fetch for key and returns a context cancelled when the
// identity switches away from key.Tenant. done must be called when the
// fetch finishes.
func (s *Sessions) Track(ctx context.Context, userID uuid.UUID, key Key) (context.Context, func()) {
	fetchCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	sl := s.slotLocked(userID)
	s.seq++
	id := s.seq
	sl.inflight[id] = inflight{key: key, cancel: cancel}
	s.mu.Unlock()

	return fetchCtx, func() {
		s.mu.Lock()
		if sl, ok := s.slots[userID]; ok {
			delete(sl.inflight, id)
		}
		s.mu.Unlock()
		cancel()
	}
}

// InFlight counts tracked fetches for the identity.
func (s *Sessions) InFlight(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok := s.slots[userID]; ok {
		return len(sl.inflight)
	}
	return 0
}

// Clear cancels every fetch of the identity and forgets its slot.
func (s *Sessions) Clear(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[userID]
	if !ok {
		return
	}
	for _, f := range sl.inflight {
		f.cancel()
	}
	delete(s.slots, userID)
}

func (s *Sessions) slotLocked(userID uuid.UUID) *slot {
	sl, ok := s.slots[userID]
	if !ok {
		sl = &slot{inflight: make(map[uint64]inflight)}
		s.slots[userID] = sl
	}
	return sl
}
