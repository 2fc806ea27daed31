package resource

import "sync"

// sequencer hands out monotonically increasing tickets so late responses
// can be recognised and dropped.
type sequencer struct {
	mu      sync.Mutex
	counter uint64
	latest  map[OpKind]uint64
	// listApplied is the newest ticket whose result replaced the items.
	listApplied uint64
}

func newSequencer() *sequencer {
	return &sequencer{latest: make(map[OpKind]uint64)}
}

func (s *sequencer) dispatch(kind OpKind) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	s.latest[kind] = s.counter
	return s.counter
}

func (s *sequencer) isLatest(kind OpKind, ticket uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[kind] == ticket
}

// invalidate makes every in-flight call of the given kinds stale.
func (s *sequencer) invalidate(kinds ...OpKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range kinds {
		s.counter++
		s.latest[k] = s.counter
	}
}

// acceptList runs apply when ticket is the latest of its kind and newer
// than the last list write of any kind. It reports whether apply ran.
func (s *sequencer) acceptList(kind OpKind, ticket uint64, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest[kind] != ticket || ticket <= s.listApplied {
		return false
	}
	s.listApplied = ticket
	apply()
	return true
}

// accept runs apply when ticket is still the latest of its kind.
func (s *sequencer) accept(kind OpKind, ticket uint64, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest[kind] != ticket {
		return false
	}
	apply()
	return true
}
