package ledger

import "sync"

// Sequence hands out monotonic uint64 ids starting at 1. Ids are never
// reused; 0 is reserved for "does not exist". Callers allocate inside a Tx so
// assignment and the insert it pairs with commit together.
type Sequence struct {
	mu   sync.Mutex
	last uint64
}

func NewSequence() *Sequence {
	return &Sequence{}
}

// Next returns the next id in the sequence.
func (s *Sequence) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return s.last
}

// Current returns the highest id assigned so far, which doubles as the total
// number of entities ever created.
func (s *Sequence) Current() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
