package testutil

import "sync"

// ScriptedSource replays a fixed sequence of uniform draws.
//
// It implements pointproc.Source, which lets tests pin exact ISIs and
// thinning decisions instead of asserting on statistics.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ScriptedSource struct {
	mu     sync.Mutex
	values []float64
	idx    int
}

// NewScriptedSource creates a source that returns values in order.
//
// Example:
//
//	src := NewScriptedSource(0.5, 0.25)
//	src.Float64() // 0.5
//	src.Float64() // 0.25
//	src.Float64() // panic: all values exhausted
func NewScriptedSource(values ...float64) *ScriptedSource {
	return &ScriptedSource{values: values}
}

// Float64 returns the next scripted value.
//
// Panics if all values have been consumed. A test that draws more than it
// scripted is misconfigured.
func (s *ScriptedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idx >= len(s.values) {
		panic("ScriptedSource: all values exhausted")
	}
	v := s.values[s.idx]
	s.idx++
	return v
}

// Drawn returns how many values have been consumed.
func (s *ScriptedSource) Drawn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx
}

// Reset rewinds the source to its first value.
func (s *ScriptedSource) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idx = 0
}
