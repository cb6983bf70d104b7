package engine

import "github.com/piwi3910/barcut/internal/model"

// PatternSet is the ordered collection of patterns the master problem knows
// about. It only grows: indices handed out stay valid for the whole run.
type PatternSet struct {
	patterns []model.Pattern
	index    map[string]int
}

func NewPatternSet() *PatternSet {
	return &PatternSet{index: make(map[string]int)}
}

// Add appends p unless an identical pattern is already present.
func (s *PatternSet) Add(p model.Pattern) bool {
	key := p.Key()
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = len(s.patterns)
	s.patterns = append(s.patterns, p)
	return true
}

func (s *PatternSet) Len() int {
	return len(s.patterns)
}

// Index returns the position of p in the set.
func (s *PatternSet) Index(p model.Pattern) (int, bool) {
	i, ok := s.index[p.Key()]
	return i, ok
}

// Patterns returns the current patterns. Later calls to Add do not change
// the returned slice.
func (s *PatternSet) Patterns() []model.Pattern {
	return s.patterns[:len(s.patterns):len(s.patterns)]
}
