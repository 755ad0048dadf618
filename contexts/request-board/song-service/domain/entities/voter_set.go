package entities

import "sort"

// VoterSet holds the voter tokens recorded for a song. The zero value is an
// empty set ready to use.
type VoterSet struct {
	tokens map[string]struct{}
	order  []string
}

func NewVoterSet(tokens ...string) VoterSet {
	var set VoterSet
	for _, token := range tokens {
		set.Add(token)
	}
	return set
}

func (s VoterSet) Has(token string) bool {
	_, ok := s.tokens[token]
	return ok
}

// Add inserts token and reports whether it was absent.
func (s *VoterSet) Add(token string) bool {
	if token == "" || s.Has(token) {
		return false
	}
	if s.tokens == nil {
		s.tokens = make(map[string]struct{})
	}
	s.tokens[token] = struct{}{}
	s.order = append(s.order, token)
	return true
}

func (s VoterSet) Len() int {
	return len(s.order)
}

// Slice returns the tokens in insertion order.
func (s VoterSet) Slice() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Clone returns an independent copy so callers cannot mutate store state.
func (s VoterSet) Clone() VoterSet {
	return NewVoterSet(s.order...)
}

func (s VoterSet) Sorted() []string {
	out := s.Slice()
	sort.Strings(out)
	return out
}
