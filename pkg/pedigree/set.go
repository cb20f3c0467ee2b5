package pedigree

import (
	"encoding/json"
	"maps"
	"slices"
)

// Set is an unordered collection of individual IDs.
type Set map[ID]struct{}

// NewSet returns a Set holding ids.
func NewSet(ids ...ID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into s.
func (s Set) Add(id ID) { s[id] = struct{}{} }

// Has reports whether id is in s. A nil Set contains nothing.
func (s Set) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of IDs in s.
func (s Set) Len() int { return len(s) }

// Sorted returns the members of s in ascending order.
func (s Set) Sorted() []ID { return slices.Sorted(maps.Keys(s)) }

// Intersect returns a new Set with the IDs present in both s and o.
func (s Set) Intersect(o Set) Set {
	small, large := s, o
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(Set)
	for id := range small {
		if large.Has(id) {
			out.Add(id)
		}
	}
	return out
}

// MarshalJSON encodes s as a sorted array so output is stable.
func (s Set) MarshalJSON() ([]byte, error) {
	ids := s.Sorted()
	if ids == nil {
		ids = []ID{}
	}
	return json.Marshal(ids)
}

// UnmarshalJSON decodes an array of IDs.
func (s *Set) UnmarshalJSON(data []byte) error {
	var ids []ID
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewSet(ids...)
	return nil
}
