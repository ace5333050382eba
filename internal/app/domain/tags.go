package domain

import "strings"

// TagSet is an ordered set of customer tags. The platform stores tags as a
// comma-separated string with no deduplication; this set keeps identifiers
// unique and only serializes back to the string form at the boundary.
type TagSet struct {
	order []string
	seen  map[string]struct{}
}

// NewTagSet builds a set from the given tags, in order.
func NewTagSet(tags ...string) *TagSet {
	s := &TagSet{seen: make(map[string]struct{})}
	for _, tag := range tags {
		s.Add(tag)
	}
	return s
}

// ParseTags splits a platform tag string into a set. Blank entries are
// dropped, surrounding whitespace is trimmed, first occurrence wins.
func ParseTags(raw string) *TagSet {
	s := NewTagSet()
	for _, part := range strings.Split(raw, ",") {
		s.Add(part)
	}
	return s
}

// Add inserts a tag unless it is blank or already present.
func (s *TagSet) Add(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return
	}
	if _, ok := s.seen[tag]; ok {
		return
	}
	s.seen[tag] = struct{}{}
	s.order = append(s.order, tag)
}

// AddAll unions another set into this one.
func (s *TagSet) AddAll(other *TagSet) {
	if other == nil {
		return
	}
	for _, tag := range other.order {
		s.Add(tag)
	}
}

// Contains reports tag membership.
func (s *TagSet) Contains(tag string) bool {
	_, ok := s.seen[strings.TrimSpace(tag)]
	return ok
}

// Len returns the number of tags.
func (s *TagSet) Len() int {
	return len(s.order)
}

// String serializes to the platform's comma-separated form, preserving
// insertion order.
func (s *TagSet) String() string {
	return strings.Join(s.order, ", ")
}
