// Package model defines the value types shared across the verifier.
package model

import "strings"

// Path represents a file system path.
type Path string

// ResolvedPath is one entry of a ResolvedPathSet: the simple module
// name as it was last supplied, plus the absolute file path it maps to.
type ResolvedPath struct {
	Name string
	Path Path
}

// ResolvedPathSet is an ordered mapping from a case-insensitive simple
// module name to a single absolute file path. Re-adding an existing
// name overwrites the path but keeps the original position, so a
// reference supplied multiple ways never fails the run.
type ResolvedPathSet struct {
	order   []string
	entries map[string]ResolvedPath
}

// NewResolvedPathSet creates an empty ResolvedPathSet.
func NewResolvedPathSet() *ResolvedPathSet {
	return &ResolvedPathSet{entries: make(map[string]ResolvedPath)}
}

// Add inserts or overwrites the entry for the given simple name.
func (s *ResolvedPathSet) Add(name string, path Path) {
	key := strings.ToLower(name)
	if _, ok := s.entries[key]; !ok {
		s.order = append(s.order, key)
	}

	s.entries[key] = ResolvedPath{Name: name, Path: path}
}

// Lookup returns the path registered for the given name, matching
// case-insensitively.
func (s *ResolvedPathSet) Lookup(name string) (Path, bool) {
	entry, ok := s.entries[strings.ToLower(name)]

	return entry.Path, ok
}

// Len returns the number of distinct names in the set.
func (s *ResolvedPathSet) Len() int {
	return len(s.order)
}

// All returns the entries in insertion order.
func (s *ResolvedPathSet) All() []ResolvedPath {
	all := make([]ResolvedPath, 0, len(s.order))
	for _, key := range s.order {
		all = append(all, s.entries[key])
	}

	return all
}
