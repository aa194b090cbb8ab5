package domain

import (
	"regexp"

	m "ilcheck/internal/model"
)

// PatternSet decides which fully-qualified method signatures are
// verified. Exclude patterns always win; an empty include set matches
// everything. Matching is unanchored, "contains" style.
type PatternSet struct {
	include []*regexp.Regexp
	exclude []*regexp.Regexp
}

// NewPatternSet compiles raw include and exclude patterns.
func NewPatternSet(include, exclude []string) (*PatternSet, error) {
	set := &PatternSet{}

	var err error

	if set.include, err = compileAll(include); err != nil {
		return nil, err
	}

	if set.exclude, err = compileAll(exclude); err != nil {
		return nil, err
	}

	return set, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))

	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, &PatternError{Pattern: pattern, Err: err}
		}

		compiled = append(compiled, re)
	}

	return compiled, nil
}

// ShouldVerify reports whether the method passes the filters.
func (p *PatternSet) ShouldVerify(id m.MethodIdentity) bool {
	name := id.FullName()

	for _, re := range p.exclude {
		if re.MatchString(name) {
			return false
		}
	}

	if len(p.include) == 0 {
		return true
	}

	for _, re := range p.include {
		if re.MatchString(name) {
			return true
		}
	}

	return false
}
