// Package domain implements the verification pipeline: path
// resolution, method filtering, the module context, the per-method
// verification driver, diagnostic formatting, and the run workflow.
package domain

import (
	"errors"
	"fmt"

	m "ilcheck/internal/model"
)

// ErrNoInputs is returned when a run is started without any input
// module specification, or when none of the specifications resolved
// to a file.
var ErrNoInputs = errors.New("no input modules specified")

// ResolutionError reports an input or reference specification that
// could not be expanded to files.
type ResolutionError struct {
	Spec string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %q: %v", e.Spec, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// PatternError reports an include or exclude pattern that is not a
// valid regular expression.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// ModuleNotFoundError reports a reference name with no resolved path.
type ModuleNotFoundError struct {
	Name string
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("reference module %q not found", e.Name)
}

// LoadError reports a file that could not be loaded as a module. It is
// fatal for the whole run.
type LoadError struct {
	Path m.Path
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load module %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
