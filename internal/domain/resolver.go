package domain

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	m "ilcheck/internal/model"
)

// ModuleExtension is the file extension a directory expansion accepts.
const ModuleExtension = ".bcm"

// ResolveSpec expands one raw path specification (a literal file, a
// directory, or a glob pattern) and inserts every resulting file into
// set, keyed by the file's simple name. Colliding names overwrite
// earlier entries so the same module may be supplied multiple ways.
func ResolveSpec(spec string, set *m.ResolvedPathSet) error {
	if strings.ContainsAny(spec, "*?[") {
		return resolveGlob(spec, set)
	}

	info, err := os.Stat(spec)
	if err != nil {
		return &ResolutionError{Spec: spec, Err: err}
	}

	if info.IsDir() {
		return resolveDir(spec, set)
	}

	return addFile(spec, set)
}

func resolveGlob(spec string, set *m.ResolvedPathSet) error {
	matches, err := filepath.Glob(spec)
	if err != nil {
		return &ResolutionError{Spec: spec, Err: err}
	}

	if len(matches) == 0 {
		slog.Debug("pattern matched no files", "spec", spec)
		return nil
	}

	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			return &ResolutionError{Spec: spec, Err: err}
		}

		if info.IsDir() {
			continue
		}

		if err := addFile(match, set); err != nil {
			return err
		}
	}

	return nil
}

// resolveDir expands the immediate files of a directory; it never
// recurses and only accepts module files by extension.
func resolveDir(dir string, set *m.ResolvedPathSet) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &ResolutionError{Spec: dir, Err: err}
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if !strings.EqualFold(filepath.Ext(entry.Name()), ModuleExtension) {
			continue
		}

		if err := addFile(filepath.Join(dir, entry.Name()), set); err != nil {
			return err
		}
	}

	return nil
}

func addFile(path string, set *m.ResolvedPathSet) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &ResolutionError{Spec: path, Err: fmt.Errorf("cannot make absolute: %w", err)}
	}

	name := simpleName(abs)
	set.Add(name, m.Path(abs))
	slog.Debug("resolved module path", "name", name, "path", abs)

	return nil
}

// simpleName is the filename without its extension.
func simpleName(path string) string {
	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}
