package domain

import (
	"fmt"
	"log/slog"
	"strings"

	"ilcheck/internal/adapter"
	m "ilcheck/internal/model"
)

// SystemModuleName is the well-known reference supplying the primitive
// types the verification engine is anchored on.
const SystemModuleName = "corlib"

// ModuleContext is the process-scoped module registry of a run. It
// lazily loads reference modules by simple name and caches them for
// the lifetime of the run; Resolve is idempotent. Not safe for
// concurrent use: the cache is only mutated during the sequential
// resolution phase.
type ModuleContext struct {
	refs   *m.ResolvedPathSet
	loader adapter.ModuleLoader
	cache  map[string]*m.Module
	system *m.Module
}

// NewModuleContext builds a context over the resolved reference set.
func NewModuleContext(refs *m.ResolvedPathSet, loader adapter.ModuleLoader) *ModuleContext {
	return &ModuleContext{
		refs:   refs,
		loader: loader,
		cache:  make(map[string]*m.Module),
	}
}

// Resolve returns the module registered under the given simple name,
// loading it on first use. The same name always yields the same
// handle within a run.
func (c *ModuleContext) Resolve(name string) (*m.Module, error) {
	key := strings.ToLower(name)

	if mod, ok := c.cache[key]; ok {
		return mod, nil
	}

	path, ok := c.refs.Lookup(name)
	if !ok {
		return nil, &ModuleNotFoundError{Name: name}
	}

	mod, err := c.loader.Load(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	c.cache[key] = mod
	slog.Debug("loaded reference module", "name", name, "path", path)

	return mod, nil
}

// SetSystemModule designates the module providing the primitive types.
// It must be called exactly once, before any verification begins.
func (c *ModuleContext) SetSystemModule(mod *m.Module) error {
	if c.system != nil {
		return fmt.Errorf("system module already set to %s", c.system.Name)
	}

	c.system = mod

	return nil
}

// SystemModule returns the designated system module, or nil before
// SetSystemModule.
func (c *ModuleContext) SystemModule() *m.Module {
	return c.system
}
