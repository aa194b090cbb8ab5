package model

import "time"

// RunSummary is the transient per-module outcome of one verification
// pass: the error counter starts at zero for each module and is final
// only once the whole module has been walked.
type RunSummary struct {
	Module Path
	Errors int
}

// Verified reports whether the module passed without violations.
func (s RunSummary) Verified() bool {
	return s.Errors == 0
}

// ModuleResult is one module's verdict inside a saved run report.
type ModuleResult struct {
	Path     string `yaml:"path"`
	Errors   int    `yaml:"errors"`
	Verified bool   `yaml:"verified"`
}

// RunReport is the persisted summary of a whole run.
type RunReport struct {
	RunID    string         `yaml:"run_id"`
	Started  time.Time      `yaml:"started"`
	Finished time.Time      `yaml:"finished"`
	Modules  []ModuleResult `yaml:"modules"`
}
