// Package controller provides the line-oriented output adapters for
// verification verdicts and module listings.
package controller

import (
	"os"

	"golang.org/x/term"

	m "ilcheck/internal/model"
)

// ModuleListRow is one row of the "list" table: a resolved input
// module, its method count, and how many methods the current filters
// would verify.
type ModuleListRow struct {
	Module   string
	Methods  int
	Eligible int
}

// UI is the output surface of a run. Implementations must keep output
// line-oriented and in call order; the driver relies on diagnostics
// appearing before the module's verdict line.
type UI interface {
	// Diagnostic emits one formatted diagnostic line.
	Diagnostic(line string)

	// ModuleVerdict emits the final per-module line: "Verified." when
	// errorCount is zero, the error-count form otherwise.
	ModuleVerdict(path m.Path, errorCount int)

	// DisplayModuleList renders the "list" table.
	DisplayModuleList(rows []ModuleListRow)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
