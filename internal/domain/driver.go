package domain

import (
	"errors"
	"log/slog"

	"ilcheck/internal/controller"
	"ilcheck/internal/engine"
	m "ilcheck/internal/model"
)

// Driver runs one verification pass per eligible method of a module
// and aggregates the error count. It is reentrant: all per-module
// state lives in the returned RunSummary.
type Driver struct {
	verifier engine.Verifier
	filter   *PatternSet
	ui       controller.UI
}

// NewDriver constructs a Driver.
func NewDriver(verifier engine.Verifier, filter *PatternSet, ui controller.UI) *Driver {
	return &Driver{verifier: verifier, filter: filter, ui: ui}
}

// VerifyModule walks the module's methods in declaration order.
// Methods without a body are skipped, filtered methods are skipped,
// and every diagnostic the engine reports is counted and emitted
// immediately. Engine signals end the method early but never the
// module.
func (d *Driver) VerifyModule(mod *m.Module) m.RunSummary {
	summary := m.RunSummary{Module: mod.Path}

	for _, method := range mod.Methods {
		if !method.HasBody() {
			continue
		}

		id := m.MethodIdentity{
			ModulePath: mod.Path,
			OwningType: method.Owner,
			Method:     method.Name,
			Signature:  method.Signature,
		}

		if !d.filter.ShouldVerify(id) {
			slog.Debug("method filtered out", "method", id.FullName())
			continue
		}

		err := d.verifier.Verify(mod, method, func(diag m.Diagnostic) {
			summary.Errors++
			d.ui.Diagnostic(Format(diag, id, mod.Path))
		})
		if err == nil {
			continue
		}

		var tokenErr *engine.TokenError
		var unsupportedErr *engine.UnsupportedError

		switch {
		case errors.As(err, &tokenErr):
			// Reported but not added to the module error count.
			d.ui.Diagnostic(FormatTokenFailure(id, mod.Path, tokenErr.Token))
		case errors.As(err, &unsupportedErr):
			d.ui.Diagnostic(err.Error())
		default:
			slog.Error("engine failure", "method", id.FullName(), "error", err)
			d.ui.Diagnostic(err.Error())
		}
	}

	return summary
}

// EligibleMethods counts the methods of a module that the current
// filters would verify. Used by the list command.
func (d *Driver) EligibleMethods(mod *m.Module) int {
	eligible := 0

	for _, method := range mod.Methods {
		if !method.HasBody() {
			continue
		}

		id := m.MethodIdentity{
			ModulePath: mod.Path,
			OwningType: method.Owner,
			Method:     method.Name,
			Signature:  method.Signature,
		}

		if d.filter.ShouldVerify(id) {
			eligible++
		}
	}

	return eligible
}
