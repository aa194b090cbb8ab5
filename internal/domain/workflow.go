package domain

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ilcheck/internal/adapter"
	"ilcheck/internal/controller"
	"ilcheck/internal/engine"
	m "ilcheck/internal/model"
)

// RunArgs is the parsed command configuration a run starts from.
type RunArgs struct {
	Inputs     []string
	References []string
	Include    []string
	Exclude    []string
	Reports    m.Path // empty disables the report file
}

// Workflow ties resolution, module loading, verification, and
// reporting together. Any error it returns is a configuration or
// setup failure; per-module verification errors are reported through
// the UI and never surface here.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) error
	List(ctx context.Context, args RunArgs) error
}

type workflow struct {
	loader adapter.ModuleLoader
	store  adapter.ReportStore
	ui     controller.UI
}

// NewWorkflow constructs a Workflow backed by the provided adapters.
func NewWorkflow(loader adapter.ModuleLoader, store adapter.ReportStore, ui controller.UI) Workflow {
	return &workflow{loader: loader, store: store, ui: ui}
}

// Run verifies every input module sequentially, in the order the
// specifications resolved, and prints one verdict line per module.
func (w *workflow) Run(ctx context.Context, args RunArgs) error {
	driver, inputs, err := w.setup(args)
	if err != nil {
		return err
	}

	report := m.RunReport{RunID: uuid.NewString(), Started: time.Now()}
	slog.Info("run started", "run_id", report.RunID, "modules", inputs.Len())

	for _, entry := range inputs.All() {
		if err := ctx.Err(); err != nil {
			return err
		}

		mod, err := w.loader.Load(entry.Path)
		if err != nil {
			return &LoadError{Path: entry.Path, Err: err}
		}

		summary := driver.VerifyModule(mod)
		w.ui.ModuleVerdict(entry.Path, summary.Errors)
		slog.Debug("module verified", "module", entry.Path, "errors", summary.Errors)

		report.Modules = append(report.Modules, m.ModuleResult{
			Path:     string(entry.Path),
			Errors:   summary.Errors,
			Verified: summary.Verified(),
		})
	}

	report.Finished = time.Now()

	if args.Reports != "" {
		if err := w.store.Save(args.Reports, report); err != nil {
			// A failed report write must not flip a completed run's
			// outcome.
			slog.Error("cannot save run report", "dir", args.Reports, "error", err)
		}
	}

	return nil
}

// List resolves and loads the input modules and renders their method
// counts under the current filters, without verifying anything.
func (w *workflow) List(ctx context.Context, args RunArgs) error {
	driver, inputs, err := w.setup(args)
	if err != nil {
		return err
	}

	rows := make([]controller.ModuleListRow, 0, inputs.Len())

	for _, entry := range inputs.All() {
		if err := ctx.Err(); err != nil {
			return err
		}

		mod, err := w.loader.Load(entry.Path)
		if err != nil {
			return &LoadError{Path: entry.Path, Err: err}
		}

		rows = append(rows, controller.ModuleListRow{
			Module:   mod.Name,
			Methods:  len(mod.Methods),
			Eligible: driver.EligibleMethods(mod),
		})
	}

	w.ui.DisplayModuleList(rows)

	return nil
}

// setup runs the fatal-on-failure phase shared by Run and List:
// pattern compilation, path resolution, module context construction,
// and system module designation.
func (w *workflow) setup(args RunArgs) (*Driver, *m.ResolvedPathSet, error) {
	if len(args.Inputs) == 0 {
		return nil, nil, ErrNoInputs
	}

	filter, err := NewPatternSet(args.Include, args.Exclude)
	if err != nil {
		return nil, nil, err
	}

	inputs := m.NewResolvedPathSet()
	for _, spec := range args.Inputs {
		if err := ResolveSpec(spec, inputs); err != nil {
			return nil, nil, err
		}
	}

	if inputs.Len() == 0 {
		return nil, nil, ErrNoInputs
	}

	refs := m.NewResolvedPathSet()
	for _, spec := range args.References {
		if err := ResolveSpec(spec, refs); err != nil {
			return nil, nil, err
		}
	}

	modules := NewModuleContext(refs, w.loader)

	system, err := modules.Resolve(SystemModuleName)
	if err != nil {
		return nil, nil, err
	}

	if err := modules.SetSystemModule(system); err != nil {
		return nil, nil, err
	}

	verifier, err := engine.NewVerifier(system)
	if err != nil {
		return nil, nil, err
	}

	return NewDriver(verifier, filter, w.ui), inputs, nil
}
