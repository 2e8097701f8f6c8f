package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docforge/docforge/cmd/docforge/ui"
	"github.com/docforge/docforge/internal/domain"
	"github.com/docforge/docforge/internal/fsutil"
	"github.com/docforge/docforge/internal/history"
	"github.com/docforge/docforge/internal/validate"
	"github.com/docforge/docforge/pkg/docforge"
)

// openHistory opens the configured history store. It returns nil when
// history is disabled.
func openHistory(ctx context.Context) (*history.Store, error) {
	if !app.cfg.History.Enabled {
		return nil, nil
	}
	return history.Open(ctx, app.cfg.History.Driver, app.cfg.HistoryDSN(), app.logger)
}

// newClient builds a client wired to the UI. The returned cleanup closes
// the history store, if one was opened.
func newClient(ctx context.Context, opts ...docforge.Option) (*docforge.Client, func()) {
	base := []docforge.Option{
		docforge.WithConfig(app.cfg),
		docforge.WithLogger(app.logger),
		docforge.WithWarnings(func(w string) { app.ui.Warning("%s", w) }),
	}

	cleanup := func() {}
	store, err := openHistory(ctx)
	if err != nil {
		// history is a convenience; the run goes on without it
		app.ui.Warning("Report history unavailable: %v", err)
	} else if store != nil {
		base = append(base, docforge.WithReportSink(store.Save))
		cleanup = func() { store.Close() }
	}

	return docforge.New(append(base, opts...)...), cleanup
}

var rangeFlags = []struct {
	name  string
	check func(string) domain.ValidationOutcome
}{
	{"quality", validate.Quality},
	{"dpi", validate.DPI},
}

// rejectExplicitZero fails when --quality or --dpi was given as 0. The client
// treats 0 as unset and would substitute the configured default.
func rejectExplicitZero(cmd *cobra.Command) error {
	for _, rf := range rangeFlags {
		f := cmd.Flags().Lookup(rf.name)
		if f == nil || !f.Changed || f.Value.String() != "0" {
			continue
		}
		if out := rf.check(f.Value.String()); !out.OK() {
			app.ui.OperationError(out.Err)
			return silentExit(ExitError)
		}
	}
	return nil
}

// finishSingle prints the outcome of one operation and maps it to an exit
// code.
func finishSingle(ctx context.Context, res docforge.OperationResult) error {
	if !res.OK() {
		app.ui.OperationError(res.Err)
		if ctx.Err() != nil {
			return silentExit(ExitInterrupted)
		}
		return silentExit(ExitError)
	}

	app.ui.Success("Done in %s", ui.FormatDuration(res.ProcessingTime))
	d := res.Details
	if d.Pages > 0 {
		app.ui.KeyValue("Pages", d.Pages)
	}
	if d.InputBytes > 0 && d.OutputBytes > 0 {
		app.ui.KeyValue("Size", fmt.Sprintf("%s → %s (%.1f%% reduction)",
			ui.FormatBytes(d.InputBytes), ui.FormatBytes(d.OutputBytes), d.ReductionPercent()))
	}
	if len(d.Outputs) > 0 {
		app.ui.KeyValue("Files", len(d.Outputs))
		for _, out := range d.Outputs {
			fmt.Fprintf(app.ui.Out, "    %s\n", out)
		}
	} else {
		app.ui.KeyValue("Output", res.OutputPath)
	}
	return nil
}

// finishBatch prints a batch report, writes it to reportPath when set and
// maps the outcome to an exit code.
func finishBatch(report docforge.BatchReport, runErr error, reportPath string) error {
	if runErr != nil && !errors.Is(runErr, context.Canceled) && report.ID == "" {
		return usageError(runErr)
	}

	app.ui.Newline()
	app.ui.Results(report)
	if report.Total > 0 || report.Interrupted {
		app.ui.Summary(report)
	}

	if reportPath != "" {
		if err := writeReport(reportPath, report); err != nil {
			app.ui.Error("Failed to write report: %v", err)
		} else {
			app.ui.Info("Report written to %s", reportPath)
		}
	}

	switch {
	case report.Interrupted:
		return silentExit(ExitInterrupted)
	case report.PartialFailure():
		return silentExit(ExitPartial)
	}
	return nil
}

func writeReport(path string, report domain.BatchReport) error {
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteAtomic(path, func(tmp string) error {
		return os.WriteFile(tmp, append(body, '\n'), 0o644)
	})
}
