package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docforge/docforge/cmd/docforge/ui"
	"github.com/docforge/docforge/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded batch runs",
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the report of one batch run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to list")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func requireHistory(cmd *cobra.Command) (*history.Store, error) {
	store, err := openHistory(cmd.Context())
	if err != nil {
		return nil, usageError(err)
	}
	if store == nil {
		return nil, usageError(errors.New("batch history is disabled (set history.enabled in the config file)"))
	}
	return store, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := requireHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), historyLimit)
	if err != nil {
		return usageError(err)
	}
	if len(runs) == 0 {
		app.ui.Info("No batch runs recorded yet")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		status := fmt.Sprintf("%d/%d", r.Succeeded, r.Total)
		if r.Interrupted {
			status += " (interrupted)"
		}
		rows = append(rows, []string{
			r.ID,
			string(r.Operation),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			status,
			ui.FormatDuration(r.Elapsed),
		})
	}
	app.ui.Table([]string{"ID", "Operation", "Started", "Succeeded", "Time"}, rows)
	app.ui.Info("Showing %d most recent runs", len(runs))
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := requireHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := store.Get(cmd.Context(), args[0])
	if errors.Is(err, history.ErrNotFound) {
		return usageError(fmt.Errorf("no batch run with id '%s'", args[0]))
	}
	if err != nil {
		return usageError(err)
	}

	app.ui.Results(report)
	app.ui.Summary(report)
	return nil
}
