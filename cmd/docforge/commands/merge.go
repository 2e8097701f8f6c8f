package commands

import (
	"github.com/spf13/cobra"

	"github.com/docforge/docforge/internal/batch"
)

var (
	mergeInput  string
	mergeOutput string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge PDFs into one file",
	Long: `Merge a comma separated list of PDFs, in the given order, or every PDF
of a folder, in name order, into one output file.`,
	Example: `  docforge merge -i "cover.pdf,body.pdf,appendix.pdf" -o book.pdf
  docforge merge -i chapters/ -o book.pdf`,
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeInput, "input", "i", "", "folder or comma separated PDFs (required)")
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "output PDF (required)")
	mergeCmd.MarkFlagRequired("input")
	mergeCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	inputs, err := batch.ExpandInput(mergeInput, ".pdf")
	if err != nil {
		return usageError(err)
	}

	app.ui.Section("Merge")
	for i, in := range inputs {
		app.ui.Step("%d. %s", i+1, in)
	}

	client, cleanup := newClient(ctx)
	defer cleanup()

	spinner := app.ui.NewSpinner("Merging...")
	spinner.Start()
	res := client.Merge(ctx, inputs, mergeOutput)
	spinner.Stop()

	return finishSingle(ctx, res)
}
