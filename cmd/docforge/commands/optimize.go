package commands

import (
	"github.com/spf13/cobra"

	"github.com/docforge/docforge/pkg/docforge"
)

var (
	optInput   string
	optOutput  string
	optType    string
	optDPI     int
	optQuality int
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Reduce the size of a PDF",
	Long: `Optimize a PDF. standard and high_quality rewrite the file structure;
aggressive, scanned and scale_only re-render every page as a JPEG at the
target DPI and quality.`,
	Example: `  docforge optimize -i big.pdf -o small.pdf --type aggressive --quality 60`,
	RunE:    runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVarP(&optInput, "input", "i", "", "input PDF (required)")
	optimizeCmd.Flags().StringVarP(&optOutput, "output", "o", "", "output PDF (required)")
	addOptimizeFlags(optimizeCmd)
	optimizeCmd.MarkFlagRequired("input")
	optimizeCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(optimizeCmd)
}

func addOptimizeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&optType, "type", "", "standard, aggressive, scanned, scale_only or high_quality (default standard)")
	cmd.Flags().IntVar(&optDPI, "dpi", 0, "target DPI for re-rendered pages (default 150)")
	cmd.Flags().IntVar(&optQuality, "quality", 0, "JPEG quality, 1-100 (default 70)")
}

func optimizeParams() docforge.OptimizeParams {
	return docforge.OptimizeParams{Type: optType, DPI: optDPI, Quality: optQuality}
}

func runOptimize(cmd *cobra.Command, args []string) error {
	if err := rejectExplicitZero(cmd); err != nil {
		return err
	}
	ctx := cmd.Context()

	app.ui.Section("Optimize")
	app.ui.Info("Input: %s", optInput)

	client, cleanup := newClient(ctx)
	defer cleanup()

	spinner := app.ui.NewSpinner("Optimizing...")
	spinner.Start()
	res := client.Optimize(ctx, optInput, optOutput, optimizeParams())
	spinner.Stop()

	return finishSingle(ctx, res)
}
