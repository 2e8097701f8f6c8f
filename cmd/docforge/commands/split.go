package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docforge/docforge/pkg/docforge"
)

var (
	splitInput      string
	splitOutput     string
	splitStartPages string
	splitMaxPages   int
	splitBookmarks  bool
	splitPages      string
	splitTemplate   string
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split a PDF into parts",
	Long: `Split a PDF into an output folder. Choose exactly one mode:
  --start-pages 1,89,150   each listed page starts a new part
  --max-pages 10           parts of at most 10 pages
  --bookmarks              one part per top-level bookmark
  --pages 1-5,10           extract the selected pages into one file`,
	Example: `  docforge split -i report.pdf -o parts/ --start-pages 1,89
  docforge split -i report.pdf -o parts/ --pages 1-5,10-15`,
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().StringVarP(&splitInput, "input", "i", "", "input PDF (required)")
	splitCmd.Flags().StringVarP(&splitOutput, "output", "o", "", "output folder (required)")
	addSplitFlags(splitCmd)
	splitCmd.MarkFlagRequired("input")
	splitCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(splitCmd)
}

func addSplitFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&splitStartPages, "start-pages", "", "comma separated start pages")
	cmd.Flags().IntVar(&splitMaxPages, "max-pages", 0, "maximum pages per part")
	cmd.Flags().BoolVar(&splitBookmarks, "bookmarks", false, "split at top-level bookmarks")
	cmd.Flags().StringVar(&splitPages, "pages", "", "page range to extract, e.g. 1-5,10")
	cmd.Flags().StringVar(&splitTemplate, "template", "", "part name template, e.g. {base}_part{num}")
	cmd.MarkFlagsMutuallyExclusive("start-pages", "max-pages", "bookmarks", "pages")
	cmd.MarkFlagsOneRequired("start-pages", "max-pages", "bookmarks", "pages")
}

func splitParams() (docforge.SplitParams, error) {
	p := docforge.SplitParams{NamingTemplate: splitTemplate}
	switch {
	case splitStartPages != "":
		p.Mode, p.StartPages = docforge.SplitByStartPages, splitStartPages
	case splitMaxPages != 0:
		p.Mode, p.MaxPages = docforge.SplitBySize, splitMaxPages
	case splitBookmarks:
		p.Mode = docforge.SplitByBookmarks
	case splitPages != "":
		p.Mode, p.PageRange = docforge.SplitExtract, splitPages
	default:
		return p, fmt.Errorf("choose one of --start-pages, --max-pages, --bookmarks or --pages")
	}
	return p, nil
}

func runSplit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	params, err := splitParams()
	if err != nil {
		return usageError(err)
	}

	app.ui.Section("Split")
	app.ui.Info("Input: %s", splitInput)
	app.ui.Info("Mode: %s", params.Mode)

	client, cleanup := newClient(ctx)
	defer cleanup()

	spinner := app.ui.NewSpinner("Splitting...")
	spinner.Start()
	res := client.Split(ctx, splitInput, splitOutput, params)
	spinner.Stop()

	return finishSingle(ctx, res)
}
