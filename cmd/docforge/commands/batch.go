package commands

import (
	"github.com/spf13/cobra"

	"github.com/docforge/docforge/pkg/docforge"
)

var (
	batchInput   string
	batchOutput  string
	batchReport  string
	batchMaxSize int
)

var batchOCRCmd = &cobra.Command{
	Use:     "batch-ocr",
	Short:   "Run OCR over every PDF of a folder",
	Example: `  docforge batch-ocr -i scans/ -o text/ --language deu`,
	RunE:    runBatchOCR,
}

var batchOptimizeCmd = &cobra.Command{
	Use:     "batch-optimize",
	Short:   "Optimize every PDF of a folder",
	Example: `  docforge batch-optimize -i pdfs/ -o small/ --type aggressive --max-size 200`,
	RunE:    runBatchOptimize,
}

var batchSplitCmd = &cobra.Command{
	Use:     "batch-split",
	Short:   "Split every PDF of a folder",
	Example: `  docforge batch-split -i pdfs/ -o parts/ --max-pages 20`,
	RunE:    runBatchSplit,
}

var batchConvertCmd = &cobra.Command{
	Use:     "batch-convert",
	Short:   "Convert every PDF of a folder",
	Example: `  docforge batch-convert -i pdfs/ -o docs/ --format md`,
	RunE:    runBatchConvert,
}

func init() {
	for _, cmd := range []*cobra.Command{batchOCRCmd, batchOptimizeCmd, batchSplitCmd, batchConvertCmd} {
		cmd.Flags().StringVarP(&batchInput, "input", "i", "", "input folder or comma separated PDFs (required)")
		cmd.Flags().StringVarP(&batchOutput, "output", "o", "", "output folder (required)")
		cmd.Flags().StringVar(&batchReport, "report", "", "write the batch report as JSON to this file")
		cmd.MarkFlagRequired("input")
		cmd.MarkFlagRequired("output")
		rootCmd.AddCommand(cmd)
	}

	addOCRFlags(batchOCRCmd)
	addOptimizeFlags(batchOptimizeCmd)
	batchOptimizeCmd.Flags().IntVar(&batchMaxSize, "max-size", 0, "skip files larger than this many MB (default 100)")
	addSplitFlags(batchSplitCmd)
	batchConvertCmd.Flags().StringVar(&convFormat, "format", "", "docx, md, html or txt (default docx)")
}

func runBatch(cmd *cobra.Command, label string, run func(*docforge.Client) (docforge.BatchReport, error), opts ...docforge.Option) error {
	ctx := cmd.Context()

	app.ui.Section(label)
	app.ui.Info("Input: %s", batchInput)
	app.ui.Info("Output: %s", batchOutput)

	progress := app.ui.NewBatchProgress(label)
	defer progress.Close()

	opts = append(opts,
		docforge.WithProgress(progress.Handle),
		docforge.WithPageProgress(progress.Page),
	)
	client, cleanup := newClient(ctx, opts...)
	defer cleanup()

	report, err := run(client)
	progress.Close()
	return finishBatch(report, err, batchReport)
}

func runBatchOCR(cmd *cobra.Command, args []string) error {
	if err := rejectExplicitZero(cmd); err != nil {
		return err
	}
	return runBatch(cmd, "Batch OCR", func(c *docforge.Client) (docforge.BatchReport, error) {
		return c.BatchOCR(cmd.Context(), batchInput, batchOutput, ocrParams())
	})
}

func runBatchOptimize(cmd *cobra.Command, args []string) error {
	if err := rejectExplicitZero(cmd); err != nil {
		return err
	}
	return runBatch(cmd, "Batch optimize", func(c *docforge.Client) (docforge.BatchReport, error) {
		p := optimizeParams()
		p.MaxFileSizeMB = batchMaxSize
		return c.BatchOptimize(cmd.Context(), batchInput, batchOutput, p)
	})
}

func runBatchSplit(cmd *cobra.Command, args []string) error {
	params, err := splitParams()
	if err != nil {
		return usageError(err)
	}
	return runBatch(cmd, "Batch split", func(c *docforge.Client) (docforge.BatchReport, error) {
		return c.BatchSplit(cmd.Context(), batchInput, batchOutput, params)
	})
}

func runBatchConvert(cmd *cobra.Command, args []string) error {
	return runBatch(cmd, "Batch convert", func(c *docforge.Client) (docforge.BatchReport, error) {
		return c.BatchConvert(cmd.Context(), batchInput, batchOutput, docforge.ConvertParams{Format: convFormat})
	})
}
