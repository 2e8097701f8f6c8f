package commands

import (
	"github.com/spf13/cobra"

	"github.com/docforge/docforge/cmd/docforge/ui"
	"github.com/docforge/docforge/pkg/docforge"
)

var (
	ocrInput      string
	ocrOutput     string
	ocrLanguage   string
	ocrDPI        int
	ocrLayoutMode string
)

var ocrCmd = &cobra.Command{
	Use:   "ocr",
	Short: "Recognize text in a scanned PDF",
	Long: `Run Tesseract OCR over every page of a PDF. A .txt output receives the
plain text, a .pdf output is a copy of the input carrying the text as an
embedded file.`,
	Example: `  docforge ocr -i scan.pdf -o scan_ocr.pdf --language eng+fra
  docforge ocr -i scan.pdf -o scan.txt --layout-mode precise`,
	RunE: runOCR,
}

func init() {
	ocrCmd.Flags().StringVarP(&ocrInput, "input", "i", "", "input PDF (required)")
	ocrCmd.Flags().StringVarP(&ocrOutput, "output", "o", "", "output .pdf or .txt (required)")
	addOCRFlags(ocrCmd)
	ocrCmd.MarkFlagRequired("input")
	ocrCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(ocrCmd)
}

func addOCRFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ocrLanguage, "language", "", "OCR language, e.g. eng or eng+fra (default eng)")
	cmd.Flags().IntVar(&ocrDPI, "dpi", 0, "rendering DPI, 72-600 (default 300)")
	cmd.Flags().StringVar(&ocrLayoutMode, "layout-mode", "", "standard, precise or text_only (default standard)")
}

func ocrParams() docforge.OCRParams {
	return docforge.OCRParams{Language: ocrLanguage, DPI: ocrDPI, LayoutMode: ocrLayoutMode}
}

func runOCR(cmd *cobra.Command, args []string) error {
	if err := rejectExplicitZero(cmd); err != nil {
		return err
	}
	ctx := cmd.Context()

	app.ui.Section("OCR")
	app.ui.Info("Input: %s", ocrInput)
	app.ui.Info("Output: %s", ocrOutput)

	var bar *ui.ProgressBar
	client, cleanup := newClient(ctx, docforge.WithPageProgress(func(_ docforge.WorkItem, page, total int) {
		if bar == nil {
			bar = app.ui.NewProgressBar(int64(total), "Recognizing")
		}
		bar.Set(int64(page))
	}))
	defer cleanup()

	res := client.OCR(ctx, ocrInput, ocrOutput, ocrParams())
	if bar != nil {
		bar.Finish()
	}
	return finishSingle(ctx, res)
}
