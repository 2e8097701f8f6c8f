package commands

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docforge/docforge/pkg/docforge"
)

var (
	convInput  string
	convOutput string
	convFormat string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a PDF to Word, Markdown, HTML or text",
	Long: `Convert the text layer of a PDF into an editable document. Without
--format the output file's extension decides. Scanned PDFs need OCR first.`,
	Example: `  docforge convert -i report.pdf -o report.docx
  docforge convert -i report.pdf -o report.html --format html`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convInput, "input", "i", "", "input PDF (required)")
	convertCmd.Flags().StringVarP(&convOutput, "output", "o", "", "output file (required)")
	convertCmd.Flags().StringVar(&convFormat, "format", "", "docx, md, html or txt (default docx)")
	convertCmd.MarkFlagRequired("input")
	convertCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format := convFormat
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(convOutput)), ".")
	}

	app.ui.Section("Convert")
	app.ui.Info("Input: %s", convInput)

	client, cleanup := newClient(ctx)
	defer cleanup()

	spinner := app.ui.NewSpinner("Converting...")
	spinner.Start()
	res := client.Convert(ctx, convInput, convOutput, docforge.ConvertParams{Format: format})
	spinner.Stop()

	return finishSingle(ctx, res)
}
