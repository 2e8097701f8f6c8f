package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docforge/docforge/cmd/docforge/ui"
	"github.com/docforge/docforge/internal/pdf"
)

var (
	analyzeInput string
	analyzeType  string
)

var analyzeCmd = &cobra.Command{
	Use:     "analyze",
	Short:   "Inspect a PDF and recommend OCR or optimization",
	Example: `  docforge analyze -i report.pdf --type all`,
	RunE:    runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInput, "input", "i", "", "input PDF (required)")
	analyzeCmd.Flags().StringVar(&analyzeType, "type", "all", "ocr, optimization or all")
	analyzeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	switch analyzeType {
	case "ocr", "optimization", "all":
	default:
		return usageError(fmt.Errorf("invalid analysis type '%s' (use ocr, optimization or all)", analyzeType))
	}

	spinner := app.ui.NewSpinner("Analyzing " + analyzeInput + "...")
	spinner.Start()
	info, err := pdf.Inspect(analyzeInput)
	spinner.Stop()
	if err != nil {
		return usageError(err)
	}

	app.ui.Section("Document")
	app.ui.KeyValue("File", info.Path)
	app.ui.KeyValue("Pages", info.Pages)
	app.ui.KeyValue("Size", ui.FormatBytes(info.SizeBytes))
	app.ui.KeyValue("Text pages", fmt.Sprintf("%d of %d sampled", info.TextPages, info.SampledText))
	if len(info.Bookmarks) > 0 {
		app.ui.KeyValue("Bookmarks", len(info.Bookmarks))
	}
	if app.ui.Verbose() {
		keys := make([]string, 0, len(info.Metadata))
		for k := range info.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			app.ui.KeyValue(strings.ToUpper(k[:1])+k[1:], info.Metadata[k])
		}
	}

	if analyzeType != "optimization" {
		printRecommendation("OCR", pdf.RecommendOCR(info))
	}
	if analyzeType != "ocr" {
		printRecommendation("Optimization", pdf.RecommendOptimization(info))
	}
	return nil
}

func printRecommendation(title string, rec pdf.Recommendation) {
	app.ui.Section(title)
	app.ui.Info("%s", rec.Summary)
	for _, note := range rec.Notes {
		app.ui.Step("%s", note)
	}
	if rec.Action != "" {
		app.ui.Success("Suggested: %s", rec.Action)
	}
}
