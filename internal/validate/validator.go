// Package validate normalizes and checks user-supplied operation parameters.
// Every check yields a domain.ValidationOutcome; malformed input never
// produces a panic or an error value.
package validate

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/docforge/docforge/internal/domain"
)

// ParamKind names a parameter that can be validated from its raw text.
type ParamKind string

const (
	KindLanguage         ParamKind = "language"
	KindInputFile        ParamKind = "input_file"
	KindInputDir         ParamKind = "input_dir"
	KindOutputFile       ParamKind = "output_file"
	KindOutputDir        ParamKind = "output_dir"
	KindQuality          ParamKind = "quality"
	KindDPI              ParamKind = "dpi"
	KindPage             ParamKind = "page"
	KindPageRange        ParamKind = "page_range"
	KindStartPages       ParamKind = "start_pages"
	KindMaxPages         ParamKind = "max_pages"
	KindOptimizationType ParamKind = "optimization_type"
	KindLayoutMode       ParamKind = "layout_mode"
	KindFormat           ParamKind = "format"
	KindNamingTemplate   ParamKind = "naming_template"
)

// Recommended defaults quoted in range errors.
const (
	DefaultQuality = 85
	DefaultDPI     = 300
)

// OptimizationTypes lists the accepted optimization strategies.
var OptimizationTypes = []string{"standard", "aggressive", "scanned", "scale_only", "high_quality"}

// LayoutModes maps OCR layout modes to Tesseract page segmentation modes.
var LayoutModes = map[string]int{
	"standard":  3,
	"precise":   6,
	"text_only": 4,
}

// Formats lists the conversion targets.
var Formats = []string{"docx", "md", "html", "txt"}

var formatAliases = map[string]string{
	"word":     "docx",
	"markdown": "md",
	"htm":      "html",
	"text":     "txt",
}

// PageCounter reports the number of pages in a document.
type PageCounter func(path string) (int, error)

// Validator validates parameters. The zero value is usable; a PageCounter
// enables page bound checks against the actual input document.
type Validator struct {
	pageCount PageCounter
}

// Option configures a Validator.
type Option func(*Validator)

// WithPageCounter enables page bound checks.
func WithPageCounter(pc PageCounter) Option {
	return func(v *Validator) {
		v.pageCount = pc
	}
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks one raw parameter. Page bounds are not checked because no
// document is known; use ValidateItem for that.
func (v *Validator) Validate(kind ParamKind, raw string) domain.ValidationOutcome {
	switch kind {
	case KindLanguage:
		return Language(raw)
	case KindInputFile:
		return InputFile(raw, ".pdf")
	case KindInputDir:
		return InputDir(raw)
	case KindOutputFile:
		return OutputFile(raw)
	case KindOutputDir:
		return OutputDir(raw)
	case KindQuality:
		return Quality(raw)
	case KindDPI:
		return DPI(raw)
	case KindPage:
		return Page(raw, 0)
	case KindPageRange:
		return PageRange(raw, 0)
	case KindStartPages:
		return StartPages(raw, 0)
	case KindMaxPages:
		return MaxPages(raw)
	case KindOptimizationType:
		return OptimizationType(raw)
	case KindLayoutMode:
		return LayoutMode(raw)
	case KindFormat:
		return Format(raw)
	case KindNamingTemplate:
		return NamingTemplate(raw)
	default:
		return domain.Reject(domain.InvalidParameter(fmt.Sprintf("unknown parameter kind '%s'", kind)))
	}
}

// Quality validates an image quality between 1 and 100.
func Quality(raw string) domain.ValidationOutcome {
	return intInRange("quality", raw, 1, 100, DefaultQuality,
		"Use 85 for a good balance of quality and size",
		"Use 95+ for high quality, 60 or less for small files",
	)
}

// DPI validates a resolution between 72 and 600.
func DPI(raw string) domain.ValidationOutcome {
	return intInRange("dpi", raw, 72, 600, DefaultDPI,
		"Use 300 for OCR and print quality",
		"Use 150 for on-screen documents",
	)
}

// MaxPages validates a positive page count per output file.
func MaxPages(raw string) domain.ValidationOutcome {
	n, out, ok := parseInt("max_pages", raw)
	if !ok {
		return out
	}
	if n < 1 {
		return domain.Reject(domain.InvalidParameter(
			fmt.Sprintf("max_pages must be at least 1, got %d", n),
			"Use e.g. 10 to split into files of at most 10 pages",
		))
	}
	return domain.Accept(strconv.Itoa(n), strconv.Itoa(n) != raw)
}

// Page validates a 1-based page number. total is the document's page
// count, or 0 when unknown.
func Page(raw string, total int) domain.ValidationOutcome {
	n, out, ok := parseInt("page", raw)
	if !ok {
		return out
	}
	if n < 1 {
		return domain.Reject(domain.InvalidParameter(fmt.Sprintf("page numbers start at 1, got %d", n)))
	}
	if total > 0 && n > total {
		return domain.Reject(domain.InvalidParameter(
			fmt.Sprintf("page %d exceeds the document's %d pages", n, total),
			fmt.Sprintf("Use a page between 1 and %d", total),
		))
	}
	return domain.Accept(strconv.Itoa(n), strconv.Itoa(n) != raw)
}

// PageRange validates a page range such as "1-5,10,15-20".
func PageRange(raw string, total int) domain.ValidationOutcome {
	spans, err := ParsePageRange(raw)
	if err != nil {
		return domain.Reject(domain.InvalidParameter(
			fmt.Sprintf("invalid page range '%s': %v", raw, err),
			"Use numbers separated by commas, with hyphens for ranges",
			`Example: "1-5,10-15,20"`,
		))
	}
	if total > 0 {
		for _, s := range spans {
			if s.End > total {
				return domain.Reject(domain.InvalidParameter(
					fmt.Sprintf("page range '%s' exceeds the document's %d pages", s, total),
					fmt.Sprintf("Use pages between 1 and %d", total),
				))
			}
		}
	}
	value := FormatPageRange(spans)
	return domain.Accept(value, value != raw)
}

// StartPages validates split start pages such as "1,89,150".
func StartPages(raw string, total int) domain.ValidationOutcome {
	pages, err := ParseStartPages(raw)
	if err != nil {
		return domain.Reject(domain.InvalidParameter(
			fmt.Sprintf("invalid start pages '%s': %v", raw, err),
			"Use format: 1,89,150",
		))
	}
	if total > 0 && pages[len(pages)-1] > total {
		return domain.Reject(domain.InvalidParameter(
			fmt.Sprintf("start page %d exceeds the document's %d pages", pages[len(pages)-1], total),
		))
	}

	var warnings []string
	if pages[0] != 1 {
		warnings = append(warnings, fmt.Sprintf("pages before %d are not included in any part", pages[0]))
	}
	value := FormatStartPages(pages)
	return domain.Accept(value, value != raw, warnings...)
}

// OptimizationType validates an optimization strategy, ignoring case and
// treating '-' and ' ' as '_'.
func OptimizationType(raw string) domain.ValidationOutcome {
	return oneOf("optimization type", raw, OptimizationTypes, nil,
		"Use 'standard' for balanced quality and size",
		"Use 'aggressive' for maximum compression",
	)
}

// LayoutMode validates an OCR layout mode.
func LayoutMode(raw string) domain.ValidationOutcome {
	return oneOf("layout mode", raw, []string{"standard", "precise", "text_only"}, nil,
		"Use 'standard' for most documents",
		"Use 'precise' for uniform blocks of text",
	)
}

// Format validates a conversion target.
func Format(raw string) domain.ValidationOutcome {
	return oneOf("format", raw, Formats, formatAliases,
		"Use 'docx' for Word documents",
	)
}

// NamingTemplate validates a split output name template. {num} is required
// so that parts never share a name.
func NamingTemplate(raw string) domain.ValidationOutcome {
	if strings.TrimSpace(raw) == "" {
		return domain.Reject(domain.InvalidParameter("naming template must not be empty"))
	}
	if !strings.Contains(raw, "{num}") {
		return domain.Reject(domain.InvalidParameter(
			fmt.Sprintf("naming template '%s' must contain {num}", raw),
			"Example: {base}_part{num}_pages{start}-{end}",
		))
	}
	rest := raw
	for _, ph := range []string{"{base}", "{num}", "{start}", "{end}"} {
		rest = strings.ReplaceAll(rest, ph, "")
	}
	if strings.ContainsAny(rest, "{}") {
		return domain.Reject(domain.InvalidParameter(
			fmt.Sprintf("naming template '%s' has an unknown placeholder", raw),
			"Available placeholders: {base}, {num}, {start}, {end}",
		))
	}
	if strings.ContainsAny(rest, `/\`) {
		return domain.Reject(domain.InvalidParameter(
			fmt.Sprintf("naming template '%s' must not contain path separators", raw),
		))
	}
	return domain.Accept(raw, false)
}

func intInRange(name, raw string, min, max, def int, hints ...string) domain.ValidationOutcome {
	n, out, ok := parseInt(name, raw)
	if !ok {
		return out
	}
	if n < min || n > max {
		return domain.Reject(domain.InvalidParameter(
			fmt.Sprintf("%s %d is out of range %d-%d (recommended default: %d)", name, n, min, max, def),
			hints...,
		))
	}
	return domain.Accept(strconv.Itoa(n), strconv.Itoa(n) != raw)
}

func parseInt(name, raw string) (int, domain.ValidationOutcome, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.Reject(domain.InvalidParameter(
			fmt.Sprintf("%s must be a whole number, got '%s'", name, raw),
		)), false
	}
	return n, domain.ValidationOutcome{}, true
}

func oneOf(name, raw string, allowed []string, aliases map[string]string, hints ...string) domain.ValidationOutcome {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.TrimPrefix(key, ".")
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)

	if alias, ok := aliases[key]; ok {
		key = alias
	}
	for _, a := range allowed {
		if key == a {
			var warnings []string
			if a != raw {
				warnings = append(warnings, fmt.Sprintf("corrected %s '%s' to '%s'", name, raw, a))
			}
			return domain.Accept(a, a != raw, warnings...)
		}
	}

	var suggestions []string
	if near := Nearest(key, allowed, maxSuggestDistance, maxSuggestions); len(near) > 0 {
		suggestions = append(suggestions, "Did you mean: "+strings.Join(near, ", ")+"?")
	}
	suggestions = append(suggestions, fmt.Sprintf("Available: %s", strings.Join(allowed, ", ")))
	suggestions = append(suggestions, hints...)

	return domain.Reject(domain.InvalidParameter(fmt.Sprintf("unknown %s '%s'", name, raw), suggestions...))
}

// ValidateItem checks every parameter of a work item, in the order input,
// output, then operation parameters.
func (v *Validator) ValidateItem(item domain.WorkItem) []domain.ValidationOutcome {
	var outcomes []domain.ValidationOutcome

	if mp, ok := item.Params.(domain.MergeParams); ok {
		if len(mp.Inputs) < 2 {
			outcomes = append(outcomes, domain.Reject(domain.InvalidParameter(
				fmt.Sprintf("merge needs at least two input files, got %d", len(mp.Inputs)),
			)))
		}
		for _, in := range mp.Inputs {
			outcomes = append(outcomes, InputFile(in, ".pdf"))
		}
	} else {
		outcomes = append(outcomes, InputFile(item.InputPath, ".pdf"))
	}

	if _, ok := item.Params.(domain.SplitParams); ok {
		outcomes = append(outcomes, OutputDir(item.OutputPath))
	} else {
		outcomes = append(outcomes, OutputFile(item.OutputPath))
	}

	switch p := item.Params.(type) {
	case domain.OCRParams:
		outcomes = append(outcomes,
			Language(p.Language),
			DPI(strconv.Itoa(p.DPI)),
			LayoutMode(p.LayoutMode),
		)
	case domain.OptimizeParams:
		outcomes = append(outcomes,
			OptimizationType(p.Type),
			DPI(strconv.Itoa(p.DPI)),
			Quality(strconv.Itoa(p.Quality)),
			maxFileSize(item.InputPath, p.MaxFileSizeMB),
		)
	case domain.SplitParams:
		outcomes = append(outcomes, v.splitParams(item.InputPath, p)...)
	case domain.ConvertParams:
		outcomes = append(outcomes, Format(p.Format))
	case domain.MergeParams:
	case nil:
		outcomes = append(outcomes, domain.Reject(domain.InvalidParameter("work item has no parameters")))
	default:
		outcomes = append(outcomes, domain.Reject(domain.InvalidParameter(
			fmt.Sprintf("unsupported parameters for operation '%s'", p.Operation()),
		)))
	}

	return outcomes
}

func (v *Validator) splitParams(input string, p domain.SplitParams) []domain.ValidationOutcome {
	var outcomes []domain.ValidationOutcome
	if p.NamingTemplate != "" {
		outcomes = append(outcomes, NamingTemplate(p.NamingTemplate))
	}

	switch p.Mode {
	case domain.SplitByStartPages:
		outcomes = append(outcomes, StartPages(p.StartPages, v.total(input)))
	case domain.SplitBySize:
		outcomes = append(outcomes, MaxPages(strconv.Itoa(p.MaxPages)))
	case domain.SplitExtract:
		outcomes = append(outcomes, PageRange(p.PageRange, v.total(input)))
	case domain.SplitByBookmarks:
	default:
		outcomes = append(outcomes, domain.Reject(domain.InvalidParameter(
			fmt.Sprintf("unknown split mode '%s'", p.Mode),
			"Use one of: pages, size, bookmarks, extract",
		)))
	}
	return outcomes
}

// total returns the page count of input, or 0 when it cannot be determined.
// An unreadable document is reported by the operation itself.
func (v *Validator) total(input string) int {
	if v.pageCount == nil {
		return 0
	}
	n, err := v.pageCount(input)
	if err != nil {
		return 0
	}
	return n
}

func maxFileSize(input string, limitMB int) domain.ValidationOutcome {
	if limitMB <= 0 {
		return domain.Accept("0", false)
	}
	info, err := os.Stat(input)
	if err != nil {
		// reported by the input check
		return domain.Accept(strconv.Itoa(limitMB), false)
	}
	sizeMB := float64(info.Size()) / (1024 * 1024)
	if sizeMB > float64(limitMB) {
		return domain.Reject(domain.InvalidParameter(
			fmt.Sprintf("file is %.1f MB, larger than the %d MB limit", sizeMB, limitMB),
			"Raise the limit with --max-size",
		))
	}
	return domain.Accept(strconv.Itoa(limitMB), false)
}

// FirstError returns the first rejection among outcomes, or nil.
func FirstError(outcomes []domain.ValidationOutcome) *domain.OperationError {
	for _, o := range outcomes {
		if !o.OK() {
			return o.Err
		}
	}
	return nil
}

// Warnings collects the warnings of accepted outcomes.
func Warnings(outcomes []domain.ValidationOutcome) []string {
	var out []string
	for _, o := range outcomes {
		if o.OK() {
			out = append(out, o.Warnings...)
		}
	}
	return out
}
