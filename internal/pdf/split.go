package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/docforge/docforge/internal/domain"
	"github.com/docforge/docforge/internal/fsutil"
	"github.com/docforge/docforge/internal/observability"
	"github.com/docforge/docforge/internal/validate"
)

// Default output name templates per split mode.
const (
	TemplateStartPages = "{base}_part{num}_pages{start}-{end}"
	TemplateMaxPages   = "{base}_part{num}_{start}-{end}"
	TemplateBookmarks  = "{base}_{num}_{start}-{end}"
)

// Part is one output file of a split.
type Part struct {
	Num   int
	Start int
	End   int
}

// PartsFromStarts turns sorted start pages into consecutive parts; each part
// ends where the next begins and the last ends at total. Pages before the
// first start are not covered.
func PartsFromStarts(starts []int, total int) ([]Part, error) {
	if len(starts) == 0 {
		return nil, fmt.Errorf("no start pages")
	}
	if starts[0] < 1 {
		return nil, fmt.Errorf("page numbers must start from 1")
	}
	if last := starts[len(starts)-1]; last > total {
		return nil, fmt.Errorf("start page %d exceeds total pages %d", last, total)
	}

	parts := make([]Part, len(starts))
	for i, s := range starts {
		end := total
		if i+1 < len(starts) {
			end = starts[i+1] - 1
		}
		parts[i] = Part{Num: i + 1, Start: s, End: end}
	}
	return parts, nil
}

// PartsBySize cuts total pages into parts of at most maxPages.
func PartsBySize(total, maxPages int) ([]Part, error) {
	if maxPages < 1 {
		return nil, fmt.Errorf("max pages must be at least 1")
	}
	var starts []int
	for p := 1; p <= total; p += maxPages {
		starts = append(starts, p)
	}
	return PartsFromStarts(starts, total)
}

// PartName renders a naming template for one part, without extension.
func PartName(template, base string, part Part) string {
	return strings.NewReplacer(
		"{base}", base,
		"{num}", strconv.Itoa(part.Num),
		"{start}", strconv.Itoa(part.Start),
		"{end}", strconv.Itoa(part.End),
	).Replace(template)
}

// Splitter cuts PDFs into parts. The item's output path is a directory.
type Splitter struct {
	logger *observability.Logger
}

// NewSplitter creates a Splitter.
func NewSplitter(logger *observability.Logger) *Splitter {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Splitter{logger: logger.WithOperation("split")}
}

func (s *Splitter) Name() string               { return "split" }
func (s *Splitter) Kind() domain.OperationKind { return domain.OperationSplit }

// Execute splits item.InputPath into item.OutputPath according to its
// SplitParams. Either every part is written or none is.
func (s *Splitter) Execute(ctx context.Context, item domain.WorkItem) domain.OperationResult {
	start := time.Now()
	p, ok := item.Params.(domain.SplitParams)
	if !ok {
		return domain.Failure(domain.InvalidParameter("split requires split parameters"), time.Since(start))
	}

	total, err := PageCount(item.InputPath)
	if err != nil {
		return domain.Failure(domain.AsOperationError(err, "Check that the input is a valid PDF"), time.Since(start))
	}

	base := strings.TrimSuffix(filepath.Base(item.InputPath), filepath.Ext(item.InputPath))
	log := s.logger.WithContext(ctx)

	if p.Mode == domain.SplitExtract {
		return s.extract(ctx, item, p, total, start)
	}

	parts, template, err := s.plan(item.InputPath, p, total)
	if err != nil {
		return domain.Failure(domain.AsOperationError(err), time.Since(start))
	}
	if p.NamingTemplate != "" {
		template = p.NamingTemplate
	}

	log.Debug().Str("input", item.InputPath).Int("pages", total).Int("parts", len(parts)).Msg("Splitting PDF")

	if err := os.MkdirAll(item.OutputPath, 0o755); err != nil {
		return domain.Failure(domain.OperationFailed(fmt.Sprintf("cannot create %s: %v", item.OutputPath, err)), time.Since(start))
	}

	conf := configuration()
	written := make([]string, 0, len(parts))
	for _, part := range parts {
		select {
		case <-ctx.Done():
			removeAll(written)
			return domain.Failure(domain.OperationFailed("split interrupted"), time.Since(start))
		default:
		}

		dst := filepath.Join(item.OutputPath, PartName(template, base, part)+".pdf")
		err := fsutil.WriteAtomic(dst, func(tmp string) error {
			return api.TrimFile(item.InputPath, tmp, []string{fmt.Sprintf("%d-%d", part.Start, part.End)}, conf)
		})
		if err != nil {
			removeAll(written)
			return domain.Failure(domain.OperationFailed(
				fmt.Sprintf("failed to write part %d (pages %d-%d): %v", part.Num, part.Start, part.End, err),
			), time.Since(start))
		}
		written = append(written, dst)
	}

	return domain.Success(item.OutputPath, time.Since(start), domain.ResultDetails{
		Pages:      total,
		InputBytes: fsutil.FileSize(item.InputPath),
		Outputs:    written,
		Method:     string(p.Mode),
	})
}

func (s *Splitter) plan(input string, p domain.SplitParams, total int) ([]Part, string, error) {
	switch p.Mode {
	case domain.SplitByStartPages:
		starts, err := validate.ParseStartPages(p.StartPages)
		if err != nil {
			return nil, "", domain.InvalidParameter(err.Error(), "Use format: 1,89,150")
		}
		parts, err := PartsFromStarts(starts, total)
		if err != nil {
			return nil, "", domain.InvalidParameter(err.Error())
		}
		return parts, TemplateStartPages, nil

	case domain.SplitBySize:
		parts, err := PartsBySize(total, p.MaxPages)
		if err != nil {
			return nil, "", domain.InvalidParameter(err.Error())
		}
		return parts, TemplateMaxPages, nil

	case domain.SplitByBookmarks:
		doc, err := Open(input)
		if err != nil {
			return nil, "", err
		}
		defer doc.Close()

		marks, err := doc.Bookmarks()
		if err != nil {
			return nil, "", err
		}
		starts := BookmarkStarts(marks)
		if len(starts) == 0 {
			return nil, "", domain.OperationFailed("PDF has no bookmarks to split by",
				"Use --start-pages or --max-pages instead")
		}
		parts, err := PartsFromStarts(starts, total)
		if err != nil {
			return nil, "", domain.OperationFailed(err.Error())
		}
		return parts, TemplateBookmarks, nil

	default:
		return nil, "", domain.InvalidParameter(fmt.Sprintf("unknown split mode '%s'", p.Mode))
	}
}

// extract copies a page selection into one file inside the output directory.
func (s *Splitter) extract(ctx context.Context, item domain.WorkItem, p domain.SplitParams, total int, start time.Time) domain.OperationResult {
	spans, err := validate.ParsePageRange(p.PageRange)
	if err != nil {
		return domain.Failure(domain.InvalidParameter(err.Error(), `Example: "1-5,10-15,20"`), time.Since(start))
	}

	selection := make([]string, len(spans))
	for i, sp := range spans {
		if sp.End > total {
			return domain.Failure(domain.InvalidParameter(
				fmt.Sprintf("page range '%s' exceeds the document's %d pages", sp, total),
			), time.Since(start))
		}
		selection[i] = sp.String()
	}

	base := strings.TrimSuffix(filepath.Base(item.InputPath), filepath.Ext(item.InputPath))
	name := base + "_pages" + strings.ReplaceAll(validate.FormatPageRange(spans), ",", "_") + ".pdf"
	dst := filepath.Join(item.OutputPath, name)

	s.logger.WithContext(ctx).Debug().Str("input", item.InputPath).Str("pages", p.PageRange).Msg("Extracting pages")

	err = fsutil.WriteAtomic(dst, func(tmp string) error {
		return api.TrimFile(item.InputPath, tmp, selection, configuration())
	})
	if err != nil {
		return domain.Failure(domain.OperationFailed(fmt.Sprintf("failed to extract pages: %v", err)), time.Since(start))
	}

	return domain.Success(item.OutputPath, time.Since(start), domain.ResultDetails{
		Pages:       len(validate.ExpandPages(spans)),
		InputBytes:  fsutil.FileSize(item.InputPath),
		OutputBytes: fsutil.FileSize(dst),
		Outputs:     []string{dst},
		Method:      string(p.Mode),
	})
}

func removeAll(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
