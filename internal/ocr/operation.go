package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docforge/docforge/internal/domain"
	"github.com/docforge/docforge/internal/fsutil"
	"github.com/docforge/docforge/internal/observability"
	"github.com/docforge/docforge/internal/pdf"
	"github.com/docforge/docforge/internal/validate"
)

// pageSeparator separates pages in plain text output.
const pageSeparator = "\f"

// Pages is a rendered document.
type Pages interface {
	PageCount() int
	RenderPage(n, dpi int) (image.Image, error)
	Close() error
}

// PageFunc is called after each recognized page. page is 1-based.
type PageFunc func(item domain.WorkItem, page, total int)

// Operation runs OCR over one PDF and writes the recognized text either as
// a .txt file or as a copy of the PDF carrying the text as an attachment.
type Operation struct {
	engine Engine
	open   func(path string) (Pages, error)
	attach func(in, out string, files []string) error
	onPage PageFunc
	logger *observability.Logger
}

// Option configures an Operation.
type Option func(*Operation)

// WithEngine replaces the Tesseract engine.
func WithEngine(e Engine) Option {
	return func(o *Operation) { o.engine = e }
}

// WithOpener replaces the PDF renderer.
func WithOpener(open func(path string) (Pages, error)) Option {
	return func(o *Operation) { o.open = open }
}

// WithPageProgress registers a per-page callback.
func WithPageProgress(fn PageFunc) Option {
	return func(o *Operation) { o.onPage = fn }
}

// WithLogger sets the logger.
func WithLogger(l *observability.Logger) Option {
	return func(o *Operation) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewOperation creates an OCR operation backed by go-fitz and Tesseract.
func NewOperation(opts ...Option) *Operation {
	o := &Operation{
		engine: NewTesseractEngine(),
		open: func(path string) (Pages, error) {
			return pdf.Open(path)
		},
		attach: pdf.AttachFiles,
		logger: observability.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.WithOperation("ocr")
	return o
}

func (o *Operation) Name() string               { return "ocr" }
func (o *Operation) Kind() domain.OperationKind { return domain.OperationOCR }

// Execute recognizes every page of item.InputPath.
func (o *Operation) Execute(ctx context.Context, item domain.WorkItem) domain.OperationResult {
	start := time.Now()
	p, ok := item.Params.(domain.OCRParams)
	if !ok {
		return domain.Failure(domain.InvalidParameter("ocr requires ocr parameters"), time.Since(start))
	}

	ext := strings.ToLower(filepath.Ext(item.OutputPath))
	if ext != ".txt" && ext != ".pdf" {
		return domain.Failure(domain.InvalidParameter(
			fmt.Sprintf("unsupported OCR output '%s'", filepath.Base(item.OutputPath)),
			"Use a .pdf or .txt output file",
		), time.Since(start))
	}

	pages, confidence, err := o.recognize(ctx, item, p)
	if err != nil {
		return domain.Failure(domain.AsOperationError(err, suggestionsFor(err, p)...), time.Since(start))
	}
	text := strings.Join(pages, pageSeparator)
	if strings.TrimSpace(strings.ReplaceAll(text, pageSeparator, "")) == "" {
		return domain.Failure(domain.OperationFailed(
			fmt.Sprintf("no text was recognized in %s", item.Name()),
			"Try a higher --dpi",
			"Check that --language matches the document",
		), time.Since(start))
	}

	err = fsutil.WriteAtomic(item.OutputPath, func(tmp string) error {
		if ext == ".txt" {
			return os.WriteFile(tmp, []byte(text), 0o644)
		}
		return o.writePDF(item, tmp, text)
	})
	if err != nil {
		return domain.Failure(domain.AsOperationError(err, "Check that the output location is writable"), time.Since(start))
	}

	o.logger.WithContext(ctx).Debug().
		Str("input", item.InputPath).
		Int("pages", len(pages)).
		Float64("confidence", confidence).
		Msg("OCR complete")

	return domain.Success(item.OutputPath, time.Since(start), domain.ResultDetails{
		Pages:       len(pages),
		InputBytes:  fsutil.FileSize(item.InputPath),
		OutputBytes: fsutil.FileSize(item.OutputPath),
		Method:      o.engine.Name(),
	})
}

func (o *Operation) recognize(ctx context.Context, item domain.WorkItem, p domain.OCRParams) ([]string, float64, error) {
	doc, err := o.open(item.InputPath)
	if err != nil {
		return nil, 0, err
	}
	defer doc.Close()

	total := doc.PageCount()
	texts := make([]string, 0, total)
	var confSum float64

	for n := 0; n < total; n++ {
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		default:
		}

		img, err := doc.RenderPage(n, p.DPI)
		if err != nil {
			return nil, 0, err
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, 0, fmt.Errorf("encode page %d: %w", n+1, err)
		}

		rec, err := o.engine.Recognize(ctx, Request{
			Image:          buf.Bytes(),
			Languages:      strings.Split(p.Language, "+"),
			DPI:            p.DPI,
			PageSegMode:    validate.LayoutModes[p.LayoutMode],
			TessdataPrefix: p.TessdataPrefix,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("page %d: %w", n+1, err)
		}

		texts = append(texts, rec.Text)
		confSum += rec.Confidence
		if o.onPage != nil {
			o.onPage(item, n+1, total)
		}
	}

	if total == 0 {
		return texts, 0, nil
	}
	return texts, confSum / float64(total), nil
}

// writePDF stores text next to a copy of the input as an embedded file.
func (o *Operation) writePDF(item domain.WorkItem, tmp, text string) error {
	workDir, err := os.MkdirTemp("", "docforge-ocr-*")
	if err != nil {
		return domain.IOError("Failed to create temp directory", err)
	}
	defer os.RemoveAll(workDir)

	base := strings.TrimSuffix(filepath.Base(item.InputPath), filepath.Ext(item.InputPath))
	textPath := filepath.Join(workDir, base+"_ocr.txt")
	if err := os.WriteFile(textPath, []byte(text), 0o644); err != nil {
		return domain.IOError("Failed to write recognized text", err)
	}
	return o.attach(item.InputPath, tmp, []string{textPath})
}

func suggestionsFor(err error, p domain.OCRParams) []string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "language") || strings.Contains(msg, "traineddata"):
		return []string{
			fmt.Sprintf("Install the Tesseract language data for '%s'", p.Language),
			"Set TESSDATA_PREFIX to the folder holding the .traineddata files",
		}
	case strings.Contains(msg, "not a pdf") || strings.Contains(msg, "open pdf"):
		return []string{"Check that the input is a valid PDF"}
	default:
		return []string{"Try a lower --dpi", "Check that Tesseract is installed"}
	}
}
