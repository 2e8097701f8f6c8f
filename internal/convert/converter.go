package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/docforge/docforge/internal/domain"
	"github.com/docforge/docforge/internal/fsutil"
	"github.com/docforge/docforge/internal/observability"
)

// Writers maps each output format to its encoder.
var Writers = map[string]func(io.Writer, Document) error{
	"docx": WriteDOCX,
	"md":   WriteMarkdown,
	"html": WriteHTML,
	"txt":  WriteText,
}

// Converter is the convert operation.
type Converter struct {
	extract Extractor
	logger  *observability.Logger
}

// NewConverter creates a Converter reading PDFs with go-fitz. A nil extract
// selects Extract.
func NewConverter(extract Extractor, logger *observability.Logger) *Converter {
	if extract == nil {
		extract = Extract
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return &Converter{extract: extract, logger: logger.WithOperation("convert")}
}

func (c *Converter) Name() string               { return "convert" }
func (c *Converter) Kind() domain.OperationKind { return domain.OperationConvert }

// Execute writes the text of item.InputPath to item.OutputPath in the
// requested format.
func (c *Converter) Execute(ctx context.Context, item domain.WorkItem) domain.OperationResult {
	start := time.Now()
	p, ok := item.Params.(domain.ConvertParams)
	if !ok {
		return domain.Failure(domain.InvalidParameter("convert requires convert parameters"), time.Since(start))
	}
	write, ok := Writers[p.Format]
	if !ok {
		return domain.Failure(domain.InvalidParameter(
			fmt.Sprintf("unsupported format '%s'", p.Format),
			"Use one of: docx, md, html, txt",
		), time.Since(start))
	}

	doc, err := c.extract(item.InputPath)
	if err != nil {
		return domain.Failure(domain.AsOperationError(err, "Check that the input is a valid PDF"), time.Since(start))
	}
	if doc.Empty() {
		return domain.Failure(domain.OperationFailed(
			fmt.Sprintf("%s has no text layer", item.Name()),
			"Run 'docforge ocr' on it first",
		), time.Since(start))
	}

	err = fsutil.WriteAtomic(item.OutputPath, func(tmp string) error {
		f, err := os.Create(tmp)
		if err != nil {
			return err
		}
		if err := write(f, doc); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
	if err != nil {
		return domain.Failure(domain.AsOperationError(err, "Check that the output location is writable"), time.Since(start))
	}

	c.logger.WithContext(ctx).Debug().
		Str("input", item.InputPath).
		Str("format", p.Format).
		Int("pages", len(doc.Pages)).
		Msg("Converted document")

	return domain.Success(item.OutputPath, time.Since(start), domain.ResultDetails{
		Pages:       len(doc.Pages),
		InputBytes:  fsutil.FileSize(item.InputPath),
		OutputBytes: fsutil.FileSize(item.OutputPath),
		Method:      p.Format,
	})
}
