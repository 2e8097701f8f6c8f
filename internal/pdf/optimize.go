package pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/docforge/docforge/internal/domain"
	"github.com/docforge/docforge/internal/fsutil"
	"github.com/docforge/docforge/internal/observability"
)

// scaleOnlyQuality keeps recompression artifacts negligible when only the
// resolution is meant to change.
const scaleOnlyQuality = 95

// Optimizer compresses PDFs.
type Optimizer struct {
	logger *observability.Logger
}

// NewOptimizer creates an Optimizer.
func NewOptimizer(logger *observability.Logger) *Optimizer {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Optimizer{logger: logger.WithOperation("optimize")}
}

func (o *Optimizer) Name() string               { return "optimize" }
func (o *Optimizer) Kind() domain.OperationKind { return domain.OperationOptimize }

// Execute writes an optimized copy of item.InputPath to item.OutputPath.
func (o *Optimizer) Execute(ctx context.Context, item domain.WorkItem) domain.OperationResult {
	start := time.Now()
	p, ok := item.Params.(domain.OptimizeParams)
	if !ok {
		return domain.Failure(domain.InvalidParameter("optimize requires optimize parameters"), time.Since(start))
	}

	log := o.logger.WithContext(ctx)
	log.Debug().Str("input", item.InputPath).Str("type", p.Type).Int("dpi", p.DPI).Int("quality", p.Quality).Msg("Optimizing PDF")

	var pages int
	method := methodFor(p.Type)
	err := fsutil.WriteAtomic(item.OutputPath, func(tmp string) error {
		var err error
		pages, err = o.optimize(ctx, item.InputPath, tmp, p)
		return err
	})
	if err != nil {
		return domain.Failure(domain.AsOperationError(err,
			"Check that the input is a valid, unencrypted PDF",
			"Try --type standard",
		), time.Since(start))
	}

	details := domain.ResultDetails{
		Pages:       pages,
		InputBytes:  fsutil.FileSize(item.InputPath),
		OutputBytes: fsutil.FileSize(item.OutputPath),
		Method:      method,
	}
	if details.OutputBytes >= details.InputBytes {
		log.Warn().Str("input", item.InputPath).Int64("input_bytes", details.InputBytes).Int64("output_bytes", details.OutputBytes).
			Msg("Optimized file is not smaller than the original")
	}
	return domain.Success(item.OutputPath, time.Since(start), details)
}

func (o *Optimizer) optimize(ctx context.Context, in, out string, p domain.OptimizeParams) (int, error) {
	switch p.Type {
	case "standard", "high_quality":
		if err := api.OptimizeFile(in, out, configuration()); err != nil {
			return 0, domain.ConversionError("Failed to optimize PDF", err)
		}
		return PageCount(out)
	case "aggressive":
		return Rasterize(ctx, in, out, RasterOptions{DPI: p.DPI, Quality: p.Quality})
	case "scanned":
		return Rasterize(ctx, in, out, RasterOptions{DPI: p.DPI, Quality: p.Quality, Grayscale: true})
	case "scale_only":
		return Rasterize(ctx, in, out, RasterOptions{DPI: p.DPI, Quality: scaleOnlyQuality})
	default:
		return 0, domain.InvalidParameter(fmt.Sprintf("unknown optimization type '%s'", p.Type))
	}
}

func methodFor(optType string) string {
	switch optType {
	case "standard", "high_quality":
		return "structural"
	default:
		return "raster"
	}
}
