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

// Merger concatenates PDFs.
type Merger struct {
	logger *observability.Logger
}

// NewMerger creates a Merger.
func NewMerger(logger *observability.Logger) *Merger {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Merger{logger: logger.WithOperation("merge")}
}

func (m *Merger) Name() string               { return "merge" }
func (m *Merger) Kind() domain.OperationKind { return domain.OperationMerge }

// Execute merges the inputs listed in the item's MergeParams, in order.
func (m *Merger) Execute(ctx context.Context, item domain.WorkItem) domain.OperationResult {
	start := time.Now()
	p, ok := item.Params.(domain.MergeParams)
	if !ok {
		return domain.Failure(domain.InvalidParameter("merge requires merge parameters"), time.Since(start))
	}
	if len(p.Inputs) < 2 {
		return domain.Failure(domain.InvalidParameter(
			fmt.Sprintf("merge needs at least two input files, got %d", len(p.Inputs)),
		), time.Since(start))
	}

	var inputBytes int64
	for _, in := range p.Inputs {
		if err := CheckHeader(in); err != nil {
			return domain.Failure(domain.OperationFailed(
				fmt.Sprintf("cannot merge %s: %v", in, err),
				"Remove the file from the list or repair it",
			), time.Since(start))
		}
		inputBytes += fsutil.FileSize(in)
	}

	m.logger.WithContext(ctx).Debug().Strs("inputs", p.Inputs).Str("output", item.OutputPath).Msg("Merging PDFs")

	var pages int
	err := fsutil.WriteAtomic(item.OutputPath, func(tmp string) error {
		if err := api.MergeCreateFile(p.Inputs, tmp, false, configuration()); err != nil {
			return domain.ConversionError("Failed to merge PDFs", err)
		}
		var err error
		pages, err = PageCount(tmp)
		return err
	})
	if err != nil {
		return domain.Failure(domain.AsOperationError(err, "Check that every input is a valid, unencrypted PDF"), time.Since(start))
	}

	return domain.Success(item.OutputPath, time.Since(start), domain.ResultDetails{
		Pages:       pages,
		InputBytes:  inputBytes,
		OutputBytes: fsutil.FileSize(item.OutputPath),
		Outputs:     []string{item.OutputPath},
	})
}
