// Package batch expands inputs into work items and runs a single-item
// operation over them, recording one result per item.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docforge/docforge/internal/domain"
	"github.com/docforge/docforge/internal/observability"
)

// Orchestrator runs an operation over work items sequentially. A failing
// item never stops the batch.
type Orchestrator struct {
	op        domain.Operation
	validator domain.ItemValidator
	progress  domain.ProgressFunc
	logger    *observability.Logger
	now       func() time.Time
	newID     func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithValidator checks each item before the operation runs.
func WithValidator(v domain.ItemValidator) Option {
	return func(o *Orchestrator) {
		o.validator = v
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn domain.ProgressFunc) Option {
	return func(o *Orchestrator) {
		o.progress = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *observability.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithIDGenerator replaces the batch run ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) {
		o.newID = fn
	}
}

// New creates an orchestrator for op.
func New(op domain.Operation, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		op:     op,
		logger: observability.Nop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.WithOperation(op.Name())
	return o
}

// Run processes items in order and returns the batch report. Cancellation is
// observed between items: the report of the items processed so far is
// returned, marked interrupted, together with the context's error.
func (o *Orchestrator) Run(ctx context.Context, items []domain.WorkItem) (domain.BatchReport, error) {
	runID := o.newID()
	ctx = observability.ContextWithRunID(ctx, runID)
	log := o.logger.WithBatch(runID, len(items))

	start := o.now()
	total := len(items)
	conflicts := collisions(items)
	recorded := make([]domain.ReportItem, 0, total)
	interrupted := false

	log.Info().Msg("Starting batch")
	o.emit(domain.ProgressEvent{Type: domain.EventBatchStart, Total: total})

	for i, item := range items {
		select {
		case <-ctx.Done():
			interrupted = true
		default:
		}
		if interrupted {
			log.Warn().Int("processed", i).Msg("Batch interrupted")
			break
		}

		item.Index = i
		o.emit(domain.ProgressEvent{Type: domain.EventItemStart, Index: i + 1, Total: total, Item: item, Elapsed: o.now().Sub(start)})

		var res domain.OperationResult
		if msg, ok := conflicts[i]; ok {
			res = domain.Failure(domain.InvalidParameter(msg, "Use a different output folder or rename the input"), 0)
		} else {
			res = o.execute(ctx, item)
		}

		recorded = append(recorded, domain.ReportItem{Item: item, Result: res})
		o.logResult(log, item, res)
		o.emit(domain.ProgressEvent{
			Type:    domain.EventItemComplete,
			Index:   i + 1,
			Total:   total,
			Item:    item,
			Elapsed: o.now().Sub(start),
			Result:  res,
		})
	}

	report := domain.NewBatchReport(runID, o.op.Kind(), start, o.now().Sub(start), recorded, interrupted)

	log.Info().
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Dur("elapsed", report.Elapsed).
		Bool("interrupted", report.Interrupted).
		Msg("Batch complete")
	o.emit(domain.ProgressEvent{Type: domain.EventBatchComplete, Total: total, Elapsed: report.Elapsed})

	if interrupted {
		return report, ctx.Err()
	}
	return report, nil
}

// Execute validates and runs one item outside of a batch.
func (o *Orchestrator) Execute(ctx context.Context, item domain.WorkItem) domain.OperationResult {
	res := o.execute(ctx, item)
	o.logResult(o.logger, item, res)
	return res
}

func (o *Orchestrator) execute(ctx context.Context, item domain.WorkItem) domain.OperationResult {
	start := o.now()

	// A rejected item keeps the validator's error kind.
	if o.validator != nil {
		for _, outcome := range o.validator.ValidateItem(item) {
			if !outcome.OK() {
				return domain.Failure(outcome.Err, o.now().Sub(start))
			}
		}
	}

	res := o.op.Execute(ctx, item)
	elapsed := o.now().Sub(start)

	if err := res.Validate(); err != nil {
		o.logger.Error().Str("input", item.InputPath).Err(err).Msg("Operation returned an invalid result")
		if res.Err != nil {
			return domain.Failure(res.Err, elapsed)
		}
		return domain.Failure(domain.OperationFailed(fmt.Sprintf("%s produced no output", o.op.Name())), elapsed)
	}

	if res.OK() {
		return domain.Success(res.OutputPath, elapsed, res.Details)
	}
	return domain.Failure(res.Err, elapsed)
}

func (o *Orchestrator) logResult(log *observability.Logger, item domain.WorkItem, res domain.OperationResult) {
	if res.OK() {
		log.Info().
			Str("input", item.InputPath).
			Str("output", res.OutputPath).
			Dur("elapsed", res.ProcessingTime).
			Msg("Item succeeded")
		return
	}
	log.Warn().
		Str("input", item.InputPath).
		Str("kind", string(res.Err.Kind)).
		Str("error", res.Err.Message).
		Dur("elapsed", res.ProcessingTime).
		Msg("Item failed")
}

func (o *Orchestrator) emit(evt domain.ProgressEvent) {
	if o.progress != nil {
		o.progress(evt)
	}
}
