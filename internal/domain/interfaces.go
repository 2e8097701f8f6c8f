package domain

import (
	"context"
	"time"
)

// Operation performs one unit of document work. Implementations must not
// share state between calls and must never leave a partial file at the
// item's output path: the output is either complete or absent.
type Operation interface {
	// Name identifies the operation in logs and reports
	Name() string

	// Kind reports which parameters the operation expects
	Kind() OperationKind

	// Execute runs the operation for one item. Expected failures are returned
	// as a failed result, never as a panic.
	Execute(ctx context.Context, item WorkItem) OperationResult
}

// ItemValidator checks every parameter relevant to a work item before it runs.
type ItemValidator interface {
	ValidateItem(item WorkItem) []ValidationOutcome
}

// EventType represents the type of progress event
type EventType string

const (
	EventBatchStart    EventType = "batch_start"
	EventItemStart     EventType = "item_start"
	EventItemComplete  EventType = "item_complete"
	EventBatchComplete EventType = "batch_complete"
)

// ProgressEvent is emitted by the orchestrator while a batch runs. Index is
// 1-based for item events. Elapsed is the time since the batch started; the
// item's own time is in Result.ProcessingTime.
type ProgressEvent struct {
	Type    EventType       `json:"type"`
	Index   int             `json:"index"`
	Total   int             `json:"total"`
	Item    WorkItem        `json:"item"`
	Elapsed time.Duration   `json:"elapsed"`
	Result  OperationResult `json:"result"`
}

// ProgressFunc receives progress events. It is called synchronously from the
// goroutine running the batch.
type ProgressFunc func(ProgressEvent)
