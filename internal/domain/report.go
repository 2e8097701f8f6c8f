package domain

import (
	"fmt"
	"time"
)

// ReportItem pairs a work item with its recorded result.
type ReportItem struct {
	Item   WorkItem        `json:"item"`
	Result OperationResult `json:"result"`
}

// BatchReport is the aggregate of one batch run. Items are in processing
// order and the counts are derived from them.
type BatchReport struct {
	ID          string        `json:"id"`
	Operation   OperationKind `json:"operation"`
	StartedAt   time.Time     `json:"started_at"`
	Elapsed     time.Duration `json:"elapsed"`
	Total       int           `json:"total"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	Interrupted bool          `json:"interrupted,omitempty"`
	Items       []ReportItem  `json:"items"`
}

// NewBatchReport assembles a report from recorded items. It panics when an
// item violates the result invariants or is out of processing order, since
// that can only happen through a programming error.
func NewBatchReport(id string, op OperationKind, startedAt time.Time, elapsed time.Duration, items []ReportItem, interrupted bool) BatchReport {
	report := BatchReport{
		ID:          id,
		Operation:   op,
		StartedAt:   startedAt,
		Elapsed:     nonNegative(elapsed),
		Interrupted: interrupted,
		Items:       make([]ReportItem, len(items)),
	}
	copy(report.Items, items)

	for i, it := range report.Items {
		if err := it.Result.Validate(); err != nil {
			panic(fmt.Sprintf("domain: report item %d: %v", i, err))
		}
		if it.Item.Index != i {
			panic(fmt.Sprintf("domain: report item %d recorded with index %d", i, it.Item.Index))
		}
		if it.Result.OK() {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	report.Total = len(report.Items)

	if report.Succeeded+report.Failed != report.Total {
		panic("domain: inconsistent batch report counts")
	}
	return report
}

// PartialFailure reports whether some items failed. It is a reportable
// condition of a completed batch, not an error.
func (r BatchReport) PartialFailure() bool {
	return r.Failed > 0
}

// Failures returns the failed items in processing order.
func (r BatchReport) Failures() []ReportItem {
	var out []ReportItem
	for _, it := range r.Items {
		if !it.Result.OK() {
			out = append(out, it)
		}
	}
	return out
}

// ProcessingTime sums the per-item processing times.
func (r BatchReport) ProcessingTime() time.Duration {
	var total time.Duration
	for _, it := range r.Items {
		total += it.Result.ProcessingTime
	}
	return total
}

// SuccessRate returns the percentage of succeeded items (0 for empty batches).
func (r BatchReport) SuccessRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Succeeded) / float64(r.Total) * 100
}

// AverageTime returns the mean processing time per item.
func (r BatchReport) AverageTime() time.Duration {
	if r.Total == 0 {
		return 0
	}
	return r.ProcessingTime() / time.Duration(r.Total)
}
