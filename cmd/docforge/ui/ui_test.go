package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/domain"
)

func sampleReport() domain.BatchReport {
	items := []domain.ReportItem{
		{
			Item:   domain.WorkItem{Index: 0, InputPath: "in/a.pdf", OutputPath: "out/a_optimized.pdf"},
			Result: domain.Success("out/a_optimized.pdf", 1200*time.Millisecond, domain.ResultDetails{InputBytes: 2048, OutputBytes: 1024}),
		},
		{
			Item:   domain.WorkItem{Index: 1, InputPath: "in/b.pdf", OutputPath: "out/b_optimized.pdf"},
			Result: domain.Failure(domain.OperationFailed("file is corrupted", "Repair the file and retry"), 300*time.Millisecond),
		},
	}
	return domain.NewBatchReport("run-1", domain.OperationOptimize, time.Now(), 2*time.Second, items, false)
}

func TestItemLine(t *testing.T) {
	ok := domain.Success("out.pdf", 1500*time.Millisecond, domain.ResultDetails{})
	assert.Equal(t, "[3/10] ✓ a.pdf (1.5s)", ItemLine(3, 10, "a.pdf", ok))

	failed := domain.Failure(domain.OperationFailed("boom"), 20*time.Millisecond)
	assert.Equal(t, "[1/2] ✗ b.pdf (20ms)", ItemLine(1, 2, "b.pdf", failed))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1.5m"},
		{3 * time.Hour, "3.0h"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in))
	}
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.0 KB", FormatBytes(1024))
	assert.Equal(t, "1.5 MB", FormatBytes(1536*1024))
	assert.Equal(t, "2.0 GB", FormatBytes(2<<30))
}

func TestTable_NoColor(t *testing.T) {
	var buf bytes.Buffer
	u := NewWriter(&buf)

	u.Table([]string{"File", "Status"}, [][]string{{"a.pdf", "✓ OK"}, {"long-name.pdf", "✗"}})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "+---------------+--------+", lines[0])
	assert.Equal(t, "| File          | Status |", lines[1])
	assert.Equal(t, "| a.pdf         | ✓ OK   |", lines[3])
	assert.Equal(t, lines[0], lines[5])
}

func TestDisplayWidth_IgnoresANSI(t *testing.T) {
	assert.Equal(t, 2, displayWidth("\x1b[32mOK\x1b[0m"))
	assert.Equal(t, 4, displayWidth("✓ OK"))
}

func TestResults(t *testing.T) {
	var buf bytes.Buffer
	u := NewWriter(&buf)

	u.Results(sampleReport())

	out := buf.String()
	assert.Contains(t, out, "a.pdf")
	assert.Contains(t, out, "2.0 KB → 1.0 KB (50.0%)")
	assert.Contains(t, out, "✗ OperationFailed")
	assert.Contains(t, out, "file is corrupted")
}

func TestResults_Empty(t *testing.T) {
	var buf bytes.Buffer
	u := NewWriter(&buf)

	u.Results(domain.NewBatchReport("run-2", domain.OperationOCR, time.Now(), 0, nil, false))

	assert.Contains(t, buf.String(), "No PDF files found to process")
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	u := NewWriter(&buf)

	u.Summary(sampleReport())

	out := buf.String()
	assert.Contains(t, out, "Run: run-1")
	assert.Contains(t, out, "Processed: 2 file(s)")
	assert.Contains(t, out, "Succeeded: 1")
	assert.Contains(t, out, "Failed: 1")
	assert.Contains(t, out, "Success rate: 50.0%")
	assert.Contains(t, out, "• Repair the file and retry")
	assert.NotContains(t, out, "Interrupted")
}

func TestSummary_Interrupted(t *testing.T) {
	var buf bytes.Buffer
	u := NewWriter(&buf)

	r := sampleReport()
	r.Interrupted = true
	u.Summary(r)

	assert.Contains(t, buf.String(), "Interrupted after 2 item(s)")
}

func TestBatchProgress_PlainLines(t *testing.T) {
	var buf bytes.Buffer
	u := NewWriter(&buf)
	p := u.NewBatchProgress("Batch optimize")

	report := sampleReport()
	p.Handle(domain.ProgressEvent{Type: domain.EventBatchStart, Total: 2})
	for i, it := range report.Items {
		p.Handle(domain.ProgressEvent{Type: domain.EventItemStart, Index: i + 1, Total: 2, Item: it.Item})
		p.Page(it.Item, 1, 3)
		p.Handle(domain.ProgressEvent{Type: domain.EventItemComplete, Index: i + 1, Total: 2, Item: it.Item, Result: it.Result})
	}
	p.Handle(domain.ProgressEvent{Type: domain.EventBatchComplete, Total: 2})
	p.Close()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[1/2] ✓ a.pdf (1.2s)", lines[0])
	assert.Equal(t, "[2/2] ✗ b.pdf (300ms): file is corrupted", lines[1])
}

func TestOperationError(t *testing.T) {
	var buf bytes.Buffer
	u := NewWriter(&buf)

	u.OperationError(domain.InputNotFound("file not found: documnet.pdf", "Did you mean 'document.pdf'?"))

	out := buf.String()
	assert.Contains(t, out, "✗ InputNotFound: file not found: documnet.pdf")
	assert.Contains(t, out, "  • Did you mean 'document.pdf'?")
}
