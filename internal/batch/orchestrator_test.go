package batch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/domain"
	"github.com/docforge/docforge/internal/validate"
)

// fakeOp fails every input whose name contains "corrupt".
type fakeOp struct {
	calls  []string
	onCall func(item domain.WorkItem)
	result func(item domain.WorkItem) domain.OperationResult
}

func (f *fakeOp) Name() string              { return "fake" }
func (f *fakeOp) Kind() domain.OperationKind { return domain.OperationOptimize }

func (f *fakeOp) Execute(_ context.Context, item domain.WorkItem) domain.OperationResult {
	f.calls = append(f.calls, filepath.Base(item.InputPath))
	if f.onCall != nil {
		f.onCall(item)
	}
	if f.result != nil {
		return f.result(item)
	}
	if strings.Contains(item.InputPath, "corrupt") {
		return domain.Failure(domain.OperationFailed("cannot parse "+item.Name(), "Check that the file is a valid PDF"), time.Millisecond)
	}
	return domain.Success(item.OutputPath, time.Millisecond, domain.ResultDetails{})
}

type fakeValidator struct {
	reject map[string]*domain.OperationError
}

func (v fakeValidator) ValidateItem(item domain.WorkItem) []domain.ValidationOutcome {
	if err, ok := v.reject[filepath.Base(item.InputPath)]; ok {
		return []domain.ValidationOutcome{domain.Accept("x", false), domain.Reject(err)}
	}
	return []domain.ValidationOutcome{domain.Accept("x", false)}
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("%PDF-1.4\n"), 0o644))
	}
}

func TestRun_PartialFailure(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFiles(t, in, "a.pdf", "b.pdf", "c.pdf", "corrupt.pdf", "d.pdf", "e.pdf")

	paths, err := ExpandFolder(in, ".pdf")
	require.NoError(t, err)
	items := Plan(paths, InDir(out, "_optimized", ".pdf"), domain.OptimizeParams{Type: "standard", DPI: 150, Quality: 85})

	op := &fakeOp{}
	report, err := New(op).Run(context.Background(), items)
	require.NoError(t, err)

	assert.Equal(t, 6, report.Total)
	assert.Equal(t, 5, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.True(t, report.PartialFailure())
	assert.Equal(t, domain.OperationOptimize, report.Operation)
	assert.NotEmpty(t, report.ID)

	failures := report.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "corrupt.pdf", failures[0].Item.Name())
	assert.Equal(t, domain.KindOperationFailed, failures[0].Result.Err.Kind)
	assert.NotEmpty(t, failures[0].Result.Err.Suggestions)

	for _, it := range report.Items {
		assert.NoError(t, it.Result.Validate())
	}
}

func TestRun_EmptyFolder(t *testing.T) {
	paths, err := ExpandFolder(t.TempDir(), ".pdf")
	require.NoError(t, err)
	assert.Empty(t, paths)

	var events []domain.EventType
	report, err := New(&fakeOp{}, WithProgress(func(e domain.ProgressEvent) {
		events = append(events, e.Type)
	})).Run(context.Background(), Plan(paths, InDir("out", "", ""), domain.OptimizeParams{}))
	require.NoError(t, err)

	assert.Equal(t, 0, report.Total)
	assert.Equal(t, 0, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	assert.Empty(t, report.Items)
	assert.Equal(t, []domain.EventType{domain.EventBatchStart, domain.EventBatchComplete}, events)
}

func TestRun_DeterministicOrder(t *testing.T) {
	in := t.TempDir()
	writeFiles(t, in, "b.pdf", "B.pdf", "a.PDF", "c.txt", "_z.pdf")
	require.NoError(t, os.Mkdir(filepath.Join(in, "sub.pdf"), 0o755))

	paths, err := ExpandFolder(in, ".pdf")
	require.NoError(t, err)

	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	assert.Equal(t, []string{"B.pdf", "_z.pdf", "a.PDF", "b.pdf"}, names)

	op := &fakeOp{}
	report, err := New(op).Run(context.Background(), Plan(paths, InDir(t.TempDir(), "_x", ""), domain.OptimizeParams{}))
	require.NoError(t, err)
	assert.Equal(t, names, op.calls)
	for i, it := range report.Items {
		assert.Equal(t, i, it.Item.Index)
	}
}

func TestRun_ValidationFailureDoesNotBlockLaterItems(t *testing.T) {
	inputs := ExpandList([]string{"one.pdf", "two.pdf", "three.pdf"})
	items := Plan(inputs, InDir("out", "_ocr", ".txt"), domain.OCRParams{})

	op := &fakeOp{}
	v := fakeValidator{reject: map[string]*domain.OperationError{
		"two.pdf": domain.InvalidParameter("quality 150 is out of range 1-100"),
	}}

	report, err := New(op, WithValidator(v)).Run(context.Background(), items)
	require.NoError(t, err)

	assert.Equal(t, []string{"one.pdf", "three.pdf"}, op.calls, "rejected item must not reach the operation")
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Succeeded)
	require.False(t, report.Items[1].Result.OK())
	assert.Equal(t, domain.KindInvalidParameter, report.Items[1].Result.Err.Kind)
}

func TestRun_ProgressEvents(t *testing.T) {
	items := Plan(ExpandList([]string{"a.pdf", "corrupt.pdf"}), InDir("out", "_o", ""), domain.OptimizeParams{})

	var events []domain.ProgressEvent
	_, err := New(&fakeOp{}, WithProgress(func(e domain.ProgressEvent) {
		events = append(events, e)
	})).Run(context.Background(), items)
	require.NoError(t, err)

	require.Len(t, events, 6)
	assert.Equal(t, domain.EventBatchStart, events[0].Type)
	assert.Equal(t, domain.EventItemStart, events[1].Type)
	assert.Equal(t, domain.EventItemComplete, events[2].Type)
	assert.Equal(t, 1, events[2].Index)
	assert.Equal(t, 2, events[2].Total)
	assert.True(t, events[2].Result.OK())
	assert.Equal(t, 2, events[4].Index)
	assert.False(t, events[4].Result.OK())
	assert.Equal(t, domain.EventBatchComplete, events[5].Type)
}

func TestRun_ProgressElapsedIsCumulative(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * 50 * time.Millisecond)
	}

	items := Plan(ExpandList([]string{"a.pdf", "b.pdf", "c.pdf"}), InDir("out", "_o", ""), domain.OptimizeParams{})

	var completed []domain.ProgressEvent
	report, err := New(&fakeOp{}, WithClock(clock), WithProgress(func(e domain.ProgressEvent) {
		if e.Type == domain.EventItemComplete {
			completed = append(completed, e)
		}
	})).Run(context.Background(), items)
	require.NoError(t, err)

	require.Len(t, completed, 3)
	for i, e := range completed {
		assert.Equal(t, 50*time.Millisecond, e.Result.ProcessingTime)
		if i > 0 {
			assert.Greater(t, e.Elapsed, completed[i-1].Elapsed, "elapsed must grow across items")
		}
	}
	assert.Equal(t, 200*time.Millisecond, completed[0].Elapsed)
	assert.Equal(t, 400*time.Millisecond, completed[1].Elapsed)
	assert.Equal(t, 600*time.Millisecond, completed[2].Elapsed)
	assert.LessOrEqual(t, completed[2].Elapsed, report.Elapsed)
}

func TestRun_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	items := Plan(ExpandList([]string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"}), InDir("out", "_o", ""), domain.OptimizeParams{})
	op := &fakeOp{onCall: func(item domain.WorkItem) {
		if item.Index == 1 {
			cancel()
		}
	}}

	report, err := New(op).Run(ctx, items)
	require.ErrorIs(t, err, context.Canceled)

	assert.True(t, report.Interrupted)
	assert.Equal(t, 2, report.Total, "the item in flight completes, later items are skipped")
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, op.calls)
	assert.Equal(t, report.Total, report.Succeeded+report.Failed)
}

func TestRun_DuplicateOutputsRejected(t *testing.T) {
	items := Plan(
		ExpandList([]string{"x/report.pdf", "y/report.pdf", "z/other.pdf"}),
		InDir("out", "_small", ""),
		domain.OptimizeParams{},
	)

	op := &fakeOp{}
	report, err := New(op).Run(context.Background(), items)
	require.NoError(t, err)

	assert.Equal(t, []string{"report.pdf", "other.pdf"}, op.calls)
	require.False(t, report.Items[1].Result.OK())
	assert.Equal(t, domain.KindInvalidParameter, report.Items[1].Result.Err.Kind)
	assert.True(t, report.Items[0].Result.OK())
	assert.True(t, report.Items[2].Result.OK())
}

func TestRun_OutputOverwritingInputRejected(t *testing.T) {
	items := []domain.WorkItem{
		{InputPath: "docs/a.pdf", OutputPath: "docs/b.pdf", Params: domain.OptimizeParams{}},
		{Index: 1, InputPath: "docs/b.pdf", OutputPath: "out/b.pdf", Params: domain.OptimizeParams{}},
	}

	report, err := New(&fakeOp{}).Run(context.Background(), items)
	require.NoError(t, err)
	assert.False(t, report.Items[0].Result.OK())
	assert.Contains(t, report.Items[0].Result.Err.Message, "overwrite an input")
	assert.True(t, report.Items[1].Result.OK())
}

func TestRun_InvalidOperationResultIsNormalized(t *testing.T) {
	op := &fakeOp{result: func(domain.WorkItem) domain.OperationResult {
		return domain.OperationResult{Status: domain.StatusSuccess}
	}}
	items := Plan(ExpandList([]string{"a.pdf"}), InDir("out", "_o", ""), domain.OptimizeParams{})

	report, err := New(op).Run(context.Background(), items)
	require.NoError(t, err)
	require.Equal(t, 1, report.Failed)
	assert.Equal(t, domain.KindOperationFailed, report.Items[0].Result.Err.Kind)
}

func TestRun_WithRealValidator(t *testing.T) {
	in := t.TempDir()
	writeFiles(t, in, "good.pdf")
	items := Plan(
		[]string{filepath.Join(in, "good.pdf"), filepath.Join(in, "documnet.pdf")},
		InDir(t.TempDir(), "_ocr", ".txt"),
		domain.OCRParams{Language: "eng", DPI: 300, LayoutMode: "standard"},
	)

	report, err := New(&fakeOp{}, WithValidator(validate.New())).Run(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, domain.KindInputNotFound, report.Items[1].Result.Err.Kind)
}

func TestRun_UsesClockAndID(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	items := Plan(ExpandList([]string{"a.pdf"}), InDir("out", "_o", ""), domain.OptimizeParams{})
	report, err := New(&fakeOp{}, WithClock(clock), WithIDGenerator(func() string { return "run-1" })).
		Run(context.Background(), items)
	require.NoError(t, err)

	assert.Equal(t, "run-1", report.ID)
	assert.Equal(t, base.Add(time.Second), report.StartedAt)
	assert.Equal(t, time.Second, report.Items[0].Result.ProcessingTime)
	// start, item start, execute start and end, item complete, report
	assert.Equal(t, 5*time.Second, report.Elapsed)
}

func TestExecute_Single(t *testing.T) {
	o := New(&fakeOp{})
	res := o.Execute(context.Background(), domain.WorkItem{InputPath: "corrupt.pdf", OutputPath: "out.pdf", Params: domain.OptimizeParams{}})
	assert.False(t, res.OK())
	assert.Equal(t, domain.KindOperationFailed, res.Err.Kind)
}

func TestExpandList_KeepsOrderAndDuplicates(t *testing.T) {
	assert.Equal(t, []string{"b.pdf", "a.pdf", "b.pdf"}, ExpandList([]string{"b.pdf", " a.pdf ", "", "b.pdf"}))
	assert.Equal(t, []string{"x.pdf", "y.pdf"}, SplitList("x.pdf, y.pdf,"))
}

func TestExpandInput(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "2.pdf", "1.pdf")

	paths, err := ExpandInput(dir, ".pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "1.pdf"), filepath.Join(dir, "2.pdf")}, paths)

	paths, err = ExpandInput("b.pdf,a.pdf", ".pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.pdf", "a.pdf"}, paths)

	_, err = ExpandFolder(filepath.Join(dir, "missing"), ".pdf")
	require.Error(t, err)

	_, err = ExpandInput(filepath.Join(dir, "missing"), ".pdf")
	require.Error(t, err)

	paths, err = ExpandInput(filepath.Join(dir, "missing.pdf"), ".pdf")
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}

func TestSubDir(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "report"), SubDir("out")("in/report.pdf"))
	assert.Equal(t, filepath.Join("out", "report.docx"), InDir("out", "", ".docx")("in/report.pdf"))
}
