package ui

import (
	"fmt"
	"math"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/docforge/docforge/internal/domain"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// BatchProgress renders orchestrator progress events. On a terminal every
// item gets its own line above an overall bar; otherwise one plain line is
// printed per finished item.
type BatchProgress struct {
	ui       *UI
	label    string
	progress *mpb.Progress
	overall  *mpb.Bar

	mu      sync.Mutex
	current *itemLine
}

type itemLine struct {
	mu     sync.Mutex
	prefix string
	text   string
	done   bool
	bar    *mpb.Bar
}

func (l *itemLine) set(text string) {
	l.mu.Lock()
	l.text = text
	l.mu.Unlock()
}

func (l *itemLine) finish(text string) {
	l.mu.Lock()
	l.text = text
	l.done = true
	l.mu.Unlock()
}

func (l *itemLine) get() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done {
		return l.text
	}
	return " " + l.prefix + " " + l.text
}

// NewBatchProgress creates a progress renderer labelled with the operation.
func (u *UI) NewBatchProgress(label string) *BatchProgress {
	return &BatchProgress{ui: u, label: label}
}

// Handle consumes one orchestrator event.
func (b *BatchProgress) Handle(evt domain.ProgressEvent) {
	switch evt.Type {
	case domain.EventBatchStart:
		b.start(evt.Total)
	case domain.EventItemStart:
		b.itemStart(evt)
	case domain.EventItemComplete:
		b.itemComplete(evt)
	case domain.EventBatchComplete:
		b.Close()
	}
}

// Page reports OCR page progress of the running item.
func (b *BatchProgress) Page(item domain.WorkItem, page, total int) {
	b.mu.Lock()
	line := b.current
	b.mu.Unlock()
	if line != nil {
		line.set(fmt.Sprintf("%s page %d/%d", item.Name(), page, total))
	}
}

func (b *BatchProgress) start(total int) {
	if total == 0 || !b.ui.tty {
		return
	}
	b.progress = mpb.New(mpb.WithWidth(48), mpb.WithOutput(b.ui.Err))
	b.overall = b.progress.AddBar(int64(total),
		mpb.BarPriority(math.MaxInt32),
		mpb.PrependDecorators(
			decor.Name(b.label, decor.WC{W: len(b.label) + 1, C: decor.DSyncSpaceR}),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WC{W: 5}),
			decor.Elapsed(decor.ET_STYLE_GO, decor.WC{W: 12}),
		),
	)
}

func (b *BatchProgress) itemStart(evt domain.ProgressEvent) {
	if b.progress == nil {
		return
	}
	line := &itemLine{
		prefix: fmt.Sprintf("[%d/%d]", evt.Index, evt.Total),
		text:   evt.Item.Name(),
	}
	line.bar = b.progress.New(1, mpb.NopStyle(),
		mpb.PrependDecorators(
			decor.OnComplete(decor.Spinner(spinnerFrames), ""),
			decor.Any(func(decor.Statistics) string { return line.get() }),
		),
	)

	b.mu.Lock()
	b.current = line
	b.mu.Unlock()
}

func (b *BatchProgress) itemComplete(evt domain.ProgressEvent) {
	text := ItemLine(evt.Index, evt.Total, evt.Item.Name(), evt.Result)
	if !evt.Result.OK() {
		text += ": " + evt.Result.Err.Message
	}

	if b.progress == nil {
		fmt.Fprintln(b.ui.Out, text)
		return
	}

	b.mu.Lock()
	line := b.current
	b.current = nil
	b.mu.Unlock()

	if line != nil {
		line.finish(text)
		line.bar.Increment()
	}
	b.overall.Increment()
}

// Close waits for the bars to finish drawing. It is safe to call twice.
func (b *BatchProgress) Close() {
	if b.progress == nil {
		return
	}
	b.mu.Lock()
	if b.current != nil {
		b.current.bar.Abort(false)
		b.current = nil
	}
	b.mu.Unlock()

	b.overall.Abort(false)
	b.progress.Wait()
	b.progress = nil
}
