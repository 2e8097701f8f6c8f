// Package docforge is the programmatic API of DocForge. Every single-item
// call returns an OperationResult; expected failures are carried in the
// result, never returned as errors.
package docforge

import (
	"context"
	"strings"

	"github.com/docforge/docforge/internal/batch"
	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/convert"
	"github.com/docforge/docforge/internal/domain"
	"github.com/docforge/docforge/internal/ocr"
	"github.com/docforge/docforge/internal/observability"
	"github.com/docforge/docforge/internal/pdf"
	"github.com/docforge/docforge/internal/validate"
)

type (
	OperationResult = domain.OperationResult
	OperationError  = domain.OperationError
	BatchReport     = domain.BatchReport
	ReportItem      = domain.ReportItem
	WorkItem        = domain.WorkItem
	ProgressEvent   = domain.ProgressEvent
	ProgressFunc    = domain.ProgressFunc
	OCRParams       = domain.OCRParams
	OptimizeParams  = domain.OptimizeParams
	SplitParams     = domain.SplitParams
	ConvertParams   = domain.ConvertParams
	Config          = config.Config
)

// Split modes.
const (
	SplitByStartPages = domain.SplitByStartPages
	SplitBySize       = domain.SplitBySize
	SplitByBookmarks  = domain.SplitByBookmarks
	SplitExtract      = domain.SplitExtract
)

// Output name suffixes used by the batch calls.
const (
	ocrSuffix      = "_ocr"
	optimizeSuffix = "_optimized"
)

// ReportSink receives every finished batch report, including interrupted ones.
type ReportSink func(ctx context.Context, report BatchReport) error

// Client runs DocForge operations with one configuration.
type Client struct {
	cfg       *config.Config
	logger    *observability.Logger
	validator *validate.Validator
	progress  domain.ProgressFunc
	onPage    ocr.PageFunc
	onWarning func(string)
	sink      ReportSink
	engine    ocr.Engine
	ops       map[domain.OperationKind]domain.Operation
}

// Option configures a Client.
type Option func(*Client)

// WithConfig sets the defaults applied to zero-valued parameters.
func WithConfig(cfg *config.Config) Option {
	return func(c *Client) {
		if cfg != nil {
			c.cfg = cfg
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *observability.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithProgress receives batch progress events.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Client) { c.progress = fn }
}

// WithPageProgress receives per-page OCR progress.
func WithPageProgress(fn func(item WorkItem, page, total int)) Option {
	return func(c *Client) { c.onPage = fn }
}

// WithWarnings receives auto-correction warnings such as
// "corrected language 'en' to 'eng'".
func WithWarnings(fn func(string)) Option {
	return func(c *Client) { c.onWarning = fn }
}

// WithReportSink receives each batch report, for example to store it.
func WithReportSink(fn ReportSink) Option {
	return func(c *Client) { c.sink = fn }
}

// WithOCREngine replaces the Tesseract engine.
func WithOCREngine(e ocr.Engine) Option {
	return func(c *Client) { c.engine = e }
}

// WithOperation replaces the implementation of one operation kind.
func WithOperation(op domain.Operation) Option {
	return func(c *Client) { c.ops[op.Kind()] = op }
}

// New creates a Client. Without WithConfig the built-in defaults are used.
func New(opts ...Option) *Client {
	c := &Client{
		cfg:       config.DefaultConfig(),
		logger:    observability.Nop(),
		validator: validate.New(validate.WithPageCounter(pdf.PageCount)),
		ops:       make(map[domain.OperationKind]domain.Operation),
	}
	for _, opt := range opts {
		opt(c)
	}

	defaults := map[domain.OperationKind]func() domain.Operation{
		domain.OperationOCR: func() domain.Operation {
			ocrOpts := []ocr.Option{ocr.WithLogger(c.logger), ocr.WithPageProgress(c.onPage)}
			if c.engine != nil {
				ocrOpts = append(ocrOpts, ocr.WithEngine(c.engine))
			}
			return ocr.NewOperation(ocrOpts...)
		},
		domain.OperationOptimize: func() domain.Operation { return pdf.NewOptimizer(c.logger) },
		domain.OperationMerge:    func() domain.Operation { return pdf.NewMerger(c.logger) },
		domain.OperationSplit:    func() domain.Operation { return pdf.NewSplitter(c.logger) },
		domain.OperationConvert:  func() domain.Operation { return convert.NewConverter(nil, c.logger) },
	}
	for kind, build := range defaults {
		if _, ok := c.ops[kind]; !ok {
			c.ops[kind] = build()
		}
	}
	return c
}

// Config returns the client's configuration.
func (c *Client) Config() *config.Config {
	return c.cfg
}

// OCR recognizes the text of input. output ends in .pdf or .txt.
func (c *Client) OCR(ctx context.Context, input, output string, p OCRParams) OperationResult {
	return c.single(ctx, domain.WorkItem{InputPath: input, OutputPath: output, Params: c.ocrParams(p)})
}

// Optimize reduces the size of input.
func (c *Client) Optimize(ctx context.Context, input, output string, p OptimizeParams) OperationResult {
	return c.single(ctx, domain.WorkItem{InputPath: input, OutputPath: output, Params: c.optimizeParams(p)})
}

// Merge concatenates inputs, in order, into output.
func (c *Client) Merge(ctx context.Context, inputs []string, output string) OperationResult {
	item := domain.WorkItem{OutputPath: output, Params: domain.MergeParams{Inputs: inputs}}
	if len(inputs) > 0 {
		item.InputPath = inputs[0]
	}
	return c.single(ctx, item)
}

// Split cuts input into parts written to outputDir.
func (c *Client) Split(ctx context.Context, input, outputDir string, p SplitParams) OperationResult {
	return c.single(ctx, domain.WorkItem{InputPath: input, OutputPath: outputDir, Params: c.splitParams(p)})
}

// Convert writes the text of input to output in p.Format.
func (c *Client) Convert(ctx context.Context, input, output string, p ConvertParams) OperationResult {
	return c.single(ctx, domain.WorkItem{InputPath: input, OutputPath: output, Params: c.convertParams(p)})
}

// BatchOCR runs OCR over every PDF of input (a folder or a comma separated
// list) and writes <name>_ocr.pdf files to outputDir.
func (c *Client) BatchOCR(ctx context.Context, input, outputDir string, p OCRParams) (BatchReport, error) {
	return c.runBatch(ctx, input, batch.InDir(outputDir, ocrSuffix, ".pdf"), c.ocrParams(p))
}

// BatchOptimize optimizes every PDF of input into <name>_optimized.pdf.
// Files larger than p.MaxFileSizeMB fail validation.
func (c *Client) BatchOptimize(ctx context.Context, input, outputDir string, p OptimizeParams) (BatchReport, error) {
	if p.MaxFileSizeMB == 0 {
		p.MaxFileSizeMB = c.cfg.Optimize.MaxFileSizeMB
	}
	return c.runBatch(ctx, input, batch.InDir(outputDir, optimizeSuffix, ".pdf"), c.optimizeParams(p))
}

// BatchSplit splits every PDF of input into its own sub folder of outputDir.
func (c *Client) BatchSplit(ctx context.Context, input, outputDir string, p SplitParams) (BatchReport, error) {
	return c.runBatch(ctx, input, batch.SubDir(outputDir), c.splitParams(p))
}

// BatchConvert converts every PDF of input into outputDir.
func (c *Client) BatchConvert(ctx context.Context, input, outputDir string, p ConvertParams) (BatchReport, error) {
	params := c.convertParams(p)
	format := params.Format
	if out := validate.Format(format); out.OK() {
		format = out.Value
	}
	return c.runBatch(ctx, input, batch.InDir(outputDir, "", "."+format), params)
}

func (c *Client) single(ctx context.Context, item domain.WorkItem) OperationResult {
	item.Params = c.normalize(item.Params)
	return c.orchestrator(item.Params.Operation()).Execute(ctx, item)
}

func (c *Client) runBatch(ctx context.Context, input string, namer batch.OutputNamer, params domain.Params) (BatchReport, error) {
	inputs, err := batch.ExpandInput(input, ".pdf")
	if err != nil {
		return BatchReport{}, err
	}

	params = c.normalize(params)
	items := batch.Plan(inputs, namer, params)
	report, runErr := c.orchestrator(params.Operation()).Run(ctx, items)

	if c.sink != nil {
		// the run's context may already be cancelled
		if err := c.sink(context.WithoutCancel(ctx), report); err != nil {
			c.logger.Warn().Str("run_id", report.ID).Err(err).Msg("Failed to record batch report")
		}
	}
	return report, runErr
}

func (c *Client) orchestrator(kind domain.OperationKind) *batch.Orchestrator {
	return batch.New(c.ops[kind],
		batch.WithValidator(c.validator),
		batch.WithProgress(c.progress),
		batch.WithLogger(c.logger),
	)
}

func (c *Client) normalize(p domain.Params) domain.Params {
	normalized, warnings := c.validator.Normalize(p)
	for _, w := range warnings {
		c.logger.Info().Str("operation", string(p.Operation())).Msg(w)
		if c.onWarning != nil {
			c.onWarning(w)
		}
	}
	return normalized
}

func (c *Client) ocrParams(p OCRParams) OCRParams {
	if strings.TrimSpace(p.Language) == "" {
		p.Language = c.cfg.OCR.Language
	}
	if p.DPI == 0 {
		p.DPI = c.cfg.OCR.DPI
	}
	if p.LayoutMode == "" {
		p.LayoutMode = c.cfg.OCR.LayoutMode
	}
	if p.TessdataPrefix == "" {
		p.TessdataPrefix = c.cfg.OCR.TessdataPrefix
	}
	return p
}

func (c *Client) optimizeParams(p OptimizeParams) OptimizeParams {
	if p.Type == "" {
		p.Type = c.cfg.Optimize.Type
	}
	if p.DPI == 0 {
		p.DPI = c.cfg.Optimize.DPI
	}
	if p.Quality == 0 {
		p.Quality = c.cfg.Optimize.Quality
	}
	return p
}

func (c *Client) splitParams(p SplitParams) SplitParams {
	if p.NamingTemplate == "" && p.Mode == domain.SplitByStartPages {
		p.NamingTemplate = c.cfg.Split.NamingTemplate
	}
	return p
}

func (c *Client) convertParams(p ConvertParams) ConvertParams {
	if p.Format == "" {
		p.Format = c.cfg.Convert.Format
	}
	return p
}
