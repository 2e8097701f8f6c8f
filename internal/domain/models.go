package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// OperationKind names a document operation.
type OperationKind string

const (
	OperationOCR      OperationKind = "ocr"
	OperationOptimize OperationKind = "optimize"
	OperationMerge    OperationKind = "merge"
	OperationSplit    OperationKind = "split"
	OperationConvert  OperationKind = "convert"
)

// Status is the outcome of one operation invocation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Params is the typed configuration of one operation kind.
type Params interface {
	Operation() OperationKind
}

// OCRParams configures text recognition.
type OCRParams struct {
	Language       string `json:"language" yaml:"language"`
	DPI            int    `json:"dpi" yaml:"dpi"`
	LayoutMode     string `json:"layout_mode" yaml:"layout_mode"`
	TessdataPrefix string `json:"tessdata_prefix,omitempty" yaml:"tessdata_prefix"`
}

func (OCRParams) Operation() OperationKind { return OperationOCR }

// OptimizeParams configures PDF compression.
type OptimizeParams struct {
	Type          string `json:"type" yaml:"type"`
	DPI           int    `json:"dpi" yaml:"dpi"`
	Quality       int    `json:"quality" yaml:"quality"`
	MaxFileSizeMB int    `json:"max_file_size_mb,omitempty" yaml:"max_file_size_mb"`
}

func (OptimizeParams) Operation() OperationKind { return OperationOptimize }

// MergeParams lists the documents to concatenate, in order.
type MergeParams struct {
	Inputs []string `json:"inputs"`
}

func (MergeParams) Operation() OperationKind { return OperationMerge }

// SplitMode selects how a document is cut into parts.
type SplitMode string

const (
	SplitByStartPages SplitMode = "pages"
	SplitBySize       SplitMode = "size"
	SplitByBookmarks  SplitMode = "bookmarks"
	SplitExtract      SplitMode = "extract"
)

// SplitParams configures PDF splitting. Only the fields of the selected mode
// are consulted.
type SplitParams struct {
	Mode           SplitMode `json:"mode" yaml:"mode"`
	StartPages     string    `json:"start_pages,omitempty" yaml:"start_pages"`
	MaxPages       int       `json:"max_pages,omitempty" yaml:"max_pages"`
	PageRange      string    `json:"page_range,omitempty" yaml:"page_range"`
	NamingTemplate string    `json:"naming_template,omitempty" yaml:"naming_template"`
}

func (SplitParams) Operation() OperationKind { return OperationSplit }

// ConvertParams configures document conversion.
type ConvertParams struct {
	Format string `json:"format" yaml:"format"`
}

func (ConvertParams) Operation() OperationKind { return OperationConvert }

// WorkItem is one unit of batch work. It is created by the orchestrator and
// never modified afterwards.
type WorkItem struct {
	Index      int    `json:"index"`
	InputPath  string `json:"input_path"`
	OutputPath string `json:"output_path"`
	Params     Params `json:"params"`
}

// Name returns the identifier shown in progress output.
func (w WorkItem) Name() string {
	if w.InputPath == "" {
		return filepath.Base(w.OutputPath)
	}
	return filepath.Base(w.InputPath)
}

// ResultDetails carries optional facts about a successful run.
type ResultDetails struct {
	Pages       int      `json:"pages,omitempty"`
	InputBytes  int64    `json:"input_bytes,omitempty"`
	OutputBytes int64    `json:"output_bytes,omitempty"`
	Outputs     []string `json:"outputs,omitempty"`
	Method      string   `json:"method,omitempty"`
}

// ReductionPercent returns the size reduction between input and output.
func (d ResultDetails) ReductionPercent() float64 {
	if d.InputBytes <= 0 {
		return 0
	}
	return (1 - float64(d.OutputBytes)/float64(d.InputBytes)) * 100
}

// OperationResult is the outcome of one Single-Item Operation invocation.
// Exactly one of OutputPath and Err is set.
type OperationResult struct {
	Status         Status          `json:"status"`
	ProcessingTime time.Duration   `json:"processing_time"`
	OutputPath     string          `json:"output_path,omitempty"`
	Err            *OperationError `json:"error,omitempty"`
	Details        ResultDetails   `json:"details"`
}

// Success builds a successful result.
func Success(outputPath string, elapsed time.Duration, details ResultDetails) OperationResult {
	if outputPath == "" {
		panic("domain: successful result requires an output path")
	}
	return OperationResult{
		Status:         StatusSuccess,
		ProcessingTime: nonNegative(elapsed),
		OutputPath:     outputPath,
		Details:        details,
	}
}

// Failure builds a failed result.
func Failure(err *OperationError, elapsed time.Duration) OperationResult {
	if err == nil {
		panic("domain: failed result requires an error")
	}
	return OperationResult{
		Status:         StatusFailure,
		ProcessingTime: nonNegative(elapsed),
		Err:            err,
	}
}

// OK reports whether the operation succeeded.
func (r OperationResult) OK() bool {
	return r.Status == StatusSuccess
}

// Validate checks the status/error exclusivity invariant.
func (r OperationResult) Validate() error {
	hasOutput := r.OutputPath != ""
	hasErr := r.Err != nil
	switch {
	case hasOutput && hasErr:
		return errors.New("result has both an output path and an error")
	case !hasOutput && !hasErr:
		return errors.New("result has neither an output path nor an error")
	case hasOutput && r.Status != StatusSuccess:
		return fmt.Errorf("result with output path has status %q", r.Status)
	case hasErr && r.Status != StatusFailure:
		return fmt.Errorf("result with error has status %q", r.Status)
	case r.ProcessingTime < 0:
		return errors.New("result has negative processing time")
	}
	return nil
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// ValidationOutcome is the result of validating one raw parameter. When Err
// is set the remaining fields are void.
type ValidationOutcome struct {
	Value     string          `json:"value,omitempty"`
	Corrected bool            `json:"corrected,omitempty"`
	Warnings  []string        `json:"warnings,omitempty"`
	Err       *OperationError `json:"error,omitempty"`
}

// Accept builds an outcome for a usable value.
func Accept(value string, corrected bool, warnings ...string) ValidationOutcome {
	return ValidationOutcome{
		Value:     value,
		Corrected: corrected,
		Warnings:  append([]string(nil), warnings...),
	}
}

// Reject builds an outcome for an unrecoverable value.
func Reject(err *OperationError) ValidationOutcome {
	return ValidationOutcome{Err: err}
}

// OK reports whether the value was accepted.
func (o ValidationOutcome) OK() bool {
	return o.Err == nil
}
