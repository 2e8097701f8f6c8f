// Package ocr recognizes text in scanned PDFs with Tesseract.
package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Request is one page image to recognize.
type Request struct {
	Image          []byte // PNG encoded
	Languages      []string
	DPI            int
	PageSegMode    int
	TessdataPrefix string
}

// Recognition is the text found on one page.
type Recognition struct {
	Text       string
	Confidence float64 // mean word confidence, 0-1
}

// Engine recognizes text in page images.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, req Request) (Recognition, error)
}

// TesseractEngine implements Engine using the gosseract client.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine constructs a Tesseract-backed OCR engine.
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{clientFactory: gosseract.NewClient}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize performs OCR on a single page image. A fresh client is used per
// page so that no state leaks between documents.
func (e *TesseractEngine) Recognize(ctx context.Context, req Request) (Recognition, error) {
	select {
	case <-ctx.Done():
		return Recognition{}, ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if req.TessdataPrefix != "" {
		c.SetTessdataPrefix(req.TessdataPrefix)
	}
	if len(req.Languages) > 0 {
		if err := c.SetLanguage(req.Languages...); err != nil {
			return Recognition{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if req.PageSegMode > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(req.PageSegMode)); err != nil {
			return Recognition{}, fmt.Errorf("set page segmentation mode: %w", err)
		}
	}
	if req.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(req.DPI)); err != nil {
			return Recognition{}, fmt.Errorf("set dpi: %w", err)
		}
	}
	if err := c.SetImageFromBytes(req.Image); err != nil {
		return Recognition{}, fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return Recognition{}, fmt.Errorf("recognize text: %w", err)
	}

	return Recognition{
		Text:       strings.TrimSpace(text),
		Confidence: meanConfidence(c),
	}, nil
}

func meanConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence / 100.0
	}
	return sum / float64(len(boxes))
}
