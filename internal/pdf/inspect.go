package pdf

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/docforge/docforge/internal/fsutil"
)

const (
	// textSamplePages bounds how many pages are read for the text heuristic.
	textSamplePages = 10
	// minPageText is the number of characters a page needs to count as
	// carrying a text layer.
	minPageText = 20

	largeFileMB  = 10
	mediumFileMB = 5
)

// Info describes a PDF for the analyze command.
type Info struct {
	Path        string            `json:"path"`
	Pages       int               `json:"pages"`
	SizeBytes   int64             `json:"size_bytes"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Bookmarks   []Bookmark        `json:"bookmarks,omitempty"`
	SampledText int               `json:"sampled_pages"`
	TextPages   int               `json:"text_pages"`
}

// SizeMB returns the file size in megabytes.
func (i Info) SizeMB() float64 {
	return float64(i.SizeBytes) / (1024 * 1024)
}

// TextRatio is the share of sampled pages that carry a text layer.
func (i Info) TextRatio() float64 {
	if i.SampledText == 0 {
		return 0
	}
	return float64(i.TextPages) / float64(i.SampledText)
}

// Recommendation is the outcome of an analysis.
type Recommendation struct {
	Summary string   `json:"summary"`
	Action  string   `json:"action,omitempty"`
	Notes   []string `json:"notes,omitempty"`
}

// Inspect reads page count, metadata, outline and a text layer sample.
func Inspect(path string) (Info, error) {
	doc, err := Open(path)
	if err != nil {
		return Info{}, err
	}
	defer doc.Close()

	info := Info{
		Path:      path,
		Pages:     doc.PageCount(),
		SizeBytes: fsutil.FileSize(path),
		Metadata:  nonEmpty(doc.Metadata()),
	}

	if marks, err := doc.Bookmarks(); err == nil {
		info.Bookmarks = marks
	}

	sample := info.Pages
	if sample > textSamplePages {
		sample = textSamplePages
	}
	for n := 0; n < sample; n++ {
		text, err := doc.Text(n)
		if err != nil {
			continue
		}
		info.SampledText++
		if utf8.RuneCountInString(strings.TrimSpace(text)) >= minPageText {
			info.TextPages++
		}
	}

	return info, nil
}

// RecommendOCR decides whether a document needs text recognition.
func RecommendOCR(info Info) Recommendation {
	switch {
	case info.TextPages == 0:
		return Recommendation{
			Summary: "No text layer found: the document looks scanned",
			Action:  "docforge ocr -i " + info.Path + " -o <output.pdf>",
		}
	case info.TextRatio() < 0.5:
		return Recommendation{
			Summary: fmt.Sprintf("Only %d of %d sampled pages carry text", info.TextPages, info.SampledText),
			Action:  "docforge ocr -i " + info.Path + " -o <output.pdf>",
			Notes:   []string{"Mixed documents usually benefit from OCR"},
		}
	default:
		return Recommendation{
			Summary: "The document already has a text layer; OCR is not needed",
		}
	}
}

// RecommendOptimization picks an optimization type from size and content.
func RecommendOptimization(info Info) Recommendation {
	var notes []string
	if info.Pages > 0 {
		notes = append(notes, fmt.Sprintf("%.0f KB per page", float64(info.SizeBytes)/1024/float64(info.Pages)))
	}
	scanned := info.TextPages == 0

	switch {
	case info.SizeMB() > largeFileMB && scanned:
		return Recommendation{
			Summary: fmt.Sprintf("File is large (%.2f MB) and scanned", info.SizeMB()),
			Action:  "docforge optimize -i " + info.Path + " -o <output.pdf> --type scanned",
			Notes:   notes,
		}
	case info.SizeMB() > largeFileMB:
		return Recommendation{
			Summary: fmt.Sprintf("File is large (%.2f MB)", info.SizeMB()),
			Action:  "docforge optimize -i " + info.Path + " -o <output.pdf> --type aggressive",
			Notes:   notes,
		}
	case info.SizeMB() > mediumFileMB:
		return Recommendation{
			Summary: fmt.Sprintf("File is %.2f MB", info.SizeMB()),
			Action:  "docforge optimize -i " + info.Path + " -o <output.pdf> --type standard",
			Notes:   notes,
		}
	default:
		return Recommendation{
			Summary: fmt.Sprintf("File is already small (%.2f MB); optimization may have minimal effect", info.SizeMB()),
			Notes:   notes,
		}
	}
}

func nonEmpty(m map[string]string) map[string]string {
	out := make(map[string]string)
	for k, v := range m {
		if strings.TrimSpace(v) != "" {
			out[k] = v
		}
	}
	return out
}
