// Package convert turns the text layer of a PDF into editable documents.
package convert

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/docforge/docforge/internal/pdf"
)

// Document is the text content of a PDF, page by page.
type Document struct {
	Title string
	Pages []Page
}

// Page holds the paragraphs found on one page.
type Page struct {
	Number     int
	Paragraphs []string
}

// Empty reports whether no page carries any text.
func (d Document) Empty() bool {
	for _, p := range d.Pages {
		if len(p.Paragraphs) > 0 {
			return false
		}
	}
	return true
}

// Extractor reads a PDF into a Document.
type Extractor func(path string) (Document, error)

// Extract reads every page's text layer with go-fitz.
func Extract(path string) (Document, error) {
	doc, err := pdf.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer doc.Close()

	out := Document{Title: strings.TrimSpace(doc.Metadata()["title"])}
	for n := 0; n < doc.PageCount(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			return Document{}, err
		}
		out.Pages = append(out.Pages, Page{Number: n + 1, Paragraphs: Paragraphs(text)})
	}
	return out, nil
}

var blankLines = regexp.MustCompile(`\n\s*\n`)

// Paragraphs splits extracted page text on blank lines and joins the lines
// of each paragraph, undoing end-of-line hyphenation.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var out []string
	for _, block := range blankLines.Split(text, -1) {
		var b strings.Builder
		for _, line := range strings.Split(block, "\n") {
			line = strings.Join(strings.Fields(line), " ")
			if line == "" {
				continue
			}
			if b.Len() > 0 {
				prev := b.String()
				if strings.HasSuffix(prev, "-") && startsLower(line) {
					b.Reset()
					b.WriteString(strings.TrimSuffix(prev, "-"))
				} else {
					b.WriteByte(' ')
				}
			}
			b.WriteString(line)
		}
		if b.Len() > 0 {
			out = append(out, b.String())
		}
	}
	return out
}

func startsLower(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLower(r)
}
