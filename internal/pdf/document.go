// Package pdf implements the PDF operations: optimization, merging,
// splitting and inspection. Pages are rendered and read with go-fitz and
// files are written with pdfcpu.
package pdf

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"sort"

	"github.com/gen2brain/go-fitz"

	"github.com/docforge/docforge/internal/domain"
)

var pdfMagic = []byte("%PDF-")

// Document is an open PDF backed by go-fitz.
type Document struct {
	doc  *fitz.Document
	path string
}

// Bookmark is one outline entry. Page is 1-based.
type Bookmark struct {
	Title string `json:"title"`
	Level int    `json:"level"`
	Page  int    `json:"page"`
}

// Open opens a PDF for reading.
func Open(path string) (*Document, error) {
	if err := CheckHeader(path); err != nil {
		return nil, err
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, domain.ConversionError("Failed to open PDF", err)
	}

	if doc.NumPage() == 0 {
		doc.Close()
		return nil, domain.ValidationError("PDF has no pages", nil)
	}

	return &Document{doc: doc, path: path}, nil
}

// CheckHeader verifies that path starts with the PDF signature.
func CheckHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return domain.IOError("Failed to open file", err)
	}
	defer f.Close()

	head := make([]byte, 1024)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return domain.ValidationError("file is empty or unreadable", err)
	}
	if !bytes.Contains(head[:n], pdfMagic) {
		return domain.ValidationError(fmt.Sprintf("%s is not a PDF document", path), nil)
	}
	return nil
}

// Close releases the document.
func (d *Document) Close() error {
	if d.doc == nil {
		return nil
	}
	err := d.doc.Close()
	d.doc = nil
	return err
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.doc.NumPage()
}

// RenderPage rasterizes the 0-based page n at dpi.
func (d *Document) RenderPage(n, dpi int) (image.Image, error) {
	img, err := d.doc.ImageDPI(n, float64(dpi))
	if err != nil {
		return nil, domain.ConversionError(fmt.Sprintf("Failed to render page %d", n+1), err)
	}
	return img, nil
}

// Text returns the text layer of the 0-based page n.
func (d *Document) Text(n int) (string, error) {
	text, err := d.doc.Text(n)
	if err != nil {
		return "", domain.ConversionError(fmt.Sprintf("Failed to read text of page %d", n+1), err)
	}
	return text, nil
}

// Metadata returns the document information dictionary.
func (d *Document) Metadata() map[string]string {
	return d.doc.Metadata()
}

// Bookmarks returns the document outline in document order.
func (d *Document) Bookmarks() ([]Bookmark, error) {
	toc, err := d.doc.ToC()
	if err != nil {
		return nil, domain.ConversionError("Failed to read outline", err)
	}

	marks := make([]Bookmark, 0, len(toc))
	for _, o := range toc {
		// go-fitz reports 0-based pages and -1 for external targets
		if o.Page < 0 {
			continue
		}
		marks = append(marks, Bookmark{Title: o.Title, Level: o.Level, Page: o.Page + 1})
	}
	return marks, nil
}

// BookmarkStarts returns the distinct pages bookmarks point to, ascending.
func BookmarkStarts(marks []Bookmark) []int {
	seen := make(map[int]bool)
	var pages []int
	for _, m := range marks {
		if !seen[m.Page] {
			seen[m.Page] = true
			pages = append(pages, m.Page)
		}
	}
	sort.Ints(pages)
	return pages
}
