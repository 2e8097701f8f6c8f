package convert

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/yuin/goldmark"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`,
	`[`, `\[`, `]`, `\]`, `#`, `\#`, `<`, `\<`, `>`, `\>`, `|`, `\|`,
)

// Markdown renders doc as CommonMark. Pages are separated by thematic breaks.
func Markdown(doc Document) string {
	var b strings.Builder
	if doc.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", markdownEscaper.Replace(doc.Title))
	}
	first := true
	for _, page := range doc.Pages {
		if len(page.Paragraphs) == 0 {
			continue
		}
		if !first {
			b.WriteString("---\n\n")
		}
		first = false
		for _, para := range page.Paragraphs {
			b.WriteString(escapeLeadingMarker(markdownEscaper.Replace(para)))
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

// escapeLeadingMarker keeps a paragraph that starts like a list item or a
// rule from being parsed as one.
func escapeLeadingMarker(s string) string {
	switch {
	case strings.HasPrefix(s, "- "), strings.HasPrefix(s, "+ "), strings.HasPrefix(s, "---"):
		return `\` + s
	}
	for i, r := range s {
		if r >= '0' && r <= '9' {
			continue
		}
		if i > 0 && (r == '.' || r == ')') {
			return s[:i] + `\` + s[i:]
		}
		break
	}
	return s
}

// WriteMarkdown writes doc as Markdown.
func WriteMarkdown(w io.Writer, doc Document) error {
	_, err := io.WriteString(w, Markdown(doc))
	return err
}

// WriteHTML renders the Markdown form of doc with goldmark into a standalone
// HTML page.
func WriteHTML(w io.Writer, doc Document) error {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(doc)), &body); err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	title := doc.Title
	if title == "" {
		title = "Document"
	}
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(title), body.String())
	return err
}

// WriteText writes paragraphs separated by blank lines and pages by form feeds.
func WriteText(w io.Writer, doc Document) error {
	pages := make([]string, len(doc.Pages))
	for i, page := range doc.Pages {
		pages[i] = strings.Join(page.Paragraphs, "\n\n")
	}
	text := strings.Join(pages, "\f")
	if doc.Title != "" {
		text = doc.Title + "\n\n" + text
	}
	_, err := io.WriteString(w, text+"\n")
	return err
}
