package validate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PageSpan is an inclusive 1-based page interval.
type PageSpan struct {
	Start int
	End   int
}

// Pages returns the number of pages in the span.
func (s PageSpan) Pages() int {
	return s.End - s.Start + 1
}

func (s PageSpan) String() string {
	if s.Start == s.End {
		return strconv.Itoa(s.Start)
	}
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// ParsePageRange parses a range such as "1-5,10,15-20". Spans keep
// the order in which they were written.
func ParsePageRange(expr string) ([]PageSpan, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("page range is empty")
	}

	var spans []PageSpan
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("page range %q has an empty element", expr)
		}

		if from, to, ok := strings.Cut(part, "-"); ok {
			start, err := parsePage(from)
			if err != nil {
				return nil, fmt.Errorf("in range '%s': %w", part, err)
			}
			end, err := parsePage(to)
			if err != nil {
				return nil, fmt.Errorf("in range '%s': %w", part, err)
			}
			if start > end {
				return nil, fmt.Errorf("in range '%s', start page (%d) is greater than end page (%d)", part, start, end)
			}
			spans = append(spans, PageSpan{Start: start, End: end})
			continue
		}

		page, err := parsePage(part)
		if err != nil {
			return nil, err
		}
		spans = append(spans, PageSpan{Start: page, End: page})
	}
	return spans, nil
}

// FormatPageRange renders spans in canonical form.
func FormatPageRange(spans []PageSpan) string {
	parts := make([]string, len(spans))
	for i, s := range spans {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

// ExpandPages lists the distinct pages covered by spans in ascending order.
func ExpandPages(spans []PageSpan) []int {
	seen := make(map[int]bool)
	var pages []int
	for _, s := range spans {
		for p := s.Start; p <= s.End; p++ {
			if !seen[p] {
				seen[p] = true
				pages = append(pages, p)
			}
		}
	}
	sort.Ints(pages)
	return pages
}

// ParseStartPages parses "1,89,150" into sorted, distinct page numbers.
func ParseStartPages(expr string) ([]int, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("start pages are empty")
	}

	seen := make(map[int]bool)
	var pages []int
	for _, part := range strings.Split(expr, ",") {
		page, err := parsePage(part)
		if err != nil {
			return nil, err
		}
		if !seen[page] {
			seen[page] = true
			pages = append(pages, page)
		}
	}
	sort.Ints(pages)
	return pages, nil
}

// FormatStartPages renders start pages in canonical form.
func FormatStartPages(pages []int) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}

func parsePage(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("'%s' is not a page number", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("page numbers start at 1, got %d", n)
	}
	return n, nil
}
