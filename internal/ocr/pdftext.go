package ocr

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/fahroediin/PDF-Analyzer/internal/core/lines"
)

// readPDFLines groups the text layer of every page into visual rows. Pages
// without text are absent from the result.
func readPDFLines(path string) (out lines.PageLines, err error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open text layer: %w", err)
	}
	defer f.Close()

	// The content stream decoder panics on some malformed fonts.
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, fmt.Errorf("decode text layer: %v", p)
		}
	}()

	out = lines.PageLines{}
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		var pageLines []string
		for _, row := range rows {
			if s := lines.CollapseSpaces(joinRow(row.Content)); s != "" {
				pageLines = append(pageLines, s)
			}
		}
		if len(pageLines) > 0 {
			out[i-1] = pageLines
		}
	}
	return out, nil
}

// joinRow concatenates glyph runs, inserting a space where the gap to the
// previous run is wider than a quarter of the font size.
func joinRow(texts []pdf.Text) string {
	var b strings.Builder
	for i, t := range texts {
		if i > 0 {
			prev := texts[i-1]
			if gap := t.X - (prev.X + prev.W); gap > prev.FontSize/4 {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
	}
	return b.String()
}
