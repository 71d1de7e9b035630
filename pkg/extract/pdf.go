package extract

import (
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page is one page of extracted PDF text, numbered from 1.
type Page struct {
	Number int
	Text   string
}

// PDFText extracts the text of every page in document order, joined with a
// blank line between pages. A page that fails to decode contributes nothing;
// an unreadable document yields the empty string.
func PDFText(path string) string {
	pages := PDFPages(path)

	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

// PDFPages extracts per-page text, preserving page numbers. Used by the
// similarity index builder, which stores one point per page.
func PDFPages(path string) []Page {
	// The pdf library panics on some malformed inputs; a corrupt upload
	// must not take the request down.
	defer func() {
		if r := recover(); r != nil {
			slog.Error("pdf extraction panicked", "path", path, "panic", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		slog.Error("failed to open pdf", "path", path, "error", err)
		return nil
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]Page, 0, total)
	for i := 1; i <= total; i++ {
		pages = append(pages, Page{Number: i, Text: pdfPageText(reader, i)})
	}
	return pages
}

func pdfPageText(reader *pdf.Reader, num int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("pdf page extraction panicked", "page", num, "panic", r)
			text = ""
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return ""
	}

	content, err := page.GetPlainText(nil)
	if err != nil {
		slog.Warn("pdf page extraction failed", "page", num, "error", err)
		return ""
	}
	return strings.TrimSpace(content)
}
