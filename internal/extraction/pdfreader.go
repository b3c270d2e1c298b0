package extraction

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFReader implements the Extractor interface with a pure Go PDF reader.
// It needs no MuPDF shared library but loses some of the line structure
// on receipts that position every glyph individually.
type PDFReader struct{}

// NewPDFReader creates a new pure Go extractor
func NewPDFReader() *PDFReader {
	return &PDFReader{}
}

// Text opens the PDF and returns the plain text of every page
func (p *PDFReader) Text(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("reading page %d: %w", i, err)
		}
		pages = append(pages, text)
	}

	return joinPages(pages), nil
}

// Close is a no-op
func (p *PDFReader) Close() error {
	return nil
}
