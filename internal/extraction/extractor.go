package extraction

import (
	"fmt"
	"strings"
)

// Extractor defines the interface for reading the text layer of a receipt PDF
type Extractor interface {
	// Text returns the full document text, pages joined by a newline
	Text(path string) (string, error)
	// Close releases any resources held by the extractor
	Close() error
}

// New returns the extractor registered under name
func New(name string) (Extractor, error) {
	switch name {
	case "fitz", "":
		return NewFitz(), nil
	case "pdf":
		return NewPDFReader(), nil
	default:
		return nil, fmt.Errorf("unknown extractor %q (valid: fitz, pdf)", name)
	}
}

// joinPages concatenates page texts in document order with a newline between pages
func joinPages(pages []string) string {
	return strings.Join(pages, "\n")
}
