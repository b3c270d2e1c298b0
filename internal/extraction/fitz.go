package extraction

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// Fitz implements the Extractor interface using MuPDF
type Fitz struct{}

// NewFitz creates a new MuPDF backed extractor
func NewFitz() *Fitz {
	return &Fitz{}
}

// Text opens the PDF and returns the text of every page
func (f *Fitz) Text(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("reading page %d: %w", i+1, err)
		}
		pages = append(pages, text)
	}

	return joinPages(pages), nil
}

// Close is a no-op, documents are closed after each call
func (f *Fitz) Close() error {
	return nil
}
