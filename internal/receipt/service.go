package receipt

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zombor/receipt-extractor/internal/extraction"
)

// DocumentError ties a processing failure to the PDF that caused it
type DocumentError struct {
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("processing %s: %v", e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Service turns receipt PDFs into line items and purchases
type Service struct {
	extractor  extraction.Extractor
	patterns   *patterns
	classifier *Classifier
}

// NewService creates a new Service with the default anchors
func NewService(extractor extraction.Extractor, minCodeDigits int) *Service {
	return NewServiceWithAnchors(extractor, minCodeDigits, DefaultAnchors())
}

// NewServiceWithAnchors creates a new Service for receipts printed with
// other anchor texts
func NewServiceWithAnchors(extractor extraction.Extractor, minCodeDigits int, anchors Anchors) *Service {
	return &Service{
		extractor:  extractor,
		patterns:   compileAnchors(anchors),
		classifier: NewClassifier(minCodeDigits, anchors),
	}
}

// ListDocuments returns the PDF files directly inside dir, sorted by name
func ListDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// ProcessDirectory processes every PDF in dir in order. The first failing
// document aborts the whole batch and no rows are returned.
func (s *Service) ProcessDirectory(ctx context.Context, dir string) (*Batch, error) {
	paths, err := ListDocuments(dir)
	if err != nil {
		return nil, err
	}

	batch := &Batch{
		LineItems: make([]LineItem, 0),
		Purchases: make([]Purchase, 0),
		Documents: make([]string, 0, len(paths)),
	}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items, purchases, err := s.ProcessDocument(path)
		if err != nil {
			return nil, &DocumentError{Path: path, Err: err}
		}

		slog.Info("Processed receipt",
			"path", path,
			"line_items", len(items),
			"purchases", len(purchases),
		)
		batch.LineItems = append(batch.LineItems, items...)
		batch.Purchases = append(batch.Purchases, purchases...)
		batch.Documents = append(batch.Documents, path)
	}
	batch.Articles = UniqueArticles(batch.LineItems)

	return batch, nil
}

// ProcessDocument extracts the line items and purchases of one PDF
func (s *Service) ProcessDocument(path string) ([]LineItem, []Purchase, error) {
	text, err := s.extractor.Text(path)
	if err != nil {
		return nil, nil, fmt.Errorf("extracting text: %w", err)
	}
	return s.ParseText(filepath.Base(path), text)
}

// ParseText runs the parsing heuristics over already extracted text.
// document only labels errors and log lines.
func (s *Service) ParseText(document, text string) ([]LineItem, []Purchase, error) {
	meta, err := s.patterns.metadata(text)
	if err != nil {
		return nil, nil, err
	}

	raws := s.patterns.lineItems(text, s.classifier)
	items := make([]LineItem, 0, len(raws))
	for _, raw := range raws {
		if raw.Arity != standardArity {
			slog.Warn("Line item column count mismatch",
				"document", document,
				"kind", raw.Kind,
				"columns", raw.Arity,
				"expected", standardArity,
				"line", raw.Text,
			)
		}
		item, err := normalizeLine(document, raw, meta)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, item)
	}

	return items, s.patterns.purchases(text, meta), nil
}

// UniqueArticles returns the distinct name and identifier pairs in
// first-seen order
func UniqueArticles(items []LineItem) []Article {
	seen := make(map[Article]bool)
	articles := make([]Article, 0)
	for _, item := range items {
		a := Article{ArticleName: item.ArticleName, ArticleID: item.ArticleID}
		if seen[a] {
			continue
		}
		seen[a] = true
		articles = append(articles, a)
	}
	return articles
}
