package receipt

import (
	"fmt"

	"github.com/gocarina/gocsv"
)

// Output file names inside the output directory
const (
	LineItemsFile = "line_items.csv"
	PurchasesFile = "purchases.csv"
	ArticlesFile  = "articles.csv"
)

// CSVSink writes batches as CSV files with a header row
type CSVSink struct {
	storage Storage
}

// NewCSVSink creates a new CSVSink writing into storage
func NewCSVSink(storage Storage) *CSVSink {
	return &CSVSink{storage: storage}
}

// Write replaces the three CSV files with the rows of batch. No file is
// replaced until all three are written.
func (c *CSVSink) Write(batch *Batch) error {
	tables := []struct {
		name string
		rows interface{}
	}{
		{LineItemsFile, &batch.LineItems},
		{PurchasesFile, &batch.Purchases},
		{ArticlesFile, &batch.Articles},
	}

	files := make([]File, 0, len(tables))
	for _, t := range tables {
		data, err := gocsv.MarshalBytes(t.rows)
		if err != nil {
			return fmt.Errorf("marshaling %s: %w", t.name, err)
		}
		files = append(files, File{Name: t.name, Data: data})
	}

	if err := c.storage.SaveAll(files); err != nil {
		return fmt.Errorf("writing CSV files: %w", err)
	}
	return nil
}

// ReadBatch reads the CSV files written by Write
func (c *CSVSink) ReadBatch() (*Batch, error) {
	batch := &Batch{}
	if err := readCSV(c.storage, LineItemsFile, &batch.LineItems); err != nil {
		return nil, err
	}
	if err := readCSV(c.storage, PurchasesFile, &batch.Purchases); err != nil {
		return nil, err
	}
	if err := readCSV(c.storage, ArticlesFile, &batch.Articles); err != nil {
		return nil, err
	}
	return batch, nil
}

func readCSV(storage Storage, filename string, rows interface{}) error {
	data, err := storage.Get(filename)
	if err != nil {
		return fmt.Errorf("loading %s: %w", filename, err)
	}
	if err := gocsv.UnmarshalBytes(data, rows); err != nil {
		return fmt.Errorf("unmarshaling %s: %w", filename, err)
	}
	return nil
}
