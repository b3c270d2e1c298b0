package receipt

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ConversionError reports a numeric field that could not be parsed
type ConversionError struct {
	Document string
	Column   string
	Value    string
	Err      error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s: column %s: cannot convert %q: %v", e.Document, e.Column, e.Value, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// ParseAmount converts a decimal-comma string such as "12,50" to a decimal
func ParseAmount(value string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// normalizeField converts a raw field, an empty field is null
func normalizeField(document, column, value string) (Amount, error) {
	if strings.TrimSpace(value) == "" {
		return Amount{}, nil
	}
	d, err := ParseAmount(value)
	if err != nil {
		return Amount{}, &ConversionError{Document: document, Column: column, Value: value, Err: err}
	}
	return NewAmount(d), nil
}

// normalizeLine turns a classified line into a LineItem for the purchase
func normalizeLine(document string, raw RawLine, meta Metadata) (LineItem, error) {
	unitPrice, err := normalizeField(document, "unit_price", raw.UnitPrice)
	if err != nil {
		return LineItem{}, err
	}
	amount, err := normalizeField(document, "amount", raw.Quantity)
	if err != nil {
		return LineItem{}, err
	}
	total, err := normalizeField(document, "total", raw.Total)
	if err != nil {
		return LineItem{}, err
	}

	articleID := raw.ArticleCode
	if articleID == "" {
		articleID = SyntheticArticleID(raw.ArticleName, raw.UnitPrice)
	}

	return LineItem{
		ArticleName:       raw.ArticleName,
		ArticleID:         articleID,
		UnitPrice:         unitPrice,
		Amount:            amount,
		UnitMeasurement:   raw.Unit,
		Total:             total,
		PurchaseTimestamp: Timestamp{meta.Timestamp},
		PurchaseID:        meta.ReceiptID,
		StoreName:         meta.StoreName,
	}, nil
}
