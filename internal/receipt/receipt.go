package receipt

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is the only currency receipts are issued in
const Currency = "SEK"

// TimestampLayout is the text form of purchase timestamps in every sink
const TimestampLayout = "2006-01-02 15:04:05"

// Amount is a nullable decimal amount
type Amount struct {
	Decimal decimal.Decimal
	Valid   bool
}

// NewAmount returns a valid Amount holding d
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d, Valid: true}
}

// MarshalCSV writes the plain decimal, or an empty cell for null
func (a Amount) MarshalCSV() (string, error) {
	if !a.Valid {
		return "", nil
	}
	return a.Decimal.String(), nil
}

// UnmarshalCSV reads a cell written by MarshalCSV
func (a *Amount) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*a = Amount{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("parsing amount %q: %w", s, err)
	}
	*a = NewAmount(d)
	return nil
}

// Value stores the amount as a REAL, or NULL
func (a Amount) Value() (driver.Value, error) {
	if !a.Valid {
		return nil, nil
	}
	return a.Decimal.InexactFloat64(), nil
}

// Timestamp is a receipt-local date and time without a zone
type Timestamp struct {
	time.Time
}

// MarshalCSV formats the timestamp with TimestampLayout
func (t Timestamp) MarshalCSV() (string, error) {
	return t.Format(TimestampLayout), nil
}

// UnmarshalCSV parses a TimestampLayout string
func (t *Timestamp) UnmarshalCSV(s string) error {
	parsed, err := time.Parse(TimestampLayout, strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// Value stores the timestamp as text
func (t Timestamp) Value() (driver.Value, error) {
	return t.Format(TimestampLayout), nil
}

// Purchase is the summary of one receipt
type Purchase struct {
	ID        string    `csv:"id"` // last digit run of the document, not unique
	Timestamp Timestamp `csv:"timestamp"`
	StoreName string    `csv:"store_name"`
	Total     Amount    `csv:"total"`
	Tax       Amount    `csv:"tax"`
	Net       Amount    `csv:"net"`
	Gross     Amount    `csv:"gross"`
	Discount  Amount    `csv:"discount"`
	Rounding  Amount    `csv:"rounding"`
	Currency  string    `csv:"currency"`
}

// LineItem is one purchased article or adjustment row, denormalized with
// the fields of the purchase it belongs to
type LineItem struct {
	ArticleName       string    `csv:"article_name"`
	ArticleID         string    `csv:"article_id"`
	UnitPrice         Amount    `csv:"unit_price"`
	Amount            Amount    `csv:"amount"`
	UnitMeasurement   string    `csv:"unit_measurement"`
	Total             Amount    `csv:"total"`
	PurchaseTimestamp Timestamp `csv:"purchase_timestamp"`
	PurchaseID        string    `csv:"purchase_id"`
	StoreName         string    `csv:"store_name"`
}

// Article is a distinct article name and identifier pair
type Article struct {
	ArticleName string `csv:"article_name"`
	ArticleID   string `csv:"article_id"`
}

// Batch holds every row produced by one run
type Batch struct {
	LineItems []LineItem
	Purchases []Purchase
	Articles  []Article
	Documents []string
}
