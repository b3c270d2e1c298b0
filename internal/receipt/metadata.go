package receipt

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrMissingTimestamp is returned when the date or time label is absent
var ErrMissingTimestamp = errors.New("purchase date or time not found")

var (
	dateToken   = `(\d{4}-\d{2}-\d{2})`
	timeToken   = `(\d{2}:\d{2})`
	digitRun    = regexp.MustCompile(`\d+`)
	commaNumber = `(-?\d+,\d+)`
	taxRow      = regexp.MustCompile(`^\s*` + commaNumber + `\s+` + commaNumber + `\s+` + commaNumber + `\s+` + commaNumber + `\s*$`)
)

// Metadata holds the purchase-level fields found anywhere in a receipt
type Metadata struct {
	Timestamp time.Time
	ReceiptID string
	StoreName string
	Tax       decimal.Decimal
	Net       decimal.Decimal
	Gross     decimal.Decimal
}

// ExtractMetadata runs every metadata heuristic over the receipt text.
// Only a missing or malformed timestamp is an error.
func ExtractMetadata(text string, anchors Anchors) (Metadata, error) {
	return compileAnchors(anchors).metadata(text)
}

func (p *patterns) metadata(text string) (Metadata, error) {
	ts, err := p.timestamp(text)
	if err != nil {
		return Metadata{}, err
	}

	tax, net, gross := p.taxSummary(text)

	return Metadata{
		Timestamp: ts,
		ReceiptID: ExtractReceiptID(text),
		StoreName: ExtractStoreName(text),
		Tax:       tax,
		Net:       net,
		Gross:     gross,
	}, nil
}

// ExtractTimestamp reads the date following the date label and the time
// following the time label
func ExtractTimestamp(text string, anchors Anchors) (time.Time, error) {
	return compileAnchors(anchors).timestamp(text)
}

func (p *patterns) timestamp(text string) (time.Time, error) {
	date := p.date.FindStringSubmatch(text)
	clock := p.clock.FindStringSubmatch(text)
	if date == nil || clock == nil {
		return time.Time{}, ErrMissingTimestamp
	}

	ts, err := time.Parse("2006-01-02 15:04", date[1]+" "+clock[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing purchase timestamp: %w", err)
	}
	return ts, nil
}

// ExtractReceiptID returns the last digit run in the text. It is whatever
// number is printed last on the receipt and is neither unique nor stable.
func ExtractReceiptID(text string) string {
	runs := digitRun.FindAllString(text, -1)
	if len(runs) == 0 {
		return ""
	}
	return runs[len(runs)-1]
}

// ExtractStoreName returns the second non-empty line. The first line is
// the chain logo text on every receipt seen so far; nothing checks that.
func ExtractStoreName(text string) string {
	seen := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		seen++
		if seen == 2 {
			return line
		}
	}
	return ""
}

// ExtractTaxSummary sums the VAT table below the tax header into tax, net
// and gross. A receipt without the header yields zeros.
func ExtractTaxSummary(text string, anchors Anchors) (tax, net, gross decimal.Decimal) {
	return compileAnchors(anchors).taxSummary(text)
}

func (p *patterns) taxSummary(text string) (tax, net, gross decimal.Decimal) {
	tax, net, gross = decimal.Zero, decimal.Zero, decimal.Zero

	lines := strings.Split(text, "\n")
	start := -1
	for i, line := range lines {
		if p.taxHeader.MatchString(line) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return tax, net, gross
	}

	for _, line := range lines[start:] {
		m := taxRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		// Every group matched commaNumber so parsing cannot fail.
		t, _ := ParseAmount(m[2])
		n, _ := ParseAmount(m[3])
		g, _ := ParseAmount(m[4])
		tax = tax.Add(t)
		net = net.Add(n)
		gross = gross.Add(g)
	}
	return tax, net, gross
}
