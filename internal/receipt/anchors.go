package receipt

import (
	"regexp"
	"strings"
)

// Anchors holds the literal receipt texts the parser anchors on
type Anchors struct {
	Date           string // precedes the YYYY-MM-DD token
	Time           string // precedes the HH:MM token
	ItemsStart     string // header above the first article
	Reconciliation string // preferred end of the article list
	Void           string // end of the article list on corrected receipts
	Paid           string // fallback end of the article list, start of the totals
	PaymentInfo    string // end of the totals
	Rebate         string
	Rounding       string
	Deposit        string

	// TaxHeader is the column sequence of the VAT table, tax rate first
	TaxHeader []string
}

// DefaultAnchors returns the anchors printed on Swedish ICA receipts
func DefaultAnchors() Anchors {
	return Anchors{
		Date:           "Datum",
		Time:           "Tid",
		ItemsStart:     "Summa(SEK)",
		Reconciliation: "Avstämning",
		Void:           "Felaktig",
		Paid:           "Betalat",
		PaymentInfo:    "Betalningsinformation",
		Rebate:         "Erhållen rabatt",
		Rounding:       "Avrundning",
		Deposit:        "Pant",
		TaxHeader:      []string{"Moms", "%", "Moms", "Netto", "Brutto"},
	}
}

// marker is an optional end anchor and its whole-word presence test
type marker struct {
	text string
	word *regexp.Regexp
}

// patterns holds every regular expression derived from one Anchors set
type patterns struct {
	anchors   Anchors
	date      *regexp.Regexp
	clock     *regexp.Regexp
	taxHeader *regexp.Regexp
	rebate    *regexp.Regexp
	rounding  *regexp.Regexp
	payments  *regexp.Regexp
	markers   []marker

	// items maps each possible end anchor to its article span pattern
	items map[string]*regexp.Regexp
}

func compileAnchors(a Anchors) *patterns {
	p := &patterns{
		anchors:   a,
		date:      regexp.MustCompile(regexp.QuoteMeta(a.Date) + `\s` + dateToken),
		clock:     regexp.MustCompile(regexp.QuoteMeta(a.Time) + `\s` + timeToken),
		taxHeader: taxHeaderPattern(a.TaxHeader),
		rebate:    labelledNumber(a.Rebate),
		rounding:  labelledNumber(a.Rounding),
		payments:  spanPattern(a.Paid, a.PaymentInfo),
		items:     map[string]*regexp.Regexp{a.Paid: spanPattern(a.ItemsStart, a.Paid)},
	}
	for _, text := range []string{a.Reconciliation, a.Void} {
		if text == "" {
			continue
		}
		p.markers = append(p.markers, marker{
			text: text,
			word: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(text) + `\b`),
		})
		p.items[text] = spanPattern(a.ItemsStart, text)
	}
	return p
}

func taxHeaderPattern(header []string) *regexp.Regexp {
	parts := make([]string, len(header))
	for i, h := range header {
		parts[i] = regexp.QuoteMeta(h)
	}
	return regexp.MustCompile(strings.Join(parts, `\s*`))
}

func labelledNumber(label string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(label) + `:?\s*` + commaNumber)
}

// spanPattern matches the shortest text between start and end
func spanPattern(start, end string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)` + regexp.QuoteMeta(start) + `(.*?)` + regexp.QuoteMeta(end))
}

// spans returns the non-overlapping spans matched by re, in document order
func spans(re *regexp.Regexp, text string) []string {
	matches := re.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}
