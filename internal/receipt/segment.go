package receipt

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// DefaultMinCodeDigits is the shortest digit run treated as an article code
const DefaultMinCodeDigits = 4

// standardArity is the field count of a well formed article line
const standardArity = 6

// syntheticIDLength is the width of generated article identifiers
const syntheticIDLength = 13

var discountNumber = regexp.MustCompile(`-\d+,\d+`)

// LineKind identifies the classification rule that produced a RawLine
type LineKind int

const (
	KindStandard LineKind = iota
	KindDeposit
	KindDepositDegraded
	KindDiscount
)

func (k LineKind) String() string {
	switch k {
	case KindStandard:
		return "standard"
	case KindDeposit:
		return "deposit"
	case KindDepositDegraded:
		return "deposit-degraded"
	case KindDiscount:
		return "discount"
	default:
		return fmt.Sprintf("LineKind(%d)", int(k))
	}
}

// RawLine is a classified article line before numeric conversion. Empty
// fields were not present on the line.
type RawLine struct {
	Kind        LineKind
	Text        string
	Arity       int
	ArticleName string
	ArticleCode string
	UnitPrice   string
	Quantity    string
	Unit        string
	Total       string
}

// Classifier sorts article lines into standard, deposit and discount rows
type Classifier struct {
	codeRun      *regexp.Regexp
	deposit      *regexp.Regexp
	depositPrice *regexp.Regexp
	depositName  string
}

// NewClassifier builds a classifier treating runs of at least minCodeDigits
// digits as article codes
func NewClassifier(minCodeDigits int, anchors Anchors) *Classifier {
	if minCodeDigits <= 0 {
		minCodeDigits = DefaultMinCodeDigits
	}
	word := `(?i)\b` + regexp.QuoteMeta(anchors.Deposit) + `\b`
	return &Classifier{
		codeRun:      regexp.MustCompile(fmt.Sprintf(`\d{%d,}`, minCodeDigits)),
		deposit:      regexp.MustCompile(word),
		depositPrice: regexp.MustCompile(word + `\s+(\d+,\d{2})\s+(\d+)\s+(\d+,\d{2})`),
		depositName:  anchors.Deposit,
	}
}

// Classify applies the first matching rule to line. It returns false for
// lines that match no rule; those are dropped without a trace.
func (c *Classifier) Classify(line string) (RawLine, bool) {
	if loc := c.codeRun.FindStringIndex(line); loc != nil {
		return c.standard(line, loc), true
	}

	if c.deposit.MatchString(line) {
		if m := c.depositPrice.FindStringSubmatch(line); m != nil {
			return RawLine{
				Kind:        KindDeposit,
				Text:        line,
				Arity:       standardArity,
				ArticleName: c.depositName,
				UnitPrice:   m[1],
				Quantity:    m[2],
				Unit:        "st",
				Total:       m[3],
			}, true
		}
		return RawLine{
			Kind:        KindDepositDegraded,
			Text:        line,
			Arity:       2,
			ArticleName: strings.TrimSpace(line),
		}, true
	}

	if loc := discountNumber.FindStringIndex(line); loc != nil {
		value := strings.TrimSpace(line[loc[0]:loc[1]])
		return RawLine{
			Kind:        KindDiscount,
			Text:        line,
			Arity:       standardArity,
			ArticleName: strings.TrimSpace(line[:loc[0]]),
			UnitPrice:   value,
			Quantity:    "1,00",
			Unit:        "st",
			Total:       value,
		}, true
	}

	return RawLine{}, false
}

// standard splits a line around its article code. The text after the code
// is assigned positionally with no check of its shape, so a line missing a
// column shifts every later value one slot left.
func (c *Classifier) standard(line string, loc []int) RawLine {
	fields := []string{strings.TrimSpace(line[:loc[0]]), line[loc[0]:loc[1]]}
	fields = append(fields, strings.Fields(line[loc[1]:])...)

	raw := RawLine{Kind: KindStandard, Text: line, Arity: len(fields)}
	slots := []*string{&raw.ArticleName, &raw.ArticleCode, &raw.UnitPrice, &raw.Quantity, &raw.Unit, &raw.Total}
	for i, f := range fields {
		if i >= len(slots) {
			break
		}
		*slots[i] = f
	}
	return raw
}

// EndAnchor picks the marker that closes the article list: the
// reconciliation marker if present, else the void marker, else paid.
func EndAnchor(text string, anchors Anchors) string {
	return compileAnchors(anchors).endAnchor(text)
}

func (p *patterns) endAnchor(text string) string {
	for _, m := range p.markers {
		if m.word.MatchString(text) {
			return m.text
		}
	}
	return p.anchors.Paid
}

// Segments returns every span of text between the items header and the end
// anchor, in document order
func Segments(text string, anchors Anchors) []string {
	return compileAnchors(anchors).segments(text)
}

func (p *patterns) segments(text string) []string {
	return spans(p.items[p.endAnchor(text)], text)
}

// ExtractLineItems classifies every line of every article segment
func ExtractLineItems(text string, anchors Anchors, classifier *Classifier) []RawLine {
	return compileAnchors(anchors).lineItems(text, classifier)
}

func (p *patterns) lineItems(text string, classifier *Classifier) []RawLine {
	var lines []RawLine
	for _, segment := range p.segments(text) {
		for _, line := range strings.Split(strings.TrimSpace(segment), "\n") {
			if raw, ok := classifier.Classify(line); ok {
				lines = append(lines, raw)
			}
		}
	}
	return lines
}

// SyntheticArticleID derives a stable 13 character identifier for lines
// printed without an article code
func SyntheticArticleID(name, unitPrice string) string {
	sum := md5.Sum([]byte(name + "_" + unitPrice))
	id := hex.EncodeToString(sum[:])[:syntheticIDLength]
	if len(id) < syntheticIDLength {
		id = strings.Repeat("0", syntheticIDLength-len(id)) + id
	}
	return id
}
