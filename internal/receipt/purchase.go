package receipt

import (
	"regexp"

	"github.com/shopspring/decimal"
)

var firstCommaNumber = regexp.MustCompile(commaNumber)

// ExtractPurchases builds one Purchase for every span between the paid
// marker and the payment information marker. A receipt printing the
// totals block twice yields two purchases with the same id.
func ExtractPurchases(text string, anchors Anchors, meta Metadata) []Purchase {
	return compileAnchors(anchors).purchases(text, meta)
}

func (p *patterns) purchases(text string, meta Metadata) []Purchase {
	blocks := spans(p.payments, text)
	purchases := make([]Purchase, 0, len(blocks))
	for _, block := range blocks {
		total := decimal.Zero
		if m := firstCommaNumber.FindString(block); m != "" {
			total, _ = ParseAmount(m)
		}

		purchases = append(purchases, Purchase{
			ID:        meta.ReceiptID,
			Timestamp: Timestamp{meta.Timestamp},
			StoreName: meta.StoreName,
			Total:     NewAmount(total),
			Tax:       NewAmount(meta.Tax),
			Net:       NewAmount(meta.Net),
			Gross:     NewAmount(meta.Gross),
			Discount:  NewAmount(findLabelled(p.rebate, block)),
			Rounding:  NewAmount(findLabelled(p.rounding, block)),
			Currency:  Currency,
		})
	}
	return purchases
}

// findLabelled returns the number after the label, zero when absent
func findLabelled(re *regexp.Regexp, text string) decimal.Decimal {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero
	}
	d, _ := ParseAmount(m[1])
	return d
}
