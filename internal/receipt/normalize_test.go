package receipt

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("ParseAmount", func() {
	DescribeTable("decimal-comma strings",
		func(input, expected string) {
			d, err := ParseAmount(input)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Equal(decimal.RequireFromString(expected))).To(BeTrue())
		},
		Entry("price", "12,50", "12.50"),
		Entry("negative", "-5,00", "-5"),
		Entry("weight", "1,234", "1.234"),
		Entry("integer", "2", "2"),
		Entry("already dotted", "3.75", "3.75"),
		Entry("padded", " 7,10 ", "7.1"),
	)

	DescribeTable("malformed strings",
		func(input string) {
			_, err := ParseAmount(input)
			Expect(err).To(HaveOccurred())
		},
		Entry("two separators", "12.5.0"),
		Entry("unit", "kg"),
		Entry("mixed separators", "1.234,50"),
	)
})

var _ = Describe("normalizeLine", func() {
	var (
		raw  RawLine
		meta Metadata
		item LineItem
		err  error
	)

	BeforeEach(func() {
		meta = Metadata{
			Timestamp: time.Date(2025, 4, 26, 14, 3, 0, 0, time.UTC),
			ReceiptID: "98765",
			StoreName: "ICA Nära Lindhagen",
		}
	})

	JustBeforeEach(func() {
		item, err = normalizeLine("receipt.pdf", raw, meta)
	})

	When("the line is a deposit", func() {
		BeforeEach(func() {
			raw, _ = NewClassifier(DefaultMinCodeDigits, DefaultAnchors()).Classify("Pant 12,50 2 25,00")
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should convert the numeric fields", func() {
			Expect(item.ArticleName).To(Equal("Pant"))
			Expect(item.UnitPrice.Valid).To(BeTrue())
			Expect(item.UnitPrice.Decimal.Equal(decimal.RequireFromString("12.50"))).To(BeTrue())
			Expect(item.Amount.Decimal.Equal(decimal.NewFromInt(2))).To(BeTrue())
			Expect(item.Total.Decimal.Equal(decimal.RequireFromString("25"))).To(BeTrue())
		})

		It("should generate an article id", func() {
			Expect(item.ArticleID).To(Equal("a091e77692287"))
		})

		It("should copy the purchase fields", func() {
			Expect(item.PurchaseTimestamp.Time).To(Equal(meta.Timestamp))
			Expect(item.PurchaseID).To(Equal("98765"))
			Expect(item.StoreName).To(Equal("ICA Nära Lindhagen"))
		})
	})

	When("the line is a discount", func() {
		BeforeEach(func() {
			raw, _ = NewClassifier(DefaultMinCodeDigits, DefaultAnchors()).Classify("Rabatt -5,00")
		})

		It("should set quantity one and the same price and total", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(item.ArticleName).To(Equal("Rabatt"))
			Expect(item.UnitPrice.Decimal.Equal(decimal.NewFromInt(-5))).To(BeTrue())
			Expect(item.Total.Decimal.Equal(decimal.NewFromInt(-5))).To(BeTrue())
			Expect(item.Amount.Decimal.Equal(decimal.NewFromInt(1))).To(BeTrue())
		})
	})

	When("the line carries an article code", func() {
		BeforeEach(func() {
			raw, _ = NewClassifier(DefaultMinCodeDigits, DefaultAnchors()).Classify("Mjölk 3% 7310865004703 15,95 2,00 st 31,90")
		})

		It("should keep the printed code", func() {
			Expect(item.ArticleID).To(Equal("7310865004703"))
			Expect(item.UnitMeasurement).To(Equal("st"))
		})
	})

	When("the line is a degraded deposit", func() {
		BeforeEach(func() {
			raw, _ = NewClassifier(DefaultMinCodeDigits, DefaultAnchors()).Classify("Pant retur")
		})

		It("should leave the numeric fields null", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(item.UnitPrice.Valid).To(BeFalse())
			Expect(item.Amount.Valid).To(BeFalse())
			Expect(item.Total.Valid).To(BeFalse())
			Expect(item.ArticleID).To(Equal(SyntheticArticleID("Pant retur", "")))
		})
	})

	When("a shifted line puts a unit in a numeric column", func() {
		BeforeEach(func() {
			raw, _ = NewClassifier(DefaultMinCodeDigits, DefaultAnchors()).Classify("Lösvikt tomater 2000000054321 1,234 kg 30,79")
		})

		It("returns a conversion error naming the column and document", func() {
			var convErr *ConversionError
			Expect(errors.As(err, &convErr)).To(BeTrue())
			Expect(convErr.Document).To(Equal("receipt.pdf"))
			Expect(convErr.Column).To(Equal("amount"))
			Expect(convErr.Value).To(Equal("kg"))
		})
	})

	When("the total is malformed", func() {
		BeforeEach(func() {
			raw = RawLine{ArticleName: "Ost", ArticleCode: "7310865001111", UnitPrice: "89,00", Quantity: "1,00", Unit: "st", Total: "12.5.0"}
		})

		It("returns a conversion error", func() {
			Expect(err).To(MatchError(ContainSubstring(`receipt.pdf: column total: cannot convert "12.5.0"`)))
		})
	})
})
