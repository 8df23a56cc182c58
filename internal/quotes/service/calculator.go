package service

import (
	"github.com/shopspring/decimal"
)

// LineInput is one quote item as seen by the totals calculator.
type LineInput struct {
	UnitPrice       decimal.Decimal
	Quantity        int
	DiscountPercent decimal.Decimal
}

// Totals is the server-computed monetary state of a quote. Clients can
// never write these fields; every item or discount/tax mutation
// recomputes them.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	LineSubtotals  []decimal.Decimal
}

var (
	hundred = decimal.NewFromInt(100)
)

// LineSubtotal computes one line's subtotal: unit price times quantity,
// less the per-line discount, rounded to cents.
func LineSubtotal(line LineInput) decimal.Decimal {
	gross := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
	if line.DiscountPercent.IsPositive() {
		gross = gross.Mul(hundred.Sub(line.DiscountPercent)).Div(hundred)
	}
	return gross.Round(2)
}

// CalculateTotals composes a quote's totals from its lines and the
// quote-level discount and tax rate. Discount applies before tax: the
// tax base is the discounted subtotal.
func CalculateTotals(lines []LineInput, discountType *string, discountValue, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	lineSubtotals := make([]decimal.Decimal, len(lines))
	for i, line := range lines {
		lineSubtotals[i] = LineSubtotal(line)
		subtotal = subtotal.Add(lineSubtotals[i])
	}

	discountAmount := decimal.Zero
	if discountType != nil && discountValue.IsPositive() {
		switch *discountType {
		case "percentage":
			discountAmount = subtotal.Mul(discountValue).Div(hundred).Round(2)
		case "fixed":
			discountAmount = discountValue.Round(2)
		}
		// Never discount below zero.
		if discountAmount.GreaterThan(subtotal) {
			discountAmount = subtotal
		}
	}

	taxable := subtotal.Sub(discountAmount)
	taxAmount := decimal.Zero
	if taxRate.IsPositive() {
		taxAmount = taxable.Mul(taxRate).Div(hundred).Round(2)
	}

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		Total:          taxable.Add(taxAmount),
		LineSubtotals:  lineSubtotals,
	}
}
