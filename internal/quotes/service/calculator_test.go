package service

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestLineSubtotal_AppliesLineDiscount(t *testing.T) {
	got := LineSubtotal(LineInput{
		UnitPrice:       dec(t, "25.00"),
		Quantity:        4,
		DiscountPercent: dec(t, "10"),
	})
	if got.StringFixed(2) != "90.00" {
		t.Fatalf("expected 90.00, got %s", got.StringFixed(2))
	}
}

func TestCalculateTotals_DiscountBeforeTax(t *testing.T) {
	lines := []LineInput{
		{UnitPrice: dec(t, "100.00"), Quantity: 1},
		{UnitPrice: dec(t, "30.00"), Quantity: 1},
	}
	discountType := "percentage"

	totals := CalculateTotals(lines, &discountType, dec(t, "10"), dec(t, "8"))

	if totals.Subtotal.StringFixed(2) != "130.00" {
		t.Fatalf("expected subtotal 130.00, got %s", totals.Subtotal.StringFixed(2))
	}
	if totals.DiscountAmount.StringFixed(2) != "13.00" {
		t.Fatalf("expected discount 13.00, got %s", totals.DiscountAmount.StringFixed(2))
	}
	if totals.TaxAmount.StringFixed(2) != "9.36" {
		t.Fatalf("expected tax 9.36, got %s", totals.TaxAmount.StringFixed(2))
	}
	if totals.Total.StringFixed(2) != "126.36" {
		t.Fatalf("expected total 126.36, got %s", totals.Total.StringFixed(2))
	}
}

func TestCalculateTotals_FixedDiscountCappedAtSubtotal(t *testing.T) {
	lines := []LineInput{{UnitPrice: dec(t, "50.00"), Quantity: 1}}
	discountType := "fixed"

	totals := CalculateTotals(lines, &discountType, dec(t, "80"), dec(t, "21"))

	if totals.DiscountAmount.StringFixed(2) != "50.00" {
		t.Fatalf("expected discount capped at 50.00, got %s", totals.DiscountAmount.StringFixed(2))
	}
	if totals.TaxAmount.StringFixed(2) != "0.00" {
		t.Fatalf("expected no tax on zero base, got %s", totals.TaxAmount.StringFixed(2))
	}
	if totals.Total.StringFixed(2) != "0.00" {
		t.Fatalf("expected total 0.00, got %s", totals.Total.StringFixed(2))
	}
}

func TestCalculateTotals_NoDiscountNoTax(t *testing.T) {
	lines := []LineInput{
		{UnitPrice: dec(t, "19.99"), Quantity: 3},
	}

	totals := CalculateTotals(lines, nil, decimal.Zero, decimal.Zero)

	if totals.Subtotal.StringFixed(2) != "59.97" {
		t.Fatalf("expected subtotal 59.97, got %s", totals.Subtotal.StringFixed(2))
	}
	if totals.Total.StringFixed(2) != "59.97" {
		t.Fatalf("expected total 59.97, got %s", totals.Total.StringFixed(2))
	}
}

func TestCalculateTotals_RoundsPerLine(t *testing.T) {
	// 3 x 9.99 with 33.33% line discount: 29.97 * 0.6667 = 19.981...
	lines := []LineInput{
		{UnitPrice: dec(t, "9.99"), Quantity: 3, DiscountPercent: dec(t, "33.33")},
	}

	totals := CalculateTotals(lines, nil, decimal.Zero, decimal.Zero)

	if totals.LineSubtotals[0].StringFixed(2) != "19.98" {
		t.Fatalf("expected line subtotal 19.98, got %s", totals.LineSubtotals[0].StringFixed(2))
	}
	if totals.Subtotal.StringFixed(2) != "19.98" {
		t.Fatalf("expected subtotal 19.98, got %s", totals.Subtotal.StringFixed(2))
	}
}
