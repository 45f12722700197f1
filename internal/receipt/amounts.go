package receipt

import (
	"github.com/shopspring/decimal"

	"membersCardAPI/internal/types/product"
)

// Rates are decimal, not float: currency math must not pick up binary
// rounding drift (1999 * 0.05 has to floor to exactly 99).
var (
	pointRate = decimal.RequireFromString("0.05")
	taxRate   = decimal.RequireFromString("0.10")
)

// Amounts is the computed breakdown of one purchase.
type Amounts struct {
	Subtotal int64
	Tax      int64
	Total    int64
	Point    int64
}

// AwardPoint returns floor(unitPrice * 0.05), the points granted for a
// purchase. The lifecycle manager persists this; Calculate shows the same
// figure on the receipt, so both must agree.
func AwardPoint(unitPrice int64) int64 {
	return decimal.NewFromInt(unitPrice).Mul(pointRate).Floor().IntPart()
}

// Calculate computes the receipt breakdown for a product.
// subtotal = unitPrice + postage + fee - discount, tax = floor(subtotal*0.10),
// total = subtotal + tax.
func Calculate(p *product.Record, discount int64) Amounts {
	subtotal := p.UnitPrice + p.Postage + p.Fee - discount
	tax := decimal.NewFromInt(subtotal).Mul(taxRate).Floor().IntPart()

	return Amounts{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
		Point:    AwardPoint(p.UnitPrice),
	}
}
