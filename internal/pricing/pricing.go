// Package pricing holds the order pricing policy: unit price selection,
// flat shipping and percentage tax.
package pricing

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Policy is the pricing configuration applied to every order.
type Policy struct {
	ShippingFlatFee decimal.Decimal
	TaxRate         decimal.Decimal // fraction of subtotal, 0.10 = 10%
}

func DefaultPolicy() Policy {
	return Policy{
		ShippingFlatFee: decimal.NewFromInt(10),
		TaxRate:         decimal.RequireFromString("0.10"),
	}
}

// UnitPrice is the sale price when one is set, else the list price.
func UnitPrice(price decimal.Decimal, salePrice *decimal.Decimal) decimal.Decimal {
	if salePrice != nil {
		return *salePrice
	}
	return price
}

// Line is one priced line item.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

func (l Line) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Compute prices a set of lines. Shipping is charged only on a non-empty subtotal.
func (p Policy) Compute(lines []Line) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Amount())
	}

	shipping := decimal.Zero
	if subtotal.IsPositive() {
		shipping = p.ShippingFlatFee
	}
	tax := subtotal.Mul(p.TaxRate).Round(2)

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

// MinorUnits converts an amount to the smallest currency unit (cents).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
