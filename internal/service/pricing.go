package service

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Selling prices include VAT. PriceWithoutVAT strips it:
// net = price / (1 + vat/100).
func PriceWithoutVAT(price, vatPct decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(vatPct.Div(hundred))
	if factor.IsZero() {
		return price
	}
	return price.Div(factor).Round(2)
}

// VATAmount is the VAT portion contained in a VAT-inclusive price.
func VATAmount(price, vatPct decimal.Decimal) decimal.Decimal {
	return price.Sub(PriceWithoutVAT(price, vatPct))
}

// MarginPct is the profit share of the net selling price, in percent.
// Zero when the product has no net price.
func MarginPct(cost, price, vatPct decimal.Decimal) decimal.Decimal {
	net := PriceWithoutVAT(price, vatPct)
	if !net.IsPositive() {
		return decimal.Zero
	}
	return net.Sub(cost).Div(net).Mul(hundred).Round(2)
}

// ChangePct returns the relative change from old to new in percent, zero when
// old is zero.
func ChangePct(old, new decimal.Decimal) decimal.Decimal {
	if old.IsZero() {
		return decimal.Zero
	}
	return new.Sub(old).Div(old).Mul(hundred).Round(2)
}

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
