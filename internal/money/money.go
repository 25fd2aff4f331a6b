// Package money normalizes monetary amounts to two fixed fractional digits.
package money

import "github.com/shopspring/decimal"

// Norm rounds an amount to 2 decimal places, half away from zero.
func Norm(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Line returns unitPrice * qty at 2 decimal places.
func Line(unitPrice decimal.Decimal, qty int) decimal.Decimal {
	return Norm(unitPrice.Mul(decimal.NewFromInt(int64(qty))))
}

// Parse parses a decimal string and normalizes it.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return Norm(d), nil
}
