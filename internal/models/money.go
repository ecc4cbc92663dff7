package models

import "github.com/shopspring/decimal"

// MoneyScale is the number of fractional digits kept for prices and amounts (NUMERIC(9,2)).
const MoneyScale = 2

// MaxMoney is the largest value a NUMERIC(9,2) column holds.
var MaxMoney = decimal.RequireFromString("9999999.99")

func init() {
	// money goes over the wire as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Money rounds d to MoneyScale fractional digits.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// ExceedsMax reports whether d does not fit the money columns.
func ExceedsMax(d decimal.Decimal) bool {
	return d.GreaterThan(MaxMoney)
}
