package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tourledger/internal/numeric"
)

var one = decimal.NewFromInt(1)

// dec converts a normalized number to a decimal.
func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(numeric.ToNumber(v))
}

// ceilDiv divides num by divisor and rounds up to a whole Taka.
// divisor must be positive; callers floor their divisors at 1.
func ceilDiv(num, divisor decimal.Decimal) decimal.Decimal {
	if !divisor.IsPositive() {
		divisor = one
	}
	return num.Div(divisor).Ceil()
}

// atLeastOne returns d when positive, else 1.
func atLeastOne(d decimal.Decimal) decimal.Decimal {
	if d.IsPositive() {
		return d
	}
	return one
}
