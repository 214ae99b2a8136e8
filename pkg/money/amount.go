package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// maxScale is the finest granularity accepted for monetary input.
const maxScale = 2

// ParseAmount parses a monetary amount from request input. The amount must
// be a valid decimal, strictly positive, and carry at most two decimal
// places.
func ParseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount is required")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}

	if d.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("amount must be positive")
	}

	if d.Exponent() < -maxScale {
		return decimal.Zero, fmt.Errorf("amount %q has more than %d decimal places", s, maxScale)
	}

	return d, nil
}

// Format renders an amount with exactly two decimal places for responses.
func Format(d decimal.Decimal) string {
	return d.StringFixed(maxScale)
}
