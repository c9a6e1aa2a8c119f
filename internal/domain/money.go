package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Money travels as JSON numbers, matching what API clients already send.
	decimal.MarshalJSONWithoutQuotes = true
}

var errNegativeAmount = errors.New("amount must not be negative")

// ParsePrice normalises a stored price (text or number rendered as text).
func ParsePrice(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errNegativeAmount
	}
	return d, nil
}

// NonNegativeOrZero coerces optional client-supplied amounts such as the
// delivery fee: missing, unparsable or negative values become zero.
func NonNegativeOrZero(raw *decimal.Decimal) decimal.Decimal {
	if raw == nil || raw.IsNegative() {
		return decimal.Zero
	}
	return *raw
}
