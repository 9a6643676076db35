package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a user-entered amount such as "1500", "-20.5" or " 3.10 ".
func ParseAmount(field, s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero, &ValidationError{Field: field, Value: s, Reason: "amount is required"}
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Value: s, Reason: "not a number"}
	}
	return d, nil
}
