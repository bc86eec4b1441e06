package itau

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const amountWidth = 15

// EncodingError marks a record field that cannot be represented in its
// destination column range.
type EncodingError struct {
	Field  string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding %s: %s", e.Field, e.Reason)
}

var centsFactor = decimal.NewFromInt(100)

// EncodeAmount renders a monetary amount as the bank's 15-digit zero-padded
// integer-cents field. The amount is rounded to the nearest cent. Negative
// amounts and amounts whose cents exceed 15 digits are EncodingErrors.
func EncodeAmount(amount decimal.Decimal) (string, error) {
	cents := amount.Mul(centsFactor).Round(0)
	if cents.Sign() < 0 {
		return "", &EncodingError{Field: "amount", Reason: "amount is negative"}
	}
	s := cents.String()
	if len(s) > amountWidth {
		return "", &EncodingError{Field: "amount", Reason: "amount exceeds 15 digits in cents"}
	}
	return PadLeftZero(s, amountWidth), nil
}
