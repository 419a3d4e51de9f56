// Package money canonicalizes monetary amounts. Display values arrive in
// many shapes ("$1,234.56", "(80.00)", "80", "-45"); the record store keeps
// a single signed decimal whose sign is derived from the transaction type,
// never entered independently.
package money

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dmelton/splitbook/internal/domain"
)

// Parse converts a display amount to a decimal. Currency symbols, thousands
// separators and spaces are stripped; a value wrapped in parentheses is
// negative. Anything that does not survive as a finite decimal fails with
// ErrInvalidAmount.
func Parse(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, &domain.ErrInvalidAmount{Input: raw}
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	s = b.String()
	if s == "" || s == "-" || s == "." {
		return decimal.Zero, &domain.ErrInvalidAmount{Input: raw}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &domain.ErrInvalidAmount{Input: raw}
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// Normalize parses raw and applies the sign rule for the transaction type:
// Expense and Payment are stored negative, Income and Charge positive.
// Normalize is pure and idempotent.
func Normalize(txType, raw string) (decimal.Decimal, error) {
	d, err := Parse(raw)
	if err != nil {
		return decimal.Zero, err
	}
	return NormalizeDecimal(txType, d)
}

// NormalizeDecimal applies the sign rule to an already-parsed amount.
func NormalizeDecimal(txType string, d decimal.Decimal) (decimal.Decimal, error) {
	switch txType {
	case domain.TypeExpense, domain.TypePayment:
		return d.Abs().Neg(), nil
	case domain.TypeIncome, domain.TypeCharge:
		return d.Abs(), nil
	default:
		return decimal.Zero, &domain.ErrValidation{Field: "type", Message: "unknown transaction type: " + txType}
	}
}
