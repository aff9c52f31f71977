// Package core provides money parsing and formatting utilities.
//
// Amounts are shopspring decimals end to end. Display strings follow the
// Indian digit grouping convention (12,34,567.89) with the Rupee sign.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	RupeeSign = "₹"
	// NotAvailable is printed in place of a missing amount.
	NotAvailable = "N/A"
)

// FormatINR formats an amount with Indian digit grouping.
//
// The value is rounded half away from zero to two decimal places first, so
// the sign reflects the rounded value and "-₹0.00" is never produced.
//
// Examples:
//
//	FormatINR(1234567.5) -> "₹12,34,567.50"
//	FormatINR(100)       -> "₹100.00"
//	FormatINR(-45.1)     -> "-₹45.10"
func FormatINR(d decimal.Decimal) string {
	r := d.Round(2)
	sign := ""
	if r.IsNegative() {
		sign = "-"
	}
	intPart, frac, _ := strings.Cut(r.Abs().StringFixed(2), ".")
	return sign + RupeeSign + groupIndian(intPart) + "." + frac
}

// FormatNullINR formats a nullable amount; null becomes "N/A".
func FormatNullINR(d decimal.NullDecimal) string {
	if !d.Valid {
		return NotAvailable
	}
	return FormatINR(d.Decimal)
}

// groupIndian inserts separators: the last three digits form one group and
// the remaining digits are grouped in pairs.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var b strings.Builder
	lead := len(head) % 2
	if lead == 0 {
		lead = 2
	}
	b.WriteString(head[:lead])
	for i := lead; i < len(head); i += 2 {
		b.WriteByte(',')
		b.WriteString(head[i : i+2])
	}
	b.WriteByte(',')
	b.WriteString(tail)
	return b.String()
}

// ParseINR reverses FormatINR. "N/A" yields a null amount.
func ParseINR(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == NotAvailable {
		return decimal.NullDecimal{}, nil
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if !strings.HasPrefix(s, RupeeSign) {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %q has no currency sign", ErrInvalidAmount, s)
	}
	s = strings.ReplaceAll(strings.TrimPrefix(s, RupeeSign), ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if neg {
		d = d.Neg()
	}
	return decimal.NewNullDecimal(d), nil
}

// ParseAmount reads a statement cell. Blank cells, "-" and "nan" are null.
// Thousands separators and a leading currency marker are accepted.
//
// Examples:
//
//	ParseAmount("1,23,456.70") -> 123456.70
//	ParseAmount("INR 500")     -> 500
//	ParseAmount("")            -> null
func ParseAmount(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "-", "nan", "null", "n/a":
		return decimal.NullDecimal{}, nil
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(s[1:])
	}
	for _, prefix := range []string{RupeeSign, "INR", "Rs.", "Rs"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
			break
		}
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if neg {
		d = d.Neg()
	}
	return decimal.NewNullDecimal(d), nil
}
