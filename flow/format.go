package flow

import "strings"

// FormatCardNumber strips non-digits, truncates to 16 digits and regroups
// them with a space every four. A trailing partial group keeps no separator,
// so the function is idempotent.
func FormatCardNumber(value string) string {
	digits := stripNonDigits(value)
	if len(digits) > 16 {
		digits = digits[:16]
	}

	var b strings.Builder
	for i := 0; i < len(digits); i++ {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(digits[i])
	}
	return b.String()
}

// FormatExpiry strips non-digits and renders MM/YY, inserting the slash once
// more than two digits are present. The result never exceeds five
// characters and reformatting an already formatted value is a no-op.
func FormatExpiry(value string) string {
	digits := stripNonDigits(value)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) > 2 {
		return digits[:2] + "/" + digits[2:]
	}
	return digits
}

// FormatCVV strips non-digits and truncates to three.
func FormatCVV(value string) string {
	digits := stripNonDigits(value)
	if len(digits) > 3 {
		digits = digits[:3]
	}
	return digits
}

func stripNonDigits(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
