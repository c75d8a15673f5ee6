package sms

import "strings"

// NormalizePhone reduces a free-form phone number to a single international
// form: country code followed by the subscriber number, digits only. Local
// 10-digit numbers get defaultCC prepended; numbers that already carry a
// country code (leading "+" or more than 10 digits) pass through. Returns
// ok=false for anything that cannot be a dialable number.
func NormalizePhone(raw, defaultCC string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	hasPlus := strings.HasPrefix(trimmed, "+")

	var b strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) < 10 || len(digits) > 15:
		return "", false
	case hasPlus || len(digits) > 10:
		return digits, true
	default:
		return defaultCC + digits, true
	}
}
