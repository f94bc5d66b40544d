// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "US"

// Digits strips every non-digit character from the input.
func Digits(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeDial formats a destination number for the call gateway.
// Numbers already in international format pass through unchanged. Bare
// 10-digit numbers get a +1 country code, 11-digit numbers starting with 1
// get a +. Anything else is tried against a general parser and, failing
// that, returned as-is so the gateway can reject it.
func NormalizeDial(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	if strings.HasPrefix(trimmed, "+") {
		return "+" + Digits(trimmed)
	}

	digits := Digits(trimmed)
	switch {
	case len(digits) == 10:
		return "+1" + digits
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return "+" + digits
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err == nil && phonenumbers.IsValidNumber(number) {
		return phonenumbers.Format(number, phonenumbers.E164)
	}

	return trimmed
}
