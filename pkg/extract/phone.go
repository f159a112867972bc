package extract

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// phoneCandidate matches common US phone formats: (214) 555-0192,
// 214-555-0192, 214.555.0192, +1 214 555 0192, 2145550192.
var phoneCandidate = regexp.MustCompile(`(?:\+?1[\s.\-]?)?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}`)

var nonDigit = regexp.MustCompile(`\D`)

// Phones extracts US phone numbers from raw text, normalized and formatted
// as (XXX) XXX-XXXX. Duplicates collapse by digits regardless of the source
// formatting; invalid candidates are silently discarded.
func Phones(text string) []string {
	seen := make(map[string]bool)
	var phones []string

	for _, raw := range phoneCandidate.FindAllString(text, -1) {
		digits, ok := normalizePhoneDigits(raw)
		if !ok || seen[digits] {
			continue
		}
		formatted := formatPhone(digits)
		if formatted == "" {
			continue
		}
		seen[digits] = true
		phones = append(phones, formatted)
	}

	return phones
}

// normalizePhoneDigits strips formatting and reduces to a 10-digit national
// number, accepting an optional leading country code 1.
func normalizePhoneDigits(raw string) (string, bool) {
	digits := nonDigit.ReplaceAllString(raw, "")
	if len(digits) == 11 && strings.HasPrefix(digits, "1") {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return "", false
	}
	return digits, true
}

// formatPhone renders 10 national digits as (XXX) XXX-XXXX, rejecting
// numbers that are not plausible US numbers.
func formatPhone(digits string) string {
	number, err := phonenumbers.Parse("+1"+digits, "US")
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.NATIONAL)
}
