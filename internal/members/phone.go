// internal/members/phone.go
package members

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone canonicalizes a phone number for storage and matching.
// Formatting characters (spaces, dashes, dots, parentheses) are stripped
// and a leading international "00" prefix becomes "+". "00351 912-345-678"
// and "+351912345678" normalize to the same string, so the front desk can
// type either and still hit the same member.
func NormalizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch r {
		case ' ', '-', '.', '(', ')':
			continue
		}
		b.WriteRune(r)
	}

	normalized := b.String()
	if strings.HasPrefix(normalized, "00") {
		normalized = "+" + normalized[2:]
	}
	return normalized
}

// FormatE164 parses a normalized phone against the default region and
// returns the E.164 form, or the normalized input unchanged when the
// number does not parse. Matching never depends on this succeeding; it
// only tidies what gets stored and displayed.
func FormatE164(normalized, defaultRegion string) string {
	num, err := phonenumbers.Parse(normalized, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return normalized
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}
