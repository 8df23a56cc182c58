// Package phone normalizes phone numbers to E.164 before storage so
// lookups and deduplication work on a canonical form.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is assumed for numbers entered without a country code.
const DefaultRegion = "US"

// NormalizeE164 parses raw input and returns the E.164 representation.
// Empty input returns empty output, not an error.
func NormalizeE164(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}

	num, err := phonenumbers.Parse(trimmed, DefaultRegion)
	if err != nil {
		return "", err
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", phonenumbers.ErrNotANumber
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}
