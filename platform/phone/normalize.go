// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "NL"

// ErrInvalidNumber is returned when a number cannot be parsed or is not a
// valid number for its region.
var ErrInvalidNumber = errors.New("invalid phone number")

// Strip removes every character except digits and a leading '+'.
func Strip(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range strings.TrimSpace(input) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Canonicalize strips formatting from input and returns the E.164 form.
// Numbers starting with '+' are parsed as international, everything else is
// read as a national number of region.
func Canonicalize(input, region string) (string, error) {
	stripped := Strip(input)
	if stripped == "" || stripped == "+" {
		return "", ErrInvalidNumber
	}
	if region == "" {
		region = DefaultRegion
	}

	number, err := phonenumbers.Parse(stripped, strings.ToUpper(region))
	if err != nil {
		return "", ErrInvalidNumber
	}
	if !phonenumbers.IsValidNumber(number) {
		return "", ErrInvalidNumber
	}

	return phonenumbers.Format(number, phonenumbers.E164), nil
}

