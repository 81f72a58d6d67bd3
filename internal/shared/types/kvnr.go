package types

import (
	"fmt"
	"regexp"
)

// KVNR represents a German statutory health insurance number
// (Krankenversichertennummer). Format: one capital letter followed by nine
// digits, the last of which is a check digit.
type KVNR string

var kvnrRegex = regexp.MustCompile(`^[A-Z]\d{9}$`)

// ParseKVNR validates and parses a KVNR string
func ParseKVNR(s string) (KVNR, error) {
	if !kvnrRegex.MatchString(s) {
		return "", fmt.Errorf("KVNR must be one capital letter followed by 9 digits")
	}

	k := KVNR(s)
	if !k.IsValid() {
		return "", fmt.Errorf("invalid KVNR check digit")
	}

	return k, nil
}

// String returns the string representation
func (k KVNR) String() string {
	return string(k)
}

// Masked returns a masked version for display and logs (first 4 characters visible)
func (k KVNR) Masked() string {
	if len(k) < 10 {
		return "**********"
	}
	return string(k)[:4] + "******"
}

// IsValid validates the KVNR check digit. The leading letter is converted to
// its two-digit alphabet position, the resulting ten digits are weighted
// alternately 1 and 2 from the left, products above 9 are reduced to their
// digit sum, and the total modulo 10 must equal the final digit.
func (k KVNR) IsValid() bool {
	if len(k) != 10 {
		return false
	}

	letter := k[0]
	if letter < 'A' || letter > 'Z' {
		return false
	}

	pos := int(letter-'A') + 1
	digits := []int{pos / 10, pos % 10}
	for i := 1; i < 9; i++ {
		c := k[i]
		if c < '0' || c > '9' {
			return false
		}
		digits = append(digits, int(c-'0'))
	}

	sum := 0
	for i, d := range digits {
		p := d
		if i%2 == 1 {
			p *= 2
		}
		if p > 9 {
			p -= 9
		}
		sum += p
	}

	return sum%10 == int(k[9]-'0')
}

// IsZero checks if the KVNR is empty
func (k KVNR) IsZero() bool {
	return k == ""
}
