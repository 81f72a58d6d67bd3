package intake

import (
	"errors"
	"time"
)

// ErrInvalidBirthDate indicates a birth date that is zero or lies in the
// future relative to the reference date.
var ErrInvalidBirthDate = errors.New("invalid birth date")

// Age computes the number of complete calendar years between birthDate and
// referenceDate. A birthday falling exactly on the reference date counts as
// reached. A Feb 29 birth date in a non-leap reference year counts as
// reached on Mar 1.
func Age(birthDate, referenceDate time.Time) (int, error) {
	if birthDate.IsZero() {
		return 0, ErrInvalidBirthDate
	}

	by, bm, bd := birthDate.Date()
	ry, rm, rd := referenceDate.Date()

	if by > ry || (by == ry && (bm > rm || (bm == rm && bd > rd))) {
		return 0, ErrInvalidBirthDate
	}

	years := ry - by
	if rm < bm || (rm == bm && rd < bd) {
		years--
	}

	return years, nil
}
