package intake

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAge(t *testing.T) {
	tests := []struct {
		name      string
		birth     time.Time
		reference time.Time
		want      int
	}{
		{"birthday not yet reached", date(2000, 6, 15), date(2026, 6, 14), 25},
		{"birthday exactly today", date(2000, 6, 15), date(2026, 6, 15), 26},
		{"birthday already passed", date(2000, 6, 15), date(2026, 6, 16), 26},
		{"day after birth", date(2026, 6, 14), date(2026, 6, 15), 0},
		{"same day as birth", date(2026, 6, 15), date(2026, 6, 15), 0},
		{"turns 18 on reference date", date(2008, 8, 29), date(2026, 8, 29), 18},
		{"still 17 the day before", date(2008, 8, 29), date(2026, 8, 28), 17},
		{"leap birthday, Feb 28 of non-leap year", date(2008, 2, 29), date(2026, 2, 28), 17},
		{"leap birthday, Mar 1 of non-leap year", date(2008, 2, 29), date(2026, 3, 1), 18},
		{"leap birthday, Feb 29 of leap year", date(2008, 2, 29), date(2028, 2, 29), 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Age(tt.birth, tt.reference)
			if err != nil {
				t.Fatalf("Age() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Age() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAgeInvalid(t *testing.T) {
	ref := date(2026, 8, 29)

	tests := []struct {
		name  string
		birth time.Time
	}{
		{"zero birth date", time.Time{}},
		{"birth date in the future", date(2027, 1, 1)},
		{"birth date tomorrow", date(2026, 8, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Age(tt.birth, ref); err != ErrInvalidBirthDate {
				t.Errorf("Age() error = %v, want ErrInvalidBirthDate", err)
			}
		})
	}
}
