package types

import "testing"

func TestKVNRIsValid(t *testing.T) {
	tests := []struct {
		kvnr  string
		valid bool
	}{
		{"A123456780", true},
		{"Z987654321", true},
		{"Q301425847", true},
		{"A123456789", false}, // wrong check digit
		{"A12345678", false},  // too short
		{"A1234567890", false},
		{"a123456780", false}, // lowercase letter
		{"1123456780", false}, // no leading letter
		{"AB23456780", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.kvnr, func(t *testing.T) {
			if got := KVNR(tt.kvnr).IsValid(); got != tt.valid {
				t.Errorf("IsValid(%q) = %v, want %v", tt.kvnr, got, tt.valid)
			}
		})
	}
}

func TestParseKVNR(t *testing.T) {
	if _, err := ParseKVNR("A123456780"); err != nil {
		t.Errorf("ParseKVNR() error = %v", err)
	}
	if _, err := ParseKVNR("A123456789"); err == nil {
		t.Error("ParseKVNR() with bad check digit: expected error")
	}
	if _, err := ParseKVNR("nonsense"); err == nil {
		t.Error("ParseKVNR() with bad format: expected error")
	}
}

func TestKVNRMasked(t *testing.T) {
	if got := KVNR("A123456780").Masked(); got != "A123******" {
		t.Errorf("Masked() = %q", got)
	}
	if got := KVNR("A12").Masked(); got != "**********" {
		t.Errorf("Masked() short = %q", got)
	}
}
