package intake

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
	"time"
)

func TestNewPatientRecord(t *testing.T) {
	tests := []struct {
		name      string
		first     string
		last      string
		birth     time.Time
		insurance InsuranceType
		wantErr   bool
	}{
		{"valid record", "Mia", "Schneider", date(1990, 5, 2), InsuranceSelf, false},
		{"missing first name", "", "Schneider", date(1990, 5, 2), InsuranceSelf, true},
		{"missing last name", "Mia", "", date(1990, 5, 2), InsuranceSelf, true},
		{"zero birth date", "Mia", "Schneider", time.Time{}, InsuranceSelf, true},
		{"unknown insurance type", "Mia", "Schneider", date(1990, 5, 2), InsuranceType("PRIVATE"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := NewPatientRecord(tt.first, tt.last, tt.birth, tt.insurance)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewPatientRecord() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if rec.Status != RecordStatusPending {
				t.Errorf("status = %s, want pending", rec.Status)
			}
			if rec.ID.IsZero() {
				t.Error("expected generated ID")
			}
		})
	}
}

func TestNewSignature(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	encoded := base64.StdEncoding.EncodeToString(raw)
	capturedAt := date(2026, 8, 29)

	t.Run("data URI payload", func(t *testing.T) {
		sig, err := NewSignature("data:image/png;base64,"+encoded, capturedAt)
		if err != nil {
			t.Fatalf("NewSignature() error = %v", err)
		}
		if !bytes.Equal(sig.Image, raw) {
			t.Errorf("image = %x, want %x", sig.Image, raw)
		}
		if !sig.CapturedAt.Equal(capturedAt) {
			t.Errorf("capturedAt = %v, want %v", sig.CapturedAt, capturedAt)
		}
	})

	t.Run("bare base64 payload", func(t *testing.T) {
		sig, err := NewSignature(encoded, capturedAt)
		if err != nil {
			t.Fatalf("NewSignature() error = %v", err)
		}
		if !bytes.Equal(sig.Image, raw) {
			t.Errorf("image = %x, want %x", sig.Image, raw)
		}
	})

	t.Run("invalid base64", func(t *testing.T) {
		if _, err := NewSignature("data:image/png;base64,@@@", capturedAt); !errors.Is(err, ErrSignatureDecode) {
			t.Errorf("error = %v, want ErrSignatureDecode", err)
		}
	})

	t.Run("empty image", func(t *testing.T) {
		if _, err := NewSignature("data:image/png;base64,", capturedAt); !errors.Is(err, ErrSignatureDecode) {
			t.Errorf("error = %v, want ErrSignatureDecode", err)
		}
	})
}

func TestAttachSignature(t *testing.T) {
	rec := testRecord(t, date(1990, 5, 2), InsuranceSelf)

	sig, err := NewSignature(base64.StdEncoding.EncodeToString([]byte("stroke data")), time.Now())
	if err != nil {
		t.Fatalf("NewSignature() error = %v", err)
	}

	if err := rec.AttachSignature(sig); err != nil {
		t.Fatalf("AttachSignature() error = %v", err)
	}
	if !rec.HasSignature() {
		t.Error("HasSignature() = false after attach")
	}

	if err := rec.AttachSignature(sig); err == nil {
		t.Error("second AttachSignature(): expected error")
	}
}
