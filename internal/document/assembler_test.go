package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/medintake/platform/internal/intake"
	"github.com/medintake/platform/internal/localization"
	"github.com/medintake/platform/internal/shared/types"
)

// stubConverter captures the markup it receives and returns canned bytes.
// The real converter needs a Chrome binary and is exercised in staging.
type stubConverter struct {
	pdf      []byte
	err      error
	lastHTML string
}

func (s *stubConverter) Convert(ctx context.Context, html string) ([]byte, error) {
	s.lastHTML = html
	return s.pdf, s.err
}

func TestAssemble(t *testing.T) {
	conv := &stubConverter{pdf: []byte("%PDF-1.7 stub")}
	a := NewAssembler(NewRenderer(), conv)

	result, err := a.Assemble(context.Background(), adultRecord(t), LayoutIntake, localization.German)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	sum := sha256.Sum256(conv.pdf)
	if want := hex.EncodeToString(sum[:]); result.ContentID != want {
		t.Errorf("ContentID = %s, want %s", result.ContentID, want)
	}
	if string(result.PDF) != "%PDF-1.7 stub" {
		t.Errorf("unexpected PDF bytes %q", result.PDF)
	}
}

func TestAssembleEmbedsSignature(t *testing.T) {
	conv := &stubConverter{pdf: []byte("%PDF-1.7 stub")}
	a := NewAssembler(NewRenderer(), conv)

	rec := minorRecord(t)
	rec.Signature = &intake.Signature{
		ID:         types.NewID(),
		Image:      []byte{0x89, 'P', 'N', 'G'},
		CapturedAt: date(2026, 8, 29),
	}

	if _, err := a.Assemble(context.Background(), rec, LayoutIntake, localization.German); err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if !strings.Contains(conv.lastHTML, "data:image/png;base64,") {
		t.Error("converter received markup without embedded signature")
	}
	if strings.Contains(conv.lastHTML, signaturePlaceholder) {
		t.Error("converter received markup with unfilled signature slot")
	}
}

func TestAssembleConverterFailure(t *testing.T) {
	conv := &stubConverter{err: errors.New("chrome exploded")}
	a := NewAssembler(NewRenderer(), conv)

	if _, err := a.Assemble(context.Background(), adultRecord(t), LayoutIntake, localization.German); !errors.Is(err, ErrRenderConversion) {
		t.Errorf("error = %v, want ErrRenderConversion", err)
	}
}

func TestAssembleEmptyConverterOutput(t *testing.T) {
	conv := &stubConverter{pdf: nil}
	a := NewAssembler(NewRenderer(), conv)

	if _, err := a.Assemble(context.Background(), adultRecord(t), LayoutIntake, localization.German); !errors.Is(err, ErrRenderConversion) {
		t.Errorf("error = %v, want ErrRenderConversion", err)
	}
}

func TestAssembleUnsupportedLanguage(t *testing.T) {
	conv := &stubConverter{pdf: []byte("%PDF")}
	a := NewAssembler(NewRenderer(), conv)

	if _, err := a.Assemble(context.Background(), adultRecord(t), LayoutIntake, localization.Language("pl")); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("error = %v, want ErrUnsupportedLanguage", err)
	}
}
