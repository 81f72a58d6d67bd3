package document

import (
	"strings"
	"testing"
	"time"

	"github.com/medintake/platform/internal/intake"
	"github.com/medintake/platform/internal/localization"
	"github.com/medintake/platform/internal/shared/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func adultRecord(t *testing.T) *intake.PatientRecord {
	t.Helper()
	rec, err := intake.NewPatientRecord("Mia", "Schneider", date(1990, 5, 2), intake.InsuranceSelf)
	if err != nil {
		t.Fatalf("NewPatientRecord() error = %v", err)
	}
	rec.Address = types.Address{Street: "Hauptstraße 12", City: "Köln", PostalCode: "50667", Country: "DE"}
	rec.Contact = types.ContactInfo{Email: "mia@example.org", Phone: "0221 123456"}
	rec.KVNR = types.KVNR("A123456780")
	rec.History = intake.MedicalHistory{Allergies: "Penicillin"}
	return rec
}

func minorRecord(t *testing.T) *intake.PatientRecord {
	t.Helper()
	rec, err := intake.NewPatientRecord("Emre", "Yılmaz", date(2016, 3, 12), intake.InsuranceFamily)
	if err != nil {
		t.Fatalf("NewPatientRecord() error = %v", err)
	}
	rec.AttachGuardian(intake.RelationshipFather, intake.Person{FirstName: "Deniz", LastName: "Yılmaz"})
	rec.AttachPolicyholder(types.KVNR("Z987654321"), intake.Person{FirstName: "Deniz", LastName: "Yılmaz"})
	return rec
}

func TestRendererParseAll(t *testing.T) {
	if err := NewRenderer().ParseAll(); err != nil {
		t.Fatalf("ParseAll() error = %v", err)
	}
}

func TestRenderIntakeLayout(t *testing.T) {
	r := NewRenderer()
	rec := adultRecord(t)

	html, err := r.Render(rec, LayoutIntake, localization.German)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	for _, want := range []string{"Mia Schneider", "02.05.1990", "A123456780", "Selbstversichert", "Penicillin", "Hauptstraße 12"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered markup missing %q", want)
		}
	}

	// No co-parties, no co-party sections, no signature slot.
	if strings.Contains(html, "Erziehungsberechtigte") {
		t.Error("guardian section rendered for record without guardian")
	}
	if strings.Contains(html, signaturePlaceholder) {
		t.Error("signature slot rendered for unsigned record")
	}
}

func TestRenderCoPartySections(t *testing.T) {
	r := NewRenderer()
	rec := minorRecord(t)

	html, err := r.Render(rec, LayoutIntake, localization.Turkish)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	for _, want := range []string{"Deniz Yılmaz", "Veli", "Baba", "Sigorta Sahibi", "Z987654321"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered markup missing %q", want)
		}
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	r := NewRenderer()
	rec := minorRecord(t)

	first, err := r.Render(rec, LayoutIntake, localization.English)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	second, err := r.Render(rec, LayoutIntake, localization.English)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if first != second {
		t.Error("two renders of the same record differ")
	}
}

func TestRenderPrintLayout(t *testing.T) {
	r := NewRenderer()
	rec := adultRecord(t)

	html, err := r.Render(rec, LayoutPrint, localization.English)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	// Print layout is the German practice printout regardless of the
	// requested language, and it always shows the birth date.
	if !strings.Contains(html, "geb. 02.05.1990") {
		t.Error("print layout missing birth date")
	}
	if !strings.Contains(html, "Anamnese") {
		t.Error("print layout missing anamnesis section")
	}
}

func TestRenderUnsupportedLanguage(t *testing.T) {
	r := NewRenderer()
	rec := adultRecord(t)

	if _, err := r.Render(rec, LayoutIntake, localization.Language("fr")); err == nil {
		t.Error("Render() with unsupported language: expected error")
	}
}

func TestRenderSignedRecordHasSlot(t *testing.T) {
	r := NewRenderer()
	rec := adultRecord(t)
	rec.Signature = &intake.Signature{
		ID:         types.NewID(),
		Image:      []byte{0x89, 'P', 'N', 'G'},
		CapturedAt: date(2026, 8, 29),
	}

	html, err := r.Render(rec, LayoutIntake, localization.German)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if !strings.Contains(html, signaturePlaceholder) {
		t.Error("signed record rendered without signature slot")
	}
	if !strings.Contains(html, "29.08.2026") {
		t.Error("signature capture date missing")
	}
}
