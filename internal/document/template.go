package document

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/medintake/platform/internal/intake"
	"github.com/medintake/platform/internal/localization"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	// ErrUnsupportedLanguage indicates a language with no template
	ErrUnsupportedLanguage = errors.New("unsupported document language")
	// ErrTemplateIntegrity indicates a template that fails to parse or execute
	ErrTemplateIntegrity = errors.New("document template integrity failure")
)

// Renderer renders intake records into layout HTML. Parsed templates are
// cached per file; rendering the same record twice yields byte-identical
// markup because the template data is derived from the record alone.
type Renderer struct {
	mu    sync.RWMutex
	cache map[string]*template.Template
}

// NewRenderer creates a renderer with an empty template cache
func NewRenderer() *Renderer {
	return &Renderer{cache: make(map[string]*template.Template)}
}

// ParseAll eagerly parses every embedded template. Called at startup so a
// broken template fails the boot instead of the first request.
func (r *Renderer) ParseAll() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTemplateIntegrity, err)
	}
	for _, entry := range entries {
		if _, err := r.lookup("templates/" + entry.Name()); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) lookup(name string) (*template.Template, error) {
	r.mu.RLock()
	tmpl, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl, ok := r.cache[name]; ok {
		return tmpl, nil
	}

	tmpl, err := template.ParseFS(templateFS, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateIntegrity, name, err)
	}
	r.cache[name] = tmpl
	return tmpl, nil
}

// templateFile resolves a layout and language to an embedded template path.
// The print layout exists in German only; requesting it in another
// supported language falls back to German rather than failing.
func templateFile(layout LayoutID, lang localization.Language) (string, error) {
	if !localization.Supported(lang) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
	switch layout {
	case LayoutIntake:
		return fmt.Sprintf("templates/intake_%s.html", lang), nil
	case LayoutPrint:
		return "templates/print.html", nil
	default:
		return "", fmt.Errorf("unknown layout %q", layout)
	}
}

// personView is the template shape for guardian and policyholder blocks
type personView struct {
	FullName     string
	BirthDate    string
	Relationship string
	KVNR         string
	Address      string
	Email        string
	Phone        string
}

// templateData carries everything a layout may render. All fields are
// derived from the record snapshot; nothing here depends on the clock.
type templateData struct {
	FullName       string
	BirthDate      string
	Address        string
	Email          string
	Phone          string
	KVNR           string
	InsuranceLabel string

	Allergies   string
	Medications string
	Conditions  string
	Notes       string

	Guardian     *personView
	Policyholder *personView

	HasSignature bool
	SignedAt     string
}

var insuranceLabels = map[localization.Language]map[intake.InsuranceType]string{
	localization.German: {
		intake.InsuranceSelf:   "Selbstversichert",
		intake.InsuranceFamily: "Familienversichert",
	},
	localization.English: {
		intake.InsuranceSelf:   "Self-insured",
		intake.InsuranceFamily: "Family-insured",
	},
	localization.Turkish: {
		intake.InsuranceSelf:   "Kendi sigortalı",
		intake.InsuranceFamily: "Aile sigortalı",
	},
}

func dateFormat(lang localization.Language) string {
	if lang == localization.English {
		return "02 Jan 2006"
	}
	return "02.01.2006"
}

func formatDate(t time.Time, lang localization.Language) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateFormat(lang))
}

func formatAddress(street, postalCode, city, country string) string {
	s := street
	if postalCode != "" || city != "" {
		if s != "" {
			s += ", "
		}
		s += postalCode
		if postalCode != "" && city != "" {
			s += " "
		}
		s += city
	}
	if country != "" && country != "DE" {
		s += ", " + country
	}
	return s
}

func newPersonView(p intake.Person, lang localization.Language) personView {
	v := personView{
		FullName: p.FirstName + " " + p.LastName,
		Address:  formatAddress(p.Address.Street, p.Address.PostalCode, p.Address.City, p.Address.Country),
		Email:    p.Contact.Email,
		Phone:    p.Contact.Phone,
	}
	if p.BirthDate != nil {
		v.BirthDate = formatDate(*p.BirthDate, lang)
	}
	return v
}

var relationshipLabels = map[localization.Language]map[intake.RelationshipType]string{
	localization.German: {
		intake.RelationshipMother:        "Mutter",
		intake.RelationshipFather:        "Vater",
		intake.RelationshipLegalGuardian: "Gesetzlicher Vormund",
		intake.RelationshipOther:         "Sonstige",
	},
	localization.English: {
		intake.RelationshipMother:        "Mother",
		intake.RelationshipFather:        "Father",
		intake.RelationshipLegalGuardian: "Legal guardian",
		intake.RelationshipOther:         "Other",
	},
	localization.Turkish: {
		intake.RelationshipMother:        "Anne",
		intake.RelationshipFather:        "Baba",
		intake.RelationshipLegalGuardian: "Yasal vasi",
		intake.RelationshipOther:         "Diğer",
	},
}

func newTemplateData(rec *intake.PatientRecord, lang localization.Language) templateData {
	data := templateData{
		FullName:       rec.FullName(),
		BirthDate:      formatDate(rec.BirthDate, lang),
		Address:        formatAddress(rec.Address.Street, rec.Address.PostalCode, rec.Address.City, rec.Address.Country),
		Email:          rec.Contact.Email,
		Phone:          rec.Contact.Phone,
		KVNR:           rec.KVNR.String(),
		InsuranceLabel: insuranceLabels[lang][rec.InsuranceType],

		Allergies:   rec.History.Allergies,
		Medications: rec.History.Medications,
		Conditions:  rec.History.Conditions,
		Notes:       rec.History.Notes,

		HasSignature: rec.HasSignature(),
	}

	if rec.Guardian != nil {
		v := newPersonView(rec.Guardian.Person, lang)
		v.Relationship = relationshipLabels[lang][rec.Guardian.Relationship]
		data.Guardian = &v
	}
	if rec.Policyholder != nil {
		v := newPersonView(rec.Policyholder.Person, lang)
		v.KVNR = rec.Policyholder.KVNR.String()
		data.Policyholder = &v
	}
	if rec.Signature != nil {
		data.SignedAt = formatDate(rec.Signature.CapturedAt, lang)
	}

	return data
}

// Render produces the layout HTML for a record. The output for a given
// record, layout and language is stable across calls.
func (r *Renderer) Render(rec *intake.PatientRecord, layout LayoutID, lang localization.Language) (string, error) {
	name, err := templateFile(layout, lang)
	if err != nil {
		return "", err
	}

	tmpl, err := r.lookup(name)
	if err != nil {
		return "", err
	}

	renderLang := lang
	if layout == LayoutPrint {
		renderLang = localization.German
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newTemplateData(rec, renderLang)); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTemplateIntegrity, name, err)
	}
	return buf.String(), nil
}
