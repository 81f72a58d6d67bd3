package intake

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/medintake/platform/internal/shared/types"
)

// InsuranceType classifies how the patient is covered
type InsuranceType string

const (
	InsuranceSelf   InsuranceType = "SELF_INSURED"
	InsuranceFamily InsuranceType = "FAMILY_INSURED"
)

// Valid reports whether the insurance type is a known classification
func (t InsuranceType) Valid() bool {
	return t == InsuranceSelf || t == InsuranceFamily
}

// RelationshipType defines the guardian's relationship to the patient
type RelationshipType string

const (
	RelationshipMother        RelationshipType = "mother"
	RelationshipFather        RelationshipType = "father"
	RelationshipLegalGuardian RelationshipType = "legal_guardian"
	RelationshipOther         RelationshipType = "other"
)

// RecordStatus defines the lifecycle status of an intake record
type RecordStatus string

const (
	RecordStatusPending  RecordStatus = "pending"
	RecordStatusAccepted RecordStatus = "accepted"
	RecordStatusRejected RecordStatus = "rejected"
)

// MedicalHistory holds the free-text anamnesis fields
type MedicalHistory struct {
	Allergies   string `json:"allergies,omitempty"`
	Medications string `json:"medications,omitempty"`
	Conditions  string `json:"conditions,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// Person holds the personal-field shape shared by guardians and policyholders
type Person struct {
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	BirthDate *time.Time        `json:"birth_date,omitempty"`
	Address   types.Address     `json:"address"`
	Contact   types.ContactInfo `json:"contact"`
}

// Guardian is the legal-custody holder for a minor patient. It is owned by
// exactly one patient record and lives only as long as the submission that
// created it.
type Guardian struct {
	ID           types.ID         `json:"id"`
	Relationship RelationshipType `json:"relationship"`
	Person
}

// Policyholder is the person whose policy covers the patient. It may describe
// the same real person as the Guardian but is never merged with it.
type Policyholder struct {
	ID   types.ID   `json:"id"`
	KVNR types.KVNR `json:"kvnr,omitempty"`
	Person
}

// Signature is the captured consent signature. Image bytes are immutable
// after capture; only the integrity metadata is updated, by the external
// auditing process.
type Signature struct {
	ID                 types.ID   `json:"id"`
	Image              []byte     `json:"-"`
	CapturedAt         time.Time  `json:"captured_at"`
	Tampered           bool       `json:"tampered"`
	IntegrityCheckedAt *time.Time `json:"integrity_checked_at,omitempty"`
}

// ErrSignatureDecode indicates a signature payload that is not valid base64
// or decodes to zero bytes.
var ErrSignatureDecode = errors.New("signature payload could not be decoded")

// NewSignature decodes a captured signature payload. The payload is a data
// URI ("data:image/png;base64,...."); everything before the MIME comma
// separator is discarded.
func NewSignature(payload string, capturedAt time.Time) (*Signature, error) {
	if idx := strings.IndexByte(payload, ','); idx >= 0 {
		payload = payload[idx+1:]
	}

	image, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureDecode, err)
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrSignatureDecode)
	}

	return &Signature{
		ID:         types.NewID(),
		Image:      image,
		CapturedAt: capturedAt,
	}, nil
}

// PatientRecord is the aggregate root for one intake submission. Age is
// always derived from BirthDate via Age(); it is never stored.
type PatientRecord struct {
	ID        types.ID  `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	BirthDate time.Time `json:"birth_date"`

	Address types.Address     `json:"address"`
	Contact types.ContactInfo `json:"contact"`

	KVNR          types.KVNR    `json:"kvnr,omitempty"`
	InsuranceType InsuranceType `json:"insurance_type"`

	History MedicalHistory `json:"history"`

	Guardian     *Guardian     `json:"guardian,omitempty"`
	Policyholder *Policyholder `json:"policyholder,omitempty"`
	Signature    *Signature    `json:"signature,omitempty"`

	Status    RecordStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewPatientRecord creates a new pending intake record
func NewPatientRecord(firstName, lastName string, birthDate time.Time, insuranceType InsuranceType) (*PatientRecord, error) {
	if firstName == "" || lastName == "" {
		return nil, fmt.Errorf("first and last name are required")
	}
	if birthDate.IsZero() {
		return nil, fmt.Errorf("birth date is required")
	}
	if !insuranceType.Valid() {
		return nil, fmt.Errorf("unknown insurance type %q", insuranceType)
	}

	now := time.Now()
	return &PatientRecord{
		ID:            types.NewID(),
		FirstName:     firstName,
		LastName:      lastName,
		BirthDate:     birthDate,
		InsuranceType: insuranceType,
		Status:        RecordStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// AttachGuardian sets the guardian for the record
func (p *PatientRecord) AttachGuardian(relationship RelationshipType, person Person) *Guardian {
	g := &Guardian{
		ID:           types.NewID(),
		Relationship: relationship,
		Person:       person,
	}
	p.Guardian = g
	p.UpdatedAt = time.Now()
	return g
}

// AttachPolicyholder sets the policyholder for the record
func (p *PatientRecord) AttachPolicyholder(kvnr types.KVNR, person Person) *Policyholder {
	ph := &Policyholder{
		ID:     types.NewID(),
		KVNR:   kvnr,
		Person: person,
	}
	p.Policyholder = ph
	p.UpdatedAt = time.Now()
	return ph
}

// AttachSignature sets the captured signature. A record carries at most one
// signature per submission.
func (p *PatientRecord) AttachSignature(sig *Signature) error {
	if p.Signature != nil {
		return fmt.Errorf("record already has a signature")
	}
	p.Signature = sig
	p.UpdatedAt = time.Now()
	return nil
}

// HasSignature reports whether a signature was captured
func (p *PatientRecord) HasSignature() bool {
	return p.Signature != nil && len(p.Signature.Image) > 0
}

// ApplyVerdict moves the record out of the pending state
func (p *PatientRecord) ApplyVerdict(v Verdict) error {
	if p.Status != RecordStatusPending {
		return fmt.Errorf("record is already %s", p.Status)
	}

	switch v.Status {
	case VerdictAccepted:
		p.Status = RecordStatusAccepted
	case VerdictRejected:
		p.Status = RecordStatusRejected
	default:
		return fmt.Errorf("cannot apply %s verdict", v.Status)
	}

	p.UpdatedAt = time.Now()
	return nil
}

// FullName returns the display name
func (p *PatientRecord) FullName() string {
	return p.FirstName + " " + p.LastName
}
