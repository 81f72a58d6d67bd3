package intake

import (
	"testing"
	"time"

	"github.com/medintake/platform/internal/shared/types"
)

func testRecord(t *testing.T, birth time.Time, insurance InsuranceType) *PatientRecord {
	t.Helper()
	rec, err := NewPatientRecord("Mia", "Schneider", birth, insurance)
	if err != nil {
		t.Fatalf("NewPatientRecord() error = %v", err)
	}
	return rec
}

func withGuardian(rec *PatientRecord) *PatientRecord {
	rec.AttachGuardian(RelationshipMother, Person{FirstName: "Lena", LastName: "Schneider"})
	return rec
}

func withPolicyholder(rec *PatientRecord) *PatientRecord {
	rec.AttachPolicyholder(types.KVNR("A123456780"), Person{FirstName: "Lena", LastName: "Schneider"})
	return rec
}

func TestValidateMinor(t *testing.T) {
	birth := date(2016, 3, 12) // age 10 at the reference date below
	ref := date(2026, 8, 29)

	tests := []struct {
		name       string
		rec        *PatientRecord
		wantStatus VerdictStatus
		wantReason ReasonCode
	}{
		{
			name:       "complete family-insured minor is accepted",
			rec:        withPolicyholder(withGuardian(testRecord(t, birth, InsuranceFamily))),
			wantStatus: VerdictAccepted,
		},
		{
			name:       "missing guardian",
			rec:        withPolicyholder(testRecord(t, birth, InsuranceFamily)),
			wantStatus: VerdictRejected,
			wantReason: ReasonMissingGuardian,
		},
		{
			name:       "missing policyholder",
			rec:        withGuardian(testRecord(t, birth, InsuranceFamily)),
			wantStatus: VerdictRejected,
			wantReason: ReasonMissingPolicyholder,
		},
		{
			name:       "self-insured minor with both co-parties",
			rec:        withPolicyholder(withGuardian(testRecord(t, birth, InsuranceSelf))),
			wantStatus: VerdictRejected,
			wantReason: ReasonInvalidInsuranceTypeForMinor,
		},
		{
			name:       "guardian requirement checked before insurance type",
			rec:        testRecord(t, birth, InsuranceSelf),
			wantStatus: VerdictRejected,
			wantReason: ReasonMissingGuardian,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateAt(tt.rec, ref)
			if got.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", got.Status, tt.wantStatus)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("reason = %s, want %s", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestValidateAdult(t *testing.T) {
	birth := date(1990, 5, 2)
	ref := date(2026, 8, 29)

	tests := []struct {
		name       string
		rec        *PatientRecord
		wantStatus VerdictStatus
		wantReason ReasonCode
	}{
		{
			name:       "self-insured adult is accepted",
			rec:        testRecord(t, birth, InsuranceSelf),
			wantStatus: VerdictAccepted,
		},
		{
			name:       "self-insured adult with stray co-parties is still accepted",
			rec:        withPolicyholder(withGuardian(testRecord(t, birth, InsuranceSelf))),
			wantStatus: VerdictAccepted,
		},
		{
			name:       "family-insured adult with policyholder is accepted",
			rec:        withPolicyholder(testRecord(t, birth, InsuranceFamily)),
			wantStatus: VerdictAccepted,
		},
		{
			name:       "family-insured adult without policyholder",
			rec:        testRecord(t, birth, InsuranceFamily),
			wantStatus: VerdictRejected,
			wantReason: ReasonMissingPolicyholder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateAt(tt.rec, ref)
			if got.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", got.Status, tt.wantStatus)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("reason = %s, want %s", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestValidateMajorityBoundary(t *testing.T) {
	// Turns 18 exactly on the reference date: adult rules apply.
	rec := testRecord(t, date(2008, 8, 29), InsuranceSelf)
	got := ValidateAt(rec, date(2026, 8, 29))
	if !got.Accepted() {
		t.Errorf("verdict = %+v, want accepted", got)
	}

	// One day earlier the same record is a minor without a guardian.
	got = ValidateAt(rec, date(2026, 8, 28))
	if got.Reason != ReasonMissingGuardian {
		t.Errorf("reason = %s, want %s", got.Reason, ReasonMissingGuardian)
	}
}

func TestValidateAtInvalidBirthDate(t *testing.T) {
	rec := testRecord(t, date(2030, 1, 1), InsuranceSelf)
	got := ValidateAt(rec, date(2026, 8, 29))

	if got.Status != VerdictRejected {
		t.Fatalf("status = %s, want rejected", got.Status)
	}
	if got.Reason != ReasonInvalidBirthDate {
		t.Errorf("reason = %s, want %s", got.Reason, ReasonInvalidBirthDate)
	}
}

func TestApplyVerdict(t *testing.T) {
	rec := testRecord(t, date(1990, 5, 2), InsuranceSelf)

	if err := rec.ApplyVerdict(Verdict{Status: VerdictAccepted}); err != nil {
		t.Fatalf("ApplyVerdict() error = %v", err)
	}
	if rec.Status != RecordStatusAccepted {
		t.Errorf("status = %s, want %s", rec.Status, RecordStatusAccepted)
	}

	// A decided record cannot be decided again.
	if err := rec.ApplyVerdict(Verdict{Status: VerdictRejected}); err == nil {
		t.Error("ApplyVerdict() on decided record: expected error")
	}
}
