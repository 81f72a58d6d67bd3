package intake

import (
	"fmt"
	"time"
)

// MajorityAge is the legal majority threshold in whole years
const MajorityAge = 18

// VerdictStatus defines the state of an eligibility decision
type VerdictStatus string

const (
	VerdictPending  VerdictStatus = "pending"
	VerdictAccepted VerdictStatus = "accepted"
	VerdictRejected VerdictStatus = "rejected"
)

// ReasonCode is the machine-readable cause of a rejection. The calling layer
// localizes these; the validator never emits display strings.
type ReasonCode string

const (
	ReasonMissingGuardian              ReasonCode = "MISSING_GUARDIAN"
	ReasonMissingPolicyholder          ReasonCode = "MISSING_POLICYHOLDER"
	ReasonInvalidInsuranceTypeForMinor ReasonCode = "INVALID_INSURANCE_TYPE_FOR_MINOR"
	ReasonInvalidBirthDate             ReasonCode = "INVALID_BIRTH_DATE"
)

// Verdict is the outcome of eligibility validation. A record is never
// partially accepted.
type Verdict struct {
	Status VerdictStatus `json:"status"`
	Reason ReasonCode    `json:"reason,omitempty"`
	Detail string        `json:"detail,omitempty"`
}

// Accepted reports whether the verdict accepts the record
func (v Verdict) Accepted() bool {
	return v.Status == VerdictAccepted
}

func accept() Verdict {
	return Verdict{Status: VerdictAccepted}
}

func reject(reason ReasonCode, detail string) Verdict {
	return Verdict{Status: VerdictRejected, Reason: reason, Detail: detail}
}

// Validate applies the eligibility rules to a record snapshot with the age
// already computed. Rules are evaluated in a fixed order and short-circuit
// on the first violation: for minors the guardian requirement is checked
// before the policyholder requirement, which is checked before the
// insurance classification; the policyholder requirement for family-insured
// adults comes last. The function is pure; persisting the verdict is the
// caller's responsibility.
func Validate(rec *PatientRecord, age int) Verdict {
	if age < MajorityAge {
		if rec.Guardian == nil {
			return reject(ReasonMissingGuardian,
				fmt.Sprintf("patient is %d years old and requires a guardian", age))
		}
		if rec.Policyholder == nil {
			return reject(ReasonMissingPolicyholder,
				fmt.Sprintf("patient is %d years old and requires a policyholder", age))
		}
		if rec.InsuranceType != InsuranceFamily {
			return reject(ReasonInvalidInsuranceTypeForMinor,
				"minors must be family insured")
		}
		return accept()
	}

	if rec.InsuranceType == InsuranceFamily && rec.Policyholder == nil {
		return reject(ReasonMissingPolicyholder,
			"family insurance requires a policyholder")
	}

	// Self-insured adults: guardian and policyholder are ignored, not required.
	return accept()
}

// ValidateAt computes the age as of referenceDate and applies Validate. An
// unusable birth date rejects with INVALID_BIRTH_DATE rather than surfacing
// an error: a bad date is an expected submitter mistake, not a fault.
func ValidateAt(rec *PatientRecord, referenceDate time.Time) Verdict {
	age, err := Age(rec.BirthDate, referenceDate)
	if err != nil {
		return reject(ReasonInvalidBirthDate, "birth date is missing or in the future")
	}
	return Validate(rec, age)
}
