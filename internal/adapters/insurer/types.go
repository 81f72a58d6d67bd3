// Package insurer defines the adapter boundary to practice-management
// systems holding insured-party master data. Concrete adapters live in
// subpackages.
package insurer

import (
	"context"
	"time"

	"github.com/medintake/platform/internal/shared/types"
)

// InsuredParty is the master-data view of one insured person as the
// practice-management system knows them.
type InsuredParty struct {
	KVNR          types.KVNR `json:"kvnr"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	BirthDate     *time.Time `json:"birth_date,omitempty"`
	InsurerName   string     `json:"insurer_name,omitempty"`
	InsurerNumber string     `json:"insurer_number,omitempty"`
	ValidUntil    *time.Time `json:"valid_until,omitempty"`
}

// Client looks up insured-party master data. Implementations must return a
// NotFound app error when the KVNR is unknown.
type Client interface {
	LookupInsured(ctx context.Context, kvnr types.KVNR) (*InsuredParty, error)
	Health(ctx context.Context) error
}
