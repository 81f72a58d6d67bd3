// Package pvs implements the insurer adapter against the legacy
// practice-management system (PVS), which keeps insured-party master data
// in a SQL Server database.
package pvs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/denisenkom/go-mssqldb" // SQL Server driver
	"github.com/medintake/platform/internal/adapters/insurer"
	"github.com/medintake/platform/internal/shared/config"
	"github.com/medintake/platform/internal/shared/errors"
	"github.com/medintake/platform/internal/shared/types"
)

// Adapter implements insurer.Client against the PVS database
type Adapter struct {
	db    *sql.DB
	table string
}

// Ensure Adapter implements insurer.Client
var _ insurer.Client = (*Adapter)(nil)

// New opens a read-only connection to the PVS database
func New(ctx context.Context, cfg config.PVSConfig) (*Adapter, error) {
	connStr := fmt.Sprintf("server=%s;port=%d;database=%s;user id=%s;password=%s",
		cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password,
	)
	if cfg.SSLMode != "disable" {
		connStr += ";encrypt=true;TrustServerCertificate=true"
	}

	db, err := sql.Open("sqlserver", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open PVS database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PVS database: %w", err)
	}

	return &Adapter{db: db, table: "dbo.Versicherte"}, nil
}

// LookupInsured resolves insured-party master data by KVNR
func (a *Adapter) LookupInsured(ctx context.Context, kvnr types.KVNR) (*insurer.InsuredParty, error) {
	query := fmt.Sprintf(`
		SELECT TOP 1 KVNR, Vorname, Nachname, Geburtsdatum,
			Kassenname, Kassennummer, GueltigBis
		FROM %s
		WHERE KVNR = @p1`, a.table)

	var (
		party       insurer.InsuredParty
		rawKVNR     string
		birthDate   sql.NullTime
		insName     sql.NullString
		insNumber   sql.NullString
		validUntil  sql.NullTime
	)

	err := a.db.QueryRowContext(ctx, query, kvnr.String()).Scan(
		&rawKVNR, &party.FirstName, &party.LastName, &birthDate,
		&insName, &insNumber, &validUntil,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("insured party", kvnr.Masked())
	}
	if err != nil {
		return nil, errors.Wrap(err, "PVS lookup failed")
	}

	party.KVNR = types.KVNR(rawKVNR)
	if birthDate.Valid {
		t := birthDate.Time
		party.BirthDate = &t
	}
	if insName.Valid {
		party.InsurerName = insName.String
	}
	if insNumber.Valid {
		party.InsurerNumber = insNumber.String
	}
	if validUntil.Valid {
		t := validUntil.Time
		party.ValidUntil = &t
	}

	return &party, nil
}

// Health checks the PVS connection
func (a *Adapter) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("PVS health check failed: %w", err)
	}
	return nil
}

// Close closes the database connection
func (a *Adapter) Close() error {
	return a.db.Close()
}
