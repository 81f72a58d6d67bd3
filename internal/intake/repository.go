package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/medintake/platform/internal/shared/errors"
	"github.com/medintake/platform/internal/shared/metrics"
	"github.com/medintake/platform/internal/shared/types"
)

// Repository provides database operations for intake records
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new intake repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save persists a record together with its co-parties and signature in one
// transaction.
func (r *Repository) Save(ctx context.Context, p *PatientRecord) error {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("intake_save", time.Since(start)) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO intake.patients (
			id, first_name, last_name, birth_date,
			street, city, postal_code, country,
			email, phone, mobile,
			kvnr, insurance_type,
			allergies, medications, conditions, notes,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	_, err = tx.Exec(ctx, query,
		p.ID, p.FirstName, p.LastName, p.BirthDate,
		p.Address.Street, p.Address.City, p.Address.PostalCode, p.Address.Country,
		p.Contact.Email, p.Contact.Phone, p.Contact.Mobile,
		p.KVNR.String(), p.InsuranceType,
		p.History.Allergies, p.History.Medications, p.History.Conditions, p.History.Notes,
		p.Status, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return errors.Conflict("intake record already exists")
		}
		return errors.Wrap(err, "failed to save intake record")
	}

	if p.Guardian != nil {
		if err := r.saveGuardian(ctx, tx, p.ID, p.Guardian); err != nil {
			return err
		}
	}

	if p.Policyholder != nil {
		if err := r.savePolicyholder(ctx, tx, p.ID, p.Policyholder); err != nil {
			return err
		}
	}

	if p.Signature != nil {
		if err := r.saveSignature(ctx, tx, p.ID, p.Signature); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	return nil
}

// FindByID loads a record with its co-parties and signature
func (r *Repository) FindByID(ctx context.Context, id types.ID) (*PatientRecord, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("intake_find", time.Since(start)) }()

	query := `
		SELECT id, first_name, last_name, birth_date,
			street, city, postal_code, country,
			email, phone, mobile,
			kvnr, insurance_type,
			allergies, medications, conditions, notes,
			status, created_at, updated_at
		FROM intake.patients
		WHERE id = $1`

	p := &PatientRecord{}
	var kvnr string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.BirthDate,
		&p.Address.Street, &p.Address.City, &p.Address.PostalCode, &p.Address.Country,
		&p.Contact.Email, &p.Contact.Phone, &p.Contact.Mobile,
		&kvnr, &p.InsuranceType,
		&p.History.Allergies, &p.History.Medications, &p.History.Conditions, &p.History.Notes,
		&p.Status, &p.CreatedAt, &p.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("intake record", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find intake record")
	}
	p.KVNR = types.KVNR(kvnr)

	if p.Guardian, err = r.getGuardian(ctx, id); err != nil {
		return nil, err
	}
	if p.Policyholder, err = r.getPolicyholder(ctx, id); err != nil {
		return nil, err
	}
	if p.Signature, err = r.getSignature(ctx, id); err != nil {
		return nil, err
	}

	return p, nil
}

// UpdateStatus moves a record to a new lifecycle status
func (r *Repository) UpdateStatus(ctx context.Context, id types.ID, status RecordStatus) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE intake.patients SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update intake status")
	}
	if result.RowsAffected() == 0 {
		return errors.NotFound("intake record", id.String())
	}
	return nil
}

// ListFilter narrows List results
type ListFilter struct {
	Status RecordStatus
	Search string
	Limit  int
	Offset int
}

// List lists records with filters, newest first
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]PatientRecord, int, error) {
	var conditions []string
	var args []interface{}
	argNum := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, filter.Status)
		argNum++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d)", argNum, argNum))
		args = append(args, "%"+filter.Search+"%")
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM intake.patients %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count intake records")
	}

	limit := 50
	if filter.Limit > 0 && filter.Limit <= 100 {
		limit = filter.Limit
	}

	query := fmt.Sprintf(`
		SELECT id, first_name, last_name, birth_date,
			kvnr, insurance_type, status, created_at, updated_at
		FROM intake.patients
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, whereClause, argNum, argNum+1)

	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list intake records")
	}
	defer rows.Close()

	var records []PatientRecord
	for rows.Next() {
		var p PatientRecord
		var kvnr string
		err := rows.Scan(
			&p.ID, &p.FirstName, &p.LastName, &p.BirthDate,
			&kvnr, &p.InsuranceType, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, 0, errors.Wrap(err, "failed to scan intake record")
		}
		p.KVNR = types.KVNR(kvnr)
		records = append(records, p)
	}

	return records, total, nil
}

// --- Co-party operations ---

func (r *Repository) saveGuardian(ctx context.Context, tx pgx.Tx, patientID types.ID, g *Guardian) error {
	query := `
		INSERT INTO intake.guardians (
			id, patient_id, relationship, first_name, last_name, birth_date,
			street, city, postal_code, country, email, phone, mobile
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := tx.Exec(ctx, query,
		g.ID, patientID, g.Relationship, g.FirstName, g.LastName, g.BirthDate,
		g.Address.Street, g.Address.City, g.Address.PostalCode, g.Address.Country,
		g.Contact.Email, g.Contact.Phone, g.Contact.Mobile,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save guardian")
	}
	return nil
}

func (r *Repository) getGuardian(ctx context.Context, patientID types.ID) (*Guardian, error) {
	query := `
		SELECT id, relationship, first_name, last_name, birth_date,
			street, city, postal_code, country, email, phone, mobile
		FROM intake.guardians
		WHERE patient_id = $1`

	g := &Guardian{}
	err := r.pool.QueryRow(ctx, query, patientID).Scan(
		&g.ID, &g.Relationship, &g.FirstName, &g.LastName, &g.BirthDate,
		&g.Address.Street, &g.Address.City, &g.Address.PostalCode, &g.Address.Country,
		&g.Contact.Email, &g.Contact.Phone, &g.Contact.Mobile,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get guardian")
	}
	return g, nil
}

func (r *Repository) savePolicyholder(ctx context.Context, tx pgx.Tx, patientID types.ID, ph *Policyholder) error {
	query := `
		INSERT INTO intake.policyholders (
			id, patient_id, kvnr, first_name, last_name, birth_date,
			street, city, postal_code, country, email, phone, mobile
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := tx.Exec(ctx, query,
		ph.ID, patientID, ph.KVNR.String(), ph.FirstName, ph.LastName, ph.BirthDate,
		ph.Address.Street, ph.Address.City, ph.Address.PostalCode, ph.Address.Country,
		ph.Contact.Email, ph.Contact.Phone, ph.Contact.Mobile,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save policyholder")
	}
	return nil
}

func (r *Repository) getPolicyholder(ctx context.Context, patientID types.ID) (*Policyholder, error) {
	query := `
		SELECT id, kvnr, first_name, last_name, birth_date,
			street, city, postal_code, country, email, phone, mobile
		FROM intake.policyholders
		WHERE patient_id = $1`

	ph := &Policyholder{}
	var kvnr string
	err := r.pool.QueryRow(ctx, query, patientID).Scan(
		&ph.ID, &kvnr, &ph.FirstName, &ph.LastName, &ph.BirthDate,
		&ph.Address.Street, &ph.Address.City, &ph.Address.PostalCode, &ph.Address.Country,
		&ph.Contact.Email, &ph.Contact.Phone, &ph.Contact.Mobile,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get policyholder")
	}
	ph.KVNR = types.KVNR(kvnr)
	return ph, nil
}

func (r *Repository) saveSignature(ctx context.Context, tx pgx.Tx, patientID types.ID, s *Signature) error {
	query := `
		INSERT INTO intake.signatures (
			id, patient_id, image, captured_at, tampered, integrity_checked_at
		) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query,
		s.ID, patientID, s.Image, s.CapturedAt, s.Tampered, s.IntegrityCheckedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save signature")
	}
	return nil
}

func (r *Repository) getSignature(ctx context.Context, patientID types.ID) (*Signature, error) {
	query := `
		SELECT id, image, captured_at, tampered, integrity_checked_at
		FROM intake.signatures
		WHERE patient_id = $1`

	s := &Signature{}
	err := r.pool.QueryRow(ctx, query, patientID).Scan(
		&s.ID, &s.Image, &s.CapturedAt, &s.Tampered, &s.IntegrityCheckedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get signature")
	}
	return s, nil
}
