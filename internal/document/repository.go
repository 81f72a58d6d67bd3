package document

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/medintake/platform/internal/localization"
	"github.com/medintake/platform/internal/shared/errors"
	"github.com/medintake/platform/internal/shared/metrics"
	"github.com/medintake/platform/internal/shared/types"
)

// Repository persists generated-document metadata
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new document repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save records the metadata of one generation run
func (r *Repository) Save(ctx context.Context, doc *GeneratedDocument) error {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("document_save", time.Since(start)) }()

	query := `
		INSERT INTO intake.generated_documents (
			id, patient_id, layout, language, content_id, size_bytes, generated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		doc.ID, doc.RecordID, doc.Layout, doc.Language,
		doc.ContentID, doc.SizeBytes, doc.GeneratedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save generated document")
	}
	return nil
}

// ListByRecord lists generation metadata for a record, newest first
func (r *Repository) ListByRecord(ctx context.Context, recordID types.ID) ([]GeneratedDocument, error) {
	query := `
		SELECT id, patient_id, layout, language, content_id, size_bytes, generated_at
		FROM intake.generated_documents
		WHERE patient_id = $1
		ORDER BY generated_at DESC`

	rows, err := r.pool.Query(ctx, query, recordID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list generated documents")
	}
	defer rows.Close()

	var docs []GeneratedDocument
	for rows.Next() {
		var d GeneratedDocument
		var lang string
		err := rows.Scan(&d.ID, &d.RecordID, &d.Layout, &lang, &d.ContentID, &d.SizeBytes, &d.GeneratedAt)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan generated document")
		}
		d.Language = localization.Language(lang)
		docs = append(docs, d)
	}

	return docs, nil
}

// FindByContentID resolves generation metadata by content fingerprint
func (r *Repository) FindByContentID(ctx context.Context, contentID string) (*GeneratedDocument, error) {
	query := `
		SELECT id, patient_id, layout, language, content_id, size_bytes, generated_at
		FROM intake.generated_documents
		WHERE content_id = $1
		ORDER BY generated_at DESC
		LIMIT 1`

	d := &GeneratedDocument{}
	var lang string
	err := r.pool.QueryRow(ctx, query, contentID).Scan(
		&d.ID, &d.RecordID, &d.Layout, &lang, &d.ContentID, &d.SizeBytes, &d.GeneratedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("generated document", contentID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find generated document")
	}
	d.Language = localization.Language(lang)
	return d, nil
}
