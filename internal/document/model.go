package document

import (
	"time"

	"github.com/medintake/platform/internal/localization"
	"github.com/medintake/platform/internal/shared/types"
)

// LayoutID selects a document layout
type LayoutID string

const (
	// LayoutIntake is the patient-facing intake summary
	LayoutIntake LayoutID = "intake"
	// LayoutPrint is the condensed printout for the practice file
	LayoutPrint LayoutID = "print"
)

// Valid reports whether the layout is known
func (l LayoutID) Valid() bool {
	return l == LayoutIntake || l == LayoutPrint
}

// GeneratedDocument is the metadata row kept for every assembled PDF. The
// PDF bytes themselves are returned to the caller and never stored.
type GeneratedDocument struct {
	ID       types.ID              `json:"id"`
	RecordID types.ID              `json:"record_id"`
	Layout   LayoutID              `json:"layout"`
	Language localization.Language `json:"language"`

	// ContentID is the lowercase hex SHA-256 of the PDF bytes
	ContentID string `json:"content_id"`
	SizeBytes int    `json:"size_bytes"`

	GeneratedAt time.Time `json:"generated_at"`
}

// NewGeneratedDocument records the metadata of one assembly run
func NewGeneratedDocument(recordID types.ID, layout LayoutID, lang localization.Language, contentID string, size int) *GeneratedDocument {
	return &GeneratedDocument{
		ID:          types.NewID(),
		RecordID:    recordID,
		Layout:      layout,
		Language:    lang,
		ContentID:   contentID,
		SizeBytes:   size,
		GeneratedAt: time.Now().UTC(),
	}
}
