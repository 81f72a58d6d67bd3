package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/medintake/platform/internal/intake"
	"github.com/medintake/platform/internal/localization"
	"github.com/medintake/platform/internal/shared/metrics"
)

// ErrRenderConversion indicates a failure converting markup to PDF
var ErrRenderConversion = errors.New("markup to PDF conversion failed")

// Converter turns rendered HTML into PDF bytes
type Converter interface {
	Convert(ctx context.Context, html string) ([]byte, error)
}

// Assembler runs the full document pipeline: render the layout, embed the
// signature when one exists, convert to PDF and fingerprint the result.
type Assembler struct {
	renderer  *Renderer
	converter Converter
}

// NewAssembler creates an assembler
func NewAssembler(renderer *Renderer, converter Converter) *Assembler {
	return &Assembler{renderer: renderer, converter: converter}
}

// Result is one assembled document
type Result struct {
	PDF []byte

	// ContentID is the lowercase hex SHA-256 of PDF
	ContentID string
}

// Assemble produces the PDF for a record. Stage failures are counted under
// the stage that failed; the caller decides how much of that to expose.
func (a *Assembler) Assemble(ctx context.Context, rec *intake.PatientRecord, layout LayoutID, lang localization.Language) (*Result, error) {
	start := time.Now()

	markup, err := a.renderer.Render(rec, layout, lang)
	if err != nil {
		metrics.RecordDocumentFault("render")
		return nil, err
	}

	if rec.HasSignature() {
		markup, err = EmbedSignature(markup, rec.Signature.Image)
		if err != nil {
			metrics.RecordDocumentFault("embed")
			return nil, err
		}
	}

	pdf, err := a.converter.Convert(ctx, markup)
	if err != nil {
		metrics.RecordDocumentFault("convert")
		return nil, fmt.Errorf("%w: %v", ErrRenderConversion, err)
	}
	if len(pdf) == 0 {
		metrics.RecordDocumentFault("convert")
		return nil, fmt.Errorf("%w: converter returned no bytes", ErrRenderConversion)
	}

	sum := sha256.Sum256(pdf)

	metrics.RecordDocumentGenerated(string(layout), string(lang), time.Since(start))

	return &Result{
		PDF:       pdf,
		ContentID: hex.EncodeToString(sum[:]),
	}, nil
}
