package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/medintake/platform/internal/intake"
	"github.com/medintake/platform/internal/localization"
	"github.com/medintake/platform/internal/shared/auth"
	apperrors "github.com/medintake/platform/internal/shared/errors"
	"github.com/medintake/platform/internal/shared/events"
	"github.com/medintake/platform/internal/shared/types"
)

// Handler provides HTTP handlers for the document module
type Handler struct {
	records   *intake.Repository
	repo      *Repository
	assembler *Assembler
	bus       events.EventBus
}

// NewHandler creates a new document handler. repo and bus may be nil when
// the respective backends are not configured.
func NewHandler(records *intake.Repository, repo *Repository, assembler *Assembler, bus events.EventBus) *Handler {
	return &Handler{records: records, repo: repo, assembler: assembler, bus: bus}
}

// Routes registers the document routes. Mounted under an intake record so
// {recordID} resolves from the parent path.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Generate)
	r.Get("/", h.History)

	return r
}

// Generate assembles a PDF for a record and streams it back. Layout and
// language come from query parameters; the language falls back to
// Accept-Language negotiation.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseID(chi.URLParam(r, "recordID"))
	if err != nil {
		writeError(w, apperrors.BadRequest("invalid record ID"))
		return
	}

	layout := LayoutIntake
	if q := r.URL.Query().Get("layout"); q != "" {
		layout = LayoutID(q)
		if !layout.Valid() {
			writeError(w, apperrors.BadRequest(fmt.Sprintf("unknown layout %q", q)))
			return
		}
	}

	lang := localization.Negotiate(r.Header.Get("Accept-Language"))
	if q := r.URL.Query().Get("lang"); q != "" {
		lang = localization.Language(q)
		if !localization.Supported(lang) {
			writeError(w, apperrors.BadRequest(fmt.Sprintf("unsupported language %q", q)))
			return
		}
	}

	rec, err := h.records.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if rec.Status == intake.RecordStatusRejected {
		writeError(w, apperrors.Conflict("record was rejected; no document can be generated"))
		return
	}

	result, err := h.assembler.Assemble(r.Context(), rec, layout, lang)
	if err != nil {
		// Pipeline internals stay out of the response; the correlation ID
		// links the client report to the server log line.
		if errors.Is(err, ErrUnsupportedLanguage) {
			writeError(w, apperrors.BadRequest(err.Error()))
			return
		}
		writeError(w, apperrors.Internal(fmt.Errorf("document assembly failed (request %s)", middleware.GetReqID(r.Context()))))
		return
	}

	meta := NewGeneratedDocument(rec.ID, layout, lang, result.ContentID, len(result.PDF))
	if h.repo != nil {
		if err := h.repo.Save(r.Context(), meta); err != nil {
			writeError(w, err)
			return
		}
	}

	h.publishGenerated(r, meta)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(result.PDF)))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_%s.pdf"`, layout, rec.ID))
	w.Header().Set("ETag", `"`+result.ContentID+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(result.PDF)
}

func (h *Handler) publishGenerated(r *http.Request, meta *GeneratedDocument) {
	if h.bus == nil {
		return
	}

	event := events.NewEvent("document.generated", "document", map[string]any{
		"record_id":  meta.RecordID,
		"layout":     meta.Layout,
		"language":   meta.Language,
		"content_id": meta.ContentID,
		"size_bytes": meta.SizeBytes,
	})
	if user := auth.GetUser(r.Context()); user != nil {
		event = event.WithActor(user.ID, user.UserType)
	}
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		event = event.WithCorrelation(reqID)
	}

	h.bus.Publish(r.Context(), event)
}

// History lists generation metadata for a record
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseID(chi.URLParam(r, "recordID"))
	if err != nil {
		writeError(w, apperrors.BadRequest("invalid record ID"))
		return
	}

	if h.repo == nil {
		writeJSON(w, http.StatusOK, map[string]any{"data": []GeneratedDocument{}, "total": 0})
		return
	}

	docs, err := h.repo.ListByRecord(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  docs,
		"total": len(docs),
	})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	if appErr, ok := err.(*apperrors.AppError); ok {
		w.WriteHeader(appErr.HTTPStatus)
		json.NewEncoder(w).Encode(map[string]any{
			"error":   appErr.Message,
			"code":    appErr.Code,
			"details": appErr.Details,
		})
		return
	}

	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
}
