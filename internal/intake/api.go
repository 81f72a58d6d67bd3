package intake

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/medintake/platform/internal/adapters/insurer"
	"github.com/medintake/platform/internal/localization"
	"github.com/medintake/platform/internal/shared/auth"
	"github.com/medintake/platform/internal/shared/errors"
	"github.com/medintake/platform/internal/shared/events"
	"github.com/medintake/platform/internal/shared/metrics"
	"github.com/medintake/platform/internal/shared/types"
)

// Handler provides HTTP handlers for the intake module
type Handler struct {
	repo    *Repository
	bus     events.EventBus
	insurer insurer.Client
}

// NewHandler creates a new intake handler. bus and insurerClient may be nil
// when the respective backends are not configured.
func NewHandler(repo *Repository, bus events.EventBus, insurerClient insurer.Client) *Handler {
	return &Handler{repo: repo, bus: bus, insurer: insurerClient}
}

// Routes registers the intake routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.SubmitIntake)
	r.Get("/", h.ListRecords)
	r.Get("/lookup/{kvnr}", h.LookupInsured)

	r.Route("/{recordID}", func(r chi.Router) {
		r.Get("/", h.GetRecord)
		r.Get("/verdict", h.GetVerdict)
	})

	return r
}

// PersonRequest is the wire shape for guardian and policyholder persons
type PersonRequest struct {
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	BirthDate *time.Time        `json:"birth_date,omitempty"`
	Address   types.Address     `json:"address"`
	Contact   types.ContactInfo `json:"contact"`
}

func (p PersonRequest) toPerson() Person {
	return Person{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		BirthDate: p.BirthDate,
		Address:   p.Address,
		Contact:   p.Contact,
	}
}

// GuardianRequest is the wire shape for the guardian co-party
type GuardianRequest struct {
	Relationship RelationshipType `json:"relationship"`
	PersonRequest
}

// PolicyholderRequest is the wire shape for the policyholder co-party
type PolicyholderRequest struct {
	KVNR types.KVNR `json:"kvnr,omitempty"`
	PersonRequest
}

// SubmitIntakeRequest is the request body for a new intake submission
type SubmitIntakeRequest struct {
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	BirthDate time.Time `json:"birth_date"`

	Address types.Address     `json:"address"`
	Contact types.ContactInfo `json:"contact"`

	KVNR          types.KVNR    `json:"kvnr,omitempty"`
	InsuranceType InsuranceType `json:"insurance_type"`

	History MedicalHistory `json:"history"`

	Guardian     *GuardianRequest     `json:"guardian,omitempty"`
	Policyholder *PolicyholderRequest `json:"policyholder,omitempty"`

	// Signature is the captured consent signature as a data URI
	Signature string     `json:"signature,omitempty"`
	SignedAt  *time.Time `json:"signed_at,omitempty"`
}

// SubmitIntake accepts a new intake submission, validates eligibility and
// persists the record with its verdict applied.
func (h *Handler) SubmitIntake(w http.ResponseWriter, r *http.Request) {
	var req SubmitIntakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	if req.KVNR != "" && !req.KVNR.IsValid() {
		writeError(w, errors.BadRequest("invalid KVNR"))
		return
	}

	rec, err := NewPatientRecord(req.FirstName, req.LastName, req.BirthDate, req.InsuranceType)
	if err != nil {
		writeError(w, errors.BadRequest(err.Error()))
		return
	}
	rec.Address = req.Address
	rec.Contact = req.Contact
	rec.KVNR = req.KVNR
	rec.History = req.History

	if req.Guardian != nil {
		rec.AttachGuardian(req.Guardian.Relationship, req.Guardian.toPerson())
	}
	if req.Policyholder != nil {
		if req.Policyholder.KVNR != "" && !req.Policyholder.KVNR.IsValid() {
			writeError(w, errors.BadRequest("invalid policyholder KVNR"))
			return
		}
		rec.AttachPolicyholder(req.Policyholder.KVNR, req.Policyholder.toPerson())
	}

	if req.Signature != "" {
		capturedAt := time.Now()
		if req.SignedAt != nil {
			capturedAt = *req.SignedAt
		}
		sig, err := NewSignature(req.Signature, capturedAt)
		if err != nil {
			writeError(w, errors.BadRequest("signature payload could not be decoded"))
			return
		}
		if err := rec.AttachSignature(sig); err != nil {
			writeError(w, errors.BadRequest(err.Error()))
			return
		}
	}

	verdict := ValidateAt(rec, time.Now())
	if err := rec.ApplyVerdict(verdict); err != nil {
		writeError(w, errors.Internal(err))
		return
	}

	if err := h.repo.Save(r.Context(), rec); err != nil {
		writeError(w, err)
		return
	}

	metrics.RecordVerdict(string(verdict.Status), string(verdict.Reason))
	h.publishVerdict(r, rec, verdict)

	lang := localization.Negotiate(r.Header.Get("Accept-Language"))

	if !verdict.Accepted() {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"record_id": rec.ID,
			"status":    verdict.Status,
			"reason":    verdict.Reason,
			"message":   localization.Message(lang, string(verdict.Reason)),
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"record_id": rec.ID,
		"status":    verdict.Status,
	})
}

func (h *Handler) publishVerdict(r *http.Request, rec *PatientRecord, verdict Verdict) {
	if h.bus == nil {
		return
	}

	eventType := "intake.accepted"
	data := map[string]any{
		"record_id":      rec.ID,
		"insurance_type": rec.InsuranceType,
		"has_signature":  rec.HasSignature(),
	}
	if !verdict.Accepted() {
		eventType = "intake.rejected"
		data["reason"] = verdict.Reason
	}

	event := events.NewEvent(eventType, "intake", data)
	if user := auth.GetUser(r.Context()); user != nil {
		event = event.WithActor(user.ID, user.UserType)
	}

	h.bus.Publish(r.Context(), event)
}

// GetRecord returns a full intake record
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseID(chi.URLParam(r, "recordID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid record ID"))
		return
	}

	rec, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// GetVerdict returns the eligibility verdict for a record, recomputed from
// the stored snapshot so the response always reflects the current rules.
func (h *Handler) GetVerdict(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseID(chi.URLParam(r, "recordID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid record ID"))
		return
	}

	rec, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	verdict := ValidateAt(rec, time.Now())
	lang := localization.Negotiate(r.Header.Get("Accept-Language"))

	resp := map[string]any{
		"record_id": rec.ID,
		"status":    verdict.Status,
	}
	if verdict.Reason != "" {
		resp["reason"] = verdict.Reason
		resp["message"] = localization.Message(lang, string(verdict.Reason))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListRecords lists intake records for staff
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil || !user.IsStaff() {
		writeError(w, errors.Forbidden("staff access required"))
		return
	}

	filter := ListFilter{
		Status: RecordStatus(r.URL.Query().Get("status")),
		Search: r.URL.Query().Get("search"),
	}

	records, total, err := h.repo.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  records,
		"total": total,
	})
}

// LookupInsured resolves insured-party master data from the connected
// practice-management system.
func (h *Handler) LookupInsured(w http.ResponseWriter, r *http.Request) {
	if h.insurer == nil {
		writeError(w, errors.BadRequest("no practice-management system configured"))
		return
	}

	kvnr := types.KVNR(chi.URLParam(r, "kvnr"))
	if !kvnr.IsValid() {
		metrics.RecordInsurerLookup("invalid")
		writeError(w, errors.BadRequest("invalid KVNR"))
		return
	}

	party, err := h.insurer.LookupInsured(r.Context(), kvnr)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok && appErr.HTTPStatus == http.StatusNotFound {
			metrics.RecordInsurerLookup("miss")
		} else {
			metrics.RecordInsurerLookup("error")
		}
		writeError(w, err)
		return
	}

	metrics.RecordInsurerLookup("hit")
	writeJSON(w, http.StatusOK, party)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	if appErr, ok := err.(*errors.AppError); ok {
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
