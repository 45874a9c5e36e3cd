package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"tendermarket/db"
	"tendermarket/internal/apperr"
)

// CreateTenderHandler handles POST /tenders/create.
func (h *Handler) CreateTenderHandler(w http.ResponseWriter, r *http.Request) {
	principal, err := h.principal(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, apperr.BadRequest("Failed to read request body"))
		return
	}
	defer r.Body.Close()

	var tender db.Tender
	if err := json.Unmarshal(body, &tender); err != nil {
		h.writeError(w, apperr.BadRequest("Invalid JSON format"))
		return
	}
	if err := h.validate.Struct(&tender); err != nil {
		h.writeError(w, apperr.BadRequest(err.Error()))
		return
	}

	// Ownership and lifecycle fields come from the server, not the payload.
	tender.UserID = principal.ID
	tender.Status = "open"
	tender.ApprovalStatus = "pending"
	if tender.RequiredLicenses == nil {
		tender.RequiredLicenses = pq.StringArray{}
	}
	if tender.EvaluationCriteria == nil {
		tender.EvaluationCriteria = db.CriteriaList{}
	}
	if tender.TenderDocuments == nil {
		tender.TenderDocuments = pq.StringArray{}
	}

	if err := h.Store.CreateTender(r.Context(), &tender); err != nil {
		h.writeError(w, err)
		return
	}

	h.Log.Info("tender created",
		zap.Int("tender_id", tender.ID), zap.Int("user_id", principal.ID))
	h.writeJSON(w, http.StatusOK, tender)
}

// GetTendersHandler handles GET /tenders/ with an optional user_id filter.
// Any authenticated user sees every tender.
func (h *Handler) GetTendersHandler(w http.ResponseWriter, r *http.Request) {
	userID := 0
	if v := r.URL.Query().Get("user_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id < 0 {
			h.writeError(w, apperr.BadRequest("Invalid user_id"))
			return
		}
		userID = id
	}

	tenders, err := h.Store.GetTenders(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tenders)
}

// GetTenderHandler handles GET /tenders/{tenderId}.
func (h *Handler) GetTenderHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, err := strconv.Atoi(chi.URLParam(r, "tenderId"))
	if err != nil || tenderID <= 0 {
		h.writeError(w, apperr.BadRequest("Invalid tenderId"))
		return
	}

	tender, err := h.Store.GetTender(r.Context(), tenderID)
	if errors.Is(err, sql.ErrNoRows) {
		h.writeError(w, apperr.NotFound("Tender not found"))
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tender)
}
