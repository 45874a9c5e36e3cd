package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tendermarket/db"
	"tendermarket/internal/apperr"
	"tendermarket/internal/auth"
	"tendermarket/models"
)

// CreateBidHandler handles POST /bids/. One bid per user per tender: the
// read-then-write check catches the common case and the unique index on
// (tender_id, user_id) catches the race.
func (h *Handler) CreateBidHandler(w http.ResponseWriter, r *http.Request) {
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

	var bid db.Bid
	if err := json.Unmarshal(body, &bid); err != nil {
		h.writeError(w, apperr.BadRequest("Invalid JSON format"))
		return
	}
	if err := h.validate.Struct(&bid); err != nil {
		h.writeError(w, apperr.BadRequest(err.Error()))
		return
	}

	_, err = h.Store.GetTender(r.Context(), bid.TenderID)
	if errors.Is(err, sql.ErrNoRows) {
		h.writeError(w, apperr.NotFound("Tender not found"))
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	_, err = h.Store.GetBidByTenderAndUser(r.Context(), bid.TenderID, principal.ID)
	if err == nil {
		h.writeError(w, apperr.Conflict("You have already submitted a bid for this tender"))
		return
	}
	if !errors.Is(err, sql.ErrNoRows) {
		h.writeError(w, err)
		return
	}

	bid.UserID = principal.ID
	bid.Status = "pending"

	if err := h.Store.CreateBid(r.Context(), &bid); err != nil {
		if db.IsUniqueViolation(err) {
			h.writeError(w, apperr.Conflict("You have already submitted a bid for this tender"))
			return
		}
		h.writeError(w, err)
		return
	}

	h.Log.Info("bid created",
		zap.Int("bid_id", bid.ID), zap.Int("tender_id", bid.TenderID), zap.Int("user_id", principal.ID))
	h.writeJSON(w, http.StatusOK, bid)
}

// GetBidsForTenderHandler handles GET /bids/tender/{tenderId}. Only the
// tender owner may list its bids.
func (h *Handler) GetBidsForTenderHandler(w http.ResponseWriter, r *http.Request) {
	principal, err := h.principal(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

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

	if err := auth.CheckOwner(principal, tender.UserID, "Not authorized to view bids for this tender"); err != nil {
		h.writeError(w, err)
		return
	}

	bids, err := h.Store.GetBidsForTender(r.Context(), tenderID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bids)
}

// GetUserBidsHandler handles GET /bids/my-bids, attaching a tender summary
// to each bid.
func (h *Handler) GetUserBidsHandler(w http.ResponseWriter, r *http.Request) {
	principal, err := h.principal(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	bids, err := h.Store.GetUserBids(r.Context(), principal.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bids)
}

// UpdateBidStatusHandler handles PUT /bids/{bidId}/status. Only the parent
// tender's owner may set the status, and the new value is written
// unconditionally: there is no transition graph over the three literals.
func (h *Handler) UpdateBidStatusHandler(w http.ResponseWriter, r *http.Request) {
	principal, err := h.principal(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	bidID, err := strconv.Atoi(chi.URLParam(r, "bidId"))
	if err != nil || bidID <= 0 {
		h.writeError(w, apperr.BadRequest("Invalid bidId"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, apperr.BadRequest("Failed to read request body"))
		return
	}
	defer r.Body.Close()

	var update models.BidStatusUpdate
	if err := json.Unmarshal(body, &update); err != nil {
		h.writeError(w, apperr.BadRequest("Invalid JSON format"))
		return
	}

	bid, err := h.Store.GetBid(r.Context(), bidID)
	if errors.Is(err, sql.ErrNoRows) {
		h.writeError(w, apperr.NotFound("Bid not found"))
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	tender, err := h.Store.GetTender(r.Context(), bid.TenderID)
	if errors.Is(err, sql.ErrNoRows) {
		h.writeError(w, apperr.NotFound("Tender not found"))
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := auth.CheckOwner(principal, tender.UserID, "Not authorized to update this bid"); err != nil {
		h.writeError(w, err)
		return
	}

	// Status validation happens after the ownership check so that a
	// non-owner gets 403 even with a bad payload.
	if err := h.validate.Struct(&update); err != nil {
		h.writeError(w, apperr.BadRequest("Invalid status. Must be 'pending', 'approved', or 'rejected'"))
		return
	}

	bid.Status = update.Status
	if err := h.Store.UpdateBidStatus(r.Context(), bid); err != nil {
		h.writeError(w, err)
		return
	}

	h.Log.Info("bid status updated",
		zap.Int("bid_id", bid.ID), zap.String("status", bid.Status), zap.Int("user_id", principal.ID))
	h.writeJSON(w, http.StatusOK, bid)
}

// GetBidHandler handles GET /bids/{bidId}. Visible to the bidder and the
// tender owner only.
func (h *Handler) GetBidHandler(w http.ResponseWriter, r *http.Request) {
	principal, err := h.principal(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	bidID, err := strconv.Atoi(chi.URLParam(r, "bidId"))
	if err != nil || bidID <= 0 {
		h.writeError(w, apperr.BadRequest("Invalid bidId"))
		return
	}

	bid, err := h.Store.GetBid(r.Context(), bidID)
	if errors.Is(err, sql.ErrNoRows) {
		h.writeError(w, apperr.NotFound("Bid not found"))
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	tender, err := h.Store.GetTender(r.Context(), bid.TenderID)
	if errors.Is(err, sql.ErrNoRows) {
		h.writeError(w, apperr.NotFound("Tender not found"))
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := auth.CheckAnyOwner(principal, "Not authorized to view this bid", bid.UserID, tender.UserID); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, bid)
}
