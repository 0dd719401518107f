package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sweetlayer/cakeshop/backend/internal/dialogue"
	"github.com/sweetlayer/cakeshop/backend/internal/middleware"
	"github.com/sweetlayer/cakeshop/backend/internal/repository"
	"github.com/sweetlayer/cakeshop/backend/internal/search"
)

// DialogueHandler exposes the conversational booking flow over HTTP. Each
// session belongs to the authenticated user who started it.
type DialogueHandler struct {
	sessions *dialogue.Manager
	log      *slog.Logger
}

// NewDialogueHandler creates a new dialogue handler
func NewDialogueHandler(sessions *dialogue.Manager, log *slog.Logger) *DialogueHandler {
	return &DialogueHandler{
		sessions: sessions,
		log:      log,
	}
}

type dialogueResponse struct {
	SessionID string        `json:"sessionId,omitempty"`
	Step      dialogue.Step `json:"step"`
	Reply     string        `json:"reply"`
}

func (h *DialogueHandler) failDialogue(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dialogue.ErrSessionNotFound):
		WriteError(w, http.StatusNotFound, err.Error(), h.log)
	case errors.Is(err, dialogue.ErrNotAtConfirm):
		WriteError(w, http.StatusConflict, err.Error(), h.log)
	case errors.Is(err, dialogue.ErrBookingInFlight):
		WriteError(w, http.StatusTooManyRequests, err.Error(), h.log)
	case errors.Is(err, repository.ErrProductNotFound):
		WriteError(w, http.StatusNotFound, err.Error(), h.log)
	default:
		status, message := statusForOrderError(err)
		WriteError(w, status, message, h.log)
	}
}

// Start handles POST /api/dialogue
func (h *DialogueHandler) Start(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Not authenticated", h.log)
		return
	}

	var req struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		WriteError(w, http.StatusBadRequest, "productId is required", h.log)
		return
	}

	sessionID, step, reply, err := h.sessions.Start(r.Context(), identity.UserID, req.ProductID)
	if err != nil {
		h.failDialogue(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, dialogueResponse{SessionID: sessionID, Step: step, Reply: reply}, h.log)
}

// Message handles POST /api/dialogue/{sessionID}/message
func (h *DialogueHandler) Message(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Not authenticated", h.log)
		return
	}

	var req struct {
		Input string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	step, reply, err := h.sessions.Advance(r.Context(), chi.URLParam(r, "sessionID"), identity.UserID, req.Input)
	if err != nil {
		h.failDialogue(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, dialogueResponse{Step: step, Reply: reply}, h.log)
}

// Coupon handles POST /api/dialogue/{sessionID}/coupon
func (h *DialogueHandler) Coupon(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Not authenticated", h.log)
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	if err := h.sessions.SetCoupon(r.Context(), chi.URLParam(r, "sessionID"), identity.UserID, req.Code); err != nil {
		h.failDialogue(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"coupon": req.Code}, h.log)
}

// Summary handles GET /api/dialogue/{sessionID}/summary
func (h *DialogueHandler) Summary(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Not authenticated", h.log)
		return
	}

	summary, err := h.sessions.Summary(r.Context(), chi.URLParam(r, "sessionID"), identity.UserID)
	if err != nil {
		h.failDialogue(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"summary": summary}, h.log)
}

// Book handles POST /api/dialogue/{sessionID}/book
func (h *DialogueHandler) Book(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Not authenticated", h.log)
		return
	}

	order, err := h.sessions.Book(r.Context(), chi.URLParam(r, "sessionID"), identity.UserID)
	if err != nil {
		h.failDialogue(w, err)
		return
	}

	middleware.RecordOrderOperation("create", true)
	WriteJSON(w, http.StatusCreated, order, h.log)
}

// Search handles POST /api/dialogue/{sessionID}/search. Results arriving
// after a newer search from the same session are discarded server-side.
func (h *DialogueHandler) Search(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Not authenticated", h.log)
		return
	}

	var req struct {
		Query string      `json:"query"`
		Sort  search.Sort `json:"sort"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		WriteError(w, http.StatusBadRequest, "query is required", h.log)
		return
	}
	if !req.Sort.Valid() {
		WriteError(w, http.StatusBadRequest, "Invalid sort option", h.log)
		return
	}

	result, current, err := h.sessions.Search(r.Context(), chi.URLParam(r, "sessionID"), identity.UserID, req.Query, req.Sort)
	if err != nil {
		h.failDialogue(w, err)
		return
	}
	if !current {
		// A newer search superseded this one while it was in flight.
		WriteJSON(w, http.StatusOK, map[string]bool{"superseded": true}, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, result, h.log)
}

// Abandon handles DELETE /api/dialogue/{sessionID}
func (h *DialogueHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.IdentityFrom(r.Context()); !ok {
		WriteError(w, http.StatusUnauthorized, "Not authenticated", h.log)
		return
	}
	h.sessions.Abandon(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}
