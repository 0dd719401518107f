package handlers

import (
	"log/slog"
	"net/http"

	"github.com/sweetlayer/cakeshop/backend/internal/middleware"
	"github.com/sweetlayer/cakeshop/backend/internal/search"
)

// SearchHandler exposes the product query dispatcher.
type SearchHandler struct {
	dispatcher *search.Dispatcher
	classifier search.Classifier
	log        *slog.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(dispatcher *search.Dispatcher, classifier search.Classifier, log *slog.Logger) *SearchHandler {
	return &SearchHandler{
		dispatcher: dispatcher,
		classifier: classifier,
		log:        log,
	}
}

// Search handles GET /api/search?q=...&sort=...
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		WriteError(w, http.StatusBadRequest, "Query parameter q is required", h.log)
		return
	}

	sortOpt := search.Sort(r.URL.Query().Get("sort"))
	if !sortOpt.Valid() {
		WriteError(w, http.StatusBadRequest, "Invalid sort option", h.log)
		return
	}

	middleware.RecordSearch(string(h.classifier.Classify(query)))

	result := h.dispatcher.Search(r.Context(), query, sortOpt)
	WriteJSON(w, http.StatusOK, result, h.log)
}
