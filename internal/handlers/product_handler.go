package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sweetlayer/cakeshop/backend/internal/repository"
)

// ProductHandler handles catalog HTTP requests
type ProductHandler struct {
	repo repository.ProductRepository
	log  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(repo repository.ProductRepository, log *slog.Logger) *ProductHandler {
	return &ProductHandler{
		repo: repo,
		log:  log,
	}
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.GetAll(r.Context())
	if err != nil {
		h.log.Error("failed to list products", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}
	WriteJSON(w, http.StatusOK, products, h.log)
}

// GetProduct handles GET /api/products/{productID}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	if productID == "" {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
		return
	}

	product, err := h.repo.GetByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			WriteError(w, http.StatusNotFound, "Product not found", h.log)
			return
		}
		h.log.Error("failed to get product", "product_id", productID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}
	WriteJSON(w, http.StatusOK, product, h.log)
}
