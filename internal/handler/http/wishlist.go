package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/wishlist-service/internal/service"
)

// WishlistHandler handles HTTP requests for the wishlist endpoints.
type WishlistHandler struct {
	service *service.WishlistService
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{service: svc, logger: logger}
}

// Add handles POST /api/v1/users/{userID}/wishlist/{productID}
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	productID := chi.URLParam(r, "productID")

	item, err := h.service.AddItem(r.Context(), principalFromContext(r), userID, productID, testProductsFlag(r))
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: item})
}

// List handles GET /api/v1/users/{userID}/wishlist
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	products, err := h.service.ListItems(r.Context(), principalFromContext(r), userID, testProductsFlag(r))
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: products})
}

// Remove handles DELETE /api/v1/users/{userID}/wishlist/{productID}
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	productID := chi.URLParam(r, "productID")

	if err := h.service.RemoveItem(r.Context(), principalFromContext(r), userID, productID); err != nil {
		writeAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
