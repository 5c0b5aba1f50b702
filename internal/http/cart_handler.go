package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/BirtasevicLazar/avlasti-storefront/internal/cart"
	"github.com/BirtasevicLazar/avlasti-storefront/internal/catalog"
	"github.com/BirtasevicLazar/avlasti-storefront/internal/domain"
	"github.com/BirtasevicLazar/avlasti-storefront/internal/orderclient"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	store   *cart.Store
	catalog catalog.ProductGetter
}

func NewCartHandler(store *cart.Store, catalog catalog.ProductGetter) *CartHandler {
	return &CartHandler{
		store:   store,
		catalog: catalog,
	}
}

type AddItemRequestDTO struct {
	ProductID int64  `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color,omitempty"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no shopper session")
		return
	}

	respondJSON(w, http.StatusOK, h.store.Snapshot(r.Context(), sessionID))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no shopper session")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, orderclient.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "product not found")
			return
		}
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "could not look up product")
		return
	}

	if err := h.store.AddItem(r.Context(), sessionID, product, req.Size, req.Color, req.Quantity); err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, h.store.Snapshot(r.Context(), sessionID))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no shopper session")
		return
	}

	key, ok := lineKeyFromRequest(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.store.UpdateQuantity(r.Context(), sessionID, key, req.Quantity); err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.store.Snapshot(r.Context(), sessionID))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no shopper session")
		return
	}

	key, ok := lineKeyFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.store.RemoveItem(r.Context(), sessionID, key); err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.store.Snapshot(r.Context(), sessionID))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no shopper session")
		return
	}

	if err := h.store.Clear(r.Context(), sessionID); err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.store.Snapshot(r.Context(), sessionID))
}

// lineKeyFromRequest builds the composite line key from the product id path
// segment and the size/color query parameters.
func lineKeyFromRequest(w http.ResponseWriter, r *http.Request) (domain.LineKey, bool) {
	productIDStr := chi.URLParam(r, "product_id")
	productID, err := strconv.ParseInt(productIDStr, 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return domain.LineKey{}, false
	}

	size := r.URL.Query().Get("size")
	if size == "" {
		respondError(w, http.StatusBadRequest, "missing_size", "size query parameter is required")
		return domain.LineKey{}, false
	}

	return domain.LineKey{
		ProductID: productID,
		Size:      size,
		Color:     r.URL.Query().Get("color"),
	}, true
}

func handleCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrSizeRequired):
		respondError(w, http.StatusBadRequest, "size_required", err.Error())
	case errors.Is(err, cart.ErrSizeNotOffered):
		respondError(w, http.StatusBadRequest, "size_not_offered", err.Error())
	case errors.Is(err, cart.ErrColorRequired):
		respondError(w, http.StatusBadRequest, "color_required", err.Error())
	case errors.Is(err, cart.ErrColorNotOffered):
		respondError(w, http.StatusBadRequest, "color_not_offered", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
