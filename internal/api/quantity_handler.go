package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type QuantityHandler struct {
	shop    ShopService
	timeout time.Duration
}

func NewQuantityHandler(shop ShopService, timeout time.Duration) *QuantityHandler {
	return &QuantityHandler{shop: shop, timeout: timeout}
}

// SetQuantityRequestDTO carries the raw input of the quantity box: 3, "3" and "abc" are all
// accepted and interpreted by the selector.
type SetQuantityRequestDTO struct {
	Quantity json.RawMessage `json:"quantity"`
}

func (r SetQuantityRequestDTO) raw() string {
	var s string
	if err := json.Unmarshal(r.Quantity, &s); err == nil {
		return s
	}
	return string(r.Quantity)
}

type QuantityResponseDTO struct {
	ProductID int64 `json:"sub_id"`
	Quantity  int   `json:"quantity"`
}

// GET /api/v1/quantities/{sub_id}
func (h *QuantityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, QuantityResponseDTO{ProductID: id, Quantity: h.shop.Quantity(id)})
}

// PUT /api/v1/quantities/{sub_id}
func (h *QuantityHandler) Set(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	var req SetQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	q, err := h.shop.Set(ctx, id, req.raw())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, QuantityResponseDTO{ProductID: id, Quantity: q})
}

// POST /api/v1/quantities/{sub_id}/increase
func (h *QuantityHandler) Increase(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	q, err := h.shop.Increase(ctx, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, QuantityResponseDTO{ProductID: id, Quantity: q})
}

// POST /api/v1/quantities/{sub_id}/decrease
func (h *QuantityHandler) Decrease(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, QuantityResponseDTO{ProductID: id, Quantity: h.shop.Decrease(id)})
}
