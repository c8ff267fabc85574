package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	cart    CartService
	shop    ShopService
	timeout time.Duration
}

func NewCartHandler(cart CartService, shop ShopService, timeout time.Duration) *CartHandler {
	return &CartHandler{cart: cart, shop: shop, timeout: timeout}
}

type AddItemRequestDTO struct {
	ProductID int64  `json:"sub_id"`
	Unit      string `json:"weight,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
}

type CartLineDTO struct {
	domain.LineItem
	LineTotal string `json:"line_total"`
}

// MarshalJSON keeps the item fields flat next to line_total.
func (d CartLineDTO) MarshalJSON() ([]byte, error) {
	item, err := json.Marshal(d.LineItem)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		return nil, err
	}
	total, err := json.Marshal(d.LineTotal)
	if err != nil {
		return nil, err
	}
	fields["line_total"] = total
	return json.Marshal(fields)
}

type CartResponseDTO struct {
	Items []CartLineDTO `json:"items"`
	Count int           `json:"count"`
	Total string        `json:"total"`
}

func (h *CartHandler) cartResponse() CartResponseDTO {
	items := h.cart.Snapshot()
	resp := CartResponseDTO{Items: make([]CartLineDTO, 0, len(items)), Count: len(items)}
	for _, it := range items {
		resp.Items = append(resp.Items, CartLineDTO{LineItem: it, LineTotal: pricing.Format(pricing.LineTotal(it))})
	}
	resp.Total = pricing.Format(pricing.CartTotal(items))
	return resp
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cartResponse())
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "sub_id must be positive")
		return
	}
	if req.Quantity < 0 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must not be negative")
		return
	}

	if _, err := h.shop.AddToCart(ctx, req.ProductID, req.Unit, req.Quantity); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.cartResponse())
}

// DELETE /api/v1/cart/items/{sub_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	if !h.cart.RemoveOne(r.Context(), id) {
		respondError(w, http.StatusNotFound, "not_in_cart", "item is not in the cart")
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse())
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear(r.Context())
	respondJSON(w, http.StatusOK, h.cartResponse())
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "sub_id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "sub_id must be a positive number")
		return 0, false
	}
	return id, true
}
