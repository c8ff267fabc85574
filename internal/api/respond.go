package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/remote"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/internal/stock"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// handleServiceError maps errors from the storefront packages onto HTTP answers with
// the message the visitor should see.
func handleServiceError(w http.ResponseWriter, err error) {
	var (
		verr    *session.ValidationError
		blocked *stock.BlockedError
		subErr  *checkout.SubmissionError
		te      *remote.TransportError
	)

	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: verr.Message, Code: "validation_error", Field: verr.Field})
	case errors.Is(err, session.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
	case errors.Is(err, session.ErrSessionNotStored):
		respondError(w, http.StatusInternalServerError, "session_not_stored", "Authentication successful but error storing session")
	case errors.Is(err, checkout.ErrAuthRequired):
		respondError(w, http.StatusUnauthorized, "auth_required", "Please log in to place an order.")
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "Your cart is empty.")
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		respondError(w, http.StatusConflict, "submission_in_flight", "Your order is already being placed.")
	case errors.As(err, &subErr):
		respondError(w, http.StatusBadGateway, "order_failed", subErr.Error())
	case errors.As(err, &blocked):
		respondError(w, http.StatusConflict, string(blocked.Availability.Status), blocked.Error())
	case errors.Is(err, stock.ErrAvailabilityUnknown):
		respondError(w, http.StatusServiceUnavailable, "stock_unknown", "Failed to check stock.")
	case errors.Is(err, catalog.ErrCategoryNotFound):
		respondError(w, http.StatusNotFound, "category_not_found", "Category not found")
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", "Product not found")
	case errors.Is(err, catalog.ErrNoRates):
		respondError(w, http.StatusUnprocessableEntity, "no_rates", "No rates available for this product.")
	case errors.Is(err, catalog.ErrUnknownRate):
		respondError(w, http.StatusBadRequest, "unknown_rate", "No rate for the selected size.")
	case errors.Is(err, remote.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "Service unavailable. Please try again later.")
	case errors.As(err, &te):
		msg := te.Message
		if msg == "" {
			msg = "Please try again."
		}
		respondError(w, http.StatusBadGateway, "upstream_error", msg)
	default:
		log.Printf("unhandled error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
