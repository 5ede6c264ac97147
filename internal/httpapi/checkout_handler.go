package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/Helm1Rahmad1/go-thrift-market/internal/checkout"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/domain"
)

type CheckoutHandler struct {
	orchestrator *checkout.Orchestrator
}

func NewCheckoutHandler(orchestrator *checkout.Orchestrator) *CheckoutHandler {
	return &CheckoutHandler{orchestrator: orchestrator}
}

type checkoutRequestDTO struct {
	Items           []checkout.ItemInput   `json:"items"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req checkoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.orchestrator.Checkout(r.Context(), checkout.Request{
		BuyerID:         userID,
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		IdempotencyKey:  r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}
