package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Helm1Rahmad1/go-thrift-market/internal/domain"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/offers"
)

type OffersHandler struct {
	offers *offers.Service
}

func NewOffersHandler(svc *offers.Service) *OffersHandler {
	return &OffersHandler{offers: svc}
}

type createOfferRequestDTO struct {
	ProductID string `json:"product_id"`
	Price     int64  `json:"price"`
}

type updateOfferRequestDTO struct {
	Status domain.OfferStatus `json:"status"`
}

func (h *OffersHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req createOfferRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	offer, err := h.offers.Create(r.Context(), userID, req.ProductID, req.Price)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, offer)
}

func (h *OffersHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	list, err := h.offers.ListForUser(r.Context(), userID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	if list == nil {
		list = []*domain.Offer{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *OffersHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	offer, err := h.offers.Get(r.Context(), userID, chi.URLParam(r, "offer_id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, offer)
}

// UpdateOffer is the seller's accept/decline decision.
func (h *OffersHandler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req updateOfferRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	offer, err := h.offers.UpdateStatus(r.Context(), userID, chi.URLParam(r, "offer_id"), req.Status)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, offer)
}
