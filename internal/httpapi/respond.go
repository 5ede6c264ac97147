package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Helm1Rahmad1/go-thrift-market/internal/domain"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ProductID string `json:"product_id,omitempty"`
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

// handleDomainError maps the error taxonomy onto HTTP statuses. 409 is
// reserved for genuine write conflicts so clients can tell "retry won't
// help" (422) from "someone else got there first" (409).
func handleDomainError(w http.ResponseWriter, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	var httpStatus int
	switch derr.Code {
	case domain.CodeValidation:
		httpStatus = http.StatusBadRequest
	case domain.CodeUnauthorized:
		httpStatus = http.StatusUnauthorized
	case domain.CodeForbidden:
		httpStatus = http.StatusForbidden
	case domain.CodeNotFound:
		httpStatus = http.StatusNotFound
	case domain.CodeConflict:
		httpStatus = http.StatusConflict
	case domain.CodeOutOfStock:
		httpStatus = http.StatusUnprocessableEntity
	default:
		httpStatus = http.StatusInternalServerError
	}

	msg := derr.Message
	if derr.Code == domain.CodeInternal {
		msg = "internal server error" // never leak the cause
	}
	respondJSON(w, httpStatus, ErrorResponse{
		Error:     msg,
		Code:      string(derr.Code),
		ProductID: derr.ProductID,
	})
}
