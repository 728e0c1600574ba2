package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/logger"
)

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// InsufficientBalanceResponse tells the caller what is left after a refused debit
type InsufficientBalanceResponse struct {
	Error          string `json:"error"`
	Requested      int    `json:"requested"`
	Shortfall      int    `json:"shortfall"`
	Timed          int    `json:"timed"`
	Event          int    `json:"event"`
	Named          int    `json:"named"`
	NextRefillInMS int64  `json:"next_refill_in_ms"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	buf := getBuffer()
	defer putBuffer(buf)

	// Encode before writing headers so an encoding failure can still become a 500
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error(LogMsgEncodeFailed, "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"` + ErrMsgGenericServerError + `"}` + "\n"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error(LogMsgWriteFailed, "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError logs a failed service call and writes the mapped response
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	log := logger.FromContext(r.Context())

	var balanceErr *domain.InsufficientBalanceError
	if errors.As(err, &balanceErr) {
		log.Info(opName, "reason", err.Error())
		respondJSON(w, http.StatusConflict, InsufficientBalanceResponse{
			Error:          ErrMsgInsufficientBalanceError,
			Requested:      balanceErr.Requested,
			Shortfall:      balanceErr.Shortfall,
			Timed:          balanceErr.Timed,
			Event:          balanceErr.Event,
			Named:          balanceErr.Named,
			NextRefillInMS: balanceErr.NextRefillIn.Milliseconds(),
		})
		return
	}

	status, msg := mapServiceErrorToUserMessage(err)
	if status >= http.StatusInternalServerError {
		log.Error(LogMsgServiceError, "operation", opName, "error", err)
	} else {
		log.Warn(LogMsgServiceError, "operation", opName, "error", err)
	}
	respondError(w, status, msg)
}

// User-facing error messages for service errors
const (
	ErrMsgGenericServerError = "Something went wrong"
	ErrMsgUnavailableError   = "Server is busy. Please try again."

	ErrMsgInsufficientBalanceError = "Not enough pulls available"
	ErrMsgNoActiveGrantError       = "That grant is not active"
	ErrMsgGrantNotFoundError       = "Grant not found"
	ErrMsgGrantExistsError         = "A grant with that label already exists"
	ErrMsgAllowanceNotFoundError   = "No allowance recorded for that user"
	ErrMsgUnknownPolicyError       = "Unknown pull policy"

	ErrMsgInsufficientQuantityError = "Not enough copies in that stack"
	ErrMsgStackNotFoundError        = "Stack not found"

	ErrMsgProgressionNotFoundError = "No progression recorded for that character"
	ErrMsgPreviewNotFoundError     = "Burn preview not found or expired"
	ErrMsgNothingToBurnError       = "Nothing matched the burn request"
	ErrMsgInvalidInputError        = "Invalid request. Please check your inputs."
)

// mapServiceErrorToUserMessage converts domain errors to HTTP status codes and
// messages that callers can act on. Unrecognized errors become a generic 500.
func mapServiceErrorToUserMessage(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, ErrMsgGenericServerError
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusConflict, ErrMsgInsufficientBalanceError
	case errors.Is(err, domain.ErrNoActiveGrant):
		return http.StatusConflict, ErrMsgNoActiveGrantError
	case errors.Is(err, domain.ErrGrantNotFound):
		return http.StatusNotFound, ErrMsgGrantNotFoundError
	case errors.Is(err, domain.ErrGrantExists):
		return http.StatusConflict, ErrMsgGrantExistsError
	case errors.Is(err, domain.ErrAllowanceNotFound):
		return http.StatusNotFound, ErrMsgAllowanceNotFoundError
	case errors.Is(err, domain.ErrUnknownPolicy):
		return http.StatusBadRequest, ErrMsgUnknownPolicyError
	case errors.Is(err, domain.ErrInsufficientQuantity):
		return http.StatusConflict, ErrMsgInsufficientQuantityError
	case errors.Is(err, domain.ErrStackNotFound):
		return http.StatusNotFound, ErrMsgStackNotFoundError
	case errors.Is(err, domain.ErrProgressionNotFound):
		return http.StatusNotFound, ErrMsgProgressionNotFoundError
	case errors.Is(err, domain.ErrPreviewNotFound):
		return http.StatusNotFound, ErrMsgPreviewNotFoundError
	case errors.Is(err, domain.ErrNothingToBurn):
		return http.StatusUnprocessableEntity, ErrMsgNothingToBurnError
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidInputError
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return http.StatusServiceUnavailable, ErrMsgUnavailableError
	case errors.Is(err, domain.ErrConfigurationDefect),
		errors.Is(err, domain.ErrCascadeLimit),
		errors.Is(err, domain.ErrPersistence):
		return http.StatusInternalServerError, ErrMsgGenericServerError
	}
	return http.StatusInternalServerError, ErrMsgGenericServerError
}
