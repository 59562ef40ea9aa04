package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ryanbastic/padboard/internal/model"
	"github.com/ryanbastic/padboard/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// DomainError is the response body for failed board operations. It
// implements huma.StatusError so handlers can return it directly.
type DomainError struct {
	Status  int    `json:"-"`
	Code    string `json:"code" doc:"Machine readable error code" example:"position_taken"`
	Class   string `json:"class" doc:"Error class: validation, constraint, conflict, not_found, unavailable or internal"`
	Entity  string `json:"entity,omitempty" doc:"Entity the error refers to"`
	ID      string `json:"id,omitempty" doc:"Id of the offending entity"`
	Field   string `json:"field,omitempty" doc:"Offending field"`
	Message string `json:"message" doc:"Human readable message"`
}

func (e *DomainError) Error() string  { return e.Message }
func (e *DomainError) GetStatus() int { return e.Status }

var classStatus = map[model.Class]int{
	model.ClassValidation: http.StatusUnprocessableEntity,
	model.ClassConstraint: http.StatusConflict,
	model.ClassConflict:   http.StatusConflict,
	model.ClassNotFound:   http.StatusNotFound,
}

// toHTTPError converts a service error into a response error. Unknown errors
// are logged and hidden behind a generic message.
func toHTTPError(ctx context.Context, logger *slog.Logger, op string, err error) error {
	var de *model.Error
	if errors.As(err, &de) {
		class := de.Class()
		status, ok := classStatus[class]
		if !ok {
			status = http.StatusInternalServerError
		}
		return &DomainError{
			Status:  status,
			Code:    string(de.Code),
			Class:   class.String(),
			Entity:  de.Entity,
			ID:      de.ID,
			Field:   de.Field,
			Message: de.Error(),
		}
	}

	if errors.Is(err, storage.ErrUnavailable) {
		logger.Warn("store unavailable", "op", op, "error", err, "request_id", RequestIDFrom(ctx))
		return &DomainError{
			Status:  http.StatusServiceUnavailable,
			Code:    "unavailable",
			Class:   "unavailable",
			Message: "store temporarily unavailable",
		}
	}

	logger.Error("operation failed", "op", op, "error", err, "request_id", RequestIDFrom(ctx))
	return &DomainError{
		Status:  http.StatusInternalServerError,
		Code:    "internal",
		Class:   "internal",
		Message: "failed to " + op,
	}
}

func badRequest(field, msg string) error {
	return &DomainError{
		Status:  http.StatusBadRequest,
		Code:    "bad_request",
		Class:   "validation",
		Field:   field,
		Message: msg,
	}
}
