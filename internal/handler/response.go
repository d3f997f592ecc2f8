// Package handler contains the HTTP layer: request decoding, calling the
// service layer, and translating results and domain errors into the
// response envelope. No business rules live here.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tanvir/cardforge/internal/apperror"
)

// envelope is the uniform response shape for every API endpoint:
//
//	success: {"success":true,  "data":{...}, "message":"..."}
//	failure: {"success":false, "error":{"code":"...","message":"...","details":{...}}}
//
// One shape for everything means the frontend parses every response the
// same way regardless of status code.
type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// writeJSON sends the envelope with the given status. Headers must be set
// before the first body byte — Encode writes immediately.
func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		// Headers are already gone; all we can do is log.
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeSuccess wraps data in the success envelope.
func writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, envelope{Success: true, Data: data, Message: message})
}

// writeError maps a domain error to an HTTP status and the failure
// envelope.
//
// The service layer returns apperror sentinels wrapped in *AppError;
// errors.Is walks the chain regardless of fmt.Errorf wrapping. The mapping
// lives here and only here — services never know about status codes.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		// Unknown error: generic 500. Never leak internals (SQL, paths)
		// to the client.
		writeJSON(w, http.StatusInternalServerError, envelope{
			Success: false,
			Error:   &errorBody{Code: "internal_error", Message: "an internal error occurred"},
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperror.ErrValidation),
		errors.Is(err, apperror.ErrInsufficientFunds),
		errors.Is(err, apperror.ErrNoCombination),
		errors.Is(err, apperror.ErrLimitExceeded):
		// Business-rule rejections: the request was well-formed HTTP but
		// the rules said no.
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict),
		errors.Is(err, apperror.ErrDuplicateCard):
		status = http.StatusConflict
	}

	writeJSON(w, status, envelope{
		Success: false,
		Error: &errorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		},
	})
}

// decodeJSON decodes the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON body")
	}
	return nil
}
