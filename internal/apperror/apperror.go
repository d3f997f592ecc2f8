// Package apperror defines the application's error taxonomy.
//
// Services return these typed errors; HTTP handlers translate them to
// status codes and response envelopes with errors.Is / errors.As. The
// sentinel errors below are the "kinds" — an *AppError wraps one of them
// and adds the human-readable message plus structured details.
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Check with errors.Is(err, apperror.ErrX).
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation error")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoCombination     = errors.New("no combination available")
	ErrDuplicateCard     = errors.New("duplicate combination")
	ErrLimitExceeded     = errors.New("preference limit exceeded")
)

// AppError is a typed, user-presentable application error.
//
// Details carries structured context the UI needs to render actionable
// guidance — e.g. required vs. current balance on ErrInsufficientFunds, or
// the collection-complete flag on ErrNoCombination. Keep values JSON-safe.
type AppError struct {
	Err     error          // sentinel kind (one of the ErrX vars above)
	Code    string         // machine-readable code, e.g. "insufficient_funds"
	Message string         // human-readable message
	Field   string         // optional: field causing a validation error
	Details map[string]any // optional: structured context for the caller
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Code:    "not_found",
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Code:    "validation_error",
		Message: message,
		Field:   field,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Code:    "conflict",
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Code:    "forbidden",
		Message: message,
	}
}

// Unauthorized indicates no valid identity was presented.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Code:    "unauthorized",
		Message: message,
	}
}

// InsufficientFunds carries the required and current balance so the UI can
// tell the user exactly how many coins they're short.
func InsufficientFunds(required, current int64) *AppError {
	return &AppError{
		Err:     ErrInsufficientFunds,
		Code:    "insufficient_funds",
		Message: fmt.Sprintf("need %d coins, have %d", required, current),
		Details: map[string]any{
			"required": required,
			"current":  current,
		},
	}
}

// NoCombinationAvailable is returned when the selector finds nothing.
//
// complete distinguishes "you own every combination in the catalog" from
// "your preferences exclude all remaining candidates" — the two need very
// different user-facing messages.
func NoCombinationAvailable(complete bool) *AppError {
	msg := "no combination matches your current preferences"
	if complete {
		msg = "collection complete: you own every combination"
	}
	return &AppError{
		Err:     ErrNoCombination,
		Code:    "no_combination_available",
		Message: msg,
		Details: map[string]any{
			"collectionComplete": complete,
		},
	}
}

// DuplicateCombination is the commit-time re-check failure: another request
// claimed this key between selection and insert. From the caller's
// perspective it reads like NoCombinationAvailable (retry is reasonable),
// but it is a distinct kind so the race shows up separately in logs.
func DuplicateCombination(key string) *AppError {
	return &AppError{
		Err:     ErrDuplicateCard,
		Code:    "duplicate_combination",
		Message: fmt.Sprintf("combination %s was already generated", key),
		Details: map[string]any{
			"combinationKey": key,
			"retryable":      true,
		},
	}
}

// LockLimitExceeded rejects a lock that would exceed the per-user maximum.
func LockLimitExceeded(limit int) *AppError {
	return &AppError{
		Err:     ErrLimitExceeded,
		Code:    "lock_limit_exceeded",
		Message: fmt.Sprintf("at most %d APIs can be locked", limit),
		Details: map[string]any{"limit": limit},
	}
}

// IgnoreLimitExceeded rejects an ignore that would leave too few APIs
// selectable.
func IgnoreLimitExceeded(minSelectable int) *AppError {
	return &AppError{
		Err:     ErrLimitExceeded,
		Code:    "ignore_limit_exceeded",
		Message: fmt.Sprintf("at least %d APIs must remain selectable", minSelectable),
		Details: map[string]any{"minSelectable": minSelectable},
	}
}
