// Package apperror provides structured error handling for the ledger.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes. Ledger invariant violations get their own codes so callers
// can react to the exact rule that was broken.
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Validation errors (400)
	CodeValidation = "VALIDATION_ERROR"

	// Ledger rule violations (422)
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeOverCredit        = "OVER_CREDIT"
	CodeOverReturn        = "OVER_RETURN"
	CodeConservation      = "CONSERVATION_VIOLATION"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict  = "CONFLICT"
	CodeDuplicate = "DUPLICATE_ENTRY"
)

// AppError is the standard error type for the ledger.
// It implements the error interface and provides structured details for
// API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (batch ids, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInsufficientStock is returned when a debit would drive a batch's
// remaining quantity below zero.
func NewInsufficientStock(batchID string, requested, available string) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    "insufficient stock in batch",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"batch_id":  batchID,
			"requested": requested,
			"available": available,
		},
	}
}

// NewInsufficientStockForItem is returned when automatic allocation finds
// less total available quantity than requested across an item's batches.
func NewInsufficientStockForItem(itemCode string, requested, available string) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    "insufficient stock for item",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"item_code": itemCode,
			"requested": requested,
			"available": available,
		},
	}
}

// NewOverCredit is returned when a credit would push remaining quantity
// above the batch's received quantity.
func NewOverCredit(batchID string, credit, headroom string) *AppError {
	return &AppError{
		Code:       CodeOverCredit,
		Message:    "credit exceeds received quantity",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"batch_id": batchID,
			"credit":   credit,
			"headroom": headroom,
		},
	}
}

// NewOverReturn is returned when a return exceeds the net outstanding
// issued quantity for an (issue, batch) pair.
func NewOverReturn(issueID, batchID string, requested, outstanding string) *AppError {
	return &AppError{
		Code:       CodeOverReturn,
		Message:    "return exceeds outstanding issued quantity",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"issue_id":    issueID,
			"batch_id":    batchID,
			"requested":   requested,
			"outstanding": outstanding,
		},
	}
}

// NewConservation is returned when transformation outputs plus wastage do
// not match the consumed input quantity.
func NewConservation(batchID string, input, outputs, wastage string) *AppError {
	return &AppError{
		Code:       CodeConservation,
		Message:    "outputs plus wastage do not match input quantity",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"input_batch_id": batchID,
			"input":          input,
			"outputs":        outputs,
			"wastage":        wastage,
		},
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// --- Helper functions ---

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsInsufficientStock checks if error is CodeInsufficientStock
func IsInsufficientStock(err error) bool {
	return hasCode(err, CodeInsufficientStock)
}

// IsOverReturn checks if error is CodeOverReturn
func IsOverReturn(err error) bool {
	return hasCode(err, CodeOverReturn)
}

// IsConservation checks if error is CodeConservation
func IsConservation(err error) bool {
	return hasCode(err, CodeConservation)
}

// IsConflict checks if error is CodeConflict
func IsConflict(err error) bool {
	return hasCode(err, CodeConflict)
}

func hasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
