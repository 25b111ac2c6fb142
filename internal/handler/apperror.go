package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken     = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken     = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrPeriodNotFound        = &AppError{http.StatusNotFound, "PERIOD_NOT_FOUND", "Financial period not found"}
	ErrNoPeriods             = &AppError{http.StatusNotFound, "NO_PERIODS", "No financial periods exist yet"}
	ErrTaxonomyItemNotFound  = &AppError{http.StatusUnprocessableEntity, "TAXONOMY_ITEM_NOT_FOUND", "Taxonomy item not found"}
	ErrLedgerEntryNotFound   = &AppError{http.StatusUnprocessableEntity, "LEDGER_ENTRY_NOT_FOUND", "Ledger name has no entry in this period"}
	ErrDuplicateMapping      = &AppError{http.StatusConflict, "DUPLICATE_MAPPING", "Ledger name is already mapped in this period"}
	ErrInvalidThreshold      = &AppError{http.StatusBadRequest, "INVALID_THRESHOLD", "Threshold must be between 0 and 1"}
	ErrInvalidBulkMode       = &AppError{http.StatusBadRequest, "INVALID_BULK_MODE", "Mode must be best_effort or all_or_nothing"}
	ErrInvalidConfidence     = &AppError{http.StatusBadRequest, "INVALID_CONFIDENCE", "Confidence must be between 0 and 1"}
	ErrMissingIdempotencyKey = &AppError{http.StatusBadRequest, "MISSING_IDEMPOTENCY_KEY", "Idempotency-Key header is required"}
	ErrIdempotencyConflict   = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
)
