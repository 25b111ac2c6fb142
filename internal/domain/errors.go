package domain

import "errors"

var (
	ErrPeriodNotFound        = errors.New("financial period not found")
	ErrNoPeriods             = errors.New("no financial periods exist")
	ErrTaxonomyItemNotFound  = errors.New("taxonomy item not found")
	ErrLedgerEntryNotFound   = errors.New("ledger name has no entry in period")
	ErrDuplicateMapping      = errors.New("mapping already exists for ledger name in period")
	ErrInvalidThreshold      = errors.New("threshold must be between 0 and 1")
	ErrInvalidBulkMode       = errors.New("invalid bulk apply mode")
	ErrInvalidConfidence     = errors.New("confidence must be between 0 and 1")
	ErrInvalidRequest        = errors.New("invalid request")
	ErrDuplicateTaxonomyItem = errors.New("duplicate taxonomy item")
)
