package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/domain"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

var constraintErrors = map[string]error{
	"mappings_ledger_period_key": domain.ErrDuplicateMapping,
	"mappings_taxonomy_item_fk":  domain.ErrTaxonomyItemNotFound,
	"mappings_period_fk":         domain.ErrPeriodNotFound,
	"mappings_upload_fk":         domain.ErrLedgerEntryNotFound,
	"taxonomy_items_natural_key": domain.ErrDuplicateTaxonomyItem,
}

// translate maps constraint violations onto domain errors, keeping the driver
// error in the chain for logging.
func translate(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == pqUniqueViolation || pqErr.Code == pqForeignKeyViolation {
			if derr, ok := constraintErrors[pqErr.Constraint]; ok {
				return fmt.Errorf("%s: %w: %w", op, derr, err)
			}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
