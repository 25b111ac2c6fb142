package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/domain"
)

const taxonomyColumns = `id, item_name, report_section, report_sub_section, report_type,
	is_credit_positive, display_order, created_at`

type TaxonomyRepository struct {
	db *sql.DB
}

func NewTaxonomyRepository(db *sql.DB) *TaxonomyRepository {
	return &TaxonomyRepository{db: db}
}

func (r *TaxonomyRepository) List(ctx context.Context) ([]domain.TaxonomyItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taxonomyColumns+` FROM taxonomy_items
		ORDER BY display_order, item_name, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	items := []domain.TaxonomyItem{}
	for rows.Next() {
		it, err := scanTaxonomyItem(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return items, nil
}

func (r *TaxonomyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaxonomyItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taxonomyColumns+` FROM taxonomy_items WHERE id = $1`, id,
	)
	it, err := scanTaxonomyItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrTaxonomyItemNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return it, nil
}

// UpsertTx inserts the item or refreshes the mutable columns of the row that
// shares its natural key. The stored id is returned.
func (r *TaxonomyRepository) UpsertTx(ctx context.Context, tx *sql.Tx, it *domain.TaxonomyItem) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRowContext(ctx,
		`INSERT INTO taxonomy_items (id, item_name, report_section, report_sub_section, report_type,
			is_credit_positive, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT ON CONSTRAINT taxonomy_items_natural_key DO UPDATE SET
			report_sub_section = EXCLUDED.report_sub_section,
			is_credit_positive = EXCLUDED.is_credit_positive,
			display_order = EXCLUDED.display_order
		RETURNING id`,
		it.ID, it.ItemName, it.ReportSection, it.ReportSubSection, it.ReportType,
		it.IsCreditPositive, it.DisplayOrder,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, translate("UpsertTx", err)
	}
	return id, nil
}

func scanTaxonomyItem(s scanner) (*domain.TaxonomyItem, error) {
	var it domain.TaxonomyItem
	var sub sql.NullString
	err := s.Scan(
		&it.ID, &it.ItemName, &it.ReportSection, &sub, &it.ReportType,
		&it.IsCreditPositive, &it.DisplayOrder, &it.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if sub.Valid {
		it.ReportSubSection = &sub.String
	}
	return &it, nil
}
