package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/domain"
)

const mappingColumns = `id, ledger_name, taxonomy_item_id, period_id, upload_id, mapping_type,
	confidence_score, applied_by, created_at`

type MappingRepository struct {
	db *sql.DB
}

func NewMappingRepository(db *sql.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// Create inserts a mapping. A second mapping for the same ledger name and
// period fails with domain.ErrDuplicateMapping.
func (r *MappingRepository) Create(ctx context.Context, m *domain.Mapping) error {
	if err := r.insert(ctx, r.db, m); err != nil {
		return translate("Create", err)
	}
	return nil
}

func (r *MappingRepository) CreateTx(ctx context.Context, tx *sql.Tx, m *domain.Mapping) error {
	if err := r.insert(ctx, tx, m); err != nil {
		return translate("CreateTx", err)
	}
	return nil
}

func (r *MappingRepository) insert(ctx context.Context, ex execer, m *domain.Mapping) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO mappings (id, ledger_name, taxonomy_item_id, period_id, upload_id, mapping_type,
			confidence_score, applied_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.LedgerName, m.TaxonomyItemID, m.PeriodID, m.UploadID, m.MappingType,
		m.ConfidenceScore, m.AppliedBy, m.CreatedAt,
	)
	return err
}

func (r *MappingRepository) GetByPeriodID(ctx context.Context, periodID uuid.UUID) ([]domain.Mapping, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+mappingColumns+` FROM mappings
		WHERE period_id = $1 ORDER BY ledger_name`, periodID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByPeriodID: %w", err)
	}
	defer rows.Close()

	mappings := []domain.Mapping{}
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("GetByPeriodID: scan: %w", err)
		}
		mappings = append(mappings, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByPeriodID: rows: %w", err)
	}
	return mappings, nil
}

// MappedSet returns the ledger names in a period that already carry a mapping.
func (r *MappingRepository) MappedSet(ctx context.Context, periodID uuid.UUID) (domain.MappedSet, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ledger_name FROM mappings WHERE period_id = $1`, periodID,
	)
	if err != nil {
		return nil, fmt.Errorf("MappedSet: %w", err)
	}
	defer rows.Close()

	set := domain.NewMappedSet()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("MappedSet: scan: %w", err)
		}
		set.Add(periodID, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("MappedSet: rows: %w", err)
	}
	return set, nil
}

// CountDistinctNames counts mapped ledger names in one period, or across
// every period when periodID is nil. Only names that still have a ledger entry
// in their period are counted, so the figure never exceeds the ledger count.
func (r *MappingRepository) CountDistinctNames(ctx context.Context, periodID *uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM (
			SELECT DISTINCT m.ledger_name, m.period_id FROM mappings m
			JOIN ledger_entries e ON e.period_id = m.period_id AND e.ledger_name = m.ledger_name
			WHERE $1::uuid IS NULL OR m.period_id = $1::uuid
		) mapped`, periodID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("CountDistinctNames: %w", err)
	}
	return n, nil
}

func scanMapping(s scanner) (*domain.Mapping, error) {
	var m domain.Mapping
	var confidence sql.NullFloat64
	var appliedBy sql.NullString
	var uploadID uuid.NullUUID
	err := s.Scan(
		&m.ID, &m.LedgerName, &m.TaxonomyItemID, &m.PeriodID, &uploadID, &m.MappingType,
		&confidence, &appliedBy, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if uploadID.Valid {
		m.UploadID = &uploadID.UUID
	}
	if confidence.Valid {
		m.ConfidenceScore = &confidence.Float64
	}
	if appliedBy.Valid {
		m.AppliedBy = &appliedBy.String
	}
	return &m, nil
}
