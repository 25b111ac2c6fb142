package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/domain"
)

const ledgerColumns = `id, ledger_name, account_type, account_category, closing_balance,
	source_confidence, period_id, upload_id, created_at`

// LedgerRepository reads entries written by the ingestion service.
type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) GetByPeriodID(ctx context.Context, periodID uuid.UUID) ([]domain.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_entries
		WHERE period_id = $1 ORDER BY created_at, id`, periodID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByPeriodID: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("GetByPeriodID: scan: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByPeriodID: rows: %w", err)
	}
	return entries, nil
}

// GetFirstByName returns the earliest entry carrying ledgerName in the period.
func (r *LedgerRepository) GetFirstByName(ctx context.Context, periodID uuid.UUID, ledgerName string) (*domain.LedgerEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_entries
		WHERE period_id = $1 AND ledger_name = $2
		ORDER BY created_at, id LIMIT 1`, periodID, ledgerName,
	)
	e, err := scanLedgerEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetFirstByName: %w", domain.ErrLedgerEntryNotFound)
		}
		return nil, fmt.Errorf("GetFirstByName: %w", err)
	}
	return e, nil
}

// CountDistinctNames counts distinct ledger names in one period, or distinct
// (name, period) pairs across every period when periodID is nil.
func (r *LedgerRepository) CountDistinctNames(ctx context.Context, periodID *uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM (
			SELECT DISTINCT ledger_name, period_id FROM ledger_entries
			WHERE $1::uuid IS NULL OR period_id = $1::uuid
		) e`, periodID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("CountDistinctNames: %w", err)
	}
	return n, nil
}

func scanLedgerEntry(s scanner) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	var accountType, category sql.NullString
	err := s.Scan(
		&e.ID, &e.LedgerName, &accountType, &category, &e.ClosingBalance,
		&e.SourceConfidence, &e.PeriodID, &e.UploadID, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.AccountType = domain.AccountType(accountType.String)
	e.AccountCategory = category.String
	return &e, nil
}
