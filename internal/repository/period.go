package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/domain"
)

const periodColumns = `id, name, starts_on, ends_on, created_at`

type PeriodRepository struct {
	db *sql.DB
}

func NewPeriodRepository(db *sql.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

func (r *PeriodRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FinancialPeriod, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+periodColumns+` FROM financial_periods WHERE id = $1`, id,
	)
	p, err := scanPeriod(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrPeriodNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return p, nil
}

// GetLatest returns the most recently created period.
func (r *PeriodRepository) GetLatest(ctx context.Context) (*domain.FinancialPeriod, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+periodColumns+` FROM financial_periods
		ORDER BY created_at DESC, id DESC LIMIT 1`,
	)
	p, err := scanPeriod(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetLatest: %w", domain.ErrNoPeriods)
		}
		return nil, fmt.Errorf("GetLatest: %w", err)
	}
	return p, nil
}

func scanPeriod(s scanner) (*domain.FinancialPeriod, error) {
	var p domain.FinancialPeriod
	if err := s.Scan(&p.ID, &p.Name, &p.StartsOn, &p.EndsOn, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
