package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/domain"
)

type periodRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FinancialPeriod, error)
	GetLatest(ctx context.Context) (*domain.FinancialPeriod, error)
}

type ledgerRepository interface {
	GetByPeriodID(ctx context.Context, periodID uuid.UUID) ([]domain.LedgerEntry, error)
	GetFirstByName(ctx context.Context, periodID uuid.UUID, ledgerName string) (*domain.LedgerEntry, error)
	CountDistinctNames(ctx context.Context, periodID *uuid.UUID) (int, error)
}

type taxonomyRepository interface {
	List(ctx context.Context) ([]domain.TaxonomyItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TaxonomyItem, error)
}

type mappingRepository interface {
	Create(ctx context.Context, m *domain.Mapping) error
	CreateTx(ctx context.Context, tx *sql.Tx, m *domain.Mapping) error
	GetByPeriodID(ctx context.Context, periodID uuid.UUID) ([]domain.Mapping, error)
	MappedSet(ctx context.Context, periodID uuid.UUID) (domain.MappedSet, error)
	CountDistinctNames(ctx context.Context, periodID *uuid.UUID) (int, error)
}
