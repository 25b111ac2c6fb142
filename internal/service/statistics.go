package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/domain"
)

// GetMappingStatistics reports completion for one period. Only the mappings
// table decides whether a name counts as mapped.
func (s *MappingService) GetMappingStatistics(ctx context.Context, ref domain.PeriodRef) (*domain.MappingStatistics, error) {
	period, err := s.ResolvePeriod(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("GetMappingStatistics: %w", err)
	}

	scope := domain.StatsScopePeriod
	if ref.Latest {
		scope = domain.StatsScopeLatest
	}

	stats, err := s.statistics(ctx, scope, &period.ID)
	if err != nil {
		return nil, fmt.Errorf("GetMappingStatistics: %w", err)
	}
	return stats, nil
}

// GetGlobalMappingStatistics counts (ledger name, period) pairs across every
// period.
func (s *MappingService) GetGlobalMappingStatistics(ctx context.Context) (*domain.MappingStatistics, error) {
	stats, err := s.statistics(ctx, domain.StatsScopeAll, nil)
	if err != nil {
		return nil, fmt.Errorf("GetGlobalMappingStatistics: %w", err)
	}
	return stats, nil
}

func (s *MappingService) statistics(ctx context.Context, scope domain.StatsScope, periodID *uuid.UUID) (*domain.MappingStatistics, error) {
	total, err := s.ledger.CountDistinctNames(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("statistics: %w", err)
	}
	mapped, err := s.mappings.CountDistinctNames(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("statistics: %w", err)
	}
	return &domain.MappingStatistics{
		Scope:                scope,
		PeriodID:             periodID,
		TotalAccounts:        total,
		MappedAccounts:       mapped,
		CompletionPercentage: domain.CompletionPercentage(mapped, total),
	}, nil
}
