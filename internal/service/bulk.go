package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/domain"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/logging"
)

const (
	ReasonDuplicateMapping     = "duplicate_mapping"
	ReasonTaxonomyItemNotFound = "taxonomy_item_not_found"
	ReasonPeriodNotFound       = "period_not_found"
	ReasonLedgerEntryNotFound  = "ledger_entry_not_found"
)

type BulkOptions struct {
	Threshold float64
	Mode      domain.BulkMode
	AppliedBy *string
}

// BulkRequest leaves Threshold and Mode unset to fall back on configuration.
type BulkRequest struct {
	Period    domain.PeriodRef
	Threshold *float64
	Mode      domain.BulkMode
	AppliedBy *string
}

// BulkApplyMappings generates suggestions for the period and applies those at
// or above the threshold.
func (s *MappingService) BulkApplyMappings(ctx context.Context, req BulkRequest) (*domain.BulkResult, error) {
	opts, err := s.bulkOptions(req)
	if err != nil {
		return nil, fmt.Errorf("BulkApplyMappings: %w", err)
	}

	batch, err := s.GenerateSuggestions(ctx, req.Period)
	if err != nil {
		return nil, fmt.Errorf("BulkApplyMappings: %w", err)
	}

	res, err := s.BulkApply(ctx, batch.Period.ID, batch.Suggestions, opts)
	if err != nil {
		return nil, fmt.Errorf("BulkApplyMappings: %w", err)
	}
	return res, nil
}

// BulkApply inserts every suggestion whose confidence is at least the
// threshold. Constraint failures are reported per row; any other error aborts.
func (s *MappingService) BulkApply(ctx context.Context, periodID uuid.UUID, suggestions []domain.Suggestion, opts BulkOptions) (*domain.BulkResult, error) {
	log := logging.FromContext(ctx)

	if opts.Threshold < 0 || opts.Threshold > 1 {
		return nil, fmt.Errorf("BulkApply: %w", domain.ErrInvalidThreshold)
	}
	if opts.Mode == "" {
		opts.Mode = domain.BulkModeBestEffort
	}
	if !opts.Mode.IsValid() {
		return nil, fmt.Errorf("BulkApply: %w", domain.ErrInvalidBulkMode)
	}

	res := &domain.BulkResult{
		PeriodID:  periodID,
		Mode:      opts.Mode,
		Threshold: opts.Threshold,
		Failed:    []domain.BulkFailure{},
	}

	eligible := make([]*domain.Mapping, 0, len(suggestions))
	for _, sg := range suggestions {
		if sg.Confidence < opts.Threshold {
			res.SkippedBelowThreshold++
			continue
		}
		confidence := sg.Confidence
		eligible = append(eligible, s.newMapping(periodID, sg.UploadID, sg.LedgerName, sg.SuggestedTaxonomyItemID, &confidence, opts.AppliedBy))
	}

	var err error
	if opts.Mode == domain.BulkModeAllOrNothing {
		err = s.applyAllOrNothing(ctx, eligible, res)
	} else {
		err = s.applyBestEffort(ctx, eligible, res)
	}
	if err != nil {
		return nil, fmt.Errorf("BulkApply: %w", err)
	}

	log.Info("bulk apply finished",
		"period_id", periodID,
		"mode", res.Mode,
		"threshold", res.Threshold,
		"applied", res.Applied,
		"failed", len(res.Failed),
		"skipped_below_threshold", res.SkippedBelowThreshold,
		"rolled_back", res.RolledBack,
	)

	return res, nil
}

func (s *MappingService) applyBestEffort(ctx context.Context, mappings []*domain.Mapping, res *domain.BulkResult) error {
	for _, m := range mappings {
		err := s.mappings.Create(ctx, m)
		if err == nil {
			res.Applied++
			continue
		}
		reason, ok := failureReason(err)
		if !ok {
			return fmt.Errorf("applyBestEffort: %s: %w", m.LedgerName, err)
		}
		res.Failed = append(res.Failed, domain.BulkFailure{LedgerName: m.LedgerName, Reason: reason})
	}
	return nil
}

func (s *MappingService) applyAllOrNothing(ctx context.Context, mappings []*domain.Mapping, res *domain.BulkResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("applyAllOrNothing: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, m := range mappings {
		err := s.mappings.CreateTx(ctx, tx, m)
		if err == nil {
			res.Applied++
			continue
		}
		reason, ok := failureReason(err)
		if !ok {
			return fmt.Errorf("applyAllOrNothing: %s: %w", m.LedgerName, err)
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("applyAllOrNothing: rollback: %w", rbErr)
		}
		res.Applied = 0
		res.RolledBack = true
		res.Failed = append(res.Failed, domain.BulkFailure{LedgerName: m.LedgerName, Reason: reason})
		return nil
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("applyAllOrNothing: commit: %w", err)
	}
	return nil
}

func (s *MappingService) bulkOptions(req BulkRequest) (BulkOptions, error) {
	opts := BulkOptions{
		Threshold: s.config.BulkApplyThreshold,
		Mode:      s.config.BulkApplyMode,
		AppliedBy: req.AppliedBy,
	}
	if req.Threshold != nil {
		opts.Threshold = *req.Threshold
	}
	if req.Mode != "" {
		opts.Mode = req.Mode
	}
	if opts.Threshold < 0 || opts.Threshold > 1 {
		return BulkOptions{}, fmt.Errorf("bulkOptions: %w", domain.ErrInvalidThreshold)
	}
	if !opts.Mode.IsValid() {
		return BulkOptions{}, fmt.Errorf("bulkOptions: %w", domain.ErrInvalidBulkMode)
	}
	return opts, nil
}

func failureReason(err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrDuplicateMapping):
		return ReasonDuplicateMapping, true
	case errors.Is(err, domain.ErrTaxonomyItemNotFound):
		return ReasonTaxonomyItemNotFound, true
	case errors.Is(err, domain.ErrPeriodNotFound):
		return ReasonPeriodNotFound, true
	case errors.Is(err, domain.ErrLedgerEntryNotFound):
		return ReasonLedgerEntryNotFound, true
	}
	return "", false
}
