package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/config"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/domain"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/logging"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/suggest"
)

type MappingService struct {
	periods   periodRepository
	ledger    ledgerRepository
	taxonomy  taxonomyRepository
	mappings  mappingRepository
	generator *suggest.Generator
	db        *sql.DB
	config    *config.Config
	now       func() time.Time
}

func NewMappingService(
	periods periodRepository,
	ledger ledgerRepository,
	taxonomy taxonomyRepository,
	mappings mappingRepository,
	generator *suggest.Generator,
	db *sql.DB,
	cfg *config.Config,
) *MappingService {
	if generator == nil {
		generator = suggest.NewGenerator(nil)
	}
	return &MappingService{
		periods:   periods,
		ledger:    ledger,
		taxonomy:  taxonomy,
		mappings:  mappings,
		generator: generator,
		db:        db,
		config:    cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *MappingService) ResolvePeriod(ctx context.Context, ref domain.PeriodRef) (*domain.FinancialPeriod, error) {
	var (
		p   *domain.FinancialPeriod
		err error
	)
	if ref.Latest {
		p, err = s.periods.GetLatest(ctx)
	} else {
		p, err = s.periods.GetByID(ctx, ref.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("ResolvePeriod: %w", err)
	}
	return p, nil
}

type SuggestionBatch struct {
	Period      domain.FinancialPeriod
	Suggestions []domain.Suggestion
}

// GenerateSuggestions scores every unmapped ledger name of the period against
// the stored taxonomy. Nothing is written.
func (s *MappingService) GenerateSuggestions(ctx context.Context, ref domain.PeriodRef) (*SuggestionBatch, error) {
	log := logging.FromContext(ctx)

	period, err := s.ResolvePeriod(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("GenerateSuggestions: %w", err)
	}

	entries, err := s.ledger.GetByPeriodID(ctx, period.ID)
	if err != nil {
		return nil, fmt.Errorf("GenerateSuggestions: %w", err)
	}

	items, err := s.taxonomy.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("GenerateSuggestions: %w", err)
	}

	mapped, err := s.mappings.MappedSet(ctx, period.ID)
	if err != nil {
		return nil, fmt.Errorf("GenerateSuggestions: %w", err)
	}

	suggestions, stats := s.generator.GenerateWithStats(entries, items, mapped)

	log.Debug("suggestions generated",
		"period_id", period.ID,
		"entries", stats.Entries,
		"already_mapped", stats.AlreadyMapped,
		"malformed", stats.Malformed,
		"duplicates", stats.Duplicates,
		"no_candidate", stats.NoCandidate,
		"suggested", stats.Suggested,
	)

	return &SuggestionBatch{Period: *period, Suggestions: suggestions}, nil
}

type ApplyRequest struct {
	LedgerName     string
	Period         domain.PeriodRef
	TaxonomyItemID uuid.UUID
	Confidence     *float64
	AppliedBy      *string
}

// ApplyMapping records a single mapping for a ledger name the period actually
// carries. A concurrent or repeated call for the same ledger name and period
// loses on the unique constraint and returns domain.ErrDuplicateMapping.
func (s *MappingService) ApplyMapping(ctx context.Context, req ApplyRequest) (*domain.Mapping, error) {
	log := logging.FromContext(ctx)

	if err := validateApply(req); err != nil {
		return nil, fmt.Errorf("ApplyMapping: %w", err)
	}

	period, err := s.ResolvePeriod(ctx, req.Period)
	if err != nil {
		return nil, fmt.Errorf("ApplyMapping: %w", err)
	}

	entry, err := s.ledger.GetFirstByName(ctx, period.ID, req.LedgerName)
	if err != nil {
		return nil, fmt.Errorf("ApplyMapping: %w", err)
	}
	if _, err := s.taxonomy.GetByID(ctx, req.TaxonomyItemID); err != nil {
		return nil, fmt.Errorf("ApplyMapping: %w", err)
	}

	m := s.newMapping(period.ID, entry.UploadID, req.LedgerName, req.TaxonomyItemID, req.Confidence, req.AppliedBy)
	if err := s.mappings.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("ApplyMapping: %w", err)
	}

	log.Info("mapping applied",
		"mapping_id", m.ID,
		"period_id", m.PeriodID,
		"ledger_name", m.LedgerName,
		"upload_id", entry.UploadID,
		"taxonomy_item_id", m.TaxonomyItemID,
		"mapping_type", m.MappingType,
	)

	return m, nil
}

// ApplySuggestion records a generated suggestion as an ai_suggested mapping.
func (s *MappingService) ApplySuggestion(ctx context.Context, sg domain.Suggestion, appliedBy *string) (*domain.Mapping, error) {
	confidence := sg.Confidence
	m, err := s.ApplyMapping(ctx, ApplyRequest{
		LedgerName:     sg.LedgerName,
		Period:         domain.PeriodRefFor(sg.PeriodID),
		TaxonomyItemID: sg.SuggestedTaxonomyItemID,
		Confidence:     &confidence,
		AppliedBy:      appliedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("ApplySuggestion: %w", err)
	}
	return m, nil
}

func (s *MappingService) ListMappings(ctx context.Context, ref domain.PeriodRef) ([]domain.Mapping, error) {
	period, err := s.ResolvePeriod(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("ListMappings: %w", err)
	}
	mappings, err := s.mappings.GetByPeriodID(ctx, period.ID)
	if err != nil {
		return nil, fmt.Errorf("ListMappings: %w", err)
	}
	return mappings, nil
}

func (s *MappingService) ListTaxonomy(ctx context.Context) ([]domain.TaxonomyItem, error) {
	items, err := s.taxonomy.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTaxonomy: %w", err)
	}
	return items, nil
}

func (s *MappingService) newMapping(periodID, uploadID uuid.UUID, ledgerName string, itemID uuid.UUID, confidence *float64, appliedBy *string) *domain.Mapping {
	mappingType := domain.MappingTypeManual
	if confidence != nil {
		mappingType = domain.MappingTypeAISuggested
	}
	var upload *uuid.UUID
	if uploadID != uuid.Nil {
		upload = &uploadID
	}
	return &domain.Mapping{
		ID:              uuid.New(),
		LedgerName:      ledgerName,
		TaxonomyItemID:  itemID,
		PeriodID:        periodID,
		UploadID:        upload,
		MappingType:     mappingType,
		ConfidenceScore: confidence,
		AppliedBy:       appliedBy,
		CreatedAt:       s.now(),
	}
}

func validateApply(req ApplyRequest) error {
	if strings.TrimSpace(req.LedgerName) == "" {
		return fmt.Errorf("validateApply: ledger name is required: %w", domain.ErrInvalidRequest)
	}
	if req.TaxonomyItemID == uuid.Nil {
		return fmt.Errorf("validateApply: taxonomy item id is required: %w", domain.ErrInvalidRequest)
	}
	if req.Confidence != nil && (*req.Confidence < 0 || *req.Confidence > 1) {
		return fmt.Errorf("validateApply: %w", domain.ErrInvalidConfidence)
	}
	return nil
}
