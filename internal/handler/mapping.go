package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/domain"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/logging"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/service"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/suggest"
)

type mappingService interface {
	GenerateSuggestions(ctx context.Context, ref domain.PeriodRef) (*service.SuggestionBatch, error)
	ApplyMapping(ctx context.Context, req service.ApplyRequest) (*domain.Mapping, error)
	BulkApplyMappings(ctx context.Context, req service.BulkRequest) (*domain.BulkResult, error)
	ListMappings(ctx context.Context, ref domain.PeriodRef) ([]domain.Mapping, error)
	GetMappingStatistics(ctx context.Context, ref domain.PeriodRef) (*domain.MappingStatistics, error)
	GetGlobalMappingStatistics(ctx context.Context) (*domain.MappingStatistics, error)
}

type MappingHandler struct {
	mappings mappingService
}

func NewMappingHandler(mappings mappingService) *MappingHandler {
	return &MappingHandler{mappings: mappings}
}

type suggestionDTO struct {
	LedgerName              string    `json:"ledger_name"`
	PeriodID                uuid.UUID `json:"period_id"`
	SuggestedTaxonomyItemID uuid.UUID `json:"suggested_taxonomy_item_id"`
	SuggestedItemName       string    `json:"suggested_item_name"`
	Confidence              float64   `json:"confidence"`
	MatchScore              float64   `json:"match_score"`
	Reasoning               string    `json:"reasoning"`
	AccountType             string    `json:"account_type"`
	AccountCategory         string    `json:"account_category"`
	SourceConfidence        float64   `json:"source_confidence"`
}

type suggestionsDTO struct {
	PeriodID    uuid.UUID       `json:"period_id"`
	PeriodName  string          `json:"period_name"`
	Count       int             `json:"count"`
	Suggestions []suggestionDTO `json:"suggestions"`
}

func toSuggestionDTO(s domain.Suggestion) suggestionDTO {
	return suggestionDTO{
		LedgerName:              s.LedgerName,
		PeriodID:                s.PeriodID,
		SuggestedTaxonomyItemID: s.SuggestedTaxonomyItemID,
		SuggestedItemName:       s.SuggestedItemName,
		Confidence:              s.Confidence,
		MatchScore:              s.MatchScore,
		Reasoning:               s.Reasoning,
		AccountType:             string(s.AccountType),
		AccountCategory:         s.AccountCategory,
		SourceConfidence:        s.SourceConfidence,
	}
}

type mappingDTO struct {
	ID              uuid.UUID  `json:"id"`
	LedgerName      string     `json:"ledger_name"`
	TaxonomyItemID  uuid.UUID  `json:"taxonomy_item_id"`
	PeriodID        uuid.UUID  `json:"period_id"`
	UploadID        *uuid.UUID `json:"upload_id"`
	MappingType     string     `json:"mapping_type"`
	ConfidenceScore *float64   `json:"confidence_score"`
	AppliedBy       *string    `json:"applied_by"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toMappingDTO(m *domain.Mapping) mappingDTO {
	return mappingDTO{
		ID:              m.ID,
		LedgerName:      m.LedgerName,
		TaxonomyItemID:  m.TaxonomyItemID,
		PeriodID:        m.PeriodID,
		UploadID:        m.UploadID,
		MappingType:     string(m.MappingType),
		ConfidenceScore: m.ConfidenceScore,
		AppliedBy:       m.AppliedBy,
		CreatedAt:       m.CreatedAt,
	}
}

type bulkFailureDTO struct {
	LedgerName string `json:"ledger_name"`
	Reason     string `json:"reason"`
}

type bulkResultDTO struct {
	PeriodID              uuid.UUID        `json:"period_id"`
	Mode                  string           `json:"mode"`
	Threshold             float64          `json:"threshold"`
	Applied               int              `json:"applied"`
	SkippedBelowThreshold int              `json:"skipped_below_threshold"`
	Failed                []bulkFailureDTO `json:"failed"`
	RolledBack            bool             `json:"rolled_back"`
}

func toBulkResultDTO(r *domain.BulkResult) bulkResultDTO {
	failed := make([]bulkFailureDTO, len(r.Failed))
	for i, f := range r.Failed {
		failed[i] = bulkFailureDTO{LedgerName: f.LedgerName, Reason: f.Reason}
	}
	return bulkResultDTO{
		PeriodID:              r.PeriodID,
		Mode:                  string(r.Mode),
		Threshold:             r.Threshold,
		Applied:               r.Applied,
		SkippedBelowThreshold: r.SkippedBelowThreshold,
		Failed:                failed,
		RolledBack:            r.RolledBack,
	}
}

type statisticsDTO struct {
	Scope                string     `json:"scope"`
	PeriodID             *uuid.UUID `json:"period_id"`
	TotalAccounts        int        `json:"total_accounts"`
	MappedAccounts       int        `json:"mapped_accounts"`
	CompletionPercentage float64    `json:"completion_percentage"`
}

func toStatisticsDTO(s *domain.MappingStatistics) statisticsDTO {
	return statisticsDTO{
		Scope:                string(s.Scope),
		PeriodID:             s.PeriodID,
		TotalAccounts:        s.TotalAccounts,
		MappedAccounts:       s.MappedAccounts,
		CompletionPercentage: s.CompletionPercentage.InexactFloat64(),
	}
}

type applyMappingRequest struct {
	LedgerName     string   `json:"ledger_name"`
	TaxonomyItemID string   `json:"taxonomy_item_id"`
	Confidence     *float64 `json:"confidence"`
}

func (r applyMappingRequest) Validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(r.LedgerName) == "" {
		errs = append(errs, FieldError{Field: "ledger_name", Message: "required"})
	}
	if r.TaxonomyItemID == "" {
		errs = append(errs, FieldError{Field: "taxonomy_item_id", Message: "required"})
	} else if _, err := uuid.Parse(r.TaxonomyItemID); err != nil {
		errs = append(errs, FieldError{Field: "taxonomy_item_id", Message: "must be a uuid"})
	}
	if r.Confidence != nil && (*r.Confidence < 0 || *r.Confidence > 1) {
		errs = append(errs, FieldError{Field: "confidence", Message: "must be between 0 and 1"})
	}
	return errs
}

type bulkApplyRequest struct {
	Threshold *float64 `json:"threshold"`
	Mode      string   `json:"mode"`
}

func (r bulkApplyRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Threshold != nil && (*r.Threshold < 0 || *r.Threshold > 1) {
		errs = append(errs, FieldError{Field: "threshold", Message: "must be between 0 and 1"})
	}
	if r.Mode != "" && !domain.BulkMode(r.Mode).IsValid() {
		errs = append(errs, FieldError{Field: "mode", Message: "must be best_effort or all_or_nothing"})
	}
	return errs
}

func (h *MappingHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	ref, appErr := periodFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	minConfidence := 0.0
	if raw := r.URL.Query().Get("min_confidence"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 1 {
			RespondValidationError(w, []FieldError{{Field: "min_confidence", Message: "must be a number between 0 and 1"}})
			return
		}
		minConfidence = v
	}

	batch, err := h.mappings.GenerateSuggestions(r.Context(), ref)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to generate suggestions", "error", err, "period", ref.String())
		RespondDomainError(w, err)
		return
	}

	filtered := suggest.Filter(batch.Suggestions, minConfidence)
	dtos := make([]suggestionDTO, len(filtered))
	for i, s := range filtered {
		dtos[i] = toSuggestionDTO(s)
	}

	RespondSuccess(w, http.StatusOK, suggestionsDTO{
		PeriodID:    batch.Period.ID,
		PeriodName:  batch.Period.Name,
		Count:       len(dtos),
		Suggestions: dtos,
	})
}

func (h *MappingHandler) Apply(w http.ResponseWriter, r *http.Request) {
	ref, appErr := periodFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req applyMappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	m, err := h.mappings.ApplyMapping(r.Context(), service.ApplyRequest{
		LedgerName:     strings.TrimSpace(req.LedgerName),
		Period:         ref,
		TaxonomyItemID: uuid.MustParse(req.TaxonomyItemID),
		Confidence:     req.Confidence,
		AppliedBy:      subjectFromRequest(r),
	})
	if err != nil {
		log := logging.FromContext(r.Context())
		if errors.Is(err, domain.ErrDuplicateMapping) {
			log.Info("mapping already exists", "ledger_name", req.LedgerName, "period", ref.String())
		} else {
			log.Error("failed to apply mapping", "error", err)
		}
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toMappingDTO(m))
}

func (h *MappingHandler) BulkApply(w http.ResponseWriter, r *http.Request) {
	ref, appErr := periodFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req bulkApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	res, err := h.mappings.BulkApplyMappings(r.Context(), service.BulkRequest{
		Period:    ref,
		Threshold: req.Threshold,
		Mode:      domain.BulkMode(req.Mode),
		AppliedBy: subjectFromRequest(r),
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to bulk apply mappings", "error", err, "period", ref.String())
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toBulkResultDTO(res))
}

func (h *MappingHandler) List(w http.ResponseWriter, r *http.Request) {
	ref, appErr := periodFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	mappings, err := h.mappings.ListMappings(r.Context(), ref)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list mappings", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]mappingDTO, len(mappings))
	for i := range mappings {
		dtos[i] = toMappingDTO(&mappings[i])
	}

	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *MappingHandler) PeriodStatistics(w http.ResponseWriter, r *http.Request) {
	ref, appErr := periodFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	stats, err := h.mappings.GetMappingStatistics(r.Context(), ref)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to compute mapping statistics", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toStatisticsDTO(stats))
}

func (h *MappingHandler) GlobalStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.mappings.GetGlobalMappingStatistics(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to compute mapping statistics", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toStatisticsDTO(stats))
}
