package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/domain"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/logging"
)

type taxonomyService interface {
	ListTaxonomy(ctx context.Context) ([]domain.TaxonomyItem, error)
}

type TaxonomyHandler struct {
	taxonomy taxonomyService
}

func NewTaxonomyHandler(taxonomy taxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomy: taxonomy}
}

type taxonomyItemDTO struct {
	ID               uuid.UUID `json:"id"`
	ItemName         string    `json:"item_name"`
	ReportSection    string    `json:"report_section"`
	ReportSubSection *string   `json:"report_sub_section"`
	ReportType       string    `json:"report_type"`
	IsCreditPositive bool      `json:"is_credit_positive"`
	DisplayOrder     int       `json:"display_order"`
}

func (h *TaxonomyHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.taxonomy.ListTaxonomy(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list taxonomy", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]taxonomyItemDTO, len(items))
	for i, it := range items {
		dtos[i] = taxonomyItemDTO{
			ID:               it.ID,
			ItemName:         it.ItemName,
			ReportSection:    it.ReportSection,
			ReportSubSection: it.ReportSubSection,
			ReportType:       string(it.ReportType),
			IsCreditPositive: it.IsCreditPositive,
			DisplayOrder:     it.DisplayOrder,
		}
	}

	RespondSuccess(w, http.StatusOK, dtos)
}
