package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReportType string

const (
	ReportTypeBalanceSheet  ReportType = "BalanceSheet"
	ReportTypeProfitAndLoss ReportType = "ProfitAndLoss"
)

func (t ReportType) IsValid() bool {
	return t == ReportTypeBalanceSheet || t == ReportTypeProfitAndLoss
}

type TaxonomyItem struct {
	ID               uuid.UUID
	ItemName         string
	ReportSection    string
	ReportSubSection *string
	ReportType       ReportType
	IsCreditPositive bool
	DisplayOrder     int
	CreatedAt        time.Time
}

// TaxonomyKey is the natural key of a taxonomy item.
type TaxonomyKey struct {
	ItemName      string
	ReportSection string
	ReportType    ReportType
}

func (t TaxonomyItem) Key() TaxonomyKey {
	return TaxonomyKey{ItemName: t.ItemName, ReportSection: t.ReportSection, ReportType: t.ReportType}
}
