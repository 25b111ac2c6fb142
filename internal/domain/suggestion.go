package domain

import "github.com/google/uuid"

type Suggestion struct {
	LedgerName              string
	PeriodID                uuid.UUID
	UploadID                uuid.UUID
	SuggestedTaxonomyItemID uuid.UUID
	SuggestedItemName       string
	Confidence              float64
	MatchScore              float64
	Reasoning               string
	AccountType             AccountType
	AccountCategory         string
	SourceConfidence        float64
}
