package domain

import (
	"time"

	"github.com/google/uuid"
)

type MappingType string

const (
	MappingTypeAISuggested MappingType = "ai_suggested"
	MappingTypeManual      MappingType = "manual"
)

type Mapping struct {
	ID              uuid.UUID
	LedgerName      string
	TaxonomyItemID  uuid.UUID
	PeriodID        uuid.UUID
	UploadID        *uuid.UUID
	MappingType     MappingType
	ConfidenceScore *float64
	AppliedBy       *string
	CreatedAt       time.Time
}

type MappingKey struct {
	PeriodID   uuid.UUID
	LedgerName string
}

// MappedSet holds the (period, ledger name) pairs that already carry a mapping.
type MappedSet map[MappingKey]struct{}

func NewMappedSet(mappings ...Mapping) MappedSet {
	s := make(MappedSet, len(mappings))
	for _, m := range mappings {
		s.Add(m.PeriodID, m.LedgerName)
	}
	return s
}

func (s MappedSet) Add(periodID uuid.UUID, ledgerName string) {
	s[MappingKey{PeriodID: periodID, LedgerName: ledgerName}] = struct{}{}
}

func (s MappedSet) Has(periodID uuid.UUID, ledgerName string) bool {
	_, ok := s[MappingKey{PeriodID: periodID, LedgerName: ledgerName}]
	return ok
}

type BulkMode string

const (
	BulkModeBestEffort   BulkMode = "best_effort"
	BulkModeAllOrNothing BulkMode = "all_or_nothing"
)

func (m BulkMode) IsValid() bool {
	return m == BulkModeBestEffort || m == BulkModeAllOrNothing
}

type BulkFailure struct {
	LedgerName string
	Reason     string
}

type BulkResult struct {
	PeriodID              uuid.UUID
	Mode                  BulkMode
	Threshold             float64
	Applied               int
	SkippedBelowThreshold int
	Failed                []BulkFailure
	RolledBack            bool
}
