package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type FinancialPeriod struct {
	ID        uuid.UUID
	Name      string
	StartsOn  time.Time
	EndsOn    time.Time
	CreatedAt time.Time
}

const LatestPeriod = "latest"

// PeriodRef names either an explicit period or the most recently created one.
type PeriodRef struct {
	ID     uuid.UUID
	Latest bool
}

func LatestPeriodRef() PeriodRef { return PeriodRef{Latest: true} }

func PeriodRefFor(id uuid.UUID) PeriodRef { return PeriodRef{ID: id} }

func ParsePeriodRef(s string) (PeriodRef, error) {
	if strings.EqualFold(strings.TrimSpace(s), LatestPeriod) {
		return LatestPeriodRef(), nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return PeriodRef{}, fmt.Errorf("ParsePeriodRef: %q: %w", s, ErrInvalidRequest)
	}
	return PeriodRefFor(id), nil
}

func (r PeriodRef) String() string {
	if r.Latest {
		return LatestPeriod
	}
	return r.ID.String()
}
