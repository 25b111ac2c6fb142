package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type StatsScope string

const (
	StatsScopePeriod StatsScope = "period"
	StatsScopeLatest StatsScope = "latest"
	StatsScopeAll    StatsScope = "all"
)

type MappingStatistics struct {
	Scope                StatsScope
	PeriodID             *uuid.UUID
	TotalAccounts        int
	MappedAccounts       int
	CompletionPercentage decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// CompletionPercentage is mapped/total*100 rounded to two places, zero when total is zero.
func CompletionPercentage(mapped, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(mapped)).
		Mul(hundred).
		DivRound(decimal.NewFromInt(int64(total)), 2)
}
