package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeAssets      AccountType = "ASSETS"
	AccountTypeLiabilities AccountType = "LIABILITIES"
	AccountTypeEquity      AccountType = "EQUITY"
	AccountTypeRevenue     AccountType = "REVENUE"
	AccountTypeExpenses    AccountType = "EXPENSES"
	AccountTypeOther       AccountType = "OTHER"
)

func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAssets, AccountTypeLiabilities, AccountTypeEquity,
		AccountTypeRevenue, AccountTypeExpenses, AccountTypeOther:
		return true
	}
	return false
}

type LedgerEntry struct {
	ID               uuid.UUID
	LedgerName       string
	AccountType      AccountType
	AccountCategory  string
	ClosingBalance   decimal.Decimal
	SourceConfidence float64
	PeriodID         uuid.UUID
	UploadID         uuid.UUID
	CreatedAt        time.Time
}

// Malformed entries come out of noisy extraction and are skipped, not rejected.
func (e LedgerEntry) IsMalformed() bool {
	return e.LedgerName == "" || !e.AccountType.IsValid()
}
