package matching

import (
	"strings"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/domain"
)

// LIABILIT covers both LIABILITY and LIABILITIES section headings.
var sectionKeywords = map[domain.AccountType][]string{
	domain.AccountTypeAssets:      {"ASSET"},
	domain.AccountTypeLiabilities: {"LIABILIT"},
	domain.AccountTypeEquity:      {"EQUITY"},
	domain.AccountTypeRevenue:     {"INCOME", "REVENUE"},
	domain.AccountTypeExpenses:    {"EXPENSE", "EXPENDITURE"},
}

// TypeCompatible reports whether a ledger account type belongs under a report
// section. OTHER and malformed types are compatible with nothing.
func TypeCompatible(t domain.AccountType, reportSection string) bool {
	section := normalize(reportSection)
	for _, kw := range sectionKeywords[t] {
		if strings.Contains(section, kw) {
			return true
		}
	}
	return false
}
