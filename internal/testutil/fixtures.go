package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/domain"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/taxonomy"
)

// SeedPeriod inserts a period whose created_at is offset from now, so tests
// can control which one counts as the latest.
func SeedPeriod(t *testing.T, db *sql.DB, name string, createdOffset time.Duration) *domain.FinancialPeriod {
	t.Helper()

	p := &domain.FinancialPeriod{
		ID:        uuid.New(),
		Name:      name,
		StartsOn:  time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		EndsOn:    time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Now().UTC().Add(createdOffset),
	}
	_, err := db.Exec(
		`INSERT INTO financial_periods (id, name, starts_on, ends_on, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Name, p.StartsOn, p.EndsOn, p.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed period %s: %v", name, err)
	}
	return p
}

func SeedUpload(t *testing.T, db *sql.DB, periodID uuid.UUID) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(
		`INSERT INTO uploads (id, period_id, file_name) VALUES ($1, $2, $3)`,
		id, periodID, "trial_balance.xlsx",
	)
	if err != nil {
		t.Fatalf("seed upload: %v", err)
	}
	return id
}

type EntrySeed struct {
	Name       string
	Type       domain.AccountType
	Category   string
	Confidence float64
}

// SeedLedgerEntries inserts entries under a fresh upload. An empty Type is
// stored as NULL.
func SeedLedgerEntries(t *testing.T, db *sql.DB, periodID uuid.UUID, seeds ...EntrySeed) []domain.LedgerEntry {
	t.Helper()

	uploadID := SeedUpload(t, db, periodID)
	base := time.Now().UTC()
	entries := make([]domain.LedgerEntry, 0, len(seeds))
	for i, s := range seeds {
		e := domain.LedgerEntry{
			ID:               uuid.New(),
			LedgerName:       s.Name,
			AccountType:      s.Type,
			AccountCategory:  s.Category,
			ClosingBalance:   decimal.NewFromInt(int64(1000 * (i + 1))),
			SourceConfidence: s.Confidence,
			PeriodID:         periodID,
			UploadID:         uploadID,
			CreatedAt:        base.Add(time.Duration(i) * time.Millisecond),
		}
		var accountType, category any
		if s.Type != "" {
			accountType = string(s.Type)
		}
		if s.Category != "" {
			category = s.Category
		}
		_, err := db.Exec(
			`INSERT INTO ledger_entries (id, ledger_name, account_type, account_category, closing_balance,
				source_confidence, period_id, upload_id, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.ID, e.LedgerName, accountType, category, e.ClosingBalance,
			e.SourceConfidence, e.PeriodID, e.UploadID, e.CreatedAt,
		)
		if err != nil {
			t.Fatalf("seed ledger entry %s: %v", s.Name, err)
		}
		entries = append(entries, e)
	}
	return entries
}

// SeedTaxonomy loads the bundled taxonomy and returns the items as stored.
func SeedTaxonomy(t *testing.T, db *sql.DB) []domain.TaxonomyItem {
	t.Helper()

	items, err := taxonomy.Default()
	if err != nil {
		t.Fatalf("load default taxonomy: %v", err)
	}
	for _, it := range items {
		_, err := db.Exec(
			`INSERT INTO taxonomy_items (id, item_name, report_section, report_sub_section, report_type,
				is_credit_positive, display_order)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, it.ItemName, it.ReportSection, it.ReportSubSection, it.ReportType,
			it.IsCreditPositive, it.DisplayOrder,
		)
		if err != nil {
			t.Fatalf("seed taxonomy item %s: %v", it.ItemName, err)
		}
	}
	return items
}

func FindTaxonomyItem(t *testing.T, items []domain.TaxonomyItem, name string) domain.TaxonomyItem {
	t.Helper()

	for _, it := range items {
		if it.ItemName == name {
			return it
		}
	}
	t.Fatalf("taxonomy item %q not found", name)
	return domain.TaxonomyItem{}
}

func SeedMapping(t *testing.T, db *sql.DB, periodID, itemID uuid.UUID, ledgerName string) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO mappings (id, ledger_name, taxonomy_item_id, period_id, mapping_type)
		 VALUES ($1, $2, $3, $4, 'manual')`,
		uuid.New(), ledgerName, itemID, periodID,
	)
	if err != nil {
		t.Fatalf("seed mapping %s: %v", ledgerName, err)
	}
}

// SeedEntryMapping maps an existing ledger entry, recording the upload it came from.
func SeedEntryMapping(t *testing.T, db *sql.DB, entry domain.LedgerEntry, itemID uuid.UUID) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO mappings (id, ledger_name, taxonomy_item_id, period_id, upload_id, mapping_type)
		 VALUES ($1, $2, $3, $4, $5, 'manual')`,
		uuid.New(), entry.LedgerName, itemID, entry.PeriodID, entry.UploadID,
	)
	if err != nil {
		t.Fatalf("seed mapping %s: %v", entry.LedgerName, err)
	}
}

func CountMappings(t *testing.T, db *sql.DB, periodID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM mappings WHERE period_id = $1`, periodID).Scan(&count)
	if err != nil {
		t.Fatalf("count mappings for period %s: %v", periodID, err)
	}
	return count
}
