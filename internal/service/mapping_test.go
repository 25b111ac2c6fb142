package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/config"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/domain"
)

type fakePeriods struct {
	periods []domain.FinancialPeriod
}

func (f *fakePeriods) GetByID(_ context.Context, id uuid.UUID) (*domain.FinancialPeriod, error) {
	for _, p := range f.periods {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrPeriodNotFound
}

func (f *fakePeriods) GetLatest(_ context.Context) (*domain.FinancialPeriod, error) {
	if len(f.periods) == 0 {
		return nil, domain.ErrNoPeriods
	}
	p := f.periods[len(f.periods)-1]
	return &p, nil
}

type fakeLedger struct {
	entries []domain.LedgerEntry
}

func (f *fakeLedger) GetByPeriodID(_ context.Context, periodID uuid.UUID) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	for _, e := range f.entries {
		if e.PeriodID == periodID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedger) GetFirstByName(_ context.Context, periodID uuid.UUID, ledgerName string) (*domain.LedgerEntry, error) {
	for _, e := range f.entries {
		if e.PeriodID == periodID && e.LedgerName == ledgerName {
			return &e, nil
		}
	}
	return nil, domain.ErrLedgerEntryNotFound
}

func (f *fakeLedger) names() domain.MappedSet {
	set := domain.NewMappedSet()
	if f == nil {
		return set
	}
	for _, e := range f.entries {
		set.Add(e.PeriodID, e.LedgerName)
	}
	return set
}

func (f *fakeLedger) CountDistinctNames(_ context.Context, periodID *uuid.UUID) (int, error) {
	seen := domain.NewMappedSet()
	for _, e := range f.entries {
		if periodID == nil || e.PeriodID == *periodID {
			seen.Add(e.PeriodID, e.LedgerName)
		}
	}
	return len(seen), nil
}

type fakeTaxonomy struct {
	items []domain.TaxonomyItem
}

func (f *fakeTaxonomy) List(_ context.Context) ([]domain.TaxonomyItem, error) {
	return f.items, nil
}

func (f *fakeTaxonomy) GetByID(_ context.Context, id uuid.UUID) (*domain.TaxonomyItem, error) {
	for _, it := range f.items {
		if it.ID == id {
			return &it, nil
		}
	}
	return nil, domain.ErrTaxonomyItemNotFound
}

type fakeMappings struct {
	ledger    *fakeLedger
	items     map[uuid.UUID]bool
	periods   map[uuid.UUID]bool
	created   []domain.Mapping
	createErr error
}

func newFakeMappings(items []domain.TaxonomyItem, periods []domain.FinancialPeriod) *fakeMappings {
	f := &fakeMappings{items: map[uuid.UUID]bool{}, periods: map[uuid.UUID]bool{}}
	for _, it := range items {
		f.items[it.ID] = true
	}
	for _, p := range periods {
		f.periods[p.ID] = true
	}
	return f
}

func (f *fakeMappings) Create(_ context.Context, m *domain.Mapping) error {
	if f.createErr != nil {
		return f.createErr
	}
	if !f.items[m.TaxonomyItemID] {
		return domain.ErrTaxonomyItemNotFound
	}
	if !f.periods[m.PeriodID] {
		return domain.ErrPeriodNotFound
	}
	for _, c := range f.created {
		if c.PeriodID == m.PeriodID && c.LedgerName == m.LedgerName {
			return domain.ErrDuplicateMapping
		}
	}
	f.created = append(f.created, *m)
	return nil
}

func (f *fakeMappings) CreateTx(ctx context.Context, _ *sql.Tx, m *domain.Mapping) error {
	return f.Create(ctx, m)
}

func (f *fakeMappings) GetByPeriodID(_ context.Context, periodID uuid.UUID) ([]domain.Mapping, error) {
	out := []domain.Mapping{}
	for _, m := range f.created {
		if m.PeriodID == periodID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMappings) MappedSet(_ context.Context, periodID uuid.UUID) (domain.MappedSet, error) {
	m, _ := f.GetByPeriodID(context.Background(), periodID)
	return domain.NewMappedSet(m...), nil
}

func (f *fakeMappings) CountDistinctNames(_ context.Context, periodID *uuid.UUID) (int, error) {
	entries := f.ledger.names()
	seen := domain.NewMappedSet()
	for _, m := range f.created {
		if !entries.Has(m.PeriodID, m.LedgerName) {
			continue
		}
		if periodID == nil || m.PeriodID == *periodID {
			seen.Add(m.PeriodID, m.LedgerName)
		}
	}
	return len(seen), nil
}

type fixture struct {
	svc      *MappingService
	period   domain.FinancialPeriod
	items    []domain.TaxonomyItem
	ledger   *fakeLedger
	mappings *fakeMappings
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	period := domain.FinancialPeriod{ID: uuid.New(), Name: "FY2024"}
	upload := uuid.New()
	sub := "Current Liabilities"
	items := []domain.TaxonomyItem{
		{ID: uuid.New(), ItemName: "Borrowings", ReportSection: "Current Liabilities", ReportSubSection: &sub, ReportType: domain.ReportTypeBalanceSheet, DisplayOrder: 1},
		{ID: uuid.New(), ItemName: "Cash and Cash Equivalents", ReportSection: "Current Assets", ReportType: domain.ReportTypeBalanceSheet, DisplayOrder: 2},
	}
	ledger := &fakeLedger{entries: []domain.LedgerEntry{
		{ID: uuid.New(), LedgerName: "Bank Overdraft", AccountType: domain.AccountTypeLiabilities, AccountCategory: "Current Liabilities", SourceConfidence: 0.9, PeriodID: period.ID, UploadID: upload, ClosingBalance: decimal.NewFromInt(-5000)},
		{ID: uuid.New(), LedgerName: "Cash in Hand", AccountType: domain.AccountTypeAssets, AccountCategory: "Current Assets", SourceConfidence: 0.95, PeriodID: period.ID, UploadID: upload},
		{ID: uuid.New(), LedgerName: "", AccountType: domain.AccountTypeAssets, PeriodID: period.ID, UploadID: upload},
	}}
	mappings := newFakeMappings(items, []domain.FinancialPeriod{period})
	mappings.ledger = ledger
	cfg := &config.Config{BulkApplyThreshold: 0.85, BulkApplyMode: domain.BulkModeBestEffort}

	svc := NewMappingService(&fakePeriods{periods: []domain.FinancialPeriod{period}}, ledger, &fakeTaxonomy{items: items}, mappings, nil, nil, cfg)
	return &fixture{svc: svc, period: period, items: items, ledger: ledger, mappings: mappings}
}

func TestGenerateSuggestions_LatestPeriod(t *testing.T) {
	f := newFixture(t)

	batch, err := f.svc.GenerateSuggestions(context.Background(), domain.LatestPeriodRef())
	require.NoError(t, err)

	assert.Equal(t, f.period.ID, batch.Period.ID)
	require.Len(t, batch.Suggestions, 2)
	for _, sg := range batch.Suggestions {
		assert.Equal(t, f.period.ID, sg.PeriodID)
		assert.NotEmpty(t, sg.LedgerName)
	}
	assert.GreaterOrEqual(t, batch.Suggestions[0].Confidence, batch.Suggestions[1].Confidence)
}

func TestGenerateSuggestions_SkipsMapped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ApplyMapping(ctx, ApplyRequest{
		LedgerName:     "Bank Overdraft",
		Period:         domain.PeriodRefFor(f.period.ID),
		TaxonomyItemID: f.items[0].ID,
	})
	require.NoError(t, err)

	batch, err := f.svc.GenerateSuggestions(ctx, domain.PeriodRefFor(f.period.ID))
	require.NoError(t, err)
	require.Len(t, batch.Suggestions, 1)
	assert.Equal(t, "Cash in Hand", batch.Suggestions[0].LedgerName)
}

func TestGenerateSuggestions_UnknownPeriod(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GenerateSuggestions(context.Background(), domain.PeriodRefFor(uuid.New()))
	assert.ErrorIs(t, err, domain.ErrPeriodNotFound)
}

func TestGenerateSuggestions_NoPeriods(t *testing.T) {
	svc := NewMappingService(&fakePeriods{}, &fakeLedger{}, &fakeTaxonomy{}, newFakeMappings(nil, nil), nil, nil, &config.Config{})

	_, err := svc.GenerateSuggestions(context.Background(), domain.LatestPeriodRef())
	assert.ErrorIs(t, err, domain.ErrNoPeriods)
}

func TestApplyMapping(t *testing.T) {
	confidence := 0.91
	subject := "reviewer-1"

	tests := []struct {
		name     string
		req      func(f *fixture) ApplyRequest
		wantErr  error
		wantType domain.MappingType
	}{
		{
			name: "manual without confidence",
			req: func(f *fixture) ApplyRequest {
				return ApplyRequest{LedgerName: "Cash in Hand", Period: domain.PeriodRefFor(f.period.ID), TaxonomyItemID: f.items[1].ID}
			},
			wantType: domain.MappingTypeManual,
		},
		{
			name: "ai suggested with confidence",
			req: func(f *fixture) ApplyRequest {
				return ApplyRequest{LedgerName: "Bank Overdraft", Period: domain.LatestPeriodRef(), TaxonomyItemID: f.items[0].ID, Confidence: &confidence, AppliedBy: &subject}
			},
			wantType: domain.MappingTypeAISuggested,
		},
		{
			name: "empty ledger name",
			req: func(f *fixture) ApplyRequest {
				return ApplyRequest{LedgerName: "  ", Period: domain.LatestPeriodRef(), TaxonomyItemID: f.items[0].ID}
			},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "confidence out of range",
			req: func(f *fixture) ApplyRequest {
				bad := 1.2
				return ApplyRequest{LedgerName: "Cash in Hand", Period: domain.LatestPeriodRef(), TaxonomyItemID: f.items[1].ID, Confidence: &bad}
			},
			wantErr: domain.ErrInvalidConfidence,
		},
		{
			name: "unknown taxonomy item",
			req: func(f *fixture) ApplyRequest {
				return ApplyRequest{LedgerName: "Cash in Hand", Period: domain.LatestPeriodRef(), TaxonomyItemID: uuid.New()}
			},
			wantErr: domain.ErrTaxonomyItemNotFound,
		},
		{
			name: "ledger name not in period",
			req: func(f *fixture) ApplyRequest {
				return ApplyRequest{LedgerName: "Petty Cash", Period: domain.LatestPeriodRef(), TaxonomyItemID: f.items[1].ID}
			},
			wantErr: domain.ErrLedgerEntryNotFound,
		},
		{
			name: "unknown period",
			req: func(f *fixture) ApplyRequest {
				return ApplyRequest{LedgerName: "Cash in Hand", Period: domain.PeriodRefFor(uuid.New()), TaxonomyItemID: f.items[1].ID}
			},
			wantErr: domain.ErrPeriodNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			m, err := f.svc.ApplyMapping(context.Background(), tt.req(f))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.mappings.created)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, m.MappingType)
			assert.Equal(t, f.period.ID, m.PeriodID)
			require.NotNil(t, m.UploadID)
			assert.Equal(t, f.ledger.entries[0].UploadID, *m.UploadID)
			assert.Len(t, f.mappings.created, 1)
		})
	}
}

func TestApplyMapping_Duplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := ApplyRequest{LedgerName: "Cash in Hand", Period: domain.LatestPeriodRef(), TaxonomyItemID: f.items[1].ID}

	_, err := f.svc.ApplyMapping(ctx, req)
	require.NoError(t, err)

	_, err = f.svc.ApplyMapping(ctx, req)
	assert.ErrorIs(t, err, domain.ErrDuplicateMapping)
	assert.Len(t, f.mappings.created, 1)
}

func TestApplySuggestion(t *testing.T) {
	f := newFixture(t)
	sg := domain.Suggestion{
		LedgerName:              "Bank Overdraft",
		PeriodID:                f.period.ID,
		SuggestedTaxonomyItemID: f.items[0].ID,
		Confidence:              0.92,
	}

	m, err := f.svc.ApplySuggestion(context.Background(), sg, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.MappingTypeAISuggested, m.MappingType)
	require.NotNil(t, m.ConfidenceScore)
	assert.Equal(t, 0.92, *m.ConfidenceScore)
}

func suggestionsWith(periodID, itemID uuid.UUID, confidences ...float64) []domain.Suggestion {
	out := make([]domain.Suggestion, 0, len(confidences))
	for i, c := range confidences {
		out = append(out, domain.Suggestion{
			LedgerName:              "Ledger " + string(rune('A'+i)),
			PeriodID:                periodID,
			SuggestedTaxonomyItemID: itemID,
			Confidence:              c,
		})
	}
	return out
}

func TestBulkApply_Threshold(t *testing.T) {
	f := newFixture(t)
	suggestions := suggestionsWith(f.period.ID, f.items[0].ID, 0.9, 0.87, 0.8, 0.6, 0.5)

	res, err := f.svc.BulkApply(context.Background(), f.period.ID, suggestions, BulkOptions{Threshold: 0.85})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, 3, res.SkippedBelowThreshold)
	assert.Empty(t, res.Failed)
	assert.Equal(t, domain.BulkModeBestEffort, res.Mode)
	assert.Len(t, f.mappings.created, 2)
}

func TestBulkApply_ThresholdBoundaries(t *testing.T) {
	tests := []struct {
		name        string
		threshold   float64
		wantApplied int
		wantErr     error
	}{
		{"zero applies everything", 0, 5, nil},
		{"one applies only perfect", 1, 1, nil},
		{"equal to confidence is kept", 0.8, 3, nil},
		{"negative", -0.01, 0, domain.ErrInvalidThreshold},
		{"above one", 1.01, 0, domain.ErrInvalidThreshold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			suggestions := suggestionsWith(f.period.ID, f.items[0].ID, 1.0, 0.9, 0.8, 0.6, 0.5)

			res, err := f.svc.BulkApply(context.Background(), f.period.ID, suggestions, BulkOptions{Threshold: tt.threshold})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.mappings.created)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantApplied, res.Applied)
			assert.Equal(t, 5-tt.wantApplied, res.SkippedBelowThreshold)
		})
	}
}

func TestBulkApply_BestEffortReportsFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mappings.created = append(f.mappings.created, domain.Mapping{ID: uuid.New(), PeriodID: f.period.ID, LedgerName: "Ledger B", TaxonomyItemID: f.items[0].ID})

	suggestions := suggestionsWith(f.period.ID, f.items[0].ID, 0.95, 0.9, 0.88)
	suggestions[2].SuggestedTaxonomyItemID = uuid.New()

	res, err := f.svc.BulkApply(ctx, f.period.ID, suggestions, BulkOptions{Threshold: 0.85})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, []domain.BulkFailure{
		{LedgerName: "Ledger B", Reason: ReasonDuplicateMapping},
		{LedgerName: "Ledger C", Reason: ReasonTaxonomyItemNotFound},
	}, res.Failed)
	assert.False(t, res.RolledBack)
}

func TestBulkApply_UnexpectedErrorAborts(t *testing.T) {
	f := newFixture(t)
	f.mappings.createErr = errors.New("connection reset")

	_, err := f.svc.BulkApply(context.Background(), f.period.ID, suggestionsWith(f.period.ID, f.items[0].ID, 0.9), BulkOptions{Threshold: 0.85})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestBulkApply_InvalidMode(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.BulkApply(context.Background(), f.period.ID, nil, BulkOptions{Threshold: 0.5, Mode: "eventually"})
	assert.ErrorIs(t, err, domain.ErrInvalidBulkMode)
}

func TestBulkApplyMappings_UsesConfigDefaults(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.BulkApplyMappings(context.Background(), BulkRequest{Period: domain.LatestPeriodRef()})
	require.NoError(t, err)

	assert.Equal(t, 0.85, res.Threshold)
	assert.Equal(t, domain.BulkModeBestEffort, res.Mode)
	assert.Equal(t, f.period.ID, res.PeriodID)
	assert.Equal(t, res.Applied, len(f.mappings.created))
	assert.Equal(t, 2, res.Applied+res.SkippedBelowThreshold+len(res.Failed))
}

func TestBulkApplyMappings_RequestOverrides(t *testing.T) {
	f := newFixture(t)
	zero := 0.0

	res, err := f.svc.BulkApplyMappings(context.Background(), BulkRequest{Period: domain.LatestPeriodRef(), Threshold: &zero})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Applied)
	assert.Zero(t, res.SkippedBelowThreshold)

	bad := 2.0
	_, err = f.svc.BulkApplyMappings(context.Background(), BulkRequest{Period: domain.LatestPeriodRef(), Threshold: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidThreshold)
}

func TestGetMappingStatistics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stats, err := f.svc.GetMappingStatistics(ctx, domain.LatestPeriodRef())
	require.NoError(t, err)
	assert.Equal(t, domain.StatsScopeLatest, stats.Scope)
	assert.Equal(t, 3, stats.TotalAccounts)
	assert.Zero(t, stats.MappedAccounts)
	assert.True(t, stats.CompletionPercentage.IsZero())

	_, err = f.svc.ApplyMapping(ctx, ApplyRequest{LedgerName: "Cash in Hand", Period: domain.LatestPeriodRef(), TaxonomyItemID: f.items[1].ID})
	require.NoError(t, err)

	stats, err = f.svc.GetMappingStatistics(ctx, domain.PeriodRefFor(f.period.ID))
	require.NoError(t, err)
	assert.Equal(t, domain.StatsScopePeriod, stats.Scope)
	assert.Equal(t, 1, stats.MappedAccounts)
	assert.Equal(t, "33.33", stats.CompletionPercentage.StringFixed(2))
}

func TestGetGlobalMappingStatistics_Empty(t *testing.T) {
	svc := NewMappingService(&fakePeriods{}, &fakeLedger{}, &fakeTaxonomy{}, newFakeMappings(nil, nil), nil, nil, &config.Config{})

	stats, err := svc.GetGlobalMappingStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatsScopeAll, stats.Scope)
	assert.Nil(t, stats.PeriodID)
	assert.Zero(t, stats.TotalAccounts)
	assert.True(t, stats.CompletionPercentage.IsZero())
}

func TestBulkApply_RecordsSourceUpload(t *testing.T) {
	f := newFixture(t)
	batch, err := f.svc.GenerateSuggestions(context.Background(), domain.LatestPeriodRef())
	require.NoError(t, err)
	require.NotEmpty(t, batch.Suggestions)

	res, err := f.svc.BulkApply(context.Background(), f.period.ID, batch.Suggestions, BulkOptions{Threshold: 0})
	require.NoError(t, err)
	require.Equal(t, len(batch.Suggestions), res.Applied)
	for _, m := range f.mappings.created {
		require.NotNil(t, m.UploadID)
		assert.Equal(t, f.ledger.entries[0].UploadID, *m.UploadID)
	}
}

func TestGetMappingStatistics_IgnoresMappingsWithoutEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := range 4 {
		f.mappings.created = append(f.mappings.created, domain.Mapping{
			ID:             uuid.New(),
			PeriodID:       f.period.ID,
			LedgerName:     "Ghost " + string(rune('0'+i)),
			TaxonomyItemID: f.items[0].ID,
		})
	}
	_, err := f.svc.ApplyMapping(ctx, ApplyRequest{LedgerName: "Ghost 9", Period: domain.LatestPeriodRef(), TaxonomyItemID: f.items[0].ID})
	assert.ErrorIs(t, err, domain.ErrLedgerEntryNotFound)

	stats, err := f.svc.GetMappingStatistics(ctx, domain.LatestPeriodRef())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalAccounts)
	assert.Zero(t, stats.MappedAccounts)
	assert.True(t, stats.CompletionPercentage.IsZero())

	_, err = f.svc.ApplyMapping(ctx, ApplyRequest{LedgerName: "Cash in Hand", Period: domain.LatestPeriodRef(), TaxonomyItemID: f.items[1].ID})
	require.NoError(t, err)

	stats, err = f.svc.GetMappingStatistics(ctx, domain.LatestPeriodRef())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MappedAccounts)
	assert.LessOrEqual(t, stats.CompletionPercentage.InexactFloat64(), 100.0)

	global, err := f.svc.GetGlobalMappingStatistics(ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, global.MappedAccounts, global.TotalAccounts)
}
