package taxonomy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/domain"
)

func TestDefault(t *testing.T) {
	items, err := Default()
	require.NoError(t, err)
	require.NotEmpty(t, items)

	for i := 1; i < len(items); i++ {
		assert.LessOrEqual(t, items[i-1].DisplayOrder, items[i].DisplayOrder)
	}

	byName := make(map[string]domain.TaxonomyItem, len(items))
	for _, it := range items {
		byName[it.ItemName] = it
	}
	require.Contains(t, byName, "Borrowings")
	assert.Equal(t, "Current Liabilities", byName["Borrowings"].ReportSection)
	require.NotNil(t, byName["Borrowings"].ReportSubSection)
	assert.Equal(t, "Short-term Borrowings", *byName["Borrowings"].ReportSubSection)
	assert.Equal(t, domain.ReportTypeProfitAndLoss, byName["Finance Costs"].ReportType)
	assert.Contains(t, byName, "Property, Plant and Equipment")
}

func TestParse_StableIDs(t *testing.T) {
	first, err := Default()
	require.NoError(t, err)
	second, err := Default()
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, StableID(first[i].Key()), first[i].ID)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
		wantMsg string
	}{
		{
			name: "duplicate natural key",
			doc: `
items:
  - {item_name: Borrowings, report_section: Current Liabilities, report_type: BalanceSheet}
  - {item_name: Borrowings, report_section: Current Liabilities, report_type: BalanceSheet, display_order: 4}
`,
			wantErr: domain.ErrDuplicateTaxonomyItem,
		},
		{
			name: "missing fields",
			doc: `
items:
  - {report_type: BalanceSheet}
`,
			wantMsg: "item_name is required",
		},
		{
			name: "unknown report type",
			doc: `
items:
  - {item_name: Sales, report_section: Revenue, report_type: CashFlow}
`,
			wantMsg: "report_type",
		},
		{
			name: "unknown field",
			doc: `
items:
  - {item_name: Sales, report_section: Revenue, report_type: ProfitAndLoss, colour: red}
`,
			wantMsg: "colour",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.doc))
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			if tc.wantMsg != "" {
				assert.Contains(t, err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestParse_SameNameDifferentSection(t *testing.T) {
	items, err := Parse(strings.NewReader(`
items:
  - {item_name: Provisions, report_section: Current Liabilities, report_type: BalanceSheet, display_order: 2}
  - {item_name: Provisions, report_section: Non-current Liabilities, report_type: BalanceSheet, display_order: 1}
`))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Non-current Liabilities", items[0].ReportSection)
	assert.NotEqual(t, items[0].ID, items[1].ID)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
items:
  - {item_name: Trade Payables, report_section: Current Liabilities, report_type: BalanceSheet, is_credit_positive: true, display_order: 7}
`), 0o600))

	items, err := Load(path)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].IsCreditPositive)
	assert.Equal(t, 7, items[0].DisplayOrder)

	defaults, err := Load("")
	require.NoError(t, err)
	assert.Greater(t, len(defaults), 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
