package matching

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordMatcher_Overlap(t *testing.T) {
	tests := []struct {
		name        string
		ledgerName  string
		itemName    string
		wantDirect  int
		wantSynonym int
	}{
		{
			name:        "shared token counted per occurrence",
			ledgerName:  "Cash in Hand",
			itemName:    "Cash and Cash Equivalents",
			wantDirect:  2,
			wantSynonym: 1,
		},
		{
			name:        "substring overlap",
			ledgerName:  "Debtors",
			itemName:    "Sundry Debtors Control",
			wantDirect:  1,
			wantSynonym: 0,
		},
		{
			name:        "synonym only",
			ledgerName:  "Sundry Creditors",
			itemName:    "Trade Payables",
			wantDirect:  0,
			wantSynonym: 1,
		},
		{
			name:        "OCR transposition still overlaps",
			ledgerName:  "Trade Recievables",
			itemName:    "Trade Receivables",
			wantDirect:  2,
			wantSynonym: 0,
		},
		{
			name:        "stop words never overlap",
			ledgerName:  "Provision for the Year",
			itemName:    "Statement of the Year",
			wantDirect:  1,
			wantSynonym: 0,
		},
		{
			name:        "nothing in common",
			ledgerName:  "Rent",
			itemName:    "Share Capital",
			wantDirect:  0,
			wantSynonym: 0,
		},
	}

	m := NewKeywordMatcher(nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o := m.Overlap(tc.ledgerName, tc.itemName)
			assert.Equal(t, tc.wantDirect, o.Direct, "direct terms %v", o.Terms)
			assert.Equal(t, tc.wantSynonym, o.Synonym, "synonym terms %v", o.Terms)
		})
	}
}

func TestKeywordMatcher_CaseInsensitive(t *testing.T) {
	m := NewKeywordMatcher(nil)
	assert.Equal(t, m.Overlap("CASH IN HAND", "cash and cash equivalents"), m.Overlap("cash in hand", "CASH AND CASH EQUIVALENTS"))
}

func TestParseSynonyms(t *testing.T) {
	table, err := ParseSynonyms(strings.NewReader(`
synonyms:
  loan: [borrowing, " Debt "]
  Cash: [cash and cash equivalent]
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"BORROWING", "DEBT"}, table["LOAN"])
	assert.Equal(t, []string{"CASH AND CASH EQUIVALENT"}, table["CASH"])

	_, err = ParseSynonyms(strings.NewReader("synonyms: {}"))
	assert.Error(t, err)

	_, err = ParseSynonyms(strings.NewReader("synonyms: [unbalanced"))
	assert.Error(t, err)
}

func TestDefaultSynonyms_CoversCoreStems(t *testing.T) {
	table := DefaultSynonyms()
	for _, key := range []string{"LOAN", "CASH", "RECEIVABLE", "PAYABLE"} {
		assert.NotEmpty(t, table[key], key)
	}
	assert.Contains(t, table["LOAN"], "BORROWING")
	assert.Contains(t, table["RECEIVABLE"], "DEBTORS")
	assert.Contains(t, table["PAYABLE"], "CREDITORS")
}

type fixedMatcher struct{ o Overlap }

func (f fixedMatcher) Overlap(string, string) Overlap { return f.o }

func TestEngine_SemanticCapped(t *testing.T) {
	engine := NewEngine(fixedMatcher{o: Overlap{Direct: 5, Synonym: 5}})
	b := engine.Evaluate(
		entry("Anything", "ASSETS", "", 1),
		item("Anything", "Current Assets", 1),
	)
	assert.Equal(t, MaxSemantic, b.Semantic)
	assert.InDelta(t, 0.70, b.Total, 1e-9)
}
