package matching

import (
	"math"
	"strings"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/domain"
)

const (
	WeightTypeMatch          = 0.40
	WeightCategory           = 0.30
	WeightLoanBorrowing      = 0.30
	WeightOverdraftShortTerm = 0.35
	WeightDirectOverlap      = 0.10
	WeightSynonymHit         = 0.15
	MaxSemantic              = 0.30
)

var categoryKeywords = []string{"CURRENT", "FIXED", "CASH"}

type Breakdown struct {
	TypeMatch       float64
	Category        float64
	CategoryKeyword string
	LoanBonus       float64
	Semantic        float64
	Overlap         Overlap
	Total           float64
}

type Candidate struct {
	Item      domain.TaxonomyItem
	Breakdown Breakdown
}

type Engine struct {
	semantic SemanticMatcher
}

func NewEngine(semantic SemanticMatcher) *Engine {
	if semantic == nil {
		semantic = NewKeywordMatcher(nil)
	}
	return &Engine{semantic: semantic}
}

// Score returns the additive match score of entry against candidate, in [0, 1].
func (e *Engine) Score(entry domain.LedgerEntry, candidate domain.TaxonomyItem) float64 {
	return e.Evaluate(entry, candidate).Total
}

func (e *Engine) Evaluate(entry domain.LedgerEntry, candidate domain.TaxonomyItem) Breakdown {
	var b Breakdown

	if TypeCompatible(entry.AccountType, candidate.ReportSection) {
		b.TypeMatch = WeightTypeMatch
	}

	b.CategoryKeyword = categoryAlignment(entry.AccountCategory, candidate.ItemName)
	if b.CategoryKeyword != "" {
		b.Category = WeightCategory
	}

	b.LoanBonus = loanBonus(entry, candidate)

	b.Overlap = e.semantic.Overlap(entry.LedgerName, candidate.ItemName)
	b.Semantic = math.Min(
		float64(b.Overlap.Direct)*WeightDirectOverlap+float64(b.Overlap.Synonym)*WeightSynonymHit,
		MaxSemantic,
	)

	b.Total = clamp01(round4(b.TypeMatch + b.Category + b.LoanBonus + b.Semantic))
	return b
}

// Best scores every type-compatible item and returns the winner. Items from an
// unrelated report section are never scored, however well their names match.
func (e *Engine) Best(entry domain.LedgerEntry, items []domain.TaxonomyItem) (Candidate, bool) {
	var best Candidate
	found := false
	for _, item := range items {
		if !TypeCompatible(entry.AccountType, item.ReportSection) {
			continue
		}
		c := Candidate{Item: item, Breakdown: e.Evaluate(entry, item)}
		if !found || Better(c, best) {
			best, found = c, true
		}
	}
	return best, found
}

// Better orders candidates by score descending, then display order ascending.
// Name and id settle the remaining ties so the winner never depends on the
// order the taxonomy was loaded in.
func Better(a, b Candidate) bool {
	if a.Breakdown.Total != b.Breakdown.Total {
		return a.Breakdown.Total > b.Breakdown.Total
	}
	if a.Item.DisplayOrder != b.Item.DisplayOrder {
		return a.Item.DisplayOrder < b.Item.DisplayOrder
	}
	if a.Item.ItemName != b.Item.ItemName {
		return a.Item.ItemName < b.Item.ItemName
	}
	return a.Item.ID.String() < b.Item.ID.String()
}

// categoryAlignment returns the first keyword shared by the category and the
// item name. The category bonus is awarded once per candidate however many
// keywords line up.
func categoryAlignment(category, itemName string) string {
	catToks := tokens(category)
	if len(catToks) == 0 {
		return ""
	}
	itemToks := tokens(itemName)
	for _, kw := range categoryKeywords {
		if hasTokenPrefix(catToks, kw) && hasTokenPrefix(itemToks, kw) {
			return kw
		}
	}
	return ""
}

func loanBonus(entry domain.LedgerEntry, candidate domain.TaxonomyItem) float64 {
	source := entry.AccountCategory + " " + entry.LedgerName
	sourceText := normalize(source)
	sourceToks := tokens(source)

	overdraft := strings.Contains(sourceText, "OVERDRAFT") ||
		hasToken(sourceToks, "OD") || hasToken(sourceToks, "O/D")
	loan := overdraft || strings.Contains(sourceText, "LOAN")
	if !loan {
		return 0
	}

	target := candidate.ItemName + " " + candidate.ReportSection
	borrowing := strings.Contains(normalize(target), "BORROWING")
	targetToks := tokens(target)
	shortTerm := hasTokenPrefix(targetToks, "SHORT") || hasTokenPrefix(targetToks, "CURRENT")

	switch {
	case overdraft && borrowing && shortTerm:
		return WeightOverdraftShortTerm
	case borrowing:
		return WeightLoanBorrowing
	case overdraft && shortTerm:
		return WeightLoanBorrowing
	}
	return 0
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
