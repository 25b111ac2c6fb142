package suggest

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/domain"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/matching"
)

const HighSourceConfidence = 0.8

type matcher interface {
	Best(entry domain.LedgerEntry, items []domain.TaxonomyItem) (matching.Candidate, bool)
}

// Stats describes what a Generate call did with its input.
type Stats struct {
	Entries       int
	AlreadyMapped int
	Malformed     int
	Duplicates    int
	NoCandidate   int
	Suggested     int
}

type Generator struct {
	engine matcher
}

func NewGenerator(engine matcher) *Generator {
	if engine == nil {
		engine = matching.NewEngine(nil)
	}
	return &Generator{engine: engine}
}

func (g *Generator) Generate(entries []domain.LedgerEntry, taxonomy []domain.TaxonomyItem, existing domain.MappedSet) []domain.Suggestion {
	out, _ := g.GenerateWithStats(entries, taxonomy, existing)
	return out
}

// GenerateWithStats produces one suggestion per unmapped ledger name, ordered
// by confidence descending. Entries are never mutated and no I/O happens here,
// so concurrent callers need no coordination.
func (g *Generator) GenerateWithStats(entries []domain.LedgerEntry, taxonomy []domain.TaxonomyItem, existing domain.MappedSet) ([]domain.Suggestion, Stats) {
	stats := Stats{Entries: len(entries)}
	if len(taxonomy) == 0 {
		return []domain.Suggestion{}, stats
	}

	seen := make(domain.MappedSet, len(entries))
	suggestions := make([]domain.Suggestion, 0, len(entries))

	for _, e := range entries {
		if e.IsMalformed() {
			stats.Malformed++
			continue
		}
		if existing.Has(e.PeriodID, e.LedgerName) {
			stats.AlreadyMapped++
			continue
		}
		if seen.Has(e.PeriodID, e.LedgerName) {
			stats.Duplicates++
			continue
		}
		seen.Add(e.PeriodID, e.LedgerName)

		best, ok := g.engine.Best(e, taxonomy)
		if !ok {
			stats.NoCandidate++
			continue
		}

		suggestions = append(suggestions, domain.Suggestion{
			LedgerName:              e.LedgerName,
			PeriodID:                e.PeriodID,
			UploadID:                e.UploadID,
			SuggestedTaxonomyItemID: best.Item.ID,
			SuggestedItemName:       best.Item.ItemName,
			Confidence:              Confidence(e.SourceConfidence, best.Breakdown.Total),
			MatchScore:              best.Breakdown.Total,
			Reasoning:               Reasoning(e, best),
			AccountType:             e.AccountType,
			AccountCategory:         e.AccountCategory,
			SourceConfidence:        e.SourceConfidence,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
	stats.Suggested = len(suggestions)
	return suggestions, stats
}

func Confidence(sourceConfidence, matchScore float64) float64 {
	return math.Max(0, math.Min(1, (sourceConfidence+matchScore)/2))
}

// Reasoning explains which scoring factors fired. It is for reviewers only.
func Reasoning(e domain.LedgerEntry, c matching.Candidate) string {
	b := c.Breakdown
	var parts []string
	if b.TypeMatch > 0 {
		parts = append(parts, fmt.Sprintf("account type %s matches section %q", e.AccountType, c.Item.ReportSection))
	}
	if b.Category > 0 {
		parts = append(parts, fmt.Sprintf("category keyword %s aligns with %q", b.CategoryKeyword, c.Item.ItemName))
	}
	if b.LoanBonus > 0 {
		parts = append(parts, "loan/overdraft account matches borrowing line")
	}
	if !b.Overlap.Empty() {
		parts = append(parts, fmt.Sprintf("name overlap (%d direct, %d synonym)", b.Overlap.Direct, b.Overlap.Synonym))
	}
	if e.SourceConfidence >= HighSourceConfidence {
		parts = append(parts, fmt.Sprintf("high source confidence (%.2f)", e.SourceConfidence))
	}
	if len(parts) == 0 {
		return "weak match"
	}
	return strings.Join(parts, "; ")
}

// Filter keeps suggestions whose confidence is at least threshold.
func Filter(suggestions []domain.Suggestion, threshold float64) []domain.Suggestion {
	out := make([]domain.Suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if s.Confidence >= threshold {
			out = append(out, s)
		}
	}
	return out
}

// Without drops an applied ledger name from a caller-held pending list.
func Without(pending []domain.Suggestion, periodID uuid.UUID, ledgerName string) []domain.Suggestion {
	out := make([]domain.Suggestion, 0, len(pending))
	for _, s := range pending {
		if s.PeriodID == periodID && s.LedgerName == ledgerName {
			continue
		}
		out = append(out, s)
	}
	return out
}
