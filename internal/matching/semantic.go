package matching

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// SemanticMatcher compares a ledger account name with a taxonomy item name.
// The scoring engine only consumes hit counts, so a tokenizer or trained
// classifier can replace KeywordMatcher without touching the weights.
type SemanticMatcher interface {
	Overlap(ledgerName, itemName string) Overlap
}

type Overlap struct {
	Direct  int
	Synonym int
	Terms   []string
}

func (o Overlap) Empty() bool { return o.Direct == 0 && o.Synonym == 0 }

var editOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// KeywordMatcher counts shared tokens and synonym-table hits. Tokens that
// differ by a small edit distance count as shared, which absorbs common OCR
// misreads such as RECIEVABLES.
type KeywordMatcher struct {
	synonyms SynonymTable
}

func NewKeywordMatcher(synonyms SynonymTable) *KeywordMatcher {
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	return &KeywordMatcher{synonyms: synonyms}
}

func (m *KeywordMatcher) Overlap(ledgerName, itemName string) Overlap {
	var o Overlap

	ledgerToks := contentTokens(ledgerName)
	itemToks := contentTokens(itemName)

	for _, lt := range ledgerToks {
		for _, it := range itemToks {
			if tokensOverlap(lt, it) {
				o.Direct++
				o.Terms = append(o.Terms, lt)
			}
		}
	}

	item := normalize(itemName)
	for _, key := range m.synonyms.keys() {
		if !hasTokenPrefix(ledgerToks, key) {
			continue
		}
		for _, phrase := range m.synonyms[key] {
			if strings.Contains(item, phrase) {
				o.Synonym++
				o.Terms = append(o.Terms, key+"~"+phrase)
			}
		}
	}

	return o
}

func tokensOverlap(a, b string) bool {
	if a == b {
		return true
	}
	la, lb := len([]rune(a)), len([]rune(b))
	if la >= 3 && lb >= 3 && (strings.Contains(a, b) || strings.Contains(b, a)) {
		return true
	}
	shorter := min(la, lb)
	if shorter < 6 {
		return false
	}
	maxEdits := 1
	if shorter >= 9 {
		maxEdits = 2
	}
	return levenshtein.DistanceForStrings([]rune(a), []rune(b), editOptions) <= maxEdits
}
