package matching

import (
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"A": {}, "AN": {}, "AND": {}, "&": {}, "OF": {}, "THE": {},
	"IN": {}, "ON": {}, "FOR": {}, "TO": {}, "AT": {}, "BY": {},
}

// normalize upper-cases with the Unicode default case mapping, never the
// process locale.
func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func tokens(s string) []string {
	fields := strings.Fields(normalize(s))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func contentTokens(s string) []string {
	all := tokens(s)
	out := all[:0]
	for _, t := range all {
		if _, stop := stopWords[t]; !stop {
			out = append(out, t)
		}
	}
	return out
}

func hasToken(toks []string, want string) bool {
	for _, t := range toks {
		if t == want {
			return true
		}
	}
	return false
}

func hasTokenPrefix(toks []string, prefix string) bool {
	for _, t := range toks {
		if strings.HasPrefix(t, prefix) {
			return true
		}
	}
	return false
}
