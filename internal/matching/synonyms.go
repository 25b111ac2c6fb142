package matching

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed synonyms.yaml
var defaultSynonymsYAML []byte

// SynonymTable maps a ledger-name stem to phrases that denote the same
// concept in taxonomy item names. Keys and phrases are stored upper-cased.
type SynonymTable map[string][]string

type synonymFile struct {
	Synonyms map[string][]string `yaml:"synonyms"`
}

var defaultSynonyms = mustParseSynonyms(defaultSynonymsYAML)

func DefaultSynonyms() SynonymTable {
	return defaultSynonyms.clone()
}

func ParseSynonyms(r io.Reader) (SynonymTable, error) {
	var f synonymFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("ParseSynonyms: decode: %w", err)
	}
	if len(f.Synonyms) == 0 {
		return nil, fmt.Errorf("ParseSynonyms: no synonyms defined")
	}

	table := make(SynonymTable, len(f.Synonyms))
	for key, phrases := range f.Synonyms {
		k := normalize(key)
		if k == "" {
			return nil, fmt.Errorf("ParseSynonyms: empty key")
		}
		for _, p := range phrases {
			if p = normalize(p); p != "" {
				table[k] = append(table[k], p)
			}
		}
	}
	return table, nil
}

func LoadSynonymsFile(path string) (SynonymTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadSynonymsFile: %w", err)
	}
	defer f.Close()

	table, err := ParseSynonyms(f)
	if err != nil {
		return nil, fmt.Errorf("LoadSynonymsFile: %s: %w", path, err)
	}
	return table, nil
}

// keys returns the table keys in a fixed order so hit lists are reproducible.
func (t SynonymTable) keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (t SynonymTable) clone() SynonymTable {
	out := make(SynonymTable, len(t))
	for k, v := range t {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func mustParseSynonyms(b []byte) SynonymTable {
	table, err := ParseSynonyms(bytes.NewReader(b))
	if err != nil {
		panic(fmt.Sprintf("embedded synonyms.yaml: %v", err))
	}
	return table
}
