package taxonomy

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/domain"
)

//go:embed default_taxonomy.yaml
var defaultTaxonomyYAML []byte

// itemNamespace derives stable ids from the natural key, so the same file
// always yields the same ids.
var itemNamespace = uuid.MustParse("6f1c2a8e-3b7d-4e52-9a0f-58d1c4b7e913")

type fileItem struct {
	ItemName         string  `yaml:"item_name"`
	ReportSection    string  `yaml:"report_section"`
	ReportSubSection *string `yaml:"report_sub_section"`
	ReportType       string  `yaml:"report_type"`
	IsCreditPositive bool    `yaml:"is_credit_positive"`
	DisplayOrder     int     `yaml:"display_order"`
}

type file struct {
	Items []fileItem `yaml:"items"`
}

func Default() ([]domain.TaxonomyItem, error) {
	items, err := Parse(bytes.NewReader(defaultTaxonomyYAML))
	if err != nil {
		return nil, fmt.Errorf("Default: %w", err)
	}
	return items, nil
}

func LoadFile(path string) ([]domain.TaxonomyItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadFile: %w", err)
	}
	defer f.Close()

	items, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("LoadFile: %s: %w", path, err)
	}
	return items, nil
}

// Load reads path, or the embedded default taxonomy when path is empty.
func Load(path string) ([]domain.TaxonomyItem, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

func Parse(r io.Reader) ([]domain.TaxonomyItem, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("Parse: decode: %w", err)
	}

	items := make([]domain.TaxonomyItem, 0, len(f.Items))
	for _, fi := range f.Items {
		item := domain.TaxonomyItem{
			ItemName:         strings.TrimSpace(fi.ItemName),
			ReportSection:    strings.TrimSpace(fi.ReportSection),
			ReportSubSection: fi.ReportSubSection,
			ReportType:       domain.ReportType(strings.TrimSpace(fi.ReportType)),
			IsCreditPositive: fi.IsCreditPositive,
			DisplayOrder:     fi.DisplayOrder,
		}
		item.ID = StableID(item.Key())
		items = append(items, item)
	}

	if err := Validate(items); err != nil {
		return nil, fmt.Errorf("Parse: %w", err)
	}
	SortByDisplayOrder(items)
	return items, nil
}

func StableID(k domain.TaxonomyKey) uuid.UUID {
	return uuid.NewSHA1(itemNamespace, []byte(k.ItemName+"\x00"+k.ReportSection+"\x00"+string(k.ReportType)))
}

type ValidationError struct {
	Index   int
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("item %d: %s", e.Index, e.Message)
}

// Validate checks required fields and (item_name, report_section, report_type)
// uniqueness. Every problem found is reported, not just the first.
func Validate(items []domain.TaxonomyItem) error {
	var problems []error
	seen := make(map[domain.TaxonomyKey]int, len(items))

	for i, item := range items {
		if item.ItemName == "" {
			problems = append(problems, ValidationError{i, "item_name is required"})
		}
		if item.ReportSection == "" {
			problems = append(problems, ValidationError{i, "report_section is required"})
		}
		if !item.ReportType.IsValid() {
			problems = append(problems, ValidationError{i, fmt.Sprintf("report_type %q must be BalanceSheet or ProfitAndLoss", item.ReportType)})
		}
		if prev, dup := seen[item.Key()]; dup {
			problems = append(problems, fmt.Errorf("%w: %w", ValidationError{i, fmt.Sprintf("duplicates item %d (%s / %s)", prev, item.ItemName, item.ReportSection)}, domain.ErrDuplicateTaxonomyItem))
			continue
		}
		seen[item.Key()] = i
	}

	if len(problems) > 0 {
		return fmt.Errorf("Validate: %w", errors.Join(problems...))
	}
	return nil
}

func SortByDisplayOrder(items []domain.TaxonomyItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DisplayOrder < items[j].DisplayOrder
	})
}
