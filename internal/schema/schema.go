// Package schema declares the fixed set of fields the pipeline extracts
// from an executive summary, and the mapping from fields to report sections.
package schema

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Sentinel is the fixed value recorded when a field could not be extracted.
// A sentinel value always carries confidence 0.0.
const Sentinel = "Information not provided in the document"

// FieldSpec describes one target field: its name (the JSON key the model
// must return) and the hint used to build the extraction prompt.
type FieldSpec struct {
	Name       string `yaml:"name"`
	PromptHint string `yaml:"prompt_hint"`
}

// Schema is an immutable, insertion-ordered set of field specs.
type Schema struct {
	fields []FieldSpec
	index  map[string]int
}

// New builds a Schema from the given specs. Names must be unique and non-empty.
func New(fields []FieldSpec) (*Schema, error) {
	s := &Schema{
		fields: make([]FieldSpec, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	copy(s.fields, fields)
	for i, f := range s.fields {
		if f.Name == "" {
			return nil, eris.Errorf("schema: field %d has empty name", i)
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, eris.Errorf("schema: duplicate field %q", f.Name)
		}
		s.index[f.Name] = i
	}
	return s, nil
}

// Default returns the standard executive summary schema. The hints mirror
// the analyst questionnaire the extraction prompt is built from.
func Default() *Schema {
	s, err := New([]FieldSpec{
		{Name: "company_name", PromptHint: "What is the company name?"},
		{Name: "technology_type", PromptHint: "Technology type (device, diagnostic, therapeutic, or digital health)"},
		{Name: "need_addressed", PromptHint: "What is the need addressed by the product?"},
		{Name: "product_development_stage", PromptHint: "How developed is the product? (concept only, prototype, in testing, or available on the market)"},
		{Name: "market_size", PromptHint: "How large is the potential market?"},
		{Name: "market_calculation", PromptHint: "Was the market potential calculated \"top down\" or \"bottom up\"?"},
		{Name: "investment_needed", PromptHint: "How much money must be invested to secure the exit?"},
		{Name: "years_to_exit", PromptHint: "How many years until the expected exit?"},
		{Name: "exit_value_range", PromptHint: "What is the range of the potential value the company might realize upon exit?"},
		{Name: "current_sales", PromptHint: "If the product is on the market, what is the current level of sales?"},
		{Name: "management_team", PromptHint: "Who is on the management team and what is their relevant experience?"},
		{Name: "missing_skills", PromptHint: "What skills needed to execute the plan are missing from the management team?"},
	})
	if err != nil {
		panic(err) // static field list, cannot fail
	}
	return s
}

// Fields returns the specs in schema order. The caller must not mutate
// the returned slice.
func (s *Schema) Fields() []FieldSpec {
	return s.fields
}

// Names returns the field names in schema order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Has reports whether the schema declares a field with the given name.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

var labelOverrides = map[string]string{
	"roi_elements": "Elements of Potential ROI",
}

var titleCaser = cases.Title(language.English)

// Label converts a snake_case field or section name into a human-readable
// label for rendered reports.
func (s *Schema) Label(name string) string {
	if l, ok := labelOverrides[name]; ok {
		return l
	}
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

// SectionSpec describes one report section: its key, display label, and the
// fields whose values it is synthesized from.
type SectionSpec struct {
	Key    string
	Label  string
	Fields []string
}

// Sections returns the report sections in their fixed render order.
func (s *Schema) Sections() []SectionSpec {
	return []SectionSpec{
		{
			Key:    "nature_and_state",
			Label:  "Nature and State of the Product",
			Fields: []string{"technology_type", "product_development_stage", "need_addressed"},
		},
		{
			Key:    "market_need_and_size",
			Label:  "Market Need and Size",
			Fields: []string{"market_size", "market_calculation"},
		},
		{
			Key:    "roi_elements",
			Label:  "Elements of Potential ROI",
			Fields: []string{"investment_needed", "years_to_exit", "exit_value_range", "current_sales"},
		},
		{
			Key:    "management_team_strength",
			Label:  "Strength of the Management Team",
			Fields: []string{"management_team", "missing_skills"},
		},
	}
}

// QuickFacts lists the fields shown in the report's quick-facts block,
// in render order.
func (s *Schema) QuickFacts() []string {
	return []string{
		"technology_type",
		"product_development_stage",
		"market_size",
		"investment_needed",
		"years_to_exit",
		"exit_value_range",
	}
}
