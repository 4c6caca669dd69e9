package edgar

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed concept_mappings.json
var conceptMappingsJSON []byte

// ConceptMapping represents the structure of concept_mappings.json
type ConceptMapping struct {
	Schema      string                       `json:"$schema"`
	Description string                       `json:"description"`
	Version     string                       `json:"version"`
	Mappings    map[string]ConceptDefinition `json:"mappings"`
}

// ConceptDefinition defines a standardized concept and its XBRL variations
type ConceptDefinition struct {
	Concepts []string `json:"concepts"`
	Notes    string   `json:"notes"`
}

// conceptMapper provides lookup capabilities for XBRL concepts
type conceptMapper struct {
	mappings      map[string]ConceptDefinition // standardized label -> definition
	reverseLookup map[string]string            // XBRL concept -> standardized label
}

var globalMapper *conceptMapper

func init() {
	var err error
	globalMapper, err = loadConceptMappings()
	if err != nil {
		panic(fmt.Sprintf("Failed to load concept mappings: %v", err))
	}
}

// loadConceptMappings parses the embedded JSON and builds lookup tables
func loadConceptMappings() (*conceptMapper, error) {
	var mapping ConceptMapping
	if err := json.Unmarshal(conceptMappingsJSON, &mapping); err != nil {
		return nil, fmt.Errorf("failed to parse concept_mappings.json: %w", err)
	}

	mapper := &conceptMapper{
		mappings:      mapping.Mappings,
		reverseLookup: make(map[string]string),
	}

	// Build reverse lookup: XBRL concept -> standardized label
	for label, def := range mapping.Mappings {
		for _, concept := range def.Concepts {
			mapper.reverseLookup[concept] = label
		}
	}

	return mapper, nil
}

// GetStandardizedLabel returns the standardized label for an XBRL concept
// Returns empty string if no mapping exists
func (m *conceptMapper) GetStandardizedLabel(xbrlConcept string) string {
	// Try exact match first
	if label, ok := m.reverseLookup[xbrlConcept]; ok {
		return label
	}

	// Try case-insensitive match (some filings vary in capitalization)
	for concept, label := range m.reverseLookup {
		if strings.EqualFold(concept, xbrlConcept) {
			return label
		}
	}

	return ""
}

// GetConcepts returns all XBRL concepts that map to a standardized label
func (m *conceptMapper) GetConcepts(standardizedLabel string) ([]string, error) {
	def, ok := m.mappings[standardizedLabel]
	if !ok {
		return nil, fmt.Errorf("unknown standardized label: %s", standardizedLabel)
	}
	return def.Concepts, nil
}

// GetAllStandardizedLabels returns all available standardized labels
func (m *conceptMapper) GetAllStandardizedLabels() []string {
	labels := make([]string, 0, len(m.mappings))
	for label := range m.mappings {
		labels = append(labels, label)
	}
	return labels
}

// HasMapping returns true if the XBRL concept has a standardized mapping
func (m *conceptMapper) HasMapping(xbrlConcept string) bool {
	return m.GetStandardizedLabel(xbrlConcept) != ""
}

// Public interface functions using global mapper

// GetStandardizedLabel returns the standardized label for an XBRL concept
func GetStandardizedLabel(xbrlConcept string) string {
	return globalMapper.GetStandardizedLabel(xbrlConcept)
}

// GetConceptsForLabel returns all XBRL concepts that map to a standardized label
func GetConceptsForLabel(standardizedLabel string) ([]string, error) {
	return globalMapper.GetConcepts(standardizedLabel)
}

// GetAllStandardizedLabels returns all available standardized labels
func GetAllStandardizedLabels() []string {
	return globalMapper.GetAllStandardizedLabels()
}

// HasMapping returns true if the XBRL concept has a standardized mapping
func HasMapping(xbrlConcept string) bool {
	return globalMapper.HasMapping(xbrlConcept)
}

// MapForStatement assigns a standardized label and, when one exists, a
// cross-company standard_concept identifier for a raw concept within the
// context of one statement type. Statement type narrows ambiguous
// concepts that legitimately mean different things on different
// statements (e.g. "us-gaap:OtherAssets" is not meaningful standardized
// outside BalanceSheet); today the mapping table is not yet segmented by
// statement, so this is a thin wrapper that also filters out mappings
// that make no sense for the given statement type.
func MapForStatement(statementType, xbrlConcept string) (label string, standardConcept string, ok bool) {
	label = GetStandardizedLabel(xbrlConcept)
	if label == "" {
		return "", "", false
	}
	if !labelAppliesToStatement(statementType, label) {
		return "", "", false
	}
	return label, standardConceptKey(label), true
}

// standardConceptKey converts a human-readable standardized label (as
// used in concept_mappings.json) into the CamelCase identifier used as
// standard_concept in stitched output, e.g. "Net Income (Loss)" ->
// "NetIncomeLoss".
func standardConceptKey(label string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range label {
		switch {
		case r == ' ' || r == '-' || r == ',' || r == '(' || r == ')':
			upperNext = true
		case upperNext:
			b.WriteRune(toUpperRune(r))
			upperNext = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func toUpperRune(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}

// statementBalanceSheetLabels, statementIncomeLabels and
// statementCashFlowLabels partition concept_mappings.json's labels by the
// statement they belong on, so a concept that is only meaningful on the
// balance sheet is never offered as a match while ordering an income
// statement (and vice versa).
var statementIncomeLabels = map[string]bool{
	"Total Revenue": true, "Cost of Revenue": true, "Gross Profit": true,
	"Research and Development Expense": true, "General and Administrative Expense": true,
	"Operating Expenses": true, "Operating Income (Loss)": true, "Interest Expense": true,
	"Other Nonoperating Income (Expense)": true, "Income Before Taxes": true,
	"Income Tax Expense (Benefit)": true, "Net Income (Loss)": true,
	"Earnings Per Share, Basic": true, "Earnings Per Share, Diluted": true,
	"Weighted Average Shares Outstanding, Basic": true, "Weighted Average Shares Outstanding, Diluted": true,
}

var statementBalanceSheetLabels = map[string]bool{
	"Cash and Cash Equivalents": true, "Total Assets": true, "Total Current Assets": true,
	"Total Liabilities": true, "Total Current Liabilities": true, "Long-Term Debt": true,
	"Stockholders Equity": true, "Liabilities and Stockholders Equity": true,
}

var statementCashFlowLabels = map[string]bool{
	"Net Cash Provided by Operating Activities": true, "Net Cash Used in Investing Activities": true,
	"Net Cash Provided by Financing Activities": true, "Depreciation and Amortization": true,
}

func labelAppliesToStatement(statementType, label string) bool {
	switch statementType {
	case "IncomeStatement":
		return statementIncomeLabels[label]
	case "BalanceSheet":
		return statementBalanceSheetLabels[label]
	case "CashFlowStatement":
		return statementCashFlowLabels[label] || statementIncomeLabels[label]
	default:
		return true
	}
}
