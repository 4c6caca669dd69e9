package edgar

import (
	"sort"
	"strings"
)

// StatementType is the closed set of financial statements the stitcher and
// TTM engine understand. Using a defined string type instead of runtime
// class dispatch keeps the four statement kinds a closed sum type per the
// "dynamic dispatch -> variants" design note.
type StatementType string

const (
	IncomeStatement      StatementType = "IncomeStatement"
	BalanceSheet         StatementType = "BalanceSheet"
	CashFlowStatement    StatementType = "CashFlowStatement"
	StatementOfEquity    StatementType = "StatementOfEquity"
	ComprehensiveIncome  StatementType = "ComprehensiveIncome"
)

// PeriodMeta is the period metadata carried alongside a single-filing
// Statement: which periods that filing's data table covers, keyed the same
// way selectedPeriod keys periods during stitching.
type PeriodMeta struct {
	PeriodKey   string
	PeriodType  string // "instant" | "duration"
	StartDate   string
	EndDate     string
	Date        string
	DisplayDate string
}

// Value is one concept/period data point as it appears inside a single
// filing's Statement, before any cross-filing stitching happens.
type Value struct {
	Raw          string
	NumericValue *float64
}

// LineItem is one row of a single-filing Statement: a concept, its
// presentation metadata (level, abstract, total), and its values across
// that filing's own period set.
type LineItem struct {
	Concept         string
	Label           string
	StandardConcept string
	Level           int
	IsAbstract      bool
	IsTotal         bool
	Values          map[string]Value
	Decimals        map[string]int
}

// Statement is one financial statement as presented within a single
// filing: an ordered list of line items (presentation order, the order
// the source XBRL view extracted its facts in) plus the period metadata
// those items' values are keyed against.
type Statement struct {
	StatementType StatementType
	Role          string
	Definition    string
	Periods       map[string]PeriodMeta
	Data          []LineItem
}

// dimensionSuffixes are the presentation-tree axis/domain/member/line-item
// wrapper suffixes the spec says integration must skip: they describe
// XBRL dimensional structure, not a reportable financial line.
var dimensionSuffixes = []string{"[Axis]", "[Domain]", "[Member]", "[Line Items]", "[Table]", "[Abstract]"}

func hasDimensionSuffix(label string) bool {
	for _, suffix := range dimensionSuffixes {
		if len(label) >= len(suffix) && label[len(label)-len(suffix):] == suffix {
			return true
		}
	}
	return false
}

// XBRLView is one single-filing XBRL view as the stitcher consumes it: the
// parsed XBRL instance plus the filing-level provenance needed to place it
// in time (accession, form type, filing date) and the entity info the
// PeriodOptimizer keys period selection off.
type XBRLView struct {
	XBRL       *XBRL
	Accession  string
	FormType   string
	FilingDate string
	Entity     EntityInfo
	Facts      []FinancialFact
}

// NewXBRLView bridges a parsed XBRL instance into the richer view the
// stitcher operates on, stamping every fact with filing provenance via
// XBRL.ToFinancialFacts.
func NewXBRLView(x *XBRL, accession, formType, filingDate string) *XBRLView {
	if x == nil {
		return nil
	}
	return &XBRLView{
		XBRL:       x,
		Accession:  accession,
		FormType:   formType,
		FilingDate: filingDate,
		Entity:     ExtractEntityInfo(x),
		Facts:      x.ToFinancialFacts(accession, formType, filingDate, ""),
	}
}

// Statement builds this view's single-filing Statement for one statement
// type: it groups this view's facts by concept, in first-seen order (a
// stand-in for the filing's own presentation-linkbase order, since this
// core does not parse presentation linkbases), classifying each concept's
// shape (abstract/total) by simple label heuristics and standardizing via
// the ConceptMapper.
func (v *XBRLView) Statement(statementType StatementType) *Statement {
	if v == nil {
		return nil
	}

	stmt := &Statement{
		StatementType: statementType,
		Periods:       map[string]PeriodMeta{},
	}

	order := map[string]int{}
	byConcept := map[string]*LineItem{}

	for _, f := range v.Facts {
		if !factBelongsToStatement(f, statementType) {
			continue
		}
		label := conceptToLabel(f.Concept)
		if hasDimensionSuffix(label) {
			continue
		}

		pk := financialFactPeriodKey(f)
		if pk == "" {
			continue
		}
		if _, ok := stmt.Periods[pk]; !ok {
			stmt.Periods[pk] = periodMetaFromFact(f, pk)
		}

		item, ok := byConcept[f.Concept]
		if !ok {
			item = &LineItem{
				Concept:  f.Concept,
				Label:    label,
				Values:   map[string]Value{},
				Decimals: map[string]int{},
				IsTotal:  isTotalLabel(label),
			}
			if stdLabel, standardConcept, matched := MapForStatement(string(statementType), f.Concept); matched {
				item.Label = stdLabel
				item.StandardConcept = standardConcept
			}
			byConcept[f.Concept] = item
			order[f.Concept] = len(order)
		}

		item.Values[pk] = Value{Raw: f.Value, NumericValue: f.NumericValue}
		item.Decimals[pk] = f.Decimals
	}

	concepts := make([]string, 0, len(byConcept))
	for c := range byConcept {
		concepts = append(concepts, c)
	}
	sort.Slice(concepts, func(i, j int) bool { return order[concepts[i]] < order[concepts[j]] })

	for _, c := range concepts {
		stmt.Data = append(stmt.Data, *byConcept[c])
	}

	return stmt
}

func financialFactPeriodKey(f FinancialFact) string {
	if f.PeriodType == "instant" {
		if f.PeriodEnd == "" {
			return ""
		}
		return "instant_" + f.PeriodEnd
	}
	if f.PeriodStart == "" || f.PeriodEnd == "" {
		return ""
	}
	return "duration_" + f.PeriodStart + "_" + f.PeriodEnd
}

func periodMetaFromFact(f FinancialFact, key string) PeriodMeta {
	if f.PeriodType == "instant" {
		return PeriodMeta{PeriodKey: key, PeriodType: "instant", Date: f.PeriodEnd, DisplayDate: f.PeriodEnd}
	}
	return PeriodMeta{
		PeriodKey:   key,
		PeriodType:  "duration",
		StartDate:   f.PeriodStart,
		EndDate:     f.PeriodEnd,
		DisplayDate: f.PeriodEnd,
	}
}

// factBelongsToStatement is a coarse pre-filter over a view's full fact
// list: once a fact is assigned a StatementType upstream (by whatever
// classified the filing's documents), this simply honors that tag; facts
// with no tag are offered to every statement type so single-document XBRL
// views (no per-statement split available) still populate all three.
func factBelongsToStatement(f FinancialFact, statementType StatementType) bool {
	if f.StatementType == "" {
		return true
	}
	return StatementType(f.StatementType) == statementType
}

func conceptToLabel(concept string) string {
	if std := GetStandardizedLabel(concept); std != "" {
		return std
	}
	// Fall back to the bare local name with namespace stripped; this is
	// what a filing-specific label looks like when the ConceptMapper has
	// no entry for it.
	for i := len(concept) - 1; i >= 0; i-- {
		if concept[i] == ':' {
			return concept[i+1:]
		}
	}
	return concept
}

func isTotalLabel(label string) bool {
	lower := strings.ToLower(label)
	return strings.Contains(lower, "total") || strings.Contains(lower, "net income") || strings.Contains(lower, "net loss")
}
