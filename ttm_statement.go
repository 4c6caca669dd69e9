package edgar

import "github.com/rotisserie/eris"

// TTMStatementItem is one row of a TTMStatement: a line item carried over
// from the non-TTM stitched statement, but with each column replaced by
// that quarter's trailing-twelve-month value instead of a single-period
// value.
type TTMStatementItem struct {
	Label   string
	Concept string
	Depth   int
	IsTotal bool
	Values  map[string]float64 // as_of_quarter (period_end) -> ttm_value
}

// TTMStatement is the TTM Engine's statement-level output, per §4.4.6: a
// rolling TTM trend for every line item of a multi-period statement,
// aligned to a single shared as-of-quarter axis.
type TTMStatement struct {
	StatementType StatementType
	AsOfDate      string
	Items         []TTMStatementItem
	Periods       []string // as-of quarter end dates, newest-first
	CompanyName   string
	CIK           string
}

// preferredBaseConcepts is the search order §4.4.6 specifies for picking
// the concept whose as-of-quarters become every other line item's base
// period set: total revenue first (most universally reported), net
// income as the fallback (every company reports it, even pre-revenue
// ones).
var preferredBaseConcepts = []string{"us-gaap:Revenues", "us-gaap:NetIncomeLoss"}

func findLineItemByConcepts(stmt *StitchedStatement, concepts []string) *StitchedLineItem {
	for _, concept := range concepts {
		for i := range stmt.StatementData {
			if stmt.StatementData[i].Concept == concept {
				return &stmt.StatementData[i]
			}
		}
	}
	return nil
}

// BuildTTMStatement constructs a TTMStatement from a non-TTM multi-period
// statement (as produced by XBRLS.GetStatement), using per-concept
// already split-adjusted, quarterized fact series supplied in
// factsByConcept. Balance-sheet statements are explicitly unsupported:
// their values are point-in-time and have no "trailing twelve months" to
// roll up.
func BuildTTMStatement(stmt *StitchedStatement, factsByConcept map[string][]FinancialFact, companyName, cik string) (*TTMStatement, error) {
	if stmt == nil {
		return nil, eris.New("nil statement")
	}
	if stmt.StatementType == BalanceSheet {
		return nil, eris.New("TTM is not supported for balance sheet statements: values are point-in-time, not trailing")
	}

	base := findLineItemByConcepts(stmt, preferredBaseConcepts)
	if base == nil {
		return nil, &NoCompanyFactsFound{Concept: "base period concept (revenue or net income)"}
	}
	baseFacts, ok := factsByConcept[base.Concept]
	if !ok || len(baseFacts) == 0 {
		return nil, &NoCompanyFactsFound{Concept: base.Concept}
	}

	baseTrend, err := CalculateTTMTrend(baseFacts, 0)
	if err != nil {
		return nil, eris.Wrap(err, "computing base as-of-quarter set")
	}

	result := &TTMStatement{
		StatementType: stmt.StatementType,
		CompanyName:   companyName,
		CIK:           cik,
	}
	if len(baseTrend) > 0 {
		result.AsOfDate = baseTrend[0].AsOfQuarter
	}
	for _, pt := range baseTrend {
		result.Periods = append(result.Periods, pt.AsOfQuarter)
	}

	for _, item := range stmt.StatementData {
		facts, ok := factsByConcept[item.Concept]
		if !ok || len(facts) == 0 {
			continue
		}
		trend, err := CalculateTTMTrend(facts, 0)
		if err != nil {
			continue // this concept can't be quarterized into a clean 4-quarter window; skip it, not fatal
		}

		values := map[string]float64{}
		for _, pt := range trend {
			values[pt.AsOfQuarter] = pt.TTMValue
		}

		result.Items = append(result.Items, TTMStatementItem{
			Label:   item.Label,
			Concept: item.Concept,
			Depth:   item.Level,
			IsTotal: item.IsTotal,
			Values:  values,
		})
	}

	return result, nil
}
