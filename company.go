package edgar

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Company is the top-level facade over one entity's filing history, per
// SPEC_FULL §6.3. It owns (lazily) the filing-derived XBRL views for that
// entity and borrows the XBRL Stitcher and TTM Engine to answer statement
// and metric questions without the caller ever touching period selection,
// concept ordering, or split adjustment directly.
//
// Company does not fetch anything itself: source acquisition (HTTP, tar
// archives, the datamule index) is an external collaborator's job per §1's
// Non-goals. A Company is constructed from already-parsed views.
type Company struct {
	CIK  string
	Name string

	views []*XBRLView // newest first; may contain nils for pre-XBRL-era filings

	stitched *XBRLS // lazy; built once from views on first use

	quarterFacts map[string][]FinancialFact // lazy "_cached_split_adjusted_facts" cache, keyed by concept

	statementCache map[companyStatementKey]*StatementResult
	balanceCache   map[int]*StitchedStatement
}

type companyStatementKey struct {
	kind    StatementType
	period  string
	periods int
}

// NewCompany builds a Company over an ordered (newest-first) list of
// single-filing XBRL views already assembled for one entity (e.g. via
// NewXBRLView over each filing's parsed XBRL instance). A nil entry marks
// a filing that carried no XBRL (pre-2009 era) and is preserved for index
// alignment with the caller's filing list, mirroring FromFilings.
func NewCompany(cik string, views []*XBRLView) *Company {
	name := ""
	for _, v := range views {
		if v != nil && v.Entity.RegistrantName != "" {
			name = v.Entity.RegistrantName
			break
		}
	}
	return &Company{
		CIK:            cik,
		Name:           name,
		views:          views,
		statementCache: map[companyStatementKey]*StatementResult{},
		balanceCache:   map[int]*StitchedStatement{},
	}
}

// xbrls lazily builds (and memoizes) the XBRLS stitcher view over this
// company's filings, filtering amendments per FromFilings' default
// rationale.
func (c *Company) xbrls() *XBRLS {
	if c.stitched == nil {
		c.stitched = FromFilings(c.views, true)
	}
	return c.stitched
}

// viewsByForm returns the subset of this company's views whose form type
// matches predicate, preserving order.
func (c *Company) viewsByForm(predicate func(formType string) bool) []*XBRLView {
	var out []*XBRLView
	for _, v := range c.views {
		if v == nil {
			continue
		}
		if predicate(v.FormType) {
			out = append(out, v)
		}
	}
	return out
}

func isAnnualForm(formType string) bool { return strings.HasPrefix(formType, "10-K") }
func isQuarterlyForm(formType string) bool { return strings.HasPrefix(formType, "10-Q") }

// quarterizedSplitAdjustedFacts builds (and memoizes, per §5's write-once
// cache policy) the per-concept series of split-adjusted, quarter-derived
// facts that both GetTTM and the ttm-period statement builders consume. It
// pools facts across every filing regardless of form type: Q4 derivation
// needs the 10-K's FY and YTD_9M facts alongside the 10-Qs' discrete
// quarters, and split detection needs the full filing history to catch a
// split disclosed years after the period it adjusts.
func (c *Company) quarterizedSplitAdjustedFacts() map[string][]FinancialFact {
	if c.quarterFacts != nil {
		return c.quarterFacts
	}

	var pooled []FinancialFact
	for _, v := range c.views {
		if v == nil {
			continue
		}
		pooled = append(pooled, v.Facts...)
	}

	splits := DetectSplits(pooled)

	byConcept := map[string][]FinancialFact{}
	for _, f := range pooled {
		byConcept[f.Concept] = append(byConcept[f.Concept], f)
	}

	result := make(map[string][]FinancialFact, len(byConcept))
	for concept, facts := range byConcept {
		adjusted := ApplySplitAdjustments(facts, splits)
		result[concept] = QuarterizeConcept(adjusted)
	}

	c.quarterFacts = result
	return result
}

// GetTTM computes the trailing-twelve-month rolling sum for a single
// concept (e.g. "us-gaap:Revenues"), as of the most recent available
// quarter or, when asOf is non-empty, as of the latest quarter ending on
// or before that date.
func (c *Company) GetTTM(concept, asOf string) (*TTMMetric, error) {
	facts, ok := c.quarterizedSplitAdjustedFacts()[concept]
	if !ok || len(facts) == 0 {
		return nil, &NoCompanyFactsFound{Concept: concept}
	}
	return CalculateTTM(facts, asOf)
}

// StatementResult is the polymorphic return of Company.IncomeStatement and
// Company.CashFlow: exactly one of Statement or TTM is populated,
// depending on the requested period.
type StatementResult struct {
	Statement *StitchedStatement // populated for period == "annual" | "quarterly"
	TTM       *TTMStatement      // populated for period == "ttm"
}

// statementForPeriod is the shared implementation behind IncomeStatement
// and CashFlow: build the requested statement type over the form-filtered
// view subset for "annual"/"quarterly", or over the full TTM pipeline for
// "ttm".
func (c *Company) statementForPeriod(kind StatementType, period string, periods int) (*StatementResult, error) {
	key := companyStatementKey{kind: kind, period: period, periods: periods}
	if cached, ok := c.statementCache[key]; ok {
		return cached, nil
	}

	var result *StatementResult
	switch period {
	case "annual":
		stitcher := FromFilings(c.viewsByForm(isAnnualForm), true)
		stmt, err := stitcher.GetStatement(kind, periods, true, true, false)
		if err != nil {
			return nil, eris.Wrapf(err, "annual %s", kind)
		}
		result = &StatementResult{Statement: stmt}
	case "quarterly":
		stitcher := FromFilings(c.viewsByForm(isQuarterlyForm), true)
		stmt, err := stitcher.GetStatement(kind, periods, true, true, false)
		if err != nil {
			return nil, eris.Wrapf(err, "quarterly %s", kind)
		}
		result = &StatementResult{Statement: stmt}
	case "ttm":
		// The TTM statement's line-item shape (labels, concepts, levels,
		// ordering) is borrowed from the full stitched statement; its values
		// come from the quarterized, split-adjusted per-concept series.
		stmt, err := c.xbrls().GetStatement(kind, periods, true, true, false)
		if err != nil {
			return nil, eris.Wrapf(err, "%s (basis for ttm)", kind)
		}
		ttm, err := BuildTTMStatement(stmt, c.quarterizedSplitAdjustedFacts(), c.Name, c.CIK)
		if err != nil {
			return nil, eris.Wrapf(err, "ttm %s", kind)
		}
		result = &StatementResult{TTM: ttm}
	default:
		return nil, eris.New(fmt.Sprintf("unknown period %q: want annual, quarterly, or ttm", period))
	}

	c.statementCache[key] = result
	return result, nil
}

// IncomeStatement returns the income statement for the requested period
// basis ("annual", "quarterly", or "ttm") across up to periods columns.
func (c *Company) IncomeStatement(period string, periods int) (*StatementResult, error) {
	return c.statementForPeriod(IncomeStatement, period, periods)
}

// CashFlow returns the cash flow statement for the requested period basis,
// mirroring IncomeStatement.
func (c *Company) CashFlow(period string, periods int) (*StatementResult, error) {
	return c.statementForPeriod(CashFlowStatement, period, periods)
}

// BalanceSheet returns the stitched balance sheet across up to periods
// columns. Unlike IncomeStatement/CashFlow there is no TTM variant: a
// balance sheet is a point-in-time snapshot, and "trailing twelve months"
// has no meaning for it (§4.4.6).
func (c *Company) BalanceSheet(periods int) (*StitchedStatement, error) {
	if cached, ok := c.balanceCache[periods]; ok {
		return cached, nil
	}
	stmt, err := c.xbrls().GetStatement(BalanceSheet, periods, true, true, false)
	if err != nil {
		return nil, eris.Wrapf(err, "balance sheet")
	}
	c.balanceCache[periods] = stmt
	return stmt, nil
}
