package edgar

import "strings"

// StitchedFact is one (concept, period) data point surfaced by a
// StitchedFactQuery, generalizing xbrl_financials.go's single-filing
// FactQuery over the stitcher's multi-period, multi-concept output.
type StitchedFact struct {
	Concept         string
	StandardConcept string
	Label           string
	PeriodKey       string
	DisplayLabel    string
	FiscalPeriod    string
	FiscalYear      string
	FilingIndex     int
	Value           *float64
	Decimals        int
}

// StitchedFactQuery is a fluent query/transform builder over one or more
// stitched statements, per SPEC_FULL §4.3.6: filter by standardized
// concept, original label, fiscal period, or filing index; transform values;
// restrict to concepts present across a minimum number of periods or
// every period; pivot to a concept x period_end grid.
type StitchedFactQuery struct {
	periods []StitchPeriod
	facts   []StitchedFact
	err     error
}

// Query builds a StitchedFactQuery across the requested statement types
// (deduplicating periods seen in more than one, e.g. a concept present on
// both the income statement and cash flow statement's "Net Income" row).
func (s *XBRLS) Query(statementTypes []StatementType, maxPeriods int, standardize bool) *StitchedFactQuery {
	q := &StitchedFactQuery{}
	seenPeriods := map[string]bool{}

	for _, st := range statementTypes {
		stmt, err := s.GetStatement(st, maxPeriods, standardize, true, false)
		if err != nil {
			q.err = err
			continue
		}
		for _, p := range stmt.Periods {
			if !seenPeriods[p.PeriodKey] {
				seenPeriods[p.PeriodKey] = true
				q.periods = append(q.periods, p)
			}
		}

		periodByKey := map[string]StitchPeriod{}
		for _, p := range stmt.Periods {
			periodByKey[p.PeriodKey] = p
		}

		for _, item := range stmt.StatementData {
			for periodKey, v := range item.Values {
				p, ok := periodByKey[periodKey]
				if !ok {
					continue
				}
				q.facts = append(q.facts, StitchedFact{
					Concept:         item.Concept,
					StandardConcept: item.StandardConcept,
					Label:           item.Label,
					PeriodKey:       periodKey,
					DisplayLabel:    p.DisplayLabel,
					FiscalPeriod:    p.FiscalPeriod,
					FiscalYear:      p.FiscalYear,
					FilingIndex:     p.FilingIndex,
					Value:           v.NumericValue,
					Decimals:        item.Decimals[periodKey],
				})
			}
		}
	}

	return q
}

// ByStandardConcept filters to facts whose cross-company standard_concept
// exactly matches one of names.
func (q *StitchedFactQuery) ByStandardConcept(names ...string) *StitchedFactQuery {
	set := map[string]bool{}
	for _, n := range names {
		set[n] = true
	}
	return q.filter(func(f StitchedFact) bool { return set[f.StandardConcept] })
}

// ByLabel filters to facts whose original (company-specific) label
// contains substr, case-insensitively.
func (q *StitchedFactQuery) ByLabel(substr string) *StitchedFactQuery {
	lower := strings.ToLower(substr)
	return q.filter(func(f StitchedFact) bool { return strings.Contains(strings.ToLower(f.Label), lower) })
}

// ByFiscalPeriod filters to facts whose column is tagged with the given
// fiscal period ("FY", "Q1".."Q4").
func (q *StitchedFactQuery) ByFiscalPeriod(fiscalPeriod string) *StitchedFactQuery {
	return q.filter(func(f StitchedFact) bool { return f.FiscalPeriod == fiscalPeriod })
}

// ByFilingIndex restricts to facts whose period was selected from the
// filing at this index in the original (newest-first) filings list.
func (q *StitchedFactQuery) ByFilingIndex(idx int) *StitchedFactQuery {
	return q.filter(func(f StitchedFact) bool { return f.FilingIndex == idx })
}

func (q *StitchedFactQuery) filter(pred func(StitchedFact) bool) *StitchedFactQuery {
	out := &StitchedFactQuery{periods: q.periods, err: q.err}
	for _, f := range q.facts {
		if pred(f) {
			out.facts = append(out.facts, f)
		}
	}
	return out
}

// Transform applies an arithmetic transform to every fact's value (e.g.
// scaling to millions, or computing a ratio against a constant); facts
// with no numeric value are left untouched.
func (q *StitchedFactQuery) Transform(fn func(float64) float64) *StitchedFactQuery {
	out := &StitchedFactQuery{periods: q.periods, err: q.err}
	out.facts = make([]StitchedFact, len(q.facts))
	for i, f := range q.facts {
		if f.Value != nil {
			v := fn(*f.Value)
			f.Value = &v
		}
		out.facts[i] = f
	}
	return out
}

// AcrossPeriods restricts to concepts present in at least k distinct
// periods.
func (q *StitchedFactQuery) AcrossPeriods(k int) *StitchedFactQuery {
	counts := map[string]map[string]bool{}
	for _, f := range q.facts {
		if counts[f.Concept] == nil {
			counts[f.Concept] = map[string]bool{}
		}
		counts[f.Concept][f.PeriodKey] = true
	}
	return q.filter(func(f StitchedFact) bool { return len(counts[f.Concept]) >= k })
}

// CompletePeriodsOnly restricts to concepts present in every period this
// query currently covers.
func (q *StitchedFactQuery) CompletePeriodsOnly() *StitchedFactQuery {
	return q.AcrossPeriods(len(q.periods))
}

// AggregateByDimension sums fact values sharing the same (concept,
// period) after grouping by an externally supplied dimension key
// function. This core's Statement view carries no XBRL dimensional
// (segment) members (§1's Non-goals scope out full taxonomy handling, and
// the XBRL parser in xbrl.go does not extract context segments beyond
// `Entity.Segment`'s raw string), and StitchedFact has no segment field,
// so dimKey derives the group key from the fact's own fields; a constant
// dimKey degenerates this into a plain concept/period sum, which is the
// common case.
func (q *StitchedFactQuery) AggregateByDimension(dimKey func(StitchedFact) string) []StitchedFact {
	type groupKey struct{ concept, period, dim string }
	sums := map[groupKey]*StitchedFact{}
	var order []groupKey

	for _, f := range q.facts {
		k := groupKey{f.Concept, f.PeriodKey, dimKey(f)}
		agg, ok := sums[k]
		if !ok {
			copyF := f
			copyF.Value = nil
			sums[k] = &copyF
			order = append(order, k)
			agg = sums[k]
		}
		if f.Value != nil {
			if agg.Value == nil {
				v := 0.0
				agg.Value = &v
			}
			*agg.Value += *f.Value
		}
	}

	out := make([]StitchedFact, 0, len(order))
	for _, k := range order {
		out = append(out, *sums[k])
	}
	return out
}

// Execute returns the facts this query currently selects.
func (q *StitchedFactQuery) Execute() ([]StitchedFact, error) {
	if q.err != nil {
		return nil, q.err
	}
	return q.facts, nil
}

// DataFrame is a minimal concept x period_end grid: Columns are period
// keys in the order StitchedStatement.Periods presented them; each Row
// carries one concept's values aligned to those columns (nil where the
// concept has no value for that period). This stands in for the
// pandas-DataFrame pivot the spec describes -- DataFrame conveniences
// themselves are an explicit Non-goal, but the grid shape they'd be built
// from is this query's job to produce.
type DataFrame struct {
	Columns []string // period keys
	Labels  []string // display labels for Columns, parallel to Columns
	Rows    []DataFrameRow
}

// DataFrameRow is one concept's row in a DataFrame.
type DataFrameRow struct {
	Concept string
	Label   string
	Values  []*float64 // parallel to DataFrame.Columns
}

// ToDataFrame pivots the current selection into a concept x period_end
// grid, suitable for trend analysis.
func (q *StitchedFactQuery) ToDataFrame() *DataFrame {
	df := &DataFrame{}
	colIndex := map[string]int{}
	for _, p := range q.periods {
		colIndex[p.PeriodKey] = len(df.Columns)
		df.Columns = append(df.Columns, p.PeriodKey)
		df.Labels = append(df.Labels, p.DisplayLabel)
	}

	rowIndex := map[string]int{}
	for _, f := range q.facts {
		ci, ok := colIndex[f.PeriodKey]
		if !ok {
			continue
		}
		ri, ok := rowIndex[f.Concept]
		if !ok {
			ri = len(df.Rows)
			rowIndex[f.Concept] = ri
			df.Rows = append(df.Rows, DataFrameRow{
				Concept: f.Concept,
				Label:   f.Label,
				Values:  make([]*float64, len(df.Columns)),
			})
		}
		df.Rows[ri].Values[ci] = f.Value
	}

	return df
}

// ToTrendDataFrame is ToDataFrame with columns ordered oldest-first,
// matching the conventional left-to-right trend-chart reading order
// (stitched output itself is kept newest-first per §5's ordering
// guarantee; trend presentation is the one place that's reversed).
func (q *StitchedFactQuery) ToTrendDataFrame() *DataFrame {
	df := q.ToDataFrame()
	reverseColumns(df)
	return df
}

func reverseColumns(df *DataFrame) {
	n := len(df.Columns)
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		df.Columns[i], df.Columns[j] = df.Columns[j], df.Columns[i]
		df.Labels[i], df.Labels[j] = df.Labels[j], df.Labels[i]
	}
	for r := range df.Rows {
		vals := df.Rows[r].Values
		for i, j := 0, len(vals)-1; i < j; i, j = i+1, j-1 {
			vals[i], vals[j] = vals[j], vals[i]
		}
	}
}
