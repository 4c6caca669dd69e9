package edgar

import (
	"sort"
	"time"

	"github.com/rotisserie/eris"
)

// maxQuarterGapDays is the largest allowed gap between two adjacent
// quarters' period_end dates before a four-quarter window is flagged as
// having a gap -- roughly 100 days, a bit more than one quarter, so a
// single late or skipped filing doesn't silently produce a TTM sum that
// mixes non-adjacent quarters.
const maxQuarterGapDays = 100

// TTMMetric is the result of a single rolling trailing-twelve-months
// calculation for one concept, per §4.4.5.
type TTMMetric struct {
	Value    float64
	Periods  []FinancialFact // the four contributing quarters, most recent first
	HasGaps  bool
	AsOf     string
}

func parseFactDate(dateStr string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", dateStr)
	return t, err == nil
}

func sortFactsByPeriodEndDesc(facts []FinancialFact) []FinancialFact {
	out := make([]FinancialFact, len(facts))
	copy(out, facts)
	sort.SliceStable(out, func(i, j int) bool { return out[i].PeriodEnd > out[j].PeriodEnd })
	return out
}

// latestFourQuarters selects the most recent quarter whose period_end is
// on or before asOf (or the globally most recent quarter when asOf is
// empty), plus the previous three by period_end order.
func latestFourQuarters(facts []FinancialFact, asOf string) ([]FinancialFact, bool) {
	sorted := sortFactsByPeriodEndDesc(facts)

	var eligible []FinancialFact
	for _, f := range sorted {
		if asOf != "" && f.PeriodEnd > asOf {
			continue
		}
		eligible = append(eligible, f)
	}

	if len(eligible) < 4 {
		return nil, false
	}
	return eligible[:4], true
}

func hasQuarterGap(quarters []FinancialFact) bool {
	for i := 0; i+1 < len(quarters); i++ {
		end, ok1 := parseFactDate(quarters[i].PeriodEnd)
		prevEnd, ok2 := parseFactDate(quarters[i+1].PeriodEnd)
		if !ok1 || !ok2 {
			continue
		}
		if int(end.Sub(prevEnd).Hours()/24) > maxQuarterGapDays {
			return true
		}
	}
	return false
}

// CalculateTTM computes the rolling four-quarter sum for one concept's
// already split-adjusted, quarterized facts. asOf (YYYY-MM-DD), if set,
// restricts the window to quarters ending on or before that date;
// otherwise the globally most recent four quarters are used.
func CalculateTTM(facts []FinancialFact, asOf string) (*TTMMetric, error) {
	quarters, ok := latestFourQuarters(facts, asOf)
	if !ok {
		concept := ""
		if len(facts) > 0 {
			concept = facts[0].Concept
		}
		return nil, &NoCompanyFactsFound{Concept: concept}
	}

	sum := 0.0
	for _, q := range quarters {
		if q.NumericValue != nil {
			sum += *q.NumericValue
		}
	}

	result := asOf
	if result == "" && len(quarters) > 0 {
		result = quarters[0].PeriodEnd
	}

	return &TTMMetric{
		Value:   sum,
		Periods: quarters,
		HasGaps: hasQuarterGap(quarters),
		AsOf:    result,
	}, nil
}

// TTMTrendPoint is one row of a calculate_ttm_trend series: the TTM value
// as of one quarter end.
type TTMTrendPoint struct {
	AsOfQuarter  string
	TTMValue     float64
	FiscalYear   string
	FiscalPeriod string
	AsOfDate     string
	HasGaps      bool
}

// CalculateTTMTrend computes rolling four-quarter sums at each quarter
// end going back up to `periods` quarters, returned newest-first per §5's
// ordering guarantee.
func CalculateTTMTrend(facts []FinancialFact, periods int) ([]TTMTrendPoint, error) {
	sorted := sortFactsByPeriodEndDesc(facts)
	if len(sorted) < 4 {
		return nil, &NoCompanyFactsFound{}
	}

	limit := len(sorted) - 3
	if periods > 0 && periods < limit {
		limit = periods
	}

	var trend []TTMTrendPoint
	for i := 0; i < limit; i++ {
		window := sorted[i : i+4]
		sum := 0.0
		for _, q := range window {
			if q.NumericValue != nil {
				sum += *q.NumericValue
			}
		}
		trend = append(trend, TTMTrendPoint{
			AsOfQuarter:  window[0].PeriodEnd,
			TTMValue:     sum,
			FiscalYear:   window[0].FiscalYear,
			FiscalPeriod: window[0].FiscalPeriod,
			AsOfDate:     window[0].PeriodEnd,
			HasGaps:      hasQuarterGap(window),
		})
	}

	return trend, nil
}

// CalculateEPSTTM computes trailing-twelve-month EPS, which §4.4.5 singles
// out as not a sum: TTM net income divided by the average of the four
// contributing quarters' weighted-average share counts. netIncomeFacts
// and sharesFacts must already be quarterized for the same concept-year
// space; shares facts are matched to the net income window by period_end.
func CalculateEPSTTM(netIncomeFacts, sharesFacts []FinancialFact, asOf string) (*TTMMetric, error) {
	niResult, err := CalculateTTM(netIncomeFacts, asOf)
	if err != nil {
		return nil, eris.Wrap(err, "computing TTM net income for EPS")
	}

	sharesByPeriodEnd := map[string]FinancialFact{}
	for _, f := range sharesFacts {
		sharesByPeriodEnd[f.PeriodEnd] = f
	}

	var shareSum float64
	var shareCount int
	for _, q := range niResult.Periods {
		if sf, ok := sharesByPeriodEnd[q.PeriodEnd]; ok && sf.NumericValue != nil {
			shareSum += *sf.NumericValue
			shareCount++
		}
	}
	if shareCount == 0 {
		return nil, &NoCompanyFactsFound{Concept: "weighted average shares"}
	}
	avgShares := shareSum / float64(shareCount)
	if avgShares == 0 {
		return nil, eris.New("average share count is zero")
	}

	return &TTMMetric{
		Value:   niResult.Value / avgShares,
		Periods: niResult.Periods,
		HasGaps: niResult.HasGaps,
		AsOf:    niResult.AsOf,
	}, nil
}
