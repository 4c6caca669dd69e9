package edgar

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// quarterMonthsThrough/quarterPrevLabel implement the fiscal-calendar
// bookkeeping the EPS weighted-average-share reconstruction in §4.4.4
// needs: how many months of the fiscal year a quarter's YTD disclosure
// covers, and which quarter's disclosure precedes it.
var quarterMonthsThrough = map[string]int{"Q1": 3, "Q2": 6, "Q3": 9, "Q4": 12}
var quarterPrevLabel = map[string]string{"Q2": "Q1", "Q3": "Q2", "Q4": "Q3"}

func numericOf(f FinancialFact) (float64, bool) {
	if f.NumericValue == nil {
		return 0, false
	}
	return *f.NumericValue, true
}

func addDays(dateStr string, days int) string {
	t, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return dateStr
	}
	return t.AddDate(0, 0, days).Format("2006-01-02")
}

func deriveQuarterFact(longer, shorter FinancialFact, quarterLabel, context string) FinancialFact {
	lv, _ := numericOf(longer)
	sv, _ := numericOf(shorter)
	val := lv - sv

	derived := longer
	derived.NumericValue = &val
	derived.Value = strconv.FormatFloat(val, 'f', -1, 64)
	derived.PeriodStart = addDays(shorter.PeriodEnd, 1)
	derived.PeriodEnd = longer.PeriodEnd
	derived.PeriodType = "duration"
	derived.FiscalPeriod = quarterLabel
	derived.CalculationContext = context
	return derived
}

// QuarterizeConcept implements §4.4.3's quarter derivation for a single
// concept's duration facts across one or more fiscal years: Q1 passes
// through untouched; Q2/Q3/Q4 are derived from the YTD aggregates when no
// already-discrete quarter fact exists for that slot. Facts for a fiscal
// year that already carries discrete Q1-Q4 (no YTD/FY tags at all) pass
// through unchanged -- the round-trip property from SPEC_FULL §8.
func QuarterizeConcept(facts []FinancialFact) []FinancialFact {
	byYear := map[string][]FinancialFact{}
	var years []string
	for _, f := range facts {
		if _, ok := byYear[f.FiscalYear]; !ok {
			years = append(years, f.FiscalYear)
		}
		byYear[f.FiscalYear] = append(byYear[f.FiscalYear], f)
	}
	sort.Strings(years)

	var out []FinancialFact
	for _, year := range years {
		out = append(out, quarterizeYear(byYear[year])...)
	}
	return out
}

func quarterizeYear(yearFacts []FinancialFact) []FinancialFact {
	byPeriod := map[string]FinancialFact{}
	for _, f := range yearFacts {
		if _, exists := byPeriod[f.FiscalPeriod]; !exists {
			byPeriod[f.FiscalPeriod] = f
		}
	}

	var out []FinancialFact

	if q1, ok := byPeriod["Q1"]; ok {
		out = append(out, q1)
	}

	if q2, ok := byPeriod["Q2"]; ok {
		out = append(out, q2)
	} else if ytd6, ok := byPeriod["YTD_6M"]; ok {
		if q1, ok2 := byPeriod["Q1"]; ok2 {
			if _, hasNum := numericOf(ytd6); hasNum {
				if _, hasNum2 := numericOf(q1); hasNum2 {
					d := deriveQuarterFact(ytd6, q1, "Q2", "derived_q2_from_YTD_6M_Q1")
					byPeriod["Q2"] = d
					out = append(out, d)
				}
			}
		}
	}

	if q3, ok := byPeriod["Q3"]; ok {
		out = append(out, q3)
	} else if ytd9, ok := byPeriod["YTD_9M"]; ok {
		if ytd6, ok2 := byPeriod["YTD_6M"]; ok2 {
			if _, hasNum := numericOf(ytd9); hasNum {
				if _, hasNum2 := numericOf(ytd6); hasNum2 {
					d := deriveQuarterFact(ytd9, ytd6, "Q3", "derived_q3_from_YTD_9M_YTD_6M")
					byPeriod["Q3"] = d
					out = append(out, d)
				}
			}
		}
	}

	if q4, ok := byPeriod["Q4"]; ok {
		out = append(out, q4)
	} else if fy, ok := byPeriod["FY"]; ok {
		if ytd9, ok2 := byPeriod["YTD_9M"]; ok2 {
			if _, hasNum := numericOf(fy); hasNum {
				if _, hasNum2 := numericOf(ytd9); hasNum2 {
					out = append(out, deriveQuarterFact(fy, ytd9, "Q4", "derived_q4_from_FY_YTD_9M"))
				}
			}
		} else if q1, ok1 := byPeriod["Q1"]; ok1 {
			if q2, ok2 := byPeriod["Q2"]; ok2 {
				if q3, ok3 := byPeriod["Q3"]; ok3 {
					fyv, fyOK := numericOf(fy)
					q1v, q1OK := numericOf(q1)
					q2v, q2OK := numericOf(q2)
					q3v, q3OK := numericOf(q3)
					if fyOK && q1OK && q2OK && q3OK {
						val := fyv - q1v - q2v - q3v
						derived := fy
						derived.NumericValue = &val
						derived.Value = strconv.FormatFloat(val, 'f', -1, 64)
						derived.PeriodStart = addDays(q3.PeriodEnd, 1)
						derived.PeriodEnd = fy.PeriodEnd
						derived.PeriodType = "duration"
						derived.FiscalPeriod = "Q4"
						derived.CalculationContext = "derived_q4_from_FY_Q1_Q2_Q3"
						out = append(out, derived)
					}
				}
			}
		}
	}

	return out
}

// epsSharesConcepts maps "basic"/"diluted" to the us-gaap weighted-average
// share concept and the EPS concept it feeds, so DeriveEPSFacts can
// produce both variants symmetrically.
var epsSharesConcepts = map[string]struct{ Shares, EPS string }{
	"basic":   {"us-gaap:WeightedAverageNumberOfSharesOutstandingBasic", "us-gaap:EarningsPerShareBasic"},
	"diluted": {"us-gaap:WeightedAverageNumberOfDilutedSharesOutstanding", "us-gaap:EarningsPerShareDiluted"},
}

func isNetIncomeConcept(concept string) bool {
	return strings.Contains(concept, "NetIncomeLoss") || strings.Contains(concept, "ProfitLoss")
}

// DeriveEPSFacts implements §4.4.4: for each fiscal quarter where a
// basic/diluted EPS fact is missing but net income and the matching
// weighted-average share count are available, derive one. facts must
// span a single entity (concept names are matched literally, not
// standardized) but may mix many concepts/years; EPS facts are derived
// per (fiscal_year, quarter, basic|diluted) and never overwrite a
// pre-existing EPS fact for that (period_end, fiscal_period).
func DeriveEPSFacts(facts []FinancialFact) []FinancialFact {
	byYear := map[string][]FinancialFact{}
	var years []string
	for _, f := range facts {
		if _, ok := byYear[f.FiscalYear]; !ok {
			years = append(years, f.FiscalYear)
		}
		byYear[f.FiscalYear] = append(byYear[f.FiscalYear], f)
	}
	sort.Strings(years)

	var out []FinancialFact
	for _, year := range years {
		out = append(out, deriveEPSForYear(byYear[year])...)
	}
	return out
}

func deriveEPSForYear(yearFacts []FinancialFact) []FinancialFact {
	var netIncomeFacts []FinancialFact
	sharesByVariantPeriod := map[string]map[string]FinancialFact{"basic": {}, "diluted": {}}
	existingEPS := map[string]bool{} // "variant|period_end|fiscal_period"

	for _, f := range yearFacts {
		switch {
		case isNetIncomeConcept(f.Concept):
			netIncomeFacts = append(netIncomeFacts, f)
		case strings.Contains(f.Concept, "WeightedAverageNumberOfSharesOutstandingBasic"):
			sharesByVariantPeriod["basic"][f.FiscalPeriod] = f
		case strings.Contains(f.Concept, "WeightedAverageNumberOfDilutedSharesOutstanding"):
			sharesByVariantPeriod["diluted"][f.FiscalPeriod] = f
		case strings.Contains(f.Concept, "EarningsPerShareBasic"):
			existingEPS["basic|"+f.PeriodEnd+"|"+f.FiscalPeriod] = true
		case strings.Contains(f.Concept, "EarningsPerShareDiluted"):
			existingEPS["diluted|"+f.PeriodEnd+"|"+f.FiscalPeriod] = true
		}
	}

	quarterlyNetIncome := map[string]FinancialFact{}
	for _, q := range QuarterizeConcept(netIncomeFacts) {
		quarterlyNetIncome[q.FiscalPeriod] = q
	}

	var out []FinancialFact
	for _, quarter := range []string{"Q1", "Q2", "Q3", "Q4"} {
		niFact, ok := quarterlyNetIncome[quarter]
		if !ok {
			continue
		}
		ni, ok := numericOf(niFact)
		if !ok {
			continue
		}

		for _, variant := range []string{"basic", "diluted"} {
			if existingEPS[variant+"|"+niFact.PeriodEnd+"|"+quarter] {
				continue
			}

			sharesN, ok := sharesByVariantPeriod[variant][quarter]
			if !ok {
				continue
			}
			avgN, ok := numericOf(sharesN)
			if !ok {
				continue
			}

			quarterShares := float64(quarterMonthsThrough[quarter]) * avgN
			if prevLabel, hasPrev := quarterPrevLabel[quarter]; hasPrev {
				if sharesP, ok := sharesByVariantPeriod[variant][prevLabel]; ok {
					if avgP, ok := numericOf(sharesP); ok {
						quarterShares -= float64(quarterMonthsThrough[prevLabel]) * avgP
					}
				}
			}
			if quarterShares <= 0 {
				continue
			}

			eps := ni / quarterShares
			concepts := epsSharesConcepts[variant]
			derived := niFact
			derived.Concept = concepts.EPS
			derived.Value = strconv.FormatFloat(eps, 'f', -1, 64)
			derived.NumericValue = &eps
			derived.Unit = "USD/shares"
			derived.CalculationContext = fmt.Sprintf("derived_eps_%s_%s", variant, strings.ToLower(quarter))
			out = append(out, derived)
		}
	}
	return out
}
