package edgar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// maxSplitLagDays rejects a StockSplitConversionRatio fact whose
	// filing postdates its own period_end by more than this: a ratio
	// fact tagged that stale in a later filing is a "historical echo"
	// (a comparative-period disclosure), not a fresh split announcement.
	maxSplitLagDays = 280
	// maxSplitDurationDays rejects a ratio fact spanning a period longer
	// than this: it is aggregating over a comparative period rather than
	// describing the split itself. A short window (e.g. the calendar
	// month the split happened in) is accepted.
	maxSplitDurationDays = 45
)

// Split is one detected stock split/reverse-split event: a conversion
// ratio effective as of a date.
type Split struct {
	Date  time.Time
	Ratio float64
}

// DetectSplits scans facts for StockSplitConversionRatio tags and applies
// SPEC_FULL §4.4.1's filters: stale historical echoes (filing_date far
// after period_end) and comparative-period aggregates (long durations)
// are rejected, and duplicate (year, ratio) pairs are collapsed. Accepted
// splits are returned sorted by date ascending.
func DetectSplits(facts []FinancialFact) []Split {
	type key struct {
		year  int
		ratio float64
	}
	seen := map[key]bool{}
	var out []Split

	for _, f := range facts {
		if !strings.Contains(f.Concept, "StockSplitConversionRatio") {
			continue
		}
		if f.NumericValue == nil || *f.NumericValue <= 0 {
			continue
		}
		if f.PeriodEnd == "" {
			continue
		}
		periodEnd, err := time.Parse("2006-01-02", f.PeriodEnd)
		if err != nil {
			continue
		}

		if f.FilingDate != "" {
			filingDate, err := time.Parse("2006-01-02", f.FilingDate)
			if err == nil {
				lag := int(filingDate.Sub(periodEnd).Hours() / 24)
				if lag > maxSplitLagDays {
					continue
				}
			}
		}

		if f.PeriodStart != "" {
			periodStart, err := time.Parse("2006-01-02", f.PeriodStart)
			if err == nil {
				duration := int(periodEnd.Sub(periodStart).Hours() / 24)
				if duration > maxSplitDurationDays {
					continue
				}
			}
		}

		k := key{year: periodEnd.Year(), ratio: *f.NumericValue}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, Split{Date: periodEnd, Ratio: *f.NumericValue})
	}

	sortSplitsByDate(out)
	return out
}

func sortSplitsByDate(splits []Split) {
	for i := 1; i < len(splits); i++ {
		for j := i; j > 0 && splits[j].Date.Before(splits[j-1].Date); j-- {
			splits[j], splits[j-1] = splits[j-1], splits[j]
		}
	}
}

// isPerShareUnit and isShareCountUnit classify a fact's unit/concept for
// split adjustment eligibility, per §4.4.2.
func isPerShareUnit(unit, concept string) bool {
	u, c := strings.ToLower(unit), strings.ToLower(concept)
	return strings.Contains(u, "/share") || strings.Contains(c, "earningspershare")
}

func isShareCountUnit(unit, concept string) bool {
	u := strings.ToLower(unit)
	return strings.Contains(u, "shares") && !isPerShareUnit(unit, concept)
}

// cumulativeSplitRatio computes the product of every split ratio whose
// date is strictly after the fact's period_end and which the fact's own
// filing predates (or whose filing_date is unknown) -- i.e. splits the
// fact was reported before the market had restated it for.
func cumulativeSplitRatio(f FinancialFact, splits []Split) float64 {
	periodEnd, err := time.Parse("2006-01-02", f.PeriodEnd)
	if err != nil {
		return 1.0
	}

	var filingDate time.Time
	haveFilingDate := false
	if f.FilingDate != "" {
		if d, err := time.Parse("2006-01-02", f.FilingDate); err == nil {
			filingDate = d
			haveFilingDate = true
		}
	}

	cumulative := 1.0
	for _, sp := range splits {
		if !sp.Date.After(periodEnd) {
			continue
		}
		if haveFilingDate && filingDate.After(sp.Date) {
			continue // fact's own filing already postdates (and thus already reflects) this split
		}
		cumulative *= sp.Ratio
	}
	return cumulative
}

// ApplySplitAdjustments clones every per-share or share-count fact whose
// value predates a later split, restating it to current share terms, per
// §4.4.2. Facts with no applicable split (cumulative ratio of exactly
// 1.0) or an invalid ratio (<= 0) are returned untouched -- this is what
// makes apply_split_adjustments(facts, []) an identity transform, the
// round-trip property in SPEC_FULL §8.
func ApplySplitAdjustments(facts []FinancialFact, splits []Split) []FinancialFact {
	out := make([]FinancialFact, len(facts))
	for i, f := range facts {
		out[i] = f

		if f.NumericValue == nil || f.PeriodEnd == "" {
			continue
		}
		perShare := isPerShareUnit(f.Unit, f.Concept)
		shareCount := isShareCountUnit(f.Unit, f.Concept)
		if !perShare && !shareCount {
			continue
		}

		ratio := cumulativeSplitRatio(f, splits)
		if ratio == 1.0 || ratio <= 0 {
			continue
		}

		var newVal float64
		if perShare {
			newVal = *f.NumericValue / ratio
		} else {
			newVal = *f.NumericValue * ratio
		}

		adjusted := f
		adjusted.NumericValue = &newVal
		adjusted.Value = strconv.FormatFloat(newVal, 'f', -1, 64)
		adjusted.CalculationContext = fmt.Sprintf("split_adj_ratio_%.2f", ratio)
		out[i] = adjusted
	}
	return out
}
