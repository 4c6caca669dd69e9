package edgar

import (
	"sort"
	"time"
)

// periodSelectionConfig holds the named duration ranges the period
// optimizer classifies filing periods into. Values mirror the day ranges
// EDGAR's own filers settle into in practice: a "quarterly" period is
// never exactly 91.25 days, so ranges rather than single targets are used.
type periodSelectionConfig struct {
	annualMin, annualMax       int
	quarterlyMin, quarterlyMax int
	q2ytdMin, q2ytdMax         int
	q3ytdMin, q3ytdMax         int

	targetAnnual, targetQuarterly, targetQ2YTD, targetQ3YTD int

	maxPeriodsDefault int
}

var defaultPeriodConfig = periodSelectionConfig{
	annualMin: 350, annualMax: 380, targetAnnual: 365,
	quarterlyMin: 80, quarterlyMax: 100, targetQuarterly: 90,
	q2ytdMin: 175, q2ytdMax: 190, targetQ2YTD: 180,
	q3ytdMin: 260, q3ytdMax: 285, targetQ3YTD: 270,
	maxPeriodsDefault: 8,
}

// rawPeriod is one reporting period as it appears in a single XBRL view's
// context set, before selection or metadata enrichment.
type rawPeriod struct {
	PeriodType  string // "instant" | "duration"
	Date        string // instant
	StartDate   string // duration
	EndDate     string // duration
	DurationDays int
}

// selectedPeriod is a rawPeriod enriched with the bookkeeping the stitcher
// needs to merge periods across many filings: which XBRL view it came
// from, a stable key, a display label, and the originating entity info.
type selectedPeriod struct {
	XBRLIndex    int
	PeriodKey    string
	PeriodLabel  string
	PeriodType   string
	StartDate    string
	EndDate      string
	Date         string
	DisplayDate  string
	FiscalPeriod string
	FiscalYear   string
	Entity       EntityInfo
}

func periodKeyFor(p rawPeriod) string {
	if p.PeriodType == "instant" {
		return "instant_" + p.Date
	}
	return "duration_" + p.StartDate + "_" + p.EndDate
}

func durationDaysOf(p rawPeriod) int {
	if p.DurationDays != 0 {
		return p.DurationDays
	}
	start, err1 := time.Parse("2006-01-02", p.StartDate)
	end, err2 := time.Parse("2006-01-02", p.EndDate)
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(end.Sub(start).Hours() / 24)
}

func filterByDurationRange(periods []rawPeriod, minDays, maxDays, targetDays int) []rawPeriod {
	var out []rawPeriod
	for _, p := range periods {
		d := durationDaysOf(p)
		if d >= minDays && d <= maxDays {
			p.DurationDays = d
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return abs(out[i].DurationDays-targetDays) < abs(out[j].DurationDays-targetDays)
	})
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// selectPeriodsForView runs the PeriodOptimizer's selection policy for one
// XBRL view: balance sheets take instant periods, income/cash-flow
// statements take duration periods, with fiscal-period-aware preference
// for the more complete duration when both a YTD and quarterly period are
// present for the same end date.
func selectPeriodsForView(statementType string, periods []rawPeriod, entity EntityInfo, cfg periodSelectionConfig) []rawPeriod {
	docEnd := entity.DocumentPeriodEndDate

	if statementType == "BalanceSheet" {
		var instants []rawPeriod
		for _, p := range periods {
			if p.PeriodType == "instant" {
				instants = append(instants, p)
			}
		}
		if docEnd != "" {
			for _, p := range instants {
				if p.Date == docEnd {
					return []rawPeriod{p}
				}
			}
			return nil // exact match required when document_period_end_date is known; no fuzzy fallback
		}
		sort.Slice(instants, func(i, j int) bool { return instants[i].Date > instants[j].Date })
		if len(instants) > 0 {
			return instants[:1]
		}
		return nil
	}

	var durations []rawPeriod
	for _, p := range periods {
		if p.PeriodType == "duration" {
			durations = append(durations, p)
		}
	}

	if docEnd != "" {
		var matching []rawPeriod
		for _, p := range durations {
			if p.EndDate == docEnd {
				matching = append(matching, p)
			}
		}
		if len(matching) == 0 {
			return nil
		}

		switch entity.FiscalPeriodFocus {
		case "FY", "":
			annual := filterByDurationRange(matching, cfg.annualMin, cfg.annualMax, cfg.targetAnnual)
			if len(annual) > 0 {
				return annual[:1]
			}
		case "Q1":
			quarterly := filterByDurationRange(matching, cfg.quarterlyMin, cfg.quarterlyMax, cfg.targetQuarterly)
			if len(quarterly) > 0 {
				return quarterly[:1]
			}
		case "Q2":
			ytd := filterByDurationRange(matching, cfg.q2ytdMin, cfg.q2ytdMax, cfg.targetQ2YTD)
			if len(ytd) > 0 {
				return ytd[:1] // prefer the more-complete YTD duration when both exist
			}
			quarterly := filterByDurationRange(matching, cfg.quarterlyMin, cfg.quarterlyMax, cfg.targetQuarterly)
			if len(quarterly) > 0 {
				return quarterly[:1]
			}
		case "Q3":
			ytd := filterByDurationRange(matching, cfg.q3ytdMin, cfg.q3ytdMax, cfg.targetQ3YTD)
			if len(ytd) > 0 {
				return ytd[:1]
			}
			quarterly := filterByDurationRange(matching, cfg.quarterlyMin, cfg.quarterlyMax, cfg.targetQuarterly)
			if len(quarterly) > 0 {
				return quarterly[:1]
			}
		case "Q4":
			annual := filterByDurationRange(matching, cfg.annualMin, cfg.annualMax, cfg.targetAnnual)
			if len(annual) > 0 {
				return annual[:1]
			}
		}
		return matching[:1]
	}

	// Fallback: no document_period_end_date known. Sort by end date
	// descending and take the first matching-duration period.
	sort.Slice(durations, func(i, j int) bool { return durations[i].EndDate > durations[j].EndDate })
	if len(durations) > 0 {
		return durations[:1]
	}
	return nil
}

// enrichPeriod augments a raw selected period with the display metadata
// the stitched output carries: an augmented label like "FY 2024" or
// "Q2 YTD 2024-06-30" derived from fiscal_period and duration_days.
func enrichPeriod(xbrlIndex int, p rawPeriod, entity EntityInfo) selectedPeriod {
	sp := selectedPeriod{
		XBRLIndex:    xbrlIndex,
		PeriodKey:    periodKeyFor(p),
		PeriodType:   p.PeriodType,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		Date:         p.Date,
		FiscalPeriod: entity.FiscalPeriodFocus,
		FiscalYear:   entity.FiscalYearFocus,
		Entity:       entity,
	}

	if p.PeriodType == "instant" {
		sp.DisplayDate = p.Date
		sp.PeriodLabel = p.Date
		return sp
	}

	sp.DisplayDate = p.EndDate
	duration := durationDaysOf(p)
	switch {
	case entity.FiscalPeriodFocus == "FY" || duration >= 350:
		sp.PeriodLabel = "FY " + sp.FiscalYear
	case duration >= 175 && duration <= 190:
		sp.PeriodLabel = "Q2 YTD " + p.EndDate
	case duration >= 260 && duration <= 285:
		sp.PeriodLabel = "Q3 YTD " + p.EndDate
	default:
		sp.PeriodLabel = entity.FiscalPeriodFocus + " " + p.EndDate
	}
	return sp
}

// dedupeAndSortPeriods removes duplicate periods (same type and same
// date(s); for durations BOTH start and end must match, so a quarterly
// Q2 and a Q2-YTD period sharing an end date are kept as distinct) and
// sorts newest-first, truncating to maxPeriods.
func dedupeAndSortPeriods(periods []selectedPeriod, maxPeriods int) []selectedPeriod {
	seen := map[string]bool{}
	var out []selectedPeriod
	for _, p := range periods {
		if seen[p.PeriodKey] {
			continue
		}
		seen[p.PeriodKey] = true
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisplayDate > out[j].DisplayDate
	})

	if maxPeriods > 0 && len(out) > maxPeriods {
		out = out[:maxPeriods]
	}
	return out
}

// DetermineOptimalPeriods runs the full PeriodOptimizer policy across a
// list of single-filing XBRL views (newest first) for one statement type,
// returning the deduplicated, sorted, enriched period set the stitcher
// should render.
func DetermineOptimalPeriods(views []*XBRL, statementType string, maxPeriods int) []selectedPeriod {
	if maxPeriods <= 0 {
		maxPeriods = defaultPeriodConfig.maxPeriodsDefault
	}

	var all []selectedPeriod
	for i, view := range views {
		if view == nil {
			continue // pre-XBRL era or failed parse: skip defensively
		}
		entity := ExtractEntityInfo(view)
		raw := rawPeriodsFromContexts(view)
		selected := selectPeriodsForView(statementType, raw, entity, defaultPeriodConfig)
		for _, p := range selected {
			all = append(all, enrichPeriod(i, p, entity))
		}
	}

	return dedupeAndSortPeriods(all, maxPeriods)
}

// rawPeriodsFromContexts extracts the distinct periods present among an
// XBRL view's contexts.
func rawPeriodsFromContexts(x *XBRL) []rawPeriod {
	seen := map[string]bool{}
	var out []rawPeriod
	for _, ctx := range x.Contexts {
		var p rawPeriod
		if ctx.Period.Instant != "" {
			p = rawPeriod{PeriodType: "instant", Date: ctx.Period.Instant}
		} else if ctx.Period.StartDate != "" && ctx.Period.EndDate != "" {
			p = rawPeriod{PeriodType: "duration", StartDate: ctx.Period.StartDate, EndDate: ctx.Period.EndDate}
		} else {
			continue
		}
		key := periodKeyFor(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}
