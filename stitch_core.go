package edgar

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// StitchPeriod is one column of a Stitched Statement: the period key and
// the display label the PeriodOptimizer assigned it ("FY 2024", "Q2 YTD
// 2024-06-30", ...).
type StitchPeriod struct {
	PeriodKey    string
	DisplayLabel string
	FiscalPeriod string
	FiscalYear   string
	FilingIndex  int
}

// StitchedLineItem is one row of a Stitched Statement, merged across
// every contributing filing.
type StitchedLineItem struct {
	Label           string
	Level           int
	IsAbstract      bool
	IsTotal         bool
	Concept         string
	StandardConcept string
	Values          map[string]Value
	Decimals        map[string]int
	HasValues       bool
}

// StitchedStatement is the XBRL Stitcher's output: an ordered period list
// and an ordered, concept-deduplicated line item list, per SPEC_FULL
// §4.3.5.
type StitchedStatement struct {
	StatementType StatementType
	Periods       []StitchPeriod
	StatementData []StitchedLineItem
}

// conceptMetadata tracks, for one underlying XBRL concept, the identity
// bookkeeping the stitcher needs across many filings: which display
// label ("concept key") currently represents it, its standardized
// identity if any, and which periods it has data for (needed both for
// the "strictly more recent" label-migration rule and the
// disjoint-period merge pass).
type conceptMetadata struct {
	Concept         string
	CurrentKey      string
	StandardConcept string
	IsTotal         bool
	contributedKeys map[string]bool // period keys with data, under CurrentKey
	mostRecentEnd   string          // latest period end/date contributing data, for migration comparisons
}

// XBRLS borrows multiple single-filing XBRL views transiently to stitch
// them into unified multi-period statements. It never mutates the views
// it is given; stitched output is computed on demand and cached by the
// (statement_type, max_periods, standardize, use_optimal_periods,
// include_dimensions) tuple, per SPEC_FULL §3's lifecycle note.
type XBRLS struct {
	views []*XBRLView // newest first; index i may be nil (pre-XBRL era / failed parse)

	cache map[stitchCacheKey]*StitchedStatement
}

type stitchCacheKey struct {
	statementType     StatementType
	maxPeriods        int
	standardize       bool
	useOptimalPeriods bool
	includeDimensions bool
}

// FromFilings builds an XBRLS over an ordered (newest-first) list of
// single-filing XBRL views for one entity. A nil entry is preserved as a
// placeholder (pre-XBRL era filings defensively skipped downstream, per
// §4.3.7) rather than dropped, so XBRLIndex bookkeeping in period
// selection stays aligned with the caller's original filing list.
//
// When filterAmendments is true, views whose form type ends in "/A"
// (10-K/A, 10-Q/A) are dropped: an amendment restates the same period an
// original filing already covers, and without fetching the amendment's
// own restated facts this core cannot tell what changed, so the safer
// default is to prefer the original.
func FromFilings(views []*XBRLView, filterAmendments bool) *XBRLS {
	out := make([]*XBRLView, 0, len(views))
	for _, v := range views {
		if filterAmendments && v != nil && strings.HasSuffix(v.FormType, "/A") {
			continue
		}
		out = append(out, v)
	}
	return &XBRLS{views: out, cache: map[stitchCacheKey]*StitchedStatement{}}
}

// GetStatement produces (or returns the cached) unified multi-period
// statement of the given type. maxPeriods <= 0 uses the PeriodOptimizer's
// default (8). includeDimensions is accepted for interface compatibility
// with §6.3 but this core's Statement view does not carry dimensional
// (segment) breakdowns, so it is a no-op until a dimension-aware fact
// source is wired in.
func (s *XBRLS) GetStatement(statementType StatementType, maxPeriods int, standardize, useOptimalPeriods, includeDimensions bool) (*StitchedStatement, error) {
	if s == nil {
		return nil, eris.New("nil XBRLS")
	}
	if maxPeriods <= 0 {
		maxPeriods = defaultPeriodConfig.maxPeriodsDefault
	}

	key := stitchCacheKey{statementType, maxPeriods, standardize, useOptimalPeriods, includeDimensions}
	if cached, ok := s.cache[key]; ok {
		return cached, nil
	}

	stmt, err := s.stitch(statementType, maxPeriods, standardize)
	if err != nil {
		return nil, eris.Wrapf(err, "stitching %s", statementType)
	}
	s.cache[key] = stmt
	return stmt, nil
}

func (s *XBRLS) rawXBRLViews() []*XBRL {
	out := make([]*XBRL, len(s.views))
	for i, v := range s.views {
		if v != nil {
			out[i] = v.XBRL
		}
	}
	return out
}

// stitch runs period selection, concept integration, the merge pass, and
// ordering (§4.3.1-§4.3.4) to produce one StitchedStatement.
func (s *XBRLS) stitch(statementType StatementType, maxPeriods int, standardize bool) (*StitchedStatement, error) {
	selected := DetermineOptimalPeriods(s.rawXBRLViews(), string(statementType), maxPeriods)
	if len(selected) == 0 {
		return &StitchedStatement{StatementType: statementType}, nil
	}

	selectedByKey := make(map[string]selectedPeriod, len(selected))
	for _, sp := range selected {
		selectedByKey[sp.PeriodKey] = sp
	}

	metaByConcept := map[string]*conceptMetadata{}
	var conceptOrder []string // first-seen order across filings, newest-first

	dataByKey := map[string]map[string]Value{}   // display key -> period key -> value
	decimalsByKey := map[string]map[string]int{} // display key -> period key -> decimals

	referenceOrder := map[string]int{} // concept -> index in the newest filing's presentation order

	for i, view := range s.views {
		if view == nil {
			continue // pre-XBRL era or failed parse: a missing view is not fatal
		}
		stmt := view.Statement(statementType)
		if stmt == nil {
			continue
		}

		for idx, item := range stmt.Data {
			if item.IsAbstract && len(item.Values) == 0 {
				continue
			}
			if hasDimensionSuffix(item.Label) {
				continue
			}

			if i == 0 {
				if _, seen := referenceOrder[item.Concept]; !seen {
					referenceOrder[item.Concept] = idx
				}
			}

			meta, exists := metaByConcept[item.Concept]
			if !exists {
				meta = &conceptMetadata{
					Concept:         item.Concept,
					CurrentKey:      item.Label,
					StandardConcept: item.StandardConcept,
					IsTotal:         item.IsTotal,
					contributedKeys: map[string]bool{},
				}
				metaByConcept[item.Concept] = meta
				conceptOrder = append(conceptOrder, item.Concept)
			} else if item.Label != meta.CurrentKey {
				// A later-visited filing (older, since we iterate
				// newest-first) labels this concept differently. Migrate
				// only if that filing's periods are strictly more recent
				// than what's already on file for it; otherwise keep the
				// label already on file.
				newMaxEnd := maxSelectedEndForItem(item, selectedByKey, i)
				if newMaxEnd != "" && newMaxEnd > meta.mostRecentEnd {
					migrateConceptKey(dataByKey, decimalsByKey, meta.CurrentKey, item.Label)
					meta.CurrentKey = item.Label
				}
			}

			if standardize {
				if stdLabel, standardConcept, ok := MapForStatement(string(statementType), item.Concept); ok {
					// A later filing's non-null standard_concept updates the
					// metadata even when its data periods are older: it is
					// the identity classification, not a data value.
					meta.StandardConcept = standardConcept
					if !exists {
						meta.CurrentKey = stdLabel
					}
				}
			}

			key := meta.CurrentKey
			if _, ok := dataByKey[key]; !ok {
				dataByKey[key] = map[string]Value{}
				decimalsByKey[key] = map[string]int{}
			}

			for periodKey, val := range item.Values {
				sp, ok := selectedByKey[periodKey]
				if !ok || sp.XBRLIndex != i {
					continue // not one of this view's selected periods
				}
				dataByKey[key][periodKey] = val
				decimalsByKey[key][periodKey] = item.Decimals[periodKey]
				meta.contributedKeys[periodKey] = true
				if sp.DisplayDate > meta.mostRecentEnd {
					meta.mostRecentEnd = sp.DisplayDate
				}
			}

		}
	}

	mergeStandardizedDuplicates(metaByConcept, conceptOrder, dataByKey, decimalsByKey)

	// Build the final concept-key list (post-merge, deduplicated) in
	// first-seen order.
	seenKeys := map[string]bool{}
	var keys []string
	keyToConcept := map[string]string{}
	keyStandardConcept := map[string]string{}
	keyIsTotal := map[string]bool{}
	for _, c := range conceptOrder {
		meta := metaByConcept[c]
		if meta == nil || seenKeys[meta.CurrentKey] {
			continue
		}
		if len(dataByKey[meta.CurrentKey]) == 0 {
			continue
		}
		seenKeys[meta.CurrentKey] = true
		keys = append(keys, meta.CurrentKey)
		keyToConcept[meta.CurrentKey] = meta.Concept
		keyStandardConcept[meta.CurrentKey] = meta.StandardConcept
		keyIsTotal[meta.CurrentKey] = meta.IsTotal
	}

	labels := map[string]string{}
	refOrderByConceptID := map[string]int{}
	for _, k := range keys {
		labels[keyToConcept[k]] = k
		if idx, ok := referenceOrder[keyToConcept[k]]; ok {
			refOrderByConceptID[keyToConcept[k]] = idx
		}
	}

	conceptIDs := make([]string, len(keys))
	for i, k := range keys {
		conceptIDs[i] = keyToConcept[k]
	}

	positions := orderConcepts(statementType, conceptIDs, labels, refOrderByConceptID)
	posByConceptID := map[string]float64{}
	for _, p := range positions {
		posByConceptID[p.Concept] = p.Pos
	}

	nodes := make([]*presentationNode, len(keys))
	for i, k := range keys {
		conceptID := keyToConcept[k]
		nodes[i] = &presentationNode{
			Concept:       conceptID,
			Label:         k,
			Level:         0, // no presentation-linkbase depth is available to this core; see DESIGN.md
			SemanticOrder: posByConceptID[conceptID],
			OriginalIndex: i,
		}
	}
	flat := flattenPresentationTree(buildPresentationTree(nodes))

	result := &StitchedStatement{StatementType: statementType}
	for _, sp := range selected {
		result.Periods = append(result.Periods, StitchPeriod{
			PeriodKey:    sp.PeriodKey,
			DisplayLabel: sp.PeriodLabel,
			FiscalPeriod: sp.FiscalPeriod,
			FiscalYear:   sp.FiscalYear,
			FilingIndex:  sp.XBRLIndex,
		})
	}

	for _, n := range flat {
		key := n.Label
		values := dataByKey[key]
		result.StatementData = append(result.StatementData, StitchedLineItem{
			Label:           key,
			Level:           n.Level,
			IsTotal:         keyIsTotal[key],
			Concept:         keyToConcept[key],
			StandardConcept: keyStandardConcept[key],
			Values:          values,
			Decimals:        decimalsByKey[key],
			HasValues:       len(values) > 0,
		})
	}

	return result, nil
}

// maxSelectedEndForItem finds the most recent selected-period display
// date among the periods item actually has data for and that were
// selected from view index viewIndex -- used to decide whether a
// relabeling filing is "strictly more recent" than what's on file.
func maxSelectedEndForItem(item LineItem, selectedByKey map[string]selectedPeriod, viewIndex int) string {
	max := ""
	for periodKey := range item.Values {
		sp, ok := selectedByKey[periodKey]
		if !ok || sp.XBRLIndex != viewIndex {
			continue
		}
		if sp.DisplayDate > max {
			max = sp.DisplayDate
		}
	}
	return max
}

// migrateConceptKey moves all period data from an old display key to a
// new one (the concept was relabeled by a more recent filing).
func migrateConceptKey(dataByKey map[string]map[string]Value, decimalsByKey map[string]map[string]int, oldKey, newKey string) {
	if oldKey == newKey {
		return
	}
	oldData, ok := dataByKey[oldKey]
	if !ok {
		return
	}
	if _, ok := dataByKey[newKey]; !ok {
		dataByKey[newKey] = map[string]Value{}
		decimalsByKey[newKey] = map[string]int{}
	}
	for k, v := range oldData {
		dataByKey[newKey][k] = v
	}
	for k, v := range decimalsByKey[oldKey] {
		decimalsByKey[newKey][k] = v
	}
	delete(dataByKey, oldKey)
	delete(decimalsByKey, oldKey)
}

// mergeStandardizedDuplicates implements §4.3.2's merge pass: if two
// different concept_keys ended up mapped to the same non-null
// standard_concept and their period sets are disjoint, merge them (union
// the data into one key, keep the newer contributor's label, drop the
// other). Overlapping periods are left alone -- they are "genuinely
// different items that happen to share a standardized name" and §4.3.7
// says duplicated standard_concepts with overlapping periods are
// preserved, not merged.
func mergeStandardizedDuplicates(metaByConcept map[string]*conceptMetadata, conceptOrder []string, dataByKey map[string]map[string]Value, decimalsByKey map[string]map[string]int) {
	byStandard := map[string][]*conceptMetadata{}
	for _, c := range conceptOrder {
		meta := metaByConcept[c]
		if meta == nil || meta.StandardConcept == "" {
			continue
		}
		byStandard[meta.StandardConcept] = append(byStandard[meta.StandardConcept], meta)
	}

	for _, metas := range byStandard {
		if len(metas) < 2 {
			continue
		}
		// Sort newest-contributor-first so the surviving label is the most
		// recent one, matching "use the newest contributor's label".
		sort.SliceStable(metas, func(i, j int) bool { return metas[i].mostRecentEnd > metas[j].mostRecentEnd })

		survivor := metas[0]
		for _, other := range metas[1:] {
			if survivor.CurrentKey == other.CurrentKey {
				continue
			}
			if periodSetsDisjoint(dataByKey[survivor.CurrentKey], dataByKey[other.CurrentKey]) {
				for k, v := range dataByKey[other.CurrentKey] {
					if dataByKey[survivor.CurrentKey] == nil {
						dataByKey[survivor.CurrentKey] = map[string]Value{}
					}
					dataByKey[survivor.CurrentKey][k] = v
				}
				for k, v := range decimalsByKey[other.CurrentKey] {
					if decimalsByKey[survivor.CurrentKey] == nil {
						decimalsByKey[survivor.CurrentKey] = map[string]int{}
					}
					decimalsByKey[survivor.CurrentKey][k] = v
				}
				delete(dataByKey, other.CurrentKey)
				delete(decimalsByKey, other.CurrentKey)
				other.CurrentKey = survivor.CurrentKey
			}
			// else: overlapping periods, leave as separate rows.
		}
	}
}

func periodSetsDisjoint(a, b map[string]Value) bool {
	for k := range a {
		if _, ok := b[k]; ok {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer for debugging/log output.
func (s StatementType) String() string { return string(s) }
