package edgar

import "strings"

// orderingSection is one named section of a statement's canonical
// ordering template: a base sort position and the ordered XBRL concepts
// that belong in it.
type orderingSection struct {
	Name         string
	BasePosition int
	Concepts     []string
}

// orderingTemplate is the full per-statement-type canonical ordering: a
// priority list of sections, each contributing base_position + index
// within the section as a concept's template sort key.
type orderingTemplate []orderingSection

// incomeStatementTemplate mirrors SPEC_FULL/§4.3.3's fixed section bases:
// revenue, cost, gross_profit, operating_expenses, operating_income,
// non_operating, pretax_income, tax, net_income, per_share.
var incomeStatementTemplate = orderingTemplate{
	{Name: "revenue", BasePosition: 0, Concepts: []string{
		"us-gaap:Revenues", "us-gaap:RevenueFromContractWithCustomerExcludingAssessedTax",
		"us-gaap:RevenueFromContractWithCustomerIncludingAssessedTax", "us-gaap:SalesRevenueNet",
	}},
	{Name: "cost", BasePosition: 100, Concepts: []string{
		"us-gaap:CostOfRevenue", "us-gaap:CostOfGoodsAndServicesSold", "us-gaap:CostOfGoodsSold",
	}},
	{Name: "gross_profit", BasePosition: 200, Concepts: []string{"us-gaap:GrossProfit"}},
	{Name: "operating_expenses", BasePosition: 300, Concepts: []string{
		"us-gaap:ResearchAndDevelopmentExpense", "us-gaap:SellingGeneralAndAdministrativeExpense",
		"us-gaap:GeneralAndAdministrativeExpense", "us-gaap:SellingAndMarketingExpense",
		"us-gaap:OperatingExpenses",
	}},
	{Name: "operating_income", BasePosition: 400, Concepts: []string{"us-gaap:OperatingIncomeLoss"}},
	{Name: "non_operating", BasePosition: 500, Concepts: []string{
		"us-gaap:InterestExpense", "us-gaap:InterestIncomeOther",
		"us-gaap:NonoperatingIncomeExpense", "us-gaap:OtherNonoperatingIncomeExpense",
	}},
	{Name: "pretax_income", BasePosition: 600, Concepts: []string{
		"us-gaap:IncomeLossFromContinuingOperationsBeforeIncomeTaxesExtraordinaryItemsNoncontrollingInterest",
		"us-gaap:IncomeLossFromContinuingOperationsBeforeIncomeTaxesMinorityInterestAndIncomeLossFromEquityMethodInvestments",
	}},
	{Name: "tax", BasePosition: 700, Concepts: []string{"us-gaap:IncomeTaxExpenseBenefit"}},
	{Name: "net_income", BasePosition: 800, Concepts: []string{
		"us-gaap:NetIncomeLoss", "us-gaap:ProfitLoss",
	}},
	{Name: "per_share", BasePosition: 900, Concepts: []string{
		"us-gaap:EarningsPerShareBasic", "us-gaap:EarningsPerShareDiluted",
		"us-gaap:WeightedAverageNumberOfSharesOutstandingBasic",
		"us-gaap:WeightedAverageNumberOfDilutedSharesOutstanding",
	}},
}

var balanceSheetTemplate = orderingTemplate{
	{Name: "current_assets", BasePosition: 0, Concepts: []string{
		"us-gaap:CashAndCashEquivalentsAtCarryingValue", "us-gaap:ShortTermInvestments",
		"us-gaap:AccountsReceivableNetCurrent", "us-gaap:InventoryNet",
		"us-gaap:AssetsCurrent",
	}},
	{Name: "noncurrent_assets", BasePosition: 100, Concepts: []string{
		"us-gaap:PropertyPlantAndEquipmentNet", "us-gaap:Goodwill",
		"us-gaap:IntangibleAssetsNetExcludingGoodwill",
	}},
	{Name: "total_assets", BasePosition: 200, Concepts: []string{"us-gaap:Assets"}},
	{Name: "current_liabilities", BasePosition: 300, Concepts: []string{
		"us-gaap:AccountsPayableCurrent", "us-gaap:LiabilitiesCurrent",
	}},
	{Name: "noncurrent_liabilities", BasePosition: 400, Concepts: []string{"us-gaap:LongTermDebtNoncurrent"}},
	{Name: "total_liabilities", BasePosition: 500, Concepts: []string{"us-gaap:Liabilities"}},
	{Name: "equity", BasePosition: 600, Concepts: []string{
		"us-gaap:StockholdersEquity", "us-gaap:LiabilitiesAndStockholdersEquity",
	}},
}

var cashFlowTemplate = orderingTemplate{
	{Name: "operating", BasePosition: 0, Concepts: []string{
		"us-gaap:NetIncomeLoss", "us-gaap:DepreciationDepletionAndAmortization",
		"us-gaap:ShareBasedCompensation", "us-gaap:NetCashProvidedByUsedInOperatingActivities",
	}},
	{Name: "investing", BasePosition: 100, Concepts: []string{
		"us-gaap:PaymentsToAcquirePropertyPlantAndEquipment",
		"us-gaap:NetCashProvidedByUsedInInvestingActivities",
	}},
	{Name: "financing", BasePosition: 200, Concepts: []string{
		"us-gaap:NetCashProvidedByUsedInFinancingActivities",
	}},
	{Name: "net_change", BasePosition: 300, Concepts: []string{
		"us-gaap:CashCashEquivalentsRestrictedCashAndRestrictedCashEquivalentsPeriodIncreaseDecreaseIncludingExchangeRateEffect",
	}},
}

func templateForStatementType(st StatementType) orderingTemplate {
	switch st {
	case IncomeStatement, ComprehensiveIncome:
		return incomeStatementTemplate
	case BalanceSheet:
		return balanceSheetTemplate
	case CashFlowStatement:
		return cashFlowTemplate
	default:
		return nil
	}
}

// normalizeConcept lowercases, replaces ':' with '_', and aliases the
// common us-gaap namespace spellings so "us-gaap:Revenues",
// "usgaap:Revenues" and "gaap:Revenues" compare equal, per §4.3.3's
// "Concepts... are compared after normalization".
func normalizeConcept(concept string) string {
	c := strings.ToLower(concept)
	c = strings.ReplaceAll(c, ":", "_")
	for _, alias := range []string{"us_gaap_", "us-gaap_", "usgaap_", "gaap_"} {
		if strings.HasPrefix(c, alias) {
			return "us_gaap_" + strings.TrimPrefix(c, alias)
		}
	}
	return c
}

// templatePosition looks up a concept's section/base_position + index
// within the section. ok is false if no template section claims this
// concept.
func templatePosition(tmpl orderingTemplate, concept string) (section string, position float64, ok bool) {
	norm := normalizeConcept(concept)
	for _, sec := range tmpl {
		for i, c := range sec.Concepts {
			if normalizeConcept(c) == norm {
				return sec.Name, float64(sec.BasePosition + i), true
			}
		}
	}
	return "", 0, false
}

// templatePositionFuzzy is the template-match fallback: when no concept
// matches, try a label similarity match (threshold 0.7) against the
// template's concepts, using each template concept's trailing local name
// as its "label" proxy.
func templatePositionFuzzy(tmpl orderingTemplate, label string) (section string, position float64, ok bool) {
	best := 0.0
	bestSection := ""
	bestPos := 0.0
	for _, sec := range tmpl {
		for i, c := range sec.Concepts {
			sim := labelSimilarity(localName(c), label)
			if sim > best {
				best = sim
				bestSection = sec.Name
				bestPos = float64(sec.BasePosition + i)
			}
		}
	}
	if best >= 0.7 {
		return bestSection, bestPos, true
	}
	return "", 0, false
}

func localName(concept string) string {
	if idx := strings.Index(concept, ":"); idx >= 0 {
		return concept[idx+1:]
	}
	return concept
}

// tokenize splits a concept or label into a lowercase word-set for
// Jaccard similarity and parent/child "word-subset" tests. CamelCase
// concept local names (e.g. "NetIncomeLoss") are split on case
// transitions; human labels are split on whitespace/punctuation.
func tokenize(s string) map[string]bool {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == ' ' || r == '_' || r == '-' || r == ',' || r == '(' || r == ')' || r == ':' || r == '/':
			flush()
		case r >= 'A' && r <= 'Z' && i > 0 && !(runes[i-1] >= 'A' && runes[i-1] <= 'Z'):
			flush()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()

	set := map[string]bool{}
	for _, w := range words {
		if w != "" {
			set[w] = true
		}
	}
	return set
}

// labelSimilarity is the Jaccard token-similarity measure §4.3.3/§9 call
// for both fuzzy template matching (threshold 0.7) and semantic
// positioning's "most similar concept" fallback (threshold 0.5). The
// exact thresholds are retained as specified; this measure (word-set
// intersection over union) is the open-question decision recorded in
// DESIGN.md.
func labelSimilarity(a, b string) float64 {
	setA, setB := tokenize(a), tokenize(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	for w := range setA {
		if setB[w] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// isWordSubset reports whether every token of a appears in b's token set
// -- the "parent-concept (whose word-set is a subset of this concept's)"
// rule used by semantic positioning.
func isWordSubset(a, b map[string]bool) bool {
	if len(a) == 0 {
		return false
	}
	for w := range a {
		if !b[w] {
			return false
		}
	}
	return true
}

// semanticSection classifies a concept into one of the income-statement
// sections by keyword rules on its local name/label, per §4.3.3's
// semantic-positioning fallback.
func semanticSection(label string) (section string, ok bool) {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "per share") || strings.Contains(lower, "pershare") ||
		strings.Contains(lower, "shares outstanding") || strings.Contains(lower, "weighted average"):
		return "per_share", true
	case strings.Contains(lower, "tax"):
		return "tax", true
	case strings.Contains(lower, "net income") || strings.Contains(lower, "net loss") || strings.Contains(lower, "profit"):
		return "net_income", true
	case strings.Contains(lower, "interest") || strings.Contains(lower, "nonoperating") || strings.Contains(lower, "non-operating"):
		return "non_operating", true
	case strings.Contains(lower, "operating income") || strings.Contains(lower, "operating loss"):
		return "operating_income", true
	case strings.Contains(lower, "research and development") || strings.Contains(lower, "general and administrative") ||
		strings.Contains(lower, "selling") || strings.Contains(lower, "operating expense"):
		return "operating_expenses", true
	case strings.Contains(lower, "gross profit"):
		return "gross_profit", true
	case strings.Contains(lower, "cost of"):
		return "cost", true
	case strings.Contains(lower, "revenue") && !strings.Contains(lower, "cost"):
		return "revenue", true
	}
	return "", false
}

func sectionBasePosition(tmpl orderingTemplate, name string) (int, bool) {
	for _, sec := range tmpl {
		if sec.Name == name {
			return sec.BasePosition, true
		}
	}
	return 0, false
}

// concretePosition is the final, pre-consolidation sort key the ordering
// pipeline assigns to one concept, along with which template section (if
// any) it belongs to -- consolidation needs the section to keep its
// members contiguous.
type concretePosition struct {
	Concept string
	Label   string
	Section string // "" if not template/semantically classified
	Pos     float64
}

// orderConcepts runs the four ordering strategies in priority order
// (template match, reference order, semantic positioning with its
// parent/most-similar/999 fallback chain, then section consolidation) and
// returns every concept with its final sort position. The returned slice
// is in placement order; it is not sorted by position.
//
// referenceOrder maps concept -> index within the most-recent
// contributing filing's own presentation order (strategy 2's source).
func orderConcepts(statementType StatementType, concepts []string, labels map[string]string, referenceOrder map[string]int) []concretePosition {
	tmpl := templateForStatementType(statementType)

	positions := make([]concretePosition, 0, len(concepts))
	placed := map[string]bool{}

	// Strategy 1: template matching (exact, then fuzzy label fallback).
	for _, c := range concepts {
		if section, pos, ok := templatePosition(tmpl, c); ok {
			positions = append(positions, concretePosition{Concept: c, Label: labels[c], Section: section, Pos: pos})
			placed[c] = true
			continue
		}
		if section, pos, ok := templatePositionFuzzy(tmpl, labels[c]); ok {
			positions = append(positions, concretePosition{Concept: c, Label: labels[c], Section: section, Pos: pos})
			placed[c] = true
		}
	}

	// Strategy 2: reference ordering, scaled into an unused band (2000+)
	// so it never collides with template base positions, then refined by
	// strategy 3/4 below if a semantic section can be found too.
	var remaining []string
	for _, c := range concepts {
		if !placed[c] {
			remaining = append(remaining, c)
		}
	}

	for _, c := range remaining {
		if idx, ok := referenceOrder[c]; ok {
			section, semOK := semanticSection(labels[c])
			pos := 2000.0 + float64(idx)
			if semOK {
				if base, baseOK := sectionBasePosition(tmpl, section); baseOK {
					pos = float64(base) + 50 + float64(idx%50)
				}
			}
			positions = append(positions, concretePosition{Concept: c, Label: labels[c], Section: section, Pos: pos})
			placed[c] = true
		}
	}

	// Strategy 3: semantic positioning for everything still unplaced.
	var unplaced []string
	for _, c := range concepts {
		if !placed[c] {
			unplaced = append(unplaced, c)
		}
	}

	for _, c := range unplaced {
		if section, ok := semanticSection(labels[c]); ok {
			base, _ := sectionBasePosition(tmpl, section)
			positions = append(positions, concretePosition{Concept: c, Label: labels[c], Section: section, Pos: float64(base) + 90})
			placed[c] = true
		}
	}

	// Parent-concept / most-similar-concept / fallback-999 chain for
	// anything semantic positioning couldn't classify.
	var leftover []string
	for _, c := range concepts {
		if !placed[c] {
			leftover = append(leftover, c)
		}
	}

	for _, c := range leftover {
		placedParent := false
		childTokens := tokenize(labels[c])
		for _, p := range positions {
			if isWordSubset(tokenize(p.Label), childTokens) {
				positions = append(positions, concretePosition{Concept: c, Label: labels[c], Section: p.Section, Pos: p.Pos + 0.5})
				placedParent = true
				break
			}
		}
		if placedParent {
			placed[c] = true
			continue
		}

		bestSim := 0.0
		var bestMatch *concretePosition
		for i := range positions {
			sim := labelSimilarity(positions[i].Label, labels[c])
			if sim > bestSim {
				bestSim = sim
				bestMatch = &positions[i]
			}
		}
		if bestSim >= 0.5 && bestMatch != nil {
			positions = append(positions, concretePosition{Concept: c, Label: labels[c], Section: bestMatch.Section, Pos: bestMatch.Pos + 0.5})
			placed[c] = true
			continue
		}

		positions = append(positions, concretePosition{Concept: c, Label: labels[c], Pos: 999})
		placed[c] = true
	}

	return consolidateSections(tmpl, positions)
}

// consolidateSections is strategy 4: for each template section, force
// its members to sit contiguously at the section's base position,
// regardless of what strategies 2/3 assigned them. per_share is a
// "critical section" pinned at 950 so no later semantic placement can
// fragment it (a per-share row landing at, say, 850 because it was
// reference-ordered near net_income would otherwise split the per-share
// block).
func consolidateSections(tmpl orderingTemplate, positions []concretePosition) []concretePosition {
	bySection := map[string][]int{} // section name -> indices into positions, in current relative order
	for i, p := range positions {
		if p.Section != "" {
			bySection[p.Section] = append(bySection[p.Section], i)
		}
	}

	// Stable order within a section by current Pos.
	for _, idxs := range bySection {
		sortFloatIndices(positions, idxs)
	}

	for _, sec := range tmpl {
		idxs, ok := bySection[sec.Name]
		if !ok {
			continue
		}
		base := float64(sec.BasePosition)
		if sec.Name == "per_share" {
			base = 950
		}
		for j, idx := range idxs {
			positions[idx].Pos = base + float64(j)*0.01
		}
	}

	return positions
}

func sortFloatIndices(positions []concretePosition, idxs []int) {
	for i := 1; i < len(idxs); i++ {
		for j := i; j > 0 && positions[idxs[j]].Pos < positions[idxs[j-1]].Pos; j-- {
			idxs[j], idxs[j-1] = idxs[j-1], idxs[j]
		}
	}
}
