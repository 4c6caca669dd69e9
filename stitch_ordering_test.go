package edgar

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// TestOrderConcepts_S5 is SPEC_FULL §8 scenario S5: Revenue before Net
// Income before the four per-share rows, and the per-share rows sit
// contiguously with no other row between them.
func TestOrderConcepts_S5(t *testing.T) {
	concepts := []string{
		"us-gaap:EarningsPerShareBasic",
		"us-gaap:EarningsPerShareDiluted",
		"us-gaap:WeightedAverageNumberOfSharesOutstandingBasic",
		"us-gaap:WeightedAverageNumberOfDilutedSharesOutstanding",
		"us-gaap:Revenues",
		"us-gaap:NetIncomeLoss",
	}
	labels := map[string]string{
		"us-gaap:EarningsPerShareBasic":                            "EPS Basic",
		"us-gaap:EarningsPerShareDiluted":                          "EPS Diluted",
		"us-gaap:WeightedAverageNumberOfSharesOutstandingBasic":    "Shares Outstanding Basic",
		"us-gaap:WeightedAverageNumberOfDilutedSharesOutstanding":  "Shares Outstanding Diluted",
		"us-gaap:Revenues":                                        "Revenue",
		"us-gaap:NetIncomeLoss":                                    "Net Income",
	}

	positions := orderConcepts(IncomeStatement, concepts, labels, nil)
	sort.SliceStable(positions, func(i, j int) bool { return positions[i].Pos < positions[j].Pos })

	var order []string
	for _, p := range positions {
		order = append(order, p.Concept)
	}

	revIdx := indexOf(order, "us-gaap:Revenues")
	niIdx := indexOf(order, "us-gaap:NetIncomeLoss")
	require.GreaterOrEqual(t, niIdx, 0)
	require.Less(t, revIdx, niIdx, "Revenue must come before Net Income")

	perShareConcepts := map[string]bool{
		"us-gaap:EarningsPerShareBasic":                           true,
		"us-gaap:EarningsPerShareDiluted":                         true,
		"us-gaap:WeightedAverageNumberOfSharesOutstandingBasic":   true,
		"us-gaap:WeightedAverageNumberOfDilutedSharesOutstanding": true,
	}

	var firstPerShare, lastPerShare = -1, -1
	for i, c := range order {
		if perShareConcepts[c] {
			if firstPerShare == -1 {
				firstPerShare = i
			}
			lastPerShare = i
		}
	}
	require.Equal(t, lastPerShare-firstPerShare+1, 4, "the four per-share rows must be contiguous")
	require.Less(t, niIdx, firstPerShare, "Net Income must come before all per-share rows")
}

func indexOf(order []string, concept string) int {
	for i, c := range order {
		if c == concept {
			return i
		}
	}
	return -1
}

func TestOrderConcepts_Deterministic(t *testing.T) {
	concepts := []string{"us-gaap:Revenues", "us-gaap:CostOfRevenue", "us-gaap:GrossProfit"}
	labels := map[string]string{
		"us-gaap:Revenues":      "Revenue",
		"us-gaap:CostOfRevenue": "Cost of Revenue",
		"us-gaap:GrossProfit":   "Gross Profit",
	}

	first := orderConcepts(IncomeStatement, concepts, labels, nil)
	second := orderConcepts(IncomeStatement, concepts, labels, nil)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("orderConcepts is not deterministic across identical calls (-first +second):\n%s", diff)
	}
}

func TestLabelSimilarity_JaccardThresholds(t *testing.T) {
	// Exact same token set -> 1.0
	require.InDelta(t, 1.0, labelSimilarity("Net Income", "Net Income"), 1e-9)
	// Disjoint token sets -> 0.0
	require.InDelta(t, 0.0, labelSimilarity("Net Income", "Total Assets"), 1e-9)
	// Partial overlap is between 0 and 1.
	sim := labelSimilarity("Net Income Loss", "Net Loss")
	require.Greater(t, sim, 0.0)
	require.Less(t, sim, 1.0)
}
