package edgar

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestBuildPresentationTree_ParentChild(t *testing.T) {
	nodes := []*presentationNode{
		{Concept: "opex", Label: "Operating Expenses", Level: 0, SemanticOrder: 300, OriginalIndex: 0},
		{Concept: "rd", Label: "Research and Development", Level: 1, SemanticOrder: 310, OriginalIndex: 1},
		{Concept: "sga", Label: "Selling General and Administrative", Level: 1, SemanticOrder: 320, OriginalIndex: 2},
		{Concept: "oi", Label: "Operating Income", Level: 0, SemanticOrder: 400, OriginalIndex: 3},
	}

	roots := buildPresentationTree(nodes)
	require.Len(t, roots, 2)
	require.Equal(t, "opex", roots[0].Concept)
	require.Len(t, roots[0].Children, 2)
	require.Equal(t, "oi", roots[1].Concept)

	flat := flattenPresentationTree(roots)
	var order []string
	for _, n := range flat {
		order = append(order, n.Concept)
	}
	require.Equal(t, []string{"opex", "rd", "sga", "oi"}, order)
}

// TestBuildPresentationTree_RevenueNeverParentsPerShare exercises §4.3.4's
// admission rule that a revenue-section node (pos < 100) can never become
// the parent of a per-share node (pos >= 900): even when levels would
// otherwise nest them, the per-share row is rejected and becomes its own
// root instead.
func TestBuildPresentationTree_RevenueNeverParentsPerShare(t *testing.T) {
	nodes := []*presentationNode{
		{Concept: "rev", Label: "Revenue", Level: 0, SemanticOrder: 0, OriginalIndex: 0},
		{Concept: "eps", Label: "EPS Basic", Level: 1, SemanticOrder: 950, OriginalIndex: 1},
	}

	roots := buildPresentationTree(nodes)
	require.Len(t, roots, 2, "EPS must not nest under Revenue despite its deeper level")
}

// TestBuildPresentationTree_Stable is the §8 "Stability" invariant: building
// and flattening the same input twice yields the same row order.
func TestBuildPresentationTree_Stable(t *testing.T) {
	build := func() []*presentationNode {
		return []*presentationNode{
			{Concept: "a", Label: "Revenue", Level: 0, SemanticOrder: 0, OriginalIndex: 0},
			{Concept: "b", Label: "Cost", Level: 0, SemanticOrder: 100, OriginalIndex: 1},
			{Concept: "c", Label: "Gross Profit", Level: 0, SemanticOrder: 200, OriginalIndex: 2},
		}
	}

	first := flattenPresentationTree(buildPresentationTree(build()))
	second := flattenPresentationTree(buildPresentationTree(build()))

	var firstConcepts, secondConcepts []string
	for _, n := range first {
		firstConcepts = append(firstConcepts, n.Concept)
	}
	for _, n := range second {
		secondConcepts = append(secondConcepts, n.Concept)
	}

	if diff := cmp.Diff(firstConcepts, secondConcepts); diff != "" {
		t.Errorf("presentation tree flatten order is not stable (-first +second):\n%s", diff)
	}
}
