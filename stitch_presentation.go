package edgar

import "strings"

// presentationNode is one row of the virtual presentation tree: a concept
// carrying both its reference filing's own hierarchy level (so parent
// candidates can be found at all) and the flat ordering pipeline's
// semantic_order (so siblings sort the way §4.3.3 already decided, while
// §4.3.4 only fixes up parent/child relationships).
type presentationNode struct {
	Concept       string
	Label         string
	Level         int
	SemanticOrder float64
	OriginalIndex int
	Section       string

	Children []*presentationNode
}

// buildPresentationTree reconstructs parent/child relationships from a
// reference filing's own presentation order (levels as that filing's
// XBRL presentation linkbase assigned them) using a stack of potential
// parents, admitting a child only when hierarchicalCompatible holds; a
// rejected child becomes a new root instead of being forced under an
// incompatible ancestor. Node order on input must be the reference
// filing's presentation order (so "stack of potential parents" walks
// correctly); positions (for sibling sort) come from orderConcepts.
func buildPresentationTree(nodes []*presentationNode) []*presentationNode {
	var roots []*presentationNode
	var stack []*presentationNode // invariant: stack[i].Level < stack[i+1].Level

	for _, n := range nodes {
		for len(stack) > 0 && stack[len(stack)-1].Level >= n.Level {
			stack = stack[:len(stack)-1]
		}

		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			if hierarchicalCompatible(parent, n) {
				parent.Children = append(parent.Children, n)
				stack = append(stack, n)
				continue
			}
		}

		roots = append(roots, n)
		stack = append(stack, n)
	}

	sortSiblingsRecursive(roots)
	return roots
}

// hierarchicalCompatible implements §4.3.4's admission rules. A node is
// rejected as a child of an otherwise-eligible parent under any of these
// conditions, in which case it becomes a new root (a tree, never a cycle
// -- corrupt input that would force one is rejected, not coerced).
func hierarchicalCompatible(parent, child *presentationNode) bool {
	pPos, cPos := parent.SemanticOrder, child.SemanticOrder

	if pPos < 900 && cPos < 900 {
		if abs(int(pPos)-int(cPos)) > 200 {
			return false
		}
	}

	if cPos >= 900 && pPos < 800 {
		return false
	}

	if cPos >= 500 && cPos < 600 && pPos < 500 {
		return false // non-operating never child of operating
	}

	if pPos < 100 && cPos >= 900 {
		return false // revenue never parent of per-share
	}

	childLabel := strings.ToLower(child.Label)
	parentLabel := strings.ToLower(parent.Label)
	isPerShareLooking := strings.Contains(childLabel, "per share") || strings.Contains(childLabel, "eps") ||
		strings.Contains(childLabel, "shares outstanding")
	if isPerShareLooking && !(strings.Contains(parentLabel, "per share") || strings.Contains(parentLabel, "shares")) {
		return false
	}

	if strings.Contains(childLabel, "interest expense") && !strings.Contains(parentLabel, "interest") {
		return false
	}

	return true
}

func sortSiblingsRecursive(nodes []*presentationNode) {
	sortNodesBySemanticOrder(nodes)
	for _, n := range nodes {
		sortSiblingsRecursive(n.Children)
	}
}

// sortNodesBySemanticOrder sorts by (semantic_order, original_index),
// a stable insertion sort: the node lists here are always small (a single
// statement's line items), and a manual sort avoids importing sort for a
// handful of elements inside a recursive call already on the hot path.
func sortNodesBySemanticOrder(nodes []*presentationNode) {
	for i := 1; i < len(nodes); i++ {
		for j := i; j > 0 && nodeLess(nodes[j], nodes[j-1]); j-- {
			nodes[j], nodes[j-1] = nodes[j-1], nodes[j]
		}
	}
}

func nodeLess(a, b *presentationNode) bool {
	if a.SemanticOrder != b.SemanticOrder {
		return a.SemanticOrder < b.SemanticOrder
	}
	return a.OriginalIndex < b.OriginalIndex
}

// flattenPresentationTree walks the tree depth-first (parent, then each
// child's subtree in sibling order) to produce the statement's final row
// order. Output is deterministic given deterministic input node order and
// positions -- it never depends on map iteration order, because callers
// build the node slice from an already-ordered concept list.
func flattenPresentationTree(roots []*presentationNode) []*presentationNode {
	var out []*presentationNode
	var walk func(n *presentationNode)
	walk = func(n *presentationNode) {
		out = append(out, n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}
