package transform

import (
	"slices"

	"github.com/revdot/revdot/pkg/history"
)

// PruneDanglingParents drops every parent id that does not resolve to a node
// in the store and returns the number of dropped references.
//
// Bounding the history window (since/until/range) cuts commits out of the
// log while their children still list them as parents; the gaps are expected
// and benign. No node is deleted, only edges. Run this before
// [history.Graph.DeriveChildren].
func PruneDanglingParents(g *history.Graph) int {
	gaps := 0
	for _, n := range g.Nodes() {
		kept := n.Parents[:0]
		for _, pid := range n.Parents {
			if g.Contains(pid) {
				kept = append(kept, pid)
			} else {
				gaps++
			}
		}
		n.Parents = kept
	}
	return gaps
}

// Warnf is the logging callback used by [PruneToRefs] to report chosen names
// that match no node.
type Warnf func(format string, args ...any)

// PruneToRefs reduces the graph to the ancestor closure of the chosen branch
// and tag names and returns the number of deleted nodes.
//
// Every node whose branch-ref set contains a chosen branch name, or whose
// tag-ref set contains a chosen tag name, seeds a traversal over parent
// edges; everything reached is kept, everything else is deleted and the
// survivors are reindexed. A name that matches nothing produces a warning
// via warnf and contributes no seeds. If the closure covers the whole graph
// nothing is deleted.
//
// The closure is ancestor-complete, so no survivor ever references a deleted
// parent. Backlinks need not be derived yet; run
// [history.Graph.DeriveChildren] afterwards.
func PruneToRefs(g *history.Graph, branches, tags []string, warnf Warnf) int {
	if len(branches) == 0 && len(tags) == 0 {
		return 0
	}
	if warnf == nil {
		warnf = func(string, ...any) {}
	}

	var seeds []*history.Node
	for _, b := range branches {
		seeds = appendSeeds(seeds, g, b, func(n *history.Node) bool {
			return slices.Contains(n.Branches, b)
		}, warnf, "branch")
	}
	for _, t := range tags {
		seeds = appendSeeds(seeds, g, t, func(n *history.Node) bool {
			return slices.Contains(n.Tags, t)
		}, warnf, "tag")
	}

	// Ancestor reachability closure over parent edges. Explicit stack:
	// long histories blow the goroutine stack under recursion.
	included := make(map[string]bool, g.Len())
	stack := make([]*history.Node, 0, len(seeds))
	stack = append(stack, seeds...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if included[n.ID] {
			continue
		}
		included[n.ID] = true
		for _, pid := range n.Parents {
			if p, ok := g.Node(pid); ok && !included[pid] {
				stack = append(stack, p)
			}
		}
	}

	if len(included) == g.Len() {
		return 0
	}
	return g.Remove(func(n *history.Node) bool { return !included[n.ID] })
}

// appendSeeds collects the nodes matching one chosen name, warning when the
// name is unknown.
func appendSeeds(seeds []*history.Node, g *history.Graph, name string, match func(*history.Node) bool, warnf Warnf, kind string) []*history.Node {
	found := false
	for _, n := range g.Nodes() {
		if match(n) {
			seeds = append(seeds, n)
			found = true
		}
	}
	if !found {
		warnf("chosen %s not found: %q", kind, name)
	}
	return seeds
}
