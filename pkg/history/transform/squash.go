package transform

import (
	"github.com/revdot/revdot/pkg/history"
)

// Squash stamps every maximal run of simple commits with its chain
// boundaries and returns the number of nodes hidden by the contraction.
//
// A node is simple when it has at most one parent, exactly one child, and no
// branch or tag refs. For each simple node the pass walks to the run's head
// (toward parents) and tail (toward children), then stamps every member with
// Chain{Head, Tail, Size}, where Size is the hop count from head to tail.
// Runs of a single node are left unstamped. Interior members report
// Squashed() true and disappear as individual vertices; the serializer draws
// one replacement edge from head to tail labeled with the size.
//
// Adjacency is never edited, only Chain metadata, so the pass is idempotent:
// re-running it reproduces identical stamps.
func Squash(g *history.Graph) int {
	// Group runs by head so each chain is stamped exactly once.
	heads := make(map[string]*history.Node)
	for _, n := range g.Nodes() {
		if !n.IsSimple() {
			continue
		}
		head := chainHead(g, n)
		heads[head.ID] = head
	}

	hidden := 0
	for _, head := range heads {
		members := []*history.Node{head}
		for cur := head; ; {
			next := cur.Children[0]
			if !next.IsSimple() {
				break
			}
			members = append(members, next)
			cur = next
		}
		size := len(members) - 1
		if size == 0 {
			continue
		}
		tail := members[len(members)-1]
		for _, m := range members {
			m.Chain = history.Chain{Head: head.ID, Tail: tail.ID, Size: size}
			if m.Squashed() {
				hidden++
			}
		}
	}
	return hidden
}

// chainHead walks toward parents while the predecessor is simple.
// n must itself be simple.
func chainHead(g *history.Graph, n *history.Node) *history.Node {
	head := n
	for len(head.Parents) == 1 {
		p, ok := g.Node(head.Parents[0])
		if !ok || !p.IsSimple() {
			break
		}
		head = p
	}
	return head
}
