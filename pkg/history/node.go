package history

import (
	"slices"
	"time"
)

// Node represents one commit in the history graph.
//
// Parents holds commit ids in log order; the first entry is the primary
// parent. A commit gains additional parents for every merge. Children is the
// derived reverse view and is only valid after [Graph.DeriveChildren].
//
// The zero value is not usable - ID must be set before adding to a Graph.
type Node struct {
	ID       string              // commit id (unique, immutable)
	Parents  []string            // parent commit ids, primary first
	Branches []string            // branch refs decorating this commit
	Tags     []string            // tag refs decorating this commit
	When     time.Time           // author/commit timestamp
	Labels   []string            // display label fields, in record order
	Vars     map[string][]string // user-defined variable captures

	// Children are derived backlinks: every node m with this node in
	// m.Parents. Rebuilt by Graph.DeriveChildren.
	Children []*Node

	// Chain is the squash bookkeeping stamped by transform.Squash.
	// The zero value means the node is not part of any chain.
	Chain Chain

	// Index is the node's current position in the canonical node list.
	// Graph.Remove reassigns it for all survivors after deletions.
	Index int
}

// IsMerge reports whether the node has more than one child. Merge commits
// are drawn with distinct attributes by the DOT serializer.
func (n *Node) IsMerge() bool { return len(n.Children) > 1 }

// IsSimple reports whether the node can participate in a squash chain:
// at most one parent, exactly one child, and no branch or tag refs.
func (n *Node) IsSimple() bool {
	return len(n.Parents) <= 1 &&
		len(n.Children) == 1 &&
		len(n.Branches) == 0 &&
		len(n.Tags) == 0
}

// HasRef reports whether name appears in the node's branch or tag refs.
func (n *Node) HasRef(name string) bool {
	return slices.Contains(n.Branches, name) || slices.Contains(n.Tags, name)
}

// AddVar appends a captured value to the named extraction variable.
func (n *Node) AddVar(name, value string) {
	if n.Vars == nil {
		n.Vars = make(map[string][]string)
	}
	n.Vars[name] = append(n.Vars[name], value)
}

// removeParent deletes every occurrence of id from the parent list.
func (n *Node) removeParent(id string) {
	n.Parents = slices.DeleteFunc(n.Parents, func(p string) bool { return p == id })
}

// removeChild deletes every occurrence of id from the child list.
func (n *Node) removeChild(id string) {
	n.Children = slices.DeleteFunc(n.Children, func(c *Node) bool { return c.ID == id })
}

// Chain records a node's membership in a squashed linear run.
//
// The zero value means unchained. Stamped members carry the ids of the run's
// boundary nodes and the hop count between them; head and tail stay visible
// while interior members are hidden behind a single replacement edge.
type Chain struct {
	Head string // id of the first node in the run
	Tail string // id of the last node in the run
	Size int    // hops from head to tail (run length - 1)
}

// Stamped reports whether the node belongs to a chain of two or more nodes.
func (c Chain) Stamped() bool { return c.Head != "" && c.Tail != "" && c.Size > 0 }

// IsHead reports whether the node with the given id is the chain head.
func (c Chain) IsHead(id string) bool { return c.Stamped() && c.Head == id }

// IsTail reports whether the node with the given id is the chain tail.
func (c Chain) IsTail(id string) bool { return c.Stamped() && c.Tail == id }

// Squashed reports whether the node is hidden as an individual vertex:
// part of a stamped chain but neither its head nor its tail.
func (n *Node) Squashed() bool {
	return n.Chain.Stamped() && !n.Chain.IsHead(n.ID) && !n.Chain.IsTail(n.ID)
}
