package history

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInvalidNodeID is returned by [Graph.Add] when the commit id is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("commit id must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.Add] when a node with the
	// same commit id already exists in the store.
	ErrDuplicateNodeID = errors.New("duplicate commit id")

	// ErrDanglingParent is returned by [Graph.DeriveChildren] when a parent
	// id references a node absent from the store. After date-pruning this
	// must never happen; hitting it indicates a corrupted graph.
	ErrDanglingParent = errors.New("parent id not in store")

	// ErrIndexDrift is returned by [Graph.Validate] when a node's Index
	// disagrees with its position in the canonical list.
	ErrIndexDrift = errors.New("node index out of sync")

	// ErrInconsistentBacklinks is returned by [Graph.Validate] when the
	// derived child lists disagree with the parent lists.
	ErrInconsistentBacklinks = errors.New("children inconsistent with parents")
)

// Graph is the canonical store for commit nodes within one pipeline
// invocation. It keeps the ordered node list, an id lookup map, and the
// variable-usage index in sync.
//
// The zero value is not usable - use New to create a valid Graph.
// Graph is not safe for concurrent use; the pipeline mutates it from
// exactly one stage at a time.
type Graph struct {
	nodes  []*Node
	byID   map[string]*Node
	varUse map[string][]string // variable name -> ids of nodes carrying values
}

// New creates an empty commit graph.
func New() *Graph {
	return &Graph{
		byID:   make(map[string]*Node),
		varUse: make(map[string][]string),
	}
}

// Add appends a node to the store and assigns its Index.
// Returns ErrInvalidNodeID for an empty id or ErrDuplicateNodeID if the id
// is already present.
func (g *Graph) Add(n *Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.byID[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	n.Index = len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = n
	return nil
}

// Node returns the node with the given commit id and true, or nil and false
// if it is not in the store.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Contains reports whether a commit id is present in the store.
func (g *Graph) Contains(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// At returns the node at position i in the canonical list.
func (g *Graph) At(i int) *Node { return g.nodes[i] }

// Len returns the number of nodes in the store.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns the nodes in canonical order. The slice is a copy but the
// node pointers are live - mutations affect the graph.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// RecordVar notes that the node with the given id captured a value for the
// named extraction variable. The usage index powers the post-parse summary.
func (g *Graph) RecordVar(name, id string) {
	g.varUse[name] = append(g.varUse[name], id)
}

// VarUsage returns the variable-usage index: variable name to the ids of
// nodes that captured at least one value, in capture order.
func (g *Graph) VarUsage() map[string][]string { return g.varUse }

// DeriveChildren rebuilds the child backlinks from the parent lists and
// returns the number of parent edges. Any parent id absent from the store
// yields ErrDanglingParent: run the date prune first when the history window
// was bounded.
func (g *Graph) DeriveChildren() (int, error) {
	for _, n := range g.nodes {
		n.Children = nil
	}
	edges := 0
	for _, n := range g.nodes {
		for _, pid := range n.Parents {
			p, ok := g.byID[pid]
			if !ok {
				return 0, fmt.Errorf("%w: %s referenced by %s", ErrDanglingParent, pid, n.ID)
			}
			p.Children = append(p.Children, n)
			edges++
		}
	}
	return edges, nil
}

// EdgeCount returns the number of parent edges currently in the store.
func (g *Graph) EdgeCount() int {
	edges := 0
	for _, n := range g.nodes {
		edges += len(n.Parents)
	}
	return edges
}

// Remove deletes every node for which drop returns true and returns the
// number of deleted nodes.
//
// Both adjacency directions are updated within this single step: a deleted
// node is unlinked from the child lists of its surviving parents and from
// the parent lists of its surviving children. Survivors are reindexed to
// their new positions 0..N-1.
func (g *Graph) Remove(drop func(*Node) bool) int {
	removed := 0
	kept := g.nodes[:0]
	for _, n := range g.nodes {
		if !drop(n) {
			kept = append(kept, n)
			continue
		}
		for _, pid := range n.Parents {
			if p, ok := g.byID[pid]; ok && !drop(p) {
				p.removeChild(n.ID)
			}
		}
		for _, c := range n.Children {
			if !drop(c) {
				c.removeParent(n.ID)
			}
		}
		delete(g.byID, n.ID)
		removed++
	}
	g.nodes = kept
	g.reindex()
	return removed
}

// reindex reassigns every node's Index to its list position.
func (g *Graph) reindex() {
	for i, n := range g.nodes {
		n.Index = i
	}
}

// IDsByDate returns all commit ids sorted ascending by timestamp.
// Ties keep canonical store order (the sort is stable).
func (g *Graph) IDsByDate() []string {
	ids := make([]string, len(g.nodes))
	byDate := make([]*Node, len(g.nodes))
	copy(byDate, g.nodes)
	sort.SliceStable(byDate, func(i, j int) bool {
		return byDate[i].When.Before(byDate[j].When)
	})
	for i, n := range byDate {
		ids[i] = n.ID
	}
	return ids
}

// Validate checks store integrity and returns nil if valid.
// It verifies three invariants:
//
//  1. Every parent id resolves to a node in the store.
//  2. The derived child lists agree with the parent lists in both directions.
//  3. Every node's Index matches its position in the canonical list.
//
// Use this after pruning or before handing the graph to a serializer;
// a non-nil result indicates an internal defect, not bad input.
func (g *Graph) Validate() error {
	for i, n := range g.nodes {
		if n.Index != i {
			return fmt.Errorf("%w: %s has index %d at position %d", ErrIndexDrift, n.ID, n.Index, i)
		}
		for _, pid := range n.Parents {
			p, ok := g.byID[pid]
			if !ok {
				return fmt.Errorf("%w: %s referenced by %s", ErrDanglingParent, pid, n.ID)
			}
			if !containsNode(p.Children, n.ID) {
				return fmt.Errorf("%w: %s missing from children of %s", ErrInconsistentBacklinks, n.ID, pid)
			}
		}
		for _, c := range n.Children {
			if !containsID(c.Parents, n.ID) {
				return fmt.Errorf("%w: %s missing from parents of %s", ErrInconsistentBacklinks, n.ID, c.ID)
			}
		}
	}
	return nil
}

func containsNode(nodes []*Node, id string) bool {
	for _, n := range nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

func containsID(ids []string, id string) bool {
	for _, s := range ids {
		if s == id {
			return true
		}
	}
	return false
}
