package transform

import (
	"fmt"
	"testing"
	"time"

	"github.com/revdot/revdot/pkg/history"
)

// nodeSpec describes one commit for test graph construction.
type nodeSpec struct {
	id       string
	parents  []string
	branches []string
	tags     []string
}

// buildGraph creates a graph from specs and derives children. Dangling
// parents are allowed; they are skipped during derivation by pruning first.
func buildGraph(t *testing.T, specs []nodeSpec) *history.Graph {
	t.Helper()
	g := history.New()
	for i, s := range specs {
		n := &history.Node{
			ID:       s.id,
			Parents:  s.parents,
			Branches: s.branches,
			Tags:     s.tags,
			When:     time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
		}
		if err := g.Add(n); err != nil {
			t.Fatalf("Add(%s) error: %v", s.id, err)
		}
	}
	PruneDanglingParents(g)
	if _, err := g.DeriveChildren(); err != nil {
		t.Fatalf("DeriveChildren error: %v", err)
	}
	return g
}

func ids(g *history.Graph) []string {
	out := make([]string, 0, g.Len())
	for _, n := range g.Nodes() {
		out = append(out, n.ID)
	}
	return out
}

func TestPruneDanglingParents(t *testing.T) {
	// A bounded window kept b and c but cut their ancestor a.
	g := history.New()
	g.Add(&history.Node{ID: "b", Parents: []string{"a"}})
	g.Add(&history.Node{ID: "c", Parents: []string{"b", "a"}})

	gaps := PruneDanglingParents(g)
	if gaps != 2 {
		t.Errorf("PruneDanglingParents() = %d, want 2", gaps)
	}

	b, _ := g.Node("b")
	if len(b.Parents) != 0 {
		t.Errorf("b has %d parents, want 0", len(b.Parents))
	}
	c, _ := g.Node("c")
	if len(c.Parents) != 1 || c.Parents[0] != "b" {
		t.Errorf("c.Parents = %v, want [b]", c.Parents)
	}

	// No node is ever deleted, only edges.
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}

	if _, err := g.DeriveChildren(); err != nil {
		t.Fatalf("DeriveChildren after prune: %v", err)
	}
}

func TestPruneDanglingParentsNoGaps(t *testing.T) {
	g := buildGraph(t, []nodeSpec{
		{id: "a"},
		{id: "b", parents: []string{"a"}},
	})
	if gaps := PruneDanglingParents(g); gaps != 0 {
		t.Errorf("PruneDanglingParents() = %d, want 0", gaps)
	}
}

func TestPruneToRefs(t *testing.T) {
	// a is shared; b sits on main, c and d on a feature branch.
	//
	//   a <- b         (main)
	//   a <- c <- d    (feature)
	g := buildGraph(t, []nodeSpec{
		{id: "a"},
		{id: "b", parents: []string{"a"}, branches: []string{"main"}},
		{id: "c", parents: []string{"a"}},
		{id: "d", parents: []string{"c"}, branches: []string{"feature"}},
	})

	removed := PruneToRefs(g, []string{"main"}, nil, nil)
	if removed != 2 {
		t.Fatalf("PruneToRefs() = %d, want 2", removed)
	}

	want := map[string]bool{"a": true, "b": true}
	for _, id := range ids(g) {
		if !want[id] {
			t.Errorf("node %s survived, want only a and b", id)
		}
	}
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate after prune: %v", err)
	}
}

func TestPruneToRefsAncestorClosure(t *testing.T) {
	// Choosing the tag on d must keep the whole ancestor chain a..d and the
	// second merge parent m.
	g := buildGraph(t, []nodeSpec{
		{id: "a"},
		{id: "m", parents: []string{"a"}},
		{id: "b", parents: []string{"a"}},
		{id: "c", parents: []string{"b", "m"}},
		{id: "d", parents: []string{"c"}, tags: []string{"tag: v1.0"}},
		{id: "x", parents: []string{"a"}, branches: []string{"other"}},
	})

	removed := PruneToRefs(g, nil, []string{"tag: v1.0"}, nil)
	if removed != 1 {
		t.Fatalf("PruneToRefs() = %d, want 1", removed)
	}
	if g.Contains("x") {
		t.Error("x survived, want deleted")
	}
	for _, id := range []string{"a", "m", "b", "c", "d"} {
		if !g.Contains(id) {
			t.Errorf("ancestor %s was deleted", id)
		}
	}
}

func TestPruneToRefsUnknownNameWarns(t *testing.T) {
	g := buildGraph(t, []nodeSpec{
		{id: "a", branches: []string{"main"}},
	})

	var warnings []string
	warnf := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	removed := PruneToRefs(g, []string{"nope"}, nil, warnf)
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(warnings), warnings)
	}
	// No seeds means nothing is reachable: everything goes.
	if removed != 1 {
		t.Errorf("PruneToRefs() = %d, want 1", removed)
	}
}

func TestPruneToRefsFullCoverageIsNoop(t *testing.T) {
	g := buildGraph(t, []nodeSpec{
		{id: "a"},
		{id: "b", parents: []string{"a"}, branches: []string{"main"}},
	})

	if removed := PruneToRefs(g, []string{"main"}, nil, nil); removed != 0 {
		t.Errorf("PruneToRefs() = %d, want 0 when closure covers the graph", removed)
	}
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
}

func TestPruneToRefsNoChoices(t *testing.T) {
	g := buildGraph(t, []nodeSpec{{id: "a"}})
	if removed := PruneToRefs(g, nil, nil, nil); removed != 0 {
		t.Errorf("PruneToRefs() = %d, want 0 with no choices", removed)
	}
}
