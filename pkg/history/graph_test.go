package history

import (
	"errors"
	"testing"
	"time"
)

// buildGraph creates a graph from (id, parents) pairs and derives children.
func buildGraph(t *testing.T, specs []struct {
	id      string
	parents []string
}) *Graph {
	t.Helper()
	g := New()
	for _, s := range specs {
		if err := g.Add(&Node{ID: s.id, Parents: s.parents}); err != nil {
			t.Fatalf("Add(%s) error: %v", s.id, err)
		}
	}
	if _, err := g.DeriveChildren(); err != nil {
		t.Fatalf("DeriveChildren error: %v", err)
	}
	return g
}

func TestGraphAdd(t *testing.T) {
	g := New()

	if err := g.Add(&Node{ID: "a"}); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if g.Len() != 1 {
		t.Errorf("Len() = %d, want 1", g.Len())
	}
	if !g.Contains("a") {
		t.Error("Contains(a) = false after Add")
	}

	n, ok := g.Node("a")
	if !ok {
		t.Fatal("Node(a) not found")
	}
	if n.Index != 0 {
		t.Errorf("Index = %d, want 0", n.Index)
	}

	// Empty id rejected
	if err := g.Add(&Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("Add(empty id) = %v, want ErrInvalidNodeID", err)
	}

	// Duplicate id rejected
	if err := g.Add(&Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("Add(duplicate) = %v, want ErrDuplicateNodeID", err)
	}
	if g.Len() != 1 {
		t.Errorf("Len() = %d after rejected adds, want 1", g.Len())
	}
}

func TestDeriveChildren(t *testing.T) {
	// a <- b <- d, a <- c <- d (d is a merge of b and c)
	g := buildGraph(t, []struct {
		id      string
		parents []string
	}{
		{"a", nil},
		{"b", []string{"a"}},
		{"c", []string{"a"}},
		{"d", []string{"b", "c"}},
	})

	a, _ := g.Node("a")
	if len(a.Children) != 2 {
		t.Errorf("a has %d children, want 2", len(a.Children))
	}
	if !a.IsMerge() {
		t.Error("a.IsMerge() = false, want true")
	}

	if got := g.EdgeCount(); got != 4 {
		t.Errorf("EdgeCount() = %d, want 4", got)
	}

	// Rebuilding must not duplicate backlinks
	edges, err := g.DeriveChildren()
	if err != nil {
		t.Fatalf("second DeriveChildren error: %v", err)
	}
	if edges != 4 {
		t.Errorf("DeriveChildren edges = %d, want 4", edges)
	}
	if len(a.Children) != 2 {
		t.Errorf("a has %d children after rebuild, want 2", len(a.Children))
	}
}

func TestDeriveChildrenDanglingParent(t *testing.T) {
	g := New()
	if err := g.Add(&Node{ID: "b", Parents: []string{"missing"}}); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if _, err := g.DeriveChildren(); !errors.Is(err, ErrDanglingParent) {
		t.Errorf("DeriveChildren = %v, want ErrDanglingParent", err)
	}
}

func TestRemoveUnlinksBothDirections(t *testing.T) {
	// a <- b <- c; delete b
	g := buildGraph(t, []struct {
		id      string
		parents []string
	}{
		{"a", nil},
		{"b", []string{"a"}},
		{"c", []string{"b"}},
	})

	removed := g.Remove(func(n *Node) bool { return n.ID == "b" })
	if removed != 1 {
		t.Fatalf("Remove() = %d, want 1", removed)
	}
	if g.Contains("b") {
		t.Error("Contains(b) = true after Remove")
	}

	a, _ := g.Node("a")
	if len(a.Children) != 0 {
		t.Errorf("a has %d children after Remove, want 0", len(a.Children))
	}
	c, _ := g.Node("c")
	if len(c.Parents) != 0 {
		t.Errorf("c has %d parents after Remove, want 0", len(c.Parents))
	}

	// Survivors reindexed to 0..N-1
	for i, n := range g.Nodes() {
		if n.Index != i {
			t.Errorf("node %s has index %d at position %d", n.ID, n.Index, i)
		}
	}

	if err := g.Validate(); err != nil {
		t.Errorf("Validate after Remove: %v", err)
	}
}

func TestIDsByDate(t *testing.T) {
	g := New()
	base := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	g.Add(&Node{ID: "late", When: base.Add(48 * time.Hour)})
	g.Add(&Node{ID: "early", When: base})
	g.Add(&Node{ID: "mid", When: base.Add(24 * time.Hour)})
	g.Add(&Node{ID: "mid2", When: base.Add(24 * time.Hour)}) // tie with mid

	got := g.IDsByDate()
	want := []string{"early", "mid", "mid2", "late"}
	if len(got) != len(want) {
		t.Fatalf("IDsByDate() returned %d ids, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("IDsByDate()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestValidateDetectsIndexDrift(t *testing.T) {
	g := buildGraph(t, []struct {
		id      string
		parents []string
	}{
		{"a", nil},
		{"b", []string{"a"}},
	})

	n, _ := g.Node("b")
	n.Index = 7
	if err := g.Validate(); !errors.Is(err, ErrIndexDrift) {
		t.Errorf("Validate = %v, want ErrIndexDrift", err)
	}
}

func TestValidateDetectsInconsistentBacklinks(t *testing.T) {
	g := buildGraph(t, []struct {
		id      string
		parents []string
	}{
		{"a", nil},
		{"b", []string{"a"}},
	})

	a, _ := g.Node("a")
	a.Children = nil // break the backlink by hand
	if err := g.Validate(); !errors.Is(err, ErrInconsistentBacklinks) {
		t.Errorf("Validate = %v, want ErrInconsistentBacklinks", err)
	}
}

func TestRecordVar(t *testing.T) {
	g := New()
	g.Add(&Node{ID: "a"})
	g.RecordVar("jira", "a")
	g.RecordVar("jira", "a")

	usage := g.VarUsage()
	if got := len(usage["jira"]); got != 2 {
		t.Errorf("VarUsage()[jira] has %d entries, want 2", got)
	}
}
