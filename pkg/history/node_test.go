package history

import "testing"

func TestIsSimple(t *testing.T) {
	child := &Node{ID: "child"}

	tests := []struct {
		name string
		node *Node
		want bool
	}{
		{"plain", &Node{ID: "n", Parents: []string{"p"}, Children: []*Node{child}}, true},
		{"root with one child", &Node{ID: "n", Children: []*Node{child}}, true},
		{"merge commit", &Node{ID: "n", Parents: []string{"p", "q"}, Children: []*Node{child}}, false},
		{"no children", &Node{ID: "n", Parents: []string{"p"}}, false},
		{"two children", &Node{ID: "n", Parents: []string{"p"}, Children: []*Node{child, child}}, false},
		{"branch ref", &Node{ID: "n", Parents: []string{"p"}, Children: []*Node{child}, Branches: []string{"main"}}, false},
		{"tag ref", &Node{ID: "n", Parents: []string{"p"}, Children: []*Node{child}, Tags: []string{"tag: v1.0"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.IsSimple(); got != tt.want {
				t.Errorf("IsSimple() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasRef(t *testing.T) {
	n := &Node{ID: "n", Branches: []string{"main"}, Tags: []string{"tag: v1.0"}}
	if !n.HasRef("main") {
		t.Error("HasRef(main) = false, want true")
	}
	if !n.HasRef("tag: v1.0") {
		t.Error("HasRef(tag: v1.0) = false, want true")
	}
	if n.HasRef("develop") {
		t.Error("HasRef(develop) = true, want false")
	}
}

func TestChainStamping(t *testing.T) {
	var zero Chain
	if zero.Stamped() {
		t.Error("zero Chain reports Stamped")
	}

	c := Chain{Head: "a", Tail: "d", Size: 3}
	if !c.Stamped() {
		t.Error("Stamped() = false, want true")
	}
	if !c.IsHead("a") || c.IsHead("b") {
		t.Error("IsHead misclassifies members")
	}
	if !c.IsTail("d") || c.IsTail("a") {
		t.Error("IsTail misclassifies members")
	}

	head := &Node{ID: "a", Chain: c}
	interior := &Node{ID: "b", Chain: c}
	tail := &Node{ID: "d", Chain: c}
	if head.Squashed() {
		t.Error("chain head reports Squashed")
	}
	if tail.Squashed() {
		t.Error("chain tail reports Squashed")
	}
	if !interior.Squashed() {
		t.Error("interior member does not report Squashed")
	}
}

func TestAddVar(t *testing.T) {
	n := &Node{ID: "n"}
	n.AddVar("jira", "PROJ-1")
	n.AddVar("jira", "PROJ-2")
	if got := len(n.Vars["jira"]); got != 2 {
		t.Errorf("Vars[jira] has %d values, want 2", got)
	}
}
