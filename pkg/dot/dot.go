package dot

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/revdot/revdot/pkg/history"
	"github.com/revdot/revdot/pkg/history/transform"
)

// Options configures DOT generation.
type Options struct {
	// Style supplies the attribute templates. Nil means DefaultStyle.
	Style *Style

	// Crunch collapses all tags (and all branches) of a commit into a
	// single annotation node each instead of one node per ref.
	Crunch bool

	// GraphLabel is a raw trailing statement for the graph label, e.g.
	// `graph [label="my repo"]`. Empty emits nothing.
	GraphLabel string
}

// Summary counts what ended up in the generated graph. It is appended to
// the DOT text as comments and reported by the CLI.
type Summary struct {
	CommitNodes int // plain commit vertices drawn
	MergeNodes  int // merge vertices drawn
	SquashNodes int // chain boundary vertices drawn
	GraphNodes  int // total vertices drawn
	Commits     int // commits represented, including hidden chain members
}

// Generate renders the finalized graph, plus the alignment constraints, as
// DOT text. Squashed interior nodes are hidden behind one labeled edge from
// chain head to chain tail; every other structural property of the graph is
// reproduced as-is.
func Generate(g *history.Graph, constraints []transform.Constraint, opts Options) (string, Summary) {
	style := opts.Style
	if style == nil {
		style = DefaultStyle()
	}

	var buf bytes.Buffer
	var sum Summary

	buf.WriteString("digraph G {\n")
	for _, stmt := range style.graphStatements() {
		fmt.Fprintf(&buf, "   %s;\n", stmt)
	}

	writeNodes(&buf, g, style, &sum)
	writeEdges(&buf, g, style, &sum)
	writeRefs(&buf, g, style, opts.Crunch)
	writeConstraints(&buf, constraints)

	if opts.GraphLabel != "" {
		buf.WriteString("\n   // graph label\n")
		fmt.Fprintf(&buf, "   %s;\n", strings.TrimSuffix(opts.GraphLabel, ";"))
	}
	buf.WriteString("}\n")

	writeSummary(&buf, sum)
	return buf.String(), sum
}

// expand substitutes the {label} placeholder in an attribute template.
func expand(tmpl, label string) string {
	return strings.ReplaceAll(tmpl, "{label}", label)
}

// nodeLabel joins a node's id and label fields for display.
func nodeLabel(n *history.Node) string {
	if len(n.Labels) == 0 {
		return n.ID
	}
	return n.ID + `\n` + strings.Join(n.Labels, `\n`)
}

// writeNodes emits one statement per visible vertex, classed as merge,
// chain boundary, or plain commit.
func writeNodes(buf *bytes.Buffer, g *history.Graph, style *Style, sum *Summary) {
	buf.WriteString("\n   // commit, merge and squash nodes\n")
	for _, n := range g.Nodes() {
		if n.Squashed() {
			sum.Commits++ // hidden, but still a commit
			continue
		}
		label := nodeLabel(n)
		switch {
		case n.IsMerge():
			fmt.Fprintf(buf, "   %q %s;\n", n.ID, expand(style.Nodes.Merge, label))
			sum.MergeNodes++
			sum.Commits++
		case n.Chain.IsHead(n.ID) || n.Chain.IsTail(n.ID):
			fmt.Fprintf(buf, "   %q %s;\n", n.ID, expand(style.Nodes.Squash, label))
			sum.SquashNodes++
			sum.Commits++
		default:
			fmt.Fprintf(buf, "   %q %s;\n", n.ID, expand(style.Nodes.Commit, label))
			sum.CommitNodes++
			sum.Commits++
		}
		sum.GraphNodes++
	}
}

// writeEdges emits the parent edges and the chain replacement edges.
// Squashed nodes and chain tails contribute no parent edges of their own:
// the labeled head->tail edge stands in for the whole run.
func writeEdges(buf *bytes.Buffer, g *history.Graph, style *Style, sum *Summary) {
	buf.WriteString("\n   // edges\n")
	for _, n := range g.Nodes() {
		if n.Squashed() || n.Chain.IsTail(n.ID) {
			continue
		}

		if n.Chain.IsHead(n.ID) {
			attrs := expand(style.Edges.Squash, strconv.Itoa(n.Chain.Size))
			fmt.Fprintf(buf, "   %q -> %q %s;\n", n.ID, n.Chain.Tail, attrs)
		}

		tmpl := style.Edges.Commit
		if n.IsMerge() {
			tmpl = style.Edges.Merge
		}
		for _, pid := range n.Parents {
			attrs := ""
			if tmpl != "" {
				attrs = " " + expand(tmpl, fmt.Sprintf("%s to %s", n.ID, pid))
			}
			fmt.Fprintf(buf, "   %q -> %q%s;\n", pid, n.ID, attrs)
		}
	}
}

// writeRefs emits the branch and tag annotation nodes and pins each group
// to its commit's rank so they line up.
func writeRefs(buf *bytes.Buffer, g *history.Graph, style *Style, crunch bool) {
	buf.WriteString("\n   // branch and tag annotations\n")
	first := true
	for _, n := range g.Nodes() {
		if len(n.Branches) == 0 && len(n.Tags) == 0 {
			continue
		}
		if !first {
			buf.WriteString("\n")
		}
		first = false

		rank := []string{n.ID}
		if len(n.Tags) > 0 {
			rank = append(rank, writeTagNodes(buf, n, style, crunch)...)
		}
		if len(n.Branches) > 0 {
			rank = append(rank, writeBranchNodes(buf, n, style, crunch)...)
		}

		fmt.Fprintf(buf, "   {rank=same; %q", rank[0])
		for _, id := range rank[1:] {
			fmt.Fprintf(buf, "; %q", id)
		}
		buf.WriteString("};\n")
	}
}

// writeTagNodes emits the tag annotation vertices for one commit and the
// chain of edges tying them to it. Returns the vertex names for ranking.
func writeTagNodes(buf *bytes.Buffer, n *history.Node, style *Style, crunch bool) []string {
	if crunch {
		id := fmt.Sprintf("tid-%08d", n.Index)
		label := strings.Join(n.Tags, `\n`)
		fmt.Fprintf(buf, "   %q %s;\n", id, expand(style.Nodes.Tag, label))
		fmt.Fprintf(buf, "   %q -> %q %s;\n", id, n.ID, expand(style.Edges.Tag, n.ID))
		return []string{id}
	}

	names := make([]string, len(n.Tags))
	for i, t := range n.Tags {
		names[i] = n.ID + "+" + t
		fmt.Fprintf(buf, "   %q %s;\n", names[i], expand(style.Nodes.Tag, t))
	}
	fmt.Fprintf(buf, "   %q", names[0])
	for _, name := range names[1:] {
		fmt.Fprintf(buf, " -> %q", name)
	}
	fmt.Fprintf(buf, " -> %q %s;\n", n.ID, expand(style.Edges.Tag, n.ID))
	return names
}

// writeBranchNodes emits the branch annotation vertices for one commit.
// Branches hang off the commit on the other side of the tag chain.
func writeBranchNodes(buf *bytes.Buffer, n *history.Node, style *Style, crunch bool) []string {
	if crunch {
		id := fmt.Sprintf("bid-%08d", n.Index)
		label := strings.Join(n.Branches, `\n`)
		fmt.Fprintf(buf, "   %q %s;\n", id, expand(style.Nodes.Branch, label))
		fmt.Fprintf(buf, "   %q -> %q %s;\n", n.ID, id, expand(style.Edges.Branch, n.ID))
		return []string{id}
	}

	names := make([]string, len(n.Branches))
	for i, b := range n.Branches {
		names[i] = n.ID + "+" + b
		fmt.Fprintf(buf, "   %q %s;\n", names[i], expand(style.Nodes.Branch, b))
	}
	fmt.Fprintf(buf, "   %q", n.ID)
	for i := len(names) - 1; i >= 0; i-- {
		fmt.Fprintf(buf, " -> %q", names[i])
	}
	fmt.Fprintf(buf, " %s;\n", expand(style.Edges.Branch, n.ID))
	return names
}

// writeConstraints emits the invisible alignment edges.
func writeConstraints(buf *bytes.Buffer, constraints []transform.Constraint) {
	if len(constraints) == 0 {
		return
	}
	buf.WriteString("\n   // date alignment constraints (invisible)\n")
	for _, c := range constraints {
		fmt.Fprintf(buf, "   %q -> %q [style=invis];\n", c.Before, c.After)
	}
}

// writeSummary appends the counters as trailing comments, sorted by name.
func writeSummary(buf *bytes.Buffer, sum Summary) {
	counters := map[string]int{
		"num_graph_commit_nodes":   sum.CommitNodes,
		"num_graph_merge_nodes":    sum.MergeNodes,
		"num_graph_squash_nodes":   sum.SquashNodes,
		"total_graph_commit_nodes": sum.GraphNodes,
		"total_commits":            sum.Commits,
	}
	keys := make([]string, 0, len(counters))
	for k := range counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "// summary:%s %d\n", k, counters[k])
	}
}
