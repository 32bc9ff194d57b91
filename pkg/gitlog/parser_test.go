package gitlog

import (
	"testing"
	"time"

	"github.com/revdot/revdot/pkg/errors"
)

func TestParseRecords(t *testing.T) {
	lines := []string{
		`|Record:|c3|a1 b2|(HEAD -> main, tag: v1.0)|2015-01-03 10:00:00 -0700`,
		`|Record:|b2|a1||2015-01-02 10:00:00 -0700`,
		`|Record:|a1|||2015-01-01 10:00:00 -0700`,
	}

	g, err := Parse(lines, Options{})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if g.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", g.Len())
	}

	c3, ok := g.Node("c3")
	if !ok {
		t.Fatal("Node(c3) not found")
	}
	if len(c3.Parents) != 2 || c3.Parents[0] != "a1" || c3.Parents[1] != "b2" {
		t.Errorf("c3.Parents = %v, want [a1 b2]", c3.Parents)
	}
	if len(c3.Branches) != 1 || c3.Branches[0] != "main" {
		t.Errorf("c3.Branches = %v, want [main]", c3.Branches)
	}
	if len(c3.Tags) != 1 || c3.Tags[0] != "tag: v1.0" {
		t.Errorf("c3.Tags = %v, want [tag: v1.0]", c3.Tags)
	}

	want := time.Date(2015, 1, 3, 10, 0, 0, 0, time.FixedZone("", -7*3600))
	if !c3.When.Equal(want) {
		t.Errorf("c3.When = %v, want %v", c3.When, want)
	}

	a1, _ := g.Node("a1")
	if len(a1.Parents) != 0 {
		t.Errorf("a1.Parents = %v, want none", a1.Parents)
	}
}

func TestParseRefDecorations(t *testing.T) {
	tests := []struct {
		refs         string
		wantBranches []string
		wantTags     []string
	}{
		{"", nil, nil},
		{"(main)", []string{"main"}, nil},
		{"(HEAD -> main)", []string{"main"}, nil},
		{"(tag: v1.0)", nil, []string{"tag: v1.0"}},
		{"(tag: v1.0, HEAD -> main, origin/main)", []string{"main", "origin/main"}, []string{"tag: v1.0"}},
	}
	for _, tt := range tests {
		branches, tags := parseRefs(tt.refs)
		if len(branches) != len(tt.wantBranches) {
			t.Errorf("parseRefs(%q) branches = %v, want %v", tt.refs, branches, tt.wantBranches)
			continue
		}
		for i := range branches {
			if branches[i] != tt.wantBranches[i] {
				t.Errorf("parseRefs(%q) branches[%d] = %q, want %q", tt.refs, i, branches[i], tt.wantBranches[i])
			}
		}
		if len(tags) != len(tt.wantTags) {
			t.Errorf("parseRefs(%q) tags = %v, want %v", tt.refs, tags, tt.wantTags)
			continue
		}
		for i := range tags {
			if tags[i] != tt.wantTags[i] {
				t.Errorf("parseRefs(%q) tags[%d] = %q, want %q", tt.refs, i, tags[i], tt.wantTags[i])
			}
		}
	}
}

func TestParseInvalidDateIsFatal(t *testing.T) {
	lines := []string{
		`|Record:|a1|||not-a-date`,
	}
	_, err := Parse(lines, Options{})
	if err == nil {
		t.Fatal("Parse = nil error, want invalid date")
	}
	if !errors.Is(err, errors.ErrCodeInvalidDate) {
		t.Errorf("Parse error code = %v, want ErrCodeInvalidDate", errors.GetCode(err))
	}
}

func TestParseMalformedRecordIsFatal(t *testing.T) {
	lines := []string{
		`|Record:|a1`,
	}
	_, err := Parse(lines, Options{})
	if !errors.Is(err, errors.ErrCodeInvalidRecord) {
		t.Errorf("Parse error code = %v, want ErrCodeInvalidRecord", errors.GetCode(err))
	}
}

func TestParseEmptyInputIsFatal(t *testing.T) {
	lines := []string{"", "no records here", ""}
	_, err := Parse(lines, Options{})
	if !errors.Is(err, errors.ErrCodeEmptyInput) {
		t.Errorf("Parse error code = %v, want ErrCodeEmptyInput", errors.GetCode(err))
	}
}

func TestParseLabelsAndTruncation(t *testing.T) {
	lines := []string{
		`|Record:|a1|||2015-01-01 10:00:00 -0700`,
		`@@@|John Doe|a very long subject line`,
	}
	g, err := Parse(lines, Options{LabelMarker: "@@@", MaxLabelWidth: 6})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	a1, _ := g.Node("a1")
	want := []string{"John D", "a very"}
	if len(a1.Labels) != len(want) {
		t.Fatalf("Labels = %v, want %v", a1.Labels, want)
	}
	for i := range want {
		if a1.Labels[i] != want[i] {
			t.Errorf("Labels[%d] = %q, want %q", i, a1.Labels[i], want[i])
		}
	}
}

func TestParseLabelEscapesQuotes(t *testing.T) {
	lines := []string{
		`|Record:|a1|||2015-01-01 10:00:00 -0700`,
		`@@@|say "hi"`,
	}
	g, err := Parse(lines, Options{LabelMarker: "@@@"})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	a1, _ := g.Node("a1")
	if len(a1.Labels) != 1 || a1.Labels[0] != `say \"hi\"` {
		t.Errorf("Labels = %v, want escaped quotes", a1.Labels)
	}
}

func TestParseVars(t *testing.T) {
	vp, err := ParseVarSpec(`jira=(PROJ-\d+)`)
	if err != nil {
		t.Fatalf("ParseVarSpec error: %v", err)
	}

	lines := []string{
		`|Record:|a1|||2015-01-01 10:00:00 -0700`,
		`Fixes PROJ-42 for good`,
		`@@@|issue jira`,
		`|Record:|b2|a1||2015-01-02 10:00:00 -0700`,
		`@@@|issue jira`,
	}
	g, err := Parse(lines, Options{LabelMarker: "@@@", Vars: []VarPattern{vp}})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	a1, _ := g.Node("a1")
	if len(a1.Labels) != 1 || a1.Labels[0] != "issue PROJ-42" {
		t.Errorf("a1.Labels = %v, want [issue PROJ-42]", a1.Labels)
	}

	// b2 captured nothing: the variable field is dropped, not kept raw.
	b2, _ := g.Node("b2")
	if len(b2.Labels) != 0 {
		t.Errorf("b2.Labels = %v, want none", b2.Labels)
	}

	usage := g.VarUsage()
	if got := usage["jira"]; len(got) != 1 || got[0] != "a1" {
		t.Errorf("VarUsage()[jira] = %v, want [a1]", got)
	}
}

func TestParseVarSpecErrors(t *testing.T) {
	if _, err := ParseVarSpec("nodelimiter"); err == nil {
		t.Error("ParseVarSpec without = should fail")
	}
	if _, err := ParseVarSpec(`jira=PROJ-\d+`); err == nil {
		t.Error("ParseVarSpec without capture group should fail")
	}
	if _, err := ParseVarSpec(`jira=([`); err == nil {
		t.Error("ParseVarSpec with bad regex should fail")
	}
}

func TestParseCustomMarkerAndDelim(t *testing.T) {
	lines := []string{
		`;REC;a1;;;2015-01-01`,
	}
	g, err := Parse(lines, Options{RecordMarker: "REC", Delim: ";"})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !g.Contains("a1") {
		t.Error("custom-delimited record was not parsed")
	}
}
