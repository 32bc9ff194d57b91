package dot

import (
	"os"
	"regexp"

	"github.com/BurntSushi/toml"

	"github.com/revdot/revdot/pkg/errors"
)

// NodeStyles holds the DOT attribute templates for each node class.
// Templates may contain the {label} placeholder.
type NodeStyles struct {
	Commit string `toml:"commit"` // plain commit
	Merge  string `toml:"merge"`  // commit with multiple children
	Squash string `toml:"squash"` // chain head/tail boundary
	Tag    string `toml:"tag"`    // tag annotation node
	Branch string `toml:"branch"` // branch annotation node
}

// EdgeStyles holds the DOT attribute templates for each edge class.
// Empty commit/merge templates emit bare edges.
type EdgeStyles struct {
	Commit string `toml:"commit"` // parent edge into a plain commit
	Merge  string `toml:"merge"`  // parent edge into a merge commit
	Squash string `toml:"squash"` // replacement edge head->tail
	Tag    string `toml:"tag"`    // edge connecting tag annotations
	Branch string `toml:"branch"` // edge connecting branch annotations
}

// Style is the full attribute configuration for DOT generation.
type Style struct {
	// Graph holds raw top-level statements (graph/node/edge defaults),
	// one per entry.
	Graph []string `toml:"graph"`

	// FontSize and FontName, when set, rewrite the fontsize/fontname
	// attributes of the Graph statements.
	FontSize string `toml:"font_size"`
	FontName string `toml:"font_name"`

	Nodes NodeStyles `toml:"nodes"`
	Edges EdgeStyles `toml:"edges"`
}

// DefaultStyle returns the stock palette: left-to-right layout, bisque
// commits, pink merges, tomato chain boundaries, box-shaped refs.
func DefaultStyle() *Style {
	return &Style{
		Graph: []string{
			`graph [rankdir="LR", fontsize=10.0, bgcolor="white"]`,
			`node [shape=ellipse, fontsize=10.0, style="filled"]`,
		},
		Nodes: NodeStyles{
			Commit: `[label="{label}", color="bisque"]`,
			Merge:  `[label="{label}", color="lightpink"]`,
			Squash: `[label="{label}", color="tomato"]`,
			Tag:    `[label="{label}", color="thistle", shape=box]`,
			Branch: `[label="{label}", color="lightblue", shape=box]`,
		},
		Edges: EdgeStyles{
			Squash: `[label="{label}", style=dotted, arrowhead="none", fontsize=10.0]`,
			Tag:    `[arrowhead=normal, color="thistle", dir="none"]`,
			Branch: `[arrowhead=normal, color="lightblue", dir="none"]`,
		},
	}
}

// LoadStyle reads a TOML style file. Fields absent from the file keep their
// DefaultStyle values, so a style file only needs to name what it changes.
func LoadStyle(path string) (*Style, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStyle, err, "read style %s", path)
	}
	s := DefaultStyle()
	if err := toml.Unmarshal(data, s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStyle, err, "parse style %s", path)
	}
	return s, nil
}

var (
	fontSizeRe = regexp.MustCompile(`(fontsize=)[^,\]]+`)
	fontNameRe = regexp.MustCompile(`(fontname=)[^,\]]+`)
)

// graphStatements returns the top-level statements with any font overrides
// applied.
func (s *Style) graphStatements() []string {
	out := make([]string, len(s.Graph))
	for i, stmt := range s.Graph {
		if s.FontSize != "" {
			stmt = fontSizeRe.ReplaceAllString(stmt, `${1}"`+s.FontSize+`"`)
		}
		if s.FontName != "" {
			stmt = fontNameRe.ReplaceAllString(stmt, `${1}"`+s.FontName+`"`)
		}
		out[i] = stmt
	}
	return out
}
