package gitlog

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/revdot/revdot/pkg/errors"
	"github.com/revdot/revdot/pkg/history"
)

const (
	// DefaultRecordMarker introduces a commit record line.
	DefaultRecordMarker = "Record:"

	// DefaultDelim separates the fields of record and label lines.
	DefaultDelim = "|"

	// tagMarker identifies tag entries in the ref decoration. Entries are
	// kept verbatim, marker included, so tags render as "tag: v1.0".
	tagMarker = "tag: "

	// arrowToken marks a symbolic ref entry ("HEAD -> main"); the branch
	// name is the right-hand side.
	arrowToken = " -> "
)

// dateLayouts are tried in order when parsing record dates. The first is
// the git %ci format the default command produces.
var dateLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// VarPattern is a user-defined extraction variable: every input line is
// tested against Pattern, and the first capture group of each match is
// appended to the variable's value list on the current commit.
type VarPattern struct {
	Name    string
	Pattern *regexp.Regexp
}

// ParseVarSpec compiles a "name=regex" specification into a VarPattern.
// The regex must contain at least one capture group.
func ParseVarSpec(spec string) (VarPattern, error) {
	name, expr, ok := strings.Cut(spec, "=")
	if !ok || name == "" {
		return VarPattern{}, errors.New(errors.ErrCodeInvalidPattern, "variable spec must be name=regex: %q", spec)
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return VarPattern{}, errors.Wrap(errors.ErrCodeInvalidPattern, err, "compile pattern for %q", name)
	}
	if re.NumSubexp() < 1 {
		return VarPattern{}, errors.New(errors.ErrCodeInvalidPattern, "pattern for %q needs a capture group: %q", name, expr)
	}
	return VarPattern{Name: name, Pattern: re}, nil
}

// Options configures record parsing.
type Options struct {
	// RecordMarker is the token that introduces a commit record line.
	// Defaults to [DefaultRecordMarker].
	RecordMarker string

	// Delim separates fields on record and label lines.
	// Defaults to [DefaultDelim].
	Delim string

	// LabelMarker is the token that introduces a label line carrying extra
	// display fields for the most recent commit. Empty disables label
	// records.
	LabelMarker string

	// MaxLabelWidth right-truncates label fields. Non-positive means
	// unbounded.
	MaxLabelWidth int

	// Vars are the extraction variables tested against every line.
	Vars []VarPattern
}

func (o *Options) recordMarker() string {
	if o.RecordMarker == "" {
		return DefaultRecordMarker
	}
	return o.RecordMarker
}

func (o *Options) delim() string {
	if o.Delim == "" {
		return DefaultDelim
	}
	return o.Delim
}

// Parse turns raw log lines into a commit graph.
//
// A line containing the record marker starts a new node; its fields carry
// the commit id, the whitespace-separated parent ids, the ref decoration,
// and the date. An unparsable date or a short
// record is fatal: no partial graph is ever returned. Label lines and
// variable matches attach to the most recently started node; matches before
// the first record are ignored. Zero records is fatal.
func Parse(lines []string, opts Options) (*history.Graph, error) {
	g := history.New()
	marker := opts.recordMarker()
	delim := opts.delim()
	recordToken := delim + marker + delim

	var cur *history.Node
	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if strings.Contains(line, recordToken) {
			n, err := parseRecord(line, marker, delim)
			if err != nil {
				return nil, err
			}
			if err := g.Add(n); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "add record: %s", line)
			}
			cur = n
		}

		if cur == nil {
			continue
		}

		for _, v := range opts.Vars {
			if m := v.Pattern.FindStringSubmatch(line); m != nil {
				cur.AddVar(v.Name, m[1])
				g.RecordVar(v.Name, cur.ID)
			}
		}

		if opts.LabelMarker != "" && strings.Contains(line, opts.LabelMarker) {
			parseLabels(cur, line, delim, opts)
		}
	}

	if g.Len() == 0 {
		return nil, errors.New(errors.ErrCodeEmptyInput, "no records found")
	}
	return g, nil
}

// parseRecord splits one record line into a commit node.
func parseRecord(line, marker, delim string) (*history.Node, error) {
	fields := strings.Split(line, delim)
	at := slices.Index(fields, marker)
	if at < 0 || at+4 >= len(fields) {
		return nil, errors.New(errors.ErrCodeInvalidRecord, "malformed record: %s", line)
	}

	when, err := parseDate(strings.TrimSpace(fields[at+4]))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDate, err, "unrecognized date format: %q in line: %s", fields[at+4], line)
	}

	branches, tags := parseRefs(strings.TrimSpace(fields[at+3]))
	return &history.Node{
		ID:       fields[at+1],
		Parents:  strings.Fields(fields[at+2]),
		Branches: branches,
		Tags:     tags,
		When:     when,
	}, nil
}

// parseDate tries the known layouts in order.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no layout matches %q", s)
}

// parseRefs splits a ref decoration ("(tag: v1.0, HEAD -> main, origin/main)")
// into branches and tags. Tag entries keep the "tag: " marker; arrow entries
// resolve to their right-hand side.
func parseRefs(refs string) (branches, tags []string) {
	if refs == "" {
		return nil, nil
	}
	if strings.HasPrefix(refs, "(") && strings.HasSuffix(refs, ")") {
		refs = refs[1 : len(refs)-1]
	}
	for _, entry := range strings.Split(refs, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		switch {
		case strings.Contains(entry, tagMarker):
			tags = append(tags, entry)
		case strings.Contains(entry, arrowToken):
			branches = append(branches, strings.SplitN(entry, arrowToken, 2)[1])
		default:
			branches = append(branches, entry)
		}
	}
	return branches, tags
}

// parseLabels appends the label fields of one label line to the node.
// Fields containing a variable token are substituted: the single captured
// value when exactly one exists, a bracketed multi-value form when several
// do, and the field is dropped when the node captured none.
func parseLabels(n *history.Node, line, delim string, opts Options) {
	fields := strings.Split(line, delim)
	for _, fld := range fields[1:] { // skip the marker field
		substituted := false
		for _, v := range opts.Vars {
			if !strings.Contains(fld, v.Name) {
				continue
			}
			substituted = true
			vals := n.Vars[v.Name]
			switch {
			case len(vals) == 1:
				addLabel(n, strings.ReplaceAll(fld, v.Name, vals[0]), opts.MaxLabelWidth)
			case len(vals) > 1:
				addLabel(n, strings.ReplaceAll(fld, v.Name, fmt.Sprintf("%v", vals)), opts.MaxLabelWidth)
			}
		}
		if !substituted {
			addLabel(n, fld, opts.MaxLabelWidth)
		}
	}
}

// addLabel truncates, escapes, and stores one label field.
func addLabel(n *history.Node, val string, width int) {
	if width > 0 {
		if r := []rune(val); len(r) > width {
			val = string(r[:width])
		}
	}
	val = strings.ReplaceAll(val, `"`, `\"`)
	n.Labels = append(n.Labels, val)
}
