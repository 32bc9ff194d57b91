package transform

import (
	"fmt"
	"time"

	"github.com/revdot/revdot/pkg/history"
)

// Granularity selects how much of the timestamp participates in alignment
// comparisons, from the year down to the second.
type Granularity int

const (
	// AlignNone disables alignment constraint generation.
	AlignNone Granularity = iota
	AlignYear
	AlignMonth
	AlignDay
	AlignHour
	AlignMinute
	AlignSecond
)

// ParseGranularity converts a configuration string to a Granularity.
func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "", "none":
		return AlignNone, nil
	case "year":
		return AlignYear, nil
	case "month":
		return AlignMonth, nil
	case "day":
		return AlignDay, nil
	case "hour":
		return AlignHour, nil
	case "minute":
		return AlignMinute, nil
	case "second":
		return AlignSecond, nil
	}
	return AlignNone, fmt.Errorf("invalid alignment granularity: %q (must be one of: year, month, day, hour, minute, second, none)", s)
}

// String returns the configuration name of the granularity.
func (g Granularity) String() string {
	switch g {
	case AlignYear:
		return "year"
	case AlignMonth:
		return "month"
	case AlignDay:
		return "day"
	case AlignHour:
		return "hour"
	case AlignMinute:
		return "minute"
	case AlignSecond:
		return "second"
	}
	return "none"
}

// Constraint is a layout precedence hint, not a structural edge: Before must
// never be positioned later than After along the primary axis. The DOT
// serializer emits these as invisible edges.
type Constraint struct {
	Before string // id of the earlier commit
	After  string // id of the later commit
}

// AlignByDate produces the monotone date-ordering constraints for the graph
// at the given granularity. It returns nil when gran is AlignNone.
//
// Non-squashed nodes are scanned ascending by full timestamp while a running
// latest cursor advances. A constraint is emitted whenever the cursor is
// strictly earlier than the current node at the configured granularity;
// nodes equal through the granularity stay mutually unordered. The result is
// a partial order, not a total rank.
func AlignByDate(g *history.Graph, gran Granularity) []Constraint {
	if gran == AlignNone {
		return nil
	}

	var constraints []Constraint
	var cursor *history.Node
	for _, id := range g.IDsByDate() {
		n, ok := g.Node(id)
		if !ok || n.Squashed() {
			continue
		}
		if cursor == nil {
			cursor = n
			continue
		}
		if beforeAt(cursor.When, n.When, gran) {
			constraints = append(constraints, Constraint{Before: cursor.ID, After: n.ID})
		}
		if n.When.After(cursor.When) {
			cursor = n
		}
	}
	return constraints
}

// beforeAt reports whether a precedes b when both timestamps are compared
// field by field from the year down to the configured granularity. The first
// differing field decides; equality through the granularity means neither
// precedes the other.
func beforeAt(a, b time.Time, gran Granularity) bool {
	fields := func(t time.Time) [6]int {
		return [6]int{t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second()}
	}
	fa, fb := fields(a), fields(b)
	for i := 0; i < int(gran); i++ {
		if fa[i] < fb[i] {
			return true
		}
		if fa[i] > fb[i] {
			return false
		}
	}
	return false
}
