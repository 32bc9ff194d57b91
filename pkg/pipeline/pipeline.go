// Package pipeline provides the core log-to-DOT pipeline for revdot.
//
// This package implements the complete read → parse → prune → squash →
// align → serialize chain so the CLI and library callers share one
// implementation and one set of defaults.
//
// # Architecture
//
// The pipeline runs six stages:
//
//  1. Read: capture raw git log output (or load it from a file)
//  2. Parse: turn record lines into a commit graph
//  3. Prune: drop dangling parents and, optionally, restrict the graph to
//     the ancestors of chosen branches and tags
//  4. Squash: collapse linear commit chains behind a single labeled edge
//  5. Align: derive same-rank ordering constraints from commit dates
//  6. Serialize: emit Graphviz DOT text
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Squash: true,
//	    Align:  "day",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(result.DOT)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/revdot/revdot/pkg/dot"
	"github.com/revdot/revdot/pkg/errors"
	"github.com/revdot/revdot/pkg/gitlog"
	"github.com/revdot/revdot/pkg/history"
	"github.com/revdot/revdot/pkg/history/transform"
)

// DefaultLabelMarker introduces label records appended to the log format
// when a label spec is given.
const DefaultLabelMarker = "@@@"

// Options contains all configuration for the log-to-DOT pipeline.
type Options struct {
	// Source options
	GitCmd string `json:"gitcmd,omitempty"` // custom log command, replaces the default entirely
	Input  string `json:"input,omitempty"`  // file with previously captured output
	Dir    string `json:"dir,omitempty"`    // working directory for the command
	Since  string `json:"since,omitempty"`
	Until  string `json:"until,omitempty"`
	Range  string `json:"range,omitempty"`

	// Parse options
	Label         string   `json:"label,omitempty"`           // extra format fields appended as a label record
	MaxLabelWidth int      `json:"max_label_width,omitempty"` // right-truncate label fields, 0 = unbounded
	Vars          []string `json:"vars,omitempty"`            // name=regex extraction specs

	// Transform options
	ChooseBranches []string `json:"choose_branches,omitempty"`
	ChooseTags     []string `json:"choose_tags,omitempty"`
	Squash         bool     `json:"squash,omitempty"`
	Align          string   `json:"align,omitempty"` // year|month|day|hour|minute|second

	// Serialize options
	StyleFile  string `json:"style,omitempty"` // TOML style file, empty = built-in palette
	Crunch     bool   `json:"crunch,omitempty"`
	GraphLabel string `json:"graph_label,omitempty"`

	// Refresh bypasses the raw log cache.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// Resolved forms, filled by ValidateAndSetDefaults.
	vars      []gitlog.VarPattern
	align     transform.Granularity
	style     *dot.Style
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this execution in logs.
	RunID string

	// RawLog is the captured log text the graph was built from.
	RawLog string

	// Graph is the final commit graph, after pruning and squash stamping.
	Graph *history.Graph

	// DOT is the generated Graphviz text.
	DOT string

	// Constraints are the date-alignment edges embedded in DOT.
	Constraints []transform.Constraint

	// ByDate lists the surviving commit ids in ascending date order.
	ByDate []string

	// Summary counts the node classes drawn.
	Summary dot.Summary

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the raw log came from cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Nodes         int // commits surviving the prunes
	Edges         int // parent edges among them
	ReferenceGaps int // parent ids dropped by the dangling prune
	Pruned        int // commits removed by the choice prune
	Squashed      int // commits hidden inside chains
	Constraints   int // alignment edges emitted

	ReadTime      time.Duration
	ParseTime     time.Duration
	TransformTime time.Duration
	SerializeTime time.Duration
}

// CacheInfo tracks cache hits for the pipeline.
type CacheInfo struct {
	LogHit bool // whether the raw log output came from cache
}

// ValidateAndSetDefaults checks option consistency and resolves the string
// forms (vars, align, style) into their typed equivalents. The method is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	o.vars = o.vars[:0]
	for _, spec := range o.Vars {
		vp, err := gitlog.ParseVarSpec(spec)
		if err != nil {
			return err
		}
		o.vars = append(o.vars, vp)
	}

	gran, err := transform.ParseGranularity(o.Align)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidAlignment, err, "parse alignment")
	}
	o.align = gran

	if o.StyleFile != "" {
		s, err := dot.LoadStyle(o.StyleFile)
		if err != nil {
			return err
		}
		o.style = s
	} else {
		o.style = dot.DefaultStyle()
	}

	if o.Input != "" && o.GitCmd != "" {
		return errors.New(errors.ErrCodeInputFile, "input file and custom git command are mutually exclusive")
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// Source assembles the log source described by the options.
func (o *Options) Source() *gitlog.Source {
	return &gitlog.Source{
		GitCmd:      o.GitCmd,
		Input:       o.Input,
		Label:       o.Label,
		LabelMarker: DefaultLabelMarker,
		Since:       o.Since,
		Until:       o.Until,
		Range:       o.Range,
		Dir:         o.Dir,
	}
}

// ParseOptions assembles the parser configuration. ValidateAndSetDefaults
// must have run first so the var specs are compiled.
func (o *Options) ParseOptions() gitlog.Options {
	po := gitlog.Options{
		MaxLabelWidth: o.MaxLabelWidth,
		Vars:          o.vars,
	}
	if o.Label != "" {
		po.LabelMarker = DefaultLabelMarker
	}
	return po
}

// Chooses reports whether the graph should be restricted to the ancestor
// closure of chosen refs.
func (o *Options) Chooses() bool {
	return len(o.ChooseBranches) > 0 || len(o.ChooseTags) > 0
}
