package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/revdot/revdot/pkg/cache"
	"github.com/revdot/revdot/pkg/dot"
	"github.com/revdot/revdot/pkg/errors"
	"github.com/revdot/revdot/pkg/gitlog"
	"github.com/revdot/revdot/pkg/history"
	"github.com/revdot/revdot/pkg/history/transform"
	"github.com/revdot/revdot/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete read → parse → prune → squash → align →
// serialize pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	runID := shortRunID()
	logger := opts.Logger.With("run", runID)

	result := &Result{RunID: runID}

	// Stage 1: Read
	readStart := time.Now()
	observability.Pipeline().OnStageStart(ctx, observability.StageRead)
	source := opts.Source()
	raw, logHit, err := r.readLog(ctx, source, opts.Refresh, logger)
	observability.Pipeline().OnStageComplete(ctx, observability.StageRead, time.Since(readStart), err)
	if err != nil {
		return nil, err
	}
	result.RawLog = raw
	result.Stats.ReadTime = time.Since(readStart)
	result.CacheInfo.LogHit = logHit
	logger.Info("captured log", "bytes", len(raw), "cached", logHit, "duration", result.Stats.ReadTime)

	// Stage 2: Parse
	parseStart := time.Now()
	observability.Pipeline().OnStageStart(ctx, observability.StageParse)
	g, err := gitlog.Parse(gitlog.SplitLines(raw), opts.ParseOptions())
	observability.Pipeline().OnStageComplete(ctx, observability.StageParse, time.Since(parseStart), err)
	if err != nil {
		return nil, err
	}
	result.Stats.ParseTime = time.Since(parseStart)
	logger.Info("parsed commits", "nodes", g.Len(), "duration", result.Stats.ParseTime)

	// Stages 3-5: Prune, squash, align
	transformStart := time.Now()
	constraints, err := r.transform(ctx, g, source, opts, &result.Stats, logger)
	if err != nil {
		return nil, err
	}
	result.Stats.TransformTime = time.Since(transformStart)
	result.Graph = g
	result.Constraints = constraints
	result.ByDate = g.IDsByDate()
	result.Stats.Nodes = g.Len()
	result.Stats.Edges = g.EdgeCount()
	result.Stats.Constraints = len(constraints)
	observability.Pipeline().OnGraphBuilt(ctx, result.Stats.Nodes, result.Stats.Edges)

	// Stage 6: Serialize
	serializeStart := time.Now()
	observability.Pipeline().OnStageStart(ctx, observability.StageSerialize)
	text, sum := dot.Generate(g, constraints, dot.Options{
		Style:      opts.style,
		Crunch:     opts.Crunch,
		GraphLabel: opts.GraphLabel,
	})
	observability.Pipeline().OnStageComplete(ctx, observability.StageSerialize, time.Since(serializeStart), nil)
	result.DOT = text
	result.Summary = sum
	result.Stats.SerializeTime = time.Since(serializeStart)
	logger.Info("generated dot",
		"bytes", len(text),
		"commits", sum.Commits,
		"duration", result.Stats.SerializeTime)

	return result, nil
}

// readLog returns the raw log text, consulting the cache when the source is
// a command. Input files are always read fresh.
func (r *Runner) readLog(ctx context.Context, source *gitlog.Source, refresh bool, logger *log.Logger) (string, bool, error) {
	warnf := logger.Warnf
	if source.Input != "" {
		raw, err := source.Read(ctx, warnf)
		return raw, false, err
	}

	key := r.Keyer.LogKey(source.Command(nil))
	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "log")
			return string(data), true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "log")
	}

	raw, err := source.Read(ctx, warnf)
	if err != nil {
		return "", false, err
	}
	if err := r.Cache.Set(ctx, key, []byte(raw), cache.TTLLog); err == nil {
		observability.Cache().OnCacheSet(ctx, "log", len(raw))
	}
	return raw, false, nil
}

// transform applies the graph transformations in order: dangling-parent
// prune (only when the history window was restricted), choice prune,
// child derivation, squash stamping, and date alignment.
func (r *Runner) transform(ctx context.Context, g *history.Graph, source *gitlog.Source, opts Options, stats *Stats, logger *log.Logger) ([]transform.Constraint, error) {
	pruneStart := time.Now()
	observability.Pipeline().OnStageStart(ctx, observability.StagePrune)

	if source.DateLimited() {
		stats.ReferenceGaps = transform.PruneDanglingParents(g)
		if stats.ReferenceGaps > 0 {
			logger.Info("pruned dangling parents", "gaps", stats.ReferenceGaps)
		}
	}

	if opts.Chooses() {
		stats.Pruned = transform.PruneToRefs(g, opts.ChooseBranches, opts.ChooseTags, logger.Warnf)
		logger.Info("pruned to chosen refs",
			"branches", opts.ChooseBranches,
			"tags", opts.ChooseTags,
			"removed", stats.Pruned)
	}

	if _, err := g.DeriveChildren(); err != nil {
		observability.Pipeline().OnStageComplete(ctx, observability.StagePrune, time.Since(pruneStart), err)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "derive children")
	}
	if err := g.Validate(); err != nil {
		observability.Pipeline().OnStageComplete(ctx, observability.StagePrune, time.Since(pruneStart), err)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "validate graph")
	}
	observability.Pipeline().OnStageComplete(ctx, observability.StagePrune, time.Since(pruneStart), nil)

	if opts.Squash {
		squashStart := time.Now()
		observability.Pipeline().OnStageStart(ctx, observability.StageSquash)
		stats.Squashed = transform.Squash(g)
		observability.Pipeline().OnStageComplete(ctx, observability.StageSquash, time.Since(squashStart), nil)
		logger.Info("squashed chains", "hidden", stats.Squashed)
	}

	var constraints []transform.Constraint
	if opts.align != transform.AlignNone {
		alignStart := time.Now()
		observability.Pipeline().OnStageStart(ctx, observability.StageAlign)
		constraints = transform.AlignByDate(g, opts.align)
		observability.Pipeline().OnStageComplete(ctx, observability.StageAlign, time.Since(alignStart), nil)
		logger.Info("aligned by date", "granularity", opts.align.String(), "constraints", len(constraints))
	}

	return constraints, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// shortRunID returns an eight character id for correlating log lines of one
// execution.
func shortRunID() string {
	return uuid.NewString()[:8]
}
