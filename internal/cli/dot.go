package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/revdot/revdot/pkg/dot"
	"github.com/revdot/revdot/pkg/errors"
	"github.com/revdot/revdot/pkg/gitlog"
	"github.com/revdot/revdot/pkg/pipeline"
)

// dotOpts holds the command-line flags for the dot command.
type dotOpts struct {
	output   string // output file path, empty writes to stdout
	keep     string // save the captured raw log here for later --input replay
	noCache  bool   // bypass the raw log cache entirely
	validate bool   // parse the generated DOT back through graphviz
}

// dotCommand creates the main dot-generation command.
//
// Default settings:
//   - source: git log over the full history, topologically ordered
//   - no squashing, no date alignment, built-in style
func (c *CLI) dotCommand() *cobra.Command {
	var opts dotOpts
	var vars []string
	pipe := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "dot [directory]",
		Short: "Generate a DOT graph from git history",
		Long: `Generate a Graphviz DOT graph from the commit history of a repository.

The command runs git log (or replays a captured log file given with --input),
parses the records into a commit graph, optionally prunes it to chosen
branches and tags, squashes linear chains, aligns commits by date, and writes
the resulting DOT text.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				pipe.Dir = args[0]
			}
			pipe.Vars = vars
			return c.runDot(cmd, &pipe, &opts)
		},
	}

	cmd.Flags().StringVar(&pipe.GitCmd, "gitcmd", "", "custom git log command (replaces the default; window flags are ignored)")
	cmd.Flags().StringVarP(&pipe.Input, "input", "i", "", "read previously captured git log output from this file")
	cmd.Flags().StringVar(&pipe.Since, "since", "", "only commits after this date (git --since)")
	cmd.Flags().StringVar(&pipe.Until, "until", "", "only commits before this date (git --until)")
	cmd.Flags().StringVar(&pipe.Range, "range", "", `revision range and traversal flags for git log (default "`+gitlog.DefaultRange+`")`)
	cmd.Flags().StringVarP(&pipe.Label, "label", "l", "", "extra git format fields appended to each node label (e.g. \"%s\")")
	cmd.Flags().IntVarP(&pipe.MaxLabelWidth, "label-width", "w", 0, "truncate label fields to this many characters (0 = unbounded)")
	cmd.Flags().StringArrayVarP(&vars, "var", "D", nil, "extraction variable as name=regex, substituted into labels (repeatable)")
	cmd.Flags().StringArrayVar(&pipe.ChooseBranches, "choose-branch", nil, "restrict the graph to ancestors of this branch (repeatable)")
	cmd.Flags().StringArrayVar(&pipe.ChooseTags, "choose-tag", nil, "restrict the graph to ancestors of this tag (repeatable)")
	cmd.Flags().BoolVarP(&pipe.Squash, "squash", "s", false, "collapse linear commit chains behind a single edge")
	cmd.Flags().StringVar(&pipe.Align, "align", "", "align commits by date: year, month, day, hour, minute or second")
	cmd.Flags().BoolVar(&pipe.Crunch, "crunch", false, "collapse all tags (and branches) of a commit into one node each")
	cmd.Flags().StringVar(&pipe.StyleFile, "style", "", "TOML file overriding the built-in DOT style")
	cmd.Flags().StringVar(&pipe.GraphLabel, "graph-label", "", "raw DOT statement for the graph label")
	cmd.Flags().BoolVar(&pipe.Refresh, "refresh", false, "bypass the raw log cache and run the command again")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.keep, "keep", "k", "", "also save the captured raw log to this file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the raw log cache for this run")
	cmd.Flags().BoolVar(&opts.validate, "validate", false, "parse the generated DOT back through graphviz")

	return cmd
}

// runDot executes the pipeline and writes the DOT text.
func (c *CLI) runDot(cmd *cobra.Command, pipe *pipeline.Options, opts *dotOpts) error {
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(cmd.Context(), *pipe)
	if err != nil {
		return fmt.Errorf("%s", errors.UserMessage(err))
	}

	if opts.validate {
		if err := dot.Validate(result.DOT); err != nil {
			return fmt.Errorf("%s", errors.UserMessage(err))
		}
		c.Logger.Debug("generated dot parses cleanly")
	}

	if opts.keep != "" {
		if err := os.WriteFile(opts.keep, []byte(result.RawLog), 0o644); err != nil {
			return err
		}
		printDetail("Raw log saved to %s", opts.keep)
	}

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.WriteString(out, result.DOT); err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Generated DOT for %d commits", result.Summary.Commits))
	if opts.output != "" {
		printSuccess("Wrote %s", opts.output)
		printFile(opts.output)
	}
	printStats(result.Stats.Nodes, result.Stats.Edges, result.CacheInfo.LogHit)
	if result.Stats.Squashed > 0 {
		printDetail("%d commits hidden in squashed chains", result.Stats.Squashed)
	}
	if result.Stats.Constraints > 0 {
		printDetail("%d date alignment constraints", result.Stats.Constraints)
	}
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
