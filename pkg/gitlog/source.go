package gitlog

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/revdot/revdot/pkg/errors"
)

const (
	// DefaultGitCmd produces the record stream Parse expects: marker,
	// abbreviated hash, parent hashes, ref decoration, and commit date,
	// followed by the body on separate lines.
	DefaultGitCmd = `git log --format="|Record:|%h|%p|%d|%ci%n%b"`

	// DefaultRange selects the whole history in topological order.
	DefaultRange = "--all --topo-order"
)

// Source describes where the raw log text comes from: a previously captured
// file, or a git command assembled from the default plus window options.
type Source struct {
	// GitCmd overrides the log command entirely. When set, Label, Since,
	// Until and Range are ignored (with a warning): a custom command is
	// taken as-is.
	GitCmd string

	// Input is a file containing previously captured command output.
	// When set, no command is run.
	Input string

	// Label, when non-empty, appends a label record ("%n<marker>|<label>")
	// to the default command format.
	Label string

	// LabelMarker is the token introducing label lines. Required when
	// Label is set.
	LabelMarker string

	// Since, Until and Range bound the history window of the default
	// command. An empty Range falls back to DefaultRange, so every branch
	// is walked unless the caller narrows it.
	Since string
	Until string
	Range string

	// Dir is the working directory for the command. Empty means the
	// current directory.
	Dir string
}

// DateLimited reports whether a date-range restriction was requested. The
// default range selects everything and does not count as a restriction.
// This gates the dangling-parent prune: a bounded window cuts commits whose
// ids still appear in surviving parent lists.
func (s *Source) DateLimited() bool {
	return s.Since != "" || s.Until != "" || (s.Range != "" && s.Range != DefaultRange)
}

// Command assembles the log command to run. Window and label options only
// apply to the default command; a custom GitCmd is returned untouched and
// any ignored option is reported through warnf.
func (s *Source) Command(warnf Warnf) string {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}
	if s.GitCmd != "" && s.GitCmd != DefaultGitCmd {
		if s.Label != "" {
			warnf("label ignored when a custom git command is specified")
		}
		if s.Since != "" {
			warnf("since ignored when a custom git command is specified")
		}
		if s.Until != "" {
			warnf("until ignored when a custom git command is specified")
		}
		if s.Range != "" && s.Range != DefaultRange {
			warnf("range ignored when a custom git command is specified")
		}
		return s.GitCmd
	}

	cmd := DefaultGitCmd
	if s.Label != "" {
		// Splice the label record into the format string, before the
		// closing quote.
		at := strings.LastIndex(cmd, `"`)
		cmd = cmd[:at] + "%n" + s.LabelMarker + "|" + s.Label + cmd[at:]
	}
	if s.Since != "" {
		cmd += ` --since="` + s.Since + `"`
	}
	if s.Until != "" {
		cmd += ` --until="` + s.Until + `"`
	}
	rng := s.Range
	if rng == "" {
		rng = DefaultRange
	}
	return cmd + " " + rng
}

// Warnf reports a non-fatal condition to the caller's logger.
type Warnf func(format string, args ...any)

// Read returns the raw log text, either from the input file or by running
// the assembled command through the shell.
func (s *Source) Read(ctx context.Context, warnf Warnf) (string, error) {
	if s.Input != "" {
		data, err := os.ReadFile(s.Input)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInputFile, err, "read input %s", s.Input)
		}
		return string(data), nil
	}

	cmd := s.Command(warnf)
	out, err := runShell(ctx, cmd, s.Dir)
	if err != nil {
		return "", err
	}
	return out, nil
}

// runShell executes cmd via the shell and returns its stdout.
func runShell(ctx context.Context, cmd, dir string) (string, error) {
	var stdout, stderr bytes.Buffer
	c := exec.CommandContext(ctx, "sh", "-c", cmd)
	c.Dir = dir
	c.Stdout = &stdout
	c.Stderr = &stderr
	if err := c.Run(); err != nil {
		return "", errors.Wrap(errors.ErrCodeGitCommand, err, "command failed: %s\n%s", cmd, stderr.String())
	}
	return stdout.String(), nil
}

// SplitLines breaks raw command output into the line sequence Parse
// consumes.
func SplitLines(raw string) []string {
	return strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
}
