// Package gitlog reads and parses the textual commit record stream that the
// rest of revdot turns into a graph.
//
// The input is the output of a git log command with a custom record format
// (see [DefaultGitCmd]), produced either by running the command or by
// reading a previously captured file. [Parse] turns the raw lines into a
// [history.Graph]: record lines become commit nodes, label lines attach
// display fields to the most recent node, and user-defined extraction
// patterns capture values from any line.
package gitlog
