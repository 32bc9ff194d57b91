// Package history models a version-control commit graph as a mutable,
// indexed node store.
//
// A [Graph] is built incrementally by the log parser (one [Node] per commit
// record), then reshaped by the transform subpackage: dangling parent
// references are pruned when the history window was bounded, unselected
// branches are cut away, and linear commit chains are stamped for squashing.
// The store keeps three views in sync: the canonical ordered node list, an
// id lookup map, and a usage index for user-defined extraction variables.
//
// Child links are derived backlinks, not hand-maintained state: callers
// rebuild them with [Graph.DeriveChildren] after any pass that edits parent
// lists. The one exception is [Graph.Remove], which updates both directions
// transactionally so the graph never passes through an inconsistent state.
package history
