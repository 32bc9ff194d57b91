// Package transform implements the structural passes that reshape a commit
// graph before serialization: dangling-parent pruning for bounded history
// windows, ancestor-closure pruning for chosen branches and tags, linear
// chain squashing, and date-alignment ordering constraints.
//
// All passes run synchronously on a single owner graph. Traversals whose
// depth depends on the input use an explicit work list rather than
// recursion, since real histories can exceed safe recursion depth.
package transform
