// Package dot serializes a finalized commit graph into Graphviz DOT text.
//
// The serializer consumes the node collection produced by the pipeline
// (including squash stamps and alignment constraints) and emits node
// statements per commit class, parent edges, one replacement edge per
// squashed chain, branch/tag annotation nodes pinned to their commit's rank,
// and invisible ordering edges for date alignment. Attribute templates come
// from a [Style], loadable from TOML.
//
// Rasterizing the DOT text is somebody else's job; [Validate] only parses
// it back through graphviz to catch malformed output early.
package dot
