// Package pipeline implements the managed-block merge stages.
//
// The stages run in a fixed order, each a pure text transform:
//   - Block stripping (remove spans delimited by the begin/end markers)
//   - Orphan filtering (drop leftover OVS stanzas outside any block)
//   - Block insertion (splice the fragment before the anchor line or at EOF)
//   - Blank line compression (collapse runs of blank lines to one)
//
// Reading and writing files is handled by the root ifmerge package callers and
// the CLI. Stages hold no mutable state once constructed and are safe for
// concurrent use.
package pipeline
