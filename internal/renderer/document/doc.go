// Package document defines the host-side data the minimap engine reads:
// document text and line structure, fold regions, soft wraps and syntax
// style spans.
//
// The engine never mutates host data. Every model here also has a small
// in-memory implementation so the engine can run without an editor, as the
// CLI and the tests do. All in-memory models are safe for concurrent use;
// readers receive snapshots that later edits never touch.
package document
