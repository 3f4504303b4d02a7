// Package linemap maps character offsets to the line and row positions the
// minimap draws at.
//
// Two strategies are provided. Precomputed scans the text once and binary
// searches its line endings; it backs the legacy rasterizer. Visual defers
// to the host's visual-line model and compensates for folds and soft wraps;
// it backs the current rasterizer and the overlay painters. Layout is an
// in-memory VisualModel for hosts that do not have one.
package linemap
