// Package geom provides the 2D geometry primitives used across gpucanvas:
// points, affine matrices, axis-aligned rectangles and rounded rectangles.
//
// All values use float64 and are plain comparable structs, so they can be
// copied freely and compared with ==.
package geom
