// Package stroke converts stroked paths into fillable outlines.
//
// A stroke is expanded by walking each contour and building two offset
// polylines, one on each side at half the stroke width. For open contours
// the forward side, the end cap, the reversed backward side and the start
// cap form a single closed outline. Closed contours produce two outlines of
// opposite direction so that the non-zero fill leaves the interior empty.
//
// Curves are flattened before offsetting; joins use miter (with limit),
// round or bevel geometry and caps use butt, round or square geometry.
package stroke
