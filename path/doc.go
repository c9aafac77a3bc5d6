// Package path provides the vector path used by gpucanvas.
//
// A Path is a list of elements (move, line, quadratic, cubic, close) in
// local or device coordinates. Besides building and transforming, the
// package offers the geometric services the canvas needs to choose a fill
// strategy:
//
//   - AsRect and AsRRect recognize paths that can use the specialized rect
//     and rounded-rect operations.
//   - Flatten converts curves to polylines with adaptive subdivision.
//   - Contains tests a point with the non-zero winding rule.
//   - Triangulate splits a simple polygon into triangles by ear clipping.
//   - Rasterize produces an anti-aliased coverage mask on the CPU.
package path
