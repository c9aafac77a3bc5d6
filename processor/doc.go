// Package processor implements the shading-unit graph that gpucanvas
// compiles into GPU programs.
//
// A Fragment is an immutable node with ordered children, texture samplers
// and coordinate transforms. Draws chain a list of color fragments followed
// by a list of coverage fragments; each fragment receives the previous
// fragment's output as its input color. A Geometry processor produces the
// vertex stage and the initial color and coverage.
//
// Two fragment trees with equal keys (see ComputeKey) generate the same
// program; Equal additionally compares uniform data and bound textures and
// decides whether two draws can share one batch.
package processor
