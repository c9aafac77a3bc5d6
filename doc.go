// Package gpucanvas is a retained 2D rendering engine for GPU backends.
//
// # Overview
//
// Drawing calls issued against a [Canvas] are not rasterized immediately.
// Each call becomes an op from package ops: a small geometry description
// plus a list of fragment processors (package processor) that compute its
// color and coverage. Compatible consecutive ops are merged, and the whole
// list is replayed on a backend device only when the surface is flushed.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/gpucanvas"
//	    "github.com/gogpu/gpucanvas/backend/software"
//	)
//
//	ctx, err := gpucanvas.NewContext(software.NewDevice())
//	if err != nil {
//	    return err
//	}
//	defer ctx.Release()
//
//	surface, err := ctx.NewSurface(512, 512)
//	if err != nil {
//	    return err
//	}
//	canvas := surface.Canvas()
//	canvas.Clear(gpu.White)
//	canvas.DrawOval(geom.XYWH(156, 156, 200, 200), gpucanvas.NewPaint(gpu.Red))
//	img, err := surface.ReadPixels()
//
// # Architecture
//
// The engine is organized into layers:
//   - Public API: Context, Surface, Canvas, Paint, Shader, Image
//   - Shading: processor (fragment and geometry processors), pipeline, blend
//   - Batching: ops (Op, DrawOp, OpsTask), program (compiled program cache)
//   - Backends: render (device contract), backend/software, backend/wgpu
//
// # Coordinate System
//
// Canvas coordinates follow the usual 2D convention:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//
// Render targets may store their rows bottom-up ([gpu.OriginBottomLeft]).
// The canvas flips scissor rectangles and device-space textures for such
// targets; drawing code never sees the difference.
//
// # Threading
//
// A Context and everything created from it must be used from one
// goroutine at a time. The only blocking call is [Context.Submit] with
// wait set.
package gpucanvas
