// Package gpu defines the backend-neutral resource vocabulary shared by the
// canvas core and the backends: colors, pixel formats, texture origins,
// swizzles, sampler state, device capabilities and the Texture and
// RenderTarget handles.
package gpu
