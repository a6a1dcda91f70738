package core

import (
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/gpuparams"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/technique"
	"github.com/cogentcore/webgpu/wgpu"
)

type (
	// Params holds render-side material values.
	Params = material.Params[*wgpu.TextureView, *wgpu.Buffer, *wgpu.Sampler]
	// GpuParams is the render-side per-pass parameter object.
	GpuParams = gpuparams.GpuParams[*ParamBlockBuffer, *wgpu.TextureView, *wgpu.Buffer, *wgpu.Sampler]
	// ParamsSet is the render-side params set.
	ParamsSet = gpuparams.ParamsSet[*ParamBlockBuffer, *wgpu.TextureView, *wgpu.Buffer, *wgpu.Sampler]
)

// NewParams creates render-side values for a layout.
func NewParams(layout material.ParamLayout) *Params {
	return material.NewParams[*wgpu.TextureView, *wgpu.Buffer, *wgpu.Sampler](layout)
}

// NewParamsSet builds a render-side params set whose blocks are wgpu uniform buffers.
//
// Parameters:
//   - tech: the technique to bind
//   - layout: the material parameter layout
//   - options: params set options
//
// Returns:
//   - *ParamsSet: the built set
//   - error: a binding error from gpuparams
func NewParamsSet(tech technique.Technique, layout material.ParamLayout, options ...gpuparams.ParamsSetOption) (*ParamsSet, error) {
	return gpuparams.NewParamsSet[*ParamBlockBuffer, *wgpu.TextureView, *wgpu.Buffer, *wgpu.Sampler](tech, layout, NewParamBlockBuffer, options...)
}
