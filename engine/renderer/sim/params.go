package sim

import (
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/gpuparams"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/technique"
)

type (
	// Params holds authoring-side material values.
	Params = material.Params[*Texture, *Buffer, *SamplerState]
	// Snapshot is a copy of authoring-side changes handed to the render view.
	Snapshot = material.Snapshot[*Texture, *Buffer, *SamplerState]
	// GpuParams is the authoring-side per-pass parameter object.
	GpuParams = gpuparams.GpuParams[*ParamBlockBuffer, *Texture, *Buffer, *SamplerState]
	// ParamsSet is the authoring-side params set.
	ParamsSet = gpuparams.ParamsSet[*ParamBlockBuffer, *Texture, *Buffer, *SamplerState]
)

// NewParams creates authoring-side values for a layout.
func NewParams(layout material.ParamLayout) *Params {
	return material.NewParams[*Texture, *Buffer, *SamplerState](layout)
}

// NewParamsSet builds an authoring-side params set whose blocks are CPU buffers.
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
	return gpuparams.NewParamsSet[*ParamBlockBuffer, *Texture, *Buffer, *SamplerState](tech, layout, NewParamBlockBuffer, options...)
}
