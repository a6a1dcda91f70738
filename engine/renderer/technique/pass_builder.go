package technique

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-params/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PassBuilderOption is a functional option used to configure a Pass during construction.
type PassBuilderOption func(*pass)

// WithStage binds a program to a stage. A later option for the same stage replaces the earlier one.
//
// Parameters:
//   - stage: the stage to bind
//   - s: the program; nil clears the stage
//
// Returns:
//   - PassBuilderOption: a function that binds the program to the stage
func WithStage(stage shader.ShaderType, s shader.Shader) PassBuilderOption {
	return func(p *pass) {
		if stage < 0 || int(stage) >= shader.NumStages {
			panic(fmt.Sprintf("technique: pass %s: invalid stage %d", p.key, int(stage)))
		}
		p.programs[stage] = s
	}
}

// WithShaders binds each program to the stage given by its own ShaderType.
//
// Parameters:
//   - shaders: the programs to bind
//
// Returns:
//   - PassBuilderOption: a function that binds every program
func WithShaders(shaders ...shader.Shader) PassBuilderOption {
	return func(p *pass) {
		for _, s := range shaders {
			WithStage(s.ShaderType(), s)(p)
		}
	}
}

// WithVertexShader sets the vertex shader for this pass.
//
// Parameters:
//   - s: the vertex shader to use for this pass
//
// Returns:
//   - PassBuilderOption: a function that sets the vertex shader for this pass
func WithVertexShader(s shader.Shader) PassBuilderOption {
	return WithStage(shader.ShaderTypeVertex, s)
}

// WithFragmentShader sets the fragment shader for this pass.
//
// Parameters:
//   - s: the fragment shader to use for this pass
//
// Returns:
//   - PassBuilderOption: a function that sets the fragment shader for this pass
func WithFragmentShader(s shader.Shader) PassBuilderOption {
	return WithStage(shader.ShaderTypeFragment, s)
}

// WithGeometryShader sets the geometry shader for this pass.
func WithGeometryShader(s shader.Shader) PassBuilderOption {
	return WithStage(shader.ShaderTypeGeometry, s)
}

// WithHullShader sets the hull shader for this pass.
func WithHullShader(s shader.Shader) PassBuilderOption {
	return WithStage(shader.ShaderTypeHull, s)
}

// WithDomainShader sets the domain shader for this pass.
func WithDomainShader(s shader.Shader) PassBuilderOption {
	return WithStage(shader.ShaderTypeDomain, s)
}

// WithComputeShader sets the compute shader for this pass.
//
// Parameters:
//   - s: the compute shader to use for this pass
//
// Returns:
//   - PassBuilderOption: a function that sets the compute shader for this pass
func WithComputeShader(s shader.Shader) PassBuilderOption {
	return WithStage(shader.ShaderTypeCompute, s)
}

// WithDepthTestEnabled sets whether depth testing is enabled for this pass.
//
// Parameters:
//   - enabled: a boolean indicating whether depth testing should be enabled
//
// Returns:
//   - PassBuilderOption: a function that sets the depth test enabled state for this pass
func WithDepthTestEnabled(enabled bool) PassBuilderOption {
	return func(p *pass) {
		p.depthTestEnabled = enabled
	}
}

// WithDepthWriteEnabled sets whether depth writing is enabled for this pass.
//
// Parameters:
//   - enabled: a boolean indicating whether depth writing should be enabled
//
// Returns:
//   - PassBuilderOption: a function that sets the depth write enabled state for this pass
func WithDepthWriteEnabled(enabled bool) PassBuilderOption {
	return func(p *pass) {
		p.depthWriteEnabled = enabled
	}
}

// WithCullMode sets the cull mode for this pass.
//
// Parameters:
//   - mode: the cull mode (e.g., wgpu.CullModeNone, wgpu.CullModeFront, wgpu.CullModeBack)
//
// Returns:
//   - PassBuilderOption: a function that sets the cull mode for this pass
func WithCullMode(mode wgpu.CullMode) PassBuilderOption {
	return func(p *pass) {
		p.cullMode = mode
	}
}

// WithBlendState enables blending with the given state.
//
// Parameters:
//   - blendState: the blend state to use for this pass
//
// Returns:
//   - PassBuilderOption: a function that sets the blend state for this pass
func WithBlendState(blendState *wgpu.BlendState) PassBuilderOption {
	return func(p *pass) {
		p.blendState = blendState
	}
}
