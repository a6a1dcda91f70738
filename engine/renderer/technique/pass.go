package technique

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-params/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pass is the implementation of the Pass interface.
// It holds one program per programmable stage and the fixed-function state the pass is drawn with.
type pass struct {
	// key is the unique identifier for this pass within its technique
	key string

	// programs holds the shader bound to each stage, indexed by shader.ShaderType; nil marks an absent stage
	programs [shader.NumStages]shader.Shader

	// The following properties describe fixed-function state and can be toggled/set with the builder options.

	depthTestEnabled  bool
	depthWriteEnabled bool
	cullMode          wgpu.CullMode
	blendState        *wgpu.BlendState
}

// Pass defines one GPU draw or dispatch configuration within a technique. It binds at most one program
// to each of the shader.NumStages programmable stages; stages without a program are absent.
type Pass interface {
	// Key returns the unique key associated with this pass.
	//
	// Returns:
	//   - string: the unique key for this pass
	Key() string

	// Program retrieves the shader bound to a stage.
	//
	// Parameters:
	//   - stage: the stage to query
	//
	// Returns:
	//   - shader.Shader: the bound shader, or nil if the stage is absent or out of range
	Program(stage shader.ShaderType) shader.Shader

	// HasStage reports whether a program is bound to the stage.
	//
	// Parameters:
	//   - stage: the stage to query
	//
	// Returns:
	//   - bool: true if the stage has a program
	HasStage(stage shader.ShaderType) bool

	// NumStages returns the number of stages with a bound program.
	//
	// Returns:
	//   - int: the count of present stages
	NumStages() int

	// DepthTestEnabled returns whether depth testing is enabled for this pass.
	//
	// Returns:
	//   - bool: true if depth testing is enabled, false otherwise
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pass.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// CullMode returns the cull mode configured for this pass.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pass
	CullMode() wgpu.CullMode

	// BlendState returns the blend state configured for this pass.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state, or nil if blending is disabled
	BlendState() *wgpu.BlendState
}

var _ Pass = &pass{}

// NewPass creates a new Pass. A shader assigned to a stage other than its own ShaderType indicates
// a mis-assembled technique and panics.
//
// Parameters:
//   - key: the unique key for this pass
//   - opts: a variadic list of PassBuilderOption functions to configure the pass
//
// Returns:
//   - Pass: a new Pass instance with the specified configuration
func NewPass(key string, opts ...PassBuilderOption) Pass {
	p := &pass{
		key:               key,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeNone,
	}
	for _, opt := range opts {
		opt(p)
	}
	for stage, prog := range p.programs {
		if prog != nil && prog.ShaderType() != shader.ShaderType(stage) {
			panic(fmt.Sprintf("technique: pass %s binds %s shader %s to the %s stage", key, prog.ShaderType(), prog.Key(), shader.ShaderType(stage)))
		}
	}
	return p
}

func (p *pass) Key() string {
	return p.key
}

func (p *pass) Program(stage shader.ShaderType) shader.Shader {
	if stage < 0 || int(stage) >= shader.NumStages {
		return nil
	}
	return p.programs[stage]
}

func (p *pass) HasStage(stage shader.ShaderType) bool {
	return p.Program(stage) != nil
}

func (p *pass) NumStages() int {
	n := 0
	for _, prog := range p.programs {
		if prog != nil {
			n++
		}
	}
	return n
}

func (p *pass) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pass) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pass) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pass) BlendState() *wgpu.BlendState {
	return p.blendState
}
