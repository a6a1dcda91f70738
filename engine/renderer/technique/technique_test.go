package technique

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-params/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustShader(t *testing.T, key string, stage shader.ShaderType) shader.Shader {
	t.Helper()
	s, err := shader.NewShaderFromSource(key, stage, "@group(0) @binding(0) var<uniform> tint: vec4<f32>;")
	require.NoError(t, err)
	return s
}

func TestNewPass(t *testing.T) {
	vs := mustShader(t, "vs", shader.ShaderTypeVertex)
	fs := mustShader(t, "fs", shader.ShaderTypeFragment)

	p := NewPass("opaque", WithVertexShader(vs), WithFragmentShader(fs), WithCullMode(wgpu.CullModeBack), WithDepthWriteEnabled(false))

	assert.Equal(t, "opaque", p.Key())
	assert.Same(t, vs, p.Program(shader.ShaderTypeVertex))
	assert.Same(t, fs, p.Program(shader.ShaderTypeFragment))
	assert.Nil(t, p.Program(shader.ShaderTypeCompute))
	assert.Nil(t, p.Program(shader.ShaderType(42)))
	assert.True(t, p.HasStage(shader.ShaderTypeVertex))
	assert.False(t, p.HasStage(shader.ShaderTypeGeometry))
	assert.Equal(t, 2, p.NumStages())
	assert.True(t, p.DepthTestEnabled())
	assert.False(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Nil(t, p.BlendState())
}

func TestNewPassWithShaders(t *testing.T) {
	vs := mustShader(t, "vs", shader.ShaderTypeVertex)
	cs := mustShader(t, "cs", shader.ShaderTypeCompute)

	p := NewPass("mixed", WithShaders(vs, cs))
	assert.Same(t, cs, p.Program(shader.ShaderTypeCompute))
	assert.Equal(t, 2, p.NumStages())
}

func TestNewPassStageMismatch(t *testing.T) {
	fs := mustShader(t, "fs", shader.ShaderTypeFragment)
	assert.Panics(t, func() { NewPass("bad", WithVertexShader(fs)) })
	assert.Panics(t, func() { NewPass("bad", WithStage(shader.ShaderType(-1), fs)) })
}

func TestNewTechnique(t *testing.T) {
	p0 := NewPass("p0")
	p1 := NewPass("p1")

	tech := NewTechnique("forward", WithPasses(p0, nil, p1), WithTags("forward", "opaque"))

	assert.Equal(t, "forward", tech.Key())
	assert.Equal(t, 2, tech.NumPasses())
	assert.Same(t, p1, tech.Pass(1))
	assert.Nil(t, tech.Pass(2))
	assert.Nil(t, tech.Pass(-1))
	assert.True(t, tech.HasTag("opaque"))
	assert.False(t, tech.HasTag("shadow"))

	passes := tech.Passes()
	passes[0] = nil
	assert.NotNil(t, tech.Pass(0))
}
