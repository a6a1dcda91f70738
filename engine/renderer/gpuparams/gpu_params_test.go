package gpuparams

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-params/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/technique"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testBlock struct {
	name   string
	data   []byte
	writes int
}

func newTestBlock(name string, size int) *testBlock {
	return &testBlock{name: name, data: make([]byte, size)}
}

func (b *testBlock) Size() int { return len(b.data) }

func (b *testBlock) Write(offset int, data []byte) {
	copy(b.data[offset:], data)
	b.writes++
}

type testTexture struct{ name string }

type (
	testGpuParams = GpuParams[*testBlock, *testTexture, string, int]
	testSet       = ParamsSet[*testBlock, *testTexture, string, int]
)

func mustProgram(t *testing.T, key string, stage shader.ShaderType, source string) shader.Shader {
	t.Helper()
	s, err := shader.NewShaderFromSource(key, stage, source)
	require.NoError(t, err)
	return s
}

func TestNewGpuParams(t *testing.T) {
	vs := mustProgram(t, "vs", shader.ShaderTypeVertex, `
struct MaterialParams { tint: vec4<f32> }
@group(0) @binding(0) var<uniform> material: MaterialParams;
@group(1) @binding(0) var<storage, read> instances: array<mat4x4<f32>>;
`)
	fs := mustProgram(t, "fs", shader.ShaderTypeFragment, `
struct MaterialParams { tint: vec4<f32> }
@group(0) @binding(0) var<uniform> material: MaterialParams;
@group(0) @binding(2) var albedoSampler: sampler;
@group(0) @binding(1) var albedoTex: texture_2d<f32>;
@group(2) @binding(0) var outImage: texture_storage_2d<rgba8unorm, write>;
`)
	pass := technique.NewPass("opaque", technique.WithShaders(vs, fs))

	gp, err := NewGpuParams[*testBlock, *testTexture, string, int](pass)
	require.NoError(t, err)

	assert.Same(t, pass, gp.Pass())
	assert.True(t, gp.HasStage(shader.ShaderTypeFragment))
	assert.False(t, gp.HasStage(shader.ShaderTypeCompute))
	assert.False(t, gp.HasStage(shader.ShaderType(-1)))
	assert.Equal(t, []int{0, 1, 2}, gp.Sets())

	bindings := gp.Bindings()
	require.Len(t, bindings, 5)
	kinds := make([]ResourceKind, len(bindings))
	for i, b := range bindings {
		kinds[i] = b.Kind
	}
	assert.Equal(t, []ResourceKind{
		ResourceKindParamBlock, ResourceKindTexture, ResourceKindSampler, ResourceKindBuffer, ResourceKindLoadStoreTexture,
	}, kinds)
	assert.Equal(t, []shader.ShaderType{shader.ShaderTypeVertex, shader.ShaderTypeFragment}, bindings[0].Stages)
	assert.Equal(t, uint64(16), bindings[0].Block.Size)

	b, ok := gp.Binding(0, 1)
	require.True(t, ok)
	assert.Equal(t, "albedoTex", b.Name)
	_, ok = gp.Binding(3, 0)
	assert.False(t, ok)
}

func TestGpuParamsSetters(t *testing.T) {
	fs := mustProgram(t, "fs", shader.ShaderTypeFragment, `
struct MaterialParams { tint: vec4<f32> }
@group(0) @binding(0) var<uniform> material: MaterialParams;
@group(0) @binding(1) var albedoTex: texture_2d<f32>;
@group(0) @binding(2) var albedoSampler: sampler;
@group(0) @binding(3) var<storage, read> lights: array<vec4<f32>>;
@group(0) @binding(4) var outImage: texture_storage_2d<rgba8unorm, write>;
`)
	gp, err := NewGpuParams[*testBlock, *testTexture, string, int](technique.NewPass("p", technique.WithFragmentShader(fs)))
	require.NoError(t, err)

	block := newTestBlock("material", 16)
	tex := &testTexture{name: "bricks"}
	out := &testTexture{name: "out"}

	assert.Zero(t, gp.Version())
	assert.True(t, gp.SetParamBlockBuffer(0, 0, block))
	assert.True(t, gp.SetTexture(0, 1, tex))
	assert.True(t, gp.SetSamplerState(0, 2, 7))
	assert.True(t, gp.SetBuffer(0, 3, "lights"))
	assert.True(t, gp.SetLoadStoreTexture(0, 4, out))
	assert.Equal(t, uint64(5), gp.Version())

	// same handle again is not a change
	assert.True(t, gp.SetTexture(0, 1, tex))
	assert.Equal(t, uint64(5), gp.Version())

	// wrong kind or unknown slot
	assert.False(t, gp.SetTexture(0, 2, tex))
	assert.False(t, gp.SetSamplerState(0, 1, 1))
	assert.False(t, gp.SetBuffer(4, 0, "x"))
	assert.False(t, gp.SetLoadStoreTexture(0, 1, out))
	assert.Equal(t, uint64(5), gp.Version())

	assert.Same(t, block, gp.ParamBlockBuffer(0, 0))
	assert.Same(t, tex, gp.Texture(0, 1))
	assert.Same(t, out, gp.Texture(0, 4))
	assert.Equal(t, 7, gp.SamplerState(0, 2))
	assert.Equal(t, "lights", gp.Buffer(0, 3))
	assert.Nil(t, gp.ParamBlockBuffer(0, 1))
	assert.Nil(t, gp.Texture(0, 0))
	assert.Zero(t, gp.SamplerState(0, 0))

	other := newTestBlock("material", 16)
	assert.True(t, gp.SetParamBlockBufferByName(shader.ShaderTypeFragment, "material", other))
	assert.Same(t, other, gp.ParamBlockBuffer(0, 0))
	assert.False(t, gp.SetParamBlockBufferByName(shader.ShaderTypeVertex, "material", other))
	assert.False(t, gp.SetParamBlockBufferByName(shader.ShaderTypeFragment, "frame", other))
}

func TestNewGpuParamsSlotConflict(t *testing.T) {
	vs := mustProgram(t, "vs", shader.ShaderTypeVertex, `@group(0) @binding(1) var<uniform> exposure: f32;`)
	fs := mustProgram(t, "fs", shader.ShaderTypeFragment, `@group(0) @binding(1) var albedoTex: texture_2d<f32>;`)
	_, err := NewGpuParams[*testBlock, *testTexture, string, int](technique.NewPass("p", technique.WithShaders(vs, fs)))
	assert.ErrorIs(t, err, ErrSlotConflict)

	vs = mustProgram(t, "vs", shader.ShaderTypeVertex, `@group(0) @binding(0) var<uniform> exposure: f32;`)
	fs = mustProgram(t, "fs", shader.ShaderTypeFragment, `@group(0) @binding(0) var<uniform> exposure: vec4<f32>;`)
	_, err = NewGpuParams[*testBlock, *testTexture, string, int](technique.NewPass("p", technique.WithShaders(vs, fs)))
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestResourceKindString(t *testing.T) {
	assert.Equal(t, "param block", ResourceKindParamBlock.String())
	assert.Equal(t, "sampler", ResourceKindSampler.String())
	assert.Equal(t, "ResourceKind(9)", ResourceKind(9).String())
}
