package gpuparams

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/Carmen-Shannon/oxy-params/common"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/technique"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const materialBlock = `
struct MaterialParams { tint: vec4<f32> }
@group(0) @binding(0) var<uniform> material: MaterialParams;
`

const albedoDecl = `
@group(0) @binding(1) var albedoTex: texture_2d<f32>;
`

// twoPassTechnique has pass 0 with vertex and fragment stages and pass 1 with vertex and compute stages.
func twoPassTechnique(t *testing.T) technique.Technique {
	t.Helper()
	return technique.NewTechnique("lit",
		technique.WithPass(technique.NewPass("forward",
			technique.WithVertexShader(mustProgram(t, "vs0", shader.ShaderTypeVertex, materialBlock)),
			technique.WithFragmentShader(mustProgram(t, "fs0", shader.ShaderTypeFragment, materialBlock+albedoDecl)),
		)),
		technique.WithPass(technique.NewPass("bake",
			technique.WithVertexShader(mustProgram(t, "vs1", shader.ShaderTypeVertex, materialBlock)),
			technique.WithComputeShader(mustProgram(t, "cs1", shader.ShaderTypeCompute, materialBlock+albedoDecl)),
		)),
	)
}

func scenarioLayout(t *testing.T) material.ParamLayout {
	t.Helper()
	l, err := material.NewParamLayout(
		material.WithDataParam("tint", "material.tint", material.DataTypeFloat4),
		material.WithTextureParam("albedo", "albedoTex"),
		material.WithDataParam("unused", "", material.DataTypeFloat1),
	)
	require.NoError(t, err)
	return l
}

type blockAllocator struct {
	blocks []*testBlock
}

func (a *blockAllocator) newBlock(name string, size int) *testBlock {
	b := newTestBlock(name, size)
	a.blocks = append(a.blocks, b)
	return b
}

func tintBytes(v mgl32.Vec4) []byte {
	out := make([]byte, 16)
	common.PutFloat32s(out, v[:]...)
	return out
}

func versions(s *testSet) []uint64 {
	out := make([]uint64, s.NumPasses())
	for i := range out {
		out[i] = s.GpuParams(i).Version()
	}
	return out
}

func TestParamsSetScenario(t *testing.T) {
	layout := scenarioLayout(t)
	alloc := &blockAllocator{}
	set, err := NewParamsSet[*testBlock, *testTexture, string, int](twoPassTechnique(t), layout, alloc.newBlock)
	require.NoError(t, err)

	assert.True(t, set.IsBuilt())
	assert.Equal(t, 2, set.NumPasses())
	assert.Nil(t, set.GpuParams(2))
	assert.Nil(t, set.GpuParams(-1))
	assert.Equal(t, []int{0, 1}, set.BoundParams())

	// one shareable block serves every stage of both passes
	require.Len(t, alloc.blocks, 1)
	block := alloc.blocks[0]
	assert.Equal(t, 16, block.Size())
	blocks := set.Blocks()
	require.Len(t, blocks, 1)
	assert.Equal(t, BlockInfo[*testBlock]{
		Name: "material", Buffer: block, Shareable: true, AllowUpdate: true, IsUsed: true, Owned: true, Size: 16,
	}, blocks[0])
	assert.Equal(t, []*testBlock{block}, set.OwnedBlocks())
	assert.Equal(t, []DataParamInfo{{ParamIdx: 0, BlockIdx: 0, Offset: 0, Stride: 16, Count: 1, ElementSize: 16}}, set.DataParamInfos())
	for i := 0; i < set.NumPasses(); i++ {
		assert.Same(t, block, set.GpuParams(i).ParamBlockBuffer(0, 0))
	}

	info, ok := set.PassParamInfo(0)
	require.True(t, ok)
	assert.Equal(t, []ObjectParamInfo{{ParamIdx: 1, SlotIdx: 1, SetIdx: 0}}, info.Stages[shader.ShaderTypeFragment].Textures)
	assert.Empty(t, info.Stages[shader.ShaderTypeVertex].Textures)
	info, ok = set.PassParamInfo(1)
	require.True(t, ok)
	assert.Len(t, info.Stages[shader.ShaderTypeCompute].Textures, 1)
	_, ok = set.PassParamInfo(2)
	assert.False(t, ok)

	params := material.NewParams[*testTexture, string, int](layout)
	tex := &testTexture{name: "bricks"}
	require.NoError(t, params.SetVec4("tint", mgl32.Vec4{1, 0, 0, 1}))
	require.NoError(t, params.SetTexture("albedo", tex))

	set.Update(params, 0, false)

	assert.Equal(t, tintBytes(mgl32.Vec4{1, 0, 0, 1}), block.data)
	assert.Equal(t, 1, block.writes)
	for i := 0; i < set.NumPasses(); i++ {
		assert.Same(t, tex, set.GpuParams(i).Texture(0, 1))
	}
	assert.False(t, params.IsDirty(0, 0))
	assert.False(t, params.IsDirty(1, 0))
	assert.True(t, params.IsDirty(2, 0), "unbound params keep their dirty state")
	assert.True(t, params.IsDirty(0, 1), "other channels are untouched")

	before := versions(set)
	set.Update(params, 0, false)
	assert.Equal(t, 1, block.writes)
	assert.Equal(t, before, versions(set))
}

func TestParamsSetUpdateAll(t *testing.T) {
	layout := scenarioLayout(t)
	alloc := &blockAllocator{}
	set, err := NewParamsSet[*testBlock, *testTexture, string, int](twoPassTechnique(t), layout, alloc.newBlock)
	require.NoError(t, err)

	params := material.NewParams[*testTexture, string, int](layout)
	params.MarkClean(3)
	require.NoError(t, params.SetTexture("albedo", &testTexture{name: "grass"}))
	params.MarkClean(3)

	set.Update(params, 3, false)
	block := alloc.blocks[0]
	assert.Zero(t, block.writes)
	assert.Nil(t, set.GpuParams(0).Texture(0, 1))

	set.Update(params, 3, true)
	assert.Equal(t, 1, block.writes)
	assert.Equal(t, "grass", set.GpuParams(0).Texture(0, 1).name)
	assert.Equal(t, "grass", set.GpuParams(1).Texture(0, 1).name)

	before := versions(set)
	set.Update(params, 3, false)
	assert.Equal(t, 1, block.writes)
	assert.Equal(t, before, versions(set))
}

func TestParamsSetIgnoreInUpdate(t *testing.T) {
	layout := scenarioLayout(t)
	set, err := NewParamsSet[*testBlock, *testTexture, string, int](twoPassTechnique(t), layout, newTestBlock)
	require.NoError(t, err)

	ext := newTestBlock("material", 16)
	set.SetParamBlockBuffer("material", ext, true)

	blocks := set.Blocks()
	assert.Same(t, ext, blocks[0].Buffer)
	assert.False(t, blocks[0].AllowUpdate)
	assert.False(t, blocks[0].Owned)
	assert.Empty(t, set.OwnedBlocks())
	for i := 0; i < set.NumPasses(); i++ {
		assert.Same(t, ext, set.GpuParams(i).ParamBlockBuffer(0, 0))
	}

	params := material.NewParams[*testTexture, string, int](layout)
	require.NoError(t, params.SetVec4("tint", mgl32.Vec4{0, 1, 0, 1}))
	set.Update(params, 0, false)
	assert.Zero(t, ext.writes)
	assert.False(t, params.IsDirty(0, 0))

	// a full update still writes
	set.Update(params, 0, true)
	assert.Equal(t, 1, ext.writes)
	assert.Equal(t, tintBytes(mgl32.Vec4{0, 1, 0, 1}), ext.data)

	set.SetParamBlockBuffer("material", ext, false)
	assert.True(t, set.Blocks()[0].AllowUpdate)
	require.NoError(t, params.SetVec4("tint", mgl32.Vec4{0, 0, 1, 1}))
	set.Update(params, 0, false)
	assert.Equal(t, 2, ext.writes)
	assert.Equal(t, tintBytes(mgl32.Vec4{0, 0, 1, 1}), ext.data)
}

func TestParamsSetReassignedBlockReceivesValues(t *testing.T) {
	layout := scenarioLayout(t)
	set, err := NewParamsSet[*testBlock, *testTexture, string, int](twoPassTechnique(t), layout, newTestBlock)
	require.NoError(t, err)
	params := material.NewParams[*testTexture, string, int](layout)

	// swapping the owned buffer for a caller buffer carries the current values over
	require.NoError(t, params.SetVec4("tint", mgl32.Vec4{1, 0, 0, 1}))
	set.Update(params, 0, true)
	repl := newTestBlock("material", 16)
	set.SetParamBlockBuffer("material", repl, false)
	assert.True(t, set.Blocks()[0].Stale)
	set.Update(params, 0, false)
	assert.Equal(t, 1, repl.writes)
	assert.Equal(t, tintBytes(mgl32.Vec4{1, 0, 0, 1}), repl.data)
	assert.False(t, set.Blocks()[0].Stale)

	set.Update(params, 0, false)
	assert.Equal(t, 1, repl.writes)

	// a value changed while the block is ignored is written once updates are allowed again
	set.SetParamBlockBuffer("material", repl, true)
	require.NoError(t, params.SetVec4("tint", mgl32.Vec4{0, 1, 0, 1}))
	set.Update(params, 0, false)
	assert.Equal(t, 1, repl.writes)
	assert.False(t, params.IsDirty(0, 0))

	set.SetParamBlockBuffer("material", repl, false)
	set.Update(params, 0, false)
	assert.Equal(t, 2, repl.writes)
	assert.Equal(t, tintBytes(mgl32.Vec4{0, 1, 0, 1}), repl.data)
}

func TestParamsSetUnknownBlockName(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	set, err := NewParamsSet[*testBlock, *testTexture, string, int](twoPassTechnique(t), scenarioLayout(t), newTestBlock, WithLogger(logger))
	require.NoError(t, err)

	blocks := set.Blocks()
	before := versions(set)
	set.SetParamBlockBuffer("frame", newTestBlock("frame", 64), false)

	assert.Equal(t, blocks, set.Blocks())
	assert.Equal(t, before, versions(set))
	assert.Contains(t, logs.String(), "no block to assign")
}

func TestParamsSetUpdatePreconditions(t *testing.T) {
	layout := scenarioLayout(t)
	set, err := NewParamsSet[*testBlock, *testTexture, string, int](twoPassTechnique(t), layout, newTestBlock)
	require.NoError(t, err)
	params := material.NewParams[*testTexture, string, int](layout)

	assert.Panics(t, func() { set.Update(params, 32, false) })
	assert.Panics(t, func() { set.Update(params, -1, false) })
	assert.NotPanics(t, func() { set.Update(params, material.SyncDirtyBit, false) })

	foreign := material.NewParams[*testTexture, string, int](scenarioLayout(t))
	assert.PanicsWithValue(t, "gpuparams: params for technique lit were created from a different layout", func() {
		set.Update(foreign, 0, false)
	})
	assert.Panics(t, func() { set.Update(nil, 0, false) })
}

func TestParamsSetUnbuilt(t *testing.T) {
	var set testSet
	layout := scenarioLayout(t)

	assert.False(t, set.IsBuilt())
	assert.Zero(t, set.NumPasses())
	assert.Nil(t, set.GpuParams(0))
	assert.Nil(t, set.Blocks())
	assert.Nil(t, set.DataParamInfos())
	assert.Nil(t, set.BoundParams())
	assert.Nil(t, set.OwnedBlocks())
	assert.Nil(t, set.Layout())
	assert.Nil(t, set.Technique())
	_, ok := set.PassParamInfo(0)
	assert.False(t, ok)

	params := material.NewParams[*testTexture, string, int](layout)
	assert.NotPanics(t, func() {
		set.Update(params, 0, true)
		set.SetParamBlockBuffer("material", newTestBlock("material", 16), false)
	})
	assert.True(t, params.IsDirty(0, 0))
	assert.Panics(t, func() { set.Update(params, 40, false) })
}

func TestParamsSetSharedBlock(t *testing.T) {
	frameBlock := `
struct Frame { viewProj: mat4x4<f32>, time: f32 }
@group(1) @binding(0) var<uniform> frame: Frame;
`
	tech := technique.NewTechnique("t", technique.WithPass(technique.NewPass("p",
		technique.WithVertexShader(mustProgram(t, "vs", shader.ShaderTypeVertex, materialBlock+frameBlock)),
		technique.WithFragmentShader(mustProgram(t, "fs", shader.ShaderTypeFragment, frameBlock)),
	)))
	layout, err := material.NewParamLayout(
		material.WithDataParam("tint", "material.tint", material.DataTypeFloat4),
		material.WithDataParam("time", "frame.time", material.DataTypeFloat1),
		material.WithParamBlock("frame", true),
	)
	require.NoError(t, err)

	alloc := &blockAllocator{}
	set, err := NewParamsSet[*testBlock, *testTexture, string, int](tech, layout, alloc.newBlock)
	require.NoError(t, err)

	require.Len(t, alloc.blocks, 1, "shared blocks are never allocated")
	idx := -1
	for i, b := range set.Blocks() {
		if b.Name == "frame" {
			idx = i
		}
	}
	require.GreaterOrEqual(t, idx, 0)
	frame := set.Blocks()[idx]
	assert.True(t, frame.External)
	assert.True(t, frame.IsUsed)
	assert.False(t, frame.Owned)
	assert.Nil(t, frame.Buffer)
	assert.Nil(t, set.GpuParams(0).ParamBlockBuffer(1, 0))

	params := material.NewParams[*testTexture, string, int](layout)
	require.NoError(t, params.SetFloat("time", 2.5))
	assert.NotPanics(t, func() { set.Update(params, 0, false) })

	owner := newTestBlock("frame", 80)
	set.SetParamBlockBuffer("frame", owner, false)
	assert.Same(t, owner, set.GpuParams(0).ParamBlockBuffer(1, 0))

	require.NoError(t, params.SetFloat("time", 4))
	set.Update(params, 0, false)
	assert.Equal(t, 1, owner.writes)
	assert.Equal(t, float32(4), common.Float32At(owner.data[64:], 0))
}

func TestParamsSetNonShareableBlock(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	tech := technique.NewTechnique("t",
		technique.WithPass(technique.NewPass("a",
			technique.WithFragmentShader(mustProgram(t, "fs0", shader.ShaderTypeFragment, materialBlock)))),
		technique.WithPass(technique.NewPass("b",
			technique.WithFragmentShader(mustProgram(t, "fs1", shader.ShaderTypeFragment, `
struct MaterialParams { tint: vec4<f32>, roughness: f32 }
@group(0) @binding(0) var<uniform> material: MaterialParams;
`)))),
	)
	layout, err := material.NewParamLayout(
		material.WithDataParam("tint", "material.tint", material.DataTypeFloat4),
		material.WithDataParam("roughness", "", material.DataTypeFloat1),
	)
	require.NoError(t, err)

	alloc := &blockAllocator{}
	set, err := NewParamsSet[*testBlock, *testTexture, string, int](tech, layout, alloc.newBlock, WithLogger(logger))
	require.NoError(t, err)

	blocks := set.Blocks()
	require.Len(t, blocks, 2)
	assert.False(t, blocks[0].Shareable)
	assert.False(t, blocks[1].Shareable)
	assert.Equal(t, 16, blocks[0].Size)
	assert.Equal(t, 32, blocks[1].Size)
	assert.Same(t, alloc.blocks[0], set.GpuParams(0).ParamBlockBuffer(0, 0))
	assert.Same(t, alloc.blocks[1], set.GpuParams(1).ParamBlockBuffer(0, 0))

	params := material.NewParams[*testTexture, string, int](layout)
	require.NoError(t, params.SetVec4("tint", mgl32.Vec4{1, 1, 1, 1}))
	require.NoError(t, params.SetFloat("roughness", 0.5))
	set.Update(params, 0, false)
	assert.Equal(t, 1, alloc.blocks[0].writes)
	assert.Equal(t, 2, alloc.blocks[1].writes)
	assert.Equal(t, float32(0.5), common.Float32At(alloc.blocks[1].data[16:], 0))

	set.SetParamBlockBuffer("material", newTestBlock("material", 32), false)
	assert.Same(t, alloc.blocks[0], set.GpuParams(0).ParamBlockBuffer(0, 0))
	assert.Same(t, alloc.blocks[1], set.GpuParams(1).ParamBlockBuffer(0, 0))
	assert.Contains(t, logs.String(), "cannot be assigned by name")
}

func TestParamsSetArrayParam(t *testing.T) {
	tech := technique.NewTechnique("t", technique.WithPass(technique.NewPass("p",
		technique.WithFragmentShader(mustProgram(t, "fs", shader.ShaderTypeFragment, `
struct Light { color: vec3<f32>, intensity: f32 }
struct Palette { colors: array<vec4<f32>, 4>, lights: array<Light, 2> }
@group(0) @binding(0) var<uniform> palette: Palette;
`)))))
	layout, err := material.NewParamLayout(
		material.WithDataArrayParam("colors", "", material.DataTypeFloat4, 2),
		material.WithStructParam("lights", "palette.lights", 16, 4),
	)
	require.NoError(t, err)

	alloc := &blockAllocator{}
	set, err := NewParamsSet[*testBlock, *testTexture, string, int](tech, layout, alloc.newBlock)
	require.NoError(t, err)
	assert.Equal(t, []DataParamInfo{
		{ParamIdx: 0, BlockIdx: 0, Offset: 0, Stride: 16, Count: 2, ElementSize: 16},
		{ParamIdx: 1, BlockIdx: 0, Offset: 64, Stride: 16, Count: 2, ElementSize: 16},
	}, set.DataParamInfos())

	params := material.NewParams[*testTexture, string, int](layout)
	params.MarkClean(0)
	require.NoError(t, params.SetRaw("colors", 1, tintBytes(mgl32.Vec4{1, 2, 3, 4})))
	set.Update(params, 0, false)

	block := alloc.blocks[0]
	assert.Equal(t, 2, block.writes)
	assert.Equal(t, tintBytes(mgl32.Vec4{1, 2, 3, 4}), block.data[16:32])
	assert.Equal(t, make([]byte, 16), block.data[:16])
}

func TestNewParamsSetErrors(t *testing.T) {
	tests := []struct {
		name    string
		tech    func(t *testing.T) technique.Technique
		options []material.ParamLayoutOption
		wantErr error
	}{
		{
			name: "unbound block member",
			tech: twoPassTechnique,
			options: []material.ParamLayoutOption{
				material.WithTextureParam("albedo", "albedoTex"),
			},
			wantErr: ErrUnboundParam,
		},
		{
			name: "unbound texture",
			tech: twoPassTechnique,
			options: []material.ParamLayoutOption{
				material.WithDataParam("tint", "material.tint", material.DataTypeFloat4),
			},
			wantErr: ErrUnboundParam,
		},
		{
			name: "texture bound to a sampler parameter",
			tech: twoPassTechnique,
			options: []material.ParamLayoutOption{
				material.WithDataParam("tint", "material.tint", material.DataTypeFloat4),
				material.WithSamplerParam("albedoTex"),
			},
			wantErr: ErrUnboundParam,
		},
		{
			name: "type mismatch",
			tech: twoPassTechnique,
			options: []material.ParamLayoutOption{
				material.WithDataParam("tint", "material.tint", material.DataTypeFloat3),
				material.WithTextureParam("albedo", "albedoTex"),
			},
			wantErr: ErrTypeMismatch,
		},
		{
			name: "struct size mismatch",
			tech: twoPassTechnique,
			options: []material.ParamLayoutOption{
				material.WithStructParam("tint", "material.tint", 32, 1),
				material.WithTextureParam("albedo", "albedoTex"),
			},
			wantErr: ErrTypeMismatch,
		},
		{
			name: "several parameters for one member",
			tech: twoPassTechnique,
			options: []material.ParamLayoutOption{
				material.WithDataParam("tintA", "tint", material.DataTypeFloat4),
				material.WithDataParam("tintB", "tint", material.DataTypeFloat4),
				material.WithTextureParam("albedo", "albedoTex"),
			},
			wantErr: ErrAmbiguousParam,
		},
		{
			name: "several parameters for one texture",
			tech: twoPassTechnique,
			options: []material.ParamLayoutOption{
				material.WithDataParam("tint", "material.tint", material.DataTypeFloat4),
				material.WithTextureParam("albedo", "albedoTex"),
				material.WithTextureParam("diffuse", "albedoTex"),
			},
			wantErr: ErrAmbiguousParam,
		},
		{
			name: "unqualified parameter in two blocks",
			tech: func(t *testing.T) technique.Technique {
				return technique.NewTechnique("t", technique.WithPass(technique.NewPass("p",
					technique.WithFragmentShader(mustProgram(t, "fs", shader.ShaderTypeFragment, `
struct A { tint: vec4<f32> }
@group(0) @binding(0) var<uniform> first: A;
@group(0) @binding(1) var<uniform> second: A;
`)))))
			},
			options: []material.ParamLayoutOption{
				material.WithDataParam("tint", "", material.DataTypeFloat4),
			},
			wantErr: ErrAmbiguousParam,
		},
		{
			name: "unresolvable block type",
			tech: func(t *testing.T) technique.Technique {
				return technique.NewTechnique("t", technique.WithPass(technique.NewPass("p",
					technique.WithFragmentShader(mustProgram(t, "fs", shader.ShaderTypeFragment,
						`@group(0) @binding(0) var<uniform> mystery: Unknown;`)))))
			},
			wantErr: ErrInvalidBlock,
		},
		{
			name: "slot conflict",
			tech: func(t *testing.T) technique.Technique {
				return technique.NewTechnique("t", technique.WithPass(technique.NewPass("p",
					technique.WithVertexShader(mustProgram(t, "vs", shader.ShaderTypeVertex, materialBlock)),
					technique.WithFragmentShader(mustProgram(t, "fs", shader.ShaderTypeFragment,
						`@group(0) @binding(0) var albedoTex: texture_2d<f32>;`)))))
			},
			options: []material.ParamLayoutOption{
				material.WithDataParam("tint", "material.tint", material.DataTypeFloat4),
				material.WithTextureParam("albedo", "albedoTex"),
			},
			wantErr: ErrSlotConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout, err := material.NewParamLayout(tt.options...)
			require.NoError(t, err)
			_, err = NewParamsSet[*testBlock, *testTexture, string, int](tt.tech(t), layout, newTestBlock)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewParamsSetUnqualifiedField(t *testing.T) {
	layout, err := material.NewParamLayout(
		material.WithDataParam("tint", "", material.DataTypeFloat4),
		material.WithTextureParam("albedo", "albedoTex"),
	)
	require.NoError(t, err)
	set, err := NewParamsSet[*testBlock, *testTexture, string, int](twoPassTechnique(t), layout, newTestBlock)
	require.NoError(t, err)
	assert.Len(t, set.DataParamInfos(), 1)
	assert.Same(t, layout, set.Layout())
	assert.Equal(t, "lit", set.Technique().Key())
}
