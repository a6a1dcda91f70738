package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-params/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testTexture struct{ name string }

type testParams = Params[*testTexture, string, int]

func newTestLayout(t *testing.T) ParamLayout {
	t.Helper()
	l, err := NewParamLayout(
		WithDataParam("tint", "material.tint", DataTypeFloat4),
		WithDataParam("roughness", "", DataTypeFloat1),
		WithDataArrayParam("weights", "", DataTypeFloat1, 4),
		WithDataParam("normalMat", "", DataTypeMat3x3),
		WithDataParam("counts", "", DataTypeUint2),
		WithStructParam("light", "", 32, 2),
		WithTextureParam("albedo", "albedoTex", "diffuseTex"),
		WithLoadStoreTextureParam("output"),
		WithBufferParam("lights"),
		WithSamplerParam("albedoSampler"),
		WithParamBlock("frame", true),
		WithParamBlock("material", false),
	)
	require.NoError(t, err)
	return l
}

func TestNewParamLayout(t *testing.T) {
	l := newTestLayout(t)

	assert.Equal(t, 10, l.NumParams())
	idx, ok := l.Index("weights")
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	p, ok := l.Param(idx)
	require.True(t, ok)
	assert.Equal(t, ParamDesc{Name: "weights", Kind: ParamKindData, GpuVarNames: []string{"weights"}, Type: DataTypeFloat1, ArraySize: 4, ElementSize: 4}, p)
	assert.Equal(t, 16, p.DataSize())

	tint, _ := l.Param(0)
	assert.Equal(t, "material.tint", tint.GpuVarName())

	assert.Equal(t, []int{6}, l.ParamsForGpuVar(ParamKindTexture, "diffuseTex"))
	assert.Empty(t, l.ParamsForGpuVar(ParamKindSampler, "diffuseTex"))
	assert.Equal(t, []int{1}, l.ParamsForGpuVar(ParamKindData, "roughness"))

	assert.True(t, l.IsShared("frame"))
	assert.False(t, l.IsShared("material"))
	assert.False(t, l.IsShared("unknown"))
	assert.Len(t, l.Blocks(), 2)

	_, ok = l.Param(99)
	assert.False(t, ok)
}

func TestNewParamLayoutErrors(t *testing.T) {
	_, err := NewParamLayout(WithDataParam("a", "", DataTypeFloat1), WithTextureParam("a"))
	assert.ErrorIs(t, err, ErrDuplicateParam)

	_, err = NewParamLayout(WithDataArrayParam("a", "", DataTypeFloat1, 0))
	assert.ErrorIs(t, err, ErrInvalidParam)

	_, err = NewParamLayout(WithDataParam("s", "", DataTypeStruct))
	assert.ErrorIs(t, err, ErrInvalidParam)

	_, err = NewParamLayout(WithParamBlock("b", false), WithParamBlock("b", true))
	assert.ErrorIs(t, err, ErrDuplicateParam)

	_, err = NewParamLayout(WithSamplerParam(""))
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestParamsSetters(t *testing.T) {
	p := NewParams[*testTexture, string, int](newTestLayout(t))

	require.NoError(t, p.SetVec4("tint", mgl32.Vec4{1, 0, 0, 1}))
	data := p.Data(0)
	assert.Equal(t, float32(1), common.Float32At(data, 0))
	assert.Equal(t, float32(0), common.Float32At(data, 1))
	assert.Equal(t, float32(1), common.Float32At(data, 3))

	require.NoError(t, p.SetFloat("roughness", 0.5))
	assert.Equal(t, float32(0.5), common.Float32At(p.Data(1), 0))

	require.NoError(t, p.SetMat3("normalMat", mgl32.Mat3{1, 2, 3, 4, 5, 6, 7, 8, 9}))
	m := p.Data(3)
	require.Len(t, m, 48)
	assert.Equal(t, float32(3), common.Float32At(m, 2))
	assert.Equal(t, float32(0), common.Float32At(m, 3))
	assert.Equal(t, float32(4), common.Float32At(m, 4))
	assert.Equal(t, float32(9), common.Float32At(m, 10))

	require.NoError(t, p.SetUints("counts", 7, 9))
	assert.Equal(t, []byte{7, 0, 0, 0, 9, 0, 0, 0}, p.Data(4))

	require.NoError(t, p.SetRaw("weights", 2, []byte{1, 2, 3, 4}))
	assert.Equal(t, []byte{1, 2, 3, 4}, p.Element(2, 2))
	assert.Nil(t, p.Element(2, 4))

	albedo := &testTexture{name: "albedo"}
	require.NoError(t, p.SetTexture("albedo", albedo))
	assert.Same(t, albedo, p.Texture(6))
	require.NoError(t, p.SetBuffer("lights", "light-buffer"))
	assert.Equal(t, "light-buffer", p.Buffer(8))
	require.NoError(t, p.SetSamplerState("albedoSampler", 3))
	assert.Equal(t, 3, p.SamplerState(9))
}

func TestParamsSetterErrors(t *testing.T) {
	p := NewParams[*testTexture, string, int](newTestLayout(t))

	assert.ErrorIs(t, p.SetFloat("missing", 1), ErrUnknownParam)
	assert.ErrorIs(t, p.SetFloat("tint", 1), ErrKindMismatch)
	assert.ErrorIs(t, p.SetVec4("albedo", mgl32.Vec4{}), ErrKindMismatch)
	assert.ErrorIs(t, p.SetTexture("output", nil), ErrKindMismatch)
	assert.ErrorIs(t, p.SetLoadStoreTexture("albedo", nil), ErrKindMismatch)
	assert.ErrorIs(t, p.SetInts("counts", 1, 2), ErrKindMismatch)
	assert.ErrorIs(t, p.SetUints("counts"), ErrOutOfRange)
	assert.ErrorIs(t, p.SetRaw("weights", 4, nil), ErrOutOfRange)
	assert.ErrorIs(t, p.SetRaw("light", 0, make([]byte, 33)), ErrOutOfRange)
	assert.ErrorIs(t, p.SetRaw("albedo", 0, nil), ErrKindMismatch)
}

func TestParamsDirtyChannels(t *testing.T) {
	p := NewParams[*testTexture, string, int](newTestLayout(t))

	assert.Equal(t, ^uint32(0), p.DirtyMask(0))
	p.MarkClean(0)
	p.MarkClean(5)
	assert.False(t, p.IsDirty(0, 0))
	assert.False(t, p.IsDirty(0, 5))
	assert.True(t, p.IsDirty(0, 1))

	p.ClearDirty(1, 1)
	assert.False(t, p.IsDirty(1, 1))
	assert.True(t, p.IsDirty(1, 2))

	require.NoError(t, p.SetVec4("tint", mgl32.Vec4{1, 1, 1, 1}))
	assert.True(t, p.IsDirty(0, 0))
	assert.True(t, p.IsDirty(0, 5))
	assert.False(t, p.IsDirty(1, 0))

	p.MarkDirty(1)
	assert.True(t, p.IsDirty(1, 0))

	assert.Panics(t, func() { p.IsDirty(0, 32) })
	assert.Panics(t, func() { p.MarkClean(-1) })
	assert.Panics(t, func() { p.ClearDirty(0, 40) })
	assert.False(t, p.IsDirty(99, 0))
}

func TestDataType(t *testing.T) {
	assert.Equal(t, 48, DataTypeMat3x3.ElementSize())
	assert.Equal(t, 12, DataTypeFloat3.ElementSize())
	assert.True(t, DataTypeFloat4.MatchesWGSL("vec4f"))
	assert.True(t, DataTypeFloat4.MatchesWGSL("vec4<f32>"))
	assert.False(t, DataTypeFloat4.MatchesWGSL("vec4<i32>"))
	assert.False(t, DataTypeStruct.MatchesWGSL("Light"))
	assert.Equal(t, "uint3", DataTypeUint3.String())

	dt, err := ParseDataType("mat4x4")
	require.NoError(t, err)
	assert.Equal(t, DataTypeMat4x4, dt)
	_, err = ParseDataType("double")
	assert.ErrorIs(t, err, ErrInvalidParam)
}
