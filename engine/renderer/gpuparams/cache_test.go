package gpuparams

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-params/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/technique"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type releasableBlock struct {
	testBlock
	released int
}

func (b *releasableBlock) Release() { b.released++ }

func singlePassTechnique(t *testing.T, key string) technique.Technique {
	t.Helper()
	return technique.NewTechnique(key, technique.WithPass(technique.NewPass("p",
		technique.WithFragmentShader(mustProgram(t, key+"-fs", shader.ShaderTypeFragment, materialBlock+albedoDecl)))))
}

func TestSetCache(t *testing.T) {
	layout := scenarioLayout(t)
	var allocated []*releasableBlock
	newBlock := func(name string, size int) *releasableBlock {
		b := &releasableBlock{testBlock: *newTestBlock(name, size)}
		allocated = append(allocated, b)
		return b
	}
	techs := []technique.Technique{singlePassTechnique(t, "a"), singlePassTechnique(t, "b"), singlePassTechnique(t, "c")}
	cache := NewSetCache[*releasableBlock, *testTexture, string, int](layout, techs, newBlock, 2)

	a, fresh, err := cache.Get(0)
	require.NoError(t, err)
	assert.True(t, fresh)
	again, fresh, err := cache.Get(0)
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Same(t, a, again)

	_, _, err = cache.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	// building c evicts a, the least recently used set
	_, _, err = cache.Get(2)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())
	_, ok := cache.Peek(0)
	assert.False(t, ok)
	require.Len(t, allocated, 3)
	assert.Equal(t, 1, allocated[0].released)
	assert.Empty(t, a.OwnedBlocks())

	_, _, err = cache.Get(3)
	assert.Error(t, err)

	cache.Purge()
	assert.Zero(t, cache.Len())
	assert.Equal(t, 1, allocated[1].released)
	assert.Equal(t, 1, allocated[2].released)
}

func TestSetCacheBlockOverride(t *testing.T) {
	layout := scenarioLayout(t)
	techs := []technique.Technique{singlePassTechnique(t, "a"), singlePassTechnique(t, "b")}
	cache := NewSetCache[*releasableBlock, *testTexture, string, int](layout, techs, func(name string, size int) *releasableBlock {
		return &releasableBlock{testBlock: *newTestBlock(name, size)}
	}, 0)

	a, _, err := cache.Get(0)
	require.NoError(t, err)
	owned := a.OwnedBlocks()[0]

	shared := &releasableBlock{testBlock: *newTestBlock("material", 16)}
	cache.SetParamBlockBuffer("material", shared, true)
	assert.Same(t, shared, a.GpuParams(0).ParamBlockBuffer(0, 0))
	assert.Equal(t, 1, owned.released, "the replaced owned buffer is released")

	b, _, err := cache.Get(1)
	require.NoError(t, err)
	assert.Same(t, shared, b.GpuParams(0).ParamBlockBuffer(0, 0))
	assert.False(t, b.Blocks()[0].AllowUpdate)

	cache.Purge()
	assert.Zero(t, shared.released, "buffers supplied by name are not owned")
}

func TestNewSetCacheBuildError(t *testing.T) {
	layout, err := material.NewParamLayout()
	require.NoError(t, err)
	cache := NewSetCache[*testBlock, *testTexture, string, int](layout, []technique.Technique{singlePassTechnique(t, "a")}, newTestBlock, 4)
	_, _, err = cache.Get(0)
	assert.ErrorIs(t, err, ErrUnboundParam)
	assert.Zero(t, cache.Len())
}
