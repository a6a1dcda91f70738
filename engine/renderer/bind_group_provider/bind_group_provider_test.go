package bind_group_provider

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindGroupProviderEntries(t *testing.T) {
	buf := &wgpu.Buffer{}
	tv := &wgpu.TextureView{}
	samp := &wgpu.Sampler{}
	p := NewBindGroupProvider("material", 1, WithSampler(2, samp), WithBuffer(0, buf), WithTextureView(1, tv))

	assert.Equal(t, "material", p.Label())
	assert.Equal(t, 1, p.Group())
	assert.True(t, p.NeedsRebuild())

	entries, err := p.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, wgpu.BindGroupEntry{Binding: 0, Buffer: buf, Size: wgpu.WholeSize}, entries[0])
	assert.Same(t, tv, entries[1].TextureView)
	assert.Same(t, samp, entries[2].Sampler)
	assert.Same(t, buf, p.Buffer(0))
	assert.Nil(t, p.Buffer(3))
}

func TestBindGroupProviderStale(t *testing.T) {
	tv := &wgpu.TextureView{}
	p := NewBindGroupProvider("material", 0, WithTextureView(1, tv))

	p.SetBindGroup(&wgpu.BindGroup{})
	assert.False(t, p.NeedsRebuild())

	p.SetTextureView(1, tv)
	assert.False(t, p.NeedsRebuild(), "same view is not a change")

	other := &wgpu.TextureView{}
	p.SetTextureView(1, other)
	assert.True(t, p.NeedsRebuild())
	assert.Same(t, other, p.TextureView(1))
}

func TestBindGroupProviderMissingResource(t *testing.T) {
	p := NewBindGroupProvider("material", 0)
	p.SetBuffer(0, nil)
	_, err := p.Entries()
	assert.ErrorContains(t, err, "buffer binding 0 has no buffer")

	p = NewBindGroupProvider("material", 0)
	p.SetSampler(2, nil)
	_, err = p.Entries()
	assert.ErrorContains(t, err, "sampler binding 2")
}
