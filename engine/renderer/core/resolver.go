package core

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-params/common"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/sim"
	"github.com/cogentcore/webgpu/wgpu"
)

// ResourceResolver converts authoring-side resource handles into render-side handles while a snapshot is
// applied. A nil authoring handle resolves to nil.
type ResourceResolver interface {
	// Texture returns the texture view for an authoring texture, uploading its pixels when needed.
	//
	// Parameters:
	//   - t: the authoring texture
	//
	// Returns:
	//   - *wgpu.TextureView: the view
	//   - error: an error if GPU resource creation fails
	Texture(t *sim.Texture) (*wgpu.TextureView, error)

	// Buffer returns the GPU buffer for an authoring buffer, uploading its contents when needed.
	//
	// Parameters:
	//   - b: the authoring buffer
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer
	//   - error: an error if GPU resource creation fails
	Buffer(b *sim.Buffer) (*wgpu.Buffer, error)

	// Sampler returns the GPU sampler for an authoring sampler state.
	//
	// Parameters:
	//   - s: the authoring sampler state
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler
	//   - error: an error if GPU resource creation fails
	Sampler(s *sim.SamplerState) (*wgpu.Sampler, error)

	// Release releases every GPU resource the resolver created.
	Release()
}

type textureEntry struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

// deviceResolver is the ResourceResolver that creates resources on a wgpu device. It is driven from the render
// worker only.
type deviceResolver struct {
	device   *wgpu.Device
	queue    *wgpu.Queue
	textures *versionedCache[*sim.Texture, textureEntry]
	buffers  *versionedCache[*sim.Buffer, *wgpu.Buffer]
	samplers map[*sim.SamplerState]*wgpu.Sampler
}

var _ ResourceResolver = &deviceResolver{}

// NewDeviceResolver creates a resolver that uploads authoring resources to a device. Resolved resources are
// cached per authoring handle. When a handle's version changes its contents are written into the existing
// resource if the size is unchanged, so every material keeps a valid handle; a resized texture or buffer gets
// a new resource and the old one is kept until Release.
//
// Parameters:
//   - device: the device resources are created on
//   - queue: the queue used for uploads
//
// Returns:
//   - ResourceResolver: the resolver
func NewDeviceResolver(device *wgpu.Device, queue *wgpu.Queue) ResourceResolver {
	return &deviceResolver{
		device: device,
		queue:  queue,
		textures: newVersionedCache[*sim.Texture](func(e textureEntry) {
			e.view.Release()
			e.texture.Release()
		}),
		buffers:  newVersionedCache[*sim.Buffer](func(b *wgpu.Buffer) { b.Release() }),
		samplers: make(map[*sim.SamplerState]*wgpu.Sampler),
	}
}

func (r *deviceResolver) Texture(t *sim.Texture) (*wgpu.TextureView, error) {
	if t == nil {
		return nil, nil
	}
	stagingData, version := t.Contents()
	size := wgpu.Extent3D{
		Width:              stagingData.Width,
		Height:             stagingData.Height,
		DepthOrArrayLayers: 1,
	}

	create := func() (textureEntry, error) {
		tex, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         t.Label() + " Texture",
			Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
			Dimension:     wgpu.TextureDimension2D,
			Size:          size,
			Format:        wgpu.TextureFormatRGBA8UnormSrgb,
			MipLevelCount: 1,
			SampleCount:   1,
		})
		if err != nil {
			return textureEntry{}, fmt.Errorf("core: create texture %s: %w", t.Label(), err)
		}
		view, err := tex.CreateView(nil)
		if err != nil {
			tex.Release()
			return textureEntry{}, fmt.Errorf("core: create texture view %s: %w", t.Label(), err)
		}
		return textureEntry{texture: tex, view: view}, nil
	}
	write := func(e textureEntry) error {
		err := r.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  e.texture,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			stagingData.Pixels,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  stagingData.Width * 4,
				RowsPerImage: stagingData.Height,
			},
			&size,
		)
		if err != nil {
			return fmt.Errorf("core: write texture %s: %w", t.Label(), err)
		}
		return nil
	}

	e, err := r.textures.resolve(t, version, extent{uint64(stagingData.Width), uint64(stagingData.Height)}, create, write)
	if err != nil {
		return nil, err
	}
	return e.view, nil
}

func (r *deviceResolver) Buffer(b *sim.Buffer) (*wgpu.Buffer, error) {
	if b == nil {
		return nil, nil
	}
	data, version := b.Contents()

	create := func() (*wgpu.Buffer, error) {
		buf, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: b.Label() + " Buffer",
			Size:  uint64(len(data)),
			Usage: b.Usage(),
		})
		if err != nil {
			return nil, fmt.Errorf("core: create buffer %s: %w", b.Label(), err)
		}
		return buf, nil
	}
	write := func(buf *wgpu.Buffer) error {
		if len(data) == 0 {
			return nil
		}
		if err := r.queue.WriteBuffer(buf, 0, data); err != nil {
			return fmt.Errorf("core: write buffer %s: %w", b.Label(), err)
		}
		return nil
	}

	return r.buffers.resolve(b, version, extent{uint64(len(data))}, create, write)
}

func (r *deviceResolver) Sampler(s *sim.SamplerState) (*wgpu.Sampler, error) {
	if s == nil {
		return nil, nil
	}
	if samp, ok := r.samplers[s]; ok {
		return samp, nil
	}
	samplerStagingData := s.StagingData()

	samp, err := r.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         s.Label() + " Sampler",
		AddressModeU:  common.Coalesce(samplerStagingData.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(samplerStagingData.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(samplerStagingData.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(samplerStagingData.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(samplerStagingData.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(samplerStagingData.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(samplerStagingData.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(samplerStagingData.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(samplerStagingData.MaxAnisotropy, 1),
		Compare:       samplerStagingData.Compare,
	})
	if err != nil {
		return nil, fmt.Errorf("core: create sampler %s: %w", s.Label(), err)
	}
	r.samplers[s] = samp
	return samp, nil
}

func (r *deviceResolver) Release() {
	r.textures.releaseAll()
	r.buffers.releaseAll()
	for s, samp := range r.samplers {
		samp.Release()
		delete(r.samplers, s)
	}
}
