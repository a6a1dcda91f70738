// Package sim is the authoring view of the parameter binding layer. Content logic sets material values
// against CPU-side resource handles here; changes reach the render view through material snapshots.
package sim

import (
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-params/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Texture is an authoring-side texture handle. It carries the pixel data the render view uploads when it
// resolves the handle. Snapshots hand the handle itself to the render worker, so its contents are guarded:
// SetStagingData may run while the render worker reads them.
type Texture struct {
	label   string
	mu      sync.RWMutex
	staging common.TextureStagingData
	version uint64
}

// NewTexture creates a texture handle. The pixels are copied.
//
// Parameters:
//   - label: a debug label, reused for the GPU texture
//   - staging: the RGBA8 pixel data and dimensions
//
// Returns:
//   - *Texture: the handle
func NewTexture(label string, staging common.TextureStagingData) *Texture {
	staging.Pixels = slices.Clone(staging.Pixels)
	return &Texture{label: label, staging: staging}
}

// Label returns the debug label.
func (t *Texture) Label() string { return t.label }

// StagingData returns the pixel data pending upload. The pixels must not be modified.
func (t *Texture) StagingData() common.TextureStagingData {
	staging, _ := t.Contents()
	return staging
}

// Contents returns the pixel data together with the version it belongs to. The pixels must not be modified;
// a later SetStagingData never writes into them.
//
// Returns:
//   - common.TextureStagingData: the pixel data
//   - uint64: the version of that data
func (t *Texture) Contents() (common.TextureStagingData, uint64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.staging, t.version
}

// SetStagingData replaces the pixel data with a copy of staging. The render view re-uploads handles whose
// version changed.
func (t *Texture) SetStagingData(staging common.TextureStagingData) {
	staging.Pixels = slices.Clone(staging.Pixels)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.staging = staging
	t.version++
}

// Version increases on every SetStagingData.
func (t *Texture) Version() uint64 {
	_, version := t.Contents()
	return version
}

// Buffer is an authoring-side storage buffer handle holding the bytes to upload. Like Texture, its contents
// may be replaced while the render worker reads them.
type Buffer struct {
	label   string
	usage   wgpu.BufferUsage
	mu      sync.RWMutex
	data    []byte
	version uint64
}

// NewBuffer creates a buffer handle from a slice of plain values, copying their bytes.
//
// Parameters:
//   - label: a debug label
//   - data: the initial contents
//
// Returns:
//   - *Buffer: the handle with storage and copy-destination usage
func NewBuffer[E any](label string, data []E) *Buffer {
	return &Buffer{
		label: label,
		data:  slices.Clone(common.SliceToBytes(data)),
		usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	}
}

// Label returns the debug label.
func (b *Buffer) Label() string { return b.label }

// Data returns the buffer contents. The slice must not be modified.
func (b *Buffer) Data() []byte {
	data, _ := b.Contents()
	return data
}

// Contents returns the buffer contents together with the version they belong to. The slice must not be
// modified; a later SetData never writes into it.
//
// Returns:
//   - []byte: the contents
//   - uint64: the version of the contents
func (b *Buffer) Contents() ([]byte, uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data, b.version
}

// Usage returns the GPU usage flags the render view creates the buffer with.
func (b *Buffer) Usage() wgpu.BufferUsage { return b.usage }

// Version increases on every SetData.
func (b *Buffer) Version() uint64 {
	_, version := b.Contents()
	return version
}

// SetData replaces the contents with a copy of data.
func (b *Buffer) SetData(data []byte) {
	data = slices.Clone(data)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = data
	b.version++
}

// SamplerState is an authoring-side sampler handle.
type SamplerState struct {
	label   string
	staging common.SamplerStagingData
}

// NewSamplerState creates a sampler handle. Zero fields of staging take the render view's defaults.
//
// Parameters:
//   - label: a debug label
//   - staging: the sampler configuration
//
// Returns:
//   - *SamplerState: the handle
func NewSamplerState(label string, staging common.SamplerStagingData) *SamplerState {
	return &SamplerState{label: label, staging: staging}
}

// Label returns the debug label.
func (s *SamplerState) Label() string { return s.label }

// StagingData returns the sampler configuration.
func (s *SamplerState) StagingData() common.SamplerStagingData { return s.staging }
