// Package core is the render view of the parameter binding layer. It binds material parameters to wgpu
// buffers, texture views and samplers, and applies authoring-side snapshots on a single render worker.
package core

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ParamBlockBuffer is a parameter block backed by a wgpu uniform buffer. Writes go to a CPU shadow copy; Flush
// creates the GPU buffer on first use and uploads the shadow when it changed.
type ParamBlockBuffer struct {
	label  string
	shadow []byte
	dirty  bool
	buffer *wgpu.Buffer
}

// NewParamBlockBuffer allocates the shadow of a block. No GPU resource is created until Flush.
//
// Parameters:
//   - name: the block variable name, used as the buffer label
//   - size: the block size in bytes
//
// Returns:
//   - *ParamBlockBuffer: the new block
func NewParamBlockBuffer(name string, size int) *ParamBlockBuffer {
	return &ParamBlockBuffer{label: name, shadow: make([]byte, size), dirty: true}
}

// Label returns the debug label.
func (b *ParamBlockBuffer) Label() string { return b.label }

// Size returns the block size in bytes.
func (b *ParamBlockBuffer) Size() int { return len(b.shadow) }

// Write copies data into the shadow at offset. Bytes past the end of the block are dropped.
func (b *ParamBlockBuffer) Write(offset int, data []byte) {
	if offset < 0 || offset >= len(b.shadow) {
		return
	}
	copy(b.shadow[offset:], data)
	b.dirty = true
}

// Shadow returns the CPU copy of the block contents. The slice must not be modified.
func (b *ParamBlockBuffer) Shadow() []byte { return b.shadow }

// IsDirty reports whether the shadow changed since the last Flush.
func (b *ParamBlockBuffer) IsDirty() bool { return b.dirty }

// Buffer returns the GPU buffer, or nil before the first Flush.
func (b *ParamBlockBuffer) Buffer() *wgpu.Buffer { return b.buffer }

// Flush creates the uniform buffer if needed and uploads the shadow when it changed.
//
// Parameters:
//   - device: the device to create the buffer on
//   - queue: the queue to write through
//
// Returns:
//   - error: an error if buffer creation or the write fails
func (b *ParamBlockBuffer) Flush(device *wgpu.Device, queue *wgpu.Queue) error {
	if b.buffer == nil {
		buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: b.label + " Buffer",
			Size:  uint64(len(b.shadow)),
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("core: create block buffer %s: %w", b.label, err)
		}
		b.buffer = buf
		b.dirty = true
	}
	if !b.dirty {
		return nil
	}
	if err := queue.WriteBuffer(b.buffer, 0, b.shadow); err != nil {
		return fmt.Errorf("core: write block buffer %s: %w", b.label, err)
	}
	b.dirty = false
	return nil
}

// Release releases the GPU buffer. The shadow is kept, so a later Flush recreates the buffer.
func (b *ParamBlockBuffer) Release() {
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
	b.dirty = true
}
