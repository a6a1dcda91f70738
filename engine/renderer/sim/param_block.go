package sim

// ParamBlockBuffer is a CPU-side parameter block buffer. Writes mark it dirty so consumers such as
// debug views or serializers can pick up changed contents.
type ParamBlockBuffer struct {
	name    string
	data    []byte
	dirty   bool
	version uint64
}

// NewParamBlockBuffer allocates a zeroed block buffer of size bytes.
//
// Parameters:
//   - name: the block variable name
//   - size: the block size in bytes
//
// Returns:
//   - *ParamBlockBuffer: the new buffer
func NewParamBlockBuffer(name string, size int) *ParamBlockBuffer {
	return &ParamBlockBuffer{name: name, data: make([]byte, size)}
}

// Name returns the block variable name.
func (b *ParamBlockBuffer) Name() string { return b.name }

// Size returns the buffer size in bytes.
func (b *ParamBlockBuffer) Size() int { return len(b.data) }

// Write copies data into the buffer at offset. Bytes past the end of the buffer are dropped.
func (b *ParamBlockBuffer) Write(offset int, data []byte) {
	if offset < 0 || offset >= len(b.data) {
		return
	}
	copy(b.data[offset:], data)
	b.dirty = true
	b.version++
}

// Data returns the buffer contents. The slice must not be modified.
func (b *ParamBlockBuffer) Data() []byte { return b.data }

// IsDirty reports whether the buffer was written since the last ClearDirty.
func (b *ParamBlockBuffer) IsDirty() bool { return b.dirty }

// ClearDirty resets the dirty flag.
func (b *ParamBlockBuffer) ClearDirty() { b.dirty = false }

// Version increases on every write.
func (b *ParamBlockBuffer) Version() uint64 { return b.version }
