package material

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-params/common"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// NumDirtyChannels is the number of independent dirty channels each parameter tracks.
	NumDirtyChannels = 32

	// SyncDirtyBit is the channel reserved for handing changed values from the authoring view to the render view.
	SyncDirtyBit = NumDirtyChannels - 1

	allChannels = ^uint32(0)
)

// CheckDirtyChannel panics if ch is not a valid dirty channel. An invalid channel is a programming
// error and fails the same way in every build.
//
// Parameters:
//   - ch: the channel to validate
func CheckDirtyChannel(ch int) {
	if ch < 0 || ch >= NumDirtyChannels {
		panic(fmt.Sprintf("material: dirty channel %d out of range [0, %d]", ch, NumDirtyChannels-1))
	}
}

// Params holds the values of every parameter of a layout together with a 32-channel dirty mask per
// parameter. Data values are stored packed (ArraySize * ElementSize bytes); object values are handles of the
// view's texture (T), buffer (U) and sampler (S) types. Every setter marks all channels of the parameter dirty,
// and each consumer clears only its own channel.
//
// Params is not safe for concurrent use.
type Params[T, U, S comparable] struct {
	layout   ParamLayout
	descs    []ParamDesc
	data     [][]byte
	textures []T
	buffers  []U
	samplers []S
	dirty    []uint32
}

// NewParams creates the value container for a layout. Every parameter starts zeroed and dirty on all channels.
//
// Parameters:
//   - layout: the parameter layout
//
// Returns:
//   - *Params[T, U, S]: the new container
func NewParams[T, U, S comparable](layout ParamLayout) *Params[T, U, S] {
	descs := layout.Params()
	p := &Params[T, U, S]{
		layout:   layout,
		descs:    descs,
		data:     make([][]byte, len(descs)),
		textures: make([]T, len(descs)),
		buffers:  make([]U, len(descs)),
		samplers: make([]S, len(descs)),
		dirty:    make([]uint32, len(descs)),
	}
	for i, d := range descs {
		if d.Kind == ParamKindData {
			p.data[i] = make([]byte, d.DataSize())
		}
		p.dirty[i] = allChannels
	}
	return p
}

// Layout returns the layout the container was built from.
func (p *Params[T, U, S]) Layout() ParamLayout {
	return p.layout
}

// NumParams returns the number of parameters.
func (p *Params[T, U, S]) NumParams() int {
	return len(p.descs)
}

// lookup resolves a name and checks its kind.
func (p *Params[T, U, S]) lookup(name string, kind ParamKind) (int, error) {
	idx, ok := p.layout.Index(name)
	if !ok {
		return -1, fmt.Errorf("parameter %q: %w", name, ErrUnknownParam)
	}
	if p.descs[idx].Kind != kind {
		return -1, fmt.Errorf("parameter %q is a %s parameter, not %s: %w", name, p.descs[idx].Kind, kind, ErrKindMismatch)
	}
	return idx, nil
}

// setTyped writes element 0 of a data parameter of the given type.
func (p *Params[T, U, S]) setTyped(name string, t DataType, encode func(dst []byte)) error {
	idx, err := p.lookup(name, ParamKindData)
	if err != nil {
		return err
	}
	if p.descs[idx].Type != t {
		return fmt.Errorf("parameter %q has type %s, not %s: %w", name, p.descs[idx].Type, t, ErrKindMismatch)
	}
	encode(p.data[idx][:p.descs[idx].ElementSize])
	p.dirty[idx] = allChannels
	return nil
}

// SetFloat sets a float1 parameter.
func (p *Params[T, U, S]) SetFloat(name string, v float32) error {
	return p.setTyped(name, DataTypeFloat1, func(dst []byte) {
		common.PutFloat32s(dst, v)
	})
}

// SetVec2 sets a float2 parameter.
func (p *Params[T, U, S]) SetVec2(name string, v mgl32.Vec2) error {
	return p.setTyped(name, DataTypeFloat2, func(dst []byte) {
		common.PutFloat32s(dst, v[:]...)
	})
}

// SetVec3 sets a float3 parameter.
func (p *Params[T, U, S]) SetVec3(name string, v mgl32.Vec3) error {
	return p.setTyped(name, DataTypeFloat3, func(dst []byte) {
		common.PutFloat32s(dst, v[:]...)
	})
}

// SetVec4 sets a float4 parameter.
//
// Parameters:
//   - name: the parameter name
//   - v: the value
//
// Returns:
//   - error: ErrUnknownParam or ErrKindMismatch
func (p *Params[T, U, S]) SetVec4(name string, v mgl32.Vec4) error {
	return p.setTyped(name, DataTypeFloat4, func(dst []byte) {
		common.PutFloat32s(dst, v[:]...)
	})
}

// SetMat2 sets a mat2x2 parameter from a column-major matrix.
func (p *Params[T, U, S]) SetMat2(name string, m mgl32.Mat2) error {
	return p.setTyped(name, DataTypeMat2x2, func(dst []byte) {
		common.PutFloat32s(dst, m[:]...)
	})
}

// SetMat3 sets a mat3x3 parameter. Each column is padded to 16 bytes as WGSL lays it out.
func (p *Params[T, U, S]) SetMat3(name string, m mgl32.Mat3) error {
	return p.setTyped(name, DataTypeMat3x3, func(dst []byte) {
		for c := 0; c < 3; c++ {
			col := m.Col(c)
			common.PutFloat32s(dst[c*16:], col[:]...)
		}
	})
}

// SetMat4 sets a mat4x4 parameter from a column-major matrix.
func (p *Params[T, U, S]) SetMat4(name string, m mgl32.Mat4) error {
	return p.setTyped(name, DataTypeMat4x4, func(dst []byte) {
		common.PutFloat32s(dst, m[:]...)
	})
}

// SetInt sets an int1 parameter.
func (p *Params[T, U, S]) SetInt(name string, v int32) error {
	return p.SetInts(name, v)
}

// SetInts sets an int1..int4 parameter; the number of values must equal the component count.
func (p *Params[T, U, S]) SetInts(name string, v ...int32) error {
	if len(v) < 1 || len(v) > 4 {
		return fmt.Errorf("parameter %q: %d components: %w", name, len(v), ErrOutOfRange)
	}
	words := make([]uint32, len(v))
	for i, x := range v {
		words[i] = uint32(x)
	}
	return p.setTyped(name, DataTypeInt1+DataType(len(v)-1), func(dst []byte) {
		common.PutUint32s(dst, words...)
	})
}

// SetUint sets a uint1 parameter.
func (p *Params[T, U, S]) SetUint(name string, v uint32) error {
	return p.SetUints(name, v)
}

// SetUints sets a uint1..uint4 parameter; the number of values must equal the component count.
func (p *Params[T, U, S]) SetUints(name string, v ...uint32) error {
	if len(v) < 1 || len(v) > 4 {
		return fmt.Errorf("parameter %q: %d components: %w", name, len(v), ErrOutOfRange)
	}
	return p.setTyped(name, DataTypeUint1+DataType(len(v)-1), func(dst []byte) {
		common.PutUint32s(dst, v...)
	})
}

// SetRaw writes the GPU bytes of one element of a data parameter of any type, including struct parameters.
//
// Parameters:
//   - name: the parameter name
//   - arrayIdx: the element index
//   - value: at most ElementSize bytes; shorter values leave the tail of the element untouched
//
// Returns:
//   - error: ErrUnknownParam, ErrKindMismatch or ErrOutOfRange
func (p *Params[T, U, S]) SetRaw(name string, arrayIdx int, value []byte) error {
	idx, err := p.lookup(name, ParamKindData)
	if err != nil {
		return err
	}
	d := p.descs[idx]
	if arrayIdx < 0 || arrayIdx >= d.ArraySize {
		return fmt.Errorf("parameter %q index %d of %d: %w", name, arrayIdx, d.ArraySize, ErrOutOfRange)
	}
	if len(value) > d.ElementSize {
		return fmt.Errorf("parameter %q value of %d bytes exceeds element size %d: %w", name, len(value), d.ElementSize, ErrOutOfRange)
	}
	copy(p.data[idx][arrayIdx*d.ElementSize:], value)
	p.dirty[idx] = allChannels
	return nil
}

// SetTexture sets a sampled texture parameter.
//
// Parameters:
//   - name: the parameter name
//   - t: the texture handle
//
// Returns:
//   - error: ErrUnknownParam or ErrKindMismatch
func (p *Params[T, U, S]) SetTexture(name string, t T) error {
	idx, err := p.lookup(name, ParamKindTexture)
	if err != nil {
		return err
	}
	p.textures[idx] = t
	p.dirty[idx] = allChannels
	return nil
}

// SetLoadStoreTexture sets a storage texture parameter.
func (p *Params[T, U, S]) SetLoadStoreTexture(name string, t T) error {
	idx, err := p.lookup(name, ParamKindLoadStoreTexture)
	if err != nil {
		return err
	}
	p.textures[idx] = t
	p.dirty[idx] = allChannels
	return nil
}

// SetBuffer sets a storage buffer parameter.
func (p *Params[T, U, S]) SetBuffer(name string, b U) error {
	idx, err := p.lookup(name, ParamKindBuffer)
	if err != nil {
		return err
	}
	p.buffers[idx] = b
	p.dirty[idx] = allChannels
	return nil
}

// SetSamplerState sets a sampler parameter.
func (p *Params[T, U, S]) SetSamplerState(name string, s S) error {
	idx, err := p.lookup(name, ParamKindSampler)
	if err != nil {
		return err
	}
	p.samplers[idx] = s
	p.dirty[idx] = allChannels
	return nil
}

// Data returns the packed bytes of a data parameter, or nil for object parameters and bad indices.
// The slice aliases internal storage and must not be modified.
func (p *Params[T, U, S]) Data(idx int) []byte {
	if idx < 0 || idx >= len(p.data) {
		return nil
	}
	return p.data[idx]
}

// Element returns the bytes of one element of a data parameter, or nil if out of range.
//
// Parameters:
//   - idx: the parameter index
//   - arrayIdx: the element index
//
// Returns:
//   - []byte: ElementSize bytes aliasing internal storage
func (p *Params[T, U, S]) Element(idx, arrayIdx int) []byte {
	data := p.Data(idx)
	if data == nil {
		return nil
	}
	size := p.descs[idx].ElementSize
	if arrayIdx < 0 || arrayIdx >= p.descs[idx].ArraySize {
		return nil
	}
	return data[arrayIdx*size : (arrayIdx+1)*size]
}

// Texture returns the handle of a texture or load-store texture parameter.
func (p *Params[T, U, S]) Texture(idx int) T {
	var zero T
	if idx < 0 || idx >= len(p.textures) {
		return zero
	}
	return p.textures[idx]
}

// Buffer returns the handle of a buffer parameter.
func (p *Params[T, U, S]) Buffer(idx int) U {
	var zero U
	if idx < 0 || idx >= len(p.buffers) {
		return zero
	}
	return p.buffers[idx]
}

// SamplerState returns the handle of a sampler parameter.
func (p *Params[T, U, S]) SamplerState(idx int) S {
	var zero S
	if idx < 0 || idx >= len(p.samplers) {
		return zero
	}
	return p.samplers[idx]
}

// IsDirty reports whether a parameter changed since channel ch was last cleared.
//
// Parameters:
//   - idx: the parameter index
//   - ch: the dirty channel, 0..31; other values panic
//
// Returns:
//   - bool: true if the parameter is dirty on the channel
func (p *Params[T, U, S]) IsDirty(idx, ch int) bool {
	CheckDirtyChannel(ch)
	if idx < 0 || idx >= len(p.dirty) {
		return false
	}
	return p.dirty[idx]&(1<<uint(ch)) != 0
}

// DirtyMask returns the full dirty mask of a parameter; bit n is channel n.
func (p *Params[T, U, S]) DirtyMask(idx int) uint32 {
	if idx < 0 || idx >= len(p.dirty) {
		return 0
	}
	return p.dirty[idx]
}

// ClearDirty clears channel ch of one parameter.
func (p *Params[T, U, S]) ClearDirty(idx, ch int) {
	CheckDirtyChannel(ch)
	if idx < 0 || idx >= len(p.dirty) {
		return
	}
	p.dirty[idx] &^= 1 << uint(ch)
}

// MarkClean clears channel ch of every parameter.
func (p *Params[T, U, S]) MarkClean(ch int) {
	CheckDirtyChannel(ch)
	for i := range p.dirty {
		p.dirty[i] &^= 1 << uint(ch)
	}
}

// MarkDirty marks one parameter dirty on every channel.
func (p *Params[T, U, S]) MarkDirty(idx int) {
	if idx < 0 || idx >= len(p.dirty) {
		return
	}
	p.dirty[idx] = allChannels
}

// MarkAllDirty marks every parameter dirty on every channel.
func (p *Params[T, U, S]) MarkAllDirty() {
	for i := range p.dirty {
		p.dirty[i] = allChannels
	}
}
