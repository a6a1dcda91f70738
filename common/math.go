package common

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// PutFloat32s writes the values into dst as consecutive little-endian float32 words.
// dst must hold at least 4*len(values) bytes.
//
// Parameters:
//   - dst: destination byte slice
//   - values: the float32 values to encode
func PutFloat32s(dst []byte, values ...float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

// PutUint32s writes the values into dst as consecutive little-endian uint32 words.
// dst must hold at least 4*len(values) bytes.
//
// Parameters:
//   - dst: destination byte slice
//   - values: the uint32 values to encode
func PutUint32s(dst []byte, values ...uint32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(dst[i*4:], v)
	}
}

// Float32At decodes the little-endian float32 word at word index i of src.
//
// Parameters:
//   - src: source byte slice
//   - i: word index (byte offset is 4*i)
//
// Returns:
//   - float32: the decoded value
func Float32At(src []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
}

// RoundUp rounds value up to the next multiple of alignment.
// Alignment must be a power of two; an alignment of zero returns value unchanged.
//
// Parameters:
//   - alignment: the required alignment
//   - value: the value to align
//
// Returns:
//   - uint64: value rounded up to the next multiple of alignment
func RoundUp(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}
