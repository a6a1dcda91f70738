package material

import (
	"fmt"
	"slices"
)

// DataType identifies the value type of a data parameter.
type DataType int

const (
	DataTypeFloat1 DataType = iota
	DataTypeFloat2
	DataTypeFloat3
	DataTypeFloat4
	DataTypeInt1
	DataTypeInt2
	DataTypeInt3
	DataTypeInt4
	DataTypeUint1
	DataTypeUint2
	DataTypeUint3
	DataTypeUint4
	DataTypeMat2x2
	DataTypeMat3x3
	DataTypeMat4x4
	// DataTypeStruct is an opaque value whose element size is declared with the parameter.
	DataTypeStruct
)

// dataTypeInfo holds the annotation name, GPU element size and WGSL spellings of a DataType.
type dataTypeInfo struct {
	name string
	size int
	wgsl []string
}

// dataTypeInfos is indexed by DataType. Sizes follow WGSL layout rules; mat3x3 columns are padded to 16 bytes.
var dataTypeInfos = [...]dataTypeInfo{
	DataTypeFloat1: {"float1", 4, []string{"f32"}},
	DataTypeFloat2: {"float2", 8, []string{"vec2<f32>", "vec2f"}},
	DataTypeFloat3: {"float3", 12, []string{"vec3<f32>", "vec3f"}},
	DataTypeFloat4: {"float4", 16, []string{"vec4<f32>", "vec4f"}},
	DataTypeInt1:   {"int1", 4, []string{"i32"}},
	DataTypeInt2:   {"int2", 8, []string{"vec2<i32>", "vec2i"}},
	DataTypeInt3:   {"int3", 12, []string{"vec3<i32>", "vec3i"}},
	DataTypeInt4:   {"int4", 16, []string{"vec4<i32>", "vec4i"}},
	DataTypeUint1:  {"uint1", 4, []string{"u32"}},
	DataTypeUint2:  {"uint2", 8, []string{"vec2<u32>", "vec2u"}},
	DataTypeUint3:  {"uint3", 12, []string{"vec3<u32>", "vec3u"}},
	DataTypeUint4:  {"uint4", 16, []string{"vec4<u32>", "vec4u"}},
	DataTypeMat2x2: {"mat2x2", 16, []string{"mat2x2<f32>", "mat2x2f"}},
	DataTypeMat3x3: {"mat3x3", 48, []string{"mat3x3<f32>", "mat3x3f"}},
	DataTypeMat4x4: {"mat4x4", 64, []string{"mat4x4<f32>", "mat4x4f"}},
	DataTypeStruct: {"struct", 0, nil},
}

// String returns the annotation spelling of the type, e.g. "float4".
func (t DataType) String() string {
	if !t.valid() {
		return fmt.Sprintf("DataType(%d)", int(t))
	}
	return dataTypeInfos[t].name
}

// ElementSize returns the GPU byte size of one element. DataTypeStruct reports 0; its size is
// carried by the parameter declaration.
func (t DataType) ElementSize() int {
	if !t.valid() {
		return 0
	}
	return dataTypeInfos[t].size
}

// MatchesWGSL reports whether a WGSL type spelling binds to this data type. DataTypeStruct never
// matches by name; struct parameters bind by element size.
//
// Parameters:
//   - typeName: the WGSL element type, e.g. "vec4<f32>"
//
// Returns:
//   - bool: true if the spelling belongs to the type
func (t DataType) MatchesWGSL(typeName string) bool {
	if !t.valid() {
		return false
	}
	return slices.Contains(dataTypeInfos[t].wgsl, typeName)
}

func (t DataType) valid() bool {
	return t >= 0 && int(t) < len(dataTypeInfos)
}

// ParseDataType resolves an annotation spelling such as "float4" or "mat3x3".
//
// Parameters:
//   - name: the spelling
//
// Returns:
//   - DataType: the resolved type
//   - error: ErrInvalidParam if the spelling is unknown
func ParseDataType(name string) (DataType, error) {
	for i, info := range dataTypeInfos {
		if info.name == name {
			return DataType(i), nil
		}
	}
	return 0, fmt.Errorf("data type %q: %w", name, ErrInvalidParam)
}
