package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-params/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgslSampledTextureMap maps WGSL sampled texture base names to their view dimension and multisampled flag
var wgslSampledTextureMap = map[string]sampledTextureInfo{
	"texture_1d":                    {wgpu.TextureViewDimension1D, false},
	"texture_2d":                    {wgpu.TextureViewDimension2D, false},
	"texture_2d_array":              {wgpu.TextureViewDimension2DArray, false},
	"texture_3d":                    {wgpu.TextureViewDimension3D, false},
	"texture_cube":                  {wgpu.TextureViewDimensionCube, false},
	"texture_cube_array":            {wgpu.TextureViewDimensionCubeArray, false},
	"texture_multisampled_2d":       {wgpu.TextureViewDimension2D, true},
	"texture_depth_2d":              {wgpu.TextureViewDimension2D, false},
	"texture_depth_2d_array":        {wgpu.TextureViewDimension2DArray, false},
	"texture_depth_cube":            {wgpu.TextureViewDimensionCube, false},
	"texture_depth_cube_array":      {wgpu.TextureViewDimensionCubeArray, false},
	"texture_depth_multisampled_2d": {wgpu.TextureViewDimension2D, true},
}

// wgslStorageTextureDimMap maps WGSL storage texture base names to their view dimension
var wgslStorageTextureDimMap = map[string]wgpu.TextureViewDimension{
	"texture_storage_1d":       wgpu.TextureViewDimension1D,
	"texture_storage_2d":       wgpu.TextureViewDimension2D,
	"texture_storage_2d_array": wgpu.TextureViewDimension2DArray,
	"texture_storage_3d":       wgpu.TextureViewDimension3D,
}

// wgslSampleTypeMap maps WGSL scalar type parameters to their wgpu texture sample type
var wgslSampleTypeMap = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

// wgslStorageAccessMap maps WGSL access mode keywords to their wgpu storage texture access
var wgslStorageAccessMap = map[string]wgpu.StorageTextureAccess{
	"write":      wgpu.StorageTextureAccessWriteOnly,
	"read":       wgpu.StorageTextureAccessReadOnly,
	"read_write": wgpu.StorageTextureAccessReadWrite,
}

// wgslTexelFormatMap maps WGSL texel format strings to their corresponding wgpu texture formats.
// These are the formats valid for storage textures per the WGSL specification.
var wgslTexelFormatMap = map[string]wgpu.TextureFormat{
	"rgba8unorm":  wgpu.TextureFormatRGBA8Unorm,
	"rgba8snorm":  wgpu.TextureFormatRGBA8Snorm,
	"rgba8uint":   wgpu.TextureFormatRGBA8Uint,
	"rgba8sint":   wgpu.TextureFormatRGBA8Sint,
	"rgba16uint":  wgpu.TextureFormatRGBA16Uint,
	"rgba16sint":  wgpu.TextureFormatRGBA16Sint,
	"rgba16float": wgpu.TextureFormatRGBA16Float,
	"r32uint":     wgpu.TextureFormatR32Uint,
	"r32sint":     wgpu.TextureFormatR32Sint,
	"r32float":    wgpu.TextureFormatR32Float,
	"rg32uint":    wgpu.TextureFormatRG32Uint,
	"rg32sint":    wgpu.TextureFormatRG32Sint,
	"rg32float":   wgpu.TextureFormatRG32Float,
	"rgba32uint":  wgpu.TextureFormatRGBA32Uint,
	"rgba32sint":  wgpu.TextureFormatRGBA32Sint,
	"rgba32float": wgpu.TextureFormatRGBA32Float,
	"bgra8unorm":  wgpu.TextureFormatBGRA8Unorm,
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field line: optional attributes, name, colon, type.
	// The type capture (.+) is greedy to handle parameterized types like array<T, N>.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// computeEntryRegex matches @compute functions and captures the entry point name
	computeEntryRegex = regexp.MustCompile(`(?s)@compute\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> material: MaterialParams;
	// or handle types: @group(2) @binding(0) var diffuseTexture: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseBindingDecls extracts all @group(N) @binding(M) variable declarations from comment-free WGSL source.
//
// Parameters:
//   - cleaned: WGSL source with comments already stripped
//
// Returns:
//   - []bindingDecl: the declarations in source order
func parseBindingDecls(cleaned string) []bindingDecl {
	matches := bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1)
	decls := make([]bindingDecl, 0, len(matches))
	for _, match := range matches {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		decls = append(decls, bindingDecl{
			group:        group,
			binding:      binding,
			addressSpace: strings.TrimSpace(match[3]),
			varName:      strings.TrimSpace(match[4]),
			typeName:     strings.TrimSpace(match[5]),
		})
	}
	return decls
}

// parseBindGroupLayouts extracts all @group(N) @binding(M) resource declarations from WGSL
// source and returns them as wgpu.BindGroupLayoutDescriptor values grouped by group index.
// Each descriptor's entries are sorted by binding index. The provided visibility flag is
// applied to all entries, corresponding to the shader stage that declared them.
//
// Parameters:
//   - source: the raw WGSL source code string
//   - visibility: the shader stage visibility flag to set on each entry
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: layout descriptors keyed by group index
//   - map[int]map[int]string: variable names keyed by group and binding index for resource tracking
func parseBindGroupLayouts(source string, visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string) {
	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	varNames := make(map[int]map[int]string)
	cleaned := stripComments(source)

	// Struct sizes are needed so buffer layout entries carry a MinBindingSize.
	structSizes := computeStructSizes(parseStructBlocks(cleaned))

	for _, decl := range parseBindingDecls(cleaned) {
		entry := classifyResource(uint32(decl.binding), visibility, decl.addressSpace, decl.typeName)

		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if layout, ok := resolveTypeLayout(decl.typeName, structSizes); ok && layout.size > 0 {
				entry.Buffer.MinBindingSize = layout.size
			}
		}

		groups[decl.group] = append(groups[decl.group], entry)

		if varNames[decl.group] == nil {
			varNames[decl.group] = make(map[int]string)
		}
		varNames[decl.group][decl.binding] = decl.varName
	}

	result := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
		result[g] = wgpu.BindGroupLayoutDescriptor{
			Entries: entries,
		}
	}

	return result, varNames
}

// parseParamDesc reflects the parameter layout of a WGSL program: uniform blocks with their member
// offsets, and the texture, storage texture, storage buffer and sampler slots. Uniforms whose type
// cannot be resolved produce a block with no fields and size zero.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - *ParamDesc: the reflected description with every list sorted by (Set, Slot)
func parseParamDesc(source string) *ParamDesc {
	cleaned := stripComments(source)
	structs := parseStructBlocks(cleaned)
	structSizes := computeStructSizes(structs)
	byName := make(map[string]parsedStruct, len(structs))
	for _, ps := range structs {
		byName[ps.name] = ps
	}

	desc := &ParamDesc{}
	for _, decl := range parseBindingDecls(cleaned) {
		obj := ObjectDesc{Name: decl.varName, Type: decl.typeName, Set: decl.group, Slot: decl.binding}
		switch {
		case decl.addressSpace == "uniform":
			desc.Blocks = append(desc.Blocks, reflectBlock(decl, byName, structSizes))
		case strings.HasPrefix(decl.addressSpace, "storage"):
			desc.Buffers = append(desc.Buffers, obj)
		case decl.typeName == "sampler" || decl.typeName == "sampler_comparison":
			desc.Samplers = append(desc.Samplers, obj)
		case strings.HasPrefix(decl.typeName, "texture_storage_"):
			desc.LoadStoreTextures = append(desc.LoadStoreTextures, obj)
		case strings.HasPrefix(decl.typeName, "texture_"):
			desc.Textures = append(desc.Textures, obj)
		}
	}

	sort.Slice(desc.Blocks, func(i, j int) bool {
		return slotLess(desc.Blocks[i].Set, desc.Blocks[i].Slot, desc.Blocks[j].Set, desc.Blocks[j].Slot)
	})
	for _, list := range [][]ObjectDesc{desc.Textures, desc.LoadStoreTextures, desc.Buffers, desc.Samplers} {
		sort.Slice(list, func(i, j int) bool {
			return slotLess(list[i].Set, list[i].Slot, list[j].Set, list[j].Slot)
		})
	}
	return desc
}

// reflectBlock builds the block description for a uniform declaration. A struct-typed uniform yields
// one field per struct member; any other resolvable type yields a single field named after the variable.
func reflectBlock(decl bindingDecl, structs map[string]parsedStruct, known map[string]wgslTypeLayout) BlockDesc {
	block := BlockDesc{
		Name:     decl.varName,
		TypeName: decl.typeName,
		Set:      decl.group,
		Slot:     decl.binding,
	}
	if ps, ok := structs[decl.typeName]; ok {
		fields, layout, ok := computeStructFields(ps, known)
		if ok {
			block.Fields = fields
			block.Size = layout.size
		}
		return block
	}
	if field, layout, ok := reflectField(decl.varName, decl.typeName, 0, known); ok {
		block.Fields = []FieldDesc{field}
		block.Size = common.RoundUp(layout.align, layout.size)
	}
	return block
}

func slotLess(setA, slotA, setB, slotB int) bool {
	if setA != setB {
		return setA < setB
	}
	return slotA < slotB
}

// parseEntryPoint extracts the entry point function name for the given shader type
// from WGSL source. Returns an empty string if no matching entry point annotation is found,
// which is always the case for the geometry, hull and domain stages.
//
// Parameters:
//   - source: the raw WGSL source code string
//   - shaderType: the shader stage to search for
//
// Returns:
//   - string: the entry point function name, or empty string if not found
func parseEntryPoint(source string, shaderType ShaderType) string {
	cleaned := stripComments(source)

	var re *regexp.Regexp
	switch shaderType {
	case ShaderTypeVertex:
		re = vertexEntryRegex
	case ShaderTypeFragment:
		re = fragmentEntryRegex
	case ShaderTypeCompute:
		re = computeEntryRegex
	default:
		return ""
	}

	if match := re.FindStringSubmatch(cleaned); match != nil {
		return match[1]
	}
	return ""
}

// parseStructBlocks finds all struct { ... } blocks in the cleaned WGSL source
// and parses their fields including @builtin attributes
//
// Parameters:
//   - source: WGSL source with comments already stripped
//
// Returns:
//   - []parsedStruct: all struct blocks found in the source
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))

	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}

	return structs
}

// parseStructFields parses the body of a struct block into individual fields,
// extracting @builtin attributes along with the field name and type
//
// Parameters:
//   - body: the content between { and } of a struct declaration
//
// Returns:
//   - []parsedField: all fields found in the struct body
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var field parsedField
		if builtinRegex.MatchString(line) {
			field.isBuiltin = true
		}

		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		field.name = fm[1]
		field.typeName = strings.TrimSpace(fm[2])

		fields = append(fields, field)
	}

	return fields
}
