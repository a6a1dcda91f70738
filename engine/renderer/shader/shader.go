package shader

import (
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the programmable pipeline stage a shader is written for.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment

	// ShaderTypeGeometry is the geometry stage. WGSL has no entry point annotation for it, so only
	// the resource declarations of a geometry shader are reflected.
	ShaderTypeGeometry

	// ShaderTypeHull is the tessellation control (hull) stage.
	ShaderTypeHull

	// ShaderTypeDomain is the tessellation evaluation (domain) stage.
	ShaderTypeDomain

	// ShaderTypeCompute indicates a shader containing a @compute entry point.
	ShaderTypeCompute
)

// NumStages is the number of programmable stages a pass can bind a shader to.
const NumStages = 6

var shaderTypeNames = [NumStages]string{"vertex", "fragment", "geometry", "hull", "domain", "compute"}

// String returns the lower case stage name, e.g. "vertex".
func (t ShaderType) String() string {
	if t < 0 || int(t) >= NumStages {
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
	return shaderTypeNames[t]
}

// visibility returns the wgpu stage flag for the shader type. Stages WebGPU does not expose map to none.
func (t ShaderType) visibility() wgpu.ShaderStage {
	switch t {
	case ShaderTypeVertex:
		return wgpu.ShaderStageVertex
	case ShaderTypeFragment:
		return wgpu.ShaderStageFragment
	case ShaderTypeCompute:
		return wgpu.ShaderStageCompute
	default:
		return wgpu.ShaderStageNone
	}
}

// shader is the implementation of the Shader interface.
// It holds all of the persistent shader data required for pipeline creation and parameter binding.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	paramDesc                  *ParamDesc
	entryPoint                 string
	module                     *wgpu.ShaderModuleDescriptor

	pp PreProcessor
}

// Shader defines the interface for a loaded and parsed WGSL program for one pipeline stage. It exposes the
// shader's unique key, source code, entry point, bind group layout descriptors, the reflected parameter
// description consumed by the binding layer, and the material parameter declarations found in its annotations.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code after pre-processing.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// ShaderType returns the stage this shader is bound to.
	//
	// Returns:
	//   - ShaderType: one of the NumStages stage types
	ShaderType() ShaderType

	// EntryPoint returns the entry point name for this shader.
	//
	// Returns:
	//   - string: the entry point name (e.g. "main"), or empty if the stage has no WGSL entry annotation
	EntryPoint() string

	// Module returns the wgpu.ShaderModuleDescriptor for this shader.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor

	// BindGroupLayoutDescriptor retrieves the bind group layout descriptor for a specific group index.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor for the group, or an empty descriptor if not declared
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all parsed bind group layout descriptors keyed by group index.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable name for a given group and binding index, if it exists.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name associated with the group and binding, or an empty string if not found
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName retrieves the binding index for a given group and variable name, if it exists.
	//
	// Parameters:
	//   - group: the bind group index
	//   - varName: the variable name within the group
	//
	// Returns:
	//   - int: the binding index associated with the variable name, or -1 if not found
	//   - bool: true if the variable name was found, false otherwise
	BindGroupFromVarName(group int, varName string) (int, bool)

	// ParamDesc returns the reflected parameter description: uniform blocks with their field offsets
	// and the texture, storage texture, storage buffer and sampler slots the program declares.
	//
	// Returns:
	//   - *ParamDesc: the reflected description, never nil
	ParamDesc() *ParamDesc

	// Declarations returns the material parameter annotations parsed from the shader source, in source order.
	//
	// Returns:
	//   - []Annotation: the parsed annotations
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShader creates a new Shader by reading WGSL source from a file. Read or pre-processing failures
// indicate broken content and panic.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and lookups
//   - shaderType: the stage the shader is written for
//   - sourcePath: the file path to read WGSL source from
//   - options: pre-processor options, e.g. include registrations
//
// Returns:
//   - Shader: a new Shader instance with the provided configuration
func NewShader(key string, shaderType ShaderType, sourcePath string, options ...PreProcessorOption) Shader {
	if sourcePath == "" {
		panic(fmt.Sprintf("shader: %s must have a valid source path", key))
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to read source file %q: %v", sourcePath, err))
	}
	s, err := NewShaderFromSource(key, shaderType, string(data), options...)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to pre-process shader source %q: %v", sourcePath, err))
	}
	return s
}

// NewShaderFromSource creates a new Shader from in-memory WGSL source.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the shader is written for
//   - source: the raw WGSL source, optionally containing @oxy: annotations
//   - options: pre-processor options, e.g. include registrations
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if an annotation is malformed
func NewShaderFromSource(key string, shaderType ShaderType, source string, options ...PreProcessorOption) (Shader, error) {
	if shaderType < 0 || int(shaderType) >= NumStages {
		return nil, fmt.Errorf("shader: %s has invalid stage %d", key, int(shaderType))
	}
	s := &shader{
		key:        key,
		shaderType: shaderType,
		pp:         NewPreProcessor(options...),
	}
	if err := s.parseSource(source); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	if s.bindingVarNames[group] == nil {
		return -1, false
	}
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) ParamDesc() *ParamDesc {
	return s.paramDesc
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}

// parseSource pre-processes the WGSL source, builds the shader module descriptor, parses the
// entry point name, and extracts the bind group layouts and reflected parameter description.
func (s *shader) parseSource(source string) error {
	var err error
	s.source, err = s.pp.Process(source)
	if err != nil {
		return fmt.Errorf("shader: %s: %w", s.key, err)
	}
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}
	s.entryPoint = parseEntryPoint(s.source, s.shaderType)
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(s.source, s.shaderType.visibility())
	s.paramDesc = parseParamDesc(s.source)
	return nil
}
