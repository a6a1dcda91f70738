package material

// ParamLayoutOption is a function that declares parameters or blocks on a layout during construction.
type ParamLayoutOption func(*paramLayout)

// WithDataParam declares a single-element data parameter.
//
// Parameters:
//   - name: the parameter name
//   - gpuVarName: the block member it binds to, "field" or "block.field"; empty uses name
//   - t: the data type; use WithStructParam for DataTypeStruct
//
// Returns:
//   - ParamLayoutOption: a function that declares the parameter
func WithDataParam(name, gpuVarName string, t DataType) ParamLayoutOption {
	return WithDataArrayParam(name, gpuVarName, t, 1)
}

// WithDataArrayParam declares a data parameter holding arraySize elements.
//
// Parameters:
//   - name: the parameter name
//   - gpuVarName: the block member it binds to; empty uses name
//   - t: the element data type
//   - arraySize: the element count, at least 1
//
// Returns:
//   - ParamLayoutOption: a function that declares the parameter
func WithDataArrayParam(name, gpuVarName string, t DataType, arraySize int) ParamLayoutOption {
	return func(l *paramLayout) {
		l.addParam(ParamDesc{
			Name:        name,
			Kind:        ParamKindData,
			GpuVarNames: gpuVarNames(gpuVarName),
			Type:        t,
			ArraySize:   arraySize,
			ElementSize: t.ElementSize(),
		})
	}
}

// WithStructParam declares an opaque struct data parameter of elementSize bytes per element.
//
// Parameters:
//   - name: the parameter name
//   - gpuVarName: the block member it binds to; empty uses name
//   - elementSize: the GPU byte size of one element
//   - arraySize: the element count, at least 1
//
// Returns:
//   - ParamLayoutOption: a function that declares the parameter
func WithStructParam(name, gpuVarName string, elementSize, arraySize int) ParamLayoutOption {
	return func(l *paramLayout) {
		l.addParam(ParamDesc{
			Name:        name,
			Kind:        ParamKindData,
			GpuVarNames: gpuVarNames(gpuVarName),
			Type:        DataTypeStruct,
			ArraySize:   arraySize,
			ElementSize: elementSize,
		})
	}
}

// WithTextureParam declares a sampled texture parameter bound to the given variables, or to name if none are given.
func WithTextureParam(name string, gpuVarNames ...string) ParamLayoutOption {
	return withObjectParam(name, ParamKindTexture, gpuVarNames)
}

// WithLoadStoreTextureParam declares a storage texture parameter.
func WithLoadStoreTextureParam(name string, gpuVarNames ...string) ParamLayoutOption {
	return withObjectParam(name, ParamKindLoadStoreTexture, gpuVarNames)
}

// WithBufferParam declares a storage buffer parameter.
func WithBufferParam(name string, gpuVarNames ...string) ParamLayoutOption {
	return withObjectParam(name, ParamKindBuffer, gpuVarNames)
}

// WithSamplerParam declares a sampler state parameter.
func WithSamplerParam(name string, gpuVarNames ...string) ParamLayoutOption {
	return withObjectParam(name, ParamKindSampler, gpuVarNames)
}

// WithParamBlock declares a parameter block. Shared blocks are not allocated by parameter sets; their
// buffer is supplied by the caller and their members need no matching material parameter.
//
// Parameters:
//   - name: the shader variable name of the block
//   - shared: whether the block is owned outside the material
//
// Returns:
//   - ParamLayoutOption: a function that declares the block
func WithParamBlock(name string, shared bool) ParamLayoutOption {
	return func(l *paramLayout) {
		l.addBlock(BlockDecl{Name: name, Shared: shared})
	}
}

func withObjectParam(name string, kind ParamKind, names []string) ParamLayoutOption {
	return func(l *paramLayout) {
		l.addParam(ParamDesc{
			Name:        name,
			Kind:        kind,
			GpuVarNames: append([]string(nil), names...),
		})
	}
}

func gpuVarNames(name string) []string {
	if name == "" {
		return nil
	}
	return []string{name}
}
