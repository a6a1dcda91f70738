package material

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-params/engine/renderer/shader"
)

// LayoutFromShaders builds a parameter layout from the @oxy: declarations of a set of shaders, typically
// every program of every pass of the techniques a material uses. A declaration repeated with identical
// arguments in several shaders declares the parameter once. Struct parameters take their element size from
// the reflected block member they bind to.
//
// Parameters:
//   - shaders: the shaders to collect declarations from; nil entries are skipped
//
// Returns:
//   - ParamLayout: the built layout, parameters in first-declaration order
//   - error: ErrDuplicateParam for conflicting redeclarations, ErrInvalidParam for bad declarations
func LayoutFromShaders(shaders ...shader.Shader) (ParamLayout, error) {
	var opts []ParamLayoutOption
	params := make(map[string]shader.Annotation)
	blocks := make(map[string]shader.Annotation)

	for _, s := range shaders {
		if s == nil {
			continue
		}
		for _, a := range s.Declarations() {
			seen := params
			if a.Type == shader.AnnotationTypeBlock {
				seen = blocks
			}
			if prev, ok := seen[a.Name()]; ok {
				if prev.Type == a.Type && slices.Equal(prev.Args, a.Args) {
					continue
				}
				return nil, fmt.Errorf("shader %s line %d: %q redeclared: %w", s.Key(), a.Line, a.Name(), ErrDuplicateParam)
			}
			seen[a.Name()] = a

			opt, err := optionFromAnnotation(a, shaders)
			if err != nil {
				return nil, fmt.Errorf("shader %s line %d: %w", s.Key(), a.Line, err)
			}
			opts = append(opts, opt)
		}
	}

	return NewParamLayout(opts...)
}

func optionFromAnnotation(a shader.Annotation, shaders []shader.Shader) (ParamLayoutOption, error) {
	switch a.Type {
	case shader.AnnotationTypeParam:
		t, err := ParseDataType(a.Args[1])
		if err != nil {
			return nil, err
		}
		gpuVar := a.Name()
		if len(a.Args) > 2 {
			gpuVar = a.Args[2]
		}
		arraySize := 1
		if len(a.Args) > 3 {
			arraySize, _ = strconv.Atoi(a.Args[3])
		}
		if t == DataTypeStruct {
			size, ok := reflectedElementSize(gpuVar, shaders)
			if !ok {
				return nil, fmt.Errorf("struct parameter %q: no block member %q: %w", a.Name(), gpuVar, ErrInvalidParam)
			}
			return WithStructParam(a.Name(), gpuVar, size, arraySize), nil
		}
		return WithDataArrayParam(a.Name(), gpuVar, t, arraySize), nil
	case shader.AnnotationTypeTexture:
		return WithTextureParam(a.Name(), a.Args[1:]...), nil
	case shader.AnnotationTypeLoadStoreTexture:
		return WithLoadStoreTextureParam(a.Name(), a.Args[1:]...), nil
	case shader.AnnotationTypeBuffer:
		return WithBufferParam(a.Name(), a.Args[1:]...), nil
	case shader.AnnotationTypeSampler:
		return WithSamplerParam(a.Name(), a.Args[1:]...), nil
	case shader.AnnotationTypeBlock:
		return WithParamBlock(a.Name(), len(a.Args) > 1 && a.Args[1] == shader.AnnotationArgShared), nil
	default:
		return nil, fmt.Errorf("annotation %q: %w", a.Type, ErrInvalidParam)
	}
}

// reflectedElementSize finds the block member a variable name refers to in any of the shaders.
func reflectedElementSize(gpuVar string, shaders []shader.Shader) (int, bool) {
	blockName, field, qualified := strings.Cut(gpuVar, ".")
	if !qualified {
		field = blockName
	}
	for _, s := range shaders {
		if s == nil {
			continue
		}
		for _, b := range s.ParamDesc().Blocks {
			if qualified && b.Name != blockName {
				continue
			}
			for _, f := range b.Fields {
				if f.Name == field {
					return int(f.Size), true
				}
			}
		}
	}
	return 0, false
}
