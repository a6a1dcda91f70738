// annotations.go defines the annotation types and parser for the Oxy WGSL shader pre-processor.
// Annotations are single-line WGSL comments prefixed with @oxy: that either inject registered
// WGSL snippets into the source or declare the material parameters a shader expects. The parsed
// declarations are consumed by material.LayoutFromShaders to build a parameter layout without
// hand-written Go plumbing.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a WGSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source registered under a key into the shader at the
	// annotation site. It does not produce a declaration and is consumed entirely during pre-processing.
	//
	// Syntax: //@oxy:include <key>
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeParam declares a data parameter bound to a uniform block member.
	//
	// Syntax: //@oxy:param <name> <data_type> [gpu_var_name] [array_size]
	//
	// Example: //@oxy:param tint float4 material.tint
	AnnotationTypeParam AnnotationType = "param"

	// AnnotationTypeTexture declares a sampled texture parameter. Without explicit variable names the
	// parameter binds to the WGSL variable with the same name.
	//
	// Syntax: //@oxy:texture <name> [gpu_var_name...]
	AnnotationTypeTexture AnnotationType = "texture"

	// AnnotationTypeLoadStoreTexture declares a storage texture parameter.
	//
	// Syntax: //@oxy:rwtexture <name> [gpu_var_name...]
	AnnotationTypeLoadStoreTexture AnnotationType = "rwtexture"

	// AnnotationTypeBuffer declares a storage buffer parameter.
	//
	// Syntax: //@oxy:buffer <name> [gpu_var_name...]
	AnnotationTypeBuffer AnnotationType = "buffer"

	// AnnotationTypeSampler declares a sampler state parameter.
	//
	// Syntax: //@oxy:sampler <name> [gpu_var_name...]
	AnnotationTypeSampler AnnotationType = "sampler"

	// AnnotationTypeBlock declares a parameter block. The optional "shared" flag marks a block whose
	// buffer is owned outside the material.
	//
	// Syntax: //@oxy:block <name> [shared]
	AnnotationTypeBlock AnnotationType = "block"
)

// AnnotationArgShared is the flag accepted as the second argument of a block annotation.
const AnnotationArgShared = "shared"

// Annotation represents a single parsed @oxy: declaration from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - param:   [0] = name, [1] = data type, [2] = gpu variable name (optional), [3] = array size (optional)
	//   - texture, rwtexture, buffer, sampler: [0] = name, [1:] = gpu variable names (optional)
	//   - block:   [0] = name, [1] = "shared" (optional)
	Args []string

	// Line is the 1-based line number in the original WGSL source where this annotation
	// was found. Used for error reporting.
	Line int
}

// Name returns the declared parameter or block name.
func (a Annotation) Name() string {
	if len(a.Args) == 0 {
		return ""
	}
	return a.Args[0]
}

// objectAnnotationTypes lists the annotation types that declare object parameters.
var objectAnnotationTypes = []AnnotationType{
	AnnotationTypeTexture,
	AnnotationTypeLoadStoreTexture,
	AnnotationTypeBuffer,
	AnnotationTypeSampler,
}

// parseAnnotation attempts to parse a single line of WGSL source as an @oxy: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix. Returns
// a populated Annotation for valid annotations, or an error describing the problem for
// malformed annotations with correct prefix but invalid syntax.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	rest, ok := strings.CutPrefix(trimmed, "//")
	if !ok {
		return nil, nil
	}
	_, after, ok := strings.Cut(rest, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	kind := AnnotationType(args[0])
	args = args[1:]
	switch {
	case kind == annotationTypeInclude:
		if len(args) != 1 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
	case kind == AnnotationTypeParam:
		if len(args) < 2 || len(args) > 4 {
			return nil, fmt.Errorf("line %d: @oxy param annotation requires two to four arguments (name, type[, gpu var name[, array size]])", lineNum)
		}
		if len(args) == 4 {
			n, err := strconv.Atoi(args[3])
			if err != nil || n < 1 {
				return nil, fmt.Errorf("line %d: invalid array size %q in @oxy param annotation", lineNum, args[3])
			}
		}
	case slices.Contains(objectAnnotationTypes, kind):
		if len(args) < 1 {
			return nil, fmt.Errorf("line %d: @oxy %s annotation requires a parameter name", lineNum, kind)
		}
	case kind == AnnotationTypeBlock:
		if len(args) < 1 || len(args) > 2 {
			return nil, fmt.Errorf("line %d: @oxy block annotation requires a name and an optional %q flag", lineNum, AnnotationArgShared)
		}
		if len(args) == 2 && args[1] != AnnotationArgShared {
			return nil, fmt.Errorf("line %d: unknown block flag %q in @oxy block annotation", lineNum, args[1])
		}
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, kind)
	}

	return &Annotation{
		Type: kind,
		Args: args,
		Line: lineNum,
	}, nil
}
