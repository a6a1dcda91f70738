// pre_processor.go implements the Oxy WGSL shader pre-processor. It scans shader source
// code for @oxy: annotations, replaces include annotations with registered WGSL snippets,
// and collects the material parameter declarations in source order.
package shader

import (
	"fmt"
	"strings"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// includes maps include keys to the WGSL source injected by @oxy:include.
	includes map[string]string

	// declarations accumulates every non-include annotation during a Process call.
	// Reset at the start of each Process invocation.
	declarations []Annotation
}

// PreProcessor processes raw WGSL shader source code containing @oxy: annotations,
// injecting registered snippets while collecting a declarations list for building
// the material parameter layout.
type PreProcessor interface {
	// Process takes raw WGSL shader source code and pre-processes it. @oxy:include annotations
	// are replaced with the registered snippet. Declaration annotations are left in place as
	// plain WGSL comments and recorded in the declarations list.
	//
	// The declarations list is reset at the start of each call and can be retrieved
	// via Declarations() after Process returns.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code containing annotations to be processed
	//
	// Returns:
	//   - string: the processed WGSL shader source code
	//   - error: an error if any annotation is malformed or references an unknown include
	Process(source string) (string, error)

	// Declarations returns the declaration annotations collected during the most recent call
	// to Process, in source order. Returns nil if Process has not been called.
	//
	// Returns:
	//   - []Annotation: the declarations collected during the last Process call
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// PreProcessorOption configures a PreProcessor.
type PreProcessorOption func(*preProcessor)

// WithInclude registers a WGSL snippet that //@oxy:include <key> injects.
//
// Parameters:
//   - key: the include key
//   - source: the WGSL source to inject
//
// Returns:
//   - PreProcessorOption: a function that applies the include to a preProcessor
func WithInclude(key, source string) PreProcessorOption {
	return func(p *preProcessor) {
		p.includes[key] = source
	}
}

// NewPreProcessor creates a new PreProcessor with the given include registrations.
//
// Parameters:
//   - options: variadic list of PreProcessorOption functions
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(options ...PreProcessorOption) PreProcessor {
	p := &preProcessor{
		includes: make(map[string]string),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		if a.Type == annotationTypeInclude {
			src, ok := p.includes[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:include argument %q", i+1, a.Args[0])
			}
			out = append(out, src)
			continue
		}

		out = append(out, line)
		p.declarations = append(p.declarations, *a)
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
