package technique

import "slices"

// technique is the implementation of the Technique interface.
type technique struct {
	key    string
	passes []Pass
	tags   []string
}

// Technique defines one way of rendering a material: an ordered list of passes. The pass list is fixed at
// construction, which lets parameter sets built against a technique index passes by position.
type Technique interface {
	// Key returns the unique key associated with this technique.
	//
	// Returns:
	//   - string: the unique key for this technique
	Key() string

	// NumPasses returns the number of passes.
	//
	// Returns:
	//   - int: the pass count
	NumPasses() int

	// Pass retrieves the pass at an index.
	//
	// Parameters:
	//   - idx: the pass index
	//
	// Returns:
	//   - Pass: the pass, or nil if idx is out of range
	Pass(idx int) Pass

	// Passes returns a copy of the ordered pass list.
	//
	// Returns:
	//   - []Pass: the passes in draw order
	Passes() []Pass

	// HasTag reports whether the technique was built with the given tag.
	//
	// Parameters:
	//   - tag: the tag to check
	//
	// Returns:
	//   - bool: true if the tag is present
	HasTag(tag string) bool
}

var _ Technique = &technique{}

// NewTechnique creates a new Technique.
//
// Parameters:
//   - key: the unique key for this technique
//   - opts: a variadic list of TechniqueBuilderOption functions to configure the technique
//
// Returns:
//   - Technique: a new Technique instance with the specified configuration
func NewTechnique(key string, opts ...TechniqueBuilderOption) Technique {
	t := &technique{
		key: key,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *technique) Key() string {
	return t.key
}

func (t *technique) NumPasses() int {
	return len(t.passes)
}

func (t *technique) Pass(idx int) Pass {
	if idx < 0 || idx >= len(t.passes) {
		return nil
	}
	return t.passes[idx]
}

func (t *technique) Passes() []Pass {
	return slices.Clone(t.passes)
}

func (t *technique) HasTag(tag string) bool {
	return slices.Contains(t.tags, tag)
}
