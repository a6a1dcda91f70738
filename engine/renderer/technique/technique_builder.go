package technique

// TechniqueBuilderOption is a functional option used to configure a Technique during construction.
type TechniqueBuilderOption func(*technique)

// WithPass appends a pass. Passes are drawn in the order they are added.
//
// Parameters:
//   - p: the pass to append
//
// Returns:
//   - TechniqueBuilderOption: a function that appends the pass
func WithPass(p Pass) TechniqueBuilderOption {
	return func(t *technique) {
		if p != nil {
			t.passes = append(t.passes, p)
		}
	}
}

// WithPasses appends several passes in order.
//
// Parameters:
//   - passes: the passes to append
//
// Returns:
//   - TechniqueBuilderOption: a function that appends the passes
func WithPasses(passes ...Pass) TechniqueBuilderOption {
	return func(t *technique) {
		for _, p := range passes {
			WithPass(p)(t)
		}
	}
}

// WithTags attaches tags used to select between techniques of a material.
func WithTags(tags ...string) TechniqueBuilderOption {
	return func(t *technique) {
		t.tags = append(t.tags, tags...)
	}
}
