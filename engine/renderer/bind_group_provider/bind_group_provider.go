package bind_group_provider

import (
	"fmt"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string
	// group is the @group index the provider's bind group is bound at.
	group int

	// bindGroup is the GPU bind group created from the current resources, or nil if none was created yet.
	bindGroup *wgpu.BindGroup
	// bindGroupLayout is the layout bind groups are created against. It is owned by the caller.
	bindGroupLayout *wgpu.BindGroupLayout
	// stale is set when a resource changed after bindGroup was created.
	stale bool

	// The following maps reference resources owned elsewhere (parameter blocks, resolvers), keyed by binding index.

	// buffers holds the GPU buffers bound to the group.
	buffers map[int]*wgpu.Buffer
	// textureViews holds the GPU texture views bound to the group.
	textureViews map[int]*wgpu.TextureView
	// samplers holds the GPU samplers bound to the group.
	samplers map[int]*wgpu.Sampler
}

// BindGroupProvider collects the resources bound to one @group of a pass and owns the bind group created from
// them. Resources are set per binding index; changing any of them marks the bind group stale so the next draw
// recreates it.
//
// Usage pattern:
//  1. The render view creates a provider per group of a pass, with the layout merged from the pass's programs
//  2. Each frame it sets the current buffers, texture views and samplers of the pass's parameters
//  3. If NeedsRebuild reports true it creates a bind group from Entries and stores it with SetBindGroup
//  4. Draw calls bind BindGroup() at Group()
type BindGroupProvider interface {
	// Release releases the bind group created by this provider. Bound resources are not released; they belong
	// to the parameter blocks and resolvers that created them.
	Release()

	// Label returns the debug label for this provider.
	// Used for debugging and profiling purposes.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Group returns the @group index the bind group is bound at.
	//
	// Returns:
	//   - int: the group index
	Group() int

	// BindGroup returns the created bind group for shader binding.
	// Returns nil if no bind group was created yet.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the layout bind groups are created against.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the bind group layout or nil
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer bound at a binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// TextureView returns the GPU texture view for a specific binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.TextureView: the texture view or nil
	TextureView(binding int) *wgpu.TextureView

	// Sampler returns the GPU sampler for a specific binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler or nil
	Sampler(binding int) *wgpu.Sampler

	// NeedsRebuild reports whether no bind group exists or a resource changed since it was created.
	//
	// Returns:
	//   - bool: true if the bind group must be recreated
	NeedsRebuild() bool

	// Entries returns the bind group entries for every resource set on the provider, sorted by binding.
	//
	// Returns:
	//   - []wgpu.BindGroupEntry: the entries
	//   - error: an error if a binding has no resource
	Entries() ([]wgpu.BindGroupEntry, error)

	// SetBindGroup stores a newly created bind group, releasing the previous one and clearing the stale state.
	//
	// Parameters:
	//   - bg: the created bind group
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBindGroupLayout sets the layout bind groups are created against.
	//
	// Parameters:
	//   - bgl: the bind group layout
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer binds a buffer. A nil buffer leaves the binding declared but empty.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetTextureView binds a texture view.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tv: the texture view to store
	SetTextureView(binding int, tv *wgpu.TextureView)

	// SetSampler binds a sampler.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler to store
	SetSampler(binding int, s *wgpu.Sampler)
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: a debug label for the provider and the bind groups it creates
//   - group: the @group index
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, group int, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		group:        group,
		buffers:      make(map[int]*wgpu.Buffer),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Group() int {
	return p.group
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) NeedsRebuild() bool {
	return p.bindGroup == nil || p.stale
}

func (p *bindGroupProvider) Entries() ([]wgpu.BindGroupEntry, error) {
	entries := make([]wgpu.BindGroupEntry, 0, len(p.buffers)+len(p.textureViews)+len(p.samplers))
	for binding, buf := range p.buffers {
		if buf == nil {
			return nil, fmt.Errorf("%s: buffer binding %d has no buffer", p.label, binding)
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: uint32(binding),
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		})
	}
	for binding, tv := range p.textureViews {
		if tv == nil {
			return nil, fmt.Errorf("%s: texture binding %d has no texture view", p.label, binding)
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding:     uint32(binding),
			TextureView: tv,
		})
	}
	for binding, s := range p.samplers {
		if s == nil {
			return nil, fmt.Errorf("%s: sampler binding %d has no sampler", p.label, binding)
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: uint32(binding),
			Sampler: s,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Binding < entries[j].Binding
	})
	return entries, nil
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	if p.bindGroup != nil && p.bindGroup != bg {
		p.bindGroup.Release()
	}
	p.bindGroup = bg
	p.stale = false
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	if p.bindGroupLayout != bgl {
		p.bindGroupLayout = bgl
		p.stale = true
	}
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if existing, ok := p.buffers[binding]; ok && existing == buf {
		return
	}
	p.buffers[binding] = buf
	p.stale = true
}

func (p *bindGroupProvider) SetTextureView(binding int, tv *wgpu.TextureView) {
	if existing, ok := p.textureViews[binding]; ok && existing == tv {
		return
	}
	p.textureViews[binding] = tv
	p.stale = true
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	if existing, ok := p.samplers[binding]; ok && existing == s {
		return
	}
	p.samplers[binding] = s
	p.stale = true
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	p.stale = false
}
