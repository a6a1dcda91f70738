package core

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-params/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/gpuparams"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/technique"
	"github.com/cogentcore/webgpu/wgpu"
)

// PassBindGroups turns the resources bound in a pass's GpuParams into one wgpu bind group per @group. It keeps
// a BindGroupProvider per group and recreates a group's bind group only after one of its resources changed.
type PassBindGroups struct {
	label       string
	params      *GpuParams
	descriptors map[int]wgpu.BindGroupLayoutDescriptor
	layouts     map[int]*wgpu.BindGroupLayout
	providers   map[int]bind_group_provider.BindGroupProvider
	groups      []int
}

// NewPassBindGroups creates the bind group state of a pass. Layout descriptors are merged from every stage of
// the pass.
//
// Parameters:
//   - label: a debug label for layouts and bind groups
//   - params: the pass's render-side parameters
//
// Returns:
//   - *PassBindGroups: the bind group state with no GPU objects created yet
func NewPassBindGroups(label string, params *GpuParams) *PassBindGroups {
	p := &PassBindGroups{
		label:       label,
		params:      params,
		descriptors: MergeBindGroupLayouts(params.Pass()),
		layouts:     make(map[int]*wgpu.BindGroupLayout),
		providers:   make(map[int]bind_group_provider.BindGroupProvider),
		groups:      params.Sets(),
	}
	for _, g := range p.groups {
		p.providers[g] = bind_group_provider.NewBindGroupProvider(fmt.Sprintf("%s Group %d", label, g), g)
	}
	return p
}

// Groups returns the @group indices of the pass, ascending.
func (p *PassBindGroups) Groups() []int {
	return p.groups
}

// LayoutDescriptor returns the merged layout descriptor of a group.
func (p *PassBindGroups) LayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return p.descriptors[group]
}

// Provider returns the provider of a group, or nil if the pass declares nothing there.
func (p *PassBindGroups) Provider(group int) bind_group_provider.BindGroupProvider {
	return p.providers[group]
}

// Sync copies the current handles of every slot into the providers. Param blocks contribute the GPU buffer
// created by their last Flush.
func (p *PassBindGroups) Sync() {
	for _, b := range p.params.Bindings() {
		provider := p.providers[b.Set]
		switch b.Kind {
		case gpuparams.ResourceKindParamBlock:
			var buf *wgpu.Buffer
			if block := p.params.ParamBlockBuffer(b.Set, b.Slot); block != nil {
				buf = block.Buffer()
			}
			provider.SetBuffer(b.Slot, buf)
		case gpuparams.ResourceKindTexture, gpuparams.ResourceKindLoadStoreTexture:
			provider.SetTextureView(b.Slot, p.params.Texture(b.Set, b.Slot))
		case gpuparams.ResourceKindBuffer:
			provider.SetBuffer(b.Slot, p.params.Buffer(b.Set, b.Slot))
		case gpuparams.ResourceKindSampler:
			provider.SetSampler(b.Slot, p.params.SamplerState(b.Set, b.Slot))
		}
	}
}

// BindGroups syncs the providers and returns the bind group of every group, creating layouts and bind
// groups that are missing or stale.
//
// Parameters:
//   - device: the device to create GPU objects on
//
// Returns:
//   - map[int]*wgpu.BindGroup: bind groups keyed by group index
//   - error: an error if a slot has no resource or GPU object creation fails
func (p *PassBindGroups) BindGroups(device *wgpu.Device) (map[int]*wgpu.BindGroup, error) {
	p.Sync()
	out := make(map[int]*wgpu.BindGroup, len(p.groups))
	for _, g := range p.groups {
		provider := p.providers[g]
		if provider.BindGroupLayout() == nil {
			descriptor := p.descriptors[g]
			layout, err := device.CreateBindGroupLayout(&descriptor)
			if err != nil {
				return nil, fmt.Errorf("core: %s group %d layout: %w", p.label, g, err)
			}
			p.layouts[g] = layout
			provider.SetBindGroupLayout(layout)
		}
		if provider.NeedsRebuild() {
			entries, err := provider.Entries()
			if err != nil {
				return nil, fmt.Errorf("core: %w", err)
			}
			bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
				Label:   provider.Label() + " Bind Group",
				Layout:  provider.BindGroupLayout(),
				Entries: entries,
			})
			if err != nil {
				return nil, fmt.Errorf("core: %s group %d: %w", p.label, g, err)
			}
			provider.SetBindGroup(bindGroup)
		}
		out[g] = provider.BindGroup()
	}
	return out, nil
}

// Release releases the bind groups and layouts created for the pass.
func (p *PassBindGroups) Release() {
	for _, provider := range p.providers {
		provider.Release()
	}
	for g, layout := range p.layouts {
		layout.Release()
		delete(p.layouts, g)
	}
}

// MergeBindGroupLayouts merges the bind group layout descriptors of every stage of a pass. Entries declared by
// several stages at the same binding are combined by OR-ing their visibility.
//
// Parameters:
//   - pass: the pass whose programs are merged
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged descriptors keyed by group index
func MergeBindGroupLayouts(pass technique.Pass) map[int]wgpu.BindGroupLayoutDescriptor {
	entryMaps := make(map[int]map[uint32]wgpu.BindGroupLayoutEntry)
	labels := make(map[int]string)

	for st := 0; st < shader.NumStages; st++ {
		prog := pass.Program(shader.ShaderType(st))
		if prog == nil {
			continue
		}
		for g, desc := range prog.BindGroupLayoutDescriptors() {
			if entryMaps[g] == nil {
				entryMaps[g] = make(map[uint32]wgpu.BindGroupLayoutEntry)
				labels[g] = desc.Label
			}
			for _, e := range desc.Entries {
				if existing, ok := entryMaps[g][e.Binding]; ok {
					// same binding in several stages, OR the visibility
					existing.Visibility |= e.Visibility
					entryMaps[g][e.Binding] = existing
				} else {
					entryMaps[g][e.Binding] = e
				}
			}
		}
	}

	merged := make(map[int]wgpu.BindGroupLayoutDescriptor, len(entryMaps))
	for g, entryMap := range entryMaps {
		// flatten back to a sorted slice
		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(entryMap))
		for _, e := range entryMap {
			entries = append(entries, e)
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
		merged[g] = wgpu.BindGroupLayoutDescriptor{
			Label:   labels[g],
			Entries: entries,
		}
	}
	return merged
}
