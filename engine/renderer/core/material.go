package core

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-params/engine/renderer/gpuparams"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/sim"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/technique"
	"github.com/cogentcore/webgpu/wgpu"
)

// coreMaterial is the implementation of the Material interface.
type coreMaterial struct {
	key        string
	layout     material.ParamLayout
	params     *Params
	techniques []technique.Technique
	cacheSize  int
	logger     *slog.Logger
	recorder   gpuparams.UpdateRecorder
	sets       *gpuparams.SetCache[*ParamBlockBuffer, *wgpu.TextureView, *wgpu.Buffer, *wgpu.Sampler]
}

// Material is the render-side counterpart of a sim.Material. It shares the authoring material's layout and
// techniques, receives values only through snapshots, and owns the wgpu buffers of its params sets.
//
// Material is driven from the render timeline only.
type Material interface {
	// Key returns the material's unique identifier.
	//
	// Returns:
	//   - string: the material key
	Key() string

	// Layout returns the parameter layout.
	//
	// Returns:
	//   - material.ParamLayout: the layout
	Layout() material.ParamLayout

	// Params returns the render-side values.
	//
	// Returns:
	//   - *Params: the value container
	Params() *Params

	// NumTechniques returns the number of techniques.
	//
	// Returns:
	//   - int: the technique count
	NumTechniques() int

	// Technique returns a technique by index, or nil if idx is out of range.
	//
	// Parameters:
	//   - idx: the technique index
	//
	// Returns:
	//   - technique.Technique: the technique
	Technique(idx int) technique.Technique

	// ParamsSet returns the params set of a technique with every value of the material copied in.
	//
	// Parameters:
	//   - techIdx: the technique index
	//
	// Returns:
	//   - *ParamsSet: the up to date set
	//   - error: an error if the technique index is invalid or the technique does not fit the layout
	ParamsSet(techIdx int) (*ParamsSet, error)

	// Prepare brings the params set of a technique up to date and uploads its block buffers.
	//
	// Parameters:
	//   - techIdx: the technique index
	//   - device: the device block buffers are created on
	//   - queue: the queue used for uploads
	//
	// Returns:
	//   - *ParamsSet: the set, ready to be bound
	//   - error: an error if the set cannot be built or a buffer upload fails
	Prepare(techIdx int, device *wgpu.Device, queue *wgpu.Queue) (*ParamsSet, error)

	// SetParamBlockBuffer assigns a block buffer by name to the params sets of every technique.
	//
	// Parameters:
	//   - name: the block variable name
	//   - buffer: the buffer
	//   - ignoreInUpdate: when true, only full updates write into the block
	SetParamBlockBuffer(name string, buffer *ParamBlockBuffer, ignoreInUpdate bool)

	// ApplySnapshot writes authoring-side changes into the render-side values, resolving resource handles.
	//
	// Parameters:
	//   - snap: the snapshot taken from the authoring material
	//   - resolver: converts authoring resource handles
	//
	// Returns:
	//   - error: material.ErrLayoutMismatch or the first resolution error
	ApplySnapshot(snap sim.Snapshot, resolver ResourceResolver) error

	// Release drops every cached params set and releases the wgpu buffers they own.
	Release()
}

var _ Material = &coreMaterial{}

// NewMaterial creates a render-side material.
//
// Parameters:
//   - key: a unique identifier for the material
//   - layout: the parameter layout, shared with the authoring material
//   - options: variadic list of MaterialBuilderOption functions
//
// Returns:
//   - Material: the new material
func NewMaterial(key string, layout material.ParamLayout, options ...MaterialBuilderOption) Material {
	if layout == nil {
		panic(fmt.Sprintf("core: material %s must have a parameter layout", key))
	}
	m := &coreMaterial{
		key:       key,
		layout:    layout,
		cacheSize: gpuparams.DefaultSetCacheSize,
		logger:    slog.Default(),
	}
	for _, option := range options {
		option(m)
	}
	if len(m.techniques) > sim.MaxTechniques {
		panic(fmt.Sprintf("core: material %s has %d techniques, at most %d are supported", key, len(m.techniques), sim.MaxTechniques))
	}

	m.params = NewParams(layout)
	m.sets = gpuparams.NewSetCache[*ParamBlockBuffer, *wgpu.TextureView, *wgpu.Buffer, *wgpu.Sampler](
		layout, m.techniques, NewParamBlockBuffer, m.cacheSize,
		gpuparams.WithLogger(m.logger), gpuparams.WithRecorder(m.recorder))
	return m
}

// NewMaterialFor creates the render-side counterpart of an authoring material, with the same key, layout and
// techniques.
//
// Parameters:
//   - src: the authoring material
//   - options: additional MaterialBuilderOption functions
//
// Returns:
//   - Material: the new material
func NewMaterialFor(src sim.Material, options ...MaterialBuilderOption) Material {
	techniques := make([]technique.Technique, src.NumTechniques())
	for i := range techniques {
		techniques[i] = src.Technique(i)
	}
	return NewMaterial(src.Key(), src.Layout(), append([]MaterialBuilderOption{WithTechniques(techniques...)}, options...)...)
}

func (m *coreMaterial) Key() string {
	return m.key
}

func (m *coreMaterial) Layout() material.ParamLayout {
	return m.layout
}

func (m *coreMaterial) Params() *Params {
	return m.params
}

func (m *coreMaterial) NumTechniques() int {
	return len(m.techniques)
}

func (m *coreMaterial) Technique(idx int) technique.Technique {
	if idx < 0 || idx >= len(m.techniques) {
		return nil
	}
	return m.techniques[idx]
}

func (m *coreMaterial) ParamsSet(techIdx int) (*ParamsSet, error) {
	set, fresh, err := m.sets.Get(techIdx)
	if err != nil {
		return nil, fmt.Errorf("core: material %s: %w", m.key, err)
	}
	set.Update(m.params, techIdx, fresh)
	return set, nil
}

func (m *coreMaterial) Prepare(techIdx int, device *wgpu.Device, queue *wgpu.Queue) (*ParamsSet, error) {
	set, err := m.ParamsSet(techIdx)
	if err != nil {
		return nil, err
	}
	for _, b := range set.Blocks() {
		if b.Buffer == nil {
			continue
		}
		if err := b.Buffer.Flush(device, queue); err != nil {
			return nil, fmt.Errorf("core: material %s: %w", m.key, err)
		}
	}
	return set, nil
}

func (m *coreMaterial) SetParamBlockBuffer(name string, buffer *ParamBlockBuffer, ignoreInUpdate bool) {
	m.sets.SetParamBlockBuffer(name, buffer, ignoreInUpdate)
}

func (m *coreMaterial) ApplySnapshot(snap sim.Snapshot, resolver ResourceResolver) error {
	if err := material.ApplySnapshot(m.params, snap, resolver.Texture, resolver.Buffer, resolver.Sampler); err != nil {
		return fmt.Errorf("core: material %s: %w", m.key, err)
	}
	return nil
}

func (m *coreMaterial) Release() {
	m.sets.Purge()
}
