package sim

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-params/engine/renderer/gpuparams"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/technique"
)

// MaxTechniques is the number of techniques a material can hold. Technique i consumes dirty channel i; the
// last channel is reserved for snapshots.
const MaxTechniques = material.SyncDirtyBit

// simMaterial is the implementation of the Material interface.
type simMaterial struct {
	key        string
	layout     material.ParamLayout
	params     *Params
	techniques []technique.Technique
	cacheSize  int
	logger     *slog.Logger
	recorder   gpuparams.UpdateRecorder
	sets       *gpuparams.SetCache[*ParamBlockBuffer, *Texture, *Buffer, *SamplerState]
}

// Material is the authoring-side material: a parameter layout, the values content logic sets, and the
// techniques that can render it. Params sets are built per technique on first use and cached.
type Material interface {
	// Key returns the material's unique identifier.
	//
	// Returns:
	//   - string: the material key
	Key() string

	// Layout returns the parameter layout shared with the render view.
	//
	// Returns:
	//   - material.ParamLayout: the layout
	Layout() material.ParamLayout

	// Params returns the material values. Setting a value marks it dirty for every technique and for the
	// next snapshot.
	//
	// Returns:
	//   - *Params: the value container
	Params() *Params

	// NumTechniques returns the number of techniques.
	//
	// Returns:
	//   - int: the technique count
	NumTechniques() int

	// Technique returns a technique by index.
	//
	// Parameters:
	//   - idx: the technique index
	//
	// Returns:
	//   - technique.Technique: the technique, or nil if idx is out of range
	Technique(idx int) technique.Technique

	// FindTechnique returns the index of the first technique carrying tag.
	//
	// Parameters:
	//   - tag: the tag to look for
	//
	// Returns:
	//   - int: the technique index, or -1 if none carries the tag
	FindTechnique(tag string) int

	// ParamsSet returns the params set of a technique with every value of the material copied in.
	//
	// Parameters:
	//   - techIdx: the technique index
	//
	// Returns:
	//   - *ParamsSet: the up to date set
	//   - error: an error if the technique index is invalid or the technique does not fit the layout
	ParamsSet(techIdx int) (*ParamsSet, error)

	// SetParamBlockBuffer assigns a block buffer by name to the params sets of every technique.
	//
	// Parameters:
	//   - name: the block variable name
	//   - buffer: the buffer
	//   - ignoreInUpdate: when true, only full updates write into the block
	SetParamBlockBuffer(name string, buffer *ParamBlockBuffer, ignoreInUpdate bool)

	// Snapshot copies every value changed since the previous snapshot so it can be applied to the render view.
	//
	// Returns:
	//   - Snapshot: the changes
	Snapshot() Snapshot

	// Release drops every cached params set.
	Release()
}

var _ Material = &simMaterial{}

// NewMaterial creates an authoring-side material.
//
// Parameters:
//   - key: a unique identifier for the material
//   - layout: the parameter layout
//   - options: variadic list of MaterialBuilderOption functions
//
// Returns:
//   - Material: the new material
func NewMaterial(key string, layout material.ParamLayout, options ...MaterialBuilderOption) Material {
	if layout == nil {
		panic(fmt.Sprintf("sim: material %s must have a parameter layout", key))
	}
	m := &simMaterial{
		key:       key,
		layout:    layout,
		cacheSize: gpuparams.DefaultSetCacheSize,
		logger:    slog.Default(),
	}
	for _, option := range options {
		option(m)
	}
	if len(m.techniques) > MaxTechniques {
		panic(fmt.Sprintf("sim: material %s has %d techniques, at most %d are supported", key, len(m.techniques), MaxTechniques))
	}

	m.params = NewParams(layout)
	m.sets = gpuparams.NewSetCache[*ParamBlockBuffer, *Texture, *Buffer, *SamplerState](
		layout, m.techniques, NewParamBlockBuffer, m.cacheSize,
		gpuparams.WithLogger(m.logger), gpuparams.WithRecorder(m.recorder))
	return m
}

func (m *simMaterial) Key() string {
	return m.key
}

func (m *simMaterial) Layout() material.ParamLayout {
	return m.layout
}

func (m *simMaterial) Params() *Params {
	return m.params
}

func (m *simMaterial) NumTechniques() int {
	return len(m.techniques)
}

func (m *simMaterial) Technique(idx int) technique.Technique {
	if idx < 0 || idx >= len(m.techniques) {
		return nil
	}
	return m.techniques[idx]
}

func (m *simMaterial) FindTechnique(tag string) int {
	for i, t := range m.techniques {
		if t.HasTag(tag) {
			return i
		}
	}
	return -1
}

func (m *simMaterial) ParamsSet(techIdx int) (*ParamsSet, error) {
	set, fresh, err := m.sets.Get(techIdx)
	if err != nil {
		return nil, fmt.Errorf("sim: material %s: %w", m.key, err)
	}
	set.Update(m.params, techIdx, fresh)
	return set, nil
}

func (m *simMaterial) SetParamBlockBuffer(name string, buffer *ParamBlockBuffer, ignoreInUpdate bool) {
	m.sets.SetParamBlockBuffer(name, buffer, ignoreInUpdate)
}

func (m *simMaterial) Snapshot() Snapshot {
	return m.params.Snapshot(material.SyncDirtyBit)
}

func (m *simMaterial) Release() {
	m.sets.Purge()
}
