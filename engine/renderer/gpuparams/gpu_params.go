package gpuparams

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-params/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/technique"
)

// ResourceKind identifies what a (set, slot) of a pass holds.
type ResourceKind int

const (
	ResourceKindParamBlock ResourceKind = iota
	ResourceKindTexture
	ResourceKindLoadStoreTexture
	ResourceKindBuffer
	ResourceKindSampler
)

var resourceKindNames = [...]string{"param block", "texture", "load-store texture", "buffer", "sampler"}

func (k ResourceKind) String() string {
	if k < 0 || int(k) >= len(resourceKindNames) {
		return fmt.Sprintf("ResourceKind(%d)", int(k))
	}
	return resourceKindNames[k]
}

// Binding describes one resource slot of a pass.
type Binding struct {
	Set  int
	Slot int
	Kind ResourceKind
	// Name is the shader variable name declared for the slot.
	Name string
	// Stages lists the stages declaring the slot, in stage order.
	Stages []shader.ShaderType
	// Block is the reflected block description for ResourceKindParamBlock slots.
	Block shader.BlockDesc
}

type slotKey struct {
	set  int
	slot int
}

// GpuParams holds the resources bound to every (set, slot) of one pass, generic over the view's block (B),
// texture (T), buffer (U) and sampler (S) handle types. The slot structure is fixed at construction; only the
// bound handles change, and each change increments Version.
type GpuParams[B ParamBlock, T, U, S comparable] struct {
	pass     technique.Pass
	bindings []Binding
	index    map[slotKey]int
	stages   [shader.NumStages]bool
	// stageBlocks maps, per stage, block names to binding indices.
	stageBlocks [shader.NumStages]map[string]int

	blocks   []B
	textures []T
	buffers  []U
	samplers []S
	version  uint64
}

// NewGpuParams builds the slot structure of a pass from the parameter descriptions of its programs.
//
// Parameters:
//   - pass: the pass to reflect
//
// Returns:
//   - *GpuParams[B, T, U, S]: the per-pass parameter object with every slot empty
//   - error: ErrSlotConflict if stages declare different resources on the same (set, slot)
func NewGpuParams[B ParamBlock, T, U, S comparable](pass technique.Pass) (*GpuParams[B, T, U, S], error) {
	g := &GpuParams[B, T, U, S]{
		pass:  pass,
		index: make(map[slotKey]int),
	}

	byKey := make(map[slotKey]*Binding)
	var keys []slotKey
	declare := func(stage shader.ShaderType, kind ResourceKind, name string, set, slot int, block shader.BlockDesc) error {
		key := slotKey{set, slot}
		existing, ok := byKey[key]
		if !ok {
			byKey[key] = &Binding{Set: set, Slot: slot, Kind: kind, Name: name, Stages: []shader.ShaderType{stage}, Block: block}
			keys = append(keys, key)
			return nil
		}
		if existing.Kind != kind {
			return fmt.Errorf("pass %s: (%d, %d) is a %s in %s and a %s in %s: %w",
				pass.Key(), set, slot, existing.Kind, existing.Stages[0], kind, stage, ErrSlotConflict)
		}
		if kind == ResourceKindParamBlock && (existing.Name != name || !existing.Block.SameLayout(block)) {
			return fmt.Errorf("pass %s: block (%d, %d) declared as %q and %q with different layouts: %w",
				pass.Key(), set, slot, existing.Name, name, ErrSlotConflict)
		}
		existing.Stages = append(existing.Stages, stage)
		return nil
	}

	for st := 0; st < shader.NumStages; st++ {
		stage := shader.ShaderType(st)
		prog := pass.Program(stage)
		if prog == nil {
			continue
		}
		g.stages[st] = true
		desc := prog.ParamDesc()
		for _, b := range desc.Blocks {
			if err := declare(stage, ResourceKindParamBlock, b.Name, b.Set, b.Slot, b); err != nil {
				return nil, err
			}
		}
		objects := []struct {
			kind ResourceKind
			list []shader.ObjectDesc
		}{
			{ResourceKindTexture, desc.Textures},
			{ResourceKindLoadStoreTexture, desc.LoadStoreTextures},
			{ResourceKindBuffer, desc.Buffers},
			{ResourceKindSampler, desc.Samplers},
		}
		for _, group := range objects {
			for _, o := range group.list {
				if err := declare(stage, group.kind, o.Name, o.Set, o.Slot, shader.BlockDesc{}); err != nil {
					return nil, err
				}
			}
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].set != keys[j].set {
			return keys[i].set < keys[j].set
		}
		return keys[i].slot < keys[j].slot
	})
	g.bindings = make([]Binding, len(keys))
	for i, key := range keys {
		b := byKey[key]
		g.bindings[i] = *b
		g.index[key] = i
		if b.Kind == ResourceKindParamBlock {
			for _, stage := range b.Stages {
				if g.stageBlocks[stage] == nil {
					g.stageBlocks[stage] = make(map[string]int)
				}
				g.stageBlocks[stage][b.Name] = i
			}
		}
	}

	g.blocks = make([]B, len(keys))
	g.textures = make([]T, len(keys))
	g.buffers = make([]U, len(keys))
	g.samplers = make([]S, len(keys))
	return g, nil
}

// Pass returns the pass the parameters were built for.
func (g *GpuParams[B, T, U, S]) Pass() technique.Pass {
	return g.pass
}

// HasStage reports whether the pass has a program for the stage.
func (g *GpuParams[B, T, U, S]) HasStage(stage shader.ShaderType) bool {
	if stage < 0 || int(stage) >= shader.NumStages {
		return false
	}
	return g.stages[stage]
}

// Bindings returns every slot of the pass sorted by (set, slot).
func (g *GpuParams[B, T, U, S]) Bindings() []Binding {
	out := make([]Binding, len(g.bindings))
	copy(out, g.bindings)
	return out
}

// Binding returns the slot at (set, slot).
//
// Parameters:
//   - set: the resource set (@group) index
//   - slot: the slot (@binding) index
//
// Returns:
//   - Binding: the slot description
//   - bool: false if the pass declares nothing there
func (g *GpuParams[B, T, U, S]) Binding(set, slot int) (Binding, bool) {
	i, ok := g.index[slotKey{set, slot}]
	if !ok {
		return Binding{}, false
	}
	return g.bindings[i], true
}

// Sets returns the distinct set indices the pass declares, ascending.
func (g *GpuParams[B, T, U, S]) Sets() []int {
	var sets []int
	for _, b := range g.bindings {
		if len(sets) == 0 || sets[len(sets)-1] != b.Set {
			sets = append(sets, b.Set)
		}
	}
	return sets
}

// Version increases every time a bound handle changes.
func (g *GpuParams[B, T, U, S]) Version() uint64 {
	return g.version
}

// slotOf resolves (set, slot) and checks its kind.
func (g *GpuParams[B, T, U, S]) slotOf(set, slot int, kind ResourceKind) (int, bool) {
	if g == nil {
		return -1, false
	}
	i, ok := g.index[slotKey{set, slot}]
	if !ok || g.bindings[i].Kind != kind {
		return -1, false
	}
	return i, true
}

// assign stores v at i and reports whether the stored handle changed.
func assign[V comparable](values []V, i int, v V) bool {
	if values[i] == v {
		return false
	}
	values[i] = v
	return true
}

// SetParamBlockBuffer binds a block buffer to a param block slot.
//
// Parameters:
//   - set: the resource set index
//   - slot: the slot index
//   - b: the buffer
//
// Returns:
//   - bool: false if the slot does not exist or is not a param block
func (g *GpuParams[B, T, U, S]) SetParamBlockBuffer(set, slot int, b B) bool {
	i, ok := g.slotOf(set, slot, ResourceKindParamBlock)
	if !ok {
		return false
	}
	if assign(g.blocks, i, b) {
		g.version++
	}
	return true
}

// SetParamBlockBufferByName binds a block buffer to the block a stage declares under name.
//
// Parameters:
//   - stage: the declaring stage
//   - name: the block variable name
//   - b: the buffer
//
// Returns:
//   - bool: false if the stage declares no such block
func (g *GpuParams[B, T, U, S]) SetParamBlockBufferByName(stage shader.ShaderType, name string, b B) bool {
	if g == nil || stage < 0 || int(stage) >= shader.NumStages {
		return false
	}
	i, ok := g.stageBlocks[stage][name]
	if !ok {
		return false
	}
	if assign(g.blocks, i, b) {
		g.version++
	}
	return true
}

// SetTexture binds a texture to a texture slot, returning false on an unknown slot or kind mismatch.
func (g *GpuParams[B, T, U, S]) SetTexture(set, slot int, t T) bool {
	i, ok := g.slotOf(set, slot, ResourceKindTexture)
	if !ok {
		return false
	}
	if assign(g.textures, i, t) {
		g.version++
	}
	return true
}

// SetLoadStoreTexture binds a texture to a load-store texture slot.
func (g *GpuParams[B, T, U, S]) SetLoadStoreTexture(set, slot int, t T) bool {
	i, ok := g.slotOf(set, slot, ResourceKindLoadStoreTexture)
	if !ok {
		return false
	}
	if assign(g.textures, i, t) {
		g.version++
	}
	return true
}

// SetBuffer binds a buffer to a buffer slot.
func (g *GpuParams[B, T, U, S]) SetBuffer(set, slot int, u U) bool {
	i, ok := g.slotOf(set, slot, ResourceKindBuffer)
	if !ok {
		return false
	}
	if assign(g.buffers, i, u) {
		g.version++
	}
	return true
}

// SetSamplerState binds a sampler to a sampler slot.
func (g *GpuParams[B, T, U, S]) SetSamplerState(set, slot int, s S) bool {
	i, ok := g.slotOf(set, slot, ResourceKindSampler)
	if !ok {
		return false
	}
	if assign(g.samplers, i, s) {
		g.version++
	}
	return true
}

// ParamBlockBuffer returns the buffer bound to a param block slot, or the zero value.
func (g *GpuParams[B, T, U, S]) ParamBlockBuffer(set, slot int) B {
	var zero B
	i, ok := g.slotOf(set, slot, ResourceKindParamBlock)
	if !ok {
		return zero
	}
	return g.blocks[i]
}

// Texture returns the handle bound to a texture or load-store texture slot, or the zero value.
func (g *GpuParams[B, T, U, S]) Texture(set, slot int) T {
	var zero T
	if i, ok := g.slotOf(set, slot, ResourceKindTexture); ok {
		return g.textures[i]
	}
	if i, ok := g.slotOf(set, slot, ResourceKindLoadStoreTexture); ok {
		return g.textures[i]
	}
	return zero
}

// Buffer returns the handle bound to a buffer slot, or the zero value.
func (g *GpuParams[B, T, U, S]) Buffer(set, slot int) U {
	var zero U
	i, ok := g.slotOf(set, slot, ResourceKindBuffer)
	if !ok {
		return zero
	}
	return g.buffers[i]
}

// SamplerState returns the handle bound to a sampler slot, or the zero value.
func (g *GpuParams[B, T, U, S]) SamplerState(set, slot int) S {
	var zero S
	i, ok := g.slotOf(set, slot, ResourceKindSampler)
	if !ok {
		return zero
	}
	return g.samplers[i]
}
