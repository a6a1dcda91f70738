package gpuparams

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/Carmen-Shannon/oxy-params/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/technique"
)

// ParamsSet binds the parameters of a material layout to every pass of a technique. It owns one GpuParams per
// pass, the registry of parameter block buffers, and the flat binding index Update walks to copy changed
// values. Its structure is fixed at construction; the zero value is the unbuilt state and answers every query
// empty.
//
// ParamsSet is not safe for concurrent use; each execution view drives its own sets from one goroutine.
type ParamsSet[B ParamBlock, T, U, S comparable] struct {
	layout      material.ParamLayout
	technique   technique.Technique
	passes      []*GpuParams[B, T, U, S]
	passInfos   []PassParamInfo
	blocks      []BlockInfo[B]
	blockSlots  [][]blockSlot
	dataInfos   []DataParamInfo
	boundParams []int
	logger      *slog.Logger
	recorder    UpdateRecorder
}

// ParamsSetOption configures a ParamsSet during construction.
type ParamsSetOption func(*paramsSetConfig)

type paramsSetConfig struct {
	logger   *slog.Logger
	recorder UpdateRecorder
}

// UpdateRecorder receives the number of writes every Update performed.
type UpdateRecorder interface {
	RecordUpdate(dataWrites, objectWrites int)
}

// WithLogger sets the logger used for build summaries and ignored registry requests.
//
// Parameters:
//   - logger: the logger; nil keeps slog.Default()
//
// Returns:
//   - ParamsSetOption: a function that applies the logger
func WithLogger(logger *slog.Logger) ParamsSetOption {
	return func(c *paramsSetConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder reports the writes of every Update to r.
//
// Parameters:
//   - r: the recorder; nil disables reporting
//
// Returns:
//   - ParamsSetOption: a function that applies the recorder
func WithRecorder(r UpdateRecorder) ParamsSetOption {
	return func(c *paramsSetConfig) {
		c.recorder = r
	}
}

// blockOccurrence is one declaration of a block in one pass.
type blockOccurrence struct {
	slot blockSlot
	desc shader.BlockDesc
}

// NewParamsSet builds the binding index for a technique and parameter layout.
//
// Every member of a block the layout does not declare shared must bind to a data parameter, either by its
// name or by "block.member", and every texture, load-store texture, buffer and sampler a program declares
// must bind to an object parameter of the same kind. Blocks whose declarations are identical in every pass
// and stage share one buffer; blocks declared differently get one buffer per declaration. Buffers for
// blocks that are not shared are allocated with newBlock and owned by the set.
//
// Parameters:
//   - tech: the technique whose passes are bound
//   - layout: the material parameter layout
//   - newBlock: allocates block buffers for the view
//   - options: variadic list of ParamsSetOption functions
//
// Returns:
//   - *ParamsSet[B, T, U, S]: the built set
//   - error: ErrSlotConflict, ErrUnboundParam, ErrTypeMismatch, ErrAmbiguousParam or ErrInvalidBlock
func NewParamsSet[B ParamBlock, T, U, S comparable](
	tech technique.Technique,
	layout material.ParamLayout,
	newBlock BlockFactory[B],
	options ...ParamsSetOption,
) (*ParamsSet[B, T, U, S], error) {
	cfg := paramsSetConfig{logger: slog.Default()}
	for _, opt := range options {
		opt(&cfg)
	}

	s := &ParamsSet[B, T, U, S]{
		layout:    layout,
		technique: tech,
		passes:    make([]*GpuParams[B, T, U, S], tech.NumPasses()),
		passInfos: make([]PassParamInfo, tech.NumPasses()),
		logger:    cfg.logger,
		recorder:  cfg.recorder,
	}

	var occurrences []blockOccurrence
	for i := range s.passes {
		gp, err := NewGpuParams[B, T, U, S](tech.Pass(i))
		if err != nil {
			return nil, fmt.Errorf("technique %s: %w", tech.Key(), err)
		}
		s.passes[i] = gp
		for _, b := range gp.bindings {
			if b.Kind == ResourceKindParamBlock {
				occurrences = append(occurrences, blockOccurrence{slot: blockSlot{pass: i, set: b.Set, slot: b.Slot}, desc: b.Block})
			}
		}
	}

	if err := s.buildBlocks(occurrences, newBlock); err != nil {
		return nil, fmt.Errorf("technique %s: %w", tech.Key(), err)
	}
	if err := s.buildObjects(); err != nil {
		return nil, fmt.Errorf("technique %s: %w", tech.Key(), err)
	}
	s.collectBoundParams()

	s.logger.Debug("gpuparams: built params set",
		"technique", tech.Key(),
		"passes", len(s.passes),
		"blocks", len(s.blocks),
		"dataParams", len(s.dataInfos),
		"boundParams", len(s.boundParams))
	return s, nil
}

// buildBlocks fills the block registry and the data parameter index.
func (s *ParamsSet[B, T, U, S]) buildBlocks(occurrences []blockOccurrence, newBlock BlockFactory[B]) error {
	var names []string
	byName := make(map[string][]blockOccurrence)
	for _, occ := range occurrences {
		if _, ok := byName[occ.desc.Name]; !ok {
			names = append(names, occ.desc.Name)
		}
		byName[occ.desc.Name] = append(byName[occ.desc.Name], occ)
	}

	// unqualified parameter -> block name it matched, to detect one name resolving into several blocks
	unqualified := make(map[int]string)

	for _, name := range names {
		occs := byName[name]
		shareable := true
		for _, occ := range occs[1:] {
			if !occ.desc.SameLayout(occs[0].desc) {
				shareable = false
				break
			}
		}
		external := s.layout.IsShared(name)

		groups := [][]blockOccurrence{occs}
		if !shareable {
			groups = groups[:0]
			for _, occ := range occs {
				groups = append(groups, []blockOccurrence{occ})
			}
		}

		for _, group := range groups {
			desc := group[0].desc
			if desc.Size == 0 && !external {
				return fmt.Errorf("block %q (%s): %w", name, desc.TypeName, ErrInvalidBlock)
			}
			info := BlockInfo[B]{
				Name:        name,
				Shareable:   shareable,
				AllowUpdate: true,
				External:    external,
				Size:        int(desc.Size),
			}
			if !external {
				if newBlock == nil {
					panic(fmt.Sprintf("gpuparams: block %q needs a buffer but no block factory was given", name))
				}
				info.Buffer = newBlock(name, info.Size)
				info.Owned = true
			}

			blockIdx := len(s.blocks)
			slots := make([]blockSlot, 0, len(group))
			for _, occ := range group {
				slots = append(slots, occ.slot)
				var zero B
				if info.Buffer != zero {
					s.passes[occ.slot.pass].SetParamBlockBuffer(occ.slot.set, occ.slot.slot, info.Buffer)
				}
			}

			for _, field := range desc.Fields {
				paramIdx, qualified, err := s.matchField(desc.Name, field)
				if err != nil {
					return err
				}
				if paramIdx < 0 {
					if external {
						continue
					}
					return fmt.Errorf("block %q member %q: %w", name, field.Name, ErrUnboundParam)
				}
				if !qualified {
					if prev, ok := unqualified[paramIdx]; ok && prev != name {
						return fmt.Errorf("parameter %q matches members of blocks %q and %q: %w",
							s.paramName(paramIdx), prev, name, ErrAmbiguousParam)
					}
					unqualified[paramIdx] = name
				}
				info.IsUsed = true
				s.dataInfos = append(s.dataInfos, DataParamInfo{
					ParamIdx:    paramIdx,
					BlockIdx:    blockIdx,
					Offset:      int(field.Offset),
					Stride:      int(field.Stride),
					Count:       min(field.Count(), s.paramDesc(paramIdx).ArraySize),
					ElementSize: int(field.Size),
				})
			}

			s.blocks = append(s.blocks, info)
			s.blockSlots = append(s.blockSlots, slots)
		}
	}
	return nil
}

// matchField finds the data parameter bound to a block member, preferring a qualified "block.member" binding.
func (s *ParamsSet[B, T, U, S]) matchField(blockName string, field shader.FieldDesc) (int, bool, error) {
	qualified := true
	candidates := s.layout.ParamsForGpuVar(material.ParamKindData, blockName+"."+field.Name)
	if len(candidates) == 0 {
		qualified = false
		candidates = s.layout.ParamsForGpuVar(material.ParamKindData, field.Name)
	}
	switch len(candidates) {
	case 0:
		return -1, false, nil
	case 1:
	default:
		return -1, false, fmt.Errorf("block %q member %q matches %d parameters: %w", blockName, field.Name, len(candidates), ErrAmbiguousParam)
	}

	idx := candidates[0]
	p := s.paramDesc(idx)
	compatible := p.Type.MatchesWGSL(field.Type)
	if p.Type == material.DataTypeStruct {
		compatible = p.ElementSize == int(field.Size)
	}
	if !compatible {
		return -1, false, fmt.Errorf("parameter %q (%s) bound to block %q member %q (%s): %w",
			p.Name, p.Type, blockName, field.Name, field.Type, ErrTypeMismatch)
	}
	return idx, qualified, nil
}

// buildObjects fills the per-pass, per-stage object binding index.
func (s *ParamsSet[B, T, U, S]) buildObjects() error {
	for passIdx, gp := range s.passes {
		pass := gp.Pass()
		for st := 0; st < shader.NumStages; st++ {
			prog := pass.Program(shader.ShaderType(st))
			if prog == nil {
				continue
			}
			desc := prog.ParamDesc()
			stage := &s.passInfos[passIdx].Stages[st]

			var err error
			if stage.Textures, err = s.bindObjects(desc.Textures, material.ParamKindTexture); err != nil {
				return err
			}
			if stage.LoadStoreTextures, err = s.bindObjects(desc.LoadStoreTextures, material.ParamKindLoadStoreTexture); err != nil {
				return err
			}
			if stage.Buffers, err = s.bindObjects(desc.Buffers, material.ParamKindBuffer); err != nil {
				return err
			}
			if stage.SamplerStates, err = s.bindObjects(desc.Samplers, material.ParamKindSampler); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *ParamsSet[B, T, U, S]) bindObjects(decls []shader.ObjectDesc, kind material.ParamKind) ([]ObjectParamInfo, error) {
	if len(decls) == 0 {
		return nil, nil
	}
	infos := make([]ObjectParamInfo, len(decls))
	for i, d := range decls {
		candidates := s.layout.ParamsForGpuVar(kind, d.Name)
		switch len(candidates) {
		case 0:
			return nil, fmt.Errorf("%s %q at (%d, %d): %w", kind, d.Name, d.Set, d.Slot, ErrUnboundParam)
		case 1:
		default:
			return nil, fmt.Errorf("%s %q matches %d parameters: %w", kind, d.Name, len(candidates), ErrAmbiguousParam)
		}
		infos[i] = ObjectParamInfo{ParamIdx: candidates[0], SlotIdx: d.Slot, SetIdx: d.Set}
	}
	return infos, nil
}

func (s *ParamsSet[B, T, U, S]) collectBoundParams() {
	seen := make(map[int]struct{})
	add := func(idx int) {
		if _, ok := seen[idx]; !ok {
			seen[idx] = struct{}{}
			s.boundParams = append(s.boundParams, idx)
		}
	}
	for _, d := range s.dataInfos {
		add(d.ParamIdx)
	}
	for _, p := range s.passInfos {
		for _, st := range p.Stages {
			for _, list := range [][]ObjectParamInfo{st.Textures, st.LoadStoreTextures, st.Buffers, st.SamplerStates} {
				for _, o := range list {
					add(o.ParamIdx)
				}
			}
		}
	}
	sort.Ints(s.boundParams)
}

func (s *ParamsSet[B, T, U, S]) paramDesc(idx int) material.ParamDesc {
	p, _ := s.layout.Param(idx)
	return p
}

func (s *ParamsSet[B, T, U, S]) paramName(idx int) string {
	return s.paramDesc(idx).Name
}

// IsBuilt reports whether the set was constructed with NewParamsSet.
func (s *ParamsSet[B, T, U, S]) IsBuilt() bool {
	return s != nil && s.layout != nil
}

// Layout returns the parameter layout the set was built for, or nil when unbuilt.
func (s *ParamsSet[B, T, U, S]) Layout() material.ParamLayout {
	if s == nil {
		return nil
	}
	return s.layout
}

// Technique returns the technique the set was built for, or nil when unbuilt.
func (s *ParamsSet[B, T, U, S]) Technique() technique.Technique {
	if s == nil {
		return nil
	}
	return s.technique
}

// NumPasses returns the number of passes, equal to the technique's pass count.
func (s *ParamsSet[B, T, U, S]) NumPasses() int {
	if s == nil {
		return 0
	}
	return len(s.passes)
}

// GpuParams returns the parameter object of a pass.
//
// Parameters:
//   - passIdx: the pass index
//
// Returns:
//   - *GpuParams[B, T, U, S]: the per-pass parameters, or nil if passIdx is out of range
func (s *ParamsSet[B, T, U, S]) GpuParams(passIdx int) *GpuParams[B, T, U, S] {
	if s == nil || passIdx < 0 || passIdx >= len(s.passes) {
		return nil
	}
	return s.passes[passIdx]
}

// PassParamInfo returns the object binding index of a pass.
func (s *ParamsSet[B, T, U, S]) PassParamInfo(passIdx int) (PassParamInfo, bool) {
	if s == nil || passIdx < 0 || passIdx >= len(s.passInfos) {
		return PassParamInfo{}, false
	}
	return s.passInfos[passIdx], true
}

// Blocks returns a copy of the block registry.
func (s *ParamsSet[B, T, U, S]) Blocks() []BlockInfo[B] {
	if s == nil {
		return nil
	}
	return slices.Clone(s.blocks)
}

// DataParamInfos returns a copy of the data parameter index.
func (s *ParamsSet[B, T, U, S]) DataParamInfos() []DataParamInfo {
	if s == nil {
		return nil
	}
	return slices.Clone(s.dataInfos)
}

// BoundParams returns the indices of every parameter the set binds, ascending.
func (s *ParamsSet[B, T, U, S]) BoundParams() []int {
	if s == nil {
		return nil
	}
	return slices.Clone(s.boundParams)
}

// OwnedBlocks returns the buffers the set currently owns.
func (s *ParamsSet[B, T, U, S]) OwnedBlocks() []B {
	if s == nil {
		return nil
	}
	var out []B
	for _, b := range s.blocks {
		if b.Owned {
			out = append(out, b.Buffer)
		}
	}
	return out
}

// releaser is implemented by block buffers that hold resources outside Go memory.
type releaser interface {
	Release()
}

// Release releases every buffer the set owns that implements Release() and drops ownership of all of them.
// The set stays usable; released buffers stay bound until replaced.
func (s *ParamsSet[B, T, U, S]) Release() {
	if s == nil {
		return
	}
	for i := range s.blocks {
		b := &s.blocks[i]
		if !b.Owned {
			continue
		}
		if r, ok := any(b.Buffer).(releaser); ok {
			r.Release()
		}
		b.Owned = false
	}
}
