package gpuparams

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-params/engine/renderer/material"
)

// SetParamBlockBuffer replaces the buffer of every block declared under name and binds it into each pass that
// references the block. A buffer the set allocated for the block is released if it implements Release(), and
// the set no longer owns the block. Unless ignoreInUpdate is set, the next Update copies every data parameter
// of the block into the new buffer, including values that changed while the block was ignored. Unknown names are ignored; blocks whose declarations differ between
// stages or passes cannot be replaced by name and are left as they are.
//
// Parameters:
//   - name: the shader variable name of the block
//   - buffer: the new buffer
//   - ignoreInUpdate: when true, Update only writes into the block on a full update
func (s *ParamsSet[B, T, U, S]) SetParamBlockBuffer(name string, buffer B, ignoreInUpdate bool) {
	if !s.IsBuilt() {
		return
	}
	found := false
	for i := range s.blocks {
		info := &s.blocks[i]
		if info.Name != name {
			continue
		}
		found = true
		if !info.Shareable {
			s.logger.Warn("gpuparams: block declared with differing layouts cannot be assigned by name",
				"technique", s.technique.Key(), "block", name)
			continue
		}
		if info.Owned && info.Buffer != buffer {
			if r, ok := any(info.Buffer).(releaser); ok {
				r.Release()
			}
			info.Owned = false
		}
		info.Buffer = buffer
		info.AllowUpdate = !ignoreInUpdate
		info.Stale = !ignoreInUpdate
		for _, bs := range s.blockSlots[i] {
			s.passes[bs.pass].SetParamBlockBuffer(bs.set, bs.slot, buffer)
		}
	}
	if !found {
		s.logger.Debug("gpuparams: no block to assign", "technique", s.technique.Key(), "block", name)
	}
}

// Update copies the parameters that changed on dirty channel ch into the block buffers and per-pass parameter
// objects, then clears ch for every bound parameter. Blocks reassigned since the last Update receive all of
// their data parameters. With updateAll every bound parameter is copied regardless of its dirty state,
// including blocks whose buffer was supplied with ignoreInUpdate.
//
// An unbuilt set does nothing. A channel outside [0, 31] or params built from a different layout panics.
//
// Parameters:
//   - params: the material parameter values
//   - ch: the dirty channel this set consumes
//   - updateAll: copy every bound parameter
func (s *ParamsSet[B, T, U, S]) Update(params *material.Params[T, U, S], ch int, updateAll bool) {
	material.CheckDirtyChannel(ch)
	if !s.IsBuilt() {
		return
	}
	if params == nil || params.Layout() != s.layout {
		panic(fmt.Sprintf("gpuparams: params for technique %s were created from a different layout", s.technique.Key()))
	}

	var zero B
	dataWrites, objectWrites := 0, 0
	for _, d := range s.dataInfos {
		block := &s.blocks[d.BlockIdx]
		if block.Buffer == zero || (!block.AllowUpdate && !updateAll) {
			continue
		}
		if !updateAll && !block.Stale && !params.IsDirty(d.ParamIdx, ch) {
			continue
		}
		for i := 0; i < d.Count; i++ {
			elem := params.Element(d.ParamIdx, i)
			n := min(len(elem), d.ElementSize)
			block.Buffer.Write(d.Offset+i*d.Stride, elem[:n])
		}
		dataWrites++
	}
	for i := range s.blocks {
		if s.blocks[i].Buffer != zero && s.blocks[i].AllowUpdate {
			s.blocks[i].Stale = false
		}
	}

	for passIdx, info := range s.passInfos {
		gp := s.passes[passIdx]
		for _, stage := range info.Stages {
			for _, o := range stage.Textures {
				if updateAll || params.IsDirty(o.ParamIdx, ch) {
					gp.SetTexture(o.SetIdx, o.SlotIdx, params.Texture(o.ParamIdx))
					objectWrites++
				}
			}
			for _, o := range stage.LoadStoreTextures {
				if updateAll || params.IsDirty(o.ParamIdx, ch) {
					gp.SetLoadStoreTexture(o.SetIdx, o.SlotIdx, params.Texture(o.ParamIdx))
					objectWrites++
				}
			}
			for _, o := range stage.Buffers {
				if updateAll || params.IsDirty(o.ParamIdx, ch) {
					gp.SetBuffer(o.SetIdx, o.SlotIdx, params.Buffer(o.ParamIdx))
					objectWrites++
				}
			}
			for _, o := range stage.SamplerStates {
				if updateAll || params.IsDirty(o.ParamIdx, ch) {
					gp.SetSamplerState(o.SetIdx, o.SlotIdx, params.SamplerState(o.ParamIdx))
					objectWrites++
				}
			}
		}
	}

	for _, idx := range s.boundParams {
		params.ClearDirty(idx, ch)
	}
	if s.recorder != nil {
		s.recorder.RecordUpdate(dataWrites, objectWrites)
	}
}
