package material

import "fmt"

// SnapshotEntry is the copied value of one parameter.
type SnapshotEntry[T, U, S comparable] struct {
	// Index is the parameter index in the shared layout.
	Index int
	// Kind is the parameter kind, selecting which of the value fields is meaningful.
	Kind ParamKind
	// Data is a private copy of the packed bytes of a data parameter.
	Data []byte
	// Texture holds texture and load-store texture values.
	Texture T
	// Buffer holds buffer values.
	Buffer U
	// Sampler holds sampler values.
	Sampler S
}

// Snapshot is a self-contained copy of the parameters that changed on a dirty channel. It shares nothing
// with the container it was taken from and may be handed to another goroutine.
type Snapshot[T, U, S comparable] struct {
	Layout  ParamLayout
	Entries []SnapshotEntry[T, U, S]
}

// Empty reports whether the snapshot carries no changes.
func (s Snapshot[T, U, S]) Empty() bool {
	return len(s.Entries) == 0
}

// Snapshot copies every parameter dirty on channel ch and then clears that channel.
//
// Parameters:
//   - ch: the dirty channel, normally SyncDirtyBit; invalid channels panic
//
// Returns:
//   - Snapshot[T, U, S]: the copied changes
func (p *Params[T, U, S]) Snapshot(ch int) Snapshot[T, U, S] {
	CheckDirtyChannel(ch)
	snap := Snapshot[T, U, S]{Layout: p.layout}
	bit := uint32(1) << uint(ch)
	for i, d := range p.descs {
		if p.dirty[i]&bit == 0 {
			continue
		}
		e := SnapshotEntry[T, U, S]{Index: i, Kind: d.Kind}
		switch d.Kind {
		case ParamKindData:
			e.Data = append([]byte(nil), p.data[i]...)
		case ParamKindTexture, ParamKindLoadStoreTexture:
			e.Texture = p.textures[i]
		case ParamKindBuffer:
			e.Buffer = p.buffers[i]
		case ParamKindSampler:
			e.Sampler = p.samplers[i]
		}
		snap.Entries = append(snap.Entries, e)
		p.dirty[i] &^= bit
	}
	return snap
}

// ApplySnapshot writes a snapshot taken from one view's parameters into another view's parameters built
// from the same layout, converting object handles with the given functions. Applied parameters are marked
// dirty on every channel.
//
// Parameters:
//   - dst: the receiving parameters
//   - snap: the snapshot to apply
//   - texFn: converts texture and load-store texture handles
//   - bufFn: converts buffer handles
//   - sampFn: converts sampler handles
//
// Returns:
//   - error: ErrLayoutMismatch, or the first conversion error; entries before the failure stay applied
func ApplySnapshot[T1, U1, S1, T2, U2, S2 comparable](
	dst *Params[T2, U2, S2],
	snap Snapshot[T1, U1, S1],
	texFn func(T1) (T2, error),
	bufFn func(U1) (U2, error),
	sampFn func(S1) (S2, error),
) error {
	if snap.Layout != dst.layout {
		return ErrLayoutMismatch
	}
	for _, e := range snap.Entries {
		if e.Index < 0 || e.Index >= len(dst.descs) || dst.descs[e.Index].Kind != e.Kind {
			return fmt.Errorf("snapshot entry %d: %w", e.Index, ErrLayoutMismatch)
		}
		name := dst.descs[e.Index].Name
		switch e.Kind {
		case ParamKindData:
			copy(dst.data[e.Index], e.Data)
		case ParamKindTexture, ParamKindLoadStoreTexture:
			t, err := texFn(e.Texture)
			if err != nil {
				return fmt.Errorf("parameter %q: %w", name, err)
			}
			dst.textures[e.Index] = t
		case ParamKindBuffer:
			b, err := bufFn(e.Buffer)
			if err != nil {
				return fmt.Errorf("parameter %q: %w", name, err)
			}
			dst.buffers[e.Index] = b
		case ParamKindSampler:
			s, err := sampFn(e.Sampler)
			if err != nil {
				return fmt.Errorf("parameter %q: %w", name, err)
			}
			dst.samplers[e.Index] = s
		}
		dst.dirty[e.Index] = allChannels
	}
	return nil
}
