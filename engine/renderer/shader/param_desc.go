package shader

// ParamDesc is the reflected parameter description of a single program. It lists every uniform block with
// its field layout and every object resource slot, each sorted by (Set, Slot).
type ParamDesc struct {
	// Blocks holds the var<uniform> declarations.
	Blocks []BlockDesc
	// Textures holds sampled and depth texture declarations.
	Textures []ObjectDesc
	// LoadStoreTextures holds texture_storage_* declarations.
	LoadStoreTextures []ObjectDesc
	// Buffers holds var<storage> declarations.
	Buffers []ObjectDesc
	// Samplers holds sampler and sampler_comparison declarations.
	Samplers []ObjectDesc
}

// BlockDesc describes a uniform parameter block.
type BlockDesc struct {
	// Name is the WGSL variable name of the binding.
	Name string
	// TypeName is the WGSL type bound to the variable.
	TypeName string
	// Set is the @group index.
	Set int
	// Slot is the @binding index.
	Slot int
	// Size is the block size in bytes per WGSL layout rules.
	Size uint64
	// Fields lists the top level members of the block type in declaration order.
	Fields []FieldDesc
}

// FieldDesc describes one member of a uniform block.
type FieldDesc struct {
	// Name is the member name.
	Name string
	// Type is the element type name; for array<T, N> members it is T.
	Type string
	// Offset is the byte offset of the member within the block.
	Offset uint64
	// Size is the byte size of one element.
	Size uint64
	// ArrayLen is N for array<T, N> members, 0 otherwise.
	ArrayLen int
	// Stride is the byte distance between array elements. It equals Size for non-array members.
	Stride uint64
}

// Count returns the number of elements the field holds (1 for non-array fields).
func (f FieldDesc) Count() int {
	if f.ArrayLen > 0 {
		return f.ArrayLen
	}
	return 1
}

// ObjectDesc describes an object resource slot (texture, buffer or sampler).
type ObjectDesc struct {
	Name string
	Type string
	Set  int
	Slot int
}

// Block returns the block with the given variable name.
//
// Parameters:
//   - name: the WGSL variable name of the block
//
// Returns:
//   - BlockDesc: the block description
//   - bool: false if the program declares no such block
func (d *ParamDesc) Block(name string) (BlockDesc, bool) {
	for _, b := range d.Blocks {
		if b.Name == name {
			return b, true
		}
	}
	return BlockDesc{}, false
}

// NumResources returns the total number of declared slots of every kind.
func (d *ParamDesc) NumResources() int {
	return len(d.Blocks) + len(d.Textures) + len(d.LoadStoreTextures) + len(d.Buffers) + len(d.Samplers)
}

// SameLayout reports whether two blocks have identical size and fields, which is the
// condition for sharing one buffer between them.
func (b BlockDesc) SameLayout(other BlockDesc) bool {
	if b.Size != other.Size || len(b.Fields) != len(other.Fields) {
		return false
	}
	for i := range b.Fields {
		if b.Fields[i] != other.Fields[i] {
			return false
		}
	}
	return true
}
