package gpuparams

import "github.com/Carmen-Shannon/oxy-params/engine/renderer/shader"

// ParamBlock is the buffer type backing a parameter block in one execution view. The zero value means
// "no buffer"; handles are compared for identity.
type ParamBlock interface {
	comparable

	// Size returns the buffer size in bytes.
	Size() int

	// Write copies data into the buffer at a byte offset.
	Write(offset int, data []byte)
}

// BlockFactory allocates a parameter block buffer of size bytes for the block with the given name.
type BlockFactory[B ParamBlock] func(name string, size int) B

// BlockInfo is one entry of the parameter block registry.
type BlockInfo[B ParamBlock] struct {
	// Name is the shader variable name of the block.
	Name string
	// Buffer backs the block; the zero value means no buffer is bound yet.
	Buffer B
	// Shareable is true when every declaration of the name has identical size and members, so a single
	// buffer serves all of them and the block can be replaced by name.
	Shareable bool
	// AllowUpdate is false when the buffer was supplied with ignoreInUpdate; only a full update writes to it.
	AllowUpdate bool
	// IsUsed is true when at least one data parameter writes into the block.
	IsUsed bool
	// Owned is true when the set allocated Buffer itself.
	Owned bool
	// External is true for blocks the layout declares shared; they are never allocated.
	External bool
	// Stale is true when Buffer was assigned by name and the next Update must copy every data parameter into it.
	Stale bool
	// Size is the reflected block size in bytes.
	Size int
}

// DataParamInfo binds one data parameter to one parameter block.
type DataParamInfo struct {
	ParamIdx int
	BlockIdx int
	// Offset is the byte offset of element 0 within the block.
	Offset int
	// Stride is the byte distance between consecutive elements in the block.
	Stride int
	// Count is the number of elements copied.
	Count int
	// ElementSize is the number of bytes copied per element.
	ElementSize int
}

// ObjectParamInfo binds one object parameter to a (set, slot) of a pass.
type ObjectParamInfo struct {
	ParamIdx int
	SlotIdx  int
	SetIdx   int
}

// StageParamInfo lists the object bindings of one stage, sized exactly to the declared resource counts.
type StageParamInfo struct {
	Textures          []ObjectParamInfo
	LoadStoreTextures []ObjectParamInfo
	Buffers           []ObjectParamInfo
	SamplerStates     []ObjectParamInfo
}

// PassParamInfo groups the stage infos of one pass, indexed by shader.ShaderType.
type PassParamInfo struct {
	Stages [shader.NumStages]StageParamInfo
}

// blockSlot is one place a registry block is bound.
type blockSlot struct {
	pass int
	set  int
	slot int
}
