package material

import (
	"fmt"
	"slices"
)

// ParamKind identifies what a material parameter holds.
type ParamKind int

const (
	// ParamKindData is a plain value copied into a parameter block.
	ParamKindData ParamKind = iota
	// ParamKindTexture is a sampled texture.
	ParamKindTexture
	// ParamKindLoadStoreTexture is a storage (read/write) texture.
	ParamKindLoadStoreTexture
	// ParamKindBuffer is a storage buffer.
	ParamKindBuffer
	// ParamKindSampler is a sampler state.
	ParamKindSampler
)

var paramKindNames = [...]string{"data", "texture", "load-store texture", "buffer", "sampler"}

func (k ParamKind) String() string {
	if k < 0 || int(k) >= len(paramKindNames) {
		return fmt.Sprintf("ParamKind(%d)", int(k))
	}
	return paramKindNames[k]
}

// ParamDesc describes one material parameter of a layout.
type ParamDesc struct {
	// Name is the name content authors set the parameter by.
	Name string
	// Kind is what the parameter holds.
	Kind ParamKind
	// GpuVarNames lists the shader variable names the parameter binds to. Data parameters have exactly one,
	// either a block member name ("tint") or a qualified name ("material.tint").
	GpuVarNames []string
	// Type is the data type of a data parameter.
	Type DataType
	// ArraySize is the element count of a data parameter, at least 1.
	ArraySize int
	// ElementSize is the byte size of one element of a data parameter.
	ElementSize int
}

// GpuVarName returns the first shader variable name of the parameter.
func (d ParamDesc) GpuVarName() string {
	if len(d.GpuVarNames) == 0 {
		return ""
	}
	return d.GpuVarNames[0]
}

// DataSize returns the packed byte size of all elements of a data parameter.
func (d ParamDesc) DataSize() int {
	if d.Kind != ParamKindData {
		return 0
	}
	return d.ArraySize * d.ElementSize
}

// BlockDecl declares a parameter block by name.
type BlockDecl struct {
	// Name is the shader variable name of the block.
	Name string
	// Shared marks a block whose buffer is owned and filled outside the material, e.g. per-frame data.
	Shared bool
}

// paramLayout is the implementation of the ParamLayout interface.
type paramLayout struct {
	params []ParamDesc
	index  map[string]int
	byGpu  map[string][]int
	blocks []BlockDecl
	err    error
}

// ParamLayout is the immutable declaration of every parameter a material exposes. Parameters share one
// index space in declaration order, which material parameter containers and parameter sets index by.
type ParamLayout interface {
	// NumParams returns the number of declared parameters.
	//
	// Returns:
	//   - int: the parameter count
	NumParams() int

	// Param retrieves the parameter at an index.
	//
	// Parameters:
	//   - idx: the parameter index
	//
	// Returns:
	//   - ParamDesc: the parameter description
	//   - bool: false if idx is out of range
	Param(idx int) (ParamDesc, bool)

	// Params returns a copy of every parameter description in index order.
	//
	// Returns:
	//   - []ParamDesc: the parameter descriptions
	Params() []ParamDesc

	// Index resolves a parameter name to its index.
	//
	// Parameters:
	//   - name: the parameter name
	//
	// Returns:
	//   - int: the parameter index
	//   - bool: false if the name is not declared
	Index(name string) (int, bool)

	// ParamsForGpuVar returns the indices of the parameters of the given kind that bind to a shader variable name.
	//
	// Parameters:
	//   - kind: the parameter kind to filter by
	//   - gpuVarName: the shader variable name, qualified ("block.field") or not
	//
	// Returns:
	//   - []int: matching parameter indices in index order
	ParamsForGpuVar(kind ParamKind, gpuVarName string) []int

	// Blocks returns the declared parameter blocks.
	//
	// Returns:
	//   - []BlockDecl: the block declarations in declaration order
	Blocks() []BlockDecl

	// IsShared reports whether a block name is declared shared.
	//
	// Parameters:
	//   - blockName: the shader variable name of the block
	//
	// Returns:
	//   - bool: true if the block is owned outside the material
	IsShared(blockName string) bool
}

var _ ParamLayout = &paramLayout{}

// NewParamLayout creates a new ParamLayout from declaration options.
//
// Parameters:
//   - options: variadic list of ParamLayoutOption functions declaring parameters and blocks
//
// Returns:
//   - ParamLayout: the built layout
//   - error: ErrDuplicateParam or ErrInvalidParam for bad declarations
func NewParamLayout(options ...ParamLayoutOption) (ParamLayout, error) {
	l := &paramLayout{
		index: make(map[string]int),
		byGpu: make(map[string][]int),
	}
	for _, opt := range options {
		opt(l)
		if l.err != nil {
			return nil, l.err
		}
	}
	return l, nil
}

func (l *paramLayout) NumParams() int {
	return len(l.params)
}

func (l *paramLayout) Param(idx int) (ParamDesc, bool) {
	if idx < 0 || idx >= len(l.params) {
		return ParamDesc{}, false
	}
	return l.params[idx], true
}

func (l *paramLayout) Params() []ParamDesc {
	return slices.Clone(l.params)
}

func (l *paramLayout) Index(name string) (int, bool) {
	idx, ok := l.index[name]
	return idx, ok
}

func (l *paramLayout) ParamsForGpuVar(kind ParamKind, gpuVarName string) []int {
	var out []int
	for _, idx := range l.byGpu[gpuVarName] {
		if l.params[idx].Kind == kind {
			out = append(out, idx)
		}
	}
	return out
}

func (l *paramLayout) Blocks() []BlockDecl {
	return slices.Clone(l.blocks)
}

func (l *paramLayout) IsShared(blockName string) bool {
	for _, b := range l.blocks {
		if b.Name == blockName {
			return b.Shared
		}
	}
	return false
}

// addParam validates and appends a parameter, recording the first error on the layout.
func (l *paramLayout) addParam(p ParamDesc) {
	if p.Name == "" {
		l.err = fmt.Errorf("empty parameter name: %w", ErrInvalidParam)
		return
	}
	if _, ok := l.index[p.Name]; ok {
		l.err = fmt.Errorf("parameter %q: %w", p.Name, ErrDuplicateParam)
		return
	}
	if len(p.GpuVarNames) == 0 {
		p.GpuVarNames = []string{p.Name}
	}
	if p.Kind == ParamKindData {
		if len(p.GpuVarNames) != 1 {
			l.err = fmt.Errorf("data parameter %q must bind to exactly one variable: %w", p.Name, ErrInvalidParam)
			return
		}
		if p.ArraySize < 1 {
			l.err = fmt.Errorf("data parameter %q array size %d: %w", p.Name, p.ArraySize, ErrInvalidParam)
			return
		}
		if p.ElementSize <= 0 {
			l.err = fmt.Errorf("data parameter %q element size %d: %w", p.Name, p.ElementSize, ErrInvalidParam)
			return
		}
	}

	idx := len(l.params)
	l.params = append(l.params, p)
	l.index[p.Name] = idx
	for _, v := range p.GpuVarNames {
		l.byGpu[v] = append(l.byGpu[v], idx)
	}
}

func (l *paramLayout) addBlock(b BlockDecl) {
	if b.Name == "" {
		l.err = fmt.Errorf("empty block name: %w", ErrInvalidParam)
		return
	}
	for _, existing := range l.blocks {
		if existing.Name == b.Name {
			l.err = fmt.Errorf("block %q: %w", b.Name, ErrDuplicateParam)
			return
		}
	}
	l.blocks = append(l.blocks, b)
}
