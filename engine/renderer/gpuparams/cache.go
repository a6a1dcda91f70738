package gpuparams

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-params/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/technique"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSetCacheSize is the number of params sets a SetCache keeps before evicting the least recently used.
const DefaultSetCacheSize = 8

// blockOverride is a buffer supplied by name that every set built by a cache receives.
type blockOverride[B ParamBlock] struct {
	name           string
	buffer         B
	ignoreInUpdate bool
}

// SetCache builds params sets for the techniques of one material on demand and keeps the most recently used
// ones. Buffers assigned with SetParamBlockBuffer apply to cached sets and to every set built later. Evicted
// sets release the buffers they own.
//
// SetCache is not safe for concurrent use.
type SetCache[B ParamBlock, T, U, S comparable] struct {
	layout     material.ParamLayout
	techniques []technique.Technique
	newBlock   BlockFactory[B]
	options    []ParamsSetOption
	sets       *lru.Cache[int, *ParamsSet[B, T, U, S]]
	overrides  []blockOverride[B]
}

// NewSetCache creates a params set cache.
//
// Parameters:
//   - layout: the material parameter layout
//   - techniques: the material's techniques, addressed by index
//   - newBlock: allocates block buffers for the view
//   - size: the number of sets kept; values below 1 use DefaultSetCacheSize
//   - options: options passed to every NewParamsSet call
//
// Returns:
//   - *SetCache[B, T, U, S]: the empty cache
func NewSetCache[B ParamBlock, T, U, S comparable](
	layout material.ParamLayout,
	techniques []technique.Technique,
	newBlock BlockFactory[B],
	size int,
	options ...ParamsSetOption,
) *SetCache[B, T, U, S] {
	if size < 1 {
		size = DefaultSetCacheSize
	}
	sets, err := lru.NewWithEvict[int, *ParamsSet[B, T, U, S]](size, releaseSetOnEviction[B, T, U, S])
	if err != nil {
		panic(fmt.Sprintf("gpuparams: failed to create params set cache: %v", err))
	}
	return &SetCache[B, T, U, S]{
		layout:     layout,
		techniques: techniques,
		newBlock:   newBlock,
		options:    options,
		sets:       sets,
	}
}

func releaseSetOnEviction[B ParamBlock, T, U, S comparable](_ int, set *ParamsSet[B, T, U, S]) {
	set.Release()
}

// Get returns the params set of a technique, building it if it is not cached.
//
// Parameters:
//   - techIdx: the technique index
//
// Returns:
//   - *ParamsSet[B, T, U, S]: the set
//   - bool: true if the set was built by this call and has not received any values yet
//   - error: an error if techIdx is out of range or the set cannot be built
func (c *SetCache[B, T, U, S]) Get(techIdx int) (*ParamsSet[B, T, U, S], bool, error) {
	if set, ok := c.sets.Get(techIdx); ok {
		return set, false, nil
	}
	if techIdx < 0 || techIdx >= len(c.techniques) {
		return nil, false, fmt.Errorf("technique index %d out of range [0, %d)", techIdx, len(c.techniques))
	}
	set, err := NewParamsSet[B, T, U, S](c.techniques[techIdx], c.layout, c.newBlock, c.options...)
	if err != nil {
		return nil, false, err
	}
	for _, o := range c.overrides {
		set.SetParamBlockBuffer(o.name, o.buffer, o.ignoreInUpdate)
	}
	c.sets.Add(techIdx, set)
	return set, true, nil
}

// Peek returns a cached set without building it or refreshing its recency.
func (c *SetCache[B, T, U, S]) Peek(techIdx int) (*ParamsSet[B, T, U, S], bool) {
	return c.sets.Peek(techIdx)
}

// SetParamBlockBuffer assigns a block buffer by name to every cached set and remembers it for sets built later.
//
// Parameters:
//   - name: the block variable name
//   - buffer: the buffer
//   - ignoreInUpdate: when true, updates only write into the block on a full update
func (c *SetCache[B, T, U, S]) SetParamBlockBuffer(name string, buffer B, ignoreInUpdate bool) {
	o := blockOverride[B]{name: name, buffer: buffer, ignoreInUpdate: ignoreInUpdate}
	replaced := false
	for i := range c.overrides {
		if c.overrides[i].name == name {
			c.overrides[i] = o
			replaced = true
		}
	}
	if !replaced {
		c.overrides = append(c.overrides, o)
	}
	for _, idx := range c.sets.Keys() {
		if set, ok := c.sets.Peek(idx); ok {
			set.SetParamBlockBuffer(name, buffer, ignoreInUpdate)
		}
	}
}

// Len returns the number of cached sets.
func (c *SetCache[B, T, U, S]) Len() int {
	return c.sets.Len()
}

// Purge evicts every cached set, releasing the buffers they own.
func (c *SetCache[B, T, U, S]) Purge() {
	c.sets.Purge()
}
