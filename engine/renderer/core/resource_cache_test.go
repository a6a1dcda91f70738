package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResource struct {
	id       int
	writes   int
	released bool
}

type fakeResources struct {
	created []*fakeResource
}

func (f *fakeResources) create() (*fakeResource, error) {
	r := &fakeResource{id: len(f.created)}
	f.created = append(f.created, r)
	return r, nil
}

func writeFake(r *fakeResource) error {
	r.writes++
	return nil
}

func releaseFake(r *fakeResource) {
	if r.released {
		panic("released twice")
	}
	r.released = true
}

func TestVersionedCacheWritesInPlace(t *testing.T) {
	var f fakeResources
	c := newVersionedCache[string](releaseFake)

	first, err := c.resolve("albedo", 0, extent{4, 4}, f.create, writeFake)
	require.NoError(t, err)
	held, err := c.resolve("albedo", 0, extent{4, 4}, f.create, writeFake)
	require.NoError(t, err)
	assert.Same(t, first, held)
	assert.Equal(t, 1, first.writes)

	// A new version of the same size is uploaded into the resource another material already holds.
	next, err := c.resolve("albedo", 1, extent{4, 4}, f.create, writeFake)
	require.NoError(t, err)
	assert.Same(t, held, next)
	assert.Len(t, f.created, 1)
	assert.Equal(t, 2, held.writes)
	assert.False(t, held.released)

	c.releaseAll()
	assert.True(t, held.released)
	assert.Equal(t, 0, c.len())
}

func TestVersionedCacheRetiresResized(t *testing.T) {
	var f fakeResources
	c := newVersionedCache[string](releaseFake)

	held, err := c.resolve("albedo", 0, extent{4, 4}, f.create, writeFake)
	require.NoError(t, err)
	resized, err := c.resolve("albedo", 1, extent{8, 8}, f.create, writeFake)
	require.NoError(t, err)
	assert.NotSame(t, held, resized)
	assert.False(t, held.released)
	assert.Equal(t, 1, c.len())

	c.releaseAll()
	assert.True(t, held.released)
	assert.True(t, resized.released)
}

func TestVersionedCacheWriteError(t *testing.T) {
	var f fakeResources
	c := newVersionedCache[string](releaseFake)
	failing := func(*fakeResource) error { return errors.New("queue lost") }

	_, err := c.resolve("data", 0, extent{16}, f.create, failing)
	require.Error(t, err)
	require.Len(t, f.created, 1)
	assert.True(t, f.created[0].released)
	assert.Equal(t, 0, c.len())

	held, err := c.resolve("data", 0, extent{16}, f.create, writeFake)
	require.NoError(t, err)

	// The new resource of a resize is released and the entry dropped; the old one stays retired.
	_, err = c.resolve("data", 1, extent{32}, f.create, failing)
	require.Error(t, err)
	require.Len(t, f.created, 3)
	assert.True(t, f.created[2].released)
	assert.False(t, held.released)
	assert.Equal(t, 0, c.len())

	// A failed in-place write keeps the resource and its old version.
	again, err := c.resolve("data", 1, extent{32}, f.create, writeFake)
	require.NoError(t, err)
	_, err = c.resolve("data", 2, extent{32}, f.create, failing)
	require.Error(t, err)
	assert.False(t, again.released)
	got, err := c.resolve("data", 1, extent{32}, f.create, writeFake)
	require.NoError(t, err)
	assert.Same(t, again, got)

	c.releaseAll()
	assert.True(t, held.released)
	assert.True(t, again.released)
}

func TestVersionedCacheCreateError(t *testing.T) {
	c := newVersionedCache[string](releaseFake)
	boom := errors.New("out of memory")
	_, err := c.resolve("data", 0, extent{16}, func() (*fakeResource, error) { return nil, boom }, writeFake)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.len())
}
