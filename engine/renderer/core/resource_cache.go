package core

// extent is the part of a resource description that cannot change in place: width and height for textures,
// byte size for buffers.
type extent [2]uint64

type versionedEntry[R any] struct {
	res     R
	extent  extent
	version uint64
}

// versionedCache maps authoring handles to GPU resources. A new version is written into the cached resource
// when its extent is unchanged; otherwise a new resource replaces it and the old one is retired. Retired
// resources may still be bound by materials that resolved the handle earlier and are released only by
// releaseAll.
type versionedCache[K comparable, R any] struct {
	entries map[K]versionedEntry[R]
	retired []R
	release func(R)
}

func newVersionedCache[K comparable, R any](release func(R)) *versionedCache[K, R] {
	return &versionedCache[K, R]{
		entries: make(map[K]versionedEntry[R]),
		release: release,
	}
}

// resolve returns the resource of key at version.
//
// Parameters:
//   - key: the authoring handle
//   - version: the handle's current version
//   - ext: the extent of the current contents
//   - create: creates a resource of extent ext
//   - write: uploads the current contents into a resource
//
// Returns:
//   - R: the resource
//   - error: the create or write error; a resource created by this call is released on a write error
func (c *versionedCache[K, R]) resolve(key K, version uint64, ext extent, create func() (R, error), write func(R) error) (R, error) {
	var zero R
	e, ok := c.entries[key]
	if ok && e.version == version {
		return e.res, nil
	}

	created := false
	if !ok || e.extent != ext {
		res, err := create()
		if err != nil {
			return zero, err
		}
		if ok {
			c.retired = append(c.retired, e.res)
			delete(c.entries, key)
		}
		e = versionedEntry[R]{res: res, extent: ext}
		created = true
	}
	if err := write(e.res); err != nil {
		if created {
			c.release(e.res)
		}
		return zero, err
	}
	e.version = version
	c.entries[key] = e
	return e.res, nil
}

// len returns the number of live entries, not counting retired resources.
func (c *versionedCache[K, R]) len() int {
	return len(c.entries)
}

// releaseAll releases every cached and retired resource.
func (c *versionedCache[K, R]) releaseAll() {
	for k, e := range c.entries {
		c.release(e.res)
		delete(c.entries, k)
	}
	for _, res := range c.retired {
		c.release(res)
	}
	c.retired = nil
}
