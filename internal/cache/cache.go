// Package cache is the identity registry behind one observed root. Every
// container the observer meets is assigned a stable Handle; the handle keys
// the wrapper, the current path, the canonical (first-seen) path and the
// per-property descriptor cache. Unsubscribe moves the cache into its
// terminal state, after which every lookup misses.
package cache

import (
	"sync"

	"github.com/reoring/deepwatch/keypath"
	"github.com/reoring/deepwatch/value"
)

// Handle identifies a container within one cache.
type Handle uint64

type entry struct {
	handle    Handle
	value     value.Container
	proxy     any
	path      keypath.Path
	canonical keypath.Path
	descs     map[keypath.Key]value.Descriptor
}

// Cache is safe for concurrent use. The mutex is released before any
// container method runs, so accessor properties never execute under it.
type Cache struct {
	mu           sync.Mutex
	equals       func(a, b any) bool
	handles      map[value.Container]Handle
	entries      map[Handle]*entry
	next         Handle
	unsubscribed bool
}

// New returns an active cache. equals decides whether a write is a no-op.
func New(equals func(a, b any) bool) *Cache {
	if equals == nil {
		equals = value.SameValue
	}
	return &Cache{
		equals:  equals,
		handles: make(map[value.Container]Handle),
		entries: make(map[Handle]*entry),
	}
}

func (c *Cache) lookup(v value.Container) *entry {
	h, ok := c.handles[v]
	if !ok {
		return nil
	}
	return c.entries[h]
}

func (c *Cache) ensure(v value.Container) *entry {
	if e := c.lookup(v); e != nil {
		return e
	}
	c.next++
	e := &entry{handle: c.next, value: v}
	c.handles[v] = e.handle
	c.entries[e.handle] = e
	return e
}

// GetProxy returns the wrapper for original, building it with mk the first
// time, and records path as the value's current path. The canonical path is
// set on first sight only. After Unsubscribe it returns original.
func (c *Cache) GetProxy(original value.Container, path keypath.Path, mk func(Handle) any) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribed {
		return original
	}
	e := c.ensure(original)
	e.path = path
	if e.canonical == nil {
		e.canonical = path
	}
	if e.proxy == nil {
		e.proxy = mk(e.handle)
	}
	return e.proxy
}

// Handle returns the handle assigned to v.
func (c *Cache) Handle(v value.Container) (Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribed {
		return 0, false
	}
	h, ok := c.handles[v]
	return h, ok
}

// Value returns the container behind h.
func (c *Cache) Value(h Handle) (value.Container, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[h]
	if !ok || c.unsubscribed {
		return nil, false
	}
	return e.value, true
}

// Path returns the last recorded path of v.
func (c *Cache) Path(v value.Container) (keypath.Path, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribed {
		return nil, false
	}
	e := c.lookup(v)
	if e == nil || e.path == nil {
		return nil, false
	}
	return e.path, true
}

// CanonicalPath returns the path v was first wrapped at.
func (c *Cache) CanonicalPath(v value.Container) (keypath.Path, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribed {
		return nil, false
	}
	e := c.lookup(v)
	if e == nil || e.canonical == nil {
		return nil, false
	}
	return e.canonical, true
}

// IsDetached reports whether resolving the recorded path of v from root no
// longer yields v. A value without a recorded path is detached.
func (c *Cache) IsDetached(v value.Container, root value.Container) bool {
	p, ok := c.Path(v)
	if !ok {
		return true
	}
	got, ok := keypath.Resolve(root, p)
	if !ok {
		return true
	}
	gc, ok := got.(value.Container)
	return !ok || gc != v
}

func (c *Cache) cached(target value.Container, k keypath.Key) (value.Descriptor, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribed {
		return value.Descriptor{}, false, false
	}
	if e := c.lookup(target); e != nil {
		if d, ok := e.descs[k]; ok {
			return d, true, true
		}
	}
	return value.Descriptor{}, false, true
}

func (c *Cache) store(target value.Container, k keypath.Key, d value.Descriptor, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribed {
		return
	}
	e := c.ensure(target)
	if !ok {
		delete(e.descs, k)
		return
	}
	if e.descs == nil {
		e.descs = make(map[keypath.Key]value.Descriptor)
	}
	e.descs[k] = d
}

// OwnDescriptor returns the descriptor of target[k], served from the cache
// when present.
func (c *Cache) OwnDescriptor(target value.Container, k keypath.Key) (value.Descriptor, bool) {
	d, hit, active := c.cached(target, k)
	if hit {
		return d, true
	}
	d, ok := target.OwnDescriptor(k)
	if ok && active {
		c.store(target, k, d, true)
	}
	return d, ok
}

func (c *Cache) refresh(target value.Container, k keypath.Key) {
	d, ok := target.OwnDescriptor(k)
	c.store(target, k, d, ok)
}

// DefineProperty defines target[k] and caches the resulting descriptor.
func (c *Cache) DefineProperty(target value.Container, k keypath.Key, d value.Descriptor) bool {
	if !target.DefineOwn(k, d) {
		return false
	}
	c.refresh(target, k)
	return true
}

// SetProperty writes target[k] unless the write is a no-op on an existing
// property. Setters run through the property's accessor.
func (c *Cache) SetProperty(target value.Container, k keypath.Key, v, previous any) bool {
	if c.equals(previous, v) && target.HasOwn(k) {
		return true
	}
	if !target.SetOwn(k, v) {
		return false
	}
	if d, ok := target.OwnDescriptor(k); ok && !d.IsAccessor() {
		c.store(target, k, d, true)
	}
	return true
}

// DeleteProperty removes target[k], dropping its cached descriptor and the
// canonical path of the removed value. The removed value keeps its last path
// so that IsDetached can tell it no longer resolves.
func (c *Cache) DeleteProperty(target value.Container, k keypath.Key, previous any) bool {
	if !target.DeleteOwn(k) {
		return false
	}
	c.store(target, k, value.Descriptor{}, false)
	if pv, ok := previous.(value.Container); ok {
		c.mu.Lock()
		if e := c.lookup(pv); e != nil && !c.unsubscribed {
			e.canonical = nil
		}
		c.mu.Unlock()
	}
	return true
}

// ForgetDescriptors drops every cached descriptor of target. Callers use it
// after target was mutated behind the cache's back.
func (c *Cache) ForgetDescriptors(target value.Container) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribed {
		return
	}
	if e := c.lookup(target); e != nil {
		e.descs = nil
	}
}

// IsSameDescriptor reports whether d matches the current descriptor of
// target[k]; a missing property never matches.
func (c *Cache) IsSameDescriptor(target value.Container, k keypath.Key, d value.Descriptor) bool {
	cur, ok := target.OwnDescriptor(k)
	c.store(target, k, cur, ok)
	return ok && value.SameDescriptor(d, cur)
}

// IsGetInvariant reports whether target[k] is neither configurable nor
// writable, so reads may return it unwrapped.
func (c *Cache) IsGetInvariant(target value.Container, k keypath.Key) bool {
	d, ok := c.OwnDescriptor(target, k)
	return ok && !d.Configurable && !d.Writable
}

// Unsubscribe tears the cache down. It reports whether this call performed
// the transition; later calls are no-ops.
func (c *Cache) Unsubscribe() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribed {
		return false
	}
	c.unsubscribed = true
	c.handles = nil
	c.entries = nil
	return true
}

// IsUnsubscribed reports whether Unsubscribe has run.
func (c *Cache) IsUnsubscribed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unsubscribed
}

// Len returns the number of tracked containers.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
