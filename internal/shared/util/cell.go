package util

import "sync/atomic"

// OnceCell holds a lazily computed value with first-writer-wins semantics.
//
// Concurrent callers of GetOrInit may each run init, but only the first
// stored result is kept and every caller observes that same value. init must
// therefore be free of observable side effects. The zero value is empty and
// ready to use; a OnceCell must not be copied after first use.
type OnceCell[T any] struct {
	p atomic.Pointer[T]
}

// Get returns the stored value, if any.
func (c *OnceCell[T]) Get() (T, bool) {
	if v := c.p.Load(); v != nil {
		return *v, true
	}
	var zero T
	return zero, false
}

// GetOrInit returns the stored value, computing it with init when empty.
func (c *OnceCell[T]) GetOrInit(init func() T) T {
	if v := c.p.Load(); v != nil {
		return *v
	}
	v := init()
	if c.p.CompareAndSwap(nil, &v) {
		return v
	}
	return *c.p.Load()
}
