package pool

import "sync"

// SlicePool pools slices of T for reuse across calls.
type SlicePool[T any] struct {
	pool sync.Pool
}

// NewSlicePool creates an empty SlicePool.
func NewSlicePool[T any]() *SlicePool[T] {
	return &SlicePool[T]{
		pool: sync.Pool{
			New: func() any { return &[]T{} },
		},
	}
}

// Get retrieves and resizes a slice from the pool.
//
// The returned slice will have the exact length specified by the size parameter and its
// elements are zeroed. If the pooled slice has insufficient capacity, a new slice will be
// allocated. The caller must call the returned cleanup function to return the slice to the pool.
//
// Example:
//
//	plans, cleanup := planPool.Get(blocks)
//	defer cleanup()
func (p *SlicePool[T]) Get(size int) ([]T, func()) {
	ptr, _ := p.pool.Get().(*[]T)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]T, size)
	} else {
		slice = slice[:size]
		clear(slice)
	}
	*ptr = slice

	return slice, func() { p.pool.Put(ptr) }
}
