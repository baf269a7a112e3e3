package surface

import (
	"sync/atomic"

	"github.com/quakesoft/qse"
	"github.com/quakesoft/qse/internal/color"
)

// Pool is the monotonic bump allocator backing every visible surface's
// composited texel rectangle for the current frame (spec.md §4.6 step 7:
// "reserves that rectangle in a monotonic surfaces_pixels pool"). Unlike
// the teacher's internal/image.Pool (a sync.Pool-backed free list returning
// buffers to a shared cache), this pool never frees individual allocations
// mid-frame: it hands out disjoint windows of one fixed backing array via
// an atomic offset, and Reset rewinds the offset once per frame. Capacity
// is fixed at construction (spec.md §4.6 step 5's per-frame pixel budget)
// rather than growable, so a window handed to one goroutine is never
// invalidated by a concurrent Alloc on another -- surfaces are built in
// parallel (spec.md §4.6: "Surfaces are independently buildable; they are
// dispatched across threads").
type Pool struct {
	pixels []color.ColorF32
	offset atomic.Int64
}

// NewPool allocates a pool with room for exactly capacity texels.
func NewPool(capacity int) *Pool {
	if capacity < 0 {
		capacity = 0
	}
	return &Pool{pixels: make([]color.ColorF32, capacity)}
}

// Reset rewinds the pool to empty without releasing its backing array, so
// the next frame's allocations reuse the same memory. Must only be called
// when no surface build is in flight.
func (p *Pool) Reset() {
	p.offset.Store(0)
}

// Used returns the number of texels reserved so far this frame, for the
// mip-bias feedback loop that keeps the per-frame pixel budget near its
// target (spec.md §4.6 step 5).
func (p *Pool) Used() int {
	n := p.offset.Load()
	if n > int64(len(p.pixels)) {
		return len(p.pixels)
	}
	return int(n)
}

// Cap returns the pool's fixed capacity in texels.
func (p *Pool) Cap() int {
	return len(p.pixels)
}

// Alloc reserves a w*h rectangle of texels and returns a zeroed window into
// the pool. Concurrent-safe: the reservation itself is a single atomic
// add, so many surfaces can be built on separate goroutines at once. When
// the budget is exhausted the request is truncated to whatever remains (a
// zero-length slice once the pool is full) and logged at Warn, the same
// capacity-overflow policy compactmap's string pool uses.
func (p *Pool) Alloc(w, h int) []color.ColorF32 {
	if w <= 0 || h <= 0 || len(p.pixels) == 0 {
		return nil
	}
	want := w * h
	start := p.offset.Add(int64(want)) - int64(want)
	if start >= int64(len(p.pixels)) {
		qse.Logger().Warn("surface: pixel pool capacity exceeded, dropping surface", "requested", want, "capacity", len(p.pixels))
		return nil
	}
	end := start + int64(want)
	if end > int64(len(p.pixels)) {
		qse.Logger().Warn("surface: pixel pool capacity exceeded, truncating surface", "requested", want, "available", int64(len(p.pixels))-start)
		end = int64(len(p.pixels))
	}
	window := p.pixels[start:end]
	for i := range window {
		window[i] = color.ColorF32{}
	}
	return window
}
