package alloc

import (
	"sync/atomic"
	"unsafe"

	"github.com/hobbykernel/slabheap/kernel/diag"
	"github.com/hobbykernel/slabheap/kernel/platform"
)

// Heap is the size-class cache array plus the public four-operation
// surface (Alloc, Free, Resize, ZeroAlloc) that funnels into it. All
// mutation happens inside the critical section bounded by guard's
// Lock/Unlock; there is no parallelism across callers, by design (§5).
type Heap struct {
	provider platform.PageProvider
	guard    platform.Guard
	logger   *diag.Logger
	stats    *diag.Collector

	initialized atomic.Bool
	caches      [numSizeClasses]sizeClassCache
}

// Option configures optional collaborators on a Heap.
type Option func(*Heap)

// WithLogger attaches a diagnostics logger. Without one, diagnostics are
// silently dropped.
func WithLogger(l *diag.Logger) Option {
	return func(h *Heap) { h.logger = l }
}

// WithStats attaches a metrics collector.
func WithStats(c *diag.Collector) Option {
	return func(h *Heap) { h.stats = c }
}

// New builds a Heap over the given page provider and guard. The cache
// array is not initialized yet; the first public call does that lazily.
func New(provider platform.PageProvider, guard platform.Guard, opts ...Option) *Heap {
	h := &Heap{provider: provider, guard: guard, logger: diag.Nop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ensureInit performs thread-safe, double-checked lazy initialization of
// the cache array, under the same guard that serializes every other
// mutation, so the protocol is correct regardless of memory-model
// weaknesses, provided the post-acquire read of initialized is observed
// after the pre-acquire write (§4.8).
func (h *Heap) ensureInit() {
	if h.initialized.Load() {
		return
	}
	h.guard.Lock()
	defer h.guard.Unlock()
	if h.initialized.Load() {
		return
	}
	for i := range h.caches {
		h.caches[i] = sizeClassCache{class: i, objectSize: sizeClasses[i]}
	}
	h.initialized.Store(true)
}

// Alloc returns a pointer to at least size uninitialized bytes, or nil if
// size exceeds the largest usable class (see classFor) or the page provider
// is exhausted. The
// heap is left unchanged on failure.
func (h *Heap) Alloc(size uintptr) unsafe.Pointer {
	h.ensureInit()

	class, ok := classFor(size)
	if !ok {
		return nil // unsupported size: no logging required (§7.1)
	}

	h.guard.Lock()
	defer h.guard.Unlock()
	return h.allocLocked(class)
}

// allocLocked performs the §4.4 algorithm; caller holds the guard.
func (h *Heap) allocLocked(class int) unsafe.Pointer {
	cache := &h.caches[class]

	// A cache with no partial slab always constructs a fresh one. Empty
	// slabs are left for the optional reaper, not reused here, so the core
	// stays monotonic per the lifecycle invariant.
	if cache.partial.head == nil {
		slab, err := h.growLocked(class)
		if err != nil {
			h.logger.Warn("page provider exhausted", diag.Any("class", class), diag.Err(err))
			h.stats.RecordOOM()
			return nil
		}
		cache.partial.pushFront(slab)
	}

	s := cache.partial.head
	obj := s.popFree()
	if s.freeCount == 0 {
		cache.partial.remove(s)
		cache.full.pushFront(s)
	}

	h.stats.RecordAlloc(class)
	h.publishGaugesLocked(cache)
	return obj
}

// growLocked obtains one fresh page from the provider and turns it into a
// slab of class, ready to be linked into a list by the caller.
func (h *Heap) growLocked(class int) (*slabHeader, error) {
	page, err := h.provider.AllocPages(1)
	if err != nil {
		return nil, diag.WrapError(err, "alloc: grow cache")
	}
	return buildSlab(page, class), nil
}

// Free releases p back to its owning slab. p == nil is a documented no-op.
func (h *Heap) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	h.ensureInit()

	h.guard.Lock()
	defer h.guard.Unlock()
	h.freeLocked(p)
}

func (h *Heap) freeLocked(p unsafe.Pointer) {
	s := slabOf(p)

	// Best-effort corruption check, widened slightly from the letter of
	// §4.5 step 4: freeing an object that is already the live head of its
	// slab's freelist is the signature of a double free.
	if p == s.freelistHead {
		h.logger.Error("double free detected", diag.Any("ptr", p))
		h.stats.RecordCorruption()
		return
	}

	wasFull := s.freeCount == 0
	s.pushFree(p)

	class := int(s.class)
	cache := &h.caches[class]

	switch {
	case wasFull:
		cache.full.remove(s)
		cache.partial.pushFront(s)
	case s.freeCount == s.capacity:
		cache.partial.remove(s)
		cache.empty.pushFront(s)
	}

	h.stats.RecordFree(class)
	h.publishGaugesLocked(cache)
}

// Resize returns a pointer to at least newSize bytes, preserving the
// content at p. p == nil behaves as Alloc(newSize). If the existing object
// already suffices, p is returned unchanged. Otherwise a new block is
// allocated, the old content copied, and p freed; on allocation failure p
// is left untouched and nil is returned.
func (h *Heap) Resize(p unsafe.Pointer, newSize uintptr) unsafe.Pointer {
	if p == nil {
		return h.Alloc(newSize)
	}
	h.ensureInit()

	h.guard.Lock()
	oldSize := uintptr(slabOf(p).objectSize)
	h.guard.Unlock()

	h.stats.RecordResize()

	if oldSize >= newSize {
		return p
	}

	newPtr := h.Alloc(newSize)
	if newPtr == nil {
		return nil
	}
	platform.CopyBytes(newPtr, p, oldSize)
	h.Free(p)
	return newPtr
}

// ZeroAlloc allocates n*size bytes and zeroes them. nil is returned both on
// allocation failure and on a multiplication overflow.
func (h *Heap) ZeroAlloc(n, size uintptr) unsafe.Pointer {
	h.stats.RecordZeroAlloc()

	if size != 0 && n > ^uintptr(0)/size {
		return nil // §9 item 4: overflow, not silently truncated
	}

	total := n * size
	p := h.Alloc(total)
	if p == nil {
		return nil
	}
	platform.ZeroBytes(p, total)
	return p
}

// Reap returns every fully empty slab across all size classes to the page
// provider. It is never called implicitly: the core engine is monotonic by
// design (§3 lifecycle, §9 item 5); this is the explicit escape hatch.
func (h *Heap) Reap() int {
	h.ensureInit()

	h.guard.Lock()
	defer h.guard.Unlock()

	freed := 0
	for i := range h.caches {
		cache := &h.caches[i]
		for s := cache.empty.head; s != nil; {
			next := s.next
			cache.empty.remove(s)
			if err := h.provider.FreePages(unsafe.Pointer(s), 1); err != nil {
				h.logger.Warn("reap: free pages failed", diag.Err(err))
			} else {
				freed++
			}
			s = next
		}
		h.publishGaugesLocked(cache)
	}
	return freed
}

// Stats returns a snapshot of every size class's cache, for diagnostics.
func (h *Heap) Stats() []ClassStats {
	h.ensureInit()

	h.guard.Lock()
	defer h.guard.Unlock()

	out := make([]ClassStats, numSizeClasses)
	for i := range h.caches {
		out[i] = h.caches[i].snapshot()
	}
	return out
}

func (h *Heap) publishGaugesLocked(cache *sizeClassCache) {
	if h.stats == nil {
		return
	}
	snap := cache.snapshot()
	h.stats.SetSlabGauges(cache.class, snap.PartialSlabs, snap.FullSlabs, snap.EmptySlabs, snap.ObjectsInUse)
}
