package platform

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// ArenaProvider carves page-aligned pages out of one oversized Go
// allocation instead of calling into the OS. It is grounded in the same
// idea as a SharedArrayBuffer- or mmap'd-file-backed provider would use
// (one contiguous backing region), for hosts where a real mmap is
// unavailable or undesirable: tests, WASM, or restricted sandboxes.
//
// It is monotonic: pages handed out are never coalesced or reused once
// returned via FreePages, matching the slab engine's own "never destroy a
// slab" stance for the core, while still giving the optional reaper
// something well-defined to call.
type ArenaProvider struct {
	pageSize uintptr
	arena    []byte // keeps the backing allocation alive; never read again
	base     uintptr
	end      uintptr
	next     atomic.Uintptr
}

// NewArenaProvider reserves room for totalPages pages, over-allocating by
// one page so a page-aligned subrange exists regardless of where the Go
// runtime happened to place the backing array.
func NewArenaProvider(pageSize uintptr, totalPages int) *ArenaProvider {
	raw := make([]byte, uintptr(totalPages+1)*pageSize)
	base := uintptr(unsafe.Pointer(&raw[0]))
	aligned := (base + pageSize - 1) &^ (pageSize - 1)

	a := &ArenaProvider{
		pageSize: pageSize,
		arena:    raw,
		base:     aligned,
		end:      aligned + uintptr(totalPages)*pageSize,
	}
	a.next.Store(aligned)
	return a
}

func (a *ArenaProvider) PageSize() uintptr { return a.pageSize }

func (a *ArenaProvider) AllocPages(n int) (unsafe.Pointer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("platform: page count must be positive, got %d", n)
	}
	need := uintptr(n) * a.pageSize
	for {
		cur := a.next.Load()
		if cur+need > a.end {
			return nil, fmt.Errorf("platform: arena exhausted")
		}
		if a.next.CompareAndSwap(cur, cur+need) {
			return unsafe.Pointer(cur), nil
		}
	}
}

// FreePages is a no-op: the arena is monotonic and pages are only ever
// reclaimed conceptually, never physically returned to the Go runtime.
func (a *ArenaProvider) FreePages(p unsafe.Pointer, n int) error {
	return nil
}
