package alloc

import "unsafe"

// slabHeader sits at the base of every slab page. next/prev give the slab
// O(1) membership in whichever of its cache's three lists currently holds
// it (partial/full/empty). The source prototype this is modeled on used a
// single next field and corrupted the full list on unlink; this header
// carries both, per the doubly-linked-list requirement that fixes it.
//
// freelistHead is the address of the first free object in this slab, or
// nil. The free objects themselves carry the rest of the list: the first
// machine word of each free object holds the address of the next free
// object. Every read or write of that word goes through readNext/writeNext
// so the unsafe boundary stays in this one file.
type slabHeader struct {
	next, prev *slabHeader

	freelistHead unsafe.Pointer
	freeCount    uint32
	capacity     uint32
	objectSize   uint32
	class        uint8
}

// pageMask masks off the in-page offset bits of an address.
const pageMask = uintptr(pageSize - 1)

// slabOf recovers the owning slab header from any pointer previously handed
// out by the engine. This is the whole trick: no side table, just address
// masking, because every slab is exactly one page-aligned page.
func slabOf(p unsafe.Pointer) *slabHeader {
	base := uintptr(p) &^ pageMask
	return (*slabHeader)(unsafe.Pointer(base))
}

func readNext(slot unsafe.Pointer) unsafe.Pointer {
	return *(*unsafe.Pointer)(slot)
}

func writeNext(slot, next unsafe.Pointer) {
	*(*unsafe.Pointer)(slot) = next
}

// buildSlab turns a fresh, page-aligned page into a slab ready to serve
// objects of the given size class. The freelist is constructed so that
// walking it visits every object exactly once in ascending address order.
func buildSlab(page unsafe.Pointer, class int) *slabHeader {
	objSize := sizeClasses[class]
	cap := capacityFor(objSize)

	h := (*slabHeader)(page)
	*h = slabHeader{
		objectSize: uint32(objSize),
		capacity:   cap,
		freeCount:  cap,
		class:      uint8(class),
	}

	base := uintptr(page) + headerSize
	var head unsafe.Pointer
	for i := int(cap) - 1; i >= 0; i-- {
		slot := unsafe.Pointer(base + uintptr(i)*objSize)
		writeNext(slot, head)
		head = slot
	}
	h.freelistHead = head
	return h
}

// popFree removes and returns the head of the slab's freelist. The caller
// must hold the allocator's guard and must have already checked freeCount
// > 0; a slab at the head of partial with freeCount == 0 cannot occur
// (invariant: freeCount == 0 implies the slab lives on full, not partial).
func (h *slabHeader) popFree() unsafe.Pointer {
	obj := h.freelistHead
	h.freelistHead = readNext(obj)
	h.freeCount--
	return obj
}

// pushFree returns obj to the slab's freelist.
func (h *slabHeader) pushFree(obj unsafe.Pointer) {
	writeNext(obj, h.freelistHead)
	h.freelistHead = obj
	h.freeCount++
}

// owns reports whether p lies within this slab's object region, used only
// by the freelist-walk property checks in tests.
func (h *slabHeader) owns(p unsafe.Pointer) bool {
	base := uintptr(unsafe.Pointer(h)) + headerSize
	end := base + uintptr(h.capacity)*uintptr(h.objectSize)
	addr := uintptr(p)
	return addr >= base && addr < end
}
