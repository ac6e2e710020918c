package alloc

// slabList is an intrusive doubly-linked list of slabs threaded through
// each slabHeader's next/prev fields. A slab is a member of at most one
// list at a time, which is why a single pair of fields suffices across
// partial/full/empty.
type slabList struct {
	head *slabHeader
	size int
}

func (l *slabList) pushFront(s *slabHeader) {
	s.prev = nil
	s.next = l.head
	if l.head != nil {
		l.head.prev = s
	}
	l.head = s
	l.size++
}

func (l *slabList) remove(s *slabHeader) {
	if s.prev != nil {
		s.prev.next = s.next
	} else {
		l.head = s.next
	}
	if s.next != nil {
		s.next.prev = s.prev
	}
	s.next, s.prev = nil, nil
	l.size--
}

// sizeClassCache is the three-list bookkeeping structure for one size
// class: partial (some free, some used, or freshly built), full (zero
// free), empty (all free, kept rather than returned to the page provider
// until Heap.Reap; allocation never draws slabs from this list).
type sizeClassCache struct {
	class      int
	objectSize uintptr

	partial slabList
	full    slabList
	empty   slabList

	slabCount int // total slabs ever built for this class, for diagnostics
}

// ClassStats is a snapshot of one size class's cache for diagnostics.
type ClassStats struct {
	Class        int
	ObjectSize   uintptr
	Capacity     uint32
	PartialSlabs int
	FullSlabs    int
	EmptySlabs   int
	ObjectsInUse uint64
	ObjectsTotal uint64
}

func (c *sizeClassCache) snapshot() ClassStats {
	cap := capacityFor(c.objectSize)
	objectsTotal := uint64(c.partial.size+c.full.size+c.empty.size) * uint64(cap)
	inUse := uint64(c.full.size) * uint64(cap)
	for s := c.partial.head; s != nil; s = s.next {
		inUse += uint64(s.capacity - s.freeCount)
	}
	return ClassStats{
		Class:        c.class,
		ObjectSize:   c.objectSize,
		Capacity:     cap,
		PartialSlabs: c.partial.size,
		FullSlabs:    c.full.size,
		EmptySlabs:   c.empty.size,
		ObjectsInUse: inUse,
		ObjectsTotal: objectsTotal,
	}
}
