package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlabListPushFrontAndRemove(t *testing.T) {
	var l slabList
	a := &slabHeader{}
	b := &slabHeader{}
	c := &slabHeader{}

	l.pushFront(a)
	l.pushFront(b)
	l.pushFront(c)
	require.Equal(t, 3, l.size)
	assert.Same(t, c, l.head)
	assert.Same(t, b, c.next)
	assert.Same(t, c, b.prev)

	// remove the middle element and check the neighbors re-link.
	l.remove(b)
	assert.Equal(t, 2, l.size)
	assert.Same(t, a, c.next)
	assert.Same(t, c, a.prev)
	assert.Nil(t, b.next)
	assert.Nil(t, b.prev)

	// remove the head.
	l.remove(c)
	assert.Equal(t, 1, l.size)
	assert.Same(t, a, l.head)
	assert.Nil(t, a.prev)

	// remove the last element.
	l.remove(a)
	assert.Zero(t, l.size)
	assert.Nil(t, l.head)
}

func TestSizeClassCacheSnapshotCountsInUseAndTotal(t *testing.T) {
	page := newTestPage(t)
	class, _ := classFor(64)
	s := buildSlab(page, class)

	cache := sizeClassCache{class: class, objectSize: sizeClasses[class]}
	cache.partial.pushFront(s)

	// consume two objects from the only slab, still partial.
	s.popFree()
	s.popFree()

	snap := cache.snapshot()
	assert.Equal(t, 1, snap.PartialSlabs)
	assert.Zero(t, snap.FullSlabs)
	assert.Zero(t, snap.EmptySlabs)
	assert.Equal(t, uint64(2), snap.ObjectsInUse)
	assert.Equal(t, uint64(s.capacity), snap.ObjectsTotal)
}

func TestSizeClassCacheSnapshotCountsFullSlabsAsEntirelyInUse(t *testing.T) {
	page := newTestPage(t)
	class, _ := classFor(16)
	s := buildSlab(page, class)

	cache := sizeClassCache{class: class, objectSize: sizeClasses[class]}
	cache.full.pushFront(s)

	snap := cache.snapshot()
	assert.Equal(t, 1, snap.FullSlabs)
	assert.Equal(t, uint64(s.capacity), snap.ObjectsInUse)
}
