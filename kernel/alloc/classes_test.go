package alloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassForPicksSmallestSufficientClass(t *testing.T) {
	largest := sizeClasses[maxUsableClass]

	cases := []struct {
		size    uintptr
		wantCap uintptr
		wantOK  bool
	}{
		{size: 1, wantCap: 16, wantOK: true},
		{size: 16, wantCap: 16, wantOK: true},
		{size: 17, wantCap: 32, wantOK: true},
		{size: 0, wantCap: 16, wantOK: true},
		{size: largest, wantCap: largest, wantOK: true},
		{size: largest + 1, wantOK: false},
		{size: 524289, wantOK: false},
	}
	for _, tc := range cases {
		class, ok := classFor(tc.size)
		assert.Equal(t, tc.wantOK, ok, "size %d", tc.size)
		if ok {
			assert.Equal(t, tc.wantCap, sizeClasses[class], "size %d", tc.size)
		}
	}
}

// TestClassForRefusesCapacityZeroClasses covers the table entries beyond
// maxUsableClass: their object size leaves no room for an object after the
// header, so classFor must never hand one out, however large the request.
func TestClassForRefusesCapacityZeroClasses(t *testing.T) {
	require.Less(t, maxUsableClass, numSizeClasses-1, "fixture assumes at least one capacity-zero class exists")
	for i, c := range sizeClasses {
		if i <= maxUsableClass {
			continue
		}
		assert.Zero(t, capacityFor(c), "class %d (object size %d) expected to be capacity-zero", i, c)
		_, ok := classFor(c)
		assert.False(t, ok, "classFor(%d) should refuse a capacity-zero class", c)
	}
}

func TestCapacityForIsFloorDivisionAfterHeader(t *testing.T) {
	for _, objSize := range sizeClasses {
		cap := capacityFor(objSize)
		if pageSize-headerSize < objSize {
			assert.Zero(t, cap)
			continue
		}
		assert.Equal(t, uint32((pageSize-headerSize)/objSize), cap)
		// usable region must not overrun the page
		assert.LessOrEqual(t, headerSize+uintptr(cap)*objSize, uintptr(pageSize))
	}
}

func TestSmallestClassHoldsAFreelistPointer(t *testing.T) {
	assert.GreaterOrEqual(t, sizeClasses[0], unsafe.Sizeof(uintptr(0)))
}
