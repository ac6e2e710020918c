package platform

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MmapProvider obtains pages directly from the OS through an anonymous
// mmap, the hosted-process stand-in for a freestanding kernel's physical
// page allocator. Mappings are not file-backed; the allocator owns no
// persistent storage.
type MmapProvider struct {
	pageSize uintptr
}

// NewMmapProvider builds a provider sized to the host's native page size.
func NewMmapProvider() *MmapProvider {
	return &MmapProvider{pageSize: uintptr(unix.Getpagesize())}
}

func (m *MmapProvider) PageSize() uintptr { return m.pageSize }

func (m *MmapProvider) AllocPages(n int) (unsafe.Pointer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("platform: page count must be positive, got %d", n)
	}
	size := int(m.pageSize) * n
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("platform: mmap %d page(s): %w", n, err)
	}
	return unsafe.Pointer(&data[0]), nil
}

func (m *MmapProvider) FreePages(p unsafe.Pointer, n int) error {
	if p == nil {
		return fmt.Errorf("platform: cannot unmap a nil pointer")
	}
	size := int(m.pageSize) * n
	data := unsafe.Slice((*byte)(p), size)
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("platform: munmap %d page(s): %w", n, err)
	}
	return nil
}
