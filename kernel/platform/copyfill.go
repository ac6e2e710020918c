package platform

import "unsafe"

// CopyBytes copies n bytes from src to dst. The two regions must not
// overlap; resize's copy never does, since dst is always a freshly
// allocated object.
func CopyBytes(dst, src unsafe.Pointer, n uintptr) {
	if n == 0 {
		return
	}
	copy(unsafe.Slice((*byte)(dst), n), unsafe.Slice((*byte)(src), n))
}

// ZeroBytes fills n bytes at dst with zero.
func ZeroBytes(dst unsafe.Pointer, n uintptr) {
	if n == 0 {
		return
	}
	clear(unsafe.Slice((*byte)(dst), n))
}
