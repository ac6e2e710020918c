package platform

import "sync"

// Guard is the host-provided mutual-exclusion primitive that serializes
// every allocator mutation. It must nest correctly with itself and, if
// callers may invoke the allocator from interrupt context, must be
// interrupt-disabling, a property of the implementation, not of anything
// the slab engine does with it.
type Guard interface {
	Lock()
	Unlock()
}

// MutexGuard adapts a sync.Mutex to Guard. It is the correct choice for a
// hosted Go process; a true freestanding kernel would substitute an
// interrupt-disabling spinlock behind the same interface.
type MutexGuard struct {
	mu sync.Mutex
}

// NewMutexGuard returns a ready-to-use MutexGuard.
func NewMutexGuard() *MutexGuard {
	return &MutexGuard{}
}

func (g *MutexGuard) Lock()   { g.mu.Lock() }
func (g *MutexGuard) Unlock() { g.mu.Unlock() }
