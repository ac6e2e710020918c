package main

import (
	"flag"
	"fmt"
	"os"
	"time"
	"unsafe"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hobbykernel/slabheap/kernel/alloc"
	"github.com/hobbykernel/slabheap/kernel/diag"
	"github.com/hobbykernel/slabheap/kernel/platform"
)

func main() {
	iterations := flag.Int("n", 200_000, "allocations per scenario")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := diag.Info
	if *verbose {
		level = diag.Debug
	}
	logger := diag.New(diag.Config{Level: level, Component: "slabheapbench"})
	stats := diag.NewCollector(prometheus.NewRegistry())

	heap := alloc.New(platform.NewMmapProvider(), platform.NewMutexGuard(),
		alloc.WithLogger(logger), alloc.WithStats(stats))

	fmt.Println("slabheapbench: exercising alloc/free churn and size-class boundaries")

	churnThroughput(heap, *iterations)
	boundaryScenario(heap)
	capacityFillScenario(heap)
	resizeScenario(heap)

	report(heap)
}

// churnThroughput keeps a working set of objects live and repeatedly
// replaces one at a time, measuring steady-state throughput. A bare
// alloc-then-immediately-free loop would empty each slab after a single
// object and force a fresh page every iteration (the cache only grows a
// new slab when partial is empty; it never pulls from empty), which
// measures page-provider throughput, not allocator throughput.
func churnThroughput(h *alloc.Heap, n int) {
	const size = 64
	const workingSet = 256

	live := make([]unsafe.Pointer, workingSet)
	for i := range live {
		live[i] = h.Alloc(size)
	}

	start := time.Now()
	for i := 0; i < n; i++ {
		idx := i % workingSet
		h.Free(live[idx])
		live[idx] = h.Alloc(size)
	}
	elapsed := time.Since(start)

	for _, p := range live {
		h.Free(p)
	}

	fmt.Printf("churn: %d alloc/free pairs in %s (%.0f ops/sec)\n",
		n, elapsed, float64(n)/elapsed.Seconds())
}

// boundaryScenario checks that requests at and just past a class edge land
// in the classes the geometry promises. Not every class in the compile-time
// table is usable: classes whose object size leaves no room for an object
// after the header (Capacity == 0 in Stats) are rejected at allocation
// time, so the largest *usable* size is read back from Stats rather than
// assumed to be the table's last entry.
func boundaryScenario(h *alloc.Heap) {
	var largestUsable uintptr
	for _, s := range h.Stats() {
		if s.Capacity > 0 && s.ObjectSize > largestUsable {
			largestUsable = s.ObjectSize
		}
	}

	for _, s := range []uintptr{16, 17, largestUsable} {
		p := h.Alloc(s)
		if p == nil {
			fmt.Printf("boundary: unexpected nil for size %d\n", s)
			os.Exit(1)
		}
		h.Free(p)
	}

	for _, s := range []uintptr{largestUsable + 1, 10 * 1024 * 1024} {
		if p := h.Alloc(s); p != nil {
			fmt.Printf("boundary: expected nil for unusable size %d\n", s)
			os.Exit(1)
		}
	}
	fmt.Println("boundary: size-class edges behave as specified")
}

// capacityFillScenario fills one slab to capacity, confirms it migrates to
// the full list, then drains it back to empty.
func capacityFillScenario(h *alloc.Heap) {
	const size = 128
	before := h.Stats()

	var ptrs []unsafe.Pointer
	for {
		p := h.Alloc(size)
		ptrs = append(ptrs, p)
		stats := h.Stats()
		class := classOf(stats, size)
		if stats[class].FullSlabs > before[class].FullSlabs {
			break
		}
	}
	for _, p := range ptrs {
		h.Free(p)
	}
	fmt.Printf("capacity fill: filled and drained a %d-byte slab (%d objects)\n", size, len(ptrs))
}

// resizeScenario exercises in-place and growing resizes. The growth target
// is read back from Stats rather than hardcoded, for the same reason as
// boundaryScenario: not every class in the table is usable.
func resizeScenario(h *alloc.Heap) {
	var largestUsable uintptr
	for _, s := range h.Stats() {
		if s.Capacity > 0 && s.ObjectSize > largestUsable {
			largestUsable = s.ObjectSize
		}
	}

	p := h.Alloc(32)
	same := h.Resize(p, 20)
	if same != p {
		fmt.Println("resize: expected in-place resize to shrink without moving")
		os.Exit(1)
	}

	grown := h.Resize(p, largestUsable)
	if grown == nil {
		fmt.Println("resize: expected growth within the usable range to succeed")
		os.Exit(1)
	}
	if grown == p {
		fmt.Println("resize: expected growth beyond class to move the object")
		os.Exit(1)
	}
	h.Free(grown)
	fmt.Println("resize: in-place and growing paths both behave as specified")
}

func classOf(stats []alloc.ClassStats, size uintptr) int {
	for i, s := range stats {
		if s.ObjectSize >= size {
			return i
		}
	}
	return len(stats) - 1
}

func report(h *alloc.Heap) {
	fmt.Println("final per-class occupancy:")
	for _, s := range h.Stats() {
		if s.PartialSlabs == 0 && s.FullSlabs == 0 && s.EmptySlabs == 0 {
			continue
		}
		fmt.Printf("  class=%-6d partial=%d full=%d empty=%d in_use=%d/%d\n",
			s.ObjectSize, s.PartialSlabs, s.FullSlabs, s.EmptySlabs, s.ObjectsInUse, s.ObjectsTotal)
	}
}
