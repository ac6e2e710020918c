package diag

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes allocator bookkeeping as Prometheus metrics. A nil
// *Collector is valid and every method on it is a no-op, so a host that
// doesn't care about metrics can simply never construct one.
type Collector struct {
	allocTotal      *prometheus.CounterVec
	freeTotal       *prometheus.CounterVec
	resizeTotal     prometheus.Counter
	zeroAllocTotal  prometheus.Counter
	oomTotal        prometheus.Counter
	corruptionTotal prometheus.Counter

	slabsPartial *prometheus.GaugeVec
	slabsFull    *prometheus.GaugeVec
	slabsEmpty   *prometheus.GaugeVec
	objectsInUse *prometheus.GaugeVec
}

// NewCollector builds a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		allocTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slabheap",
			Name:      "alloc_total",
			Help:      "Successful Alloc calls, by size class.",
		}, []string{"class"}),
		freeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slabheap",
			Name:      "free_total",
			Help:      "Free calls, by size class.",
		}, []string{"class"}),
		resizeTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slabheap",
			Name:      "resize_total",
			Help:      "Resize calls.",
		}),
		zeroAllocTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slabheap",
			Name:      "zero_alloc_total",
			Help:      "ZeroAlloc calls.",
		}),
		oomTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slabheap",
			Name:      "out_of_memory_total",
			Help:      "Allocation attempts that failed because the page provider was exhausted.",
		}),
		corruptionTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slabheap",
			Name:      "corruption_detected_total",
			Help:      "Free calls aborted because of a detected corruption pattern.",
		}),
		slabsPartial: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "slabheap",
			Name:      "slabs_partial",
			Help:      "Slabs currently on the partial list, by size class.",
		}, []string{"class"}),
		slabsFull: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "slabheap",
			Name:      "slabs_full",
			Help:      "Slabs currently on the full list, by size class.",
		}, []string{"class"}),
		slabsEmpty: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "slabheap",
			Name:      "slabs_empty",
			Help:      "Slabs currently on the empty list, by size class.",
		}, []string{"class"}),
		objectsInUse: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "slabheap",
			Name:      "objects_in_use",
			Help:      "Objects currently allocated, by size class.",
		}, []string{"class"}),
	}

	reg.MustRegister(
		c.allocTotal, c.freeTotal, c.resizeTotal, c.zeroAllocTotal,
		c.oomTotal, c.corruptionTotal,
		c.slabsPartial, c.slabsFull, c.slabsEmpty, c.objectsInUse,
	)
	return c
}

func (c *Collector) RecordAlloc(class int) {
	if c == nil {
		return
	}
	c.allocTotal.WithLabelValues(strconv.Itoa(class)).Inc()
}

func (c *Collector) RecordFree(class int) {
	if c == nil {
		return
	}
	c.freeTotal.WithLabelValues(strconv.Itoa(class)).Inc()
}

func (c *Collector) RecordResize() {
	if c == nil {
		return
	}
	c.resizeTotal.Inc()
}

func (c *Collector) RecordZeroAlloc() {
	if c == nil {
		return
	}
	c.zeroAllocTotal.Inc()
}

func (c *Collector) RecordOOM() {
	if c == nil {
		return
	}
	c.oomTotal.Inc()
}

func (c *Collector) RecordCorruption() {
	if c == nil {
		return
	}
	c.corruptionTotal.Inc()
}

// SetSlabGauges updates the per-class list-size and in-use gauges. Called
// after each mutating operation with a fresh snapshot.
func (c *Collector) SetSlabGauges(class, partial, full, empty int, objectsInUse uint64) {
	if c == nil {
		return
	}
	label := strconv.Itoa(class)
	c.slabsPartial.WithLabelValues(label).Set(float64(partial))
	c.slabsFull.WithLabelValues(label).Set(float64(full))
	c.slabsEmpty.WithLabelValues(label).Set(float64(empty))
	c.objectsInUse.WithLabelValues(label).Set(float64(objectsInUse))
}
