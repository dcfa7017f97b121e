package selector

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/guttosm/selectorcache/internal/metrics"
)

// Call outcomes reported to Prometheus.
const (
	outcomeHit   = "hit"
	outcomeReuse = "reuse"
	outcomeMiss  = "miss"
	outcomeError = "error"
)

// Metrics is a point-in-time view of a cache's counters.
type Metrics struct {
	TotalCalls           int64         `json:"total_calls"`
	CacheHits            int64         `json:"cache_hits"`
	CacheMisses          int64         `json:"cache_misses"`
	Evictions            int64         `json:"evictions"`
	CacheSize            int           `json:"cache_size"`
	TotalExecutionTime   time.Duration `json:"total_execution_time"`
	MinExecutionTime     time.Duration `json:"min_execution_time"`
	AverageExecutionTime time.Duration `json:"average_execution_time"`
	MaxExecutionTime     time.Duration `json:"max_execution_time"`
	LastCall             time.Time     `json:"last_call,omitempty"`
}

// HitRatio returns hits over total calls, or 0 before the first call.
func (m Metrics) HitRatio() float64 {
	if m.TotalCalls == 0 {
		return 0
	}
	return float64(m.CacheHits) / float64(m.TotalCalls)
}

// Introspectable is the inspection surface shared by every cache kind.
type Introspectable interface {
	Metrics() Metrics
	ResetMetrics()
	ClearCache()
	CacheSize() int
}

// instrument tracks call counters with atomics so readers never block callers.
type instrument struct {
	name    string
	enabled bool

	totalCalls atomic.Int64
	hits       atomic.Int64
	misses     atomic.Int64
	evictions  atomic.Int64
	size       atomic.Int64
	totalNanos atomic.Int64
	minNanos   atomic.Int64
	maxNanos   atomic.Int64
	lastCall   atomic.Int64
}

// noMinimum marks minNanos before the first observed call.
const noMinimum = math.MaxInt64

func newInstrument(name string, enabled bool) *instrument {
	i := &instrument{name: name, enabled: enabled}
	i.minNanos.Store(noMinimum)
	return i
}

// observe records a completed call.
func (i *instrument) observe(start time.Time, outcome string) {
	if !i.enabled {
		return
	}
	i.record(time.Since(start), outcome)
}

func (i *instrument) record(elapsed time.Duration, outcome string) {
	nanos := elapsed.Nanoseconds()

	i.totalCalls.Add(1)
	switch outcome {
	case outcomeHit:
		i.hits.Add(1)
	case outcomeMiss, outcomeReuse:
		i.misses.Add(1)
	}
	i.totalNanos.Add(nanos)
	i.lastCall.Store(time.Now().UnixNano())

	for {
		cur := i.minNanos.Load()
		if cur <= nanos {
			break
		}
		if i.minNanos.CompareAndSwap(cur, nanos) {
			break
		}
	}
	for {
		cur := i.maxNanos.Load()
		if cur >= nanos {
			break
		}
		if i.maxNanos.CompareAndSwap(cur, nanos) {
			break
		}
	}

	if i.name != "" {
		metrics.RecordSelectorCall(i.name, outcome, elapsed)
	}
}

// fail records a derivation error. Failed calls do not touch the hit/miss counters.
func (i *instrument) fail() {
	if i.enabled && i.name != "" {
		metrics.RecordSelectorCall(i.name, outcomeError, 0)
	}
}

func (i *instrument) evicted() {
	if !i.enabled {
		return
	}
	i.evictions.Add(1)
	if i.name != "" {
		metrics.RecordSelectorEviction(i.name)
	}
}

func (i *instrument) setSize(n int) {
	i.size.Store(int64(n))
}

func (i *instrument) snapshot() Metrics {
	m := Metrics{
		TotalCalls:         i.totalCalls.Load(),
		CacheHits:          i.hits.Load(),
		CacheMisses:        i.misses.Load(),
		Evictions:          i.evictions.Load(),
		CacheSize:          int(i.size.Load()),
		TotalExecutionTime: time.Duration(i.totalNanos.Load()),
		MaxExecutionTime:   time.Duration(i.maxNanos.Load()),
	}
	if minNanos := i.minNanos.Load(); minNanos != noMinimum {
		m.MinExecutionTime = time.Duration(minNanos)
	}
	if m.TotalCalls > 0 {
		m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.TotalCalls)
	}
	if last := i.lastCall.Load(); last != 0 {
		m.LastCall = time.Unix(0, last)
	}
	return m
}

func (i *instrument) reset() {
	i.totalCalls.Store(0)
	i.hits.Store(0)
	i.misses.Store(0)
	i.evictions.Store(0)
	i.totalNanos.Store(0)
	i.minNanos.Store(noMinimum)
	i.maxNanos.Store(0)
	i.lastCall.Store(0)
}
