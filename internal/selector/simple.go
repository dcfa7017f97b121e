package selector

import (
	"sync"
	"time"
)

// SimpleCache memoizes a single selector.
//
// The most recently used entry answers calls with the same snapshot directly. Other
// calls run the selector; if the result equals a stored one, the stored result is
// returned and its entry now belongs to the new snapshot. Otherwise the result is
// stored and the least recently used entry is evicted once MaxCacheSize is exceeded.
type SimpleCache[S comparable, T any] struct {
	mu       sync.Mutex
	selector Selector[S, T]
	equal    func(a, b T) bool
	fallback *T
	maxSize  int
	entries  lruList[S, T]
	inst     *instrument
}

// NewSimpleCache wraps fn. Equality defaults to Identical and MaxCacheSize to 1.
func NewSimpleCache[S comparable, T any](fn Selector[S, T], opts Options[T]) *SimpleCache[S, T] {
	return &SimpleCache[S, T]{
		selector: fn,
		equal:    opts.equality(Identical[T]),
		fallback: opts.FallbackValue,
		maxSize:  opts.maxSize(DefaultMaxCacheSize),
		inst:     newInstrument(opts.Name, opts.EnablePerformanceMonitoring),
	}
}

// Select returns the derived value for state.
//
// Errors from the selector are returned unchanged and leave the cache untouched.
func (c *SimpleCache[S, T]) Select(state S) (T, error) {
	start := time.Now()

	if result, ok := c.lookup(state, start); ok {
		c.inst.observe(start, outcomeHit)
		return result, nil
	}

	result, err := c.selector(state)
	if err != nil {
		c.inst.fail()
		var zero T
		return zero, err
	}
	result = applyFallback(result, c.fallback)

	result, reused := c.store(state, result)
	if reused {
		c.inst.observe(start, outcomeReuse)
	} else {
		c.inst.observe(start, outcomeMiss)
	}
	return result, nil
}

// lookup answers from the most recent entry when it was produced by state.
func (c *SimpleCache[S, T]) lookup(state S, now time.Time) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	head := c.entries.head
	if head == nil || head.state != state {
		var zero T
		return zero, false
	}
	head.touch(state, now)
	return head.result, true
}

// store reuses an equal entry or inserts a new one.
func (c *SimpleCache[S, T]) store(state S, result T) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for e := c.entries.head; e != nil; e = e.next {
		if c.equal(e.result, result) {
			e.touch(state, now)
			c.entries.moveToFront(e)
			return e.result, true
		}
	}

	c.entries.pushFront(&entry[S, T]{
		result:       result,
		state:        state,
		createdAt:    now,
		lastAccessed: now,
		accessCount:  1,
	})
	for c.entries.len > c.maxSize {
		c.entries.popBack()
		c.inst.evicted()
	}
	c.inst.setSize(c.entries.len)
	return result, false
}

// Metrics returns the current counters.
func (c *SimpleCache[S, T]) Metrics() Metrics {
	return c.inst.snapshot()
}

// ResetMetrics zeroes the counters. Stored entries are kept.
func (c *SimpleCache[S, T]) ResetMetrics() {
	c.inst.reset()
}

// ClearCache drops every stored entry. Counters are kept.
func (c *SimpleCache[S, T]) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.reset()
	c.inst.setSize(0)
}

// CacheSize returns the number of stored entries.
func (c *SimpleCache[S, T]) CacheSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.len
}
