package selector

import (
	"slices"
	"sync"
	"time"
)

// Factory builds the selector for one parameter list.
type Factory[S comparable, T any] func(params ...any) (Selector[S, T], error)

// ParameterizedCache memoizes one selector per parameter list.
//
// Parameter lists are indexed by ParameterKey. Every key holds a single entry that
// behaves like a SimpleCache of size one; a single LRU order spans all keys and the
// least recently updated keys are evicted once MaxCacheSize is exceeded.
type ParameterizedCache[S comparable, T any] struct {
	mu          sync.Mutex
	factory     Factory[S, T]
	equal       func(a, b T) bool
	paramsEqual func(a, b []any) bool
	fallback    *T
	maxSize     int
	entries     map[string]*entry[S, T]
	order       lruList[S, T]
	inst        *instrument
}

// NewParameterizedCache wraps factory. MaxCacheSize defaults to 10.
func NewParameterizedCache[S comparable, T any](factory Factory[S, T], opts Options[T]) *ParameterizedCache[S, T] {
	maxSize := opts.maxSize(DefaultParameterizedMaxCacheSize)
	return &ParameterizedCache[S, T]{
		factory:     factory,
		equal:       opts.equality(Identical[T]),
		paramsEqual: opts.ParameterEqualityFn,
		fallback:    opts.FallbackValue,
		maxSize:     maxSize,
		entries:     make(map[string]*entry[S, T], maxSize),
		inst:        newInstrument(opts.Name, opts.EnablePerformanceMonitoring),
	}
}

// Bind fixes the parameters and returns a selector over state.
func (c *ParameterizedCache[S, T]) Bind(params ...any) Selector[S, T] {
	bound := slices.Clone(params)
	return func(state S) (T, error) {
		return c.Select(state, bound...)
	}
}

// Select returns the derived value for state and params.
//
// Key, factory and selector errors are returned unchanged and leave the cache untouched.
func (c *ParameterizedCache[S, T]) Select(state S, params ...any) (T, error) {
	var zero T
	start := time.Now()

	key, err := ParameterKey(params...)
	if err != nil {
		return zero, err
	}

	if result, ok := c.lookup(key, state, params, start); ok {
		c.inst.observe(start, outcomeHit)
		return result, nil
	}

	fn, err := c.factory(params...)
	if err != nil {
		c.inst.fail()
		return zero, err
	}
	if fn == nil {
		c.inst.fail()
		return zero, ErrNilSelector
	}
	result, err := fn(state)
	if err != nil {
		c.inst.fail()
		return zero, err
	}
	result = applyFallback(result, c.fallback)

	result, reused := c.store(key, params, state, result)
	if reused {
		c.inst.observe(start, outcomeReuse)
	} else {
		c.inst.observe(start, outcomeMiss)
	}
	return result, nil
}

func (c *ParameterizedCache[S, T]) lookup(key string, state S, params []any, now time.Time) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.entries[key]
	if !ok || e.state != state {
		return zero, false
	}
	if c.paramsEqual != nil && !c.paramsEqual(e.params, params) {
		return zero, false
	}
	e.touch(state, now)
	c.order.moveToFront(e)
	return e.result, true
}

func (c *ParameterizedCache[S, T]) store(key string, params []any, state S, result T) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if e, ok := c.entries[key]; ok {
		if c.equal(e.result, result) {
			e.params = slices.Clone(params)
			e.touch(state, now)
			c.order.moveToFront(e)
			return e.result, true
		}
		c.order.remove(e)
		delete(c.entries, key)
	}

	e := &entry[S, T]{
		key:          key,
		params:       slices.Clone(params),
		result:       result,
		state:        state,
		createdAt:    now,
		lastAccessed: now,
		accessCount:  1,
	}
	c.entries[key] = e
	c.order.pushFront(e)

	for c.order.len > c.maxSize {
		evicted := c.order.popBack()
		delete(c.entries, evicted.key)
		c.inst.evicted()
	}
	c.inst.setSize(len(c.entries))
	return result, false
}

// EntryInfo describes one stored parameter list.
type EntryInfo struct {
	Key          string    `json:"key"`
	Params       []any     `json:"params"`
	AccessCount  int64     `json:"access_count"`
	CreatedAt    time.Time `json:"created_at"`
	LastAccessed time.Time `json:"last_accessed"`
}

// CacheInfo lists the stored parameter lists, most recently used first.
type CacheInfo struct {
	Size    int         `json:"size"`
	MaxSize int         `json:"max_size"`
	Entries []EntryInfo `json:"entries"`
}

// CacheInfo returns the stored parameter lists and their access counts.
func (c *ParameterizedCache[S, T]) CacheInfo() CacheInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	info := CacheInfo{
		Size:    len(c.entries),
		MaxSize: c.maxSize,
		Entries: make([]EntryInfo, 0, len(c.entries)),
	}
	for e := c.order.head; e != nil; e = e.next {
		info.Entries = append(info.Entries, EntryInfo{
			Key:          e.key,
			Params:       slices.Clone(e.params),
			AccessCount:  e.accessCount,
			CreatedAt:    e.createdAt,
			LastAccessed: e.lastAccessed,
		})
	}
	return info
}

// Metrics returns the current counters.
func (c *ParameterizedCache[S, T]) Metrics() Metrics {
	return c.inst.snapshot()
}

// ResetMetrics zeroes the counters. Stored entries are kept.
func (c *ParameterizedCache[S, T]) ResetMetrics() {
	c.inst.reset()
}

// ClearCache drops every key. Counters are kept.
func (c *ParameterizedCache[S, T]) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry[S, T], c.maxSize)
	c.order.reset()
	c.inst.setSize(0)
}

// CacheSize returns the number of stored keys.
func (c *ParameterizedCache[S, T]) CacheSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
