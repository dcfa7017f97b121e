package selector

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testState struct {
	items []int
	label string
}

type summary struct {
	total int
}

func newCountingSelector(calls *int) Selector[*testState, int] {
	return Pure(func(s *testState) int {
		*calls++
		return len(s.items)
	})
}

func TestSimpleCache_SameStateIsHit(t *testing.T) {
	calls := 0
	g := NewSimpleCache(newCountingSelector(&calls), Options[int]{EnablePerformanceMonitoring: true})
	s1 := &testState{items: []int{1, 2, 3}}

	v, err := g.Select(s1)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, 1, calls)

	v, err = g.Select(s1)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, 1, calls, "second call with the same state must not derive again")

	m := g.Metrics()
	assert.Equal(t, int64(2), m.TotalCalls)
	assert.Equal(t, int64(1), m.CacheHits)
	assert.Equal(t, int64(1), m.CacheMisses)
	assert.Equal(t, 1, m.CacheSize)
}

func TestSimpleCache_ReusesEqualResultAcrossStates(t *testing.T) {
	calls := 0
	g := NewSimpleCache(Pure(func(s *testState) *summary {
		calls++
		total := 0
		for _, v := range s.items {
			total += v
		}
		return &summary{total: total}
	}), Options[*summary]{
		EqualityFn: func(a, b *summary) bool { return a.total == b.total },
	})

	s1 := &testState{items: []int{1, 2, 3}}
	s2 := &testState{items: []int{3, 3}}

	r1, err := g.Select(s1)
	require.NoError(t, err)
	r2, err := g.Select(s2)
	require.NoError(t, err)

	assert.Same(t, r1, r2, "equal result must keep the stored reference")
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, g.CacheSize())

	// The reused entry now belongs to s2.
	r3, err := g.Select(s2)
	require.NoError(t, err)
	assert.Same(t, r1, r3)
	assert.Equal(t, 2, calls)
}

func TestSimpleCache_EvictsWhenOverCapacity(t *testing.T) {
	g := NewSimpleCache(Pure(func(s *testState) *summary {
		return &summary{total: len(s.items)}
	}), Options[*summary]{
		EqualityFn: func(a, b *summary) bool { return a.total == b.total },
	})

	s1 := &testState{items: []int{1}}
	s2 := &testState{items: []int{1, 2}}

	r1, err := g.Select(s1)
	require.NoError(t, err)
	_, err = g.Select(s2)
	require.NoError(t, err)
	assert.Equal(t, 1, g.CacheSize())

	again, err := g.Select(&testState{items: []int{9}})
	require.NoError(t, err)
	assert.NotSame(t, r1, again, "s1 entry was evicted")
}

func TestSimpleCache_LRUOrder(t *testing.T) {
	g := NewSimpleCache(Pure(func(s *testState) *summary {
		return &summary{total: len(s.items)}
	}), Options[*summary]{
		MaxCacheSize: 2,
		EqualityFn:   func(a, b *summary) bool { return a.total == b.total },
	})

	a, _ := g.Select(&testState{items: []int{1}})
	b, _ := g.Select(&testState{items: []int{1, 2}})

	// Re-touch A through a new state with an equal result.
	a2, _ := g.Select(&testState{items: []int{7}})
	assert.Same(t, a, a2)

	_, _ = g.Select(&testState{items: []int{1, 2, 3}})
	assert.Equal(t, 2, g.CacheSize())

	a3, _ := g.Select(&testState{items: []int{8}})
	assert.Same(t, a, a3, "A survives")
	b2, _ := g.Select(&testState{items: []int{8, 8}})
	assert.NotSame(t, b, b2, "B was evicted")
}

func TestSimpleCache_BoundedGrowth(t *testing.T) {
	g := NewSimpleCache(Pure(func(s *testState) int { return len(s.items) }), Options[int]{MaxCacheSize: 3})

	for i := 0; i < 20; i++ {
		_, err := g.Select(&testState{items: make([]int, i)})
		require.NoError(t, err)
		assert.LessOrEqual(t, g.CacheSize(), 3)
	}
	assert.Equal(t, 3, g.CacheSize())
}

func TestSimpleCache_DerivationErrorIsTransparent(t *testing.T) {
	errBoom := errors.New("boom")
	fail := false
	g := NewSimpleCache[*testState, int](func(s *testState) (int, error) {
		if fail {
			return 0, errBoom
		}
		return len(s.items), nil
	}, Options[int]{EnablePerformanceMonitoring: true})

	s1 := &testState{items: []int{1}}
	_, err := g.Select(s1)
	require.NoError(t, err)

	fail = true
	_, err = g.Select(&testState{})
	assert.Same(t, errBoom, err, "error must be returned verbatim")
	assert.Equal(t, 1, g.CacheSize())

	fail = false
	v, err := g.Select(s1)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, int64(1), g.Metrics().CacheHits, "s1 entry untouched by the failure")
	assert.Equal(t, int64(2), g.Metrics().TotalCalls, "failed calls are not counted")
}

func TestSimpleCache_EqualityPanicLeavesCacheUntouched(t *testing.T) {
	panicking := false
	calls := 0
	g := NewSimpleCache(newCountingSelector(&calls), Options[int]{
		EqualityFn: func(a, b int) bool {
			if panicking {
				panic("equality failed")
			}
			return a == b
		},
	})

	s1 := &testState{items: []int{1, 2}}
	_, err := g.Select(s1)
	require.NoError(t, err)

	panicking = true
	assert.PanicsWithValue(t, "equality failed", func() {
		_, _ = g.Select(&testState{items: []int{1}})
	})
	panicking = false

	assert.Equal(t, 1, g.CacheSize())
	v, err := g.Select(s1)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, calls, "s1 still answers from the cache")
}

func TestSimpleCache_FallbackValue(t *testing.T) {
	fallback := &summary{total: -1}
	g := NewSimpleCache(Pure(func(s *testState) *summary {
		if len(s.items) == 0 {
			return nil
		}
		return &summary{total: len(s.items)}
	}), Options[*summary]{FallbackValue: &fallback})

	v, err := g.Select(&testState{})
	require.NoError(t, err)
	assert.Same(t, fallback, v)

	v, err = g.Select(&testState{items: []int{1}})
	require.NoError(t, err)
	assert.Equal(t, 1, v.total)
}

func TestSimpleCache_MonitoringDisabled(t *testing.T) {
	calls := 0
	g := NewSimpleCache(newCountingSelector(&calls), Options[int]{})
	s := &testState{}

	_, _ = g.Select(s)
	_, _ = g.Select(s)

	assert.Equal(t, Metrics{CacheSize: 1}, g.Metrics())
}

func TestSimpleCache_ClearAndReset(t *testing.T) {
	calls := 0
	g := NewSimpleCache(newCountingSelector(&calls), Options[int]{EnablePerformanceMonitoring: true})
	s := &testState{items: []int{1}}

	_, _ = g.Select(s)
	_, _ = g.Select(s)

	g.ClearCache()
	assert.Equal(t, 0, g.CacheSize())
	assert.Equal(t, int64(2), g.Metrics().TotalCalls, "clearing keeps counters")

	_, _ = g.Select(s)
	assert.Equal(t, 2, calls, "cleared cache derives again")

	g.ResetMetrics()
	m := g.Metrics()
	assert.Zero(t, m.TotalCalls)
	assert.Zero(t, m.CacheHits)
	assert.Zero(t, m.MaxExecutionTime)
	assert.True(t, m.LastCall.IsZero())
	assert.Equal(t, 1, m.CacheSize, "reset keeps entries")
}

func TestSimpleCache_ExecutionTimeAggregates(t *testing.T) {
	g := NewSimpleCache(Pure(func(s *testState) int { return len(s.items) }), Options[int]{EnablePerformanceMonitoring: true})

	for i := 0; i < 5; i++ {
		_, _ = g.Select(&testState{items: make([]int, i)})
	}

	m := g.Metrics()
	assert.Equal(t, int64(5), m.TotalCalls)
	assert.LessOrEqual(t, m.MinExecutionTime, m.AverageExecutionTime)
	assert.LessOrEqual(t, m.AverageExecutionTime, m.MaxExecutionTime)
	assert.False(t, m.LastCall.IsZero())
	assert.Equal(t, float64(0), m.HitRatio())
}
