package selector

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// multiplesOf returns the items divisible by the bound parameter.
func multiplesOf(calls *int) Factory[*testState, []int] {
	return func(params ...any) (Selector[*testState, []int], error) {
		n := params[0].(int)
		return func(s *testState) ([]int, error) {
			*calls++
			var out []int
			for _, v := range s.items {
				if v%n == 0 {
					out = append(out, v)
				}
			}
			return out, nil
		}, nil
	}
}

func sliceOpts(size int) Options[[]int] {
	return Options[[]int]{
		MaxCacheSize:                size,
		EqualityFn:                  ShallowSliceEqual[int],
		EnablePerformanceMonitoring: true,
	}
}

func TestParameterizedCache_IndependentKeys(t *testing.T) {
	calls := 0
	c := NewParameterizedCache(multiplesOf(&calls), sliceOpts(0))
	s := &testState{items: []int{2, 3, 4, 6}}

	twos, err := c.Bind(2)(s)
	require.NoError(t, err)
	threes, err := c.Bind(3)(s)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 4, 6}, twos)
	assert.Equal(t, []int{3, 6}, threes)
	assert.Equal(t, 2, c.CacheInfo().Size)
	assert.Equal(t, 10, c.CacheInfo().MaxSize)

	_, _ = c.Bind(2)(s)
	_, _ = c.Select(s, 3)
	assert.Equal(t, 2, calls, "same state and params are hits")

	m := c.Metrics()
	assert.Equal(t, int64(4), m.TotalCalls)
	assert.Equal(t, int64(2), m.CacheHits)
}

func TestParameterizedCache_StringIDs(t *testing.T) {
	c := NewParameterizedCache[*testState, string](func(params ...any) (Selector[*testState, string], error) {
		id := params[0].(string)
		return Pure(func(s *testState) string { return s.label + ":" + id }), nil
	}, Options[string]{})
	s := &testState{label: "agents"}

	a, err := c.Select(s, "42")
	require.NoError(t, err)
	b, err := c.Select(s, "7")
	require.NoError(t, err)

	assert.Equal(t, "agents:42", a)
	assert.Equal(t, "agents:7", b)

	info := c.CacheInfo()
	assert.Equal(t, 2, info.Size)
	require.Len(t, info.Entries, 2)
	assert.Equal(t, []any{"7"}, info.Entries[0].Params, "most recent first")
	assert.Equal(t, []any{"42"}, info.Entries[1].Params)
	assert.Equal(t, int64(1), info.Entries[0].AccessCount)
}

func TestParameterizedCache_ReusesEqualResult(t *testing.T) {
	calls := 0
	c := NewParameterizedCache(multiplesOf(&calls), sliceOpts(0))

	first, err := c.Select(&testState{items: []int{2, 4}}, 2)
	require.NoError(t, err)
	second, err := c.Select(&testState{items: []int{1, 2, 3, 4}}, 2)
	require.NoError(t, err)

	assert.True(t, Identical(first, second))
	assert.Equal(t, 2, calls)
	assert.Equal(t, int64(2), c.CacheInfo().Entries[0].AccessCount)

	replaced, err := c.Select(&testState{items: []int{8}}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{8}, replaced)
	assert.Equal(t, 1, c.CacheSize())
	assert.Equal(t, int64(1), c.CacheInfo().Entries[0].AccessCount, "replaced entry starts over")
}

func TestParameterizedCache_LRUEviction(t *testing.T) {
	tests := []struct {
		name     string
		maxSize  int
		inserted []int
	}{
		{name: "two slots", maxSize: 2, inserted: []int{1, 2}},
		{name: "three slots", maxSize: 3, inserted: []int{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			c := NewParameterizedCache(multiplesOf(&calls), sliceOpts(tt.maxSize))
			s := &testState{items: []int{1, 2, 3, 4, 5, 6}}

			for _, n := range tt.inserted {
				_, err := c.Select(s, n)
				require.NoError(t, err)
			}
			// Re-touch the first key, then insert a new one.
			_, _ = c.Select(s, tt.inserted[0])
			_, _ = c.Select(s, 5)

			assert.Equal(t, tt.maxSize, c.CacheSize())
			keys := map[string]bool{}
			for _, e := range c.CacheInfo().Entries {
				keys[e.Key] = true
			}
			first, _ := ParameterKey(tt.inserted[0])
			second, _ := ParameterKey(tt.inserted[1])
			assert.True(t, keys[first], "re-touched key survives")
			assert.False(t, keys[second], "least recently used key is evicted")
		})
	}
}

func TestParameterizedCache_BoundedGrowth(t *testing.T) {
	calls := 0
	c := NewParameterizedCache(multiplesOf(&calls), sliceOpts(3))
	s := &testState{items: []int{1, 2, 3}}

	for n := 1; n <= 12; n++ {
		_, err := c.Select(s, n)
		require.NoError(t, err)
		assert.LessOrEqual(t, c.CacheSize(), 3)
	}
	assert.Equal(t, int64(9), c.Metrics().Evictions)
}

func TestParameterizedCache_Errors(t *testing.T) {
	errFactory := errors.New("factory failed")
	errDerive := errors.New("derivation failed")

	c := NewParameterizedCache[*testState, int](func(params ...any) (Selector[*testState, int], error) {
		switch params[0].(string) {
		case "factory":
			return nil, errFactory
		case "nil":
			return nil, nil
		case "derive":
			return func(*testState) (int, error) { return 0, errDerive }, nil
		}
		return Pure(func(s *testState) int { return len(s.items) }), nil
	}, Options[int]{})
	s := &testState{}

	_, err := c.Select(s, "ok")
	require.NoError(t, err)

	tests := []struct {
		name   string
		params []any
		err    error
	}{
		{name: "factory error", params: []any{"factory"}, err: errFactory},
		{name: "nil selector", params: []any{"nil"}, err: ErrNilSelector},
		{name: "derivation error", params: []any{"derive"}, err: errDerive},
		{name: "unkeyable parameter", params: []any{struct{ A []int }{}}, err: ErrUnkeyableParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Select(s, tt.params...)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, 1, c.CacheSize(), "failures never touch the map")
		})
	}
}

func TestParameterizedCache_ParameterEqualityFn(t *testing.T) {
	calls := 0
	opts := sliceOpts(0)
	opts.ParameterEqualityFn = func(a, b []any) bool { return false }
	c := NewParameterizedCache(multiplesOf(&calls), opts)
	s := &testState{items: []int{2}}

	_, _ = c.Select(s, 2)
	_, _ = c.Select(s, 2)

	assert.Equal(t, 2, calls, "rejected parameter lists are never hits")
	assert.Equal(t, 1, c.CacheSize())
}

type taggedParam struct {
	tag     string
	payload int
}

func (p taggedParam) CacheKey() string {
	return p.tag
}

func TestParameterizedCache_ParameterEqualityFn_AdoptsNewParams(t *testing.T) {
	calls := 0
	c := NewParameterizedCache[*testState, int](func(params ...any) (Selector[*testState, int], error) {
		return func(s *testState) (int, error) {
			calls++
			return len(s.items), nil
		}, nil
	}, Options[int]{
		EnablePerformanceMonitoring: true,
		ParameterEqualityFn: func(a, b []any) bool {
			return a[0].(taggedParam).payload == b[0].(taggedParam).payload
		},
	})
	s := &testState{items: []int{1, 2}}

	_, err := c.Select(s, taggedParam{tag: "k", payload: 1})
	require.NoError(t, err)
	_, err = c.Select(s, taggedParam{tag: "k", payload: 2})
	require.NoError(t, err)

	info := c.CacheInfo()
	require.Len(t, info.Entries, 1)
	assert.Equal(t, []any{taggedParam{tag: "k", payload: 2}}, info.Entries[0].Params)

	_, err = c.Select(s, taggedParam{tag: "k", payload: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, int64(1), c.Metrics().CacheHits)
}

func TestParameterizedCache_BindCopiesParams(t *testing.T) {
	calls := 0
	c := NewParameterizedCache(multiplesOf(&calls), sliceOpts(0))
	params := []any{2}
	bound := c.Bind(params...)
	params[0] = 3

	v, err := bound(&testState{items: []int{2, 3}})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, v)
}

func TestParameterizedCache_ClearCache(t *testing.T) {
	calls := 0
	c := NewParameterizedCache(multiplesOf(&calls), sliceOpts(0))
	s := &testState{items: []int{2}}

	_, _ = c.Select(s, 1)
	_, _ = c.Select(s, 2)
	c.ClearCache()

	assert.Equal(t, 0, c.CacheSize())
	assert.Empty(t, c.CacheInfo().Entries)
	assert.Equal(t, 0, c.Metrics().CacheSize)

	_, _ = c.Select(s, 1)
	assert.Equal(t, 3, calls)
}
