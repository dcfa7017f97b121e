package selector

import "fmt"

var (
	_ Introspectable = (*SimpleCache[int, int])(nil)
	_ Introspectable = (*ArrayCache[int, int])(nil)
	_ Introspectable = (*ParameterizedCache[int, int])(nil)
	_ Introspectable = (*CountCache[int, int])(nil)
	_ Introspectable = (*FilterCache[int, int])(nil)
	_ Introspectable = (*FindByIDCache[int, int, int])(nil)
)

// CountCache memoizes the number of items matching a state-dependent predicate.
type CountCache[S comparable, E any] struct {
	*SimpleCache[S, int]
}

// NewCountCache counts items(state). A nil predicate counts every item.
func NewCountCache[S comparable, E any](
	items Selector[S, []E],
	predicate func(state S) func(item E) bool,
	opts Options[int],
) *CountCache[S, E] {
	count := func(state S) (int, error) {
		list, err := items(state)
		if err != nil {
			return 0, err
		}
		if predicate == nil {
			return len(list), nil
		}
		match := predicate(state)
		n := 0
		for _, item := range list {
			if match(item) {
				n++
			}
		}
		return n, nil
	}
	return &CountCache[S, E]{SimpleCache: NewSimpleCache[S, int](count, opts)}
}

// FilterCache memoizes the items matching a predicate.
type FilterCache[S comparable, E any] struct {
	*ArrayCache[S, E]
}

// NewFilterCache keeps the items of items(state) for which predicate holds.
func NewFilterCache[S comparable, E any](
	items Selector[S, []E],
	predicate func(item E, state S) bool,
	opts Options[[]E],
) *FilterCache[S, E] {
	filter := func(state S) ([]E, error) {
		list, err := items(state)
		if err != nil {
			return nil, err
		}
		var out []E
		for _, item := range list {
			if predicate(item, state) {
				out = append(out, item)
			}
		}
		return out, nil
	}
	return &FilterCache[S, E]{ArrayCache: NewArrayCache[S, E](filter, opts)}
}

// Match is the result of a lookup by id.
type Match[E any] struct {
	Item  E
	Found bool
}

// FindByIDCache memoizes lookups of a single item by id, one entry per id.
type FindByIDCache[S comparable, E any, K comparable] struct {
	*ParameterizedCache[S, Match[E]]
}

// NewFindByIDCache looks items up in items(state) by idOf(item).
//
// opts.EqualityFn compares found items (default Identical). When opts.FallbackValue is
// set it is returned as the item of a miss.
func NewFindByIDCache[S comparable, E any, K comparable](
	items Selector[S, []E],
	idOf func(item E) K,
	opts Options[E],
) *FindByIDCache[S, E, K] {
	itemEqual := opts.equality(Identical[E])
	fallback := opts.FallbackValue

	factory := func(params ...any) (Selector[S, Match[E]], error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("%w: want 1 id, got %d", ErrInvalidParameter, len(params))
		}
		id, ok := params[0].(K)
		if !ok {
			return nil, fmt.Errorf("%w: id has type %T", ErrInvalidParameter, params[0])
		}
		return func(state S) (Match[E], error) {
			list, err := items(state)
			if err != nil {
				return Match[E]{}, err
			}
			for _, item := range list {
				if idOf(item) == id {
					return Match[E]{Item: item, Found: true}, nil
				}
			}
			if fallback != nil {
				return Match[E]{Item: *fallback}, nil
			}
			return Match[E]{}, nil
		}, nil
	}

	matchEqual := func(a, b Match[E]) bool {
		if a.Found != b.Found {
			return false
		}
		if !a.Found {
			return true
		}
		return itemEqual(a.Item, b.Item)
	}

	return &FindByIDCache[S, E, K]{
		ParameterizedCache: NewParameterizedCache[S, Match[E]](factory, Options[Match[E]]{
			Name:                        opts.Name,
			EqualityFn:                  matchEqual,
			MaxCacheSize:                opts.MaxCacheSize,
			EnablePerformanceMonitoring: opts.EnablePerformanceMonitoring,
			ParameterEqualityFn:         opts.ParameterEqualityFn,
		}),
	}
}

// Find returns the item with the given id. found is false when no item matches.
func (c *FindByIDCache[S, E, K]) Find(state S, id K) (item E, found bool, err error) {
	m, err := c.Select(state, id)
	if err != nil {
		return item, false, err
	}
	return m.Item, m.Found, nil
}
