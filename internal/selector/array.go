package selector

// ArrayCache memoizes a slice-valued selector.
//
// Empty results are replaced with EmptySlice[E], so every empty result from every
// ArrayCache with the same element type is the same slice. Equality defaults to
// ShallowSliceEqual.
type ArrayCache[S comparable, E any] struct {
	*SimpleCache[S, []E]
}

// NewArrayCache wraps fn.
func NewArrayCache[S comparable, E any](fn Selector[S, []E], opts Options[[]E]) *ArrayCache[S, E] {
	fallback := opts.FallbackValue
	canonical := func(state S) ([]E, error) {
		items, err := fn(state)
		if err != nil {
			return nil, err
		}
		if items == nil && fallback != nil {
			items = *fallback
		}
		if len(items) == 0 {
			return EmptySlice[E](), nil
		}
		return items, nil
	}

	opts.EqualityFn = opts.equality(ShallowSliceEqual[E])
	opts.FallbackValue = nil
	return &ArrayCache[S, E]{SimpleCache: NewSimpleCache[S, []E](canonical, opts)}
}
