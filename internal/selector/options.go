package selector

import "reflect"

const (
	// DefaultMaxCacheSize is the entry bound for simple and array caches.
	DefaultMaxCacheSize = 1
	// DefaultParameterizedMaxCacheSize is the key bound for parameterized caches.
	DefaultParameterizedMaxCacheSize = 10
)

// Selector derives a value from a state snapshot.
type Selector[S comparable, T any] func(state S) (T, error)

// Pure adapts a derivation that cannot fail.
func Pure[S comparable, T any](fn func(state S) T) Selector[S, T] {
	return func(state S) (T, error) {
		return fn(state), nil
	}
}

// Options configures a cache.
type Options[T any] struct {
	// Name labels the cache in logs and Prometheus metrics. Empty disables export.
	Name string
	// EqualityFn decides whether a fresh result may be replaced by a stored one.
	EqualityFn func(a, b T) bool
	// FallbackValue substitutes nil results (nil pointer, map, slice, interface, func, chan).
	FallbackValue *T
	// MaxCacheSize bounds the number of stored entries.
	MaxCacheSize int
	// EnablePerformanceMonitoring turns on call counters and timing.
	EnablePerformanceMonitoring bool
	// ParameterEqualityFn is consulted by parameterized caches before a key hit is accepted.
	ParameterEqualityFn func(a, b []any) bool
}

func (o Options[T]) maxSize(def int) int {
	if o.MaxCacheSize <= 0 {
		return def
	}
	return o.MaxCacheSize
}

func (o Options[T]) equality(def func(a, b T) bool) func(a, b T) bool {
	if o.EqualityFn != nil {
		return o.EqualityFn
	}
	return def
}

// applyFallback returns the fallback when result is nil and a fallback is configured.
func applyFallback[T any](result T, fallback *T) T {
	if fallback != nil && isNil(result) {
		return *fallback
	}
	return result
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
