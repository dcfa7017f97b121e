package selector

import (
	"reflect"
	"sync"
)

// emptySlices holds one zero-length slice per element type.
var emptySlices sync.Map // reflect.Type -> []E

// EmptySlice returns the process-wide canonical empty slice for E.
//
// Every call for the same element type returns the same slice. It has zero capacity,
// so appending to it always allocates and the shared value is never written.
func EmptySlice[E any]() []E {
	t := reflect.TypeFor[E]()
	if v, ok := emptySlices.Load(t); ok {
		return v.([]E)
	}
	v, _ := emptySlices.LoadOrStore(t, make([]E, 0))
	return v.([]E)
}
