package selector

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// Identical reports whether a and b are the same value in the reference sense.
//
// Pointers, maps, channels and functions compare by address; slices compare by backing
// array and length. Other comparable values compare with ==. Values that are not
// comparable (structs holding slices, for instance) are never identical.
func Identical[T any](a, b T) bool {
	return identical(reflect.ValueOf(any(a)), reflect.ValueOf(any(b)))
}

func identical(av, bv reflect.Value) bool {
	if !av.IsValid() || !bv.IsValid() {
		return av.IsValid() == bv.IsValid()
	}
	if av.Type() != bv.Type() {
		return false
	}
	switch av.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return av.Pointer() == bv.Pointer()
	case reflect.Slice:
		if av.IsNil() || bv.IsNil() {
			return av.IsNil() == bv.IsNil()
		}
		return av.Pointer() == bv.Pointer() && av.Len() == bv.Len()
	}
	if !av.Comparable() || !bv.Comparable() {
		return false
	}
	return av.Equal(bv)
}

// ShallowSliceEqual reports whether a and b have the same length and identical elements.
func ShallowSliceEqual[E any](a, b []E) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	if &a[0] == &b[0] {
		return true
	}
	for i := range a {
		if !Identical(a[i], b[i]) {
			return false
		}
	}
	return true
}

// DeepEqual returns a structural equality function backed by go-cmp.
//
// cmp.Equal panics on unexported fields unless an option handles them; that panic
// propagates out of the cache call unchanged.
func DeepEqual[T any](opts ...cmp.Option) func(a, b T) bool {
	return func(a, b T) bool {
		return cmp.Equal(a, b, opts...)
	}
}
