package selector

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const (
	nilToken       = "<nil>"
	paramSeparator = "|"
)

// Keyer is implemented by composite parameters that define their own cache key.
//
// CacheKey must return the same string for logically equal values and different strings
// for values that should be cached separately.
type Keyer interface {
	CacheKey() string
}

// ParameterKey builds the cache key for an ordered parameter list.
//
// Each part is encoded as <type>:<length>:<body>, so values of different types or
// values containing the separator never collide. Scalars (bool, string, integer,
// unsigned, float kinds, including named types) and time.Time are encoded directly;
// composite values must implement Keyer.
func ParameterKey(params ...any) (string, error) {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteString(paramSeparator)
		}
		part, err := encodeParameter(p)
		if err != nil {
			return "", fmt.Errorf("parameter %d: %w", i, err)
		}
		b.WriteString(part)
	}
	return b.String(), nil
}

func encodeParameter(p any) (string, error) {
	if p == nil {
		return nilToken, nil
	}

	rv := reflect.ValueOf(p)
	typeName := rv.Type().String()

	switch v := p.(type) {
	case Keyer:
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nilToken, nil
		}
		return frame("key("+typeName+")", v.CacheKey()), nil
	case time.Time:
		return frame(typeName, v.UTC().Format(time.RFC3339Nano)), nil
	}

	switch rv.Kind() {
	case reflect.String:
		return frame(typeName, rv.String()), nil
	case reflect.Bool:
		return frame(typeName, strconv.FormatBool(rv.Bool())), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return frame(typeName, strconv.FormatInt(rv.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return frame(typeName, strconv.FormatUint(rv.Uint(), 10)), nil
	case reflect.Float32, reflect.Float64:
		return frame(typeName, strconv.FormatFloat(rv.Float(), 'g', -1, 64)), nil
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return nilToken, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrUnkeyableParameter, typeName)
}

func frame(typeName, body string) string {
	return typeName + ":" + strconv.Itoa(len(body)) + ":" + body
}
