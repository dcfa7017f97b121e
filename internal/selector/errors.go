package selector

import "errors"

var (
	// ErrUnkeyableParameter is returned when a parameter cannot be turned into a cache key.
	ErrUnkeyableParameter = errors.New("parameter cannot be used as a cache key")
	// ErrNilSelector is returned when a factory produces a nil selector.
	ErrNilSelector = errors.New("factory returned a nil selector")
	// ErrInvalidParameter is returned when a bound parameter has the wrong type.
	ErrInvalidParameter = errors.New("invalid selector parameter")
)
