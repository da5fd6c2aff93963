package enum

import (
	"fmt"
	"reflect"
)

var registry = map[string]any{}

type enum[T comparable] struct {
	byName map[string]T
}

// New registers a value of an enum type and returns it unchanged. All values of
// a string-based enum type must be declared through New so that ToEnum can
// parse user input back into the type.
func New[T comparable](value T) T {
	v := reflect.ValueOf(value)
	name := v.Type().Name()
	if _, ok := registry[name]; !ok {
		registry[name] = enum[T]{byName: make(map[string]T)}
	}

	registry[name].(enum[T]).byName[v.String()] = value
	return value
}

// ToEnum parses a string into a registered enum value of type T.
func ToEnum[T comparable](s string) (T, error) {
	var zero T
	e, ok := registry[reflect.TypeOf(zero).Name()]
	if !ok {
		return zero, fmt.Errorf("not found enum type %T", zero)
	}

	value, ok := e.(enum[T]).byName[s]
	if !ok {
		return zero, fmt.Errorf("not found value %s in enum %T", s, zero)
	}

	return value, nil
}
